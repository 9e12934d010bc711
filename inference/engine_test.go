package inference

import (
	"image"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorgonia.org/tensor"

	"github.com/nvr-ai/depthcam/common"
)

type call struct {
	op   string
	slot Slot
}

// fakeEngine tags each submission with a sequence number returned as the class id.
type fakeEngine struct {
	requests  Requests
	calls     []call
	seq       int
	submitErr error
	waitErr   error
}

func (f *fakeEngine) InputShape() image.Point { return image.Pt(4, 4) }

func (f *fakeEngine) Submit(slot Slot, _ *tensor.Dense) error {
	f.calls = append(f.calls, call{"submit", slot})
	if f.submitErr != nil {
		return f.submitErr
	}
	f.seq++
	id := f.seq
	return f.requests.Start(slot, func() *Request {
		return Completed([]common.Detection{{ClassID: id, Confidence: 0.9}}, nil)
	})
}

func (f *fakeEngine) Wait(slot Slot) ([]common.Detection, error) {
	f.calls = append(f.calls, call{"wait", slot})
	if f.waitErr != nil {
		return nil, f.waitErr
	}
	return f.requests.Wait(slot)
}

func (f *fakeEngine) Close() error { return nil }

func input() *tensor.Dense {
	return tensor.New(tensor.WithShape(1, 3, 4, 4), tensor.WithBacking(make([]float32, 48)))
}

func TestSlot(t *testing.T) {
	assert.Equal(t, SlotB, SlotA.Other())
	assert.Equal(t, SlotA, SlotB.Other())
	assert.True(t, SlotA.Valid())
	assert.False(t, Slot(2).Valid())
}

func TestPingPong(t *testing.T) {
	p := NewPingPong()
	assert.Equal(t, SlotA, p.Current())
	assert.Equal(t, SlotB, p.Next())

	p.Swap()
	assert.Equal(t, SlotB, p.Current())
	assert.Equal(t, SlotA, p.Next())

	p.Swap()
	assert.Equal(t, NewPingPong(), p)
}

func TestRequestsSemantics(t *testing.T) {
	var q Requests

	_, err := q.Wait(SlotA)
	assert.True(t, errors.Is(err, ErrSlotIdle))

	_, err = q.Wait(Slot(5))
	assert.True(t, errors.Is(err, ErrInvalidSlot))
	assert.True(t, errors.Is(q.Start(Slot(-1), nil), ErrInvalidSlot))

	require.NoError(t, q.Start(SlotA, func() *Request {
		return Completed([]common.Detection{{ClassID: 7}}, nil)
	}))

	for i := 0; i < 2; i++ {
		dets, err := q.Wait(SlotA)
		require.NoError(t, err)
		require.Len(t, dets, 1)
		assert.Equal(t, 7, dets[0].ClassID, "completed result is returned again")
	}
}

func TestRequestsStartDrainsInFlight(t *testing.T) {
	var q Requests
	var finished atomic.Bool
	release := make(chan struct{})

	require.NoError(t, q.Start(SlotB, func() *Request {
		return Go(func() ([]common.Detection, error) {
			<-release
			finished.Store(true)
			return nil, nil
		})
	}))

	go func() {
		time.Sleep(10 * time.Millisecond)
		close(release)
	}()

	require.NoError(t, q.Start(SlotB, func() *Request {
		assert.True(t, finished.Load(), "previous request must finish before the slot is reused")
		return Completed(nil, nil)
	}))
	q.Drain()
}

func TestRequestGo(t *testing.T) {
	boom := errors.New("boom")
	r := Go(func() ([]common.Detection, error) { return nil, boom })

	_, err := r.Wait()
	assert.Equal(t, boom, err)
	assert.True(t, r.Done())
}

func TestClientSync(t *testing.T) {
	engine := &fakeEngine{}
	client := NewClient(engine, ClientOptions{Mode: ModeSync})

	for i := 1; i <= 3; i++ {
		res, err := client.Infer(input())
		require.NoError(t, err)
		require.True(t, res.OK)
		assert.Equal(t, ModeSync, res.Mode)
		require.Len(t, res.Detections, 1)
		assert.Equal(t, i, res.Detections[0].ClassID, "sync result belongs to the submitted frame")
	}

	for _, c := range engine.calls {
		assert.Equal(t, SlotA, c.slot)
	}
	assert.Equal(t, NewPingPong(), client.Slots())
}

func TestClientAsync(t *testing.T) {
	engine := &fakeEngine{}
	client := NewClient(engine, ClientOptions{})
	require.Equal(t, ModeAsync, client.Mode())

	res, err := client.Infer(input())
	require.NoError(t, err)
	assert.False(t, res.OK, "first async frame has nothing to read")
	assert.Equal(t, []call{{"submit", SlotB}, {"wait", SlotA}}, engine.calls)
	assert.Equal(t, SlotB, client.Slots().Current())

	res, err = client.Infer(input())
	require.NoError(t, err)
	require.True(t, res.OK)
	assert.Equal(t, 1, res.Detections[0].ClassID, "async returns the previous frame")
	assert.Equal(t, []call{{"submit", SlotA}, {"wait", SlotB}}, engine.calls[2:])
	assert.Zero(t, res.Elapsed)

	res, err = client.Infer(input())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Detections[0].ClassID)
}

func TestClientToggle(t *testing.T) {
	engine := &fakeEngine{}
	client := NewClient(engine, ClientOptions{})

	_, err := client.Infer(input())
	require.NoError(t, err)

	assert.Equal(t, ModeSync, client.Toggle())
	res, err := client.Infer(input())
	require.NoError(t, err)
	assert.Equal(t, ModeSync, res.Mode)
	require.True(t, res.OK)
	assert.Equal(t, 2, res.Detections[0].ClassID)
	// Sync uses CURRENT, which is slot 1 after the async swap.
	assert.Equal(t, []call{{"submit", SlotB}, {"wait", SlotB}}, engine.calls[2:])

	assert.Equal(t, ModeAsync, client.Toggle())
	res, err = client.Infer(input())
	require.NoError(t, err)
	assert.Equal(t, ModeAsync, res.Mode)
	require.True(t, res.OK)
	assert.Equal(t, 2, res.Detections[0].ClassID, "CURRENT still holds the sync frame")

	client.SetMode(ModeSync)
	assert.Equal(t, ModeSync, client.Mode())
}

func TestClientFailurePolicy(t *testing.T) {
	waitErr := errors.New("device lost")

	t.Run("skip", func(t *testing.T) {
		engine := &fakeEngine{waitErr: waitErr}
		client := NewClient(engine, ClientOptions{Mode: ModeSync})

		res, err := client.Infer(input())
		require.NoError(t, err)
		assert.False(t, res.OK)
		assert.Empty(t, res.Detections)
	})

	t.Run("fail on wait", func(t *testing.T) {
		engine := &fakeEngine{waitErr: waitErr}
		client := NewClient(engine, ClientOptions{Mode: ModeSync, Policy: FailureStop})

		_, err := client.Infer(input())
		require.Error(t, err)
		assert.Equal(t, waitErr, errors.Cause(err))
	})

	t.Run("fail on submit", func(t *testing.T) {
		engine := &fakeEngine{submitErr: waitErr}
		client := NewClient(engine, ClientOptions{Policy: FailureStop})

		_, err := client.Infer(input())
		require.Error(t, err)
		assert.Len(t, engine.calls, 1)
	})

	t.Run("idle slot is never a failure", func(t *testing.T) {
		engine := &fakeEngine{}
		client := NewClient(engine, ClientOptions{Policy: FailureStop})

		res, err := client.Infer(input())
		require.NoError(t, err)
		assert.False(t, res.OK)
	})
}

func TestParsers(t *testing.T) {
	m, err := ParseMode("SYNC")
	require.NoError(t, err)
	assert.Equal(t, ModeSync, m)
	assert.Equal(t, "sync", m.String())
	assert.Equal(t, "async", ModeAsync.String())
	_, err = ParseMode("batch")
	assert.Error(t, err)

	p, err := ParseFailurePolicy("")
	require.NoError(t, err)
	assert.Equal(t, FailureSkip, p)
	p, err = ParseFailurePolicy("fail")
	require.NoError(t, err)
	assert.Equal(t, FailureStop, p)
	_, err = ParseFailurePolicy("retry")
	assert.Error(t, err)

	e, err := ParseEngineType("OpenCV")
	require.NoError(t, err)
	assert.Equal(t, EngineOpenCV, e)
	_, err = ParseEngineType("coreml")
	assert.Error(t, err)
}
