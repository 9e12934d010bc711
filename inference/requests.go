package inference

import (
	"github.com/pkg/errors"

	"github.com/nvr-ai/depthcam/common"
)

// Request is one submission on a slot. It completes exactly once.
type Request struct {
	done       chan struct{}
	detections []common.Detection
	err        error
}

// Go runs fn in its own goroutine and returns the request tracking it.
func Go(fn func() ([]common.Detection, error)) *Request {
	r := &Request{done: make(chan struct{})}
	go func() {
		defer close(r.done)
		r.detections, r.err = fn()
	}()
	return r
}

// Completed returns a request that has already finished with the given outcome.
func Completed(detections []common.Detection, err error) *Request {
	r := &Request{done: make(chan struct{}), detections: detections, err: err}
	close(r.done)
	return r
}

// Wait blocks until the request finishes. It may be called any number of times.
func (r *Request) Wait() ([]common.Detection, error) {
	<-r.done
	return r.detections, r.err
}

// Done reports whether the request has finished without blocking.
func (r *Request) Done() bool {
	select {
	case <-r.done:
		return true
	default:
		return false
	}
}

// Requests holds the latest request per slot and implements the Engine slot semantics.
// It is not safe for concurrent use; the detection loop drives it from one goroutine.
type Requests struct {
	slots [NumSlots]*Request
}

// Start drains any request still running on slot and then records the request built by
// start. start is only called once the slot is free.
func (q *Requests) Start(slot Slot, start func() *Request) error {
	if !slot.Valid() {
		return errors.Wrapf(ErrInvalidSlot, "slot %d", slot)
	}

	if prev := q.slots[slot]; prev != nil {
		_, _ = prev.Wait()
	}
	q.slots[slot] = start()

	return nil
}

// Wait blocks on the request recorded for slot.
func (q *Requests) Wait(slot Slot) ([]common.Detection, error) {
	if !slot.Valid() {
		return nil, errors.Wrapf(ErrInvalidSlot, "slot %d", slot)
	}

	r := q.slots[slot]
	if r == nil {
		return nil, errors.Wrapf(ErrSlotIdle, "slot %d", slot)
	}

	return r.Wait()
}

// Drain waits for every outstanding request. Engines call it before releasing resources.
func (q *Requests) Drain() {
	for _, r := range q.slots {
		if r != nil {
			_, _ = r.Wait()
		}
	}
}
