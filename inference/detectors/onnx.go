package detectors

import (
	"image"

	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
	"go.uber.org/multierr"
	"gorgonia.org/tensor"

	"github.com/nvr-ai/depthcam/common"
	"github.com/nvr-ai/depthcam/inference"
	"github.com/nvr-ai/depthcam/inference/providers"
)

// Session represents a model session from the onnxruntime with its bound tensors.
type Session struct {
	Session *ort.AdvancedSession
	Input   *ort.Tensor[float32]
	Output  *ort.Tensor[float32]
}

// Close releases the resources associated with the Session.
func (s *Session) Close() error {
	var err error
	if s.Session != nil {
		err = multierr.Append(err, s.Session.Destroy())
		s.Session = nil
	}
	if s.Input != nil {
		err = multierr.Append(err, s.Input.Destroy())
		s.Input = nil
	}
	if s.Output != nil {
		err = multierr.Append(err, s.Output.Destroy())
		s.Output = nil
	}
	return err
}

// ONNX runs a DetectionOutput-style network through ONNX Runtime.
//
// Each request slot owns a session with its own input and output tensors, so a request on
// one slot runs in the background while the other slot is read.
type ONNX struct {
	inputShape image.Point
	sessions   [inference.NumSlots]*Session
	requests   inference.Requests
	closed     bool
}

// NewONNX creates one session per slot for cfg.Model.
func NewONNX(cfg Config) (*ONNX, error) {
	if err := providers.InitializeRuntime(); err != nil {
		return nil, err
	}

	inputs, outputs, err := ort.GetInputOutputInfo(cfg.Model)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to inspect %s", cfg.Model)
	}
	if len(inputs) == 0 || len(outputs) == 0 {
		return nil, errors.Errorf("model %s has no inputs or outputs", cfg.Model)
	}

	inputShape, err := resolveInputShape(inputs[0].Dimensions, cfg.InputShape)
	if err != nil {
		return nil, err
	}
	outputDims, err := resolveOutputShape(outputs[0].Dimensions, cfg.MaxDetections)
	if err != nil {
		return nil, err
	}

	provider, err := providers.NewProvider(cfg.Provider, cfg.Device)
	if err != nil {
		return nil, err
	}
	options, err := providers.NewSessionOptions(provider, cfg.Session)
	if err != nil {
		return nil, err
	}
	defer options.Destroy()

	e := &ONNX{inputShape: inputShape}
	for i := range e.sessions {
		s, err := newSession(cfg.Model, inputs[0].Name, outputs[0].Name, inputShape, outputDims, options)
		if err != nil {
			_ = e.Close()
			return nil, errors.Wrapf(err, "slot %d", i)
		}
		e.sessions[i] = s
	}

	return e, nil
}

func newSession(
	model, inputName, outputName string,
	inputShape image.Point,
	outputDims ort.Shape,
	options *ort.SessionOptions,
) (*Session, error) {
	input, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 3, int64(inputShape.Y), int64(inputShape.X)))
	if err != nil {
		return nil, errors.Wrap(err, "error creating input tensor")
	}

	output, err := ort.NewEmptyTensor[float32](outputDims)
	if err != nil {
		input.Destroy()
		return nil, errors.Wrap(err, "error creating output tensor")
	}

	session, err := ort.NewAdvancedSession(
		model,
		[]string{inputName},
		[]string{outputName},
		[]ort.ArbitraryTensor{input},
		[]ort.ArbitraryTensor{output},
		options,
	)
	if err != nil {
		input.Destroy()
		output.Destroy()
		return nil, errors.Wrap(err, "error creating ORT session")
	}

	return &Session{Session: session, Input: input, Output: output}, nil
}

// InputShape is the network input size.
func (e *ONNX) InputShape() image.Point {
	return e.inputShape
}

// Submit copies input into the slot's tensor and runs the session in the background.
func (e *ONNX) Submit(slot inference.Slot, input *tensor.Dense) error {
	if e.closed {
		return inference.ErrClosed
	}
	if !slot.Valid() {
		return errors.Wrapf(inference.ErrInvalidSlot, "slot %d", slot)
	}

	data, err := inference.Float32s(input)
	if err != nil {
		return err
	}

	s := e.sessions[slot]
	if len(data) != len(s.Input.GetData()) {
		return errors.Errorf("input has %d values, session expects %d", len(data), len(s.Input.GetData()))
	}

	return e.requests.Start(slot, func() *inference.Request {
		copy(s.Input.GetData(), data)
		return inference.Go(func() ([]common.Detection, error) {
			if err := s.Session.Run(); err != nil {
				return nil, errors.Wrap(err, "failed to run inference")
			}
			return inference.DecodeSSD(s.Output.GetData())
		})
	})
}

// Wait blocks until the request on slot completes.
func (e *ONNX) Wait(slot inference.Slot) ([]common.Detection, error) {
	return e.requests.Wait(slot)
}

// Close waits for outstanding runs and destroys every session.
func (e *ONNX) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	e.requests.Drain()

	var err error
	for i, s := range e.sessions {
		if s != nil {
			err = multierr.Append(err, s.Close())
			e.sessions[i] = nil
		}
	}
	return err
}

// resolveInputShape reads H and W from NCHW dims, falling back to override for dynamic
// dimensions. A non-zero override always wins.
func resolveInputShape(dims ort.Shape, override image.Point) (image.Point, error) {
	if override.X > 0 && override.Y > 0 {
		return override, nil
	}
	if len(dims) != 4 {
		return image.Point{}, errors.Errorf("expected an NCHW input, got %v", dims)
	}
	if dims[2] <= 0 || dims[3] <= 0 {
		return image.Point{}, errors.Errorf("input %v has dynamic size; set the input shape", dims)
	}
	return image.Pt(int(dims[3]), int(dims[2])), nil
}

// resolveOutputShape validates a [..., N, 7] DetectionOutput shape and fixes dynamic
// dimensions: N becomes maxDetections, any other dynamic dimension becomes 1.
func resolveOutputShape(dims ort.Shape, maxDetections int) (ort.Shape, error) {
	if len(dims) < 2 || dims[len(dims)-1] != inference.SSDRecordSize {
		return nil, errors.Errorf("expected a DetectionOutput shape [..., N, %d], got %v",
			inference.SSDRecordSize, dims)
	}

	out := make(ort.Shape, len(dims))
	copy(out, dims)
	for i, d := range out {
		if d > 0 {
			continue
		}
		if i == len(out)-2 {
			if maxDetections <= 0 {
				return nil, errors.New("output has a dynamic detection count; set max detections")
			}
			out[i] = int64(maxDetections)
		} else {
			out[i] = 1
		}
	}
	return out, nil
}
