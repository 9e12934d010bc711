package detectors

import (
	"image"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
	"gorgonia.org/tensor"

	"github.com/nvr-ai/depthcam/common"
	"github.com/nvr-ai/depthcam/inference"
)

// OpenCV runs a network through the OpenCV DNN module with the OpenVINO backend.
//
// Built with -tags openvino, requests run asynchronously on the inference engine. Otherwise
// each Submit runs a blocking forward pass and Wait returns its stored result.
type OpenCV struct {
	net        gocv.Net
	inputShape image.Point
	requests   inference.Requests
	closed     bool
}

// NewOpenCV loads the model and weights and selects the backend and target for cfg.Device.
func NewOpenCV(cfg Config) (*OpenCV, error) {
	shape := cfg.InputShape
	if shape == (image.Point{}) {
		if !strings.EqualFold(filepath.Ext(cfg.Model), ".xml") {
			return nil, errors.Errorf("input shape must be set for non-IR model %s", cfg.Model)
		}
		var err error
		if shape, err = ReadIRInputShape(cfg.Model); err != nil {
			return nil, err
		}
	}

	net := gocv.ReadNet(cfg.Model, cfg.Weights)
	if net.Empty() {
		return nil, errors.Errorf("failed to read network %s", cfg.Model)
	}

	backend, target := cfg.Device.OpenCV()
	net.SetPreferableBackend(backend)
	net.SetPreferableTarget(target)

	return &OpenCV{net: net, inputShape: shape}, nil
}

// InputShape is the network input size.
func (e *OpenCV) InputShape() image.Point {
	return e.inputShape
}

// Submit starts a request for input on slot.
func (e *OpenCV) Submit(slot inference.Slot, input *tensor.Dense) error {
	if e.closed {
		return inference.ErrClosed
	}

	blob, err := tensorToBlob(input)
	if err != nil {
		return err
	}

	return e.requests.Start(slot, func() *inference.Request {
		defer blob.Close()
		e.net.SetInput(blob, "")
		return e.forward()
	})
}

// Wait blocks until the request on slot completes.
func (e *OpenCV) Wait(slot inference.Slot) ([]common.Detection, error) {
	return e.requests.Wait(slot)
}

// Close waits for outstanding requests and releases the network.
func (e *OpenCV) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	e.requests.Drain()
	e.net.Close()
	return nil
}

// tensorToBlob copies a (1, 3, H, W) float32 tensor into a 4-D Mat.
func tensorToBlob(input *tensor.Dense) (gocv.Mat, error) {
	shape := input.Shape()
	if len(shape) != 4 {
		return gocv.Mat{}, errors.Errorf("expected a 4-D input, got shape %v", shape)
	}

	data, err := inference.Float32s(input)
	if err != nil {
		return gocv.Mat{}, err
	}

	blob := gocv.NewMatWithSizes([]int{shape[0], shape[1], shape[2], shape[3]}, gocv.MatTypeCV32F)
	dst, err := blob.DataPtrFloat32()
	if err != nil {
		blob.Close()
		return gocv.Mat{}, errors.Wrap(err, "failed to access blob data")
	}
	copy(dst, data)

	return blob, nil
}

// decodeOutput decodes a DetectionOutput Mat. The Mat may be closed once it returns.
func decodeOutput(out gocv.Mat) ([]common.Detection, error) {
	if out.Empty() {
		return nil, errors.New("network produced no output")
	}

	data, err := out.DataPtrFloat32()
	if err != nil {
		return nil, errors.Wrap(err, "unexpected output type")
	}

	return inference.DecodeSSD(data)
}
