//go:build openvino

package detectors

import (
	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"github.com/nvr-ai/depthcam/common"
	"github.com/nvr-ai/depthcam/inference"
)

func (e *OpenCV) forward() *inference.Request {
	async := e.net.ForwardAsync("")

	return inference.Go(func() ([]common.Detection, error) {
		defer async.Close()

		out := gocv.NewMat()
		defer out.Close()

		if err := async.Get(&out); err != nil {
			return nil, errors.Wrap(err, "async request failed")
		}

		return decodeOutput(out)
	})
}
