//go:build !openvino

package detectors

import "github.com/nvr-ai/depthcam/inference"

func (e *OpenCV) forward() *inference.Request {
	out := e.net.Forward("")
	defer out.Close()

	return inference.Completed(decodeOutput(out))
}
