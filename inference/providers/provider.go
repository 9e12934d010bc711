// Package providers - Execution targets for the OpenCV and ONNX Runtime engines.
package providers

import (
	"strings"

	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
)

// ProviderBackend names an ONNX Runtime execution provider.
type ProviderBackend string

const (
	// OpenVINOProviderBackend uses Intel OpenVINO for inference optimization.
	OpenVINOProviderBackend ProviderBackend = "openvino"
	// CPUProviderBackend uses the default ONNX Runtime CPU kernels.
	CPUProviderBackend ProviderBackend = "cpu"
)

// ParseProviderBackend validates a provider name. The empty string selects OpenVINO.
func ParseProviderBackend(s string) (ProviderBackend, error) {
	switch ProviderBackend(strings.ToLower(s)) {
	case "", OpenVINOProviderBackend:
		return OpenVINOProviderBackend, nil
	case CPUProviderBackend:
		return CPUProviderBackend, nil
	default:
		return "", errors.Errorf("unsupported execution provider %q", s)
	}
}

// ExecutionProvider represents the contract that all execution providers must implement.
type ExecutionProvider interface {
	Backend() ProviderBackend
	// Apply registers the provider on a session's options.
	Apply(options *ort.SessionOptions) error
}

// NewProvider creates a new provider based on the required backend.
//
// Arguments:
//   - backend: The backend to use.
//   - device: The device the provider should target.
//
// Returns:
//   - ExecutionProvider: The new provider.
//   - error: An error if the backend is unknown.
func NewProvider(backend ProviderBackend, device Device) (ExecutionProvider, error) {
	switch backend {
	case OpenVINOProviderBackend:
		return NewOpenVINOProvider(OpenVINOOptionsFor(device)), nil
	case CPUProviderBackend:
		return NewCPUProvider(), nil
	default:
		return nil, errors.Errorf("no matching provider backend registered: %s", backend)
	}
}
