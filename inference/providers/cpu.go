package providers

import ort "github.com/yalue/onnxruntime_go"

// CPUProvider represents the CPU execution provider.
type CPUProvider struct{}

// NewCPUProvider creates a new CPU provider.
func NewCPUProvider() *CPUProvider {
	return &CPUProvider{}
}

// Backend returns the backend of the CPU provider.
func (p *CPUProvider) Backend() ProviderBackend {
	return CPUProviderBackend
}

// Apply is a no-op: the CPU provider is always registered.
func (p *CPUProvider) Apply(*ort.SessionOptions) error {
	return nil
}
