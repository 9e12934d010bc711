package providers

import (
	"strconv"

	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
)

// OpenVINOOptions contains arguments for the OpenVINO provider.
// See:
// https://onnxruntime.ai/docs/execution-providers/OpenVINO-ExecutionProvider.html#summary-of-options
type OpenVINOOptions struct {
	DeviceID string `json:"deviceID"     yaml:"deviceID"`
	// Overrides the accelerator hardware type with these values at runtime.
	DeviceType string `json:"deviceType"   yaml:"deviceType"`
	// Inference precision, FP16 or FP32.
	Precision Precision `json:"precision"    yaml:"precision"`
	// Overrides the accelerator default number of threads. Zero keeps the default.
	NumOfThreads int `json:"numOfThreads" yaml:"numOfThreads"`
	// Overrides the accelerator default number of streams. Zero keeps the default.
	NumStreams int `json:"numStreams"   yaml:"numStreams"`
}

// OpenVINOOptionsFor returns the options for a device name.
func OpenVINOOptionsFor(device Device) OpenVINOOptions {
	return OpenVINOOptions{
		DeviceType: string(device),
		Precision:  device.Precision(),
	}
}

// Map renders the options as the key/value pairs the provider expects. Unset values are omitted.
func (o OpenVINOOptions) Map() map[string]string {
	m := map[string]string{}
	if o.DeviceID != "" {
		m["device_id"] = o.DeviceID
	}
	if o.DeviceType != "" {
		m["device_type"] = o.DeviceType
	}
	if o.Precision != "" {
		m["precision"] = string(o.Precision)
	}
	if o.NumOfThreads > 0 {
		m["num_of_threads"] = strconv.Itoa(o.NumOfThreads)
	}
	if o.NumStreams > 0 {
		m["num_streams"] = strconv.Itoa(o.NumStreams)
	}
	return m
}

// OpenVINOProvider implements the ExecutionProvider interface.
type OpenVINOProvider struct {
	options OpenVINOOptions
}

// NewOpenVINOProvider creates a new OpenVINO provider.
func NewOpenVINOProvider(args OpenVINOOptions) *OpenVINOProvider {
	return &OpenVINOProvider{options: args}
}

// Backend returns the backend of the OpenVINO provider.
func (p *OpenVINOProvider) Backend() ProviderBackend {
	return OpenVINOProviderBackend
}

// Options returns the options of the OpenVINO provider.
func (p *OpenVINOProvider) Options() OpenVINOOptions {
	return p.options
}

// Apply appends the OpenVINO execution provider.
func (p *OpenVINOProvider) Apply(options *ort.SessionOptions) error {
	if err := options.AppendExecutionProviderOpenVINO(p.options.Map()); err != nil {
		return errors.Wrap(err, "error enabling OpenVINO")
	}
	return nil
}
