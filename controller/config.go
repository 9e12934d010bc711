package controller

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/nvr-ai/depthcam/camera"
	"github.com/nvr-ai/depthcam/inference"
	"github.com/nvr-ai/depthcam/inference/detectors"
)

// Config is the complete configuration of a detection session.
type Config struct {
	Source   camera.Config    `json:"source"   yaml:"source"`
	Detector detectors.Config `json:"detector" yaml:"detector"`
	// Labels is the label map JSON file.
	Labels string `json:"labels" yaml:"labels"`
	// Threshold is the exclusive minimum confidence of drawn detections.
	Threshold float32 `json:"threshold" yaml:"threshold"`
	// Output is the recording path. Empty disables recording.
	Output    string `json:"output"     yaml:"output"`
	GUI       bool   `json:"gui"        yaml:"gui"`
	ShowDepth bool   `json:"show_depth" yaml:"show_depth"`
	// Mode is the initial inference mode, sync or async.
	Mode string `json:"mode" yaml:"mode"`
	// OnError is the inference failure policy, skip or fail.
	OnError string `json:"on_error" yaml:"on_error"`
	// ChannelOrder is the network input plane order, bgr or rgb.
	ChannelOrder string `json:"channel_order" yaml:"channel_order"`
	Debug        bool   `json:"debug"         yaml:"debug"`
}

// DefaultConfig returns the demo defaults.
func DefaultConfig() Config {
	return Config{
		Source:       camera.DefaultConfig(),
		Detector:     detectors.DefaultConfig(),
		Labels:       "labels/label_map.json",
		Threshold:    0.5,
		Mode:         inference.ModeAsync.String(),
		OnError:      string(inference.FailureSkip),
		ChannelOrder: inference.OrderBGR.String(),
	}
}

// LoadConfig reads a YAML file over the defaults. Keys missing from the file keep their
// default values.
//
// Arguments:
// - path: The YAML file.
//
// Returns:
// - The merged configuration.
// - error if the file cannot be read or parsed.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "failed to read config %s", path)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "failed to parse config %s", path)
	}

	return cfg, nil
}

// Validate checks every field that can be checked without touching devices or files.
func (c Config) Validate() error {
	if err := c.Source.Validate(); err != nil {
		return errors.Wrap(err, "source")
	}
	if c.Labels == "" {
		return errors.New("labels path is required")
	}
	if c.Threshold < 0 || c.Threshold > 1 {
		return errors.Errorf("threshold %v outside [0, 1]", c.Threshold)
	}
	if c.ShowDepth && !c.GUI {
		return errors.New("show_depth requires gui")
	}
	if _, err := inference.ParseMode(c.Mode); err != nil {
		return err
	}
	if _, err := inference.ParseFailurePolicy(c.OnError); err != nil {
		return err
	}
	if _, err := inference.ParseChannelOrder(c.ChannelOrder); err != nil {
		return err
	}
	return nil
}
