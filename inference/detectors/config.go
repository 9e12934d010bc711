// Package detectors - Engine implementations backed by OpenCV DNN and ONNX Runtime.
package detectors

import (
	"image"
	"os"

	"github.com/pkg/errors"

	"github.com/nvr-ai/depthcam/inference"
	"github.com/nvr-ai/depthcam/inference/providers"
)

// Config describes the network to load and where to run it.
type Config struct {
	// Engine selects the runtime.
	Engine inference.EngineType `json:"engine" yaml:"engine"`
	// Model is the topology (.xml IR, .onnx or any OpenCV-readable model).
	Model string `json:"model" yaml:"model"`
	// Weights is the IR weights file (.bin). Empty for single-file models.
	Weights string `json:"weights" yaml:"weights"`
	// Device is the accelerator to run on.
	Device providers.Device `json:"device" yaml:"device"`
	// Provider is the ONNX Runtime execution provider. Ignored by the OpenCV engine.
	Provider providers.ProviderBackend `json:"provider" yaml:"provider"`
	// InputShape overrides the network input size (X = width, Y = height). Zero reads it
	// from the model.
	InputShape image.Point `json:"input_shape" yaml:"input_shape"`
	// MaxDetections sizes dynamic DetectionOutput dimensions for ONNX models.
	MaxDetections int `json:"max_detections" yaml:"max_detections"`
	// Session controls ONNX Runtime threading.
	Session providers.SessionOptions `json:"session" yaml:"session"`
}

// DefaultConfig returns a configuration for an OpenVINO IR on a Neural Compute Stick.
//
// @example
// cfg := DefaultConfig()
// cfg.Model = "IR/frozen_inference_graph.xml"
// engine, err := New(cfg)
func DefaultConfig() Config {
	return Config{
		Engine:        inference.EngineOpenCV,
		Model:         "IR/frozen_inference_graph.xml",
		Weights:       "IR/frozen_inference_graph.bin",
		Device:        providers.DeviceMYRIAD,
		Provider:      providers.OpenVINOProviderBackend,
		MaxDetections: 100,
	}
}

// Validate checks that the configuration names an engine, a device and existing model files.
func (c Config) Validate() error {
	if _, err := inference.ParseEngineType(string(c.Engine)); err != nil {
		return err
	}
	if _, err := providers.ParseDevice(string(c.Device)); err != nil {
		return err
	}
	if c.Model == "" {
		return errors.New("model path is required")
	}
	if _, err := os.Stat(c.Model); err != nil {
		return errors.Wrapf(err, "model %s", c.Model)
	}
	if c.Weights != "" {
		if _, err := os.Stat(c.Weights); err != nil {
			return errors.Wrapf(err, "weights %s", c.Weights)
		}
	}
	if c.InputShape.X < 0 || c.InputShape.Y < 0 {
		return errors.Errorf("invalid input shape %v", c.InputShape)
	}
	if c.MaxDetections < 0 {
		return errors.Errorf("invalid max detections %d", c.MaxDetections)
	}
	return nil
}

// New builds the engine selected by cfg.Engine.
func New(cfg Config) (inference.Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid detector config")
	}

	switch cfg.Engine {
	case inference.EngineONNX:
		return NewONNX(cfg)
	default:
		return NewOpenCV(cfg)
	}
}
