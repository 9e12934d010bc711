package inference

import (
	"strings"

	"github.com/pkg/errors"
)

// EngineType is the backend used to run the network.
type EngineType string

const (
	// EngineOpenCV runs OpenVINO IR (or any OpenCV DNN model) through gocv.
	EngineOpenCV EngineType = "opencv"
	// EngineONNX runs ONNX models through onnxruntime.
	EngineONNX EngineType = "onnx"
)

// Engines is a list of all supported engines.
var Engines = []EngineType{EngineOpenCV, EngineONNX}

// ParseEngineType validates an engine name.
func ParseEngineType(s string) (EngineType, error) {
	for _, e := range Engines {
		if strings.EqualFold(s, string(e)) {
			return e, nil
		}
	}
	return "", errors.Errorf("unknown engine %q", s)
}
