package controller

import (
	"image"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/nvr-ai/depthcam/annotate"
	"github.com/nvr-ai/depthcam/camera"
	"github.com/nvr-ai/depthcam/inference"
	"github.com/nvr-ai/depthcam/inference/detectors"
	"github.com/nvr-ai/depthcam/labels"
	"github.com/nvr-ai/depthcam/sink"
)

// Build opens every resource named by cfg and returns a ready session. On error, resources
// opened so far are released.
//
// Arguments:
// - cfg: The session configuration.
// - logger: The logger for the session and its client.
//
// Returns:
// - The session. The caller owns it and must Close it.
// - error if the configuration is invalid or a resource cannot be opened.
func Build(cfg Config, logger *zap.SugaredLogger) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	// Parse errors are impossible after Validate.
	mode, _ := inference.ParseMode(cfg.Mode)
	policy, _ := inference.ParseFailurePolicy(cfg.OnError)
	order, _ := inference.ParseChannelOrder(cfg.ChannelOrder)

	labelMap, err := labels.Load(cfg.Labels)
	if err != nil {
		return nil, err
	}

	source, err := camera.New(cfg.Source)
	if err != nil {
		return nil, err
	}

	engine, err := detectors.New(cfg.Detector)
	if err != nil {
		return nil, err
	}

	output, err := sink.New(sink.Options{
		GUI:       cfg.GUI,
		ShowDepth: cfg.ShowDepth,
		Output:    cfg.Output,
		Size:      image.Pt(cfg.Source.Width, cfg.Source.Height),
	})
	if err != nil {
		_ = engine.Close()
		return nil, err
	}

	logger.Infow("Session configured",
		"input_type", cfg.Source.Kind,
		"input", cfg.Source.Input,
		"engine", cfg.Detector.Engine,
		"model", cfg.Detector.Model,
		"device", cfg.Detector.Device,
		"input_shape", engine.InputShape(),
		"labels", labelMap.Len(),
		"threshold", cfg.Threshold,
		"mode", mode,
		"on_error", policy,
		"output", cfg.Output,
	)

	return NewSession(Options{
		Source:    source,
		Engine:    engine,
		Annotator: annotate.New(labelMap, annotate.NewFilter(cfg.Threshold)),
		Output:    output,
		Mode:      mode,
		Policy:    policy,
		Order:     order,
		Logger:    logger,
	})
}
