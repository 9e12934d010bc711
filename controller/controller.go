// Package controller - This file contains the detection session that routes frames from the
// source through inference and annotation to the outputs.
package controller

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gocv.io/x/gocv"

	"github.com/nvr-ai/depthcam/annotate"
	"github.com/nvr-ai/depthcam/camera"
	"github.com/nvr-ai/depthcam/depth"
	"github.com/nvr-ai/depthcam/inference"
	"github.com/nvr-ai/depthcam/profiler"
)

const (
	// KeyEscape stops the session.
	KeyEscape = 27
	// KeyTab toggles between sync and async inference.
	KeyTab = 9
	// DefaultToggleDebounce is the pause after a mode switch.
	DefaultToggleDebounce = 100 * time.Millisecond
)

// Output receives annotated frames and reports key presses. *sink.Sink implements it.
type Output interface {
	Show(frame gocv.Mat, dm *depth.Map) error
	Record(frame gocv.Mat) error
	// Key returns the last pressed key, or -1.
	Key() int
	Close() error
}

// Options are the collaborators of a Session.
type Options struct {
	Source    camera.Source
	Engine    inference.Engine
	Annotator *annotate.Annotator
	Output    Output
	Mode      inference.Mode
	Policy    inference.FailurePolicy
	Order     inference.ChannelOrder
	Logger    *zap.SugaredLogger
	Profiler  *profiler.Profiler
	// ToggleDebounce defaults to DefaultToggleDebounce.
	ToggleDebounce time.Duration
}

// Session owns every piece of loop state: the source, the ping-pong client, the annotator
// and the outputs. It is driven from a single goroutine.
type Session struct {
	source    camera.Source
	client    *inference.Client
	pre       *inference.Preprocessor
	annotator *annotate.Annotator
	output    Output
	profiler  *profiler.Profiler
	logger    *zap.SugaredLogger
	debounce  time.Duration
	frames    int
}

// NewSession wires the collaborators together. The source is not started.
//
// Arguments:
// - opts: The session collaborators. Source, Engine, Annotator and Output are required.
//
// Returns:
// - The session.
// - error if a required collaborator is missing.
func NewSession(opts Options) (*Session, error) {
	switch {
	case opts.Source == nil:
		return nil, errors.New("session requires a source")
	case opts.Engine == nil:
		return nil, errors.New("session requires an engine")
	case opts.Annotator == nil:
		return nil, errors.New("session requires an annotator")
	case opts.Output == nil:
		return nil, errors.New("session requires an output")
	}

	if opts.Logger == nil {
		opts.Logger = zap.NewNop().Sugar()
	}
	if opts.Profiler == nil {
		opts.Profiler = profiler.New()
	}
	if opts.ToggleDebounce == 0 {
		opts.ToggleDebounce = DefaultToggleDebounce
	}

	return &Session{
		source: opts.Source,
		client: inference.NewClient(opts.Engine, inference.ClientOptions{
			Mode:   opts.Mode,
			Policy: opts.Policy,
			Logger: opts.Logger,
		}),
		pre:       inference.NewPreprocessor(opts.Engine.InputShape(), opts.Order),
		annotator: opts.Annotator,
		output:    opts.Output,
		profiler:  opts.Profiler,
		logger:    opts.Logger,
		debounce:  opts.ToggleDebounce,
	}, nil
}

// Mode returns the inference mode of the next frame.
func (s *Session) Mode() inference.Mode {
	return s.client.Mode()
}

// Slots returns the ping-pong slot state.
func (s *Session) Slots() inference.PingPong {
	return s.client.Slots()
}

// Frames returns the number of frames processed so far.
func (s *Session) Frames() int {
	return s.frames
}

// Profiler returns the per-stage timings.
func (s *Session) Profiler() *profiler.Profiler {
	return s.profiler
}

// Run starts the source and processes frames until the input ends, Escape is pressed, ctx
// is cancelled or a fatal error occurs. It does not close the session.
func (s *Session) Run(ctx context.Context) error {
	if err := s.source.Start(ctx); err != nil {
		return errors.Wrap(err, "failed to start source")
	}

	s.logger.Info("Start inference ...")
	s.logger.Info("Press Esc/<Ctrl+C> to terminate or Tab to switch async/sync mode.")
	defer s.profiler.Log(s.logger)

	for {
		select {
		case <-ctx.Done():
			s.logger.Infow("Interrupted", "frames", s.frames)
			return nil
		default:
		}

		more, err := s.Step()
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
}

// Step processes one frame.
//
// Returns:
// - false when the loop should stop (end of stream or Escape).
// - error on a fatal source, inference or output failure.
func (s *Session) Step() (bool, error) {
	stop := s.profiler.StartOperation(profiler.StageCapture)
	pair, err := s.source.Poll()
	stop()
	switch {
	case errors.Is(err, camera.ErrNoFrame):
		return true, nil
	case errors.Is(err, camera.ErrEndOfStream):
		s.logger.Infow("End of stream", "frames", s.frames)
		return false, nil
	case err != nil:
		return false, errors.Wrap(err, "failed to read frame")
	}
	defer pair.Close()

	stop = s.profiler.StartOperation(profiler.StagePreprocess)
	input, err := s.pre.FromMat(pair.Color)
	stop()
	if err != nil {
		return false, err
	}

	stop = s.profiler.StartOperation(profiler.StageInference)
	res, err := s.client.Infer(input)
	stop()
	if err != nil {
		return false, err
	}

	stop = s.profiler.StartOperation(profiler.StageAnnotate)
	annotations := s.annotator.Plan(pair.Size(), pair.Depth, res.Detections)
	s.annotator.Draw(&pair.Color, annotations)
	s.annotator.DrawStatus(&pair.Color, annotate.StatusText(res.Mode, res.Elapsed))
	stop()

	s.logger.Debugw("Frame processed",
		"frame", s.frames,
		"mode", res.Mode,
		"detections", len(res.Detections),
		"drawn", len(annotations),
	)
	s.frames++

	stop = s.profiler.StartOperation(profiler.StageSink)
	err = multierr.Append(
		s.output.Show(pair.Color, pair.Depth),
		s.output.Record(pair.Color),
	)
	stop()
	if err != nil {
		return false, errors.Wrap(err, "failed to write frame")
	}

	return !s.HandleKey(s.output.Key()), nil
}

// HandleKey applies a key binding and reports whether the session should stop.
func (s *Session) HandleKey(key int) bool {
	switch key {
	case KeyEscape:
		return true
	case KeyTab:
		mode := s.client.Toggle()
		s.logger.Infof("Switched to %s mode", mode)
		time.Sleep(s.debounce)
	}
	return false
}

// Close stops the source and releases the outputs and the engine.
func (s *Session) Close() error {
	return multierr.Combine(
		s.source.Stop(),
		s.output.Close(),
		s.client.Engine().Close(),
	)
}
