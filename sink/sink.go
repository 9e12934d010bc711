package sink

import (
	"image"

	"go.uber.org/multierr"
	"gocv.io/x/gocv"

	"github.com/nvr-ai/depthcam/depth"
)

// Options selects the outputs. The zero value disables everything.
type Options struct {
	// GUI opens the results window.
	GUI bool
	// ShowDepth also opens the depth window. Requires GUI.
	ShowDepth bool
	// Output is the recording path. Empty disables recording.
	Output string
	// Size is the recording frame size.
	Size  image.Point
	Codec string
	FPS   float64
}

// Sink fans a frame out to the enabled outputs.
type Sink struct {
	display  *Display
	recorder *Recorder
}

// New opens the outputs selected by opts.
func New(opts Options) (*Sink, error) {
	s := &Sink{}

	if opts.Output != "" {
		codec, fps := opts.Codec, opts.FPS
		if codec == "" {
			codec = DefaultCodec
		}
		if fps <= 0 {
			fps = DefaultRecordFPS
		}
		recorder, err := NewRecorder(opts.Output, codec, fps, opts.Size)
		if err != nil {
			return nil, err
		}
		s.recorder = recorder
	}

	if opts.GUI {
		s.display = NewDisplay(opts.ShowDepth)
	}

	return s, nil
}

// Show displays the frame when a display is enabled.
func (s *Sink) Show(frame gocv.Mat, dm *depth.Map) error {
	if s.display == nil {
		return nil
	}
	return s.display.Show(frame, dm)
}

// Record writes the frame when recording is enabled.
func (s *Sink) Record(frame gocv.Mat) error {
	if s.recorder == nil {
		return nil
	}
	return s.recorder.Write(frame)
}

// Key returns the pressed key, or -1 when there is no display.
func (s *Sink) Key() int {
	if s.display == nil {
		return -1
	}
	return s.display.Key()
}

// Close releases every output and combines their errors.
func (s *Sink) Close() error {
	var err error
	if s.recorder != nil {
		err = multierr.Append(err, s.recorder.Close())
	}
	if s.display != nil {
		err = multierr.Append(err, s.display.Close())
	}
	return err
}
