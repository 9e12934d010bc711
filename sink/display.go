// Package sink - Optional outputs of the detection loop: windows and a video file.
package sink

import (
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"gocv.io/x/gocv"

	"github.com/nvr-ai/depthcam/depth"
)

const (
	// ResultsWindow shows annotated frames.
	ResultsWindow = "Detection Results"
	// DepthWindow shows the false-color depth map.
	DepthWindow = "Depth"
)

// Display shows annotated frames and, optionally, the depth map.
type Display struct {
	results *gocv.Window
	depth   *gocv.Window
}

// NewDisplay opens the results window and, if showDepth is set, the depth window.
func NewDisplay(showDepth bool) *Display {
	d := &Display{results: gocv.NewWindow(ResultsWindow)}
	if showDepth {
		d.depth = gocv.NewWindow(DepthWindow)
	}
	return d
}

// Show displays frame and, when a depth window is open and dm is non-nil, its colorized depth.
func (d *Display) Show(frame gocv.Mat, dm *depth.Map) error {
	d.results.IMShow(frame)

	if d.depth == nil || dm == nil {
		return nil
	}

	colored, err := dm.Colorize(depth.DefaultColorizeAlpha)
	if err != nil {
		return errors.Wrap(err, "failed to colorize depth")
	}
	defer colored.Close()
	d.depth.IMShow(colored)

	return nil
}

// Key pumps the window event loop for 1ms and returns the pressed key, or -1.
func (d *Display) Key() int {
	return d.results.WaitKey(1)
}

// Close destroys the windows.
func (d *Display) Close() error {
	var err error
	if d.depth != nil {
		err = multierr.Append(err, d.depth.Close())
	}
	return multierr.Append(err, d.results.Close())
}
