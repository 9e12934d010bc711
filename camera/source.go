// Package camera - Frame sources: depth cameras, webcams and video files.
package camera

import (
	"context"
	"image"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"github.com/nvr-ai/depthcam/depth"
)

var (
	// ErrNoFrame is a transient condition: the caller should poll again.
	ErrNoFrame = errors.New("camera: no frame available")
	// ErrEndOfStream means the input is exhausted.
	ErrEndOfStream = errors.New("camera: end of stream")
)

// Kind names an input type.
type Kind string

const (
	// KindFile reads a video file.
	KindFile Kind = "file"
	// KindCamera reads a color-only capture device.
	KindCamera Kind = "camera"
	// KindRealSense reads a depth camera's color and Z16 depth nodes.
	KindRealSense Kind = "realsense"
)

// Kinds lists the supported input types.
var Kinds = []Kind{KindFile, KindCamera, KindRealSense}

// ParseKind validates an input type name.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if strings.EqualFold(s, string(k)) {
			return k, nil
		}
	}
	return "", errors.Errorf("unsupported input type %q, expected one of %v", s, Kinds)
}

// FramePair is one color frame and, for depth sources, the co-registered depth map.
type FramePair struct {
	// Color is an 8-bit BGR frame owned by the pair.
	Color gocv.Mat
	// Depth is nil for color-only sources.
	Depth     *depth.Map
	Timestamp time.Time
}

// Size returns the color frame size.
func (p *FramePair) Size() image.Point {
	return image.Pt(p.Color.Cols(), p.Color.Rows())
}

// Close releases the color frame.
func (p *FramePair) Close() error {
	if p == nil {
		return nil
	}
	return p.Color.Close()
}

// Source produces frame pairs.
//
// Poll blocks until a frame is available. It returns ErrNoFrame when the driver produced
// nothing usable this time and ErrEndOfStream when the input is exhausted.
type Source interface {
	Start(ctx context.Context) error
	Poll() (*FramePair, error)
	Stop() error
}

// Config selects and configures a source.
type Config struct {
	Kind Kind `json:"kind" yaml:"kind"`
	// Input is a file path (file), a device index (camera) or the color node (realsense).
	Input string `json:"input" yaml:"input"`
	// DepthInput is the depth node for realsense sources.
	DepthInput string `json:"depth_input" yaml:"depth_input"`
	Width      int    `json:"width" yaml:"width"`
	Height     int    `json:"height" yaml:"height"`
	FPS        int    `json:"fps" yaml:"fps"`
}

// DefaultConfig reads sample.mp4 at 1280x720, 30 frames per second.
func DefaultConfig() Config {
	return Config{
		Kind:   KindFile,
		Input:  "sample.mp4",
		Width:  1280,
		Height: 720,
		FPS:    30,
	}
}

// Validate checks the kind and stream geometry.
func (c Config) Validate() error {
	if _, err := ParseKind(string(c.Kind)); err != nil {
		return err
	}
	if c.Input == "" {
		return errors.New("input is required")
	}
	if c.Kind == KindRealSense && c.DepthInput == "" {
		return errors.New("depth input is required for realsense sources")
	}
	if c.Width <= 0 || c.Height <= 0 {
		return errors.Errorf("invalid resolution %dx%d", c.Width, c.Height)
	}
	if c.FPS <= 0 {
		return errors.Errorf("invalid frame rate %d", c.FPS)
	}
	return nil
}

// New returns an unstarted source for cfg.Kind.
func New(cfg Config) (Source, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid source config")
	}

	if cfg.Kind == KindRealSense {
		return NewRealSense(cfg), nil
	}
	return NewCapture(cfg), nil
}
