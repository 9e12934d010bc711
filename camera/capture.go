package camera

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// SupportedVideoExtensions are the file types accepted for file inputs.
var SupportedVideoExtensions = []string{".mp4", ".avi", ".mov", ".mkv"}

// Capture reads color-only frames from a video file or a capture device.
type Capture struct {
	cfg Config
	vc  *gocv.VideoCapture
}

// NewCapture returns an unstarted capture source.
func NewCapture(cfg Config) *Capture {
	return &Capture{cfg: cfg}
}

// Start opens the file or device. Devices are asked for the configured resolution and rate.
func (c *Capture) Start(_ context.Context) error {
	switch c.cfg.Kind {
	case KindFile:
		if err := validateFile(c.cfg.Input, SupportedVideoExtensions); err != nil {
			return errors.Wrap(err, "video validation error")
		}
		vc, err := gocv.OpenVideoCapture(c.cfg.Input)
		if err != nil {
			return errors.Wrapf(err, "error opening video file %s", c.cfg.Input)
		}
		c.vc = vc
	case KindCamera:
		id, err := parseDevice(c.cfg.Input)
		if err != nil {
			return err
		}
		vc, err := gocv.OpenVideoCapture(id)
		if err != nil {
			return errors.Wrapf(err, "error opening video capture device %v", c.cfg.Input)
		}
		vc.Set(gocv.VideoCaptureFrameWidth, float64(c.cfg.Width))
		vc.Set(gocv.VideoCaptureFrameHeight, float64(c.cfg.Height))
		vc.Set(gocv.VideoCaptureFPS, float64(c.cfg.FPS))
		c.vc = vc
	default:
		return errors.Errorf("capture cannot read %s inputs", c.cfg.Kind)
	}

	return nil
}

// Poll reads the next frame. Files report ErrEndOfStream once exhausted.
func (c *Capture) Poll() (*FramePair, error) {
	if c.vc == nil {
		return nil, errors.New("capture not started")
	}

	frame := gocv.NewMat()
	if ok := c.vc.Read(&frame); !ok {
		frame.Close()
		if c.cfg.Kind == KindFile {
			return nil, ErrEndOfStream
		}
		return nil, errors.Wrapf(ErrNoFrame, "cannot read device %v", c.cfg.Input)
	}
	if frame.Empty() {
		frame.Close()
		return nil, ErrNoFrame
	}

	return &FramePair{Color: frame, Timestamp: time.Now()}, nil
}

// Stop releases the file or device.
func (c *Capture) Stop() error {
	if c.vc == nil {
		return nil
	}
	err := c.vc.Close()
	c.vc = nil
	return err
}

// parseDevice accepts a numeric index or a device path.
func parseDevice(s string) (interface{}, error) {
	if s == "" {
		return nil, errors.New("device is required")
	}
	if id, err := strconv.Atoi(s); err == nil {
		if id < 0 {
			return nil, errors.Errorf("invalid device index %d", id)
		}
		return id, nil
	}
	return s, nil
}

func validateFile(filePath string, supportedExtensions []string) error {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return errors.Errorf("file not found: %s", filePath)
	}

	ext := strings.ToLower(filepath.Ext(filePath))
	for _, supportedExt := range supportedExtensions {
		if ext == supportedExt {
			return nil
		}
	}

	return errors.Errorf("unsupported file extension: %s. Supported extensions: %v", ext, supportedExtensions)
}
