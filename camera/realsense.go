package camera

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"gocv.io/x/gocv"

	"github.com/nvr-ai/depthcam/depth"
)

// DepthFourCC is the V4L2 pixel format of 16-bit little-endian depth.
const DepthFourCC = "Z16 "

// RealSense reads an Intel RealSense camera through its two V4L2 nodes: the color node and
// the Z16 depth node. Both streams run at the same resolution and rate.
type RealSense struct {
	cfg   Config
	color *gocv.VideoCapture
	depth *gocv.VideoCapture
	raw   gocv.Mat
}

// NewRealSense returns an unstarted depth camera source.
func NewRealSense(cfg Config) *RealSense {
	return &RealSense{cfg: cfg}
}

// Start opens and configures both nodes.
func (r *RealSense) Start(_ context.Context) error {
	color, err := r.open(r.cfg.Input)
	if err != nil {
		return errors.Wrap(err, "color stream")
	}

	depthCap, err := r.open(r.cfg.DepthInput)
	if err != nil {
		color.Close()
		return errors.Wrap(err, "depth stream")
	}
	// Deliver the raw Z16 buffer instead of a converted BGR image.
	depthCap.Set(gocv.VideoCaptureFOURCC, depthCap.ToCodec(DepthFourCC))
	depthCap.Set(gocv.VideoCaptureConvertRGB, 0)

	r.color = color
	r.depth = depthCap
	r.raw = gocv.NewMat()

	return nil
}

func (r *RealSense) open(input string) (*gocv.VideoCapture, error) {
	device, err := parseDevice(input)
	if err != nil {
		return nil, err
	}

	vc, err := gocv.OpenVideoCaptureWithAPI(device, gocv.VideoCaptureV4L2)
	if err != nil {
		return nil, errors.Wrapf(err, "error opening %v", input)
	}

	vc.Set(gocv.VideoCaptureFrameWidth, float64(r.cfg.Width))
	vc.Set(gocv.VideoCaptureFrameHeight, float64(r.cfg.Height))
	vc.Set(gocv.VideoCaptureFPS, float64(r.cfg.FPS))

	return vc, nil
}

// Poll reads one color frame and one depth frame.
//
// ErrNoFrame is returned when either stream yields nothing or the depth buffer does not
// match the configured resolution.
func (r *RealSense) Poll() (*FramePair, error) {
	if r.color == nil || r.depth == nil {
		return nil, errors.New("realsense not started")
	}

	frame := gocv.NewMat()
	if ok := r.color.Read(&frame); !ok || frame.Empty() {
		frame.Close()
		return nil, errors.Wrap(ErrNoFrame, "color")
	}

	if ok := r.depth.Read(&r.raw); !ok || r.raw.Empty() {
		frame.Close()
		return nil, errors.Wrap(ErrNoFrame, "depth")
	}

	dm, err := depth.FromBytes(r.cfg.Width, r.cfg.Height, r.raw.ToBytes())
	if err != nil {
		frame.Close()
		return nil, errors.Wrap(ErrNoFrame, err.Error())
	}

	return &FramePair{Color: frame, Depth: dm, Timestamp: time.Now()}, nil
}

// Stop releases both nodes.
func (r *RealSense) Stop() error {
	var err error
	if r.color != nil {
		err = multierr.Append(err, r.color.Close())
		r.color = nil
	}
	if r.depth != nil {
		err = multierr.Append(err, r.depth.Close())
		err = multierr.Append(err, r.raw.Close())
		r.depth = nil
	}
	return err
}
