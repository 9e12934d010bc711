package inference

import (
	"image"
	"strings"

	"github.com/nfnt/resize"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
	"gorgonia.org/tensor"
)

// ChannelOrder is the plane order of the network input.
type ChannelOrder int

const (
	// OrderBGR matches networks trained on OpenCV-decoded images.
	OrderBGR ChannelOrder = iota
	// OrderRGB matches networks trained on RGB images.
	OrderRGB
)

func (o ChannelOrder) String() string {
	if o == OrderRGB {
		return "rgb"
	}
	return "bgr"
}

// ParseChannelOrder converts "bgr" or "rgb" into a ChannelOrder.
func ParseChannelOrder(s string) (ChannelOrder, error) {
	switch strings.ToLower(s) {
	case "", "bgr":
		return OrderBGR, nil
	case "rgb":
		return OrderRGB, nil
	default:
		return OrderBGR, errors.Errorf("unknown channel order %q", s)
	}
}

// Preprocessor turns frames of any size into network input tensors.
type Preprocessor struct {
	// Size is the network input size (X = width, Y = height).
	Size  image.Point
	Order ChannelOrder
}

// NewPreprocessor returns a preprocessor for a network input of the given size.
func NewPreprocessor(size image.Point, order ChannelOrder) *Preprocessor {
	return &Preprocessor{Size: size, Order: order}
}

// Process resizes img bilinearly to the input size and lays it out channel-first.
//
// Values are the raw 0-255 intensities cast to float32, with no mean or scale applied.
//
// Arguments:
// - img: The frame to prepare.
//
// Returns:
// - A float32 tensor of shape (1, 3, H, W).
//
// @example
// p := NewPreprocessor(image.Pt(300, 300), OrderBGR)
// input := p.Process(frame)
func (p *Preprocessor) Process(img image.Image) *tensor.Dense {
	width, height := p.Size.X, p.Size.Y
	resized := resize.Resize(uint(width), uint(height), img, resize.Bilinear)

	channelSize := width * height
	data := make([]float32, 3*channelSize)
	first := data[0:channelSize]
	second := data[channelSize : 2*channelSize]
	third := data[2*channelSize : 3*channelSize]

	bounds := resized.Bounds()
	i := 0
	for y := bounds.Min.Y; y < bounds.Min.Y+height; y++ {
		for x := bounds.Min.X; x < bounds.Min.X+width; x++ {
			r, g, b, _ := resized.At(x, y).RGBA()
			if p.Order == OrderRGB {
				first[i], third[i] = float32(r>>8), float32(b>>8)
			} else {
				first[i], third[i] = float32(b>>8), float32(r>>8)
			}
			second[i] = float32(g >> 8)
			i++
		}
	}

	return tensor.New(
		tensor.WithShape(1, 3, height, width),
		tensor.WithBacking(data),
	)
}

// FromMat converts a BGR Mat and processes it.
func (p *Preprocessor) FromMat(m gocv.Mat) (*tensor.Dense, error) {
	if m.Empty() {
		return nil, errors.New("cannot preprocess an empty frame")
	}

	img, err := m.ToImage()
	if err != nil {
		return nil, errors.Wrap(err, "failed to convert frame")
	}

	return p.Process(img), nil
}

// Float32s returns the backing data of a tensor built by Process.
func Float32s(t *tensor.Dense) ([]float32, error) {
	data, ok := t.Data().([]float32)
	if !ok {
		return nil, errors.Errorf("expected float32 tensor, got %T", t.Data())
	}
	return data, nil
}
