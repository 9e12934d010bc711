// Package depth - 16-bit depth images and distance estimation.
package depth

import (
	"encoding/binary"
	"image"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"

	"github.com/nvr-ai/depthcam/common"
)

// UnitsPerCentimeter is the number of raw depth units in one centimeter. Depth cameras
// streaming Z16 report millimeters.
const UnitsPerCentimeter = 10.0

// ErrSizeMismatch is returned when a raw buffer does not hold width*height samples.
var ErrSizeMismatch = errors.New("depth: buffer size does not match dimensions")

// Map is a row-major depth image with one uint16 distance sample per pixel.
type Map struct {
	width  int
	height int
	data   []uint16
}

// New returns a zeroed depth map of the given size.
func New(width, height int) *Map {
	return &Map{
		width:  width,
		height: height,
		data:   make([]uint16, width*height),
	}
}

// FromBytes decodes little-endian Z16 samples into a depth map.
//
// Arguments:
// - width: The width of the depth image in pixels.
// - height: The height of the depth image in pixels.
// - raw: The raw sample buffer, two bytes per pixel.
//
// Returns:
// - The decoded depth map.
// - ErrSizeMismatch if raw does not hold exactly width*height samples.
func FromBytes(width, height int, raw []byte) (*Map, error) {
	if width <= 0 || height <= 0 || len(raw) != width*height*2 {
		return nil, errors.Wrapf(ErrSizeMismatch, "got %d bytes for %dx%d", len(raw), width, height)
	}

	dm := New(width, height)
	for i := range dm.data {
		dm.data[i] = binary.LittleEndian.Uint16(raw[i*2:])
	}

	return dm, nil
}

// Width returns the number of columns.
func (dm *Map) Width() int {
	return dm.width
}

// Height returns the number of rows.
func (dm *Map) Height() int {
	return dm.height
}

// Bounds returns the pixel rectangle covered by the map.
func (dm *Map) Bounds() image.Rectangle {
	return image.Rect(0, 0, dm.width, dm.height)
}

// At returns the raw sample at (x, y).
func (dm *Map) At(x, y int) uint16 {
	return dm.data[y*dm.width+x]
}

// Set stores a raw sample at (x, y).
func (dm *Map) Set(x, y int, v uint16) {
	dm.data[y*dm.width+x] = v
}

// Bytes encodes the map back into little-endian Z16 samples.
func (dm *Map) Bytes() []byte {
	raw := make([]byte, len(dm.data)*2)
	for i, v := range dm.data {
		binary.LittleEndian.PutUint16(raw[i*2:], v)
	}
	return raw
}

// Mean returns the mean raw sample inside r, clipped to the map bounds.
//
// Zero samples (no return from the sensor) are averaged in like any other value.
//
// Returns:
// - The mean sample value.
// - false if the clipped rectangle is empty.
func (dm *Map) Mean(r image.Rectangle) (float64, bool) {
	r = r.Canon().Intersect(dm.Bounds())
	if r.Empty() {
		return 0, false
	}

	values := make([]float64, 0, r.Dx()*r.Dy())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := dm.data[y*dm.width : (y+1)*dm.width]
		for x := r.Min.X; x < r.Max.X; x++ {
			values = append(values, float64(row[x]))
		}
	}

	return stat.Mean(values, nil), true
}

// MeanCentimeters returns the mean distance in centimeters over a normalized box.
//
// The box is scaled with the depth map's own dimensions, which is the same pixel crop as
// the color frame when both streams are co-registered at one resolution.
//
// Arguments:
// - box: The normalized bounding box.
//
// Returns:
// - The mean distance in centimeters.
// - false when no distance is available (nil map or empty crop).
//
// @example
// cm, ok := dm.MeanCentimeters(det.Box)
func (dm *Map) MeanCentimeters(box common.Box) (float64, bool) {
	if dm == nil {
		return 0, false
	}

	mean, ok := dm.Mean(box.ToRect(image.Pt(dm.width, dm.height)))
	if !ok {
		return 0, false
	}

	return mean / UnitsPerCentimeter, true
}
