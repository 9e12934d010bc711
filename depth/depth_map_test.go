package depth

import (
	"encoding/binary"
	"image"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/depthcam/common"
)

func filledMap(width, height int, v uint16) *Map {
	dm := New(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			dm.Set(x, y, v)
		}
	}
	return dm
}

func TestFromBytes(t *testing.T) {
	raw := make([]byte, 2*3*2)
	binary.LittleEndian.PutUint16(raw[0:], 1000)
	binary.LittleEndian.PutUint16(raw[10:], 65535)

	dm, err := FromBytes(3, 2, raw)
	require.NoError(t, err)

	assert.Equal(t, 3, dm.Width())
	assert.Equal(t, 2, dm.Height())
	assert.Equal(t, uint16(1000), dm.At(0, 0))
	assert.Equal(t, uint16(65535), dm.At(2, 1))
	assert.Equal(t, raw, dm.Bytes())
}

func TestFromBytesSizeMismatch(t *testing.T) {
	_, err := FromBytes(4, 4, make([]byte, 31))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSizeMismatch))

	_, err = FromBytes(0, 4, nil)
	assert.True(t, errors.Is(err, ErrSizeMismatch))
}

func TestMean(t *testing.T) {
	dm := New(4, 4)
	// Left half 100, right half 300.
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			if x < 2 {
				dm.Set(x, y, 100)
			} else {
				dm.Set(x, y, 300)
			}
		}
	}

	tests := []struct {
		name   string
		rect   image.Rectangle
		mean   float64
		wantOK bool
	}{
		{name: "left half", rect: image.Rect(0, 0, 2, 4), mean: 100, wantOK: true},
		{name: "whole map", rect: image.Rect(0, 0, 4, 4), mean: 200, wantOK: true},
		{name: "clipped to bounds", rect: image.Rect(-5, -5, 2, 10), mean: 100, wantOK: true},
		{name: "empty", rect: image.Rect(1, 1, 1, 3), wantOK: false},
		{name: "outside", rect: image.Rect(10, 10, 20, 20), wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mean, ok := dm.Mean(tt.rect)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.InDelta(t, tt.mean, mean, 1e-9)
			}
		})
	}
}

func TestMeanCentimeters(t *testing.T) {
	dm := filledMap(10, 10, 1234)

	cm, ok := dm.MeanCentimeters(common.Box{XMin: 0.2, YMin: 0.2, XMax: 0.4, YMax: 0.4})
	require.True(t, ok)
	assert.InDelta(t, 123.4, cm, 1e-9)

	_, ok = dm.MeanCentimeters(common.Box{XMin: 0.5, YMin: 0.5, XMax: 0.5, YMax: 0.9})
	assert.False(t, ok, "zero-width crop has no distance")

	var missing *Map
	_, ok = missing.MeanCentimeters(common.Box{XMax: 1, YMax: 1})
	assert.False(t, ok, "nil map has no distance")
}

func TestColorize(t *testing.T) {
	dm := filledMap(8, 6, 4000)

	colored, err := dm.Colorize(DefaultColorizeAlpha)
	require.NoError(t, err)
	defer colored.Close()

	assert.Equal(t, 6, colored.Rows())
	assert.Equal(t, 8, colored.Cols())
	assert.Equal(t, 3, colored.Channels())
}
