package sink

import (
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func TestSinkDisabled(t *testing.T) {
	s, err := New(Options{})
	require.NoError(t, err)

	frame := gocv.NewMatWithSize(10, 10, gocv.MatTypeCV8UC3)
	defer frame.Close()

	assert.NoError(t, s.Show(frame, nil))
	assert.NoError(t, s.Record(frame))
	assert.Equal(t, -1, s.Key())
	assert.NoError(t, s.Close())
}

func TestRecorderInvalidSize(t *testing.T) {
	_, err := NewRecorder(filepath.Join(t.TempDir(), "out.avi"), "MJPG", 10, image.Point{})
	assert.Error(t, err)
}

func TestRecorderResizesFrames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.avi")

	s, err := New(Options{Output: path, Size: image.Pt(64, 48), Codec: "MJPG"})
	require.NoError(t, err)

	matching := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 255, 0, 0), 48, 64, gocv.MatTypeCV8UC3)
	defer matching.Close()
	larger := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 255, 0), 96, 128, gocv.MatTypeCV8UC3)
	defer larger.Close()

	require.NoError(t, s.Record(matching))
	require.NoError(t, s.Record(larger))
	require.NoError(t, s.Close())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	vc, err := gocv.OpenVideoCapture(path)
	require.NoError(t, err)
	defer vc.Close()

	frame := gocv.NewMat()
	defer frame.Close()
	frames := 0
	for vc.Read(&frame) && !frame.Empty() {
		assert.Equal(t, 64, frame.Cols())
		assert.Equal(t, 48, frame.Rows())
		frames++
	}
	assert.Equal(t, 2, frames)
}
