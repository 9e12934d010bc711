package sink

import (
	"image"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

const (
	// DefaultCodec is the FourCC used for recordings.
	DefaultCodec = "mp4v"
	// DefaultRecordFPS is the playback rate written into recordings.
	DefaultRecordFPS = 10.0
)

// Recorder writes frames of a fixed size to a video file.
type Recorder struct {
	writer *gocv.VideoWriter
	size   image.Point
	path   string
}

// NewRecorder opens path for writing.
//
// Arguments:
// - path: The output file.
// - codec: The FourCC, e.g. "mp4v".
// - fps: The playback rate of the file.
// - size: The frame size of the file (X = width, Y = height).
//
// Returns:
// - The recorder, which must be closed to finalize the file.
// - error if the writer cannot be opened.
func NewRecorder(path, codec string, fps float64, size image.Point) (*Recorder, error) {
	if size.X <= 0 || size.Y <= 0 {
		return nil, errors.Errorf("invalid recording size %v", size)
	}

	writer, err := gocv.VideoWriterFile(path, codec, fps, size.X, size.Y, true)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open video writer %s", path)
	}
	if !writer.IsOpened() {
		writer.Close()
		return nil, errors.Errorf("video writer %s did not open (codec %s)", path, codec)
	}

	return &Recorder{writer: writer, size: size, path: path}, nil
}

// Path is the output file.
func (r *Recorder) Path() string {
	return r.path
}

// Write appends frame, resizing it first when it does not match the file's frame size.
func (r *Recorder) Write(frame gocv.Mat) error {
	if frame.Cols() == r.size.X && frame.Rows() == r.size.Y {
		return r.writer.Write(frame)
	}

	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(frame, &resized, r.size, 0, 0, gocv.InterpolationLinear)

	return r.writer.Write(resized)
}

// Close finalizes the file.
func (r *Recorder) Close() error {
	return r.writer.Close()
}
