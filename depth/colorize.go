package depth

import (
	"runtime"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// DefaultColorizeAlpha scales raw samples before they saturate to 8 bits, so that roughly
// 0-8.5m of Z16 depth spans the full color map.
const DefaultColorizeAlpha = 0.03

// ToMat copies the map into a single-channel 16-bit Mat. The caller owns the returned Mat.
func (dm *Map) ToMat() (gocv.Mat, error) {
	raw := dm.Bytes()
	view, err := gocv.NewMatFromBytes(dm.height, dm.width, gocv.MatTypeCV16UC1, raw)
	if err != nil {
		return gocv.NewMat(), errors.Wrap(err, "failed to wrap depth samples")
	}
	defer view.Close()

	// view aliases raw; clone before raw can be collected.
	out := view.Clone()
	runtime.KeepAlive(raw)

	return out, nil
}

// Colorize renders the map as a false-color BGR image using the JET color map.
//
// Arguments:
// - alpha: Scale applied to raw samples before saturating to 8 bits.
//
// Returns:
// - A 3-channel Mat owned by the caller.
// - error if the samples could not be copied into a Mat.
func (dm *Map) Colorize(alpha float64) (gocv.Mat, error) {
	src, err := dm.ToMat()
	if err != nil {
		return gocv.NewMat(), err
	}
	defer src.Close()

	scaled := gocv.NewMat()
	defer scaled.Close()
	gocv.ConvertScaleAbs(src, &scaled, alpha, 0)

	colored := gocv.NewMat()
	gocv.ApplyColorMap(scaled, &colored, gocv.ColormapJet)

	return colored, nil
}
