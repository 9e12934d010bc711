// Package annotate - Detection filtering, captions and frame overlays.
package annotate

import (
	"github.com/samber/lo"

	"github.com/nvr-ai/depthcam/common"
)

// DefaultMaxFraction rejects boxes spanning half the frame or more in either dimension.
const DefaultMaxFraction float32 = 0.5

// Filter keeps detections that are confident enough and not too large.
type Filter struct {
	// Threshold is the exclusive lower bound on confidence.
	Threshold float32
	// MaxFraction is the exclusive upper bound on box width and height as frame fractions.
	MaxFraction float32
}

// NewFilter returns a filter with the default size limit.
func NewFilter(threshold float32) Filter {
	return Filter{Threshold: threshold, MaxFraction: DefaultMaxFraction}
}

// Keep reports whether d passes both the confidence and the size test.
func (f Filter) Keep(d common.Detection) bool {
	return d.Confidence > f.Threshold &&
		d.Box.Width() < f.MaxFraction &&
		d.Box.Height() < f.MaxFraction
}

// Apply returns the detections that pass, in their original order.
func (f Filter) Apply(detections []common.Detection) []common.Detection {
	return lo.Filter(detections, func(d common.Detection, _ int) bool {
		return f.Keep(d)
	})
}
