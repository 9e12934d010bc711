package annotate

import (
	"fmt"
	"time"

	"github.com/chewxy/math32"

	"github.com/nvr-ai/depthcam/inference"
)

// NoDistance is rendered when a detection has no depth estimate.
const NoDistance = "Nan"

// Percent converts a confidence to a percentage rounded to one decimal place.
func Percent(confidence float32) float32 {
	return math32.Round(confidence*1000) / 10
}

// Distance formats a distance in centimeters, or NoDistance when ok is false.
func Distance(cm float64, ok bool) string {
	if !ok {
		return NoDistance
	}
	return fmt.Sprintf("%.1f(cm)", cm)
}

// Caption renders "<label>: <percent>%, <distance>".
//
// @example
// Caption("person", 0.8765, "123.4(cm)") // "person: 87.7%, 123.4(cm)"
func Caption(label string, confidence float32, distance string) string {
	return fmt.Sprintf("%s: %.1f%%, %s", label, Percent(confidence), distance)
}

// StatusText is the inference-time line drawn on every frame.
func StatusText(mode inference.Mode, elapsed time.Duration) string {
	if mode == inference.ModeAsync {
		return "Inference time: N\\A for async mode"
	}
	return fmt.Sprintf("Inference time: %.3f ms", float64(elapsed)/float64(time.Millisecond))
}
