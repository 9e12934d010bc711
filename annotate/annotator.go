package annotate

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/nvr-ai/depthcam/common"
	"github.com/nvr-ai/depthcam/depth"
	"github.com/nvr-ai/depthcam/labels"
)

// Annotation is everything needed to draw one detection.
type Annotation struct {
	Detection common.Detection
	Label     string
	// Rect is the box in frame pixels.
	Rect image.Rectangle
	// Distance is the mean depth over Rect in centimeters. Valid when HasDistance is set.
	Distance    float64
	HasDistance bool
	Caption     string
}

// Style holds drawing parameters.
type Style struct {
	BoxColor      color.RGBA
	TextColor     color.RGBA
	StatusColor   color.RGBA
	Font          gocv.HersheyFont
	FontScale     float64
	FontThickness int
	BoxThickness  int
	// LabelOffset is the gap in pixels between the caption baseline and the box top.
	LabelOffset int
	// StatusOrigin is where the inference-time line starts.
	StatusOrigin image.Point
	StatusScale  float64
}

// DefaultStyle draws green boxes with red captions on a green label background.
func DefaultStyle() Style {
	return Style{
		BoxColor:      color.RGBA{R: 0, G: 255, B: 0, A: 0},
		TextColor:     color.RGBA{R: 255, G: 0, B: 0, A: 0},
		StatusColor:   color.RGBA{R: 0, G: 255, B: 0, A: 0},
		Font:          gocv.FontHersheyDuplex,
		FontScale:     0.8,
		FontThickness: 1,
		BoxThickness:  2,
		LabelOffset:   7,
		StatusOrigin:  image.Pt(10, 30),
		StatusScale:   1,
	}
}

// Annotator turns detections into drawn overlays.
type Annotator struct {
	Labels *labels.Map
	Filter Filter
	Style  Style
}

// New returns an annotator with the default style.
func New(labelMap *labels.Map, filter Filter) *Annotator {
	return &Annotator{Labels: labelMap, Filter: filter, Style: DefaultStyle()}
}

// Plan filters detections and computes pixel boxes, distances and captions.
//
// Arguments:
// - frameSize: The color frame size in pixels (X = width, Y = height).
// - dm: The co-registered depth map, or nil when the source has no depth.
// - detections: The decoded detections for the frame.
//
// Returns:
// - One Annotation per detection that passes the filter, in input order.
func (a *Annotator) Plan(frameSize image.Point, dm *depth.Map, detections []common.Detection) []Annotation {
	kept := a.Filter.Apply(detections)
	out := make([]Annotation, 0, len(kept))

	for _, d := range kept {
		cm, ok := dm.MeanCentimeters(d.Box)
		label := a.Labels.Name(d.ClassID)
		out = append(out, Annotation{
			Detection:   d,
			Label:       label,
			Rect:        d.Box.ToRect(frameSize),
			Distance:    cm,
			HasDistance: ok,
			Caption:     Caption(label, d.Confidence, Distance(cm, ok)),
		})
	}

	return out
}

// Draw renders annotations onto frame: the box, a filled label background above its
// top-left corner, and the caption.
func (a *Annotator) Draw(frame *gocv.Mat, annotations []Annotation) {
	s := a.Style
	for _, ann := range annotations {
		r := ann.Rect
		size := gocv.GetTextSize(ann.Caption, s.Font, s.FontScale, s.FontThickness)

		gocv.Rectangle(frame, r, s.BoxColor, s.BoxThickness)
		background := image.Rect(r.Min.X, r.Min.Y, r.Min.X+size.X, r.Min.Y-size.Y-s.LabelOffset)
		gocv.Rectangle(frame, background, s.BoxColor, -1)
		gocv.PutText(frame, ann.Caption, image.Pt(r.Min.X, r.Min.Y-s.LabelOffset),
			s.Font, s.FontScale, s.TextColor, s.FontThickness)
	}
}

// DrawStatus renders the inference-time line.
func (a *Annotator) DrawStatus(frame *gocv.Mat, text string) {
	s := a.Style
	gocv.PutText(frame, text, s.StatusOrigin, s.Font, s.StatusScale, s.StatusColor, 1)
}
