// Package common - Types shared by the inference, annotation and control packages.
package common

import (
	"fmt"
	"image"
)

// Box is a bounding box expressed as fractions (0-1) of the image width and height.
type Box struct {
	XMin, YMin, XMax, YMax float32
}

// Detection is a single object reported by the inference engine for one frame.
type Detection struct {
	// ClassID is the integer class index emitted by the network.
	ClassID int
	// Confidence is the class probability in [0, 1].
	Confidence float32
	// Box is the normalized bounding box.
	Box Box
}

func (d Detection) String() string {
	return fmt.Sprintf("Object %d (confidence %f): (%f, %f), (%f, %f)",
		d.ClassID, d.Confidence, d.Box.XMin, d.Box.YMin, d.Box.XMax, d.Box.YMax)
}

// Width returns the box width as a fraction of the image width.
func (b Box) Width() float32 {
	return b.XMax - b.XMin
}

// Height returns the box height as a fraction of the image height.
func (b Box) Height() float32 {
	return b.YMax - b.YMin
}

// ToRect scales the box to pixel coordinates of an image with the given size.
//
// Coordinates are truncated toward zero, so a box touching the right or bottom edge
// maps onto the last pixel boundary rather than past it.
//
// Arguments:
// - size: The image size in pixels (X = width, Y = height).
//
// Returns:
// - The pixel rectangle. It is not clipped to the image bounds.
//
// @example
// box := Box{XMin: 0.1, YMin: 0.1, XMax: 0.5, YMax: 0.5}
// rect := box.ToRect(image.Pt(100, 200)) // (10,20)-(50,100)
func (b Box) ToRect(size image.Point) image.Rectangle {
	return image.Rectangle{
		Min: image.Point{X: int(b.XMin * float32(size.X)), Y: int(b.YMin * float32(size.Y))},
		Max: image.Point{X: int(b.XMax * float32(size.X)), Y: int(b.YMax * float32(size.Y))},
	}
}
