// Package inference - Engine contract, two-slot request bookkeeping and the inference client.
package inference

import (
	"image"

	"github.com/pkg/errors"
	"gorgonia.org/tensor"

	"github.com/nvr-ai/depthcam/common"
)

// Slot identifies one of the two request slots an engine keeps.
type Slot int

const (
	// SlotA is the first request slot. Sessions start with it as CURRENT.
	SlotA Slot = 0
	// SlotB is the second request slot. Sessions start with it as NEXT.
	SlotB Slot = 1
	// NumSlots is the number of in-flight requests an engine may hold.
	NumSlots = 2
)

// Other returns the opposite slot.
func (s Slot) Other() Slot {
	return 1 - s
}

// Valid reports whether s names an existing slot.
func (s Slot) Valid() bool {
	return s == SlotA || s == SlotB
}

var (
	// ErrSlotIdle is returned by Wait on a slot that has never been submitted to.
	ErrSlotIdle = errors.New("inference: slot has no request")
	// ErrInvalidSlot is returned for slot indices other than 0 and 1.
	ErrInvalidSlot = errors.New("inference: invalid slot")
	// ErrClosed is returned by engines used after Close.
	ErrClosed = errors.New("inference: engine closed")
)

// Engine runs a detection network with two independent request slots.
//
// Submit starts a request on a slot and may return before the request completes. Wait blocks
// until the request on the slot completes and returns its decoded detections.
//
// Slot semantics shared by every implementation:
//   - Wait on a slot that was never submitted returns ErrSlotIdle.
//   - Wait on a slot whose request already completed returns the same result again.
//   - Submit on a slot with a request still in flight waits for it first.
type Engine interface {
	// InputShape is the network input size (X = width, Y = height).
	InputShape() image.Point
	Submit(slot Slot, input *tensor.Dense) error
	Wait(slot Slot) ([]common.Detection, error)
	Close() error
}
