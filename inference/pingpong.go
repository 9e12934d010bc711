package inference

import "fmt"

// PingPong names which request slot is CURRENT (read) and which is NEXT (submitted).
// The zero value is invalid; use NewPingPong.
type PingPong struct {
	current Slot
	next    Slot
}

// NewPingPong returns the initial state: CURRENT is slot 0, NEXT is slot 1.
func NewPingPong() PingPong {
	return PingPong{current: SlotA, next: SlotB}
}

// Current is the slot whose result is read.
func (p PingPong) Current() Slot {
	return p.current
}

// Next is the slot that receives the new frame in async mode.
func (p PingPong) Next() Slot {
	return p.next
}

// Swap exchanges CURRENT and NEXT.
func (p *PingPong) Swap() {
	p.current, p.next = p.next, p.current
}

func (p PingPong) String() string {
	return fmt.Sprintf("current=%d next=%d", p.current, p.next)
}
