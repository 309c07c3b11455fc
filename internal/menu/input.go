package menu

import (
	"sync/atomic"

	"xverter/internal/rotary"
)

// Input hands encoder detents from interrupt context to the control loop.
//
// The whole handoff is one 64-bit word: the low half is the net signed delta,
// the high half counts events. Publish folds a detent in with compare-and-swap
// and Drain swaps the word to zero, so a burst landing between two drains is
// applied exactly once and never torn across the two halves.
type Input struct {
	_    [0]func() // prevent accidental copying.
	word atomic.Uint64
}

// Publish records one detent. It never blocks and is safe from an interrupt
// handler.
func (in *Input) Publish(d rotary.Direction) {
	if d == rotary.None {
		return
	}
	for {
		old := in.word.Load()
		delta, events := unpack(old)
		if in.word.CompareAndSwap(old, pack(delta+int32(d), events+1)) {
			return
		}
	}
}

// Drain returns everything published since the previous drain.
func (in *Input) Drain() (delta int32, events uint32) {
	return unpack(in.word.Swap(0))
}

// Pending reports whether a detent is waiting without consuming it.
func (in *Input) Pending() bool { return in.word.Load() != 0 }

func pack(delta int32, events uint32) uint64 {
	return uint64(events)<<32 | uint64(uint32(delta))
}

func unpack(w uint64) (int32, uint32) {
	return int32(uint32(w)), uint32(w >> 32)
}
