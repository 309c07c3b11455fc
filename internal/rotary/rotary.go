// Package rotary decodes a mechanical quadrature encoder into detents.
package rotary

// Direction is the decoded result of one pin change.
type Direction int8

const (
	None Direction = 0
	CW   Direction = 1
	CCW  Direction = -1
)

func (d Direction) String() string {
	switch d {
	case CW:
		return "cw"
	case CCW:
		return "ccw"
	default:
		return "none"
	}
}

// Full-step states. The emit flags live in the upper bits so a table entry
// carries both the next state and the detent that completed.
const (
	stateStart uint8 = iota
	stateCWFinal
	stateCWBegin
	stateCWNext
	stateCCWBegin
	stateCCWFinal
	stateCCWNext

	emitCW  uint8 = 0x10
	emitCCW uint8 = 0x20
)

// Indexed by [state][b<<1|a].
var table = [7][4]uint8{
	stateStart:    {stateStart, stateCWBegin, stateCCWBegin, stateStart},
	stateCWFinal:  {stateCWNext, stateStart, stateCWFinal, stateStart | emitCW},
	stateCWBegin:  {stateCWNext, stateCWBegin, stateStart, stateStart},
	stateCWNext:   {stateCWNext, stateCWBegin, stateCWFinal, stateStart},
	stateCCWBegin: {stateCCWNext, stateStart, stateCCWBegin, stateStart},
	stateCCWFinal: {stateCCWNext, stateCCWFinal, stateStart, stateStart | emitCCW},
	stateCCWNext:  {stateCCWNext, stateCCWFinal, stateCCWBegin, stateStart},
}

// Decoder tracks the quadrature phase between pin changes.
//
// A detent is reported only once both pins return to the released (high)
// state, so contact bounce inside a detent never produces a tick.
type Decoder struct {
	state uint8
}

// Process feeds the current pin levels and returns the detent completed by
// this change, if any. It is safe to call from interrupt context.
func (d *Decoder) Process(a, b bool) Direction {
	var pins uint8
	if a {
		pins |= 1
	}
	if b {
		pins |= 2
	}
	d.state = table[d.state&0x0F][pins]
	switch d.state & (emitCW | emitCCW) {
	case emitCW:
		return CW
	case emitCCW:
		return CCW
	default:
		return None
	}
}

// Reset returns the decoder to the idle phase.
func (d *Decoder) Reset() { d.state = stateStart }
