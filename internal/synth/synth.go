// Package synth derives output frequencies from shift values and drives the
// clock generator that produces them.
package synth

import "errors"

// Frequencies are in units of 0.01 Hz; shifts are in kHz.
const (
	Reference int64 = 200000
	Scale     int64 = 100000

	// ReferenceOutput is the fixed 200 MHz reference on CLK0.
	ReferenceOutput uint64 = 20_000_000_000

	// CalibrationShift is the shift held on CLK1 while calibrating.
	CalibrationShift int32 = 53600
)

// ShiftFrequency returns (Reference - shift) * Scale.
func ShiftFrequency(shift int32) uint64 {
	return uint64((Reference - int64(shift)) * Scale)
}

// Channel is a clock output.
type Channel uint8

const (
	CLK0 Channel = iota
	CLK1
	CLK2

	channelCount = 3
)

// Drive is the output driver strength.
type Drive uint8

const (
	Drive2mA Drive = iota
	Drive4mA
	Drive6mA
	Drive8mA
)

var (
	ErrFrequencyRange = errors.New("si5351: frequency out of range")
	ErrNotReady       = errors.New("si5351: device not ready")
	ErrChannel        = errors.New("si5351: invalid channel")
)

// Synthesizer is the coarse surface the sessions program.
type Synthesizer interface {
	SetFrequency(ch Channel, centiHz uint64) error
	// SetCorrection applies a crystal trim in parts per billion.
	SetCorrection(ppb int32) error
	EnableOutput(ch Channel, on bool) error
	SetDriveStrength(ch Channel, d Drive) error
}
