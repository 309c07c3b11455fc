package hal

import (
	"errors"

	"tinygo.org/x/drivers"

	"xverter/internal/rotary"
)

// Logger writes newline-delimited log lines.
type Logger interface {
	WriteLineString(s string)
	WriteLineBytes(b []byte)
}

// LED is a minimal output pin abstraction.
type LED interface {
	High()
	Low()
}

var ErrNotImplemented = errors.New("not implemented")

// Panel is the 128x64 monochrome display.
type Panel interface {
	drivers.Displayer
	Configure() error
}

// Bus is the I2C bus shared by the clock generator and the panel.
//
// It is the Tx subset of drivers.I2C, so *machine.I2C and periph i2c.Bus
// both satisfy it.
type Bus interface {
	Tx(addr uint16, w, r []byte) error
}

// Flash is the raw NOR memory the settings block lives in. Erased bytes read
// as Erased, WriteAt may only clear bits (ErrNeedsErase otherwise) and Erase
// takes whole erase blocks.
type Flash interface {
	SizeBytes() uint32
	EraseBlockBytes() uint32
	ReadAt(p []byte, off uint32) (int, error)
	WriteAt(p []byte, off uint32) (int, error)
	Erase(off, size uint32) error
}

// Encoder delivers decoded detents.
//
// The callback may run in interrupt context and must not block or allocate.
type Encoder interface {
	Subscribe(fn func(rotary.Direction))
}

// Button is the encoder push switch.
type Button interface {
	Pressed() bool
}

// HAL is the board: every device the controller touches.
type HAL interface {
	Logger() Logger
	LED() LED
	Panel() Panel
	Bus() Bus
	Flash() Flash
	Encoder() Encoder
	Button() Button
}

// StoreBase returns the offset of the last erase block, where settings live.
func StoreBase(f Flash) uint32 {
	block := f.EraseBlockBytes()
	size := f.SizeBytes()
	if block == 0 || size < block {
		return 0
	}
	return size - block
}
