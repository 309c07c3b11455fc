//go:build tinygo && baremetal && (rp2040 || rp2350)

package hal

import (
	"machine"

	"xverter/internal/rotary"
)

type uartLogger struct {
	uart *machine.UART
}

func (l *uartLogger) WriteLineString(s string) {
	for i := 0; i < len(s); i++ {
		l.uart.WriteByte(s[i])
	}
	l.uart.WriteByte('\r')
	l.uart.WriteByte('\n')
}

func (l *uartLogger) WriteLineBytes(b []byte) {
	for i := 0; i < len(b); i++ {
		l.uart.WriteByte(b[i])
	}
	l.uart.WriteByte('\r')
	l.uart.WriteByte('\n')
}

type pinLED struct {
	pin machine.Pin
}

func (l *pinLED) High() { l.pin.High() }
func (l *pinLED) Low()  { l.pin.Low() }

// irqEncoder decodes the quadrature pair from pin-change interrupts.
type irqEncoder struct {
	a   machine.Pin
	b   machine.Pin
	dec rotary.Decoder
	fn  func(rotary.Direction)
	log Logger
}

func newIRQEncoder(a, b machine.Pin, log Logger) *irqEncoder {
	a.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	b.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	return &irqEncoder{a: a, b: b, log: log}
}

// Subscribe arms the interrupts. Detents before the first call are dropped.
func (e *irqEncoder) Subscribe(fn func(rotary.Direction)) {
	e.fn = fn
	e.dec.Reset()
	isr := func(machine.Pin) {
		if d := e.dec.Process(e.a.Get(), e.b.Get()); d != rotary.None && e.fn != nil {
			e.fn(d)
		}
	}
	for _, p := range []machine.Pin{e.a, e.b} {
		if err := p.SetInterrupt(machine.PinToggle, isr); err != nil {
			e.log.WriteLineString("encoder: " + err.Error())
		}
	}
}

// irqButton is the active-low push switch.
type irqButton struct {
	pin machine.Pin
}

func newIRQButton(pin machine.Pin) *irqButton {
	pin.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	return &irqButton{pin: pin}
}

func (b *irqButton) Pressed() bool { return !b.pin.Get() }
