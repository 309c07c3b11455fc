//go:build tinygo && baremetal && (rp2040 || rp2350)

package hal

import (
	"machine"
)

type tinyGoHAL struct {
	logger *uartLogger
	led    *pinLED
	bus    *machine.I2C
	panel  Panel
	flash  Flash
	enc    *irqEncoder
	btn    *irqButton
}

// New returns the controller board HAL (RP2040).
//
// UART: UART0 on GP0 (TX) / GP1 (RX), 115200 8N1.
// I2C: I2C0 on GP4 (SDA) / GP5 (SCL), 400 kHz, shared by the Si5351 and
// the OLED. Encoder A/B on GP10/GP11, push switch on GP12, all pulled up.
func New() HAL {
	uart := machine.UART0
	uart.Configure(machine.UARTConfig{
		BaudRate: 115200,
		TX:       machine.GP0,
		RX:       machine.GP1,
	})
	logger := &uartLogger{uart: uart}

	ledPin := machine.LED
	ledPin.Configure(machine.PinConfig{Mode: machine.PinOutput})

	bus := machine.I2C0
	if err := bus.Configure(machine.I2CConfig{
		Frequency: 400 * machine.KHz,
		SDA:       machine.GP4,
		SCL:       machine.GP5,
	}); err != nil {
		logger.WriteLineString("i2c: " + err.Error())
	}

	return &tinyGoHAL{
		logger: logger,
		led:    &pinLED{pin: ledPin},
		bus:    bus,
		panel:  newPanel(bus),
		flash:  newRP2Flash(),
		enc:    newIRQEncoder(machine.GP10, machine.GP11, logger),
		btn:    newIRQButton(machine.GP12),
	}
}

func (h *tinyGoHAL) Logger() Logger   { return h.logger }
func (h *tinyGoHAL) LED() LED         { return h.led }
func (h *tinyGoHAL) Panel() Panel     { return h.panel }
func (h *tinyGoHAL) Bus() Bus         { return h.bus }
func (h *tinyGoHAL) Flash() Flash     { return h.flash }
func (h *tinyGoHAL) Encoder() Encoder { return h.enc }
func (h *tinyGoHAL) Button() Button   { return h.btn }
