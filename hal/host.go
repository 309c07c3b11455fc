//go:build !tinygo && !periph

package hal

import (
	"io"
	"os"

	"xverter/internal/rotary"
)

// HostConfig selects the host resources.
type HostConfig struct {
	FlashPath string
	// Log receives log lines; nil means stdout.
	Log io.Writer
}

type hostHAL struct {
	logger *hostLogger
	led    *hostLED
	panel  *hostPanel
	chip   *virtualSi5351
	flash  Flash
	encA   *virtualPin
	encB   *virtualPin
	btnPin *virtualPin
	enc    *pinEncoder
	btn    *pinButton
}

// New returns a host HAL: a virtual panel, a virtual Si5351 on the bus and a
// file-backed flash image. The encoder and button are virtual pins driven
// by the window or the headless input pump.
func New(cfg HostConfig) HAL {
	return newHostHAL(cfg)
}

func newHostHAL(cfg HostConfig) *hostHAL {
	w := cfg.Log
	if w == nil {
		w = os.Stdout
	}
	logger := &hostLogger{w: w}

	caps := GPIOCapInput | GPIOCapPullUp
	encA := newVirtualPin("ENC_A", caps)
	encB := newVirtualPin("ENC_B", caps)
	btnPin := newVirtualPin("BTN", caps)

	h := &hostHAL{
		logger: logger,
		led:    &hostLED{logger: logger},
		panel:  newHostPanel(),
		chip:   newVirtualSi5351(logger),
		encA:   encA,
		encB:   encB,
		btnPin: btnPin,
	}

	// Virtual pins accept the configuration below, so errors are not possible.
	h.enc, _ = newPinEncoder(encA, encB)
	h.btn, _ = newPinButton(btnPin)
	encA.watch(h.enc.sample)
	encB.watch(h.enc.sample)

	h.flash = noFlash{}
	if cfg.FlashPath != "" {
		if f, err := newHostFlash(cfg.FlashPath); err == nil {
			h.flash = f
		} else {
			logger.WriteLineString(err.Error())
		}
	}
	return h
}

func (h *hostHAL) Logger() Logger   { return h.logger }
func (h *hostHAL) LED() LED         { return h.led }
func (h *hostHAL) Panel() Panel     { return h.panel }
func (h *hostHAL) Bus() Bus         { return h.chip }
func (h *hostHAL) Flash() Flash     { return h.flash }
func (h *hostHAL) Encoder() Encoder { return h.enc }
func (h *hostHAL) Button() Button   { return h.btn }

// turn moves the virtual knob one detent.
func (h *hostHAL) turn(d rotary.Direction) { turnDetent(h.encA, h.encB, d) }

// hold sets the virtual push switch.
func (h *hostHAL) hold(down bool) { h.btnPin.drive(!down) }

func (h *hostHAL) close() {
	if c, ok := h.flash.(io.Closer); ok {
		_ = c.Close()
	}
}
