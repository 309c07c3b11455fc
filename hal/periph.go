//go:build !tinygo && periph

package hal

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"sync"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"
)

// PeriphConfig names the Linux board resources. Pin names are gpioreg
// names, e.g. "GPIO17".
type PeriphConfig struct {
	Bus       string
	BusKHz    int
	EncA      string
	EncB      string
	Button    string
	LED       string
	FlashPath string
}

// PeriphHAL runs the controller on a Linux SBC through periph.io.
type PeriphHAL struct {
	logger *hostLogger
	led    LED
	bus    i2c.BusCloser
	panel  *periphPanel
	flash  Flash
	enc    *pinEncoder
	btn    *pinButton

	stop chan struct{}
	wg   sync.WaitGroup
}

// NewPeriph initializes periph.io and opens the bus and pins.
func NewPeriph(cfg PeriphConfig) (*PeriphHAL, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph: init: %w", err)
	}
	logger := &hostLogger{w: os.Stdout}

	bus, err := i2creg.Open(cfg.Bus)
	if err != nil {
		return nil, fmt.Errorf("periph: open i2c %q: %w", cfg.Bus, err)
	}
	if cfg.BusKHz > 0 {
		if err := bus.SetSpeed(physic.Frequency(cfg.BusKHz) * physic.KiloHertz); err != nil {
			logger.WriteLineString(fmt.Sprintf("periph: i2c speed: %v", err))
		}
	}

	h := &PeriphHAL{
		logger: logger,
		led:    &hostLED{logger: logger},
		bus:    bus,
		panel:  &periphPanel{bus: bus},
		flash:  noFlash{},
		stop:   make(chan struct{}),
	}
	fail := func(err error) (*PeriphHAL, error) {
		_ = h.Close()
		return nil, err
	}

	a, err := periphPinByName(cfg.EncA)
	if err != nil {
		return fail(err)
	}
	b, err := periphPinByName(cfg.EncB)
	if err != nil {
		return fail(err)
	}
	if h.enc, err = newPinEncoder(a, b); err != nil {
		return fail(err)
	}
	btn, err := periphPinByName(cfg.Button)
	if err != nil {
		return fail(err)
	}
	if h.btn, err = newPinButton(btn); err != nil {
		return fail(err)
	}
	if cfg.LED != "" {
		if p, err := periphPinByName(cfg.LED); err == nil {
			if led, err := newGPIOLED(p); err == nil {
				h.led = led
			}
		}
	}
	if cfg.FlashPath != "" {
		if f, err := newHostFlash(cfg.FlashPath); err == nil {
			h.flash = f
		} else {
			logger.WriteLineString(err.Error())
		}
	}

	h.watch(a)
	h.watch(b)
	return h, nil
}

// watch samples the encoder on every edge of p until Close.
func (h *PeriphHAL) watch(p *periphPin) {
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		for {
			select {
			case <-h.stop:
				return
			default:
			}
			if p.pin.WaitForEdge(100 * time.Millisecond) {
				h.enc.sample()
			}
		}
	}()
}

func (h *PeriphHAL) Logger() Logger   { return h.logger }
func (h *PeriphHAL) LED() LED         { return h.led }
func (h *PeriphHAL) Panel() Panel     { return h.panel }
func (h *PeriphHAL) Bus() Bus         { return h.bus }
func (h *PeriphHAL) Flash() Flash     { return h.flash }
func (h *PeriphHAL) Encoder() Encoder { return h.enc }
func (h *PeriphHAL) Button() Button   { return h.btn }

// Close stops the edge watchers and releases the bus and flash image.
func (h *PeriphHAL) Close() error {
	select {
	case <-h.stop:
	default:
		close(h.stop)
	}
	h.wg.Wait()
	if c, ok := h.flash.(interface{ Close() error }); ok {
		_ = c.Close()
	}
	return h.bus.Close()
}

// periphPin adapts a periph pin to GPIOPin.
type periphPin struct {
	pin gpio.PinIO
}

func periphPinByName(name string) (*periphPin, error) {
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("gpio: pin %s: not found", name)
	}
	return &periphPin{pin: p}, nil
}

func (p *periphPin) Name() string { return p.pin.Name() }

func (p *periphPin) Caps() GPIOCaps {
	return GPIOCapInput | GPIOCapOutput | GPIOCapPullUp | GPIOCapPullDown
}

func (p *periphPin) Configure(mode GPIOMode, pull GPIOPull) error {
	switch mode {
	case GPIOModeInput:
		pp := gpio.Float
		switch pull {
		case GPIOPullUp:
			pp = gpio.PullUp
		case GPIOPullDown:
			pp = gpio.PullDown
		}
		if err := p.pin.In(pp, gpio.BothEdges); err != nil {
			return fmt.Errorf("gpio: pin %s: %w", p.pin.Name(), err)
		}
	case GPIOModeOutput:
		if err := p.pin.Out(gpio.Low); err != nil {
			return fmt.Errorf("gpio: pin %s: %w", p.pin.Name(), err)
		}
	default:
		return fmt.Errorf("gpio: pin %s: invalid mode", p.pin.Name())
	}
	return nil
}

func (p *periphPin) Read() (bool, error) { return p.pin.Read() == gpio.High, nil }

func (p *periphPin) Write(level bool) error { return p.pin.Out(gpio.Level(level)) }

// periphPanel is an SSD1306 on the shared bus, drawn through a 1-bit image.
type periphPanel struct {
	bus i2c.Bus
	dev *ssd1306.Dev
	img *image1bit.VerticalLSB
}

func (p *periphPanel) Configure() error {
	opts := ssd1306.DefaultOpts
	dev, err := ssd1306.NewI2C(p.bus, &opts)
	if err != nil {
		return fmt.Errorf("ssd1306: %w", err)
	}
	p.dev = dev
	p.img = image1bit.NewVerticalLSB(dev.Bounds())
	return nil
}

func (p *periphPanel) Size() (x, y int16) {
	if p.img == nil {
		return int16(ssd1306.DefaultOpts.W), int16(ssd1306.DefaultOpts.H)
	}
	r := p.img.Bounds()
	return int16(r.Dx()), int16(r.Dy())
}

func (p *periphPanel) SetPixel(x, y int16, c color.RGBA) {
	if p.img == nil {
		return
	}
	p.img.SetBit(int(x), int(y), image1bit.Bit(c.R|c.G|c.B != 0))
}

func (p *periphPanel) Display() error {
	if p.dev == nil {
		return ErrNotImplemented
	}
	return p.dev.Draw(p.img.Bounds(), p.img, image.Point{})
}
