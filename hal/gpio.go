package hal

import (
	"fmt"
	"sync"

	"xverter/internal/rotary"
)

// GPIOMode selects whether a pin is an input or output.
type GPIOMode uint8

const (
	GPIOModeInput GPIOMode = iota
	GPIOModeOutput
)

// GPIOPull selects the pull resistor configuration.
type GPIOPull uint8

const (
	GPIOPullNone GPIOPull = iota
	GPIOPullUp
	GPIOPullDown
)

// GPIOCaps declares what operations a pin supports.
type GPIOCaps uint8

const (
	GPIOCapInput GPIOCaps = 1 << iota
	GPIOCapOutput
	GPIOCapPullUp
	GPIOCapPullDown
)

// GPIOPin is a single digital IO pin.
type GPIOPin interface {
	Name() string
	Caps() GPIOCaps
	Configure(mode GPIOMode, pull GPIOPull) error
	Read() (level bool, err error)
	Write(level bool) error
}

// virtualPin is a pin with no hardware behind it. Inputs are driven from
// the host side with drive; watchers see every level change.
type virtualPin struct {
	mu     sync.Mutex
	name   string
	caps   GPIOCaps
	mode   GPIOMode
	pull   GPIOPull
	level  bool
	onEdge func()
}

func newVirtualPin(name string, caps GPIOCaps) *virtualPin {
	return &virtualPin{
		name: name,
		caps: caps,
		mode: GPIOModeInput,
		pull: GPIOPullNone,
	}
}

func (p *virtualPin) Name() string   { return p.name }
func (p *virtualPin) Caps() GPIOCaps { return p.caps }

func (p *virtualPin) Configure(mode GPIOMode, pull GPIOPull) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch mode {
	case GPIOModeInput:
		if p.caps&GPIOCapInput == 0 {
			return fmt.Errorf("gpio: pin %s: input unsupported", p.name)
		}
	case GPIOModeOutput:
		if p.caps&GPIOCapOutput == 0 {
			return fmt.Errorf("gpio: pin %s: output unsupported", p.name)
		}
	default:
		return fmt.Errorf("gpio: pin %s: invalid mode", p.name)
	}

	switch pull {
	case GPIOPullNone:
	case GPIOPullUp:
		if p.caps&GPIOCapPullUp == 0 {
			return fmt.Errorf("gpio: pin %s: pull-up unsupported", p.name)
		}
	case GPIOPullDown:
		if p.caps&GPIOCapPullDown == 0 {
			return fmt.Errorf("gpio: pin %s: pull-down unsupported", p.name)
		}
	default:
		return fmt.Errorf("gpio: pin %s: invalid pull", p.name)
	}

	p.mode = mode
	p.pull = pull
	if mode == GPIOModeInput {
		p.level = pull == GPIOPullUp
	}
	return nil
}

// watch registers fn to run after every level change.
func (p *virtualPin) watch(fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onEdge = fn
}

// drive sets the level seen by readers, as an external source would.
func (p *virtualPin) drive(level bool) {
	p.mu.Lock()
	changed := p.level != level
	p.level = level
	fn := p.onEdge
	p.mu.Unlock()
	if changed && fn != nil {
		fn()
	}
}

func (p *virtualPin) Read() (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.mode != GPIOModeInput && p.mode != GPIOModeOutput {
		return false, fmt.Errorf("gpio: pin %s: not configured", p.name)
	}
	return p.level, nil
}

func (p *virtualPin) Write(level bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.mode != GPIOModeOutput {
		return fmt.Errorf("gpio: pin %s: not in output mode", p.name)
	}
	p.level = level
	return nil
}

// gpioLED drives an LED from an output pin.
type gpioLED struct {
	pin GPIOPin
}

func newGPIOLED(pin GPIOPin) (*gpioLED, error) {
	if err := pin.Configure(GPIOModeOutput, GPIOPullNone); err != nil {
		return nil, err
	}
	return &gpioLED{pin: pin}, nil
}

func (l *gpioLED) High() { _ = l.pin.Write(true) }
func (l *gpioLED) Low()  { _ = l.pin.Write(false) }

// pinEncoder decodes a quadrature pair. sample runs on every edge of either
// pin; detents go to the subscriber.
type pinEncoder struct {
	mu  sync.Mutex
	a   GPIOPin
	b   GPIOPin
	dec rotary.Decoder
	fn  func(rotary.Direction)
}

func newPinEncoder(a, b GPIOPin) (*pinEncoder, error) {
	for _, p := range []GPIOPin{a, b} {
		if err := p.Configure(GPIOModeInput, GPIOPullUp); err != nil {
			return nil, err
		}
	}
	return &pinEncoder{a: a, b: b}, nil
}

func (e *pinEncoder) Subscribe(fn func(rotary.Direction)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.fn = fn
}

func (e *pinEncoder) subscribed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.fn != nil
}

func (e *pinEncoder) sample() {
	la, err := e.a.Read()
	if err != nil {
		return
	}
	lb, err := e.b.Read()
	if err != nil {
		return
	}
	e.mu.Lock()
	d := e.dec.Process(la, lb)
	fn := e.fn
	e.mu.Unlock()
	if d != rotary.None && fn != nil {
		fn(d)
	}
}

// Pin levels (a, b) for one detent, starting from rest at (high, high).
var (
	cwSteps  = [4][2]bool{{true, false}, {false, false}, {false, true}, {true, true}}
	ccwSteps = [4][2]bool{{false, true}, {false, false}, {true, false}, {true, true}}
)

// turnDetent drives a virtual pair through one full detent.
func turnDetent(a, b *virtualPin, d rotary.Direction) {
	steps := cwSteps
	if d == rotary.CCW {
		steps = ccwSteps
	} else if d != rotary.CW {
		return
	}
	for _, s := range steps {
		a.drive(s[0])
		b.drive(s[1])
	}
}

// pinButton is an active-low switch with a pull-up.
type pinButton struct {
	pin GPIOPin
}

func newPinButton(pin GPIOPin) (*pinButton, error) {
	if err := pin.Configure(GPIOModeInput, GPIOPullUp); err != nil {
		return nil, err
	}
	return &pinButton{pin: pin}, nil
}

func (b *pinButton) Pressed() bool {
	level, err := b.pin.Read()
	return err == nil && !level
}
