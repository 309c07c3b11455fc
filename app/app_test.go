package app

import (
	"context"
	"errors"
	"image/color"
	"strings"
	"sync"
	"testing"
	"time"

	"xverter/hal"
	"xverter/internal/eeprom"
	"xverter/internal/rotary"
	"xverter/internal/screen"
)

type lineLog struct {
	mu    sync.Mutex
	lines []string
}

func (l *lineLog) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, s)
}

func (l *lineLog) WriteLineBytes(b []byte) { l.WriteLineString(string(b)) }

func (l *lineLog) contains(sub string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, s := range l.lines {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

type led struct {
	mu sync.Mutex
	on bool
}

func (l *led) High() { l.set(true) }
func (l *led) Low()  { l.set(false) }

func (l *led) set(on bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.on = on
}

func (l *led) lit() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.on
}

type frame [128 * 64]bool

// panel keeps every frame it was asked to display.
type panel struct {
	fail     error
	displays int
	cur      frame
	shown    []frame
}

func (p *panel) Configure() error     { return p.fail }
func (p *panel) Size() (int16, int16) { return 128, 64 }

func (p *panel) SetPixel(x, y int16, c color.RGBA) {
	p.cur[int(y)*128+int(x)] = c.R != 0 || c.G != 0 || c.B != 0
}

func (p *panel) Display() error {
	p.displays++
	p.shown = append(p.shown, p.cur)
	return nil
}

func (p *panel) showed(f frame) bool {
	for _, s := range p.shown {
		if s == f {
			return true
		}
	}
	return false
}

// chip is an Si5351 register file; status reads as ready.
type chip struct {
	mu   sync.Mutex
	regs [256]byte
	fail error
}

func (c *chip) Tx(addr uint16, w, r []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail != nil {
		return c.fail
	}
	if len(r) > 0 {
		for i := range r {
			r[i] = c.regs[int(w[0])+i]
		}
		return nil
	}
	copy(c.regs[w[0]:], w[1:])
	return nil
}

func (c *chip) reg(i int) byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.regs[i]
}

type memFlash struct {
	mu  sync.Mutex
	buf []byte
}

func newMemFlash() *memFlash {
	f := &memFlash{buf: make([]byte, 8192)}
	for i := range f.buf {
		f.buf[i] = 0xFF
	}
	return f
}

func (f *memFlash) SizeBytes() uint32       { return uint32(len(f.buf)) }
func (f *memFlash) EraseBlockBytes() uint32 { return 4096 }

func (f *memFlash) ReadAt(p []byte, off uint32) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return copy(p, f.buf[off:]), nil
}

func (f *memFlash) WriteAt(p []byte, off uint32) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, b := range p {
		f.buf[int(off)+i] &= b
	}
	return len(p), nil
}

func (f *memFlash) Erase(off, size uint32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := off; i < off+size; i++ {
		f.buf[i] = 0xFF
	}
	return nil
}

type encoder struct {
	mu sync.Mutex
	fn func(rotary.Direction)
}

func (e *encoder) Subscribe(fn func(rotary.Direction)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.fn = fn
}

func (e *encoder) turn(d rotary.Direction) {
	e.mu.Lock()
	fn := e.fn
	e.mu.Unlock()
	if fn != nil {
		fn(d)
	}
}

// button replays a level per Pressed call.
type button struct {
	mu    sync.Mutex
	calls int
	level func(call int) bool
}

func (b *button) Pressed() bool {
	b.mu.Lock()
	b.calls++
	n := b.calls
	b.mu.Unlock()
	if b.level == nil {
		return false
	}
	return b.level(n)
}

type board struct {
	log   *lineLog
	led   *led
	panel *panel
	chip  *chip
	flash *memFlash
	enc   *encoder
	btn   *button
}

func newBoard() *board {
	return &board{
		log:   &lineLog{},
		led:   &led{},
		panel: &panel{},
		chip:  &chip{},
		flash: newMemFlash(),
		enc:   &encoder{},
		btn:   &button{},
	}
}

func (b *board) Logger() hal.Logger   { return b.log }
func (b *board) LED() hal.LED         { return b.led }
func (b *board) Panel() hal.Panel     { return b.panel }
func (b *board) Bus() hal.Bus         { return b.chip }
func (b *board) Flash() hal.Flash     { return b.flash }
func (b *board) Encoder() hal.Encoder { return b.enc }
func (b *board) Button() hal.Button   { return b.btn }

func fastConfig() Config {
	return Config{Tick: time.Millisecond, MaxTicks: 3}
}

func TestRunBringsUpOutputs(t *testing.T) {
	b := newBoard()
	if err := New(b, fastConfig()).Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := b.chip.reg(3); got != 0xFC {
		t.Fatalf("output enable = %#x, want 0xfc", got)
	}
	for ch := 0; ch < 2; ch++ {
		if got := b.chip.reg(16+ch) & 0x83; got != 0x03 {
			t.Fatalf("CLK%d control = %#x, want powered up at 8 mA", ch, b.chip.reg(16+ch))
		}
	}
	if b.led.lit() {
		t.Fatal("LED lit after a clean boot")
	}
	if !b.log.contains("board v.1.6") {
		t.Fatalf("log = %q, missing banner", b.log.lines)
	}
	if b.panel.displays == 0 {
		t.Fatal("nothing presented")
	}
}

func TestRunHaltsWithoutSynth(t *testing.T) {
	b := newBoard()
	b.chip.fail = errors.New("nack")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- New(b, fastConfig()).Run(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for !b.led.lit() && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	select {
	case err := <-done:
		t.Fatalf("Run() returned %v before cancel", err)
	default:
	}
	cancel()
	err := <-done
	if !errors.Is(err, ErrHalted) {
		t.Fatalf("Run() error = %v, want %v", err, ErrHalted)
	}
	if !b.led.lit() {
		t.Fatal("LED not lit on halt")
	}
	if !b.log.contains("failed to initialize si5351") {
		t.Fatalf("log = %q, missing halt reason", b.log.lines)
	}
}

func TestRunHaltsWithoutPanel(t *testing.T) {
	b := newBoard()
	b.panel.fail = errors.New("no ack")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := New(b, fastConfig()).Run(ctx)
	if !errors.Is(err, ErrHalted) {
		t.Fatalf("Run() error = %v, want %v", err, ErrHalted)
	}
	if b.chip.reg(3) != 0 {
		t.Fatal("synth touched after panel failure")
	}
}

// calibrationPresses replays a boot hold, then raises the correction by one
// thousand from the erased -1 and saves it. Pressed is polled once by the
// boot check, once at session start and once per iteration after that.
func calibrationPresses(b *board) func(int) bool {
	return func(n int) bool {
		switch n {
		case 1, 2: // held through power-on
			return true
		case 4, 7, 9:
			return true
		case 5:
			b.enc.turn(rotary.CW) // thousands up
		case 8:
			b.enc.turn(rotary.CCW) // cursor to save
		}
		return false
	}
}

func TestRunCalibratesWhenButtonHeld(t *testing.T) {
	b := newBoard()
	b.btn.level = calibrationPresses(b)
	if err := New(b, fastConfig()).Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	st, err := eeprom.Open(b.flash, hal.StoreBase(b.flash))
	if err != nil {
		t.Fatalf("eeprom.Open: %v", err)
	}
	if v, _ := st.GetInt32(eeprom.CorrectionOffset); v != 999 {
		t.Fatalf("stored correction = %d, want 999", v)
	}
	if !b.log.contains("calibration saved: 999") {
		t.Fatalf("log = %q, missing save", b.log.lines)
	}
}

func TestRunShowsLogoWhenCalibrationEndsAsleep(t *testing.T) {
	b := newBoard()
	b.btn.level = calibrationPresses(b)
	cfg := fastConfig()
	cfg.IdleTimeout = time.Nanosecond
	if err := New(b, cfg).Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !b.log.contains("calibration saved: 999") {
		t.Fatalf("log = %q, missing save", b.log.lines)
	}

	ref := &panel{}
	s := screen.New(ref)
	s.DrawLogo()
	if err := s.Present(); err != nil {
		t.Fatalf("Present() error = %v", err)
	}
	if !b.panel.showed(ref.shown[0]) {
		t.Fatalf("logo never reached the panel after calibration")
	}
}

func TestRunWithoutFlashUsesDefaults(t *testing.T) {
	b := newBoard()
	b.flash.buf = nil
	if err := New(b, fastConfig()).Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !b.log.contains("settings will not persist") {
		t.Fatalf("log = %q, missing fallback notice", b.log.lines)
	}
}
