// Package session runs the polled control loops: the crystal calibration
// screen and the preset screen.
//
// Each Step is one iteration: drain encoder ticks, act on them, then render.
// Everything a Step touches is owned by the loop goroutine; the encoder side
// only ever writes into menu.Input.
package session

import (
	"context"
	"fmt"
	"time"

	"xverter/hal"
	"xverter/internal/idle"
	"xverter/internal/menu"
	"xverter/internal/presets"
	"xverter/internal/screen"
	"xverter/internal/synth"
)

// DefaultTick is the loop period.
const DefaultTick = 50 * time.Millisecond

// Button reports the current level of the push switch.
type Button interface {
	Pressed() bool
}

// Deps are the devices a session drives.
type Deps struct {
	Input   *menu.Input
	Button  Button
	Synth   synth.Synthesizer
	Surface *screen.Surface
	Store   presets.Store
	Log     hal.Logger

	// Idle is the display sleep interval; zero means idle.DefaultInterval.
	Idle time.Duration
}

// loop is the state shared by both sessions.
type loop struct {
	deps    Deps
	menu    menu.Menu
	idle    *idle.Timer
	pressed bool
}

func (l *loop) logf(format string, args ...any) {
	if l.deps.Log == nil {
		return
	}
	l.deps.Log.WriteLineString("xverter: " + fmt.Sprintf(format, args...))
}

// drain collects pending ticks. Any event marks the screen dirty even when
// the ticks cancel out.
func (l *loop) drain() int {
	delta, events := l.deps.Input.Drain()
	if events != 0 {
		l.menu.Dirty = true
	}
	return int(delta)
}

func (l *loop) sleep(now time.Time) {
	if l.idle == nil {
		interval := l.deps.Idle
		if interval <= 0 {
			interval = idle.DefaultInterval
		}
		l.idle = idle.New(interval, now)
	}
	if l.idle.Expired(now) {
		l.logf("display sleep")
		if err := l.deps.Surface.PowerOff(); err != nil {
			l.logf("display sleep: %v", err)
		}
	}
}

func newLoop(d Deps, m menu.Menu) loop {
	l := loop{deps: d, menu: m}
	// A button still held from power-on is not a press.
	if d.Button != nil {
		l.pressed = d.Button.Pressed()
	}
	return l
}

// edge returns true on a released-to-pressed transition.
func (l *loop) edge() bool {
	if l.deps.Button == nil {
		return false
	}
	p := l.deps.Button.Pressed()
	rising := p && !l.pressed
	l.pressed = p
	return rising
}

func (l *loop) wake(now time.Time) {
	l.idle.Touch(now)
	if l.deps.Surface.Asleep() {
		l.logf("display wake")
		l.deps.Surface.Wake()
	}
}

// Run calls step every interval until it reports done, fails, or ctx ends.
func Run(ctx context.Context, interval time.Duration, step func(now time.Time) (bool, error)) error {
	if interval <= 0 {
		interval = DefaultTick
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-t.C:
			done, err := step(now)
			if err != nil {
				return err
			}
			if done {
				return nil
			}
		}
	}
}
