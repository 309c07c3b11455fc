// Package app brings the board up and hands it to the control sessions.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"xverter/hal"
	"xverter/internal/buildinfo"
	"xverter/internal/eeprom"
	"xverter/internal/menu"
	"xverter/internal/presets"
	"xverter/internal/screen"
	"xverter/internal/session"
	"xverter/internal/synth"
)

// ErrHalted is returned once a hosted run is cancelled after a fatal error.
var ErrHalted = errors.New("halted")

// Config holds the bring-up timings.
type Config struct {
	Tick        time.Duration
	IdleTimeout time.Duration
	BootDelay   time.Duration
	SplashDelay time.Duration
	// Calibrate enters calibration without the button held.
	Calibrate bool
	// MaxTicks ends the main session after that many iterations. Zero runs
	// forever.
	MaxTicks uint64
}

// DefaultConfig returns the firmware timings.
func DefaultConfig() Config {
	return Config{
		Tick:        session.DefaultTick,
		IdleTimeout: 60 * time.Second,
		BootDelay:   3 * time.Second,
		SplashDelay: 500 * time.Millisecond,
	}
}

// App is the controller running on a board.
type App struct {
	h       hal.HAL
	cfg     Config
	log     hal.Logger
	surface *screen.Surface
	synth   *synth.Si5351
	store   presets.Store
	input   menu.Input
}

// New returns an app for h. Zero timings take the defaults, except the
// delays, where zero means no wait.
func New(h hal.HAL, cfg Config) *App {
	def := DefaultConfig()
	if cfg.Tick <= 0 {
		cfg.Tick = def.Tick
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = def.IdleTimeout
	}
	return &App{h: h, cfg: cfg, log: h.Logger()}
}

func (a *App) logf(format string, args ...any) {
	if a.log != nil {
		a.log.WriteLineString("xverter: " + fmt.Sprintf(format, args...))
	}
}

// Run brings the board up and runs the sessions. It returns only when ctx
// ends, the tick limit is reached, or, on hosts, after a halt once ctx is
// cancelled. Firmware passes a context that never ends.
func (a *App) Run(ctx context.Context) (err error) {
	defer a.recoverFatal(ctx, &err)

	led := a.h.LED()
	led.Low()
	if a.log != nil {
		a.log.WriteLineString(buildinfo.Banner())
	}

	bootStep("panel")
	panel := a.h.Panel()
	if err := panel.Configure(); err != nil {
		return a.halt(ctx, "display: "+err.Error())
	}
	a.surface = screen.New(panel)
	a.surface.DrawBoot(buildinfo.Board)
	if err := a.surface.Present(); err != nil {
		a.logf("boot screen: %v", err)
	}

	bootStep("store")
	a.store = a.openStore()
	correction, err := a.store.GetInt32(eeprom.CorrectionOffset)
	if err != nil {
		a.logf("correction: %v", err)
		correction = 0
	}
	reg, err := presets.Load(a.store)
	if err != nil {
		a.logf("%v", err)
		a.store = newMemStore()
		reg, _ = presets.Load(a.store)
	}

	bootStep("si5351")
	a.synth = synth.NewSi5351(a.h.Bus(), synth.Config{})
	if err := a.synth.Configure(); err != nil {
		a.logf("%v", err)
		return a.halt(ctx, "failed to initialize si5351", "check wiring")
	}
	if err := a.startOutputs(correction, reg.Get(0)); err != nil {
		a.logf("%v", err)
		return a.halt(ctx, "failed to initialize si5351", "check wiring")
	}

	bootStep("boot delay")
	if err := sleep(ctx, a.cfg.BootDelay); err != nil {
		return err
	}
	a.h.Encoder().Subscribe(a.input.Publish)

	deps := session.Deps{
		Input:   &a.input,
		Button:  a.h.Button(),
		Synth:   a.synth,
		Surface: a.surface,
		Store:   a.store,
		Log:     a.log,
		Idle:    a.cfg.IdleTimeout,
	}

	if a.cfg.Calibrate || deps.Button.Pressed() {
		bootStep("calibration")
		a.logf("calibration")
		cal, err := session.NewCalibration(deps, correction)
		if err != nil {
			return a.halt(ctx, "failed to initialize si5351", err.Error())
		}
		if err := session.Run(ctx, a.cfg.Tick, a.tolerate(cal.Step)); err != nil {
			return err
		}
		// The save press can land while the panel is asleep.
		a.surface.Wake()
		a.surface.DrawLogo()
		if err := a.surface.Present(); err != nil {
			a.logf("logo: %v", err)
		}
	}

	if err := sleep(ctx, a.cfg.SplashDelay); err != nil {
		return err
	}

	bootStep("main")
	ms, err := session.NewMain(deps, reg, 0)
	if err != nil {
		return a.halt(ctx, "failed to initialize si5351", err.Error())
	}
	step := a.tolerate(ms.Tick)
	if a.cfg.MaxTicks > 0 {
		step = limit(step, a.cfg.MaxTicks)
	}
	return session.Run(ctx, a.cfg.Tick, step)
}

// startOutputs applies the stored correction and starts CLK0 on the
// reference and CLK1 on the first preset.
func (a *App) startOutputs(correction, shift int32) error {
	s := a.synth
	if err := s.SetCorrection(correction * 100); err != nil {
		return err
	}
	if err := s.SetFrequency(synth.CLK1, synth.ShiftFrequency(shift)); err != nil {
		return err
	}
	if err := s.SetFrequency(synth.CLK0, synth.ReferenceOutput); err != nil {
		return err
	}
	for _, ch := range []synth.Channel{synth.CLK0, synth.CLK1} {
		if err := s.SetDriveStrength(ch, synth.Drive8mA); err != nil {
			return err
		}
	}
	if err := s.EnableOutput(synth.CLK0, true); err != nil {
		return err
	}
	if err := s.EnableOutput(synth.CLK1, true); err != nil {
		return err
	}
	return s.EnableOutput(synth.CLK2, false)
}

func (a *App) openStore() presets.Store {
	st, err := eeprom.Open(a.h.Flash(), hal.StoreBase(a.h.Flash()))
	if err != nil {
		a.logf("%v, settings will not persist", err)
		return newMemStore()
	}
	return st
}

// tolerate logs device errors from a session step and keeps the loop going.
func (a *App) tolerate(step func(time.Time) (bool, error)) func(time.Time) (bool, error) {
	return func(now time.Time) (bool, error) {
		done, err := step(now)
		if err != nil {
			a.logf("%v", err)
		}
		return done, nil
	}
}

func limit(step func(time.Time) (bool, error), n uint64) func(time.Time) (bool, error) {
	var calls uint64
	return func(now time.Time) (bool, error) {
		done, err := step(now)
		calls++
		return done || calls >= n, err
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
