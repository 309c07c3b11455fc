//go:build !tinygo && !periph

package hal

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"time"

	"xverter/internal/rotary"
)

// HeadlessConfig controls the no-window host runner.
type HeadlessConfig struct {
	Host HostConfig
	// Hz paces the input script, one command per period.
	Hz int
	// Hold is how long a scripted press keeps the button down.
	Hold time.Duration
	// Script is read for input commands: '+' and '-' turn the knob one
	// detent, 'p' presses the button, '.' waits one period. Anything else is
	// ignored. Nil means no input.
	Script io.Reader
}

// RunHeadless runs the firmware without opening a window, feeding it the
// input script. It returns when run does.
func RunHeadless(ctx context.Context, cfg HeadlessConfig, run func(ctx context.Context, h HAL) error) error {
	if cfg.Hz <= 0 {
		cfg.Hz = 60
	}
	d := time.Second / time.Duration(cfg.Hz)
	if d <= 0 {
		return fmt.Errorf("invalid headless hz: %d", cfg.Hz)
	}
	if cfg.Hold <= 0 {
		cfg.Hold = 100 * time.Millisecond
	}

	h := newHostHAL(cfg.Host)
	defer h.close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if cfg.Script != nil {
		go pump(ctx, h, cfg.Script, d, cfg.Hold)
	}
	return run(ctx, h)
}

func pump(ctx context.Context, h *hostHAL, script io.Reader, period, hold time.Duration) {
	r := bufio.NewReader(script)
	t := time.NewTicker(period)
	defer t.Stop()
	// Input before the firmware listens would be lost, as on the board.
	for !h.enc.subscribed() {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
	for {
		c, err := r.ReadByte()
		if err != nil {
			return
		}
		switch c {
		case '+':
			h.turn(rotary.CW)
		case '-':
			h.turn(rotary.CCW)
		case 'p':
			h.hold(true)
			if !sleepCtx(ctx, hold) {
				return
			}
			h.hold(false)
		case '.':
		default:
			continue
		}
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
