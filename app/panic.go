package app

import (
	"context"
	"fmt"
	"strings"
)

// halt parks the board after a fatal error: LED on and the message on the
// panel if it came up. Firmware never returns from here. Hosted runs return
// once ctx is cancelled so the process can exit.
func (a *App) halt(ctx context.Context, lines ...string) error {
	a.h.LED().High()
	if a.log != nil {
		a.log.WriteLineString("xverter: halt: " + strings.Join(lines, ": "))
	}
	if a.surface != nil {
		if a.surface.Asleep() {
			a.surface.Wake()
		}
		a.surface.DrawFatal(lines...)
		_ = a.surface.Present()
	}
	<-ctx.Done()
	return fmt.Errorf("%w: %s", ErrHalted, strings.Join(lines, ": "))
}

// recoverFatal turns a panic anywhere in Run into a halt.
func (a *App) recoverFatal(ctx context.Context, err *error) {
	r := recover()
	if r == nil {
		return
	}
	*err = a.halt(ctx, "panic:", fmt.Sprint(r))
}
