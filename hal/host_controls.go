//go:build !tinygo && !periph && cgo

package hal

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"xverter/internal/rotary"
)

// Held arrow keys repeat after a short delay, like spinning the knob.
const (
	repeatDelay = 24
	repeatEvery = 4
)

var controlKeys = []struct {
	key ebiten.Key
	dir rotary.Direction
}{
	{ebiten.KeyArrowUp, rotary.CW},
	{ebiten.KeyArrowRight, rotary.CW},
	{ebiten.KeyArrowDown, rotary.CCW},
	{ebiten.KeyArrowLeft, rotary.CCW},
}

func (g *hostGame) pollControls() {
	for _, c := range controlKeys {
		d := inpututil.KeyPressDuration(c.key)
		if d == 1 || (d > repeatDelay && d%repeatEvery == 0) {
			g.h.turn(c.dir)
		}
	}

	_, dy := ebiten.Wheel()
	switch {
	case dy > 0:
		g.h.turn(rotary.CW)
	case dy < 0:
		g.h.turn(rotary.CCW)
	}

	held := ebiten.IsKeyPressed(ebiten.KeySpace) ||
		ebiten.IsKeyPressed(ebiten.KeyEnter) ||
		ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	g.h.hold(held)
}
