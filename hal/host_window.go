//go:build !tinygo && !periph && cgo

package hal

import (
	"context"
	"fmt"
	"image"

	"github.com/hajimehoshi/ebiten/v2"

	"xverter/internal/buildinfo"
)

// WindowConfig controls the desktop window.
type WindowConfig struct {
	Host  HostConfig
	Scale int
	Hz    int
}

// RunWindow starts a desktop window that shows the panel and maps the
// keyboard and mouse onto the encoder. run is the firmware; it gets its own
// goroutine and is cancelled when the window closes. RunWindow blocks until
// the window closes or run returns.
func RunWindow(cfg WindowConfig, run func(ctx context.Context, h HAL) error) error {
	if cfg.Scale <= 0 {
		cfg.Scale = 4
	}
	if cfg.Hz <= 0 {
		cfg.Hz = 60
	}
	h := newHostHAL(cfg.Host)
	defer h.close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- run(ctx, h) }()

	g := &hostGame{h: h, done: done}
	ebiten.SetWindowTitle(g.title())
	ebiten.SetWindowSize(panelWidth*cfg.Scale, panelHeight*cfg.Scale)
	ebiten.SetTPS(cfg.Hz)
	err := ebiten.RunGame(g)
	if err == ebiten.Termination {
		return g.err
	}
	return err
}

type hostGame struct {
	h     *hostHAL
	done  <-chan error
	err   error
	frame [panelWidth * panelHeight]bool
	shown uint64
	img   *image.RGBA
	fbImg *ebiten.Image
	name  string
}

var (
	oledOn  = [4]byte{0xE8, 0xF4, 0xFF, 0xFF}
	oledOff = [4]byte{0x00, 0x00, 0x00, 0xFF}
)

func (g *hostGame) Update() error {
	select {
	case err := <-g.done:
		g.err = err
		return ebiten.Termination
	default:
	}
	g.pollControls()
	if t := g.title(); t != g.name {
		g.name = t
		ebiten.SetWindowTitle(t)
	}
	return nil
}

func (g *hostGame) title() string {
	t := "Xverter (" + buildinfo.Short() + ")"
	if f, on := g.h.chip.Output(1); on && f > 0 {
		t += fmt.Sprintf(" CLK1 %d.%06d MHz", f/100_000_000, f%100_000_000/100)
	}
	if g.h.led.lit() {
		t += " [LED]"
	}
	return t
}

func (g *hostGame) Draw(screen *ebiten.Image) {
	if g.img == nil {
		g.img = image.NewRGBA(image.Rect(0, 0, panelWidth, panelHeight))
		g.fbImg = ebiten.NewImage(panelWidth, panelHeight)
	}
	if n := g.h.panel.snapshot(&g.frame); n != g.shown || g.shown == 0 {
		g.shown = n
		dst := g.img.Pix
		for i, on := range g.frame {
			px := oledOff
			if on {
				px = oledOn
			}
			copy(dst[i*4:i*4+4], px[:])
		}
		g.fbImg.WritePixels(g.img.Pix)
	}
	screen.DrawImage(g.fbImg, nil)
}

func (g *hostGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return panelWidth, panelHeight
}
