//go:build tinygo && baremetal && (rp2040 || rp2350) && !ssd1306

package hal

import (
	"image/color"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/sh1106"
)

// sh1106Panel is the 1.3" SH1106 module the board ships with.
type sh1106Panel struct {
	dev sh1106.Device
}

func newPanel(bus drivers.I2C) Panel {
	return &sh1106Panel{dev: sh1106.NewI2C(bus)}
}

func (p *sh1106Panel) Configure() error {
	p.dev.Configure(sh1106.Config{Width: panelWidth, Height: panelHeight, Address: panelAddr})
	p.dev.ClearDisplay()
	return nil
}

func (p *sh1106Panel) Size() (x, y int16)                { return p.dev.Size() }
func (p *sh1106Panel) SetPixel(x, y int16, c color.RGBA) { p.dev.SetPixel(x, y, c) }
func (p *sh1106Panel) Display() error                    { return p.dev.Display() }
