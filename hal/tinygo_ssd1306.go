//go:build tinygo && baremetal && (rp2040 || rp2350) && ssd1306

package hal

import (
	"image/color"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/ssd1306"
)

// ssd1306Panel is the 0.96" SSD1306 variant.
type ssd1306Panel struct {
	dev ssd1306.Device
}

func newPanel(bus drivers.I2C) Panel {
	return &ssd1306Panel{dev: ssd1306.NewI2C(bus)}
}

func (p *ssd1306Panel) Configure() error {
	p.dev.Configure(ssd1306.Config{Width: panelWidth, Height: panelHeight, Address: panelAddr})
	p.dev.ClearDisplay()
	return nil
}

func (p *ssd1306Panel) Size() (x, y int16)                { return p.dev.Size() }
func (p *ssd1306Panel) SetPixel(x, y int16, c color.RGBA) { p.dev.SetPixel(x, y, c) }
func (p *ssd1306Panel) Display() error                    { return p.dev.Display() }
