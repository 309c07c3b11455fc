//go:build !tinygo && !periph

package hal

import (
	"image/color"
	"sync"
)

const (
	panelWidth  = 128
	panelHeight = 64
)

// hostPanel stands in for the OLED. SetPixel draws into a back buffer;
// Display publishes it to the front buffer the window reads.
type hostPanel struct {
	mu       sync.Mutex
	back     [panelWidth * panelHeight]bool
	front    [panelWidth * panelHeight]bool
	displays uint64
	ready    bool
}

func newHostPanel() *hostPanel { return &hostPanel{} }

func (p *hostPanel) Configure() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ready = true
	return nil
}

func (p *hostPanel) Size() (x, y int16) { return panelWidth, panelHeight }

func (p *hostPanel) SetPixel(x, y int16, c color.RGBA) {
	if x < 0 || y < 0 || x >= panelWidth || y >= panelHeight {
		return
	}
	p.mu.Lock()
	p.back[int(y)*panelWidth+int(x)] = c.R|c.G|c.B != 0
	p.mu.Unlock()
}

func (p *hostPanel) Display() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.ready {
		return ErrNotImplemented
	}
	p.front = p.back
	p.displays++
	return nil
}

// snapshot copies the presented frame and returns how many frames have been
// presented so far.
func (p *hostPanel) snapshot(dst *[panelWidth * panelHeight]bool) uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	*dst = p.front
	return p.displays
}
