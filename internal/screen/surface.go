// Package screen renders the controller's screens onto a 1-bit panel.
package screen

import (
	"image/color"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
)

var (
	white = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	black = color.RGBA{A: 255}
)

// Surface is an off-screen 1-bit frame in front of a panel. Nothing reaches
// the panel until Present.
//
// Surface is itself a drivers.Displayer so tinyfont can render into it.
type Surface struct {
	panel  drivers.Displayer
	width  int16
	height int16
	stride int
	frame  []byte
	asleep bool
}

// New returns a blank surface sized to panel.
func New(panel drivers.Displayer) *Surface {
	w, h := panel.Size()
	stride := (int(w) + 7) / 8
	return &Surface{
		panel:  panel,
		width:  w,
		height: h,
		stride: stride,
		frame:  make([]byte, stride*int(h)),
	}
}

func (s *Surface) Size() (x, y int16) { return s.width, s.height }

// SetPixel lights the pixel for any non-black colour.
func (s *Surface) SetPixel(x, y int16, c color.RGBA) {
	s.set(x, y, c.R != 0 || c.G != 0 || c.B != 0)
}

// Display presents the frame.
func (s *Surface) Display() error { return s.Present() }

// Pixel reports whether (x, y) is lit in the frame.
func (s *Surface) Pixel(x, y int16) bool {
	if x < 0 || y < 0 || x >= s.width || y >= s.height {
		return false
	}
	return s.frame[int(y)*s.stride+int(x)/8]&(0x80>>(uint(x)&7)) != 0
}

func (s *Surface) set(x, y int16, on bool) {
	if x < 0 || y < 0 || x >= s.width || y >= s.height {
		return
	}
	i := int(y)*s.stride + int(x)/8
	mask := byte(0x80 >> (uint(x) & 7))
	if on {
		s.frame[i] |= mask
	} else {
		s.frame[i] &^= mask
	}
}

// Clear blanks the frame.
func (s *Surface) Clear() {
	for i := range s.frame {
		s.frame[i] = 0
	}
}

// HLine draws a horizontal line w pixels long.
func (s *Surface) HLine(x, y, w int16) {
	for i := int16(0); i < w; i++ {
		s.set(x+i, y, true)
	}
}

// VLine draws a vertical line h pixels long.
func (s *Surface) VLine(x, y, h int16) {
	for i := int16(0); i < h; i++ {
		s.set(x, y+i, true)
	}
}

// Rect draws a w by h outline.
func (s *Surface) Rect(x, y, w, h int16) {
	if w <= 0 || h <= 0 {
		return
	}
	s.HLine(x, y, w)
	s.HLine(x, y+h-1, w)
	s.VLine(x, y, h)
	s.VLine(x+w-1, y, h)
}

// Image is a 1-bit image, rows padded to whole bytes, MSB leftmost.
type Image struct {
	W, H int16
	Bits []byte
}

// Bitmap draws the lit pixels of bm with its top-left corner at (x, y).
func (s *Surface) Bitmap(x, y int16, bm Image) {
	stride := (int(bm.W) + 7) / 8
	for row := int16(0); row < bm.H; row++ {
		for col := int16(0); col < bm.W; col++ {
			i := int(row)*stride + int(col)/8
			if i >= len(bm.Bits) {
				return
			}
			if bm.Bits[i]&(0x80>>(uint(col)&7)) != 0 {
				s.set(x+col, y+row, true)
			}
		}
	}
}

// Text writes str with its baseline at y.
func (s *Surface) Text(x, y int16, font tinyfont.Fonter, str string) {
	tinyfont.WriteLine(s, font, x, y, str, white)
}

// Cells writes str one rune per fixed-width cell, baseline at y.
func (s *Surface) Cells(x, y int16, font tinyfont.Fonter, advance int16, str string) {
	for _, r := range str {
		if r != ' ' {
			tinyfont.DrawChar(s, font, x, y, r, white)
		}
		x += advance
	}
}

// Present pushes the frame to the panel. It does nothing while the panel is
// powered off.
func (s *Surface) Present() error {
	if s.asleep {
		return nil
	}
	for y := int16(0); y < s.height; y++ {
		for x := int16(0); x < s.width; x++ {
			if s.Pixel(x, y) {
				s.panel.SetPixel(x, y, white)
			} else {
				s.panel.SetPixel(x, y, black)
			}
		}
	}
	return s.panel.Display()
}

// PowerOff blanks the panel and suppresses Present until Wake.
func (s *Surface) PowerOff() error {
	for y := int16(0); y < s.height; y++ {
		for x := int16(0); x < s.width; x++ {
			s.panel.SetPixel(x, y, black)
		}
	}
	s.asleep = true
	return s.panel.Display()
}

// Wake re-enables Present after PowerOff.
func (s *Surface) Wake() { s.asleep = false }

// Asleep reports whether the panel is powered off.
func (s *Surface) Asleep() bool { return s.asleep }
