package screen

import (
	"strconv"

	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/freesans"
	"tinygo.org/x/tinyfont/proggy"

	"xverter/internal/menu"
	"xverter/internal/synth"
)

// Fonts and their cell advance. Baselines below are the glyph origin.
var (
	textFont  tinyfont.Fonter = &proggy.TinySZ8pt7b
	smallFont tinyfont.Fonter = &tinyfont.Picopixel
	largeFont tinyfont.Fonter = &freesans.Bold9pt7b
)

const (
	cell      = 6
	smallCell = 4
	ascent    = 8
)

const projectURL = "github.com/IvyTheIV/Xverter"

// Logo is the 32x32 crystal mark.
var Logo = Image{W: 32, H: 32, Bits: []byte{
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0xC0, 0x03, 0x00, 0x00, 0xC0, 0x03, 0x00, 0x00, 0xC0, 0x03, 0x00,
	0x00, 0xC0, 0x03, 0x00, 0x00, 0xCF, 0xF3, 0x00, 0x00, 0xC8, 0x13, 0x00, 0x00, 0xC8, 0x13, 0x00,
	0x00, 0xC8, 0x13, 0x00, 0x00, 0xC8, 0x13, 0x00, 0x00, 0xC8, 0x13, 0x00, 0xFF, 0xC8, 0x13, 0xFF,
	0xFF, 0xC8, 0x13, 0xFF, 0x00, 0xC8, 0x13, 0x00, 0x00, 0xC8, 0x13, 0x00, 0x00, 0xC8, 0x13, 0x00,
	0x00, 0xC8, 0x13, 0x00, 0x00, 0xC8, 0x13, 0x00, 0x00, 0xC8, 0x13, 0x00, 0x00, 0xCF, 0xF3, 0x00,
	0x00, 0xC0, 0x03, 0x00, 0x00, 0xC0, 0x03, 0x00, 0x00, 0xC0, 0x03, 0x00, 0x00, 0x03, 0x00, 0x00,
	0x00, 0x04, 0x90, 0x00, 0x00, 0x00, 0x60, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
}}

// MainView is what the main screen shows.
type MainView struct {
	Mode     menu.Mode
	Cursor   int
	Selected int
	Value    int32
	// Neighbors holds the presets at offsets -2, -1, +1 and +2.
	Neighbors [4]int32
}

// CalibrationView is what the calibration screen shows.
type CalibrationView struct {
	Mode       menu.Mode
	Cursor     int
	Correction int32
}

// Geometry of the value fields, top-left of the sign cell.
const (
	mainValueX = 48
	mainValueY = 36
	calValueX  = 36
	calValueY  = 40

	saveX = 101
	saveY = 53
)

// MainColumn maps a main-screen cursor position to the x of its digit.
func MainColumn(cursor int) int16 {
	if cursor > 2 {
		cursor++
	}
	return mainValueX + int16(cursor)*cell
}

// CalibrationColumn maps a calibration cursor position to the x of its digit.
// Position 1 is the units digit of the integer part.
func CalibrationColumn(cursor int) int16 {
	cursor++
	if cursor > 2 {
		cursor++
	}
	return calValueX + int16(cursor)*cell
}

func (s *Surface) cells(x, top int16, str string) {
	s.Cells(x, top+ascent, textFont, cell, str)
}

func (s *Surface) small(x, baseline int16, str string) {
	s.Cells(x, baseline, smallFont, smallCell, str)
}

// outputLine is the debug readout of the CLK1 frequency in kHz.
func outputLine(shift int32) string {
	return strconv.FormatInt(synth.Reference-int64(shift), 10)
}

// DrawMain renders the preset screen.
func (s *Surface) DrawMain(v MainView) {
	s.Clear()
	s.cells(6, 0, "+ FREQUENCY SHIFT")
	s.HLine(0, 11, 127)
	s.HLine(53, 33, 37)
	s.HLine(53, 45, 37)
	s.Bitmap(6, 18, Logo)

	s.cells(mainValueX, mainValueY, FormatFixed(v.Value))
	s.small(3, 63, outputLine(v.Value))

	slot := strconv.Itoa(v.Selected + 1)
	x := int16(112)
	if len(slot) > 1 {
		x = 100
	}
	s.Text(x, 63, largeFont, slot)

	switch v.Mode {
	case menu.ModeScroll:
		s.small(50, 20, FormatFixed(v.Neighbors[0]))
		s.small(54, 28, FormatFixed(v.Neighbors[1]))
		s.small(54, 52, FormatFixed(v.Neighbors[2]))
		s.small(50, 60, FormatFixed(v.Neighbors[3]))
	case menu.ModeEditScroll:
		s.cells(saveX, saveY, "save")
		s.HLine(MainColumn(v.Cursor), 44, cell)
	case menu.ModeEditSelect:
		s.cells(saveX, saveY, "save")
		if v.Cursor == menu.SaveCursor {
			s.Rect(99, 51, 27, 12)
		} else {
			s.Rect(MainColumn(v.Cursor)-2, 34, 9, 11)
		}
	}
}

// DrawCalibration renders the crystal correction screen.
func (s *Surface) DrawCalibration(v CalibrationView) {
	s.Clear()
	s.cells(30, 0, "CALIBRATION")
	s.HLine(0, 11, 127)
	s.cells(1, 20, "REF: 200.000 +53.6MHz")
	s.cells(1, calValueY, "CAL:")
	s.cells(saveX, saveY, "save")
	s.cells(calValueX, calValueY, FormatFixed(v.Correction))

	switch {
	case v.Cursor == menu.SaveCursor:
		s.Rect(99, 51, 27, 12)
	case v.Mode == menu.ModeCalNavigate:
		s.Rect(CalibrationColumn(v.Cursor)-2, calValueY-2, 9, 11)
	default:
		s.HLine(CalibrationColumn(v.Cursor), calValueY+8, cell)
	}
}

// DrawBoot renders the splash shown while the board comes up.
func (s *Surface) DrawBoot(version string) {
	s.Clear()
	s.Bitmap(48, 4, Logo)
	s.cells(43, 40, "XVERTER")
	s.small(0, 63, projectURL)
	s.small(128-int16(len(version))*smallCell, 63, version)
}

// DrawLogo renders the logo alone.
func (s *Surface) DrawLogo() {
	s.Clear()
	s.Bitmap(48, 16, Logo)
}

const fatalColumns = 128 / cell

// DrawFatal renders an error message, one line per argument, wrapping long
// lines at the panel width.
func (s *Surface) DrawFatal(lines ...string) {
	s.Clear()
	y := int16(0)
	for _, line := range lines {
		for {
			chunk := line
			if len(chunk) > fatalColumns {
				chunk = chunk[:fatalColumns]
			}
			s.cells(0, y, chunk)
			y += 10
			line = line[len(chunk):]
			if line == "" {
				break
			}
		}
	}
}
