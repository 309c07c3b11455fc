package session

import (
	"fmt"
	"time"

	"xverter/internal/eeprom"
	"xverter/internal/menu"
	"xverter/internal/screen"
	"xverter/internal/synth"
)

// MaxCorrection bounds the crystal trim. One unit is 100 ppb.
const MaxCorrection int32 = 99999

// Calibration trims the crystal correction against a known CLK1 output.
type Calibration struct {
	loop
	correction int32
}

// NewCalibration starts a calibration session and parks CLK1 on the
// calibration frequency.
func NewCalibration(d Deps, correction int32) (*Calibration, error) {
	c := &Calibration{
		loop:       newLoop(d, menu.NewCalibration()),
		correction: menu.Clamp(correction, -MaxCorrection, MaxCorrection),
	}
	if err := d.Synth.SetFrequency(synth.CLK1, synth.ShiftFrequency(synth.CalibrationShift)); err != nil {
		return nil, fmt.Errorf("session: calibration output: %w", err)
	}
	return c, nil
}

// Correction returns the correction under edit.
func (c *Calibration) Correction() int32 { return c.correction }

// Mode returns the current menu mode.
func (c *Calibration) Mode() menu.Mode { return c.menu.Mode }

// Step runs one iteration. It reports done once the value has been saved.
func (c *Calibration) Step(now time.Time) (bool, error) {
	v := menu.Values{Value: c.correction}
	c.menu.Apply(c.drain(), &v)
	c.correction = menu.Clamp(v.Value, -MaxCorrection, MaxCorrection)

	c.sleep(now)

	if c.edge() && c.menu.Press() == menu.ActionCommitExit {
		if err := c.deps.Store.PutInt32(eeprom.CorrectionOffset, c.correction); err != nil {
			c.logf("calibration save: %v", err)
		} else {
			c.logf("calibration saved: %d", c.correction)
		}
		return true, nil
	}

	if !c.menu.Dirty {
		return false, nil
	}
	c.menu.Dirty = false
	c.wake(now)
	if err := c.deps.Synth.SetCorrection(c.correction * 100); err != nil {
		return false, fmt.Errorf("session: correction: %w", err)
	}
	c.deps.Surface.DrawCalibration(screen.CalibrationView{
		Mode:       c.menu.Mode,
		Cursor:     c.menu.Cursor,
		Correction: c.correction,
	})
	if err := c.deps.Surface.Present(); err != nil {
		return false, fmt.Errorf("session: present: %w", err)
	}
	return false, nil
}
