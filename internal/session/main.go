package session

import (
	"fmt"
	"time"

	"xverter/internal/menu"
	"xverter/internal/presets"
	"xverter/internal/screen"
	"xverter/internal/synth"
)

// Main is the preset selection and edit screen.
type Main struct {
	loop
	reg      *presets.Registry
	selected int
}

// NewMain starts the main session on slot selected and programs CLK1 for it.
func NewMain(d Deps, reg *presets.Registry, selected int) (*Main, error) {
	m := &Main{
		loop:     newLoop(d, menu.NewMain()),
		reg:      reg,
		selected: menu.Wrap(selected, presets.Count),
	}
	if err := m.program(); err != nil {
		return nil, err
	}
	return m, nil
}

// Selected returns the active slot.
func (m *Main) Selected() int { return m.selected }

// Mode returns the current menu mode.
func (m *Main) Mode() menu.Mode { return m.menu.Mode }

func (m *Main) program() error {
	f := synth.ShiftFrequency(m.reg.Get(m.selected))
	if err := m.deps.Synth.SetFrequency(synth.CLK1, f); err != nil {
		return fmt.Errorf("session: shift output: %w", err)
	}
	return nil
}

// Step runs one iteration.
func (m *Main) Step(now time.Time) error {
	mode := m.menu.Mode
	v := menu.Values{Selected: m.selected, Count: presets.Count, Value: m.reg.Get(m.selected)}
	m.menu.Apply(m.drain(), &v)
	m.selected = v.Selected
	if mode == menu.ModeEditScroll {
		m.reg.Set(m.selected, v.Value)
	} else {
		m.reg.Set(m.selected, m.reg.Get(m.selected))
	}

	m.sleep(now)

	if m.edge() && m.menu.Press() == menu.ActionCommit {
		if err := m.reg.Commit(m.selected); err != nil {
			m.logf("%v", err)
		} else {
			m.logf("preset %d saved: %d", m.selected+1, m.reg.Get(m.selected))
		}
	}

	if !m.menu.Dirty {
		return nil
	}
	m.menu.Dirty = false
	m.wake(now)
	if m.menu.Mode == menu.ModeScroll || m.menu.Mode == menu.ModeEditScroll {
		if err := m.program(); err != nil {
			return err
		}
	}
	m.deps.Surface.DrawMain(m.view())
	if err := m.deps.Surface.Present(); err != nil {
		return fmt.Errorf("session: present: %w", err)
	}
	return nil
}

// Tick adapts Step to Run; the main session never finishes.
func (m *Main) Tick(now time.Time) (bool, error) {
	return false, m.Step(now)
}

func (m *Main) view() screen.MainView {
	return screen.MainView{
		Mode:     m.menu.Mode,
		Cursor:   m.menu.Cursor,
		Selected: m.selected,
		Value:    m.reg.Get(m.selected),
		Neighbors: [4]int32{
			m.reg.Neighbor(m.selected, -2),
			m.reg.Neighbor(m.selected, -1),
			m.reg.Neighbor(m.selected, 1),
			m.reg.Neighbor(m.selected, 2),
		},
	}
}
