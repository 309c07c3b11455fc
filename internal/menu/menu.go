// Package menu holds the encoder-driven menu state machine shared by the
// calibration and main sessions.
//
// The interrupt side only ever touches Input. Everything else here is owned by
// the control loop, so a mode switch is a plain assignment and exactly one tick
// handler is active at any instant.
package menu

// Mode selects the tick handler and what the button commits.
type Mode uint8

const (
	ModeScroll Mode = iota
	ModeEditScroll
	ModeEditSelect
	ModeCalNavigate
	ModeCalEdit
)

func (m Mode) String() string {
	switch m {
	case ModeScroll:
		return "scroll"
	case ModeEditScroll:
		return "edit-scroll"
	case ModeEditSelect:
		return "edit-select"
	case ModeCalNavigate:
		return "cal-navigate"
	case ModeCalEdit:
		return "cal-edit"
	default:
		return "unknown"
	}
}

// Calibration reports whether m belongs to the calibration session.
func (m Mode) Calibration() bool { return m == ModeCalNavigate || m == ModeCalEdit }

const (
	// EditPositions is the main digit picker: save plus five digits.
	EditPositions = 6
	// CalPositions is the calibration digit picker: save plus four digits.
	CalPositions = 5

	// SaveCursor is the virtual "save" position in both pickers.
	SaveCursor = 0

	EditStartCursor = 2
	CalStartCursor  = 1
	StartStep       = 1000
)

// Action is what a button press asks the session to do.
type Action uint8

const (
	ActionNone Action = iota
	// ActionCommit persists the value under edit.
	ActionCommit
	// ActionCommitExit persists the value under edit and leaves the session.
	ActionCommitExit
)

// Menu is the per-session cursor state. A fresh Menu is created for every
// session so the first iteration always renders.
type Menu struct {
	Mode   Mode
	Cursor int
	Step   int32
	Dirty  bool
}

// New returns a dirty menu in the given mode.
func New(mode Mode, cursor int, step int32) Menu {
	return Menu{Mode: mode, Cursor: cursor, Step: step, Dirty: true}
}

// NewMain returns the initial main-session menu.
func NewMain() Menu { return New(ModeScroll, EditStartCursor, StartStep) }

// NewCalibration returns the initial calibration menu: the cursor box on the
// thousands digit. The first press starts adjusting it.
func NewCalibration() Menu { return New(ModeCalNavigate, CalStartCursor, StartStep) }

// Values are the loop-owned fields a tick may move besides the cursor.
type Values struct {
	Selected int
	Count    int
	Value    int32
}

// Apply runs the active handler for a drained net delta. The result equals
// applying each tick one at a time; the caller clamps Value afterwards.
func (m *Menu) Apply(delta int, v *Values) {
	if delta == 0 {
		return
	}
	switch m.Mode {
	case ModeScroll:
		v.Selected = Wrap(v.Selected+delta, v.Count)
	case ModeEditScroll, ModeCalEdit:
		v.Value = StepValue(v.Value, m.Step, delta)
	case ModeEditSelect:
		m.Cursor = Wrap(m.Cursor+delta, EditPositions)
		m.Step = Pow10(EditPositions - 1 - m.Cursor)
	case ModeCalNavigate:
		m.Cursor = Wrap(m.Cursor+delta, CalPositions)
		m.Step = Pow10(CalPositions - 1 - m.Cursor)
	}
}

// Press handles a released-to-pressed button edge.
func (m *Menu) Press() Action {
	m.Dirty = true
	switch m.Mode {
	case ModeScroll:
		m.Mode = ModeEditSelect
		m.Cursor = EditStartCursor
		m.Step = StartStep
	case ModeEditScroll:
		m.Mode = ModeEditSelect
	case ModeEditSelect:
		if m.Cursor == SaveCursor {
			m.Mode = ModeScroll
			return ActionCommit
		}
		m.Mode = ModeEditScroll
	case ModeCalEdit:
		m.Mode = ModeCalNavigate
	case ModeCalNavigate:
		m.Mode = ModeCalEdit
		if m.Cursor == SaveCursor {
			return ActionCommitExit
		}
	}
	return ActionNone
}
