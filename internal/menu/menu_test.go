package menu

import (
	"fmt"
	"runtime"
	"sync"
	"testing"

	"xverter/internal/rotary"
)

func TestEditSelectTick(t *testing.T) {
	for c := 0; c < EditPositions; c++ {
		for _, d := range []int{+1, -1} {
			got, step := EditSelectTick(c, d)
			want := (c + 6 + d) % 6
			if got != want {
				t.Fatalf("EditSelectTick(%d, %d) cursor = %d, want %d", c, d, got, want)
			}
			if step != Pow10(5-want) {
				t.Fatalf("EditSelectTick(%d, %d) step = %d, want %d", c, d, step, Pow10(5-want))
			}
		}
	}

	c, step := EditSelectTick(2, +1)
	if c != 3 || step != 100 {
		t.Fatalf("EditSelectTick(2, +1) = (%d, %d), want (3, 100)", c, step)
	}
}

func TestCalNavigateTick(t *testing.T) {
	c, step := CalNavigateTick(1, +1)
	if c != 2 || step != 100 {
		t.Fatalf("CalNavigateTick(1, +1) = (%d, %d), want (2, 100)", c, step)
	}
	c, step = CalNavigateTick(0, -1)
	if c != 4 || step != 1 {
		t.Fatalf("CalNavigateTick(0, -1) = (%d, %d), want (4, 1)", c, step)
	}
}

func TestScrollTickWraps(t *testing.T) {
	if got := ScrollTick(0, -1, 11); got != 10 {
		t.Fatalf("ScrollTick(0, -1) = %d, want 10", got)
	}
	if got := ScrollTick(10, +1, 11); got != 0 {
		t.Fatalf("ScrollTick(10, +1) = %d, want 0", got)
	}
}

func TestEditScrollClampsAfterOvershoot(t *testing.T) {
	raw := StepValue(79999, 1000, +1)
	if raw != 80999 {
		t.Fatalf("StepValue() = %d, want 80999", raw)
	}
	if got := Clamp(raw, 20000, 80000); got != 80000 {
		t.Fatalf("Clamp() = %d, want 80000", got)
	}
}

// Apply with a net delta must match the per-tick handlers run in sequence.
func TestApplyMatchesSingleTicks(t *testing.T) {
	modes := []Mode{ModeScroll, ModeEditScroll, ModeEditSelect, ModeCalNavigate, ModeCalEdit}
	for _, mode := range modes {
		for _, delta := range []int{-13, -7, -1, 1, 4, 17} {
			t.Run(fmt.Sprintf("%s/%d", mode, delta), func(t *testing.T) {
				bulk := New(mode, 2, 100)
				bv := Values{Selected: 3, Count: 11, Value: 50000}
				bulk.Apply(delta, &bv)

				one := New(mode, 2, 100)
				ov := Values{Selected: 3, Count: 11, Value: 50000}
				dir := 1
				n := delta
				if delta < 0 {
					dir, n = -1, -delta
				}
				for i := 0; i < n; i++ {
					switch mode {
					case ModeScroll:
						ov.Selected = ScrollTick(ov.Selected, dir, ov.Count)
					case ModeEditScroll, ModeCalEdit:
						ov.Value = StepValue(ov.Value, one.Step, dir)
					case ModeEditSelect:
						one.Cursor, one.Step = EditSelectTick(one.Cursor, dir)
					case ModeCalNavigate:
						one.Cursor, one.Step = CalNavigateTick(one.Cursor, dir)
					}
				}

				if bulk != one || bv != ov {
					t.Fatalf("delta %d: Apply() = %+v %+v, ticks = %+v %+v", delta, bulk, bv, one, ov)
				}
			})
		}
	}
}

func TestMainPressTransitions(t *testing.T) {
	m := NewMain()
	m.Dirty = false
	m.Cursor = 4
	m.Step = 10

	if a := m.Press(); a != ActionNone || m.Mode != ModeEditSelect {
		t.Fatalf("Press() from scroll = %v, mode %v", a, m.Mode)
	}
	if m.Cursor != EditStartCursor || m.Step != StartStep || !m.Dirty {
		t.Fatalf("scroll -> edit-select did not reset: %+v", m)
	}

	m.Cursor, m.Step = EditSelectTick(m.Cursor, +1)
	if a := m.Press(); a != ActionNone || m.Mode != ModeEditScroll {
		t.Fatalf("Press() from edit-select = %v, mode %v", a, m.Mode)
	}
	if a := m.Press(); a != ActionNone || m.Mode != ModeEditSelect || m.Cursor != 3 {
		t.Fatalf("Press() from edit-scroll = %v, %+v", a, m)
	}

	m.Cursor = SaveCursor
	if a := m.Press(); a != ActionCommit || m.Mode != ModeScroll {
		t.Fatalf("Press() on save = %v, mode %v", a, m.Mode)
	}
}

func TestCalibrationPressTransitions(t *testing.T) {
	m := NewCalibration()
	if m.Mode != ModeCalNavigate || m.Cursor != 1 || m.Step != 1000 || !m.Dirty {
		t.Fatalf("NewCalibration() = %+v", m)
	}
	if a := m.Press(); a != ActionNone || m.Mode != ModeCalEdit {
		t.Fatalf("first Press() off save = %v, mode %v", a, m.Mode)
	}
	if a := m.Press(); a != ActionNone || m.Mode != ModeCalNavigate {
		t.Fatalf("second Press() = %v, mode %v", a, m.Mode)
	}
	m.Cursor = SaveCursor
	if a := m.Press(); a != ActionCommitExit {
		t.Fatalf("Press() on save = %v, want commit-exit", a)
	}
}

func TestInputDrain(t *testing.T) {
	var in Input
	if d, n := in.Drain(); d != 0 || n != 0 {
		t.Fatalf("Drain() on empty = (%d, %d)", d, n)
	}
	in.Publish(rotary.CW)
	in.Publish(rotary.CW)
	in.Publish(rotary.CCW)
	in.Publish(rotary.None)
	if !in.Pending() {
		t.Fatal("Pending() = false after publish")
	}
	d, n := in.Drain()
	if d != 1 || n != 3 {
		t.Fatalf("Drain() = (%d, %d), want (1, 3)", d, n)
	}

	// Net zero still counts as activity.
	in.Publish(rotary.CW)
	in.Publish(rotary.CCW)
	d, n = in.Drain()
	if d != 0 || n != 2 {
		t.Fatalf("Drain() = (%d, %d), want (0, 2)", d, n)
	}

	for i := 0; i < 5; i++ {
		in.Publish(rotary.CCW)
	}
	if d, _ := in.Drain(); d != -5 {
		t.Fatalf("Drain() delta = %d, want -5", d)
	}
}

func TestInputBurstNeverLost(t *testing.T) {
	oldProcs := runtime.GOMAXPROCS(4)
	defer runtime.GOMAXPROCS(oldProcs)

	const (
		producers = 4
		perProd   = 20_000
	)

	var in Input
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(producers)
	for p := 0; p < producers; p++ {
		go func(p int) {
			defer wg.Done()
			<-start
			for i := 0; i < perProd; i++ {
				// Producers 0 and 1 turn clockwise, 2 and 3 mostly the other way.
				if p < 2 || i%4 == 0 {
					in.Publish(rotary.CW)
				} else {
					in.Publish(rotary.CCW)
				}
			}
		}(p)
	}

	done := make(chan struct{})
	var sumDelta int64
	var sumEvents uint64
	go func() {
		defer close(done)
		for {
			d, n := in.Drain()
			sumDelta += int64(d)
			sumEvents += uint64(n)
			if sumEvents == producers*perProd {
				return
			}
			runtime.Gosched()
		}
	}()

	close(start)
	wg.Wait()
	<-done

	var wantDelta int64
	for p := 0; p < producers; p++ {
		for i := 0; i < perProd; i++ {
			if p < 2 || i%4 == 0 {
				wantDelta++
			} else {
				wantDelta--
			}
		}
	}
	if sumDelta != wantDelta {
		t.Fatalf("drained delta = %d, want %d", sumDelta, wantDelta)
	}
	if d, n := in.Drain(); d != 0 || n != 0 {
		t.Fatalf("leftover after drain = (%d, %d)", d, n)
	}
}
