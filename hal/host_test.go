//go:build !tinygo && !periph

package hal

import (
	"bytes"
	"context"
	"image/color"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"xverter/internal/rotary"
	"xverter/internal/synth"
)

func newTestHost(t *testing.T) (*hostHAL, *bytes.Buffer) {
	t.Helper()
	var log bytes.Buffer
	h := newHostHAL(HostConfig{FlashPath: filepath.Join(t.TempDir(), "x.flash"), Log: &log})
	t.Cleanup(h.close)
	return h, &log
}

func TestHostControls(t *testing.T) {
	h, _ := newTestHost(t)
	var got []rotary.Direction
	h.Encoder().Subscribe(func(d rotary.Direction) { got = append(got, d) })

	h.turn(rotary.CW)
	h.turn(rotary.CCW)
	h.turn(rotary.CCW)
	if len(got) != 3 || got[0] != rotary.CW || got[1] != rotary.CCW || got[2] != rotary.CCW {
		t.Fatalf("detents = %v, want [cw ccw ccw]", got)
	}

	if h.Button().Pressed() {
		t.Fatal("expected released")
	}
	h.hold(true)
	if !h.Button().Pressed() {
		t.Fatal("expected pressed")
	}
	h.hold(false)
	if h.Button().Pressed() {
		t.Fatal("expected released")
	}
}

func TestHostPanelNeedsConfigure(t *testing.T) {
	h, _ := newTestHost(t)
	p := h.Panel()
	if err := p.Display(); err == nil {
		t.Fatal("expected Display before Configure to fail")
	}
	if err := p.Configure(); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	p.SetPixel(5, 6, color.RGBA{R: 255, G: 255, B: 255, A: 255})

	var frame [panelWidth * panelHeight]bool
	if n := h.panel.snapshot(&frame); n != 0 || frame[6*panelWidth+5] {
		t.Fatal("pixel visible before Display")
	}
	if err := p.Display(); err != nil {
		t.Fatalf("Display: %v", err)
	}
	if n := h.panel.snapshot(&frame); n != 1 || !frame[6*panelWidth+5] {
		t.Fatal("pixel not visible after Display")
	}
}

func TestVirtualSi5351RunsDriver(t *testing.T) {
	h, log := newTestHost(t)
	dev := synth.NewSi5351(h.Bus(), synth.Config{})
	if err := dev.Configure(); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	want := synth.ShiftFrequency(53600)
	if err := dev.SetFrequency(synth.CLK1, want); err != nil {
		t.Fatalf("SetFrequency: %v", err)
	}
	if err := dev.EnableOutput(synth.CLK1, true); err != nil {
		t.Fatalf("EnableOutput: %v", err)
	}
	got, on := h.chip.Output(1)
	if !on {
		t.Fatal("CLK1 not enabled")
	}
	if diff := int64(got) - int64(want); diff < -500 || diff > 500 {
		t.Fatalf("CLK1 = %d, want %d", got, want)
	}
	if !strings.Contains(log.String(), "si5351: CLK1 146.4") {
		t.Fatalf("log = %q, missing CLK1 line", log.String())
	}

	if err := h.Bus().Tx(0x3D, []byte{0}, make([]byte, 1)); err == nil {
		t.Fatal("expected no device at 0x3d")
	}
}

type syncBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Write(p)
}

func TestRunHeadlessFeedsScript(t *testing.T) {
	cfg := HeadlessConfig{
		Host:   HostConfig{Log: &syncBuffer{}},
		Hz:     200,
		Hold:   10 * time.Millisecond,
		Script: strings.NewReader("++x-p"),
	}

	var mu sync.Mutex
	var turns []rotary.Direction
	pressed := false
	err := RunHeadless(context.Background(), cfg, func(ctx context.Context, h HAL) error {
		h.Encoder().Subscribe(func(d rotary.Direction) {
			mu.Lock()
			turns = append(turns, d)
			mu.Unlock()
		})
		deadline := time.Now().Add(5 * time.Second)
		for time.Now().Before(deadline) {
			if h.Button().Pressed() {
				pressed = true
			}
			mu.Lock()
			n := len(turns)
			mu.Unlock()
			if n == 3 && pressed {
				return nil
			}
			time.Sleep(time.Millisecond)
		}
		return context.DeadlineExceeded
	})
	if err != nil {
		t.Fatalf("RunHeadless: %v (turns=%v pressed=%v)", err, turns, pressed)
	}
	if turns[0] != rotary.CW || turns[1] != rotary.CW || turns[2] != rotary.CCW {
		t.Fatalf("turns = %v, want [cw cw ccw]", turns)
	}
}
