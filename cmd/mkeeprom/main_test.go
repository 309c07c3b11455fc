//go:build !tinygo

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func writeSettings(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write settings: %v", err)
	}
	return path
}

func TestBuildThenDump(t *testing.T) {
	in := writeSettings(t, "correction: -120\npresets: [33800, null, 42500]\n")
	flash := filepath.Join(t.TempDir(), "x.flash")

	if err := run([]string{"build", "-in", in, "-flash", flash}, &bytes.Buffer{}); err != nil {
		t.Fatalf("build: %v", err)
	}
	var out bytes.Buffer
	if err := run([]string{"dump", "-flash", flash}, &out); err != nil {
		t.Fatalf("dump: %v", err)
	}

	var got settings
	if err := yaml.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("parse dump: %v\n%s", err, out.String())
	}
	if got.Correction == nil || *got.Correction != -120 {
		t.Fatalf("correction = %v", got.Correction)
	}
	if len(got.Presets) != 11 {
		t.Fatalf("presets = %d, want 11", len(got.Presets))
	}
	if got.Presets[0] == nil || *got.Presets[0] != 33800 {
		t.Fatalf("preset 1 = %v", got.Presets[0])
	}
	if got.Presets[1] != nil {
		t.Fatalf("preset 2 = %d, want unset", *got.Presets[1])
	}
	if got.Presets[2] == nil || *got.Presets[2] != 42500 {
		t.Fatalf("preset 3 = %v", got.Presets[2])
	}
}

func TestDumpErasedImage(t *testing.T) {
	flash := filepath.Join(t.TempDir(), "x.flash")
	var out bytes.Buffer
	if err := run([]string{"dump", "-flash", flash}, &out); err != nil {
		t.Fatalf("dump: %v", err)
	}
	if !strings.HasPrefix(out.String(), "correction: -1\n") {
		t.Fatalf("dump = %q", out.String())
	}
}

func TestBuildRejectsOutOfRange(t *testing.T) {
	cases := map[string]string{
		"preset":     "presets: [90000]\n",
		"correction": "correction: 100000\n",
		"count":      "presets: [33600, 33600, 33600, 33600, 33600, 33600, 33600, 33600, 33600, 33600, 33600, 33600]\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			in := writeSettings(t, body)
			flash := filepath.Join(t.TempDir(), "x.flash")
			if err := run([]string{"build", "-in", in, "-flash", flash}, &bytes.Buffer{}); err == nil {
				t.Fatalf("expected error")
			}
			if _, err := os.Stat(flash); err == nil {
				t.Fatalf("flash image written for rejected settings")
			}
		})
	}
}

func TestUnknownCommand(t *testing.T) {
	if err := run([]string{"erase"}, &bytes.Buffer{}); err == nil {
		t.Fatalf("expected error")
	}
	if err := run(nil, &bytes.Buffer{}); err == nil {
		t.Fatalf("expected usage error")
	}
}
