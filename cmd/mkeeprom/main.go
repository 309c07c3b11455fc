//go:build !tinygo

// Command mkeeprom writes and reads the settings block of a host flash image.
//
//	mkeeprom build -in settings.yaml -flash xverter.flash
//	mkeeprom dump -flash xverter.flash
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"xverter/hal"
	"xverter/internal/eeprom"
	"xverter/internal/presets"
	"xverter/internal/session"
)

const defaultFlashPath = "xverter.flash"

// settings is the YAML form of the stored block. A nil field leaves the cell
// untouched on build and reports a never-written cell on dump.
type settings struct {
	Correction *int32   `yaml:"correction,omitempty"`
	Presets    []*int32 `yaml:"presets,omitempty"`
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	if len(args) == 0 {
		return errors.New("usage: mkeeprom build|dump [flags]")
	}
	fs := flag.NewFlagSet("mkeeprom "+args[0], flag.ContinueOnError)
	flashPath := fs.String("flash", defaultFlashPath, "Flash image path.")
	inPath := fs.String("in", "", "Settings YAML to write (build only).")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	switch args[0] {
	case "build":
		if *inPath == "" {
			return errors.New("build: -in is required")
		}
		bs, err := os.ReadFile(*inPath)
		if err != nil {
			return fmt.Errorf("read %q: %w", *inPath, err)
		}
		var s settings
		if err := yaml.Unmarshal(bs, &s); err != nil {
			return fmt.Errorf("parse %q: %w", *inPath, err)
		}
		if err := s.validate(); err != nil {
			return err
		}
		return withStore(*flashPath, func(st *eeprom.Store) error { return build(st, s) })
	case "dump":
		return withStore(*flashPath, func(st *eeprom.Store) error {
			s, err := dump(st)
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(stdout)
			enc.SetIndent(2)
			if err := enc.Encode(s); err != nil {
				return err
			}
			return enc.Close()
		})
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func withStore(path string, fn func(*eeprom.Store) error) error {
	f, err := hal.OpenFlashFile(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	st, err := eeprom.Open(f, hal.StoreBase(f))
	if err != nil {
		return err
	}
	return fn(st)
}

func (s settings) validate() error {
	if c := s.Correction; c != nil && (*c > session.MaxCorrection || *c < -session.MaxCorrection) {
		return fmt.Errorf("correction %d outside ±%d", *c, session.MaxCorrection)
	}
	if len(s.Presets) > presets.Count {
		return fmt.Errorf("%d presets given, at most %d", len(s.Presets), presets.Count)
	}
	for i, v := range s.Presets {
		if v != nil && presets.Clamp(*v) != *v {
			return fmt.Errorf("preset %d: %d outside %d..%d", i+1, *v, presets.Min, presets.Max)
		}
	}
	return nil
}

func build(st *eeprom.Store, s settings) error {
	if s.Correction != nil {
		if err := st.PutInt32(eeprom.CorrectionOffset, *s.Correction); err != nil {
			return err
		}
	}
	for i, v := range s.Presets {
		if v == nil {
			continue
		}
		if err := st.PutInt32(presets.Offset(i), *v); err != nil {
			return err
		}
	}
	return nil
}

func dump(st *eeprom.Store) (settings, error) {
	var s settings
	c, err := st.GetInt32(eeprom.CorrectionOffset)
	if err != nil {
		return s, err
	}
	s.Correction = &c
	for i := 0; i < presets.Count; i++ {
		v, err := st.GetInt32(presets.Offset(i))
		if err != nil {
			return s, err
		}
		if v == presets.Sentinel {
			s.Presets = append(s.Presets, nil)
			continue
		}
		s.Presets = append(s.Presets, &v)
	}
	return s, nil
}
