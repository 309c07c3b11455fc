//go:build !tinygo

package main

import (
	"flag"
	"fmt"
	"os"

	"xverter/app"
	"xverter/internal/config"
)

// loadConfig parses the command line over the optional -config file. Flags
// given explicitly win over the file.
func loadConfig() config.Config {
	path := flag.String("config", "", "YAML settings file.")
	headless := flag.Bool("headless", false, "Run without a window, reading input commands from stdin.")
	ticks := flag.Uint64("ticks", 0, "Stop after N main-loop ticks (0 = run forever).")
	hz := flag.Int("hz", 0, "Window refresh and headless input rate.")
	calibrate := flag.Bool("calibrate", false, "Enter calibration at boot.")
	flash := flag.String("flash", "", "Flash image holding the saved settings.")
	scale := flag.Int("scale", 0, "Window scale factor.")
	flag.Parse()

	cfg, err := config.Load(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "headless":
			cfg.Headless = *headless
		case "ticks":
			cfg.Ticks = *ticks
		case "hz":
			cfg.Hz = *hz
		case "calibrate":
			cfg.Calibrate = *calibrate
		case "flash":
			cfg.FlashPath = *flash
		case "scale":
			cfg.WindowScale = *scale
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	return cfg
}

func appConfig(cfg config.Config) app.Config {
	return app.Config{
		Tick:        cfg.Tick(),
		IdleTimeout: cfg.IdleTimeout(),
		BootDelay:   cfg.BootDelay(),
		SplashDelay: cfg.SplashDelay(),
		Calibrate:   cfg.Calibrate,
		MaxTicks:    cfg.Ticks,
	}
}
