// Package config loads the host-side runtime settings. Firmware builds use
// the compiled-in defaults only.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds tunables for hosted runs of the controller.
type Config struct {
	FlashPath     string `yaml:"flash_path"`
	WindowScale   int    `yaml:"window_scale"`
	TickMS        int    `yaml:"tick_ms"`
	IdleTimeoutMS int    `yaml:"idle_timeout_ms"`
	BootDelayMS   int    `yaml:"boot_delay_ms"`
	SplashDelayMS int    `yaml:"splash_delay_ms"`
	Calibrate     bool   `yaml:"calibrate"`
	Headless      bool   `yaml:"headless"`
	// Hz is the refresh rate of the desktop window and the headless input pump.
	Hz int `yaml:"hz"`
	// Ticks stops a headless run after that many main-loop iterations.
	Ticks uint64 `yaml:"ticks"`

	Periph PeriphConfig `yaml:"periph"`
}

// PeriphConfig names the board resources used on a Linux SBC.
type PeriphConfig struct {
	Bus     string `yaml:"i2c_bus"`
	BusKHz  int    `yaml:"i2c_khz"`
	EncA    string `yaml:"encoder_a"`
	EncB    string `yaml:"encoder_b"`
	Button  string `yaml:"button"`
	LED     string `yaml:"led"`
	Display string `yaml:"display"`
}

// Default returns the settings used when no file is given.
func Default() Config {
	return Config{
		FlashPath:     "xverter.flash",
		WindowScale:   4,
		TickMS:        50,
		IdleTimeoutMS: 60000,
		BootDelayMS:   3000,
		SplashDelayMS: 500,
		Hz:            60,
		Periph: PeriphConfig{
			BusKHz:  400,
			EncA:    "GPIO17",
			EncB:    "GPIO27",
			Button:  "GPIO22",
			LED:     "GPIO24",
			Display: "ssd1306",
		},
	}
}

// Load reads a YAML file over the defaults. An empty path returns the
// defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	bs, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(bs, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// normalize fills defaults for zeroed fields.
func (c *Config) normalize() {
	def := Default()
	if strings.TrimSpace(c.FlashPath) == "" {
		c.FlashPath = def.FlashPath
	}
	if c.WindowScale <= 0 {
		c.WindowScale = def.WindowScale
	}
	if c.TickMS <= 0 {
		c.TickMS = def.TickMS
	}
	if c.IdleTimeoutMS <= 0 {
		c.IdleTimeoutMS = def.IdleTimeoutMS
	}
	if c.BootDelayMS < 0 {
		c.BootDelayMS = def.BootDelayMS
	}
	if c.SplashDelayMS < 0 {
		c.SplashDelayMS = def.SplashDelayMS
	}
	if c.Hz <= 0 {
		c.Hz = def.Hz
	}
	if c.Periph.BusKHz <= 0 {
		c.Periph.BusKHz = def.Periph.BusKHz
	}
	if c.Periph.EncA == "" {
		c.Periph.EncA = def.Periph.EncA
	}
	if c.Periph.EncB == "" {
		c.Periph.EncB = def.Periph.EncB
	}
	if c.Periph.Button == "" {
		c.Periph.Button = def.Periph.Button
	}
	if c.Periph.LED == "" {
		c.Periph.LED = def.Periph.LED
	}
	c.Periph.Display = strings.ToLower(strings.TrimSpace(c.Periph.Display))
	if c.Periph.Display == "" {
		c.Periph.Display = def.Periph.Display
	}
}

// Validate performs sanity checks on the configuration.
func (c Config) Validate() error {
	if c.WindowScale > 16 {
		return fmt.Errorf("config: window_scale must be <= 16")
	}
	if c.TickMS > 1000 {
		return fmt.Errorf("config: tick_ms must be <= 1000")
	}
	if c.Periph.Display != "ssd1306" {
		return fmt.Errorf("config: periph.display %q unsupported", c.Periph.Display)
	}
	if c.Periph.EncA == c.Periph.EncB {
		return fmt.Errorf("config: periph.encoder_a and periph.encoder_b must differ")
	}
	return nil
}

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

// Tick is the main loop period.
func (c Config) Tick() time.Duration { return ms(c.TickMS) }

// IdleTimeout is the display sleep interval.
func (c Config) IdleTimeout() time.Duration { return ms(c.IdleTimeoutMS) }

// BootDelay is how long the splash stays up.
func (c Config) BootDelay() time.Duration { return ms(c.BootDelayMS) }

// SplashDelay is how long the logo stays up before the main screen.
func (c Config) SplashDelay() time.Duration { return ms(c.SplashDelayMS) }
