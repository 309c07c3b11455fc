//go:build !tinygo && periph

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"xverter/app"
	"xverter/hal"
)

func main() {
	cfg := loadConfig()
	h, err := hal.NewPeriph(hal.PeriphConfig{
		Bus:       cfg.Periph.Bus,
		BusKHz:    cfg.Periph.BusKHz,
		EncA:      cfg.Periph.EncA,
		EncB:      cfg.Periph.EncB,
		Button:    cfg.Periph.Button,
		LED:       cfg.Periph.LED,
		FlashPath: cfg.FlashPath,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer h.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := app.New(h, appConfig(cfg)).Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
