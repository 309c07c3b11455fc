//go:build !tinygo && !periph

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
	ac := appConfig(cfg)
	run := func(ctx context.Context, h hal.HAL) error {
		return app.New(h, ac).Run(ctx)
	}
	host := hal.HostConfig{FlashPath: cfg.FlashPath}

	var err error
	if cfg.Headless {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		err = hal.RunHeadless(ctx, hal.HeadlessConfig{
			Host:   host,
			Hz:     cfg.Hz,
			Hold:   3 * cfg.Tick(),
			Script: os.Stdin,
		}, run)
	} else {
		err = hal.RunWindow(hal.WindowConfig{
			Host:  host,
			Scale: cfg.WindowScale,
			Hz:    cfg.Hz,
		}, run)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
