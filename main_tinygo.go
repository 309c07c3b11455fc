//go:build tinygo

package main

import (
	"context"

	"xverter/app"
	"xverter/hal"
)

func main() {
	h := hal.New()
	app.BootDiag(h.Logger())
	_ = app.New(h, app.DefaultConfig()).Run(context.Background())
	select {}
}
