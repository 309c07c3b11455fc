//go:build !tinygo && !periph && !cgo

package hal

import (
	"context"
	"errors"
)

// WindowConfig controls the desktop window.
type WindowConfig struct {
	Host  HostConfig
	Scale int
	Hz    int
}

func RunWindow(_ WindowConfig, _ func(ctx context.Context, h HAL) error) error {
	return errors.New("window mode requires cgo (build/run with CGO_ENABLED=1), or use -headless")
}
