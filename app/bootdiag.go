//go:build !(tinygo && bootdebug)

package app

import "xverter/hal"

func bootStep(string) {}

// BootDiag is a no-op unless built with -tags bootdebug.
func BootDiag(hal.Logger) {}
