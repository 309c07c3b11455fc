//go:build tinygo && bootdebug

package app

import (
	"machine"
	"sync"
	"time"

	"xverter/hal"
)

var (
	bootDiagMu   sync.Mutex
	bootDiagStep string
	bootDiagOnce sync.Once
)

func bootStep(msg string) {
	bootDiagMu.Lock()
	bootDiagStep = msg
	bootDiagMu.Unlock()
}

// BootDiag streams the current bring-up step over USB CDC every 250 ms, so
// a board that hangs before the panel comes up can still say where.
func BootDiag(l hal.Logger) {
	bootDiagOnce.Do(func() {
		go func() {
			for {
				bootDiagMu.Lock()
				step := bootDiagStep
				bootDiagMu.Unlock()

				if step == "" {
					step = "<empty>"
				}
				line := "bootdiag: " + step

				if l != nil {
					l.WriteLineString(line)
				}
				if usb := machine.USBCDC; usb != nil {
					_, _ = usb.Write([]byte(line + "\r\n"))
				}
				if step == "main" {
					return
				}
				time.Sleep(250 * time.Millisecond)
			}
		}()
	})
}
