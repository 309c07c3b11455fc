//go:build tinygo && baremetal && (rp2040 || rp2350)

package hal

const (
	panelWidth  = 128
	panelHeight = 64
	panelAddr   = 0x3C
)
