//go:build !tinygo && !periph

package hal

import (
	"errors"
	"fmt"
	"math/bits"
	"sync"
)

const (
	virtualSi5351Addr  = 0x60
	virtualXtalCentiHz = 25_000_000 * 100

	siStatus      = 0
	siOutputOff   = 3
	siClkControl  = 16
	siPLLA        = 26
	siPLLB        = 34
	siMS0         = 42
	siPLLReset    = 177
	siClkPowerOff = 0x80
	siClkPLLB     = 0x20
	siDivBy4      = 0x0C
)

var errNoDevice = errors.New("i2c: no device at address")

// virtualSi5351 is a register file that answers like an Si5351A on the host
// bus, so the real driver runs unmodified. PLL resets are logged with the
// resulting output frequencies.
type virtualSi5351 struct {
	mu     sync.Mutex
	regs   [256]byte
	logger Logger
}

func newVirtualSi5351(logger Logger) *virtualSi5351 {
	c := &virtualSi5351{logger: logger}
	c.regs[siOutputOff] = 0xFF
	return c
}

// Tx implements Bus.
func (c *virtualSi5351) Tx(addr uint16, w, r []byte) error {
	if addr != virtualSi5351Addr {
		return fmt.Errorf("%w 0x%02x", errNoDevice, addr)
	}
	if len(w) == 0 {
		return nil
	}
	c.mu.Lock()
	reg := int(w[0])
	if len(r) > 0 {
		for i := range r {
			if reg+i == siStatus {
				r[i] = 0
				continue
			}
			r[i] = c.regs[(reg+i)&0xFF]
		}
		c.mu.Unlock()
		return nil
	}
	for i, b := range w[1:] {
		c.regs[(reg+i)&0xFF] = b
	}
	var lines []string
	if reg == siPLLReset && len(w) > 1 {
		lines = c.describe(w[1])
	}
	c.mu.Unlock()

	if c.logger != nil {
		for _, l := range lines {
			c.logger.WriteLineString(l)
		}
	}
	return nil
}

func (c *virtualSi5351) describe(reset byte) []string {
	var out []string
	for ch := 0; ch < 3; ch++ {
		onB := c.regs[siClkControl+ch]&siClkPLLB != 0
		if (reset&0x20 != 0 && !onB) || (reset&0x80 != 0 && onB) {
			f, _ := c.output(ch)
			out = append(out, fmt.Sprintf("si5351: CLK%d %d.%06d MHz", ch, f/100_000_000, f%100_000_000/100))
		}
	}
	return out
}

// Output rebuilds the programmed frequency of ch in centi-hertz.
func (c *virtualSi5351) Output(ch int) (centiHz uint64, enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.output(ch)
}

func (c *virtualSi5351) output(ch int) (uint64, bool) {
	ctl := c.regs[siClkControl+ch]
	enabled := c.regs[siOutputOff]&(1<<ch) == 0 && ctl&siClkPowerOff == 0

	pll := siPLLA
	if ctl&siClkPLLB != 0 {
		pll = siPLLB
	}
	p1, p2, p3, _ := c.fields(pll)
	if p3 == 0 {
		return 0, enabled
	}
	m1, _, _, extra := c.fields(siMS0 + 8*ch)
	div := (m1 + 512) / 128
	if extra&siDivBy4 == siDivBy4 {
		div = 4
	}
	if div == 0 {
		return 0, enabled
	}
	hi, lo := bits.Mul64(virtualXtalCentiHz, (p1+512)*p3+p2)
	vco, _ := bits.Div64(hi, lo, 128*p3)
	return vco / div, enabled
}

func (c *virtualSi5351) fields(base int) (p1, p2, p3 uint64, extra byte) {
	r := c.regs[base : base+8]
	p3 = uint64(r[5]>>4)<<16 | uint64(r[0])<<8 | uint64(r[1])
	p1 = uint64(r[2]&0x03)<<16 | uint64(r[3])<<8 | uint64(r[4])
	p2 = uint64(r[5]&0x0F)<<16 | uint64(r[6])<<8 | uint64(r[7])
	return p1, p2, p3, r[2] &^ 0x03
}
