package synth

import (
	"fmt"
	"time"
)

// DefaultAddress is the Si5351A I2C address.
const DefaultAddress = 0x60

const (
	regStatus       = 0
	regOutputEnable = 3
	regClkControl   = 16
	regPLLA         = 26
	regPLLB         = 34
	regMS0          = 42
	regPLLReset     = 177
	regCrystalLoad  = 183

	statusSysInit = 0x80

	clkPowerDown = 0x80
	clkIntMode   = 0x40
	clkSrcPLLB   = 0x20
	clkSrcMS     = 0x0C

	pllResetA = 0x20
	pllResetB = 0x80

	msDivBy4 = 0x0C

	fracDenom = 1048575

	pllMin uint64 = 600_000_000 * 100
	outMin uint64 = 500_000 * 100
	outMax uint64 = 200_000_000 * 100
	// Outputs at or above this run the multisynth in divide-by-4 mode.
	divBy4Min uint64 = 150_000_000 * 100

	initPolls = 100
)

// Bus is an I2C bus. drivers.I2C, *machine.I2C and periph's i2c.Bus all
// satisfy it.
type Bus interface {
	Tx(addr uint16, w, r []byte) error
}

// CrystalLoad is the internal load capacitance register value.
type CrystalLoad uint8

const (
	CrystalLoad6pF  CrystalLoad = 0x52
	CrystalLoad8pF  CrystalLoad = 0x92
	CrystalLoad10pF CrystalLoad = 0xD2
)

// Config describes the crystal the chip runs from.
type Config struct {
	Address uint16
	// CrystalHz is the nominal crystal frequency (default 25 MHz).
	CrystalHz uint32
	Load      CrystalLoad
}

// Si5351 drives an Si5351A with CLK0 on PLLA and CLK1/CLK2 on PLLB.
type Si5351 struct {
	bus  Bus
	addr uint16
	xtal uint32
	load CrystalLoad

	ppb     int32
	freq    [channelCount]uint64
	drive   [channelCount]Drive
	enabled uint8
	ready   bool
}

// NewSi5351 returns an unconfigured driver on bus.
func NewSi5351(bus Bus, cfg Config) *Si5351 {
	if cfg.Address == 0 {
		cfg.Address = DefaultAddress
	}
	if cfg.CrystalHz == 0 {
		cfg.CrystalHz = 25_000_000
	}
	if cfg.Load == 0 {
		cfg.Load = CrystalLoad8pF
	}
	return &Si5351{bus: bus, addr: cfg.Address, xtal: cfg.CrystalHz, load: cfg.Load}
}

// Configure probes the chip, waits for it to finish its own init and leaves
// every output disabled and powered down.
func (d *Si5351) Configure() error {
	status, err := d.readReg(regStatus)
	if err != nil {
		return fmt.Errorf("si5351: probe: %w", err)
	}
	for i := 0; status&statusSysInit != 0; i++ {
		if i >= initPolls {
			return ErrNotReady
		}
		time.Sleep(time.Millisecond)
		if status, err = d.readReg(regStatus); err != nil {
			return fmt.Errorf("si5351: status: %w", err)
		}
	}

	if err := d.writeRegs(regOutputEnable, 0xFF); err != nil {
		return err
	}
	if err := d.writeRegs(regClkControl, clkPowerDown, clkPowerDown, clkPowerDown,
		clkPowerDown, clkPowerDown, clkPowerDown, clkPowerDown, clkPowerDown); err != nil {
		return err
	}
	if err := d.writeRegs(regCrystalLoad, byte(d.load)); err != nil {
		return err
	}
	d.enabled = 0
	d.ready = true
	return nil
}

// SetCorrection applies a crystal trim and retunes every programmed output.
func (d *Si5351) SetCorrection(ppb int32) error {
	d.ppb = ppb
	if !d.ready {
		return nil
	}
	for ch := Channel(0); ch < channelCount; ch++ {
		if d.freq[ch] == 0 {
			continue
		}
		if err := d.program(ch, d.freq[ch]); err != nil {
			return err
		}
	}
	return nil
}

// Correction returns the trim last applied.
func (d *Si5351) Correction() int32 { return d.ppb }

// SetFrequency programs ch to centiHz.
func (d *Si5351) SetFrequency(ch Channel, centiHz uint64) error {
	if ch >= channelCount {
		return ErrChannel
	}
	if !d.ready {
		return ErrNotReady
	}
	if err := d.program(ch, centiHz); err != nil {
		return err
	}
	d.freq[ch] = centiHz
	return nil
}

// Frequency returns the frequency last programmed on ch.
func (d *Si5351) Frequency(ch Channel) uint64 {
	if ch >= channelCount {
		return 0
	}
	return d.freq[ch]
}

// EnableOutput switches the ch output driver.
func (d *Si5351) EnableOutput(ch Channel, on bool) error {
	if ch >= channelCount {
		return ErrChannel
	}
	if on {
		d.enabled |= 1 << ch
	} else {
		d.enabled &^= 1 << ch
	}
	return d.writeRegs(regOutputEnable, ^d.enabled)
}

// SetDriveStrength sets the ch output current.
func (d *Si5351) SetDriveStrength(ch Channel, drive Drive) error {
	if ch >= channelCount {
		return ErrChannel
	}
	d.drive[ch] = drive & 0x03
	if d.freq[ch] == 0 {
		return nil
	}
	return d.writeRegs(regClkControl+byte(ch), d.control(ch))
}

// plan is one output's divider settings.
type plan struct {
	pllA, pllB uint64 // feedback a + b/fracDenom
	div        uint64
	divBy4     bool
}

func (d *Si5351) reference() uint64 {
	ref := int64(d.xtal) * 100
	return uint64(ref + ref*int64(d.ppb)/1_000_000_000)
}

func planFor(centiHz, ref uint64) (plan, error) {
	if centiHz < outMin || centiHz > outMax {
		return plan{}, fmt.Errorf("%w: %d.%02d Hz", ErrFrequencyRange, centiHz/100, centiHz%100)
	}
	var p plan
	if centiHz >= divBy4Min {
		p.div = 4
		p.divBy4 = true
	} else {
		p.div = (pllMin + centiHz - 1) / centiHz
		if p.div < 6 {
			p.div = 6
		}
		if p.div%2 != 0 {
			p.div++
		}
	}
	vco := centiHz * p.div
	p.pllA = vco / ref
	p.pllB = ((vco%ref)*fracDenom + ref/2) / ref
	if p.pllB >= fracDenom {
		p.pllA++
		p.pllB -= fracDenom
	}
	if p.pllA < 15 || p.pllA > 90 {
		return plan{}, fmt.Errorf("%w: feedback %d", ErrFrequencyRange, p.pllA)
	}
	return p, nil
}

func (d *Si5351) program(ch Channel, centiHz uint64) error {
	p, err := planFor(centiHz, d.reference())
	if err != nil {
		return err
	}

	pllReg, reset := byte(regPLLA), byte(pllResetA)
	if pllFor(ch) == pllB {
		pllReg, reset = regPLLB, pllResetB
	}

	bb := 128 * p.pllB / fracDenom
	p1 := 128*p.pllA + bb - 512
	p2 := 128*p.pllB - fracDenom*bb
	if err := d.writeRegs(pllReg, params(uint32(p1), uint32(p2), fracDenom, 0)...); err != nil {
		return err
	}

	var ms []byte
	if p.divBy4 {
		ms = params(0, 0, 1, msDivBy4)
	} else {
		ms = params(uint32(128*p.div-512), 0, 1, 0)
	}
	if err := d.writeRegs(regMS0+8*byte(ch), ms...); err != nil {
		return err
	}
	d.freq[ch] = centiHz
	if err := d.writeRegs(regClkControl+byte(ch), d.control(ch)); err != nil {
		return err
	}
	return d.writeRegs(regPLLReset, reset)
}

type pllSel uint8

const (
	pllA pllSel = iota
	pllB
)

func pllFor(ch Channel) pllSel {
	if ch == CLK0 {
		return pllA
	}
	return pllB
}

func (d *Si5351) control(ch Channel) byte {
	c := byte(clkIntMode|clkSrcMS) | byte(d.drive[ch])
	if pllFor(ch) == pllB {
		c |= clkSrcPLLB
	}
	return c
}

// params encodes a P1/P2/P3 divider block. extra lands in the bits next to
// P1[17:16] (R divider and DIVBY4 in multisynth blocks).
func params(p1, p2, p3 uint32, extra byte) []byte {
	return []byte{
		byte(p3 >> 8),
		byte(p3),
		extra | byte(p1>>16)&0x03,
		byte(p1 >> 8),
		byte(p1),
		byte(p3>>16)&0x0F<<4 | byte(p2>>16)&0x0F,
		byte(p2 >> 8),
		byte(p2),
	}
}

func (d *Si5351) readReg(reg byte) (byte, error) {
	var buf [1]byte
	if err := d.bus.Tx(d.addr, []byte{reg}, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

func (d *Si5351) writeRegs(reg byte, data ...byte) error {
	w := make([]byte, 0, len(data)+1)
	w = append(w, reg)
	w = append(w, data...)
	if err := d.bus.Tx(d.addr, w, nil); err != nil {
		return fmt.Errorf("si5351: write reg %d: %w", reg, err)
	}
	return nil
}
