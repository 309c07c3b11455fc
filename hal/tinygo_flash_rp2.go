//go:build tinygo && baremetal && (rp2040 || rp2350)

package hal

import (
	"fmt"
	"machine"
)

// rp2Flash is the QSPI flash left over past the program image. The settings
// block is its last erase block; machine.Flash offsets already start past
// the firmware, so a reflash never touches the saved values.
type rp2Flash struct {
	size  uint32
	block uint32
}

func newRP2Flash() Flash {
	f := rp2Flash{
		size:  clamp32(machine.Flash.Size()),
		block: clamp32(machine.Flash.EraseBlockSize()),
	}
	if f.size == 0 || f.block == 0 || f.size < f.block {
		return noFlash{}
	}
	return f
}

func clamp32(n int64) uint32 {
	switch {
	case n <= 0:
		return 0
	case n > int64(^uint32(0)):
		return ^uint32(0)
	}
	return uint32(n)
}

func (f rp2Flash) SizeBytes() uint32       { return f.size }
func (f rp2Flash) EraseBlockBytes() uint32 { return f.block }

func (f rp2Flash) ReadAt(p []byte, off uint32) (int, error) {
	n, err := clip(f.size, off, len(p))
	if err != nil {
		return 0, fmt.Errorf("rp2 settings: read %w", err)
	}
	return machine.Flash.ReadAt(p[:n], int64(off))
}

// WriteAt programs p at off. Programming only clears bits; a write that
// would set one fails with ErrNeedsErase instead of being ANDed in.
func (f rp2Flash) WriteAt(p []byte, off uint32) (int, error) {
	n, err := clip(f.size, off, len(p))
	if err != nil {
		return 0, fmt.Errorf("rp2 settings: write %w", err)
	}
	p = p[:n]
	cur := make([]byte, n)
	if _, err := machine.Flash.ReadAt(cur, int64(off)); err != nil {
		return 0, fmt.Errorf("rp2 settings: %w", err)
	}
	if err := clearsOnly(cur, p, off); err != nil {
		return 0, fmt.Errorf("rp2 settings: %w", err)
	}
	return machine.Flash.WriteAt(p, int64(off))
}

func (f rp2Flash) Erase(off, size uint32) error {
	if size == 0 {
		return nil
	}
	n, err := blocks(f.size, f.block, off, size)
	if err != nil {
		return fmt.Errorf("rp2 settings: erase %w", err)
	}
	if err := machine.Flash.EraseBlocks(int64(off/f.block), int64(n)); err != nil {
		return fmt.Errorf("rp2 settings: erase block %d: %w", off/f.block, err)
	}
	return nil
}
