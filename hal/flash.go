package hal

import (
	"errors"
	"fmt"
)

// Erased is the value of every flash byte after an erase. A settings cell
// that was never written therefore reads back as int32(-1).
const Erased byte = 0xFF

var (
	// ErrNoFlash is returned by boards without a settings block.
	ErrNoFlash = errors.New("settings flash: not present")
	// ErrNeedsErase means a write tried to set bits an erase has not set.
	ErrNeedsErase = errors.New("settings flash: write needs erase")
	// ErrUnaligned means an erase was not on erase-block boundaries.
	ErrUnaligned = errors.New("settings flash: erase not block aligned")
	// ErrOutOfBounds means an access ran past the end of the flash.
	ErrOutOfBounds = errors.New("settings flash: out of bounds")
)

// noFlash is a board without usable settings flash. Its zero size makes
// eeprom.Open fail, and the app falls back to RAM.
type noFlash struct{}

func (noFlash) SizeBytes() uint32                   { return 0 }
func (noFlash) EraseBlockBytes() uint32             { return 0 }
func (noFlash) ReadAt([]byte, uint32) (int, error)  { return 0, ErrNoFlash }
func (noFlash) WriteAt([]byte, uint32) (int, error) { return 0, ErrNoFlash }
func (noFlash) Erase(uint32, uint32) error          { return ErrNoFlash }

// clip bounds an n byte access at off against a flash of size bytes and
// returns how many bytes fit.
func clip(size, off uint32, n int) (int, error) {
	if off >= size {
		return 0, fmt.Errorf("at %d of %d: %w", off, size, ErrOutOfBounds)
	}
	if room := int(size - off); n > room {
		return room, nil
	}
	return n, nil
}

// blocks checks an erase span and returns the block count it covers.
func blocks(size, block, off, n uint32) (uint32, error) {
	if off%block != 0 || n%block != 0 {
		return 0, fmt.Errorf("off=%d size=%d block=%d: %w", off, n, block, ErrUnaligned)
	}
	if off >= size || n > size-off {
		return 0, fmt.Errorf("off=%d size=%d of %d: %w", off, n, size, ErrOutOfBounds)
	}
	return n / block, nil
}

// clearsOnly reports ErrNeedsErase unless next can be programmed over cur,
// which NOR flash allows only when every written bit goes from 1 to 0.
func clearsOnly(cur, next []byte, off uint32) error {
	for i := range next {
		if cur[i]&next[i] != next[i] {
			return fmt.Errorf("byte %d: %#02x over %#02x: %w", off+uint32(i), next[i], cur[i], ErrNeedsErase)
		}
	}
	return nil
}
