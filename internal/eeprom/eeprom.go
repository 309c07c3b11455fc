// Package eeprom emulates the byte-addressable cells the firmware persists
// its correction and presets in, on top of erase-block flash.
package eeprom

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
)

// Store layout.
const (
	CorrectionOffset uint32 = 0
	PresetBase       uint32 = 4
	CellSize         uint32 = 4
	LayoutBytes      uint32 = PresetBase + 11*CellSize
)

var (
	ErrOutOfRange = errors.New("eeprom: offset out of range")
	ErrNoFlash    = errors.New("eeprom: flash unavailable")
)

// Flash is the raw non-volatile memory the store sits on. Erased bytes read
// back as 0xFF.
type Flash interface {
	SizeBytes() uint32
	EraseBlockBytes() uint32
	ReadAt(p []byte, off uint32) (int, error)
	WriteAt(p []byte, off uint32) (int, error)
	Erase(off, size uint32) error
}

// Store is one erase block of flash addressed as little-endian int32 cells.
type Store struct {
	mu    sync.Mutex
	flash Flash
	base  uint32
	block []byte
}

// Open returns a store over the erase block starting at base.
func Open(f Flash, base uint32) (*Store, error) {
	if f == nil {
		return nil, ErrNoFlash
	}
	bs := f.EraseBlockBytes()
	if bs == 0 || f.SizeBytes() == 0 {
		return nil, ErrNoFlash
	}
	if bs < LayoutBytes {
		return nil, fmt.Errorf("eeprom: erase block %d smaller than layout %d", bs, LayoutBytes)
	}
	if base%bs != 0 || base+bs > f.SizeBytes() {
		return nil, fmt.Errorf("eeprom: base %d: %w", base, ErrOutOfRange)
	}
	return &Store{flash: f, base: base, block: make([]byte, bs)}, nil
}

// PresetOffset is the cell address of preset slot i.
func PresetOffset(i int) uint32 { return PresetBase + uint32(i)*CellSize }

// GetInt32 reads the cell at off. A never-written cell reads as -1.
func (s *Store) GetInt32(off uint32) (int32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(off); err != nil {
		return 0, err
	}
	var cell [CellSize]byte
	if _, err := s.flash.ReadAt(cell[:], s.base+off); err != nil {
		return 0, fmt.Errorf("eeprom: get at %d: %w", off, err)
	}
	return int32(binary.LittleEndian.Uint32(cell[:])), nil
}

// PutInt32 writes v at off. Unchanged cells are not rewritten; a change that
// only clears bits is programmed in place, anything else rewrites the block.
func (s *Store) PutInt32(off uint32, v int32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(off); err != nil {
		return err
	}
	var cell [CellSize]byte
	binary.LittleEndian.PutUint32(cell[:], uint32(v))

	var cur [CellSize]byte
	if _, err := s.flash.ReadAt(cur[:], s.base+off); err != nil {
		return fmt.Errorf("eeprom: put at %d: %w", off, err)
	}
	if bytes.Equal(cur[:], cell[:]) {
		return nil
	}
	if programmable(cur[:], cell[:]) {
		if _, err := s.flash.WriteAt(cell[:], s.base+off); err != nil {
			return fmt.Errorf("eeprom: put at %d: %w", off, err)
		}
		return nil
	}

	if _, err := s.flash.ReadAt(s.block, s.base); err != nil {
		return fmt.Errorf("eeprom: read block at %d: %w", s.base, err)
	}
	copy(s.block[off:], cell[:])
	if err := s.flash.Erase(s.base, uint32(len(s.block))); err != nil {
		return fmt.Errorf("eeprom: erase block at %d: %w", s.base, err)
	}
	if _, err := s.flash.WriteAt(s.block, s.base); err != nil {
		return fmt.Errorf("eeprom: rewrite block at %d: %w", s.base, err)
	}
	return nil
}

func (s *Store) check(off uint32) error {
	if off%CellSize != 0 || off+CellSize > uint32(len(s.block)) {
		return fmt.Errorf("eeprom: cell %d: %w", off, ErrOutOfRange)
	}
	return nil
}

// programmable reports whether flash holding cur can be turned into next
// without an erase.
func programmable(cur, next []byte) bool {
	for i := range next {
		if cur[i]&next[i] != next[i] {
			return false
		}
	}
	return true
}
