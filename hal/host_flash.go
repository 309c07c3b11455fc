//go:build !tinygo

package hal

import (
	"fmt"
	"os"
	"sync"
)

const (
	hostFlashDefaultSizeBytes = 64 * 1024
	hostFlashEraseBlockBytes  = 4096
)

// hostFlash is a flash image kept in a file, so settings survive restarts of
// a hosted run. It follows the NOR rules the board flash has: a write may
// only clear bits, and only an erase sets them back to Erased.
type hostFlash struct {
	mu     sync.Mutex
	path   string
	f      *os.File
	size   uint32
	erased [hostFlashEraseBlockBytes]byte
}

func newHostFlash(path string) (*hostFlash, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("settings image %s: %w", path, err)
	}
	hf := &hostFlash{path: path, f: f, size: hostFlashDefaultSizeBytes}
	for i := range hf.erased {
		hf.erased[i] = Erased
	}

	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("settings image %s: %w", path, err)
	}
	switch {
	case st.Size() == 0:
		// A fresh image behaves like a chip straight from the factory.
		if err := hf.eraseLocked(0, hf.size/hostFlashEraseBlockBytes); err != nil {
			_ = f.Close()
			return nil, err
		}
	case st.Size()%hostFlashEraseBlockBytes != 0 || st.Size() > int64(^uint32(0)):
		_ = f.Close()
		return nil, fmt.Errorf("settings image %s: size %d is not whole %d byte blocks: %w",
			path, st.Size(), hostFlashEraseBlockBytes, os.ErrInvalid)
	default:
		hf.size = uint32(st.Size())
	}
	return hf, nil
}

func (f *hostFlash) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.f == nil {
		return nil
	}
	err := f.f.Close()
	f.f = nil
	return err
}

func (f *hostFlash) SizeBytes() uint32       { return f.size }
func (f *hostFlash) EraseBlockBytes() uint32 { return hostFlashEraseBlockBytes }

func (f *hostFlash) ReadAt(p []byte, off uint32) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.f == nil {
		return 0, ErrNoFlash
	}
	n, err := clip(f.size, off, len(p))
	if err != nil {
		return 0, fmt.Errorf("settings image %s: read %w", f.path, err)
	}
	return f.f.ReadAt(p[:n], int64(off))
}

func (f *hostFlash) WriteAt(p []byte, off uint32) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.f == nil {
		return 0, ErrNoFlash
	}
	n, err := clip(f.size, off, len(p))
	if err != nil {
		return 0, fmt.Errorf("settings image %s: write %w", f.path, err)
	}
	p = p[:n]

	cur := make([]byte, n)
	if _, err := f.f.ReadAt(cur, int64(off)); err != nil {
		return 0, fmt.Errorf("settings image %s: %w", f.path, err)
	}
	if err := clearsOnly(cur, p, off); err != nil {
		return 0, fmt.Errorf("settings image %s: %w", f.path, err)
	}
	return f.f.WriteAt(p, int64(off))
}

func (f *hostFlash) Erase(off, size uint32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.f == nil {
		return ErrNoFlash
	}
	if size == 0 {
		return nil
	}
	n, err := blocks(f.size, hostFlashEraseBlockBytes, off, size)
	if err != nil {
		return fmt.Errorf("settings image %s: erase %w", f.path, err)
	}
	return f.eraseLocked(off, n)
}

func (f *hostFlash) eraseLocked(off, n uint32) error {
	for ; n > 0; n-- {
		if _, err := f.f.WriteAt(f.erased[:], int64(off)); err != nil {
			return fmt.Errorf("settings image %s: erase block at %d: %w", f.path, off, err)
		}
		off += hostFlashEraseBlockBytes
	}
	return nil
}

// FlashCloser is a Flash backed by a file.
type FlashCloser interface {
	Flash
	Close() error
}

// OpenFlashFile opens the settings image at path, creating an erased one if
// the file is missing or empty.
func OpenFlashFile(path string) (FlashCloser, error) {
	return newHostFlash(path)
}
