package eeprom

import (
	"errors"
	"testing"
)

type memFlash struct {
	data   []byte
	block  uint32
	erases int
	writes int
}

func newMemFlash(size, block uint32) *memFlash {
	f := &memFlash{data: make([]byte, size), block: block}
	for i := range f.data {
		f.data[i] = 0xFF
	}
	return f
}

func (f *memFlash) SizeBytes() uint32       { return uint32(len(f.data)) }
func (f *memFlash) EraseBlockBytes() uint32 { return f.block }

func (f *memFlash) ReadAt(p []byte, off uint32) (int, error) {
	return copy(p, f.data[off:]), nil
}

func (f *memFlash) WriteAt(p []byte, off uint32) (int, error) {
	f.writes++
	for i := range p {
		if f.data[int(off)+i]&p[i] != p[i] {
			return 0, errors.New("write requires erase")
		}
		f.data[int(off)+i] = p[i]
	}
	return len(p), nil
}

func (f *memFlash) Erase(off, size uint32) error {
	f.erases++
	for i := off; i < off+size; i++ {
		f.data[i] = 0xFF
	}
	return nil
}

func TestErasedCellReadsSentinel(t *testing.T) {
	s, err := Open(newMemFlash(8192, 4096), 4096)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	got, err := s.GetInt32(PresetOffset(3))
	if err != nil {
		t.Fatalf("GetInt32: %v", err)
	}
	if got != -1 {
		t.Fatalf("GetInt32() = %d, want -1", got)
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	f := newMemFlash(8192, 4096)
	s, err := Open(f, 0)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	for _, v := range []int32{53600, -99999, 20000, 0, 80000} {
		if err := s.PutInt32(CorrectionOffset, v); err != nil {
			t.Fatalf("PutInt32(%d): %v", v, err)
		}
		got, err := s.GetInt32(CorrectionOffset)
		if err != nil {
			t.Fatalf("GetInt32: %v", err)
		}
		if got != v {
			t.Fatalf("GetInt32() = %d, want %d", got, v)
		}
	}

	if err := s.PutInt32(PresetOffset(10), 41000); err != nil {
		t.Fatalf("PutInt32 preset: %v", err)
	}
	if got, _ := s.GetInt32(PresetOffset(10)); got != 41000 {
		t.Fatalf("preset 10 = %d, want 41000", got)
	}
	if got, _ := s.GetInt32(CorrectionOffset); got != 80000 {
		t.Fatalf("correction clobbered by block rewrite: %d", got)
	}

	reopened, err := Open(f, 0)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if got, _ := reopened.GetInt32(PresetOffset(10)); got != 41000 {
		t.Fatalf("after reopen preset 10 = %d, want 41000", got)
	}
}

func TestPutSkipsUnchangedAndProgramsInPlace(t *testing.T) {
	f := newMemFlash(4096, 4096)
	s, err := Open(f, 0)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if err := s.PutInt32(PresetOffset(0), 33600); err != nil {
		t.Fatalf("PutInt32: %v", err)
	}
	if f.erases != 0 {
		t.Fatalf("erases = %d after first write to erased cell, want 0", f.erases)
	}
	writes := f.writes
	if err := s.PutInt32(PresetOffset(0), 33600); err != nil {
		t.Fatalf("PutInt32: %v", err)
	}
	if f.writes != writes {
		t.Fatal("unchanged value was rewritten")
	}
	if err := s.PutInt32(PresetOffset(0), 33601); err != nil {
		t.Fatalf("PutInt32: %v", err)
	}
	if f.erases != 1 {
		t.Fatalf("erases = %d, want 1", f.erases)
	}
}

func TestOpenAndOffsetErrors(t *testing.T) {
	if _, err := Open(nil, 0); !errors.Is(err, ErrNoFlash) {
		t.Fatalf("Open(nil) err = %v, want ErrNoFlash", err)
	}
	if _, err := Open(newMemFlash(4096, 4096), 100); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("Open(unaligned) err = %v, want ErrOutOfRange", err)
	}

	s, err := Open(newMemFlash(4096, 4096), 0)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := s.GetInt32(2); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("GetInt32(2) err = %v, want ErrOutOfRange", err)
	}
	if err := s.PutInt32(4096, 1); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("PutInt32(4096) err = %v, want ErrOutOfRange", err)
	}
}
