package app

import (
	"sync"

	"xverter/internal/presets"
)

// memStore keeps settings in RAM when no flash is available.
type memStore struct {
	mu    sync.Mutex
	cells map[uint32]int32
}

func newMemStore() *memStore { return &memStore{cells: make(map[uint32]int32)} }

func (s *memStore) GetInt32(off uint32) (int32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.cells[off]; ok {
		return v, nil
	}
	return presets.Sentinel, nil
}

func (s *memStore) PutInt32(off uint32, v int32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cells[off] = v
	return nil
}
