// Package presets keeps the saved frequency-shift slots.
package presets

import (
	"fmt"

	"xverter/internal/eeprom"
	"xverter/internal/menu"
)

const (
	Count = 11

	Min int32 = 20000
	Max int32 = 80000

	// Sentinel marks a slot that was never written.
	Sentinel int32 = -1
)

// Defaults replace never-written slots, by position.
var Defaults = [Count]int32{
	33600, 41000, 42500, 53600,
	73100, 33600, 33600, 33600,
	33600, 33600, 33600,
}

// Store is the persistent cell storage.
type Store interface {
	GetInt32(off uint32) (int32, error)
	PutInt32(off uint32, v int32) error
}

// Registry is the ordered set of shift presets.
type Registry struct {
	store  Store
	values [Count]int32
}

// Load reads every slot, substituting the positional default for slots that
// hold the sentinel. Other values are kept as stored.
func Load(store Store) (*Registry, error) {
	r := &Registry{store: store}
	for i := 0; i < Count; i++ {
		v, err := store.GetInt32(Offset(i))
		if err != nil {
			return nil, fmt.Errorf("presets: load slot %d: %w", i, err)
		}
		if v == Sentinel {
			v = Defaults[i]
		}
		r.values[i] = v
	}
	return r, nil
}

// Offset is the store address of slot i.
func Offset(i int) uint32 { return eeprom.PresetOffset(i) }

// Clamp saturates v into the preset range.
func Clamp(v int32) int32 { return menu.Clamp(v, Min, Max) }

// Get returns slot i.
func (r *Registry) Get(i int) int32 { return r.values[i] }

// Set stores v in slot i after clamping and returns the stored value.
func (r *Registry) Set(i int, v int32) int32 {
	v = Clamp(v)
	r.values[i] = v
	return v
}

// Commit persists slot i.
func (r *Registry) Commit(i int) error {
	if i < 0 || i >= Count {
		return fmt.Errorf("presets: commit slot %d: out of range", i)
	}
	if err := r.store.PutInt32(Offset(i), r.values[i]); err != nil {
		return fmt.Errorf("presets: commit slot %d: %w", i, err)
	}
	return nil
}

// Values returns a copy of every slot.
func (r *Registry) Values() [Count]int32 { return r.values }

// Neighbor returns the slot offset steps away from i, wrapping.
func (r *Registry) Neighbor(i, offset int) int32 {
	return r.values[menu.Wrap(i+offset, Count)]
}
