// Package hashtable implements the fixed-capacity open-addressed tables used
// while answering a query. Keys are placed at Slot(key) and collisions probe
// linearly with a stride of three; tables never grow.
package hashtable

import (
	apperrors "github.com/Adithya-Monish-Kumar-K/hashsearch/pkg/errors"
)

const probeStride = 3

// Merge combines the value already stored under a key with a newly inserted
// one.
type Merge[V any] func(old, new V) V

type entry[K comparable, V any] struct {
	key   K
	value V
	used  bool
}

// Table is a fixed-capacity open-addressed map. It is not safe for
// concurrent use.
type Table[K comparable, V any] struct {
	slots  []entry[K, V]
	encode func(K) []byte
	merge  Merge[V]
	order  []K
	track  bool
	size   int
}

func newTable[K comparable, V any](capacity uint64, encode func(K) []byte, merge Merge[V], track bool) *Table[K, V] {
	return &Table[K, V]{
		slots:  make([]entry[K, V], capacity),
		encode: encode,
		merge:  merge,
		track:  track,
	}
}

// find returns the slot holding k, or the empty slot where k would go. It
// fails once the probe sequence returns to its start without either.
func (t *Table[K, V]) find(k K) (uint64, bool, error) {
	capacity := uint64(len(t.slots))
	if capacity == 0 {
		return 0, false, apperrors.CapacityExceeded(0)
	}
	start := Slot(t.encode(k), capacity)
	i := start
	for {
		e := &t.slots[i]
		if !e.used {
			return i, false, nil
		}
		if e.key == k {
			return i, true, nil
		}
		i = (i + probeStride) % capacity
		if i == start {
			return 0, false, apperrors.CapacityExceeded(capacity)
		}
	}
}

// Insert stores v under k, merging with any existing value.
func (t *Table[K, V]) Insert(k K, v V) error {
	i, found, err := t.find(k)
	if err != nil {
		return err
	}
	e := &t.slots[i]
	if found {
		e.value = t.merge(e.value, v)
		return nil
	}
	e.key, e.value, e.used = k, v, true
	t.size++
	if t.track {
		t.order = append(t.order, k)
	}
	return nil
}

func (t *Table[K, V]) Get(k K) (V, bool) {
	i, found, err := t.find(k)
	if err != nil || !found {
		var zero V
		return zero, false
	}
	return t.slots[i].value, true
}

func (t *Table[K, V]) Contains(k K) bool {
	_, ok := t.Get(k)
	return ok
}

// Len returns the number of distinct keys.
func (t *Table[K, V]) Len() int { return t.size }

func (t *Table[K, V]) Cap() uint64 { return uint64(len(t.slots)) }

// Keys returns the distinct keys in first-insertion order. Only tables that
// track insertion order return a non-nil slice.
func (t *Table[K, V]) Keys() []K {
	if !t.track {
		return nil
	}
	out := make([]K, len(t.order))
	copy(out, t.order)
	return out
}

// Reset empties the table without changing its capacity.
func (t *Table[K, V]) Reset() {
	clear(t.slots)
	t.order = t.order[:0]
	t.size = 0
}
