package collection

import (
	"encoding/binary"
	"sync"
)

// memo is a compute-once cell. The computation is a pure function of an
// immutable collection, so the cached value never goes stale.
type memo[V any] struct {
	once sync.Once
	val  V
	err  error
}

func (m *memo[V]) get(build func() (V, error)) (V, error) {
	m.once.Do(func() {
		m.val, m.err = build()
	})
	return m.val, m.err
}

// Positions are stored big-endian so that the radix tree iterates them in
// numeric order.
func slotKey(pos uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], pos)
	return b[:]
}

func slotPos(k []byte) uint64 {
	return binary.BigEndian.Uint64(k)
}

type entry[P comparable, T any] struct {
	key  P
	pos  uint64
	item T
}

type primaryIndex[P comparable, T any] struct {
	byKey   map[P]int // into entries
	entries []entry[P, T]
}

func (idx *primaryIndex[P, T]) lookup(key P) (entry[P, T], bool) {
	i, ok := idx.byKey[key]
	if !ok {
		return entry[P, T]{}, false
	}
	return idx.entries[i], true
}

type secondaryIndex struct {
	positions map[any][]uint64 // ascending
	keys      []any            // distinct, in order of first appearance
}

func (c *Collection[P, T]) primaryIndex() (*primaryIndex[P, T], error) {
	return c.primary.get(func() (*primaryIndex[P, T], error) {
		n := c.slots.Len()
		idx := &primaryIndex[P, T]{
			byKey:   make(map[P]int, n),
			entries: make([]entry[P, T], 0, n),
		}
		var err error
		c.walk(func(pos uint64, item T) bool {
			key := c.schema.primary(item)
			if _, ok := idx.byKey[key]; ok {
				err = c.schema.duplicate(key)
				return false
			}
			idx.byKey[key] = len(idx.entries)
			idx.entries = append(idx.entries, entry[P, T]{key: key, pos: pos, item: item})
			return true
		})
		if err != nil {
			return nil, err
		}
		return idx, nil
	})
}

func (c *Collection[P, T]) mustPrimaryIndex() *primaryIndex[P, T] {
	idx, err := c.primaryIndex()
	if err != nil {
		panic(err)
	}
	return idx
}

func (c *Collection[P, T]) secondaryIndex(level int) *secondaryIndex {
	idx, _ := c.secondary[level].get(func() (*secondaryIndex, error) {
		extract := c.schema.levels[level].Extract
		idx := &secondaryIndex{positions: map[any][]uint64{}}
		c.walk(func(pos uint64, item T) bool {
			key := extract(item)
			positions, ok := idx.positions[key]
			if !ok {
				idx.keys = append(idx.keys, key)
			}
			idx.positions[key] = append(positions, pos)
			return true
		})
		return idx, nil
	})
	return idx
}
