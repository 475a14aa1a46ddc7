package collection

import (
	"encoding/json"
	"reflect"

	iradix "github.com/hashicorp/go-immutable-radix"
)

// Iterator is an iterator over collection items. Every call fills in another
// item into ptr. Returns false when the end of the collection is reached (data
// at ptr won't be modified in this call).
//
// A nil ptr discards one item.
//
// Do not use a single iterator concurrently.
type Iterator[T any] func(ptr *T) bool

// Pair is a primary key with its item
type Pair[P comparable, T any] struct {
	Key  P
	Item T
}

// Collection is an immutable multi-indexed collection.
// Safe for concurrent use.
type Collection[P comparable, T any] struct {
	schema *Schema[P, T]
	slots  *iradix.Tree // slotKey(position) -> T; absent positions are tombstones
	next   uint64       // next position to allocate

	primary   memo[*primaryIndex[P, T]]
	secondary []memo[*secondaryIndex] // one per schema level
}

func newCollection[P comparable, T any](schema *Schema[P, T], slots *iradix.Tree, next uint64) *Collection[P, T] {
	return &Collection[P, T]{
		schema:    schema,
		slots:     slots,
		next:      next,
		secondary: make([]memo[*secondaryIndex], len(schema.levels)),
	}
}

// walk calls fn for every live slot in position order until fn returns false
func (c *Collection[P, T]) walk(fn func(pos uint64, item T) bool) {
	c.slots.Root().Walk(func(k []byte, v any) bool {
		item, _ := v.(T)
		return !fn(slotPos(k), item)
	})
}

// Schema returns the collection's schema
func (c *Collection[P, T]) Schema() *Schema[P, T] {
	return c.schema
}

// Validate builds the primary index, returning ErrDuplicateKey if two live
// items share a primary key
func (c *Collection[P, T]) Validate() error {
	_, err := c.primaryIndex()
	return err
}

// Get returns the item with the given primary key, or ErrKeyNotFound
func (c *Collection[P, T]) Get(key P) (T, error) {
	var zero T
	idx, err := c.primaryIndex()
	if err != nil {
		return zero, err
	}
	e, ok := idx.lookup(key)
	if !ok {
		return zero, c.schema.notFound(key)
	}
	return e.item, nil
}

// TryGet returns the item with the given primary key and whether it was found
func (c *Collection[P, T]) TryGet(key P) (T, bool) {
	e, ok := c.mustPrimaryIndex().lookup(key)
	return e.item, ok
}

// ContainsKey returns whether a live item has the given primary key
func (c *Collection[P, T]) ContainsKey(key P) bool {
	_, ok := c.mustPrimaryIndex().byKey[key]
	return ok
}

// Count returns the number of live items
func (c *Collection[P, T]) Count() int {
	return c.slots.Len()
}

// Slots returns the number of allocated positions, tombstones included
func (c *Collection[P, T]) Slots() int {
	return int(c.next)
}

// Tombstones returns the number of positions whose items were removed
func (c *Collection[P, T]) Tombstones() int {
	return int(c.next) - c.slots.Len()
}

// All returns an iterator over all live items in insertion order
func (c *Collection[P, T]) All() Iterator[T] {
	it := c.slots.Root().Iterator()
	return func(ptr *T) bool {
		_, v, ok := it.Next()
		if !ok {
			return false
		}
		if ptr != nil {
			*ptr, _ = v.(T)
		}
		return true
	}
}

// Each calls fn with every primary key and item in insertion order until fn
// returns false
func (c *Collection[P, T]) Each(fn func(key P, item T) bool) {
	c.walk(func(_ uint64, item T) bool {
		return fn(c.schema.primary(item), item)
	})
}

// Pairs returns all primary keys with their items in insertion order
func (c *Collection[P, T]) Pairs() []Pair[P, T] {
	pairs := make([]Pair[P, T], 0, c.Count())
	c.Each(func(key P, item T) bool {
		pairs = append(pairs, Pair[P, T]{Key: key, Item: item})
		return true
	})
	return pairs
}

// Keys returns all primary keys in insertion order
func (c *Collection[P, T]) Keys() []P {
	keys := make([]P, 0, c.Count())
	c.Each(func(key P, _ T) bool {
		keys = append(keys, key)
		return true
	})
	return keys
}

// Values returns all live items in insertion order
func (c *Collection[P, T]) Values() []T {
	values := make([]T, 0, c.Count())
	c.walk(func(_ uint64, item T) bool {
		values = append(values, item)
		return true
	})
	return values
}

// Equal reports whether both collections hold deeply equal live items in the
// same order. Tombstones are not taken into account.
func (c *Collection[P, T]) Equal(other *Collection[P, T]) bool {
	if c.Count() != other.Count() {
		return false
	}
	a := c.slots.Root().Iterator()
	b := other.slots.Root().Iterator()
	for {
		_, va, ok := a.Next()
		if !ok {
			return true
		}
		_, vb, _ := b.Next()
		if !reflect.DeepEqual(va, vb) {
			return false
		}
	}
}

// MarshalJSON encodes the live items as a JSON array
func (c *Collection[P, T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Values())
}

// MarshalYAML encodes the live items as a YAML sequence
func (c *Collection[P, T]) MarshalYAML() (any, error) {
	return c.Values(), nil
}
