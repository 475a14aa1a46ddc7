package mirror

import (
	"fmt"

	"github.com/hashicorp/go-memdb"
	"github.com/ridge/multikey/collection"
	"github.com/ridge/must/v2"
)

// Snapshot is a read-only view of a Mirror at the point in time it was taken.
// Safe for concurrent use.
type Snapshot[P comparable, T any] struct {
	schema *collection.Schema[P, T]
	txn    *memdb.Txn
}

// Get returns the item with the given primary key
func (s Snapshot[P, T]) Get(key P) (T, bool) {
	res := must.OK1(s.txn.First(s.schema.Name(), primaryIndexName, key))
	if res == nil {
		var zero T
		return zero, false
	}
	return res.(T), true
}

// All returns an iterator over all items in ascending order of primary key
func (s Snapshot[P, T]) All() collection.Iterator[T] {
	return s.iterator(must.OK1(s.txn.Get(s.schema.Name(), primaryIndexName)))
}

// Search returns an iterator over the items with the given key at a secondary
// level, in ascending order of primary key. Panics if the level is not declared
// in the schema or the key is not indexable.
func (s Snapshot[P, T]) Search(level string, key any) collection.Iterator[T] {
	if _, ok := s.schema.Level(level); !ok {
		panic(fmt.Errorf("index %s for %s not found", level, s.schema))
	}
	return s.iterator(must.OK1(s.txn.Get(s.schema.Name(), level, key)))
}

// Count returns the number of items
func (s Snapshot[P, T]) Count() int {
	n := 0
	for iter := s.All(); iter(nil); {
		n++
	}
	return n
}

func (s Snapshot[P, T]) iterator(iter memdb.ResultIterator) collection.Iterator[T] {
	return func(ptr *T) bool {
		res := iter.Next()
		if res == nil {
			return false
		}
		if ptr != nil {
			*ptr = res.(T)
		}
		return true
	}
}
