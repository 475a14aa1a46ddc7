// Package mirror exports collections into a go-memdb table.
//
// A collection enumerates in insertion order. When sorted access is needed (all
// items by primary key, items sharing a secondary key ordered by primary key),
// sync the collection into a Mirror and query a Snapshot instead. Keys are
// encoded with indices.KeyOf, so both the primary key type and the secondary
// key types must be indexable.
//
// Each Sync applies only the difference from the previously synced collection
// and reports it, which makes a Mirror a cheap change detector between two
// versions of a collection.
package mirror

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/hashicorp/go-memdb"
	"github.com/ridge/multikey/collection"
	"github.com/ridge/multikey/indices"
	"github.com/ridge/must/v2"
)

const primaryIndexName = "id" // this is the constant primary index name expected by memdb

// Change is a single change applied by Sync. A nil Before means the item was
// added, a nil After means it was removed.
type Change[T any] struct {
	Before *T
	After  *T
}

// Mirror is a memdb table kept in sync with collections of one schema.
// Safe for concurrent use.
type Mirror[P comparable, T any] struct {
	schema *collection.Schema[P, T]
	db     *memdb.MemDB

	mu   sync.Mutex
	last *collection.Collection[P, T]
}

// New creates an empty Mirror for a schema. Panics if the primary key type is
// not indexable.
func New[P comparable, T any](schema *collection.Schema[P, T]) *Mirror[P, T] {
	pt := reflect.TypeOf((*P)(nil)).Elem()
	keyFn := indices.KeyFuncFor(pt)
	if keyFn == nil {
		panic(fmt.Errorf("mirror %s: primary key type %s is not indexable", schema, pt))
	}

	indexes := map[string]*memdb.IndexSchema{
		primaryIndexName: {
			Name:    primaryIndexName,
			Unique:  true,
			Indexer: primaryIndexer[P, T]{schema: schema, t: pt, keyFn: keyFn},
		},
	}
	for _, name := range schema.Levels() {
		if name == primaryIndexName {
			panic(fmt.Errorf("mirror %s: index name %q is reserved", schema, name))
		}
		level, _ := schema.Level(name)
		indexes[name] = &memdb.IndexSchema{
			Name:    name,
			Indexer: levelIndexer[T]{level: level},
		}
	}

	dbSchema := &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			schema.Name(): {Name: schema.Name(), Indexes: indexes},
		},
	}
	return &Mirror[P, T]{
		schema: schema,
		db:     must.OK1(memdb.NewMemDB(dbSchema)),
		last:   schema.Empty(),
	}
}

// Snapshot returns a snapshot of the last synced state
func (m *Mirror[P, T]) Snapshot() Snapshot[P, T] {
	return Snapshot[P, T]{schema: m.schema, txn: m.db.Txn(false)}
}

// Sync makes the table hold exactly the live items of c and returns the
// resulting snapshot together with the changes keyed by primary key. Returns
// an error (and changes nothing) if c is not valid or holds keys that can't be
// indexed.
func (m *Mirror[P, T]) Sync(c *collection.Collection[P, T]) (Snapshot[P, T], map[P]Change[T], error) {
	if err := c.Validate(); err != nil {
		return Snapshot[P, T]{}, nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	table := m.schema.Name()
	txn := m.db.Txn(true)
	defer txn.Abort() // no-op after Commit

	changes := map[P]Change[T]{}
	var err error
	c.Each(func(key P, item T) bool {
		before, existed := m.last.TryGet(key)
		if existed && reflect.DeepEqual(before, item) {
			return true
		}
		if err = txn.Insert(table, item); err != nil {
			err = fmt.Errorf("mirror %s: inserting %v: %w", m.schema, key, err)
			return false
		}
		after := item
		change := Change[T]{After: &after}
		if existed {
			change.Before = &before
		}
		changes[key] = change
		return true
	})
	if err != nil {
		return Snapshot[P, T]{}, nil, err
	}
	m.last.Each(func(key P, item T) bool {
		if c.ContainsKey(key) {
			return true
		}
		if err = txn.Delete(table, item); err != nil {
			err = fmt.Errorf("mirror %s: deleting %v: %w", m.schema, key, err)
			return false
		}
		before := item
		changes[key] = Change[T]{Before: &before}
		return true
	})
	if err != nil {
		return Snapshot[P, T]{}, nil, err
	}

	txn.Commit()
	m.last = c
	return Snapshot[P, T]{schema: m.schema, txn: m.db.Txn(false)}, changes, nil
}
