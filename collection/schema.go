package collection

import (
	"fmt"
	"reflect"

	iradix "github.com/hashicorp/go-immutable-radix"
)

// Level is a secondary key level declared in a Schema. Extract must return
// values that are comparable at run time: they key a map.
type Level[T any] interface {
	Name() string       // stable name, unique within a schema
	Extract(item T) any // the item's key at this level
}

// Secondary is a typed secondary key level
type Secondary[T any, S comparable] struct {
	name string
	fn   func(T) S
}

// SecondaryIndex defines a secondary key level. The selector must be a pure
// function of the item.
//
// S must be a concrete type: an interface type (any included) satisfies
// comparable but may hold slices or maps, which can't key an index, so
// SecondaryIndex panics on it.
func SecondaryIndex[T any, S comparable](name string, fn func(T) S) *Secondary[T, S] {
	if fn == nil {
		panic(fmt.Errorf("secondary index %s: nil selector", name))
	}
	if t := interfaceType[S](); t != nil {
		panic(fmt.Errorf("secondary index %s: key type %s is an interface", name, t))
	}
	return &Secondary[T, S]{name: name, fn: fn}
}

// interfaceType returns K if it is an interface type, nil otherwise
func interfaceType[K any]() reflect.Type {
	if t := reflect.TypeOf((*K)(nil)).Elem(); t.Kind() == reflect.Interface {
		return t
	}
	return nil
}

// Name returns the level name
func (s *Secondary[T, S]) Name() string {
	return s.name
}

// Key returns the item's key at this level
func (s *Secondary[T, S]) Key(item T) S {
	return s.fn(item)
}

// Extract implements Level
func (s *Secondary[T, S]) Extract(item T) any {
	return s.fn(item)
}

// Schema describes one concrete collection type: its primary selector and
// secondary levels. All fields are read-only.
type Schema[P comparable, T any] struct {
	name    string
	primary func(T) P
	levels  []Level[T]
	byName  map[string]int
}

// NewSchema creates a Schema. Panics if the primary selector is nil, if P is
// an interface type (see SecondaryIndex) or if two levels share a name.
func NewSchema[P comparable, T any](name string, primary func(T) P, levels ...Level[T]) *Schema[P, T] {
	if primary == nil {
		panic(fmt.Errorf("schema %s: nil primary selector", name))
	}
	if t := interfaceType[P](); t != nil {
		panic(fmt.Errorf("schema %s: primary key type %s is an interface", name, t))
	}
	s := &Schema[P, T]{
		name:    name,
		primary: primary,
		levels:  make([]Level[T], 0, len(levels)),
		byName:  make(map[string]int, len(levels)),
	}
	for _, level := range levels {
		levelName := level.Name()
		if _, ok := s.byName[levelName]; ok {
			panic(fmt.Sprintf("duplicate index name on %s: %s", name, levelName))
		}
		s.byName[levelName] = len(s.levels)
		s.levels = append(s.levels, level)
	}
	return s
}

// Name returns the schema name
func (s *Schema[P, T]) Name() string {
	return s.name
}

func (s *Schema[P, T]) String() string {
	return s.name
}

// PrimaryKey returns the item's primary key
func (s *Schema[P, T]) PrimaryKey(item T) P {
	return s.primary(item)
}

// Levels returns the names of the secondary levels in declaration order
func (s *Schema[P, T]) Levels() []string {
	names := make([]string, 0, len(s.levels))
	for _, level := range s.levels {
		names = append(names, level.Name())
	}
	return names
}

// Level returns the secondary level with the given name
func (s *Schema[P, T]) Level(name string) (Level[T], bool) {
	i, ok := s.byName[name]
	if !ok {
		return nil, false
	}
	return s.levels[i], true
}

// Empty returns an empty collection
func (s *Schema[P, T]) Empty() *Collection[P, T] {
	return newCollection(s, iradix.New(), 0)
}

// FromItems returns a collection holding the items in the given order. The
// items are not checked for duplicate primary keys; see Collection.Validate.
func (s *Schema[P, T]) FromItems(items ...T) *Collection[P, T] {
	txn := iradix.New().Txn()
	for i, item := range items {
		txn.Insert(slotKey(uint64(i)), item)
	}
	return newCollection(s, txn.Commit(), uint64(len(items)))
}

// FromSlots is like FromItems, but nil entries become tombstones: their
// positions are allocated and stay empty.
func (s *Schema[P, T]) FromSlots(slots []*T) *Collection[P, T] {
	txn := iradix.New().Txn()
	for i, item := range slots {
		if item != nil {
			txn.Insert(slotKey(uint64(i)), *item)
		}
	}
	return newCollection(s, txn.Commit(), uint64(len(slots)))
}

func (s *Schema[P, T]) levelIndex(name string) int {
	i, ok := s.byName[name]
	if !ok {
		panic(fmt.Errorf("index %s for %s not found", name, s.name))
	}
	return i
}

func (s *Schema[P, T]) levelOf(level Level[T]) int {
	i := s.levelIndex(level.Name())
	if s.levels[i] != level {
		panic(fmt.Errorf("index %s is not the one declared in %s", level.Name(), s.name))
	}
	return i
}

func (s *Schema[P, T]) duplicate(key P) error {
	return fmt.Errorf("%w in %s: %v", ErrDuplicateKey, s.name, key)
}

func (s *Schema[P, T]) notFound(key P) error {
	return fmt.Errorf("%w in %s: %v", ErrKeyNotFound, s.name, key)
}
