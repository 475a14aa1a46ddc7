package collection

import (
	"reflect"

	iradix "github.com/hashicorp/go-immutable-radix"
)

// Add returns a new collection with the item appended. If a live item already
// has the same primary key, returns ErrDuplicateKey and no collection.
func (c *Collection[P, T]) Add(item T) (*Collection[P, T], error) {
	idx, err := c.primaryIndex()
	if err != nil {
		return nil, err
	}
	key := c.schema.primary(item)
	if _, ok := idx.byKey[key]; ok {
		return nil, c.schema.duplicate(key)
	}
	slots, _, _ := c.slots.Insert(slotKey(c.next), item)
	return newCollection(c.schema, slots, c.next+1), nil
}

// AddMany is like Add for several items at once. Either all items are added
// or, on a primary key collision with the collection or within items, none.
func (c *Collection[P, T]) AddMany(items ...T) (*Collection[P, T], error) {
	idx, err := c.primaryIndex()
	if err != nil {
		return nil, err
	}
	txn := c.slots.Txn()
	next := c.next
	added := make(map[P]struct{}, len(items))
	for _, item := range items {
		key := c.schema.primary(item)
		_, live := idx.byKey[key]
		_, dup := added[key]
		if live || dup {
			return nil, c.schema.duplicate(key)
		}
		added[key] = struct{}{}
		txn.Insert(slotKey(next), item)
		next++
	}
	return newCollection(c.schema, txn.Commit(), next), nil
}

// SetItem returns a new collection where the item replaces the live item with
// the same primary key, keeping its position. If there is no such item, SetItem
// behaves as Add.
func (c *Collection[P, T]) SetItem(item T) (*Collection[P, T], error) {
	idx, err := c.primaryIndex()
	if err != nil {
		return nil, err
	}
	e, ok := idx.lookup(c.schema.primary(item))
	if !ok {
		return c.Add(item)
	}
	slots, _, _ := c.slots.Insert(slotKey(e.pos), item)
	return newCollection(c.schema, slots, c.next), nil
}

// RemoveByKey returns a collection without the item with the given primary
// key. Removing an absent key returns the receiver.
func (c *Collection[P, T]) RemoveByKey(key P) *Collection[P, T] {
	e, ok := c.mustPrimaryIndex().lookup(key)
	if !ok {
		return c
	}
	slots, _, _ := c.slots.Delete(slotKey(e.pos))
	return newCollection(c.schema, slots, c.next)
}

// RemoveKeys is like RemoveByKey for several keys at once
func (c *Collection[P, T]) RemoveKeys(keys ...P) *Collection[P, T] {
	idx := c.mustPrimaryIndex()
	txn := c.slots.Txn()
	removed := false
	for _, key := range keys {
		if e, ok := idx.lookup(key); ok {
			txn.Delete(slotKey(e.pos))
			removed = true
		}
	}
	if !removed {
		return c
	}
	return newCollection(c.schema, txn.Commit(), c.next)
}

// RemoveByItem returns a collection without the first live item deeply equal
// to the given one. The primary key is not consulted. If there is no such
// item, returns the receiver.
func (c *Collection[P, T]) RemoveByItem(item T) *Collection[P, T] {
	var found []byte
	c.slots.Root().Walk(func(k []byte, v any) bool {
		if reflect.DeepEqual(v, any(item)) {
			found = k
			return true
		}
		return false
	})
	if found == nil {
		return c
	}
	slots, _, _ := c.slots.Delete(found)
	return newCollection(c.schema, slots, c.next)
}

// Compact returns a collection holding the same live items in the same order
// without tombstones. Returns the receiver if there are no tombstones.
func (c *Collection[P, T]) Compact() *Collection[P, T] {
	if c.Tombstones() == 0 {
		return c
	}
	txn := iradix.New().Txn()
	var next uint64
	c.walk(func(_ uint64, item T) bool {
		txn.Insert(slotKey(next), item)
		next++
		return true
	})
	return newCollection(c.schema, txn.Commit(), next)
}
