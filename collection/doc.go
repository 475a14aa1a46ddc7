// Package collection implements immutable multi-indexed collections.
//
// A collection is a set of items addressable by one unique primary key and by
// any number of non-unique secondary keys. The keys are computed from the
// items by selector functions fixed once per collection type in a Schema:
//
//	type person struct {
//	    ID   int
//	    City string
//	}
//
//	var (
//	    byCity = collection.SecondaryIndex("city", func(p person) string { return p.City })
//	    people = collection.NewSchema[int, person]("people",
//	        func(p person) int { return p.ID },
//	        byCity,
//	    )
//	)
//
// Definitions like byCity are immutable and can be shared among many schemas
// whose item type matches. Selectors must be pure functions of the item.
//
// # Values
//
// A *Collection is an immutable value. Every mutating method (Add, SetItem,
// RemoveByKey, RemoveByItem, Compact and their batch forms) returns a new
// collection; the receiver stays valid and unchanged. Collections are safe for
// concurrent use.
//
//	c, err := people.Empty().Add(person{ID: 1, City: "Oslo"})
//	if err != nil {
//	    return err // collection.ErrDuplicateKey
//	}
//	oslo := collection.GetBy(c, byCity, "Oslo")
//
// # Storage
//
// Items live in a persistent radix tree keyed by slot position. Positions are
// allocated in insertion order and never reused: removing an item leaves a
// tombstone (a position with no item) instead of shifting the rest. Compact
// renumbers the live items when tombstones pile up; it never changes any query
// result.
//
// The primary index and one index per secondary level are derived from the
// tree on first use and cached for the lifetime of the value. A new value
// starts with no indices.
//
// # Duplicates
//
// FromItems and FromSlots accept any sequence without checking it. If two live
// items share a primary key, building the primary index fails with
// ErrDuplicateKey: Get, Add and SetItem return that error, and the total
// accessors (TryGet, ContainsKey, RemoveByKey) panic with it. Call Validate
// right after construction to surface the problem early; the codec package
// does that for every decoded collection.
//
// # Order
//
// Enumeration (All, Each, Pairs, Keys, Values) and secondary lookups yield
// items in insertion order. SetItem replaces an item in place and keeps its
// position.
package collection
