// Package indices contains key selectors and key encodings for multi-indexed
// collections.
//
// Field builds a selector from a struct field name, for schemas whose keys are
// plain fields of the item:
//
//	var (
//	    byOwner = collection.SecondaryIndex("owner", indices.Field[cluster, string]("Owner", indices.IgnoreCase))
//	    clusters = collection.NewSchema[cluster.ID, cluster]("clusters",
//	        indices.Field[cluster, cluster.ID]("ID"),
//	        byOwner,
//	    )
//	)
//
// The field is resolved once, when the selector is created; a missing,
// unexported or mistyped field panics right there.
//
// # Indexable types
//
// KeyOf serializes key values to byte sequences whose lexicographical order
// matches the natural order of the values. It is used wherever keys need to be
// sorted, such as the memdb tables of the mirror package.
//
// All integer and floating point types, strings, booleans, time.Time and all
// named types based on them are indexable.
//
// Any other type can be made indexable by implementing a method
//
//	IndexKey() ([]byte, bool)
//
// The method should be a pure function that serializes the value as a byte
// sequence which later participates in lexicographical ordering.
//
// The second return value should be true if the value is nonempty.
package indices
