package httpapi

import (
	"sync/atomic"

	"github.com/ridge/multikey/collection"
)

// Holder keeps the current version of a collection. Readers always observe a
// complete version, and a new version is published with a single Swap.
type Holder[T any] struct {
	current atomic.Pointer[collection.Collection[string, T]]
}

// NewHolder creates a Holder with the initial version
func NewHolder[T any](c *collection.Collection[string, T]) *Holder[T] {
	h := &Holder[T]{}
	h.Swap(c)
	return h
}

// Load returns the current version
func (h *Holder[T]) Load() *collection.Collection[string, T] {
	return h.current.Load()
}

// Swap publishes a new version and returns the previous one
func (h *Holder[T]) Swap(c *collection.Collection[string, T]) *collection.Collection[string, T] {
	if c == nil {
		panic("nil collection")
	}
	return h.current.Swap(c)
}
