package collection

// GetBy returns the live items whose key at the given level equals key, in
// insertion order. Returns an empty slice if there are none.
//
// Panics if the level is not declared in the collection's schema.
func GetBy[P comparable, T any, S comparable](c *Collection[P, T], level *Secondary[T, S], key S) []T {
	items, _ := c.search(c.schema.levelOf(level), key)
	return items
}

// TryGetBy is like GetBy, also returning whether any item matched
func TryGetBy[P comparable, T any, S comparable](c *Collection[P, T], level *Secondary[T, S], key S) ([]T, bool) {
	return c.search(c.schema.levelOf(level), key)
}

// ContainsBy returns whether any live item has the given key at the level
func ContainsBy[P comparable, T any, S comparable](c *Collection[P, T], level *Secondary[T, S], key S) bool {
	_, ok := c.secondaryIndex(c.schema.levelOf(level)).positions[key]
	return ok
}

// KeysBy returns the distinct keys of live items at the level, in order of
// first appearance
func KeysBy[P comparable, T any, S comparable](c *Collection[P, T], level *Secondary[T, S]) []S {
	idx := c.secondaryIndex(c.schema.levelOf(level))
	keys := make([]S, 0, len(idx.keys))
	for _, key := range idx.keys {
		k, _ := key.(S)
		keys = append(keys, k)
	}
	return keys
}

// Search is the untyped form of GetBy addressing the level by name. The key
// must have the level's key type to match anything.
func (c *Collection[P, T]) Search(level string, key any) []T {
	items, _ := c.search(c.schema.levelIndex(level), key)
	return items
}

// ContainsIn is the untyped form of ContainsBy
func (c *Collection[P, T]) ContainsIn(level string, key any) bool {
	_, ok := c.secondaryIndex(c.schema.levelIndex(level)).positions[key]
	return ok
}

// LevelKeys is the untyped form of KeysBy
func (c *Collection[P, T]) LevelKeys(level string) []any {
	idx := c.secondaryIndex(c.schema.levelIndex(level))
	return append(make([]any, 0, len(idx.keys)), idx.keys...)
}

func (c *Collection[P, T]) search(level int, key any) ([]T, bool) {
	positions, ok := c.secondaryIndex(level).positions[key]
	items := make([]T, 0, len(positions))
	for _, pos := range positions {
		v, _ := c.slots.Get(slotKey(pos))
		item, _ := v.(T)
		items = append(items, item)
	}
	return items, ok
}
