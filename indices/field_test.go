package indices

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type fooID string

type barName string

type Foo struct {
	ID     fooID
	Name   barName
	Parent *fooID
	Weight int
	secret string
}

func TestField(t *testing.T) {
	sel := Field[Foo, fooID]("ID")
	require.Equal(t, fooID("a"), sel(Foo{ID: "a"}))
	require.Equal(t, fooID(""), sel(Foo{}))

	weight := Field[Foo, int]("Weight")
	require.Equal(t, 3, weight(Foo{Weight: 3}))
}

func TestFieldPointers(t *testing.T) {
	parent := fooID("p")
	sel := Field[Foo, fooID]("Parent")
	require.Equal(t, fooID("p"), sel(Foo{Parent: &parent}))
	require.Equal(t, fooID(""), sel(Foo{}))

	byPtr := Field[*Foo, fooID]("ID")
	require.Equal(t, fooID("a"), byPtr(&Foo{ID: "a"}))
	require.Equal(t, fooID(""), byPtr(nil))
}

func TestFieldIgnoreCase(t *testing.T) {
	sel := Field[Foo, barName]("Name", IgnoreCase)
	require.Equal(t, barName("straße"), sel(Foo{Name: "STRAßE"}))
	require.Equal(t, sel(Foo{Name: "Abc"}), sel(Foo{Name: "aBC"}))

	require.PanicsWithError(t, "field indices.Foo.Weight must be string-based for case-insensitive indexing", func() {
		Field[Foo, int]("Weight", IgnoreCase)
	})
}

func TestFieldErrors(t *testing.T) {
	require.PanicsWithError(t, "field indices.Foo.Missing not found", func() {
		Field[Foo, string]("Missing")
	})
	require.PanicsWithError(t, "field indices.Foo.secret is not exported", func() {
		Field[Foo, string]("secret")
	})
	require.PanicsWithError(t, "field indices.Foo.ID has type indices.fooID, expected string", func() {
		Field[Foo, string]("ID")
	})
	require.PanicsWithError(t, "field ID: string is not a struct", func() {
		Field[string, string]("ID")
	})
}
