package codec

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/ridge/multikey/collection"
	"github.com/stretchr/testify/require"
)

type fooID string

type foo struct {
	ID    fooID  `json:"id" yaml:"id"`
	Group string `json:"group,omitempty" yaml:"group,omitempty"`
}

var (
	fooIndexGroup = collection.SecondaryIndex("group", func(f foo) string { return f.Group })
	fooSchema     = collection.NewSchema[fooID, foo]("foo", func(f foo) fooID { return f.ID }, fooIndexGroup)
)

// testEnv returns a collection with tombstones and an item replaced in place
func testEnv(t *testing.T) *collection.Collection[fooID, foo] {
	c, err := fooSchema.Empty().AddMany(
		foo{ID: "a", Group: "x"},
		foo{ID: "b", Group: "x"},
		foo{ID: "c", Group: "y"},
		foo{ID: "d"},
	)
	require.NoError(t, err)
	c = c.RemoveByKey("b")
	c, err = c.SetItem(foo{ID: "c", Group: "x"})
	require.NoError(t, err)
	c, err = c.Add(foo{ID: "b", Group: "y"})
	require.NoError(t, err)
	require.Equal(t, 1, c.Tombstones())
	return c
}

func TestFormatOf(t *testing.T) {
	for path, expected := range map[string]Format{
		"a.json":     FormatJSON,
		"dir/b.JSON": FormatJSON,
		"c.jsonl":    FormatJSONLines,
		"d.ndjson":   FormatJSONLines,
		"e.yaml":     FormatYAML,
		"/tmp/f.yml": FormatYAML,
	} {
		format, err := FormatOf(path)
		require.NoError(t, err)
		require.Equal(t, expected, format, path)
	}
	_, err := FormatOf("g.csv")
	require.ErrorIs(t, err, ErrUnknownFormat)
}

func TestRoundTrip(t *testing.T) {
	c := testEnv(t)
	for _, format := range []Format{FormatJSON, FormatJSONLines, FormatYAML} {
		data, err := Encode(format, c)
		require.NoError(t, err)
		decoded, err := Decode(format, fooSchema, data)
		require.NoError(t, err, format)
		require.True(t, decoded.Equal(c.Compact()), format)
		require.Zero(t, decoded.Tombstones())
		require.Equal(t, collection.GetBy(c, fooIndexGroup, "x"), collection.GetBy(decoded, fooIndexGroup, "x"))
	}
}

func TestEncodeJSON(t *testing.T) {
	data, err := EncodeJSON(testEnv(t))
	require.NoError(t, err)
	require.JSONEq(t, `[{"id":"a","group":"x"},{"id":"c","group":"x"},{"id":"d"},{"id":"b","group":"y"}]`, string(data))

	data, err = EncodeJSON(fooSchema.Empty())
	require.NoError(t, err)
	require.Equal(t, "[]", string(data))
}

func TestEncodeJSONLines(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeJSONLines(&buf, testEnv(t)))
	require.Equal(t, `{"id":"a","group":"x"}
{"id":"c","group":"x"}
{"id":"d"}
{"id":"b","group":"y"}
`, buf.String())
}

func TestDecodeDuplicates(t *testing.T) {
	_, err := DecodeJSON(fooSchema, []byte(`[{"id":"a"},{"id":"b"},{"id":"a","group":"z"}]`))
	require.ErrorIs(t, err, collection.ErrDuplicateKey)

	_, err = DecodeJSONLines(fooSchema, bytes.NewReader([]byte("{\"id\":\"a\"}\n\n{\"id\":\"a\"}\n")))
	require.ErrorIs(t, err, collection.ErrDuplicateKey)

	_, err = DecodeYAML(fooSchema, []byte("- id: a\n- id: a\n"))
	require.ErrorIs(t, err, collection.ErrDuplicateKey)
}

func TestDecodeErrors(t *testing.T) {
	_, err := DecodeJSON(fooSchema, []byte(`{"id":"a"}`))
	require.Error(t, err)

	_, err = DecodeJSONLines(fooSchema, bytes.NewReader([]byte("{\"id\":\"a\"}\nnope\n")))
	require.ErrorContains(t, err, "line 2")

	_, err = Decode(Format("xml"), fooSchema, nil)
	require.ErrorIs(t, err, ErrUnknownFormat)
}

func TestDecodeEmpty(t *testing.T) {
	c, err := DecodeYAML(fooSchema, nil)
	require.NoError(t, err)
	require.Zero(t, c.Count())

	c, err = DecodeJSONLines(fooSchema, bytes.NewReader(nil))
	require.NoError(t, err)
	require.Zero(t, c.Count())
}

func TestFiles(t *testing.T) {
	dir := t.TempDir()
	c := testEnv(t)
	for _, name := range []string{"foo.json", "foo.jsonl", "foo.yaml"} {
		path := filepath.Join(dir, name)
		require.NoError(t, WriteFile(path, c))
		decoded, err := ReadFile(fooSchema, path)
		require.NoError(t, err)
		require.True(t, decoded.Equal(c))
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 3) // no temporary files left behind

	require.ErrorIs(t, WriteFile(filepath.Join(dir, "foo.txt"), c), ErrUnknownFormat)
	_, err = ReadFile(fooSchema, filepath.Join(dir, "missing.json"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
