package indices

import (
	"bytes"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type (
	flag   bool
	port   uint16
	offset int16
	label  string
	ratio  float32
)

type rawKey struct {
	b  []byte
	ok bool
}

func (rk rawKey) IndexKey() ([]byte, bool) {
	return rk.b, rk.ok
}

func keyOf(t *testing.T, v any) ([]byte, bool) {
	kfn := KeyFuncFor(reflect.TypeOf(v))
	require.NotNil(t, kfn, "%T", v)
	return kfn(reflect.ValueOf(v))
}

func TestKeyEncoding(t *testing.T) {
	cases := []struct {
		value   any
		want    []byte
		nonzero bool
	}{
		{flag(false), []byte{0x00}, false},
		{flag(true), []byte{0x01}, true},
		{port(0), []byte{0x00, 0x00}, false},
		{port(0x0304), []byte{0x03, 0x04}, true},
		{uint8(200), []byte{0xc8}, true},
		{offset(0), []byte{0x80, 0x00}, false},
		{offset(0x0304), []byte{0x83, 0x04}, true},
		{offset(-2), []byte{0x7f, 0xfe}, true},
		{offset(math.MinInt16), []byte{0x00, 0x00}, true},
		{int32(-1), []byte{0x7f, 0xff, 0xff, 0xff}, true},
		{label(""), []byte{0x00}, false},
		{label("k"), []byte{'k', 0x00}, true},
		{time.Time{}, make([]byte, 12), false},
		{time.Time{}.Add(2 * time.Second), []byte{0, 0, 0, 0, 0, 0, 0, 2, 0, 0, 0, 0}, true},
		{time.Time{}.Add(3), []byte{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 3}, true},
		{rawKey{}, nil, false},
		{rawKey{b: []byte{0xab}, ok: true}, []byte{0xab}, true},
	}
	for _, c := range cases {
		b, ok := keyOf(t, c.value)
		assert.Equal(t, c.want, b, "%T(%v)", c.value, c.value)
		assert.Equal(t, c.nonzero, ok, "%T(%v)", c.value, c.value)
	}
}

func TestKeyOrdering(t *testing.T) {
	sequences := [][]any{
		{offset(math.MinInt16), offset(-300), offset(-1), offset(0), offset(1), offset(300), offset(math.MaxInt16)},
		{port(0), port(1), port(255), port(256), port(math.MaxUint16)},
		{math.Inf(-1), -2.5, -1.0, -0.5, 0.0, 0.5, 1.0, 2.5, math.Inf(1)},
		{ratio(-3), ratio(-0.25), ratio(0), ratio(0.25), ratio(3)},
		{label(""), label("a"), label("a\x01"), label("ab"), label("b")},
		{time.Time{}, time.Time{}.Add(time.Nanosecond), time.Unix(0, 0), time.Unix(1, 5)},
	}
	for _, seq := range sequences {
		prev, _ := keyOf(t, seq[0])
		for _, v := range seq[1:] {
			b, _ := keyOf(t, v)
			assert.Equal(t, -1, bytes.Compare(prev, b), "%T(%v) must sort after its predecessor", v, v)
			prev = b
		}
	}
}

func TestFloatKeys(t *testing.T) {
	b, ok := keyOf(t, ratio(0))
	assert.False(t, ok)
	assert.Len(t, b, 4)

	b, ok = keyOf(t, 1.5)
	assert.True(t, ok)
	assert.Len(t, b, 8)
}

func TestNotIndexable(t *testing.T) {
	for _, v := range []any{(*int)(nil), []string{}, map[string]int{}, struct{ A int }{}} {
		assert.Nil(t, KeyFuncFor(reflect.TypeOf(v)), "%T", v)
	}
}

func TestKeyOf(t *testing.T) {
	b, err := KeyOf("ab")
	require.NoError(t, err)
	require.Equal(t, []byte("ab\x00"), b)

	b, err = KeyOf(rawKey{b: []byte{0x07}, ok: true})
	require.NoError(t, err)
	require.Equal(t, []byte{0x07}, b)

	_, err = KeyOf([]string{"a"})
	require.EqualError(t, err, "type []string is not indexable")
	_, err = KeyOf(nil)
	require.EqualError(t, err, "nil is not indexable")
}
