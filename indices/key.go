package indices

import (
	"encoding/binary"
	"fmt"
	"math"
	"reflect"
	"time"
)

// A KeyFunc serializes a value to a sortable byte sequence. The second return
// value is false for the zero value.
type KeyFunc func(reflect.Value) ([]byte, bool)

// IndexKey is an interface that can be implemented to make any type indexable
type IndexKey interface {
	IndexKey() ([]byte, bool)
}

var indexKeyInterface = reflect.TypeOf((*IndexKey)(nil)).Elem()

var timeType = reflect.TypeOf(time.Time{})

var unixSecondsOffset = time.Time{}.Unix()

// KeyOf serializes a value of an indexable type
func KeyOf(v any) ([]byte, error) {
	if v == nil {
		return nil, fmt.Errorf("nil is not indexable")
	}
	rv := reflect.ValueOf(v)
	keyFn := KeyFuncFor(rv.Type())
	if keyFn == nil {
		return nil, fmt.Errorf("type %s is not indexable", rv.Type())
	}
	b, _ := keyFn(rv)
	return b, nil
}

// KeyFuncFor returns the KeyFunc for a type, or nil if the type is not
// indexable
func KeyFuncFor(t reflect.Type) KeyFunc {
	if t.Implements(indexKeyInterface) {
		return func(v reflect.Value) ([]byte, bool) {
			return v.Interface().(IndexKey).IndexKey()
		}
	}
	if t == timeType {
		return func(v reflect.Value) ([]byte, bool) {
			// zero time encodes as twelve zero bytes
			ts := v.Interface().(time.Time)
			b := binary.BigEndian.AppendUint64(make([]byte, 0, 12), uint64(ts.Unix()-unixSecondsOffset))
			return binary.BigEndian.AppendUint32(b, uint32(ts.Nanosecond())), !ts.IsZero()
		}
	}
	switch t.Kind() {
	case reflect.Bool:
		return func(v reflect.Value) ([]byte, bool) {
			if v.Bool() {
				return []byte{1}, true
			}
			return []byte{0}, false
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		offset := 8 - t.Size()
		return func(v reflect.Value) ([]byte, bool) {
			var b [8]byte
			n := v.Uint()
			binary.BigEndian.PutUint64(b[:], n)
			return b[offset:], n != 0
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		offset := 8 - t.Size()
		return func(v reflect.Value) ([]byte, bool) {
			var b [8]byte
			n := v.Int()
			binary.BigEndian.PutUint64(b[:], uint64(n))
			// inverting the sign bit makes the serializations sort naturally
			b[offset] ^= 0x80
			return b[offset:], n != 0
		}
	case reflect.Float32:
		return func(v reflect.Value) ([]byte, bool) {
			f := float32(v.Float())
			b := make([]byte, 4)
			binary.BigEndian.PutUint32(b, sortableBits32(math.Float32bits(f)))
			return b, f != 0
		}
	case reflect.Float64:
		return func(v reflect.Value) ([]byte, bool) {
			f := v.Float()
			b := make([]byte, 8)
			binary.BigEndian.PutUint64(b, sortableBits64(math.Float64bits(f)))
			return b, f != 0
		}
	case reflect.String:
		return func(v reflect.Value) ([]byte, bool) {
			s := v.String()
			return []byte(s + "\x00"), s != ""
		}
	default:
		return nil
	}
}

// Negative floats have all bits flipped, non-negative ones just the sign bit.
func sortableBits32(bits uint32) uint32 {
	if bits&(1<<31) != 0 {
		return ^bits
	}
	return bits | 1<<31
}

func sortableBits64(bits uint64) uint64 {
	if bits&(1<<63) != 0 {
		return ^bits
	}
	return bits | 1<<63
}
