package indices

import (
	"fmt"
	"reflect"
	"strings"
)

type fieldOptions struct {
	ignoreCase bool
}

// FieldOption is an option to Field
type FieldOption interface {
	apply(fo *fieldOptions)
}

// IgnoreCase is an option to Field that lower-cases the key with
// strings.ToLower. The key type must be string-based. Values that only differ
// in case produce equal keys, so they share a secondary key and conflict as
// primary keys.
var IgnoreCase ignoreCase

type ignoreCase struct{}

func (ignoreCase) apply(fo *fieldOptions) {
	fo.ignoreCase = true
}

// Field returns a selector reading the named field of a struct item. T may be
// a struct or a pointer to one; a nil pointer selects the zero key. The field
// must be exported and of type K or *K; a nil *K field selects the zero key.
//
// Field panics if the field does not satisfy these requirements.
func Field[T any, K comparable](name string, options ...FieldOption) func(T) K {
	var fo fieldOptions
	for _, opt := range options {
		opt.apply(&fo)
	}

	t := reflect.TypeOf((*T)(nil)).Elem()
	st := t
	itemPtr := st.Kind() == reflect.Ptr
	if itemPtr {
		st = st.Elem()
	}
	if st.Kind() != reflect.Struct {
		panic(fmt.Errorf("field %s: %s is not a struct", name, t))
	}
	field, ok := st.FieldByName(name)
	if !ok {
		panic(fmt.Errorf("field %s.%s not found", st, name))
	}
	if !field.IsExported() {
		panic(fmt.Errorf("field %s.%s is not exported", st, name))
	}

	kt := reflect.TypeOf((*K)(nil)).Elem()
	var fieldPtr bool
	switch {
	case field.Type == kt:
	case field.Type.Kind() == reflect.Ptr && field.Type.Elem() == kt:
		fieldPtr = true
	default:
		panic(fmt.Errorf("field %s.%s has type %s, expected %s", st, name, field.Type, kt))
	}
	if fo.ignoreCase && kt.Kind() != reflect.String {
		panic(fmt.Errorf("field %s.%s must be string-based for case-insensitive indexing", st, name))
	}

	index := field.Index
	return func(item T) K {
		var zero K
		v := reflect.ValueOf(&item).Elem()
		if itemPtr {
			if v.IsNil() {
				return zero
			}
			v = v.Elem()
		}
		f := v.FieldByIndex(index)
		if fieldPtr {
			if f.IsNil() {
				return zero
			}
			f = f.Elem()
		}
		if fo.ignoreCase {
			return reflect.ValueOf(strings.ToLower(f.String())).Convert(kt).Interface().(K)
		}
		return f.Interface().(K)
	}
}
