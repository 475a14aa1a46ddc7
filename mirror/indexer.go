package mirror

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/ridge/multikey/collection"
	"github.com/ridge/multikey/indices"
)

type primaryIndexer[P comparable, T any] struct {
	schema *collection.Schema[P, T]
	t      reflect.Type
	keyFn  indices.KeyFunc
}

func (pi primaryIndexer[P, T]) FromArgs(args ...any) ([]byte, error) {
	if len(args) != 1 {
		return nil, errors.New("must provide only a single argument")
	}
	v := reflect.ValueOf(args[0])
	if !v.IsValid() || v.Type() != pi.t {
		return nil, fmt.Errorf("primary key index expects %s value", pi.t)
	}
	k, _ := pi.keyFn(v)
	return k, nil
}

func (pi primaryIndexer[P, T]) FromObject(obj any) (bool, []byte, error) {
	k, _ := pi.keyFn(reflect.ValueOf(pi.schema.PrimaryKey(obj.(T))))
	return true, k, nil
}

type levelIndexer[T any] struct {
	level collection.Level[T]
}

func (li levelIndexer[T]) FromArgs(args ...any) ([]byte, error) {
	if len(args) != 1 {
		return nil, errors.New("must provide only a single argument")
	}
	k, err := indices.KeyOf(args[0])
	if err != nil {
		return nil, fmt.Errorf("index %s: %w", li.level.Name(), err)
	}
	return k, nil
}

func (li levelIndexer[T]) FromObject(obj any) (bool, []byte, error) {
	k, err := indices.KeyOf(li.level.Extract(obj.(T)))
	if err != nil {
		return false, nil, fmt.Errorf("index %s: %w", li.level.Name(), err)
	}
	return true, k, nil
}
