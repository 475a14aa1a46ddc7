// Package records adapts collections to schemaless records read from JSON,
// JSON Lines or YAML files, with keys selected by field name.
package records

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ridge/multikey/codec"
	"github.com/ridge/multikey/collection"
	"github.com/ridge/multikey/tlog"
	"go.uber.org/zap"
)

// Record is a single decoded object
type Record map[string]any

// Collection is a collection of records keyed by the string form of the
// primary field
type Collection = collection.Collection[string, Record]

// Schema describes a collection of records
type Schema = collection.Schema[string, Record]

// Field returns a function extracting the string form of the named field.
//
// Strings are used as is, a missing field or null is the empty string, and any
// other value is rendered as compact JSON, or with fmt if it has no JSON form.
func Field(name string) func(Record) string {
	return func(r Record) string {
		switch v := r[name].(type) {
		case nil:
			return ""
		case string:
			return v
		default:
			data, err := json.Marshal(v)
			if err != nil { // e.g. YAML mapping with non-string keys
				return fmt.Sprint(v)
			}
			return string(data)
		}
	}
}

// NewSchema creates a schema for records with the given primary field and a
// secondary level per each secondary field. The levels are named after the
// fields.
func NewSchema(name string, primary string, secondary ...string) *Schema {
	levels := make([]collection.Level[Record], 0, len(secondary))
	for _, field := range secondary {
		if field == primary {
			panic(fmt.Errorf("field %s is both primary and secondary in %s", field, name))
		}
		levels = append(levels, collection.SecondaryIndex(field, Field(field)))
	}
	return collection.NewSchema[string, Record](name, Field(primary), levels...)
}

// Load reads a collection of records from a file. The format is chosen by the
// file name extension.
func Load(ctx context.Context, schema *Schema, path string) (*Collection, error) {
	logger := tlog.Get(ctx).With(zap.String("path", path), zap.Stringer("schema", schema))
	started := time.Now()

	c, err := codec.ReadFile(schema, path)
	if err != nil {
		logger.Debug("Failed to load records", zap.Error(err))
		return nil, err
	}
	logger.Info("Records loaded", zap.Int("count", c.Count()), zap.Duration("elapsed", time.Since(started)))
	return c, nil
}
