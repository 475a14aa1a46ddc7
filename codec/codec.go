// Package codec serializes collections.
//
// A collection serializes as the ordered sequence of its live items. Indices,
// tombstones and positions are never written. Decoding rebuilds the collection
// from the items in order and validates it right away, so a primary key
// collision in the input fails at the boundary with
// collection.ErrDuplicateKey.
//
// For every collection c built by Add, SetItem and the Remove family,
//
//	Decode(Encode(c)).Equal(c.Compact())
//
// holds for each of the supported formats.
package codec

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ridge/multikey/collection"
	"gopkg.in/yaml.v3"
)

// Format is a serialization format
type Format string

// Format values
const (
	FormatJSON      Format = "json"
	FormatJSONLines Format = "jsonl"
	FormatYAML      Format = "yaml"
)

// ErrUnknownFormat is returned for files whose format can't be determined
var ErrUnknownFormat = errors.New("unknown format")

// FormatOf determines the format from the file name extension
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".jsonl", ".ndjson":
		return FormatJSONLines, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
}

func fromItems[P comparable, T any](schema *collection.Schema[P, T], items []T) (*collection.Collection[P, T], error) {
	c := schema.FromItems(items...)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// EncodeJSON encodes the live items as a JSON array
func EncodeJSON[P comparable, T any](c *collection.Collection[P, T]) ([]byte, error) {
	return json.Marshal(c)
}

// DecodeJSON decodes a JSON array of items
func DecodeJSON[P comparable, T any](schema *collection.Schema[P, T], data []byte) (*collection.Collection[P, T], error) {
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", schema, err)
	}
	return fromItems(schema, items)
}

// EncodeJSONLines writes the live items as JSON, one per line
func EncodeJSONLines[P comparable, T any](w io.Writer, c *collection.Collection[P, T]) error {
	enc := json.NewEncoder(w)
	var err error
	c.Each(func(_ P, item T) bool {
		err = enc.Encode(item)
		return err == nil
	})
	return err
}

// DecodeJSONLines reads items encoded as JSON, one per line. Blank lines are
// skipped.
func DecodeJSONLines[P comparable, T any](schema *collection.Schema[P, T], r io.Reader) (*collection.Collection[P, T], error) {
	var items []T
	scanner := bufio.NewScanner(r)
	scanner.Buffer(nil, 16*1024*1024)
	for line := 1; scanner.Scan(); line++ {
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		var item T
		if err := json.Unmarshal(raw, &item); err != nil {
			return nil, fmt.Errorf("decoding %s: line %d: %w", schema, line, err)
		}
		items = append(items, item)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", schema, err)
	}
	return fromItems(schema, items)
}

// EncodeYAML encodes the live items as a YAML sequence
func EncodeYAML[P comparable, T any](c *collection.Collection[P, T]) ([]byte, error) {
	return yaml.Marshal(c)
}

// DecodeYAML decodes a YAML sequence of items. An empty document decodes to
// an empty collection.
func DecodeYAML[P comparable, T any](schema *collection.Schema[P, T], data []byte) (*collection.Collection[P, T], error) {
	var items []T
	if err := yaml.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", schema, err)
	}
	return fromItems(schema, items)
}

// Encode encodes the collection in the given format
func Encode[P comparable, T any](format Format, c *collection.Collection[P, T]) ([]byte, error) {
	switch format {
	case FormatJSON:
		return EncodeJSON(c)
	case FormatJSONLines:
		var buf bytes.Buffer
		if err := EncodeJSONLines(&buf, c); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatYAML:
		return EncodeYAML(c)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Decode decodes a collection in the given format
func Decode[P comparable, T any](format Format, schema *collection.Schema[P, T], data []byte) (*collection.Collection[P, T], error) {
	switch format {
	case FormatJSON:
		return DecodeJSON(schema, data)
	case FormatJSONLines:
		return DecodeJSONLines(schema, bytes.NewReader(data))
	case FormatYAML:
		return DecodeYAML(schema, data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// ReadFile decodes a collection from a file, choosing the format by the file
// name extension
func ReadFile[P comparable, T any](schema *collection.Schema[P, T], path string) (*collection.Collection[P, T], error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := Decode(format, schema, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// WriteFile encodes a collection into a file, choosing the format by the file
// name extension. The file is replaced atomically.
func WriteFile[P comparable, T any](path string, c *collection.Collection[P, T]) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	data, err := Encode(format, c)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
