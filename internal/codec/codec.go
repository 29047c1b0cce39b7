// Package codec serializes the full table map to and from bytes.
//
// The store treats serialization as a swappable capability: anything that
// can turn the table map into bytes and back can persist a database. JSON
// is the default on-disk format; YAML is provided for documents maintained
// by hand.
package codec

import (
	"errors"
	"fmt"
	"strings"

	"github.com/flatdb/flatdb/internal/record"
)

// ErrUnknownFormat is returned by ByName for an unrecognized format name.
var ErrUnknownFormat = errors.New("unknown format")

// Codec converts the whole database document. The root value is always a
// mapping from table name to an array of records; there is no version
// field, checksum, or schema marker.
type Codec interface {
	// Name identifies the format ("json", "yaml").
	Name() string
	// Marshal serializes the table map.
	Marshal(tables map[string][]record.Record) ([]byte, error)
	// Unmarshal parses a previously serialized document. Values may come
	// back in decoder-native types; the store normalizes them afterwards.
	Unmarshal(data []byte) (map[string][]record.Record, error)
}

// ByName resolves a codec from a format name such as a CLI flag value.
func ByName(name string) (Codec, error) {
	switch strings.ToLower(name) {
	case "json":
		return JSON{}, nil
	case "yaml", "yml":
		return YAML{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}
