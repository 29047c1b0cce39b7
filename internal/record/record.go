// Package record defines the schema-less record and query types shared by
// the store, codecs, and callers.
//
// Values are restricted to the serialization value domain: string, float64,
// bool, nil, []any and map[string]any. Normalize converts friendlier Go
// inputs (ints, typed slices) into that domain so that a record compares
// equal to itself after a persist/load round trip.
package record

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrUnsupportedValue reports a value that cannot be represented in the
// serialization value domain.
var ErrUnsupportedValue = errors.New("unsupported value")

// Record is a single stored item: field name -> value.
// No required fields, no identity, no uniqueness.
type Record map[string]any

// Query is an exact-match filter: a record matches iff every query key is
// present in the record with an equal value. An empty query matches every
// record.
type Query map[string]any

// Normalize converts v into the serialization value domain.
// Numeric types collapse to float64, matching what a decoder produces when
// the value comes back from disk.
func Normalize(v any) (any, error) {
	switch t := v.(type) {
	case nil, bool, string, float64:
		return t, nil
	case float32:
		return float64(t), nil
	case int:
		return float64(t), nil
	case int8:
		return float64(t), nil
	case int16:
		return float64(t), nil
	case int32:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case uint:
		return float64(t), nil
	case uint8:
		return float64(t), nil
	case uint16:
		return float64(t), nil
	case uint32:
		return float64(t), nil
	case uint64:
		return float64(t), nil
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			n, err := Normalize(e)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			out[i] = n
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			n, err := Normalize(e)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", k, err)
			}
			out[k] = n
		}
		return out, nil
	case map[any]any:
		// YAML decoders produce this for mappings with non-string keys.
		out := make(map[string]any, len(t))
		for k, e := range t {
			ks, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("%w: non-string map key %v (%T)", ErrUnsupportedValue, k, k)
			}
			n, err := Normalize(e)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", ks, err)
			}
			out[ks] = n
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %v (%T)", ErrUnsupportedValue, v, v)
	}
}

// Normalized returns a copy of r with every value normalized.
func (r Record) Normalized() (Record, error) {
	out := make(Record, len(r))
	for k, v := range r {
		n, err := Normalize(v)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		out[k] = n
	}
	return out, nil
}

// Normalized returns a copy of q with every value normalized.
func (q Query) Normalized() (Query, error) {
	out := make(Query, len(q))
	for k, v := range q {
		n, err := Normalize(v)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		out[k] = n
	}
	return out, nil
}

// Matches reports whether r satisfies q. A key missing from r never matches,
// regardless of the query value. Both sides are expected to be normalized.
func (r Record) Matches(q Query) bool {
	for k, want := range q {
		got, ok := r[k]
		if !ok || !reflect.DeepEqual(got, want) {
			return false
		}
	}
	return true
}

// Merge copies every key/value pair of updates into r, adding new keys and
// overwriting existing ones. Keys absent from updates are untouched.
func (r Record) Merge(updates Record) {
	for k, v := range updates {
		r[k] = v
	}
}

// Clone returns a deep copy of r for callers that need isolation from the
// store's shared-reference query results.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = cloneValue(e)
		}
		return out
	default:
		return t
	}
}
