package codec

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/flatdb/flatdb/internal/record"
)

// YAML serializes the document as YAML. Numbers decode as int where the
// literal has no fraction; the store's post-load normalization folds them
// back into the float64 value domain.
type YAML struct{}

func (YAML) Name() string { return "yaml" }

func (YAML) Marshal(tables map[string][]record.Record) ([]byte, error) {
	data, err := yaml.Marshal(tables)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal database: %w", err)
	}
	return data, nil
}

func (YAML) Unmarshal(data []byte) (map[string][]record.Record, error) {
	var tables map[string][]record.Record
	if err := yaml.Unmarshal(data, &tables); err != nil {
		return nil, fmt.Errorf("failed to parse database document: %w", err)
	}
	if tables == nil {
		tables = map[string][]record.Record{}
	}
	return tables, nil
}
