package codec

import (
	"encoding/json"
	"fmt"

	"github.com/flatdb/flatdb/internal/record"
)

// JSON is the default document codec. Output is indented so the file stays
// readable when inspected or edited by hand.
type JSON struct{}

func (JSON) Name() string { return "json" }

func (JSON) Marshal(tables map[string][]record.Record) ([]byte, error) {
	data, err := json.MarshalIndent(tables, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal database: %w", err)
	}
	return data, nil
}

func (JSON) Unmarshal(data []byte) (map[string][]record.Record, error) {
	var tables map[string][]record.Record
	if err := json.Unmarshal(data, &tables); err != nil {
		return nil, fmt.Errorf("failed to parse database document: %w", err)
	}
	if tables == nil {
		tables = map[string][]record.Record{}
	}
	return tables, nil
}
