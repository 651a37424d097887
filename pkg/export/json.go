package export

import (
	"encoding/json"
	"fmt"
)

// RenderJSON encodes the records as a JSON array.
func RenderJSON(table Table) ([]byte, error) {
	body, err := json.Marshal(table.Records())
	if err != nil {
		return nil, fmt.Errorf("encode json export: %w", err)
	}
	return body, nil
}
