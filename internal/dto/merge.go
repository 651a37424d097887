package dto

import (
	"encoding/json"
	"fmt"
)

// mergeObjects marshals each part and merges their top-level keys. Later
// parts win on key collisions.
func mergeObjects(parts ...interface{}) ([]byte, error) {
	merged := make(map[string]json.RawMessage)
	for _, part := range parts {
		if part == nil {
			continue
		}
		raw, err := json.Marshal(part)
		if err != nil {
			return nil, err
		}
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, fmt.Errorf("merge %T: %w", part, err)
		}
		for k, v := range fields {
			merged[k] = v
		}
	}
	return json.Marshal(merged)
}

// Messaged is an entity echoed back with a confirmation message.
type Messaged struct {
	Entity  interface{}
	Message string
}

// WithMessage wraps entity so it serializes with an extra "message" key.
func WithMessage(entity interface{}, message string) Messaged {
	return Messaged{Entity: entity, Message: message}
}

// MarshalJSON flattens the entity and message into one object.
func (m Messaged) MarshalJSON() ([]byte, error) {
	return mergeObjects(m.Entity, map[string]string{"message": m.Message})
}
