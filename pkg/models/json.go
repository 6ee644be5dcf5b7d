package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONText is a raw JSON column value that round-trips through Postgres jsonb
type JSONText json.RawMessage

// Scan implements sql.Scanner
func (j *JSONText) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*j = nil
		return nil
	case []byte:
		*j = append((*j)[:0], v...)
		return nil
	case string:
		*j = JSONText(v)
		return nil
	default:
		return fmt.Errorf("JSONText.Scan: expected []byte, got %T", src)
	}
}

// Value implements driver.Valuer
func (j JSONText) Value() (driver.Value, error) {
	if len(j) == 0 {
		return []byte("null"), nil
	}
	return []byte(j), nil
}

// MarshalJSON writes the raw bytes through unchanged
func (j JSONText) MarshalJSON() ([]byte, error) {
	if len(j) == 0 {
		return []byte("null"), nil
	}
	return j, nil
}

// UnmarshalJSON stores the raw bytes
func (j *JSONText) UnmarshalJSON(data []byte) error {
	*j = append((*j)[:0], data...)
	return nil
}

// Unmarshal decodes the stored JSON into dest
func (j JSONText) Unmarshal(dest any) error {
	if len(j) == 0 {
		return nil
	}
	return json.Unmarshal(j, dest)
}

// MarshalJSONText encodes v as a JSONText column value
func MarshalJSONText(v any) (JSONText, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return JSONText(b), nil
}
