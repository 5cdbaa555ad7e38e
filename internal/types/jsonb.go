package types

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Compile-time interface assertions.
// These ensure all JSONB types implement both sql.Scanner and driver.Valuer,
// catching any method signature drift at compile time rather than at runtime.
// Scan is on pointer receivers; Value is on value receivers.
var (
	_ sql.Scanner   = (*JSONMap)(nil)
	_ driver.Valuer = JSONMap(nil)
	_ sql.Scanner   = (*RiskFactorList)(nil)
	_ driver.Valuer = RiskFactorList(nil)
)

// scanJSONB is a generic helper that scans a JSONB database value into a Go pointer.
// It handles nil values, []byte, and string representations from different database drivers.
func scanJSONB(dest interface{}, value interface{}) error {
	if value == nil {
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("jsonb: unsupported scan type %T", value)
	}
	return json.Unmarshal(data, dest)
}

// valueJSONB is a generic helper that converts a Go value to a JSONB-compatible driver.Value.
// Returns nil for nil interface values; otherwise marshals to JSON bytes.
func valueJSONB(v interface{}) (driver.Value, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

// JSONMap is a free-form JSONB document column.
type JSONMap map[string]any

// Scan implements the sql.Scanner interface for reading JSONB from the database.
func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}
	return scanJSONB(m, value)
}

// Value implements the driver.Valuer interface for writing JSONB to the database.
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// RiskFactorList is a JSONB-stored slice of risk factors.
type RiskFactorList []RiskFactor

// Scan implements the sql.Scanner interface for reading JSONB from the database.
func (rl *RiskFactorList) Scan(value interface{}) error {
	if value == nil {
		*rl = nil
		return nil
	}
	return scanJSONB(rl, value)
}

// Value implements the driver.Valuer interface for writing JSONB to the database.
func (rl RiskFactorList) Value() (driver.Value, error) {
	if rl == nil {
		return nil, nil
	}
	return json.Marshal(rl)
}

// ToJSONMap converts any JSON-marshalable value into a JSONMap for snapshot storage.
func ToJSONMap(v any) (JSONMap, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m JSONMap
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}
