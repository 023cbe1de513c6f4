package schema

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// JSONB represents a PostgreSQL JSONB column as a generic map. Typed embedded
// records do not need this wrapper; the query layer marshals any struct field
// on a jsonb column directly.
type JSONB map[string]interface{}

// Value implements the driver.Valuer interface for database writes.
func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan implements the sql.Scanner interface for database reads.
func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	switch v := value.(type) {
	case []byte:
		var result map[string]interface{}
		if err := json.Unmarshal(v, &result); err != nil {
			return err
		}
		*j = result
		return nil
	case string:
		var result map[string]interface{}
		if err := json.Unmarshal([]byte(v), &result); err != nil {
			return err
		}
		*j = result
		return nil
	case map[string]interface{}:
		*j = v
		return nil
	default:
		return errors.New("failed to scan JSONB: unsupported type")
	}
}
