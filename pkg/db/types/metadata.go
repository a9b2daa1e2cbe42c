package dbtypes

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Metadata is an open key/value bag persisted as jsonb.
type Metadata map[string]any

func (m *Metadata) Scan(src any) error {
	if src == nil {
		*m = Metadata{}
		return nil
	}

	switch v := src.(type) {
	case []byte:
		return m.parseFromBytes(v)
	case string:
		return m.parseFromBytes([]byte(v))
	default:
		return fmt.Errorf("Metadata: unsupported Scan type %T", src)
	}
}

func (m Metadata) Value() (driver.Value, error) {
	if len(m) == 0 {
		return "{}", nil
	}
	encoded, err := json.Marshal(map[string]any(m))
	if err != nil {
		return nil, fmt.Errorf("Metadata: marshal: %w", err)
	}
	return string(encoded), nil
}

func (m *Metadata) parseFromBytes(raw []byte) error {
	if len(raw) == 0 {
		*m = Metadata{}
		return nil
	}
	decoded := map[string]any{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return fmt.Errorf("Metadata: unmarshal: %w", err)
	}
	*m = Metadata(decoded)
	return nil
}
