package seeder

import (
	"encoding/json"
	"strconv"
)

// Coercion helpers for transforms. Each returns nil (stored as SQL NULL) when
// the source value is absent or cannot be converted, mirroring how the source
// APIs mix empty strings, nulls, and numbers for the same field.

// ToInt coerces a raw value to int64 or nil.
func ToInt(value any) any {
	switch v := value.(type) {
	case nil:
		return nil
	case float64:
		return int64(v)
	case int:
		return int64(v)
	case int64:
		return v
	case string:
		if v == "" {
			return nil
		}
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil
		}
		return n
	default:
		return nil
	}
}

// ToFloat coerces a raw value to float64 or nil.
func ToFloat(value any) any {
	switch v := value.(type) {
	case nil:
		return nil
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		if v == "" {
			return nil
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil
		}
		return f
	default:
		return nil
	}
}

// ToBool coerces a raw value to bool or nil. String forms accepted: true/1/
// yes/on (case-sensitive lowercase, as the sources deliver them).
func ToBool(value any) any {
	switch v := value.(type) {
	case nil:
		return nil
	case bool:
		return v
	case string:
		switch v {
		case "true", "1", "yes", "on":
			return true
		default:
			return false
		}
	case float64:
		return v != 0
	default:
		return nil
	}
}

// ToString coerces a raw value to string or nil.
func ToString(value any) any {
	switch v := value.(type) {
	case nil:
		return nil
	case string:
		return v
	default:
		return nil
	}
}

// ToJSONText serializes a nested object or array to JSON text for storage in
// a JSONB column, or nil when the value is absent.
func ToJSONText(value any) any {
	if value == nil {
		return nil
	}
	b, err := json.Marshal(value)
	if err != nil {
		return nil
	}
	return string(b)
}
