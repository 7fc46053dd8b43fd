package seeder

import (
	"math"
	"strings"
)

// InferColumns guesses a column spec from a sample raw record, for sources
// whose shape is not known ahead of time. It is a convenience producer of
// ColumnSpec only; provisioning and reconciliation never infer anything
// themselves. Column order follows the sorted field names so the generated
// DDL is deterministic.
func InferColumns(sample RawRecord, key PrimaryKey) ColumnSpec {
	cols := make([]Column, 0, len(sample))
	for _, name := range sortedColumns(sample) {
		cols = append(cols, Column{Name: name, Type: postgresType(sample[name])})
	}
	return ColumnSpec{Columns: cols, PrimaryKey: key}
}

// postgresType maps a decoded JSON value to a Postgres column type.
// JSON numbers arrive as float64; integral values become INTEGER.
func postgresType(value any) string {
	switch v := value.(type) {
	case nil:
		return "TEXT"
	case bool:
		return "BOOLEAN"
	case float64:
		if v == math.Trunc(v) {
			return "INTEGER"
		}
		return "DECIMAL(10,2)"
	case string:
		if looksLikeDate(v) {
			return "DATE"
		}
		return "VARCHAR(255)"
	case map[string]any, []any:
		return "JSONB"
	default:
		return "TEXT"
	}
}

// looksLikeDate matches the YYYY-MM-DD shape without parsing it.
func looksLikeDate(s string) bool {
	return len(s) == 10 && strings.Count(s, "-") == 2
}
