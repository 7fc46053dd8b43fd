package seeder

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// EnsureTable creates the target table from the column spec if it does not
// already exist. A pre-existing table with a divergent shape is not detected
// or corrected. Table and column names are trusted configuration, never user
// input.
func EnsureTable(ctx context.Context, db DB, table string, spec ColumnSpec) error {
	if len(spec.Columns) == 0 {
		return fmt.Errorf("column spec for table %s is empty", table)
	}

	query := buildCreateTable(table, spec)

	if _, err := db.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to ensure table %s: %w", table, err)
	}

	log.Debug().
		Str("table", table).
		Int("columns", len(spec.Columns)).
		Msg("Table ready")

	return nil
}

// buildCreateTable renders the CREATE TABLE IF NOT EXISTS statement.
func buildCreateTable(table string, spec ColumnSpec) string {
	defs := make([]string, 0, len(spec.Columns)+1)
	for _, col := range spec.Columns {
		defs = append(defs, fmt.Sprintf("%s %s", col.Name, col.Type))
	}
	if len(spec.PrimaryKey) > 0 {
		defs = append(defs, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(spec.PrimaryKey, ", ")))
	}

	return fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (%s)",
		pgx.Identifier{table}.Sanitize(),
		strings.Join(defs, ", "),
	)
}
