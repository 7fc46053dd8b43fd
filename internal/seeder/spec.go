// Package seeder implements the generic ingestion/upsert engine: declarative
// table provisioning, record normalization via an injected transform, and a
// per-record existence-check reconcile loop with partial-failure isolation.
package seeder

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// RawRecord is a source record exactly as the external API delivered it.
// The engine never interprets it; only the caller-supplied transform does.
type RawRecord = map[string]any

// NormalizedRecord maps target column names to values already coerced to the
// types the target schema expects (int64, float64, string, serialized JSON
// text, nil).
type NormalizedRecord = map[string]any

// Transform converts a raw source record into a normalized one. Returning a
// nil record (with a nil error) is the documented way to skip a record, e.g.
// a bye-week placeholder with no game key. An error also skips the record.
type Transform func(RawRecord) (NormalizedRecord, error)

// PrimaryKey is an ordered list of column names whose combined value uniquely
// identifies a row. It drives both the existence check and the UPDATE WHERE
// clause; single-column keys are the one-element case.
type PrimaryKey []string

// Column is one column in a table definition.
type Column struct {
	Name string
	Type string
}

// ColumnSpec declares the shape of a target table. Column order is preserved
// in the generated CREATE TABLE. PrimaryKey, when set, emits a table-level
// PRIMARY KEY constraint; leave it empty if a column's Type already carries
// its own PRIMARY KEY clause.
type ColumnSpec struct {
	Columns    []Column
	PrimaryKey []string
}

// RecordError describes a single record that failed to reconcile.
type RecordError struct {
	Key     string
	Message string
}

// Outcome accumulates the terminal state of every record in one run.
// Invariant: Inserted + Updated + len(Errors) equals the number of
// normalized records handed to the reconciler.
type Outcome struct {
	Table    string
	Fetched  int
	Skipped  int
	Inserted int
	Updated  int
	Errors   []RecordError
}

// Summary renders a one-line human-readable result for operational logging.
func (o *Outcome) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "table=%s fetched=%d skipped=%d inserted=%d updated=%d errors=%d",
		o.Table, o.Fetched, o.Skipped, o.Inserted, o.Updated, len(o.Errors))
	return b.String()
}

// DB is the subset of pgxpool.Pool the engine needs: plain statements for
// provisioning and a transaction stream for the reconcile loop.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Fetcher pulls raw records from an external source. Implemented by the HTTP
// client; tests supply in-memory fakes.
type Fetcher interface {
	FetchRecords(ctx context.Context, url string, params map[string]string) ([]RawRecord, error)
}

// Dataset bundles everything the engine needs to seed one target table.
// Supplied once by the caller before a run starts; immutable during it.
type Dataset struct {
	Name       string
	Table      string
	Columns    ColumnSpec
	PrimaryKey PrimaryKey
	Transform  Transform
}

// recordKey renders a record's primary-key values as a stable identifier for
// error reporting and progress logs.
func recordKey(rec NormalizedRecord, key PrimaryKey) string {
	parts := make([]string, 0, len(key))
	for _, col := range key {
		parts = append(parts, fmt.Sprintf("%v", rec[col]))
	}
	return strings.Join(parts, "/")
}
