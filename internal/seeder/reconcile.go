package seeder

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

const defaultCommitInterval = 100

// progressInterval controls how often the reconcile loop logs progress.
const progressInterval = 100

// Reconciler applies normalized records to a table one at a time:
// existence check, then full-row UPDATE or INSERT. Writes are committed every
// CommitInterval records plus a final commit; a record-level failure rolls
// back the open commit window, is recorded in the outcome, and the loop
// continues with a fresh transaction. Records are processed strictly in the
// order given, so duplicate keys within a batch resolve last-write-wins.
type Reconciler struct {
	DB             DB
	CommitInterval int
}

// NewReconciler creates a reconciler with the given commit cadence.
// interval <= 0 selects the default of 100 records.
func NewReconciler(db DB, interval int) *Reconciler {
	if interval <= 0 {
		interval = defaultCommitInterval
	}
	return &Reconciler{DB: db, CommitInterval: interval}
}

// Reconcile upserts every record into the table keyed by the primary-key
// columns. Every record reaches exactly one terminal state:
// inserted + updated + errors == len(records).
func (r *Reconciler) Reconcile(ctx context.Context, table string, records []NormalizedRecord, key PrimaryKey) (*Outcome, error) {
	outcome := &Outcome{Table: table}
	if len(records) == 0 {
		return outcome, nil
	}
	if len(key) == 0 {
		return nil, fmt.Errorf("primary key for table %s is empty", table)
	}

	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	pending := 0
	for i, rec := range records {
		if i > 0 && i%progressInterval == 0 {
			log.Info().
				Str("table", table).
				Int("processed", i).
				Int("total", len(records)).
				Msg("Reconcile progress")
		}

		inserted, err := r.upsertOne(ctx, tx, table, rec, key)
		if err != nil {
			// Roll back the open commit window; earlier uncommitted writes in
			// the same window are lost with it.
			_ = tx.Rollback(ctx)
			outcome.Errors = append(outcome.Errors, RecordError{
				Key:     recordKey(rec, key),
				Message: err.Error(),
			})
			log.Error().
				Err(err).
				Str("table", table).
				Str("key", recordKey(rec, key)).
				Msg("Record failed, continuing")

			tx, err = r.DB.Begin(ctx)
			if err != nil {
				return outcome, fmt.Errorf("failed to reopen transaction: %w", err)
			}
			pending = 0
			continue
		}

		if inserted {
			outcome.Inserted++
		} else {
			outcome.Updated++
		}

		pending++
		if pending >= r.CommitInterval {
			if err := tx.Commit(ctx); err != nil {
				return outcome, fmt.Errorf("failed to commit batch: %w", err)
			}
			tx, err = r.DB.Begin(ctx)
			if err != nil {
				return outcome, fmt.Errorf("failed to reopen transaction: %w", err)
			}
			pending = 0
		}
	}

	// Final commit flushes whatever the last window holds.
	if err := tx.Commit(ctx); err != nil {
		return outcome, fmt.Errorf("failed to commit final batch: %w", err)
	}

	return outcome, nil
}

// upsertOne runs the per-record state machine:
// CHECK_EXISTENCE -> {UPDATE | INSERT}. Returns true when the record was
// inserted, false when updated.
func (r *Reconciler) upsertOne(ctx context.Context, tx pgx.Tx, table string, rec NormalizedRecord, key PrimaryKey) (bool, error) {
	exists, err := r.exists(ctx, tx, table, rec, key)
	if err != nil {
		return false, err
	}

	if exists {
		return false, r.update(ctx, tx, table, rec, key)
	}
	return true, r.insert(ctx, tx, table, rec)
}

// exists checks for a row matching all primary-key columns.
func (r *Reconciler) exists(ctx context.Context, tx pgx.Tx, table string, rec NormalizedRecord, key PrimaryKey) (bool, error) {
	where := make([]string, len(key))
	args := make([]any, len(key))
	for i, col := range key {
		where[i] = fmt.Sprintf("%s = $%d", col, i+1)
		args[i] = rec[col]
	}

	query := fmt.Sprintf(
		"SELECT 1 FROM %s WHERE %s",
		pgx.Identifier{table}.Sanitize(),
		strings.Join(where, " AND "),
	)

	var one int
	err := tx.QueryRow(ctx, query, args...).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("existence check failed: %w", err)
	}
	return true, nil
}

// update rewrites every non-key column the record carries, replacing the
// stored values wholesale. A nil value overwrites the column with NULL.
func (r *Reconciler) update(ctx context.Context, tx pgx.Tx, table string, rec NormalizedRecord, key PrimaryKey) error {
	cols := sortedColumns(rec)

	set := make([]string, 0, len(cols))
	args := make([]any, 0, len(cols)+len(key))
	n := 1
	for _, col := range cols {
		if isKeyColumn(col, key) {
			continue
		}
		set = append(set, fmt.Sprintf("%s = $%d", col, n))
		args = append(args, rec[col])
		n++
	}
	if len(set) == 0 {
		// Key-only record; the row already matches.
		return nil
	}

	where := make([]string, len(key))
	for i, col := range key {
		where[i] = fmt.Sprintf("%s = $%d", col, n)
		args = append(args, rec[col])
		n++
	}

	query := fmt.Sprintf(
		"UPDATE %s SET %s WHERE %s",
		pgx.Identifier{table}.Sanitize(),
		strings.Join(set, ", "),
		strings.Join(where, " AND "),
	)

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("update failed: %w", err)
	}
	return nil
}

// insert writes all columns present in the record, key included.
func (r *Reconciler) insert(ctx context.Context, tx pgx.Tx, table string, rec NormalizedRecord) error {
	cols := sortedColumns(rec)

	placeholders := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, col := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = rec[col]
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		pgx.Identifier{table}.Sanitize(),
		strings.Join(cols, ", "),
		strings.Join(placeholders, ", "),
	)

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert failed: %w", err)
	}
	return nil
}

// sortedColumns returns the record's column names in a stable order so
// generated SQL is deterministic.
func sortedColumns(rec NormalizedRecord) []string {
	cols := make([]string, 0, len(rec))
	for col := range rec {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	return cols
}

func isKeyColumn(col string, key PrimaryKey) bool {
	for _, k := range key {
		if k == col {
			return true
		}
	}
	return false
}
