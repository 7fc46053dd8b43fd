package seeder

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDB is an in-memory stand-in for the connection pool. It interprets the
// small SQL dialect the engine emits and tracks transaction boundaries so
// tests can assert on commit cadence and rollback behavior.
type fakeDB struct {
	key       []string
	rows      map[string]map[string]any
	ddl       []string
	failDDL   error
	failExec  map[string]error
	begins    int
	commits   int
	rollbacks int
}

func newFakeDB(key ...string) *fakeDB {
	return &fakeDB{
		key:      key,
		rows:     make(map[string]map[string]any),
		failExec: make(map[string]error),
	}
}

func (f *fakeDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if f.failDDL != nil {
		return pgconn.CommandTag{}, f.failDDL
	}
	f.ddl = append(f.ddl, sql)
	return pgconn.CommandTag{}, nil
}

func (f *fakeDB) Begin(ctx context.Context) (pgx.Tx, error) {
	f.begins++
	return &fakeTx{db: f, overlay: make(map[string]map[string]any)}, nil
}

func (f *fakeDB) rowKey(row map[string]any) string {
	parts := make([]string, len(f.key))
	for i, k := range f.key {
		parts[i] = fmt.Sprintf("%v", row[k])
	}
	return strings.Join(parts, "|")
}

func argsKey(args []any) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = fmt.Sprintf("%v", a)
	}
	return strings.Join(parts, "|")
}

// fakeTx stages writes in an overlay that Commit merges into the store and
// Rollback discards, mirroring transaction visibility.
type fakeTx struct {
	db      *fakeDB
	overlay map[string]map[string]any
}

func (t *fakeTx) lookup(rowKey string) (map[string]any, bool) {
	if row, ok := t.overlay[rowKey]; ok {
		return row, true
	}
	row, ok := t.db.rows[rowKey]
	return row, ok
}

func (t *fakeTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	switch {
	case strings.HasPrefix(sql, "INSERT INTO"):
		cols := columnList(segment(sql, "(", ")"))
		row := make(map[string]any, len(cols))
		for i, col := range cols {
			row[col] = args[i]
		}
		rowKey := t.db.rowKey(row)
		if err := t.db.failExec[rowKey]; err != nil {
			return pgconn.CommandTag{}, err
		}
		t.overlay[rowKey] = row

	case strings.HasPrefix(sql, "UPDATE"):
		setCols := columnList(segment(sql, " SET ", " WHERE "))
		rowKey := argsKey(args[len(setCols):])
		if err := t.db.failExec[rowKey]; err != nil {
			return pgconn.CommandTag{}, err
		}
		existing, ok := t.lookup(rowKey)
		if !ok {
			return pgconn.CommandTag{}, nil
		}
		row := make(map[string]any, len(existing))
		for k, v := range existing {
			row[k] = v
		}
		for i, col := range setCols {
			row[col] = args[i]
		}
		t.overlay[rowKey] = row

	default:
		return pgconn.CommandTag{}, fmt.Errorf("unexpected statement: %s", sql)
	}
	return pgconn.CommandTag{}, nil
}

func (t *fakeTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if !strings.HasPrefix(sql, "SELECT 1 FROM") {
		return fakeRow{err: fmt.Errorf("unexpected query: %s", sql)}
	}
	if _, ok := t.lookup(argsKey(args)); !ok {
		return fakeRow{err: pgx.ErrNoRows}
	}
	return fakeRow{val: 1}
}

func (t *fakeTx) Commit(ctx context.Context) error {
	for rowKey, row := range t.overlay {
		t.db.rows[rowKey] = row
	}
	t.overlay = make(map[string]map[string]any)
	t.db.commits++
	return nil
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	t.overlay = make(map[string]map[string]any)
	t.db.rollbacks++
	return nil
}

func (t *fakeTx) Begin(ctx context.Context) (pgx.Tx, error) {
	return nil, errors.New("nested transactions not supported")
}

func (t *fakeTx) CopyFrom(ctx context.Context, _ pgx.Identifier, _ []string, _ pgx.CopyFromSource) (int64, error) {
	return 0, errors.New("not supported")
}

func (t *fakeTx) SendBatch(ctx context.Context, _ *pgx.Batch) pgx.BatchResults {
	return nil
}

func (t *fakeTx) LargeObjects() pgx.LargeObjects {
	return pgx.LargeObjects{}
}

func (t *fakeTx) Prepare(ctx context.Context, _, _ string) (*pgconn.StatementDescription, error) {
	return nil, errors.New("not supported")
}

func (t *fakeTx) Query(ctx context.Context, _ string, _ ...any) (pgx.Rows, error) {
	return nil, errors.New("not supported")
}

func (t *fakeTx) Conn() *pgx.Conn { return nil }

type fakeRow struct {
	err error
	val int
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if p, ok := dest[0].(*int); ok {
		*p = r.val
	}
	return nil
}

// segment returns the substring between the first occurrence of from and the
// first occurrence of to after it.
func segment(s, from, to string) string {
	start := strings.Index(s, from) + len(from)
	rest := s[start:]
	if to == "" {
		return rest
	}
	return rest[:strings.Index(rest, to)]
}

// columnList extracts column names from "a, b = $1, c" style fragments.
func columnList(s string) []string {
	parts := strings.Split(s, ", ")
	cols := make([]string, len(parts))
	for i, p := range parts {
		cols[i] = strings.TrimSpace(strings.SplitN(p, " =", 2)[0])
	}
	return cols
}

func gameRecord(key string, week int) NormalizedRecord {
	return NormalizedRecord{"game_key": key, "week": int64(week), "home_team": "DAL"}
}

func TestReconcile_InsertsNewRecords(t *testing.T) {
	db := newFakeDB("game_key")
	r := NewReconciler(db, 100)

	records := []NormalizedRecord{gameRecord("A1", 1), gameRecord("B2", 1), gameRecord("C3", 2)}
	outcome, err := r.Reconcile(context.Background(), "games", records, PrimaryKey{"game_key"})

	require.NoError(t, err)
	assert.Equal(t, 3, outcome.Inserted, "All records should insert into an empty table")
	assert.Equal(t, 0, outcome.Updated)
	assert.Empty(t, outcome.Errors)
	assert.Len(t, db.rows, 3)
	assert.Equal(t, 1, db.commits, "Small batch should commit exactly once")
}

func TestReconcile_SecondRunUpdates(t *testing.T) {
	db := newFakeDB("game_key")
	r := NewReconciler(db, 100)
	ctx := context.Background()

	records := []NormalizedRecord{gameRecord("A1", 1), gameRecord("B2", 1)}
	_, err := r.Reconcile(ctx, "games", records, PrimaryKey{"game_key"})
	require.NoError(t, err)

	// Same keys again, one with a changed value
	records[1] = gameRecord("B2", 9)
	outcome, err := r.Reconcile(ctx, "games", records, PrimaryKey{"game_key"})

	require.NoError(t, err)
	assert.Equal(t, 0, outcome.Inserted, "Re-run should insert nothing")
	assert.Equal(t, 2, outcome.Updated, "Every existing record should update")
	assert.Len(t, db.rows, 2, "Row count should not grow on re-run")
	assert.Equal(t, int64(9), db.rows["B2"]["week"], "Changed value should be stored")
}

func TestReconcile_DuplicateKeyLastWriteWins(t *testing.T) {
	db := newFakeDB("game_key")
	r := NewReconciler(db, 100)

	records := []NormalizedRecord{gameRecord("A1", 1), gameRecord("A1", 2)}
	outcome, err := r.Reconcile(context.Background(), "games", records, PrimaryKey{"game_key"})

	require.NoError(t, err)
	assert.Equal(t, 1, outcome.Inserted)
	assert.Equal(t, 1, outcome.Updated, "Second occurrence should update the first")
	assert.Len(t, db.rows, 1)
	assert.Equal(t, int64(2), db.rows["A1"]["week"], "Later record should win")
}

func TestReconcile_RecordFailureIsolated(t *testing.T) {
	db := newFakeDB("game_key")
	db.failExec["3"] = errors.New("value too long for column")
	r := NewReconciler(db, 2)

	records := make([]NormalizedRecord, 0, 5)
	for i := 1; i <= 5; i++ {
		records = append(records, gameRecord(fmt.Sprintf("%d", i), i))
	}

	outcome, err := r.Reconcile(context.Background(), "games", records, PrimaryKey{"game_key"})

	require.NoError(t, err, "A record-level failure must not fail the run")
	require.Len(t, outcome.Errors, 1)
	assert.Equal(t, "3", outcome.Errors[0].Key)
	assert.Contains(t, outcome.Errors[0].Message, "value too long")
	assert.Equal(t, 4, outcome.Inserted)
	assert.Equal(t, len(records), outcome.Inserted+outcome.Updated+len(outcome.Errors),
		"Every record must reach exactly one terminal state")
	assert.Equal(t, 1, db.rollbacks, "Failure should roll back the open window")
	assert.NotContains(t, db.rows, "3")
	assert.Contains(t, db.rows, "5", "Records after the failure should still land")
}

func TestReconcile_CommitCadence(t *testing.T) {
	db := newFakeDB("game_key")
	r := NewReconciler(db, 100)

	records := make([]NormalizedRecord, 0, 250)
	for i := 0; i < 250; i++ {
		records = append(records, gameRecord(fmt.Sprintf("G%d", i), i))
	}

	outcome, err := r.Reconcile(context.Background(), "games", records, PrimaryKey{"game_key"})

	require.NoError(t, err)
	assert.Equal(t, 250, outcome.Inserted)
	assert.Equal(t, 3, db.commits, "250 records at interval 100 commit twice plus the final flush")
	assert.Equal(t, 3, db.begins)
	assert.Len(t, db.rows, 250)
}

func TestReconcile_EmptyInput(t *testing.T) {
	db := newFakeDB("game_key")
	r := NewReconciler(db, 100)

	outcome, err := r.Reconcile(context.Background(), "games", nil, PrimaryKey{"game_key"})

	require.NoError(t, err)
	assert.Equal(t, 0, outcome.Inserted)
	assert.Equal(t, 0, db.begins, "Empty input should not open a transaction")
}

func TestReconcile_EmptyKeyRejected(t *testing.T) {
	db := newFakeDB("game_key")
	r := NewReconciler(db, 100)

	_, err := r.Reconcile(context.Background(), "games", []NormalizedRecord{gameRecord("A1", 1)}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "primary key")
}

func TestReconcile_CompositeKey(t *testing.T) {
	db := newFakeDB("team", "season")
	r := NewReconciler(db, 100)
	ctx := context.Background()

	records := []NormalizedRecord{
		{"team": "DAL", "season": int64(2024), "wins": int64(12)},
		{"team": "DAL", "season": int64(2025), "wins": int64(3)},
	}
	outcome, err := r.Reconcile(ctx, "standings", records, PrimaryKey{"team", "season"})
	require.NoError(t, err)
	assert.Equal(t, 2, outcome.Inserted, "Same team in different seasons is two distinct rows")

	// Re-run only touches the matching composite key
	records[0]["wins"] = int64(13)
	outcome, err = r.Reconcile(ctx, "standings", records[:1], PrimaryKey{"team", "season"})
	require.NoError(t, err)
	assert.Equal(t, 1, outcome.Updated)
	assert.Equal(t, int64(13), db.rows["DAL|2024"]["wins"])
	assert.Equal(t, int64(3), db.rows["DAL|2025"]["wins"], "Other season must be untouched")
}

func TestReconcile_KeyOnlyRecord(t *testing.T) {
	db := newFakeDB("game_key")
	r := NewReconciler(db, 100)
	ctx := context.Background()

	records := []NormalizedRecord{{"game_key": "A1"}}
	_, err := r.Reconcile(ctx, "games", records, PrimaryKey{"game_key"})
	require.NoError(t, err)

	outcome, err := r.Reconcile(ctx, "games", records, PrimaryKey{"game_key"})
	require.NoError(t, err)
	assert.Equal(t, 1, outcome.Updated, "Key-only record counts as updated without a SET clause")
}

func TestNewReconciler_DefaultInterval(t *testing.T) {
	r := NewReconciler(newFakeDB("id"), 0)
	assert.Equal(t, defaultCommitInterval, r.CommitInterval)

	r = NewReconciler(newFakeDB("id"), 25)
	assert.Equal(t, 25, r.CommitInterval)
}
