package seeder

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	records []RawRecord
	err     error
	calls   int
}

func (f *fakeFetcher) FetchRecords(ctx context.Context, url string, params map[string]string) ([]RawRecord, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

func testDataset() Dataset {
	return Dataset{
		Name:       "games",
		Table:      "games",
		PrimaryKey: PrimaryKey{"game_key"},
		Columns: ColumnSpec{
			Columns: []Column{
				{Name: "game_key", Type: "VARCHAR(20) PRIMARY KEY"},
				{Name: "week", Type: "INTEGER"},
			},
		},
		Transform: func(raw RawRecord) (NormalizedRecord, error) {
			if raw["GameKey"] == nil || raw["GameKey"] == "" {
				return nil, nil
			}
			return NormalizedRecord{
				"game_key": raw["GameKey"],
				"week":     ToInt(raw["Week"]),
			}, nil
		},
	}
}

func TestSeedFromAPI_HappyPath(t *testing.T) {
	db := newFakeDB("game_key")
	fetcher := &fakeFetcher{records: []RawRecord{
		{"GameKey": "202501", "Week": 1.0},
		{"GameKey": "", "Week": 1.0}, // bye placeholder
		{"GameKey": "202502", "Week": 2.0},
	}}
	s := New(fetcher, db, 100)

	outcome, err := s.SeedFromAPI(context.Background(), "https://example.test/schedules", nil, testDataset())

	require.NoError(t, err)
	assert.Equal(t, 3, outcome.Fetched)
	assert.Equal(t, 1, outcome.Skipped)
	assert.Equal(t, 2, outcome.Inserted)
	assert.Len(t, db.ddl, 1, "Table should be provisioned exactly once")
	assert.Len(t, db.rows, 2)
}

func TestSeedFromAPI_FetchFailureAborts(t *testing.T) {
	db := newFakeDB("game_key")
	fetcher := &fakeFetcher{err: errors.New("connection refused")}
	s := New(fetcher, db, 100)

	_, err := s.SeedFromAPI(context.Background(), "https://example.test/schedules", nil, testDataset())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Empty(t, db.ddl, "Fetch failure must happen before any database contact")
	assert.Zero(t, db.begins)
}

func TestSeedRecords_AllSkippedAborts(t *testing.T) {
	db := newFakeDB("game_key")
	s := New(&fakeFetcher{}, db, 100)

	raw := []RawRecord{{"GameKey": ""}, {"GameKey": nil}}
	_, err := s.SeedRecords(context.Background(), raw, testDataset())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no processable records")
	assert.Empty(t, db.ddl, "All-skip run must abort before provisioning")
	assert.Zero(t, db.begins)
}

func TestSeedRecords_ProvisionFailureAborts(t *testing.T) {
	db := newFakeDB("game_key")
	db.failDDL = errors.New("permission denied")
	s := New(&fakeFetcher{}, db, 100)

	raw := []RawRecord{{"GameKey": "202501", "Week": 1.0}}
	_, err := s.SeedRecords(context.Background(), raw, testDataset())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "provision")
	assert.Zero(t, db.begins, "Provisioning failure must abort before any write")
}

func TestSeedRecords_Idempotent(t *testing.T) {
	db := newFakeDB("game_key")
	s := New(&fakeFetcher{}, db, 100)
	ctx := context.Background()

	raw := []RawRecord{
		{"GameKey": "202501", "Week": 1.0},
		{"GameKey": "202502", "Week": 2.0},
	}

	first, err := s.SeedRecords(ctx, raw, testDataset())
	require.NoError(t, err)
	assert.Equal(t, 2, first.Inserted)

	second, err := s.SeedRecords(ctx, raw, testDataset())
	require.NoError(t, err)
	assert.Equal(t, 0, second.Inserted, "Re-seeding the same payload should only update")
	assert.Equal(t, 2, second.Updated)
	assert.Len(t, db.rows, 2)
}

func TestOutcomeSummary(t *testing.T) {
	outcome := &Outcome{
		Table:    "games",
		Fetched:  10,
		Skipped:  2,
		Inserted: 5,
		Updated:  2,
		Errors:   []RecordError{{Key: "x", Message: "boom"}},
	}
	assert.Equal(t,
		"table=games fetched=10 skipped=2 inserted=5 updated=2 errors=1",
		outcome.Summary())
}
