package seeder

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"sportseed/internal/metrics"
)

// maxReportedErrors caps how many record errors the summary log prints.
const maxReportedErrors = 10

// Seeder orchestrates one ingestion run: fetch, normalize, provision,
// reconcile, summarize. Construct it with injected collaborators; it holds
// no credentials of its own.
type Seeder struct {
	fetcher    Fetcher
	db         DB
	reconciler *Reconciler
}

// New creates a seeder. commitInterval <= 0 selects the default cadence.
func New(fetcher Fetcher, db DB, commitInterval int) *Seeder {
	return &Seeder{
		fetcher:    fetcher,
		db:         db,
		reconciler: NewReconciler(db, commitInterval),
	}
}

// SeedFromAPI fetches raw records from the source URL and seeds them into the
// dataset's table. A fetch failure, provisioning failure, or zero processable
// records aborts the run with an error before any write happens.
func (s *Seeder) SeedFromAPI(ctx context.Context, url string, params map[string]string, ds Dataset) (*Outcome, error) {
	log.Info().
		Str("dataset", ds.Name).
		Str("table", ds.Table).
		Str("url", url).
		Msg("Starting ingestion run")

	raw, err := s.fetcher.FetchRecords(ctx, url, params)
	if err != nil {
		metrics.RecordSeedRun(ds.Name, "aborted", 0)
		return nil, fmt.Errorf("failed to fetch %s: %w", ds.Name, err)
	}
	log.Info().Str("dataset", ds.Name).Int("count", len(raw)).Msg("Records fetched")

	return s.SeedRecords(ctx, raw, ds)
}

// SeedRecords seeds caller-supplied in-memory records into the dataset's
// table. The transform runs before any database contact, so a transform that
// skips everything aborts without touching the sink.
func (s *Seeder) SeedRecords(ctx context.Context, raw []RawRecord, ds Dataset) (*Outcome, error) {
	start := time.Now()

	normalized, skipped := Process(raw, ds.Transform, ds.PrimaryKey)
	log.Info().
		Str("dataset", ds.Name).
		Int("ready", len(normalized)).
		Int("skipped", skipped).
		Msg("Records processed")

	if len(normalized) == 0 {
		metrics.RecordSeedRun(ds.Name, "aborted", time.Since(start).Seconds())
		return nil, fmt.Errorf("no processable records for %s after filtering", ds.Name)
	}

	if err := EnsureTable(ctx, s.db, ds.Table, ds.Columns); err != nil {
		metrics.RecordSeedRun(ds.Name, "aborted", time.Since(start).Seconds())
		return nil, fmt.Errorf("failed to provision %s: %w", ds.Table, err)
	}

	outcome, err := s.reconciler.Reconcile(ctx, ds.Table, normalized, ds.PrimaryKey)
	if err != nil {
		metrics.RecordSeedRun(ds.Name, "failed", time.Since(start).Seconds())
		return outcome, fmt.Errorf("reconcile of %s failed: %w", ds.Table, err)
	}
	outcome.Fetched = len(raw)
	outcome.Skipped = skipped

	s.summarize(ds, outcome, time.Since(start))
	return outcome, nil
}

// summarize emits the end-of-run report and metrics.
func (s *Seeder) summarize(ds Dataset, outcome *Outcome, elapsed time.Duration) {
	metrics.RecordUpserts(ds.Table, outcome.Inserted, outcome.Updated, len(outcome.Errors))
	metrics.RecordSeedRun(ds.Name, "success", elapsed.Seconds())

	log.Info().
		Str("dataset", ds.Name).
		Str("summary", outcome.Summary()).
		Dur("elapsed", elapsed).
		Msg("Ingestion run complete")

	for i, recErr := range outcome.Errors {
		if i >= maxReportedErrors {
			log.Warn().
				Int("remaining", len(outcome.Errors)-maxReportedErrors).
				Msg("Additional record errors suppressed")
			break
		}
		log.Warn().
			Str("key", recErr.Key).
			Str("error", recErr.Message).
			Msg("Record error")
	}
}
