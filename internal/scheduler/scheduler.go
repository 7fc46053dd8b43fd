// Package scheduler runs the nightly reseed of all registered datasets.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"sportseed/internal/config"
	"sportseed/internal/datasets"
	"sportseed/internal/seeder"
)

// Scheduler manages the background reseed cron. Source data is refreshed
// nightly during off-hours; every run re-walks the full dataset registry so
// stat corrections upstream land in the tables.
type Scheduler struct {
	cfg      *config.Config
	keyed    *seeder.Seeder
	keyless  *seeder.Seeder
	registry map[string]datasets.Entry
	cron     *cron.Cron
}

// NewScheduler creates a new scheduler instance. keyed seeds from sources
// that take the API key; keyless seeds the ones that must not receive it.
func NewScheduler(cfg *config.Config, keyed, keyless *seeder.Seeder, registry map[string]datasets.Entry) *Scheduler {
	return &Scheduler{
		cfg:      cfg,
		keyed:    keyed,
		keyless:  keyless,
		registry: registry,
		cron:     cron.New(),
	}
}

// seederFor routes keyless sources away from the credential-bearing client.
func (s *Scheduler) seederFor(e datasets.Entry) *seeder.Seeder {
	if e.Keyless {
		return s.keyless
	}
	return s.keyed
}

// Start registers the nightly reseed job and starts the cron loop.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.cfg.NightlySeedCron, func() {
		log.Info().Msg("Running nightly reseed...")
		if err := s.RunAll(ctx); err != nil {
			log.Error().Err(err).Msg("Nightly reseed failed")
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule nightly reseed: %w", err)
	}

	s.cron.Start()
	log.Info().
		Str("schedule", s.cfg.NightlySeedCron).
		Int("datasets", len(s.registry)).
		Msg("Nightly reseed scheduled")

	return nil
}

// Stop stops the cron loop.
func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
	log.Info().Msg("Scheduler stopped")
}

// RunAll seeds every registered dataset in name order. A failed dataset is
// logged and does not block the remaining ones.
func (s *Scheduler) RunAll(ctx context.Context) error {
	start := time.Now()
	failed := 0

	for _, name := range datasets.Names(s.registry) {
		entry := s.registry[name]
		outcome, err := s.seederFor(entry).SeedFromAPI(ctx, entry.URL(s.cfg), nil, entry.Dataset)
		if err != nil {
			failed++
			log.Error().Err(err).Str("dataset", name).Msg("Dataset seed failed")
			continue
		}
		log.Info().
			Str("dataset", name).
			Str("outcome", outcome.Summary()).
			Msg("Dataset seeded")
	}

	log.Info().
		Int("datasets", len(s.registry)).
		Int("failed", failed).
		Dur("duration", time.Since(start)).
		Msg("Reseed complete")

	if failed > 0 {
		return fmt.Errorf("%d of %d datasets failed to seed", failed, len(s.registry))
	}
	return nil
}
