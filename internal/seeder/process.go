package seeder

import (
	"fmt"

	"github.com/rs/zerolog/log"
)

// Process normalizes raw source records via the caller-supplied transform.
// A transform error or nil result counts the record as skipped and processing
// continues; a record whose primary-key column(s) come back nil is likewise
// skipped (it could never be reconciled). Guarantee:
// len(normalized) + skipped == len(raw).
func Process(raw []RawRecord, transform Transform, key PrimaryKey) ([]NormalizedRecord, int) {
	normalized := make([]NormalizedRecord, 0, len(raw))
	skipped := 0

	for i, rec := range raw {
		out, err := transform(rec)
		if err != nil {
			log.Warn().
				Err(err).
				Int("position", i).
				Str("source_id", sourceIdentifier(rec)).
				Msg("Skipped record: transform failed")
			skipped++
			continue
		}
		if out == nil {
			skipped++
			continue
		}
		if !hasKeyValues(out, key) {
			log.Warn().
				Int("position", i).
				Str("source_id", sourceIdentifier(rec)).
				Strs("primary_key", key).
				Msg("Skipped record: missing primary key value")
			skipped++
			continue
		}
		normalized = append(normalized, out)
	}

	return normalized, skipped
}

// hasKeyValues reports whether every primary-key column is present and
// non-nil in the normalized record.
func hasKeyValues(rec NormalizedRecord, key PrimaryKey) bool {
	for _, col := range key {
		if v, ok := rec[col]; !ok || v == nil {
			return false
		}
	}
	return true
}

// sourceIdentifier digs a human-readable identifier out of a raw record for
// skip diagnostics. Field names cover the SportsDataIO and Sleeper payloads
// this engine typically sees.
func sourceIdentifier(rec RawRecord) string {
	for _, field := range []string{"Name", "name", "GameKey", "Team", "PlayerID", "roster_id"} {
		if v, ok := rec[field]; ok && v != nil {
			return fmt.Sprintf("%v", v)
		}
	}
	return "unknown"
}
