// Package datasets holds the declarative configuration for every target
// table the engine can seed: column specs, primary keys, transforms, and
// source URL builders. The engine itself never knows these shapes.
package datasets

import (
	"fmt"
	"sort"

	"sportseed/internal/config"
	"sportseed/internal/seeder"
)

// Entry binds a seeder dataset to its source endpoint.
type Entry struct {
	seeder.Dataset
	// URL builds the source endpoint for the configured season.
	URL func(cfg *config.Config) string
	// Keyless marks sources that must never receive the API key, e.g. the
	// Sleeper API. Callers route these through a credential-free client.
	Keyless bool
}

// Registry returns all known datasets for the given config, keyed by name.
func Registry(cfg *config.Config) map[string]Entry {
	entries := []Entry{
		Schedule(cfg.Season),
		PlayerSeasonStats(cfg.Season),
		TeamSeasonStats(cfg.Season),
		Standings(cfg.Season),
	}
	if cfg.SleeperLeagueID != "" {
		entries = append(entries, SleeperRosters(cfg.SleeperLeagueID))
	}

	reg := make(map[string]Entry, len(entries))
	for _, e := range entries {
		reg[e.Name] = e
	}
	return reg
}

// Names returns the registered dataset names in sorted order.
func Names(reg map[string]Entry) []string {
	names := make([]string, 0, len(reg))
	for name := range reg {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ScheduleTable returns the schedule table name for a season.
func ScheduleTable(season int) string {
	return fmt.Sprintf("nfl_schedule_%d", season)
}

// PlayersTable returns the player stats table name for a season.
func PlayersTable(season int) string {
	return fmt.Sprintf("nfl_players_%d", season)
}

// TeamsTable returns the team stats table name for a season.
func TeamsTable(season int) string {
	return fmt.Sprintf("nfl_teams_%d", season)
}

// StandingsTable returns the standings table name for a season.
func StandingsTable(season int) string {
	return fmt.Sprintf("nfl_standings_%d", season)
}
