package datasets

import (
	"fmt"

	"sportseed/internal/config"
	"sportseed/internal/seeder"
)

// SleeperRosters is the fantasy roster dataset from the Sleeper API. Rosters
// are unique per league, hence the composite primary key; player lists and
// metadata stay as serialized JSON rather than being normalized into their
// own tables.
func SleeperRosters(leagueID string) Entry {
	return Entry{
		Dataset: seeder.Dataset{
			Name:       "rosters",
			Table:      "sleeper_rosters",
			PrimaryKey: seeder.PrimaryKey{"league_id", "roster_id"},
			Columns: seeder.ColumnSpec{
				Columns: []seeder.Column{
					{Name: "league_id", Type: "VARCHAR(50)"},
					{Name: "roster_id", Type: "INTEGER"},
					{Name: "owner_id", Type: "VARCHAR(50)"},
					{Name: "players", Type: "JSONB"},
					{Name: "starters", Type: "JSONB"},
					{Name: "keepers", Type: "JSONB"},
					{Name: "reserve", Type: "JSONB"},
					{Name: "metadata", Type: "JSONB"},
					{Name: "wins", Type: "INTEGER"},
					{Name: "losses", Type: "INTEGER"},
					{Name: "ties", Type: "INTEGER"},
					{Name: "fpts", Type: "DECIMAL(10,2)"},
					{Name: "total_moves", Type: "INTEGER"},
					{Name: "waiver_position", Type: "INTEGER"},
					{Name: "waiver_budget_used", Type: "INTEGER"},
				},
				PrimaryKey: []string{"league_id", "roster_id"},
			},
			Transform: transformRoster,
		},
		URL: func(cfg *config.Config) string {
			return fmt.Sprintf("%s/league/%s/rosters", cfg.SleeperBaseURL, leagueID)
		},
		Keyless: true,
	}
}

func transformRoster(raw seeder.RawRecord) (seeder.NormalizedRecord, error) {
	settings, _ := raw["settings"].(map[string]any)
	if settings == nil {
		return nil, fmt.Errorf("roster has no settings object")
	}

	return seeder.NormalizedRecord{
		"league_id":          seeder.ToString(raw["league_id"]),
		"roster_id":          seeder.ToInt(raw["roster_id"]),
		"owner_id":           seeder.ToString(raw["owner_id"]),
		"players":            seeder.ToJSONText(raw["players"]),
		"starters":           seeder.ToJSONText(raw["starters"]),
		"keepers":            seeder.ToJSONText(raw["keepers"]),
		"reserve":            seeder.ToJSONText(raw["reserve"]),
		"metadata":           seeder.ToJSONText(raw["metadata"]),
		"wins":               seeder.ToInt(settings["wins"]),
		"losses":             seeder.ToInt(settings["losses"]),
		"ties":               seeder.ToInt(settings["ties"]),
		"fpts":               seeder.ToFloat(settings["fpts"]),
		"total_moves":        seeder.ToInt(settings["total_moves"]),
		"waiver_position":    seeder.ToInt(settings["waiver_position"]),
		"waiver_budget_used": seeder.ToInt(settings["waiver_budget_used"]),
	}, nil
}
