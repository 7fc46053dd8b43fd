package datasets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sportseed/internal/config"
	"sportseed/internal/seeder"
)

func testConfig() *config.Config {
	return &config.Config{
		Season:            2025,
		SportsDataBaseURL: "https://api.sportsdata.io/v3/nfl",
		SleeperBaseURL:    "https://api.sleeper.app/v1",
	}
}

func TestRegistry(t *testing.T) {
	cfg := testConfig()

	reg := Registry(cfg)
	assert.Equal(t,
		[]string{"players", "schedule", "standings", "teams"},
		Names(reg))

	cfg.SleeperLeagueID = "987654"
	reg = Registry(cfg)
	require.Contains(t, reg, "rosters", "Roster dataset appears once a league is configured")
	assert.Equal(t,
		"https://api.sleeper.app/v1/league/987654/rosters",
		reg["rosters"].URL(cfg))
}

func TestRegistryKeyRouting(t *testing.T) {
	cfg := testConfig()
	cfg.SleeperLeagueID = "987654"

	reg := Registry(cfg)
	assert.True(t, reg["rosters"].Keyless, "The Sleeper API takes no key; it must never see ours")
	for _, name := range []string{"schedule", "players", "teams", "standings"} {
		assert.False(t, reg[name].Keyless, "%s requires the API key", name)
	}
}

func TestScheduleEntry(t *testing.T) {
	cfg := testConfig()
	entry := Schedule(cfg.Season)

	assert.Equal(t, "nfl_schedule_2025", entry.Table)
	assert.Equal(t, seeder.PrimaryKey{"game_key"}, entry.PrimaryKey)
	assert.Equal(t,
		"https://api.sportsdata.io/v3/nfl/scores/json/Schedules/2025",
		entry.URL(cfg))
}

func TestTransformSchedule(t *testing.T) {
	rec, err := transformSchedule(seeder.RawRecord{
		"GameKey":        "202510104",
		"Season":         2025.0,
		"Week":           1.0,
		"Date":           "2025-09-04T20:20:00",
		"AwayTeam":       "DAL",
		"HomeTeam":       "PHI",
		"PointSpread":    -3.5,
		"OverUnder":      47.5,
		"Status":         "Scheduled",
		"StadiumDetails": map[string]any{"Name": "Lincoln Financial Field"},
	})

	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "202510104", rec["game_key"])
	assert.Equal(t, int64(1), rec["week"])
	assert.Equal(t, -3.5, rec["point_spread"])
	assert.Contains(t, rec["stadium_details"], "Lincoln Financial Field")
}

func TestTransformSchedule_ByeWeekSkipped(t *testing.T) {
	rec, err := transformSchedule(seeder.RawRecord{
		"GameKey":  "",
		"Week":     7.0,
		"AwayTeam": "BYE",
		"HomeTeam": "DAL",
	})

	require.NoError(t, err)
	assert.Nil(t, rec, "Bye placeholders have no game key and must be skipped")
}

func TestTransformPlayer_PreservesFullPayload(t *testing.T) {
	rec, err := transformPlayer(seeder.RawRecord{
		"PlayerID":      21831.0,
		"Name":          "CeeDee Lamb",
		"Team":          "DAL",
		"Position":      "WR",
		"Season":        2025.0,
		"FantasyPoints": 312.4,
		"Tackles":       1.0, // not a dedicated column
	})

	require.NoError(t, err)
	assert.Equal(t, int64(21831), rec["player_id"])
	assert.Contains(t, rec["all_stats"], "Tackles", "Undedicated fields survive in the JSON blob")
}

func TestTransformStanding_CompositeKeyColumns(t *testing.T) {
	entry := Standings(2025)
	rec, err := transformStanding(seeder.RawRecord{
		"Team":       "DAL",
		"Season":     2025.0,
		"SeasonType": 1.0,
		"Wins":       12.0,
		"Percentage": 0.706,
	})

	require.NoError(t, err)
	for _, col := range entry.PrimaryKey {
		assert.NotNil(t, rec[col], "Every key column must be populated: %s", col)
	}
	assert.Equal(t, int64(1), rec["season_type"])
}

func TestTransformRoster(t *testing.T) {
	rec, err := transformRoster(seeder.RawRecord{
		"league_id": "987654",
		"roster_id": 3.0,
		"owner_id":  "user123",
		"players":   []any{"4034", "6794"},
		"settings": map[string]any{
			"wins":   8.0,
			"losses": 5.0,
			"fpts":   1432.5,
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "987654", rec["league_id"])
	assert.Equal(t, int64(3), rec["roster_id"])
	assert.Equal(t, int64(8), rec["wins"])
	assert.Equal(t, 1432.5, rec["fpts"])
	assert.Equal(t, `["4034","6794"]`, rec["players"])
}

func TestTransformRoster_MissingSettings(t *testing.T) {
	_, err := transformRoster(seeder.RawRecord{
		"league_id": "987654",
		"roster_id": 3.0,
	})
	require.Error(t, err)
}
