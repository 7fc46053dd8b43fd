package datasets

import (
	"fmt"

	"sportseed/internal/config"
	"sportseed/internal/seeder"
)

// Schedule is the NFL season schedule dataset. BYE-week placeholders carry no
// game key and are skipped by the transform.
func Schedule(season int) Entry {
	return Entry{
		Dataset: seeder.Dataset{
			Name:       "schedule",
			Table:      ScheduleTable(season),
			PrimaryKey: seeder.PrimaryKey{"game_key"},
			Columns: seeder.ColumnSpec{
				Columns: []seeder.Column{
					{Name: "game_key", Type: "VARCHAR(20) PRIMARY KEY"},
					{Name: "season", Type: "INTEGER"},
					{Name: "week", Type: "INTEGER"},
					{Name: "date", Type: "VARCHAR(50)"},
					{Name: "away_team", Type: "VARCHAR(10)"},
					{Name: "home_team", Type: "VARCHAR(10)"},
					{Name: "channel", Type: "VARCHAR(50)"},
					{Name: "point_spread", Type: "FLOAT"},
					{Name: "over_under", Type: "FLOAT"},
					{Name: "status", Type: "VARCHAR(20)"},
					{Name: "stadium_details", Type: "JSONB"},
				},
			},
			Transform: transformSchedule,
		},
		URL: func(cfg *config.Config) string {
			return fmt.Sprintf("%s/scores/json/Schedules/%d", cfg.SportsDataBaseURL, season)
		},
	}
}

func transformSchedule(raw seeder.RawRecord) (seeder.NormalizedRecord, error) {
	if raw["GameKey"] == nil || raw["GameKey"] == "" {
		return nil, nil // BYE week placeholder
	}
	return seeder.NormalizedRecord{
		"game_key":        raw["GameKey"],
		"season":          seeder.ToInt(raw["Season"]),
		"week":            seeder.ToInt(raw["Week"]),
		"date":            seeder.ToString(raw["Date"]),
		"away_team":       seeder.ToString(raw["AwayTeam"]),
		"home_team":       seeder.ToString(raw["HomeTeam"]),
		"channel":         seeder.ToString(raw["Channel"]),
		"point_spread":    seeder.ToFloat(raw["PointSpread"]),
		"over_under":      seeder.ToFloat(raw["OverUnder"]),
		"status":          seeder.ToString(raw["Status"]),
		"stadium_details": seeder.ToJSONText(raw["StadiumDetails"]),
	}, nil
}

// PlayerSeasonStats is the per-player season statistics dataset. The full raw
// payload is preserved in the all_stats JSONB column.
func PlayerSeasonStats(season int) Entry {
	return Entry{
		Dataset: seeder.Dataset{
			Name:       "players",
			Table:      PlayersTable(season),
			PrimaryKey: seeder.PrimaryKey{"player_id"},
			Columns: seeder.ColumnSpec{
				Columns: []seeder.Column{
					{Name: "player_id", Type: "INTEGER PRIMARY KEY"},
					{Name: "name", Type: "VARCHAR(100)"},
					{Name: "team", Type: "VARCHAR(10)"},
					{Name: "position", Type: "VARCHAR(20)"},
					{Name: "season", Type: "INTEGER"},
					{Name: "passing_yards", Type: "INTEGER"},
					{Name: "rushing_yards", Type: "INTEGER"},
					{Name: "receiving_yards", Type: "INTEGER"},
					{Name: "fantasy_points", Type: "FLOAT"},
					{Name: "all_stats", Type: "JSONB"},
				},
			},
			Transform: transformPlayer,
		},
		URL: func(cfg *config.Config) string {
			return fmt.Sprintf("%s/stats/json/PlayerSeasonStats/%d", cfg.SportsDataBaseURL, season)
		},
	}
}

func transformPlayer(raw seeder.RawRecord) (seeder.NormalizedRecord, error) {
	return seeder.NormalizedRecord{
		"player_id":       seeder.ToInt(raw["PlayerID"]),
		"name":            seeder.ToString(raw["Name"]),
		"team":            seeder.ToString(raw["Team"]),
		"position":        seeder.ToString(raw["Position"]),
		"season":          seeder.ToInt(raw["Season"]),
		"passing_yards":   seeder.ToInt(raw["PassingYards"]),
		"rushing_yards":   seeder.ToInt(raw["RushingYards"]),
		"receiving_yards": seeder.ToInt(raw["ReceivingYards"]),
		"fantasy_points":  seeder.ToFloat(raw["FantasyPoints"]),
		"all_stats":       seeder.ToJSONText(raw),
	}, nil
}

// TeamSeasonStats is the per-team season statistics dataset.
func TeamSeasonStats(season int) Entry {
	return Entry{
		Dataset: seeder.Dataset{
			Name:       "teams",
			Table:      TeamsTable(season),
			PrimaryKey: seeder.PrimaryKey{"team"},
			Columns: seeder.ColumnSpec{
				Columns: []seeder.Column{
					{Name: "team", Type: "VARCHAR(10) PRIMARY KEY"},
					{Name: "name", Type: "VARCHAR(100)"},
					{Name: "season", Type: "INTEGER"},
					{Name: "wins", Type: "INTEGER"},
					{Name: "losses", Type: "INTEGER"},
					{Name: "points_for", Type: "INTEGER"},
					{Name: "points_against", Type: "INTEGER"},
					{Name: "all_stats", Type: "JSONB"},
				},
			},
			Transform: transformTeam,
		},
		URL: func(cfg *config.Config) string {
			return fmt.Sprintf("%s/stats/json/TeamSeasonStats/%d", cfg.SportsDataBaseURL, season)
		},
	}
}

func transformTeam(raw seeder.RawRecord) (seeder.NormalizedRecord, error) {
	return seeder.NormalizedRecord{
		"team":           seeder.ToString(raw["Team"]),
		"name":           seeder.ToString(raw["Name"]),
		"season":         seeder.ToInt(raw["Season"]),
		"wins":           seeder.ToInt(raw["Wins"]),
		"losses":         seeder.ToInt(raw["Losses"]),
		"points_for":     seeder.ToInt(raw["PointsFor"]),
		"points_against": seeder.ToInt(raw["PointsAgainst"]),
		"all_stats":      seeder.ToJSONText(raw),
	}, nil
}

// Standings is the league standings dataset. One row per team per season per
// season type, hence the composite primary key.
func Standings(season int) Entry {
	return Entry{
		Dataset: seeder.Dataset{
			Name:       "standings",
			Table:      StandingsTable(season),
			PrimaryKey: seeder.PrimaryKey{"team", "season", "season_type"},
			Columns: seeder.ColumnSpec{
				Columns: []seeder.Column{
					{Name: "team", Type: "VARCHAR(10)"},
					{Name: "season", Type: "INTEGER"},
					{Name: "season_type", Type: "INTEGER"},
					{Name: "name", Type: "VARCHAR(100)"},
					{Name: "conference", Type: "VARCHAR(10)"},
					{Name: "division", Type: "VARCHAR(20)"},
					{Name: "wins", Type: "INTEGER"},
					{Name: "losses", Type: "INTEGER"},
					{Name: "ties", Type: "INTEGER"},
					{Name: "win_percentage", Type: "FLOAT"},
					{Name: "division_wins", Type: "INTEGER"},
					{Name: "division_losses", Type: "INTEGER"},
					{Name: "conference_wins", Type: "INTEGER"},
					{Name: "conference_losses", Type: "INTEGER"},
					{Name: "division_rank", Type: "INTEGER"},
					{Name: "conference_rank", Type: "INTEGER"},
					{Name: "points_for", Type: "INTEGER"},
					{Name: "points_against", Type: "INTEGER"},
					{Name: "net_points", Type: "INTEGER"},
					{Name: "streak", Type: "VARCHAR(10)"},
				},
				PrimaryKey: []string{"team", "season", "season_type"},
			},
			Transform: transformStanding,
		},
		URL: func(cfg *config.Config) string {
			return fmt.Sprintf("%s/scores/json/Standings/%d", cfg.SportsDataBaseURL, season)
		},
	}
}

func transformStanding(raw seeder.RawRecord) (seeder.NormalizedRecord, error) {
	return seeder.NormalizedRecord{
		"team":              seeder.ToString(raw["Team"]),
		"season":            seeder.ToInt(raw["Season"]),
		"season_type":       seeder.ToInt(raw["SeasonType"]),
		"name":              seeder.ToString(raw["Name"]),
		"conference":        seeder.ToString(raw["Conference"]),
		"division":          seeder.ToString(raw["Division"]),
		"wins":              seeder.ToInt(raw["Wins"]),
		"losses":            seeder.ToInt(raw["Losses"]),
		"ties":              seeder.ToInt(raw["Ties"]),
		"win_percentage":    seeder.ToFloat(raw["Percentage"]),
		"division_wins":     seeder.ToInt(raw["DivisionWins"]),
		"division_losses":   seeder.ToInt(raw["DivisionLosses"]),
		"conference_wins":   seeder.ToInt(raw["ConferenceWins"]),
		"conference_losses": seeder.ToInt(raw["ConferenceLosses"]),
		"division_rank":     seeder.ToInt(raw["DivisionRank"]),
		"conference_rank":   seeder.ToInt(raw["ConferenceRank"]),
		"points_for":        seeder.ToInt(raw["PointsFor"]),
		"points_against":    seeder.ToInt(raw["PointsAgainst"]),
		"net_points":        seeder.ToInt(raw["NetPoints"]),
		"streak":            seeder.ToString(raw["Streak"]),
	}, nil
}
