package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"sportseed/internal/datasets"
)

// StandingsRepository handles standings read queries
type StandingsRepository struct {
	db *Database
}

// StandingRow is one team's record for a season
type StandingRow struct {
	Team           string  `json:"team"`
	Name           string  `json:"name"`
	Conference     string  `json:"conference"`
	Division       string  `json:"division"`
	Wins           int     `json:"wins"`
	Losses         int     `json:"losses"`
	Ties           int     `json:"ties"`
	WinPercentage  float64 `json:"win_percentage"`
	DivisionRank   int     `json:"division_rank"`
	ConferenceRank int     `json:"conference_rank"`
	PointsFor      int     `json:"points_for"`
	PointsAgainst  int     `json:"points_against"`
	NetPoints      int     `json:"net_points"`
	Streak         string  `json:"streak"`
}

// ConferenceSummaryRow aggregates one conference's standings
type ConferenceSummaryRow struct {
	Conference    string  `json:"conference"`
	Teams         int     `json:"teams"`
	TotalWins     int     `json:"total_wins"`
	TotalLosses   int     `json:"total_losses"`
	AvgPointsFor  float64 `json:"avg_points_for"`
	BestNetPoints int     `json:"best_net_points"`
}

// List returns the standings for a season, optionally filtered by conference.
// Rows are ordered best record first.
func (r *StandingsRepository) List(ctx context.Context, season int, conference string) ([]StandingRow, error) {
	table := pgx.Identifier{datasets.StandingsTable(season)}.Sanitize()

	query := fmt.Sprintf(`
		SELECT team, name, conference, division, wins, losses, ties,
		       win_percentage, division_rank, conference_rank,
		       points_for, points_against, net_points, streak
		FROM %s
		WHERE ($1 = '' OR conference = $1)
		ORDER BY win_percentage DESC, net_points DESC
	`, table)

	rows, err := r.db.Pool.Query(ctx, query, conference)
	if err != nil {
		return nil, fmt.Errorf("failed to query standings: %w", err)
	}
	defer rows.Close()

	var standings []StandingRow
	for rows.Next() {
		var s StandingRow
		err := rows.Scan(
			&s.Team, &s.Name, &s.Conference, &s.Division,
			&s.Wins, &s.Losses, &s.Ties, &s.WinPercentage,
			&s.DivisionRank, &s.ConferenceRank,
			&s.PointsFor, &s.PointsAgainst, &s.NetPoints, &s.Streak,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan standing: %w", err)
		}
		standings = append(standings, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating standings: %w", err)
	}

	return standings, nil
}

// GetByTeam returns one team's standing for a season.
func (r *StandingsRepository) GetByTeam(ctx context.Context, season int, team string) (*StandingRow, error) {
	table := pgx.Identifier{datasets.StandingsTable(season)}.Sanitize()

	query := fmt.Sprintf(`
		SELECT team, name, conference, division, wins, losses, ties,
		       win_percentage, division_rank, conference_rank,
		       points_for, points_against, net_points, streak
		FROM %s
		WHERE team = $1
	`, table)

	var s StandingRow
	err := r.db.Pool.QueryRow(ctx, query, team).Scan(
		&s.Team, &s.Name, &s.Conference, &s.Division,
		&s.Wins, &s.Losses, &s.Ties, &s.WinPercentage,
		&s.DivisionRank, &s.ConferenceRank,
		&s.PointsFor, &s.PointsAgainst, &s.NetPoints, &s.Streak,
	)

	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("standing not found: team=%s season=%d: %w", team, season, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get standing: %w", err)
	}

	return &s, nil
}

// ConferenceSummary aggregates standings per conference for a season.
func (r *StandingsRepository) ConferenceSummary(ctx context.Context, season int) ([]ConferenceSummaryRow, error) {
	table := pgx.Identifier{datasets.StandingsTable(season)}.Sanitize()

	query := fmt.Sprintf(`
		SELECT conference,
		       COUNT(*) AS teams,
		       SUM(wins) AS total_wins,
		       SUM(losses) AS total_losses,
		       AVG(points_for) AS avg_points_for,
		       MAX(net_points) AS best_net_points
		FROM %s
		GROUP BY conference
		ORDER BY conference
	`, table)

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query conference summary: %w", err)
	}
	defer rows.Close()

	var summaries []ConferenceSummaryRow
	for rows.Next() {
		var s ConferenceSummaryRow
		err := rows.Scan(
			&s.Conference, &s.Teams, &s.TotalWins, &s.TotalLosses,
			&s.AvgPointsFor, &s.BestNetPoints,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan conference summary: %w", err)
		}
		summaries = append(summaries, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating conference summaries: %w", err)
	}

	return summaries, nil
}
