package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"sportseed/internal/datasets"
)

// ScheduleRepository handles schedule read queries
type ScheduleRepository struct {
	db *Database
}

// WeekSummaryRow aggregates the scheduled games for one week
type WeekSummaryRow struct {
	Week          int     `json:"week"`
	Games         int     `json:"games"`
	AvgOverUnder  float64 `json:"avg_over_under"`
	FinishedGames int     `json:"finished_games"`
}

// TeamScheduleRow aggregates one team's slate across the season
type TeamScheduleRow struct {
	Team      string `json:"team"`
	Games     int    `json:"games"`
	HomeGames int    `json:"home_games"`
	AwayGames int    `json:"away_games"`
}

// WeekSummary aggregates the schedule per week for a season.
func (r *ScheduleRepository) WeekSummary(ctx context.Context, season int) ([]WeekSummaryRow, error) {
	table := pgx.Identifier{datasets.ScheduleTable(season)}.Sanitize()

	query := fmt.Sprintf(`
		SELECT week,
		       COUNT(*) AS games,
		       COALESCE(AVG(over_under), 0) AS avg_over_under,
		       SUM(CASE WHEN status = 'Final' THEN 1 ELSE 0 END) AS finished_games
		FROM %s
		GROUP BY week
		ORDER BY week
	`, table)

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query week summary: %w", err)
	}
	defer rows.Close()

	var summaries []WeekSummaryRow
	for rows.Next() {
		var s WeekSummaryRow
		if err := rows.Scan(&s.Week, &s.Games, &s.AvgOverUnder, &s.FinishedGames); err != nil {
			return nil, fmt.Errorf("failed to scan week summary: %w", err)
		}
		summaries = append(summaries, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating week summaries: %w", err)
	}

	return summaries, nil
}

// TeamSummary aggregates each team's schedule for a season. A game is counted
// once for the home side and once for the away side, hence the UNION ALL.
func (r *ScheduleRepository) TeamSummary(ctx context.Context, season int) ([]TeamScheduleRow, error) {
	table := pgx.Identifier{datasets.ScheduleTable(season)}.Sanitize()

	query := fmt.Sprintf(`
		SELECT team,
		       COUNT(*) AS games,
		       SUM(CASE WHEN side = 'home' THEN 1 ELSE 0 END) AS home_games,
		       SUM(CASE WHEN side = 'away' THEN 1 ELSE 0 END) AS away_games
		FROM (
			SELECT home_team AS team, 'home' AS side FROM %s
			UNION ALL
			SELECT away_team AS team, 'away' AS side FROM %s
		) AS combined
		GROUP BY team
		ORDER BY team
	`, table, table)

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query team summary: %w", err)
	}
	defer rows.Close()

	var summaries []TeamScheduleRow
	for rows.Next() {
		var s TeamScheduleRow
		if err := rows.Scan(&s.Team, &s.Games, &s.HomeGames, &s.AwayGames); err != nil {
			return nil, fmt.Errorf("failed to scan team summary: %w", err)
		}
		summaries = append(summaries, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating team summaries: %w", err)
	}

	return summaries, nil
}
