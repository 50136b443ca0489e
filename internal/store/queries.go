package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/blackwell-systems/shotprofile/internal/logging"
)

// DefaultMinSeason is the first season the summaries include.
const DefaultMinSeason = 2019

// Aggregate names a summary table and the columns it groups by.
type Aggregate struct {
	Name string
	Keys []string
}

var (
	// TeamAggregate summarizes attempts per team.
	TeamAggregate = Aggregate{Name: "team_data", Keys: []string{"team_name"}}

	// PlayerAggregate summarizes attempts per player.
	PlayerAggregate = Aggregate{Name: "player_data", Keys: []string{"player_name"}}

	// ZoneAggregate summarizes attempts per player and basic shot zone.
	ZoneAggregate = Aggregate{Name: "shot_data", Keys: []string{"player_name", "shot_zone_basic"}}
)

// query builds the aggregate statement. Keys come from the fixed aggregates
// above, never from user input.
func (a Aggregate) query() string {
	keys := strings.Join(a.Keys, ", ")
	return fmt.Sprintf(`
		SELECT %s,
			COUNT(*) AS attempts,
			SUM(CASE WHEN shot_made_flag = 1 THEN 1 ELSE 0 END) AS made,
			SUM(CASE WHEN shot_made_flag = 0 THEN 1 ELSE 0 END) AS missed,
			ROUND(SUM(CASE WHEN shot_made_flag = 1 THEN 1 ELSE 0 END) * 100.0 / COUNT(*), 2) AS accuracy
		FROM %s
		WHERE season >= ?
		GROUP BY %s
	`, keys, ShotsTable, keys)
}

// RunAggregate executes one aggregate over shots from minSeason onward and
// returns one row per group. Row order is whatever SQLite produces.
func (s *Store) RunAggregate(ctx context.Context, agg Aggregate, minSeason int) ([]SummaryRow, error) {
	if len(agg.Keys) == 0 {
		return nil, fmt.Errorf("aggregate %q has no group keys", agg.Name)
	}

	start := time.Now()
	rows, err := s.db.QueryContext(ctx, agg.query(), minSeason)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to run %s aggregate: %v", ErrDataAccess, agg.Name, err)
	}
	defer rows.Close()

	var result []SummaryRow
	nullGroups := 0
	for rows.Next() {
		raw := make([]sql.NullString, len(agg.Keys))
		dest := make([]any, 0, len(agg.Keys)+4)
		for i := range raw {
			dest = append(dest, &raw[i])
		}

		var row SummaryRow
		dest = append(dest, &row.Attempts, &row.Made, &row.Missed, &row.Accuracy)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("%w: failed to scan %s row: %v", ErrDataAccess, agg.Name, err)
		}

		// A NULL key value forms its own group, reported under "".
		row.Keys = make([]string, len(raw))
		for i, k := range raw {
			if !k.Valid {
				nullGroups++
			}
			row.Keys[i] = k.String
		}
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: error iterating %s rows: %v", ErrDataAccess, agg.Name, err)
	}

	if nullGroups > 0 {
		logging.WithComponent("store").Warn().
			Str("aggregate", agg.Name).
			Int("null_keys", nullGroups).
			Msg("Shots with NULL group keys aggregated under an empty key")
	}

	logging.WithComponent("store").Debug().
		Str("aggregate", agg.Name).
		Int("rows", len(result)).
		Dur("elapsed", time.Since(start)).
		Msg("Aggregate complete")

	return result, nil
}

// LoadSummaries runs the team, player and player/zone aggregates.
func (s *Store) LoadSummaries(ctx context.Context, minSeason int) (*Summaries, error) {
	teams, err := s.RunAggregate(ctx, TeamAggregate, minSeason)
	if err != nil {
		return nil, err
	}

	players, err := s.RunAggregate(ctx, PlayerAggregate, minSeason)
	if err != nil {
		return nil, err
	}

	zones, err := s.RunAggregate(ctx, ZoneAggregate, minSeason)
	if err != nil {
		return nil, err
	}

	return &Summaries{Teams: teams, Players: players, Zones: zones}, nil
}

// CountShots returns the number of shots from minSeason onward.
func (s *Store) CountShots(ctx context.Context, minSeason int) (int64, error) {
	var count int64
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE season >= ?`, ShotsTable)
	if err := s.db.QueryRowContext(ctx, query, minSeason).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: failed to count shots: %v", ErrDataAccess, err)
	}
	return count, nil
}

// InsertShots writes shot records in a single transaction.
func (s *Store) InsertShots(ctx context.Context, shots []ShotRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO nba_shots (team_name, player_name, season, shot_zone_basic, shot_made_flag)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, shot := range shots {
		flag := 0
		if shot.Made {
			flag = 1
		}
		if _, err := stmt.ExecContext(ctx, shot.TeamName, shot.PlayerName, shot.Season, shot.ShotZoneBasic, flag); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("failed to insert shot for %s: %w", shot.PlayerName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit shots: %w", err)
	}

	return nil
}
