package store

import (
	"context"
	"errors"
	"math"
	"testing"
)

func shot(team, player string, season int, zone string, made bool) ShotRecord {
	return ShotRecord{TeamName: team, PlayerName: player, Season: season, ShotZoneBasic: zone, Made: made}
}

func seedShots(t *testing.T, s *Store, shots []ShotRecord) {
	t.Helper()
	if err := s.InsertShots(context.Background(), shots); err != nil {
		t.Fatalf("InsertShots() failed: %v", err)
	}
}

func findRow(rows []SummaryRow, keys ...string) (SummaryRow, bool) {
	for _, r := range rows {
		if len(r.Keys) != len(keys) {
			continue
		}
		match := true
		for i := range keys {
			if r.Keys[i] != keys[i] {
				match = false
				break
			}
		}
		if match {
			return r, true
		}
	}
	return SummaryRow{}, false
}

func TestRunAggregate_TeamScenario(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	seedShots(t, s, []ShotRecord{
		shot("TeamA", "Player One", 2019, "Mid-Range", true),
		shot("TeamA", "Player One", 2019, "Mid-Range", false),
		shot("TeamA", "Player Two", 2019, "Restricted Area", true),
	})

	rows, err := s.RunAggregate(context.Background(), TeamAggregate, DefaultMinSeason)
	if err != nil {
		t.Fatalf("RunAggregate() failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 team row, got %d", len(rows))
	}

	got := rows[0]
	if got.Key(0) != "TeamA" {
		t.Errorf("team = %q, want TeamA", got.Key(0))
	}
	if got.Attempts != 3 || got.Made != 2 || got.Missed != 1 {
		t.Errorf("attempts/made/missed = %d/%d/%d, want 3/2/1", got.Attempts, got.Made, got.Missed)
	}
	if got.Accuracy != 66.67 {
		t.Errorf("accuracy = %v, want 66.67", got.Accuracy)
	}
}

func TestRunAggregate_SeasonFilter(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	seedShots(t, s, []ShotRecord{
		shot("TeamA", "Old Timer", 2017, "Mid-Range", true),
		shot("TeamA", "Old Timer", 2018, "Mid-Range", true),
		shot("TeamB", "Rookie", 2020, "Above the Break 3", false),
	})

	rows, err := s.RunAggregate(context.Background(), PlayerAggregate, DefaultMinSeason)
	if err != nil {
		t.Fatalf("RunAggregate() failed: %v", err)
	}

	if _, ok := findRow(rows, "Old Timer"); ok {
		t.Error("player with only pre-2019 shots should not appear")
	}
	rookie, ok := findRow(rows, "Rookie")
	if !ok {
		t.Fatal("Rookie missing from player summary")
	}
	if rookie.Attempts != 1 || rookie.Made != 0 || rookie.Missed != 1 || rookie.Accuracy != 0 {
		t.Errorf("Rookie = %+v, want 1 attempt, 0 made, 1 missed, 0%%", rookie)
	}

	all, err := s.RunAggregate(context.Background(), PlayerAggregate, 2000)
	if err != nil {
		t.Fatalf("RunAggregate() failed: %v", err)
	}
	if _, ok := findRow(all, "Old Timer"); !ok {
		t.Error("lowering min season should include Old Timer")
	}
}

func TestRunAggregate_ZoneKeys(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	seedShots(t, s, []ShotRecord{
		shot("LAL", "LeBron James", 2020, "Restricted Area", true),
		shot("LAL", "LeBron James", 2020, "Restricted Area", true),
		shot("LAL", "LeBron James", 2021, "Mid-Range", false),
		shot("LAL", "Anthony Davis", 2021, "Mid-Range", true),
	})

	rows, err := s.RunAggregate(context.Background(), ZoneAggregate, DefaultMinSeason)
	if err != nil {
		t.Fatalf("RunAggregate() failed: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 player/zone rows, got %d", len(rows))
	}

	ra, ok := findRow(rows, "LeBron James", "Restricted Area")
	if !ok {
		t.Fatal("LeBron James / Restricted Area missing")
	}
	if ra.Attempts != 2 || ra.Accuracy != 100 {
		t.Errorf("restricted area = %+v, want 2 attempts at 100%%", ra)
	}
	if ra.Key(2) != "" {
		t.Errorf("Key(2) = %q, want empty", ra.Key(2))
	}
}

func TestRunAggregate_RowConsistency(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	var shots []ShotRecord
	teams := []string{"BOS", "MIA", "DEN"}
	zones := []string{"Restricted Area", "In The Paint (Non-RA)", "Mid-Range", "Left Corner 3", "Above the Break 3"}
	for i := 0; i < 300; i++ {
		shots = append(shots, shot(
			teams[i%len(teams)],
			[]string{"A", "B", "C", "D"}[i%4],
			2018+i%4,
			zones[(i*7)%len(zones)],
			(i*13)%5 < 2,
		))
	}
	seedShots(t, s, shots)

	summaries, err := s.LoadSummaries(context.Background(), DefaultMinSeason)
	if err != nil {
		t.Fatalf("LoadSummaries() failed: %v", err)
	}

	for name, rows := range map[string][]SummaryRow{
		"teams":   summaries.Teams,
		"players": summaries.Players,
		"zones":   summaries.Zones,
	} {
		if len(rows) == 0 {
			t.Errorf("%s: no rows", name)
		}
		for _, r := range rows {
			if r.Attempts < 1 {
				t.Errorf("%s %v: attempts %d < 1", name, r.Keys, r.Attempts)
			}
			if r.Made+r.Missed != r.Attempts {
				t.Errorf("%s %v: made %d + missed %d != attempts %d", name, r.Keys, r.Made, r.Missed, r.Attempts)
			}
			want := math.Round(100*float64(r.Made)/float64(r.Attempts)*100) / 100
			if math.Abs(r.Accuracy-want) > 0.005+1e-9 {
				t.Errorf("%s %v: accuracy %v, want %v", name, r.Keys, r.Accuracy, want)
			}
		}
	}

	total, err := s.CountShots(context.Background(), DefaultMinSeason)
	if err != nil {
		t.Fatalf("CountShots() failed: %v", err)
	}
	var sum int64
	for _, r := range summaries.Teams {
		sum += r.Attempts
	}
	if sum != total {
		t.Errorf("team attempts sum %d != shot count %d", sum, total)
	}
}

func TestRunAggregate_NoSchema_ReturnsErrDataAccess(t *testing.T) {
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	defer s.Close()

	_, err = s.RunAggregate(context.Background(), TeamAggregate, DefaultMinSeason)
	if !errors.Is(err, ErrDataAccess) {
		t.Errorf("RunAggregate() error = %v; want ErrDataAccess", err)
	}
}

func TestRunAggregate_EmptyStore(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	rows, err := s.RunAggregate(context.Background(), ZoneAggregate, DefaultMinSeason)
	if err != nil {
		t.Fatalf("RunAggregate() failed: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("expected no rows from empty store, got %d", len(rows))
	}
}

func TestRunAggregate_NullGroupKey(t *testing.T) {
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	defer s.Close()

	// Real shot log exports do not declare the key columns NOT NULL.
	_, err = s.DB().Exec(`
		CREATE TABLE nba_shots (team_name TEXT, player_name TEXT, season INTEGER, shot_zone_basic TEXT, shot_made_flag INTEGER);
		INSERT INTO nba_shots VALUES
			('TeamA', 'P1', 2020, 'Mid-Range', 1),
			(NULL, 'P2', 2020, NULL, 0),
			(NULL, 'P2', 2021, 'Mid-Range', 1);
	`)
	if err != nil {
		t.Fatalf("failed to seed nullable table: %v", err)
	}

	teams, err := s.RunAggregate(context.Background(), TeamAggregate, DefaultMinSeason)
	if err != nil {
		t.Fatalf("RunAggregate(team) error = %v; want NULL key kept as a group", err)
	}
	if len(teams) != 2 {
		t.Fatalf("got %d team rows, want 2", len(teams))
	}
	unknown, ok := findRow(teams, "")
	if !ok {
		t.Fatalf("NULL team group missing from %v", teams)
	}
	if unknown.Attempts != 2 || unknown.Made != 1 || unknown.Missed != 1 || unknown.Accuracy != 50 {
		t.Errorf("NULL team group = %+v, want 2/1/1/50", unknown)
	}

	zones, err := s.RunAggregate(context.Background(), ZoneAggregate, DefaultMinSeason)
	if err != nil {
		t.Fatalf("RunAggregate(zone) error = %v", err)
	}
	if _, ok := findRow(zones, "P2", ""); !ok {
		t.Errorf("NULL zone group missing from %v", zones)
	}
	if _, ok := findRow(zones, "P2", "Mid-Range"); !ok {
		t.Errorf("P2 Mid-Range group missing from %v", zones)
	}
}
