package analyzer

import (
	"context"
	"errors"
	"testing"

	"github.com/blackwell-systems/shotprofile/internal/store"
)

func zoneRow(player, zone string, attempts, made int64) store.SummaryRow {
	acc := 0.0
	if attempts > 0 {
		acc = float64(int64(float64(made)*10000/float64(attempts)+0.5)) / 100
	}
	return store.SummaryRow{
		Keys:     []string{player, zone},
		Attempts: attempts,
		Made:     made,
		Missed:   attempts - made,
		Accuracy: acc,
	}
}

func testZones() []store.SummaryRow {
	return []store.SummaryRow{
		zoneRow("LeBron James", "Restricted Area", 820, 600),
		zoneRow("LeBron James", "In The Paint (Non-RA)", 310, 130),
		zoneRow("LeBron James", "Mid-Range", 290, 110),
		zoneRow("LeBron James", "Left Corner 3", 40, 15),
		zoneRow("LeBron James", "Right Corner 3", 35, 14),
		zoneRow("LeBron James", "Above the Break 3", 610, 210),
		zoneRow("LeBron James", "Backcourt", 12, 1),
		zoneRow("Stephen Curry", "Above the Break 3", 900, 390),
		zoneRow("Stephen Curry", "Restricted Area", 300, 200),
	}
}

// fixedClusterer returns preset labels.
type fixedClusterer struct {
	labels []int
	calls  int
}

func (f *fixedClusterer) Cluster(_ context.Context, points []Point) ([]int, error) {
	f.calls++
	return f.labels[:len(points)], nil
}

type recordingRenderer struct {
	profiles []*Profile
	err      error
}

func (r *recordingRenderer) Render(_ context.Context, p *Profile) error {
	r.profiles = append(r.profiles, p)
	return r.err
}

func TestBestShotProfile_NotFound(t *testing.T) {
	clusterer := &fixedClusterer{}
	renderer := &recordingRenderer{}
	a := New(testZones(), WithClusterer(clusterer), WithRenderer(renderer))

	_, err := a.BestShotProfile(context.Background(), "Nobody")
	if !errors.Is(err, ErrPlayerNotFound) {
		t.Fatalf("BestShotProfile() error = %v; want ErrPlayerNotFound", err)
	}
	if clusterer.calls != 0 {
		t.Error("clustering must not run for an unknown player")
	}
	if len(renderer.profiles) != 0 {
		t.Error("nothing should be rendered for an unknown player")
	}
}

func TestBestShotProfile_SubsetAndLargestCluster(t *testing.T) {
	a := New(testZones())

	profile, err := a.BestShotProfile(context.Background(), "LeBron James")
	if err != nil {
		t.Fatalf("BestShotProfile() failed: %v", err)
	}

	if len(profile.Assignments) != 7 {
		t.Fatalf("expected 7 assignments, got %d", len(profile.Assignments))
	}
	if len(profile.Best) == 0 {
		t.Fatal("best profile should not be empty")
	}

	zones := make(map[string]bool)
	for _, r := range a.PlayerZones("LeBron James") {
		zones[r.Key(1)] = true
	}
	for _, r := range profile.Best {
		if r.Key(0) != "LeBron James" || !zones[r.Key(1)] {
			t.Errorf("best row %v is not one of the player's zones", r.Keys)
		}
	}

	maxSize := 0
	for label, size := range profile.ClusterSizes {
		if label < 0 || label >= DefaultClusters {
			t.Errorf("label %d out of range", label)
		}
		if size > maxSize {
			maxSize = size
		}
	}
	if len(profile.Best) != maxSize {
		t.Errorf("best has %d rows, largest cluster has %d", len(profile.Best), maxSize)
	}
	if profile.ClusterSizes[profile.BestCluster] != maxSize {
		t.Errorf("BestCluster %d is not a largest cluster", profile.BestCluster)
	}
}

func TestBestShotProfile_FiveZonesEachOwnCluster(t *testing.T) {
	zones := []store.SummaryRow{
		zoneRow("Rookie", "Restricted Area", 100, 60),
		zoneRow("Rookie", "Mid-Range", 50, 20),
		zoneRow("Rookie", "Left Corner 3", 10, 4),
		zoneRow("Rookie", "Above the Break 3", 200, 70),
		zoneRow("Rookie", "In The Paint (Non-RA)", 400, 180),
	}
	a := New(zones)

	first, err := a.BestShotProfile(context.Background(), "Rookie")
	if err != nil {
		t.Fatalf("BestShotProfile() failed: %v", err)
	}
	if len(first.Best) != 1 {
		t.Fatalf("expected exactly 1 row, got %d", len(first.Best))
	}
	if len(first.ClusterSizes) != 5 {
		t.Errorf("expected 5 singleton clusters, got %v", first.ClusterSizes)
	}

	second, err := a.BestShotProfile(context.Background(), "Rookie")
	if err != nil {
		t.Fatalf("BestShotProfile() failed: %v", err)
	}
	if second.Best[0].Key(1) != first.Best[0].Key(1) {
		t.Errorf("tie-break not deterministic: %s vs %s", first.Best[0].Key(1), second.Best[0].Key(1))
	}
}

func TestBestShotProfile_SingleZone(t *testing.T) {
	a := New([]store.SummaryRow{zoneRow("Specialist", "Left Corner 3", 80, 36)})

	profile, err := a.BestShotProfile(context.Background(), "Specialist")
	if err != nil {
		t.Fatalf("BestShotProfile() failed: %v", err)
	}
	if len(profile.Best) != 1 {
		t.Errorf("expected 1 row, got %d", len(profile.Best))
	}
}

func TestBestShotProfile_TieGoesToLowestLabel(t *testing.T) {
	clusterer := &fixedClusterer{labels: []int{3, 1, 3, 1, 0, 2, 4}}
	a := New(testZones(), WithClusterer(clusterer))

	profile, err := a.BestShotProfile(context.Background(), "LeBron James")
	if err != nil {
		t.Fatalf("BestShotProfile() failed: %v", err)
	}
	if profile.BestCluster != 1 {
		t.Errorf("BestCluster = %d, want 1", profile.BestCluster)
	}
	want := []string{"In The Paint (Non-RA)", "Left Corner 3"}
	if len(profile.Best) != len(want) {
		t.Fatalf("best = %v, want %v", profile.Best, want)
	}
	for i, zone := range want {
		if profile.Best[i].Key(1) != zone {
			t.Errorf("best[%d] = %s, want %s", i, profile.Best[i].Key(1), zone)
		}
	}
}

func TestBestShotProfile_Renders(t *testing.T) {
	renderer := &recordingRenderer{}
	a := New(testZones(), WithRenderer(renderer))

	profile, err := a.BestShotProfile(context.Background(), "Stephen Curry")
	if err != nil {
		t.Fatalf("BestShotProfile() failed: %v", err)
	}
	if len(renderer.profiles) != 1 || renderer.profiles[0] != profile {
		t.Fatalf("renderer called %d times", len(renderer.profiles))
	}

	renderer.err = errors.New("disk full")
	if _, err := a.BestShotProfile(context.Background(), "Stephen Curry"); err == nil {
		t.Error("render failure should be returned")
	}
}

func TestBestShotProfile_ClustererLabelMismatch(t *testing.T) {
	a := New(testZones(), WithClusterer(badClusterer{}))

	if _, err := a.BestShotProfile(context.Background(), "LeBron James"); err == nil {
		t.Error("expected error for wrong label count")
	}
}

type badClusterer struct{}

func (badClusterer) Cluster(context.Context, []Point) ([]int, error) {
	return []int{0}, nil
}

func TestPlayers(t *testing.T) {
	a := New(testZones())

	players := a.Players()
	if len(players) != 2 || players[0] != "LeBron James" || players[1] != "Stephen Curry" {
		t.Errorf("Players() = %v", players)
	}
}

func TestLargestCluster(t *testing.T) {
	tests := []struct {
		sizes map[int]int
		want  int
	}{
		{map[int]int{0: 1}, 0},
		{map[int]int{0: 2, 1: 3}, 1},
		{map[int]int{4: 2, 2: 2, 3: 1}, 2},
		{map[int]int{}, -1},
	}
	for _, tt := range tests {
		if got := largestCluster(tt.sizes); got != tt.want {
			t.Errorf("largestCluster(%v) = %d, want %d", tt.sizes, got, tt.want)
		}
	}
}
