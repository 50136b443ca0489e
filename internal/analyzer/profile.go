package analyzer

import (
	"context"
	"fmt"

	"github.com/blackwell-systems/shotprofile/internal/logging"
)

// BestShotProfile clusters a player's zones on (accuracy, attempts),
// projects them for display, renders them if a renderer is set, and returns
// the rows of the most populous cluster. Ties go to the lowest label.
//
// A player with no zone rows returns ErrPlayerNotFound and nothing is
// clustered.
func (a *Analyzer) BestShotProfile(ctx context.Context, player string) (*Profile, error) {
	rows := a.PlayerZones(player)
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrPlayerNotFound, player)
	}

	points := make([]Point, len(rows))
	for i, r := range rows {
		points[i] = Point{r.Accuracy, float64(r.Attempts)}
	}

	labels, err := a.clusterer.Cluster(ctx, points)
	if err != nil {
		return nil, fmt.Errorf("failed to cluster zones for %s: %w", player, err)
	}
	if len(labels) != len(rows) {
		return nil, fmt.Errorf("clusterer returned %d labels for %d zones", len(labels), len(rows))
	}

	projected, err := a.projector.Project(points)
	if err != nil {
		return nil, fmt.Errorf("failed to project zones for %s: %w", player, err)
	}

	profile := &Profile{
		Player:       player,
		Assignments:  make([]ClusterAssignment, len(rows)),
		ClusterSizes: make(map[int]int),
	}
	for i, r := range rows {
		profile.Assignments[i] = ClusterAssignment{
			Row:     r,
			Cluster: labels[i],
			PCA1:    projected[i][0],
			PCA2:    projected[i][1],
		}
		profile.ClusterSizes[labels[i]]++
	}

	if ev, ok := a.projector.(interface {
		ExplainedVariance([]Point) ([]float64, error)
	}); ok {
		if vars, err := ev.ExplainedVariance(points); err == nil {
			profile.ExplainedVariance = vars
		}
	}

	profile.BestCluster = largestCluster(profile.ClusterSizes)
	for _, as := range profile.Assignments {
		if as.Cluster == profile.BestCluster {
			profile.Best = append(profile.Best, as.Row)
		}
	}

	logging.Ctx(ctx, "analyzer").Debug().
		Str("player", player).
		Int("zones", len(rows)).
		Int("best_cluster", profile.BestCluster).
		Int("best_size", len(profile.Best)).
		Msg("Shot profile clustered")

	if a.renderer != nil {
		if err := a.renderer.Render(ctx, profile); err != nil {
			return nil, fmt.Errorf("failed to render profile for %s: %w", player, err)
		}
	}

	return profile, nil
}

// largestCluster returns the label with the most members, the lowest label
// winning ties.
func largestCluster(sizes map[int]int) int {
	best, bestSize := -1, -1
	for label, size := range sizes {
		if size > bestSize || (size == bestSize && label < best) {
			best, bestSize = label, size
		}
	}
	return best
}
