package analyzer

import (
	"context"
	"errors"
	"sort"

	"github.com/blackwell-systems/shotprofile/internal/store"
)

// ErrPlayerNotFound is returned when the zone table has no rows for a player.
var ErrPlayerNotFound = errors.New("player not found")

// DefaultClusters is the number of clusters a player's zones are split into.
const DefaultClusters = 5

// Clusterer assigns a label to every point.
type Clusterer interface {
	Cluster(ctx context.Context, points []Point) ([]int, error)
}

// Projector maps points onto two display axes.
type Projector interface {
	Project(points []Point) ([]Point, error)
}

// Renderer draws a clustered profile. It is a side effect only.
type Renderer interface {
	Render(ctx context.Context, profile *Profile) error
}

// Analyzer finds best shot profiles in a player/zone summary table.
type Analyzer struct {
	zones     []store.SummaryRow
	clusterer Clusterer
	projector Projector
	renderer  Renderer
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithClusterer replaces the default k-means clusterer.
func WithClusterer(c Clusterer) Option {
	return func(a *Analyzer) { a.clusterer = c }
}

// WithProjector replaces the default PCA projector.
func WithProjector(p Projector) Option {
	return func(a *Analyzer) { a.projector = p }
}

// WithRenderer sets the renderer. Without one nothing is drawn.
func WithRenderer(r Renderer) Option {
	return func(a *Analyzer) { a.renderer = r }
}

// New creates an Analyzer over the player/zone rows produced by
// store.ZoneAggregate. Defaults: five-cluster k-means with seed 0 and a
// two-component PCA projection.
func New(zones []store.SummaryRow, opts ...Option) *Analyzer {
	a := &Analyzer{
		zones:     zones,
		clusterer: NewKMeans(DefaultClusters, 0),
		projector: PCA{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// PlayerZones returns the zone rows of one player in table order.
func (a *Analyzer) PlayerZones(player string) []store.SummaryRow {
	var rows []store.SummaryRow
	for _, r := range a.zones {
		if r.Key(0) == player {
			rows = append(rows, r)
		}
	}
	return rows
}

// Players returns the distinct player names in the zone table, sorted.
func (a *Analyzer) Players() []string {
	seen := make(map[string]bool)
	var players []string
	for _, r := range a.zones {
		name := r.Key(0)
		if !seen[name] {
			seen[name] = true
			players = append(players, name)
		}
	}
	sort.Strings(players)
	return players
}
