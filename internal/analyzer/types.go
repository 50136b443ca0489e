package analyzer

import "github.com/blackwell-systems/shotprofile/internal/store"

// Point is one player/zone observation in feature space: (accuracy, attempts).
type Point [2]float64

// ClusterAssignment is a player/zone row with its cluster label and its
// coordinates on the first two principal axes.
type ClusterAssignment struct {
	Row     store.SummaryRow
	Cluster int
	PCA1    float64
	PCA2    float64
}

// Zone returns the basic shot zone of the row.
func (c ClusterAssignment) Zone() string {
	return c.Row.Key(1)
}

// Profile is the result of a best shot profile analysis.
type Profile struct {
	Player      string
	Assignments []ClusterAssignment // every zone row of the player
	BestCluster int                 // label of the most populous cluster
	Best        []store.SummaryRow  // rows in BestCluster, in zone table order

	// ClusterSizes[label] is the member count of each label that occurred.
	ClusterSizes map[int]int

	// ExplainedVariance of the projection axes; nil when the projector
	// does not report it.
	ExplainedVariance []float64
}
