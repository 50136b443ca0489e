package analyzer

import (
	"context"
	"errors"
	"math"
	"math/rand"
)

// KMeans is a seeded k-means clusterer: k-means++ initialization followed by
// Lloyd iterations, keeping the lowest-inertia of NInit runs. The same seed
// and input always produce the same labels.
type KMeans struct {
	// K is the number of clusters. With fewer distinct points than K the
	// surplus clusters stay empty.
	K int

	// Seed for the initialization RNG.
	Seed int64

	// MaxIterations bounds the Lloyd iterations of one run.
	MaxIterations int

	// NInit is the number of initializations tried.
	NInit int

	// Tolerance on the summed squared centroid shift that ends a run early.
	Tolerance float64
}

// NewKMeans returns a KMeans with the usual iteration limits.
func NewKMeans(k int, seed int64) KMeans {
	return KMeans{
		K:             k,
		Seed:          seed,
		MaxIterations: 300,
		NInit:         10,
		Tolerance:     1e-4,
	}
}

// Cluster labels every point with a cluster in [0, K).
func (km KMeans) Cluster(ctx context.Context, points []Point) ([]int, error) {
	if km.K < 1 {
		return nil, errors.New("kmeans: K must be at least 1")
	}
	if len(points) == 0 {
		return nil, errors.New("kmeans: no points")
	}

	runs := km.NInit
	if runs < 1 {
		runs = 1
	}
	maxIter := km.MaxIterations
	if maxIter < 1 {
		maxIter = 1
	}

	rng := rand.New(rand.NewSource(km.Seed))

	var best []int
	bestInertia := math.Inf(1)
	for run := 0; run < runs; run++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		centroids := km.seedCentroids(points, rng)
		labels, inertia := lloyd(points, centroids, maxIter, km.Tolerance)
		if inertia < bestInertia {
			best, bestInertia = labels, inertia
		}
	}

	return best, nil
}

// seedCentroids picks K initial centroids with k-means++: each new centroid
// is drawn with probability proportional to its squared distance from the
// nearest centroid already chosen.
func (km KMeans) seedCentroids(points []Point, rng *rand.Rand) []Point {
	n := len(points)
	centroids := make([]Point, 0, km.K)
	chosen := make([]bool, n)

	first := rng.Intn(n)
	centroids = append(centroids, points[first])
	chosen[first] = true

	dist := make([]float64, n)
	for i, p := range points {
		dist[i] = sqDist(p, points[first])
	}

	for len(centroids) < km.K {
		var total float64
		for _, d := range dist {
			total += d
		}

		next := -1
		if total > 0 {
			r := rng.Float64() * total
			var cum float64
			for i, d := range dist {
				cum += d
				if cum > r {
					next = i
					break
				}
			}
			if next < 0 {
				// Float round-off left r at the very end.
				for i := n - 1; i >= 0; i-- {
					if dist[i] > 0 {
						next = i
						break
					}
				}
			}
		} else {
			// Every point coincides with a centroid: reuse an unchosen
			// point, or any point once all are taken.
			for i := range points {
				if !chosen[i] {
					next = i
					break
				}
			}
			if next < 0 {
				next = len(centroids) % n
			}
		}

		centroids = append(centroids, points[next])
		chosen[next] = true
		for i, p := range points {
			if d := sqDist(p, points[next]); d < dist[i] {
				dist[i] = d
			}
		}
	}

	return centroids
}

// lloyd refines centroids in place and returns the final labels and inertia.
func lloyd(points []Point, centroids []Point, maxIter int, tol float64) ([]int, float64) {
	labels := make([]int, len(points))
	for i := range labels {
		labels[i] = -1
	}

	for iter := 0; iter < maxIter; iter++ {
		changed := assign(points, centroids, labels)
		if !changed {
			break
		}
		if shift := updateCentroids(points, centroids, labels); shift <= tol {
			assign(points, centroids, labels)
			break
		}
	}

	var inertia float64
	for i, p := range points {
		inertia += sqDist(p, centroids[labels[i]])
	}
	return labels, inertia
}

// assign moves each point to its nearest centroid, the lowest index winning
// ties, and reports whether any label changed.
func assign(points []Point, centroids []Point, labels []int) bool {
	changed := false
	for i, p := range points {
		best := 0
		bestDist := sqDist(p, centroids[0])
		for c := 1; c < len(centroids); c++ {
			if d := sqDist(p, centroids[c]); d < bestDist {
				best, bestDist = c, d
			}
		}
		if labels[i] != best {
			labels[i] = best
			changed = true
		}
	}
	return changed
}

// updateCentroids moves each centroid to the mean of its members and returns
// the summed squared shift. Empty clusters keep their centroid.
func updateCentroids(points []Point, centroids []Point, labels []int) float64 {
	sums := make([]Point, len(centroids))
	counts := make([]int, len(centroids))
	for i, p := range points {
		c := labels[i]
		sums[c][0] += p[0]
		sums[c][1] += p[1]
		counts[c]++
	}

	var shift float64
	for c := range centroids {
		if counts[c] == 0 {
			continue
		}
		next := Point{sums[c][0] / float64(counts[c]), sums[c][1] / float64(counts[c])}
		shift += sqDist(next, centroids[c])
		centroids[c] = next
	}
	return shift
}

func sqDist(a, b Point) float64 {
	dx := a[0] - b[0]
	dy := a[1] - b[1]
	return dx*dx + dy*dy
}
