//-------------------------------------------------------------------------
//
// pgEdge Warehouse Bootstrap
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package segment

import (
	"fmt"
	"math"
	"math/rand"
)

// KMeans is a deterministic Lloyd's k-means clusterer. The same seed and
// input always produce the same clustering.
type KMeans struct {
	K       int
	Seed    int64
	MaxIter int

	centroids [][]float64
	fitted    bool
}

// NewKMeans creates a clusterer with k clusters and a fixed random seed.
func NewKMeans(k int, seed int64) *KMeans {
	return &KMeans{K: k, Seed: seed, MaxIter: 100}
}

// Fit clusters the points. Points are expected standardized.
func (m *KMeans) Fit(points [][]float64) error {
	if m.K < 2 {
		return fmt.Errorf("k must be at least 2, got %d", m.K)
	}
	if len(points) < m.K {
		return fmt.Errorf("%d points cannot form %d clusters", len(points), m.K)
	}

	rng := rand.New(rand.NewSource(m.Seed))

	// Initial centroids: k distinct points chosen by shuffled index.
	perm := rng.Perm(len(points))
	centroids := make([][]float64, m.K)
	for i := 0; i < m.K; i++ {
		centroids[i] = append([]float64(nil), points[perm[i]]...)
	}

	labels := make([]int, len(points))
	for iter := 0; iter < m.MaxIter; iter++ {
		changed := false
		for i, p := range points {
			best := nearest(p, centroids)
			if best != labels[i] {
				labels[i] = best
				changed = true
			}
		}

		counts := make([]int, m.K)
		sums := make([][]float64, m.K)
		for i := range sums {
			sums[i] = make([]float64, len(points[0]))
		}
		for i, p := range points {
			counts[labels[i]]++
			for j, v := range p {
				sums[labels[i]][j] += v
			}
		}
		for c := 0; c < m.K; c++ {
			if counts[c] == 0 {
				// Reseed an empty cluster from a random point.
				centroids[c] = append([]float64(nil), points[rng.Intn(len(points))]...)
				changed = true
				continue
			}
			for j := range centroids[c] {
				centroids[c][j] = sums[c][j] / float64(counts[c])
			}
		}

		if !changed && iter > 0 {
			break
		}
	}

	m.centroids = centroids
	m.fitted = true
	return nil
}

// Predict assigns each point to its nearest centroid. The model must be
// fitted first.
func (m *KMeans) Predict(points [][]float64) ([]int, error) {
	if !m.fitted {
		return nil, fmt.Errorf("model is not fitted")
	}
	labels := make([]int, len(points))
	for i, p := range points {
		labels[i] = nearest(p, m.centroids)
	}
	return labels, nil
}

// Inertia is the sum of squared distances to assigned centroids.
func (m *KMeans) Inertia(points [][]float64) (float64, error) {
	labels, err := m.Predict(points)
	if err != nil {
		return 0, err
	}
	var total float64
	for i, p := range points {
		total += sqDist(p, m.centroids[labels[i]])
	}
	return total, nil
}

func nearest(p []float64, centroids [][]float64) int {
	best := 0
	bestDist := math.MaxFloat64
	for c, centroid := range centroids {
		if d := sqDist(p, centroid); d < bestDist {
			bestDist = d
			best = c
		}
	}
	return best
}

func sqDist(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// Silhouette computes the mean silhouette coefficient of a clustering,
// in [-1, 1]. Singleton clusters contribute zero.
func Silhouette(points [][]float64, labels []int) float64 {
	n := len(points)
	if n < 2 {
		return 0
	}

	clusters := make(map[int][]int)
	for i, l := range labels {
		clusters[l] = append(clusters[l], i)
	}
	if len(clusters) < 2 {
		return 0
	}

	var total float64
	for i := range points {
		own := labels[i]
		if len(clusters[own]) < 2 {
			continue
		}

		// a: mean distance to own cluster (excluding self).
		var a float64
		for _, j := range clusters[own] {
			if j != i {
				a += math.Sqrt(sqDist(points[i], points[j]))
			}
		}
		a /= float64(len(clusters[own]) - 1)

		// b: mean distance to the nearest other cluster.
		b := math.MaxFloat64
		for label, members := range clusters {
			if label == own {
				continue
			}
			var d float64
			for _, j := range members {
				d += math.Sqrt(sqDist(points[i], points[j]))
			}
			d /= float64(len(members))
			if d < b {
				b = d
			}
		}

		if m := math.Max(a, b); m > 0 {
			total += (b - a) / m
		}
	}
	return total / float64(n)
}

// FindOptimalK fits k = 2..maxK and returns the k with the highest
// silhouette score, along with the per-k scores (indexed from k=2).
func FindOptimalK(points [][]float64, maxK int, seed int64) (int, []float64, error) {
	if maxK < 2 {
		return 0, nil, fmt.Errorf("maxK must be at least 2, got %d", maxK)
	}
	if maxK >= len(points) {
		maxK = len(points) - 1
	}
	if maxK < 2 {
		return 0, nil, fmt.Errorf("not enough points for cluster search")
	}

	bestK := 2
	bestScore := math.Inf(-1)
	var scores []float64
	for k := 2; k <= maxK; k++ {
		m := NewKMeans(k, seed)
		if err := m.Fit(points); err != nil {
			return 0, nil, err
		}
		labels, err := m.Predict(points)
		if err != nil {
			return 0, nil, err
		}
		score := Silhouette(points, labels)
		scores = append(scores, score)
		if score > bestScore {
			bestScore = score
			bestK = k
		}
	}
	return bestK, scores, nil
}
