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
	"math/rand"
	"reflect"
	"testing"
)

// twoBlobs generates two well-separated point clouds.
func twoBlobs(n int, seed int64) [][]float64 {
	rng := rand.New(rand.NewSource(seed))
	points := make([][]float64, 0, 2*n)
	for i := 0; i < n; i++ {
		points = append(points, []float64{rng.NormFloat64() * 0.1, rng.NormFloat64() * 0.1})
	}
	for i := 0; i < n; i++ {
		points = append(points, []float64{10 + rng.NormFloat64()*0.1, 10 + rng.NormFloat64()*0.1})
	}
	return points
}

func TestKMeansFitValidation(t *testing.T) {
	points := [][]float64{{0, 0}, {1, 1}, {2, 2}}

	if err := NewKMeans(1, 42).Fit(points); err == nil {
		t.Error("Expected error for k < 2")
	}
	if err := NewKMeans(4, 42).Fit(points); err == nil {
		t.Error("Expected error for fewer points than clusters")
	}
	if err := NewKMeans(2, 42).Fit(points); err != nil {
		t.Errorf("Fit failed: %v", err)
	}
}

func TestKMeansPredictBeforeFit(t *testing.T) {
	m := NewKMeans(2, 42)
	if _, err := m.Predict([][]float64{{0, 0}}); err == nil {
		t.Error("Expected error when predicting before fit")
	}
	if _, err := m.Inertia([][]float64{{0, 0}}); err == nil {
		t.Error("Expected error from Inertia before fit")
	}
}

func TestKMeansDeterministic(t *testing.T) {
	points := twoBlobs(50, 7)

	m1 := NewKMeans(2, 42)
	m2 := NewKMeans(2, 42)
	if err := m1.Fit(points); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if err := m2.Fit(points); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	l1, err := m1.Predict(points)
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	l2, err := m2.Predict(points)
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	if !reflect.DeepEqual(l1, l2) {
		t.Error("Same seed and input produced different clusterings")
	}
}

func TestKMeansSeparatesBlobs(t *testing.T) {
	points := twoBlobs(50, 7)

	m := NewKMeans(2, 42)
	if err := m.Fit(points); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	labels, err := m.Predict(points)
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}

	// All points of the first blob share a label, and the second blob
	// gets the other one.
	first := labels[0]
	for i := 0; i < 50; i++ {
		if labels[i] != first {
			t.Fatalf("First blob split: point %d has label %d, want %d", i, labels[i], first)
		}
	}
	second := labels[50]
	if second == first {
		t.Fatal("Both blobs assigned the same cluster")
	}
	for i := 50; i < 100; i++ {
		if labels[i] != second {
			t.Fatalf("Second blob split: point %d has label %d, want %d", i, labels[i], second)
		}
	}
}

func TestKMeansInertia(t *testing.T) {
	points := twoBlobs(20, 3)
	m := NewKMeans(2, 42)
	if err := m.Fit(points); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	inertia, err := m.Inertia(points)
	if err != nil {
		t.Fatalf("Inertia failed: %v", err)
	}
	if inertia < 0 {
		t.Errorf("Inertia %f must be non-negative", inertia)
	}
	// Tight blobs around their centroids keep inertia small.
	if inertia > 10 {
		t.Errorf("Inertia %f unexpectedly large for tight blobs", inertia)
	}
}

func TestSilhouetteRange(t *testing.T) {
	points := twoBlobs(20, 11)
	m := NewKMeans(2, 42)
	if err := m.Fit(points); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	labels, err := m.Predict(points)
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}

	s := Silhouette(points, labels)
	if s < -1 || s > 1 {
		t.Errorf("Silhouette %f out of [-1, 1]", s)
	}
	// Well-separated blobs score close to 1.
	if s < 0.9 {
		t.Errorf("Silhouette %f too low for well-separated blobs", s)
	}
}

func TestSilhouetteDegenerate(t *testing.T) {
	if s := Silhouette(nil, nil); s != 0 {
		t.Errorf("Expected 0 for empty input, got %f", s)
	}

	points := [][]float64{{0, 0}, {1, 1}, {2, 2}}
	if s := Silhouette(points, []int{0, 0, 0}); s != 0 {
		t.Errorf("Expected 0 for a single cluster, got %f", s)
	}
}

func TestFindOptimalK(t *testing.T) {
	points := twoBlobs(25, 13)

	bestK, scores, err := FindOptimalK(points, 5, 42)
	if err != nil {
		t.Fatalf("FindOptimalK failed: %v", err)
	}
	if bestK != 2 {
		t.Errorf("Expected k=2 for two blobs, got %d", bestK)
	}
	if len(scores) != 4 {
		t.Errorf("Expected 4 scores for k=2..5, got %d", len(scores))
	}
	for i, s := range scores {
		if s < -1 || s > 1 {
			t.Errorf("Score for k=%d out of range: %f", i+2, s)
		}
	}
}

func TestFindOptimalKValidation(t *testing.T) {
	points := twoBlobs(5, 1)

	if _, _, err := FindOptimalK(points, 1, 42); err == nil {
		t.Error("Expected error for maxK < 2")
	}
	if _, _, err := FindOptimalK([][]float64{{0}, {1}}, 5, 42); err == nil {
		t.Error("Expected error when too few points remain after capping maxK")
	}
}
