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
	"testing"
)

func TestScoreFeaturesRanges(t *testing.T) {
	features := make([]Features, 10)
	for i := range features {
		features[i] = Features{
			CustomerID:    string(rune('A' + i)),
			RecencyDays:   i * 10,
			Frequency:     i + 1,
			MonetaryTotal: float64((i + 1) * 100),
		}
	}

	scored := ScoreFeatures(features)
	if len(scored) != len(features) {
		t.Fatalf("Expected %d scores, got %d", len(features), len(scored))
	}

	for _, s := range scored {
		if s.RecencyScore < 1 || s.RecencyScore > 5 {
			t.Errorf("%s: RecencyScore %d out of range", s.CustomerID, s.RecencyScore)
		}
		if s.FrequencyScore < 1 || s.FrequencyScore > 5 {
			t.Errorf("%s: FrequencyScore %d out of range", s.CustomerID, s.FrequencyScore)
		}
		if s.MonetaryScore < 1 || s.MonetaryScore > 5 {
			t.Errorf("%s: MonetaryScore %d out of range", s.CustomerID, s.MonetaryScore)
		}
		if len(s.RFMScore) != 3 {
			t.Errorf("%s: RFMScore %q should be three digits", s.CustomerID, s.RFMScore)
		}
		if s.Segment == "" {
			t.Errorf("%s: empty segment", s.CustomerID)
		}
	}
}

func TestScoreFeaturesRecencyInverted(t *testing.T) {
	features := make([]Features, 10)
	for i := range features {
		features[i] = Features{
			CustomerID:  string(rune('A' + i)),
			RecencyDays: i * 10,
		}
	}

	scored := ScoreFeatures(features)

	// The most recent buyer (lowest recency) scores highest.
	if scored[0].RecencyScore != 5 {
		t.Errorf("Most recent buyer scored %d, want 5", scored[0].RecencyScore)
	}
	if scored[9].RecencyScore != 1 {
		t.Errorf("Least recent buyer scored %d, want 1", scored[9].RecencyScore)
	}
}

func TestQuintileScoresEqualValuesShareQuintile(t *testing.T) {
	values := []float64{7, 7, 7, 7, 7}
	scores := quintileScores(values, false)
	for i, s := range scores {
		if s != scores[0] {
			t.Errorf("Equal values split across quintiles: scores[%d]=%d, scores[0]=%d",
				i, s, scores[0])
		}
	}
}

func TestQuintileScoresMonotonic(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	scores := quintileScores(values, false)

	for i := 1; i < len(scores); i++ {
		if scores[i] < scores[i-1] {
			t.Errorf("Scores not monotonic: scores[%d]=%d < scores[%d]=%d",
				i, scores[i], i-1, scores[i-1])
		}
	}
	if scores[0] != 1 {
		t.Errorf("Lowest value scored %d, want 1", scores[0])
	}
	if scores[9] != 5 {
		t.Errorf("Highest value scored %d, want 5", scores[9])
	}
}

func TestAssignSegment(t *testing.T) {
	tests := []struct {
		r, f, m int
		want    string
	}{
		{5, 5, 5, SegmentChampions},
		{4, 4, 4, SegmentChampions},
		{5, 1, 3, SegmentNewCustomers},
		{4, 2, 5, SegmentNewCustomers},
		{4, 3, 2, SegmentLoyalCustomers},
		{3, 5, 5, SegmentLoyalCustomers},
		{3, 2, 2, SegmentPotentialLoyalist},
		{2, 4, 1, SegmentAtRisk},
		{1, 3, 3, SegmentAtRisk},
		{1, 1, 1, SegmentLostCustomers},
		{1, 2, 5, SegmentLostCustomers},
		{2, 2, 2, SegmentNeedsAttention},
		{2, 1, 4, SegmentNeedsAttention},
	}

	for _, tt := range tests {
		if got := AssignSegment(tt.r, tt.f, tt.m); got != tt.want {
			t.Errorf("AssignSegment(%d,%d,%d) = %q, want %q", tt.r, tt.f, tt.m, got, tt.want)
		}
	}
}

func TestSegmentCounts(t *testing.T) {
	scored := []Scores{
		{Segment: SegmentChampions},
		{Segment: SegmentChampions},
		{Segment: SegmentLostCustomers},
	}
	counts := SegmentCounts(scored)

	if counts[SegmentChampions] != 2 {
		t.Errorf("Champions count = %d, want 2", counts[SegmentChampions])
	}
	if counts[SegmentLostCustomers] != 1 {
		t.Errorf("Lost Customers count = %d, want 1", counts[SegmentLostCustomers])
	}
	if len(counts) != 2 {
		t.Errorf("Expected 2 distinct segments, got %d", len(counts))
	}
}
