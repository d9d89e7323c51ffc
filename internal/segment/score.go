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
	"sort"
)

// Segment labels assigned from RFM scores.
const (
	SegmentChampions         = "Champions"
	SegmentLoyalCustomers    = "Loyal Customers"
	SegmentPotentialLoyalist = "Potential Loyalist"
	SegmentNewCustomers      = "New Customers"
	SegmentAtRisk            = "At Risk"
	SegmentLostCustomers     = "Lost Customers"
	SegmentNeedsAttention    = "Needs Attention"
)

// Scores extends Features with quintile scores and the assigned segment.
type Scores struct {
	Features

	RecencyScore   int
	FrequencyScore int
	MonetaryScore  int
	RFMScore       string
	Segment        string
}

// ScoreFeatures assigns quintile scores 1-5 per RFM axis (recency is
// inverted: the most recent buyers score 5) and a rule-based segment
// label per customer.
func ScoreFeatures(features []Features) []Scores {
	recency := make([]float64, len(features))
	frequency := make([]float64, len(features))
	monetary := make([]float64, len(features))
	for i, f := range features {
		recency[i] = float64(f.RecencyDays)
		frequency[i] = float64(f.Frequency)
		monetary[i] = f.MonetaryTotal
	}

	rScores := quintileScores(recency, true)
	fScores := quintileScores(frequency, false)
	mScores := quintileScores(monetary, false)

	scored := make([]Scores, len(features))
	for i, f := range features {
		s := Scores{
			Features:       f,
			RecencyScore:   rScores[i],
			FrequencyScore: fScores[i],
			MonetaryScore:  mScores[i],
		}
		s.RFMScore = fmt.Sprintf("%d%d%d", s.RecencyScore, s.FrequencyScore, s.MonetaryScore)
		s.Segment = AssignSegment(s.RecencyScore, s.FrequencyScore, s.MonetaryScore)
		scored[i] = s
	}
	return scored
}

// quintileScores maps values to rank-based scores 1-5. With invert set,
// low values score high (recency semantics).
func quintileScores(values []float64, invert bool) []int {
	n := len(values)
	scores := make([]int, n)
	if n == 0 {
		return scores
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return values[order[a]] < values[order[b]]
	})

	// Equal values always land in the same quintile.
	rank := 0
	for pos, idx := range order {
		if pos > 0 && values[idx] != values[order[pos-1]] {
			rank = pos
		}
		score := 1 + rank*5/n
		if invert {
			score = 6 - score
		}
		scores[idx] = score
	}
	return scores
}

// AssignSegment maps an RFM score triple to a segment label.
func AssignSegment(r, f, m int) string {
	switch {
	case r >= 4 && f >= 4 && m >= 4:
		return SegmentChampions
	case r >= 4 && f <= 2:
		return SegmentNewCustomers
	case r >= 3 && f >= 3:
		return SegmentLoyalCustomers
	case r >= 3:
		return SegmentPotentialLoyalist
	case r <= 2 && f >= 3:
		return SegmentAtRisk
	case r == 1 && f <= 2:
		return SegmentLostCustomers
	default:
		return SegmentNeedsAttention
	}
}
