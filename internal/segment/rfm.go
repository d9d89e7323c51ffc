//-------------------------------------------------------------------------
//
// pgEdge Warehouse Bootstrap
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package segment implements RFM customer segmentation over warehouse
// sales: per-customer recency/frequency/monetary features, quintile
// scoring with rule-based segment labels, and k-means clustering.
package segment

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Transaction is one sales fact attributed to a customer.
type Transaction struct {
	CustomerID string
	Date       time.Time
	NetAmount  float64
}

// Features holds the per-customer RFM feature vector.
type Features struct {
	CustomerID              string
	RecencyDays             int
	Frequency               int
	MonetaryTotal           float64
	MonetaryAvg             float64
	MonetaryStd             float64
	DaysSinceFirstPurchase  int
	AvgDaysBetweenPurchases float64
	CLVProxy                float64
}

// ComputeFeatures derives RFM features per customer from raw
// transactions, as of the given reference date. Customers are returned
// sorted by id. An empty transaction set is an error.
func ComputeFeatures(txns []Transaction, asOf time.Time) ([]Features, error) {
	if len(txns) == 0 {
		return nil, fmt.Errorf("no transactions to segment")
	}

	type agg struct {
		amounts     []float64
		first, last time.Time
	}
	byCustomer := make(map[string]*agg)
	for _, t := range txns {
		a, ok := byCustomer[t.CustomerID]
		if !ok {
			a = &agg{first: t.Date, last: t.Date}
			byCustomer[t.CustomerID] = a
		}
		a.amounts = append(a.amounts, t.NetAmount)
		if t.Date.Before(a.first) {
			a.first = t.Date
		}
		if t.Date.After(a.last) {
			a.last = t.Date
		}
	}

	features := make([]Features, 0, len(byCustomer))
	for id, a := range byCustomer {
		n := len(a.amounts)

		var total float64
		for _, v := range a.amounts {
			total += v
		}
		avg := total / float64(n)

		var variance float64
		for _, v := range a.amounts {
			variance += (v - avg) * (v - avg)
		}
		std := math.Sqrt(variance / float64(n))

		recency := daysBetween(a.last, asOf)
		sinceFirst := daysBetween(a.first, asOf)

		var avgGap float64
		if n > 1 {
			avgGap = float64(daysBetween(a.first, a.last)) / float64(n-1)
		}

		// Annualized spend estimate used as a lifetime-value proxy.
		activeDays := max(sinceFirst, 1)
		clv := total * 365.0 / float64(activeDays)

		features = append(features, Features{
			CustomerID:              id,
			RecencyDays:             recency,
			Frequency:               n,
			MonetaryTotal:           total,
			MonetaryAvg:             avg,
			MonetaryStd:             std,
			DaysSinceFirstPurchase:  sinceFirst,
			AvgDaysBetweenPurchases: avgGap,
			CLVProxy:                clv,
		})
	}

	sort.Slice(features, func(i, j int) bool {
		return features[i].CustomerID < features[j].CustomerID
	})
	return features, nil
}

func daysBetween(from, to time.Time) int {
	d := int(to.Sub(from).Hours() / 24)
	if d < 0 {
		return 0
	}
	return d
}

// FeatureMatrix extracts the numeric clustering features, one row per
// customer: recency, frequency, monetary total, monetary average, and
// days since first purchase.
func FeatureMatrix(features []Features) [][]float64 {
	points := make([][]float64, len(features))
	for i, f := range features {
		points[i] = []float64{
			float64(f.RecencyDays),
			float64(f.Frequency),
			f.MonetaryTotal,
			f.MonetaryAvg,
			float64(f.DaysSinceFirstPurchase),
		}
	}
	return points
}

// Standardize z-scores each column in place-safe copies: mean 0, unit
// variance. Constant columns become all zeros.
func Standardize(points [][]float64) [][]float64 {
	if len(points) == 0 {
		return nil
	}
	dims := len(points[0])
	n := float64(len(points))

	means := make([]float64, dims)
	for _, p := range points {
		for j, v := range p {
			means[j] += v
		}
	}
	for j := range means {
		means[j] /= n
	}

	stds := make([]float64, dims)
	for _, p := range points {
		for j, v := range p {
			stds[j] += (v - means[j]) * (v - means[j])
		}
	}
	for j := range stds {
		stds[j] = math.Sqrt(stds[j] / n)
	}

	scaled := make([][]float64, len(points))
	for i, p := range points {
		row := make([]float64, dims)
		for j, v := range p {
			if stds[j] > 0 {
				row[j] = (v - means[j]) / stds[j]
			}
		}
		scaled[i] = row
	}
	return scaled
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
