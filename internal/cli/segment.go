//-------------------------------------------------------------------------
//
// pgEdge Warehouse Bootstrap
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package cli

import (
	"fmt"
	"sort"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-warehouse/internal/db"
	"github.com/pgEdge/pgedge-warehouse/internal/logging"
	"github.com/pgEdge/pgedge-warehouse/internal/segment"
)

var (
	segmentClusters    int
	segmentOptimalK    bool
	segmentMaxClusters int
	segmentRandomSeed  int64
)

var segmentCmd = &cobra.Command{
	Use:   "segment",
	Short: "Compute RFM customer segments from warehouse sales",
	Long: `Segment loads current customers and their sales from the warehouse,
computes RFM features (recency, frequency, monetary value), assigns
quintile scores and named segments, clusters the standardized features
with k-means, and writes the results to the customer_segments table.

The run is deterministic for a fixed --random-seed.`,
	RunE: runSegment,
}

func init() {
	segmentCmd.Flags().IntVar(&segmentClusters, "clusters", 0,
		"number of k-means clusters (default from config)")
	segmentCmd.Flags().BoolVar(&segmentOptimalK, "optimal-k", false,
		"pick the cluster count by silhouette score")
	segmentCmd.Flags().IntVar(&segmentMaxClusters, "max-clusters", 0,
		"upper bound for --optimal-k search (default from config)")
	segmentCmd.Flags().Int64Var(&segmentRandomSeed, "random-seed", 0,
		"random seed for k-means initialization (default from config)")
}

func runSegment(cmd *cobra.Command, args []string) error {
	if segmentClusters > 0 {
		cfg.Segment.Clusters = segmentClusters
	}
	if cmd.Flags().Changed("optimal-k") {
		cfg.Segment.FindOptimalK = segmentOptimalK
	}
	if segmentMaxClusters > 0 {
		cfg.Segment.MaxClusters = segmentMaxClusters
	}
	if cmd.Flags().Changed("random-seed") {
		cfg.Segment.RandomSeed = segmentRandomSeed
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.ValidateSegment(); err != nil {
		return err
	}
	profile, err := profileOrErr()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	pool, err := db.Connect(ctx, cfg.Connection, profile.PoolMaxConns, profile.StatementTimeout)
	if err != nil {
		return err
	}
	defer pool.Close()

	txns, err := segment.LoadTransactions(ctx, pool)
	if err != nil {
		return fmt.Errorf("failed to load sales transactions: %w", err)
	}
	logging.Info().Int("transactions", len(txns)).Msg("loaded sales transactions")

	asOf := time.Now().UTC()
	features, err := segment.ComputeFeatures(txns, asOf)
	if err != nil {
		return err
	}
	scored := segment.ScoreFeatures(features)

	points := segment.Standardize(segment.FeatureMatrix(features))

	k := cfg.Segment.Clusters
	if cfg.Segment.FindOptimalK {
		optimal, scores, err := segment.FindOptimalK(points, cfg.Segment.MaxClusters, cfg.Segment.RandomSeed)
		if err != nil {
			return fmt.Errorf("optimal-k search failed: %w", err)
		}
		for i, s := range scores {
			logging.Debug().Int("k", i+2).Float64("silhouette", s).Msg("optimal-k candidate")
		}
		logging.Info().Int("k", optimal).Msg("selected cluster count by silhouette score")
		k = optimal
	}

	km := segment.NewKMeans(k, cfg.Segment.RandomSeed)
	if err := km.Fit(points); err != nil {
		return fmt.Errorf("k-means fit failed: %w", err)
	}
	clusters, err := km.Predict(points)
	if err != nil {
		return err
	}

	if err := segment.WriteResults(ctx, pool, scored, clusters); err != nil {
		return fmt.Errorf("failed to write segmentation results: %w", err)
	}

	printSegmentSummary(cmd, scored, k)
	return nil
}

func printSegmentSummary(cmd *cobra.Command, scored []segment.Scores, k int) {
	out := cmd.OutOrStdout()
	counts := segment.SegmentCounts(scored)

	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})

	color.New(color.Bold).Fprintf(out, "Segmented %d customers into %d clusters\n\n", len(scored), k)
	for _, name := range names {
		pct := float64(counts[name]) * 100 / float64(len(scored))
		fmt.Fprintf(out, "  %-20s %6d  (%.1f%%)\n", name, counts[name], pct)
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Results written to customer_segments.")
}
