//-------------------------------------------------------------------------
//
// pgEdge Warehouse Bootstrap
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

//go:build integration
// +build integration

// Integration tests for customer segmentation.
// Run with: go test -tags=integration ./internal/segment/...
// Requires PostgreSQL to be available.
// Set PGEDGE_WAREHOUSE_TEST_CONN environment variable to override connection string.

package segment_test

import (
	"context"
	"testing"
	"time"

	"github.com/pgEdge/pgedge-warehouse/internal/config"
	"github.com/pgEdge/pgedge-warehouse/internal/deploy"
	"github.com/pgEdge/pgedge-warehouse/internal/segment"
	"github.com/pgEdge/pgedge-warehouse/internal/testutil"
)

// TestSegmentationIntegration deploys a seeded dev warehouse, runs the
// full segmentation pipeline, and checks the persisted results.
func TestSegmentationIntegration(t *testing.T) {
	baseConnStr := testutil.SkipIfNoPostgres(t)
	connStr := testutil.CreateTestDB(t, baseConnStr, "segment")
	dbName := testutil.GetDBNameFromConnStr(connStr)
	cleanup := testutil.NewTestCleanup(t, baseConnStr, dbName)
	defer cleanup.Cleanup()

	pool := testutil.ConnectTestDB(t, connStr)
	cleanup.SetPool(pool)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	cfg := config.DefaultConfig()
	cfg.Connection = connStr
	cfg.Deploy.SeedRandomSeed = 42

	profile, err := config.ProfileFor(cfg.Environment)
	if err != nil {
		t.Fatalf("ProfileFor failed: %v", err)
	}
	if err := deploy.New(pool, cfg, profile).Execute(ctx); err != nil {
		t.Fatalf("Deployment failed: %v", err)
	}

	txns, err := segment.LoadTransactions(ctx, pool)
	if err != nil {
		t.Fatalf("LoadTransactions failed: %v", err)
	}
	if len(txns) == 0 {
		t.Fatal("No transactions loaded from seeded warehouse")
	}

	features, err := segment.ComputeFeatures(txns, time.Now().UTC())
	if err != nil {
		t.Fatalf("ComputeFeatures failed: %v", err)
	}
	scored := segment.ScoreFeatures(features)

	points := segment.Standardize(segment.FeatureMatrix(features))
	km := segment.NewKMeans(cfg.Segment.Clusters, cfg.Segment.RandomSeed)
	if err := km.Fit(points); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	clusters, err := km.Predict(points)
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}

	if err := segment.WriteResults(ctx, pool, scored, clusters); err != nil {
		t.Fatalf("WriteResults failed: %v", err)
	}

	var count int64
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM customer_segments").Scan(&count); err != nil {
		t.Fatalf("Failed to count customer_segments: %v", err)
	}
	if count != int64(len(scored)) {
		t.Errorf("customer_segments has %d rows, want %d", count, len(scored))
	}

	// Re-running the pipeline upserts rather than duplicates.
	if err := segment.WriteResults(ctx, pool, scored, clusters); err != nil {
		t.Fatalf("Second WriteResults failed: %v", err)
	}
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM customer_segments").Scan(&count); err != nil {
		t.Fatalf("Failed to recount customer_segments: %v", err)
	}
	if count != int64(len(scored)) {
		t.Errorf("Re-run duplicated rows: %d, want %d", count, len(scored))
	}
}
