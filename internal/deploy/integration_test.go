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

// Integration tests for warehouse deployment.
// Run with: go test -tags=integration ./internal/deploy/...
// Requires PostgreSQL to be available.
// Set PGEDGE_WAREHOUSE_TEST_CONN environment variable to override connection string.

package deploy_test

import (
	"context"
	"testing"
	"time"

	"github.com/pgEdge/pgedge-warehouse/internal/config"
	"github.com/pgEdge/pgedge-warehouse/internal/deploy"
	"github.com/pgEdge/pgedge-warehouse/internal/testutil"
	"github.com/pgEdge/pgedge-warehouse/internal/validate"
	"github.com/pgEdge/pgedge-warehouse/internal/warehouse"
)

func deployWarehouse(t *testing.T, name string) (*testutil.TestCleanup, string, *config.Config) {
	t.Helper()

	baseConnStr := testutil.SkipIfNoPostgres(t)
	connStr := testutil.CreateTestDB(t, baseConnStr, name)
	dbName := testutil.GetDBNameFromConnStr(connStr)
	cleanup := testutil.NewTestCleanup(t, baseConnStr, dbName)

	cfg := config.DefaultConfig()
	cfg.Connection = connStr
	cfg.Environment = "dev"
	cfg.Deploy.Region = "ci"
	cfg.Deploy.SeedRandomSeed = 42

	return cleanup, connStr, cfg
}

// TestDeployIntegration deploys a dev warehouse end-to-end and runs the
// validation checklist against it.
func TestDeployIntegration(t *testing.T) {
	cleanup, connStr, cfg := deployWarehouse(t, "deploy")
	defer cleanup.Cleanup()

	pool := testutil.ConnectTestDB(t, connStr)
	cleanup.SetPool(pool)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	profile, err := config.ProfileFor(cfg.Environment)
	if err != nil {
		t.Fatalf("ProfileFor failed: %v", err)
	}

	if err := deploy.New(pool, cfg, profile).Execute(ctx); err != nil {
		t.Fatalf("Deployment failed: %v", err)
	}

	results := validate.NewChecker(pool).Run(ctx)
	for _, r := range results {
		if !r.Passed {
			t.Errorf("Check %s failed: %s", r.Name, r.Detail)
		}
	}
}

// TestDeployIdempotent runs the full deployment twice; the second run
// must succeed without duplicating data.
func TestDeployIdempotent(t *testing.T) {
	cleanup, connStr, cfg := deployWarehouse(t, "idempotent")
	defer cleanup.Cleanup()

	pool := testutil.ConnectTestDB(t, connStr)
	cleanup.SetPool(pool)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	profile, err := config.ProfileFor(cfg.Environment)
	if err != nil {
		t.Fatalf("ProfileFor failed: %v", err)
	}

	if err := deploy.New(pool, cfg, profile).Execute(ctx); err != nil {
		t.Fatalf("First deployment failed: %v", err)
	}

	var firstCount int64
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM fact_sales").Scan(&firstCount); err != nil {
		t.Fatalf("Failed to count fact_sales: %v", err)
	}

	if err := deploy.New(pool, cfg, profile).Execute(ctx); err != nil {
		t.Fatalf("Second deployment failed: %v", err)
	}

	var secondCount int64
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM fact_sales").Scan(&secondCount); err != nil {
		t.Fatalf("Failed to count fact_sales: %v", err)
	}
	if firstCount != secondCount {
		t.Errorf("Redeployment changed fact_sales rows: %d -> %d", firstCount, secondCount)
	}

	var dateCount int64
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM dim_date").Scan(&dateCount); err != nil {
		t.Fatalf("Failed to count dim_date: %v", err)
	}
	if dateCount != 2191 {
		t.Errorf("dim_date has %d rows after redeploy, want 2191", dateCount)
	}
}

// TestViewDeterminism queries an aggregation view twice and expects
// identical results on unchanged data.
func TestViewDeterminism(t *testing.T) {
	cleanup, connStr, cfg := deployWarehouse(t, "views")
	defer cleanup.Cleanup()

	pool := testutil.ConnectTestDB(t, connStr)
	cleanup.SetPool(pool)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	profile, err := config.ProfileFor(cfg.Environment)
	if err != nil {
		t.Fatalf("ProfileFor failed: %v", err)
	}
	if err := deploy.New(pool, cfg, profile).Execute(ctx); err != nil {
		t.Fatalf("Deployment failed: %v", err)
	}

	query := `
        SELECT date_key, net_amount, order_count
        FROM vw_daily_sales_aggregation
        ORDER BY date_key
        LIMIT 100`

	read := func() []string {
		rows, err := pool.Query(ctx, query)
		if err != nil {
			t.Fatalf("View query failed: %v", err)
		}
		defer rows.Close()

		var out []string
		for rows.Next() {
			var dateKey int
			var amount string
			var count int64
			if err := rows.Scan(&dateKey, &amount, &count); err != nil {
				t.Fatalf("Scan failed: %v", err)
			}
			out = append(out, amount)
		}
		if err := rows.Err(); err != nil {
			t.Fatalf("Row iteration failed: %v", err)
		}
		return out
	}

	first := read()
	second := read()
	if len(first) == 0 {
		t.Fatal("View returned no rows over seeded data")
	}
	if len(first) != len(second) {
		t.Fatalf("Row counts differ between reads: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("Row %d differs between reads: %s vs %s", i, first[i], second[i])
		}
	}
}

// TestSCDVersioning changes a tracked attribute and verifies the old
// version is expired and a new current version is inserted.
func TestSCDVersioning(t *testing.T) {
	cleanup, connStr, cfg := deployWarehouse(t, "scd")
	defer cleanup.Cleanup()

	pool := testutil.ConnectTestDB(t, connStr)
	cleanup.SetPool(pool)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	profile, err := config.ProfileFor(cfg.Environment)
	if err != nil {
		t.Fatalf("ProfileFor failed: %v", err)
	}
	if err := deploy.New(pool, cfg, profile).Execute(ctx); err != nil {
		t.Fatalf("Deployment failed: %v", err)
	}

	spec := warehouse.ProductDim

	// Re-apply one member with a changed list price.
	row := warehouse.DimensionRow{
		NaturalKey: "PROD_000001",
		Values:     []any{"Integration Widget", "Electronics", "Gadgets", "Apex", 12.50, 99.99},
	}
	result, err := spec.Apply(ctx, pool, []warehouse.DimensionRow{row}, "2026-06-01")
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if result.Versioned != 1 {
		t.Fatalf("Expected 1 versioned member, got %+v", result)
	}

	var versions, current int
	err = pool.QueryRow(ctx, `
        SELECT COUNT(*), COUNT(*) FILTER (WHERE is_current)
        FROM dim_product WHERE product_id = 'PROD_000001'
    `).Scan(&versions, &current)
	if err != nil {
		t.Fatalf("Version count query failed: %v", err)
	}
	if versions != 2 {
		t.Errorf("Expected 2 versions, got %d", versions)
	}
	if current != 1 {
		t.Errorf("Expected exactly 1 current version, got %d", current)
	}

	// Re-applying the same values is a no-op.
	result, err = spec.Apply(ctx, pool, []warehouse.DimensionRow{row}, "2026-07-01")
	if err != nil {
		t.Fatalf("Second apply failed: %v", err)
	}
	if result.Unchanged != 1 || result.Versioned != 0 {
		t.Errorf("Expected unchanged member on identical re-apply, got %+v", result)
	}

	// Sales recorded against the expired version must still roll up
	// under the natural key in the product performance view.
	var directUnits, viewUnits int64
	err = pool.QueryRow(ctx, `
        SELECT COALESCE(SUM(f.quantity), 0)
        FROM fact_sales f
        JOIN dim_product v ON v.product_key = f.product_key
        WHERE v.product_id = 'PROD_000001'
    `).Scan(&directUnits)
	if err != nil {
		t.Fatalf("Direct units query failed: %v", err)
	}
	if directUnits == 0 {
		t.Fatal("Seeded data has no sales for PROD_000001")
	}
	err = pool.QueryRow(ctx, `
        SELECT units_sold FROM vw_product_performance
        WHERE product_id = 'PROD_000001'
    `).Scan(&viewUnits)
	if err != nil {
		t.Fatalf("View units query failed: %v", err)
	}
	if viewUnits != directUnits {
		t.Errorf("vw_product_performance units_sold %d != direct sum %d after versioning", viewUnits, directUnits)
	}
}

// TestCustomer360Rollups compares the customer 360 view against direct
// fact aggregates; joined fact tables must not inflate each other's sums.
func TestCustomer360Rollups(t *testing.T) {
	cleanup, connStr, cfg := deployWarehouse(t, "c360")
	defer cleanup.Cleanup()

	pool := testutil.ConnectTestDB(t, connStr)
	cleanup.SetPool(pool)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	profile, err := config.ProfileFor(cfg.Environment)
	if err != nil {
		t.Fatalf("ProfileFor failed: %v", err)
	}
	if err := deploy.New(pool, cfg, profile).Execute(ctx); err != nil {
		t.Fatalf("Deployment failed: %v", err)
	}

	var directNet, viewNet string
	if err := pool.QueryRow(ctx,
		"SELECT COALESCE(SUM(net_amount), 0)::numeric(18,2) FROM fact_sales").Scan(&directNet); err != nil {
		t.Fatalf("Direct net query failed: %v", err)
	}
	if err := pool.QueryRow(ctx,
		"SELECT COALESCE(SUM(lifetime_net_amount), 0)::numeric(18,2) FROM vw_customer_360").Scan(&viewNet); err != nil {
		t.Fatalf("View net query failed: %v", err)
	}
	if viewNet != directNet {
		t.Errorf("vw_customer_360 lifetime_net_amount total %s != fact_sales total %s", viewNet, directNet)
	}

	var directSessions, viewSessions int64
	if err := pool.QueryRow(ctx,
		"SELECT COALESCE(SUM(session_count), 0) FROM fact_customer_activity").Scan(&directSessions); err != nil {
		t.Fatalf("Direct sessions query failed: %v", err)
	}
	if err := pool.QueryRow(ctx,
		"SELECT COALESCE(SUM(total_sessions), 0) FROM vw_customer_360").Scan(&viewSessions); err != nil {
		t.Fatalf("View sessions query failed: %v", err)
	}
	if viewSessions != directSessions {
		t.Errorf("vw_customer_360 total_sessions %d != fact_customer_activity total %d", viewSessions, directSessions)
	}

	// Spot-check one customer present in both fact tables.
	var customerID string
	err = pool.QueryRow(ctx, `
        SELECT c.customer_id
        FROM dim_customer c
        JOIN fact_sales s             ON s.customer_key = c.customer_key
        JOIN fact_customer_activity a ON a.customer_key = c.customer_key
        WHERE c.is_current
        LIMIT 1
    `).Scan(&customerID)
	if err != nil {
		t.Fatalf("No customer with both sales and activity rows: %v", err)
	}

	var wantNet, gotNet string
	var wantSessions, gotSessions int64
	err = pool.QueryRow(ctx, `
        SELECT COALESCE(SUM(s.net_amount), 0)::numeric(18,2)
        FROM fact_sales s
        JOIN dim_customer c ON c.customer_key = s.customer_key
        WHERE c.customer_id = $1
    `, customerID).Scan(&wantNet)
	if err != nil {
		t.Fatalf("Per-customer net query failed: %v", err)
	}
	err = pool.QueryRow(ctx, `
        SELECT COALESCE(SUM(a.session_count), 0)
        FROM fact_customer_activity a
        JOIN dim_customer c ON c.customer_key = a.customer_key
        WHERE c.customer_id = $1
    `, customerID).Scan(&wantSessions)
	if err != nil {
		t.Fatalf("Per-customer sessions query failed: %v", err)
	}
	err = pool.QueryRow(ctx, `
        SELECT lifetime_net_amount::numeric(18,2), total_sessions
        FROM vw_customer_360 WHERE customer_id = $1
    `, customerID).Scan(&gotNet, &gotSessions)
	if err != nil {
		t.Fatalf("View row query failed: %v", err)
	}
	if gotNet != wantNet {
		t.Errorf("Customer %s lifetime_net_amount %s != direct %s", customerID, gotNet, wantNet)
	}
	if gotSessions != wantSessions {
		t.Errorf("Customer %s total_sessions %d != direct %d", customerID, gotSessions, wantSessions)
	}
}
