//-------------------------------------------------------------------------
//
// pgEdge Warehouse Bootstrap
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package validate runs the fixed post-deployment checklist against a
// warehouse: object existence, seed invariants, referential integrity,
// partition layout, and view smoke checks.
package validate

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pgEdge/pgedge-warehouse/internal/db"
	"github.com/pgEdge/pgedge-warehouse/internal/seed"
	"github.com/pgEdge/pgedge-warehouse/internal/warehouse"
)

// CheckResult is the outcome of one checklist item.
type CheckResult struct {
	Name     string
	Passed   bool
	Detail   string
	Duration time.Duration
}

// Checker runs the validation checklist.
type Checker struct {
	pool *pgxpool.Pool
}

// NewChecker creates a Checker.
func NewChecker(pool *pgxpool.Pool) *Checker {
	return &Checker{pool: pool}
}

// factDimensionRefs lists the fact foreign-key columns checked for
// referential integrity: fact table, fact column, dimension, dim key.
var factDimensionRefs = [][4]string{
	{"fact_sales", "date_key", "dim_date", "date_key"},
	{"fact_sales", "customer_key", "dim_customer", "customer_key"},
	{"fact_sales", "product_key", "dim_product", "product_key"},
	{"fact_sales", "geography_key", "dim_geography", "geography_key"},
	{"fact_sales", "channel_key", "dim_sales_channel", "channel_key"},
	{"fact_inventory", "product_key", "dim_product", "product_key"},
	{"fact_customer_activity", "customer_key", "dim_customer", "customer_key"},
	{"fact_financial", "geography_key", "dim_geography", "geography_key"},
}

// scdDimensions lists the Type 2 dimensions and their natural keys.
var scdDimensions = [][2]string{
	{"dim_customer", "customer_id"},
	{"dim_product", "product_id"},
	{"dim_employee", "employee_id"},
}

// Run executes the full checklist. Every check runs even after failures.
func (c *Checker) Run(ctx context.Context) []CheckResult {
	var results []CheckResult

	run := func(name string, check func(ctx context.Context) (bool, string, error)) {
		start := time.Now()
		passed, detail, err := check(ctx)
		if err != nil {
			passed = false
			detail = err.Error()
		}
		results = append(results, CheckResult{
			Name:     name,
			Passed:   passed,
			Detail:   detail,
			Duration: time.Since(start),
		})
	}

	for _, table := range append(append([]string{}, warehouse.DimensionTables...), warehouse.FactTables...) {
		table := table
		run("table "+table, func(ctx context.Context) (bool, string, error) {
			return c.relationExists(ctx, table, "BASE TABLE")
		})
	}

	for _, view := range warehouse.ViewNames() {
		view := view
		run("view "+view, func(ctx context.Context) (bool, string, error) {
			return c.relationExists(ctx, view, "VIEW")
		})
	}

	run("deployment metadata", c.checkMetadata)
	run("dim_date row count", c.checkDateRowCount)
	run("dim_date key format", c.checkDateKeys)

	for _, dim := range scdDimensions {
		dim := dim
		run("one current version per "+dim[1], func(ctx context.Context) (bool, string, error) {
			return c.checkCurrentVersionUnique(ctx, dim[0], dim[1])
		})
	}

	for _, ref := range factDimensionRefs {
		ref := ref
		run(fmt.Sprintf("%s.%s references %s", ref[0], ref[1], ref[2]), func(ctx context.Context) (bool, string, error) {
			return c.checkReference(ctx, ref[0], ref[1], ref[2], ref[3])
		})
	}

	for _, table := range warehouse.FactTables {
		table := table
		run("partition bounds "+table, func(ctx context.Context) (bool, string, error) {
			return c.checkPartitionBounds(ctx, table)
		})
	}

	for _, view := range warehouse.Views {
		view := view
		run("query "+view.Name, func(ctx context.Context) (bool, string, error) {
			return c.smokeQuery(ctx, view.Name)
		})
	}

	return results
}

// Passed reports whether every checklist item passed.
func Passed(results []CheckResult) bool {
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}
	return true
}

func (c *Checker) relationExists(ctx context.Context, name, kind string) (bool, string, error) {
	var exists bool
	err := c.pool.QueryRow(ctx, `
        SELECT EXISTS (
            SELECT FROM information_schema.tables
            WHERE table_name = $1 AND table_type = $2
        )
    `, name, kind).Scan(&exists)
	if err != nil {
		return false, "", err
	}
	if !exists {
		return false, "missing", nil
	}
	return true, "", nil
}

func (c *Checker) checkMetadata(ctx context.Context) (bool, string, error) {
	exists, err := db.MetadataExists(ctx, c.pool)
	if err != nil {
		return false, "", err
	}
	if !exists {
		return false, "warehouse_metadata table missing", nil
	}
	env, err := db.GetMetadataValue(ctx, c.pool, "environment")
	if err != nil {
		return false, "environment key missing", nil
	}
	return true, "environment=" + env, nil
}

func (c *Checker) checkDateRowCount(ctx context.Context) (bool, string, error) {
	expected := len(seed.BuildDateRows())
	var count int
	if err := c.pool.QueryRow(ctx, "SELECT COUNT(*) FROM dim_date").Scan(&count); err != nil {
		return false, "", err
	}
	if count != expected {
		return false, fmt.Sprintf("expected %d rows, found %d", expected, count), nil
	}
	return true, fmt.Sprintf("%d rows", count), nil
}

func (c *Checker) checkDateKeys(ctx context.Context) (bool, string, error) {
	var mismatched int
	err := c.pool.QueryRow(ctx, `
        SELECT COUNT(*) FROM dim_date
        WHERE date_key <> to_char(full_date, 'YYYYMMDD')::int
    `).Scan(&mismatched)
	if err != nil {
		return false, "", err
	}
	if mismatched > 0 {
		return false, fmt.Sprintf("%d keys do not match YYYYMMDD", mismatched), nil
	}
	return true, "", nil
}

func (c *Checker) checkCurrentVersionUnique(ctx context.Context, table, naturalKey string) (bool, string, error) {
	var duplicates int
	err := c.pool.QueryRow(ctx, fmt.Sprintf(`
        SELECT COUNT(*) FROM (
            SELECT %s FROM %s WHERE is_current
            GROUP BY %s HAVING COUNT(*) > 1
        ) d
    `, naturalKey, table, naturalKey)).Scan(&duplicates)
	if err != nil {
		return false, "", err
	}
	if duplicates > 0 {
		return false, fmt.Sprintf("%d natural keys have multiple current versions", duplicates), nil
	}
	return true, "", nil
}

func (c *Checker) checkReference(ctx context.Context, factTable, factColumn, dimTable, dimKey string) (bool, string, error) {
	var orphans int
	err := c.pool.QueryRow(ctx, fmt.Sprintf(`
        SELECT COUNT(*)
        FROM %s f
        LEFT JOIN %s d ON d.%s = f.%s
        WHERE f.%s IS NOT NULL AND d.%s IS NULL
    `, factTable, dimTable, dimKey, factColumn, factColumn, dimKey)).Scan(&orphans)
	if err != nil {
		return false, "", err
	}
	if orphans > 0 {
		return false, fmt.Sprintf("%d orphaned rows", orphans), nil
	}
	return true, "", nil
}

// checkPartitionBounds verifies that partition boundaries are
// monotonically increasing YYYYMMDD month-start keys with no gaps.
func (c *Checker) checkPartitionBounds(ctx context.Context, table string) (bool, string, error) {
	bounds, err := warehouse.ListPartitionBounds(ctx, c.pool, table)
	if err != nil {
		return false, "", err
	}
	if len(bounds) == 0 {
		return false, "no partitions", nil
	}
	for i, b := range bounds {
		if !warehouse.IsMonthStartKey(b.From) || !warehouse.IsMonthStartKey(b.To) {
			return false, fmt.Sprintf("%s bounds are not month starts", b.Partition), nil
		}
		if b.From >= b.To {
			return false, fmt.Sprintf("%s bounds are not increasing", b.Partition), nil
		}
		if i > 0 && bounds[i-1].To != b.From {
			return false, fmt.Sprintf("gap before %s", b.Partition), nil
		}
	}
	return true, fmt.Sprintf("%d partitions", len(bounds)), nil
}

func (c *Checker) smokeQuery(ctx context.Context, view string) (bool, string, error) {
	start := time.Now()
	rows, err := c.pool.Query(ctx, fmt.Sprintf("SELECT * FROM %s LIMIT 10", view))
	if err != nil {
		return false, "", err
	}
	count := 0
	for rows.Next() {
		count++
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return false, "", err
	}
	return true, fmt.Sprintf("%d rows in %s", count, time.Since(start).Round(time.Millisecond)), nil
}
