//-------------------------------------------------------------------------
//
// pgEdge Warehouse Bootstrap
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package warehouse

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pgEdge/pgedge-warehouse/internal/logging"
)

// DimensionSpec describes a Type 2 slowly changing dimension: its natural
// key and the tracked attribute columns. Surrogate key and SCD columns
// (effective_date, expiry_date, is_current) are managed by Apply.
type DimensionSpec struct {
	Table      string
	NaturalKey string
	Attributes []string
}

// CustomerDim is the SCD spec for dim_customer.
var CustomerDim = DimensionSpec{
	Table:      "dim_customer",
	NaturalKey: "customer_id",
	Attributes: []string{
		"first_name", "last_name", "email", "phone",
		"marital_status", "annual_income", "customer_since",
	},
}

// ProductDim is the SCD spec for dim_product.
var ProductDim = DimensionSpec{
	Table:      "dim_product",
	NaturalKey: "product_id",
	Attributes: []string{
		"product_name", "category", "subcategory", "brand",
		"unit_cost", "list_price",
	},
}

// EmployeeDim is the SCD spec for dim_employee.
var EmployeeDim = DimensionSpec{
	Table:      "dim_employee",
	NaturalKey: "employee_id",
	Attributes: []string{
		"first_name", "last_name", "title", "department", "hire_date",
	},
}

// DimensionRow is one incoming version of a dimension member. Values are
// positional, matching the DimensionSpec's Attributes.
type DimensionRow struct {
	NaturalKey string
	Values     []any
}

// ApplyResult summarizes one SCD apply pass.
type ApplyResult struct {
	Inserted  int
	Versioned int
	Unchanged int
}

// expireSQL expires the current version when any tracked attribute
// differs from the incoming values.
func (s DimensionSpec) expireSQL() string {
	conds := make([]string, len(s.Attributes))
	for i, col := range s.Attributes {
		conds[i] = fmt.Sprintf("%s IS DISTINCT FROM $%d", col, i+3)
	}
	return fmt.Sprintf(
		"UPDATE %s SET expiry_date = $2, is_current = FALSE WHERE %s = $1 AND is_current AND (%s)",
		s.Table, s.NaturalKey, strings.Join(conds, " OR "))
}

func (s DimensionSpec) existsSQL() string {
	return fmt.Sprintf(
		"SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1 AND is_current)",
		s.Table, s.NaturalKey)
}

func (s DimensionSpec) insertSQL() string {
	placeholders := make([]string, len(s.Attributes))
	for i := range s.Attributes {
		placeholders[i] = fmt.Sprintf("$%d", i+3)
	}
	return fmt.Sprintf(
		"INSERT INTO %s (%s, effective_date, %s) VALUES ($1, $2, %s)",
		s.Table, s.NaturalKey, strings.Join(s.Attributes, ", "),
		strings.Join(placeholders, ", "))
}

// Apply performs a Type 2 merge of the incoming rows in one transaction:
// new members are inserted as the current version, changed members have
// their current version expired at asOf and a new version inserted, and
// unchanged members are left alone.
func (s DimensionSpec) Apply(ctx context.Context, pool *pgxpool.Pool, rows []DimensionRow, asOf string) (ApplyResult, error) {
	var result ApplyResult

	tx, err := pool.Begin(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	expire := s.expireSQL()
	exists := s.existsSQL()
	insert := s.insertSQL()

	for _, row := range rows {
		if len(row.Values) != len(s.Attributes) {
			return result, fmt.Errorf(
				"%s row %q has %d values, spec has %d attributes",
				s.Table, row.NaturalKey, len(row.Values), len(s.Attributes))
		}
		args := append([]any{row.NaturalKey, asOf}, row.Values...)

		tag, err := tx.Exec(ctx, expire, args...)
		if err != nil {
			return result, fmt.Errorf("failed to expire %s %q: %w", s.Table, row.NaturalKey, err)
		}

		if tag.RowsAffected() > 0 {
			if _, err := tx.Exec(ctx, insert, args...); err != nil {
				return result, fmt.Errorf("failed to version %s %q: %w", s.Table, row.NaturalKey, err)
			}
			result.Versioned++
			continue
		}

		var hasCurrent bool
		if err := tx.QueryRow(ctx, exists, row.NaturalKey).Scan(&hasCurrent); err != nil {
			return result, fmt.Errorf("failed to probe %s %q: %w", s.Table, row.NaturalKey, err)
		}
		if hasCurrent {
			result.Unchanged++
			continue
		}

		if _, err := tx.Exec(ctx, insert, args...); err != nil {
			return result, fmt.Errorf("failed to insert %s %q: %w", s.Table, row.NaturalKey, err)
		}
		result.Inserted++
	}

	if err := tx.Commit(ctx); err != nil {
		return result, fmt.Errorf("failed to commit %s merge: %w", s.Table, err)
	}

	logging.Debug().
		Str("table", s.Table).
		Int("inserted", result.Inserted).
		Int("versioned", result.Versioned).
		Int("unchanged", result.Unchanged).
		Msg("Dimension merge applied")

	return result, nil
}

// CurrentKeys returns the surrogate keys of all current rows in a
// dimension, ordered by key.
func CurrentKeys(ctx context.Context, pool *pgxpool.Pool, table string) ([]int64, error) {
	keyColumn := strings.TrimPrefix(table, "dim_") + "_key"
	rows, err := pool.Query(ctx, fmt.Sprintf(
		"SELECT %s FROM %s WHERE is_current ORDER BY %s", keyColumn, table, keyColumn))
	if err != nil {
		return nil, err
	}
	return scanKeys(rows)
}

// AllKeys returns the surrogate keys of all rows in a static dimension.
func AllKeys(ctx context.Context, pool *pgxpool.Pool, table, keyColumn string) ([]int64, error) {
	rows, err := pool.Query(ctx, fmt.Sprintf(
		"SELECT %s FROM %s ORDER BY %s", keyColumn, table, keyColumn))
	if err != nil {
		return nil, err
	}
	return scanKeys(rows)
}

func scanKeys(rows pgx.Rows) ([]int64, error) {
	defer rows.Close()
	var keys []int64
	for rows.Next() {
		var k int64
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}
