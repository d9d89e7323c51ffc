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
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pgEdge/pgedge-warehouse/internal/logging"
)

// Epoch is the first date covered by the warehouse: fact partitions and
// the date dimension both start here.
var Epoch = time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)

// DateKey converts a date to its YYYYMMDD integer key.
func DateKey(t time.Time) int {
	return t.Year()*10000 + int(t.Month())*100 + t.Day()
}

// MonthBoundaries returns months+1 monotonically increasing YYYYMMDD
// month-start boundary keys beginning at start. Consecutive pairs bound
// one monthly partition.
func MonthBoundaries(start time.Time, months int) []int {
	first := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	bounds := make([]int, 0, months+1)
	for i := 0; i <= months; i++ {
		bounds = append(bounds, DateKey(first.AddDate(0, i, 0)))
	}
	return bounds
}

// PartitionName returns the child table name for a fact table and a
// month-start boundary key.
func PartitionName(table string, fromKey int) string {
	return fmt.Sprintf("%s_p%d", table, fromKey/100)
}

// CreatePartitions creates monthly partitions for every fact table,
// covering months starting at the warehouse epoch. Idempotent.
func CreatePartitions(ctx context.Context, pool *pgxpool.Pool, months int) error {
	bounds := MonthBoundaries(Epoch, months)
	for _, table := range FactTables {
		for i := 0; i < len(bounds)-1; i++ {
			sql := fmt.Sprintf(
				"CREATE TABLE IF NOT EXISTS %s PARTITION OF %s FOR VALUES FROM (%d) TO (%d)",
				PartitionName(table, bounds[i]), table, bounds[i], bounds[i+1])
			if _, err := pool.Exec(ctx, sql); err != nil {
				return fmt.Errorf("failed to create partition of %s for %d: %w", table, bounds[i], err)
			}
		}
		logging.Debug().
			Str("table", table).
			Int("partitions", len(bounds)-1).
			Msg("Partitions ensured")
	}
	return nil
}

// PartitionBound is the [From, To) range of one fact partition.
type PartitionBound struct {
	Partition string
	From      int
	To        int
}

var boundExpr = regexp.MustCompile(`FOR VALUES FROM \('?(\d+)'?\) TO \('?(\d+)'?\)`)

// ListPartitionBounds returns the partitions of a fact table ordered by
// lower bound.
func ListPartitionBounds(ctx context.Context, pool *pgxpool.Pool, table string) ([]PartitionBound, error) {
	rows, err := pool.Query(ctx, `
        SELECT c.relname, pg_get_expr(c.relpartbound, c.oid)
        FROM pg_inherits i
        JOIN pg_class c ON c.oid = i.inhrelid
        JOIN pg_class p ON p.oid = i.inhparent
        WHERE p.relname = $1
        ORDER BY c.relname
    `, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bounds []PartitionBound
	for rows.Next() {
		var name, expr string
		if err := rows.Scan(&name, &expr); err != nil {
			return nil, err
		}
		m := boundExpr.FindStringSubmatch(expr)
		if m == nil {
			return nil, fmt.Errorf("unexpected partition bound %q on %s", expr, name)
		}
		from, _ := strconv.Atoi(m[1])
		to, _ := strconv.Atoi(m[2])
		bounds = append(bounds, PartitionBound{Partition: name, From: from, To: to})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sortBounds(bounds)
	return bounds, nil
}

func sortBounds(bounds []PartitionBound) {
	sort.Slice(bounds, func(i, j int) bool {
		return bounds[i].From < bounds[j].From
	})
}

// IsMonthStartKey reports whether key is a YYYYMMDD integer falling on
// the first day of a month.
func IsMonthStartKey(key int) bool {
	day := key % 100
	month := (key / 100) % 100
	year := key / 10000
	return day == 1 && month >= 1 && month <= 12 && year >= 1
}
