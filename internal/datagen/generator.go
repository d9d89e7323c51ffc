// Package datagen provides data generation utilities for pgedge-warehouse.
package datagen

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pgEdge/pgedge-warehouse/internal/logging"
)

// BatchInsertConfig configures batch insert behavior.
type BatchInsertConfig struct {
	// BatchSize is the number of rows per batch insert.
	BatchSize int

	// ProgressInterval is how often to log progress (in rows).
	ProgressInterval int64
}

// DefaultBatchConfig returns default batch insert configuration.
func DefaultBatchConfig() BatchInsertConfig {
	return BatchInsertConfig{
		BatchSize:        1000,
		ProgressInterval: 100000,
	}
}

// ExecBatchInsert inserts a batch of pre-formatted value tuples.
func ExecBatchInsert(ctx context.Context, pool *pgxpool.Pool, table, columns string, values []string) error {
	if len(values) == 0 {
		return nil
	}
	sql := fmt.Sprintf("INSERT INTO %s %s VALUES %s", table, columns, strings.Join(values, ", "))
	_, err := pool.Exec(ctx, sql)
	return err
}

// ProgressReporter tracks and reports data generation progress.
type ProgressReporter struct {
	tableName        string
	totalRows        int64
	currentRow       int64
	progressInterval int64
}

// NewProgressReporter creates a new progress reporter.
func NewProgressReporter(tableName string, totalRows int64, interval int64) *ProgressReporter {
	return &ProgressReporter{
		tableName:        tableName,
		totalRows:        totalRows,
		progressInterval: interval,
	}
}

// Update updates the progress and logs if necessary.
func (p *ProgressReporter) Update(rowsInserted int64) {
	oldRow := p.currentRow
	p.currentRow += rowsInserted

	// Check if we crossed a progress interval
	if p.currentRow/p.progressInterval > oldRow/p.progressInterval {
		pct := float64(p.currentRow) / float64(p.totalRows) * 100
		logging.Info().
			Str("table", p.tableName).
			Int64("rows", p.currentRow).
			Int64("total", p.totalRows).
			Float64("percent", pct).
			Msg("Generating data")
	}
}

// Done logs completion.
func (p *ProgressReporter) Done() {
	logging.Info().
		Str("table", p.tableName).
		Int64("rows", p.currentRow).
		Msg("Table complete")
}

// TableSizeInfo holds size information for a table.
type TableSizeInfo struct {
	Name        string
	BaseRowSize int64   // Average row size in bytes
	BaseRows    int64   // Row count at seed scale 1
	IndexFactor float64 // Estimated index overhead (e.g., 1.3 = 30% overhead)
	Fixed       bool    // Row count does not grow with the scale factor
}

// SizeEstimator estimates seeded table sizes for a given scale factor.
type SizeEstimator struct {
	tables []TableSizeInfo
}

// NewSizeEstimator creates a new size estimator.
func NewSizeEstimator(tables []TableSizeInfo) *SizeEstimator {
	return &SizeEstimator{tables: tables}
}

// RowCounts returns the row count per table at the given scale factor.
// Fixed tables are reported as-is.
func (e *SizeEstimator) RowCounts(scale int) map[string]int64 {
	if scale < 1 {
		scale = 1
	}
	counts := make(map[string]int64, len(e.tables))
	for _, t := range e.tables {
		if t.Fixed {
			counts[t.Name] = t.BaseRows
			continue
		}
		counts[t.Name] = t.BaseRows * int64(scale)
	}
	return counts
}

// EstimatedSize returns the estimated total size in bytes at the given scale.
func (e *SizeEstimator) EstimatedSize(scale int) int64 {
	counts := e.RowCounts(scale)
	var total int64
	for _, t := range e.tables {
		indexFactor := t.IndexFactor
		if indexFactor == 0 {
			indexFactor = 1.3
		}
		total += int64(float64(counts[t.Name]) * float64(t.BaseRowSize) * indexFactor)
	}
	return total
}

// FormatSize formats a byte count as a human-readable string.
func FormatSize(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
		TB = GB * 1024
	)

	switch {
	case bytes >= TB:
		return fmt.Sprintf("%.2f TB", float64(bytes)/float64(TB))
	case bytes >= GB:
		return fmt.Sprintf("%.2f GB", float64(bytes)/float64(GB))
	case bytes >= MB:
		return fmt.Sprintf("%.2f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.2f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
