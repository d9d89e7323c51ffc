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
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pgEdge/pgedge-warehouse/internal/logging"
)

const createResultsTableSQL = `
CREATE TABLE IF NOT EXISTS customer_segments (
    customer_id    VARCHAR(20) PRIMARY KEY,
    recency_days   INTEGER NOT NULL,
    frequency      INTEGER NOT NULL,
    monetary_total NUMERIC(14,2) NOT NULL,
    rfm_score      CHAR(3) NOT NULL,
    segment        VARCHAR(30) NOT NULL,
    cluster        INTEGER NOT NULL,
    computed_at    TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// LoadTransactions reads sales transactions joined to current customers
// and the date dimension.
func LoadTransactions(ctx context.Context, pool *pgxpool.Pool) ([]Transaction, error) {
	rows, err := pool.Query(ctx, `
        SELECT c.customer_id, d.full_date, f.net_amount
        FROM fact_sales f
        JOIN dim_customer c ON c.customer_key = f.customer_key
        JOIN dim_date d     ON d.date_key = f.date_key
        WHERE c.is_current
    `)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}
	defer rows.Close()

	var txns []Transaction
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.CustomerID, &t.Date, &t.NetAmount); err != nil {
			return nil, err
		}
		txns = append(txns, t)
	}
	return txns, rows.Err()
}

// WriteResults upserts the scored, clustered customers into the
// customer_segments table.
func WriteResults(ctx context.Context, pool *pgxpool.Pool, scored []Scores, clusters []int) error {
	if len(scored) != len(clusters) {
		return fmt.Errorf("scored rows (%d) and cluster labels (%d) do not match", len(scored), len(clusters))
	}

	if _, err := pool.Exec(ctx, createResultsTableSQL); err != nil {
		return fmt.Errorf("failed to create customer_segments: %w", err)
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for i, s := range scored {
		_, err := tx.Exec(ctx, `
            INSERT INTO customer_segments
                (customer_id, recency_days, frequency, monetary_total, rfm_score, segment, cluster, computed_at)
            VALUES ($1, $2, $3, $4, $5, $6, $7, now())
            ON CONFLICT (customer_id) DO UPDATE SET
                recency_days = EXCLUDED.recency_days,
                frequency = EXCLUDED.frequency,
                monetary_total = EXCLUDED.monetary_total,
                rfm_score = EXCLUDED.rfm_score,
                segment = EXCLUDED.segment,
                cluster = EXCLUDED.cluster,
                computed_at = now()
        `, s.CustomerID, s.RecencyDays, s.Frequency, s.MonetaryTotal, s.RFMScore, s.Segment, clusters[i])
		if err != nil {
			return fmt.Errorf("failed to write segment for %s: %w", s.CustomerID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit segments: %w", err)
	}

	logging.Info().Int("customers", len(scored)).Msg("Customer segments written")
	return nil
}

// SegmentCounts tallies customers per segment label.
func SegmentCounts(scored []Scores) map[string]int {
	counts := make(map[string]int)
	for _, s := range scored {
		counts[s.Segment]++
	}
	return counts
}
