//-------------------------------------------------------------------------
//
// pgEdge Warehouse Bootstrap
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Audit step statuses.
const (
	StepRunning   = "running"
	StepCompleted = "completed"
	StepFailed    = "failed"
)

const createAuditTableSQL = `
CREATE TABLE IF NOT EXISTS deploy_audit (
    audit_id     BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    step_name    TEXT NOT NULL,
    status       TEXT NOT NULL,
    message      TEXT,
    started_at   TIMESTAMPTZ NOT NULL,
    completed_at TIMESTAMPTZ
)`

// AuditEntry is one row of the deployment audit trail.
type AuditEntry struct {
	ID          int64
	StepName    string
	Status      string
	Message     string
	StartedAt   time.Time
	CompletedAt *time.Time
}

// EnsureAuditTable creates the deployment audit table if missing.
func EnsureAuditTable(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, createAuditTableSQL)
	return err
}

// BeginAuditStep records the start of a deployment step and returns its id.
func BeginAuditStep(ctx context.Context, pool *pgxpool.Pool, stepName string) (int64, error) {
	var id int64
	err := pool.QueryRow(ctx, `
        INSERT INTO deploy_audit (step_name, status, started_at)
        VALUES ($1, $2, now())
        RETURNING audit_id
    `, stepName, StepRunning).Scan(&id)
	return id, err
}

// FinishAuditStep records the outcome of a deployment step.
func FinishAuditStep(ctx context.Context, pool *pgxpool.Pool, id int64, status, message string) error {
	_, err := pool.Exec(ctx, `
        UPDATE deploy_audit
        SET status = $2, message = $3, completed_at = now()
        WHERE audit_id = $1
    `, id, status, message)
	return err
}

// AuditHistory returns the most recent audit entries, newest first.
func AuditHistory(ctx context.Context, pool *pgxpool.Pool, limit int) ([]AuditEntry, error) {
	rows, err := pool.Query(ctx, `
        SELECT audit_id, step_name, status, COALESCE(message, ''), started_at, completed_at
        FROM deploy_audit
        ORDER BY audit_id DESC
        LIMIT $1
    `, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []AuditEntry
	for rows.Next() {
		var e AuditEntry
		if err := rows.Scan(&e.ID, &e.StepName, &e.Status, &e.Message, &e.StartedAt, &e.CompletedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// DropAudit drops the audit table.
func DropAudit(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, "DROP TABLE IF EXISTS deploy_audit")
	return err
}
