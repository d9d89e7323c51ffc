//-------------------------------------------------------------------------
//
// pgEdge Warehouse Bootstrap
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package deploy

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pgEdge/pgedge-warehouse/internal/logging"
)

// passwordCharset deliberately excludes quote and backslash characters.
const passwordCharset = "abcdefghijklmnopqrstuvwxyz" +
	"ABCDEFGHIJKLMNOPQRSTUVWXYZ" +
	"0123456789" +
	"!#$%&*+-=?@_"

// GeneratePassword returns a random password of the given length drawn
// uniformly from a SQL-safe character set.
func GeneratePassword(length int) (string, error) {
	if length < 12 {
		return "", fmt.Errorf("password length %d is below minimum 12", length)
	}
	buf := make([]byte, length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(passwordCharset))))
		if err != nil {
			return "", fmt.Errorf("failed to generate password: %w", err)
		}
		buf[i] = passwordCharset[n.Int64()]
	}
	return string(buf), nil
}

// EnsureReaderRole creates a read-only login role with the given password
// and grants it SELECT on current and future warehouse tables. Returns
// true when the role was created, false when it already existed (the
// existing password is left untouched).
func EnsureReaderRole(ctx context.Context, pool *pgxpool.Pool, role, password string) (bool, error) {
	var exists bool
	err := pool.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM pg_roles WHERE rolname = $1)", role).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check role %s: %w", role, err)
	}
	if exists {
		logging.Debug().Str("role", role).Msg("Reporting role already exists")
		return false, nil
	}

	// Role names and passwords cannot be bind parameters.
	if _, err := pool.Exec(ctx, fmt.Sprintf(
		"CREATE ROLE %s LOGIN PASSWORD '%s'", role, password)); err != nil {
		return false, fmt.Errorf("failed to create role %s: %w", role, err)
	}

	grants := []string{
		fmt.Sprintf("GRANT USAGE ON SCHEMA public TO %s", role),
		fmt.Sprintf("GRANT SELECT ON ALL TABLES IN SCHEMA public TO %s", role),
		fmt.Sprintf("ALTER DEFAULT PRIVILEGES IN SCHEMA public GRANT SELECT ON TABLES TO %s", role),
	}
	for _, grant := range grants {
		if _, err := pool.Exec(ctx, grant); err != nil {
			return false, fmt.Errorf("failed to grant privileges to %s: %w", role, err)
		}
	}

	logging.Info().Str("role", role).Msg("Reporting role created")
	return true, nil
}
