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

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-warehouse/internal/db"
	"github.com/pgEdge/pgedge-warehouse/internal/logging"
	"github.com/pgEdge/pgedge-warehouse/internal/warehouse"
)

var teardownConfirm bool

var teardownCmd = &cobra.Command{
	Use:   "teardown",
	Short: "Drop all warehouse objects from the database",
	Long: `Teardown drops every object the deploy command creates: views, fact
and dimension tables with their partitions, the segmentation results
table, deployment metadata, and the audit trail.

This is destructive and requires --confirm.`,
	RunE: runTeardown,
}

func init() {
	teardownCmd.Flags().BoolVar(&teardownConfirm, "confirm", false,
		"confirm dropping all warehouse objects")
}

func runTeardown(cmd *cobra.Command, args []string) error {
	if !teardownConfirm {
		return fmt.Errorf("teardown is destructive; re-run with --confirm")
	}
	if err := cfg.Validate(); err != nil {
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

	logging.Info().Msg("dropping warehouse schema objects")
	if err := warehouse.DropSchema(ctx, pool); err != nil {
		return fmt.Errorf("failed to drop schema: %w", err)
	}
	if err := db.DropMetadata(ctx, pool); err != nil {
		return fmt.Errorf("failed to drop metadata: %w", err)
	}
	if err := db.DropAudit(ctx, pool); err != nil {
		return fmt.Errorf("failed to drop audit trail: %w", err)
	}

	cmd.Println("Warehouse objects dropped.")
	return nil
}
