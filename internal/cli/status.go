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
	"sort"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-warehouse/internal/db"
	"github.com/pgEdge/pgedge-warehouse/internal/warehouse"
)

var statusAuditLimit int

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show deployment metadata and audit history",
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().IntVar(&statusAuditLimit, "audit-limit", 20,
		"number of recent audit entries to show")
}

func runStatus(cmd *cobra.Command, args []string) error {
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

	out := cmd.OutOrStdout()
	bold := color.New(color.Bold)

	exists, err := db.MetadataExists(ctx, pool)
	if err != nil {
		return err
	}
	if !exists {
		cmd.Println("No warehouse deployment found in this database.")
		return nil
	}

	meta, err := db.GetAllMetadata(ctx, pool)
	if err != nil {
		return err
	}

	bold.Fprintln(out, "Deployment metadata:")
	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(out, "  %-22s %s\n", k, meta[k])
	}

	bounds, err := warehouse.ListPartitionBounds(ctx, pool, "fact_sales")
	if err == nil && len(bounds) > 0 {
		fmt.Fprintf(out, "\nFact partitions: %d per fact table (%d .. %d)\n",
			len(bounds), bounds[0].From, bounds[len(bounds)-1].To)
	}

	history, err := db.AuditHistory(ctx, pool, statusAuditLimit)
	if err != nil {
		return err
	}

	fmt.Fprintln(out)
	bold.Fprintln(out, "Recent deployment steps:")
	if len(history) == 0 {
		cmd.Println("  (no audit entries)")
		return nil
	}
	for _, e := range history {
		completed := "-"
		if e.CompletedAt != nil {
			completed = e.CompletedAt.Sub(e.StartedAt).Round(time.Millisecond).String()
		}
		line := fmt.Sprintf("  %-20s %-10s %-8s %s",
			e.StepName, e.Status, completed, e.Message)
		switch e.Status {
		case db.StepFailed:
			color.New(color.FgRed).Fprintln(out, line)
		case db.StepCompleted:
			fmt.Fprintln(out, line)
		default:
			color.New(color.FgYellow).Fprintln(out, line)
		}
	}
	return nil
}
