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
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-warehouse/internal/db"
	"github.com/pgEdge/pgedge-warehouse/internal/validate"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Run the post-deployment validation checklist",
	Long: `Validate runs the fixed checklist against a deployed warehouse:
table and view existence, deployment metadata, date dimension coverage,
SCD current-version uniqueness, fact referential integrity, partition
bound alignment, and view smoke queries.

The command exits non-zero if any check fails.`,
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
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

	results := validate.NewChecker(pool).Run(ctx)
	printCheckResults(cmd, results)
	if !validate.Passed(results) {
		return fmt.Errorf("validation checklist failed")
	}
	return nil
}

func printCheckResults(cmd *cobra.Command, results []validate.CheckResult) {
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	out := cmd.OutOrStdout()

	passed := 0
	for _, r := range results {
		if r.Passed {
			green.Fprint(out, "  ✓ ")
			passed++
		} else {
			red.Fprint(out, "  ✗ ")
		}
		fmt.Fprintf(out, "%-32s %s", r.Name, r.Detail)
		fmt.Fprintf(out, " (%s)\n", r.Duration.Round(time.Millisecond))
	}

	fmt.Fprintln(out)
	if passed == len(results) {
		green.Fprintf(out, "All %d checks passed\n", len(results))
	} else {
		red.Fprintf(out, "%d of %d checks failed\n", len(results)-passed, len(results))
	}
}
