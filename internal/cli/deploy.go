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
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-warehouse/internal/config"
	"github.com/pgEdge/pgedge-warehouse/internal/db"
	"github.com/pgEdge/pgedge-warehouse/internal/deploy"
	"github.com/pgEdge/pgedge-warehouse/internal/logging"
	"github.com/pgEdge/pgedge-warehouse/internal/validate"
)

var (
	deployRegion           string
	deployNotifyEmails     []string
	deploySkipSeed         bool
	deployDropExisting     bool
	deployCreateReaderRole bool
	deploySeedRandomSeed   uint64
	deployWhatIf           bool
	deploySkipValidate     bool
)

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Deploy the warehouse schema, partitions, views and seed data",
	Long: `Deploy runs the full bootstrap sequence against the target database:

  1. check_prerequisites  - server version and CREATE privilege
  2. drop_existing        - optional, drops a prior deployment first
  3. create_tables        - star-schema dimension and fact tables
  4. create_partitions    - monthly fact partitions per environment
  5. create_views         - analytical views
  6. seed_dimensions      - date, geography, channel and SCD2 dimensions
  7. seed_facts           - sales, inventory, activity and financial facts
  8. create_reader_role   - optional read-only role with generated password
  9. save_metadata        - deployment metadata for status and validation

Every step is recorded in the deploy_audit table. The sequence stops at
the first failure. Use --what-if to print the plan without connecting.`,
	RunE: runDeploy,
}

func init() {
	deployCmd.Flags().StringVar(&deployRegion, "region", "",
		"deployment region label recorded in metadata")
	deployCmd.Flags().StringSliceVar(&deployNotifyEmails, "notification-emails", nil,
		"operator email addresses recorded in metadata")
	deployCmd.Flags().BoolVar(&deploySkipSeed, "skip-seed", false,
		"create schema only, skip seed data")
	deployCmd.Flags().BoolVar(&deployDropExisting, "drop-existing", false,
		"drop a prior deployment before creating")
	deployCmd.Flags().BoolVar(&deployCreateReaderRole, "create-reader-role", false,
		"create a read-only role with a generated password")
	deployCmd.Flags().Uint64Var(&deploySeedRandomSeed, "seed-random-seed", 0,
		"random seed for generated data (0 = non-deterministic)")
	deployCmd.Flags().BoolVar(&deployWhatIf, "what-if", false,
		"print the deployment plan without executing")
	deployCmd.Flags().BoolVar(&deploySkipValidate, "skip-validate", false,
		"skip the post-deploy validation checklist")
}

func runDeploy(cmd *cobra.Command, args []string) error {
	if deployRegion != "" {
		cfg.Deploy.Region = deployRegion
	}
	if len(deployNotifyEmails) > 0 {
		cfg.Deploy.NotificationEmails = deployNotifyEmails
	}
	if cmd.Flags().Changed("skip-seed") {
		cfg.Deploy.SkipSeed = deploySkipSeed
	}
	if cmd.Flags().Changed("drop-existing") {
		cfg.Deploy.DropExisting = deployDropExisting
	}
	if cmd.Flags().Changed("create-reader-role") {
		cfg.Deploy.CreateReaderRole = deployCreateReaderRole
	}
	if cmd.Flags().Changed("seed-random-seed") {
		cfg.Deploy.SeedRandomSeed = deploySeedRandomSeed
	}

	profile, err := profileOrErr()
	if err != nil {
		return err
	}

	// Plan mode never connects, so it only needs a resolvable profile.
	if deployWhatIf {
		printPlan(cmd, profile)
		return nil
	}

	if err := cfg.ValidateDeploy(); err != nil {
		return err
	}

	ctx := cmd.Context()
	pool, err := db.Connect(ctx, cfg.Connection, profile.PoolMaxConns, profile.StatementTimeout)
	if err != nil {
		return err
	}
	defer pool.Close()

	orch := deploy.New(pool, cfg, profile)
	if err := orch.Execute(ctx); err != nil {
		return fmt.Errorf("deployment failed: %w", err)
	}

	green := color.New(color.FgGreen, color.Bold)
	green.Fprintf(cmd.OutOrStdout(), "\nDeployment to %s completed successfully\n", profile.Name)

	if pw := orch.ReaderPassword(); pw != "" {
		cmd.Println()
		cmd.Printf("Reader role created: %s\n", deploy.ReaderRoleName)
		cmd.Printf("Generated password:  %s\n", pw)
		cmd.Println("Store this password now; it is not persisted anywhere.")
	}

	if deploySkipValidate {
		return nil
	}

	cmd.Println()
	cmd.Println("Running validation checklist...")
	results := validate.NewChecker(pool).Run(ctx)
	printCheckResults(cmd, results)
	if !validate.Passed(results) {
		return fmt.Errorf("validation checklist failed")
	}
	return nil
}

func printPlan(cmd *cobra.Command, profile config.Profile) {
	steps, estimate := deploy.Plan(cfg, profile)

	cmd.Printf("Deployment plan for environment %q:\n\n", profile.Name)
	for i, s := range steps {
		cmd.Printf("  %d. %-20s %s\n", i+1, s.Name, s.Description)
	}
	cmd.Println()
	if cfg.Deploy.SkipSeed {
		cmd.Println("Seed data: skipped")
	} else {
		cmd.Printf("Estimated seeded data size: %s\n", estimate)
	}
	cmd.Printf("Fact partitions: %d monthly partitions per fact table\n", profile.PartitionMonths)
	if len(cfg.Deploy.NotificationEmails) > 0 {
		cmd.Printf("Notification emails: %s\n", strings.Join(cfg.Deploy.NotificationEmails, ", "))
	}
	logging.Info().Msg("what-if plan printed, no changes made")
}
