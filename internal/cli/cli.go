//-------------------------------------------------------------------------
//
// pgEdge Warehouse Bootstrap
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package cli implements the command-line interface for pgedge-warehouse.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-warehouse/internal/config"
	"github.com/pgEdge/pgedge-warehouse/internal/logging"
	"github.com/pgEdge/pgedge-warehouse/pkg/version"
)

var (
	// Global flags
	cfgFile     string
	connection  string
	environment string
	logLevel    string
	logFile     string

	// Global config
	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:   "pgedge-warehouse",
		Short: "PostgreSQL analytical data warehouse bootstrap",
		Long: `pgedge-warehouse is a CLI tool that bootstraps a star-schema analytical
data warehouse into PostgreSQL. It provisions dimension and fact tables
with monthly fact partitions, seeds sample data sized per environment,
creates analytical views, and validates the deployment with a fixed
checklist.

Deployments are sequenced, audited in-database, and idempotent: running
deploy twice against the same environment does not error.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: ./pgedge-warehouse.yaml)")
	rootCmd.PersistentFlags().StringVar(&connection, "connection", "",
		"PostgreSQL connection string")
	rootCmd.PersistentFlags().StringVar(&environment, "environment", "",
		"deployment environment (dev, test, prod)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		"append JSON logs to this file")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(deployCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(segmentCmd)
	rootCmd.AddCommand(teardownCmd)
	rootCmd.AddCommand(environmentsCmd)
}

func initConfig() error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return err
	}

	// Override with CLI flags
	if connection != "" {
		cfg.Connection = connection
	}
	if environment != "" {
		cfg.Environment = environment
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if logFile != "" {
		cfg.LogFile = logFile
	}

	// Reinitialize logger with config
	logging.Init(logging.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
		File:   cfg.LogFile,
	})

	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println(version.Info())
	},
}

var environmentsCmd = &cobra.Command{
	Use:   "environments",
	Short: "List environment sizing profiles",
	Long: `List the supported deployment environments and their fixed sizing
profiles: connection pool size, seed scale factor, fact batch size,
monthly partition horizon, and statement timeout.`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println("Available environments:")
		cmd.Println()
		for _, name := range config.Environments() {
			p, _ := config.ProfileFor(name)
			cmd.Printf("  %-5s - %s\n", p.Name, p.Description)
			cmd.Printf("          pool=%d scale=%d batch=%d partitions=%d months timeout=%s\n",
				p.PoolMaxConns, p.SeedScale, p.FactBatchSize, p.PartitionMonths, p.StatementTimeout)
		}
		cmd.Println()
		cmd.Println("Select an environment with --environment or the config file.")
	},
}

// profileOrErr resolves the configured environment profile.
func profileOrErr() (config.Profile, error) {
	p, err := config.ProfileFor(cfg.Environment)
	if err != nil {
		return config.Profile{}, fmt.Errorf("invalid environment: %w", err)
	}
	return p, nil
}
