//-------------------------------------------------------------------------
//
// pgEdge Warehouse Bootstrap
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package config handles configuration management for pgedge-warehouse.
// Configuration is loaded from config files and CLI flags (no environment variables).
// CLI flags take precedence over config file values.
package config

import (
	"fmt"
	"net/mail"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all configuration for pgedge-warehouse.
type Config struct {
	// Connection is the PostgreSQL connection string.
	Connection string `mapstructure:"connection"`

	// Environment selects the deployment environment (dev, test, prod).
	Environment string `mapstructure:"environment"`

	// LogLevel controls logging verbosity (debug, info, warn, error).
	LogLevel string `mapstructure:"log_level"`

	// LogFile, if set, appends JSON logs to the given path.
	LogFile string `mapstructure:"log_file"`

	// Deploy holds configuration for the deploy subcommand.
	Deploy DeployConfig `mapstructure:"deploy"`

	// Segment holds configuration for the segment subcommand.
	Segment SegmentConfig `mapstructure:"segment"`
}

// DeployConfig holds configuration for warehouse deployment.
type DeployConfig struct {
	// Region is a free-form deployment region label recorded in metadata.
	Region string `mapstructure:"region"`

	// NotificationEmails are operator addresses recorded in metadata.
	NotificationEmails []string `mapstructure:"notification_emails"`

	// SkipSeed skips dimension and fact seeding.
	SkipSeed bool `mapstructure:"skip_seed"`

	// DropExisting drops existing warehouse objects before deployment.
	DropExisting bool `mapstructure:"drop_existing"`

	// CreateReaderRole creates a read-only reporting role with a
	// generated password.
	CreateReaderRole bool `mapstructure:"create_reader_role"`

	// SeedRandomSeed makes seeded data reproducible when non-zero.
	SeedRandomSeed uint64 `mapstructure:"seed_random_seed"`
}

// SegmentConfig holds configuration for customer segmentation.
type SegmentConfig struct {
	// Clusters is the number of k-means clusters.
	Clusters int `mapstructure:"clusters"`

	// FindOptimalK searches for the best cluster count via silhouette score.
	FindOptimalK bool `mapstructure:"find_optimal_k"`

	// MaxClusters bounds the optimal-k search.
	MaxClusters int `mapstructure:"max_clusters"`

	// RandomSeed makes clustering reproducible.
	RandomSeed int64 `mapstructure:"random_seed"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Environment: "dev",
		LogLevel:    "info",
		Deploy: DeployConfig{
			Region:           "local",
			CreateReaderRole: false,
			SeedRandomSeed:   0,
		},
		Segment: SegmentConfig{
			Clusters:     5,
			FindOptimalK: false,
			MaxClusters:  8,
			RandomSeed:   42,
		},
	}
}

// Load reads configuration from config files.
// Config file locations (in order of precedence):
// 1. Path specified by configFile parameter
// 2. ./pgedge-warehouse.yaml
// 3. ~/.config/pgedge-warehouse/config.yaml
func Load(configFile string) (*Config, error) {
	v := viper.New()

	// Set config name and type
	v.SetConfigName("pgedge-warehouse")
	v.SetConfigType("yaml")

	// Add config paths
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "pgedge-warehouse"))
	}

	// Use specific config file if provided
	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Start with defaults
	cfg := DefaultConfig()

	// Unmarshal config file values
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.Connection == "" {
		return fmt.Errorf("connection string is required")
	}
	if _, err := ProfileFor(c.Environment); err != nil {
		return err
	}
	return nil
}

// ValidateDeploy checks configuration required for the deploy command.
func (c *Config) ValidateDeploy() error {
	if err := c.Validate(); err != nil {
		return err
	}
	for _, addr := range c.Deploy.NotificationEmails {
		if _, err := mail.ParseAddress(addr); err != nil {
			return fmt.Errorf("invalid notification email %q", addr)
		}
	}
	return nil
}

// ValidateSegment checks configuration required for the segment command.
func (c *Config) ValidateSegment() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Segment.Clusters < 2 {
		return fmt.Errorf("clusters must be at least 2")
	}
	if c.Segment.FindOptimalK && c.Segment.MaxClusters < 2 {
		return fmt.Errorf("max_clusters must be at least 2")
	}
	return nil
}
