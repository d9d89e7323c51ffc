//-------------------------------------------------------------------------
//
// pgEdge Warehouse Bootstrap
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package config

import (
	"fmt"
	"sort"
	"time"
)

// Profile is the fixed sizing profile for a deployment environment.
// The values below are the documented lookup table; validation tests
// assert them exactly.
type Profile struct {
	// Name is the environment name (dev, test, prod).
	Name string

	// Description is a human-readable summary.
	Description string

	// PoolMaxConns caps the connection pool for this environment.
	PoolMaxConns int32

	// SeedScale multiplies baseline dimension and fact row volumes.
	SeedScale int

	// FactBatchSize is the rows-per-statement batch size for fact seeding.
	FactBatchSize int

	// PartitionMonths is the number of monthly fact partitions created,
	// starting at the warehouse epoch.
	PartitionMonths int

	// StatementTimeout is applied to every session as a guard against
	// runaway seed or validation statements.
	StatementTimeout time.Duration
}

// Environment sizing lookup table.
//
//	env   | pool | scale | batch | partitions | stmt timeout
//	------+------+-------+-------+------------+-------------
//	dev   |   10 |     1 |   500 |     24     | 30s
//	test  |   25 |     5 |  1000 |     48     | 60s
//	prod  |  100 |    20 |  5000 |     72     | 120s
var profiles = map[string]Profile{
	"dev": {
		Name:             "dev",
		Description:      "Development - minimal data volumes, small pool",
		PoolMaxConns:     10,
		SeedScale:        1,
		FactBatchSize:    500,
		PartitionMonths:  24,
		StatementTimeout: 30 * time.Second,
	},
	"test": {
		Name:             "test",
		Description:      "Test - moderate data volumes for realistic runs",
		PoolMaxConns:     25,
		SeedScale:        5,
		FactBatchSize:    1000,
		PartitionMonths:  48,
		StatementTimeout: 60 * time.Second,
	},
	"prod": {
		Name:             "prod",
		Description:      "Production - full data volumes, full partition horizon",
		PoolMaxConns:     100,
		SeedScale:        20,
		FactBatchSize:    5000,
		PartitionMonths:  72,
		StatementTimeout: 120 * time.Second,
	},
}

// ProfileFor returns the sizing profile for an environment name.
func ProfileFor(environment string) (Profile, error) {
	p, ok := profiles[environment]
	if !ok {
		return Profile{}, fmt.Errorf(
			"unknown environment %q (supported: dev, test, prod)", environment)
	}
	return p, nil
}

// Environments returns the supported environment names in sorted order.
func Environments() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
