//-------------------------------------------------------------------------
//
// pgEdge Warehouse Bootstrap
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package deploy sequences warehouse deployment: prerequisite checks,
// schema and partition creation, views, seeding, reporting role, and
// deployment metadata. Steps run strictly in order, each recorded in the
// deploy_audit table; the first failure is audited and propagated with no
// retry or rollback.
package deploy

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pgEdge/pgedge-warehouse/internal/config"
	"github.com/pgEdge/pgedge-warehouse/internal/datagen"
	"github.com/pgEdge/pgedge-warehouse/internal/db"
	"github.com/pgEdge/pgedge-warehouse/internal/logging"
	"github.com/pgEdge/pgedge-warehouse/internal/seed"
	"github.com/pgEdge/pgedge-warehouse/internal/warehouse"
)

// minServerVersion is the oldest supported PostgreSQL (partitioned
// indexes and identity columns are load-bearing).
const minServerVersion = 130000

// ReaderRoleName is the read-only reporting role created on request.
const ReaderRoleName = "warehouse_reader"

// Step is one named deployment action.
type Step struct {
	Name        string
	Description string
	run         func(ctx context.Context) error
}

// Orchestrator executes the deployment sequence.
type Orchestrator struct {
	pool    *pgxpool.Pool
	cfg     *config.Config
	profile config.Profile

	readerPassword string
}

// New creates an Orchestrator for a connected warehouse.
func New(pool *pgxpool.Pool, cfg *config.Config, profile config.Profile) *Orchestrator {
	return &Orchestrator{pool: pool, cfg: cfg, profile: profile}
}

// Steps returns the deployment steps in execution order, honoring the
// configured flags.
func (o *Orchestrator) Steps() []Step {
	steps := []Step{
		{
			Name:        "check_prerequisites",
			Description: "Verify server version and create privilege",
			run:         o.checkPrerequisites,
		},
	}

	if o.cfg.Deploy.DropExisting {
		steps = append(steps, Step{
			Name:        "drop_existing",
			Description: "Drop existing warehouse objects",
			run:         o.dropExisting,
		})
	}

	steps = append(steps,
		Step{
			Name:        "create_tables",
			Description: "Create dimension and fact tables",
			run:         o.createTables,
		},
		Step{
			Name:        "create_partitions",
			Description: fmt.Sprintf("Create %d monthly fact partitions", o.profile.PartitionMonths),
			run:         o.createPartitions,
		},
		Step{
			Name:        "create_views",
			Description: "Create analytical views",
			run:         o.createViews,
		},
	)

	if !o.cfg.Deploy.SkipSeed {
		steps = append(steps,
			Step{
				Name:        "seed_dimensions",
				Description: fmt.Sprintf("Seed dimensions at scale %d", o.profile.SeedScale),
				run:         o.seedDimensions,
			},
			Step{
				Name:        "seed_facts",
				Description: fmt.Sprintf("Seed facts at scale %d", o.profile.SeedScale),
				run:         o.seedFacts,
			},
		)
	}

	if o.cfg.Deploy.CreateReaderRole {
		steps = append(steps, Step{
			Name:        "create_reader_role",
			Description: "Create read-only reporting role",
			run:         o.createReaderRole,
		})
	}

	steps = append(steps, Step{
		Name:        "save_metadata",
		Description: "Record deployment metadata",
		run:         o.saveMetadata,
	})

	return steps
}

// Execute runs every step in order. Each step is recorded in the audit
// table; failure is logged, audited, and returned.
func (o *Orchestrator) Execute(ctx context.Context) error {
	if err := db.EnsureAuditTable(ctx, o.pool); err != nil {
		return fmt.Errorf("failed to create audit table: %w", err)
	}

	for _, step := range o.Steps() {
		auditID, err := db.BeginAuditStep(ctx, o.pool, step.Name)
		if err != nil {
			return fmt.Errorf("failed to audit step %s: %w", step.Name, err)
		}

		logging.Info().Str("step", step.Name).Msg(step.Description)

		if err := step.run(ctx); err != nil {
			logging.Error().Str("step", step.Name).Err(err).Msg("Deployment step failed")
			if auditErr := db.FinishAuditStep(ctx, o.pool, auditID, db.StepFailed, err.Error()); auditErr != nil {
				logging.Warn().Err(auditErr).Msg("Could not record step failure")
			}
			return fmt.Errorf("step %s failed: %w", step.Name, err)
		}

		if err := db.FinishAuditStep(ctx, o.pool, auditID, db.StepCompleted, ""); err != nil {
			return fmt.Errorf("failed to audit step %s: %w", step.Name, err)
		}
	}

	logging.Info().
		Str("environment", o.cfg.Environment).
		Msg("Deployment complete")
	return nil
}

// ReaderPassword returns the generated reporting role password, set only
// after the create_reader_role step ran in this process.
func (o *Orchestrator) ReaderPassword() string {
	return o.readerPassword
}

func (o *Orchestrator) checkPrerequisites(ctx context.Context) error {
	version, err := db.ServerVersionNum(ctx, o.pool)
	if err != nil {
		return err
	}
	if version < minServerVersion {
		return fmt.Errorf("server version %d is below minimum %d", version, minServerVersion)
	}

	canCreate, err := db.HasCreatePrivilege(ctx, o.pool)
	if err != nil {
		return fmt.Errorf("failed to check privileges: %w", err)
	}
	if !canCreate {
		return fmt.Errorf("current user lacks CREATE privilege on the database")
	}
	return nil
}

func (o *Orchestrator) dropExisting(ctx context.Context) error {
	if err := warehouse.DropSchema(ctx, o.pool); err != nil {
		return err
	}
	return db.DropMetadata(ctx, o.pool)
}

func (o *Orchestrator) createTables(ctx context.Context) error {
	return warehouse.CreateSchema(ctx, o.pool)
}

func (o *Orchestrator) createPartitions(ctx context.Context) error {
	return warehouse.CreatePartitions(ctx, o.pool, o.profile.PartitionMonths)
}

func (o *Orchestrator) createViews(ctx context.Context) error {
	return warehouse.CreateViews(ctx, o.pool)
}

// alreadySeeded reports whether a prior deployment recorded metadata.
// Seed steps are skipped on redeploy; drop_existing removes the metadata
// table and re-arms them.
func (o *Orchestrator) alreadySeeded(ctx context.Context) (bool, error) {
	return db.MetadataExists(ctx, o.pool)
}

func (o *Orchestrator) seedDimensions(ctx context.Context) error {
	seeded, err := o.alreadySeeded(ctx)
	if err != nil {
		return err
	}
	if seeded {
		logging.Info().Msg("Warehouse already seeded, skipping dimension seed")
		return nil
	}
	seeder := seed.New(o.profile.SeedScale, o.profile.FactBatchSize, o.cfg.Deploy.SeedRandomSeed)
	return seeder.SeedDimensions(ctx, o.pool)
}

func (o *Orchestrator) seedFacts(ctx context.Context) error {
	seeded, err := o.alreadySeeded(ctx)
	if err != nil {
		return err
	}
	if seeded {
		logging.Info().Msg("Warehouse already seeded, skipping fact seed")
		return nil
	}
	seeder := seed.New(o.profile.SeedScale, o.profile.FactBatchSize, o.cfg.Deploy.SeedRandomSeed)
	return seeder.SeedFacts(ctx, o.pool, o.profile.PartitionMonths)
}

func (o *Orchestrator) createReaderRole(ctx context.Context) error {
	password, err := GeneratePassword(24)
	if err != nil {
		return err
	}
	created, err := EnsureReaderRole(ctx, o.pool, ReaderRoleName, password)
	if err != nil {
		return err
	}
	if created {
		o.readerPassword = password
	}
	return nil
}

func (o *Orchestrator) saveMetadata(ctx context.Context) error {
	return db.SaveMetadata(ctx, o.pool, db.DeploymentInfo{
		Environment:        o.cfg.Environment,
		Region:             o.cfg.Deploy.Region,
		NotificationEmails: o.cfg.Deploy.NotificationEmails,
		SeedScale:          o.profile.SeedScale,
	})
}

// PlannedStep is one entry of a what-if plan.
type PlannedStep struct {
	Name        string
	Description string
}

// Plan returns the step sequence and a seeded-size estimate without
// touching the database.
func Plan(cfg *config.Config, profile config.Profile) ([]PlannedStep, string) {
	o := New(nil, cfg, profile)

	steps := o.Steps()
	planned := make([]PlannedStep, 0, len(steps))
	for _, s := range steps {
		planned = append(planned, PlannedStep{Name: s.Name, Description: s.Description})
	}

	estimator := datagen.NewSizeEstimator(seed.TableSizes())
	estimate := datagen.FormatSize(estimator.EstimatedSize(profile.SeedScale))
	return planned, estimate
}
