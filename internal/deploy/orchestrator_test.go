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
	"testing"

	"github.com/pgEdge/pgedge-warehouse/internal/config"
)

func testProfile(t *testing.T, env string) config.Profile {
	t.Helper()
	p, err := config.ProfileFor(env)
	if err != nil {
		t.Fatalf("ProfileFor(%q) failed: %v", env, err)
	}
	return p
}

func stepNames(steps []Step) []string {
	names := make([]string, len(steps))
	for i, s := range steps {
		names[i] = s.Name
	}
	return names
}

func assertSteps(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("Expected steps %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Step %d: expected %s, got %s (full: %v)", i, want[i], got[i], got)
		}
	}
}

func TestStepsDefault(t *testing.T) {
	cfg := config.DefaultConfig()
	o := New(nil, cfg, testProfile(t, "dev"))

	assertSteps(t, stepNames(o.Steps()), []string{
		"check_prerequisites",
		"create_tables",
		"create_partitions",
		"create_views",
		"seed_dimensions",
		"seed_facts",
		"save_metadata",
	})
}

func TestStepsSkipSeed(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Deploy.SkipSeed = true
	o := New(nil, cfg, testProfile(t, "dev"))

	assertSteps(t, stepNames(o.Steps()), []string{
		"check_prerequisites",
		"create_tables",
		"create_partitions",
		"create_views",
		"save_metadata",
	})
}

func TestStepsAllOptions(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Deploy.DropExisting = true
	cfg.Deploy.CreateReaderRole = true
	o := New(nil, cfg, testProfile(t, "prod"))

	assertSteps(t, stepNames(o.Steps()), []string{
		"check_prerequisites",
		"drop_existing",
		"create_tables",
		"create_partitions",
		"create_views",
		"seed_dimensions",
		"seed_facts",
		"create_reader_role",
		"save_metadata",
	})
}

func TestStepsHaveDescriptions(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Deploy.DropExisting = true
	cfg.Deploy.CreateReaderRole = true
	for _, s := range New(nil, cfg, testProfile(t, "test")).Steps() {
		if s.Description == "" {
			t.Errorf("Step %s has no description", s.Name)
		}
		if s.run == nil {
			t.Errorf("Step %s has no action", s.Name)
		}
	}
}

func TestPlan(t *testing.T) {
	cfg := config.DefaultConfig()
	steps, estimate := Plan(cfg, testProfile(t, "dev"))

	if len(steps) == 0 {
		t.Fatal("Plan returned no steps")
	}
	if steps[0].Name != "check_prerequisites" {
		t.Errorf("First planned step = %s, want check_prerequisites", steps[0].Name)
	}
	if steps[len(steps)-1].Name != "save_metadata" {
		t.Errorf("Last planned step = %s, want save_metadata", steps[len(steps)-1].Name)
	}
	if estimate == "" {
		t.Error("Plan returned no size estimate")
	}
}

func TestPlanEstimateScalesWithEnvironment(t *testing.T) {
	cfg := config.DefaultConfig()

	_, dev := Plan(cfg, testProfile(t, "dev"))
	_, prod := Plan(cfg, testProfile(t, "prod"))

	if dev == prod {
		t.Errorf("Expected different size estimates for dev (%s) and prod (%s)", dev, prod)
	}
}
