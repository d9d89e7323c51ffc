package config

import (
	"reflect"
	"testing"
	"time"
)

func TestProfileFor(t *testing.T) {
	tests := []struct {
		env             string
		poolMaxConns    int32
		seedScale       int
		factBatchSize   int
		partitionMonths int
		stmtTimeout     time.Duration
	}{
		{"dev", 10, 1, 500, 24, 30 * time.Second},
		{"test", 25, 5, 1000, 48, 60 * time.Second},
		{"prod", 100, 20, 5000, 72, 120 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			p, err := ProfileFor(tt.env)
			if err != nil {
				t.Fatalf("ProfileFor(%q) failed: %v", tt.env, err)
			}
			if p.Name != tt.env {
				t.Errorf("Expected Name %q, got %q", tt.env, p.Name)
			}
			if p.Description == "" {
				t.Error("Description is empty")
			}
			if p.PoolMaxConns != tt.poolMaxConns {
				t.Errorf("Expected PoolMaxConns %d, got %d", tt.poolMaxConns, p.PoolMaxConns)
			}
			if p.SeedScale != tt.seedScale {
				t.Errorf("Expected SeedScale %d, got %d", tt.seedScale, p.SeedScale)
			}
			if p.FactBatchSize != tt.factBatchSize {
				t.Errorf("Expected FactBatchSize %d, got %d", tt.factBatchSize, p.FactBatchSize)
			}
			if p.PartitionMonths != tt.partitionMonths {
				t.Errorf("Expected PartitionMonths %d, got %d", tt.partitionMonths, p.PartitionMonths)
			}
			if p.StatementTimeout != tt.stmtTimeout {
				t.Errorf("Expected StatementTimeout %s, got %s", tt.stmtTimeout, p.StatementTimeout)
			}
		})
	}
}

func TestProfileForUnknown(t *testing.T) {
	for _, env := range []string{"", "staging", "DEV", "production"} {
		if _, err := ProfileFor(env); err == nil {
			t.Errorf("Expected error for environment %q", env)
		}
	}
}

func TestEnvironments(t *testing.T) {
	got := Environments()
	want := []string{"dev", "prod", "test"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}

	for _, name := range got {
		if _, err := ProfileFor(name); err != nil {
			t.Errorf("Environments listed %q but ProfileFor rejects it: %v", name, err)
		}
	}
}
