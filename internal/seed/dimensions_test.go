//-------------------------------------------------------------------------
//
// pgEdge Warehouse Bootstrap
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package seed

import (
	"testing"
)

func TestNewSeeder(t *testing.T) {
	s := New(5, 1000, 0)
	if s == nil {
		t.Fatal("New returned nil")
	}
	if s.scale != 5 {
		t.Errorf("Expected scale 5, got %d", s.scale)
	}
	if s.batch.BatchSize != 1000 {
		t.Errorf("Expected batch size 1000, got %d", s.batch.BatchSize)
	}
}

func TestSeederDeterministicWithSeed(t *testing.T) {
	s1 := New(1, 500, 12345)
	s2 := New(1, 500, 12345)

	rows1 := s1.buildCustomerRows(20)
	rows2 := s2.buildCustomerRows(20)

	if len(rows1) != 20 || len(rows2) != 20 {
		t.Fatalf("Expected 20 rows each, got %d and %d", len(rows1), len(rows2))
	}
	for i := range rows1 {
		if rows1[i].NaturalKey != rows2[i].NaturalKey {
			t.Fatalf("Natural keys diverge at %d: %s != %s",
				i, rows1[i].NaturalKey, rows2[i].NaturalKey)
		}
		if len(rows1[i].Values) != len(rows2[i].Values) {
			t.Fatalf("Value counts diverge at %d", i)
		}
	}
}

func TestBuildCustomerRowsNaturalKeys(t *testing.T) {
	s := New(1, 500, 1)
	rows := s.buildCustomerRows(3)

	want := []string{"CUST_000001", "CUST_000002", "CUST_000003"}
	for i, w := range want {
		if rows[i].NaturalKey != w {
			t.Errorf("Row %d natural key = %s, want %s", i, rows[i].NaturalKey, w)
		}
	}
}

func TestBuildProductRowsNaturalKeys(t *testing.T) {
	s := New(1, 500, 1)
	rows := s.buildProductRows(2)

	if rows[0].NaturalKey != "PROD_000001" {
		t.Errorf("Unexpected product key: %s", rows[0].NaturalKey)
	}
	if rows[1].NaturalKey != "PROD_000002" {
		t.Errorf("Unexpected product key: %s", rows[1].NaturalKey)
	}
}

func TestBuildEmployeeRowsNaturalKeys(t *testing.T) {
	s := New(1, 500, 1)
	rows := s.buildEmployeeRows(1)

	if rows[0].NaturalKey != "EMP_0001" {
		t.Errorf("Unexpected employee key: %s", rows[0].NaturalKey)
	}
}

func TestTableSizes(t *testing.T) {
	sizes := TableSizes()
	if len(sizes) == 0 {
		t.Fatal("TableSizes returned no entries")
	}

	byName := make(map[string]bool)
	for _, s := range sizes {
		byName[s.Name] = true
		if s.BaseRows <= 0 {
			t.Errorf("%s: BaseRows %d must be positive", s.Name, s.BaseRows)
		}
		if s.BaseRowSize <= 0 {
			t.Errorf("%s: BaseRowSize %d must be positive", s.Name, s.BaseRowSize)
		}
	}

	for _, name := range []string{
		"dim_date", "dim_customer", "dim_product", "dim_geography",
		"fact_sales", "fact_inventory", "fact_customer_activity", "fact_financial",
	} {
		if !byName[name] {
			t.Errorf("TableSizes missing %s", name)
		}
	}

	// dim_date covers the fixed calendar regardless of scale
	for _, s := range sizes {
		if s.Name == "dim_date" && s.BaseRows != int64(len(BuildDateRows())) {
			t.Errorf("dim_date BaseRows %d != calendar size %d", s.BaseRows, len(BuildDateRows()))
		}
	}
}
