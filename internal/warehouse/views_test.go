//-------------------------------------------------------------------------
//
// pgEdge Warehouse Bootstrap
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package warehouse

import (
	"strings"
	"testing"
)

func TestViewsWellFormed(t *testing.T) {
	if len(Views) == 0 {
		t.Fatal("No views defined")
	}

	seen := make(map[string]bool)
	for _, v := range Views {
		if v.Name == "" {
			t.Fatal("View with empty name")
		}
		if !strings.HasPrefix(v.Name, "vw_") {
			t.Errorf("View %s does not use the vw_ prefix", v.Name)
		}
		if seen[v.Name] {
			t.Errorf("Duplicate view name %s", v.Name)
		}
		seen[v.Name] = true

		if v.Description == "" {
			t.Errorf("View %s has no description", v.Name)
		}
		if !strings.Contains(strings.ToUpper(v.SQL), "SELECT") {
			t.Errorf("View %s SQL has no SELECT", v.Name)
		}
	}
}

func TestViewNames(t *testing.T) {
	names := ViewNames()
	if len(names) != len(Views) {
		t.Fatalf("ViewNames returned %d names for %d views", len(names), len(Views))
	}
	for i, v := range Views {
		if names[i] != v.Name {
			t.Errorf("ViewNames[%d] = %s, want %s", i, names[i], v.Name)
		}
	}

	for _, want := range []string{
		"vw_daily_sales_aggregation",
		"vw_monthly_sales_by_channel",
		"vw_product_performance",
		"vw_customer_360",
		"vw_inventory_status",
		"vw_financial_summary",
	} {
		found := false
		for _, n := range names {
			if n == want {
				found = true
			}
		}
		if !found {
			t.Errorf("Missing view %s", want)
		}
	}
}

func TestSchemaTableLists(t *testing.T) {
	wantDims := []string{
		"dim_date", "dim_customer", "dim_product",
		"dim_geography", "dim_sales_channel", "dim_employee",
	}
	wantFacts := []string{
		"fact_sales", "fact_inventory", "fact_customer_activity", "fact_financial",
	}

	if len(DimensionTables) != len(wantDims) {
		t.Errorf("Expected %d dimensions, got %d", len(wantDims), len(DimensionTables))
	}
	for _, name := range wantDims {
		if !strings.Contains(createSchemaSQL, name) {
			t.Errorf("Schema DDL missing %s", name)
		}
	}
	for _, name := range wantFacts {
		if !strings.Contains(createSchemaSQL, name) {
			t.Errorf("Schema DDL missing %s", name)
		}
	}

	// Facts are range partitioned on the date key.
	count := strings.Count(createSchemaSQL, "PARTITION BY RANGE (date_key)")
	if count != len(FactTables) {
		t.Errorf("Expected %d partitioned facts, found %d", len(FactTables), count)
	}
}

func TestDropSchemaCoversCreatedObjects(t *testing.T) {
	for _, table := range DimensionTables {
		if !strings.Contains(dropSchemaSQL, table) {
			t.Errorf("dropSchemaSQL does not drop %s", table)
		}
	}
	for _, table := range FactTables {
		if !strings.Contains(dropSchemaSQL, table) {
			t.Errorf("dropSchemaSQL does not drop %s", table)
		}
	}
	for _, v := range Views {
		if !strings.Contains(dropSchemaSQL, v.Name) {
			t.Errorf("dropSchemaSQL does not drop view %s", v.Name)
		}
	}
}
