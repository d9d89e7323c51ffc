//-------------------------------------------------------------------------
//
// pgEdge Warehouse Bootstrap
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package seed populates the warehouse star schema with sample data.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pgEdge/pgedge-warehouse/internal/datagen"
	"github.com/pgEdge/pgedge-warehouse/internal/logging"
	"github.com/pgEdge/pgedge-warehouse/internal/warehouse"
)

// Baseline row counts at seed scale 1.
const (
	baseCustomers   = 200
	baseProducts    = 60
	baseEmployees   = 25
	baseGeographies = 50

	baseSales     = 5000
	baseInventory = 2000
	baseActivity  = 3000
	baseFinancial = 1000
)

var productCategories = []string{"Electronics", "Clothing", "Home", "Garden", "Sports", "Toys", "Books", "Food", "Health"}
var productBrands = []string{"Northwind", "Apex", "Solstice", "Cascade", "Meridian", "Bluepine", "Vantage"}
var departments = []string{"Sales", "Marketing", "Finance", "Operations", "Support"}
var maritalStatuses = []string{"S", "M", "D", "W"}
var usRegions = []string{"Northeast", "Southeast", "Midwest", "Southwest", "West"}

// Seeder generates and loads sample warehouse data.
type Seeder struct {
	faker *datagen.Faker
	scale int
	batch datagen.BatchInsertConfig
}

// New creates a Seeder. A non-zero randomSeed makes output reproducible.
func New(scale, batchSize int, randomSeed uint64) *Seeder {
	faker := datagen.NewFaker()
	if randomSeed != 0 {
		faker = datagen.NewFakerWithSeed(randomSeed)
	}
	cfg := datagen.DefaultBatchConfig()
	if batchSize > 0 {
		cfg.BatchSize = batchSize
	}
	if scale < 1 {
		scale = 1
	}
	return &Seeder{faker: faker, scale: scale, batch: cfg}
}

// TableSizes describes seeded tables for what-if size estimation.
func TableSizes() []datagen.TableSizeInfo {
	return []datagen.TableSizeInfo{
		{Name: "dim_date", BaseRowSize: 90, BaseRows: 2191, IndexFactor: 1.1, Fixed: true},
		{Name: "dim_geography", BaseRowSize: 70, BaseRows: baseGeographies, IndexFactor: 1.1},
		{Name: "dim_sales_channel", BaseRowSize: 60, BaseRows: 4, IndexFactor: 1.1, Fixed: true},
		{Name: "dim_customer", BaseRowSize: 180, BaseRows: baseCustomers, IndexFactor: 1.2},
		{Name: "dim_product", BaseRowSize: 160, BaseRows: baseProducts, IndexFactor: 1.2},
		{Name: "dim_employee", BaseRowSize: 140, BaseRows: baseEmployees, IndexFactor: 1.2},
		{Name: "fact_sales", BaseRowSize: 120, BaseRows: baseSales, IndexFactor: 1.3},
		{Name: "fact_inventory", BaseRowSize: 60, BaseRows: baseInventory, IndexFactor: 1.2},
		{Name: "fact_customer_activity", BaseRowSize: 70, BaseRows: baseActivity, IndexFactor: 1.2},
		{Name: "fact_financial", BaseRowSize: 90, BaseRows: baseFinancial, IndexFactor: 1.2},
	}
}

// SeedDimensions loads all dimension tables. Static dimensions use plain
// batch inserts; mutable dimensions go through the Type 2 merge so repeat
// deployments version changed members instead of duplicating them.
func (s *Seeder) SeedDimensions(ctx context.Context, pool *pgxpool.Pool) error {
	if err := s.seedDates(ctx, pool); err != nil {
		return fmt.Errorf("failed to seed dim_date: %w", err)
	}
	if err := s.seedGeographies(ctx, pool); err != nil {
		return fmt.Errorf("failed to seed dim_geography: %w", err)
	}
	if err := s.seedChannels(ctx, pool); err != nil {
		return fmt.Errorf("failed to seed dim_sales_channel: %w", err)
	}

	asOf := warehouse.Epoch.Format("2006-01-02")

	customers := s.buildCustomerRows(baseCustomers * s.scale)
	res, err := warehouse.CustomerDim.Apply(ctx, pool, customers, asOf)
	if err != nil {
		return fmt.Errorf("failed to seed dim_customer: %w", err)
	}
	logging.Info().Int("inserted", res.Inserted).Int("unchanged", res.Unchanged).Msg("dim_customer complete")

	products := s.buildProductRows(baseProducts * s.scale)
	res, err = warehouse.ProductDim.Apply(ctx, pool, products, asOf)
	if err != nil {
		return fmt.Errorf("failed to seed dim_product: %w", err)
	}
	logging.Info().Int("inserted", res.Inserted).Int("unchanged", res.Unchanged).Msg("dim_product complete")

	employees := s.buildEmployeeRows(baseEmployees * s.scale)
	res, err = warehouse.EmployeeDim.Apply(ctx, pool, employees, asOf)
	if err != nil {
		return fmt.Errorf("failed to seed dim_employee: %w", err)
	}
	logging.Info().Int("inserted", res.Inserted).Int("unchanged", res.Unchanged).Msg("dim_employee complete")

	return nil
}

func (s *Seeder) buildCustomerRows(count int) []warehouse.DimensionRow {
	sinceStart := time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)
	sinceEnd := time.Date(2021, 12, 31, 0, 0, 0, 0, time.UTC)

	rows := make([]warehouse.DimensionRow, 0, count)
	for i := 1; i <= count; i++ {
		rows = append(rows, warehouse.DimensionRow{
			NaturalKey: fmt.Sprintf("CUST_%06d", i),
			Values: []any{
				s.faker.FirstName(),
				s.faker.LastName(),
				s.faker.Email(),
				s.faker.Phone(),
				datagen.Choose(s.faker, maritalStatuses),
				s.faker.Price(20000, 250000),
				s.faker.DateRange(sinceStart, sinceEnd),
			},
		})
	}
	return rows
}

func (s *Seeder) buildProductRows(count int) []warehouse.DimensionRow {
	rows := make([]warehouse.DimensionRow, 0, count)
	for i := 1; i <= count; i++ {
		cost := s.faker.Price(5, 300)
		rows = append(rows, warehouse.DimensionRow{
			NaturalKey: fmt.Sprintf("PROD_%06d", i),
			Values: []any{
				s.faker.ProductName(),
				datagen.Choose(s.faker, productCategories),
				s.faker.StringN(8),
				datagen.Choose(s.faker, productBrands),
				cost,
				cost * s.faker.Float64(1.2, 2.5),
			},
		})
	}
	return rows
}

func (s *Seeder) buildEmployeeRows(count int) []warehouse.DimensionRow {
	hireStart := time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC)
	hireEnd := time.Date(2021, 12, 31, 0, 0, 0, 0, time.UTC)

	rows := make([]warehouse.DimensionRow, 0, count)
	for i := 1; i <= count; i++ {
		rows = append(rows, warehouse.DimensionRow{
			NaturalKey: fmt.Sprintf("EMP_%04d", i),
			Values: []any{
				s.faker.FirstName(),
				s.faker.LastName(),
				s.faker.JobTitle(),
				datagen.Choose(s.faker, departments),
				s.faker.DateRange(hireStart, hireEnd),
			},
		})
	}
	return rows
}

func (s *Seeder) seedGeographies(ctx context.Context, pool *pgxpool.Pool) error {
	var count int64
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM dim_geography").Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		logging.Debug().Int64("rows", count).Msg("dim_geography already seeded")
		return nil
	}

	batch := make([]string, 0, baseGeographies)
	for i := 0; i < baseGeographies; i++ {
		batch = append(batch, fmt.Sprintf("('%s', '%s', '%s', 'United States', '%s')",
			datagen.EscapeSingleQuote(s.faker.City()),
			s.faker.State(),
			s.faker.Zip(),
			datagen.Choose(s.faker, usRegions),
		))
	}
	if err := datagen.ExecBatchInsert(ctx, pool, "dim_geography",
		"(city, state_code, postal_code, country, region)", batch); err != nil {
		return err
	}
	logging.Info().Int("count", baseGeographies).Msg("dim_geography complete")
	return nil
}

func (s *Seeder) seedChannels(ctx context.Context, pool *pgxpool.Pool) error {
	channels := [][3]string{
		{"STORE", "Retail Store", "Direct"},
		{"WEB", "Web Store", "Direct"},
		{"CATALOG", "Catalog", "Direct"},
		{"PARTNER", "Partner Resale", "Indirect"},
	}
	for _, ch := range channels {
		isOnline := ch[0] == "WEB"
		_, err := pool.Exec(ctx, `
            INSERT INTO dim_sales_channel (channel_id, channel_name, channel_type, is_online)
            VALUES ($1, $2, $3, $4)
            ON CONFLICT (channel_id) DO NOTHING
        `, ch[0], ch[1], ch[2], isOnline)
		if err != nil {
			return err
		}
	}
	logging.Info().Int("count", len(channels)).Msg("dim_sales_channel complete")
	return nil
}
