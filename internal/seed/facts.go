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
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pgEdge/pgedge-warehouse/internal/datagen"
	"github.com/pgEdge/pgedge-warehouse/internal/logging"
	"github.com/pgEdge/pgedge-warehouse/internal/warehouse"
)

var activityTypes = []string{"browse", "search", "cart", "wishlist", "review", "support"}
var activityWeights = []int{40, 25, 15, 8, 7, 5}

var accounts = [][2]string{
	{"4000", "Product Revenue"},
	{"4100", "Service Revenue"},
	{"5000", "Cost of Goods Sold"},
	{"6000", "Operating Expenses"},
	{"6100", "Marketing"},
	{"7000", "Payroll"},
}

// dimKeys holds the surrogate keys facts may reference.
type dimKeys struct {
	customers   []int64
	products    []int64
	employees   []int64
	geographies []int64
	channels    []int64
}

func loadDimKeys(ctx context.Context, pool *pgxpool.Pool) (*dimKeys, error) {
	var keys dimKeys
	var err error

	if keys.customers, err = warehouse.CurrentKeys(ctx, pool, "dim_customer"); err != nil {
		return nil, fmt.Errorf("failed to load customer keys: %w", err)
	}
	if keys.products, err = warehouse.CurrentKeys(ctx, pool, "dim_product"); err != nil {
		return nil, fmt.Errorf("failed to load product keys: %w", err)
	}
	if keys.employees, err = warehouse.CurrentKeys(ctx, pool, "dim_employee"); err != nil {
		return nil, fmt.Errorf("failed to load employee keys: %w", err)
	}
	if keys.geographies, err = warehouse.AllKeys(ctx, pool, "dim_geography", "geography_key"); err != nil {
		return nil, fmt.Errorf("failed to load geography keys: %w", err)
	}
	if keys.channels, err = warehouse.AllKeys(ctx, pool, "dim_sales_channel", "channel_key"); err != nil {
		return nil, fmt.Errorf("failed to load channel keys: %w", err)
	}

	if len(keys.customers) == 0 || len(keys.products) == 0 || len(keys.employees) == 0 ||
		len(keys.geographies) == 0 || len(keys.channels) == 0 {
		return nil, fmt.Errorf("dimensions are empty; seed dimensions before facts")
	}
	return &keys, nil
}

// SeedFacts loads all fact tables with sample batches. Fact dates fall
// inside the partition horizon (months from the warehouse epoch) and
// never past the date dimension range. Tables already holding rows are
// skipped, keeping deployment idempotent.
func (s *Seeder) SeedFacts(ctx context.Context, pool *pgxpool.Pool, months int) error {
	keys, err := loadDimKeys(ctx, pool)
	if err != nil {
		return err
	}

	start := warehouse.Epoch
	end := start.AddDate(0, months, -1)
	if end.After(DateRangeEnd) {
		end = DateRangeEnd
	}

	if err := s.seedSales(ctx, pool, keys, start, end); err != nil {
		return fmt.Errorf("failed to seed fact_sales: %w", err)
	}
	if err := s.seedInventory(ctx, pool, keys, start, end); err != nil {
		return fmt.Errorf("failed to seed fact_inventory: %w", err)
	}
	if err := s.seedActivity(ctx, pool, keys, start, end); err != nil {
		return fmt.Errorf("failed to seed fact_customer_activity: %w", err)
	}
	if err := s.seedFinancial(ctx, pool, keys, start, end); err != nil {
		return fmt.Errorf("failed to seed fact_financial: %w", err)
	}
	return nil
}

// alreadySeeded reports whether a fact table holds rows.
func alreadySeeded(ctx context.Context, pool *pgxpool.Pool, table string) (bool, error) {
	var count int64
	err := pool.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&count)
	if err != nil {
		return false, err
	}
	if count > 0 {
		logging.Debug().Str("table", table).Int64("rows", count).Msg("Fact table already seeded")
	}
	return count > 0, nil
}

func (s *Seeder) seedSales(ctx context.Context, pool *pgxpool.Pool, keys *dimKeys, start, end time.Time) error {
	if done, err := alreadySeeded(ctx, pool, "fact_sales"); err != nil || done {
		return err
	}

	total := baseSales * s.scale
	progress := datagen.NewProgressReporter("fact_sales", int64(total), s.batch.ProgressInterval)
	batch := make([]string, 0, s.batch.BatchSize)

	for i := 0; i < total; i++ {
		quantity := s.faker.Int(1, 10)
		unitPrice := s.faker.Price(5, 500)
		gross := float64(quantity) * unitPrice
		discount := gross * s.faker.Float64(0, 0.3)
		tax := (gross - discount) * 0.08
		net := gross - discount + tax

		batch = append(batch, fmt.Sprintf("(%d, %d, %d, %d, %d, %d, 'ORD%s', %d, %.2f, %.2f, %.2f, %.2f, %.2f)",
			warehouse.DateKey(s.faker.DateRange(start, end)),
			datagen.Choose(s.faker, keys.customers),
			datagen.Choose(s.faker, keys.products),
			datagen.Choose(s.faker, keys.geographies),
			datagen.Choose(s.faker, keys.channels),
			datagen.Choose(s.faker, keys.employees),
			s.faker.Digits(10),
			quantity,
			unitPrice,
			gross,
			discount,
			tax,
			net,
		))

		if len(batch) >= s.batch.BatchSize {
			if err := datagen.ExecBatchInsert(ctx, pool, "fact_sales",
				"(date_key, customer_key, product_key, geography_key, channel_key, employee_key, order_number, quantity, unit_price, gross_amount, discount_amount, tax_amount, net_amount)", batch); err != nil {
				return err
			}
			progress.Update(int64(len(batch)))
			batch = batch[:0]
		}
	}
	if err := datagen.ExecBatchInsert(ctx, pool, "fact_sales",
		"(date_key, customer_key, product_key, geography_key, channel_key, employee_key, order_number, quantity, unit_price, gross_amount, discount_amount, tax_amount, net_amount)", batch); err != nil {
		return err
	}
	progress.Update(int64(len(batch)))
	progress.Done()
	return nil
}

func (s *Seeder) seedInventory(ctx context.Context, pool *pgxpool.Pool, keys *dimKeys, start, end time.Time) error {
	if done, err := alreadySeeded(ctx, pool, "fact_inventory"); err != nil || done {
		return err
	}

	total := baseInventory * s.scale
	progress := datagen.NewProgressReporter("fact_inventory", int64(total), s.batch.ProgressInterval)
	batch := make([]string, 0, s.batch.BatchSize)

	for i := 0; i < total; i++ {
		batch = append(batch, fmt.Sprintf("(%d, %d, %d, %d, %d, %d, %.2f)",
			warehouse.DateKey(s.faker.DateRange(start, end)),
			datagen.Choose(s.faker, keys.products),
			datagen.Choose(s.faker, keys.geographies),
			s.faker.Int(0, 1000),
			s.faker.Int(0, 500),
			s.faker.Int(20, 200),
			s.faker.Price(5, 300),
		))

		if len(batch) >= s.batch.BatchSize {
			if err := datagen.ExecBatchInsert(ctx, pool, "fact_inventory",
				"(date_key, product_key, geography_key, quantity_on_hand, quantity_on_order, reorder_point, unit_cost)", batch); err != nil {
				return err
			}
			progress.Update(int64(len(batch)))
			batch = batch[:0]
		}
	}
	if err := datagen.ExecBatchInsert(ctx, pool, "fact_inventory",
		"(date_key, product_key, geography_key, quantity_on_hand, quantity_on_order, reorder_point, unit_cost)", batch); err != nil {
		return err
	}
	progress.Update(int64(len(batch)))
	progress.Done()
	return nil
}

func (s *Seeder) seedActivity(ctx context.Context, pool *pgxpool.Pool, keys *dimKeys, start, end time.Time) error {
	if done, err := alreadySeeded(ctx, pool, "fact_customer_activity"); err != nil || done {
		return err
	}

	total := baseActivity * s.scale
	progress := datagen.NewProgressReporter("fact_customer_activity", int64(total), s.batch.ProgressInterval)
	batch := make([]string, 0, s.batch.BatchSize)

	for i := 0; i < total; i++ {
		batch = append(batch, fmt.Sprintf("(%d, %d, %d, '%s', %d, %d, %d)",
			warehouse.DateKey(s.faker.DateRange(start, end)),
			datagen.Choose(s.faker, keys.customers),
			datagen.Choose(s.faker, keys.channels),
			datagen.ChooseWeighted(s.faker, activityTypes, activityWeights),
			s.faker.Int(1, 5),
			s.faker.Int(1, 50),
			s.faker.Int(30, 3600),
		))

		if len(batch) >= s.batch.BatchSize {
			if err := datagen.ExecBatchInsert(ctx, pool, "fact_customer_activity",
				"(date_key, customer_key, channel_key, activity_type, session_count, page_views, duration_seconds)", batch); err != nil {
				return err
			}
			progress.Update(int64(len(batch)))
			batch = batch[:0]
		}
	}
	if err := datagen.ExecBatchInsert(ctx, pool, "fact_customer_activity",
		"(date_key, customer_key, channel_key, activity_type, session_count, page_views, duration_seconds)", batch); err != nil {
		return err
	}
	progress.Update(int64(len(batch)))
	progress.Done()
	return nil
}

func (s *Seeder) seedFinancial(ctx context.Context, pool *pgxpool.Pool, keys *dimKeys, start, end time.Time) error {
	if done, err := alreadySeeded(ctx, pool, "fact_financial"); err != nil || done {
		return err
	}

	total := baseFinancial * s.scale
	progress := datagen.NewProgressReporter("fact_financial", int64(total), s.batch.ProgressInterval)
	batch := make([]string, 0, s.batch.BatchSize)

	for i := 0; i < total; i++ {
		account := datagen.Choose(s.faker, accounts)
		amount := s.faker.Price(1000, 100000)

		batch = append(batch, fmt.Sprintf("(%d, %d, '%s', '%s', %.2f, %.2f, 'USD')",
			warehouse.DateKey(s.faker.DateRange(start, end)),
			datagen.Choose(s.faker, keys.geographies),
			account[0],
			account[1],
			amount,
			amount*s.faker.Float64(0.8, 1.2),
		))

		if len(batch) >= s.batch.BatchSize {
			if err := datagen.ExecBatchInsert(ctx, pool, "fact_financial",
				"(date_key, geography_key, account_code, account_name, amount, budget_amount, currency)", batch); err != nil {
				return err
			}
			progress.Update(int64(len(batch)))
			batch = batch[:0]
		}
	}
	if err := datagen.ExecBatchInsert(ctx, pool, "fact_financial",
		"(date_key, geography_key, account_code, account_name, amount, budget_amount, currency)", batch); err != nil {
		return err
	}
	progress.Update(int64(len(batch)))
	progress.Done()
	return nil
}
