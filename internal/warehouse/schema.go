//-------------------------------------------------------------------------
//
// pgEdge Warehouse Bootstrap
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package warehouse defines the star-schema data warehouse: dimension and
// fact tables, monthly fact partitions, analytical views, and slowly
// changing dimension maintenance.
package warehouse

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DimensionTables lists the dimension tables in creation order.
var DimensionTables = []string{
	"dim_date",
	"dim_geography",
	"dim_sales_channel",
	"dim_customer",
	"dim_product",
	"dim_employee",
}

// FactTables lists the partitioned fact tables.
var FactTables = []string{
	"fact_sales",
	"fact_inventory",
	"fact_customer_activity",
	"fact_financial",
}

// Schema SQL for the warehouse star schema. Dimension surrogate keys are
// enforced primary keys; mutable dimensions carry SCD Type 2 columns
// (effective_date, expiry_date, is_current) with a partial unique index
// guaranteeing one current version per natural key. Fact tables are
// range-partitioned on the integer date_key.
const createSchemaSQL = `
-- Date Dimension (static, seeded once)
CREATE TABLE IF NOT EXISTS dim_date (
    date_key       INTEGER PRIMARY KEY,
    full_date      DATE NOT NULL UNIQUE,
    day_of_week    INTEGER NOT NULL,
    day_name       VARCHAR(9) NOT NULL,
    day_of_month   INTEGER NOT NULL,
    day_of_year    INTEGER NOT NULL,
    week_of_year   INTEGER NOT NULL,
    month_number   INTEGER NOT NULL,
    month_name     VARCHAR(9) NOT NULL,
    quarter_number INTEGER NOT NULL,
    quarter_name   CHAR(6) NOT NULL,
    year_number    INTEGER NOT NULL,
    is_weekend     BOOLEAN NOT NULL,
    is_holiday     BOOLEAN NOT NULL
);

-- Geography Dimension (static)
CREATE TABLE IF NOT EXISTS dim_geography (
    geography_key BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    city          VARCHAR(60) NOT NULL,
    state_code    CHAR(2) NOT NULL,
    postal_code   VARCHAR(10),
    country       VARCHAR(30) NOT NULL,
    region        VARCHAR(20) NOT NULL
);

-- Sales Channel Dimension (static)
CREATE TABLE IF NOT EXISTS dim_sales_channel (
    channel_key  BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    channel_id   VARCHAR(10) NOT NULL UNIQUE,
    channel_name VARCHAR(30) NOT NULL,
    channel_type VARCHAR(20) NOT NULL,
    is_online    BOOLEAN NOT NULL
);

-- Customer Dimension (SCD Type 2)
CREATE TABLE IF NOT EXISTS dim_customer (
    customer_key   BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    customer_id    VARCHAR(20) NOT NULL,
    first_name     VARCHAR(40) NOT NULL,
    last_name      VARCHAR(40) NOT NULL,
    email          VARCHAR(100),
    phone          VARCHAR(30),
    marital_status CHAR(1),
    annual_income  NUMERIC(12,2),
    customer_since DATE NOT NULL,
    effective_date DATE NOT NULL,
    expiry_date    DATE NOT NULL DEFAULT '9999-12-31',
    is_current     BOOLEAN NOT NULL DEFAULT TRUE
);
CREATE UNIQUE INDEX IF NOT EXISTS uq_dim_customer_current
    ON dim_customer (customer_id) WHERE is_current;

-- Product Dimension (SCD Type 2)
CREATE TABLE IF NOT EXISTS dim_product (
    product_key    BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    product_id     VARCHAR(20) NOT NULL,
    product_name   VARCHAR(100) NOT NULL,
    category       VARCHAR(40) NOT NULL,
    subcategory    VARCHAR(40),
    brand          VARCHAR(40),
    unit_cost      NUMERIC(10,2) NOT NULL,
    list_price     NUMERIC(10,2) NOT NULL,
    effective_date DATE NOT NULL,
    expiry_date    DATE NOT NULL DEFAULT '9999-12-31',
    is_current     BOOLEAN NOT NULL DEFAULT TRUE
);
CREATE UNIQUE INDEX IF NOT EXISTS uq_dim_product_current
    ON dim_product (product_id) WHERE is_current;

-- Employee Dimension (SCD Type 2)
CREATE TABLE IF NOT EXISTS dim_employee (
    employee_key   BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    employee_id    VARCHAR(20) NOT NULL,
    first_name     VARCHAR(40) NOT NULL,
    last_name      VARCHAR(40) NOT NULL,
    title          VARCHAR(60),
    department     VARCHAR(40),
    hire_date      DATE NOT NULL,
    effective_date DATE NOT NULL,
    expiry_date    DATE NOT NULL DEFAULT '9999-12-31',
    is_current     BOOLEAN NOT NULL DEFAULT TRUE
);
CREATE UNIQUE INDEX IF NOT EXISTS uq_dim_employee_current
    ON dim_employee (employee_id) WHERE is_current;

-- Sales Fact (monthly range partitions on date_key)
CREATE TABLE IF NOT EXISTS fact_sales (
    date_key        INTEGER NOT NULL,
    customer_key    BIGINT NOT NULL,
    product_key     BIGINT NOT NULL,
    geography_key   BIGINT NOT NULL,
    channel_key     BIGINT NOT NULL,
    employee_key    BIGINT,
    order_number    VARCHAR(20) NOT NULL,
    quantity        INTEGER NOT NULL,
    unit_price      NUMERIC(10,2) NOT NULL,
    gross_amount    NUMERIC(12,2) NOT NULL,
    discount_amount NUMERIC(12,2) NOT NULL DEFAULT 0,
    tax_amount      NUMERIC(12,2) NOT NULL DEFAULT 0,
    net_amount      NUMERIC(12,2) NOT NULL
) PARTITION BY RANGE (date_key);

-- Inventory Fact (monthly range partitions on date_key)
CREATE TABLE IF NOT EXISTS fact_inventory (
    date_key          INTEGER NOT NULL,
    product_key       BIGINT NOT NULL,
    geography_key     BIGINT NOT NULL,
    quantity_on_hand  INTEGER NOT NULL,
    quantity_on_order INTEGER NOT NULL,
    reorder_point     INTEGER NOT NULL,
    unit_cost         NUMERIC(10,2) NOT NULL
) PARTITION BY RANGE (date_key);

-- Customer Activity Fact (monthly range partitions on date_key)
CREATE TABLE IF NOT EXISTS fact_customer_activity (
    date_key         INTEGER NOT NULL,
    customer_key     BIGINT NOT NULL,
    channel_key      BIGINT NOT NULL,
    activity_type    VARCHAR(20) NOT NULL,
    session_count    INTEGER NOT NULL,
    page_views       INTEGER NOT NULL,
    duration_seconds INTEGER NOT NULL
) PARTITION BY RANGE (date_key);

-- Financial Fact (monthly range partitions on date_key)
CREATE TABLE IF NOT EXISTS fact_financial (
    date_key      INTEGER NOT NULL,
    geography_key BIGINT NOT NULL,
    account_code  VARCHAR(10) NOT NULL,
    account_name  VARCHAR(60) NOT NULL,
    amount        NUMERIC(14,2) NOT NULL,
    budget_amount NUMERIC(14,2) NOT NULL,
    currency      CHAR(3) NOT NULL DEFAULT 'USD'
) PARTITION BY RANGE (date_key);

-- Indexes for analytical queries (propagate to partitions)
CREATE INDEX IF NOT EXISTS idx_fact_sales_date ON fact_sales(date_key);
CREATE INDEX IF NOT EXISTS idx_fact_sales_customer ON fact_sales(customer_key);
CREATE INDEX IF NOT EXISTS idx_fact_sales_product ON fact_sales(product_key);
CREATE INDEX IF NOT EXISTS idx_fact_sales_channel ON fact_sales(channel_key);

CREATE INDEX IF NOT EXISTS idx_fact_inventory_date ON fact_inventory(date_key);
CREATE INDEX IF NOT EXISTS idx_fact_inventory_product ON fact_inventory(product_key);

CREATE INDEX IF NOT EXISTS idx_fact_activity_date ON fact_customer_activity(date_key);
CREATE INDEX IF NOT EXISTS idx_fact_activity_customer ON fact_customer_activity(customer_key);

CREATE INDEX IF NOT EXISTS idx_fact_financial_date ON fact_financial(date_key);
CREATE INDEX IF NOT EXISTS idx_fact_financial_account ON fact_financial(account_code);

CREATE INDEX IF NOT EXISTS idx_dim_customer_id ON dim_customer(customer_id);
CREATE INDEX IF NOT EXISTS idx_dim_product_id ON dim_product(product_id);
CREATE INDEX IF NOT EXISTS idx_dim_product_category ON dim_product(category);
CREATE INDEX IF NOT EXISTS idx_dim_date_year ON dim_date(year_number);
`

// Drop schema SQL. Views first, then facts, then dimensions.
const dropSchemaSQL = `
DROP VIEW IF EXISTS vw_financial_summary CASCADE;
DROP VIEW IF EXISTS vw_inventory_status CASCADE;
DROP VIEW IF EXISTS vw_customer_360 CASCADE;
DROP VIEW IF EXISTS vw_product_performance CASCADE;
DROP VIEW IF EXISTS vw_monthly_sales_by_channel CASCADE;
DROP VIEW IF EXISTS vw_daily_sales_aggregation CASCADE;
DROP TABLE IF EXISTS customer_segments CASCADE;
DROP TABLE IF EXISTS fact_financial CASCADE;
DROP TABLE IF EXISTS fact_customer_activity CASCADE;
DROP TABLE IF EXISTS fact_inventory CASCADE;
DROP TABLE IF EXISTS fact_sales CASCADE;
DROP TABLE IF EXISTS dim_employee CASCADE;
DROP TABLE IF EXISTS dim_product CASCADE;
DROP TABLE IF EXISTS dim_customer CASCADE;
DROP TABLE IF EXISTS dim_sales_channel CASCADE;
DROP TABLE IF EXISTS dim_geography CASCADE;
DROP TABLE IF EXISTS dim_date CASCADE;
`

// CreateSchema creates the warehouse tables and indexes.
func CreateSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, createSchemaSQL)
	return err
}

// DropSchema drops all warehouse objects.
func DropSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, dropSchemaSQL)
	return err
}
