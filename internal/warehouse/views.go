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
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ViewDefinition pairs a view name with its CREATE statement.
type ViewDefinition struct {
	Name        string
	Description string
	SQL         string
}

// Views lists every analytical view in creation order. All views are
// read-only and deterministic given frozen fact and dimension rows.
var Views = []ViewDefinition{
	{
		Name:        "vw_daily_sales_aggregation",
		Description: "Per-day sales totals across all channels",
		SQL: `
CREATE OR REPLACE VIEW vw_daily_sales_aggregation AS
SELECT
    d.date_key,
    d.full_date,
    d.day_name,
    d.is_weekend,
    COUNT(DISTINCT f.order_number) AS order_count,
    COUNT(DISTINCT f.customer_key) AS customer_count,
    SUM(f.quantity)                AS units_sold,
    SUM(f.gross_amount)            AS gross_amount,
    SUM(f.discount_amount)         AS discount_amount,
    SUM(f.net_amount)              AS net_amount
FROM fact_sales f
JOIN dim_date d ON d.date_key = f.date_key
GROUP BY d.date_key, d.full_date, d.day_name, d.is_weekend`,
	},
	{
		Name:        "vw_monthly_sales_by_channel",
		Description: "Monthly sales broken down by sales channel",
		SQL: `
CREATE OR REPLACE VIEW vw_monthly_sales_by_channel AS
SELECT
    d.year_number,
    d.month_number,
    d.month_name,
    c.channel_name,
    c.is_online,
    COUNT(DISTINCT f.order_number) AS order_count,
    SUM(f.net_amount)              AS net_amount,
    AVG(f.net_amount)              AS avg_order_amount
FROM fact_sales f
JOIN dim_date d          ON d.date_key = f.date_key
JOIN dim_sales_channel c ON c.channel_key = f.channel_key
GROUP BY d.year_number, d.month_number, d.month_name, c.channel_name, c.is_online`,
	},
	{
		Name:        "vw_product_performance",
		Description: "Per-product revenue with category rank",
		// Sales join on the surrogate key of whatever version they were
		// recorded against, then roll up by natural key so expired
		// versions keep contributing; attributes come from the current
		// version.
		SQL: `
CREATE OR REPLACE VIEW vw_product_performance AS
SELECT
    p.product_id,
    p.product_name,
    p.category,
    p.brand,
    SUM(f.quantity)   AS units_sold,
    SUM(f.net_amount) AS net_amount,
    SUM(f.net_amount) - SUM(f.quantity * p.unit_cost) AS gross_margin,
    RANK() OVER (PARTITION BY p.category ORDER BY SUM(f.net_amount) DESC) AS category_rank
FROM fact_sales f
JOIN dim_product v ON v.product_key = f.product_key
JOIN dim_product p ON p.product_id = v.product_id AND p.is_current
GROUP BY p.product_id, p.product_name, p.category, p.brand, p.unit_cost`,
	},
	{
		Name:        "vw_customer_360",
		Description: "Current customers with purchase and activity rollups",
		// Each fact is aggregated to the natural key in its own subquery
		// before the join. Joining both facts in one FROM clause would
		// fan sales rows out across activity rows and inflate every SUM.
		SQL: `
CREATE OR REPLACE VIEW vw_customer_360 AS
SELECT
    c.customer_id,
    c.first_name,
    c.last_name,
    c.customer_since,
    COALESCE(s.lifetime_orders, 0)     AS lifetime_orders,
    COALESCE(s.lifetime_net_amount, 0) AS lifetime_net_amount,
    s.last_purchase_date,
    COALESCE(a.total_sessions, 0)      AS total_sessions
FROM dim_customer c
LEFT JOIN (
    SELECT
        v.customer_id,
        COUNT(DISTINCT f.order_number) AS lifetime_orders,
        SUM(f.net_amount)              AS lifetime_net_amount,
        MAX(d.full_date)               AS last_purchase_date
    FROM fact_sales f
    JOIN dim_customer v ON v.customer_key = f.customer_key
    JOIN dim_date d     ON d.date_key = f.date_key
    GROUP BY v.customer_id
) s ON s.customer_id = c.customer_id
LEFT JOIN (
    SELECT
        v.customer_id,
        SUM(f.session_count) AS total_sessions
    FROM fact_customer_activity f
    JOIN dim_customer v ON v.customer_key = f.customer_key
    GROUP BY v.customer_id
) a ON a.customer_id = c.customer_id
WHERE c.is_current`,
	},
	{
		Name:        "vw_inventory_status",
		Description: "Latest inventory position per product and location",
		SQL: `
CREATE OR REPLACE VIEW vw_inventory_status AS
SELECT
    p.product_id,
    p.product_name,
    g.city,
    g.state_code,
    i.date_key,
    i.quantity_on_hand,
    i.quantity_on_order,
    i.reorder_point,
    CASE
        WHEN i.quantity_on_hand <= i.reorder_point THEN 'REORDER'
        WHEN i.quantity_on_hand <= i.reorder_point * 2 THEN 'LOW'
        ELSE 'OK'
    END AS stock_status
FROM (
    SELECT DISTINCT ON (product_key, geography_key)
        date_key, product_key, geography_key,
        quantity_on_hand, quantity_on_order, reorder_point
    FROM fact_inventory
    ORDER BY product_key, geography_key, date_key DESC
) i
JOIN dim_product p   ON p.product_key = i.product_key AND p.is_current
JOIN dim_geography g ON g.geography_key = i.geography_key`,
	},
	{
		Name:        "vw_financial_summary",
		Description: "Quarterly account totals with budget variance",
		SQL: `
CREATE OR REPLACE VIEW vw_financial_summary AS
SELECT
    d.year_number,
    d.quarter_number,
    d.quarter_name,
    f.account_code,
    f.account_name,
    SUM(f.amount)        AS actual_amount,
    SUM(f.budget_amount) AS budget_amount,
    SUM(f.amount) - SUM(f.budget_amount) AS budget_variance
FROM fact_financial f
JOIN dim_date d ON d.date_key = f.date_key
GROUP BY d.year_number, d.quarter_number, d.quarter_name, f.account_code, f.account_name`,
	},
}

// CreateViews creates or replaces all analytical views.
func CreateViews(ctx context.Context, pool *pgxpool.Pool) error {
	for _, v := range Views {
		if _, err := pool.Exec(ctx, v.SQL); err != nil {
			return fmt.Errorf("failed to create view %s: %w", v.Name, err)
		}
	}
	return nil
}

// ViewNames returns the names of all analytical views.
func ViewNames() []string {
	names := make([]string, 0, len(Views))
	for _, v := range Views {
		names = append(names, v.Name)
	}
	return names
}
