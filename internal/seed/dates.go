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

// Calendar range covered by dim_date: one row per day, inclusive.
var (
	DateRangeStart = time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	DateRangeEnd   = time.Date(2027, 12, 31, 0, 0, 0, 0, time.UTC)
)

var dayNames = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
var monthNames = []string{"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December"}

// DateRow is one dim_date row.
type DateRow struct {
	Key           int
	Date          time.Time
	DayOfWeek     int // Monday=1 .. Sunday=7
	DayName       string
	DayOfMonth    int
	DayOfYear     int
	WeekOfYear    int
	MonthNumber   int
	MonthName     string
	QuarterNumber int
	QuarterName   string
	YearNumber    int
	IsWeekend     bool
	IsHoliday     bool
}

// BuildDateRows builds the full dim_date seed: exactly one row per
// calendar date in [DateRangeStart, DateRangeEnd], keyed by YYYYMMDD.
func BuildDateRows() []DateRow {
	var rows []DateRow
	for d := DateRangeStart; !d.After(DateRangeEnd); d = d.AddDate(0, 0, 1) {
		dow := int(d.Weekday())
		if dow == 0 {
			dow = 7
		}
		_, week := d.ISOWeek()
		quarter := (int(d.Month())-1)/3 + 1

		rows = append(rows, DateRow{
			Key:           warehouse.DateKey(d),
			Date:          d,
			DayOfWeek:     dow,
			DayName:       dayNames[dow-1],
			DayOfMonth:    d.Day(),
			DayOfYear:     d.YearDay(),
			WeekOfYear:    week,
			MonthNumber:   int(d.Month()),
			MonthName:     monthNames[d.Month()-1],
			QuarterNumber: quarter,
			QuarterName:   fmt.Sprintf("%dQ%d", d.Year(), quarter),
			YearNumber:    d.Year(),
			IsWeekend:     dow >= 6,
			IsHoliday:     isHoliday(d),
		})
	}
	return rows
}

func isHoliday(d time.Time) bool {
	return (d.Month() == 1 && d.Day() == 1) ||
		(d.Month() == 7 && d.Day() == 4) ||
		(d.Month() == 12 && d.Day() == 25)
}

const dateColumns = "(date_key, full_date, day_of_week, day_name, day_of_month, " +
	"day_of_year, week_of_year, month_number, month_name, quarter_number, " +
	"quarter_name, year_number, is_weekend, is_holiday)"

// seedDates inserts the date dimension. Skips the insert when the
// dimension is already populated, keeping deployment idempotent.
func (s *Seeder) seedDates(ctx context.Context, pool *pgxpool.Pool) error {
	var count int64
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM dim_date").Scan(&count); err != nil {
		return fmt.Errorf("failed to count dim_date: %w", err)
	}
	if count > 0 {
		logging.Debug().Int64("rows", count).Msg("dim_date already seeded")
		return nil
	}

	logging.Info().Msg("Seeding dim_date")
	batch := make([]string, 0, s.batch.BatchSize)
	rows := BuildDateRows()
	for _, r := range rows {
		batch = append(batch, fmt.Sprintf("(%d, '%s', %d, '%s', %d, %d, %d, %d, '%s', %d, '%s', %d, %t, %t)",
			r.Key,
			r.Date.Format("2006-01-02"),
			r.DayOfWeek,
			r.DayName,
			r.DayOfMonth,
			r.DayOfYear,
			r.WeekOfYear,
			r.MonthNumber,
			r.MonthName,
			r.QuarterNumber,
			r.QuarterName,
			r.YearNumber,
			r.IsWeekend,
			r.IsHoliday,
		))

		if len(batch) >= s.batch.BatchSize {
			if err := datagen.ExecBatchInsert(ctx, pool, "dim_date", dateColumns, batch); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := datagen.ExecBatchInsert(ctx, pool, "dim_date", dateColumns, batch); err != nil {
		return err
	}

	logging.Info().Int("count", len(rows)).Msg("dim_date complete")
	return nil
}
