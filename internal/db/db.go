// Package db holds the tabular datasets in an in-memory SQLite database and
// computes the aggregate analyses over them.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/mattn/go-sqlite3" // registers the sqlite3 driver with database/sql

	"github.com/go-ports/lexmemory/internal/models"
)

// DB wraps an in-memory *sql.DB.
type DB struct {
	db *sql.DB
}

// Open creates an empty in-memory database and initialises the schema.
func Open() (*DB, error) {
	sqldb, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("db.Open: %w", err)
	}
	// Every connection to :memory: is a separate database.
	sqldb.SetMaxOpenConns(1)

	d := &DB{db: sqldb}
	if err := d.createSchema(); err != nil {
		_ = sqldb.Close()
		return nil, fmt.Errorf("db.Open createSchema: %w", err)
	}
	return d, nil
}

// Close closes the underlying database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// ---------------------------------------------------------------------------
// Schema
// ---------------------------------------------------------------------------

func (d *DB) createSchema() error {
	stmts := []string{
		`CREATE TABLE velocity_metrics (
			rowid       INTEGER PRIMARY KEY AUTOINCREMENT,
			area        TEXT NOT NULL,
			period      TEXT NOT NULL,
			metric_type TEXT NOT NULL,
			value       REAL
		)`,
		`CREATE TABLE transplants (
			rowid               INTEGER PRIMARY KEY AUTOINCREMENT,
			id                  TEXT NOT NULL,
			institution         TEXT NOT NULL,
			origin_country      TEXT NOT NULL,
			target_area         TEXT NOT NULL,
			adoption_year       TEXT NOT NULL,
			success_level       TEXT NOT NULL,
			adaptation_required TEXT NOT NULL
		)`,
		`CREATE TABLE crisis_periods (
			rowid               INTEGER PRIMARY KEY AUTOINCREMENT,
			id                  TEXT NOT NULL,
			name                TEXT NOT NULL,
			crisis_type         TEXT NOT NULL,
			severity_level      TEXT NOT NULL,
			acceleration_factor REAL
		)`,
		`CREATE INDEX idx_velocity_area ON velocity_metrics(area)`,
		`CREATE INDEX idx_transplants_origin ON transplants(origin_country)`,
	}

	for _, s := range stmts {
		if _, err := d.db.Exec(s); err != nil {
			return fmt.Errorf("createSchema exec: %w\nSQL: %s", err, s)
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Load
// ---------------------------------------------------------------------------

// Load inserts the aggregate datasets of corpus in one transaction.
func (d *DB) Load(ctx context.Context, corpus *models.Corpus) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("db.Load: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, v := range corpus.Velocity {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO velocity_metrics (area, period, metric_type, value) VALUES (?, ?, ?, ?)`,
			v.LegalArea, v.Period, v.MetricType, nullFloat(v.Value),
		); err != nil {
			return fmt.Errorf("db.Load velocity_metrics: %w", err)
		}
	}

	for _, t := range corpus.Transplants {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO transplants (
				id, institution, origin_country, target_area,
				adoption_year, success_level, adaptation_required
			) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			t.ID, t.Institution, t.OriginCountry, t.TargetArea,
			t.AdoptionYear, t.SuccessLevel, t.AdaptationRequired,
		); err != nil {
			return fmt.Errorf("db.Load transplants: %w", err)
		}
	}

	for _, cp := range corpus.Crises {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO crisis_periods (id, name, crisis_type, severity_level, acceleration_factor)
			VALUES (?, ?, ?, ?, ?)`,
			cp.ID, cp.Name, cp.CrisisType, cp.SeverityLevel, parseFloat(cp.AccelerationFactor),
		); err != nil {
			return fmt.Errorf("db.Load crisis_periods: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("db.Load commit: %w", err)
	}
	return nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func parseFloat(s string) sql.NullFloat64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: f, Valid: true}
}

// ---------------------------------------------------------------------------
// Aggregates
// ---------------------------------------------------------------------------

// Velocity summarizes velocity metrics, optionally restricted to one legal
// area (exact match).
func (d *DB) Velocity(ctx context.Context, area string) (*models.VelocitySummary, error) {
	where, args := "", []any{}
	if area != "" {
		where, args = "WHERE area = ?", []any{area}
	}

	out := &models.VelocitySummary{LegalArea: orAll(area)}
	detail := &models.VelocityDetail{}
	err := d.db.QueryRowContext(ctx,
		`SELECT COUNT(*),
		        COUNT(DISTINCT NULLIF(period, '')),
		        COUNT(DISTINCT NULLIF(area, ''))
		 FROM velocity_metrics `+where, // #nosec G202 -- where clause is hardcoded; values flow through ? bound parameters
		args...,
	).Scan(&out.TotalMetrics, &detail.PeriodsAnalyzed, &detail.AreasCovered)
	if err != nil {
		return nil, fmt.Errorf("db.Velocity: %w", err)
	}
	if out.TotalMetrics == 0 {
		out.Error = "No velocity metrics available"
		return out, nil
	}

	if detail.MetricTypes, err = d.countBy(ctx, "velocity_metrics", "metric_type", where, args); err != nil {
		return nil, fmt.Errorf("db.Velocity: %w", err)
	}
	out.Detail = detail
	out.KeyInsights = []string{}

	if detail.MetricTypes["Reform_Frequency"] > 0 {
		var avg sql.NullFloat64
		cond := "WHERE metric_type = 'Reform_Frequency'"
		if where != "" {
			cond += " AND area = ?"
		}
		err := d.db.QueryRowContext(ctx,
			`SELECT AVG(value) FROM velocity_metrics `+cond, // #nosec G202 -- condition is hardcoded
			args...,
		).Scan(&avg)
		if err != nil {
			return nil, fmt.Errorf("db.Velocity: %w", err)
		}
		if avg.Valid {
			out.KeyInsights = append(out.KeyInsights,
				fmt.Sprintf("Frecuencia promedio de reformas: %.2f", avg.Float64))
		}
	}
	return out, nil
}

// Transplants summarizes legal transplants, optionally restricted to one
// origin country (exact match).
func (d *DB) Transplants(ctx context.Context, origin string) (*models.TransplantSummary, error) {
	where, args := "", []any{}
	if origin != "" {
		where, args = "WHERE origin_country = ?", []any{origin}
	}

	out := &models.TransplantSummary{OriginCountry: orAll(origin)}
	var high int
	err := d.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(success_level = 'High'), 0)
		 FROM transplants `+where, // #nosec G202 -- where clause is hardcoded
		args...,
	).Scan(&out.TotalTransplants, &high)
	if err != nil {
		return nil, fmt.Errorf("db.Transplants: %w", err)
	}
	if out.TotalTransplants == 0 {
		out.Error = "No transplant data available"
		return out, nil
	}

	if out.SuccessAnalysis, err = d.countBy(ctx, "transplants", "success_level", where, args); err != nil {
		return nil, fmt.Errorf("db.Transplants: %w", err)
	}
	if out.AdaptationPatterns, err = d.countBy(ctx, "transplants", "adaptation_required", where, args); err != nil {
		return nil, fmt.Errorf("db.Transplants: %w", err)
	}
	rate := float64(high) / float64(out.TotalTransplants) * 100
	out.KeyInsights = []string{fmt.Sprintf("Tasa de éxito alto: %.1f%%", rate)}
	return out, nil
}

// CrisisImpact summarizes crisis periods whose type contains crisisType
// (case-sensitive substring).
func (d *DB) CrisisImpact(ctx context.Context, crisisType string) (*models.CrisisSummary, error) {
	where, args := "", []any{}
	if crisisType != "" {
		where, args = "WHERE instr(crisis_type, ?) > 0", []any{crisisType}
	}

	out := &models.CrisisSummary{CrisisTypeFilter: orAll(crisisType)}
	var avg, maxAcc sql.NullFloat64
	err := d.db.QueryRowContext(ctx,
		`SELECT COUNT(*), AVG(acceleration_factor), MAX(acceleration_factor)
		 FROM crisis_periods `+where, // #nosec G202 -- where clause is hardcoded
		args...,
	).Scan(&out.TotalCrises, &avg, &maxAcc)
	if err != nil {
		return nil, fmt.Errorf("db.CrisisImpact: %w", err)
	}
	if out.TotalCrises == 0 {
		out.Error = "No crisis data available"
		return out, nil
	}

	impact := &models.CrisisImpactDetail{}
	out.KeyInsights = []string{}
	if avg.Valid {
		impact.AvgAcceleration = &avg.Float64
		impact.MaxAcceleration = &maxAcc.Float64
		out.KeyInsights = append(out.KeyInsights,
			fmt.Sprintf("Factor de aceleración promedio: %.2f", avg.Float64))
	}
	if impact.SeverityDistribution, err = d.countBy(ctx, "crisis_periods", "severity_level", where, args); err != nil {
		return nil, fmt.Errorf("db.CrisisImpact: %w", err)
	}
	out.ImpactSummary = impact
	return out, nil
}

// countBy returns the non-empty values of column with their row counts.
// table, column and where are trusted constants.
func (d *DB) countBy(ctx context.Context, table, column, where string, args []any) (map[string]int, error) {
	cond := "WHERE " + column + " <> ''"
	if where != "" {
		cond = where + " AND " + column + " <> ''"
	}
	q := "SELECT " + column + ", COUNT(*) FROM " + table + " " + cond + " GROUP BY " + column // #nosec G202 -- identifiers are hardcoded by callers; values flow through ? bound parameters

	rows, err := d.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var value string
		var n int
		if err := rows.Scan(&value, &n); err != nil {
			return nil, err
		}
		out[value] = n
	}
	return out, rows.Err()
}

func orAll(filter string) string {
	if filter == "" {
		return models.AllFilter
	}
	return filter
}
