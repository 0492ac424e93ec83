package migration

import (
	"context"

	"chdash/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in order. Every statement is
// idempotent, so Run is safe on every boot.
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createSubjectsTable(ctx, db); err != nil {
		return errors.Wrap(errors.WithCode(errors.CodeDatabaseError, err), "failed to create framingham_subjects table")
	}

	if err := r.createDashboardViewsTable(ctx, db); err != nil {
		return errors.Wrap(errors.WithCode(errors.CodeDatabaseError, err), "failed to create dashboard_views table")
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(errors.WithCode(errors.CodeDatabaseError, err), "failed to create indexes")
	}

	return nil
}

func (r *MigrationRunner) createSubjectsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS framingham_subjects (
			id BIGSERIAL PRIMARY KEY,
			gender VARCHAR(32) NOT NULL,
			age INTEGER NOT NULL,
			current_smoker BOOLEAN NOT NULL,
			cigs_per_day DOUBLE PRECISION,
			education DOUBLE PRECISION,
			bmi DOUBLE PRECISION NOT NULL,
			tot_chol DOUBLE PRECISION NOT NULL,
			bp_category VARCHAR(64) NOT NULL DEFAULT '',
			ten_year_chd BOOLEAN NOT NULL
		)
	`)
	return err
}

func (r *MigrationRunner) createDashboardViewsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS dashboard_views (
			id BIGSERIAL PRIMARY KEY,
			source TEXT NOT NULL,
			genders TEXT NOT NULL,
			age_min INTEGER NOT NULL,
			age_max INTEGER NOT NULL,
			risk_factor VARCHAR(32) NOT NULL,
			subjects INTEGER NOT NULL,
			fingerprint VARCHAR(64) NOT NULL,
			viewed_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_framingham_subjects_gender_age ON framingham_subjects(gender, age)`,
		`CREATE INDEX IF NOT EXISTS idx_dashboard_views_viewed_at ON dashboard_views(viewed_at DESC)`,
	}
	for _, stmt := range indexes {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
