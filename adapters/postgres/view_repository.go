package postgres

import (
	"context"
	"fmt"
	"time"

	"chdash/ports"

	"github.com/jmoiron/sqlx"
)

// ViewRepository appends dashboard views to dashboard_views
type ViewRepository struct {
	db *sqlx.DB
}

// NewViewRepository creates a new view repository
func NewViewRepository(db *sqlx.DB) ports.ViewRecorder {
	return &ViewRepository{db: db}
}

// RecordView inserts one audit row
func (r *ViewRepository) RecordView(ctx context.Context, view ports.DashboardView) error {
	if view.ViewedAt.IsZero() {
		view.ViewedAt = time.Now().UTC()
	}
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO dashboard_views (source, genders, age_min, age_max, risk_factor, subjects, fingerprint, viewed_at)
		VALUES (:source, :genders, :age_min, :age_max, :risk_factor, :subjects, :fingerprint, :viewed_at)
	`, view)
	if err != nil {
		return fmt.Errorf("failed to record dashboard view: %w", err)
	}
	return nil
}
