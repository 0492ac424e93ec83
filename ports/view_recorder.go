package ports

import (
	"context"
	"time"
)

// DashboardView is one served dashboard computation.
type DashboardView struct {
	Source      string    `db:"source"`
	Genders     string    `db:"genders"`
	AgeMin      int       `db:"age_min"`
	AgeMax      int       `db:"age_max"`
	RiskFactor  string    `db:"risk_factor"`
	Subjects    int       `db:"subjects"`
	Fingerprint string    `db:"fingerprint"`
	ViewedAt    time.Time `db:"viewed_at"`
}

// ViewRecorder keeps an audit trail of dashboard views.
type ViewRecorder interface {
	RecordView(ctx context.Context, view DashboardView) error
}
