package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"chdash/domain/subject"

	"github.com/jmoiron/sqlx"
)

// insertBatchSize keeps each INSERT well under Postgres' 65535 bind limit.
const insertBatchSize = 1000

// subjectRow is the framingham_subjects row shape
type subjectRow struct {
	Gender        string          `db:"gender"`
	Age           int             `db:"age"`
	CurrentSmoker bool            `db:"current_smoker"`
	CigsPerDay    sql.NullFloat64 `db:"cigs_per_day"`
	Education     sql.NullFloat64 `db:"education"`
	BMI           float64         `db:"bmi"`
	TotChol       float64         `db:"tot_chol"`
	BPCategory    string          `db:"bp_category"`
	TenYearCHD    bool            `db:"ten_year_chd"`
}

func toRow(s subject.Subject) subjectRow {
	return subjectRow{
		Gender:        string(s.Gender),
		Age:           s.Age,
		CurrentSmoker: s.CurrentSmoker,
		CigsPerDay:    sql.NullFloat64{Float64: s.CigsPerDay, Valid: s.HasCigsPerDay},
		Education:     sql.NullFloat64{Float64: s.EducationCode, Valid: s.HasEducation},
		BMI:           s.BMI,
		TotChol:       s.TotChol,
		BPCategory:    s.BPLabel,
		TenYearCHD:    s.TenYearCHD,
	}
}

func (r subjectRow) toSubject() subject.Subject {
	return subject.Subject{
		Gender:        subject.Gender(r.Gender),
		Age:           r.Age,
		CurrentSmoker: r.CurrentSmoker,
		CigsPerDay:    r.CigsPerDay.Float64,
		HasCigsPerDay: r.CigsPerDay.Valid,
		EducationCode: r.Education.Float64,
		HasEducation:  r.Education.Valid,
		BMI:           r.BMI,
		TotChol:       r.TotChol,
		BPLabel:       r.BPCategory,
		TenYearCHD:    r.TenYearCHD,
	}
}

// SubjectRepository stores subject records in framingham_subjects
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository creates a new subject repository
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

// List returns every subject in insertion order
func (r *SubjectRepository) List(ctx context.Context) ([]subject.Subject, error) {
	var rows []subjectRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT gender, age, current_smoker, cigs_per_day, education, bmi, tot_chol, bp_category, ten_year_chd
		FROM framingham_subjects
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query subjects: %w", err)
	}

	subjects := make([]subject.Subject, len(rows))
	for i, row := range rows {
		subjects[i] = row.toSubject()
	}
	return subjects, nil
}

// ReplaceAll swaps the table contents for subjects in one transaction
func (r *SubjectRepository) ReplaceAll(ctx context.Context, subjects []subject.Subject) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `TRUNCATE framingham_subjects RESTART IDENTITY`); err != nil {
		return fmt.Errorf("failed to clear subjects: %w", err)
	}

	for start := 0; start < len(subjects); start += insertBatchSize {
		end := min(start+insertBatchSize, len(subjects))
		batch := make([]subjectRow, 0, end-start)
		for _, s := range subjects[start:end] {
			batch = append(batch, toRow(s))
		}
		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO framingham_subjects (
				gender, age, current_smoker, cigs_per_day, education, bmi, tot_chol, bp_category, ten_year_chd
			) VALUES (
				:gender, :age, :current_smoker, :cigs_per_day, :education, :bmi, :tot_chol, :bp_category, :ten_year_chd
			)`, batch)
		if err != nil {
			return fmt.Errorf("failed to insert subjects %d-%d: %w", start, end, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit subjects: %w", err)
	}
	return nil
}
