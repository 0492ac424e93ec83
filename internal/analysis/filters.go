package analysis

import (
	"fmt"
	"slices"
	"strings"

	"chdash/domain/subject"
	"chdash/internal/errors"
)

// RiskFactor selects which risk panel accompanies the demographics.
type RiskFactor string

const (
	RiskSmoking       RiskFactor = "Smoking"
	RiskBodyWeight    RiskFactor = "Body Weight"
	RiskBloodPressure RiskFactor = "Blood Pressure"
)

// DefaultRiskFactor is the selector's initial choice.
const DefaultRiskFactor = RiskSmoking

// RiskFactors lists the selector's choices in display order.
func RiskFactors() []RiskFactor {
	return []RiskFactor{RiskSmoking, RiskBodyWeight, RiskBloodPressure}
}

// ParseRiskFactor matches a selector value case-insensitively. Underscores
// and hyphens stand in for spaces so "body_weight" works in query strings.
func ParseRiskFactor(value string) (RiskFactor, error) {
	norm := strings.NewReplacer("_", " ", "-", " ").Replace(strings.TrimSpace(value))
	for _, rf := range RiskFactors() {
		if strings.EqualFold(norm, string(rf)) {
			return rf, nil
		}
	}
	return "", errors.InvalidInput(fmt.Sprintf("unknown risk factor %q", value))
}

// Filters are the user's control selections.
type Filters struct {
	Genders []subject.Gender `json:"genders"`
	AgeMin  int              `json:"age_min"`
	AgeMax  int              `json:"age_max"`
	Risk    RiskFactor       `json:"risk_factor"`
}

// DefaultFilters selects every observed gender, the full observed age range
// and the default risk factor.
func DefaultFilters(table *subject.Table) Filters {
	min, max := table.AgeRange()
	return Filters{
		Genders: table.Genders(),
		AgeMin:  min,
		AgeMax:  max,
		Risk:    DefaultRiskFactor,
	}
}

// Validate rejects selections the controls cannot produce.
func (f Filters) Validate() error {
	if len(f.Genders) == 0 {
		return errors.InvalidInput("at least one gender must be selected")
	}
	if f.AgeMin > f.AgeMax {
		return errors.InvalidInput(fmt.Sprintf("age range [%d, %d] is empty", f.AgeMin, f.AgeMax))
	}
	if _, err := ParseRiskFactor(string(f.Risk)); err != nil {
		return err
	}
	return nil
}

// Normalized returns a copy with genders sorted and deduplicated, so that
// equivalent selections produce identical output.
func (f Filters) Normalized() Filters {
	genders := slices.Clone(f.Genders)
	slices.Sort(genders)
	f.Genders = slices.Compact(genders)
	return f
}

// Includes reports whether a subject passes the gender and age filters.
func (f Filters) Includes(s subject.Subject) bool {
	return s.Age >= f.AgeMin && s.Age <= f.AgeMax && slices.Contains(f.Genders, s.Gender)
}

// Filter keeps rows whose gender is selected and whose age lies within the
// inclusive range. Source order is preserved.
func Filter(rows []subject.Subject, f Filters) []subject.Subject {
	out := make([]subject.Subject, 0, len(rows))
	for _, r := range rows {
		if f.Includes(r) {
			out = append(out, r)
		}
	}
	return out
}

// RiskSubset keeps the rows with a ten-year CHD event.
func RiskSubset(rows []subject.Subject) []subject.Subject {
	out := make([]subject.Subject, 0)
	for _, r := range rows {
		if r.TenYearCHD {
			out = append(out, r)
		}
	}
	return out
}
