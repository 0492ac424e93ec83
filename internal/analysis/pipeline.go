package analysis

import (
	"chdash/domain/subject"
	"chdash/internal/errors"
)

// Demographics is the always-shown top row.
type Demographics struct {
	Gender         RateTable   `json:"gender"`
	CaseAges       []float64   `json:"case_ages"`
	CaseAgeSummary *BoxSummary `json:"case_age_summary"`
	Education      RateTable   `json:"education"`
}

// SmokingPanel is shown for the Smoking risk factor.
type SmokingPanel struct {
	Status    RateTable `json:"status"`
	Intensity RateTable `json:"intensity"`
}

// BodyWeightPanel is shown for the Body Weight risk factor.
type BodyWeightPanel struct {
	BMI                Split        `json:"bmi"`
	BMISummary         SplitSummary `json:"bmi_summary"`
	Cholesterol        Split        `json:"cholesterol"`
	CholesterolSummary SplitSummary `json:"cholesterol_summary"`
}

// BloodPressurePanel is shown for the Blood Pressure risk factor.
type BloodPressurePanel struct {
	Categories RateTable `json:"categories"`
}

// Result is everything the dashboard draws for one filter selection. Only
// the panel matching Filters.Risk is set.
type Result struct {
	Filters       Filters                 `json:"filters"`
	Subjects      int                     `json:"subjects"`
	Cases         int                     `json:"cases"`
	Demographics  Demographics            `json:"demographics"`
	Smoking       *SmokingPanel           `json:"smoking,omitempty"`
	BodyWeight    *BodyWeightPanel        `json:"body_weight,omitempty"`
	BloodPressure *BloodPressurePanel     `json:"blood_pressure,omitempty"`
	Associations  map[string]*Association `json:"associations"`
}

// Run executes the whole pipeline over rows. It keeps no state between
// calls: identical inputs give identical results.
func Run(rows []subject.Subject, f Filters) (*Result, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	f = f.Normalized()
	f.Risk, _ = ParseRiskFactor(string(f.Risk))

	filtered := Filter(rows, f)
	cases := RiskSubset(filtered)

	caseAges := Ages(cases)
	ageSummary, err := Summarize(caseAges)
	if err != nil {
		return nil, errors.Wrap(err, "failed to summarize case ages")
	}

	result := &Result{
		Filters:  f,
		Subjects: len(filtered),
		Cases:    len(cases),
		Demographics: Demographics{
			Gender:         GenderRates(filtered),
			CaseAges:       caseAges,
			CaseAgeSummary: ageSummary,
			Education:      EducationRates(filtered),
		},
		Associations: make(map[string]*Association),
	}
	result.associate("gender", result.Demographics.Gender)
	result.associate("education", result.Demographics.Education)

	switch f.Risk {
	case RiskSmoking:
		result.Smoking = &SmokingPanel{
			Status:    SmokingStatusRates(filtered),
			Intensity: SmokingIntensityRates(filtered),
		}
		result.associate("smoking_status", result.Smoking.Status)
		result.associate("smoking_intensity", result.Smoking.Intensity)

	case RiskBodyWeight:
		panel := &BodyWeightPanel{
			BMI:         BMISplit(filtered),
			Cholesterol: CholesterolSplit(filtered),
		}
		if panel.BMISummary, err = SummarizeSplit(panel.BMI); err != nil {
			return nil, errors.Wrap(err, "failed to summarize BMI")
		}
		if panel.CholesterolSummary, err = SummarizeSplit(panel.Cholesterol); err != nil {
			return nil, errors.Wrap(err, "failed to summarize cholesterol")
		}
		result.BodyWeight = panel

	case RiskBloodPressure:
		result.BloodPressure = &BloodPressurePanel{
			Categories: BloodPressureRates(filtered),
		}
		result.associate("blood_pressure", result.BloodPressure.Categories)
	}

	return result, nil
}

func (r *Result) associate(name string, rates RateTable) {
	if a := Associate(rates); a != nil {
		r.Associations[name] = a
	}
}
