package dashboard

import (
	"context"
	"fmt"
	"net/url"
	"slices"

	"chdash/internal/analysis"
	"chdash/internal/errors"
)

// Chart names served by Chart. Risk-panel charts force their risk factor so
// they render regardless of the current selector value.
const (
	ChartGender           = "gender"
	ChartCaseAges         = "case_ages"
	ChartEducation        = "education"
	ChartSmokingStatus    = "smoking_status"
	ChartSmokingIntensity = "smoking_intensity"
	ChartBMI              = "bmi"
	ChartCholesterol      = "cholesterol"
	ChartBloodPressure    = "blood_pressure"
)

type chartDef struct {
	title string
	risk  analysis.RiskFactor
	draw  func(s *Service, title string, r *analysis.Result) ([]byte, error)
}

var charts = map[string]chartDef{
	ChartGender: {"CHD Rate by Gender", "", func(s *Service, title string, r *analysis.Result) ([]byte, error) {
		return s.renderer.RateChart(title, r.Demographics.Gender)
	}},
	ChartCaseAges: {"Age Distribution of CHD Cases", "", func(s *Service, title string, r *analysis.Result) ([]byte, error) {
		return s.renderer.Histogram(title, r.Demographics.CaseAges)
	}},
	ChartEducation: {"CHD Rate by Education", "", func(s *Service, title string, r *analysis.Result) ([]byte, error) {
		return s.renderer.RateChart(title, r.Demographics.Education)
	}},
	ChartSmokingStatus: {"CHD Rate by Smoking Status", analysis.RiskSmoking, func(s *Service, title string, r *analysis.Result) ([]byte, error) {
		return s.renderer.RateChart(title, r.Smoking.Status)
	}},
	ChartSmokingIntensity: {"CHD Rate by Cigarettes per Day", analysis.RiskSmoking, func(s *Service, title string, r *analysis.Result) ([]byte, error) {
		return s.renderer.RateChart(title, r.Smoking.Intensity)
	}},
	ChartBMI: {"BMI by CHD Outcome", analysis.RiskBodyWeight, func(s *Service, title string, r *analysis.Result) ([]byte, error) {
		return s.renderer.DistributionChart(title, r.BodyWeight.BMI)
	}},
	ChartCholesterol: {"Total Cholesterol by CHD Outcome", analysis.RiskBodyWeight, func(s *Service, title string, r *analysis.Result) ([]byte, error) {
		return s.renderer.DistributionChart(title, r.BodyWeight.Cholesterol)
	}},
	ChartBloodPressure: {"CHD Rate by Blood Pressure", analysis.RiskBloodPressure, func(s *Service, title string, r *analysis.Result) ([]byte, error) {
		return s.renderer.RateChart(title, r.BloodPressure.Categories)
	}},
}

// ChartNames lists every chart Chart can draw, sorted.
func ChartNames() []string {
	names := make([]string, 0, len(charts))
	for name := range charts {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ChartsFor lists the charts shown for a risk factor: the demographic row
// first, then the risk panel.
func ChartsFor(risk analysis.RiskFactor) []string {
	top := []string{ChartGender, ChartCaseAges, ChartEducation}
	switch risk {
	case analysis.RiskSmoking:
		return append(top, ChartSmokingStatus, ChartSmokingIntensity)
	case analysis.RiskBodyWeight:
		return append(top, ChartBMI, ChartCholesterol)
	case analysis.RiskBloodPressure:
		return append(top, ChartBloodPressure)
	}
	return top
}

// Chart renders one named chart for the selections in query and returns the
// image with its content type.
func (s *Service) Chart(ctx context.Context, name string, query url.Values) ([]byte, string, error) {
	def, ok := charts[name]
	if !ok {
		return nil, "", errors.NotFound(fmt.Sprintf("chart %q", name))
	}
	if s.renderer == nil {
		return nil, "", errors.InternalError("no chart renderer configured")
	}

	view, err := s.compute(ctx, query, def.risk)
	if err != nil {
		return nil, "", err
	}

	img, err := def.draw(s, def.title, view.Result)
	if err != nil {
		return nil, "", errors.Wrapf(err, "failed to render chart %s", name)
	}
	return img, s.renderer.ContentType(), nil
}
