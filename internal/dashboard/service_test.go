package dashboard

import (
	"context"
	"fmt"
	"net/url"
	"testing"

	"chdash/domain/subject"
	"chdash/internal/analysis"
	"chdash/internal/errors"
	"chdash/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type stubLoader struct {
	table *subject.Table
	err   error
}

func (l *stubLoader) Load(ctx context.Context, location string) (*subject.Table, error) {
	return l.table, l.err
}

type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) RecordView(ctx context.Context, view ports.DashboardView) error {
	return m.Called(ctx, view).Error(0)
}

// fakeRenderer returns the chart kind and title so tests can see dispatch
type fakeRenderer struct{}

func (fakeRenderer) RateChart(title string, rates analysis.RateTable) ([]byte, error) {
	return []byte(fmt.Sprintf("rate:%s:%d", title, len(rates))), nil
}

func (fakeRenderer) DistributionChart(title string, split analysis.Split) ([]byte, error) {
	return []byte(fmt.Sprintf("box:%s:%d", title, split.Len())), nil
}

func (fakeRenderer) Histogram(title string, values []float64) ([]byte, error) {
	return []byte(fmt.Sprintf("hist:%s:%d", title, len(values))), nil
}

func (fakeRenderer) ContentType() string { return "text/plain" }

func testTable() *subject.Table {
	return subject.NewTable("mem://chd", []subject.Subject{
		{Gender: "Male", Age: 40, CurrentSmoker: true, CigsPerDay: 20, HasCigsPerDay: true, EducationCode: 1, HasEducation: true, BMI: 26, TotChol: 230, BPLabel: "Normal", TenYearCHD: true},
		{Gender: "Male", Age: 52, EducationCode: 3, HasEducation: true, BMI: 24, TotChol: 200, BPLabel: "Hypertension Stage 1"},
		{Gender: "Female", Age: 61, CurrentSmoker: true, CigsPerDay: 5, HasCigsPerDay: true, EducationCode: 2, HasEducation: true, BMI: 29, TotChol: 260, BPLabel: "Elevated", TenYearCHD: true},
		{Gender: "Female", Age: 35, EducationCode: 4, HasEducation: true, BMI: 21, TotChol: 180, BPLabel: "Normal"},
	})
}

func TestParseFilters_Defaults(t *testing.T) {
	f, err := ParseFilters(testTable(), url.Values{})
	require.NoError(t, err)
	assert.Equal(t, []subject.Gender{"Female", "Male"}, f.Genders)
	assert.Equal(t, 35, f.AgeMin)
	assert.Equal(t, 61, f.AgeMax)
	assert.Equal(t, analysis.RiskSmoking, f.Risk)
}

func TestParseFilters(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		genders []subject.Gender
		min     int
		max     int
		risk    analysis.RiskFactor
		code    string
	}{
		{name: "repeated gender", query: "gender=Male&gender=Female", genders: []subject.Gender{"Male", "Female"}, min: 35, max: 61, risk: analysis.RiskSmoking},
		{name: "comma gender", query: "gender=Female,Male", genders: []subject.Gender{"Female", "Male"}, min: 35, max: 61, risk: analysis.RiskSmoking},
		{name: "ages and risk", query: "age_min=40&age_max=55&risk=blood_pressure", genders: []subject.Gender{"Female", "Male"}, min: 40, max: 55, risk: analysis.RiskBloodPressure},
		{name: "bad age", query: "age_min=forty", code: errors.CodeInvalidInput},
		{name: "inverted range", query: "age_min=60&age_max=40", code: errors.CodeInvalidInput},
		{name: "no gender", query: "gender=", code: errors.CodeInvalidInput},
		{name: "all checkboxes cleared", query: "gender_set=1&age_min=40", code: errors.CodeInvalidInput},
		{name: "marker with selection", query: "gender_set=1&gender=Male", genders: []subject.Gender{"Male"}, min: 35, max: 61, risk: analysis.RiskSmoking},
		{name: "unknown risk", query: "risk=diet", code: errors.CodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, err := url.ParseQuery(tt.query)
			require.NoError(t, err)

			f, err := ParseFilters(testTable(), query)
			if tt.code != "" {
				require.Error(t, err)
				assert.Equal(t, tt.code, errors.GetCode(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.genders, f.Genders)
			assert.Equal(t, tt.min, f.AgeMin)
			assert.Equal(t, tt.max, f.AgeMax)
			assert.Equal(t, tt.risk, f.Risk)
		})
	}
}

func TestService_ComputeRecordsView(t *testing.T) {
	rec := &MockRecorder{}
	rec.On("RecordView", mock.Anything, mock.MatchedBy(func(v ports.DashboardView) bool {
		return v.Source == "mem://chd" && v.Genders == "Male" && v.RiskFactor == "Smoking" &&
			v.Subjects == 2 && v.Fingerprint != "" && !v.ViewedAt.IsZero()
	})).Return(nil).Once()

	svc := NewService(&stubLoader{table: testTable()}, "mem://chd", fakeRenderer{}, rec)
	view, err := svc.Compute(context.Background(), url.Values{"gender": {"Male"}})
	require.NoError(t, err)

	assert.Equal(t, 2, view.Result.Subjects)
	assert.Equal(t, 1, view.Result.Cases)
	assert.Equal(t, []subject.Gender{"Female", "Male"}, view.Genders)
	assert.Equal(t, 35, view.AgeMin)
	assert.Equal(t, 61, view.AgeMax)
	rec.AssertExpectations(t)
}

func TestService_RecorderFailureIsNotFatal(t *testing.T) {
	rec := &MockRecorder{}
	rec.On("RecordView", mock.Anything, mock.Anything).Return(fmt.Errorf("db down"))

	svc := NewService(&stubLoader{table: testTable()}, "mem://chd", nil, rec)
	_, err := svc.Compute(context.Background(), url.Values{})
	assert.NoError(t, err)
}

func TestService_FingerprintIsStable(t *testing.T) {
	svc := NewService(&stubLoader{table: testTable()}, "mem://chd", nil, nil)
	ctx := context.Background()

	a, err := svc.Compute(ctx, url.Values{"gender": {"Male", "Female"}})
	require.NoError(t, err)
	b, err := svc.Compute(ctx, url.Values{"gender": {"Female", "Male"}})
	require.NoError(t, err)
	assert.Equal(t, a.Fingerprint, b.Fingerprint)

	c, err := svc.Compute(ctx, url.Values{"gender": {"Female"}})
	require.NoError(t, err)
	assert.NotEqual(t, a.Fingerprint, c.Fingerprint)
}

func TestService_LoaderError(t *testing.T) {
	loadErr := errors.DataRetrieval("mem://chd", fmt.Errorf("timeout"))
	svc := NewService(&stubLoader{err: loadErr}, "mem://chd", nil, nil)

	_, err := svc.Compute(context.Background(), url.Values{})
	require.Error(t, err)
	assert.Equal(t, errors.CodeDataRetrieval, errors.GetCode(err))
}

func TestService_Chart(t *testing.T) {
	svc := NewService(&stubLoader{table: testTable()}, "mem://chd", fakeRenderer{}, nil)
	ctx := context.Background()

	img, contentType, err := svc.Chart(ctx, ChartGender, url.Values{})
	require.NoError(t, err)
	assert.Equal(t, "text/plain", contentType)
	assert.Equal(t, "rate:CHD Rate by Gender:2", string(img))

	img, _, err = svc.Chart(ctx, ChartCaseAges, url.Values{})
	require.NoError(t, err)
	assert.Equal(t, "hist:Age Distribution of CHD Cases:2", string(img))

	// Risk-panel charts render even when another risk factor is selected
	img, _, err = svc.Chart(ctx, ChartBMI, url.Values{"risk": {"Smoking"}})
	require.NoError(t, err)
	assert.Equal(t, "box:BMI by CHD Outcome:4", string(img))

	img, _, err = svc.Chart(ctx, ChartBloodPressure, url.Values{})
	require.NoError(t, err)
	assert.Equal(t, "rate:CHD Rate by Blood Pressure:3", string(img))

	_, _, err = svc.Chart(ctx, "pie", url.Values{})
	require.Error(t, err)
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
}

func TestChartsFor(t *testing.T) {
	assert.Equal(t, []string{"gender", "case_ages", "education", "smoking_status", "smoking_intensity"}, ChartsFor(analysis.RiskSmoking))
	assert.Equal(t, []string{"gender", "case_ages", "education", "bmi", "cholesterol"}, ChartsFor(analysis.RiskBodyWeight))
	assert.Equal(t, []string{"gender", "case_ages", "education", "blood_pressure"}, ChartsFor(analysis.RiskBloodPressure))
	assert.Len(t, ChartNames(), 8)
}
