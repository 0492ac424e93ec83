package dashboard

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"chdash/domain/core"
	"chdash/domain/subject"
	"chdash/internal"
	"chdash/internal/analysis"
	"chdash/internal/errors"
	"chdash/ports"
)

// GenderSetParam marks a query whose gender selection is explicit, even
// when empty.
const GenderSetParam = "gender_set"

// TableLoader returns the subject table for a source location.
type TableLoader interface {
	Load(ctx context.Context, location string) (*subject.Table, error)
}

// View is one computed dashboard: the source table, the pipeline result
// and a fingerprint identifying the result.
type View struct {
	Source      string           `json:"source"`
	Genders     []subject.Gender `json:"available_genders"`
	AgeMin      int              `json:"available_age_min"`
	AgeMax      int              `json:"available_age_max"`
	Result      *analysis.Result `json:"result"`
	Fingerprint core.Hash        `json:"fingerprint"`
}

// Service connects control selections to the loader and the pipeline.
type Service struct {
	loader   TableLoader
	source   string
	renderer ports.ChartRenderer
	views    ports.ViewRecorder
	log      *internal.Logger
}

// NewService creates a dashboard service over one source. views may be nil.
func NewService(loader TableLoader, source string, renderer ports.ChartRenderer, views ports.ViewRecorder) *Service {
	return &Service{
		loader:   loader,
		source:   source,
		renderer: renderer,
		views:    views,
		log:      internal.DefaultLogger.With("Dashboard"),
	}
}

// Source is the configured dataset location
func (s *Service) Source() string {
	return s.source
}

// Genders lists the genders observed in the source, for the controls.
func (s *Service) Genders(ctx context.Context) ([]subject.Gender, error) {
	table, err := s.loader.Load(ctx, s.source)
	if err != nil {
		return nil, err
	}
	return table.Genders(), nil
}

// Compute runs the pipeline for the selections in query and records the
// view when an audit trail is configured.
func (s *Service) Compute(ctx context.Context, query url.Values) (*View, error) {
	view, err := s.compute(ctx, query, "")
	if err != nil {
		return nil, err
	}
	s.record(ctx, view)
	return view, nil
}

func (s *Service) compute(ctx context.Context, query url.Values, risk analysis.RiskFactor) (*View, error) {
	table, err := s.loader.Load(ctx, s.source)
	if err != nil {
		return nil, err
	}

	filters, err := ParseFilters(table, query)
	if err != nil {
		return nil, err
	}
	if risk != "" {
		filters.Risk = risk
	}

	result, err := analysis.Run(table.Rows(), filters)
	if err != nil {
		return nil, err
	}

	fingerprint, err := core.HashJSON(struct {
		Source string           `json:"source"`
		Result *analysis.Result `json:"result"`
	}{s.source, result})
	if err != nil {
		return nil, errors.Wrap(err, "failed to fingerprint dashboard")
	}

	min, max := table.AgeRange()
	return &View{
		Source:      s.source,
		Genders:     table.Genders(),
		AgeMin:      min,
		AgeMax:      max,
		Result:      result,
		Fingerprint: fingerprint,
	}, nil
}

func (s *Service) record(ctx context.Context, view *View) {
	if s.views == nil {
		return
	}
	f := view.Result.Filters
	genders := make([]string, len(f.Genders))
	for i, g := range f.Genders {
		genders[i] = g.String()
	}
	err := s.views.RecordView(ctx, ports.DashboardView{
		Source:      view.Source,
		Genders:     strings.Join(genders, ","),
		AgeMin:      f.AgeMin,
		AgeMax:      f.AgeMax,
		RiskFactor:  string(f.Risk),
		Subjects:    view.Result.Subjects,
		Fingerprint: view.Fingerprint.String(),
		ViewedAt:    time.Now().UTC(),
	})
	if err != nil {
		s.log.Warn("Failed to record dashboard view: %v", err)
	}
}

// ParseFilters reads control selections from query parameters. Absent
// parameters fall back to the table's defaults. Recognized parameters are
// gender (repeatable or comma separated), age_min, age_max and risk. A form
// whose checkboxes are all cleared submits no gender at all, so it sends
// gender_set to mark the selection as explicit.
func ParseFilters(table *subject.Table, query url.Values) (analysis.Filters, error) {
	f := analysis.DefaultFilters(table)

	if values, ok := query["gender"]; ok || query.Has(GenderSetParam) {
		f.Genders = nil
		for _, v := range values {
			for _, g := range strings.Split(v, ",") {
				if g = strings.TrimSpace(g); g != "" {
					f.Genders = append(f.Genders, subject.Gender(g))
				}
			}
		}
	}

	var err error
	if f.AgeMin, err = intParam(query, "age_min", f.AgeMin); err != nil {
		return f, err
	}
	if f.AgeMax, err = intParam(query, "age_max", f.AgeMax); err != nil {
		return f, err
	}

	if v := query.Get("risk"); v != "" {
		if f.Risk, err = analysis.ParseRiskFactor(v); err != nil {
			return f, err
		}
	}

	return f, f.Validate()
}

func intParam(query url.Values, name string, fallback int) (int, error) {
	v := strings.TrimSpace(query.Get(name))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.InvalidInput(fmt.Sprintf("%s must be an integer, got %q", name, v))
	}
	return n, nil
}
