package analysis

import (
	"slices"

	"chdash/domain/subject"
)

// CategoryRate is the CHD incidence within one category.
type CategoryRate struct {
	Category string  `json:"category"`
	Count    int     `json:"count"`
	Cases    int     `json:"cases"`
	RatePct  float64 `json:"rate_pct"`
	// RiskRank orders categories by rate (1 = highest). Only renderers read
	// it, for color choice; it never affects row order.
	RiskRank int `json:"risk_rank,omitempty"`
}

// RateTable is a sequence of category rates in presentation order.
type RateTable []CategoryRate

// Labels returns the category names in order.
func (t RateTable) Labels() []string {
	labels := make([]string, len(t))
	for i, r := range t {
		labels[i] = r.Category
	}
	return labels
}

// Percents returns the rates in order.
func (t RateTable) Percents() []float64 {
	pcts := make([]float64, len(t))
	for i, r := range t {
		pcts[i] = r.RatePct
	}
	return pcts
}

// Category is implemented by the grouping keys. Integer kinds are ordered
// enumerations sorted by ordinal; string kinds sort by label.
type Category interface {
	~int | ~string
	String() string
}

// RateByCategory groups rows by key and computes the mean CHD outcome of each
// group as a percentage. Rows for which key reports false are skipped, and
// groups without rows are absent. Groups come out in ascending key order.
func RateByCategory[K Category](rows []subject.Subject, key func(subject.Subject) (K, bool)) RateTable {
	type tally struct{ count, cases int }
	groups := make(map[K]*tally)
	for _, r := range rows {
		k, ok := key(r)
		if !ok {
			continue
		}
		g := groups[k]
		if g == nil {
			g = &tally{}
			groups[k] = g
		}
		g.count++
		if r.TenYearCHD {
			g.cases++
		}
	}

	keys := make([]K, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	table := make(RateTable, 0, len(keys))
	for _, k := range keys {
		g := groups[k]
		table = append(table, CategoryRate{
			Category: k.String(),
			Count:    g.count,
			Cases:    g.cases,
			RatePct:  float64(g.cases) / float64(g.count) * 100,
		})
	}
	return table
}

// GenderRates is the CHD rate per gender.
func GenderRates(rows []subject.Subject) RateTable {
	return RateByCategory(rows, func(s subject.Subject) (subject.Gender, bool) {
		return s.Gender, s.Gender != ""
	})
}

// EducationRates is the CHD rate per education level, in attainment order,
// with RiskRank set from the rates.
func EducationRates(rows []subject.Subject) RateTable {
	table := RateByCategory(rows, func(s subject.Subject) (subject.EducationLevel, bool) {
		return s.EducationLevel, s.EducationLevel.Valid()
	})
	rankByRisk(table)
	return table
}

// SmokingStatusRates is the CHD rate for smokers and non-smokers.
func SmokingStatusRates(rows []subject.Subject) RateTable {
	return RateByCategory(rows, func(s subject.Subject) (subject.SmokingStatus, bool) {
		return s.SmokingStatus, s.SmokingStatus != ""
	})
}

// SmokingIntensityRates restricts to current smokers and reports the CHD
// rate per cigarettes-per-day band. Smokers outside every band are dropped.
func SmokingIntensityRates(rows []subject.Subject) RateTable {
	return RateByCategory(rows, func(s subject.Subject) (subject.SmokingIntensity, bool) {
		band := s.SmokingIntensity()
		return band, band.Valid()
	})
}

// BloodPressureRates is the CHD rate per BP band, in severity order.
func BloodPressureRates(rows []subject.Subject) RateTable {
	return RateByCategory(rows, func(s subject.Subject) (subject.BPCategory, bool) {
		return s.BPCategory, s.BPCategory.Valid()
	})
}

// rankByRisk sets RiskRank without reordering the table. Ties keep
// presentation order.
func rankByRisk(table RateTable) {
	order := make([]int, len(table))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		switch {
		case table[a].RatePct > table[b].RatePct:
			return -1
		case table[a].RatePct < table[b].RatePct:
			return 1
		}
		return 0
	})
	for rank, i := range order {
		table[i].RiskRank = rank + 1
	}
}
