package analysis

import (
	"chdash/domain/subject"
)

// Split holds one measurement partitioned by CHD outcome. Values keep the
// order of the rows they came from.
type Split struct {
	NoCHD []float64 `json:"no_chd"`
	CHD   []float64 `json:"chd"`
}

// Len is the number of values across both groups.
func (s Split) Len() int { return len(s.NoCHD) + len(s.CHD) }

// SplitByCHD partitions value(row) into CHD-negative and CHD-positive groups.
func SplitByCHD(rows []subject.Subject, value func(subject.Subject) float64) Split {
	split := Split{NoCHD: []float64{}, CHD: []float64{}}
	for _, r := range rows {
		if r.TenYearCHD {
			split.CHD = append(split.CHD, value(r))
		} else {
			split.NoCHD = append(split.NoCHD, value(r))
		}
	}
	return split
}

// BMISplit partitions body-mass index by CHD outcome.
func BMISplit(rows []subject.Subject) Split {
	return SplitByCHD(rows, func(s subject.Subject) float64 { return s.BMI })
}

// CholesterolSplit partitions total cholesterol by CHD outcome.
func CholesterolSplit(rows []subject.Subject) Split {
	return SplitByCHD(rows, func(s subject.Subject) float64 { return s.TotChol })
}

// Ages returns the age of every row, in order. Fed the risk subset it gives
// the age distribution of CHD cases.
func Ages(rows []subject.Subject) []float64 {
	ages := make([]float64, len(rows))
	for i, r := range rows {
		ages[i] = float64(r.Age)
	}
	return ages
}
