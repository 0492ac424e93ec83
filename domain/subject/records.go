package subject

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"chdash/internal/errors"
)

// Column names the source must provide.
const (
	ColGender        = "gender"
	ColAge           = "age"
	ColCurrentSmoker = "currentSmoker"
	ColCigsPerDay    = "cigsPerDay"
	ColEducation     = "education"
	ColBMI           = "BMI"
	ColTotChol       = "totChol"
	ColBPCategory    = "BP_Category"
	ColTenYearCHD    = "TenYearCHD"
)

// RequiredColumns lists every column FromRecords needs, in source order.
var RequiredColumns = []string{
	ColGender, ColAge, ColCurrentSmoker, ColCigsPerDay, ColEducation,
	ColBMI, ColTotChol, ColBPCategory, ColTenYearCHD,
}

var missingMarkers = map[string]bool{"": true, "na": true, "nan": true, "null": true, "<nil>": true}

// FromRecords converts a header row plus data rows (CSV or spreadsheet
// cells) into subjects. Extra columns are ignored; short rows read the
// absent cells as empty.
func FromRecords(header []string, rows [][]string) ([]Subject, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}

	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, errors.Schema(fmt.Sprintf("missing required columns: %s", strings.Join(missing, ", ")))
	}

	subjects := make([]Subject, 0, len(rows))
	for n, row := range rows {
		if isBlank(row) {
			continue
		}
		s, err := parseRow(index, row)
		if err != nil {
			// +2: one for the header, one for 1-based lines
			return nil, errors.New(errors.CodeDataRetrieval, fmt.Sprintf("malformed row at line %d: %v", n+2, err))
		}
		subjects = append(subjects, s)
	}
	return subjects, nil
}

func parseRow(index map[string]int, row []string) (Subject, error) {
	cell := func(col string) string {
		i := index[col]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var s Subject
	var err error

	s.Gender = Gender(cell(ColGender))
	if s.Gender == "" {
		return s, fmt.Errorf("%s is empty", ColGender)
	}

	age, err := requiredNumber(ColAge, cell(ColAge))
	if err != nil {
		return s, err
	}
	s.Age = int(math.Round(age))

	if s.CurrentSmoker, err = flag(ColCurrentSmoker, cell(ColCurrentSmoker)); err != nil {
		return s, err
	}
	if s.TenYearCHD, err = flag(ColTenYearCHD, cell(ColTenYearCHD)); err != nil {
		return s, err
	}
	if s.CigsPerDay, s.HasCigsPerDay, err = optionalNumber(ColCigsPerDay, cell(ColCigsPerDay)); err != nil {
		return s, err
	}
	if s.EducationCode, s.HasEducation, err = optionalNumber(ColEducation, cell(ColEducation)); err != nil {
		return s, err
	}
	if s.BMI, err = requiredNumber(ColBMI, cell(ColBMI)); err != nil {
		return s, err
	}
	if s.TotChol, err = requiredNumber(ColTotChol, cell(ColTotChol)); err != nil {
		return s, err
	}
	s.BPLabel = cell(ColBPCategory)

	return s, nil
}

func requiredNumber(col, raw string) (float64, error) {
	v, ok, err := optionalNumber(col, raw)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("%s is empty", col)
	}
	return v, nil
}

func optionalNumber(col, raw string) (float64, bool, error) {
	if missingMarkers[strings.ToLower(raw)] {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false, fmt.Errorf("%s: %q is not a number", col, raw)
	}
	return v, true, nil
}

// flag accepts 0/1 in integer or float spelling, and true/false.
func flag(col, raw string) (bool, error) {
	switch strings.ToLower(raw) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	v, err := requiredNumber(col, raw)
	if err != nil {
		return false, err
	}
	switch v {
	case 0:
		return false, nil
	case 1:
		return true, nil
	}
	return false, fmt.Errorf("%s: %v is not 0 or 1", col, v)
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
