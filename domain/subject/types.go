package subject

import (
	"fmt"
	"strings"
)

// Gender is the participant's recorded sex, as labelled in the source.
type Gender string

func (g Gender) String() string { return string(g) }

// SmokingStatus is the binary smoking label derived from currentSmoker.
type SmokingStatus string

const (
	CurrentSmoker SmokingStatus = "Current Smoker"
	NonSmoker     SmokingStatus = "Non-Smoker"
)

func (s SmokingStatus) String() string { return string(s) }

// SmokingStatusFor derives the label from the currentSmoker flag.
func SmokingStatusFor(currentSmoker bool) SmokingStatus {
	if currentSmoker {
		return CurrentSmoker
	}
	return NonSmoker
}

// EducationLevel is an ordered enumeration from lowest to highest attainment.
// The zero value is the unset level and never appears in aggregates.
type EducationLevel int

const (
	EducationUnset EducationLevel = iota
	EducationSomeHighSchool
	EducationHighSchoolGED
	EducationSomeCollege
	EducationCollege
)

var educationLabels = [...]string{
	EducationUnset:          "",
	EducationSomeHighSchool: "Some High School",
	EducationHighSchoolGED:  "High School/GED",
	EducationSomeCollege:    "Some College",
	EducationCollege:        "College",
}

// EducationLevels lists the set levels in attainment order.
func EducationLevels() []EducationLevel {
	return []EducationLevel{EducationSomeHighSchool, EducationHighSchoolGED, EducationSomeCollege, EducationCollege}
}

// EducationFromCode maps the study's 1-4 education code to a level. Any other
// code, including a missing one, yields EducationUnset.
func EducationFromCode(code float64, present bool) EducationLevel {
	if !present {
		return EducationUnset
	}
	switch code {
	case 1:
		return EducationSomeHighSchool
	case 2:
		return EducationHighSchoolGED
	case 3:
		return EducationSomeCollege
	case 4:
		return EducationCollege
	}
	return EducationUnset
}

func (e EducationLevel) Valid() bool {
	return e > EducationUnset && e <= EducationCollege
}

func (e EducationLevel) Ordinal() int { return int(e) }

func (e EducationLevel) String() string {
	if e < 0 || int(e) >= len(educationLabels) {
		return ""
	}
	return educationLabels[e]
}

func (e EducationLevel) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// BPCategory is the four-band blood pressure classification, ordered by
// severity. BPUnset marks labels outside the known bands.
type BPCategory int

const (
	BPUnset BPCategory = iota
	BPNormal
	BPElevated
	BPHypertensionStage1
	BPHypertensionStage2
)

var bpLabels = [...]string{
	BPUnset:              "",
	BPNormal:             "Normal",
	BPElevated:           "Elevated",
	BPHypertensionStage1: "Hypertension Stage 1",
	BPHypertensionStage2: "Hypertension Stage 2",
}

// BPCategories lists the known bands in severity order.
func BPCategories() []BPCategory {
	return []BPCategory{BPNormal, BPElevated, BPHypertensionStage1, BPHypertensionStage2}
}

// ParseBPCategory matches a source label case-insensitively. Unknown labels
// return BPUnset and false.
func ParseBPCategory(label string) (BPCategory, bool) {
	label = strings.TrimSpace(label)
	for _, c := range BPCategories() {
		if strings.EqualFold(label, bpLabels[c]) {
			return c, true
		}
	}
	return BPUnset, false
}

func (c BPCategory) Valid() bool {
	return c > BPUnset && c <= BPHypertensionStage2
}

func (c BPCategory) Ordinal() int { return int(c) }

func (c BPCategory) String() string {
	if c < 0 || int(c) >= len(bpLabels) {
		return ""
	}
	return bpLabels[c]
}

func (c BPCategory) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// SmokingIntensity bands cigarettes per day for current smokers.
type SmokingIntensity int

const (
	IntensityUnset SmokingIntensity = iota
	IntensityLight
	IntensityModerate
	IntensityHeavy
)

// MaxCigsPerDay is the exclusive upper edge of the heavy band.
const MaxCigsPerDay = 70

var intensityLabels = [...]string{
	IntensityUnset:    "",
	IntensityLight:    "Light (1-9)",
	IntensityModerate: "Moderate (10-19)",
	IntensityHeavy:    "Heavy (20+)",
}

// SmokingIntensities lists the bands in increasing order.
func SmokingIntensities() []SmokingIntensity {
	return []SmokingIntensity{IntensityLight, IntensityModerate, IntensityHeavy}
}

// IntensityFor buckets a cigarettes-per-day count into [0,10), [10,20) and
// [20,70). Values outside [0,70) are left unbucketed.
func IntensityFor(cigsPerDay float64) SmokingIntensity {
	switch {
	case cigsPerDay < 0 || cigsPerDay >= MaxCigsPerDay:
		return IntensityUnset
	case cigsPerDay < 10:
		return IntensityLight
	case cigsPerDay < 20:
		return IntensityModerate
	default:
		return IntensityHeavy
	}
}

func (i SmokingIntensity) Valid() bool {
	return i > IntensityUnset && i <= IntensityHeavy
}

func (i SmokingIntensity) String() string {
	if i < 0 || int(i) >= len(intensityLabels) {
		return ""
	}
	return intensityLabels[i]
}

func (i SmokingIntensity) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

// Subject is one study participant.
type Subject struct {
	Gender        Gender
	Age           int
	CurrentSmoker bool
	CigsPerDay    float64
	HasCigsPerDay bool
	EducationCode float64
	HasEducation  bool
	BMI           float64
	TotChol       float64
	BPLabel       string
	TenYearCHD    bool

	// Derived at load time.
	SmokingStatus  SmokingStatus
	EducationLevel EducationLevel
	BPCategory     BPCategory
}

// Derive fills the derived label fields from the raw attributes.
func (s *Subject) Derive() {
	s.SmokingStatus = SmokingStatusFor(s.CurrentSmoker)
	s.EducationLevel = EducationFromCode(s.EducationCode, s.HasEducation)
	s.BPCategory, _ = ParseBPCategory(s.BPLabel)
}

// SmokingIntensity returns the subject's band, or IntensityUnset for
// non-smokers and for smokers without a usable count.
func (s Subject) SmokingIntensity() SmokingIntensity {
	if !s.CurrentSmoker || !s.HasCigsPerDay {
		return IntensityUnset
	}
	return IntensityFor(s.CigsPerDay)
}

func (s Subject) String() string {
	return fmt.Sprintf("%s/%d chd=%t", s.Gender, s.Age, s.TenYearCHD)
}
