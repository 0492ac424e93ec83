package subject

import (
	"slices"
)

// Table is a loaded dataset. It is treated as immutable once built: callers
// must not modify the slice returned by Rows.
type Table struct {
	source  string
	rows    []Subject
	genders []Gender
	ageMin  int
	ageMax  int
}

// NewTable derives labels for every row and indexes the observed domain.
func NewTable(source string, rows []Subject) *Table {
	t := &Table{source: source, rows: rows}
	seen := make(map[Gender]bool)
	for i := range t.rows {
		t.rows[i].Derive()
		r := t.rows[i]
		if !seen[r.Gender] {
			seen[r.Gender] = true
			t.genders = append(t.genders, r.Gender)
		}
		if i == 0 || r.Age < t.ageMin {
			t.ageMin = r.Age
		}
		if i == 0 || r.Age > t.ageMax {
			t.ageMax = r.Age
		}
	}
	slices.Sort(t.genders)
	return t
}

// Source is the location the table was loaded from.
func (t *Table) Source() string { return t.source }

// Rows returns the subject records in source order.
func (t *Table) Rows() []Subject { return t.rows }

// Len is the number of subjects.
func (t *Table) Len() int { return len(t.rows) }

// Genders lists the distinct genders observed, sorted.
func (t *Table) Genders() []Gender { return slices.Clone(t.genders) }

// AgeRange is the inclusive observed age range; (0, 0) for an empty table.
func (t *Table) AgeRange() (int, int) { return t.ageMin, t.ageMax }
