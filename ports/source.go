package ports

import (
	"context"

	"chdash/domain/subject"
)

// SubjectSource reads raw subject records from one kind of location.
type SubjectSource interface {
	// Supports reports whether the source can read the given location.
	Supports(location string) bool
	// Load reads every subject. Derived labels are filled in by the caller.
	Load(ctx context.Context, location string) ([]subject.Subject, error)
}
