package postgres

import (
	"context"
	"strings"
	"sync"

	"chdash/domain/subject"
	"chdash/internal/errors"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Opener connects to a database by DSN.
type Opener func(ctx context.Context, dsn string) (*sqlx.DB, error)

// ConnectPostgres opens and pings a Postgres connection.
func ConnectPostgres(ctx context.Context, dsn string) (*sqlx.DB, error) {
	return sqlx.ConnectContext(ctx, "postgres", dsn)
}

// Source reads subjects from the framingham_subjects table of the database
// named by a postgres:// location. Connections are kept per DSN.
type Source struct {
	open Opener

	mu  sync.Mutex
	dbs map[string]*sqlx.DB
}

// NewSource creates a Postgres subject source
func NewSource(open Opener) *Source {
	if open == nil {
		open = ConnectPostgres
	}
	return &Source{open: open, dbs: make(map[string]*sqlx.DB)}
}

// Supports accepts postgres:// and postgresql:// locations
func (s *Source) Supports(location string) bool {
	lower := strings.ToLower(location)
	return strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://")
}

// Load reads every subject from the database
func (s *Source) Load(ctx context.Context, location string) ([]subject.Subject, error) {
	db, err := s.connection(ctx, location)
	if err != nil {
		return nil, errors.DataRetrieval(redact(location), err)
	}
	subjects, err := NewSubjectRepository(db).List(ctx)
	if err != nil {
		return nil, errors.DataRetrieval(redact(location), err)
	}
	return subjects, nil
}

func (s *Source) connection(ctx context.Context, dsn string) (*sqlx.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if db, ok := s.dbs[dsn]; ok {
		return db, nil
	}
	db, err := s.open(ctx, dsn)
	if err != nil {
		return nil, err
	}
	s.dbs[dsn] = db
	return db, nil
}

// Close closes every connection the source opened
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var firstErr error
	for dsn, db := range s.dbs {
		if err := db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(s.dbs, dsn)
	}
	return firstErr
}

// redact drops credentials from a DSN before it reaches logs or errors.
func redact(dsn string) string {
	scheme, rest, ok := strings.Cut(dsn, "://")
	if !ok {
		return dsn
	}
	if at := strings.LastIndex(rest, "@"); at >= 0 {
		rest = rest[at+1:]
	}
	return scheme + "://" + rest
}
