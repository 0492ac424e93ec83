package dataset

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"chdash/domain/subject"
	"chdash/internal"
	"chdash/internal/errors"
	"chdash/ports"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Loader reads subject tables and memoizes them per source location.
// Memoized tables are shared read-only between callers.
type Loader struct {
	sources      []ports.SubjectSource
	tables       *cache.Cache
	flight       singleflight.Group
	fetchTimeout time.Duration
	log          *internal.Logger

	// generations advance on invalidation so a fetch that started before
	// it does not store its now stale table.
	mu          sync.Mutex
	generations map[string]uint64
	epoch       uint64
}

type generation struct{ epoch, key uint64 }

// NewLoader creates a loader over the given sources, tried in order. A zero
// ttl keeps tables until they are invalidated.
func NewLoader(ttl time.Duration, sources ...ports.SubjectSource) *Loader {
	expiration, cleanup := cache.NoExpiration, time.Duration(0)
	if ttl > 0 {
		expiration, cleanup = ttl, 2*ttl
	}
	return &Loader{
		sources:     sources,
		tables:      cache.New(expiration, cleanup),
		log:         internal.DefaultLogger.With("Loader"),
		generations: make(map[string]uint64),
	}
}

// WithFetchTimeout bounds each shared fetch. Fetches run detached from the
// caller's context, so this is the only deadline they observe besides the
// source's own.
func (l *Loader) WithFetchTimeout(timeout time.Duration) *Loader {
	l.fetchTimeout = timeout
	return l
}

// Load returns the table for location, fetching it on first use. Concurrent
// first loads of one location share a single fetch, which keeps running when
// the caller that started it goes away.
func (l *Loader) Load(ctx context.Context, location string) (*subject.Table, error) {
	key := cacheKey(location)
	if cached, ok := l.tables.Get(key); ok {
		return cached.(*subject.Table), nil
	}

	v, err, shared := l.flight.Do(key, func() (interface{}, error) {
		if cached, ok := l.tables.Get(key); ok {
			return cached.(*subject.Table), nil
		}
		fetchCtx := context.WithoutCancel(ctx)
		if l.fetchTimeout > 0 {
			var cancel context.CancelFunc
			fetchCtx, cancel = context.WithTimeout(fetchCtx, l.fetchTimeout)
			defer cancel()
		}
		return l.fetch(fetchCtx, location)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		l.log.Debug("Shared in-flight load of %s", location)
	}
	return v.(*subject.Table), nil
}

func (l *Loader) fetch(ctx context.Context, location string) (*subject.Table, error) {
	source, err := l.sourceFor(location)
	if err != nil {
		return nil, err
	}

	key := cacheKey(location)
	gen := l.generation(key)
	start := time.Now()
	rows, err := source.Load(ctx, location)
	if err != nil {
		l.log.Error("Failed to load %s: %v", location, err)
		if errors.IsAppError(err) {
			return nil, err
		}
		return nil, errors.DataRetrieval(location, err)
	}

	table := subject.NewTable(location, rows)
	l.mu.Lock()
	if l.generationLocked(key) == gen {
		l.tables.Set(key, table, cache.DefaultExpiration)
	} else {
		l.log.Debug("Discarded load of %s invalidated while in flight", location)
	}
	l.mu.Unlock()
	l.log.Info("Loaded %d subjects from %s in %.2fms", table.Len(), location, float64(time.Since(start).Nanoseconds())/1e6)
	return table, nil
}

func (l *Loader) sourceFor(location string) (ports.SubjectSource, error) {
	for _, s := range l.sources {
		if s.Supports(location) {
			return s, nil
		}
	}
	return nil, errors.DataRetrieval(location, fmt.Errorf("no source can read %q", location))
}

// Cached reports whether location currently has a memoized table.
func (l *Loader) Cached(location string) bool {
	_, ok := l.tables.Get(cacheKey(location))
	return ok
}

// Invalidate drops the memoized table for location. The next Load fetches
// it again.
func (l *Loader) Invalidate(location string) {
	key := cacheKey(location)
	l.mu.Lock()
	l.generations[key]++
	l.tables.Delete(key)
	l.mu.Unlock()
	l.flight.Forget(key)
	l.log.Info("Invalidated %s", location)
}

// InvalidateAll drops every memoized table.
func (l *Loader) InvalidateAll() {
	l.mu.Lock()
	l.epoch++
	l.tables.Flush()
	l.mu.Unlock()
	l.log.Info("Invalidated all cached tables")
}

func (l *Loader) generation(key string) generation {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.generationLocked(key)
}

func (l *Loader) generationLocked(key string) generation {
	return generation{epoch: l.epoch, key: l.generations[key]}
}

// Preload loads several locations concurrently and returns the first error.
func (l *Loader) Preload(ctx context.Context, locations ...string) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, location := range locations {
		g.Go(func() error {
			_, err := l.Load(ctx, location)
			return err
		})
	}
	return g.Wait()
}

func cacheKey(location string) string {
	return strings.TrimSpace(location)
}
