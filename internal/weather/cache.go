package weather

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"FireGar/internal/models/domain"
	"FireGar/internal/utils/logger/sl"

	"github.com/jonboulle/clockwork"
)

// Source fetches a fresh snapshot from an upstream API.
type Source interface {
	Fetch(ctx context.Context) (*domain.WeatherSnapshot, error)
}

// CachedProvider wraps a Source with a freshness-window cache. A snapshot
// younger than the TTL is served without touching the upstream. When the
// upstream fails, the last snapshot is served annotated as stale; with no
// cache at all the failure propagates and weather fields stay blank.
type CachedProvider struct {
	source Source
	ttl    time.Duration
	clock  clockwork.Clock
	log    *slog.Logger

	mu        sync.Mutex
	cached    *domain.WeatherSnapshot
	fetchedAt time.Time
}

// NewCachedProvider creates the cache decorator around a snapshot source.
func NewCachedProvider(source Source, ttl time.Duration, clock clockwork.Clock, logger *slog.Logger) *CachedProvider {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &CachedProvider{
		source: source,
		ttl:    ttl,
		clock:  clock,
		log:    logger.With(slog.String("component", "weather_cache")),
	}
}

// GetSnapshot implements Provider.
func (p *CachedProvider) GetSnapshot(ctx context.Context, forceRefresh bool) (*domain.WeatherSnapshot, error) {
	op := "weather.CachedProvider.GetSnapshot"

	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.clock.Now()
	if !forceRefresh && p.cached != nil && now.Sub(p.fetchedAt) <= p.ttl {
		return p.copyCached(false), nil
	}

	snapshot, err := p.source.Fetch(ctx)
	if err != nil {
		if p.cached != nil {
			p.log.Warn("weather fetch failed, serving stale snapshot", sl.Err(err))
			return p.copyCached(true), nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	p.cached = snapshot
	p.fetchedAt = now
	return p.copyCached(false), nil
}

// copyCached returns a copy so callers cannot mutate the cache. Caller
// holds p.mu.
func (p *CachedProvider) copyCached(stale bool) *domain.WeatherSnapshot {
	cp := *p.cached
	cp.Stale = stale
	return &cp
}
