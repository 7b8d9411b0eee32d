// Package tilecache implements the tile-fetch cache: on a tile request,
// serve from the MBTiles-backed store if present, else fetch remotely,
// write the result back, and track per-provider hit/miss statistics.
package tilecache

import (
	"context"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/signalk/chart-tiles/internal/fetcher"
	"github.com/signalk/chart-tiles/internal/provider"
	"github.com/signalk/chart-tiles/internal/tilemath"
)

// Source reports where a served tile's bytes came from.
type Source int

const (
	SourceNone Source = iota
	SourceCache
	SourceRemote
)

// Cache coordinates the MBTiles store and the remote fetcher behind a
// single lookup-or-fetch operation, with disk-space admission control
// and per-provider statistics.
type Cache struct {
	fetcher *fetcher.Fetcher
	gate    *diskGate
	log     zerolog.Logger

	mu    sync.Mutex
	stats map[string]*providerStats

	inflight singleflight.Group
	metrics  *metrics
}

// New builds a Cache. cacheRoot is probed for free space every
// checkEvery writes; minFreeBytes is the admission threshold below which
// CachingDisabled trips (spec.md §4.D / §5). reg registers the
// Prometheus counters mirroring the per-provider statistics.
func New(f *fetcher.Fetcher, cacheRoot string, checkEvery int64, minFreeBytes uint64, reg prometheus.Registerer, log zerolog.Logger) *Cache {
	return &Cache{
		fetcher: f,
		gate:    newDiskGate(cacheRoot, checkEvery, minFreeBytes, log),
		log:     log.With().Str("component", "tilecache").Logger(),
		stats:   make(map[string]*providerStats),
		metrics: newMetrics(reg),
	}
}

func (c *Cache) statsFor(providerID string) *providerStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.stats[providerID]
	if !ok {
		s = &providerStats{}
		c.stats[providerID] = s
	}
	return s
}

// Statistics returns a copy-out snapshot of every provider's counters
// observed so far.
func (c *Cache) Statistics() map[string]Stat {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]Stat, len(c.stats))
	for id, s := range c.stats {
		out[id] = s.snapshot()
	}
	return out
}

// GetTile implements getTileFromCacheOrRemote: consult the store unless
// refetch is set, otherwise fall through to the remote fetcher, writing
// the result back into the store when caching is still enabled.
func (c *Cache) GetTile(ctx context.Context, p *provider.ChartProvider, tile tilemath.Tile, refetch bool) ([]byte, Source, error) {
	stats := c.statsFor(p.Identifier)
	stats.requests.Add(1)
	c.metrics.requests.WithLabelValues(p.Identifier).Inc()

	if !p.Proxied() {
		if p.MBTiles == nil {
			stats.failures.Add(1)
			c.metrics.failures.WithLabelValues(p.Identifier).Inc()
			return nil, SourceNone, nil
		}
		data, found, err := p.MBTiles.GetTile(tile.Z, tile.X, tile.Y)
		if err != nil {
			stats.failures.Add(1)
			c.metrics.failures.WithLabelValues(p.Identifier).Inc()
			return nil, SourceNone, err
		}
		if !found {
			stats.failures.Add(1)
			c.metrics.failures.WithLabelValues(p.Identifier).Inc()
			return nil, SourceNone, nil
		}
		stats.hits.Add(1)
		c.metrics.hits.WithLabelValues(p.Identifier).Inc()
		return data, SourceCache, nil
	}

	if !refetch {
		data, found, err := p.MBTiles.GetTile(tile.Z, tile.X, tile.Y)
		if err != nil {
			c.log.Warn().Err(err).Str("provider", p.Identifier).Msg("tilecache: store read failed")
		} else if found {
			stats.hits.Add(1)
			c.metrics.hits.WithLabelValues(p.Identifier).Inc()
			return data, SourceCache, nil
		}
	}

	key := fmt.Sprintf("%s/%d/%d/%d", p.Identifier, tile.Z, tile.X, tile.Y)
	v, err, _ := c.inflight.Do(key, func() (interface{}, error) {
		return c.fetchAndStore(ctx, p, tile)
	})
	if err != nil {
		stats.failures.Add(1)
		c.metrics.failures.WithLabelValues(p.Identifier).Inc()
		return nil, SourceNone, nil
	}
	result := v.(fetchResult)
	if !result.found {
		stats.failures.Add(1)
		c.metrics.failures.WithLabelValues(p.Identifier).Inc()
		return nil, SourceNone, nil
	}
	stats.misses.Add(1)
	c.metrics.misses.WithLabelValues(p.Identifier).Inc()
	return result.data, SourceRemote, nil
}

type fetchResult struct {
	data  []byte
	found bool
}

func (c *Cache) fetchAndStore(ctx context.Context, p *provider.ChartProvider, tile tilemath.Tile) (fetchResult, error) {
	data, found, err := c.fetcher.Fetch(ctx, p.Identifier, p.RemoteURLTemplate, p.Headers, tile.Z, tile.X, tile.Y)
	if err != nil {
		return fetchResult{}, err
	}
	if !found {
		return fetchResult{}, nil
	}
	if !c.gate.Disabled() {
		if err := p.MBTiles.PutTile(tile.Z, tile.X, tile.Y, data); err != nil {
			c.log.Warn().Err(err).Str("provider", p.Identifier).Msg("tilecache: store write failed")
		} else {
			c.gate.noteWrite()
		}
	}
	return fetchResult{data: data, found: true}, nil
}

func (s Source) String() string {
	switch s {
	case SourceCache:
		return "fromCache"
	case SourceRemote:
		return "fromRemote"
	default:
		return "none"
	}
}
