package jobs

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/signalk/chart-tiles/internal/diskspace"
	"github.com/signalk/chart-tiles/internal/mbtiles"
	"github.com/signalk/chart-tiles/internal/tilecache"
	"github.com/signalk/chart-tiles/internal/tilemath"
)

// SeedDeps are the collaborators a seed run needs, injected rather than
// reached for as globals (spec.md §9 design note on explicit
// process-state structs).
type SeedDeps struct {
	Cache        *tilecache.Cache
	CacheRoot    string
	MinFreeBytes uint64
	CheckEvery   int64
	Concurrency  int
}

// pullNext wraps a tilemath.Iterator behind a mutex so a worker pool can
// share one lazy sequence as a single "pull next" primitive, per the
// cooperative-pull design note in spec.md §9.
type pullNext struct {
	mu sync.Mutex
	it tilemath.Iterator
}

func (p *pullNext) next() (tilemath.Tile, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.it()
}

// SeedCache runs the job's seed pass: a bounded worker pool pulls tiles
// from a fresh iterator and drives each through the tile cache, with
// disk-space self-cancellation and an optional MBTiles export on
// completion.
func (j *Job) SeedCache(ctx context.Context, deps SeedDeps) error {
	j.resetSeedCounters()
	j.setType(TypeSeed)
	j.setState(StateRunning)
	j.setStatus(StatusSeeding)

	pull := &pullNext{it: j.Area.Factory(j.ZMin, j.ZMax)()}
	var pulled atomic.Int64

	concurrency := deps.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < concurrency; i++ {
		g.Go(func() error {
			j.seedWorker(gctx, deps, pull, &pulled)
			return nil
		})
	}
	g.Wait()

	if done := j.downloadedTiles.Load() + j.cachedTiles.Load() + j.failedTiles.Load(); done > j.totalTiles.Load() {
		j.totalTiles.Store(done)
	}

	if j.Options.MBTiles {
		if err := j.exportMBTiles(); err != nil {
			j.log.Warn().Err(err).Str("provider", j.Provider.Identifier).Msg("jobs: mbtiles export failed")
		}
	}

	j.setStatus(StatusCompleted)
	j.setState(StateStopped)
	return nil
}

func (j *Job) seedWorker(ctx context.Context, deps SeedDeps, pull *pullNext, pulled *atomic.Int64) {
	for {
		if j.cancelRequested.Load() {
			return
		}
		if ctx.Err() != nil {
			return
		}
		tile, ok := pull.next()
		if !ok {
			return
		}

		n := pulled.Add(1)
		if n%deps.CheckEvery == 0 {
			if free, err := diskspace.FreeBytes(deps.CacheRoot); err == nil && free < deps.MinFreeBytes {
				j.log.Error().Uint64("free_bytes", free).Msg("jobs: disk space low, cancelling seed job")
				j.cancelRequested.Store(true)
			}
		}

		_, source, err := deps.Cache.GetTile(ctx, j.Provider, tile, j.Options.Refetch)
		switch {
		case err != nil:
			j.failedTiles.Add(1)
		case source == tilecache.SourceCache:
			j.cachedTiles.Add(1)
		case source == tilecache.SourceRemote:
			j.downloadedTiles.Add(1)
		default:
			j.failedTiles.Add(1)
		}

		// the estimate was low: raise totalTiles to the handled count
		done := j.downloadedTiles.Load() + j.cachedTiles.Load() + j.failedTiles.Load()
		for cur := j.totalTiles.Load(); done > cur && !j.totalTiles.CompareAndSwap(cur, done); cur = j.totalTiles.Load() {
		}
	}
}

func (j *Job) exportMBTiles() error {
	j.setStatus(StatusCreatingMB)

	path := filepath.Join(j.exportDir(), fmt.Sprintf("%s_%s.mbtiles", j.Area.Description, j.Provider.Identifier))
	meta := mbtiles.Metadata{
		Name:    j.Area.Description,
		Type:    "overlay",
		Version: "1",
		Format:  string(j.Provider.Format),
		MinZoom: j.ZMin,
		MaxZoom: j.ZMax,
	}
	export, err := mbtiles.Open(path, meta, j.log)
	if err != nil {
		return err
	}
	defer export.Close()

	it := j.Area.Factory(j.ZMin, j.ZMax)()
	for {
		tile, ok := it()
		if !ok {
			break
		}
		data, found, err := j.Provider.MBTiles.GetTile(tile.Z, tile.X, tile.Y)
		if err != nil || !found {
			continue
		}
		if err := export.PutTile(tile.Z, tile.X, tile.Y, data); err != nil {
			j.log.Warn().Err(err).Msg("jobs: mbtiles export write failed")
		}
	}
	return export.Checkpoint()
}

func (j *Job) exportDir() string {
	return filepath.Join(j.cacheRootHint, "mbtiles")
}
