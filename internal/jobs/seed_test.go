package jobs

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalk/chart-tiles/internal/fetcher"
	"github.com/signalk/chart-tiles/internal/provider"
	"github.com/signalk/chart-tiles/internal/tilecache"
	"github.com/signalk/chart-tiles/internal/tilemath"
)

type seedFakeStore struct {
	mu    sync.Mutex
	tiles map[string][]byte
}

func newSeedFakeStore() *seedFakeStore {
	return &seedFakeStore{tiles: make(map[string][]byte)}
}

func seedTileKey(z, x, y int) string { return fmt.Sprintf("%d/%d/%d", z, x, y) }

func (f *seedFakeStore) GetTile(z, x, y int) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.tiles[seedTileKey(z, x, y)]
	return d, ok, nil
}

func (f *seedFakeStore) PutTile(z, x, y int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tiles[seedTileKey(z, x, y)] = data
	return nil
}

func (f *seedFakeStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tiles)
}

func newSeedTestCache(t *testing.T) *tilecache.Cache {
	t.Helper()
	f := fetcher.New(time.Second, 1000, 1000, zerolog.Nop())
	reg := prometheus.NewRegistry()
	return tilecache.New(f, t.TempDir(), 1000000, 0, reg, zerolog.Nop())
}

func TestSeedCacheDownloadsEveryTileInArea(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("tile-bytes"))
	}))
	defer srv.Close()

	store := newSeedFakeStore()
	p := &provider.ChartProvider{
		Identifier:        "seed-test",
		Kind:              provider.KindOnlineProxied,
		MBTiles:           store,
		RemoteURLTemplate: srv.URL + "/{z}/{x}/{y}.png",
	}
	b := tilemath.BBox{MinLon: 0, MinLat: 0, MaxLon: 10, MaxLat: 10}
	area := AreaFromBBox(b, "seed-test-area")
	wantTotal := tilemath.BBoxExactCount(b, 3, 3)

	j := &Job{
		ID: 1, Provider: p, Area: area, ZMin: 3, ZMax: 3,
		log: zerolog.Nop(), state: StateStopped, status: StatusIdle,
	}
	j.totalTiles.Store(int64(wantTotal))

	deps := SeedDeps{
		Cache:        newSeedTestCache(t),
		CacheRoot:    t.TempDir(),
		MinFreeBytes: 0,
		CheckEvery:   1000000,
		Concurrency:  4,
	}
	require.NoError(t, j.SeedCache(context.Background(), deps))

	snap := j.Info()
	assert.Equal(t, StateStopped, snap.State)
	assert.Equal(t, StatusCompleted, snap.Status)
	assert.Equal(t, int64(wantTotal), snap.DownloadedTiles+snap.CachedTiles+snap.FailedTiles)
	assert.Equal(t, wantTotal, store.count())
}

func TestSeedCacheCancelStopsWorkersBeforeAreaCompletes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(20 * time.Millisecond)
		w.Write([]byte("tile-bytes"))
	}))
	defer srv.Close()

	store := newSeedFakeStore()
	p := &provider.ChartProvider{
		Identifier:        "seed-cancel-test",
		Kind:              provider.KindOnlineProxied,
		MBTiles:           store,
		RemoteURLTemplate: srv.URL + "/{z}/{x}/{y}.png",
	}
	// a region large enough at this zoom that the slow handler above
	// guarantees the job is still running when Cancel is called
	b := tilemath.BBox{MinLon: -180, MinLat: -85, MaxLon: 180, MaxLat: 85}
	area := AreaFromBBox(b, "cancel-test-area")
	total := tilemath.BBoxExactCount(b, 8, 8)

	j := &Job{
		ID: 2, Provider: p, Area: area, ZMin: 8, ZMax: 8,
		log: zerolog.Nop(), state: StateStopped, status: StatusIdle,
	}
	j.totalTiles.Store(int64(total))

	deps := SeedDeps{
		Cache:        newSeedTestCache(t),
		CacheRoot:    t.TempDir(),
		MinFreeBytes: 0,
		CheckEvery:   1000000,
		Concurrency:  1,
	}

	done := make(chan error, 1)
	go func() { done <- j.SeedCache(context.Background(), deps) }()
	time.Sleep(50 * time.Millisecond)
	j.Cancel()
	require.NoError(t, <-done)

	snap := j.Info()
	assert.Equal(t, StateStopped, snap.State)
	handled := snap.DownloadedTiles + snap.CachedTiles + snap.FailedTiles
	assert.Less(t, int(handled), total, "cancellation should stop the job before the whole area is seeded")
}
