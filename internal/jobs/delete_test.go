package jobs

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalk/chart-tiles/internal/provider"
	"github.com/signalk/chart-tiles/internal/tilemath"
)

// fakeDeleter implements the unexported deleter interface and
// provider.MBTilesHandle so it can sit behind a ChartProvider in tests.
type fakeDeleter struct {
	tiles      []tilemath.Tile
	deleted    int
	purged     int
	vacuumed   bool
	deleteErr  error
	purgeErr   error
	vacuumErr  error
}

func (f *fakeDeleter) GetTile(z, x, y int) ([]byte, bool, error) { return nil, false, nil }
func (f *fakeDeleter) PutTile(z, x, y int, data []byte) error    { return nil }

func (f *fakeDeleter) GetMBTilesForPolygon(polys []orb.Polygon, zMin, zMax int) tilemath.Iterator {
	i := 0
	return func() (tilemath.Tile, bool) {
		if i >= len(f.tiles) {
			return tilemath.Tile{}, false
		}
		t := f.tiles[i]
		i++
		return t, true
	}
}

func (f *fakeDeleter) DeleteTilesInChunks(it tilemath.Iterator, chunkSize int, onProgress func(deleted int)) (int, error) {
	if f.deleteErr != nil {
		return 0, f.deleteErr
	}
	n := 0
	for {
		if _, ok := it(); !ok {
			break
		}
		n++
		if onProgress != nil {
			onProgress(n)
		}
	}
	f.deleted = n
	return n, nil
}

func (f *fakeDeleter) PurgeAllOrphanImages(chunkSize int, onProgress func(purged int)) (int, error) {
	if f.purgeErr != nil {
		return 0, f.purgeErr
	}
	f.purged = 3
	return 3, nil
}

func (f *fakeDeleter) Vacuum() error {
	if f.vacuumErr != nil {
		return f.vacuumErr
	}
	f.vacuumed = true
	return nil
}

func newDeleteTestJob(store *fakeDeleter, opts Options) *Job {
	p := &provider.ChartProvider{Identifier: "delete-test", MBTiles: store}
	b := tilemath.BBox{MinLon: 0, MinLat: 0, MaxLon: 10, MaxLat: 10}
	area := AreaFromBBox(b, "delete-test-area")
	return &Job{
		ID: 1, Provider: p, Area: area, ZMin: 3, ZMax: 3, Options: opts,
		log: zerolog.Nop(), state: StateStopped, status: StatusIdle,
	}
}

func TestDeleteCacheRemovesEveryMatchedTile(t *testing.T) {
	store := &fakeDeleter{tiles: []tilemath.Tile{{Z: 3, X: 0, Y: 0}, {Z: 3, X: 1, Y: 0}, {Z: 3, X: 2, Y: 0}}}
	j := newDeleteTestJob(store, Options{})

	require.NoError(t, j.DeleteCache())

	snap := j.Info()
	assert.Equal(t, StateStopped, snap.State)
	assert.Equal(t, StatusCompleted, snap.Status)
	assert.Equal(t, int64(3), snap.DeletedTiles)
	assert.Equal(t, int64(3), snap.TotalTiles)
	assert.Equal(t, 3, store.purged)
	assert.False(t, store.vacuumed, "vacuum should not run unless Options.Vacuum is set")
}

func TestDeleteCacheVacuumsWhenRequested(t *testing.T) {
	store := &fakeDeleter{tiles: []tilemath.Tile{{Z: 3, X: 0, Y: 0}}}
	j := newDeleteTestJob(store, Options{Vacuum: true})

	require.NoError(t, j.DeleteCache())

	assert.True(t, store.vacuumed)
}

func TestDeleteCacheSkipsWhenStoreDoesNotImplementDeleter(t *testing.T) {
	p := &provider.ChartProvider{Identifier: "no-delete-support", MBTiles: nil}
	b := tilemath.BBox{MinLon: 0, MinLat: 0, MaxLon: 10, MaxLat: 10}
	j := &Job{ID: 1, Provider: p, Area: AreaFromBBox(b, "no-op"), log: zerolog.Nop(), state: StateStopped, status: StatusIdle}

	require.NoError(t, j.DeleteCache())

	snap := j.Info()
	assert.Equal(t, StatusCompleted, snap.Status)
	assert.Equal(t, StateStopped, snap.State)
}

func TestDeleteCacheContinuesToPurgeAfterDeleteFailure(t *testing.T) {
	store := &fakeDeleter{
		tiles:     []tilemath.Tile{{Z: 3, X: 0, Y: 0}},
		deleteErr: assertableErr,
	}
	j := newDeleteTestJob(store, Options{})

	require.NoError(t, j.DeleteCache())
	assert.Equal(t, 3, store.purged, "purge should still run even if delete failed")
}

var assertableErr = &deleteTestError{"boom"}

type deleteTestError struct{ msg string }

func (e *deleteTestError) Error() string { return e.msg }
