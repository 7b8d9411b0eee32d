package jobs

import (
	"github.com/paulmach/orb"

	"github.com/signalk/chart-tiles/internal/tilemath"
)

// deleter is the subset of *mbtiles.Store a delete job needs. Defined
// here rather than on provider.MBTilesHandle since delete/export are job
// concerns, not part of the tile cache's narrower read/write contract.
type deleter interface {
	GetMBTilesForPolygon(polys []orb.Polygon, zMin, zMax int) tilemath.Iterator
	DeleteTilesInChunks(it tilemath.Iterator, chunkSize int, onProgress func(deleted int)) (int, error)
	PurgeAllOrphanImages(chunkSize int, onProgress func(purged int)) (int, error)
	Vacuum() error
}

const deleteChunkSize = 1000

// DeleteCache runs the job's delete pass: chunked deletion of every
// tile in the job's area already present in the store, followed by an
// orphan-image purge and an optional vacuum.
func (j *Job) DeleteCache() error {
	j.resetDeleteCounters()
	j.setType(TypeDelete)
	j.setState(StateRunning)
	j.setStatus(StatusDeleting)

	store, ok := j.Provider.MBTiles.(deleter)
	if !ok {
		j.setStatus(StatusCompleted)
		j.setState(StateStopped)
		return nil
	}

	it := store.GetMBTilesForPolygon(j.Area.Polygons(), j.ZMin, j.ZMax)
	_, err := store.DeleteTilesInChunks(it, deleteChunkSize, func(deleted int) {
		j.deletedTiles.Store(int64(deleted))
	})
	if err != nil {
		j.log.Warn().Err(err).Str("provider", j.Provider.Identifier).Msg("jobs: delete failed")
	}

	j.setStatus(StatusPurging)
	if _, err := store.PurgeAllOrphanImages(deleteChunkSize, nil); err != nil {
		j.log.Warn().Err(err).Str("provider", j.Provider.Identifier).Msg("jobs: orphan purge failed")
	}

	if j.Options.Vacuum {
		j.setStatus(StatusVacuuming)
		if err := store.Vacuum(); err != nil {
			j.log.Warn().Err(err).Str("provider", j.Provider.Identifier).Msg("jobs: vacuum failed")
		}
	}

	j.totalTiles.Store(j.deletedTiles.Load())
	j.setStatus(StatusCompleted)
	j.setState(StateStopped)
	return nil
}
