package jobs

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/signalk/chart-tiles/internal/provider"
)

func newTestJob() *Job {
	return &Job{
		ID:       1,
		Provider: &provider.ChartProvider{Identifier: "test-provider"},
		Area:     Area{Description: "test-area"},
		typ:      TypeNone,
		state:    StateStopped,
		status:   StatusIdle,
	}
}

func TestInfoSeedProgressReflectsCompletedPlusFailed(t *testing.T) {
	j := newTestJob()
	j.setType(TypeSeed)
	j.totalTiles.Store(10)
	j.downloadedTiles.Store(3)
	j.cachedTiles.Store(2)
	j.failedTiles.Store(1)

	snap := j.Info()
	assert.InDelta(t, 0.6, snap.Progress, 1e-9)
	assert.Equal(t, TypeSeed, snap.Type)
}

func TestInfoDeleteProgressReflectsDeletedOverTotal(t *testing.T) {
	j := newTestJob()
	j.setType(TypeDelete)
	j.totalTiles.Store(10)
	j.deletedTiles.Store(4)

	snap := j.Info()
	assert.InDelta(t, 0.4, snap.Progress, 1e-9)
}

func TestInfoZeroTotalGivesZeroProgress(t *testing.T) {
	j := newTestJob()
	j.setType(TypeSeed)

	snap := j.Info()
	assert.Equal(t, 0.0, snap.Progress)
}

func TestIsStoppedTracksStateAndCancelSetsFlag(t *testing.T) {
	j := newTestJob()
	assert.True(t, j.IsStopped())
	j.setState(StateRunning)
	assert.False(t, j.IsStopped())
	j.Cancel()
	assert.True(t, j.cancelRequested.Load())
}

func TestResetSeedCountersClearsCancelAndCounts(t *testing.T) {
	j := newTestJob()
	j.downloadedTiles.Store(5)
	j.cachedTiles.Store(5)
	j.failedTiles.Store(5)
	j.cancelRequested.Store(true)

	j.resetSeedCounters()

	assert.Equal(t, int64(0), j.downloadedTiles.Load())
	assert.Equal(t, int64(0), j.cachedTiles.Load())
	assert.Equal(t, int64(0), j.failedTiles.Load())
	assert.False(t, j.cancelRequested.Load())
}

func TestResetDeleteCountersClearsCancelAndCount(t *testing.T) {
	j := newTestJob()
	j.deletedTiles.Store(5)
	j.cancelRequested.Store(true)

	j.resetDeleteCounters()

	assert.Equal(t, int64(0), j.deletedTiles.Load())
	assert.False(t, j.cancelRequested.Load())
}
