// Package jobs implements the seeding/deletion job engine: long-running
// background work that enumerates tiles across a region, drives a
// bounded worker pool through the tile cache, and reports live progress.
package jobs

import (
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/signalk/chart-tiles/internal/provider"
)

// Type distinguishes seed from delete jobs.
type Type string

const (
	TypeNone   Type = "none"
	TypeSeed   Type = "seed"
	TypeDelete Type = "delete"
)

// State is the job's coarse run state.
type State string

const (
	StateStopped State = "stopped"
	StateRunning State = "running"
)

// Status phase labels, emitted verbatim to snapshots so a UI can show
// live phase text.
const (
	StatusIdle       = "Idle"
	StatusSeeding    = "Seeding"
	StatusCreatingMB = "Creating MBTiles"
	StatusDeleting   = "Deleting tiles"
	StatusPurging    = "Purging orphaned images"
	StatusVacuuming  = "Vacuuming MBTiles database"
	StatusCompleted  = "Completed"
)

// Options configures seed/delete behavior.
type Options struct {
	Refetch bool // seed: bypass the cache and always refetch
	MBTiles bool // seed: export an MBTiles snapshot on completion
	Vacuum  bool // delete: vacuum the store after purging orphans
}

// Job is a long-running unit of seed or delete work over a region.
type Job struct {
	ID             int64
	Provider       *provider.ChartProvider
	Area           Area
	Options        Options
	ZMin, ZMax     int
	cacheRootHint  string
	idempotencyKey string

	log zerolog.Logger

	mu              sync.Mutex
	typ             Type
	state           State
	status          string
	cancelRequested atomic.Bool

	totalTiles      atomic.Int64
	downloadedTiles atomic.Int64
	cachedTiles     atomic.Int64
	failedTiles     atomic.Int64
	deletedTiles    atomic.Int64
}

// Snapshot is the immutable info() view of a job exposed to callers.
type Snapshot struct {
	ID              int64   `json:"id"`
	Type            Type    `json:"type"`
	State           State   `json:"state"`
	Status          string  `json:"status"`
	ProviderID      string  `json:"providerId"`
	AreaDescription string  `json:"areaDescription"`
	TotalTiles      int64   `json:"totalTiles"`
	DownloadedTiles int64   `json:"downloadedTiles"`
	CachedTiles     int64   `json:"cachedTiles"`
	FailedTiles     int64   `json:"failedTiles"`
	DeletedTiles    int64   `json:"deletedTiles"`
	Progress        float64 `json:"progress"`
}

func (j *Job) setStatus(s string) {
	j.mu.Lock()
	j.status = s
	j.mu.Unlock()
}

func (j *Job) setState(s State) {
	j.mu.Lock()
	j.state = s
	j.mu.Unlock()
}

func (j *Job) setType(t Type) {
	j.mu.Lock()
	j.typ = t
	j.mu.Unlock()
}

// Cancel requests cooperative cancellation; workers observe this at
// their next loop iteration.
func (j *Job) Cancel() {
	j.cancelRequested.Store(true)
}

// IsStopped reports whether the job's state is currently stopped, used
// by the registry to decide whether remove() may proceed.
func (j *Job) IsStopped() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.state == StateStopped
}

// Info returns an immutable progress snapshot.
func (j *Job) Info() Snapshot {
	j.mu.Lock()
	typ, state, status := j.typ, j.state, j.status
	j.mu.Unlock()

	total := j.totalTiles.Load()
	downloaded := j.downloadedTiles.Load()
	cached := j.cachedTiles.Load()
	failed := j.failedTiles.Load()
	deleted := j.deletedTiles.Load()

	var progress float64
	if total > 0 {
		switch typ {
		case TypeSeed:
			progress = float64(downloaded+cached+failed) / float64(total)
		case TypeDelete:
			progress = float64(deleted) / float64(total)
		}
	}

	return Snapshot{
		ID:              j.ID,
		Type:            typ,
		State:           state,
		Status:          status,
		ProviderID:      j.Provider.Identifier,
		AreaDescription: j.Area.Description,
		TotalTiles:      total,
		DownloadedTiles: downloaded,
		CachedTiles:     cached,
		FailedTiles:     failed,
		DeletedTiles:    deleted,
		Progress:        progress,
	}
}

func (j *Job) resetSeedCounters() {
	j.downloadedTiles.Store(0)
	j.cachedTiles.Store(0)
	j.failedTiles.Store(0)
	j.cancelRequested.Store(false)
}

func (j *Job) resetDeleteCounters() {
	j.deletedTiles.Store(0)
	j.cancelRequested.Store(false)
}
