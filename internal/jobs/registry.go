package jobs

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/signalk/chart-tiles/internal/provider"
)

// ErrJobBusy is returned when remove() is called on a running job.
var ErrJobBusy = errors.New("jobs: job is running")

// ErrJobNotFound is returned when byId/remove reference an unknown id.
var ErrJobNotFound = errors.New("jobs: job not found")

// CreateParams describes a new job's region, zoom range, and options.
type CreateParams struct {
	Provider *provider.ChartProvider
	Area     Area
	ZMin     int
	ZMax     int
	Options  Options

	SampleGridSize       int
	SmallRegionThreshold int
	SmallRegionCountCap  int

	// IdempotencyKey, if non-empty, lets a retried create request land on
	// the job already created for the same key instead of submitting a
	// duplicate. Keys are remembered for the life of the job; once the
	// job is removed from the registry its key is forgotten too.
	IdempotencyKey string
}

// Registry is the process-wide map from job id to job. Ids are
// monotonically allocated and never reused.
type Registry struct {
	cacheRoot string
	log       zerolog.Logger

	nextID atomic.Int64

	mu      sync.RWMutex
	jobs    map[int64]*Job
	byKey map[string]*Job
}

// NewRegistry builds an empty Registry.
func NewRegistry(cacheRoot string, log zerolog.Logger) *Registry {
	return &Registry{
		cacheRoot: cacheRoot,
		log:       log.With().Str("component", "jobs").Logger(),
		jobs:      make(map[int64]*Job),
		byKey:     make(map[string]*Job),
	}
}

// Create builds a new stopped job from p, estimating totalTiles via the
// range sampling estimator (refined by counting for small regions), and
// inserts it into the registry with a fresh id. If p.IdempotencyKey is
// non-empty and already maps to a live job, that job is returned instead
// of creating a duplicate.
func (r *Registry) Create(p CreateParams) *Job {
	total := p.Area.EstimateTotal(p.ZMin, p.ZMax, p.SampleGridSize, p.SmallRegionThreshold, p.SmallRegionCountCap)

	r.mu.Lock()
	defer r.mu.Unlock()

	if p.IdempotencyKey != "" {
		if existing, ok := r.byKey[p.IdempotencyKey]; ok {
			return existing
		}
	}

	id := r.nextID.Add(1)
	j := &Job{
		ID:             id,
		Provider:       p.Provider,
		Area:           p.Area,
		Options:        p.Options,
		ZMin:           p.ZMin,
		ZMax:           p.ZMax,
		cacheRootHint:  r.cacheRoot,
		idempotencyKey: p.IdempotencyKey,
		log:            r.log.With().Int64("job_id", id).Logger(),
		typ:            TypeNone,
		state:          StateStopped,
		status:         StatusIdle,
	}
	j.totalTiles.Store(total)

	r.jobs[id] = j
	if p.IdempotencyKey != "" {
		r.byKey[p.IdempotencyKey] = j
	}
	return j
}

// List returns a snapshot of every job's info().
func (r *Registry) List() []Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Snapshot, 0, len(r.jobs))
	for _, j := range r.jobs {
		out = append(out, j.Info())
	}
	return out
}

// ByID looks up a job by id.
func (r *Registry) ByID(id int64) (*Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	j, ok := r.jobs[id]
	if !ok {
		return nil, ErrJobNotFound
	}
	return j, nil
}

// Remove deletes a stopped job from the registry. A running job refuses
// removal with ErrJobBusy; the caller must stop it first.
func (r *Registry) Remove(id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok {
		return ErrJobNotFound
	}
	if !j.IsStopped() {
		return ErrJobBusy
	}
	delete(r.jobs, id)
	if j.idempotencyKey != "" {
		delete(r.byKey, j.idempotencyKey)
	}
	return nil
}
