// Package api is the thin HTTP adapter surface the core exposes to the
// routing layer: tile GETs, job creation, job listing, and job control,
// plus a Prometheus /metrics endpoint.
package api

import (
	"context"

	"github.com/labstack/echo/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/signalk/chart-tiles/internal/jobs"
	"github.com/signalk/chart-tiles/internal/provider"
	"github.com/signalk/chart-tiles/internal/tilecache"
)

// Server wires the core components behind the HTTP surface.
type Server struct {
	Echo *echo.Echo

	providers provider.Lookup
	cache     *tilecache.Cache
	registry  *jobs.Registry
	baseCtx   context.Context
	log       zerolog.Logger

	cacheRoot             string
	fetchConcurrency      int
	sampleGridSize        int
	smallRegionThreshold  int
	smallRegionCountCap   int
	diskCheckEvery        int64
	diskMinFreeBytes      uint64
}

// Deps bundles the Server's collaborators.
type Deps struct {
	Providers            provider.Lookup
	Cache                *tilecache.Cache
	Registry             *jobs.Registry
	CacheRoot            string
	SeedConcurrency      int
	SampleGridSize       int
	SmallRegionThreshold int
	SmallRegionCountCap  int
	DiskCheckEvery       int64
	DiskMinFreeBytes     uint64
	Log                  zerolog.Logger
}

// New builds a Server and registers its routes on a fresh echo instance.
func New(ctx context.Context, d Deps) *Server {
	e := echo.New()
	e.JSONSerializer = jsonSerializer{}
	e.HideBanner = true

	s := &Server{
		Echo:                 e,
		providers:            d.Providers,
		cache:                d.Cache,
		registry:             d.Registry,
		baseCtx:              ctx,
		log:                  d.Log.With().Str("component", "api").Logger(),
		cacheRoot:            d.CacheRoot,
		fetchConcurrency:     d.SeedConcurrency,
		sampleGridSize:       d.SampleGridSize,
		smallRegionThreshold: d.SmallRegionThreshold,
		smallRegionCountCap:  d.SmallRegionCountCap,
		diskCheckEvery:       d.DiskCheckEvery,
		diskMinFreeBytes:     d.DiskMinFreeBytes,
	}

	e.GET("/chart-tiles/:id/:z/:x/:y", s.getTile)
	e.POST("/chart-tiles/cache/:id", s.createJob)
	e.GET("/chart-tiles/cache/jobs", s.listJobs)
	e.POST("/chart-tiles/cache/jobs/:id", s.controlJob)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return s
}

func (s *Server) seedDeps() jobs.SeedDeps {
	return jobs.SeedDeps{
		Cache:        s.cache,
		CacheRoot:    s.cacheRoot,
		MinFreeBytes: s.diskMinFreeBytes,
		CheckEvery:   s.diskCheckEvery,
		Concurrency:  s.fetchConcurrency,
	}
}
