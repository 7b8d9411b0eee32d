package api

import (
	"net/http"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/labstack/echo/v5"
	"github.com/paulmach/orb/geojson"

	"github.com/signalk/chart-tiles/internal/jobs"
	"github.com/signalk/chart-tiles/internal/tilemath"
)

// createJobRequest mirrors the POST /chart-tiles/cache/{id} body.
type createJobRequest struct {
	Feature *geojson.Feature `json:"feature,omitempty"`
	BBox    *[4]float64      `json:"bbox,omitempty"`
	MinZoom int              `json:"minZoom"`
	MaxZoom int              `json:"maxZoom"`
	Action  string           `json:"action"`
	Options struct {
		Refetch bool `json:"refetch"`
		MBTiles bool `json:"mbtiles"`
		Vacuum  bool `json:"vacuum"`
	} `json:"options"`
}

func (r createJobRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.MinZoom, validation.Min(0), validation.Max(tilemath.MaxZoom)),
		validation.Field(&r.MaxZoom, validation.Min(1), validation.Max(tilemath.MaxZoom)),
		validation.Field(&r.Action, validation.Required, validation.In("seed", "delete")),
	)
}

// createJob implements POST /chart-tiles/cache/{id}.
func (s *Server) createJob(c echo.Context) error {
	id := c.Param("id")
	p, err := s.providers.ByID(id)
	if err != nil {
		return c.JSON(http.StatusNotFound, errResponse{Error: err.Error()})
	}

	var req createJobRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errResponse{Error: "malformed request body"})
	}
	if err := req.Validate(); err != nil {
		return c.JSON(http.StatusBadRequest, errResponse{Error: err.Error()})
	}

	area, err := s.buildArea(req, id)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errResponse{Error: err.Error()})
	}

	job := s.registry.Create(jobs.CreateParams{
		Provider: p,
		Area:     area,
		ZMin:     req.MinZoom,
		ZMax:     req.MaxZoom,
		Options: jobs.Options{
			Refetch: req.Options.Refetch,
			MBTiles: req.Options.MBTiles,
			Vacuum:  req.Options.Vacuum,
		},
		SampleGridSize:       s.sampleGridSize,
		SmallRegionThreshold: s.smallRegionThreshold,
		SmallRegionCountCap:  s.smallRegionCountCap,
		IdempotencyKey:       c.Request().Header.Get("Idempotency-Key"),
	})

	// a fresh job (not one returned from an idempotency-key hit) still
	// needs to actually run
	if job.IsStopped() && job.Info().Status == jobs.StatusIdle {
		go s.runJob(job, req.Action)
	}

	return c.JSON(http.StatusOK, snapshotDTO(job.Info()))
}

func (s *Server) buildArea(req createJobRequest, description string) (jobs.Area, error) {
	if req.Feature != nil {
		area, _, err := jobs.AreaFromFeature(req.Feature, description)
		return area, err
	}
	if req.BBox != nil {
		b := tilemath.BBox{MinLon: req.BBox[0], MinLat: req.BBox[1], MaxLon: req.BBox[2], MaxLat: req.BBox[3]}
		return jobs.AreaFromBBox(b, description), nil
	}
	return jobs.Area{}, tilemath.ErrInvalidArea
}

func (s *Server) runJob(job *jobs.Job, action string) {
	switch action {
	case "seed":
		job.SeedCache(s.baseCtx, s.seedDeps())
	case "delete":
		job.DeleteCache()
	}
}

// listJobs implements GET /chart-tiles/cache/jobs.
func (s *Server) listJobs(c echo.Context) error {
	snaps := s.registry.List()
	out := make([]snapshotDTO, len(snaps))
	for i, snap := range snaps {
		out[i] = snapshotDTO(snap)
	}
	return c.JSON(http.StatusOK, out)
}

type controlJobRequest struct {
	Action string `json:"action"`
}

// controlJob implements POST /chart-tiles/cache/jobs/{id}.
func (s *Server) controlJob(c echo.Context) error {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return c.JSON(http.StatusNotFound, errResponse{Error: "unknown job id"})
	}
	job, err := s.registry.ByID(id)
	if err != nil {
		return c.JSON(http.StatusNotFound, errResponse{Error: err.Error()})
	}

	var req controlJobRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errResponse{Error: "malformed request body"})
	}

	switch req.Action {
	case "start":
		go s.runJob(job, "seed")
	case "delete":
		go s.runJob(job, "delete")
	case "stop":
		job.Cancel()
	case "remove":
		if err := s.registry.Remove(id); err != nil {
			return c.JSON(statusFor(err), errResponse{Error: err.Error()})
		}
	default:
		return c.JSON(http.StatusNotFound, errResponse{Error: "unrecognized action"})
	}
	return c.JSON(http.StatusOK, snapshotDTO(job.Info()))
}

// snapshotDTO is the wire shape of a job's info() snapshot.
type snapshotDTO jobs.Snapshot
