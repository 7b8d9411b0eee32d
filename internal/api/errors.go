package api

import (
	"errors"
	"net/http"

	"github.com/signalk/chart-tiles/internal/jobs"
	"github.com/signalk/chart-tiles/internal/provider"
	"github.com/signalk/chart-tiles/internal/tilemath"
)

// statusFor maps the core's sentinel error taxonomy (spec.md §7) to HTTP
// status codes. Errors the core never raises (store I/O failures
// surfaced mid-request) fall back to 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, provider.ErrUnknownProvider):
		return http.StatusNotFound
	case errors.Is(err, jobs.ErrJobNotFound):
		return http.StatusNotFound
	case errors.Is(err, jobs.ErrJobBusy):
		return http.StatusConflict
	case errors.Is(err, tilemath.ErrInvalidArea):
		return http.StatusBadRequest
	case errors.Is(err, errInvalidParameters):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

var errInvalidParameters = errors.New("api: invalid parameters")
