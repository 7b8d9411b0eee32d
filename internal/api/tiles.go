package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v5"

	"github.com/signalk/chart-tiles/internal/provider"
	"github.com/signalk/chart-tiles/internal/tilecache"
	"github.com/signalk/chart-tiles/internal/tilemath"
)

// getTile implements GET /chart-tiles/{id}/{z}/{x}/{y}.
func (s *Server) getTile(c echo.Context) error {
	id := c.Param("id")
	p, err := s.providers.ByID(id)
	if err != nil {
		return c.JSON(http.StatusNotFound, errResponse{Error: err.Error()})
	}

	tile, err := parseTile(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errResponse{Error: err.Error()})
	}
	if tile.Z < p.MinZoom || tile.Z > p.MaxZoom {
		return c.JSON(http.StatusBadRequest, errResponse{Error: "zoom out of provider range"})
	}

	data, source, err := s.cache.GetTile(c.Request().Context(), p, tile, false)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errResponse{Error: err.Error()})
	}
	if source == tilecache.SourceNone {
		if p.Kind == provider.KindOnlineProxied {
			return c.JSON(http.StatusBadGateway, errResponse{Error: "remote fetch failed"})
		}
		return c.JSON(http.StatusNotFound, errResponse{Error: "tile not found"})
	}

	c.Response().Header().Set("Cache-Control", "public, max-age=7776000")
	return c.Blob(http.StatusOK, p.Format.ContentType(), data)
}

func parseTile(c echo.Context) (tilemath.Tile, error) {
	z, err := strconv.Atoi(c.Param("z"))
	if err != nil {
		return tilemath.Tile{}, errInvalidParameters
	}
	x, err := strconv.Atoi(c.Param("x"))
	if err != nil {
		return tilemath.Tile{}, errInvalidParameters
	}
	y, err := strconv.Atoi(c.Param("y"))
	if err != nil {
		return tilemath.Tile{}, errInvalidParameters
	}
	if z < tilemath.MinZoom || z > tilemath.MaxZoom || x < 0 || y < 0 {
		return tilemath.Tile{}, errInvalidParameters
	}
	return tilemath.Tile{Z: z, X: x, Y: y}, nil
}

type errResponse struct {
	Error string `json:"error"`
}
