package jobs

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/signalk/chart-tiles/internal/tilemath"
)

// Area is the normalized region a job operates over: either a bounding
// box or a set of polygons extracted from a GeoJSON feature. It knows
// how to build both the enumerate-everything factory a seed job walks
// and the polygon list a delete job uses to scope its store query.
type Area struct {
	Description string
	bbox        *tilemath.BBox
	polys       []orb.Polygon
}

// AreaFromBBox builds an Area from a bounding box (possibly
// antimeridian-crossing).
func AreaFromBBox(b tilemath.BBox, description string) Area {
	return Area{Description: description, bbox: &b}
}

// AreaFromFeature builds an Area from a GeoJSON polygon/multipolygon
// feature, returning tilemath.ErrInvalidArea if it carries no usable
// polygon geometry.
func AreaFromFeature(f *geojson.Feature, description string) (Area, bool, error) {
	polys, skipped, err := tilemath.PolygonsFromFeature(f)
	if err != nil {
		return Area{}, false, err
	}
	if len(polys) == 0 {
		return Area{}, skipped, tilemath.ErrInvalidArea
	}
	return Area{Description: description, polys: polys}, skipped, nil
}

// Factory builds the lazy tile-sequence factory for enumerating this
// area across [zMin, zMax].
func (a Area) Factory(zMin, zMax int) tilemath.Factory {
	if a.bbox != nil {
		return tilemath.BBoxTileFactory(*a.bbox, zMin, zMax)
	}
	return tilemath.PolygonTileFactory(a.polys, zMin, zMax)
}

// EstimateTotal computes the totalTiles estimate (§4.A/§4.E): exact for
// a bbox, sampled-then-refined for a polygon.
func (a Area) EstimateTotal(zMin, zMax, gridSize, smallThreshold, countCap int) int64 {
	if a.bbox != nil {
		return int64(tilemath.BBoxExactCount(*a.bbox, zMin, zMax))
	}
	estimate := tilemath.RangeEstimate(a.polys, zMin, zMax, gridSize)
	refined, _ := tilemath.RefineByCounting(a.Factory(zMin, zMax), estimate, smallThreshold, countCap)
	return int64(refined)
}

// Polygons returns the polygon set for store-scoped delete queries. A
// bbox-based area is converted to an equivalent rectangular polygon so
// delete jobs can treat both area kinds uniformly.
func (a Area) Polygons() []orb.Polygon {
	if a.polys != nil {
		return a.polys
	}
	b := *a.bbox
	ring := orb.Ring{
		{b.MinLon, b.MinLat}, {b.MaxLon, b.MinLat},
		{b.MaxLon, b.MaxLat}, {b.MinLon, b.MaxLat}, {b.MinLon, b.MinLat},
	}
	return []orb.Polygon{{ring}}
}
