package jobs

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalk/chart-tiles/internal/tilemath"
)

func TestAreaFromBBoxFactoryMatchesExactCount(t *testing.T) {
	b := tilemath.BBox{MinLon: 0, MinLat: 0, MaxLon: 10, MaxLat: 10}
	a := AreaFromBBox(b, "test-bbox")

	tiles := tilemath.Collect(a.Factory(4, 4)())
	assert.Equal(t, tilemath.BBoxExactCount(b, 4, 4), len(tiles))
}

func TestAreaFromBBoxEstimateTotalIsExact(t *testing.T) {
	b := tilemath.BBox{MinLon: 0, MinLat: 0, MaxLon: 10, MaxLat: 10}
	a := AreaFromBBox(b, "test-bbox")

	got := a.EstimateTotal(3, 5, 16, 100, 10000)
	want := int64(tilemath.BBoxExactCount(b, 3, 5))
	assert.Equal(t, want, got)
}

func TestAreaFromBBoxPolygonsProducesEquivalentRectangle(t *testing.T) {
	b := tilemath.BBox{MinLon: 0, MinLat: 0, MaxLon: 10, MaxLat: 10}
	a := AreaFromBBox(b, "test-bbox")

	polys := a.Polygons()
	require.Len(t, polys, 1)
	ring := polys[0][0]
	assert.Contains(t, ring, orb.Point{0, 0})
	assert.Contains(t, ring, orb.Point{10, 10})
}

func TestAreaFromFeaturePolygon(t *testing.T) {
	ring := orb.Ring{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}}
	f := &geojson.Feature{Geometry: orb.Polygon{ring}}

	a, skipped, err := AreaFromFeature(f, "test-feature")
	require.NoError(t, err)
	assert.False(t, skipped)
	assert.Len(t, a.Polygons(), 1)
}

func TestAreaFromFeatureInvalidGeometry(t *testing.T) {
	_, _, err := AreaFromFeature(&geojson.Feature{}, "bad")
	assert.ErrorIs(t, err, tilemath.ErrInvalidArea)
}

func TestAreaPolygonUsesPolygonFactory(t *testing.T) {
	ring := orb.Ring{{0, 0}, {5, 0}, {5, 5}, {0, 5}, {0, 0}}
	a, _, err := AreaFromFeature(&geojson.Feature{Geometry: orb.Polygon{ring}}, "test")
	require.NoError(t, err)

	tiles := tilemath.Collect(a.Factory(4, 4)())
	assert.NotEmpty(t, tiles)
}
