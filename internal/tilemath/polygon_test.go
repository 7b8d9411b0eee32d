package tilemath

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func squareRing(minLon, minLat, maxLon, maxLat float64) orb.Ring {
	return orb.Ring{
		{minLon, minLat}, {maxLon, minLat}, {maxLon, maxLat}, {minLon, maxLat}, {minLon, minLat},
	}
}

func TestPolygonsFromFeaturePolygon(t *testing.T) {
	poly := orb.Polygon{squareRing(0, 0, 1, 1)}
	f := &geojson.Feature{Geometry: poly}
	polys, skipped, err := PolygonsFromFeature(f)
	require.NoError(t, err)
	assert.False(t, skipped)
	require.Len(t, polys, 1)
}

func TestPolygonsFromFeatureMultiPolygon(t *testing.T) {
	mp := orb.MultiPolygon{
		{squareRing(0, 0, 1, 1)},
		{squareRing(10, 10, 11, 11)},
	}
	f := &geojson.Feature{Geometry: mp}
	polys, skipped, err := PolygonsFromFeature(f)
	require.NoError(t, err)
	assert.False(t, skipped)
	assert.Len(t, polys, 2)
}

func TestPolygonsFromFeatureSkipsNonPolygon(t *testing.T) {
	f := &geojson.Feature{Geometry: orb.Point{0, 0}}
	polys, skipped, err := PolygonsFromFeature(f)
	require.NoError(t, err)
	assert.True(t, skipped)
	assert.Nil(t, polys)
}

func TestPolygonsFromFeatureNilGeometry(t *testing.T) {
	_, _, err := PolygonsFromFeature(&geojson.Feature{})
	assert.ErrorIs(t, err, ErrInvalidArea)
}

func TestSplitPolygonAntimeridianCrossing(t *testing.T) {
	ring := squareRing(170, -10, -170, 10)
	poly := orb.Polygon{ring}
	out := splitPolygonAntimeridian(poly)
	require.Len(t, out, 2)
}

func TestSplitPolygonAntimeridianNonCrossing(t *testing.T) {
	ring := squareRing(0, 0, 10, 10)
	poly := orb.Polygon{ring}
	out := splitPolygonAntimeridian(poly)
	require.Len(t, out, 1)
}

func TestTileIntersectsPolygonsNoFalseNegative(t *testing.T) {
	ring := squareRing(0, 0, 10, 10)
	poly := orb.Polygon{ring}
	x, y := LonLatToTileXY(5, 5, 5)
	tile := Tile{X: x, Y: y, Z: 5}
	assert.True(t, TileIntersectsPolygons(tile, []orb.Polygon{poly}))
}

func TestTileIntersectsPolygonsNoFalsePositive(t *testing.T) {
	ring := squareRing(0, 0, 1, 1)
	poly := orb.Polygon{ring}
	x, y := LonLatToTileXY(170, 80, 5)
	tile := Tile{X: x, Y: y, Z: 5}
	assert.False(t, TileIntersectsPolygons(tile, []orb.Polygon{poly}))
}

func TestPolygonTileFactoryDeterministicNoDuplicates(t *testing.T) {
	ring := squareRing(0, 0, 5, 5)
	polys := []orb.Polygon{{ring}}
	factory := PolygonTileFactory(polys, 3, 5)

	first := Collect(factory())
	second := Collect(factory())
	require.Equal(t, first, second)

	seen := make(map[Tile]bool, len(first))
	for _, tile := range first {
		assert.False(t, seen[tile], "duplicate tile %+v", tile)
		seen[tile] = true
	}
	assert.NotEmpty(t, first)
}
