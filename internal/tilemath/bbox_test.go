package tilemath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBBoxTileFactoryDeterministicNoDuplicates(t *testing.T) {
	b := BBox{MinLon: -10, MinLat: -10, MaxLon: 10, MaxLat: 10}
	factory := BBoxTileFactory(b, 2, 4)

	first := Collect(factory())
	second := Collect(factory())
	require.Equal(t, first, second)

	seen := make(map[Tile]bool, len(first))
	for _, tile := range first {
		assert.False(t, seen[tile], "duplicate tile %+v", tile)
		seen[tile] = true
	}
	assert.Equal(t, BBoxExactCount(b, 2, 4), len(first))
}

func TestBBoxExactCountMatchesRectangleArea(t *testing.T) {
	b := BBox{MinLon: 0, MinLat: 0, MaxLon: 1, MaxLat: 1}
	count := BBoxExactCount(b, 10, 10)
	assert.Equal(t, 1, count) // a 1-degree box is well within a single z10 tile
}

func TestSplitAntimeridianBBox(t *testing.T) {
	b := BBox{MinLon: 170, MinLat: 0, MaxLon: -170, MaxLat: 10}
	subs := splitAntimeridianBBox(b)
	require.Len(t, subs, 2)
	assert.Equal(t, 180.0, subs[0].MaxLon)
	assert.Equal(t, -180.0, subs[1].MinLon)
}

func TestAntimeridianCrossingBBoxCoversBothSides(t *testing.T) {
	b := BBox{MinLon: 170, MinLat: 0, MaxLon: -170, MaxLat: 10}
	tiles := Collect(BBoxTileFactory(b, 2, 2)())

	var sawHighX, sawLowX bool
	maxX := TileCount(2) - 1
	for _, tile := range tiles {
		if tile.X == maxX {
			sawHighX = true
		}
		if tile.X == 0 {
			sawLowX = true
		}
	}
	assert.True(t, sawHighX, "expected a tile at the high-x eastern edge")
	assert.True(t, sawLowX, "expected a tile at the low-x western edge")
	assert.GreaterOrEqual(t, len(tiles), 4)
}
