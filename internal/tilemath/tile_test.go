package tilemath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLonLatToTileXYRoundTrip(t *testing.T) {
	cases := []struct {
		lon, lat float64
		z        int
	}{
		{0, 0, 5},
		{-122.4, 37.7, 10},
		{179.9, -84, 3},
		{-179.9, 84, 3},
	}
	for _, c := range cases {
		x, y := LonLatToTileXY(c.lon, c.lat, c.z)
		bb := TileToBBox(x, y, c.z)
		assert.GreaterOrEqualf(t, c.lon, bb.MinLon, "lon below bbox for (%v,%v,%v)", c.lon, c.lat, c.z)
		assert.LessOrEqualf(t, c.lon, bb.MaxLon, "lon above bbox for (%v,%v,%v)", c.lon, c.lat, c.z)
		assert.GreaterOrEqualf(t, c.lat, bb.MinLat, "lat below bbox for (%v,%v,%v)", c.lon, c.lat, c.z)
		assert.LessOrEqualf(t, c.lat, bb.MaxLat, "lat above bbox for (%v,%v,%v)", c.lon, c.lat, c.z)
	}
}

func TestFlipYInvolution(t *testing.T) {
	for z := 0; z <= 10; z++ {
		max := TileCount(z) - 1
		for _, y := range []int{0, max / 2, max} {
			require.Equal(t, y, FlipY(FlipY(y, z), z))
		}
	}
}

func TestClipLatitude(t *testing.T) {
	assert.Equal(t, MaxLatitude, ClipLatitude(89))
	assert.Equal(t, -MaxLatitude, ClipLatitude(-89))
	assert.Equal(t, 10.0, ClipLatitude(10))
}

func TestNormalizeLongitude(t *testing.T) {
	assert.InDelta(t, 170.0, NormalizeLongitude(170), 1e-9)
	assert.InDelta(t, -170.0, NormalizeLongitude(190), 1e-9)
	assert.InDelta(t, 170.0, NormalizeLongitude(-190), 1e-9)
}
