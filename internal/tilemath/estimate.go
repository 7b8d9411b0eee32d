package tilemath

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// SamplingEstimate estimates how many tiles at zoom z a polygon ring
// touches by laying an S x S grid over the ring's bbox, testing each
// cell center for point-in-polygon, and scaling the bbox tile count by
// the inside/total cell ratio.
func SamplingEstimate(ring orb.Ring, z, gridSize int) int {
	bb := ringBBox(ring)
	minX, minY, maxX, maxY := cornerTiles(bb, z)
	if maxX < minX || maxY < minY {
		return 0
	}
	bboxCount := (maxX - minX + 1) * (maxY - minY + 1)

	dLon := (bb.MaxLon - bb.MinLon) / float64(gridSize)
	dLat := (bb.MaxLat - bb.MinLat) / float64(gridSize)
	inside := 0
	for i := 0; i < gridSize; i++ {
		for j := 0; j < gridSize; j++ {
			cx := bb.MinLon + (float64(i)+0.5)*dLon
			cy := bb.MinLat + (float64(j)+0.5)*dLat
			if planar.RingContains(ring, orb.Point{cx, cy}) {
				inside++
			}
		}
	}
	total := gridSize * gridSize
	return bboxCount * inside / total
}

// RangeEstimate sums SamplingEstimate across every polygon (split at the
// antimeridian first) and every zoom in [zMin, zMax].
func RangeEstimate(polys []orb.Polygon, zMin, zMax, gridSize int) int {
	var rings []orb.Ring
	for _, poly := range polys {
		for _, sub := range splitPolygonAntimeridian(poly) {
			rings = append(rings, sub[0])
		}
	}
	total := 0
	for z := zMin; z <= zMax; z++ {
		for _, ring := range rings {
			total += SamplingEstimate(ring, z, gridSize)
		}
	}
	return total
}

// RefineByCounting replaces a rough estimate with an exact tile count
// when the estimate is small enough that actually walking the sequence
// is cheap, capping the walk at countCap so a badly-wrong estimate can't
// turn job creation into an unbounded scan. It returns the refined
// total and whether the cap was hit (meaning the true count is >= cap).
func RefineByCounting(factory Factory, estimate, threshold, countCap int) (refined int, hitCap bool) {
	if estimate >= threshold {
		return estimate, false
	}
	count, hit := CountUpTo(factory(), countCap)
	return count, hit
}
