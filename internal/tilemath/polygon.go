package tilemath

import (
	"errors"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

// ErrInvalidArea is returned when a region given to a polygon-based
// enumerator has no usable polygon geometry.
var ErrInvalidArea = errors.New("tilemath: feature has no polygon geometry")

// PolygonsFromFeature extracts the polygon rings to enumerate from a
// GeoJSON feature. MultiPolygons are flattened to their member polygons.
// Non-polygon geometries (points, lines, etc.) are reported via skip so
// callers can log them instead of failing the whole request, matching
// spec behavior for mixed-geometry feature collections.
func PolygonsFromFeature(f *geojson.Feature) (polys []orb.Polygon, skipped bool, err error) {
	if f == nil || f.Geometry == nil {
		return nil, false, ErrInvalidArea
	}
	switch g := f.Geometry.(type) {
	case orb.Polygon:
		return []orb.Polygon{g}, false, nil
	case orb.MultiPolygon:
		return []orb.Polygon(g), false, nil
	default:
		return nil, true, nil
	}
}

// normalizeRing returns a copy of ring with every point's longitude
// wrapped into [-180, 180].
func normalizeRing(ring orb.Ring) orb.Ring {
	out := make(orb.Ring, len(ring))
	for i, p := range ring {
		out[i] = orb.Point{NormalizeLongitude(p[0]), p[1]}
	}
	return out
}

// splitRingAntimeridian cuts a single ring into at most two pieces, one
// per side of the antimeridian, by walking its edges and inserting a
// boundary point wherever consecutive vertices jump by more than 180
// degrees of longitude (the DESIGN NOTES algorithm in spec.md §9). Rings
// that never cross the antimeridian come back as a single "east" or "west" piece
// depending on which hemisphere they sit in (sign of the mean vertex
// longitude; a mean of exactly 0 is treated as east).
func splitRingAntimeridian(ring orb.Ring) map[string]orb.Ring {
	norm := normalizeRing(ring)
	pieces := []orb.Ring{{norm[0]}}
	for i := 1; i < len(norm); i++ {
		a, b := norm[i-1], norm[i]
		cur := &pieces[len(pieces)-1]
		if math.Abs(b[0]-a[0]) > 180 {
			var edgeLon float64
			var bAdj float64
			if a[0] > 0 {
				edgeLon = 180
				bAdj = b[0] + 360
			} else {
				edgeLon = -180
				bAdj = b[0] - 360
			}
			t := (edgeLon - a[0]) / (bAdj - a[0])
			crossLat := a[1] + t*(b[1]-a[1])
			*cur = append(*cur, orb.Point{edgeLon, crossLat})
			pieces = append(pieces, orb.Ring{{-edgeLon, crossLat}})
			cur = &pieces[len(pieces)-1]
		}
		*cur = append(*cur, b)
	}

	out := map[string]orb.Ring{}
	for _, piece := range pieces {
		if len(piece) < 3 {
			continue
		}
		side := ringSide(piece)
		out[side] = append(out[side], piece...)
	}
	return out
}

func ringSide(ring orb.Ring) string {
	var sum float64
	for _, p := range ring {
		sum += p[0]
	}
	if sum/float64(len(ring)) < 0 {
		return "west"
	}
	return "east"
}

// splitPolygonAntimeridian cuts a polygon's exterior ring at the
// antimeridian and returns the resulting per-hemisphere polygons.
// Interior rings (holes) are intentionally not supported: the region
// selection UI this serves only produces simple selection polygons, and
// spec.md does not specify hole semantics, so holes are dropped rather
// than guessed at.
func splitPolygonAntimeridian(poly orb.Polygon) []orb.Polygon {
	if len(poly) == 0 {
		return nil
	}
	sides := splitRingAntimeridian(poly[0])
	out := make([]orb.Polygon, 0, len(sides))
	for _, ring := range sides {
		out = append(out, orb.Polygon{ring})
	}
	return out
}

func ringBBox(ring orb.Ring) BBox {
	b := BBox{MinLon: math.Inf(1), MinLat: math.Inf(1), MaxLon: math.Inf(-1), MaxLat: math.Inf(-1)}
	for _, p := range ring {
		if p[0] < b.MinLon {
			b.MinLon = p[0]
		}
		if p[0] > b.MaxLon {
			b.MaxLon = p[0]
		}
		if p[1] < b.MinLat {
			b.MinLat = p[1]
		}
		if p[1] > b.MaxLat {
			b.MaxLat = p[1]
		}
	}
	return b
}

// tileIntersectsRing reports whether the tile at (x, y, z) geometrically
// intersects ring: any tile corner inside the ring, any ring vertex
// inside the tile, or any edge-edge crossing between the two.
func tileIntersectsRing(x, y, z int, ring orb.Ring) bool {
	tb := TileToBBox(x, y, z)
	corners := []orb.Point{
		{tb.MinLon, tb.MinLat}, {tb.MaxLon, tb.MinLat},
		{tb.MaxLon, tb.MaxLat}, {tb.MinLon, tb.MaxLat},
	}
	for _, c := range corners {
		if planar.RingContains(ring, c) {
			return true
		}
	}
	for _, p := range ring {
		if p[0] >= tb.MinLon && p[0] <= tb.MaxLon && p[1] >= tb.MinLat && p[1] <= tb.MaxLat {
			return true
		}
	}
	tbEdges := [4][2]orb.Point{
		{corners[0], corners[1]}, {corners[1], corners[2]},
		{corners[2], corners[3]}, {corners[3], corners[0]},
	}
	for i := 0; i < len(ring)-1; i++ {
		for _, e := range tbEdges {
			if segmentsIntersect(ring[i], ring[i+1], e[0], e[1]) {
				return true
			}
		}
	}
	return false
}

// segmentsIntersect reports whether segments p1-p2 and p3-p4 cross,
// using the standard orientation test.
func segmentsIntersect(p1, p2, p3, p4 orb.Point) bool {
	d1 := orient(p3, p4, p1)
	d2 := orient(p3, p4, p2)
	d3 := orient(p1, p2, p3)
	d4 := orient(p1, p2, p4)
	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	if d1 == 0 && onSegment(p3, p4, p1) {
		return true
	}
	if d2 == 0 && onSegment(p3, p4, p2) {
		return true
	}
	if d3 == 0 && onSegment(p1, p2, p3) {
		return true
	}
	if d4 == 0 && onSegment(p1, p2, p4) {
		return true
	}
	return false
}

func orient(a, b, c orb.Point) float64 {
	return (b[0]-a[0])*(c[1]-a[1]) - (b[1]-a[1])*(c[0]-a[0])
}

func onSegment(a, b, p orb.Point) bool {
	return math.Min(a[0], b[0]) <= p[0] && p[0] <= math.Max(a[0], b[0]) &&
		math.Min(a[1], b[1]) <= p[1] && p[1] <= math.Max(a[1], b[1])
}

// TileIntersectsPolygons reports whether tile t geometrically intersects
// any of polys, splitting each at the antimeridian first. Exported for
// callers (the MBTiles polygon query) that need to test tiles already
// enumerated some other way, rather than generating the sequence
// themselves via PolygonTileFactory.
func TileIntersectsPolygons(t Tile, polys []orb.Polygon) bool {
	for _, poly := range polys {
		for _, sub := range splitPolygonAntimeridian(poly) {
			if tileIntersectsRing(t.X, t.Y, t.Z, sub[0]) {
				return true
			}
		}
	}
	return false
}

// PolygonsTileRange returns the tile-space rectangle [minX,maxX] x
// [minY,maxY] (XYZ space, at zoom z) covering the combined bbox of every
// polygon in polys, each split at the antimeridian first. ok is false when
// polys is empty, since there is then no rectangle to return.
func PolygonsTileRange(polys []orb.Polygon, z int) (minX, minY, maxX, maxY int, ok bool) {
	for _, poly := range polys {
		for _, sub := range splitPolygonAntimeridian(poly) {
			bb := ringBBox(sub[0])
			x0, y0, x1, y1 := cornerTiles(bb, z)
			if !ok {
				minX, minY, maxX, maxY = x0, y0, x1, y1
				ok = true
				continue
			}
			if x0 < minX {
				minX = x0
			}
			if y0 < minY {
				minY = y0
			}
			if x1 > maxX {
				maxX = x1
			}
			if y1 > maxY {
				maxY = y1
			}
		}
	}
	return minX, minY, maxX, maxY, ok
}

// PolygonTileFactory builds a Factory that lazily enumerates the tiles
// across [zMin, zMax] whose own bbox geometrically intersects any of the
// given polygons. Each polygon is first split at the antimeridian.
func PolygonTileFactory(polys []orb.Polygon, zMin, zMax int) Factory {
	return func() Iterator {
		var rings []orb.Ring
		for _, poly := range polys {
			for _, sub := range splitPolygonAntimeridian(poly) {
				rings = append(rings, sub[0])
			}
		}
		var its []Iterator
		for z := zMin; z <= zMax; z++ {
			for _, ring := range rings {
				bb := ringBBox(ring)
				minX, minY, maxX, maxY := cornerTiles(bb, z)
				candidates := rangeIterator(z, minX, minY, maxX, maxY)
				r := ring
				its = append(its, filterIterator(candidates, func(t Tile) bool {
					return tileIntersectsRing(t.X, t.Y, t.Z, r)
				}))
			}
		}
		return chainIterators(its)
	}
}
