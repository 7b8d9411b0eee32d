package tilemath

// splitAntimeridianBBox returns one bbox if minLon <= maxLon, or the two
// sub-boxes either side of the antimeridian if the box crosses it
// (minLon > maxLon signals a crossing, per the XYZ-style bbox convention
// used by the region-selection UI).
func splitAntimeridianBBox(b BBox) []BBox {
	if b.MinLon <= b.MaxLon {
		return []BBox{b}
	}
	return []BBox{
		{MinLon: b.MinLon, MinLat: b.MinLat, MaxLon: 180, MaxLat: b.MaxLat},
		{MinLon: -180, MinLat: b.MinLat, MaxLon: b.MaxLon, MaxLat: b.MaxLat},
	}
}

// cornerTiles returns the tile range [minX,maxX] x [minY,maxY] a bbox
// covers at zoom z, in XYZ space.
func cornerTiles(b BBox, z int) (minX, minY, maxX, maxY int) {
	x0, y0 := LonLatToTileXY(b.MinLon, b.MaxLat, z) // NW corner
	x1, y1 := LonLatToTileXY(b.MaxLon, b.MinLat, z) // SE corner
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	return x0, y0, x1, y1
}

// BBoxTileFactory builds a Factory that lazily enumerates every tile
// touching bbox b across [zMin, zMax], splitting at the antimeridian
// first. The sequence is deterministic and duplicate-free for
// non-antimeridian-crossing boxes.
func BBoxTileFactory(b BBox, zMin, zMax int) Factory {
	return func() Iterator {
		subBoxes := splitAntimeridianBBox(b)
		var its []Iterator
		for z := zMin; z <= zMax; z++ {
			for _, sb := range subBoxes {
				minX, minY, maxX, maxY := cornerTiles(sb, z)
				its = append(its, rangeIterator(z, minX, minY, maxX, maxY))
			}
		}
		return chainIterators(its)
	}
}

// BBoxExactCount returns the exact tile count for bbox b across
// [zMin, zMax] using the closed-form rectangle-area formula per zoom
// (no sampling needed; a bbox region is always rectangular in tile
// space).
func BBoxExactCount(b BBox, zMin, zMax int) int {
	total := 0
	for _, sb := range splitAntimeridianBBox(b) {
		for z := zMin; z <= zMax; z++ {
			minX, minY, maxX, maxY := cornerTiles(sb, z)
			if maxX < minX || maxY < minY {
				continue
			}
			total += (maxX - minX + 1) * (maxY - minY + 1)
		}
	}
	return total
}
