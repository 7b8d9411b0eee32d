package mbtiles

import (
	"fmt"

	"github.com/paulmach/orb"

	"github.com/signalk/chart-tiles/internal/tilemath"
)

// GetMBTilesForPolygon returns a lazy Iterator over the tiles already
// present in the store (XYZ space) that fall within polys across
// [zMin, zMax]. It scopes the per-zoom SQL scan to the polygons' combined
// bbox (in TMS row space) so it only walks rows that stand a chance of
// matching, then applies the exact polygon test to each candidate,
// matching the precision PolygonTileFactory gives callers building a
// fresh sequence from scratch. Used by the delete job, where the source
// of truth is "what does the cache already have" rather than "what
// should exist".
func (s *Store) GetMBTilesForPolygon(polys []orb.Polygon, zMin, zMax int) tilemath.Iterator {
	zoom := zMin
	var rowsForZoom tilemath.Iterator

	advance := func() tilemath.Iterator {
		for zoom <= zMax {
			z := zoom
			zoom++
			minX, minY, maxX, maxY, ok := tilemath.PolygonsTileRange(polys, z)
			if !ok {
				continue
			}
			rows, err := s.queryZoomTiles(z, minX, minY, maxX, maxY)
			if err != nil {
				s.log.Warn().Err(err).Int("zoom", z).Msg("mbtiles: polygon query scan failed for zoom")
				continue
			}
			if len(rows) > 0 {
				return sliceIterator(rows)
			}
		}
		return nil
	}

	return func() (tilemath.Tile, bool) {
		for {
			if rowsForZoom == nil {
				rowsForZoom = advance()
				if rowsForZoom == nil {
					return tilemath.Tile{}, false
				}
			}
			t, ok := rowsForZoom()
			if !ok {
				rowsForZoom = nil
				continue
			}
			if tilemath.TileIntersectsPolygons(t, polys) {
				return t, true
			}
		}
	}
}

// queryZoomTiles scans the map table at zoom z restricted to the tile
// columns/rows in [minX,maxX] x [minY,maxY] (XYZ space); minY/maxY are
// converted to the TMS row range the map table stores on disk.
func (s *Store) queryZoomTiles(z, minX, minY, maxX, maxY int) ([]tilemath.Tile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	minRow, maxRow := flipY(maxY, z), flipY(minY, z)
	rows, err := s.db.Query(
		`SELECT tile_column, tile_row FROM map
		 WHERE zoom_level = ? AND tile_column BETWEEN ? AND ? AND tile_row BETWEEN ? AND ?`,
		z, minX, maxX, minRow, maxRow)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreRead, err)
	}
	defer rows.Close()

	var out []tilemath.Tile
	for rows.Next() {
		var x, row int
		if err := rows.Scan(&x, &row); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStoreRead, err)
		}
		out = append(out, tilemath.Tile{Z: z, X: x, Y: flipY(row, z)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreRead, err)
	}
	return out, nil
}

func sliceIterator(tiles []tilemath.Tile) tilemath.Iterator {
	i := 0
	return func() (tilemath.Tile, bool) {
		if i >= len(tiles) {
			return tilemath.Tile{}, false
		}
		t := tiles[i]
		i++
		return t, true
	}
}
