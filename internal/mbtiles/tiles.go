package mbtiles

import (
	"crypto/sha1"
	"database/sql"
	"encoding/hex"
	"fmt"
)

// flipY converts between the XYZ convention used by the tile API surface
// and the TMS row convention MBTiles stores on disk.
func flipY(y, z int) int {
	return (1 << uint(z)) - 1 - y
}

func tileID(data []byte) string {
	sum := sha1.Sum(data)
	return hex.EncodeToString(sum[:])
}

// GetTile returns the image bytes for tile (z, x, y) in XYZ space, or
// found=false if the store has no such tile. A non-nil error signals an
// I/O or schema failure distinct from plain absence.
func (s *Store) GetTile(z, x, y int) (data []byte, found bool, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := flipY(y, z)
	var blob []byte
	err = s.db.QueryRow(`
		SELECT images.tile_data FROM map
		JOIN images ON images.tile_id = map.tile_id
		WHERE map.zoom_level = ? AND map.tile_column = ? AND map.tile_row = ?`,
		z, x, row).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrStoreRead, err)
	}
	return blob, true, nil
}

// PutTile writes tile (z, x, y) idempotently, deduplicating the image
// blob by content hash so repeated tiles (a common ocean/land fill)
// share a single images row.
func (s *Store) PutTile(z, x, y int, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := tileID(data)
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreWrite, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT OR IGNORE INTO images (tile_id, tile_data) VALUES (?, ?)`, id, data); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreWrite, err)
	}

	row := flipY(y, z)
	if _, err := tx.Exec(`
		INSERT INTO map (zoom_level, tile_column, tile_row, tile_id) VALUES (?, ?, ?, ?)
		ON CONFLICT (zoom_level, tile_column, tile_row) DO UPDATE SET tile_id = excluded.tile_id`,
		z, x, row, id); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreWrite, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreWrite, err)
	}
	return nil
}

// CopyTileFrom copies a single tile's bytes from src into s. It is a thin
// convenience over GetTile/PutTile for copying between two store files;
// the seed job's MBTiles export calls GetTile/PutTile itself.
func (s *Store) CopyTileFrom(src *Store, z, x, y int) (copied bool, err error) {
	data, found, err := src.GetTile(z, x, y)
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}
	if err := s.PutTile(z, x, y, data); err != nil {
		return false, err
	}
	return true, nil
}
