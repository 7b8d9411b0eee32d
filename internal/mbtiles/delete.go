package mbtiles

import (
	"fmt"

	"github.com/signalk/chart-tiles/internal/tilemath"
)

// DeleteTilesInChunks removes every tile the iterator yields (XYZ space),
// committing every chunkSize deletes so a large delete job doesn't hold a
// single multi-million-row transaction open. onProgress, if non-nil, is
// called after each chunk with the running deleted count.
func (s *Store) DeleteTilesInChunks(it tilemath.Iterator, chunkSize int, onProgress func(deleted int)) (total int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for {
		tx, err := s.db.Begin()
		if err != nil {
			return total, fmt.Errorf("%w: %v", ErrStoreWrite, err)
		}
		n := 0
		for ; n < chunkSize; n++ {
			t, ok := it()
			if !ok {
				break
			}
			row := flipY(t.Y, t.Z)
			if _, err := tx.Exec(`DELETE FROM map WHERE zoom_level = ? AND tile_column = ? AND tile_row = ?`, t.Z, t.X, row); err != nil {
				tx.Rollback()
				return total, fmt.Errorf("%w: %v", ErrStoreWrite, err)
			}
		}
		if err := tx.Commit(); err != nil {
			return total, fmt.Errorf("%w: %v", ErrStoreWrite, err)
		}
		total += n
		if onProgress != nil {
			onProgress(total)
		}
		if n < chunkSize {
			return total, nil
		}
	}
}

// PurgeAllOrphanImages deletes every images row no longer referenced by
// any map row, then checkpoints the WAL so the freed pages are reclaimed
// on disk rather than sitting in the write-ahead log. Deletes are chunked
// the same way DeleteTilesInChunks is, since an orphan sweep after a large
// delete job can itself touch a large number of rows.
func (s *Store) PurgeAllOrphanImages(chunkSize int, onProgress func(purged int)) (total int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for {
		res, err := s.db.Exec(`
			DELETE FROM images WHERE tile_id IN (
				SELECT tile_id FROM images
				WHERE tile_id NOT IN (SELECT tile_id FROM map)
				LIMIT ?
			)`, chunkSize)
		if err != nil {
			return total, fmt.Errorf("%w: %v", ErrStoreWrite, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return total, fmt.Errorf("%w: %v", ErrStoreWrite, err)
		}
		total += int(n)
		if onProgress != nil {
			onProgress(total)
		}
		if n < int64(chunkSize) {
			break
		}
	}

	if _, err := s.db.Exec(`PRAGMA wal_checkpoint(TRUNCATE)`); err != nil {
		return total, fmt.Errorf("%w: checkpointing wal: %v", ErrStoreWrite, err)
	}
	return total, nil
}

// Vacuum reclaims free pages left behind by a large delete + orphan purge.
// SQLite's VACUUM cannot run under WAL journal mode, so this temporarily
// switches to DELETE mode and restores WAL afterward.
func (s *Store) Vacuum() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec(`PRAGMA journal_mode=DELETE`); err != nil {
		return fmt.Errorf("%w: switching out of wal for vacuum: %v", ErrStoreWrite, err)
	}
	_, vacErr := s.db.Exec(`VACUUM`)
	if _, err := s.db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		return fmt.Errorf("%w: restoring wal after vacuum: %v", ErrStoreWrite, err)
	}
	if vacErr != nil {
		return fmt.Errorf("%w: %v", ErrStoreWrite, vacErr)
	}
	return nil
}
