// Package mbtiles implements the MBTiles persistence format used by the
// tile cache and job export: a single SQLite file holding per-zoom tile
// rows and a content-deduplicated image blob table. It is built directly
// over database/sql and modernc.org/sqlite rather than through a binding,
// per spec.md §4.B / §9 ("may be implemented directly over SQLite").
package mbtiles

import (
	"database/sql"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// Store is a single MBTiles file. Write operations (PutTile,
// DeleteTilesInChunks, PurgeAllOrphanImages, Vacuum, Checkpoint) are
// serialized through the write lock of mu, matching the single-writer
// contract SQLite's exclusive locking pragma enforces at the file level
// (spec.md §4.B, §5, and the Open Question on delete/seed concurrency in
// spec.md §9, resolved in SPEC_FULL.md §5.3). Reads (GetTile and the
// polygon query) take mu's read lock, so they do not block each other at
// the lock; the pool holds a single connection.
type Store struct {
	db  *sql.DB
	mu  sync.RWMutex
	log zerolog.Logger

	path string
}

// Metadata describes the provider-level information written into the
// MBTiles metadata table on Open.
type Metadata struct {
	Name    string
	Type    string
	Version string
	Format  string
	MinZoom int
	MaxZoom int
}

// Open opens an existing MBTiles file or creates a new one at path,
// applying the pragmas spec.md §4.B calls for and writing provider
// metadata. It returns ErrStoreOpen wrapping the underlying cause on any
// I/O or schema failure.
func Open(path string, meta Metadata, log zerolog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreOpen, err)
	}
	db.SetMaxOpenConns(1) // exclusive locking pragma below assumes a single connection

	s := &Store{db: db, log: log.With().Str("component", "mbtiles").Str("path", path).Logger(), path: path}
	if err := s.applyPragmas(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", ErrStoreOpen, err)
	}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", ErrStoreOpen, err)
	}
	if err := s.writeMetadata(meta); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", ErrStoreOpen, err)
	}
	return s, nil
}

func (s *Store) applyPragmas() error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA temp_store=MEMORY",
		"PRAGMA locking_mode=EXCLUSIVE",
		"PRAGMA cache_size=-20000", // ~20MB, negative = KiB
		"PRAGMA page_size=4096",
		"PRAGMA mmap_size=268435456", // 256MB
		"PRAGMA auto_vacuum=INCREMENTAL",
	}
	for _, p := range pragmas {
		if _, err := s.db.Exec(p); err != nil {
			return fmt.Errorf("applying %q: %w", p, err)
		}
	}
	return nil
}

func (s *Store) createSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS map (
			zoom_level INTEGER,
			tile_column INTEGER,
			tile_row INTEGER,
			tile_id TEXT
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS map_index ON map (zoom_level, tile_column, tile_row)`,
		`CREATE TABLE IF NOT EXISTS images (
			tile_id TEXT,
			tile_data BLOB
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS images_id_index ON images (tile_id)`,
		`CREATE TABLE IF NOT EXISTS metadata (name TEXT, value TEXT)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS metadata_name_index ON metadata (name)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) writeMetadata(meta Metadata) error {
	items := map[string]string{
		"name":    meta.Name,
		"type":    meta.Type,
		"version": meta.Version,
		"format":  meta.Format,
		"minzoom": fmt.Sprintf("%d", meta.MinZoom),
		"maxzoom": fmt.Sprintf("%d", meta.MaxZoom),
	}
	for k, v := range items {
		if _, err := s.db.Exec(`INSERT OR REPLACE INTO metadata (name, value) VALUES (?, ?)`, k, v); err != nil {
			return fmt.Errorf("writing metadata %s: %w", k, err)
		}
	}
	return nil
}

// Checkpoint truncates the WAL file, flushing its contents into the main
// database file. Used after a bulk write pass (MBTiles export) so the
// exported file's size reflects its contents rather than a pending WAL.
func (s *Store) Checkpoint() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.Exec(`PRAGMA wal_checkpoint(TRUNCATE)`); err != nil {
		return fmt.Errorf("%w: checkpointing wal: %v", ErrStoreWrite, err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the filesystem path this store was opened from.
func (s *Store) Path() string {
	return s.path
}
