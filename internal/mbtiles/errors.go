package mbtiles

import "errors"

// ErrStoreOpen is returned when a store file can't be opened or its
// schema can't be prepared.
var ErrStoreOpen = errors.New("mbtiles: failed to open store")

// ErrStoreWrite is returned when a tile write fails.
var ErrStoreWrite = errors.New("mbtiles: failed to write tile")

// ErrStoreRead is returned when a tile read fails for a reason other
// than the tile simply being absent.
var ErrStoreRead = errors.New("mbtiles: failed to read tile")
