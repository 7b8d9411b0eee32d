package provider

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

// FileEntry is the on-disk shape of one provider in the providers file
// (see config.ServerConfig.ProvidersFile). When MBTilesPath is set, a
// store is opened for the entry whatever its kind.
type FileEntry struct {
	Identifier        string            `json:"identifier"`
	Kind              Kind              `json:"kind"`
	Format            Format            `json:"format"`
	MinZoom           int               `json:"minZoom"`
	MaxZoom           int               `json:"maxZoom"`
	RemoteURLTemplate string            `json:"remoteUrlTemplate,omitempty"`
	Headers           map[string]string `json:"headers,omitempty"`
	MBTilesPath       string            `json:"mbtilesPath,omitempty"`
}

// OpenFunc opens the MBTiles store backing a FileEntry; swapped out in
// tests. cmd/server passes a wrapper around mbtiles.Open.
type OpenFunc func(path string, entry FileEntry) (MBTilesHandle, error)

// LoadFile reads a providers JSON file and populates a Registry, opening
// an MBTiles store for any entry that names one.
func LoadFile(path string, open OpenFunc, log zerolog.Logger) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("provider: reading %s: %w", path, err)
	}
	var entries []FileEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("provider: parsing %s: %w", path, err)
	}

	reg := NewRegistry()
	for _, e := range entries {
		p := &ChartProvider{
			Identifier:        e.Identifier,
			Kind:              e.Kind,
			Format:            e.Format,
			MinZoom:           e.MinZoom,
			MaxZoom:           e.MaxZoom,
			RemoteURLTemplate: e.RemoteURLTemplate,
			Headers:           e.Headers,
		}
		if e.MBTilesPath != "" {
			handle, err := open(e.MBTilesPath, e)
			if err != nil {
				return nil, fmt.Errorf("provider: opening store for %s: %w", e.Identifier, err)
			}
			p.MBTiles = handle
		}
		reg.Put(p)
		log.Info().Str("provider", e.Identifier).Str("kind", string(e.Kind)).Msg("provider: registered")
	}
	return reg, nil
}
