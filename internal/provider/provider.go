// Package provider describes chart providers as the tile cache and job
// engine see them. Discovering providers from disk or config is the host
// server's job (out of scope here); this package only defines the shape
// the core depends on and a minimal in-memory registry implementation
// that a host can populate.
package provider

import (
	"errors"
	"sync"
)

// ErrUnknownProvider is returned when a caller references a provider id
// that is not present in a Lookup.
var ErrUnknownProvider = errors.New("chart-tiles: unknown provider")

// Kind is the provider's source type.
type Kind string

const (
	KindMBTilesFile       Kind = "mbtiles-file"
	KindTileDirectory     Kind = "tile-directory"
	KindOnlineProxied     Kind = "online-proxied"
	KindOnlinePassthrough Kind = "online-passthrough"
	KindStyleJSON         Kind = "style-json"
)

// Format is the tile media format.
type Format string

const (
	FormatPNG Format = "png"
	FormatJPG Format = "jpg"
	FormatPBF Format = "pbf"
)

// ContentType returns the HTTP media type for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatPNG:
		return "image/png"
	case FormatJPG:
		return "image/jpeg"
	case FormatPBF:
		return "application/x-protobuf"
	default:
		return "application/octet-stream"
	}
}

// MBTilesHandle is the opaque capability a provider exposes over its
// backing MBTiles store. It is implemented by *mbtiles.Store; it is
// declared here as an interface so this package stays independent of the
// storage implementation.
type MBTilesHandle interface {
	GetTile(z, x, y int) ([]byte, bool, error)
	PutTile(z, x, y int, data []byte) error
}

// ChartProvider is the per-chart descriptor consumed by the core.
type ChartProvider struct {
	Identifier        string
	Kind              Kind
	Format            Format
	MinZoom           int
	MaxZoom           int
	RemoteURLTemplate string
	Headers           map[string]string
	MBTiles           MBTilesHandle
}

// Proxied reports whether this provider participates in caching: it must
// be online-proxied AND have a store handle attached.
func (p *ChartProvider) Proxied() bool {
	return p != nil && p.Kind == KindOnlineProxied && p.MBTiles != nil
}

// Lookup resolves provider identifiers to descriptors. The host server
// implements discovery (disk scanning, config parsing); this core only
// consumes the result.
type Lookup interface {
	ByID(id string) (*ChartProvider, error)
}

// Registry is a minimal concurrency-safe in-memory Lookup, suitable for
// wiring tests and small deployments where the host registers providers
// directly instead of running a discovery process.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]*ChartProvider
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]*ChartProvider)}
}

// Put registers or replaces a provider.
func (r *Registry) Put(p *ChartProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.Identifier] = p
}

// ByID implements Lookup.
func (r *Registry) ByID(id string) (*ChartProvider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[id]
	if !ok {
		return nil, ErrUnknownProvider
	}
	return p, nil
}

// All returns a snapshot slice of every registered provider.
func (r *Registry) All() []*ChartProvider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*ChartProvider, 0, len(r.providers))
	for _, p := range r.providers {
		out = append(out, p)
	}
	return out
}
