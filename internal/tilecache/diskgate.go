package tilecache

import (
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/signalk/chart-tiles/internal/diskspace"
)

// diskGate tracks the process-wide, sticky CachingDisabled flag. It is a
// plain struct passed in at startup (not a package-level global) per the
// "explicit process-state structs" design note.
type diskGate struct {
	writesSoFar atomic.Int64
	disabled    atomic.Bool

	root         string
	checkEvery   int64
	minFreeBytes uint64
	log          zerolog.Logger
}

func newDiskGate(root string, checkEvery int64, minFreeBytes uint64, log zerolog.Logger) *diskGate {
	return &diskGate{root: root, checkEvery: checkEvery, minFreeBytes: minFreeBytes, log: log}
}

// Disabled reports whether caching has been permanently disabled for
// this process. Once true it never becomes false again (spec.md §9 Open
// Question: preserved as-is — treated as an intentional conservative
// safety measure, not a bug).
func (g *diskGate) Disabled() bool {
	return g.disabled.Load()
}

// noteWrite records one cache write and, every checkEvery writes, probes
// free disk space at root, tripping the sticky flag if it is low.
func (g *diskGate) noteWrite() {
	n := g.writesSoFar.Add(1)
	if n%g.checkEvery != 0 {
		return
	}
	free, err := diskspace.FreeBytes(g.root)
	if err != nil {
		g.log.Warn().Err(err).Str("root", g.root).Msg("tilecache: free space probe failed")
		return
	}
	if free < g.minFreeBytes {
		if !g.disabled.Swap(true) {
			g.log.Error().Uint64("free_bytes", free).Msg("tilecache: disk space low, disabling caching for remainder of process lifetime")
		}
	}
}
