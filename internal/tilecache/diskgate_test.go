package tilecache

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestDiskGateDisablesBelowThreshold(t *testing.T) {
	g := newDiskGate(t.TempDir(), 1, 1<<62, zerolog.Nop()) // threshold far above any real free space
	assert.False(t, g.Disabled())
	g.noteWrite()
	assert.True(t, g.Disabled())
}

func TestDiskGateStaysEnabledAboveThreshold(t *testing.T) {
	g := newDiskGate(t.TempDir(), 1, 1, zerolog.Nop()) // 1 byte threshold, essentially never trips
	g.noteWrite()
	assert.False(t, g.Disabled())
}

func TestDiskGateOnlyChecksEveryNWrites(t *testing.T) {
	g := newDiskGate(t.TempDir(), 5, 1<<62, zerolog.Nop())
	for i := 0; i < 4; i++ {
		g.noteWrite()
	}
	assert.False(t, g.Disabled(), "gate should not have probed disk space before the 5th write")
	g.noteWrite()
	assert.True(t, g.Disabled())
}

func TestDiskGateIsSticky(t *testing.T) {
	g := newDiskGate(t.TempDir(), 1, 1<<62, zerolog.Nop())
	g.noteWrite()
	assert.True(t, g.Disabled())
	g.minFreeBytes = 0 // even if space were to "recover", the flag must not reset
	g.noteWrite()
	assert.True(t, g.Disabled())
}
