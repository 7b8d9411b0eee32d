package tilemath

// Iterator pulls tiles one at a time from a finite, lazy, single-use
// sequence. Once it returns ok=false it must keep returning ok=false.
type Iterator func() (tile Tile, ok bool)

// Factory builds a fresh Iterator on every call. The iterator it returns
// is not restartable; callers that need a second pass call the factory
// again.
type Factory func() Iterator

// Collect drains an Iterator into a slice. Intended for tests, not for
// production hot paths (the small-region refinement counts with
// CountUpTo instead).
func Collect(it Iterator) []Tile {
	var out []Tile
	for {
		t, ok := it()
		if !ok {
			return out
		}
		out = append(out, t)
	}
}

// CountUpTo drains an Iterator counting tiles, stopping early (returning
// the cap and true) once the cap is reached so callers don't have to
// materialize huge sequences just to bound them.
func CountUpTo(it Iterator, cap int) (count int, hitCap bool) {
	for count < cap {
		_, ok := it()
		if !ok {
			return count, false
		}
		count++
	}
	// Confirm there isn't exactly `cap` tiles total before reporting the cap
	// was hit; one extra pull tells us whether the sequence continues.
	if _, ok := it(); ok {
		return cap, true
	}
	return cap, false
}

// rangeIterator enumerates every (x, y) in an inclusive tile rectangle at
// a single zoom level, in row-major order.
func rangeIterator(z, minX, minY, maxX, maxY int) Iterator {
	x, y := minX, minY
	done := minX > maxX || minY > maxY
	return func() (Tile, bool) {
		if done {
			return Tile{}, false
		}
		t := Tile{Z: z, X: x, Y: y}
		x++
		if x > maxX {
			x = minX
			y++
			if y > maxY {
				done = true
			}
		}
		return t, true
	}
}

// chainIterators runs a sequence of iterators to exhaustion one after
// another, as if they were concatenated.
func chainIterators(its []Iterator) Iterator {
	i := 0
	return func() (Tile, bool) {
		for i < len(its) {
			if t, ok := its[i](); ok {
				return t, true
			}
			i++
		}
		return Tile{}, false
	}
}

// filterIterator yields only the tiles from src for which keep returns true.
func filterIterator(src Iterator, keep func(Tile) bool) Iterator {
	return func() (Tile, bool) {
		for {
			t, ok := src()
			if !ok {
				return Tile{}, false
			}
			if keep(t) {
				return t, true
			}
		}
	}
}
