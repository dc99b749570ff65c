package vt

// defaultTabInterval is the spacing of tab stops after a reset.
const defaultTabInterval = 8

// TabStops tracks the column positions the cursor jumps to on HT.
type TabStops struct {
	stops    []bool
	interval int
}

// DefaultTabStops returns stops at every eighth column.
func DefaultTabStops(width int) *TabStops {
	t := &TabStops{interval: defaultTabInterval}
	t.reset(width)
	return t
}

func (t *TabStops) reset(width int) {
	if width < 0 {
		width = 0
	}
	t.stops = make([]bool, width)
	for x := 0; x < width; x += t.interval {
		t.stops[x] = true
	}
}

// Resize grows or shrinks the stop table. Existing stops survive and
// new columns get stops at the default interval.
func (t *TabStops) Resize(width int) {
	if width < 0 {
		width = 0
	}
	if width <= len(t.stops) {
		t.stops = t.stops[:width]
		return
	}
	grown := make([]bool, width)
	copy(grown, t.stops)
	for x := len(t.stops); x < width; x++ {
		if x%t.interval == 0 {
			grown[x] = true
		}
	}
	t.stops = grown
}

// Width returns the number of columns tracked.
func (t *TabStops) Width() int {
	return len(t.stops)
}

// IsStop reports whether column x has a tab stop.
func (t *TabStops) IsStop(x int) bool {
	return x >= 0 && x < len(t.stops) && t.stops[x]
}

// Set places a tab stop at column x.
func (t *TabStops) Set(x int) {
	if x >= 0 && x < len(t.stops) {
		t.stops[x] = true
	}
}

// Reset removes the tab stop at column x.
func (t *TabStops) Reset(x int) {
	if x >= 0 && x < len(t.stops) {
		t.stops[x] = false
	}
}

// Clear removes every tab stop.
func (t *TabStops) Clear() {
	for i := range t.stops {
		t.stops[i] = false
	}
}

// Next returns the first stop after column x, or the last column when
// none remains.
func (t *TabStops) Next(x int) int {
	for i := x + 1; i < len(t.stops); i++ {
		if t.stops[i] {
			return i
		}
	}
	return max(len(t.stops)-1, 0)
}

// Prev returns the last stop before column x, or column zero.
func (t *TabStops) Prev(x int) int {
	for i := min(x, len(t.stops)) - 1; i >= 0; i-- {
		if t.stops[i] {
			return i
		}
	}
	return 0
}
