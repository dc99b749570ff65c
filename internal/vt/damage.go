package vt

import "image"

// DamageState summarizes screen changes since the last Consume.
type DamageState struct {
	Width  int
	Height int

	// Full indicates the entire screen should be treated as dirty.
	Full bool

	// DirtyRows contains the 0-based indices of rows that changed.
	DirtyRows []int

	// CursorMoved reports cursor position or visibility changes, which
	// matter to a recorder even when no cell changed.
	CursorMoved bool
}

// Any reports whether anything visible changed.
func (s DamageState) Any() bool {
	return s.Full || s.CursorMoved || len(s.DirtyRows) > 0
}

// DamageTracker tracks conservative screen damage at row granularity.
// It is not thread safe; the emulator serializes access.
type DamageTracker struct {
	width  int
	height int

	full        bool
	dirtyRows   []bool
	cursorMoved bool
}

func (d *DamageTracker) Resize(width, height int) {
	if d == nil {
		return
	}
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	d.width = width
	d.height = height
	d.dirtyRows = make([]bool, height)
	d.full = true
}

func (d *DamageTracker) MarkAll() {
	if d == nil {
		return
	}
	d.full = true
}

func (d *DamageTracker) MarkCursor() {
	if d == nil {
		return
	}
	d.cursorMoved = true
}

func (d *DamageTracker) MarkRow(y int) {
	if d == nil || d.full || y < 0 || y >= d.height {
		return
	}
	if len(d.dirtyRows) != d.height {
		d.dirtyRows = make([]bool, d.height)
	}
	d.dirtyRows[y] = true
}

func (d *DamageTracker) MarkRect(rect image.Rectangle) {
	if d == nil || d.full || d.height <= 0 {
		return
	}
	minY, maxY := rect.Min.Y, rect.Max.Y
	if minY < 0 {
		minY = 0
	}
	if maxY > d.height {
		maxY = d.height
	}
	if minY >= maxY {
		return
	}
	if len(d.dirtyRows) != d.height {
		d.dirtyRows = make([]bool, d.height)
	}
	for y := minY; y < maxY; y++ {
		d.dirtyRows[y] = true
	}
}

// Dirty reports whether any damage is pending without consuming it.
func (d *DamageTracker) Dirty() bool {
	if d == nil {
		return false
	}
	if d.full || d.cursorMoved {
		return true
	}
	for _, dirty := range d.dirtyRows {
		if dirty {
			return true
		}
	}
	return false
}

// Consume returns the pending damage and resets the tracker.
func (d *DamageTracker) Consume() DamageState {
	if d == nil {
		return DamageState{}
	}
	st := DamageState{
		Width:       d.width,
		Height:      d.height,
		Full:        d.full,
		CursorMoved: d.cursorMoved,
	}
	if !d.full && d.height > 0 {
		dirty := make([]int, 0, 8)
		for y, isDirty := range d.dirtyRows {
			if isDirty {
				dirty = append(dirty, y)
			}
		}
		st.DirtyRows = dirty
	}

	d.full = false
	d.cursorMoved = false
	for i := range d.dirtyRows {
		d.dirtyRows[i] = false
	}
	return st
}
