package vt

import (
	"image"

	"github.com/aayushadhikari7/termgif/internal/termframe"
)

// Cursor is the screen cursor with its pen state.
type Cursor struct {
	X, Y    int
	Pen     termframe.Style
	Link    termframe.Link
	Visible bool
	Shape   termframe.CursorShape
}

// Screen is one terminal buffer: a cell grid, a cursor, and a scroll
// region. The emulator keeps two, the primary and the alternate.
type Screen struct {
	cols  int
	rows  int
	cells []termframe.Cell

	cur         Cursor
	saved       *Cursor
	top         int // scroll region start, inclusive
	bottom      int // scroll region end, exclusive
	pendingWrap bool

	damage *DamageTracker
}

// NewScreen creates a blank screen of the given size.
func NewScreen(cols, rows int) *Screen {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	s := &Screen{
		cols:   cols,
		rows:   rows,
		top:    0,
		bottom: rows,
		cur:    Cursor{Visible: true},
	}
	s.cells = make([]termframe.Cell, cols*rows)
	fillBlank(s.cells, termframe.Cell{})
	return s
}

func (s *Screen) Width() int  { return s.cols }
func (s *Screen) Height() int { return s.rows }

func (s *Screen) Bounds() image.Rectangle {
	return image.Rect(0, 0, s.cols, s.rows)
}

// blankCell is the fill cell for erases. Erased cells keep the pen's
// background color but drop every other attribute.
func (s *Screen) blankCell() termframe.Cell {
	return termframe.Cell{
		Content: " ",
		Width:   1,
		Style:   termframe.Style{Bg: s.cur.Pen.Bg},
	}
}

// CellAt returns a pointer to the cell at x, y, or nil out of bounds.
func (s *Screen) CellAt(x, y int) *termframe.Cell {
	if x < 0 || y < 0 || x >= s.cols || y >= s.rows {
		return nil
	}
	return &s.cells[y*s.cols+x]
}

// SetCell writes a cell, blanking any wide neighbor it overlaps.
func (s *Screen) SetCell(x, y int, c termframe.Cell) {
	if x < 0 || y < 0 || x >= s.cols || y >= s.rows {
		return
	}
	s.breakWide(x, y)
	width := c.Width
	if width < 1 {
		width = 1
	}
	if width > 1 {
		if x+width > s.cols {
			// A wide cell cannot straddle the right edge.
			s.cells[y*s.cols+x] = s.blankCell()
			s.damage.MarkRow(y)
			return
		}
		s.breakWide(x+width-1, y)
	}
	s.cells[y*s.cols+x] = c
	for i := 1; i < width; i++ {
		s.cells[y*s.cols+x+i] = termframe.Cell{Style: c.Style}
	}
	s.damage.MarkRow(y)
}

// breakWide blanks the wide cell covering x, y, if any, so a write at
// that position never leaves half a glyph behind.
func (s *Screen) breakWide(x, y int) {
	cell := s.CellAt(x, y)
	if cell == nil {
		return
	}
	if cell.Width > 1 {
		// Base of a wide cell: blank its continuation cells.
		for i := 0; i < cell.Width && x+i < s.cols; i++ {
			s.cells[y*s.cols+x+i] = s.blankCell()
		}
		return
	}
	if cell.Width == 0 {
		// Continuation cell: walk left to the base and blank it all.
		for bx := x - 1; bx >= 0; bx-- {
			base := s.CellAt(bx, y)
			if base.Width > 1 {
				for i := 0; i < base.Width && bx+i < s.cols; i++ {
					s.cells[y*s.cols+bx+i] = s.blankCell()
				}
				return
			}
			if base.Width != 0 {
				return
			}
		}
	}
}

// Fill sets every cell on the screen.
func (s *Screen) Fill(c termframe.Cell) {
	fillBlank(s.cells, c)
	s.damage.MarkAll()
}

// Clear erases the whole screen with the blank cell.
func (s *Screen) Clear() {
	s.Fill(s.blankCell())
}

// FillArea fills a rectangle, clipped to the screen.
func (s *Screen) FillArea(c termframe.Cell, area image.Rectangle) {
	area = area.Intersect(s.Bounds())
	if area.Empty() {
		return
	}
	for y := area.Min.Y; y < area.Max.Y; y++ {
		row := s.cells[y*s.cols : y*s.cols+s.cols]
		for x := area.Min.X; x < area.Max.X; x++ {
			row[x] = c
		}
	}
	s.damage.MarkRect(area)
}

// Resize regrows the grid keeping the top-left intersection. The
// scroll region resets to the full screen and the cursor is clamped.
func (s *Screen) Resize(cols, rows int) {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	if cols == s.cols && rows == s.rows {
		return
	}
	next := make([]termframe.Cell, cols*rows)
	fillBlank(next, termframe.Cell{})
	minCols, minRows := min(cols, s.cols), min(rows, s.rows)
	for y := 0; y < minRows; y++ {
		copy(next[y*cols:y*cols+minCols], s.cells[y*s.cols:y*s.cols+minCols])
	}
	s.cells = next
	s.cols = cols
	s.rows = rows
	s.top = 0
	s.bottom = rows
	s.cur.X = min(s.cur.X, cols-1)
	s.cur.Y = min(s.cur.Y, rows-1)
	s.pendingWrap = false
	s.damage.Resize(cols, rows)
}

// CursorPosition returns the cursor coordinates.
func (s *Screen) CursorPosition() (x, y int) {
	return s.cur.X, s.cur.Y
}

// Cursor returns a copy of the cursor state.
func (s *Screen) Cursor() Cursor {
	return s.cur
}

// setCursor moves the cursor to an absolute position, clamped to the
// screen. Any pending wrap is dropped.
func (s *Screen) setCursor(x, y int) {
	x = max(0, min(x, s.cols-1))
	y = max(0, min(y, s.rows-1))
	if x != s.cur.X || y != s.cur.Y {
		s.damage.MarkCursor()
	}
	s.cur.X = x
	s.cur.Y = y
	s.pendingWrap = false
}

// moveCursor moves the cursor relative to its position. Vertical moves
// stop at the scroll region margins when the cursor starts inside it.
func (s *Screen) moveCursor(dx, dy int) {
	x := s.cur.X + dx
	y := s.cur.Y + dy
	minY, maxY := 0, s.rows-1
	if s.cur.Y >= s.top && s.cur.Y < s.bottom {
		minY, maxY = s.top, s.bottom-1
	}
	x = max(0, min(x, s.cols-1))
	y = max(minY, min(y, maxY))
	if x != s.cur.X || y != s.cur.Y {
		s.damage.MarkCursor()
	}
	s.cur.X = x
	s.cur.Y = y
	s.pendingWrap = false
}

// SaveCursor stores position and pen for DECRC.
func (s *Screen) SaveCursor() {
	saved := s.cur
	s.saved = &saved
}

// RestoreCursor restores the state saved by SaveCursor, or homes the
// cursor when nothing was saved.
func (s *Screen) RestoreCursor() {
	if s.saved == nil {
		s.setCursor(0, 0)
		s.cur.Pen = termframe.Style{}
		return
	}
	s.cur = *s.saved
	s.cur.X = min(s.cur.X, s.cols-1)
	s.cur.Y = min(s.cur.Y, s.rows-1)
	s.pendingWrap = false
	s.damage.MarkCursor()
}

// ShowCursor makes the cursor visible.
func (s *Screen) ShowCursor() {
	if !s.cur.Visible {
		s.damage.MarkCursor()
	}
	s.cur.Visible = true
}

// HideCursor makes the cursor invisible.
func (s *Screen) HideCursor() {
	if s.cur.Visible {
		s.damage.MarkCursor()
	}
	s.cur.Visible = false
}

func (s *Screen) setCursorShape(shape termframe.CursorShape) {
	if s.cur.Shape != shape {
		s.damage.MarkCursor()
	}
	s.cur.Shape = shape
}

// setVerticalMargins sets the scroll region. top is inclusive, bottom
// exclusive.
func (s *Screen) setVerticalMargins(top, bottom int) {
	if top < 0 {
		top = 0
	}
	if bottom > s.rows {
		bottom = s.rows
	}
	if top >= bottom {
		return
	}
	s.top = top
	s.bottom = bottom
}

// ScrollUp shifts the scroll region up n rows, dropping the top rows
// and filling blanks at the bottom.
func (s *Screen) ScrollUp(n int) {
	s.scrollRegion(-n)
}

// ScrollDown shifts the scroll region down n rows.
func (s *Screen) ScrollDown(n int) {
	s.scrollRegion(n)
}

func (s *Screen) scrollRegion(dy int) {
	if dy == 0 || s.bottom <= s.top {
		return
	}
	height := s.bottom - s.top
	n := min(abs(dy), height)
	blank := s.blankCell()

	if dy < 0 {
		for y := s.top; y < s.bottom-n; y++ {
			copy(s.cells[y*s.cols:y*s.cols+s.cols], s.cells[(y+n)*s.cols:(y+n)*s.cols+s.cols])
		}
		for y := s.bottom - n; y < s.bottom; y++ {
			fillBlank(s.cells[y*s.cols:y*s.cols+s.cols], blank)
		}
	} else {
		for y := s.bottom - 1; y >= s.top+n; y-- {
			copy(s.cells[y*s.cols:y*s.cols+s.cols], s.cells[(y-n)*s.cols:(y-n)*s.cols+s.cols])
		}
		for y := s.top; y < s.top+n; y++ {
			fillBlank(s.cells[y*s.cols:y*s.cols+s.cols], blank)
		}
	}
	s.damage.MarkRect(image.Rect(0, s.top, s.cols, s.bottom))
}

// InsertLine inserts n blank lines at the cursor row. It reports false
// when the cursor is outside the scroll region.
func (s *Screen) InsertLine(n int) bool {
	if s.cur.Y < s.top || s.cur.Y >= s.bottom {
		return false
	}
	n = min(n, s.bottom-s.cur.Y)
	blank := s.blankCell()
	for y := s.bottom - 1; y >= s.cur.Y+n; y-- {
		copy(s.cells[y*s.cols:y*s.cols+s.cols], s.cells[(y-n)*s.cols:(y-n)*s.cols+s.cols])
	}
	for y := s.cur.Y; y < s.cur.Y+n; y++ {
		fillBlank(s.cells[y*s.cols:y*s.cols+s.cols], blank)
	}
	s.damage.MarkRect(image.Rect(0, s.cur.Y, s.cols, s.bottom))
	return true
}

// DeleteLine deletes n lines at the cursor row, pulling lines below
// up and filling blanks at the bottom of the scroll region.
func (s *Screen) DeleteLine(n int) bool {
	if s.cur.Y < s.top || s.cur.Y >= s.bottom {
		return false
	}
	n = min(n, s.bottom-s.cur.Y)
	blank := s.blankCell()
	for y := s.cur.Y; y < s.bottom-n; y++ {
		copy(s.cells[y*s.cols:y*s.cols+s.cols], s.cells[(y+n)*s.cols:(y+n)*s.cols+s.cols])
	}
	for y := s.bottom - n; y < s.bottom; y++ {
		fillBlank(s.cells[y*s.cols:y*s.cols+s.cols], blank)
	}
	s.damage.MarkRect(image.Rect(0, s.cur.Y, s.cols, s.bottom))
	return true
}

// InsertCell inserts n blank cells at the cursor, shifting the rest of
// the row right.
func (s *Screen) InsertCell(n int) {
	x, y := s.cur.X, s.cur.Y
	if y < 0 || y >= s.rows || x < 0 || x >= s.cols {
		return
	}
	n = min(n, s.cols-x)
	row := s.cells[y*s.cols : y*s.cols+s.cols]
	copy(row[x+n:], row[x:s.cols-n])
	blank := s.blankCell()
	for i := x; i < x+n; i++ {
		row[i] = blank
	}
	s.damage.MarkRow(y)
}

// DeleteCell deletes n cells at the cursor, shifting the rest of the
// row left and filling blanks at the end.
func (s *Screen) DeleteCell(n int) {
	x, y := s.cur.X, s.cur.Y
	if y < 0 || y >= s.rows || x < 0 || x >= s.cols {
		return
	}
	n = min(n, s.cols-x)
	s.breakWide(x, y)
	row := s.cells[y*s.cols : y*s.cols+s.cols]
	copy(row[x:], row[x+n:])
	blank := s.blankCell()
	for i := s.cols - n; i < s.cols; i++ {
		row[i] = blank
	}
	s.damage.MarkRow(y)
}

// eraseCharacters blanks n cells starting at the cursor without
// shifting anything.
func (s *Screen) eraseCharacters(n int) {
	x, y := s.cur.X, s.cur.Y
	s.FillArea(s.blankCell(), image.Rect(x, y, x+n, y+1))
}

// Reset restores the screen to its initial state at the same size.
func (s *Screen) Reset() {
	s.cur = Cursor{Visible: true}
	s.saved = nil
	s.top = 0
	s.bottom = s.rows
	s.pendingWrap = false
	fillBlank(s.cells, termframe.Cell{})
	s.damage.MarkAll()
}

// Snapshot copies the grid into an immutable frame.
func (s *Screen) Snapshot() termframe.Frame {
	frame := termframe.Frame{
		Cols:  s.cols,
		Rows:  s.rows,
		Cells: make([]termframe.Cell, len(s.cells)),
		Cursor: termframe.Cursor{
			X:       s.cur.X,
			Y:       s.cur.Y,
			Visible: s.cur.Visible,
			Shape:   s.cur.Shape,
		},
	}
	copy(frame.Cells, s.cells)
	return frame
}

// clone deep-copies the screen for alternate buffer bookkeeping.
func (s *Screen) clone() *Screen {
	dup := *s
	dup.cells = make([]termframe.Cell, len(s.cells))
	copy(dup.cells, s.cells)
	if s.saved != nil {
		saved := *s.saved
		dup.saved = &saved
	}
	dup.damage = nil
	return &dup
}

func fillBlank(dst []termframe.Cell, c termframe.Cell) {
	if c.IsZero() {
		c = termframe.Cell{Content: " ", Width: 1}
	}
	for i := range dst {
		dst[i] = c
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
