package vt

import (
	"strings"
	"testing"

	"github.com/aayushadhikari7/termgif/internal/termframe"
)

func TestScreenInsertDeleteLine(t *testing.T) {
	s := NewScreen(3, 3)
	setLine(s, 0, "abc")
	setLine(s, 1, "def")
	setLine(s, 2, "ghi")

	s.setCursor(0, 1)
	if ok := s.InsertLine(1); !ok {
		t.Fatalf("expected InsertLine to succeed")
	}
	if got := lineText(s, 0); got != "abc" {
		t.Fatalf("line0 = %q", got)
	}
	if got := lineText(s, 1); got != "   " {
		t.Fatalf("line1 = %q", got)
	}
	if got := lineText(s, 2); got != "def" {
		t.Fatalf("line2 = %q", got)
	}

	s = NewScreen(3, 3)
	setLine(s, 0, "abc")
	setLine(s, 1, "def")
	setLine(s, 2, "ghi")
	s.setCursor(0, 1)
	if ok := s.DeleteLine(1); !ok {
		t.Fatalf("expected DeleteLine to succeed")
	}
	if got := lineText(s, 1); got != "ghi" {
		t.Fatalf("delete line: %q", got)
	}
	if got := lineText(s, 2); got != "   " {
		t.Fatalf("delete line tail: %q", got)
	}
}

func TestScreenInsertDeleteLineOutsideRegion(t *testing.T) {
	s := NewScreen(3, 4)
	s.setVerticalMargins(1, 3)
	s.setCursor(0, 0)
	if s.InsertLine(1) {
		t.Fatalf("InsertLine above region should fail")
	}
	s.setCursor(0, 3)
	if s.DeleteLine(1) {
		t.Fatalf("DeleteLine below region should fail")
	}
}

func TestScreenInsertDeleteCell(t *testing.T) {
	s := NewScreen(3, 1)
	setLine(s, 0, "abc")
	s.setCursor(1, 0)
	s.InsertCell(1)
	if got := lineText(s, 0); got != "a b" {
		t.Fatalf("insert cell: %q", got)
	}
	s.DeleteCell(1)
	if got := lineText(s, 0); got != "ab " {
		t.Fatalf("delete cell: %q", got)
	}
}

func TestScreenScrollRegion(t *testing.T) {
	s := NewScreen(3, 4)
	setLine(s, 0, "aaa")
	setLine(s, 1, "bbb")
	setLine(s, 2, "ccc")
	setLine(s, 3, "ddd")
	s.setVerticalMargins(1, 3)

	s.ScrollUp(1)
	if got := lineText(s, 0); got != "aaa" {
		t.Fatalf("row outside region moved: %q", got)
	}
	if got := lineText(s, 1); got != "ccc" {
		t.Fatalf("scrolled row = %q", got)
	}
	if got := lineText(s, 2); got != "   " {
		t.Fatalf("blank fill = %q", got)
	}
	if got := lineText(s, 3); got != "ddd" {
		t.Fatalf("row below region moved: %q", got)
	}

	s.ScrollDown(1)
	if got := lineText(s, 1); got != "   " {
		t.Fatalf("scroll down top = %q", got)
	}
	if got := lineText(s, 2); got != "ccc" {
		t.Fatalf("scroll down shifted = %q", got)
	}
}

func TestScreenResizeKeepsIntersection(t *testing.T) {
	s := NewScreen(4, 3)
	setLine(s, 0, "wide")
	setLine(s, 1, "rows")
	s.setCursor(3, 2)

	s.Resize(2, 2)
	if got := lineText(s, 0); got != "wi" {
		t.Fatalf("line0 after shrink = %q", got)
	}
	if got := lineText(s, 1); got != "ro" {
		t.Fatalf("line1 after shrink = %q", got)
	}
	if x, y := s.CursorPosition(); x != 1 || y != 1 {
		t.Fatalf("cursor after shrink = %d,%d", x, y)
	}

	s.Resize(5, 3)
	if got := lineText(s, 0); got != "wi   " {
		t.Fatalf("line0 after grow = %q", got)
	}
	if s.top != 0 || s.bottom != 3 {
		t.Fatalf("margins after resize = %d,%d", s.top, s.bottom)
	}
}

func TestScreenWideCellBreak(t *testing.T) {
	s := NewScreen(4, 1)
	s.SetCell(0, 0, termframe.Cell{Content: "世", Width: 2})
	if got := s.CellAt(0, 0).Content; got != "世" {
		t.Fatalf("wide base = %q", got)
	}
	if got := s.CellAt(1, 0).Width; got != 0 {
		t.Fatalf("continuation width = %d", got)
	}

	// Overwriting the continuation cell blanks the whole glyph.
	s.SetCell(1, 0, termframe.Cell{Content: "x", Width: 1})
	if got := s.CellAt(0, 0).Content; got != " " {
		t.Fatalf("broken wide base = %q", got)
	}
	if got := s.CellAt(1, 0).Content; got != "x" {
		t.Fatalf("overwrite = %q", got)
	}

	// A wide cell cannot straddle the right edge.
	s.SetCell(3, 0, termframe.Cell{Content: "界", Width: 2})
	if got := s.CellAt(3, 0).Content; got != " " {
		t.Fatalf("edge wide cell = %q", got)
	}
}

func TestScreenBlankCellKeepsBackground(t *testing.T) {
	s := NewScreen(2, 1)
	s.cur.Pen.Bg = termframe.BasicColor(4)
	s.cur.Pen.Attrs = termframe.AttrBold
	blank := s.blankCell()
	if blank.Style.Bg != termframe.BasicColor(4) {
		t.Fatalf("blank bg = %#v", blank.Style.Bg)
	}
	if blank.Style.Attrs != 0 {
		t.Fatalf("blank kept attrs = %v", blank.Style.Attrs)
	}
}

func TestScreenSnapshotIsDeepCopy(t *testing.T) {
	s := NewScreen(3, 1)
	setLine(s, 0, "abc")
	snap := s.Snapshot()

	setLine(s, 0, "xyz")
	if got := snap.Lines()[0]; got != "abc" {
		t.Fatalf("snapshot mutated: %q", got)
	}
	if got := s.Snapshot().Lines()[0]; got != "xyz" {
		t.Fatalf("screen = %q", got)
	}
}

func TestScreenSaveRestoreCursor(t *testing.T) {
	s := NewScreen(4, 2)
	s.setCursor(2, 1)
	s.cur.Pen.Fg = termframe.BasicColor(2)
	s.SaveCursor()

	s.setCursor(0, 0)
	s.cur.Pen = termframe.Style{}
	s.RestoreCursor()
	if x, y := s.CursorPosition(); x != 2 || y != 1 {
		t.Fatalf("restored cursor = %d,%d", x, y)
	}
	if s.cur.Pen.Fg != termframe.BasicColor(2) {
		t.Fatalf("restored pen = %#v", s.cur.Pen.Fg)
	}

	// Without a save, restore homes the cursor and resets the pen.
	s2 := NewScreen(4, 2)
	s2.setCursor(3, 1)
	s2.cur.Pen.Fg = termframe.BasicColor(1)
	s2.RestoreCursor()
	if x, y := s2.CursorPosition(); x != 0 || y != 0 {
		t.Fatalf("default restore = %d,%d", x, y)
	}
	if !s2.cur.Pen.IsZero() {
		t.Fatalf("default restore pen = %#v", s2.cur.Pen)
	}
}

func TestDamageTracker(t *testing.T) {
	s := NewScreen(3, 3)
	s.damage = &DamageTracker{}
	s.damage.Resize(3, 3)
	s.damage.Consume()

	s.SetCell(1, 1, termframe.Cell{Content: "x", Width: 1})
	st := s.damage.Consume()
	if st.Full {
		t.Fatalf("single cell marked full")
	}
	if len(st.DirtyRows) != 1 || st.DirtyRows[0] != 1 {
		t.Fatalf("dirty rows = %v", st.DirtyRows)
	}

	if s.damage.Dirty() {
		t.Fatalf("damage not consumed")
	}
	s.setCursor(0, 0)
	st = s.damage.Consume()
	if !st.CursorMoved {
		t.Fatalf("cursor move not tracked")
	}
	if st.Full || len(st.DirtyRows) != 0 {
		t.Fatalf("cursor move dirtied cells: %+v", st)
	}
}

func setLine(s *Screen, y int, text string) {
	x := 0
	for _, r := range text {
		s.SetCell(x, y, termframe.Cell{Content: string(r), Width: 1})
		x++
	}
}

func lineText(s *Screen, y int) string {
	var b strings.Builder
	for x := 0; x < s.cols; x++ {
		cell := s.CellAt(x, y)
		if cell == nil || cell.Width == 0 {
			continue
		}
		if cell.Content == "" {
			b.WriteByte(' ')
		} else {
			b.WriteString(cell.Content)
		}
	}
	return b.String()
}
