package termframe

import (
	"image/color"

	xansi "github.com/charmbracelet/x/ansi"
)

// ColorKind describes how a color is encoded.
type ColorKind uint8

const (
	ColorNone ColorKind = iota
	ColorBasic
	ColorIndexed
	ColorRGB
)

// Color stores a terminal color in a compact, serializable form.
// Value encodes Basic/Indexed as their index, and RGB as 0xRRGGBB.
// Colors stay semantic until render time so a recording can be
// re-rendered under a different theme without replaying the session.
type Color struct {
	Kind  ColorKind
	Value uint32
}

func (c Color) IsZero() bool {
	return c.Kind == ColorNone
}

// RGB splits an RGB-kind color into channels. Callers must check Kind.
func (c Color) RGB() (r, g, b uint8) {
	return uint8(c.Value >> 16), uint8(c.Value >> 8), uint8(c.Value)
}

// ColorFromColor converts a color.Color into a termframe Color.
func ColorFromColor(c color.Color) Color {
	if c == nil {
		return Color{}
	}
	switch v := c.(type) {
	case xansi.BasicColor:
		return Color{Kind: ColorBasic, Value: uint32(v)}
	case xansi.IndexedColor:
		return Color{Kind: ColorIndexed, Value: uint32(v)}
	case xansi.RGBColor:
		return Color{
			Kind:  ColorRGB,
			Value: uint32(v.R)<<16 | uint32(v.G)<<8 | uint32(v.B),
		}
	}
	r, g, b, a := c.RGBA()
	if a == 0 {
		return Color{}
	}
	return Color{
		Kind:  ColorRGB,
		Value: uint32(r>>8)<<16 | uint32(g>>8)<<8 | uint32(b>>8),
	}
}

// BasicColor returns the color for an ANSI palette index 0-15.
func BasicColor(index int) Color {
	if index < 0 || index > 15 {
		return Color{}
	}
	return Color{Kind: ColorBasic, Value: uint32(index)}
}

// IndexedColor returns the color for a 256-palette index.
func IndexedColor(index int) Color {
	if index < 0 || index > 255 {
		return Color{}
	}
	return Color{Kind: ColorIndexed, Value: uint32(index)}
}

// RGBColor builds a true-color value.
func RGBColor(r, g, b uint8) Color {
	return Color{Kind: ColorRGB, Value: uint32(r)<<16 | uint32(g)<<8 | uint32(b)}
}

// Attrs are text attributes applied to a cell.
type Attrs uint16

const (
	AttrBold Attrs = 1 << iota
	AttrFaint
	AttrItalic
	AttrBlink
	AttrRapidBlink
	AttrReverse
	AttrConceal
	AttrStrikethrough
)

// UnderlineStyle represents the underline style.
type UnderlineStyle uint8

const (
	UnderlineNone UnderlineStyle = iota
	UnderlineSingle
	UnderlineDouble
	UnderlineCurly
	UnderlineDotted
	UnderlineDashed
)

// Style represents the style of a cell.
type Style struct {
	Fg             Color
	Bg             Color
	UnderlineColor Color
	UnderlineStyle UnderlineStyle
	Attrs          Attrs
}

func (s Style) IsZero() bool {
	return s.Attrs == 0 &&
		s.UnderlineStyle == UnderlineNone &&
		s.Fg.IsZero() &&
		s.Bg.IsZero() &&
		s.UnderlineColor.IsZero()
}

// Link represents a hyperlink.
type Link struct {
	URL    string
	Params string
}

func (l Link) IsZero() bool {
	return l.URL == "" && l.Params == ""
}

// Cell represents a terminal cell.
type Cell struct {
	Content string
	Width   int
	Style   Style
	Link    Link
}

func (c Cell) IsZero() bool {
	return c.Content == "" && c.Width == 0 && c.Style.IsZero() && c.Link.IsZero()
}

// Blank reports whether the cell shows nothing over the default background.
func (c Cell) Blank() bool {
	return (c.Content == "" || c.Content == " ") && c.Style.Bg.IsZero() && c.Style.Attrs&AttrReverse == 0
}

// CursorShape selects how the cursor is drawn.
type CursorShape uint8

const (
	CursorBlock CursorShape = iota
	CursorBar
	CursorUnderline
)

// CursorShapeFromName maps a config name to a shape.
func CursorShapeFromName(name string) (CursorShape, bool) {
	switch name {
	case "block":
		return CursorBlock, true
	case "bar", "beam":
		return CursorBar, true
	case "underline":
		return CursorUnderline, true
	default:
		return CursorBlock, false
	}
}

// Cursor represents the terminal cursor state.
type Cursor struct {
	X       int
	Y       int
	Visible bool
	Shape   CursorShape
}

// Frame is a snapshot of terminal cells.
type Frame struct {
	Cols   int
	Rows   int
	Cells  []Cell
	Cursor Cursor
}

// Blank returns an all-space frame of the given size.
func Blank(cols, rows int) Frame {
	if cols <= 0 || rows <= 0 {
		return Frame{}
	}
	frame := Frame{
		Cols:   cols,
		Rows:   rows,
		Cells:  make([]Cell, cols*rows),
		Cursor: Cursor{Visible: true},
	}
	for i := range frame.Cells {
		frame.Cells[i] = Cell{Content: " ", Width: 1}
	}
	return frame
}

func (f Frame) Empty() bool {
	return f.Cols <= 0 || f.Rows <= 0 || len(f.Cells) == 0
}

func (f Frame) CellAt(x, y int) *Cell {
	if x < 0 || y < 0 || x >= f.Cols || y >= f.Rows {
		return nil
	}
	idx := y*f.Cols + x
	if idx < 0 || idx >= len(f.Cells) {
		return nil
	}
	return &f.Cells[idx]
}

// Clone deep-copies the frame so snapshots stay immutable once taken.
func (f Frame) Clone() Frame {
	out := f
	out.Cells = make([]Cell, len(f.Cells))
	copy(out.Cells, f.Cells)
	return out
}

// Equal reports whether two frames show identical content, including
// cursor position and visibility.
func (f Frame) Equal(other Frame) bool {
	if f.Cols != other.Cols || f.Rows != other.Rows {
		return false
	}
	if f.Cursor != other.Cursor {
		return false
	}
	if len(f.Cells) != len(other.Cells) {
		return false
	}
	for i := range f.Cells {
		if f.Cells[i] != other.Cells[i] {
			return false
		}
	}
	return true
}
