// Package termrender converts frames into ANSI text. Render produces
// newline separated styled lines for in-terminal display; Paint
// produces a full screen repaint suitable for replaying through a
// terminal or a cast player.
package termrender

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/x/ansi"

	"github.com/aayushadhikari7/termgif/internal/termframe"
)

// Options configures frame rendering.
type Options struct {
	Profile    colorprofile.Profile
	ShowCursor bool
}

// Render converts a frame into an ANSI string using the requested
// profile. The cursor cell, when shown, is styled reverse bold rather
// than positioned, so the output composes into larger layouts.
func Render(frame termframe.Frame, opts Options) string {
	if frame.Cols <= 0 || frame.Rows <= 0 || len(frame.Cells) == 0 {
		return ""
	}
	profile := normalizeProfile(opts.Profile)

	cursorActive := opts.ShowCursor && frame.Cursor.Visible

	var b strings.Builder
	b.Grow(frame.Cols * frame.Rows)
	for y := 0; y < frame.Rows; y++ {
		renderLine(&b, frame, y, profile, cursorActive)
		if y < frame.Rows-1 {
			_ = b.WriteByte('\n')
		}
	}
	return b.String()
}

// Paint returns a full screen repaint of the frame: clear and home,
// every row, then real cursor placement and visibility. Rows are
// separated with CR LF so the output replays through a raw terminal.
func Paint(frame termframe.Frame, opts Options) string {
	if frame.Cols <= 0 || frame.Rows <= 0 || len(frame.Cells) == 0 {
		return ""
	}
	profile := normalizeProfile(opts.Profile)

	var b strings.Builder
	b.Grow(frame.Cols * frame.Rows)
	b.WriteString("\x1b[H\x1b[2J")
	for y := 0; y < frame.Rows; y++ {
		renderLine(&b, frame, y, profile, false)
		if y < frame.Rows-1 {
			b.WriteString("\r\n")
		}
	}
	fmt.Fprintf(&b, "\x1b[%d;%dH", frame.Cursor.Y+1, frame.Cursor.X+1)
	if opts.ShowCursor && frame.Cursor.Visible {
		b.WriteString("\x1b[?25h")
	} else {
		b.WriteString("\x1b[?25l")
	}
	return b.String()
}

func normalizeProfile(profile colorprofile.Profile) colorprofile.Profile {
	switch profile {
	case colorprofile.TrueColor, colorprofile.ANSI256, colorprofile.ANSI, colorprofile.Ascii, colorprofile.NoTTY:
		return profile
	default:
		return colorprofile.TrueColor
	}
}

func renderLine(b *strings.Builder, frame termframe.Frame, y int, profile colorprofile.Profile, cursorActive bool) {
	var pen termframe.Style
	var link termframe.Link
	pendingSpaces := 0

	for x := 0; x < frame.Cols; {
		cell := frame.CellAt(x, y)
		if cell == nil {
			x++
			continue
		}
		if cell.Width == 0 {
			x++
			continue
		}

		if cellIsEmpty(*cell) && !(cursorActive && x == frame.Cursor.X && y == frame.Cursor.Y) {
			if pendingSpaces == 0 {
				renderResetForSpace(b, &pen, &link)
			}
			pendingSpaces++
			x++
			continue
		}

		if pendingSpaces > 0 {
			renderSpaces(b, pendingSpaces)
			pendingSpaces = 0
		}

		style := cell.Style
		if cursorActive && x == frame.Cursor.X && y == frame.Cursor.Y {
			style.Attrs |= termframe.AttrReverse | termframe.AttrBold
		}
		renderApplyStyle(b, &pen, style, profile)
		renderApplyLink(b, &link, cell.Link)
		b.WriteString(cellContent(*cell))
		if cell.Width > 1 {
			x += cell.Width
		} else {
			x++
		}
	}
	if pendingSpaces > 0 {
		renderSpaces(b, pendingSpaces)
	}
	renderFinalizeLine(b, &pen, &link)
}

func cellIsEmpty(cell termframe.Cell) bool {
	if !cell.Style.IsZero() || !cell.Link.IsZero() {
		return false
	}
	return cell.Content == "" || cell.Content == " "
}

func cellContent(cell termframe.Cell) string {
	if cell.Content == "" {
		return " "
	}
	return cell.Content
}

func renderSpaces(b *strings.Builder, n int) {
	for n > 0 {
		_ = b.WriteByte(' ')
		n--
	}
}

func renderResetForSpace(b *strings.Builder, pen *termframe.Style, link *termframe.Link) {
	if pen != nil && !pen.IsZero() {
		b.WriteString(ansi.ResetStyle)
		*pen = termframe.Style{}
	}
	if link != nil && !link.IsZero() {
		b.WriteString(ansi.ResetHyperlink())
		*link = termframe.Link{}
	}
}

func renderFinalizeLine(b *strings.Builder, pen *termframe.Style, link *termframe.Link) {
	if link != nil && !link.IsZero() {
		b.WriteString(ansi.ResetHyperlink())
		*link = termframe.Link{}
	}
	if pen != nil && !pen.IsZero() {
		b.WriteString(ansi.ResetStyle)
		*pen = termframe.Style{}
	}
}

func renderApplyStyle(b *strings.Builder, pen *termframe.Style, next termframe.Style, profile colorprofile.Profile) {
	if pen == nil || next == *pen {
		return
	}
	if next.IsZero() {
		b.WriteString(ansi.ResetStyle)
		*pen = termframe.Style{}
		return
	}
	b.WriteString(styleSequence(next, profile))
	*pen = next
}

func renderApplyLink(b *strings.Builder, link *termframe.Link, next termframe.Link) {
	if link == nil {
		return
	}
	if next == *link {
		return
	}
	if !link.IsZero() {
		b.WriteString(ansi.ResetHyperlink())
		*link = termframe.Link{}
	}
	if next.IsZero() {
		return
	}
	b.WriteString(ansi.SetHyperlink(next.URL, next.Params))
	*link = next
}

// styleSequence emits one SGR sequence for the whole style, starting
// from a reset so no previous attribute leaks through.
func styleSequence(s termframe.Style, profile colorprofile.Profile) string {
	params := make([]string, 0, 8)
	params = append(params, "0")

	if s.Attrs&termframe.AttrBold != 0 {
		params = append(params, "1")
	}
	if s.Attrs&termframe.AttrFaint != 0 {
		params = append(params, "2")
	}
	if s.Attrs&termframe.AttrItalic != 0 {
		params = append(params, "3")
	}
	if s.Attrs&termframe.AttrBlink != 0 {
		params = append(params, "5")
	}
	if s.Attrs&termframe.AttrRapidBlink != 0 {
		params = append(params, "6")
	}
	if s.Attrs&termframe.AttrReverse != 0 {
		params = append(params, "7")
	}
	if s.Attrs&termframe.AttrConceal != 0 {
		params = append(params, "8")
	}
	if s.Attrs&termframe.AttrStrikethrough != 0 {
		params = append(params, "9")
	}

	switch s.UnderlineStyle {
	case termframe.UnderlineNone:
	case termframe.UnderlineSingle:
		params = append(params, "4")
	case termframe.UnderlineDouble:
		params = append(params, "4:2")
	case termframe.UnderlineCurly:
		params = append(params, "4:3")
	case termframe.UnderlineDotted:
		params = append(params, "4:4")
	case termframe.UnderlineDashed:
		params = append(params, "4:5")
	}

	params = appendColor(params, profile.Convert(colorFromFrame(s.Fg)), 30, 90, 38)
	params = appendColor(params, profile.Convert(colorFromFrame(s.Bg)), 40, 100, 48)
	if s.UnderlineColor.Kind != termframe.ColorNone {
		params = appendColor(params, profile.Convert(colorFromFrame(s.UnderlineColor)), 0, 0, 58)
	}

	return "\x1b[" + strings.Join(params, ";") + "m"
}

// appendColor encodes a converted color. basicBase and brightBase are
// the 16-color SGR bases, extBase the 38/48/58 selector; basic colors
// fall back to the extended form when no base applies.
func appendColor(params []string, c ansi.Color, basicBase, brightBase, extBase int) []string {
	switch v := c.(type) {
	case ansi.BasicColor:
		n := int(v)
		switch {
		case basicBase == 0:
			params = append(params, strconv.Itoa(extBase), "5", strconv.Itoa(n))
		case n < 8:
			params = append(params, strconv.Itoa(basicBase+n))
		default:
			params = append(params, strconv.Itoa(brightBase+n-8))
		}
	case ansi.IndexedColor:
		params = append(params, strconv.Itoa(extBase), "5", strconv.Itoa(int(v)))
	case ansi.RGBColor:
		params = append(params,
			strconv.Itoa(extBase), "2",
			strconv.Itoa(int(v.R)), strconv.Itoa(int(v.G)), strconv.Itoa(int(v.B)))
	}
	return params
}

func colorFromFrame(c termframe.Color) ansi.Color {
	switch c.Kind {
	case termframe.ColorBasic:
		return ansi.BasicColor(c.Value)
	case termframe.ColorIndexed:
		return ansi.IndexedColor(c.Value)
	case termframe.ColorRGB:
		return ansi.RGBColor{
			R: uint8(c.Value >> 16),
			G: uint8(c.Value >> 8),
			B: uint8(c.Value),
		}
	default:
		return nil
	}
}
