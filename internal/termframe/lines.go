package termframe

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// FrameFromLines builds a frame from plain text lines.
// Lines are rendered top-to-bottom and truncated to the provided dimensions.
func FrameFromLines(cols, rows int, lines []string) Frame {
	if cols <= 0 || rows <= 0 {
		return Frame{}
	}
	frame := Blank(cols, rows)
	maxLines := rows
	if len(lines) < maxLines {
		maxLines = len(lines)
	}
	for y := 0; y < maxLines; y++ {
		line := lines[y]
		x := 0
		for _, r := range line {
			if x >= cols {
				break
			}
			width := runewidth.RuneWidth(r)
			if width <= 0 {
				width = 1
			}
			if x+width > cols {
				break
			}
			idx := y*cols + x
			frame.Cells[idx] = Cell{Content: string(r), Width: width}
			for i := 1; i < width; i++ {
				if x+i >= cols {
					break
				}
				frame.Cells[y*cols+x+i] = Cell{Width: 0}
			}
			x += width
		}
	}
	return frame
}

// Lines flattens the frame back into plain text rows with trailing
// whitespace trimmed. Zero-width continuation cells are skipped.
func (f Frame) Lines() []string {
	if f.Empty() {
		return nil
	}
	lines := make([]string, f.Rows)
	var sb strings.Builder
	for y := 0; y < f.Rows; y++ {
		sb.Reset()
		for x := 0; x < f.Cols; x++ {
			cell := f.CellAt(x, y)
			if cell == nil || cell.Width == 0 {
				continue
			}
			if cell.Content == "" {
				sb.WriteByte(' ')
				continue
			}
			sb.WriteString(cell.Content)
		}
		lines[y] = strings.TrimRight(sb.String(), " ")
	}
	return lines
}

// Text joins Lines with newlines, handy for assertions and info output.
func (f Frame) Text() string {
	return strings.Join(f.Lines(), "\n")
}
