package render

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"
)

// Box-drawing runes render as filled rectangles instead of font glyphs.
// Go Mono has no coverage for U+2500..U+259F, and synthesized strokes
// line up across cells the way terminals draw them.

// Stroke weights for box-drawing arms.
const (
	segNone = iota
	segLight
	segHeavy
	segDouble
)

// boxSegments maps a rune to its {up, down, left, right} arm weights.
// Dashed variants draw as solid strokes.
var boxSegments = map[rune][4]uint8{
	'─': {0, 0, 1, 1}, '━': {0, 0, 2, 2},
	'│': {1, 1, 0, 0}, '┃': {2, 2, 0, 0},
	'┄': {0, 0, 1, 1}, '┅': {0, 0, 2, 2},
	'┆': {1, 1, 0, 0}, '┇': {2, 2, 0, 0},
	'┈': {0, 0, 1, 1}, '┉': {0, 0, 2, 2},
	'┊': {1, 1, 0, 0}, '┋': {2, 2, 0, 0},
	'┌': {0, 1, 0, 1}, '┏': {0, 2, 0, 2},
	'┐': {0, 1, 1, 0}, '┓': {0, 2, 2, 0},
	'└': {1, 0, 0, 1}, '┗': {2, 0, 0, 2},
	'┘': {1, 0, 1, 0}, '┛': {2, 0, 2, 0},
	'├': {1, 1, 0, 1}, '┣': {2, 2, 0, 2},
	'┤': {1, 1, 1, 0}, '┫': {2, 2, 2, 0},
	'┬': {0, 1, 1, 1}, '┳': {0, 2, 2, 2},
	'┴': {1, 0, 1, 1}, '┻': {2, 0, 2, 2},
	'┼': {1, 1, 1, 1}, '╋': {2, 2, 2, 2},
	'╌': {0, 0, 1, 1}, '╍': {0, 0, 2, 2},
	'╎': {1, 1, 0, 0}, '╏': {2, 2, 0, 0},
	'═': {0, 0, 3, 3}, '║': {3, 3, 0, 0},
	'╒': {0, 1, 0, 3}, '╓': {0, 3, 0, 1}, '╔': {0, 3, 0, 3},
	'╕': {0, 1, 3, 0}, '╖': {0, 3, 1, 0}, '╗': {0, 3, 3, 0},
	'╘': {1, 0, 0, 3}, '╙': {3, 0, 0, 1}, '╚': {3, 0, 0, 3},
	'╛': {1, 0, 3, 0}, '╜': {3, 0, 1, 0}, '╝': {3, 0, 3, 0},
	'╞': {1, 1, 0, 3}, '╟': {3, 3, 0, 1}, '╠': {3, 3, 0, 3},
	'╡': {1, 1, 3, 0}, '╢': {3, 3, 1, 0}, '╣': {3, 3, 3, 0},
	'╤': {0, 1, 3, 3}, '╥': {0, 3, 1, 1}, '╦': {0, 3, 3, 3},
	'╧': {1, 0, 3, 3}, '╨': {3, 0, 1, 1}, '╩': {3, 0, 3, 3},
	'╪': {1, 1, 3, 3}, '╫': {3, 3, 1, 1}, '╬': {3, 3, 3, 3},
	// Rounded corners draw square.
	'╭': {0, 1, 0, 1}, '╮': {0, 1, 1, 0},
	'╯': {1, 0, 1, 0}, '╰': {1, 0, 0, 1},
	'╴': {0, 0, 1, 0}, '╵': {1, 0, 0, 0}, '╶': {0, 0, 0, 1}, '╷': {0, 1, 0, 0},
	'╸': {0, 0, 2, 0}, '╹': {2, 0, 0, 0}, '╺': {0, 0, 0, 2}, '╻': {0, 2, 0, 0},
	'╼': {0, 0, 1, 2}, '╽': {1, 2, 0, 0}, '╾': {0, 0, 2, 1}, '╿': {2, 1, 0, 0},
}

// quadrantBits encodes U+2596..U+259F as upper-left=1, upper-right=2,
// lower-left=4 and lower-right=8.
var quadrantBits = [10]uint8{4, 8, 1, 13, 9, 7, 11, 2, 6, 14}

// drawBoxRune synthesizes box-drawing and block-element glyphs.
// It reports whether the rune was handled.
func drawBoxRune(img *image.RGBA, dc *gg.Context, ru rune, x0, y0, cw, ch, scale int, fg color.Color) bool {
	if seg, ok := boxSegments[ru]; ok {
		drawBoxSegments(img, seg, x0, y0, cw, ch, scale, fg)
		return true
	}
	switch {
	case ru == '╱' || ru == '╲' || ru == '╳':
		drawBoxDiagonal(dc, ru, x0, y0, cw, ch, scale, fg)
		return true
	case ru >= 0x2580 && ru <= 0x259f:
		drawBlockRune(img, ru, x0, y0, cw, ch, fg)
		return true
	}
	return false
}

func drawBoxSegments(img *image.RGBA, seg [4]uint8, x0, y0, cw, ch, scale int, fg color.Color) {
	th := max(scale, cw/8)
	x1, y1 := x0+cw, y0+ch
	cx, cy := x0+cw/2, y0+ch/2

	// Arms overshoot the cell center by one stroke so joints stay
	// filled where arms of different weights meet.
	for _, b := range armBands(seg[0], cx, th) {
		fillRect(img, b[0], y0, b[1], cy+th, fg)
	}
	for _, b := range armBands(seg[1], cx, th) {
		fillRect(img, b[0], cy-th, b[1], y1, fg)
	}
	for _, b := range armBands(seg[2], cy, th) {
		fillRect(img, x0, b[0], cx+th, b[1], fg)
	}
	for _, b := range armBands(seg[3], cy, th) {
		fillRect(img, cx-th, b[0], x1, b[1], fg)
	}
}

// armBands returns the cross-axis strips covered by one arm.
func armBands(weight uint8, center, th int) [][2]int {
	switch weight {
	case segLight:
		lo := center - th/2
		return [][2]int{{lo, lo + th}}
	case segHeavy:
		lo := center - th
		return [][2]int{{lo, lo + 2*th}}
	case segDouble:
		lo := center - 3*th/2
		return [][2]int{{lo, lo + th}, {lo + 2*th, lo + 3*th}}
	}
	return nil
}

func drawBoxDiagonal(dc *gg.Context, ru rune, x0, y0, cw, ch, scale int, fg color.Color) {
	dc.SetColor(fg)
	dc.SetLineWidth(float64(max(scale, cw/8)))
	if ru == '╱' || ru == '╳' {
		dc.DrawLine(float64(x0), float64(y0+ch), float64(x0+cw), float64(y0))
		dc.Stroke()
	}
	if ru == '╲' || ru == '╳' {
		dc.DrawLine(float64(x0), float64(y0), float64(x0+cw), float64(y0+ch))
		dc.Stroke()
	}
}

func drawBlockRune(img *image.RGBA, ru rune, x0, y0, cw, ch int, fg color.Color) {
	x1, y1 := x0+cw, y0+ch
	switch {
	case ru == '▀':
		fillRect(img, x0, y0, x1, y0+ch/2, fg)
	case ru >= '▁' && ru <= '█':
		n := int(ru-'▁') + 1
		fillRect(img, x0, y1-ch*n/8, x1, y1, fg)
	case ru >= '▉' && ru <= '▏':
		n := 7 - int(ru-'▉')
		fillRect(img, x0, y0, x0+cw*n/8, y1, fg)
	case ru == '▐':
		fillRect(img, x0+cw/2, y0, x1, y1, fg)
	case ru == '░':
		fillRect(img, x0, y0, x1, y1, withAlpha(fg, 64))
	case ru == '▒':
		fillRect(img, x0, y0, x1, y1, withAlpha(fg, 128))
	case ru == '▓':
		fillRect(img, x0, y0, x1, y1, withAlpha(fg, 192))
	case ru == '▔':
		fillRect(img, x0, y0, x1, y0+ch/8, fg)
	case ru == '▕':
		fillRect(img, x1-cw/8, y0, x1, y1, fg)
	case ru >= '▖' && ru <= '▟':
		q := quadrantBits[ru-'▖']
		hw, hh := cw/2, ch/2
		if q&1 != 0 {
			fillRect(img, x0, y0, x0+hw, y0+hh, fg)
		}
		if q&2 != 0 {
			fillRect(img, x0+hw, y0, x1, y0+hh, fg)
		}
		if q&4 != 0 {
			fillRect(img, x0, y0+hh, x0+hw, y1, fg)
		}
		if q&8 != 0 {
			fillRect(img, x0+hw, y0+hh, x1, y1, fg)
		}
	}
}

func withAlpha(c color.Color, a uint8) color.NRGBA {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	n.A = a
	return n
}
