package vt

import "github.com/aayushadhikari7/termgif/internal/termframe"

// handleSgr applies Select Graphic Rendition parameters to the pen.
// Colors are stored semantically so a snapshot can be themed later.
func (e *Emulator) handleSgr(params Params) {
	pen := &e.scr.cur.Pen
	if len(params) == 0 {
		*pen = termframe.Style{}
		return
	}

	for i := 0; i < len(params); i++ {
		v, hasSub, _ := params.Param(i, 0)
		switch {
		case v == 0:
			*pen = termframe.Style{}
		case v == 1:
			pen.Attrs |= termframe.AttrBold
		case v == 2:
			pen.Attrs |= termframe.AttrFaint
		case v == 3:
			pen.Attrs |= termframe.AttrItalic
		case v == 4:
			pen.UnderlineStyle = termframe.UnderlineSingle
			if hasSub {
				// Styled underline, e.g. 4:3 for curly.
				style, _, _ := params.Param(i+1, 1)
				i++
				pen.UnderlineStyle = underlineStyle(style)
			}
		case v == 5:
			pen.Attrs |= termframe.AttrBlink
		case v == 6:
			pen.Attrs |= termframe.AttrRapidBlink
		case v == 7:
			pen.Attrs |= termframe.AttrReverse
		case v == 8:
			pen.Attrs |= termframe.AttrConceal
		case v == 9:
			pen.Attrs |= termframe.AttrStrikethrough
		case v == 21:
			pen.UnderlineStyle = termframe.UnderlineDouble
		case v == 22:
			pen.Attrs &^= termframe.AttrBold | termframe.AttrFaint
		case v == 23:
			pen.Attrs &^= termframe.AttrItalic
		case v == 24:
			pen.UnderlineStyle = termframe.UnderlineNone
		case v == 25:
			pen.Attrs &^= termframe.AttrBlink | termframe.AttrRapidBlink
		case v == 27:
			pen.Attrs &^= termframe.AttrReverse
		case v == 28:
			pen.Attrs &^= termframe.AttrConceal
		case v == 29:
			pen.Attrs &^= termframe.AttrStrikethrough
		case v >= 30 && v <= 37:
			pen.Fg = termframe.BasicColor(v - 30)
		case v == 38:
			pen.Fg, i = extendedColor(params, i)
		case v == 39:
			pen.Fg = termframe.Color{}
		case v >= 40 && v <= 47:
			pen.Bg = termframe.BasicColor(v - 40)
		case v == 48:
			pen.Bg, i = extendedColor(params, i)
		case v == 49:
			pen.Bg = termframe.Color{}
		case v == 58:
			pen.UnderlineColor, i = extendedColor(params, i)
		case v == 59:
			pen.UnderlineColor = termframe.Color{}
		case v >= 90 && v <= 97:
			pen.Fg = termframe.BasicColor(v - 90 + 8)
		case v >= 100 && v <= 107:
			pen.Bg = termframe.BasicColor(v - 100 + 8)
		}
	}
}

func underlineStyle(n int) termframe.UnderlineStyle {
	switch n {
	case 0:
		return termframe.UnderlineNone
	case 2:
		return termframe.UnderlineDouble
	case 3:
		return termframe.UnderlineCurly
	case 4:
		return termframe.UnderlineDotted
	case 5:
		return termframe.UnderlineDashed
	default:
		return termframe.UnderlineSingle
	}
}

// extendedColor reads the 38/48/58 color forms. Both the semicolon
// form 38;5;n and the colon form 38:2::r:g:b are accepted. It returns
// the color and the index of the last parameter it consumed.
func extendedColor(params Params, i int) (termframe.Color, int) {
	if i+1 >= len(params) {
		return termframe.Color{}, i
	}
	mode, _, _ := params.Param(i+1, 0)
	switch mode {
	case 5:
		if i+2 >= len(params) {
			return termframe.Color{}, i + 1
		}
		n, _, _ := params.Param(i+2, 0)
		return termframe.IndexedColor(n), i + 2
	case 2:
		j := i + 2
		// The colon form may carry an empty colorspace parameter.
		if j < len(params) && params[j].Sub && params[j].Missing {
			j++
		}
		if j+2 >= len(params) {
			return termframe.Color{}, len(params) - 1
		}
		r, _, _ := params.Param(j, 0)
		g, _, _ := params.Param(j+1, 0)
		b, _, _ := params.Param(j+2, 0)
		return termframe.RGBColor(clampByte(r), clampByte(g), clampByte(b)), j + 2
	default:
		return termframe.Color{}, i + 1
	}
}

func clampByte(n int) uint8 {
	if n < 0 {
		return 0
	}
	if n > 255 {
		return 255
	}
	return uint8(n)
}
