package vt

import "image"

func (e *Emulator) registerCsiEditHandlers() {
	e.RegisterCsiHandler('@', func(params Params) bool {
		// Insert Character (ICH)
		n, _, _ := params.Param(0, 1)
		e.scr.InsertCell(max(1, n))
		return true
	})

	e.RegisterCsiHandler('J', func(params Params) bool {
		// Erase in Display (ED)
		n, _, _ := params.Param(0, 0)
		s := e.scr
		x, y := s.CursorPosition()
		switch n {
		case 0: // cursor to end of screen
			s.FillArea(s.blankCell(), image.Rect(x, y, s.cols, y+1))
			s.FillArea(s.blankCell(), image.Rect(0, y+1, s.cols, s.rows))
		case 1: // start of screen to cursor, inclusive
			s.FillArea(s.blankCell(), image.Rect(0, 0, s.cols, y))
			s.FillArea(s.blankCell(), image.Rect(0, y, x+1, y+1))
		case 2, 3: // whole screen; no scrollback to clear for 3
			s.Clear()
		default:
			return false
		}
		return true
	})

	e.RegisterCsiHandler('K', func(params Params) bool {
		// Erase in Line (EL). Erased cells keep the pen background but
		// drop every other attribute.
		n, _, _ := params.Param(0, 0)
		s := e.scr
		x, y := s.CursorPosition()
		switch n {
		case 0: // cursor to end of line
			s.FillArea(s.blankCell(), image.Rect(x, y, s.cols, y+1))
		case 1: // start of line to cursor, inclusive
			s.FillArea(s.blankCell(), image.Rect(0, y, x+1, y+1))
		case 2: // whole line
			s.FillArea(s.blankCell(), image.Rect(0, y, s.cols, y+1))
		default:
			return false
		}
		return true
	})

	e.RegisterCsiHandler('L', func(params Params) bool {
		// Insert Line (IL)
		n, _, _ := params.Param(0, 1)
		if e.scr.InsertLine(max(1, n)) {
			// Successful inserts move the cursor to the left margin.
			e.scr.setCursor(0, e.scr.cur.Y)
		}
		return true
	})

	e.RegisterCsiHandler('M', func(params Params) bool {
		// Delete Line (DL)
		n, _, _ := params.Param(0, 1)
		if e.scr.DeleteLine(max(1, n)) {
			e.scr.setCursor(0, e.scr.cur.Y)
		}
		return true
	})

	e.RegisterCsiHandler('P', func(params Params) bool {
		// Delete Character (DCH)
		n, _, _ := params.Param(0, 1)
		e.scr.DeleteCell(max(1, n))
		return true
	})

	e.RegisterCsiHandler('X', func(params Params) bool {
		// Erase Character (ECH)
		n, _, _ := params.Param(0, 1)
		e.scr.eraseCharacters(max(1, n))
		return true
	})
}
