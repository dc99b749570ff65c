package vt

func (e *Emulator) registerCsiCursorHandlers() {
	e.RegisterCsiHandler('A', func(params Params) bool {
		// Cursor Up (CUU)
		n, _, _ := params.Param(0, 1)
		e.scr.moveCursor(0, -max(1, n))
		return true
	})

	e.RegisterCsiHandler('B', func(params Params) bool {
		// Cursor Down (CUD)
		n, _, _ := params.Param(0, 1)
		e.scr.moveCursor(0, max(1, n))
		return true
	})

	e.RegisterCsiHandler('C', func(params Params) bool {
		// Cursor Forward (CUF)
		n, _, _ := params.Param(0, 1)
		e.scr.moveCursor(max(1, n), 0)
		return true
	})

	e.RegisterCsiHandler('D', func(params Params) bool {
		// Cursor Backward (CUB)
		n, _, _ := params.Param(0, 1)
		e.scr.moveCursor(-max(1, n), 0)
		return true
	})

	e.RegisterCsiHandler('E', func(params Params) bool {
		// Cursor Next Line (CNL)
		n, _, _ := params.Param(0, 1)
		e.scr.moveCursor(0, max(1, n))
		e.carriageReturn()
		return true
	})

	e.RegisterCsiHandler('F', func(params Params) bool {
		// Cursor Previous Line (CPL)
		n, _, _ := params.Param(0, 1)
		e.scr.moveCursor(0, -max(1, n))
		e.carriageReturn()
		return true
	})

	e.RegisterCsiHandler('G', func(params Params) bool {
		// Cursor Horizontal Absolute (CHA)
		n, _, _ := params.Param(0, 1)
		_, y := e.scr.CursorPosition()
		e.scr.setCursor(max(1, n)-1, y)
		return true
	})

	e.RegisterCsiHandler('H', func(params Params) bool {
		// Cursor Position (CUP)
		row, _, _ := params.Param(0, 1)
		col, _, _ := params.Param(1, 1)
		e.setCursorPosition(max(1, col)-1, max(1, row)-1)
		return true
	})

	e.RegisterCsiHandler('I', func(params Params) bool {
		// Cursor Horizontal Tabulation (CHT)
		n, _, _ := params.Param(0, 1)
		e.nextTab(max(1, n))
		return true
	})

	e.RegisterCsiHandler('`', func(params Params) bool {
		// Horizontal Position Absolute (HPA)
		n, _, _ := params.Param(0, 1)
		_, y := e.scr.CursorPosition()
		e.scr.setCursor(max(1, n)-1, y)
		return true
	})

	e.RegisterCsiHandler('a', func(params Params) bool {
		// Horizontal Position Relative (HPR)
		n, _, _ := params.Param(0, 1)
		e.scr.moveCursor(max(1, n), 0)
		return true
	})

	e.RegisterCsiHandler('d', func(params Params) bool {
		// Vertical Position Absolute (VPA)
		n, _, _ := params.Param(0, 1)
		x, _ := e.scr.CursorPosition()
		e.setCursorPosition(x, max(1, n)-1)
		return true
	})

	e.RegisterCsiHandler('e', func(params Params) bool {
		// Vertical Position Relative (VPR)
		n, _, _ := params.Param(0, 1)
		e.scr.moveCursor(0, max(1, n))
		return true
	})

	e.RegisterCsiHandler('f', func(params Params) bool {
		// Horizontal and Vertical Position (HVP)
		row, _, _ := params.Param(0, 1)
		col, _, _ := params.Param(1, 1)
		e.setCursorPosition(max(1, col)-1, max(1, row)-1)
		return true
	})
}
