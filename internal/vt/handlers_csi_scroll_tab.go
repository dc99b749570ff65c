package vt

func (e *Emulator) registerCsiScrollTabHandlers() {
	e.RegisterCsiHandler('S', func(params Params) bool {
		// Scroll Up (SU)
		n, _, _ := params.Param(0, 1)
		e.scr.ScrollUp(max(1, n))
		return true
	})

	e.RegisterCsiHandler('T', func(params Params) bool {
		// Scroll Down (SD)
		n, _, _ := params.Param(0, 1)
		e.scr.ScrollDown(max(1, n))
		return true
	})

	e.RegisterCsiHandler(command('?', 0, 'W'), func(params Params) bool {
		// Set Tab at Every 8 Columns (DECST8C)
		if n, _, ok := params.Param(0, 0); ok && n == 5 {
			e.resetTabStops()
			return true
		}
		return false
	})

	e.RegisterCsiHandler('Z', func(params Params) bool {
		// Cursor Backward Tabulation (CBT)
		n, _, _ := params.Param(0, 1)
		e.prevTab(max(1, n))
		return true
	})

	e.RegisterCsiHandler('b', func(params Params) bool {
		// Repeat Previous Character (REP)
		n, _, _ := params.Param(0, 1)
		e.repeatPreviousCharacter(max(1, n))
		return true
	})

	e.RegisterCsiHandler('g', func(params Params) bool {
		// Tab Clear (TBC)
		value, _, _ := params.Param(0, 0)
		switch value {
		case 0:
			x, _ := e.scr.CursorPosition()
			e.tabstops.Reset(x)
		case 3:
			e.tabstops.Clear()
		default:
			return false
		}
		return true
	})
}
