package vt

func (e *Emulator) registerCsiMarginHandlers() {
	e.RegisterCsiHandler('r', func(params Params) bool {
		// Set Top and Bottom Margins (DECSTBM)
		top, _, _ := params.Param(0, 1)
		if top < 1 {
			top = 1
		}

		height := e.scr.rows
		bottom, _, _ := params.Param(1, height)
		if bottom < 1 || bottom > height {
			bottom = height
		}

		if top >= bottom {
			return false
		}

		// The region is stored with an exclusive bottom, so the one
		// based inclusive bottom row converts directly.
		e.scr.setVerticalMargins(top-1, bottom)

		// The cursor homes to the screen or the scroll region
		// depending on origin mode.
		e.setCursorPosition(0, 0)
		return true
	})

	e.RegisterCsiHandler('s', func(params Params) bool {
		// Save Current Cursor Position (SCOSC). Left and right margins
		// are not supported, so the ANSI.SYS meaning always applies.
		e.scr.SaveCursor()
		return true
	})

	e.RegisterCsiHandler('u', func(params Params) bool {
		// Restore Saved Cursor Position (SCORC)
		e.scr.RestoreCursor()
		return true
	})
}
