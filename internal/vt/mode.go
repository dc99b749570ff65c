package vt

// handleMode applies SM and RM parameter lists. ANSI modes and DEC
// private modes live in separate namespaces.
func (e *Emulator) handleMode(params Params, set, ansiMode bool) {
	for i := 0; i < len(params); i++ {
		mode, _, ok := params.Param(i, 0)
		if !ok {
			continue
		}
		if ansiMode {
			e.setAnsiMode(mode, set)
		} else {
			e.setDecMode(mode, set)
		}
	}
}

func (e *Emulator) setAnsiMode(mode int, on bool) {
	switch mode {
	case 4: // Insert Replace Mode (IRM)
		e.modes.insert = on
	case 20: // Line Feed / New Line Mode (LNM)
		e.modes.newline = on
	}
}

func (e *Emulator) setDecMode(mode int, on bool) {
	switch mode {
	case 1: // Cursor Keys Mode (DECCKM)
		e.modes.cursorKeys = on
	case 6: // Origin Mode (DECOM)
		e.modes.origin = on
		// Changing origin mode homes the cursor.
		e.setCursorPosition(0, 0)
	case 7: // Autowrap Mode (DECAWM)
		e.modes.autowrap = on
		e.scr.pendingWrap = false
	case 12: // Cursor blinking (att610)
		e.modes.cursorBlink = on
		if e.cb.CursorStyle != nil {
			e.cb.CursorStyle(e.scr.cur.Shape, on)
		}
	case 25: // Text Cursor Enable Mode (DECTCEM)
		if on {
			e.scr.ShowCursor()
		} else {
			e.scr.HideCursor()
		}
		if e.cb.CursorVisibility != nil {
			e.cb.CursorVisibility(on)
		}
	case 47: // Alternate Screen Buffer
		if on {
			e.enterAltScreen(false)
		} else {
			e.exitAltScreen(false)
		}
	case 1047: // Alternate Screen Buffer, cleared on exit
		if on {
			e.enterAltScreen(false)
		} else {
			e.exitAltScreen(true)
		}
	case 1048: // Save and restore cursor, companion to 1047
		if on {
			e.scr.SaveCursor()
		} else {
			e.scr.RestoreCursor()
		}
	case 1049: // Save cursor and switch to cleared alternate buffer
		if on {
			e.scr.SaveCursor()
			e.enterAltScreen(true)
		} else {
			e.exitAltScreen(false)
			e.scr.RestoreCursor()
		}
	case 2004: // Bracketed paste
		e.modes.bracketedPaste = on
	}
}
