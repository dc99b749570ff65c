package vt

// registerDefaultEscHandlers registers the default ESC escape sequence handlers.
func (e *Emulator) registerDefaultEscHandlers() {
	e.RegisterEscHandler('=', func() bool {
		// Keypad Application Mode (DECKPAM)
		e.modes.keypadApp = true
		return true
	})

	e.RegisterEscHandler('>', func() bool {
		// Keypad Numeric Mode (DECKPNM)
		e.modes.keypadApp = false
		return true
	})

	e.RegisterEscHandler('7', func() bool {
		// Save Cursor (DECSC)
		e.scr.SaveCursor()
		return true
	})

	e.RegisterEscHandler('8', func() bool {
		// Restore Cursor (DECRC)
		e.scr.RestoreCursor()
		return true
	})

	for _, slot := range []byte{'(', ')', '*', '+'} {
		for _, set := range []byte{'A', 'B', '0'} {
			e.RegisterEscHandler(command(0, slot, set), func() bool {
				// Select Character Set (SCS). The UK set differs from
				// ASCII only in the pound sign; it maps to ASCII here.
				e.designateCharset(int(slot-'('), set)
				return true
			})
		}
	}

	e.RegisterEscHandler('D', func() bool {
		// Index (IND)
		e.index()
		return true
	})

	e.RegisterEscHandler('E', func() bool {
		// Next Line (NEL)
		e.nextLine()
		return true
	})

	e.RegisterEscHandler('H', func() bool {
		// Horizontal Tab Set (HTS)
		e.horizontalTabSet()
		return true
	})

	e.RegisterEscHandler('M', func() bool {
		// Reverse Index (RI)
		e.reverseIndex()
		return true
	})

	e.RegisterEscHandler('c', func() bool {
		// Reset Initial State (RIS)
		e.fullReset()
		return true
	})

	e.RegisterEscHandler('n', func() bool {
		// Locking Shift G2 (LS2)
		e.gl = 2
		return true
	})

	e.RegisterEscHandler('o', func() bool {
		// Locking Shift G3 (LS3)
		e.gl = 3
		return true
	})

	e.RegisterEscHandler('|', func() bool {
		// Locking Shift 3 Right (LS3R)
		e.gr = 3
		return true
	})

	e.RegisterEscHandler('}', func() bool {
		// Locking Shift 2 Right (LS2R)
		e.gr = 2
		return true
	})

	e.RegisterEscHandler('~', func() bool {
		// Locking Shift 1 Right (LS1R)
		e.gr = 1
		return true
	})
}
