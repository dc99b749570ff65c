package vt

func (e *Emulator) registerCsiModeHandlers() {
	e.RegisterCsiHandler('h', func(params Params) bool {
		// Set Mode (SM) - ANSI
		e.handleMode(params, true, true)
		return true
	})

	e.RegisterCsiHandler(command('?', 0, 'h'), func(params Params) bool {
		// Set Mode (SM) - DEC
		e.handleMode(params, true, false)
		return true
	})

	e.RegisterCsiHandler('l', func(params Params) bool {
		// Reset Mode (RM) - ANSI
		e.handleMode(params, false, true)
		return true
	})

	e.RegisterCsiHandler(command('?', 0, 'l'), func(params Params) bool {
		// Reset Mode (RM) - DEC
		e.handleMode(params, false, false)
		return true
	})

	e.RegisterCsiHandler('m', func(params Params) bool {
		// Select Graphic Rendition (SGR)
		e.handleSgr(params)
		return true
	})
}
