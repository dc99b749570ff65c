package vt

// CsiHandler is a function that handles a CSI escape sequence.
type CsiHandler func(params Params) bool

// EscHandler is a function that handles an ESC escape sequence.
type EscHandler func() bool

// OscHandler is a function that handles an OSC escape sequence.
type OscHandler func(data []byte) bool

// DcsHandler is a function that handles a DCS escape sequence.
type DcsHandler func(params Params, data []byte) bool

// StringHandler is a function that handles an SOS, PM, or APC string.
type StringHandler func(data []byte) bool

// CcHandler is a function that handles a control character.
type CcHandler func() bool

// handlers holds the terminal's escape sequence handlers.
type handlers struct {
	ccHandlers  map[byte][]CcHandler
	csiHandlers map[int][]CsiHandler
	escHandlers map[int][]EscHandler
	oscHandlers map[int][]OscHandler
	dcsHandlers map[int][]DcsHandler
	apcHandlers []StringHandler
	sosHandlers []StringHandler
	pmHandlers  []StringHandler
}

// RegisterCsiHandler registers a CSI escape sequence handler.
func (h *handlers) RegisterCsiHandler(cmd int, handler CsiHandler) {
	if h.csiHandlers == nil {
		h.csiHandlers = make(map[int][]CsiHandler)
	}
	h.csiHandlers[cmd] = append(h.csiHandlers[cmd], handler)
}

// RegisterEscHandler registers an ESC escape sequence handler.
func (h *handlers) RegisterEscHandler(cmd int, handler EscHandler) {
	if h.escHandlers == nil {
		h.escHandlers = make(map[int][]EscHandler)
	}
	h.escHandlers[cmd] = append(h.escHandlers[cmd], handler)
}

// RegisterOscHandler registers an OSC escape sequence handler.
func (h *handlers) RegisterOscHandler(cmd int, handler OscHandler) {
	if h.oscHandlers == nil {
		h.oscHandlers = make(map[int][]OscHandler)
	}
	h.oscHandlers[cmd] = append(h.oscHandlers[cmd], handler)
}

// RegisterDcsHandler registers a DCS escape sequence handler.
func (h *handlers) RegisterDcsHandler(cmd int, handler DcsHandler) {
	if h.dcsHandlers == nil {
		h.dcsHandlers = make(map[int][]DcsHandler)
	}
	h.dcsHandlers[cmd] = append(h.dcsHandlers[cmd], handler)
}

// RegisterApcHandler registers an APC string handler.
func (h *handlers) RegisterApcHandler(handler StringHandler) {
	h.apcHandlers = append(h.apcHandlers, handler)
}

// RegisterSosHandler registers an SOS string handler.
func (h *handlers) RegisterSosHandler(handler StringHandler) {
	h.sosHandlers = append(h.sosHandlers, handler)
}

// RegisterPmHandler registers a PM string handler.
func (h *handlers) RegisterPmHandler(handler StringHandler) {
	h.pmHandlers = append(h.pmHandlers, handler)
}

// registerCcHandler registers a control character handler.
func (h *handlers) registerCcHandler(r byte, handler CcHandler) {
	if h.ccHandlers == nil {
		h.ccHandlers = make(map[byte][]CcHandler)
	}
	h.ccHandlers[r] = append(h.ccHandlers[r], handler)
}

// handleCc handles a control character. It returns true if the
// character was handled. Handlers run last-registered first.
func (h *handlers) handleCc(r byte) bool {
	for i := len(h.ccHandlers[r]) - 1; i >= 0; i-- {
		if h.ccHandlers[r][i]() {
			return true
		}
	}
	return false
}

// handleCsi handles a CSI escape sequence.
func (h *handlers) handleCsi(cmd Cmd, params Params) bool {
	if list, ok := h.csiHandlers[int(cmd)]; ok {
		for i := len(list) - 1; i >= 0; i-- {
			if list[i](params) {
				return true
			}
		}
	}
	return false
}

// handleEsc handles an ESC escape sequence.
func (h *handlers) handleEsc(cmd int) bool {
	if list, ok := h.escHandlers[cmd]; ok {
		for i := len(list) - 1; i >= 0; i-- {
			if list[i]() {
				return true
			}
		}
	}
	return false
}

// handleOsc handles an OSC escape sequence.
func (h *handlers) handleOsc(cmd int, data []byte) bool {
	if list, ok := h.oscHandlers[cmd]; ok {
		for i := len(list) - 1; i >= 0; i-- {
			if list[i](data) {
				return true
			}
		}
	}
	return false
}

// handleDcs handles a DCS escape sequence.
func (h *handlers) handleDcs(cmd Cmd, params Params, data []byte) bool {
	if list, ok := h.dcsHandlers[int(cmd)]; ok {
		for i := len(list) - 1; i >= 0; i-- {
			if list[i](params, data) {
				return true
			}
		}
	}
	return false
}

// handleApc handles an APC string.
func (h *handlers) handleApc(data []byte) bool {
	for i := len(h.apcHandlers) - 1; i >= 0; i-- {
		if h.apcHandlers[i](data) {
			return true
		}
	}
	return false
}

// handleSos handles an SOS string.
func (h *handlers) handleSos(data []byte) bool {
	for i := len(h.sosHandlers) - 1; i >= 0; i-- {
		if h.sosHandlers[i](data) {
			return true
		}
	}
	return false
}

// handlePm handles a PM string.
func (h *handlers) handlePm(data []byte) bool {
	for i := len(h.pmHandlers) - 1; i >= 0; i-- {
		if h.pmHandlers[i](data) {
			return true
		}
	}
	return false
}

// registerDefaultHandlers registers the default escape sequence handlers.
func (e *Emulator) registerDefaultHandlers() {
	e.registerDefaultCcHandlers()
	e.registerDefaultCsiHandlers()
	e.registerDefaultEscHandlers()
	e.registerDefaultOscHandlers()
}
