package vt

import "unicode/utf8"

// Collection limits. Sequences that exceed them are consumed to their
// terminator but the excess is dropped.
const (
	maxParams     = 32
	maxParamValue = 65535
	maxStringData = 4096
)

// C0 bytes the parser cares about.
const (
	belByte = 0x07
	canByte = 0x18
	subByte = 0x1a
	escByte = 0x1b
	delByte = 0x7f
)

type parserState int

const (
	stateGround parserState = iota
	stateEscape
	stateEscapeIntermediate
	stateCsi
	stateOsc
	stateDcs
	stateDcsPassthrough
	stateSosPmApc
)

// dispatcher receives the decoded stream. The emulator implements it.
type dispatcher interface {
	print(r rune)
	execute(b byte)
	csiDispatch(cmd Cmd, params Params)
	escDispatch(cmd Cmd)
	oscDispatch(data []byte)
	dcsDispatch(cmd Cmd, params Params, data []byte)
	sosDispatch(data []byte)
	pmDispatch(data []byte)
	apcDispatch(data []byte)
}

// parser is a byte oriented VT500 style state machine. It assembles
// UTF-8 runes in ground state and collects parameters, intermediates
// and string payloads for the escape states. It holds no terminal
// state of its own, everything is forwarded to the dispatcher.
type parser struct {
	d     dispatcher
	state parserState

	// Partial UTF-8 rune carried across Feed boundaries.
	runeBuf  [utf8.UTFMax]byte
	runeLen  int
	runeNeed int

	// CSI, DCS and ESC collection.
	params    Params
	value     int
	hasValue  bool
	subNext   bool
	savedSep  bool
	prefix    byte
	intermed  byte
	final     byte
	malformed bool

	// String payloads (OSC, DCS, SOS, PM, APC).
	data     []byte
	dataKind byte // ']', 'P', 'X', '^' or '_'
	sawEsc   bool
}

func newParser(d dispatcher) *parser {
	return &parser{d: d, params: make(Params, 0, maxParams)}
}

// feed advances the state machine over a chunk of bytes.
func (p *parser) feed(b []byte) {
	for _, c := range b {
		p.advance(c)
	}
}

func (p *parser) advance(b byte) {
	switch p.state {
	case stateGround:
		p.advanceGround(b)
	case stateEscape:
		p.advanceEscape(b)
	case stateEscapeIntermediate:
		p.advanceEscapeIntermediate(b)
	case stateCsi:
		p.advanceCsi(b)
	case stateOsc:
		p.advanceString(b, true)
	case stateDcs:
		p.advanceDcs(b)
	case stateDcsPassthrough:
		p.advanceString(b, false)
	case stateSosPmApc:
		p.advanceString(b, false)
	}
}

func (p *parser) advanceGround(b byte) {
	if p.runeNeed > 0 {
		if b >= 0x80 && b < 0xc0 {
			p.runeBuf[p.runeLen] = b
			p.runeLen++
			if p.runeLen == p.runeNeed {
				r, _ := utf8.DecodeRune(p.runeBuf[:p.runeLen])
				p.runeLen, p.runeNeed = 0, 0
				p.d.print(r)
			}
			return
		}
		// Broken sequence. Drop it and reprocess the byte.
		p.runeLen, p.runeNeed = 0, 0
	}

	switch {
	case b == escByte:
		p.enterEscape()
	case b < 0x20 || b == delByte:
		if b != delByte {
			p.d.execute(b)
		}
	case b < 0x80:
		p.d.print(rune(b))
	case b >= 0xc2 && b < 0xe0:
		p.startRune(b, 2)
	case b >= 0xe0 && b < 0xf0:
		p.startRune(b, 3)
	case b >= 0xf0 && b < 0xf5:
		p.startRune(b, 4)
	case b >= 0x80 && b < 0xa0:
		// Not a valid UTF-8 start, treat as an 8-bit C1 control.
		p.executeC1(b)
	default:
		// Stray continuation or overlong start byte.
	}
}

func (p *parser) startRune(b byte, need int) {
	p.runeBuf[0] = b
	p.runeLen = 1
	p.runeNeed = need
}

// executeC1 maps a raw C1 byte to its ESC Fe equivalent.
func (p *parser) executeC1(b byte) {
	switch b {
	case 0x9b: // CSI
		p.enterCsi()
	case 0x9d: // OSC
		p.enterString(']')
	case 0x90: // DCS
		p.enterDcs()
	case 0x98: // SOS
		p.enterString('X')
	case 0x9e: // PM
		p.enterString('^')
	case 0x9f: // APC
		p.enterString('_')
	default:
		p.d.execute(b)
	}
}

func (p *parser) enterEscape() {
	p.state = stateEscape
	p.intermed = 0
	p.malformed = false
}

func (p *parser) advanceEscape(b byte) {
	switch {
	case b == '[':
		p.enterCsi()
	case b == ']':
		p.enterString(']')
	case b == 'P':
		p.enterDcs()
	case b == 'X':
		p.enterString('X')
	case b == '^':
		p.enterString('^')
	case b == '_':
		p.enterString('_')
	case b >= 0x20 && b < 0x30:
		p.intermed = b
		p.state = stateEscapeIntermediate
	case b >= 0x30 && b < 0x7f:
		p.state = stateGround
		p.d.escDispatch(Cmd(command(0, 0, b)))
	case b == escByte:
		p.enterEscape()
	case b == canByte || b == subByte:
		p.state = stateGround
	case b < 0x20:
		p.d.execute(b)
	default:
		p.state = stateGround
	}
}

func (p *parser) advanceEscapeIntermediate(b byte) {
	switch {
	case b >= 0x20 && b < 0x30:
		// Only one intermediate is kept.
		p.malformed = true
	case b >= 0x30 && b < 0x7f:
		p.state = stateGround
		if !p.malformed {
			p.d.escDispatch(Cmd(command(0, p.intermed, b)))
		}
	case b == escByte:
		p.enterEscape()
	case b == canByte || b == subByte:
		p.state = stateGround
	case b < 0x20:
		p.d.execute(b)
	default:
		p.state = stateGround
	}
}

func (p *parser) enterCsi() {
	p.state = stateCsi
	p.params = p.params[:0]
	p.value = 0
	p.hasValue = false
	p.subNext = false
	p.savedSep = false
	p.prefix = 0
	p.intermed = 0
	p.malformed = false
}

func (p *parser) advanceCsi(b byte) {
	switch {
	case b >= '0' && b <= '9':
		if p.intermed != 0 {
			p.malformed = true
			return
		}
		if p.value < maxParamValue {
			p.value = p.value*10 + int(b-'0')
			if p.value > maxParamValue {
				p.value = maxParamValue
			}
		}
		p.hasValue = true
	case b == ';' || b == ':':
		if p.intermed != 0 {
			p.malformed = true
			return
		}
		p.pushParam()
		p.subNext = b == ':'
		p.savedSep = true
	case b >= 0x3c && b <= 0x3f:
		// Private prefix, valid only before any parameter.
		if len(p.params) > 0 || p.hasValue || p.prefix != 0 || p.intermed != 0 {
			p.malformed = true
			return
		}
		p.prefix = b
	case b >= 0x20 && b < 0x30:
		if p.intermed != 0 {
			p.malformed = true
			return
		}
		p.intermed = b
	case b >= 0x40 && b < 0x7f:
		p.finishParams()
		p.state = stateGround
		if !p.malformed {
			p.d.csiDispatch(Cmd(command(p.prefix, p.intermed, b)), p.params)
		}
	case b == escByte:
		p.enterEscape()
	case b == canByte || b == subByte:
		p.state = stateGround
	case b < 0x20:
		// C0 controls execute inside a control sequence.
		if b != delByte {
			p.d.execute(b)
		}
	default:
		p.malformed = true
	}
}

func (p *parser) pushParam() {
	if len(p.params) >= maxParams {
		p.hasValue = false
		p.value = 0
		return
	}
	prm := Param{Value: p.value, Sub: p.subNext, Missing: !p.hasValue}
	p.params = append(p.params, prm)
	p.value = 0
	p.hasValue = false
}

// finishParams flushes the trailing parameter, if any, before dispatch.
func (p *parser) finishParams() {
	if p.hasValue || p.savedSep {
		p.pushParam()
	}
}

func (p *parser) enterString(kind byte) {
	p.state = stateOsc
	if kind != ']' {
		p.state = stateSosPmApc
	}
	p.dataKind = kind
	p.data = p.data[:0]
	p.sawEsc = false
}

func (p *parser) enterDcs() {
	p.enterCsi()
	p.state = stateDcs
}

func (p *parser) advanceDcs(b byte) {
	switch {
	case b >= '0' && b <= '9':
		if p.value < maxParamValue {
			p.value = p.value*10 + int(b-'0')
			if p.value > maxParamValue {
				p.value = maxParamValue
			}
		}
		p.hasValue = true
	case b == ';' || b == ':':
		p.pushParam()
		p.subNext = b == ':'
		p.savedSep = true
	case b >= 0x3c && b <= 0x3f:
		p.prefix = b
	case b >= 0x20 && b < 0x30:
		p.intermed = b
	case b >= 0x40 && b < 0x7f:
		p.finishParams()
		p.final = b
		p.dataKind = 'P'
		p.data = p.data[:0]
		p.sawEsc = false
		p.state = stateDcsPassthrough
	case b == escByte:
		p.enterEscape()
	case b == canByte || b == subByte:
		p.state = stateGround
	}
}

// advanceString collects OSC, DCS and SOS/PM/APC payloads. OSC also
// terminates on BEL; everything terminates on ST (ESC backslash).
func (p *parser) advanceString(b byte, allowBel bool) {
	if p.sawEsc {
		p.sawEsc = false
		if b == '\\' {
			p.terminateString()
			return
		}
		// Aborted by another escape sequence.
		p.enterEscape()
		p.advance(b)
		return
	}
	switch {
	case b == escByte:
		p.sawEsc = true
	case allowBel && b == belByte:
		p.terminateString()
	case b == canByte || b == subByte:
		p.state = stateGround
	default:
		if len(p.data) < maxStringData {
			p.data = append(p.data, b)
		}
	}
}

func (p *parser) terminateString() {
	state := p.state
	p.state = stateGround
	switch {
	case state == stateOsc:
		p.d.oscDispatch(p.data)
	case state == stateDcsPassthrough:
		p.d.dcsDispatch(Cmd(command(p.prefix, p.intermed, p.final)), p.params, p.data)
	case p.dataKind == 'X':
		p.d.sosDispatch(p.data)
	case p.dataKind == '^':
		p.d.pmDispatch(p.data)
	case p.dataKind == '_':
		p.d.apcDispatch(p.data)
	}
}
