package vt

// charsetTable maps GL runes to their designated glyphs. A nil table
// means US ASCII, the identity mapping.
type charsetTable map[rune]rune

// decSpecialDrawing is the DEC Special Graphics set designated with
// ESC ( 0. TUI programs use it for box drawing on terminals without
// Unicode output.
var decSpecialDrawing = charsetTable{
	'_': ' ',
	'`': '◆', // diamond
	'a': '▒', // checkerboard
	'b': '␉', // HT symbol
	'c': '␌', // FF symbol
	'd': '␍', // CR symbol
	'e': '␊', // LF symbol
	'f': '°', // degree
	'g': '±', // plus minus
	'h': '␤', // NL symbol
	'i': '␋', // VT symbol
	'j': '┘', // lower right corner
	'k': '┐', // upper right corner
	'l': '┌', // upper left corner
	'm': '└', // lower left corner
	'n': '┼', // crossing lines
	'o': '⎺', // scan line 1
	'p': '⎻', // scan line 3
	'q': '─', // horizontal line
	'r': '⎼', // scan line 7
	's': '⎽', // scan line 9
	't': '├', // left tee
	'u': '┤', // right tee
	'v': '┴', // bottom tee
	'w': '┬', // top tee
	'x': '│', // vertical line
	'y': '≤', // less or equal
	'z': '≥', // greater or equal
	'{': 'π', // pi
	'|': '≠', // not equal
	'}': '£', // pound sign
	'~': '·', // centered dot
}

// designateCharset assigns a character set to slot G0-G3. Only US
// ASCII and DEC Special Graphics are supported; anything else resets
// the slot to ASCII.
func (e *Emulator) designateCharset(slot int, set byte) {
	if slot < 0 || slot >= len(e.charsets) {
		return
	}
	switch set {
	case '0':
		e.charsets[slot] = decSpecialDrawing
	default:
		e.charsets[slot] = nil
	}
}
