package vt

// Param is one CSI parameter. Sub marks a value attached to the
// previous parameter with a colon, as in SGR 4:3.
type Param struct {
	Value   int
	Sub     bool
	Missing bool
}

// Params is the parameter list of a CSI or DCS sequence.
type Params []Param

// Param returns the i-th parameter. The second result reports whether
// sub-parameters follow it, the third whether the parameter was
// actually present (a missing or out-of-range parameter yields def).
func (p Params) Param(i, def int) (int, bool, bool) {
	if i < 0 || i >= len(p) {
		return def, false, false
	}
	hasSub := i+1 < len(p) && p[i+1].Sub
	if p[i].Missing {
		return def, hasSub, false
	}
	return p[i].Value, hasSub, true
}

// command packs prefix, intermediate and final bytes into a registry
// key. Plain sequences key on the final byte alone, so handlers for
// e.g. 'J' register with the byte literal.
func command(prefix, intermed, final byte) int {
	return int(final) | int(prefix)<<8 | int(intermed)<<16
}

// Cmd is a packed command key.
type Cmd int

// Final returns the final byte of the command.
func (c Cmd) Final() byte {
	return byte(c)
}

// Prefix returns the private prefix byte, or zero.
func (c Cmd) Prefix() byte {
	return byte(c >> 8)
}

// Intermediate returns the intermediate byte, or zero.
func (c Cmd) Intermediate() byte {
	return byte(c >> 16)
}
