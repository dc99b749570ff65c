// Package termkeys translates named keys and modifier combos into the
// byte sequences a PTY expects.
package termkeys

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// keyMap holds the escape sequences for every named key. Single
// printable characters resolve to themselves and need no entry.
var keyMap = map[string]string{
	"up":    "\x1b[A",
	"down":  "\x1b[B",
	"right": "\x1b[C",
	"left":  "\x1b[D",

	"home":     "\x1b[H",
	"end":      "\x1b[F",
	"pageup":   "\x1b[5~",
	"pagedown": "\x1b[6~",
	"insert":   "\x1b[2~",
	"delete":   "\x1b[3~",

	"enter":     "\r",
	"return":    "\r",
	"tab":       "\t",
	"backspace": "\x7f",
	"escape":    "\x1b",
	"esc":       "\x1b",
	"space":     " ",

	"f1":  "\x1bOP",
	"f2":  "\x1bOQ",
	"f3":  "\x1bOR",
	"f4":  "\x1bOS",
	"f5":  "\x1b[15~",
	"f6":  "\x1b[17~",
	"f7":  "\x1b[18~",
	"f8":  "\x1b[19~",
	"f9":  "\x1b[20~",
	"f10": "\x1b[21~",
	"f11": "\x1b[23~",
	"f12": "\x1b[24~",
}

// Known reports whether a key name resolves to bytes: either a named
// key or a single printable character.
func Known(name string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	if _, ok := keyMap[name]; ok {
		return true
	}
	return utf8.RuneCountInString(name) == 1
}

// Bytes resolves a key name plus modifiers (ctrl, alt, shift) to the
// sequence to write into the PTY. Ctrl folds letters into control
// bytes, shift upcases letters, alt prefixes ESC.
func Bytes(name string, mods []string) ([]byte, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return nil, fmt.Errorf("empty key name")
	}

	var ctrl, alt, shift bool
	for _, raw := range mods {
		switch normalizeModifier(raw) {
		case "ctrl":
			ctrl = true
		case "alt":
			alt = true
		case "shift":
			shift = true
		case "":
			return nil, fmt.Errorf("unknown modifier %q", raw)
		}
	}

	seq, named := keyMap[name]
	if !named {
		if utf8.RuneCountInString(name) != 1 {
			return nil, fmt.Errorf("unknown key %q", name)
		}
		seq = name
	}

	if r, isLetter := singleLetter(name); isLetter {
		switch {
		case ctrl:
			seq = string(rune(r - 'a' + 1))
		case shift:
			seq = strings.ToUpper(name)
		}
	}
	if alt {
		seq = "\x1b" + seq
	}
	return []byte(seq), nil
}

// Combo resolves a full "ctrl+shift+left" combo. A trailing plus means
// the key itself is "+".
func Combo(combo string) ([]byte, error) {
	combo = strings.ToLower(strings.TrimSpace(combo))
	if combo == "" {
		return nil, fmt.Errorf("empty key combo")
	}
	parts := strings.Split(combo, "+")
	name := parts[len(parts)-1]
	mods := parts[:len(parts)-1]
	if name == "" && len(mods) > 0 {
		// A trailing plus means the key itself is "+"; the split
		// leaves an empty modifier behind for it.
		name = "+"
		mods = mods[:len(mods)-1]
	}
	return Bytes(name, mods)
}

func singleLetter(name string) (rune, bool) {
	if utf8.RuneCountInString(name) != 1 {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(name)
	if r < 'a' || r > 'z' {
		return 0, false
	}
	return r, true
}

func normalizeModifier(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "ctrl", "control":
		return "ctrl"
	case "alt", "option", "meta":
		return "alt"
	case "shift":
		return "shift"
	default:
		return ""
	}
}
