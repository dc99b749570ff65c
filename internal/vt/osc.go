package vt

import (
	"bytes"
	"image/color"

	"github.com/charmbracelet/x/ansi"
)

func (e *Emulator) handleTitle(cmd int, data []byte) {
	// The payload keeps its numeric prefix; the title itself may
	// contain semicolons, so split only once.
	parts := bytes.SplitN(data, []byte{';'}, 2)
	if len(parts) != 2 {
		return
	}
	name := string(parts[1])
	switch cmd {
	case 0: // window title and icon name
		e.iconName, e.title = name, name
		if e.cb.Title != nil {
			e.cb.Title(name)
		}
		if e.cb.IconName != nil {
			e.cb.IconName(name)
		}
	case 1: // icon name
		e.iconName = name
		if e.cb.IconName != nil {
			e.cb.IconName(name)
		}
	case 2: // window title
		e.title = name
		if e.cb.Title != nil {
			e.cb.Title(name)
		}
	}
}

type defaultColorKind int

const (
	defaultColorForeground defaultColorKind = iota
	defaultColorBackground
	defaultColorCursor
)

func defaultColorKindForCmd(cmd int) (defaultColorKind, bool) {
	switch cmd {
	case 10, 110:
		return defaultColorForeground, true
	case 11, 111:
		return defaultColorBackground, true
	case 12, 112:
		return defaultColorCursor, true
	default:
		return 0, false
	}
}

func (e *Emulator) handleDefaultColor(cmd int, data []byte) {
	kind, ok := defaultColorKindForCmd(cmd)
	if !ok {
		return
	}
	parts := bytes.Split(data, []byte{';'})
	switch len(parts) {
	case 1:
		// The bare reset form, OSC 110 through 112.
		e.applyDefaultColor(kind, nil)
	case 2:
		arg := string(parts[1])
		if arg == "?" {
			e.queryDefaultColor(kind)
			return
		}
		if c := ansi.XParseColor(arg); c != nil {
			e.applyDefaultColor(kind, c)
		}
	}
}

func (e *Emulator) applyDefaultColor(kind defaultColorKind, c color.Color) {
	switch kind {
	case defaultColorForeground:
		e.fg = c
		if e.cb.ForegroundColor != nil {
			e.cb.ForegroundColor(c)
		}
	case defaultColorBackground:
		e.bg = c
		if e.cb.BackgroundColor != nil {
			e.cb.BackgroundColor(c)
		}
	case defaultColorCursor:
		e.curColor = c
		if e.cb.CursorColor != nil {
			e.cb.CursorColor(c)
		}
	}
}

// queryDefaultColor answers a "?" payload with the current color. A
// color that was never set has no concrete value until render time, so
// no reply is sent.
func (e *Emulator) queryDefaultColor(kind defaultColorKind) {
	var xrgb ansi.XRGBColor
	switch kind {
	case defaultColorForeground:
		xrgb.Color = e.fg
		if xrgb.Color != nil {
			e.respond([]byte(ansi.SetForegroundColor(xrgb.String())))
		}
	case defaultColorBackground:
		xrgb.Color = e.bg
		if xrgb.Color != nil {
			e.respond([]byte(ansi.SetBackgroundColor(xrgb.String())))
		}
	case defaultColorCursor:
		xrgb.Color = e.curColor
		if xrgb.Color != nil {
			e.respond([]byte(ansi.SetCursorColor(xrgb.String())))
		}
	}
}

func (e *Emulator) handleWorkingDirectory(cmd int, data []byte) {
	if cmd != 7 {
		return
	}
	parts := bytes.SplitN(data, []byte{';'}, 2)
	if len(parts) != 2 {
		return
	}
	path := string(parts[1])
	e.cwd = path
	if e.cb.WorkingDirectory != nil {
		e.cb.WorkingDirectory(path)
	}
}

func (e *Emulator) handleHyperlink(cmd int, data []byte) {
	parts := bytes.SplitN(data, []byte{';'}, 3)
	if len(parts) != 3 || cmd != 8 {
		return
	}
	// The payload is "8;params;uri"; an empty uri closes the link.
	e.scr.cur.Link.Params = string(parts[1])
	e.scr.cur.Link.URL = string(parts[2])
}
