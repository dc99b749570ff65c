package vt

import (
	"github.com/charmbracelet/x/ansi"

	"github.com/aayushadhikari7/termgif/internal/termframe"
)

func (e *Emulator) registerCsiDeviceHandlers() {
	e.RegisterCsiHandler('c', func(params Params) bool {
		// Primary Device Attributes (DA1)
		n, _, _ := params.Param(0, 0)
		if n != 0 {
			return false
		}
		e.respond([]byte(ansi.PrimaryDeviceAttributes(
			62, // VT220
			1,  // 132 columns
			6,  // Selective Erase
			22, // ANSI color
		)))
		return true
	})

	e.RegisterCsiHandler(command('>', 0, 'c'), func(params Params) bool {
		// Secondary Device Attributes (DA2)
		n, _, _ := params.Param(0, 0)
		if n != 0 {
			return false
		}
		e.respond([]byte(ansi.SecondaryDeviceAttributes(
			1,  // VT220
			10, // Version 1.0
			0,  // ROM cartridge is always zero
		)))
		return true
	})

	e.RegisterCsiHandler('n', func(params Params) bool {
		// Device Status Report (DSR)
		n, _, ok := params.Param(0, 1)
		if !ok || n == 0 {
			return false
		}
		switch n {
		case 5: // operating status, always ready
			e.respond([]byte(ansi.DeviceStatusReport(ansi.DECStatusReport(0))))
		case 6: // Cursor Position Report (CPR)
			x, y := e.scr.CursorPosition()
			e.respond([]byte(ansi.CursorPositionReport(y+1, x+1)))
		default:
			return false
		}
		return true
	})

	e.RegisterCsiHandler(command('?', 0, 'n'), func(params Params) bool {
		n, _, ok := params.Param(0, 1)
		if !ok || n == 0 {
			return false
		}
		switch n {
		case 6: // Extended Cursor Position Report (DECXCPR), no pages
			x, y := e.scr.CursorPosition()
			e.respond([]byte(ansi.ExtendedCursorPositionReport(y+1, x+1, 0)))
		default:
			return false
		}
		return true
	})

	e.RegisterCsiHandler(command(0, ' ', 'q'), func(params Params) bool {
		// Set Cursor Style (DECSCUSR)
		n := 1
		if param, _, ok := params.Param(0, 0); ok && param > n {
			n = param
		}
		blink := n == 0 || n%2 == 1
		style := n / 2
		if !blink {
			style--
		}
		shape := termframe.CursorBlock
		switch style {
		case 1:
			shape = termframe.CursorUnderline
		case 2:
			shape = termframe.CursorBar
		}
		e.scr.setCursorShape(shape)
		if e.cb.CursorStyle != nil {
			e.cb.CursorStyle(shape, blink)
		}
		return true
	})
}
