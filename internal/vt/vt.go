// Package vt implements an in-process terminal emulator. It consumes a
// byte stream of terminal output and maintains a cell grid, cursor and
// scroll state, which callers snapshot into termframe.Frame values.
//
// Styles and colors stay semantic: an SGR 31 is recorded as the basic
// red slot, not as a concrete RGB value, so a snapshot can be rendered
// under any theme later. Sequences the emulator does not understand are
// consumed and dropped without disturbing the grid.
package vt

import (
	"image/color"
	"sync"

	"github.com/mattn/go-runewidth"

	"github.com/aayushadhikari7/termgif/internal/termframe"
)

// Callbacks receive terminal events as output is processed. They run
// with the emulator lock held, so they must not call back into the
// emulator and should return quickly.
type Callbacks struct {
	Title            func(title string)
	IconName         func(name string)
	Bell             func()
	CursorVisibility func(visible bool)
	CursorStyle      func(shape termframe.CursorShape, blink bool)
	AltScreen        func(active bool)
	ForegroundColor  func(c color.Color)
	BackgroundColor  func(c color.Color)
	CursorColor      func(c color.Color)
	WorkingDirectory func(dir string)
}

// modes holds the ANSI and DEC private mode flags the emulator tracks.
type modes struct {
	cursorKeys     bool // DECCKM
	origin         bool // DECOM
	autowrap       bool // DECAWM
	insert         bool // IRM
	newline        bool // LNM
	cursorBlink    bool // att610
	keypadApp      bool // DECKPAM
	bracketedPaste bool
}

func defaultModes() modes {
	return modes{autowrap: true, cursorBlink: true}
}

// Emulator is a VT100 style terminal emulator. It is safe for
// concurrent use; a single mutex serializes writes and snapshots.
type Emulator struct {
	mu sync.Mutex

	parser *parser
	handlers

	primary *Screen
	alt     *Screen
	scr     *Screen // active screen

	// savedPrimary captures the primary screen at the moment the
	// alternate buffer is entered. Leaving the alternate buffer
	// restores it exactly, content and dimensions both, no matter
	// what happened in between.
	savedPrimary *Screen
	inAlt        bool

	damage *DamageTracker

	tabstops *TabStops
	charsets [4]charsetTable
	gl       int
	gr       int
	gsingle  int

	modes    modes
	lastChar rune

	title    string
	iconName string
	cwd      string

	fg, bg, curColor color.Color

	cb Callbacks

	rsp    chan []byte
	closed bool
	once   sync.Once
}

// NewEmulator creates an emulator with a blank primary screen of the
// given size.
func NewEmulator(cols, rows int) *Emulator {
	e := &Emulator{
		damage: &DamageTracker{},
		rsp:    make(chan []byte, 8),
		modes:  defaultModes(),
	}
	e.parser = newParser(e)
	e.primary = NewScreen(cols, rows)
	e.alt = NewScreen(cols, rows)
	e.scr = e.primary
	e.primary.damage = e.damage
	e.damage.Resize(e.primary.cols, e.primary.rows)
	e.tabstops = DefaultTabStops(e.primary.cols)
	e.registerDefaultHandlers()
	return e
}

// SetCallbacks installs the event callbacks. Pass the zero value to
// remove them.
func (e *Emulator) SetCallbacks(cb Callbacks) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cb = cb
}

// Write feeds terminal output to the emulator. It implements io.Writer
// and never fails; malformed sequences are consumed and dropped.
func (e *Emulator) Write(p []byte) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.parser.feed(p)
	return len(p), nil
}

// WriteString feeds a string of terminal output to the emulator.
func (e *Emulator) WriteString(s string) (int, error) {
	return e.Write([]byte(s))
}

// Size returns the active screen size in cells.
func (e *Emulator) Size() (cols, rows int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scr.cols, e.scr.rows
}

// Resize changes the screen size, keeping the top-left intersection of
// the existing content. Both buffers resize; a primary screen saved on
// alternate buffer entry is left alone so leaving the alternate buffer
// still restores the pre-entry state.
func (e *Emulator) Resize(cols, rows int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.primary.Resize(cols, rows)
	e.alt.Resize(cols, rows)
	e.tabstops.Resize(e.scr.cols)
	e.damage.Resize(e.scr.cols, e.scr.rows)
}

// Snapshot copies the active screen into an immutable frame.
func (e *Emulator) Snapshot() termframe.Frame {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scr.Snapshot()
}

// ConsumeDamage returns what changed since the previous call and
// resets the tracker.
func (e *Emulator) ConsumeDamage() DamageState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.damage.Consume()
}

// Dirty reports whether anything changed since the last ConsumeDamage.
func (e *Emulator) Dirty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.damage.Dirty()
}

// Responses returns the channel carrying replies to query sequences
// such as cursor position or device attribute reports. The channel has
// a small buffer; replies are dropped when nobody drains it.
func (e *Emulator) Responses() <-chan []byte {
	return e.rsp
}

// Close releases the response channel. The emulator must not be
// written to after Close.
func (e *Emulator) Close() {
	e.once.Do(func() {
		e.mu.Lock()
		e.closed = true
		e.mu.Unlock()
		close(e.rsp)
	})
}

// respond queues a reply for the application. Replies are dropped when
// the buffer is full so a slow or absent reader cannot stall parsing.
func (e *Emulator) respond(b []byte) {
	if e.closed || len(b) == 0 {
		return
	}
	select {
	case e.rsp <- b:
	default:
	}
}

// Title returns the window title set via OSC 0 or 2.
func (e *Emulator) Title() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.title
}

// IconName returns the icon name set via OSC 0 or 1.
func (e *Emulator) IconName() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.iconName
}

// WorkingDirectory returns the directory last reported via OSC 7.
func (e *Emulator) WorkingDirectory() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cwd
}

// ForegroundColor returns the default foreground set via OSC 10, or
// nil when the theme default applies.
func (e *Emulator) ForegroundColor() color.Color {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.fg
}

// BackgroundColor returns the default background set via OSC 11, or
// nil when the theme default applies.
func (e *Emulator) BackgroundColor() color.Color {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.bg
}

// CursorColor returns the cursor color set via OSC 12, or nil.
func (e *Emulator) CursorColor() color.Color {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.curColor
}

// AltScreen reports whether the alternate buffer is active.
func (e *Emulator) AltScreen() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.inAlt
}

// CursorKeysApplication reports DECCKM state, which changes the bytes
// arrow keys should send.
func (e *Emulator) CursorKeysApplication() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.modes.cursorKeys
}

// print writes a rune at the cursor, handling autowrap, wide runes and
// charset translation. The parser calls it for every graphic rune.
func (e *Emulator) print(r rune) {
	r = e.translateRune(r)
	w := runewidth.RuneWidth(r)
	s := e.scr

	if w == 0 {
		// Combining mark: attach to the previously written cell.
		e.combine(r)
		return
	}

	if s.pendingWrap && e.modes.autowrap {
		s.pendingWrap = false
		s.cur.X = 0
		e.index()
	}

	if w > 1 && s.cur.X+w > s.cols {
		if !e.modes.autowrap {
			// No room and no wrap: the wide rune is dropped.
			return
		}
		s.cur.X = 0
		e.index()
	}

	if e.modes.insert {
		s.InsertCell(w)
	}

	s.SetCell(s.cur.X, s.cur.Y, termframe.Cell{
		Content: string(r),
		Width:   w,
		Style:   s.cur.Pen,
		Link:    s.cur.Link,
	})
	e.lastChar = r

	next := s.cur.X + w
	switch {
	case next < s.cols:
		s.cur.X = next
	case e.modes.autowrap:
		s.cur.X = s.cols - 1
		s.pendingWrap = true
	default:
		s.cur.X = s.cols - 1
	}
	s.damage.MarkCursor()
}

// combine appends a zero width rune to the cell before the cursor.
func (e *Emulator) combine(r rune) {
	s := e.scr
	x := s.cur.X
	if !s.pendingWrap {
		x--
	}
	for ; x >= 0; x-- {
		cell := s.CellAt(x, s.cur.Y)
		if cell == nil {
			return
		}
		if cell.Width > 0 {
			cell.Content += string(r)
			s.damage.MarkRow(s.cur.Y)
			return
		}
	}
}

// execute runs a C0 or C1 control character.
func (e *Emulator) execute(b byte) {
	e.handleCc(b)
}

func (e *Emulator) csiDispatch(cmd Cmd, params Params) {
	e.handleCsi(cmd, params)
}

func (e *Emulator) escDispatch(cmd Cmd) {
	e.handleEsc(int(cmd))
}

// oscDispatch routes an OSC payload by its numeric command. Handlers
// receive the full payload including the number.
func (e *Emulator) oscDispatch(data []byte) {
	cmd := 0
	seen := false
	for _, b := range data {
		if b < '0' || b > '9' {
			break
		}
		cmd = cmd*10 + int(b-'0')
		seen = true
		if cmd > maxParamValue {
			return
		}
	}
	if !seen {
		return
	}
	e.handleOsc(cmd, data)
}

func (e *Emulator) dcsDispatch(cmd Cmd, params Params, data []byte) {
	e.handleDcs(cmd, params, data)
}

func (e *Emulator) sosDispatch(data []byte) { e.handleSos(data) }
func (e *Emulator) pmDispatch(data []byte)  { e.handlePm(data) }
func (e *Emulator) apcDispatch(data []byte) { e.handleApc(data) }

// translateRune maps a rune through the active charset. A single shift
// from SS2 or SS3 applies to one rune only.
func (e *Emulator) translateRune(r rune) rune {
	slot := e.gl
	if e.gsingle > 0 {
		slot = e.gsingle
		e.gsingle = 0
	}
	table := e.charsets[slot]
	if table == nil {
		return r
	}
	if t, ok := table[r]; ok {
		return t
	}
	return r
}

// setCursorPosition moves the cursor to an absolute position honoring
// origin mode, where coordinates are relative to the scroll region.
func (e *Emulator) setCursorPosition(x, y int) {
	s := e.scr
	if e.modes.origin {
		y += s.top
		y = max(s.top, min(y, s.bottom-1))
	}
	s.setCursor(x, y)
}

// linefeed handles LF, VT and FF. In newline mode it also returns the
// carriage.
func (e *Emulator) linefeed() {
	e.index()
	if e.modes.newline {
		e.carriageReturn()
	}
}

// index moves the cursor down one row, scrolling the region up when
// the cursor sits on the bottom margin.
func (e *Emulator) index() {
	s := e.scr
	s.pendingWrap = false
	switch {
	case s.cur.Y == s.bottom-1:
		s.ScrollUp(1)
	case s.cur.Y < s.rows-1:
		s.cur.Y++
		s.damage.MarkCursor()
	}
}

// reverseIndex moves the cursor up one row, scrolling the region down
// when the cursor sits on the top margin.
func (e *Emulator) reverseIndex() {
	s := e.scr
	s.pendingWrap = false
	switch {
	case s.cur.Y == s.top:
		s.ScrollDown(1)
	case s.cur.Y > 0:
		s.cur.Y--
		s.damage.MarkCursor()
	}
}

func (e *Emulator) nextLine() {
	e.index()
	e.carriageReturn()
}

func (e *Emulator) carriageReturn() {
	s := e.scr
	s.pendingWrap = false
	if s.cur.X != 0 {
		s.cur.X = 0
		s.damage.MarkCursor()
	}
}

func (e *Emulator) backspace() {
	s := e.scr
	s.pendingWrap = false
	if s.cur.X > 0 {
		s.cur.X--
		s.damage.MarkCursor()
	}
}

// nextTab moves the cursor right to the nth next tab stop.
func (e *Emulator) nextTab(n int) {
	s := e.scr
	x := s.cur.X
	for i := 0; i < n; i++ {
		x = e.tabstops.Next(x)
	}
	if x != s.cur.X {
		s.cur.X = min(x, s.cols-1)
		s.pendingWrap = false
		s.damage.MarkCursor()
	}
}

// prevTab moves the cursor left to the nth previous tab stop.
func (e *Emulator) prevTab(n int) {
	s := e.scr
	x := s.cur.X
	for i := 0; i < n; i++ {
		x = e.tabstops.Prev(x)
	}
	if x != s.cur.X {
		s.cur.X = max(x, 0)
		s.pendingWrap = false
		s.damage.MarkCursor()
	}
}

func (e *Emulator) horizontalTabSet() {
	e.tabstops.Set(e.scr.cur.X)
}

func (e *Emulator) resetTabStops() {
	e.tabstops = DefaultTabStops(e.scr.cols)
}

// repeatPreviousCharacter implements REP by reprinting the last
// graphic rune.
func (e *Emulator) repeatPreviousCharacter(n int) {
	if e.lastChar == 0 {
		return
	}
	r := e.lastChar
	for i := 0; i < n; i++ {
		e.print(r)
	}
	e.lastChar = r
}

// enterAltScreen switches to the alternate buffer, saving the primary
// screen so it can be restored exactly on exit.
func (e *Emulator) enterAltScreen(clear bool) {
	if e.inAlt {
		return
	}
	e.savedPrimary = e.primary.clone()
	// The cursor carries over to the alternate buffer.
	e.alt.cur = e.primary.cur
	e.alt.cur.X = min(e.alt.cur.X, e.alt.cols-1)
	e.alt.cur.Y = min(e.alt.cur.Y, e.alt.rows-1)
	e.alt.pendingWrap = false
	e.primary.damage = nil
	e.alt.damage = e.damage
	e.scr = e.alt
	e.inAlt = true
	if clear {
		e.alt.Clear()
	}
	e.damage.Resize(e.scr.cols, e.scr.rows)
	if e.cb.AltScreen != nil {
		e.cb.AltScreen(true)
	}
}

// exitAltScreen returns to the primary buffer. The primary screen
// reappears exactly as it was on entry, dimensions included, even if
// the terminal was resized while the alternate buffer was active.
func (e *Emulator) exitAltScreen(clear bool) {
	if !e.inAlt {
		return
	}
	if clear {
		e.alt.Clear()
	}
	if e.savedPrimary != nil {
		e.primary = e.savedPrimary
		e.savedPrimary = nil
	}
	e.alt.damage = nil
	e.primary.damage = e.damage
	e.scr = e.primary
	e.inAlt = false
	e.tabstops.Resize(e.scr.cols)
	e.damage.Resize(e.scr.cols, e.scr.rows)
	if e.cb.AltScreen != nil {
		e.cb.AltScreen(false)
	}
}

// fullReset implements RIS: both buffers clear, modes, charsets and
// tab stops return to their defaults, and the primary screen becomes
// active.
func (e *Emulator) fullReset() {
	if e.inAlt {
		e.exitAltScreen(false)
	}
	e.savedPrimary = nil
	e.primary.Reset()
	e.alt.Reset()
	e.modes = defaultModes()
	e.charsets = [4]charsetTable{}
	e.gl, e.gr, e.gsingle = 0, 0, 0
	e.lastChar = 0
	e.fg, e.bg, e.curColor = nil, nil, nil
	e.tabstops = DefaultTabStops(e.scr.cols)
	e.damage.MarkAll()
}
