package script

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type valueKind uint8

const (
	valString valueKind = iota
	valInt
	valFloat
	valDuration
	valDimension
	valFlag         // no value, presence means true
	valOptionalBool // bare directive means true, explicit true/false accepted
)

type directiveValue struct {
	str string
	num int
	flt float64
	dur time.Duration
	dim Dimensions
	on  bool
}

type directiveSpec struct {
	kind valueKind
	set  func(*Directives, directiveValue)
}

// directiveRegistry is the closed set of directives a script may use.
// Anything else parses as a warning and is ignored.
var directiveRegistry = map[string]directiveSpec{
	"output": {valString, func(d *Directives, v directiveValue) { d.Output = &v.str }},
	"size":   {valDimension, func(d *Directives, v directiveValue) { d.Size = &v.dim }},
	"font":   {valInt, func(d *Directives, v directiveValue) { d.Font = &v.num }},
	"speed":  {valDuration, func(d *Directives, v directiveValue) { d.Speed = &v.dur }},
	"loop":   {valInt, func(d *Directives, v directiveValue) { d.Loop = &v.num }},
	"title":  {valString, func(d *Directives, v directiveValue) { d.Title = &v.str }},
	"quality": {valInt, func(d *Directives, v directiveValue) {
		d.Quality = &v.num
	}},
	"bare":    {valFlag, func(d *Directives, v directiveValue) { d.Bare = &v.on }},
	"fps":     {valInt, func(d *Directives, v directiveValue) { d.FPS = &v.num }},
	"theme":   {valString, func(d *Directives, v directiveValue) { d.Theme = &v.str }},
	"padding": {valInt, func(d *Directives, v directiveValue) { d.Padding = &v.num }},
	"prompt":  {valString, func(d *Directives, v directiveValue) { d.Prompt = &v.str }},
	"cursor":  {valString, func(d *Directives, v directiveValue) { d.Cursor = &v.str }},
	"start":   {valDuration, func(d *Directives, v directiveValue) { d.Start = &v.dur }},
	"end":     {valDuration, func(d *Directives, v directiveValue) { d.End = &v.dur }},
	"radius":  {valInt, func(d *Directives, v directiveValue) { d.Radius = &v.num }},
	"radius-outer": {valInt, func(d *Directives, v directiveValue) {
		d.RadiusOuter = &v.num
	}},
	"radius-inner": {valInt, func(d *Directives, v directiveValue) {
		d.RadiusInner = &v.num
	}},
	"native":   {valFlag, func(d *Directives, v directiveValue) { d.Native = &v.on }},
	"format":   {valString, func(d *Directives, v directiveValue) { d.Format = &v.str }},
	"bitrate":  {valString, func(d *Directives, v directiveValue) { d.Bitrate = &v.str }},
	"codec":    {valString, func(d *Directives, v directiveValue) { d.Codec = &v.str }},
	"crf":      {valInt, func(d *Directives, v directiveValue) { d.CRF = &v.num }},
	"dither":   {valString, func(d *Directives, v directiveValue) { d.Dither = &v.str }},
	"colors":   {valInt, func(d *Directives, v directiveValue) { d.Colors = &v.num }},
	"optimize": {valOptionalBool, func(d *Directives, v directiveValue) { d.Optimize = &v.on }},
	"lossy":    {valInt, func(d *Directives, v directiveValue) { d.Lossy = &v.num }},
	"watermark": {valString, func(d *Directives, v directiveValue) {
		d.Watermark = &v.str
	}},
	"watermark-position": {valString, func(d *Directives, v directiveValue) {
		d.WatermarkPosition = &v.str
	}},
	"watermark-opacity": {valFloat, func(d *Directives, v directiveValue) {
		d.WatermarkOpacity = &v.flt
	}},
	"caption": {valString, func(d *Directives, v directiveValue) {
		d.Caption = &v.str
	}},
	"caption-position": {valString, func(d *Directives, v directiveValue) {
		d.CaptionPosition = &v.str
	}},
	"shell": {valString, func(d *Directives, v directiveValue) { d.Shell = &v.str }},
	"env": {valString, func(d *Directives, v directiveValue) {
		d.Env = append(d.Env, v.str)
	}},
	"cwd":     {valString, func(d *Directives, v directiveValue) { d.Cwd = &v.str }},
	"timeout": {valDuration, func(d *Directives, v directiveValue) { d.Timeout = &v.dur }},
}

// DirectiveNames returns the registry keys, unordered.
func DirectiveNames() []string {
	names := make([]string, 0, len(directiveRegistry))
	for name := range directiveRegistry {
		names = append(names, name)
	}
	return names
}

type parser struct {
	tokens []token
	pos    int
	script *Script
}

// Parse turns source text into a Script. An empty or comment-only
// source is a valid script with no actions. The returned error is a
// *ParseError for syntax problems.
func Parse(src string) (*Script, error) {
	tokens, err := newScanner(src).scan()
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens, script: &Script{}}
	if err := p.run(); err != nil {
		return nil, err
	}
	return p.script, nil
}

// ParseFile reads and parses a script file.
func ParseFile(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return Parse(string(data))
}

func (p *parser) current() token {
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	tok := p.tokens[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

func (p *parser) run() error {
	for {
		tok := p.next()
		switch tok.kind {
		case tokEOF:
			return nil
		case tokNewline:
			continue
		case tokDirective:
			if err := p.parseDirective(tok); err != nil {
				return err
			}
		case tokArrow:
			if err := p.parseType(tok); err != nil {
				return err
			}
		case tokEnter:
			p.emit(PressEnter{})
		case tokWait:
			d, err := ParseDuration(tok.text)
			if err != nil {
				return parseErrorf(tok.line, tok.col, "%v", err)
			}
			p.emit(Wait{Duration: d})
		case tokIdent:
			if err := p.parseKeyword(tok); err != nil {
				return err
			}
		default:
			return parseErrorf(tok.line, tok.col, "unexpected token %q", tok.text)
		}
	}
}

func (p *parser) emit(a Action) {
	p.script.Actions = append(p.script.Actions, a)
}

func (p *parser) warnf(tok token, format string, args ...any) {
	p.script.Warnings = append(p.script.Warnings, Warning{
		Line: tok.line,
		Col:  tok.col,
		Msg:  fmt.Sprintf(format, args...),
	})
}

// sameLineValue consumes the next token when it sits on the given line.
func (p *parser) sameLineValue(line int) (token, bool) {
	tok := p.current()
	if tok.kind == tokEOF || tok.kind == tokNewline || tok.line != line {
		return token{}, false
	}
	return p.next(), true
}

func (p *parser) skipLine(line int) {
	for {
		tok := p.current()
		if tok.kind == tokEOF || tok.kind == tokNewline || tok.line != line {
			return
		}
		p.next()
	}
}

func (p *parser) parseDirective(tok token) error {
	spec, ok := directiveRegistry[tok.text]
	if !ok {
		p.warnf(tok, "unknown directive @%s ignored", tok.text)
		p.skipLine(tok.line)
		return nil
	}
	val := directiveValue{}
	switch spec.kind {
	case valFlag:
		val.on = true
	case valOptionalBool:
		val.on = true
		if next, ok := p.sameLineValue(tok.line); ok {
			b, err := parseBool(next)
			if err != nil {
				return err
			}
			val.on = b
		}
	default:
		next, ok := p.sameLineValue(tok.line)
		if !ok {
			return parseErrorf(tok.line, tok.col, "directive @%s expects a value", tok.text)
		}
		parsed, err := parseValue(tok.text, spec.kind, next)
		if err != nil {
			return err
		}
		val = parsed
	}
	spec.set(&p.script.Directives, val)
	return nil
}

func parseValue(name string, kind valueKind, tok token) (directiveValue, error) {
	var val directiveValue
	switch kind {
	case valString:
		switch tok.kind {
		case tokString:
			val.str = tok.text
		case tokIdent, tokNumber, tokDuration, tokDimension:
			// Bare words are accepted where the original intent is
			// unambiguous, e.g. @theme dracula.
			val.str = tok.text
		default:
			return val, parseErrorf(tok.line, tok.col, "directive @%s expects a string", name)
		}
	case valInt:
		if tok.kind != tokNumber || strings.Contains(tok.text, ".") {
			return val, parseErrorf(tok.line, tok.col, "directive @%s expects an integer", name)
		}
		n, err := strconv.Atoi(tok.text)
		if err != nil {
			return val, parseErrorf(tok.line, tok.col, "directive @%s expects an integer", name)
		}
		val.num = n
	case valFloat:
		if tok.kind != tokNumber {
			return val, parseErrorf(tok.line, tok.col, "directive @%s expects a number", name)
		}
		f, err := strconv.ParseFloat(tok.text, 64)
		if err != nil {
			return val, parseErrorf(tok.line, tok.col, "directive @%s expects a number", name)
		}
		val.flt = f
	case valDuration:
		if tok.kind != tokDuration && tok.kind != tokNumber {
			return val, parseErrorf(tok.line, tok.col, "directive @%s expects a duration", name)
		}
		d, err := ParseDuration(tok.text)
		if err != nil {
			return val, parseErrorf(tok.line, tok.col, "%v", err)
		}
		val.dur = d
	case valDimension:
		if tok.kind != tokDimension {
			return val, parseErrorf(tok.line, tok.col, "directive @%s expects COLSxROWS", name)
		}
		cols, rows, ok := strings.Cut(tok.text, "x")
		if !ok {
			return val, parseErrorf(tok.line, tok.col, "directive @%s expects COLSxROWS", name)
		}
		c, err := strconv.Atoi(cols)
		if err != nil {
			return val, parseErrorf(tok.line, tok.col, "invalid column count %q", cols)
		}
		r, err := strconv.Atoi(rows)
		if err != nil {
			return val, parseErrorf(tok.line, tok.col, "invalid row count %q", rows)
		}
		val.dim = Dimensions{Cols: c, Rows: r}
	}
	return val, nil
}

func parseBool(tok token) (bool, error) {
	if tok.kind == tokIdent {
		switch tok.text {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
	}
	return false, parseErrorf(tok.line, tok.col, "expected true or false, got %q", tok.text)
}

func (p *parser) parseType(tok token) error {
	text, ok := p.sameLineValue(tok.line)
	if !ok || text.kind != tokString {
		return parseErrorf(tok.line, tok.col, `expected string after "->"`)
	}
	p.emit(TypeText{Text: text.text})
	if enter := p.current(); enter.kind == tokEnter && enter.line == tok.line {
		p.next()
		p.emit(PressEnter{})
	}
	return nil
}

func (p *parser) parseKeyword(tok token) error {
	switch tok.text {
	case "key":
		combo, ok := p.sameLineValue(tok.line)
		if !ok || combo.kind != tokString {
			return parseErrorf(tok.line, tok.col, `expected string after "key"`)
		}
		key, err := parseKeyCombo(combo)
		if err != nil {
			return err
		}
		p.emit(key)
	case "hide":
		p.emit(ToggleCapture{On: false})
	case "show":
		p.emit(ToggleCapture{On: true})
	case "screenshot":
		path, ok := p.sameLineValue(tok.line)
		if !ok || path.kind != tokString {
			return parseErrorf(tok.line, tok.col, `expected string after "screenshot"`)
		}
		p.emit(Screenshot{Path: path.text})
	case "marker":
		label, ok := p.sameLineValue(tok.line)
		if !ok || label.kind != tokString {
			return parseErrorf(tok.line, tok.col, `expected string after "marker"`)
		}
		p.emit(Marker{Label: label.text})
	case "require":
		name, ok := p.sameLineValue(tok.line)
		if !ok || name.kind != tokString {
			return parseErrorf(tok.line, tok.col, `expected string after "require"`)
		}
		p.emit(RequireCommand{Name: name.text})
	default:
		return parseErrorf(tok.line, tok.col, "unexpected keyword %q", tok.text)
	}
	return nil
}

// parseKeyCombo splits "ctrl+shift+left" into modifiers and a key name.
// Key names are resolved against the key table when the session sends
// them, so misspelled names surface before any process is spawned.
func parseKeyCombo(tok token) (PressKey, error) {
	combo := strings.ToLower(strings.TrimSpace(tok.text))
	if combo == "" {
		return PressKey{}, parseErrorf(tok.line, tok.col, "empty key combo")
	}
	parts := strings.Split(combo, "+")
	name := parts[len(parts)-1]
	mods := parts[:len(parts)-1]
	if name == "" && len(mods) > 0 {
		// "ctrl++" style: a trailing plus means the key itself is
		// "+", and the split leaves an empty modifier behind for it.
		name = "+"
		mods = mods[:len(mods)-1]
	}
	for _, mod := range mods {
		switch mod {
		case "ctrl", "alt", "shift":
		default:
			return PressKey{}, parseErrorf(tok.line, tok.col, "unknown modifier %q", mod)
		}
	}
	out := PressKey{Name: name}
	if len(mods) > 0 {
		out.Mods = append(out.Mods, mods...)
	}
	return out, nil
}
