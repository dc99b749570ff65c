// Package script parses .tg recording scripts into directives and an
// ordered action list.
//
// Syntax:
//
//	@output "file.gif"      directive (fixed registry, last one wins)
//	-> "text"               type text
//	>>                      press enter
//	-> "text" >>            type + enter combined
//	~500ms                  wait
//	key "ctrl+c"            press a special key
//	hide / show             toggle frame capture
//	screenshot "shot.png"   out-of-band single frame export
//	marker "chapter one"    named timestamp
//	require "docker"        abort unless command exists
//	// line comment, /* block comment */
package script

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseError is a fatal script syntax error with its source position.
type ParseError struct {
	Line int
	Col  int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("script:%d:%d: %s", e.Line, e.Col, e.Msg)
}

func parseErrorf(line, col int, format string, args ...any) *ParseError {
	return &ParseError{Line: line, Col: col, Msg: fmt.Sprintf(format, args...)}
}

// Warning is a non-fatal parse diagnostic, e.g. an unknown directive.
type Warning struct {
	Line int
	Col  int
	Msg  string
}

func (w Warning) String() string {
	return fmt.Sprintf("script:%d:%d: %s", w.Line, w.Col, w.Msg)
}

// Dimensions is a parsed WxH literal.
type Dimensions struct {
	Cols int
	Rows int
}

func (d Dimensions) String() string {
	return fmt.Sprintf("%dx%d", d.Cols, d.Rows)
}

// Directives holds every typed directive value a script may set.
// Nil fields were not present, so lower-priority configuration applies.
type Directives struct {
	Output      *string
	Size        *Dimensions
	Font        *int
	Speed       *time.Duration
	Loop        *int
	Title       *string
	Quality     *int
	Bare        *bool
	FPS         *int
	Theme       *string
	Padding     *int
	Prompt      *string
	Cursor      *string
	Start       *time.Duration
	End         *time.Duration
	Radius      *int
	RadiusOuter *int
	RadiusInner *int
	Native      *bool

	Format   *string
	Bitrate  *string
	Codec    *string
	CRF      *int
	Dither   *string
	Colors   *int
	Optimize *bool
	Lossy    *int

	Watermark         *string
	WatermarkPosition *string
	WatermarkOpacity  *float64
	Caption           *string
	CaptionPosition   *string

	Shell   *string
	Env     []string
	Cwd     *string
	Timeout *time.Duration
}

// Action is one scripted event. The concrete types below are the only
// implementations.
type Action interface {
	actionString() string
}

// TypeText types text character by character.
type TypeText struct {
	Text string
}

// PressEnter submits the current line.
type PressEnter struct{}

// Wait holds the recording for a duration.
type Wait struct {
	Duration time.Duration
}

// PressKey sends a named key, optionally with modifiers (ctrl, alt, shift).
type PressKey struct {
	Name string
	Mods []string
}

// Combo reconstructs the "mod+mod+name" form.
func (k PressKey) Combo() string {
	if len(k.Mods) == 0 {
		return k.Name
	}
	return strings.Join(k.Mods, "+") + "+" + k.Name
}

// ToggleCapture pauses (On=false) or resumes (On=true) frame capture.
type ToggleCapture struct {
	On bool
}

// Screenshot exports the current frame to a standalone image.
type Screenshot struct {
	Path string
}

// Marker attaches a named timestamp to the recording.
type Marker struct {
	Label string
}

// RequireCommand aborts the whole session before any frame is produced
// when the named command is not installed.
type RequireCommand struct {
	Name string
}

func (a TypeText) actionString() string {
	return "-> " + quote(a.Text)
}

func (a PressEnter) actionString() string {
	return ">>"
}

func (a Wait) actionString() string {
	return "~" + FormatDuration(a.Duration)
}

func (a PressKey) actionString() string {
	return "key " + quote(a.Combo())
}

func (a ToggleCapture) actionString() string {
	if a.On {
		return "show"
	}
	return "hide"
}

func (a Screenshot) actionString() string {
	return "screenshot " + quote(a.Path)
}

func (a Marker) actionString() string {
	return "marker " + quote(a.Label)
}

func (a RequireCommand) actionString() string {
	return "require " + quote(a.Name)
}

// Script is a parsed recording program.
type Script struct {
	Directives Directives
	Actions    []Action
	Warnings   []Warning
}

// String reserializes the script. Parsing the output yields the same
// directive values and action list; warnings and comments are dropped.
func (s *Script) String() string {
	var sb strings.Builder
	writeDirectives(&sb, s.Directives)
	if sb.Len() > 0 && len(s.Actions) > 0 {
		sb.WriteByte('\n')
	}
	for _, action := range s.Actions {
		sb.WriteString(action.actionString())
		sb.WriteByte('\n')
	}
	return sb.String()
}

func writeDirectives(sb *strings.Builder, d Directives) {
	put := func(name, value string) {
		sb.WriteByte('@')
		sb.WriteString(name)
		if value != "" {
			sb.WriteByte(' ')
			sb.WriteString(value)
		}
		sb.WriteByte('\n')
	}
	if d.Output != nil {
		put("output", quote(*d.Output))
	}
	if d.Size != nil {
		put("size", d.Size.String())
	}
	if d.Font != nil {
		put("font", strconv.Itoa(*d.Font))
	}
	if d.Speed != nil {
		put("speed", FormatDuration(*d.Speed))
	}
	if d.Loop != nil {
		put("loop", strconv.Itoa(*d.Loop))
	}
	if d.Title != nil {
		put("title", quote(*d.Title))
	}
	if d.Quality != nil {
		put("quality", strconv.Itoa(*d.Quality))
	}
	if d.Bare != nil && *d.Bare {
		put("bare", "")
	}
	if d.FPS != nil {
		put("fps", strconv.Itoa(*d.FPS))
	}
	if d.Theme != nil {
		put("theme", quote(*d.Theme))
	}
	if d.Padding != nil {
		put("padding", strconv.Itoa(*d.Padding))
	}
	if d.Prompt != nil {
		put("prompt", quote(*d.Prompt))
	}
	if d.Cursor != nil {
		put("cursor", quote(*d.Cursor))
	}
	if d.Start != nil {
		put("start", FormatDuration(*d.Start))
	}
	if d.End != nil {
		put("end", FormatDuration(*d.End))
	}
	if d.Radius != nil {
		put("radius", strconv.Itoa(*d.Radius))
	}
	if d.RadiusOuter != nil {
		put("radius-outer", strconv.Itoa(*d.RadiusOuter))
	}
	if d.RadiusInner != nil {
		put("radius-inner", strconv.Itoa(*d.RadiusInner))
	}
	if d.Native != nil && *d.Native {
		put("native", "")
	}
	if d.Format != nil {
		put("format", quote(*d.Format))
	}
	if d.Bitrate != nil {
		put("bitrate", quote(*d.Bitrate))
	}
	if d.Codec != nil {
		put("codec", quote(*d.Codec))
	}
	if d.CRF != nil {
		put("crf", strconv.Itoa(*d.CRF))
	}
	if d.Dither != nil {
		put("dither", quote(*d.Dither))
	}
	if d.Colors != nil {
		put("colors", strconv.Itoa(*d.Colors))
	}
	if d.Optimize != nil {
		put("optimize", strconv.FormatBool(*d.Optimize))
	}
	if d.Lossy != nil {
		put("lossy", strconv.Itoa(*d.Lossy))
	}
	if d.Watermark != nil {
		put("watermark", quote(*d.Watermark))
	}
	if d.WatermarkPosition != nil {
		put("watermark-position", quote(*d.WatermarkPosition))
	}
	if d.WatermarkOpacity != nil {
		put("watermark-opacity", strconv.FormatFloat(*d.WatermarkOpacity, 'f', -1, 64))
	}
	if d.Caption != nil {
		put("caption", quote(*d.Caption))
	}
	if d.CaptionPosition != nil {
		put("caption-position", quote(*d.CaptionPosition))
	}
	if d.Shell != nil {
		put("shell", quote(*d.Shell))
	}
	for _, env := range d.Env {
		put("env", quote(env))
	}
	if d.Cwd != nil {
		put("cwd", quote(*d.Cwd))
	}
	if d.Timeout != nil {
		put("timeout", FormatDuration(*d.Timeout))
	}
}

func quote(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		case '\\':
			sb.WriteString(`\\`)
		case '"':
			sb.WriteString(`\"`)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

// ParseDuration parses a script duration literal: "500", "500ms",
// "1s", "1.5s". Bare numbers are milliseconds.
func ParseDuration(s string) (time.Duration, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "" {
		return 0, fmt.Errorf("empty duration")
	}
	switch {
	case strings.HasSuffix(v, "ms"):
		n, err := strconv.ParseFloat(strings.TrimSuffix(v, "ms"), 64)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		return time.Duration(n * float64(time.Millisecond)), nil
	case strings.HasSuffix(v, "s"):
		n, err := strconv.ParseFloat(strings.TrimSuffix(v, "s"), 64)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		return time.Duration(n * float64(time.Second)), nil
	default:
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		return time.Duration(n * float64(time.Millisecond)), nil
	}
}

// FormatDuration renders a duration as the shortest script literal.
func FormatDuration(d time.Duration) string {
	ms := d.Milliseconds()
	if ms != 0 && ms%1000 == 0 {
		return strconv.FormatInt(ms/1000, 10) + "s"
	}
	return strconv.FormatInt(ms, 10) + "ms"
}
