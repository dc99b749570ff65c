// Package config resolves recording settings from four layers, lowest
// priority first: built-in defaults, the global config file, the
// project config file, script directives, then CLI flags.
package config

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aayushadhikari7/termgif/internal/theme"
)

// ConfigError reports an invalid setting and which field carried it.
type ConfigError struct {
	Field string
	Msg   string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Msg)
}

func errf(field, format string, args ...any) *ConfigError {
	return &ConfigError{Field: field, Msg: fmt.Sprintf(format, args...)}
}

// Output formats the encoder understands.
var Formats = []string{"apng", "cast", "frames", "gif", "mp4", "png", "webm", "webp"}

// Dither algorithms for palette quantization.
var Dithers = []string{"bayer", "floyd-steinberg", "none", "sierra2"}

// Video codecs for mp4/webm encoding.
var Codecs = []string{"h264", "h265", "vp9"}

// Overlay anchor positions.
var Positions = []string{"bottom-left", "bottom-right", "center", "top-left", "top-right"}

// Caption anchor positions.
var CaptionPositions = []string{"bottom", "top"}

// Cursor shapes the renderer can draw.
var Cursors = []string{"bar", "block", "underline"}

// Config is the fully resolved recording configuration.
type Config struct {
	Output string
	Cols   int
	Rows   int

	FontSize    int
	TypingSpeed time.Duration
	LoopCount   int
	Title       string
	Quality     int
	Chrome      bool
	FPS         int
	Theme       string
	Padding     int
	Prompt      string
	Cursor      string
	StartDelay  time.Duration
	EndDelay    time.Duration
	Radius      int
	RadiusOuter *int
	RadiusInner *int
	Native      bool

	Format   string
	Bitrate  string
	Codec    string
	CRF      int
	Dither   string
	Colors   int
	Optimize bool
	Lossy    int

	Watermark         string
	WatermarkPosition string
	WatermarkOpacity  float64
	Caption           string
	CaptionPosition   string

	Shell   string
	Env     []string
	Cwd     string
	Timeout time.Duration

	// IdleQuiet is how long live-mode output must stay silent after an
	// Enter before the command counts as finished.
	IdleQuiet time.Duration
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Output:      "output.gif",
		Cols:        80,
		Rows:        24,
		FontSize:    14,
		TypingSpeed: 50 * time.Millisecond,
		LoopCount:   0,
		Title:       "termgif",
		Quality:     2,
		Chrome:      true,
		FPS:         10,
		Theme:       theme.Default,
		Padding:     20,
		Prompt:      "",
		Cursor:      "block",
		StartDelay:  500 * time.Millisecond,
		EndDelay:    2 * time.Second,
		Radius:      10,
		Native:      false,

		Format:   "gif",
		Bitrate:  "2M",
		Codec:    "h264",
		CRF:      23,
		Dither:   "floyd-steinberg",
		Colors:   256,
		Optimize: true,
		Lossy:    100,

		WatermarkPosition: "bottom-right",
		WatermarkOpacity:  0.5,
		CaptionPosition:   "bottom",

		Timeout:   30 * time.Second,
		IdleQuiet: 300 * time.Millisecond,
	}
}

// OuterRadius is the window corner radius; falls back to Radius.
func (c *Config) OuterRadius() int {
	if c.RadiusOuter != nil {
		return *c.RadiusOuter
	}
	return c.Radius
}

// InnerRadius is the terminal area corner radius; falls back to Radius.
func (c *Config) InnerRadius() int {
	if c.RadiusInner != nil {
		return *c.RadiusInner
	}
	return c.Radius
}

// Validate checks every field range and enum. Out-of-range values are
// errors, never silently clamped.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Output) == "" {
		return errf("output", "must not be empty")
	}
	if c.Cols < 1 || c.Cols > 500 {
		return errf("size", "columns %d out of range 1..500", c.Cols)
	}
	if c.Rows < 1 || c.Rows > 500 {
		return errf("size", "rows %d out of range 1..500", c.Rows)
	}
	if c.FontSize < 6 || c.FontSize > 72 {
		return errf("font", "size %d out of range 6..72", c.FontSize)
	}
	if c.TypingSpeed < 0 {
		return errf("speed", "must not be negative")
	}
	if c.LoopCount < 0 {
		return errf("loop", "must not be negative")
	}
	if c.Quality < 1 || c.Quality > 3 {
		return errf("quality", "%d out of range 1..3", c.Quality)
	}
	if c.FPS < 1 || c.FPS > 60 {
		return errf("fps", "%d out of range 1..60", c.FPS)
	}
	if _, err := theme.Get(c.Theme); err != nil {
		return errf("theme", "%v", err)
	}
	if c.Padding < 0 {
		return errf("padding", "must not be negative")
	}
	if !inSet(Cursors, c.Cursor) {
		return errf("cursor", "%q is not one of %s", c.Cursor, strings.Join(Cursors, ", "))
	}
	if c.StartDelay < 0 {
		return errf("start", "must not be negative")
	}
	if c.EndDelay < 0 {
		return errf("end", "must not be negative")
	}
	if c.Radius < 0 || (c.RadiusOuter != nil && *c.RadiusOuter < 0) || (c.RadiusInner != nil && *c.RadiusInner < 0) {
		return errf("radius", "must not be negative")
	}
	if !inSet(Formats, c.Format) {
		return errf("format", "%q is not one of %s", c.Format, strings.Join(Formats, ", "))
	}
	if !inSet(Codecs, c.Codec) {
		return errf("codec", "%q is not one of %s", c.Codec, strings.Join(Codecs, ", "))
	}
	if c.CRF < 0 || c.CRF > 51 {
		return errf("crf", "%d out of range 0..51", c.CRF)
	}
	if !inSet(Dithers, c.Dither) {
		return errf("dither", "%q is not one of %s", c.Dither, strings.Join(Dithers, ", "))
	}
	if c.Colors < 2 || c.Colors > 256 {
		return errf("colors", "%d out of range 2..256", c.Colors)
	}
	if c.Lossy < 0 || c.Lossy > 200 {
		return errf("lossy", "%d out of range 0..200", c.Lossy)
	}
	if !inSet(Positions, c.WatermarkPosition) {
		return errf("watermark-position", "%q is not one of %s", c.WatermarkPosition, strings.Join(Positions, ", "))
	}
	if c.WatermarkOpacity < 0 || c.WatermarkOpacity > 1 {
		return errf("watermark-opacity", "%v out of range 0..1", c.WatermarkOpacity)
	}
	if !inSet(CaptionPositions, c.CaptionPosition) {
		return errf("caption-position", "%q is not one of %s", c.CaptionPosition, strings.Join(CaptionPositions, ", "))
	}
	for _, env := range c.Env {
		if !strings.Contains(env, "=") {
			return errf("env", "%q is not KEY=VALUE", env)
		}
	}
	if c.Timeout <= 0 {
		return errf("timeout", "must be positive")
	}
	if c.IdleQuiet <= 0 {
		return errf("idle-quiet", "must be positive")
	}
	return nil
}

func inSet(set []string, value string) bool {
	i := sort.SearchStrings(set, value)
	return i < len(set) && set[i] == value
}
