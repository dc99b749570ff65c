package config

import (
	"time"

	"github.com/aayushadhikari7/termgif/internal/script"
)

// Overrides is one layer of optional settings. Nil fields leave the
// lower-priority value in place; Env entries append.
type Overrides struct {
	Output      *string
	Cols        *int
	Rows        *int
	FontSize    *int
	TypingSpeed *time.Duration
	LoopCount   *int
	Title       *string
	Quality     *int
	Chrome      *bool
	FPS         *int
	Theme       *string
	Padding     *int
	Prompt      *string
	Cursor      *string
	StartDelay  *time.Duration
	EndDelay    *time.Duration
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

	Shell     *string
	Env       []string
	Cwd       *string
	Timeout   *time.Duration
	IdleQuiet *time.Duration
}

// FromDirectives lifts parsed script directives into an override layer.
// @bare means no window chrome, so it lands inverted on Chrome.
func FromDirectives(d script.Directives) Overrides {
	o := Overrides{
		Output:      d.Output,
		FontSize:    d.Font,
		TypingSpeed: d.Speed,
		LoopCount:   d.Loop,
		Title:       d.Title,
		Quality:     d.Quality,
		FPS:         d.FPS,
		Theme:       d.Theme,
		Padding:     d.Padding,
		Prompt:      d.Prompt,
		Cursor:      d.Cursor,
		StartDelay:  d.Start,
		EndDelay:    d.End,
		Radius:      d.Radius,
		RadiusOuter: d.RadiusOuter,
		RadiusInner: d.RadiusInner,
		Native:      d.Native,

		Format:   d.Format,
		Bitrate:  d.Bitrate,
		Codec:    d.Codec,
		CRF:      d.CRF,
		Dither:   d.Dither,
		Colors:   d.Colors,
		Optimize: d.Optimize,
		Lossy:    d.Lossy,

		Watermark:         d.Watermark,
		WatermarkPosition: d.WatermarkPosition,
		WatermarkOpacity:  d.WatermarkOpacity,
		Caption:           d.Caption,
		CaptionPosition:   d.CaptionPosition,

		Shell:   d.Shell,
		Env:     d.Env,
		Cwd:     d.Cwd,
		Timeout: d.Timeout,
	}
	if d.Size != nil {
		o.Cols = &d.Size.Cols
		o.Rows = &d.Size.Rows
	}
	if d.Bare != nil && *d.Bare {
		chrome := false
		o.Chrome = &chrome
	}
	return o
}

// Apply writes the set fields over cfg.
func (o Overrides) Apply(cfg *Config) {
	setString(&cfg.Output, o.Output)
	setInt(&cfg.Cols, o.Cols)
	setInt(&cfg.Rows, o.Rows)
	setInt(&cfg.FontSize, o.FontSize)
	setDuration(&cfg.TypingSpeed, o.TypingSpeed)
	setInt(&cfg.LoopCount, o.LoopCount)
	setString(&cfg.Title, o.Title)
	setInt(&cfg.Quality, o.Quality)
	setBool(&cfg.Chrome, o.Chrome)
	setInt(&cfg.FPS, o.FPS)
	setString(&cfg.Theme, o.Theme)
	setInt(&cfg.Padding, o.Padding)
	setString(&cfg.Prompt, o.Prompt)
	setString(&cfg.Cursor, o.Cursor)
	setDuration(&cfg.StartDelay, o.StartDelay)
	setDuration(&cfg.EndDelay, o.EndDelay)
	setInt(&cfg.Radius, o.Radius)
	if o.RadiusOuter != nil {
		v := *o.RadiusOuter
		cfg.RadiusOuter = &v
	}
	if o.RadiusInner != nil {
		v := *o.RadiusInner
		cfg.RadiusInner = &v
	}
	setBool(&cfg.Native, o.Native)

	setString(&cfg.Format, o.Format)
	setString(&cfg.Bitrate, o.Bitrate)
	setString(&cfg.Codec, o.Codec)
	setInt(&cfg.CRF, o.CRF)
	setString(&cfg.Dither, o.Dither)
	setInt(&cfg.Colors, o.Colors)
	setBool(&cfg.Optimize, o.Optimize)
	setInt(&cfg.Lossy, o.Lossy)

	setString(&cfg.Watermark, o.Watermark)
	setString(&cfg.WatermarkPosition, o.WatermarkPosition)
	if o.WatermarkOpacity != nil {
		cfg.WatermarkOpacity = *o.WatermarkOpacity
	}
	setString(&cfg.Caption, o.Caption)
	setString(&cfg.CaptionPosition, o.CaptionPosition)

	setString(&cfg.Shell, o.Shell)
	cfg.Env = append(cfg.Env, o.Env...)
	setString(&cfg.Cwd, o.Cwd)
	setDuration(&cfg.Timeout, o.Timeout)
	setDuration(&cfg.IdleQuiet, o.IdleQuiet)
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

func setDuration(dst *time.Duration, src *time.Duration) {
	if src != nil {
		*dst = *src
	}
}
