package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/aayushadhikari7/termgif/internal/appdirs"
	"github.com/aayushadhikari7/termgif/internal/identity"
)

// fileConfig mirrors the TOML schema of config.toml and .termgif.toml.
// All fields are optional; absent keys leave lower layers untouched.
type fileConfig struct {
	Render    renderSection    `toml:"render"`
	Timing    timingSection    `toml:"timing"`
	Output    outputSection    `toml:"output"`
	Session   sessionSection   `toml:"session"`
	Watermark watermarkSection `toml:"watermark"`
	Sharing   sharingSection   `toml:"sharing"`
}

type renderSection struct {
	Theme       *string `toml:"theme"`
	FontSize    *int    `toml:"font_size"`
	Padding     *int    `toml:"padding"`
	Chrome      *bool   `toml:"chrome"`
	Cursor      *string `toml:"cursor"`
	Size        *string `toml:"size"`
	Title       *string `toml:"title"`
	Radius      *int    `toml:"radius"`
	RadiusOuter *int    `toml:"radius_outer"`
	RadiusInner *int    `toml:"radius_inner"`
	Native      *bool   `toml:"native"`
}

type timingSection struct {
	TypingSpeedMS *int64 `toml:"typing_speed_ms"`
	StartDelayMS  *int64 `toml:"start_delay_ms"`
	EndDelayMS    *int64 `toml:"end_delay_ms"`
	TimeoutMS     *int64 `toml:"timeout_ms"`
	IdleQuietMS   *int64 `toml:"idle_quiet_ms"`
	FPS           *int   `toml:"fps"`
}

type outputSection struct {
	Path     *string `toml:"path"`
	Format   *string `toml:"format"`
	Quality  *int    `toml:"quality"`
	Loop     *int    `toml:"loop"`
	Colors   *int    `toml:"colors"`
	Dither   *string `toml:"dither"`
	Optimize *bool   `toml:"optimize"`
	Lossy    *int    `toml:"lossy"`
	Bitrate  *string `toml:"bitrate"`
	Codec    *string `toml:"codec"`
	CRF      *int    `toml:"crf"`
}

type sessionSection struct {
	Shell  *string  `toml:"shell"`
	Prompt *string  `toml:"prompt"`
	Env    []string `toml:"env"`
	Cwd    *string  `toml:"cwd"`
}

type watermarkSection struct {
	Path     *string  `toml:"path"`
	Position *string  `toml:"position"`
	Opacity  *float64 `toml:"opacity"`
}

type sharingSection struct {
	ImgurClientID  *string `toml:"imgur_client_id"`
	GiphyAPIKey    *string `toml:"giphy_api_key"`
	DefaultService *string `toml:"default_service"`
}

func (f *fileConfig) overrides() (Overrides, error) {
	o := Overrides{
		Theme:       f.Render.Theme,
		FontSize:    f.Render.FontSize,
		Padding:     f.Render.Padding,
		Chrome:      f.Render.Chrome,
		Cursor:      f.Render.Cursor,
		Title:       f.Render.Title,
		Radius:      f.Render.Radius,
		RadiusOuter: f.Render.RadiusOuter,
		RadiusInner: f.Render.RadiusInner,
		Native:      f.Render.Native,

		TypingSpeed: msDuration(f.Timing.TypingSpeedMS),
		StartDelay:  msDuration(f.Timing.StartDelayMS),
		EndDelay:    msDuration(f.Timing.EndDelayMS),
		Timeout:     msDuration(f.Timing.TimeoutMS),
		IdleQuiet:   msDuration(f.Timing.IdleQuietMS),
		FPS:         f.Timing.FPS,

		Output:    f.Output.Path,
		Format:    f.Output.Format,
		Quality:   f.Output.Quality,
		LoopCount: f.Output.Loop,
		Colors:    f.Output.Colors,
		Dither:    f.Output.Dither,
		Optimize:  f.Output.Optimize,
		Lossy:     f.Output.Lossy,
		Bitrate:   f.Output.Bitrate,
		Codec:     f.Output.Codec,
		CRF:       f.Output.CRF,

		Shell:  f.Session.Shell,
		Prompt: f.Session.Prompt,
		Env:    f.Session.Env,
		Cwd:    f.Session.Cwd,

		Watermark:         f.Watermark.Path,
		WatermarkPosition: f.Watermark.Position,
		WatermarkOpacity:  f.Watermark.Opacity,
	}
	if f.Render.Size != nil {
		cols, rows, err := ParseSize(*f.Render.Size)
		if err != nil {
			return Overrides{}, err
		}
		o.Cols = &cols
		o.Rows = &rows
	}
	return o, nil
}

func msDuration(ms *int64) *time.Duration {
	if ms == nil {
		return nil
	}
	d := time.Duration(*ms) * time.Millisecond
	return &d
}

// ParseSize parses a "COLSxROWS" string.
func ParseSize(s string) (cols, rows int, err error) {
	c, r, ok := strings.Cut(strings.TrimSpace(s), "x")
	if !ok {
		return 0, 0, errf("size", "%q is not COLSxROWS", s)
	}
	cols, err = strconv.Atoi(c)
	if err != nil {
		return 0, 0, errf("size", "invalid column count %q", c)
	}
	rows, err = strconv.Atoi(r)
	if err != nil {
		return 0, 0, errf("size", "invalid row count %q", r)
	}
	return cols, rows, nil
}

// Loader reads one config file and caches the parsed layer until the
// file's size or mtime changes. A missing file is an empty layer.
type Loader struct {
	path     string
	lastRead fileState
	cached   Overrides
	loaded   bool
}

type fileState struct {
	modTime time.Time
	size    int64
}

// NewLoader creates a loader for the given config file path.
func NewLoader(path string) *Loader {
	return &Loader{path: strings.TrimSpace(path)}
}

// GlobalLoader reads the user-wide config file.
func GlobalLoader() (*Loader, error) {
	path, err := appdirs.GlobalConfigPath()
	if err != nil {
		return nil, err
	}
	return NewLoader(path), nil
}

// ProjectLoader reads the per-project config file in workDir.
func ProjectLoader(workDir string) *Loader {
	return NewLoader(filepath.Join(workDir, identity.ProjectConfigFile))
}

// Load returns the file's override layer, reloading when it changed.
func (l *Loader) Load() (Overrides, error) {
	if l == nil || l.path == "" {
		return Overrides{}, errors.New("config loader has no path")
	}
	info, err := os.Stat(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			l.cached = Overrides{}
			l.lastRead = fileState{}
			l.loaded = true
			return l.cached, nil
		}
		return Overrides{}, fmt.Errorf("stat config %s: %w", l.path, err)
	}
	state := fileState{modTime: info.ModTime(), size: info.Size()}
	if l.loaded && state == l.lastRead {
		return l.cached, nil
	}
	data, err := os.ReadFile(l.path)
	if err != nil {
		return Overrides{}, fmt.Errorf("read config %s: %w", l.path, err)
	}
	var fc fileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return Overrides{}, errf("file", "parse %s: %v", l.path, err)
	}
	layer, err := fc.overrides()
	if err != nil {
		return Overrides{}, err
	}
	l.cached = layer
	l.lastRead = state
	l.loaded = true
	return layer, nil
}

// Resolve applies override layers to the defaults, lowest priority
// first, then validates the result.
func Resolve(layers ...Overrides) (Config, error) {
	cfg := Default()
	for _, layer := range layers {
		layer.Apply(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Sharing holds upload credentials and the default upload target from
// the [sharing] table. Catbox needs no key.
type Sharing struct {
	ImgurClientID  string
	GiphyAPIKey    string
	DefaultService string
}

// LoadSharing reads the sharing settings, project file over global.
// Missing files are empty layers, like everywhere else.
func LoadSharing(workDir string) (Sharing, error) {
	s := Sharing{DefaultService: "catbox"}
	if path, err := appdirs.GlobalConfigPath(); err == nil {
		if err := mergeSharing(&s, path); err != nil {
			return Sharing{}, err
		}
	}
	if err := mergeSharing(&s, filepath.Join(workDir, identity.ProjectConfigFile)); err != nil {
		return Sharing{}, err
	}
	return s, nil
}

func mergeSharing(s *Sharing, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}
	var fc fileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return errf("file", "parse %s: %v", path, err)
	}
	if v := fc.Sharing.ImgurClientID; v != nil {
		s.ImgurClientID = strings.TrimSpace(*v)
	}
	if v := fc.Sharing.GiphyAPIKey; v != nil {
		s.GiphyAPIKey = strings.TrimSpace(*v)
	}
	if v := fc.Sharing.DefaultService; v != nil && strings.TrimSpace(*v) != "" {
		s.DefaultService = strings.ToLower(strings.TrimSpace(*v))
	}
	return nil
}
