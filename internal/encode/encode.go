// Package encode writes rasterized timelines to their final output
// format and reads existing recordings back in. Encoders are keyed by
// extension: gif prefers ffmpeg's palette pipeline and falls back to
// the built-in encoder, the video formats stream raw RGBA frames to
// ffmpeg over stdin, frames unpacks numbered PNGs, and cast delegates
// to the interchange writer. Output lands under a temporary name
// first, so a failed export never leaves a partial file behind.
package encode

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/aayushadhikari7/termgif/internal/config"
	"github.com/aayushadhikari7/termgif/internal/timeline"
)

// Options carry the encoding knobs from the resolved configuration.
type Options struct {
	// Format forces an output format; empty means infer it from the
	// path extension.
	Format string

	// FPS is the constant output rate for formats that need one. Zero
	// falls back to the timeline's own rate, then to the mean hold.
	FPS int

	Loop     int
	Dither   string
	Colors   int
	Optimize bool
	Lossy    int
	Bitrate  string
	Codec    string
	CRF      int

	// Title and Shell stamp the cast header.
	Title string
	Shell string
}

// OptionsFromConfig copies the encoder's share of the configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Format:   cfg.Format,
		FPS:      cfg.FPS,
		Loop:     cfg.LoopCount,
		Dither:   cfg.Dither,
		Colors:   cfg.Colors,
		Optimize: cfg.Optimize,
		Lossy:    cfg.Lossy,
		Bitrate:  cfg.Bitrate,
		Codec:    cfg.Codec,
		CRF:      cfg.CRF,
		Title:    cfg.Title,
		Shell:    cfg.Shell,
	}
}

// Encoder writes one output format.
type Encoder interface {
	// Format is the canonical name, also the primary extension.
	Format() string
	// Extensions lists every extension the encoder claims.
	Extensions() []string
	// NeedsFFmpeg reports whether the encoder cannot run without the
	// ffmpeg binary on PATH.
	NeedsFFmpeg() bool
	// Encode writes the timeline to path.
	Encode(ctx context.Context, tl *timeline.Timeline, path string, opts Options) error
}

var encoders = []Encoder{
	gifEncoder{},
	videoEncoder{format: "mp4"},
	videoEncoder{format: "webm"},
	webpEncoder{},
	apngEncoder{},
	framesEncoder{},
	castEncoder{},
}

// Formats returns every supported format extension, sorted.
func Formats() []string {
	var out []string
	for _, enc := range encoders {
		out = append(out, enc.Extensions()...)
	}
	sort.Strings(out)
	return out
}

// Lookup resolves an encoder from a format name or an output path.
func Lookup(target string) (Encoder, error) {
	ext := strings.ToLower(target)
	if strings.ContainsAny(target, "./\\") {
		ext = strings.ToLower(strings.TrimPrefix(filepath.Ext(target), "."))
	}
	for _, enc := range encoders {
		for _, e := range enc.Extensions() {
			if e == ext {
				return enc, nil
			}
		}
	}
	return nil, &EncodeError{
		Format: ext,
		Err:    fmt.Errorf("no encoder for %q, formats: %s", ext, strings.Join(Formats(), ", ")),
	}
}

// DetectFormat picks the output format for path. An explicit non-gif
// format wins, then a recognized extension, then gif.
func DetectFormat(path, format string) string {
	if format != "" && format != "gif" {
		return strings.ToLower(format)
	}
	if ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")); ext != "" {
		if _, err := Lookup(ext); err == nil {
			return ext
		}
	}
	return "gif"
}

// Encode writes the timeline to path in the format named by the
// options or implied by the extension.
func Encode(ctx context.Context, tl *timeline.Timeline, path string, opts Options) error {
	format := DetectFormat(path, opts.Format)
	enc, err := Lookup(format)
	if err != nil {
		return err
	}
	if err := tl.Validate(); err != nil {
		return wrap(format, err)
	}
	if enc.NeedsFFmpeg() && !ffmpegAvailable() {
		return wrap(format, fmt.Errorf("%s output requires ffmpeg; install it and put it on PATH", format))
	}
	return enc.Encode(ctx, tl, path, opts)
}

// checkImages verifies every frame carries pixels of one common size
// and returns that size.
func checkImages(tl *timeline.Timeline) (w, h int, err error) {
	for i := range tl.Frames {
		img := tl.Frames[i].Img
		if img == nil {
			return 0, 0, fmt.Errorf("frame %d has no pixels, rasterize the timeline first", i)
		}
		size := img.Bounds().Size()
		if i == 0 {
			w, h = size.X, size.Y
			continue
		}
		if size.X != w || size.Y != h {
			return 0, 0, &timeline.DimensionMismatchError{
				Op:       "encode",
				WantCols: w, WantRows: h,
				GotCols: size.X, GotRows: size.Y,
			}
		}
	}
	if w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("frames are %dx%d pixels", w, h)
	}
	return w, h, nil
}

// rgbaFrame returns the frame pixels as a zero-origin RGBA image,
// converting only when the source is not already in that shape.
func rgbaFrame(img image.Image) *image.RGBA {
	b := img.Bounds()
	if rgba, ok := img.(*image.RGBA); ok && rgba.Stride == b.Dx()*4 && b.Min == (image.Point{}) {
		return rgba
	}
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}

// outputFPS picks the constant frame rate: the explicit option wins,
// then the timeline's own rate, then the rate implied by the mean
// hold.
func outputFPS(tl *timeline.Timeline, opts Options) int {
	if opts.FPS > 0 {
		return opts.FPS
	}
	if tl.FPS > 0 {
		return tl.FPS
	}
	var total time.Duration
	for _, fr := range tl.Frames {
		total += fr.Hold
	}
	if total <= 0 || len(tl.Frames) == 0 {
		return 10
	}
	return clampFPS(int(math.Round(float64(len(tl.Frames)) * float64(time.Second) / float64(total))))
}

// frameReps spreads each frame's hold across the constant output
// rate. Counts come from the cumulative tick grid so rounding never
// drifts, and every frame appears at least once.
func frameReps(tl *timeline.Timeline, fps int) []int {
	reps := make([]int, len(tl.Frames))
	tick := 0
	var elapsed time.Duration
	for i, fr := range tl.Frames {
		elapsed += fr.Hold
		end := int(math.Round(elapsed.Seconds() * float64(fps)))
		n := end - tick
		if n < 1 {
			n = 1
		}
		reps[i] = n
		tick += n
	}
	return reps
}

// paletteBudget clamps a color count to what a palette can hold.
func paletteBudget(colors int) int {
	if colors < 2 || colors > 256 {
		return 256
	}
	return colors
}

// atomicOutput hands write a temporary path in the destination
// directory and renames the finished file into place.
func atomicOutput(path string, write func(tmp string) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".termgif-*")
	if err != nil {
		return err
	}
	name := tmp.Name()
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return err
	}
	if err := write(name); err != nil {
		os.Remove(name)
		return err
	}
	if err := os.Chmod(name, 0o644); err != nil {
		os.Remove(name)
		return err
	}
	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return err
	}
	return nil
}

// atomicDir stages directory output beside the target and swaps it in
// only after the whole export succeeded.
func atomicDir(dir string, write func(stage string) error) error {
	parent := filepath.Dir(dir)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return err
	}
	stage, err := os.MkdirTemp(parent, ".termgif-*")
	if err != nil {
		return err
	}
	if err := write(stage); err != nil {
		os.RemoveAll(stage)
		return err
	}
	if err := os.RemoveAll(dir); err != nil {
		os.RemoveAll(stage)
		return err
	}
	return os.Rename(stage, dir)
}
