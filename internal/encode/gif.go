package encode

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"runtime"
	"sort"
	"strings"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"
	"golang.org/x/sync/errgroup"

	"github.com/aayushadhikari7/termgif/internal/atomicfile"
	"github.com/aayushadhikari7/termgif/internal/timeline"
)

// gifEncoder writes animated GIFs. When ffmpeg is on PATH it runs the
// palettegen/paletteuse pipeline for a shared optimized palette; the
// built-in encoder with per-frame palettes covers everything else.
type gifEncoder struct{}

func (gifEncoder) Format() string       { return "gif" }
func (gifEncoder) Extensions() []string { return []string{"gif"} }
func (gifEncoder) NeedsFFmpeg() bool    { return false }

func (g gifEncoder) Encode(ctx context.Context, tl *timeline.Timeline, path string, opts Options) error {
	w, h, err := checkImages(tl)
	if err != nil {
		return wrap("gif", err)
	}
	if ffmpegAvailable() {
		if err := g.encodeFFmpeg(ctx, tl, path, opts, w, h); err == nil {
			return nil
		}
		// A cancelled context is not an ffmpeg failure.
		if err := ctx.Err(); err != nil {
			return wrap("gif", err)
		}
	}
	return wrap("gif", g.encodeStdlib(ctx, tl, path, opts))
}

func (gifEncoder) encodeFFmpeg(ctx context.Context, tl *timeline.Timeline, path string, opts Options, w, h int) error {
	fps := outputFPS(tl, opts)
	dither := strings.ReplaceAll(opts.Dither, "-", "_")
	if dither == "" {
		dither = "floyd_steinberg"
	}
	return atomicOutput(path, func(tmp string) error {
		pr := pipeFrames(tl, fps)
		defer pr.Close()

		split := ffmpeg.Input("pipe:", rawPipeInput(w, h, fps)).Split()
		palette := split.Get("0").Filter("palettegen", nil,
			ffmpeg.KwArgs{"max_colors": paletteBudget(opts.Colors)})
		stream := ffmpeg.Filter([]*ffmpeg.Stream{split.Get("1"), palette}, "paletteuse", nil,
			ffmpeg.KwArgs{"dither": dither}).
			Output(tmp, ffmpeg.KwArgs{"format": "gif", "loop": opts.Loop}).
			OverWriteOutput()
		return runFFmpeg(ctx, stream, pr)
	})
}

func (gifEncoder) encodeStdlib(ctx context.Context, tl *timeline.Timeline, path string, opts Options) error {
	colors := paletteBudget(opts.Colors)
	anim := &gif.GIF{
		LoopCount: opts.Loop,
		Image:     make([]*image.Paletted, len(tl.Frames)),
		Delay:     make([]int, len(tl.Frames)),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range tl.Frames {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			anim.Image[i] = palettedFrame(rgbaFrame(tl.Frames[i].Img), colors, opts.Dither)
			anim.Delay[i] = int(tl.Frames[i].Hold.Round(10*time.Millisecond) / (10 * time.Millisecond))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, anim); err != nil {
		return err
	}
	return atomicfile.Save(path, buf.Bytes(), 0o644)
}

// palettedFrame quantizes one frame. Floyd-Steinberg is the only error
// diffusion the standard library ships, so the bayer and sierra2
// options use it too; "none" maps colors directly.
func palettedFrame(img *image.RGBA, colors int, dither string) *image.Paletted {
	out := image.NewPaletted(img.Bounds(), buildPalette(img, colors))
	if dither == "none" {
		draw.Draw(out, out.Bounds(), img, image.Point{}, draw.Src)
	} else {
		draw.FloydSteinberg.Draw(out, out.Bounds(), img, image.Point{})
	}
	return out
}

// buildPalette collects the frame's most frequent colors. Terminal
// frames usually hold fewer distinct colors than the budget, in which
// case quantization is exact.
func buildPalette(img *image.RGBA, colors int) color.Palette {
	counts := make(map[uint32]int, 512)
	for i := 0; i < len(img.Pix); i += 4 {
		key := uint32(img.Pix[i])<<24 | uint32(img.Pix[i+1])<<16 |
			uint32(img.Pix[i+2])<<8 | uint32(img.Pix[i+3])
		counts[key]++
	}
	keys := make([]uint32, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > colors {
		keys = keys[:colors]
	}
	pal := make(color.Palette, len(keys))
	for i, k := range keys {
		pal[i] = color.RGBA{R: uint8(k >> 24), G: uint8(k >> 16), B: uint8(k >> 8), A: uint8(k)}
	}
	return pal
}
