package record

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"

	"github.com/aayushadhikari7/termgif/internal/atomicfile"
	"github.com/aayushadhikari7/termgif/internal/config"
	"github.com/aayushadhikari7/termgif/internal/encode"
	"github.com/aayushadhikari7/termgif/internal/render"
	"github.com/aayushadhikari7/termgif/internal/session"
	"github.com/aayushadhikari7/termgif/internal/timeline"
)

const overlayMargin = 10

// produce turns a finished session into the output file: rasterize the
// grid frames, stamp overlays, encode, and write any screenshots. Cast
// output skips rasterization since it replays cell content directly.
func produce(ctx context.Context, res *session.Result, cfg config.Config, outPath string) error {
	format := encode.DetectFormat(outPath, cfg.Format)

	var renderer *render.Renderer
	getRenderer := func() (*render.Renderer, error) {
		if renderer != nil {
			return renderer, nil
		}
		r, err := render.New(render.StyleFromConfig(&cfg))
		if err != nil {
			return nil, err
		}
		renderer = r
		return renderer, nil
	}

	tl := res.Timeline
	if format != "cast" {
		r, err := getRenderer()
		if err != nil {
			return err
		}
		rendered, err := render.RenderAll(ctx, r, tl)
		if err != nil {
			return err
		}
		rendered, err = applyOverlays(rendered, cfg)
		if err != nil {
			return err
		}
		tl = rendered
	}

	opts := encode.OptionsFromConfig(&cfg)
	if err := encode.Encode(ctx, tl, outPath, opts); err != nil {
		return err
	}
	return writeScreenshots(res.Screenshots, getRenderer)
}

// applyOverlays stamps the configured watermark and caption onto every
// frame of an image timeline.
func applyOverlays(tl *timeline.Timeline, cfg config.Config) (*timeline.Timeline, error) {
	if cfg.Watermark != "" {
		wm, err := render.ReadImage(cfg.Watermark)
		if err != nil {
			return nil, fmt.Errorf("watermark: %w", err)
		}
		tl, err = tl.Overlay(render.Watermark(wm, cfg.WatermarkPosition, cfg.WatermarkOpacity, overlayMargin))
		if err != nil {
			return nil, err
		}
	}
	if cfg.Caption != "" {
		fn, err := render.Caption(cfg.Caption, render.CaptionOptions{Position: cfg.CaptionPosition})
		if err != nil {
			return nil, err
		}
		tl, err = tl.Overlay(fn)
		if err != nil {
			return nil, err
		}
	}
	return tl, nil
}

func writeScreenshots(shots []session.Screenshot, getRenderer func() (*render.Renderer, error)) error {
	for _, shot := range shots {
		img := shot.Img
		if img == nil {
			r, err := getRenderer()
			if err != nil {
				return err
			}
			img, err = r.Render(shot.Grid)
			if err != nil {
				return fmt.Errorf("screenshot %s: %w", shot.Path, err)
			}
		}
		if err := savePNG(shot.Path, img); err != nil {
			return fmt.Errorf("screenshot %s: %w", shot.Path, err)
		}
		slog.Debug("record: screenshot written",
			slog.String("path", shot.Path),
			slog.Duration("at", shot.At))
	}
	return nil
}

func savePNG(path string, img image.Image) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return err
	}
	return atomicfile.Save(path, buf.Bytes(), 0o644)
}
