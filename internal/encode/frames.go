package encode

import (
	"context"
	"encoding/json"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/aayushadhikari7/termgif/internal/timeline"
)

// framesEncoder unpacks the recording into numbered PNG files next to
// a metadata file carrying the timing, for hand editing in other
// tools.
type framesEncoder struct{}

func (framesEncoder) Format() string       { return "frames" }
func (framesEncoder) Extensions() []string { return []string{"frames"} }
func (framesEncoder) NeedsFFmpeg() bool    { return false }

type frameMeta struct {
	Filename   string `json:"filename"`
	DurationMS int64  `json:"duration_ms"`
	Index      int    `json:"index"`
}

type framesMeta struct {
	Format          string      `json:"format"`
	Version         string      `json:"version"`
	FrameCount      int         `json:"frame_count"`
	TotalDurationMS int64       `json:"total_duration_ms"`
	Loop            int         `json:"loop"`
	Width           int         `json:"width"`
	Height          int         `json:"height"`
	Frames          []frameMeta `json:"frames"`
}

func (framesEncoder) Encode(ctx context.Context, tl *timeline.Timeline, path string, opts Options) error {
	w, h, err := checkImages(tl)
	if err != nil {
		return wrap("frames", err)
	}

	enc := &png.Encoder{CompressionLevel: png.DefaultCompression}
	if opts.Optimize {
		enc.CompressionLevel = png.BestCompression
	}

	meta := framesMeta{
		Format:          "termgif_frames",
		Version:         "1.0",
		FrameCount:      len(tl.Frames),
		TotalDurationMS: tl.Duration().Milliseconds(),
		Loop:            opts.Loop,
		Width:           w,
		Height:          h,
		Frames:          make([]frameMeta, len(tl.Frames)),
	}
	for i := range tl.Frames {
		meta.Frames[i] = frameMeta{
			Filename:   fmt.Sprintf("frame_%05d.png", i),
			DurationMS: tl.Frames[i].Hold.Milliseconds(),
			Index:      i,
		}
	}

	err = atomicDir(framesDir(path), func(stage string) error {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(runtime.GOMAXPROCS(0))
		for i := range tl.Frames {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				f, err := os.Create(filepath.Join(stage, meta.Frames[i].Filename))
				if err != nil {
					return err
				}
				err = enc.Encode(f, tl.Frames[i].Img)
				if cerr := f.Close(); err == nil {
					err = cerr
				}
				return err
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
		data, err := json.MarshalIndent(meta, "", "  ")
		if err != nil {
			return err
		}
		return os.WriteFile(filepath.Join(stage, "metadata.json"), append(data, '\n'), 0o644)
	})
	return wrap("frames", err)
}

// framesDir strips a trailing extension off the target so
// "demo.frames" and "demo" land in the same directory.
func framesDir(path string) string {
	if ext := filepath.Ext(path); ext != "" {
		return filepath.Join(filepath.Dir(path), strings.TrimSuffix(filepath.Base(path), ext))
	}
	return path
}
