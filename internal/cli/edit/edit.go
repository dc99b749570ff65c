// Package edit implements the trim, speed, concat, and overlay
// commands that rework finished recordings.
package edit

import (
	"context"
	"fmt"
	"image"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/aayushadhikari7/termgif/internal/cli/root"
	"github.com/aayushadhikari7/termgif/internal/encode"
	"github.com/aayushadhikari7/termgif/internal/render"
	"github.com/aayushadhikari7/termgif/internal/timeline"
)

const watermarkMargin = 10

// Register registers the editing handlers.
func Register(reg *root.Registry) {
	reg.Register("trim", runTrim)
	reg.Register("speed", runSpeed)
	reg.Register("concat", runConcat)
	reg.Register("overlay", runOverlay)
}

func runTrim(ctx root.CommandContext) error {
	path := ctx.Cmd.StringArg("file")
	tl, err := encode.DecodeFile(ctx.Context, path, 0)
	if err != nil {
		return err
	}

	start := ctx.Cmd.Duration("start")
	end := tl.Duration()
	if ctx.Cmd.IsSet("end") {
		end = ctx.Cmd.Duration("end")
		// A negative end counts back from the end of the recording.
		if end < 0 {
			end += tl.Duration()
		}
	}

	trimmed, err := tl.Trim(start, end)
	if err != nil {
		return err
	}
	out := outputPath(ctx.Cmd, path, "_trimmed")
	if err := save(ctx.Context, trimmed, out); err != nil {
		return err
	}
	_, err = fmt.Fprintf(ctx.Out, "Trimmed! Saved to %s\n", out)
	return err
}

func runSpeed(ctx root.CommandContext) error {
	path := ctx.Cmd.StringArg("file")
	factor, err := parseFactor(ctx.Cmd.StringArg("factor"))
	if err != nil {
		return err
	}
	tl, err := encode.DecodeFile(ctx.Context, path, 0)
	if err != nil {
		return err
	}
	changed, err := tl.Speed(factor)
	if err != nil {
		return err
	}
	out := outputPath(ctx.Cmd, path, speedSuffix(factor))
	if err := save(ctx.Context, changed, out); err != nil {
		return err
	}
	_, err = fmt.Fprintf(ctx.Out, "Speed changed! Saved to %s\n", out)
	return err
}

func runConcat(ctx root.CommandContext) error {
	inputs := ctx.Cmd.StringArgs("inputs")
	tls := make([]*timeline.Timeline, 0, len(inputs))
	for _, in := range inputs {
		tl, err := encode.DecodeFile(ctx.Context, in, 0)
		if err != nil {
			return err
		}
		tls = append(tls, tl)
	}
	joined, err := timeline.Concat(tls...)
	if err != nil {
		return err
	}
	out := ctx.Cmd.String("output")
	if err := save(ctx.Context, joined, out); err != nil {
		return err
	}
	_, err = fmt.Fprintf(ctx.Out, "Concatenated %d files! Saved to %s\n", len(inputs), out)
	return err
}

func runOverlay(ctx root.CommandContext) error {
	path := ctx.Cmd.StringArg("file")
	tl, err := encode.DecodeFile(ctx.Context, path, 0)
	if err != nil {
		return err
	}

	var (
		fn      func(image.Image) (image.Image, error)
		suffix  string
		message string
	)
	if ctx.Cmd.IsSet("watermark") {
		wm, err := render.ReadImage(ctx.Cmd.String("watermark"))
		if err != nil {
			return fmt.Errorf("watermark: %w", err)
		}
		fn = render.Watermark(wm, ctx.Cmd.String("position"), ctx.Cmd.Float("opacity"), watermarkMargin)
		suffix, message = "_watermarked", "Watermark added!"
	} else {
		fn, err = render.Caption(ctx.Cmd.String("text"), render.CaptionOptions{
			Position: captionPosition(ctx.Cmd.String("position")),
		})
		if err != nil {
			return err
		}
		suffix, message = "_captioned", "Caption added!"
	}

	stamped, err := tl.Overlay(fn)
	if err != nil {
		return err
	}
	out := outputPath(ctx.Cmd, path, suffix)
	if err := save(ctx.Context, stamped, out); err != nil {
		return err
	}
	_, err = fmt.Fprintf(ctx.Out, "%s Saved to %s\n", message, out)
	return err
}

func save(ctx context.Context, tl *timeline.Timeline, path string) error {
	opts := encode.Options{Format: encode.DetectFormat(path, "")}
	return encode.Encode(ctx, tl, path, opts)
}

// outputPath returns the explicit --output value or derives one by
// tagging the input's base name: demo.gif becomes demo_trimmed.gif.
func outputPath(cmd *cli.Command, input, suffix string) string {
	if cmd.IsSet("output") {
		return cmd.String("output")
	}
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + suffix + ext
}

// parseFactor reads a speed multiplier, accepting both "2" and "2x".
func parseFactor(s string) (float64, error) {
	trimmed := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "x")
	factor, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid speed %q", s)
	}
	return factor, nil
}

func speedSuffix(factor float64) string {
	tag := strconv.FormatFloat(factor, 'g', -1, 64)
	return "_" + strings.ReplaceAll(tag, ".", "_") + "x"
}

// captionPosition collapses the five watermark anchors onto the two
// caption bar positions.
func captionPosition(position string) string {
	if strings.HasPrefix(position, "top") {
		return "top"
	}
	return "bottom"
}
