// Package convert implements the import and export commands that
// bridge asciinema cast files and rendered recordings.
package convert

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/aayushadhikari7/termgif/internal/cli/root"
	"github.com/aayushadhikari7/termgif/internal/config"
	"github.com/aayushadhikari7/termgif/internal/encode"
	"github.com/aayushadhikari7/termgif/internal/identity"
	"github.com/aayushadhikari7/termgif/internal/render"
	"github.com/aayushadhikari7/termgif/internal/script"
	"github.com/aayushadhikari7/termgif/internal/session"
)

// Register registers the import and export handlers.
func Register(reg *root.Registry) {
	reg.Register("import", runImport)
	reg.Register("export", runExport)
}

func runImport(ctx root.CommandContext) error {
	path := ctx.Cmd.StringArg("cast")
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file not found: %s", path)
		}
		return err
	}

	format := ctx.Cmd.String("format")
	out := ctx.Cmd.String("output")
	if out == "" {
		out = strings.TrimSuffix(path, filepath.Ext(path)) + "." + format
	}

	fmt.Fprintf(ctx.Out, "Importing %s\n", path)

	tl, err := encode.DecodeFile(ctx.Context, path, ctx.Cmd.Int("fps"))
	if err != nil {
		return err
	}

	cfg := config.Default()
	if ctx.Cmd.IsSet("theme") {
		cfg.Theme = ctx.Cmd.String("theme")
	}
	if ctx.Cmd.IsSet("fps") {
		cfg.FPS = ctx.Cmd.Int("fps")
	}
	cfg.Cols, cfg.Rows = tl.Cols, tl.Rows
	cfg.Format = format
	if err := cfg.Validate(); err != nil {
		return err
	}

	r, err := render.New(render.StyleFromConfig(&cfg))
	if err != nil {
		return err
	}
	rendered, err := render.RenderAll(ctx.Context, r, tl)
	if err != nil {
		return err
	}
	if err := encode.Encode(ctx.Context, rendered, out, encode.OptionsFromConfig(&cfg)); err != nil {
		return err
	}
	_, err = fmt.Fprintf(ctx.Out, "Imported! Saved to %s\n", out)
	return err
}

func runExport(ctx root.CommandContext) error {
	path := ctx.Cmd.StringArg("script")
	if filepath.Ext(path) == "" {
		path += identity.ScriptExtension
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file not found: %s", path)
		}
		return err
	}

	out := ctx.Cmd.String("output")
	if out == "" {
		out = strings.TrimSuffix(path, filepath.Ext(path)) + ".cast"
	}

	fmt.Fprintf(ctx.Out, "Exporting %s to asciinema format\n", path)

	scr, err := script.ParseFile(path)
	if err != nil {
		return err
	}
	for _, w := range scr.Warnings {
		fmt.Fprintf(ctx.ErrOut, "warning: %s\n", w)
	}

	cfg, err := resolveConfig(ctx, scr)
	if err != nil {
		return err
	}
	cfg.Format = "cast"

	res, err := session.Record(ctx.Context, scr, cfg, session.Simulate)
	if err != nil {
		return err
	}
	opts := encode.OptionsFromConfig(&cfg)
	if err := encode.Encode(ctx.Context, res.Timeline, out, opts); err != nil {
		return err
	}
	_, err = fmt.Fprintf(ctx.Out, "Exported! Saved to %s\n", out)
	return err
}

func resolveConfig(ctx root.CommandContext, scr *script.Script) (config.Config, error) {
	var layers []config.Overrides
	workDir, err := root.ResolveWorkDir(ctx)
	if err != nil {
		return config.Config{}, err
	}
	if loader, err := config.GlobalLoader(); err != nil {
		slog.Debug("convert: global config unavailable", slog.Any("err", err))
	} else {
		layer, err := loader.Load()
		if err != nil {
			return config.Config{}, err
		}
		layers = append(layers, layer)
	}
	layer, err := config.ProjectLoader(workDir).Load()
	if err != nil {
		return config.Config{}, err
	}
	layers = append(layers, layer, config.FromDirectives(scr.Directives))
	return config.Resolve(layers...)
}
