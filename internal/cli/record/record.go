// Package record implements the record and live commands, the two
// entry points that actually drive a recording session.
package record

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/aayushadhikari7/termgif/internal/cli/root"
	"github.com/aayushadhikari7/termgif/internal/config"
	"github.com/aayushadhikari7/termgif/internal/identity"
	"github.com/aayushadhikari7/termgif/internal/script"
	"github.com/aayushadhikari7/termgif/internal/session"
	"github.com/aayushadhikari7/termgif/internal/watch"
)

// Register registers the record and live handlers.
func Register(reg *root.Registry) {
	reg.Register("record", runRecord)
	reg.Register("live", runLive)
}

func runRecord(ctx root.CommandContext) error {
	scriptPath := resolveScriptPath(ctx.Cmd.StringArg("script"))
	if _, err := os.Stat(scriptPath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s not found (to create it: %s create %s)",
				scriptPath, identity.CLIName, scriptPath)
		}
		return err
	}
	if ctx.Cmd.Bool("watch") {
		fmt.Fprintf(ctx.Out, "Watching %s (ctrl+c to stop)\n", scriptPath)
		return watch.Run(ctx.Context, scriptPath, watch.DefaultDebounce, func(rctx context.Context) error {
			return recordOnce(rctx, ctx, scriptPath)
		})
	}
	return recordOnce(ctx.Context, ctx, scriptPath)
}

func recordOnce(ctx context.Context, cc root.CommandContext, scriptPath string) error {
	scr, err := script.ParseFile(scriptPath)
	if err != nil {
		return err
	}
	reportScriptWarnings(cc, scr.Warnings)
	flags, err := flagOverrides(cc.Cmd)
	if err != nil {
		return err
	}
	layers, err := configLayers(cc)
	if err != nil {
		return err
	}
	layers = append(layers, config.FromDirectives(scr.Directives), flags)
	cfg, err := config.Resolve(layers...)
	if err != nil {
		return err
	}
	cfg.Output = resolveOutput(cc.Cmd, scr, scriptPath, cfg.Format)

	mode := resolveMode(cc.Cmd)
	fmt.Fprintf(cc.Out, "Recording %s%s\n", scriptPath, modeSuffix(mode, cfg))
	res, err := session.Record(ctx, scr, cfg, mode)
	if err != nil {
		return err
	}
	reportWarnings(cc, res.Warnings)
	if err := produce(ctx, res, cfg, cfg.Output); err != nil {
		return err
	}
	fmt.Fprintf(cc.Out, "Done! Saved to %s\n", cfg.Output)
	return nil
}

func runLive(ctx root.CommandContext) error {
	flags, err := flagOverrides(ctx.Cmd)
	if err != nil {
		return err
	}
	layers, err := configLayers(ctx)
	if err != nil {
		return err
	}
	layers = append(layers, flags)
	cfg, err := config.Resolve(layers...)
	if err != nil {
		return err
	}
	cfg.Output = strings.TrimSpace(ctx.Cmd.String("output"))
	if cfg.Output == "" {
		cfg.Output = "session.gif"
	}

	fmt.Fprintf(ctx.Out, "Recording live session to %s (exit the shell to finish)\n", cfg.Output)
	res, err := session.Interactive(ctx.Context, cfg, ctx.Cmd.Duration("duration"))
	if err != nil {
		return err
	}
	reportWarnings(ctx, res.Warnings)
	if err := produce(ctx.Context, res, cfg, cfg.Output); err != nil {
		return err
	}
	fmt.Fprintf(ctx.Out, "Saved to %s\n", cfg.Output)
	return nil
}

// resolveScriptPath fills in the .tg extension when it was left off,
// so `termgif demo` records demo.tg.
func resolveScriptPath(arg string) string {
	p := strings.TrimSpace(arg)
	if filepath.Ext(p) == "" {
		p += identity.ScriptExtension
	}
	return p
}

// resolveOutput picks the output file: the -o flag wins, then the
// @output directive, then the script name with a .gif extension. An
// explicit -f also rewrites the extension so `demo.tg -f mp4` lands
// in demo.mp4 without further flags.
func resolveOutput(cmd *cli.Command, scr *script.Script, scriptPath, format string) string {
	out := strings.TrimSpace(cmd.String("output"))
	if out == "" {
		if scr.Directives.Output != nil && strings.TrimSpace(*scr.Directives.Output) != "" {
			out = strings.TrimSpace(*scr.Directives.Output)
		} else {
			out = strings.TrimSuffix(scriptPath, filepath.Ext(scriptPath)) + ".gif"
		}
	}
	if cmd.IsSet("format") && format != "frames" {
		ext := "." + format
		if !strings.EqualFold(filepath.Ext(out), ext) {
			out = strings.TrimSuffix(out, filepath.Ext(out)) + ext
		}
	}
	return out
}

func resolveMode(cmd *cli.Command) session.Mode {
	switch {
	case cmd.Bool("simulate"):
		return session.Simulate
	case cmd.Bool("terminal"):
		return session.Capture
	default:
		return session.Live
	}
}

func modeSuffix(mode session.Mode, cfg config.Config) string {
	var parts []string
	switch mode {
	case session.Simulate:
		parts = append(parts, "simulated")
	case session.Capture:
		parts = append(parts, "terminal capture")
	}
	if !cfg.Chrome {
		parts = append(parts, "bare")
	}
	if cfg.Native {
		parts = append(parts, "native colors")
	}
	if len(parts) == 0 {
		return ""
	}
	return " (" + strings.Join(parts, ", ") + ")"
}

// configLayers loads the global and project config files, lowest
// priority first. A missing user config dir only logs.
func configLayers(cc root.CommandContext) ([]config.Overrides, error) {
	workDir, err := root.ResolveWorkDir(cc)
	if err != nil {
		return nil, err
	}
	var layers []config.Overrides
	if global, err := config.GlobalLoader(); err != nil {
		slog.Debug("record: global config unavailable", slog.Any("err", err))
	} else {
		layer, err := global.Load()
		if err != nil {
			return nil, err
		}
		layers = append(layers, layer)
	}
	layer, err := config.ProjectLoader(workDir).Load()
	if err != nil {
		return nil, err
	}
	return append(layers, layer), nil
}

// flagOverrides lifts explicitly set flags into the highest-priority
// config layer. Unset flags stay nil so directives and files apply.
func flagOverrides(cmd *cli.Command) (config.Overrides, error) {
	var o config.Overrides
	setStr := func(name string, dst **string) {
		if cmd.IsSet(name) {
			v := cmd.String(name)
			*dst = &v
		}
	}
	setInt := func(name string, dst **int) {
		if cmd.IsSet(name) {
			v := cmd.Int(name)
			*dst = &v
		}
	}
	setStr("format", &o.Format)
	setStr("theme", &o.Theme)
	setStr("title", &o.Title)
	setStr("shell", &o.Shell)
	setStr("cursor", &o.Cursor)
	setInt("fps", &o.FPS)
	setInt("font-size", &o.FontSize)
	setInt("loop", &o.LoopCount)
	setInt("padding", &o.Padding)
	if cmd.IsSet("bare") {
		chrome := !cmd.Bool("bare")
		o.Chrome = &chrome
	}
	if cmd.IsSet("native") {
		v := cmd.Bool("native")
		o.Native = &v
	}
	if cmd.IsSet("speed") {
		v := cmd.Duration("speed")
		o.TypingSpeed = &v
	}
	if cmd.IsSet("size") {
		cols, rows, err := config.ParseSize(cmd.String("size"))
		if err != nil {
			return config.Overrides{}, err
		}
		o.Cols, o.Rows = &cols, &rows
	}
	return o, nil
}

func reportScriptWarnings(cc root.CommandContext, warnings []script.Warning) {
	for _, w := range warnings {
		slog.Warn("record: script warning", slog.String("warning", w.String()))
		fmt.Fprintf(cc.ErrOut, "warning: %s\n", w.String())
	}
}

func reportWarnings(cc root.CommandContext, warnings []string) {
	for _, w := range warnings {
		slog.Warn("record: session warning", slog.String("warning", w))
		fmt.Fprintf(cc.ErrOut, "warning: %s\n", w)
	}
}
