// Package configcmd implements the config command: showing the global
// config file, writing a commented starter file and opening $EDITOR.
package configcmd

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"text/tabwriter"

	"github.com/aayushadhikari7/termgif/internal/appdirs"
	"github.com/aayushadhikari7/termgif/internal/atomicfile"
	"github.com/aayushadhikari7/termgif/internal/cli/root"
	"github.com/aayushadhikari7/termgif/internal/config"
	"github.com/aayushadhikari7/termgif/internal/identity"
)

// Register registers the config handler.
func Register(reg *root.Registry) {
	reg.Register("config", runConfig)
}

// runEditor hands the terminal to the user's editor. Tests swap it out.
var runEditor = func(ctx context.Context, editor, path string) error {
	cmd := exec.CommandContext(ctx, editor, path)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func runConfig(ctx root.CommandContext) error {
	path, err := appdirs.GlobalConfigPath()
	if err != nil {
		return err
	}
	switch {
	case ctx.Cmd.Bool("init"):
		return initConfig(ctx, path)
	case ctx.Cmd.Bool("edit"):
		return editConfig(ctx, path)
	default:
		return showConfig(ctx, path)
	}
}

func initConfig(ctx root.CommandContext, path string) error {
	if _, err := os.Stat(path); err == nil {
		fmt.Fprintf(ctx.Out, "Config already exists: %s\n", path)
		return nil
	}
	if err := atomicfile.Save(path, []byte(defaultConfigTOML), 0o644); err != nil {
		return err
	}
	fmt.Fprintf(ctx.Out, "Created config: %s\n", path)
	return nil
}

func editConfig(ctx root.CommandContext, path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := atomicfile.Save(path, []byte(defaultConfigTOML), 0o644); err != nil {
			return err
		}
		fmt.Fprintf(ctx.Out, "Created config: %s\n", path)
	}
	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "nano"
	}
	if err := runEditor(ctx.Context, editor, path); err != nil {
		fmt.Fprintln(ctx.Out, "Could not open editor. Edit manually:")
		fmt.Fprintf(ctx.Out, "  %s\n", path)
	}
	return nil
}

func showConfig(ctx root.CommandContext, path string) error {
	fmt.Fprintf(ctx.Out, "Config file: %s\n", path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Fprintln(ctx.Out, "No config file found.")
		fmt.Fprintf(ctx.Out, "To create: %s config --init\n", identity.CLIName)
		return nil
	}

	layer, err := config.NewLoader(path).Load()
	if err != nil {
		return err
	}
	cfg, err := config.Resolve(layer)
	if err != nil {
		return err
	}
	workDir, err := root.ResolveWorkDir(ctx)
	if err != nil {
		return err
	}
	sharing, err := config.LoadSharing(workDir)
	if err != nil {
		return err
	}

	fmt.Fprintln(ctx.Out, "\nCurrent settings:")
	tw := tabwriter.NewWriter(ctx.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SETTING\tVALUE")
	fmt.Fprintf(tw, "render.theme\t%s\n", cfg.Theme)
	fmt.Fprintf(tw, "render.font_size\t%d\n", cfg.FontSize)
	fmt.Fprintf(tw, "render.size\t%dx%d\n", cfg.Cols, cfg.Rows)
	fmt.Fprintf(tw, "timing.fps\t%d\n", cfg.FPS)
	fmt.Fprintf(tw, "output.format\t%s\n", cfg.Format)
	fmt.Fprintf(tw, "output.quality\t%d\n", cfg.Quality)
	fmt.Fprintf(tw, "sharing.default_service\t%s\n", sharing.DefaultService)
	fmt.Fprintf(tw, "sharing.imgur_client_id\t%s\n", masked(sharing.ImgurClientID))
	fmt.Fprintf(tw, "sharing.giphy_api_key\t%s\n", masked(sharing.GiphyAPIKey))
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(ctx.Out, "\nTo edit: %s config --edit\n", identity.CLIName)
	return nil
}

// masked keeps credentials out of terminal scrollback.
func masked(secret string) string {
	if secret == "" {
		return "(not set)"
	}
	return "***"
}

const defaultConfigTOML = `# termgif configuration file
# Project overrides live in .termgif.toml next to your scripts.

[render]
# Theme for rasterized output. Run "termgif record --theme NAME" to try
# others: mocha, latte, frappe, macchiato, dracula, nord, tokyo,
# gruvbox, one-dark, solarized-dark.
theme = "mocha"
font_size = 14
padding = 20
size = "80x24"
# chrome = true
# cursor = "block"
# radius = 10

[timing]
fps = 10
# typing_speed_ms = 50
# start_delay_ms = 500
# end_delay_ms = 2000

[output]
format = "gif"
quality = 2
# loop = 0
# colors = 256
# dither = "floyd-steinberg"

[session]
# shell = "/bin/bash"
# prompt = "$ "

[sharing]
# Imgur client ID, from https://api.imgur.com/oauth2/addclient
imgur_client_id = ""
# Giphy API key, from https://developers.giphy.com/
giphy_api_key = ""
default_service = "catbox"
`
