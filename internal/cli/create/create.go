// Package create implements the create and templates commands.
package create

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/aayushadhikari7/termgif/internal/atomicfile"
	"github.com/aayushadhikari7/termgif/internal/cli/root"
	"github.com/aayushadhikari7/termgif/internal/identity"
	"github.com/aayushadhikari7/termgif/internal/templates"
)

// Register registers the create and templates handlers.
func Register(reg *root.Registry) {
	reg.Register("create", runCreate)
	reg.Register("templates", runTemplates)
}

func runCreate(ctx root.CommandContext) error {
	path := ctx.Cmd.StringArg("name")
	if filepath.Ext(path) == "" {
		path += identity.ScriptExtension
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	tpl := ctx.Cmd.String("template")
	var content string
	if tpl != "" {
		store, err := templates.NewStore()
		if err != nil {
			return err
		}
		content, err = store.Render(tpl, templates.Vars{Name: stem})
		if err != nil {
			return err
		}
	} else {
		content = boilerplate(stem)
	}

	if err := atomicfile.Save(path, []byte(content), 0o644); err != nil {
		return err
	}

	fmt.Fprintf(ctx.Out, "Created %s\n", path)
	if tpl != "" {
		fmt.Fprintf(ctx.Out, "Using template: %s\n", tpl)
	}
	fmt.Fprintf(ctx.Out, "\nEdit it, then run: %s %s\n", identity.CLIName, path)
	return nil
}

func runTemplates(ctx root.CommandContext) error {
	store, err := templates.NewStore()
	if err != nil {
		return err
	}
	infos, err := store.List()
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		_, err := fmt.Fprintln(ctx.Out, "No templates found.")
		return err
	}

	fmt.Fprintln(ctx.Out, "Available Templates")
	fmt.Fprintln(ctx.Out)
	w := tabwriter.NewWriter(ctx.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSOURCE\tDESCRIPTION")
	fmt.Fprintln(w, "----\t------\t-----------")
	for _, info := range infos {
		fmt.Fprintf(w, "%s\t%s\t%s\n", info.Name, info.Source, info.Description)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	_, err = fmt.Fprintf(ctx.Out, "\nUsage: %s create demo --template git\n", identity.CLIName)
	return err
}

// boilerplate renders the starter script for a new recording. It only
// mentions directives and actions the parser accepts.
func boilerplate(name string) string {
	return fmt.Sprintf(`// %[1]s.tg - %[2]s recording script
// Run: %[2]s %[1]s
//
// Modes:
//   %[2]s %[1]s             <- runs real commands (default)
//   %[2]s %[1]s --simulate  <- safe mode, typing only, no execution
//   %[2]s %[1]s -f mp4      <- output as MP4 instead of GIF
//   %[2]s %[1]s --watch     <- auto-regenerate on save

// ============================================================================
// CONFIGURATION - Customize your recording
// ============================================================================

@output "%[1]s.gif"
@title "%[1]s"
@theme "mocha"               // mocha, dracula, nord, tokyo, gruvbox, latte

// Terminal size & appearance
// @size 80x24               // terminal size (columns x rows)
// @font 14                  // font size in pixels
// @padding 20               // padding around content
// @quality 2                // render quality (1=fast, 2=smooth, 3=ultra)

// Prompt customization
// @prompt ">>> "            // custom prompt text

// Timing
// @fps 10                   // frames per second
// @speed 40ms               // typing speed (lower = faster/smoother)
// @start 500ms              // delay before first action
// @end 2s                   // delay after last action

// Output format
// @format "gif"             // gif, webp, mp4, webm, apng, png

// Window style
// @bare                     // no window chrome (border/title)
// @radius 10                // corner radius (0 = sharp corners)
// @cursor "block"           // cursor style: block, bar, underline

// ============================================================================
// ACTIONS - Your commands go here
// ============================================================================

// Basic syntax:
//   -> "text"     <- type text
//   >>            <- press Enter
//   -> "text" >>  <- type and press Enter
//   ~1s           <- wait 1 second
//   ~500ms        <- wait 500 milliseconds

// Example commands (edit these!)
-> "echo Hello from %[2]s!" >>
~1s

-> "echo Your commands go here" >>
~1s

// Uncomment below for more examples:

// -> "ls -la" >>
// ~2s

// -> "pwd" >>
// ~1s

// ============================================================================
// TUI APPS (vim, htop, etc.) - requires: %[2]s %[1]s --terminal --native
// ============================================================================

// Uncomment for TUI app recording:
// @native                   // preserve app colors

// key "escape"              // press Escape
// key "enter"               // press Enter
// key "up" / "down"         // arrow keys
// key "ctrl+c"              // Ctrl+C

// ============================================================================
// MORE TEMPLATES: %[2]s templates
// CREATE FROM TEMPLATE: %[2]s create myname --template git
// ============================================================================
`, name, identity.CLIName)
}
