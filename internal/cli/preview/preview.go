// Package preview implements the preview and info commands.
package preview

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/aayushadhikari7/termgif/internal/cli/root"
	"github.com/aayushadhikari7/termgif/internal/encode"
	"github.com/aayushadhikari7/termgif/internal/identity"
	"github.com/aayushadhikari7/termgif/internal/player"
	"github.com/aayushadhikari7/termgif/internal/script"
	"github.com/aayushadhikari7/termgif/internal/timeline"
)

// Register registers the preview and info handlers.
func Register(reg *root.Registry) {
	reg.Register("preview", runPreview)
	reg.Register("info", runInfo)
}

func runPreview(ctx root.CommandContext) error {
	path := ctx.Cmd.StringArg("file")
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file not found: %s", path)
		}
		return err
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext == identity.ScriptExtension || ext == ".tape" {
		return previewScript(ctx, path)
	}
	if ctx.Cmd.Bool("play") {
		return play(ctx.Context, path)
	}
	if err := writeFileInfo(ctx, path); err != nil {
		return err
	}
	_, err := fmt.Fprintln(ctx.Out, "\nUse --play to play the animation in the terminal")
	return err
}

func runInfo(ctx root.CommandContext) error {
	path := ctx.Cmd.StringArg("file")
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file not found: %s", path)
		}
		return err
	}
	return writeFileInfo(ctx, path)
}

func play(ctx context.Context, path string) error {
	tl, err := encode.DecodeFile(ctx, path, 0)
	if err != nil {
		return err
	}
	return player.Play(tl, filepath.Base(path), player.Options{
		Loop:    true,
		Profile: player.DetectProfile(),
	})
}

func previewScript(ctx root.CommandContext, path string) error {
	scr, err := script.ParseFile(path)
	if err != nil {
		return err
	}
	for _, w := range scr.Warnings {
		fmt.Fprintf(ctx.ErrOut, "warning: %s\n", w)
	}

	fmt.Fprintf(ctx.Out, "Script: %s\n\n", filepath.Base(path))
	w := tabwriter.NewWriter(ctx.Out, 0, 0, 2, ' ', 0)
	d := scr.Directives
	fmt.Fprintf(w, "Output:\t%s\n", strOr(d.Output, "(default)"))
	if d.Size != nil {
		fmt.Fprintf(w, "Size:\t%s\n", d.Size)
	}
	if d.Theme != nil {
		fmt.Fprintf(w, "Theme:\t%s\n", *d.Theme)
	}
	if d.FPS != nil {
		fmt.Fprintf(w, "FPS:\t%d\n", *d.FPS)
	}
	fmt.Fprintf(w, "Title:\t%s\n", strOr(d.Title, "(none)"))
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(ctx.Out, "\nActions:")
	for i, action := range scr.Actions {
		fmt.Fprintf(ctx.Out, "  %3d. %s\n", i+1, describeAction(action))
	}
	_, err = fmt.Fprintf(ctx.Out, "\nTotal: %d actions\n", len(scr.Actions))
	return err
}

func describeAction(a script.Action) string {
	switch a := a.(type) {
	case script.TypeText:
		return fmt.Sprintf("type %q", a.Text)
	case script.PressEnter:
		return "enter"
	case script.Wait:
		return "wait " + script.FormatDuration(a.Duration)
	case script.PressKey:
		return "key " + a.Combo()
	case script.ToggleCapture:
		if a.On {
			return "show"
		}
		return "hide"
	case script.Screenshot:
		return fmt.Sprintf("screenshot %s", a.Path)
	case script.Marker:
		return fmt.Sprintf("marker %q", a.Label)
	case script.RequireCommand:
		return fmt.Sprintf("require %s", a.Name)
	default:
		return fmt.Sprintf("%T", a)
	}
}

func writeFileInfo(ctx root.CommandContext, path string) error {
	st, err := os.Stat(path)
	if err != nil {
		return err
	}
	tl, err := encode.DecodeFile(ctx.Context, path, 0)
	if err != nil {
		return err
	}

	fmt.Fprintf(ctx.Out, "File Info: %s\n\n", filepath.Base(path))
	w := tabwriter.NewWriter(ctx.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Format:\t%s\n", strings.ToUpper(strings.TrimPrefix(filepath.Ext(path), ".")))
	fmt.Fprintf(w, "Size:\t%s\n", dimensions(tl))
	fmt.Fprintf(w, "Frames:\t%d\n", len(tl.Frames))
	dur := tl.Duration()
	fmt.Fprintf(w, "Duration:\t%.1fs\n", dur.Seconds())
	if len(tl.Frames) > 1 && dur > 0 {
		fmt.Fprintf(w, "FPS:\t%.1f\n", float64(len(tl.Frames))/dur.Seconds())
	}
	fmt.Fprintf(w, "File size:\t%s\n", humanSize(st.Size()))
	return w.Flush()
}

func dimensions(tl *timeline.Timeline) string {
	if tl.PixelW > 0 && tl.PixelH > 0 {
		return fmt.Sprintf("%dx%d px", tl.PixelW, tl.PixelH)
	}
	return fmt.Sprintf("%dx%d cells", tl.Cols, tl.Rows)
}

func humanSize(n int64) string {
	switch {
	case n < 1024:
		return fmt.Sprintf("%d B", n)
	case n < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(n)/1024)
	default:
		return fmt.Sprintf("%.1f MB", float64(n)/1024/1024)
	}
}

func strOr(p *string, fallback string) string {
	if p == nil || strings.TrimSpace(*p) == "" {
		return fallback
	}
	return *p
}
