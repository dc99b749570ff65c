package convert

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aayushadhikari7/termgif/internal/cast"
	"github.com/aayushadhikari7/termgif/internal/cli/root"
	"github.com/aayushadhikari7/termgif/internal/cli/spec"
	"github.com/aayushadhikari7/termgif/internal/encode"
	"github.com/aayushadhikari7/termgif/internal/termframe"
	"github.com/aayushadhikari7/termgif/internal/timeline"
)

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	specDoc, err := spec.LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault: %v", err)
	}
	reg := root.NewRegistry()
	for _, c := range specDoc.AllCommands() {
		reg.Register(c.ID, func(root.CommandContext) error { return nil })
	}
	Register(reg)
	var out bytes.Buffer
	deps := root.Dependencies{Stdout: &out, Stderr: &bytes.Buffer{}}
	app, err := root.BuildApp(specDoc, deps, reg)
	if err != nil {
		t.Fatalf("BuildApp: %v", err)
	}
	runErr := app.Run(context.Background(), append([]string{"termgif"}, args...))
	return out.String(), runErr
}

func writeCast(t *testing.T, path string) {
	t.Helper()
	tl := &timeline.Timeline{
		FPS:  10,
		Cols: 4,
		Rows: 2,
		Frames: []timeline.Frame{
			{Grid: termframe.Blank(4, 2), Hold: 100 * time.Millisecond},
			{Grid: termframe.Blank(4, 2), Offset: 100 * time.Millisecond, Hold: 100 * time.Millisecond},
		},
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := cast.Export(f, tl, cast.ExportOptions{}); err != nil {
		t.Fatalf("export fixture: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestImportCastToGIF(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "demo.cast")
	writeCast(t, in)

	out, err := runApp(t, "import", in)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	want := filepath.Join(dir, "demo.gif")
	if !strings.Contains(out, "Importing "+in) || !strings.Contains(out, "Imported! Saved to "+want) {
		t.Errorf("messages = %q", out)
	}

	tl, err := encode.DecodeFile(context.Background(), want, 0)
	if err != nil {
		t.Fatalf("decode imported gif: %v", err)
	}
	if tl.PixelW <= 0 || tl.PixelH <= 0 {
		t.Errorf("imported gif has no pixel size: %dx%d", tl.PixelW, tl.PixelH)
	}
}

func TestImportExplicitOutputAndFrames(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "demo.cast")
	writeCast(t, in)

	target := filepath.Join(dir, "unpacked")
	if _, err := runApp(t, "import", in, "-f", "frames", "-o", target); err != nil {
		t.Fatalf("import frames: %v", err)
	}
	if _, err := os.Stat(filepath.Join(target, "metadata.json")); err != nil {
		t.Fatalf("frames metadata missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(target, "frame_00000.png")); err != nil {
		t.Fatalf("first frame missing: %v", err)
	}
}

func TestImportRejectsUnknownTheme(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "demo.cast")
	writeCast(t, in)

	_, err := runApp(t, "import", in, "--theme", "nosuch")
	if err == nil {
		t.Fatalf("expected theme validation error")
	}
}

func TestImportMissingFile(t *testing.T) {
	_, err := runApp(t, "import", filepath.Join(t.TempDir(), "ghost.cast"))
	if err == nil || !strings.Contains(err.Error(), "file not found") {
		t.Fatalf("err = %v, want file not found", err)
	}
}

func TestExportScriptToCast(t *testing.T) {
	dir := t.TempDir()
	scriptPath := filepath.Join(dir, "demo.tg")
	src := "@size 40x6\n@prompt \"$ \"\n-> \"echo hi\" >>\n~200ms\n"
	if err := os.WriteFile(scriptPath, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := runApp(t, "export", scriptPath)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	want := filepath.Join(dir, "demo.cast")
	if !strings.Contains(out, "Exported! Saved to "+want) {
		t.Errorf("messages = %q", out)
	}

	data, err := os.ReadFile(want)
	if err != nil {
		t.Fatalf("read cast: %v", err)
	}
	head, _, _ := strings.Cut(string(data), "\n")
	if !strings.Contains(head, `"version":2`) {
		t.Errorf("cast header = %q", head)
	}
	if !strings.Contains(string(data), "echo hi") {
		t.Errorf("cast body lacks typed text")
	}
}

func TestExportAppendsScriptExtension(t *testing.T) {
	dir := t.TempDir()
	scriptPath := filepath.Join(dir, "demo.tg")
	if err := os.WriteFile(scriptPath, []byte("-> \"ok\" >>\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := runApp(t, "export", filepath.Join(dir, "demo")); err != nil {
		t.Fatalf("export: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "demo.cast")); err != nil {
		t.Fatalf("cast output missing: %v", err)
	}
}

func TestExportMissingScript(t *testing.T) {
	_, err := runApp(t, "export", filepath.Join(t.TempDir(), "ghost.tg"))
	if err == nil || !strings.Contains(err.Error(), "file not found") {
		t.Fatalf("err = %v, want file not found", err)
	}
}
