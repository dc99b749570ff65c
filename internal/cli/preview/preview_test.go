package preview

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/gif"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aayushadhikari7/termgif/internal/cast"
	"github.com/aayushadhikari7/termgif/internal/cli/root"
	"github.com/aayushadhikari7/termgif/internal/cli/spec"
	"github.com/aayushadhikari7/termgif/internal/script"
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

func writeGIF(t *testing.T, path string) {
	t.Helper()
	pal := color.Palette{color.Black, color.White}
	g := &gif.GIF{}
	for i := 0; i < 2; i++ {
		g.Image = append(g.Image, image.NewPaletted(image.Rect(0, 0, 8, 4), pal))
		g.Delay = append(g.Delay, 10+10*i)
	}
	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, g); err != nil {
		t.Fatalf("encode gif: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestPreviewScriptSummary(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "demo.tg")
	src := `@output "demo.gif"
@size 100x30
@theme "nord"
-> "git status" >>
~1s
key "ctrl+c"
`
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := runApp(t, "preview", path)
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	for _, want := range []string{
		"Script: demo.tg",
		"demo.gif",
		"100x30",
		"nord",
		`type "git status"`,
		"enter",
		"wait 1s",
		"key ctrl+c",
		"Total: 4 actions",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestInfoGIF(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "demo.gif")
	writeGIF(t, path)

	out, err := runApp(t, "info", path)
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	for _, want := range []string{"File Info: demo.gif", "GIF", "8x4 px", "0.3s"} {
		if !strings.Contains(out, want) {
			t.Errorf("info missing %q:\n%s", want, out)
		}
	}
}

func TestPreviewWithoutPlayShowsInfoAndHint(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "demo.gif")
	writeGIF(t, path)

	out, err := runApp(t, "preview", path)
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if !strings.Contains(out, "File Info") || !strings.Contains(out, "Use --play") {
		t.Errorf("expected info plus hint:\n%s", out)
	}
}

func TestPreviewMissingFile(t *testing.T) {
	_, err := runApp(t, "preview", filepath.Join(t.TempDir(), "ghost.gif"))
	if err == nil || !strings.Contains(err.Error(), "file not found") {
		t.Fatalf("err = %v, want file not found", err)
	}
}

func TestInfoCast(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "demo.cast")

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
		t.Fatalf("export: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	out, err := runApp(t, "info", path)
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	if !strings.Contains(out, "CAST") || !strings.Contains(out, "cells") {
		t.Errorf("cast info missing fields:\n%s", out)
	}
}

func TestDescribeAction(t *testing.T) {
	cases := []struct {
		action script.Action
		want   string
	}{
		{script.TypeText{Text: "ls"}, `type "ls"`},
		{script.PressEnter{}, "enter"},
		{script.Wait{Duration: 1500 * time.Millisecond}, "wait 1500ms"},
		{script.PressKey{Name: "c", Mods: []string{"ctrl"}}, "key ctrl+c"},
		{script.ToggleCapture{On: true}, "show"},
		{script.ToggleCapture{}, "hide"},
		{script.Screenshot{Path: "shot.png"}, "screenshot shot.png"},
		{script.Marker{Label: "intro"}, `marker "intro"`},
		{script.RequireCommand{Name: "docker"}, "require docker"},
	}
	for _, tc := range cases {
		if got := describeAction(tc.action); got != tc.want {
			t.Errorf("describeAction(%#v) = %q, want %q", tc.action, got, tc.want)
		}
	}
}

func TestHumanSize(t *testing.T) {
	cases := map[int64]string{
		512:             "512 B",
		2048:            "2.0 KB",
		3 * 1024 * 1024: "3.0 MB",
	}
	for in, want := range cases {
		if got := humanSize(in); got != want {
			t.Errorf("humanSize(%d) = %q, want %q", in, got, want)
		}
	}
}
