package configcmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aayushadhikari7/termgif/internal/appdirs"
	"github.com/aayushadhikari7/termgif/internal/cli/root"
	"github.com/aayushadhikari7/termgif/internal/cli/spec"
	"github.com/aayushadhikari7/termgif/internal/config"
)

// runApp pins the global config dir to a scratch directory so the
// tests never touch the developer's real config.toml.
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
	deps := root.Dependencies{Stdout: &out, Stderr: &bytes.Buffer{}, WorkDir: t.TempDir()}
	app, err := root.BuildApp(specDoc, deps, reg)
	if err != nil {
		t.Fatalf("BuildApp: %v", err)
	}
	runErr := app.Run(context.Background(), append([]string{"termgif"}, args...))
	return out.String(), runErr
}

func isolateConfigDir(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "cfg")
	t.Setenv(appdirs.EnvConfigDir, dir)
	return filepath.Join(dir, "config.toml")
}

func TestConfigShowWithoutFile(t *testing.T) {
	path := isolateConfigDir(t)

	out, err := runApp(t, "config")
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if !strings.Contains(out, "Config file: "+path) {
		t.Errorf("out = %q", out)
	}
	if !strings.Contains(out, "No config file found.") ||
		!strings.Contains(out, "To create: termgif config --init") {
		t.Errorf("out = %q", out)
	}
}

func TestConfigInitWritesParseableFile(t *testing.T) {
	path := isolateConfigDir(t)

	out, err := runApp(t, "config", "--init")
	if err != nil {
		t.Fatalf("config --init: %v", err)
	}
	if !strings.Contains(out, "Created config: "+path) {
		t.Errorf("out = %q", out)
	}

	layer, err := config.NewLoader(path).Load()
	if err != nil {
		t.Fatalf("template does not parse: %v", err)
	}
	cfg, err := config.Resolve(layer)
	if err != nil {
		t.Fatalf("template does not validate: %v", err)
	}
	if cfg.Theme != "mocha" || cfg.FontSize != 14 || cfg.FPS != 10 {
		t.Errorf("template defaults = %q/%d/%d", cfg.Theme, cfg.FontSize, cfg.FPS)
	}

	again, err := runApp(t, "config", "--init")
	if err != nil {
		t.Fatalf("second init: %v", err)
	}
	if !strings.Contains(again, "Config already exists: "+path) {
		t.Errorf("out = %q", again)
	}
}

func TestConfigShowMasksCredentials(t *testing.T) {
	path := isolateConfigDir(t)
	body := "[render]\ntheme = \"nord\"\n\n[sharing]\nimgur_client_id = \"secret-id\"\n"
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := runApp(t, "config")
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if strings.Contains(out, "secret-id") {
		t.Errorf("credential leaked: %q", out)
	}
	if !strings.Contains(out, "***") || !strings.Contains(out, "(not set)") {
		t.Errorf("out = %q", out)
	}
	if !strings.Contains(out, "nord") || !strings.Contains(out, "render.theme") {
		t.Errorf("out = %q", out)
	}
	if !strings.Contains(out, "To edit: termgif config --edit") {
		t.Errorf("out = %q", out)
	}
}

func TestConfigEditUsesEditorEnv(t *testing.T) {
	path := isolateConfigDir(t)
	t.Setenv("EDITOR", "myedit")

	var gotEditor, gotPath string
	prev := runEditor
	runEditor = func(_ context.Context, editor, p string) error {
		gotEditor, gotPath = editor, p
		return nil
	}
	t.Cleanup(func() { runEditor = prev })

	out, err := runApp(t, "config", "--edit")
	if err != nil {
		t.Fatalf("config --edit: %v", err)
	}
	if gotEditor != "myedit" || gotPath != path {
		t.Errorf("editor call = %q %q", gotEditor, gotPath)
	}
	if !strings.Contains(out, "Created config: "+path) {
		t.Errorf("missing file should be created first, out = %q", out)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("config file not written: %v", err)
	}
}

func TestConfigEditFallsBackToNano(t *testing.T) {
	isolateConfigDir(t)
	t.Setenv("EDITOR", "")

	var gotEditor string
	prev := runEditor
	runEditor = func(_ context.Context, editor, _ string) error {
		gotEditor = editor
		return nil
	}
	t.Cleanup(func() { runEditor = prev })

	if _, err := runApp(t, "config", "--edit"); err != nil {
		t.Fatalf("config --edit: %v", err)
	}
	if gotEditor != "nano" {
		t.Errorf("editor = %q, want nano", gotEditor)
	}
}

func TestConfigEditReportsEditorFailure(t *testing.T) {
	path := isolateConfigDir(t)

	prev := runEditor
	runEditor = func(context.Context, string, string) error {
		return os.ErrNotExist
	}
	t.Cleanup(func() { runEditor = prev })

	out, err := runApp(t, "config", "--edit")
	if err != nil {
		t.Fatalf("config --edit: %v", err)
	}
	if !strings.Contains(out, "Could not open editor. Edit manually:") ||
		!strings.Contains(out, path) {
		t.Errorf("out = %q", out)
	}
}

func TestConfigInitAndEditExclusive(t *testing.T) {
	isolateConfigDir(t)

	_, err := runApp(t, "config", "--init", "--edit")
	if err == nil || !strings.Contains(err.Error(), "only one of") {
		t.Fatalf("err = %v", err)
	}
}
