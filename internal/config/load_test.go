package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aayushadhikari7/termgif/internal/appdirs"
)

const sampleTOML = `
[render]
theme = "nord"
font_size = 16
size = "100x30"
chrome = false

[timing]
typing_speed_ms = 25
fps = 20

[output]
format = "mp4"
codec = "vp9"

[session]
shell = "zsh"
env = ["CI=1"]

[watermark]
path = "logo.png"
opacity = 0.75
`

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoaderReadsFile(t *testing.T) {
	path := writeConfig(t, t.TempDir(), sampleTOML)
	layer, err := NewLoader(path).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	cfg := Default()
	layer.Apply(&cfg)
	if cfg.Theme != "nord" || cfg.FontSize != 16 {
		t.Fatalf("render section not applied: %s/%d", cfg.Theme, cfg.FontSize)
	}
	if cfg.Cols != 100 || cfg.Rows != 30 {
		t.Fatalf("size = %dx%d, want 100x30", cfg.Cols, cfg.Rows)
	}
	if cfg.Chrome {
		t.Fatal("chrome should be off")
	}
	if cfg.TypingSpeed != 25*time.Millisecond || cfg.FPS != 20 {
		t.Fatalf("timing = %v/%d", cfg.TypingSpeed, cfg.FPS)
	}
	if cfg.Format != "mp4" || cfg.Codec != "vp9" {
		t.Fatalf("output = %s/%s", cfg.Format, cfg.Codec)
	}
	if cfg.Shell != "zsh" || len(cfg.Env) != 1 {
		t.Fatalf("session = %q %v", cfg.Shell, cfg.Env)
	}
	if cfg.Watermark != "logo.png" || cfg.WatermarkOpacity != 0.75 {
		t.Fatalf("watermark = %q %v", cfg.Watermark, cfg.WatermarkOpacity)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("merged config invalid: %v", err)
	}
}

func TestLoaderMissingFileIsEmptyLayer(t *testing.T) {
	layer, err := NewLoader(filepath.Join(t.TempDir(), "nope.toml")).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	cfg := Default()
	layer.Apply(&cfg)
	if cfg.Theme != Default().Theme {
		t.Fatal("empty layer must not change defaults")
	}
}

func TestLoaderReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "[timing]\nfps = 20\n")
	loader := NewLoader(path)

	layer, err := loader.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if layer.FPS == nil || *layer.FPS != 20 {
		t.Fatalf("fps layer = %v", layer.FPS)
	}

	// Rewrite with different content and a bumped mtime; size changes
	// too so either signal would trigger the reload.
	if err := os.WriteFile(path, []byte("[timing]\nfps = 42\n# grew\n"), 0o600); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}
	future := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	layer, err = loader.Load()
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if layer.FPS == nil || *layer.FPS != 42 {
		t.Fatalf("fps after reload = %v, want 42", layer.FPS)
	}
}

func TestLoaderMalformedTOML(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "render = {{{")
	if _, err := NewLoader(path).Load(); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestProjectLoaderPath(t *testing.T) {
	dir := t.TempDir()
	loader := ProjectLoader(dir)
	if loader.path != filepath.Join(dir, ".termgif.toml") {
		t.Fatalf("project path = %q", loader.path)
	}
}

func TestLoadSharingLayers(t *testing.T) {
	globalDir := t.TempDir()
	t.Setenv(appdirs.EnvConfigDir, globalDir)
	writeConfig(t, globalDir, `
[sharing]
imgur_client_id = "global-id"
default_service = "IMGUR"
`)

	projDir := t.TempDir()
	proj := filepath.Join(projDir, ".termgif.toml")
	if err := os.WriteFile(proj, []byte(`
[sharing]
imgur_client_id = " project-id "
giphy_api_key = "gk-1"
`), 0o600); err != nil {
		t.Fatalf("write project config: %v", err)
	}

	s, err := LoadSharing(projDir)
	if err != nil {
		t.Fatalf("LoadSharing failed: %v", err)
	}
	if s.ImgurClientID != "project-id" {
		t.Errorf("imgur id = %q, want project layer to win", s.ImgurClientID)
	}
	if s.GiphyAPIKey != "gk-1" {
		t.Errorf("giphy key = %q", s.GiphyAPIKey)
	}
	if s.DefaultService != "imgur" {
		t.Errorf("default service = %q, want lowercased imgur", s.DefaultService)
	}
}

func TestLoadSharingDefaults(t *testing.T) {
	t.Setenv(appdirs.EnvConfigDir, t.TempDir())
	s, err := LoadSharing(t.TempDir())
	if err != nil {
		t.Fatalf("LoadSharing failed: %v", err)
	}
	if s.DefaultService != "catbox" || s.ImgurClientID != "" || s.GiphyAPIKey != "" {
		t.Fatalf("defaults = %+v", s)
	}
}
