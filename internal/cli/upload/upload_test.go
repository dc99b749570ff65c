package upload

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
)

// runApp pins the working directory and the global config dir so the
// tests never read the developer's real sharing credentials.
func runApp(t *testing.T, workDir string, args ...string) (string, error) {
	t.Helper()
	t.Setenv(appdirs.EnvConfigDir, filepath.Join(t.TempDir(), "cfg"))
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
	deps := root.Dependencies{Stdout: &out, Stderr: &bytes.Buffer{}, WorkDir: workDir}
	app, err := root.BuildApp(specDoc, deps, reg)
	if err != nil {
		t.Fatalf("BuildApp: %v", err)
	}
	runErr := app.Run(context.Background(), append([]string{"termgif"}, args...))
	return out.String(), runErr
}

func writeRecording(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "demo.gif")
	if err := os.WriteFile(path, []byte("GIF89a"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestUploadMissingFile(t *testing.T) {
	dir := t.TempDir()
	_, err := runApp(t, dir, "upload", filepath.Join(dir, "demo.gif"))
	if err == nil || !strings.Contains(err.Error(), "file not found") {
		t.Fatalf("err = %v, want file not found", err)
	}
}

func TestUploadBadDefaultServiceInConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeRecording(t, dir)
	cfg := "[sharing]\ndefault_service = \"imageshack\"\n"
	if err := os.WriteFile(filepath.Join(dir, ".termgif.toml"), []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := runApp(t, dir, "upload", path)
	if err == nil || !strings.Contains(err.Error(), `unknown sharing service "imageshack"`) {
		t.Fatalf("err = %v", err)
	}
}

func TestUploadImgurWithoutClientID(t *testing.T) {
	dir := t.TempDir()
	path := writeRecording(t, dir)

	out, err := runApp(t, dir, "upload", path, "--service", "imgur")
	if err == nil || !strings.Contains(err.Error(), "imgur uploads need sharing.imgur_client_id") {
		t.Fatalf("err = %v", err)
	}
	if !strings.Contains(err.Error(), "set it in ") {
		t.Errorf("error should point at the config file, got %v", err)
	}
	if !strings.Contains(out, "Uploading "+path+" to imgur...") {
		t.Errorf("out = %q", out)
	}
}

func TestUploadServiceFlagOverridesConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeRecording(t, dir)
	cfg := "[sharing]\ndefault_service = \"catbox\"\n"
	if err := os.WriteFile(filepath.Join(dir, ".termgif.toml"), []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := runApp(t, dir, "upload", path, "-s", "giphy")
	if err == nil || !strings.Contains(err.Error(), "giphy uploads need sharing.giphy_api_key") {
		t.Fatalf("err = %v", err)
	}
	if !strings.Contains(out, "to giphy...") {
		t.Errorf("out = %q", out)
	}
}
