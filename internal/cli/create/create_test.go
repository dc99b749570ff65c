package create

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aayushadhikari7/termgif/internal/cli/root"
	"github.com/aayushadhikari7/termgif/internal/cli/spec"
	"github.com/aayushadhikari7/termgif/internal/script"
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

func TestCreateWritesBoilerplate(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "demo")

	out, err := runApp(t, "create", name)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	path := name + ".tg"
	if !strings.Contains(out, "Created "+path) {
		t.Errorf("missing Created line: %q", out)
	}
	if !strings.Contains(out, "Edit it, then run:") {
		t.Errorf("missing edit hint: %q", out)
	}

	scr, err := script.ParseFile(path)
	if err != nil {
		t.Fatalf("boilerplate does not parse: %v", err)
	}
	if len(scr.Warnings) != 0 {
		t.Errorf("boilerplate produced warnings: %v", scr.Warnings)
	}
	if scr.Directives.Output == nil || *scr.Directives.Output != "demo.gif" {
		t.Errorf("output directive = %v", scr.Directives.Output)
	}
	if scr.Directives.Title == nil || *scr.Directives.Title != "demo" {
		t.Errorf("title directive = %v", scr.Directives.Title)
	}
	if scr.Directives.Theme == nil || *scr.Directives.Theme != "mocha" {
		t.Errorf("theme directive = %v", scr.Directives.Theme)
	}
	if len(scr.Actions) == 0 {
		t.Errorf("boilerplate has no actions")
	}
}

func TestCreateKeepsExplicitExtension(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "demo.tg")
	if _, err := runApp(t, "create", name); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := os.Stat(name); err != nil {
		t.Fatalf("expected %s: %v", name, err)
	}
	if _, err := os.Stat(name + ".tg"); err == nil {
		t.Fatalf("suffix was appended twice")
	}
}

func TestCreateRefusesExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "demo.tg")
	if err := os.WriteFile(path, []byte("-> \"hi\" >>\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := runApp(t, "create", path)
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("err = %v, want already exists", err)
	}
}

func TestCreateFromTemplate(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "workflow")

	out, err := runApp(t, "create", name, "--template", "git")
	if err != nil {
		t.Fatalf("create --template git: %v", err)
	}
	if !strings.Contains(out, "Using template: git") {
		t.Errorf("missing template line: %q", out)
	}
	scr, err := script.ParseFile(name + ".tg")
	if err != nil {
		t.Fatalf("template output does not parse: %v", err)
	}
	if scr.Directives.Output == nil || *scr.Directives.Output != "workflow.gif" {
		t.Errorf("template output directive = %v", scr.Directives.Output)
	}
}

func TestCreateUnknownTemplate(t *testing.T) {
	dir := t.TempDir()
	_, err := runApp(t, "create", filepath.Join(dir, "demo"), "--template", "no-such")
	if err == nil || !strings.Contains(err.Error(), "unknown template") {
		t.Fatalf("err = %v, want unknown template", err)
	}
}

func TestTemplatesListing(t *testing.T) {
	out, err := runApp(t, "templates")
	if err != nil {
		t.Fatalf("templates: %v", err)
	}
	for _, want := range []string{"NAME", "SOURCE", "basic", "git", "builtin"} {
		if !strings.Contains(out, want) {
			t.Errorf("listing missing %q:\n%s", want, out)
		}
	}
}

func TestBoilerplateMentionsOnlyKnownDirectives(t *testing.T) {
	// Every commented-out directive example must survive uncommenting.
	src := boilerplate("demo")
	var sb strings.Builder
	for _, line := range strings.Split(src, "\n") {
		trimmed := strings.TrimSpace(line)
		if rest, ok := strings.CutPrefix(trimmed, "// @"); ok {
			sb.WriteString("@" + rest + "\n")
		}
	}
	scr, err := script.Parse(sb.String())
	if err != nil {
		t.Fatalf("uncommented directives do not parse: %v\n%s", err, sb.String())
	}
	if len(scr.Warnings) != 0 {
		t.Errorf("uncommented directives warn: %v", scr.Warnings)
	}
}
