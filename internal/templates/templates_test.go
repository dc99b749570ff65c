package templates

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aayushadhikari7/termgif/internal/appdirs"
	"github.com/aayushadhikari7/termgif/internal/script"
)

func TestListBuiltins(t *testing.T) {
	infos, err := StoreAt("").List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(infos) != 10 {
		t.Fatalf("got %d templates, want 10", len(infos))
	}
	for i := 1; i < len(infos); i++ {
		if infos[i-1].Name >= infos[i].Name {
			t.Fatalf("listing not sorted: %q before %q", infos[i-1].Name, infos[i].Name)
		}
	}
	byName := make(map[string]Info, len(infos))
	for _, info := range infos {
		byName[info.Name] = info
	}
	for _, want := range []string{"basic", "git", "npm", "docker", "python", "vim", "htop", "fzf", "lazygit", "api"} {
		info, ok := byName[want]
		if !ok {
			t.Fatalf("template %q missing from listing", want)
		}
		if info.Source != "builtin" {
			t.Errorf("%s source = %q", want, info.Source)
		}
	}
	if !strings.Contains(byName["git"].Description, "Git workflow") {
		t.Errorf("git description = %q", byName["git"].Description)
	}
}

func TestRenderFillsVars(t *testing.T) {
	out, err := StoreAt("").Render("basic", Vars{Name: "intro"})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.Contains(out, `@output "intro.gif"`) {
		t.Errorf("output directive missing name:\n%s", out)
	}
	if !strings.Contains(out, `@title "Intro"`) {
		t.Errorf("title should default to capitalized name:\n%s", out)
	}
}

func TestRenderDefaultVars(t *testing.T) {
	out, err := StoreAt("").Render("basic", Vars{})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.Contains(out, `"demo.gif"`) || !strings.Contains(out, `"Demo"`) {
		t.Errorf("defaults not applied:\n%s", out)
	}
}

func TestBuiltinsParse(t *testing.T) {
	store := StoreAt("")
	infos, err := store.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	for _, info := range infos {
		out, err := store.Render(info.Name, Vars{Name: "check"})
		if err != nil {
			t.Fatalf("render %s: %v", info.Name, err)
		}
		scr, err := script.Parse(out)
		if err != nil {
			t.Fatalf("template %s does not parse: %v", info.Name, err)
		}
		if len(scr.Actions) == 0 {
			t.Errorf("template %s has no actions", info.Name)
		}
		if len(scr.Warnings) != 0 {
			t.Errorf("template %s warns: %v", info.Name, scr.Warnings)
		}
	}
}

func TestUserTemplateOverridesBuiltin(t *testing.T) {
	dir := t.TempDir()
	user := "// My git flow\n-> \"echo {{.Name}}\" >>\n~1s\n"
	if err := os.WriteFile(filepath.Join(dir, "git.tg"), []byte(user), 0o600); err != nil {
		t.Fatalf("write user template: %v", err)
	}
	store := StoreAt(dir)

	infos, err := store.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	var git Info
	for _, info := range infos {
		if info.Name == "git" {
			git = info
		}
	}
	if git.Source != "user" || git.Description != "My git flow" {
		t.Fatalf("git info = %+v, want user override", git)
	}

	out, err := store.Render("git", Vars{Name: "mine"})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.Contains(out, "echo mine") {
		t.Errorf("user template not used:\n%s", out)
	}
}

func TestUnknownTemplateSuggests(t *testing.T) {
	_, err := StoreAt("").Render("doc", Vars{})
	var ue *UnknownError
	if !errors.As(err, &ue) {
		t.Fatalf("err = %v, want UnknownError", err)
	}
	found := false
	for _, s := range ue.Suggestions {
		if s == "docker" {
			found = true
		}
	}
	if !found {
		t.Errorf("suggestions = %v, want docker", ue.Suggestions)
	}
	if !strings.Contains(ue.Error(), "did you mean") {
		t.Errorf("message = %q", ue.Error())
	}
}

func TestUnknownTemplateListsAvailable(t *testing.T) {
	_, err := StoreAt("").Render("zzz", Vars{})
	var ue *UnknownError
	if !errors.As(err, &ue) {
		t.Fatalf("err = %v, want UnknownError", err)
	}
	if len(ue.Suggestions) != 0 {
		t.Errorf("suggestions = %v, want none", ue.Suggestions)
	}
	if !strings.Contains(ue.Error(), "available:") || !strings.Contains(ue.Error(), "basic") {
		t.Errorf("message = %q", ue.Error())
	}
}

func TestLookupRejectsPathEscape(t *testing.T) {
	store := StoreAt(t.TempDir())
	for _, name := range []string{"../evil", "a/b", `a\b`, ""} {
		_, err := store.Render(name, Vars{})
		var ue *UnknownError
		if !errors.As(err, &ue) {
			t.Errorf("Render(%q) err = %v, want UnknownError", name, err)
		}
	}
}

func TestNewStoreUsesConfigDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(appdirs.EnvConfigDir, dir)

	store, err := NewStore()
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	sub := filepath.Join(dir, UserTemplateDir)
	if err := os.MkdirAll(sub, 0o700); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(sub, "mine.tg"), []byte("-> \"hi\" >>\n"), 0o600); err != nil {
		t.Fatalf("write template: %v", err)
	}

	out, err := store.Render("mine", Vars{})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.Contains(out, `"hi"`) {
		t.Errorf("rendered = %q", out)
	}
}
