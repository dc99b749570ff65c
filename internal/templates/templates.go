// Package templates ships the built-in .tg starter scripts and loads
// user templates from the config directory. User files override
// builtins with the same name.
package templates

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"github.com/sahilm/fuzzy"

	"github.com/aayushadhikari7/termgif/internal/appdirs"
)

//go:embed builtin/*.tg
var builtinFS embed.FS

// UserTemplateDir is the subdirectory of the config dir scanned for
// user templates.
const UserTemplateDir = "templates"

var descriptions = map[string]string{
	"basic":   "Simple echo and ls commands",
	"git":     "Git workflow (status, add, commit, push)",
	"npm":     "npm workflow (init, install, list)",
	"docker":  "Docker commands (ps, images, build, run)",
	"python":  "Python REPL demo",
	"vim":     "Vim editing demo (requires --native)",
	"htop":    "htop system monitor (requires --native)",
	"fzf":     "fzf fuzzy finder (requires --terminal)",
	"lazygit": "lazygit demo (requires --native)",
	"api":     "API testing with curl and jq",
}

// Vars fills the placeholders a template may reference.
type Vars struct {
	Name  string // script base name, defaults to "demo"
	Title string // recording title, defaults to the capitalized name
}

func (v Vars) withDefaults() Vars {
	v.Name = strings.TrimSpace(v.Name)
	if v.Name == "" {
		v.Name = "demo"
	}
	if strings.TrimSpace(v.Title) == "" {
		v.Title = strings.ToUpper(v.Name[:1]) + v.Name[1:]
	}
	return v
}

// Info describes one available template for listings.
type Info struct {
	Name        string
	Description string
	Source      string // "builtin" or "user"
}

// UnknownError names a template that does not exist, with fuzzy
// suggestions for the message the CLI prints.
type UnknownError struct {
	Name        string
	Suggestions []string
	Available   []string
}

func (e *UnknownError) Error() string {
	if len(e.Suggestions) > 0 {
		return fmt.Sprintf("unknown template %q (did you mean %s?)",
			e.Name, strings.Join(e.Suggestions, " or "))
	}
	return fmt.Sprintf("unknown template %q, available: %s",
		e.Name, strings.Join(e.Available, ", "))
}

// Store resolves templates from the embedded set plus a user template
// directory.
type Store struct {
	userDir string
}

// NewStore reads user templates from the config directory's templates
// subdirectory. The directory may not exist yet.
func NewStore() (*Store, error) {
	dir, err := appdirs.ConfigDir()
	if err != nil {
		return nil, err
	}
	return &Store{userDir: filepath.Join(dir, UserTemplateDir)}, nil
}

// StoreAt reads user templates from an explicit directory. Empty means
// builtins only.
func StoreAt(dir string) *Store {
	return &Store{userDir: dir}
}

// List returns every available template sorted by name. User templates
// shadow builtins and describe themselves with their leading comment.
func (s *Store) List() ([]Info, error) {
	byName := make(map[string]Info)

	entries, err := builtinFS.ReadDir("builtin")
	if err != nil {
		return nil, fmt.Errorf("read builtin templates: %w", err)
	}
	for _, entry := range entries {
		name := strings.TrimSuffix(entry.Name(), ".tg")
		byName[name] = Info{Name: name, Description: descriptions[name], Source: "builtin"}
	}

	if s.userDir != "" {
		files, err := os.ReadDir(s.userDir)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read user templates: %w", err)
		}
		for _, entry := range files {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".tg") {
				continue
			}
			name := strings.TrimSuffix(entry.Name(), ".tg")
			data, err := os.ReadFile(filepath.Join(s.userDir, entry.Name()))
			if err != nil {
				continue
			}
			byName[name] = Info{Name: name, Description: firstComment(data), Source: "user"}
		}
	}

	infos := make([]Info, 0, len(byName))
	for _, info := range byName {
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

// Render produces the script text for a template with the placeholders
// filled in.
func (s *Store) Render(name string, vars Vars) (string, error) {
	raw, source, err := s.lookup(name)
	if err != nil {
		return "", err
	}
	tpl, err := template.New(name).Parse(string(raw))
	if err != nil {
		return "", fmt.Errorf("parse %s template %q: %w", source, name, err)
	}
	var sb strings.Builder
	if err := tpl.Execute(&sb, vars.withDefaults()); err != nil {
		return "", fmt.Errorf("render template %q: %w", name, err)
	}
	return sb.String(), nil
}

func (s *Store) lookup(name string) ([]byte, string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return nil, "", s.unknown(name)
	}
	if s.userDir != "" {
		data, err := os.ReadFile(filepath.Join(s.userDir, name+".tg"))
		if err == nil {
			return data, "user", nil
		}
		if !os.IsNotExist(err) {
			return nil, "", fmt.Errorf("read user template %q: %w", name, err)
		}
	}
	data, err := builtinFS.ReadFile("builtin/" + name + ".tg")
	if err != nil {
		return nil, "", s.unknown(name)
	}
	return data, "builtin", nil
}

func (s *Store) unknown(name string) error {
	var available []string
	if infos, err := s.List(); err == nil {
		available = make([]string, 0, len(infos))
		for _, info := range infos {
			available = append(available, info.Name)
		}
	}
	return &UnknownError{Name: name, Suggestions: suggest(name, available), Available: available}
}

func suggest(name string, available []string) []string {
	matches := fuzzy.Find(name, available)
	if len(matches) > 3 {
		matches = matches[:3]
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.Str)
	}
	return out
}

// firstComment pulls a description from a user template's leading
// line comment.
func firstComment(data []byte) string {
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if rest, ok := strings.CutPrefix(line, "//"); ok {
			return strings.TrimSpace(rest)
		}
		break
	}
	return ""
}
