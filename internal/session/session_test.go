package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/aayushadhikari7/termgif/internal/config"
	"github.com/aayushadhikari7/termgif/internal/script"
)

func TestRequireMissingCommand(t *testing.T) {
	scr := &script.Script{Actions: []script.Action{
		script.TypeText{Text: "hi"},
		script.RequireCommand{Name: "definitely-not-a-real-command-7c1a"},
	}}

	res, err := Record(context.Background(), scr, config.Default(), Simulate)
	if res != nil {
		t.Fatalf("missing requirement produced a result with %d frames", len(res.Timeline.Frames))
	}
	var perr *PreconditionError
	if !errors.As(err, &perr) {
		t.Fatalf("err = %v, want PreconditionError", err)
	}
	if perr.Command != "definitely-not-a-real-command-7c1a" {
		t.Fatalf("Command = %q", perr.Command)
	}
	if !strings.Contains(err.Error(), "required command") {
		t.Fatalf("Error() = %q", err.Error())
	}
}

func TestRequirePresentCommand(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("PATH lookup fixture is unix only")
	}
	dir := t.TempDir()
	bin := filepath.Join(dir, "fixturecmd")
	if err := os.WriteFile(bin, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	t.Setenv("PATH", dir)

	// The first word of the requirement is what gets resolved.
	scr := &script.Script{Actions: []script.Action{
		script.RequireCommand{Name: "fixturecmd --version"},
	}}
	if _, err := Record(context.Background(), scr, config.Default(), Simulate); err != nil {
		t.Fatalf("Record() = %v", err)
	}
}

func TestResolveShell(t *testing.T) {
	t.Setenv("SHELL", "")

	name, args, err := resolveShell("bash -l")
	if err != nil {
		t.Fatalf("resolveShell(bash -l) = %v", err)
	}
	if name != "bash" || len(args) != 1 || args[0] != "-l" {
		t.Fatalf("resolveShell(bash -l) = %q %q", name, args)
	}

	name, args, err = resolveShell(`sh -c 'printf hi'`)
	if err != nil {
		t.Fatalf("resolveShell quoted = %v", err)
	}
	if name != "sh" || len(args) != 2 || args[1] != "printf hi" {
		t.Fatalf("resolveShell quoted = %q %q", name, args)
	}

	t.Setenv("SHELL", "/bin/fixturesh")
	name, args, err = resolveShell("")
	if err != nil || name != "/bin/fixturesh" || len(args) != 0 {
		t.Fatalf("resolveShell from $SHELL = %q %q %v", name, args, err)
	}

	t.Setenv("SHELL", "")
	name, _, err = resolveShell("")
	if err != nil || name == "" {
		t.Fatalf("resolveShell default = %q %v", name, err)
	}

	if _, _, err := resolveShell(`"unterminated`); err == nil {
		t.Fatal("resolveShell accepted unbalanced quoting")
	}
}

func TestShellRunArgs(t *testing.T) {
	if got := shellRunArgs("/bin/bash", "ls"); got[0] != "-c" || got[1] != "ls" {
		t.Fatalf("bash args = %q", got)
	}
	if got := shellRunArgs(`C:\Windows\system32\cmd.exe`, "dir"); got[0] != "/c" {
		t.Fatalf("cmd args = %q", got)
	}
	if got := shellRunArgs("pwsh", "ls"); got[0] != "-c" {
		t.Fatalf("pwsh args = %q", got)
	}
}

func TestTypeGlyphs(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"hi", []string{"h", "i"}},
		{"", nil},
		{"e\u0301x", []string{"e\u0301", "x"}},
		{"\u0301a", []string{"\u0301", "a"}},
		{"日本", []string{"日", "本"}},
	}
	for _, tc := range cases {
		got := typeGlyphs(tc.in)
		if len(got) != len(tc.want) {
			t.Fatalf("typeGlyphs(%q) = %q, want %q", tc.in, got, tc.want)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Fatalf("typeGlyphs(%q)[%d] = %q, want %q", tc.in, i, got[i], tc.want[i])
			}
		}
	}
}

func envValue(env []string, key string) (string, int) {
	val, n := "", 0
	for _, kv := range env {
		if k, v, ok := strings.Cut(kv, "="); ok && strings.EqualFold(k, key) {
			val = v
			n++
		}
	}
	return val, n
}

func TestSessionEnv(t *testing.T) {
	env := sessionEnv(nil)
	if v, _ := envValue(env, "TERM"); v != "xterm-256color" {
		t.Fatalf("TERM = %q, want xterm-256color", v)
	}
	if v, _ := envValue(env, "COLORTERM"); v != "truecolor" {
		t.Fatalf("COLORTERM = %q, want truecolor", v)
	}

	env = sessionEnv([]string{"TERM=dumb", "FIXTURE_ONLY=1"})
	if v, n := envValue(env, "TERM"); v != "dumb" || n != 1 {
		t.Fatalf("overridden TERM = %q (%d entries), want dumb once", v, n)
	}
	if v, _ := envValue(env, "FIXTURE_ONLY"); v != "1" {
		t.Fatalf("FIXTURE_ONLY = %q, want 1", v)
	}
}

func TestMergeEnv(t *testing.T) {
	base := []string{"A=1", "B=2"}
	got := mergeEnv(base, []string{"b=3", "C=4", "NOEQUALS"})
	if len(got) != 3 {
		t.Fatalf("mergeEnv = %q, want 3 entries", got)
	}
	if got[1] != "b=3" {
		t.Fatalf("mergeEnv kept %q in slot 1, want case-folded override b=3", got[1])
	}
	if got[2] != "C=4" {
		t.Fatalf("mergeEnv appended %q, want C=4", got[2])
	}
	if len(base) != 2 || base[1] != "B=2" {
		t.Fatalf("mergeEnv mutated its input: %q", base)
	}
}

func TestModeString(t *testing.T) {
	cases := map[Mode]string{
		Simulate: "simulate",
		Live:     "live",
		Capture:  "capture",
		Mode(9):  "mode(9)",
	}
	for m, want := range cases {
		if got := m.String(); got != want {
			t.Fatalf("Mode(%d).String() = %q, want %q", int(m), got, want)
		}
	}
}

func TestSessionErrors(t *testing.T) {
	perr := &PreconditionError{Command: "jq"}
	if got := perr.Error(); got != `required command "jq" not found in PATH` {
		t.Fatalf("PreconditionError = %q", got)
	}

	cause := errors.New("no such file")
	serr := &ProcessError{Shell: "zsh", Err: cause}
	if !strings.Contains(serr.Error(), "zsh") {
		t.Fatalf("ProcessError = %q", serr.Error())
	}
	if !errors.Is(serr, cause) {
		t.Fatal("ProcessError should unwrap to its cause")
	}
}

func TestRecordNilScript(t *testing.T) {
	if _, err := Record(context.Background(), nil, config.Default(), Simulate); err == nil {
		t.Fatal("Record accepted a nil script")
	}
}

func TestFollowedByWait(t *testing.T) {
	actions := []script.Action{
		script.TypeText{Text: "ls"},
		script.PressEnter{},
		script.Wait{Duration: 0},
	}
	if !followedByWait(actions, 1) {
		t.Fatal("enter before wait should skip the idle heuristic")
	}
	if followedByWait(actions, 2) {
		t.Fatal("last action has nothing following it")
	}
	if followedByWait(actions, 0) {
		t.Fatal("enter is not a wait")
	}
}
