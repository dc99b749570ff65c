package app

import (
	"bytes"
	"context"
	"image/gif"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urfave/cli/v3"

	"github.com/aayushadhikari7/termgif/internal/appdirs"
	"github.com/aayushadhikari7/termgif/internal/cli/root"
)

func TestRunnerCommandsSmoke(t *testing.T) {
	t.Setenv(appdirs.EnvConfigDir, filepath.Join(t.TempDir(), "cfg"))
	t.Setenv(appdirs.EnvStateDir, filepath.Join(t.TempDir(), "state"))

	exitCode := -1
	prevExiter := cli.OsExiter
	prevErrWriter := cli.ErrWriter
	cli.OsExiter = func(code int) { exitCode = code }
	cli.ErrWriter = io.Discard
	t.Cleanup(func() {
		cli.OsExiter = prevExiter
		cli.ErrWriter = prevErrWriter
	})

	workDir := t.TempDir()
	var out bytes.Buffer
	run := func(args ...string) error {
		out.Reset()
		deps := root.Dependencies{
			Version: "test",
			Stdout:  &out,
			Stderr:  &out,
			Stdin:   strings.NewReader(""),
			WorkDir: workDir,
		}
		runner, err := NewRunner(deps)
		if err != nil {
			return err
		}
		exitCode = -1
		return runner.Run(context.Background(), args)
	}

	err := run("termgif", "--version")
	if err != nil {
		if _, ok := err.(cli.ExitCoder); !ok {
			t.Fatalf("--version unexpected error: %T %v", err, err)
		}
	}
	if exitCode != 0 {
		t.Fatalf("--version exitCode=%d", exitCode)
	}
	if !strings.Contains(out.String(), "termgif test") {
		t.Fatalf("--version output = %q", out.String())
	}

	if err := run("termgif", "version"); err != nil {
		t.Fatalf("version error: %v", err)
	}
	if !strings.Contains(out.String(), "termgif test") {
		t.Fatalf("version output = %q", out.String())
	}

	if err := run("termgif", "templates"); err != nil {
		t.Fatalf("templates error: %v", err)
	}
	if !strings.Contains(out.String(), "NAME") || !strings.Contains(out.String(), "git") {
		t.Fatalf("templates output = %q", out.String())
	}

	if err := run("termgif", "config"); err != nil {
		t.Fatalf("config error: %v", err)
	}
	if !strings.Contains(out.String(), "No config file found.") {
		t.Fatalf("config output = %q", out.String())
	}

	if err := run("termgif", "help"); err != nil {
		t.Fatalf("help error: %v", err)
	}
	if !strings.Contains(out.String(), "USAGE:") {
		t.Fatalf("help output = %q", out.String())
	}

	if err := run("termgif"); err != nil {
		t.Fatalf("bare invocation error: %v", err)
	}
	if !strings.Contains(out.String(), "USAGE:") {
		t.Fatalf("bare invocation output = %q", out.String())
	}

	err = run("termgif", "trim")
	if err == nil || !strings.Contains(err.Error(), `missing argument "file"`) {
		t.Fatalf("trim err=%v", err)
	}

	err = run("termgif", "missing")
	if err == nil || !strings.Contains(err.Error(), "missing.tg not found") {
		t.Fatalf("script shorthand err=%v", err)
	}
}

func TestRunnerRecordsSimulatedScript(t *testing.T) {
	t.Setenv(appdirs.EnvConfigDir, filepath.Join(t.TempDir(), "cfg"))
	dir := t.TempDir()
	scriptPath := filepath.Join(dir, "demo.tg")
	src := "@size 40x6\n@prompt \"$ \"\n-> \"echo hi\" >>\n"
	if err := os.WriteFile(scriptPath, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	outPath := filepath.Join(dir, "demo.gif")

	var out bytes.Buffer
	deps := root.Dependencies{
		Version: "test",
		Stdout:  &out,
		Stderr:  &out,
		WorkDir: dir,
	}
	runner, err := NewRunner(deps)
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	args := []string{"termgif", "record", scriptPath, "--simulate", "-o", outPath}
	if err := runner.Run(context.Background(), args); err != nil {
		t.Fatalf("record: %v", err)
	}
	if !strings.Contains(out.String(), "Done! Saved to "+outPath) {
		t.Fatalf("output = %q", out.String())
	}

	f, err := os.Open(outPath)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer f.Close()
	g, err := gif.DecodeAll(f)
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if len(g.Image) == 0 {
		t.Fatal("GIF has no frames")
	}
}
