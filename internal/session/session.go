// Package session drives a recording: it replays parsed script actions
// in one of three modes and assembles the resulting frame timeline.
//
// Simulate renders typing without running anything. Live spawns the
// configured shell on a pseudo-terminal and records what the process
// actually prints. Capture samples the hosting terminal window's
// pixels while the script's commands run for real.
package session

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/kballard/go-shellquote"

	"github.com/aayushadhikari7/termgif/internal/config"
	"github.com/aayushadhikari7/termgif/internal/script"
	"github.com/aayushadhikari7/termgif/internal/termframe"
	"github.com/aayushadhikari7/termgif/internal/termkeys"
	"github.com/aayushadhikari7/termgif/internal/timeline"
)

// Mode selects how script actions turn into frames.
type Mode int

const (
	// Simulate types literally into the emulator without a process.
	Simulate Mode = iota
	// Live runs the shell on a pseudo-terminal and records its output.
	Live
	// Capture grabs the real terminal window through a screen grabber.
	Capture
)

func (m Mode) String() string {
	switch m {
	case Simulate:
		return "simulate"
	case Live:
		return "live"
	case Capture:
		return "capture"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Result is everything a finished session produced.
type Result struct {
	Timeline    *timeline.Timeline
	Screenshots []Screenshot
	Warnings    []string
}

// Screenshot is a single out-of-band frame grabbed by a screenshot
// action. Grid carries cell content except in capture mode, where Img
// holds window pixels instead.
type Screenshot struct {
	Path string
	At   time.Duration
	Grid termframe.Frame
	Img  image.Image
}

// PreconditionError aborts a session before any frame is produced.
type PreconditionError struct {
	Command string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("required command %q not found in PATH", e.Command)
}

// ProcessError reports that the live-mode shell could not be spawned.
type ProcessError struct {
	Shell string
	Err   error
}

func (e *ProcessError) Error() string {
	return fmt.Sprintf("spawn %s: %v", e.Shell, e.Err)
}

func (e *ProcessError) Unwrap() error { return e.Err }

// Record replays the script in the given mode. On cancellation the
// frames recorded so far come back as a valid partial timeline
// alongside the context error, so callers can still save them.
func Record(ctx context.Context, scr *script.Script, cfg config.Config, mode Mode) (*Result, error) {
	if scr == nil {
		return nil, errors.New("session: nil script")
	}
	if err := checkRequired(scr.Actions); err != nil {
		return nil, err
	}
	slog.Debug("session: starting",
		slog.String("mode", mode.String()),
		slog.Int("actions", len(scr.Actions)),
		slog.Int("cols", cfg.Cols),
		slog.Int("rows", cfg.Rows))
	switch mode {
	case Simulate:
		return runSimulate(ctx, scr, cfg)
	case Live:
		return runLive(ctx, scr, cfg)
	case Capture:
		return runCapture(ctx, scr, cfg, nil)
	default:
		return nil, fmt.Errorf("session: unknown mode %d", int(mode))
	}
}

// checkRequired resolves every require action up front, so a missing
// command aborts with zero frames no matter where the require sits.
func checkRequired(actions []script.Action) error {
	for _, a := range actions {
		req, ok := a.(script.RequireCommand)
		if !ok {
			continue
		}
		name := req.Name
		if fields, err := shellquote.Split(name); err == nil && len(fields) > 0 {
			name = fields[0]
		}
		if _, err := exec.LookPath(name); err != nil {
			return &PreconditionError{Command: name}
		}
	}
	return nil
}

// resolveShell splits the configured shell into an argv, falling back
// to $SHELL and then a platform default.
func resolveShell(configured string) (name string, args []string, err error) {
	cmdline := strings.TrimSpace(configured)
	if cmdline == "" {
		cmdline = strings.TrimSpace(os.Getenv("SHELL"))
	}
	if cmdline == "" {
		return defaultShell(), nil, nil
	}
	fields, err := shellquote.Split(cmdline)
	if err != nil {
		return "", nil, fmt.Errorf("shell %q: %w", cmdline, err)
	}
	if len(fields) == 0 {
		return defaultShell(), nil, nil
	}
	return fields[0], fields[1:], nil
}

func defaultShell() string {
	if runtime.GOOS == "windows" {
		return "cmd.exe"
	}
	for _, s := range []string{"/bin/zsh", "/bin/bash", "/bin/sh"} {
		if _, err := os.Stat(s); err == nil {
			return s
		}
	}
	return "/bin/sh"
}

// shellRunArgs builds the argv suffix that makes the shell run one
// command line and exit. cmd wants /c; everything else, PowerShell
// included, takes -c.
func shellRunArgs(shell, line string) []string {
	base := strings.ToLower(strings.TrimSuffix(filepath.Base(strings.TrimSpace(shell)), ".exe"))
	if base == "cmd" {
		return []string{"/c", line}
	}
	return []string{"-c", line}
}

// sessionEnv layers the configured overrides onto the parent
// environment. TERM and COLORTERM are pinned to what the emulator
// implements so recordings come out the same on every host terminal;
// explicit overrides win.
func sessionEnv(overrides []string) []string {
	base := mergeEnv(os.Environ(), []string{
		"TERM=xterm-256color",
		"COLORTERM=truecolor",
	})
	return mergeEnv(base, overrides)
}

// mergeEnv applies KEY=VALUE overrides, replacing existing keys in
// place and appending new ones.
func mergeEnv(base, overrides []string) []string {
	out := append([]string{}, base...)
	index := make(map[string]int, len(out))
	for i, kv := range out {
		if k := envKey(kv); k != "" {
			index[k] = i
		}
	}
	for _, kv := range overrides {
		k := envKey(kv)
		if k == "" {
			continue
		}
		if i, ok := index[k]; ok {
			out[i] = kv
			continue
		}
		index[k] = len(out)
		out = append(out, kv)
	}
	return out
}

func envKey(kv string) string {
	i := strings.IndexByte(kv, '=')
	if i <= 0 {
		return ""
	}
	return strings.ToUpper(strings.TrimSpace(kv[:i]))
}

// keyBytes resolves a key action to the escape sequence a terminal
// would send for it.
func keyBytes(k script.PressKey) ([]byte, error) {
	return termkeys.Bytes(k.Name, k.Mods)
}

// sleepCtx sleeps for d or until the context is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
