package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/x/term"
	"github.com/muesli/cancelreader"

	"github.com/aayushadhikari7/termgif/internal/config"
)

// Interactive records the user driving the shell themselves, with no
// script. The shell runs on a PTY with its output mirrored to the
// real terminal and stdin forwarded raw, so the session feels like a
// normal shell while every frame lands in the timeline. Recording
// stops when the shell exits, the context is cancelled, or
// maxDuration (when positive) passes.
func Interactive(ctx context.Context, cfg config.Config, maxDuration time.Duration) (*Result, error) {
	if !term.IsTerminal(os.Stdin.Fd()) {
		return nil, errors.New("interactive recording needs a terminal on stdin")
	}
	// Match the real terminal so the mirrored output lines up.
	if w, h, err := term.GetSize(os.Stdout.Fd()); err == nil && w > 0 && h > 0 {
		cfg.Cols, cfg.Rows = w, h
	}

	ls, err := startLive(ctx, cfg, os.Stdout)
	if err != nil {
		return nil, err
	}
	defer ls.close()

	state, err := term.MakeRaw(os.Stdin.Fd())
	if err != nil {
		return nil, fmt.Errorf("raw mode: %w", err)
	}
	defer func() { _ = term.Restore(os.Stdin.Fd(), state) }()

	cr, err := cancelreader.NewReader(os.Stdin)
	if err != nil {
		return nil, fmt.Errorf("stdin reader: %w", err)
	}
	var inWG sync.WaitGroup
	inWG.Add(1)
	go func() {
		defer inWG.Done()
		buf := make([]byte, 1024)
		for {
			n, err := cr.Read(buf)
			if n > 0 {
				ls.writePTY(buf[:n])
			}
			if err != nil {
				if !errors.Is(err, cancelreader.ErrCanceled) {
					slog.Debug("session: stdin forward stopped", slog.Any("err", err))
				}
				return
			}
		}
	}()
	defer func() {
		cr.Cancel()
		_ = cr.Close()
		inWG.Wait()
	}()

	slog.Debug("session: interactive recording started",
		slog.Int("cols", cfg.Cols), slog.Int("rows", cfg.Rows))
	ls.rec.capture(ls.em.Snapshot())

	var deadline <-chan time.Time
	if maxDuration > 0 {
		t := time.NewTimer(maxDuration)
		defer t.Stop()
		deadline = t.C
	}
	ticker := time.NewTicker(ls.interval)
	defer ticker.Stop()

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case <-deadline:
			ls.rec.warnf("recording stopped after %s", maxDuration)
			break loop
		case <-ls.updates:
			ls.captureDirty()
			if ls.exited.Load() {
				break loop
			}
		case <-ticker.C:
			ls.captureDirty()
			if ls.exited.Load() {
				break loop
			}
		}
	}

	// Hold the final screen without making the user sit through it.
	ls.captureDirty()
	ls.rec.seek(ls.elapsed())
	ls.rec.advance(cfg.EndDelay)
	res := ls.rec.result()
	if err := ctx.Err(); err != nil {
		return res, err
	}
	return res, nil
}
