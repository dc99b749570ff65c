// Package watch re-records a script whenever its file changes on disk.
// Change events come from fsnotify on the script's directory, so editor
// save strategies that replace the file (rename over it, remove then
// recreate) keep triggering.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces the burst of events an editor save emits.
const DefaultDebounce = 250 * time.Millisecond

// Func runs one recording. Its context is cancelled when a newer
// change supersedes the run or the watch itself stops.
type Func func(ctx context.Context) error

// Run records once right away, then re-records on every change to path
// until ctx is cancelled. A change arriving mid-recording cancels the
// session and waits for it to return before starting the next one, so
// at most one recording runs at a time. Failed recordings are logged
// and the watch keeps going.
func Run(ctx context.Context, path string, debounce time.Duration, fn Func) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer w.Close()

	dir := filepath.Dir(path)
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	changes := make(chan struct{}, 1)
	go debounceEvents(w, path, debounce, changes)
	slog.Debug("watch: watching script",
		slog.String("path", path),
		slog.Duration("debounce", debounce))

	for {
		drainChanges(changes)
		restart, err := runOnce(ctx, fn, changes)
		if err != nil && ctx.Err() == nil {
			slog.Warn("watch: recording failed", slog.Any("err", err))
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if restart {
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-changes:
			slog.Debug("watch: change detected", slog.String("path", path))
		}
	}
}

// runOnce drives a single recording. restart reports that a change
// superseded the run and the caller should start over immediately.
func runOnce(ctx context.Context, fn Func, changes <-chan struct{}) (restart bool, err error) {
	rctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- fn(rctx) }()

	select {
	case err := <-done:
		return false, err
	case <-changes:
		// A newer save supersedes this recording. Cancel and wait for
		// it to return so sessions never overlap.
		slog.Debug("watch: change during recording, restarting")
		cancel()
		if err := <-done; err != nil && !errors.Is(err, context.Canceled) {
			slog.Debug("watch: superseded recording returned", slog.Any("err", err))
		}
		return true, nil
	case <-ctx.Done():
		cancel()
		<-done
		return false, ctx.Err()
	}
}

func debounceEvents(w *fsnotify.Watcher, path string, debounce time.Duration, out chan<- struct{}) {
	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}
	pending := false

	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if !relevant(ev, path) {
				continue
			}
			if !timer.Stop() && pending {
				select {
				case <-timer.C:
				default:
				}
			}
			pending = true
			timer.Reset(debounce)
		case <-timer.C:
			if pending {
				pending = false
				select {
				case out <- struct{}{}:
				default:
				}
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			slog.Debug("watch: watcher error", slog.Any("err", err))
		}
	}
}

// relevant keeps only events about the watched script. The watch
// covers exactly the script's directory, so a base-name match
// identifies the file and skips editor temp siblings.
func relevant(ev fsnotify.Event, path string) bool {
	if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	return filepath.Base(ev.Name) == filepath.Base(path)
}

func drainChanges(changes <-chan struct{}) {
	for {
		select {
		case <-changes:
		default:
			return
		}
	}
}
