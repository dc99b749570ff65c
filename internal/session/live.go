package session

import (
	"context"
	"io"
	"log/slog"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/x/xpty"

	"github.com/aayushadhikari7/termgif/internal/config"
	"github.com/aayushadhikari7/termgif/internal/script"
	"github.com/aayushadhikari7/termgif/internal/vt"
)

// startupSettle bounds how long the session waits for the shell to
// finish printing its banner and first prompt before the script runs.
const startupSettle = 3 * time.Second

// liveSession couples a shell on a pseudo-terminal with the emulator
// and the recorder. Two pump goroutines move bytes (PTY output into
// the emulator, emulator query responses back into the PTY) and a
// third reaps the child. The recorder is only ever touched from the
// replay goroutine; pumps signal it through the coalesced updates
// channel.
type liveSession struct {
	rec *recorder
	em  *vt.Emulator
	cfg config.Config

	cmd     *exec.Cmd
	pty     xpty.Pty
	ptyMu   sync.Mutex
	writeMu sync.Mutex

	// mirror, when set, receives a copy of everything the process
	// writes. Interactive recording points it at the real terminal.
	mirror io.Writer

	updates chan struct{}
	exited  atomic.Bool
	closed  atomic.Bool

	start    time.Time
	interval time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// runLive records the script against a real shell. Frames are stamped
// with wall-clock offsets, so unlike simulate mode the duration also
// includes shell startup and command run time.
func runLive(ctx context.Context, scr *script.Script, cfg config.Config) (*Result, error) {
	ls, err := startLive(ctx, cfg, nil)
	if err != nil {
		return nil, err
	}
	defer ls.close()

	ls.rec.capture(ls.em.Snapshot())
	ls.settle(ctx, startupSettle)
	ls.pause(ctx, cfg.StartDelay)

	ls.replay(ctx, scr.Actions)

	ls.pause(ctx, cfg.EndDelay)
	ls.rec.seek(ls.elapsed())
	res := ls.rec.result()
	if err := ctx.Err(); err != nil {
		return res, err
	}
	return res, nil
}

// startLive spawns the configured shell on a PTY and starts the pump
// goroutines. The caller owns the returned session and must close it.
func startLive(ctx context.Context, cfg config.Config, mirror io.Writer) (*liveSession, error) {
	shell, args, err := resolveShell(cfg.Shell)
	if err != nil {
		return nil, &ProcessError{Shell: cfg.Shell, Err: err}
	}

	cctx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(cctx, shell, args...)
	cmd.Dir = cfg.Cwd
	cmd.Env = sessionEnv(cfg.Env)
	setupCommand(cmd)

	pty, err := xpty.NewPty(cfg.Cols, cfg.Rows)
	if err != nil {
		cancel()
		return nil, &ProcessError{Shell: shell, Err: err}
	}
	if err := pty.Start(cmd); err != nil {
		cancel()
		_ = pty.Close()
		return nil, &ProcessError{Shell: shell, Err: err}
	}
	_ = pty.Resize(cfg.Cols, cfg.Rows)

	ls := &liveSession{
		rec:      newRecorder(cfg),
		em:       vt.NewEmulator(cfg.Cols, cfg.Rows),
		cfg:      cfg,
		cmd:      cmd,
		pty:      pty,
		mirror:   mirror,
		updates:  make(chan struct{}, 1),
		start:    time.Now(),
		interval: time.Second / time.Duration(cfg.FPS),
		cancel:   cancel,
	}
	ls.startPumps(cctx)
	slog.Debug("session: shell started",
		slog.String("shell", shell),
		slog.Int("pid", cmd.Process.Pid))
	return ls, nil
}

func (ls *liveSession) startPumps(ctx context.Context) {
	// PTY -> emulator (screen updates).
	ls.wg.Add(1)
	go func() {
		defer ls.wg.Done()
		buf := make([]byte, 32*1024)
		for {
			pty := ls.currentPTY()
			if pty == nil {
				return
			}
			n, err := pty.Read(buf)
			if n > 0 {
				_, _ = ls.em.Write(buf[:n])
				if ls.mirror != nil {
					_, _ = ls.mirror.Write(buf[:n])
				}
				ls.notify()
			}
			if err != nil {
				// Read errors mean the child side is gone.
				return
			}
			if ctx.Err() != nil {
				return
			}
		}
	}()

	// Emulator -> PTY (query responses like DSR/DA, needed by
	// full-screen programs that probe terminal state).
	ls.wg.Add(1)
	go func() {
		defer ls.wg.Done()
		for resp := range ls.em.Responses() {
			ls.writePTY(resp)
		}
	}()

	// Reap the child regardless of how the session ends. The wait runs
	// on the background context so cancellation never leaks a zombie.
	ls.wg.Add(1)
	go func() {
		defer ls.wg.Done()
		_ = xpty.WaitProcess(context.Background(), ls.cmd)
		ls.exited.Store(true)
		ls.notify()
	}()
}

// replay walks the script actions, feeding keystrokes to the PTY and
// capturing frames as output arrives.
func (ls *liveSession) replay(ctx context.Context, actions []script.Action) {
	for i, a := range actions {
		if ls.interrupted(ctx) {
			return
		}
		switch act := a.(type) {
		case script.TypeText:
			if !ls.typeText(ctx, act.Text) {
				ls.interrupted(ctx)
				return
			}
		case script.PressEnter:
			ls.writePTY([]byte("\r"))
			if !followedByWait(actions, i) {
				if !ls.settle(ctx, ls.cfg.Timeout) && ctx.Err() == nil {
					ls.rec.warnf("command still running after %s, continuing", ls.cfg.Timeout)
				}
			}
		case script.Wait:
			ls.pause(ctx, act.Duration)
		case script.PressKey:
			b, err := keyBytes(act)
			if err != nil {
				ls.rec.warnf("skipping %s: %v", act.Combo(), err)
				continue
			}
			ls.writePTY(b)
			ls.pause(ctx, simKeyHold)
		case script.ToggleCapture:
			if act.On {
				ls.rec.show()
				ls.rec.seek(ls.elapsed())
				ls.rec.capture(ls.em.Snapshot())
			} else {
				ls.rec.hide()
			}
		case script.Screenshot:
			ls.rec.seek(ls.elapsed())
			ls.rec.screenshot(Screenshot{Path: act.Path, Grid: ls.em.Snapshot()})
		case script.Marker:
			ls.rec.seek(ls.elapsed())
			ls.rec.marker(act.Label)
		case script.RequireCommand:
			// Checked before the session started.
		}
	}
}

// interrupted reports whether the replay must stop, recording why.
func (ls *liveSession) interrupted(ctx context.Context) bool {
	if ctx.Err() != nil {
		ls.rec.warnf("recording cancelled, keeping %d frames", len(ls.rec.frames))
		return true
	}
	if ls.exited.Load() {
		ls.captureDirty()
		ls.rec.warnf("process exited before the script finished, recording truncated")
		return true
	}
	return false
}

// typeText sends text glyph by glyph at the configured typing speed,
// so echo interleaves with keystrokes the way real typing looks. It
// reports whether the whole text was sent.
func (ls *liveSession) typeText(ctx context.Context, text string) bool {
	for _, g := range typeGlyphs(text) {
		if ctx.Err() != nil || ls.exited.Load() {
			return false
		}
		ls.writePTY([]byte(g))
		ls.pause(ctx, ls.cfg.TypingSpeed)
	}
	return true
}

// followedByWait reports whether the action after i is an explicit
// wait. Enter skips the idle heuristic in that case and lets the
// script author control the pause.
func followedByWait(actions []script.Action, i int) bool {
	if i+1 >= len(actions) {
		return false
	}
	_, ok := actions[i+1].(script.Wait)
	return ok
}

// pause sleeps for d of wall time, capturing frames as output arrives
// so activity during the pause still lands in the timeline.
func (ls *liveSession) pause(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	ticker := time.NewTicker(ls.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			ls.captureDirty()
			return
		case <-ls.updates:
			ls.captureDirty()
		case <-ticker.C:
			ls.captureDirty()
		}
	}
}

// settle waits for the running command to go quiet: no output for the
// configured idle window, or process exit. It returns false when the
// limit passes first or the context is cancelled.
func (ls *liveSession) settle(ctx context.Context, limit time.Duration) bool {
	probe := ls.interval
	if q := ls.cfg.IdleQuiet / 3; q < probe {
		probe = q
	}
	if probe < 10*time.Millisecond {
		probe = 10 * time.Millisecond
	}
	deadline := time.Now().Add(limit)
	lastOutput := time.Now()
	ticker := time.NewTicker(probe)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return false
		case <-ls.updates:
			if ls.captureDirty() {
				lastOutput = time.Now()
			}
			if ls.exited.Load() {
				ls.captureDirty()
				return true
			}
		case <-ticker.C:
			if ls.captureDirty() {
				lastOutput = time.Now()
			}
			if ls.exited.Load() {
				return true
			}
			if time.Since(lastOutput) >= ls.cfg.IdleQuiet {
				return true
			}
			if time.Now().After(deadline) {
				return false
			}
		}
	}
}

// captureDirty snapshots the emulator if it changed since the last
// capture. It reports whether there was fresh output, which also
// feeds the idle heuristic while frames are hidden.
func (ls *liveSession) captureDirty() bool {
	if !ls.em.Dirty() {
		return false
	}
	ls.em.ConsumeDamage()
	ls.rec.seek(ls.elapsed())
	ls.rec.capture(ls.em.Snapshot())
	return true
}

func (ls *liveSession) elapsed() time.Duration { return time.Since(ls.start) }

// notify coalesces update signals.
func (ls *liveSession) notify() {
	select {
	case ls.updates <- struct{}{}:
	default:
	}
}

func (ls *liveSession) currentPTY() xpty.Pty {
	ls.ptyMu.Lock()
	defer ls.ptyMu.Unlock()
	return ls.pty
}

func (ls *liveSession) writePTY(p []byte) {
	if len(p) == 0 {
		return
	}
	ls.ptyMu.Lock()
	pty := ls.pty
	ls.ptyMu.Unlock()
	if pty == nil {
		return
	}
	ls.writeMu.Lock()
	_, _ = pty.Write(p)
	ls.writeMu.Unlock()
}

// close terminates the child, unwinds the pumps and releases the PTY
// and emulator. It is safe to call more than once.
func (ls *liveSession) close() {
	if ls.closed.Swap(true) {
		return
	}

	terminate(ls.cmd, termGrace, &ls.exited)
	ls.cancel()

	ls.ptyMu.Lock()
	pty := ls.pty
	ls.pty = nil
	ls.ptyMu.Unlock()
	if pty != nil {
		_ = pty.Close()
	}
	ls.em.Close()

	ls.wg.Wait()
	close(ls.updates)
	slog.Debug("session: shell session closed")
}
