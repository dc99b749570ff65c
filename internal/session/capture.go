package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shirou/gopsutil/v3/process"
	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/aayushadhikari7/termgif/internal/config"
	"github.com/aayushadhikari7/termgif/internal/script"
)

// minCaptureSize rejects window rects too small to be a terminal.
const minCaptureSize = 100

// Grabber supplies successive window images for capture mode. Tests
// feed synthetic frames; the real one streams from ffmpeg's screen
// grabber.
type Grabber interface {
	// Next blocks until the next frame arrives. io.EOF ends sampling.
	Next() (image.Image, error)
	Close() error
}

// captureSession serializes recorder access between the sampler
// goroutine and the replay loop.
type captureSession struct {
	mu         sync.Mutex
	rec        *recorder
	start      time.Time
	lastImg    image.Image
	keysWarned bool
}

// runCapture records the hosting terminal window's pixels while the
// script's commands run in it for real. The emulator is bypassed;
// typing goes to the real screen and each enter executes the line
// through the shell with inherited stdio.
func runCapture(ctx context.Context, scr *script.Script, cfg config.Config, g Grabber) (*Result, error) {
	host := hostTerminalName()
	if host == "" {
		host = "terminal"
	}
	if g == nil {
		wg, err := newWindowGrabber(ctx, cfg.FPS)
		if err != nil {
			return nil, fmt.Errorf("capture %s window: %w", host, err)
		}
		g = wg
	}
	slog.Debug("session: capturing window",
		slog.String("terminal", host), slog.Int("fps", cfg.FPS))

	cs := &captureSession{rec: newRecorder(cfg), start: time.Now()}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			img, err := g.Next()
			if err != nil {
				if !silentGrabStop(err) {
					cs.warn("screen capture stopped: %v", err)
				}
				return
			}
			cs.mu.Lock()
			cs.rec.seek(time.Since(cs.start))
			cs.rec.captureImage(img)
			cs.lastImg = img
			cs.mu.Unlock()
		}
	}()

	cs.replay(ctx, scr.Actions, cfg)

	_ = g.Close()
	<-done

	cs.mu.Lock()
	cs.rec.seek(time.Since(cs.start))
	res := cs.rec.result()
	cs.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return res, err
	}
	if len(res.Timeline.Frames) == 0 {
		return nil, errors.New("screen capture produced no frames")
	}
	return res, nil
}

func (cs *captureSession) replay(ctx context.Context, actions []script.Action, cfg config.Config) {
	sleepCtx(ctx, cfg.StartDelay)
	var line strings.Builder
	for _, a := range actions {
		if ctx.Err() != nil {
			cs.mu.Lock()
			cs.rec.warnf("recording cancelled, keeping %d frames", len(cs.rec.frames))
			cs.mu.Unlock()
			return
		}
		switch act := a.(type) {
		case script.TypeText:
			for _, g := range typeGlyphs(act.Text) {
				fmt.Fprint(os.Stdout, g)
				line.WriteString(g)
				sleepCtx(ctx, cfg.TypingSpeed)
			}
		case script.PressEnter:
			fmt.Fprint(os.Stdout, "\r\n")
			cs.runCommand(ctx, cfg, strings.TrimSpace(line.String()))
			line.Reset()
		case script.Wait:
			sleepCtx(ctx, act.Duration)
		case script.PressKey:
			if !cs.keysWarned {
				cs.keysWarned = true
				cs.warn("key actions have no effect in capture mode")
			}
		case script.ToggleCapture:
			cs.mu.Lock()
			if act.On {
				cs.rec.show()
			} else {
				cs.rec.hide()
			}
			cs.mu.Unlock()
		case script.Screenshot:
			cs.mu.Lock()
			cs.rec.seek(time.Since(cs.start))
			cs.rec.screenshot(Screenshot{Path: act.Path, Img: cs.lastImg})
			cs.mu.Unlock()
		case script.Marker:
			cs.mu.Lock()
			cs.rec.seek(time.Since(cs.start))
			cs.rec.marker(act.Label)
			cs.mu.Unlock()
		case script.RequireCommand:
			// Checked before the session started.
		}
	}
	sleepCtx(ctx, cfg.EndDelay)
}

// runCommand executes one typed line through the shell, wired to the
// real terminal so its output lands on the captured screen.
func (cs *captureSession) runCommand(ctx context.Context, cfg config.Config, line string) {
	if line == "" {
		return
	}
	shell, args, err := resolveShell(cfg.Shell)
	if err != nil {
		cs.warn("shell: %v", err)
		return
	}
	cctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	cmd := exec.CommandContext(cctx, shell, append(args, shellRunArgs(shell, line)...)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Dir = cfg.Cwd
	cmd.Env = sessionEnv(cfg.Env)
	err = cmd.Run()
	switch {
	case errors.Is(cctx.Err(), context.DeadlineExceeded):
		cs.warn("%q still running after %s, stopped", line, cfg.Timeout)
	case err != nil:
		// Demos run failing commands on purpose; not a warning.
		slog.Debug("session: command failed",
			slog.String("line", line), slog.Any("err", err))
	}
}

func (cs *captureSession) warn(format string, args ...any) {
	cs.mu.Lock()
	cs.rec.warnf(format, args...)
	cs.mu.Unlock()
}

// silentGrabStop reports whether a grabber error is a normal shutdown
// rather than something the user should hear about.
func silentGrabStop(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrClosedPipe) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// windowGrabber streams the terminal window as raw RGBA frames from
// ffmpeg's platform screen grabber.
type windowGrabber struct {
	pr     *io.PipeReader
	cancel context.CancelFunc
	rect   image.Rectangle
	closed atomic.Bool
}

func newWindowGrabber(ctx context.Context, fps int) (*windowGrabber, error) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return nil, errors.New("ffmpeg not found in PATH")
	}
	rect, err := windowRect(ctx)
	if err != nil {
		return nil, err
	}
	if rect.Dx() < minCaptureSize || rect.Dy() < minCaptureSize {
		return nil, fmt.Errorf("window too small to capture (%dx%d)", rect.Dx(), rect.Dy())
	}

	gctx, cancel := context.WithCancel(ctx)
	stream, err := grabStream(gctx, rect, fps)
	if err != nil {
		cancel()
		return nil, err
	}

	pr, pw := io.Pipe()
	g := &windowGrabber{pr: pr, cancel: cancel, rect: rect}
	go func() {
		var stderr bytes.Buffer
		err := stream.WithOutput(pw).WithErrorOutput(&stderr).Run()
		if err != nil && !g.closed.Load() {
			err = grabErr(err, stderr.String())
		}
		pw.CloseWithError(err)
	}()
	return g, nil
}

// grabStream builds the platform screen-grab pipeline cropped to the
// window rect, emitting raw RGBA on stdout.
func grabStream(ctx context.Context, r image.Rectangle, fps int) (*ffmpeg.Stream, error) {
	w, h := r.Dx(), r.Dy()
	var in *ffmpeg.Stream
	switch runtime.GOOS {
	case "linux":
		in = ffmpeg.Input(fmt.Sprintf("%s+%d,%d", os.Getenv("DISPLAY"), r.Min.X, r.Min.Y), ffmpeg.KwArgs{
			"f":          "x11grab",
			"framerate":  fps,
			"video_size": fmt.Sprintf("%dx%d", w, h),
		})
	case "darwin":
		// avfoundation grabs whole displays, so crop to the window.
		in = ffmpeg.Input("Capture screen 0:none", ffmpeg.KwArgs{
			"f":              "avfoundation",
			"framerate":      fps,
			"capture_cursor": 1,
		}).Filter("crop", ffmpeg.Args{
			strconv.Itoa(w), strconv.Itoa(h),
			strconv.Itoa(r.Min.X), strconv.Itoa(r.Min.Y),
		})
	default:
		return nil, fmt.Errorf("terminal capture is not supported on %s", runtime.GOOS)
	}
	out := in.Output("pipe:", ffmpeg.KwArgs{"format": "rawvideo", "pix_fmt": "rgba"})
	out.Context = ctx
	return out, nil
}

func (g *windowGrabber) Next() (image.Image, error) {
	if g.closed.Load() {
		return nil, io.EOF
	}
	img := image.NewRGBA(image.Rect(0, 0, g.rect.Dx(), g.rect.Dy()))
	if _, err := io.ReadFull(g.pr, img.Pix); err != nil {
		// A trailing partial frame means the stream ended.
		if err == io.ErrUnexpectedEOF {
			err = io.EOF
		}
		return nil, err
	}
	return img, nil
}

func (g *windowGrabber) Close() error {
	if g.closed.Swap(true) {
		return nil
	}
	g.cancel()
	return g.pr.Close()
}

// grabErr folds the last line of ffmpeg's stderr into the error.
func grabErr(err error, stderr string) error {
	lines := strings.Split(strings.ReplaceAll(stderr, "\r", "\n"), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return fmt.Errorf("ffmpeg: %s", line)
		}
	}
	return fmt.Errorf("ffmpeg: %w", err)
}

// windowRect locates the terminal window on screen.
func windowRect(ctx context.Context) (image.Rectangle, error) {
	switch runtime.GOOS {
	case "linux":
		return x11WindowRect(ctx)
	case "darwin":
		return frontWindowRect(ctx)
	default:
		return image.Rectangle{}, fmt.Errorf("terminal capture is not supported on %s", runtime.GOOS)
	}
}

func x11WindowRect(ctx context.Context) (image.Rectangle, error) {
	if os.Getenv("DISPLAY") == "" {
		return image.Rectangle{}, errors.New("DISPLAY is not set, window capture needs X11")
	}
	if _, err := exec.LookPath("xdotool"); err != nil {
		return image.Rectangle{}, errors.New("xdotool not found in PATH, needed to locate the window")
	}
	out, err := exec.CommandContext(ctx, "xdotool", "getactivewindow", "getwindowgeometry", "--shell").Output()
	if err != nil {
		return image.Rectangle{}, fmt.Errorf("xdotool: %w", err)
	}
	// --shell prints VAR=value lines including X, Y, WIDTH and HEIGHT.
	geo := map[string]int{}
	for _, ln := range strings.Split(string(out), "\n") {
		k, v, ok := strings.Cut(strings.TrimSpace(ln), "=")
		if !ok {
			continue
		}
		if n, err := strconv.Atoi(v); err == nil {
			geo[k] = n
		}
	}
	if geo["WIDTH"] <= 0 || geo["HEIGHT"] <= 0 {
		return image.Rectangle{}, errors.New("xdotool reported no window geometry")
	}
	return image.Rect(geo["X"], geo["Y"], geo["X"]+geo["WIDTH"], geo["Y"]+geo["HEIGHT"]), nil
}

const frontWindowScript = `tell application "System Events" to get position & size of front window of (first application process whose frontmost is true)`

func frontWindowRect(ctx context.Context) (image.Rectangle, error) {
	out, err := exec.CommandContext(ctx, "osascript", "-e", frontWindowScript).Output()
	if err != nil {
		return image.Rectangle{}, fmt.Errorf("osascript: %w", err)
	}
	parts := strings.Split(strings.TrimSpace(string(out)), ",")
	if len(parts) != 4 {
		return image.Rectangle{}, fmt.Errorf("unexpected osascript output %q", strings.TrimSpace(string(out)))
	}
	var vals [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return image.Rectangle{}, fmt.Errorf("unexpected osascript output %q", strings.TrimSpace(string(out)))
		}
		vals[i] = n
	}
	return image.Rect(vals[0], vals[1], vals[0]+vals[2], vals[1]+vals[3]), nil
}

// knownTerminals is the set of terminal emulator process names a
// capture can be attributed to.
var knownTerminals = map[string]bool{
	"alacritty":             true,
	"foot":                  true,
	"ghostty":               true,
	"gnome-terminal":        true,
	"gnome-terminal-server": true,
	"hyper":                 true,
	"iterm2":                true,
	"kitty":                 true,
	"konsole":               true,
	"lxterminal":            true,
	"mintty":                true,
	"rxvt":                  true,
	"st":                    true,
	"terminal":              true,
	"terminator":            true,
	"tilix":                 true,
	"tmux":                  true,
	"urxvt":                 true,
	"wezterm":               true,
	"wezterm-gui":           true,
	"windowsterminal":       true,
	"xfce4-terminal":        true,
	"xterm":                 true,
}

// hostTerminalName walks up from the parent process looking for the
// terminal emulator hosting this session. Empty when none is found.
func hostTerminalName() string {
	p, err := process.NewProcess(int32(os.Getppid()))
	if err != nil {
		return ""
	}
	for depth := 0; p != nil && depth < 10; depth++ {
		name, err := p.Name()
		if err != nil {
			return ""
		}
		base := strings.ToLower(strings.TrimSuffix(name, ".exe"))
		if knownTerminals[base] {
			return base
		}
		if p, err = p.Parent(); err != nil {
			return ""
		}
	}
	return ""
}
