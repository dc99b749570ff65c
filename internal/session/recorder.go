package session

import (
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/aayushadhikari7/termgif/internal/config"
	"github.com/aayushadhikari7/termgif/internal/termframe"
	"github.com/aayushadhikari7/termgif/internal/timeline"
)

// recorder accumulates frames against a session clock. Frames are
// appended with a zero hold; the hold is closed out when the next
// frame arrives or the session finishes, which keeps the timeline
// contiguous by construction. While hidden, captures are dropped and
// the previous visible frame's hold grows to span the gap.
type recorder struct {
	fps    int
	cols   int
	rows   int
	theme  string
	pixelW int
	pixelH int

	now    time.Duration
	hidden bool

	frames   []timeline.Frame
	markers  []timeline.Marker
	shots    []Screenshot
	warnings []string
}

func newRecorder(cfg config.Config) *recorder {
	return &recorder{
		fps:   cfg.FPS,
		cols:  cfg.Cols,
		rows:  cfg.Rows,
		theme: cfg.Theme,
	}
}

// advance moves the clock forward by d.
func (r *recorder) advance(d time.Duration) {
	if d > 0 {
		r.now += d
	}
}

// seek moves the clock to t. Regressions are ignored so wall-clock
// jitter in live mode can never produce a negative hold.
func (r *recorder) seek(t time.Duration) {
	if t > r.now {
		r.now = t
	}
}

// capture appends a grid frame at the current clock.
func (r *recorder) capture(grid termframe.Frame) {
	if r.hidden {
		return
	}
	r.closeOut()
	r.frames = append(r.frames, timeline.Frame{Grid: grid, Offset: r.now})
}

// captureImage appends a pixel frame at the current clock, recording
// the pixel dimensions for timelines that carry no cell grid.
func (r *recorder) captureImage(img image.Image) {
	if r.hidden || img == nil {
		return
	}
	b := img.Bounds()
	r.pixelW, r.pixelH = b.Dx(), b.Dy()
	r.closeOut()
	r.frames = append(r.frames, timeline.Frame{Img: img, Offset: r.now})
}

// closeOut extends the last frame's hold up to the current clock.
func (r *recorder) closeOut() {
	if len(r.frames) == 0 {
		return
	}
	last := &r.frames[len(r.frames)-1]
	if hold := r.now - last.Offset; hold > last.Hold {
		last.Hold = hold
	}
}

func (r *recorder) hide() { r.hidden = true }

func (r *recorder) show() { r.hidden = false }

// marker records a named timestamp. Markers land even while capture
// is toggled off.
func (r *recorder) marker(name string) {
	r.markers = append(r.markers, timeline.Marker{Name: name, At: r.now})
}

// screenshot stores an out-of-band single frame. The At stamp is
// filled from the clock here so callers only supply content and path.
func (r *recorder) screenshot(s Screenshot) {
	s.At = r.now
	r.shots = append(r.shots, s)
}

func (r *recorder) warnf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	r.warnings = append(r.warnings, msg)
	slog.Warn("session: " + msg)
}

// finish closes out the last hold and packages the timeline.
func (r *recorder) finish() *timeline.Timeline {
	r.closeOut()
	return &timeline.Timeline{
		FPS:     r.fps,
		Cols:    r.cols,
		Rows:    r.rows,
		Theme:   r.theme,
		PixelW:  r.pixelW,
		PixelH:  r.pixelH,
		Frames:  r.frames,
		Markers: r.markers,
	}
}

func (r *recorder) result() *Result {
	return &Result{
		Timeline:    r.finish(),
		Screenshots: r.shots,
		Warnings:    r.warnings,
	}
}
