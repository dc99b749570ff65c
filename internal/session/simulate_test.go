package session

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/aayushadhikari7/termgif/internal/config"
	"github.com/aayushadhikari7/termgif/internal/script"
	"github.com/aayushadhikari7/termgif/internal/termframe"
)

func simConfig() config.Config {
	cfg := config.Default()
	cfg.Prompt = "$ "
	cfg.Cols, cfg.Rows = 80, 24
	cfg.FPS = 10
	cfg.TypingSpeed = 50 * time.Millisecond
	cfg.StartDelay = 500 * time.Millisecond
	cfg.EndDelay = 2 * time.Second
	return cfg
}

// rowText joins a row's cell contents with trailing blanks trimmed.
func rowText(fr termframe.Frame, y int) string {
	var b strings.Builder
	for x := 0; x < fr.Cols; x++ {
		if c := fr.CellAt(x, y); c != nil {
			b.WriteString(c.Content)
		}
	}
	return strings.TrimRight(b.String(), " ")
}

func TestSimulateScenarioDuration(t *testing.T) {
	scr := &script.Script{Actions: []script.Action{
		script.TypeText{Text: "echo hi"},
		script.PressEnter{},
		script.Wait{Duration: time.Second},
	}}

	res, err := Record(context.Background(), scr, simConfig(), Simulate)
	if err != nil {
		t.Fatalf("Record() = %v", err)
	}
	tl := res.Timeline
	if err := tl.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}

	// 500ms start + 7 glyphs x 50ms + 1s wait + 2s end. Enter adds no
	// time of its own.
	want := 500*time.Millisecond + 7*50*time.Millisecond + time.Second + 2*time.Second
	if got := tl.Duration(); got != want {
		t.Fatalf("Duration() = %v, want %v", got, want)
	}

	// Prompt frame, one per glyph, and the post-enter frame.
	if got := len(tl.Frames); got != 9 {
		t.Fatalf("frames = %d, want 9", got)
	}
	if got, want := tl.Frames[0].Hold, 500*time.Millisecond; got != want {
		t.Fatalf("prompt frame hold = %v, want %v", got, want)
	}
	if got, want := tl.Frames[8].Hold, 3*time.Second; got != want {
		t.Fatalf("final frame hold = %v, want %v", got, want)
	}

	// Typing lands one glyph per frame.
	if got, want := rowText(tl.Frames[1].Grid, 0), "$ e"; got != want {
		t.Fatalf("frame 1 row 0 = %q, want %q", got, want)
	}
	if got, want := rowText(tl.Frames[7].Grid, 0), "$ echo hi"; got != want {
		t.Fatalf("frame 7 row 0 = %q, want %q", got, want)
	}

	// Enter opens a fresh prompt line and nothing is made up as output.
	last := tl.Frames[8].Grid
	if got, want := rowText(last, 0), "$ echo hi"; got != want {
		t.Fatalf("final row 0 = %q, want %q", got, want)
	}
	if got, want := rowText(last, 1), "$"; got != want {
		t.Fatalf("final row 1 = %q, want %q (no fabricated output)", got, want)
	}
}

func TestSimulateHideSuppressesFrames(t *testing.T) {
	scr := &script.Script{Actions: []script.Action{
		script.TypeText{Text: "a"},
		script.ToggleCapture{On: false},
		script.TypeText{Text: "bb"},
		script.ToggleCapture{On: true},
		script.TypeText{Text: "c"},
	}}
	cfg := simConfig()
	cfg.StartDelay = 0
	cfg.EndDelay = 0

	res, err := Record(context.Background(), scr, cfg, Simulate)
	if err != nil {
		t.Fatalf("Record() = %v", err)
	}
	tl := res.Timeline

	// Prompt, "a", the resume frame and "c". The two hidden glyphs
	// produce no frames but their time still passes.
	if got := len(tl.Frames); got != 4 {
		t.Fatalf("frames = %d, want 4", got)
	}
	if got, want := tl.Frames[1].Hold, 150*time.Millisecond; got != want {
		t.Fatalf("pre-hide frame hold = %v, want %v", got, want)
	}
	if got, want := rowText(tl.Frames[2].Grid, 0), "$ abb"; got != want {
		t.Fatalf("resume frame row 0 = %q, want %q", got, want)
	}
}

func TestSimulateMarkersAndScreenshots(t *testing.T) {
	scr := &script.Script{Actions: []script.Action{
		script.Wait{Duration: 100 * time.Millisecond},
		script.Marker{Label: "m1"},
		script.Screenshot{Path: "shot.png"},
		script.ToggleCapture{On: false},
		script.Marker{Label: "hidden"},
		script.ToggleCapture{On: true},
	}}
	cfg := simConfig()
	cfg.StartDelay = 0
	cfg.EndDelay = 0

	res, err := Record(context.Background(), scr, cfg, Simulate)
	if err != nil {
		t.Fatalf("Record() = %v", err)
	}

	tl := res.Timeline
	if len(tl.Markers) != 2 {
		t.Fatalf("markers = %d, want 2", len(tl.Markers))
	}
	if tl.Markers[0].Name != "m1" || tl.Markers[0].At != 100*time.Millisecond {
		t.Fatalf("marker 0 = %+v", tl.Markers[0])
	}
	if tl.Markers[1].Name != "hidden" {
		t.Fatalf("marker 1 = %+v, hidden markers should still land", tl.Markers[1])
	}

	if len(res.Screenshots) != 1 {
		t.Fatalf("screenshots = %d, want 1", len(res.Screenshots))
	}
	shot := res.Screenshots[0]
	if shot.Path != "shot.png" || shot.At != 100*time.Millisecond {
		t.Fatalf("screenshot = %+v", shot)
	}
	if shot.Grid.Cols != 80 || shot.Grid.Rows != 24 {
		t.Fatalf("screenshot grid = %dx%d, want 80x24", shot.Grid.Cols, shot.Grid.Rows)
	}
}

func TestSimulateEmptyScript(t *testing.T) {
	res, err := Record(context.Background(), &script.Script{}, simConfig(), Simulate)
	if err != nil {
		t.Fatalf("Record() = %v", err)
	}
	tl := res.Timeline
	if len(tl.Frames) != 1 {
		t.Fatalf("frames = %d, want 1", len(tl.Frames))
	}
	if got, want := tl.Duration(), 2500*time.Millisecond; got != want {
		t.Fatalf("Duration() = %v, want %v (start + end delay)", got, want)
	}
}

func TestSimulateKeys(t *testing.T) {
	scr := &script.Script{Actions: []script.Action{
		script.PressKey{Name: "up"},
		script.PressKey{Name: "bogus"},
	}}
	cfg := simConfig()
	cfg.StartDelay = 0
	cfg.EndDelay = 0

	res, err := Record(context.Background(), scr, cfg, Simulate)
	if err != nil {
		t.Fatalf("Record() = %v", err)
	}
	if got, want := res.Timeline.Duration(), simKeyHold; got != want {
		t.Fatalf("Duration() = %v, want %v (unknown key adds nothing)", got, want)
	}
	if len(res.Warnings) != 1 || !strings.Contains(res.Warnings[0], "bogus") {
		t.Fatalf("warnings = %q, want one mentioning the bad key", res.Warnings)
	}
}

func TestSimulateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	scr := &script.Script{Actions: []script.Action{
		script.TypeText{Text: "hi"},
	}}
	res, err := Record(ctx, scr, simConfig(), Simulate)
	if err != context.Canceled {
		t.Fatalf("Record() err = %v, want context.Canceled", err)
	}
	if res == nil || len(res.Timeline.Frames) != 1 {
		t.Fatalf("cancelled result should keep the frames so far, got %+v", res)
	}
	if len(res.Warnings) == 0 || !strings.Contains(res.Warnings[0], "cancelled") {
		t.Fatalf("warnings = %q", res.Warnings)
	}
}

func TestPromptSeq(t *testing.T) {
	cfg := config.Default()
	cfg.Prompt = "> "
	if got, want := promptSeq(cfg), "\x1b[35m> \x1b[0m"; got != want {
		t.Fatalf("custom promptSeq = %q, want %q", got, want)
	}

	t.Setenv("USER", "alice")
	cfg.Prompt = ""
	cfg.Cwd = "/tmp/demo"
	if got := promptSeq(cfg); !strings.Contains(got, "alice") || !strings.Contains(got, "@demo") {
		t.Fatalf("generated promptSeq = %q, want alice@demo segments", got)
	}

	t.Setenv("USER", "")
	t.Setenv("USERNAME", "")
	if got := promptSeq(cfg); !strings.Contains(got, "user@") {
		t.Fatalf("fallback promptSeq = %q, want user@ segment", got)
	}
}
