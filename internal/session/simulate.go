package session

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/aayushadhikari7/termgif/internal/config"
	"github.com/aayushadhikari7/termgif/internal/script"
	"github.com/aayushadhikari7/termgif/internal/vt"
)

// simKeyHold is how long a pressed key stays on screen in simulate
// mode, where no process reacts to it.
const simKeyHold = 100 * time.Millisecond

// runSimulate replays the script against a bare emulator. Nothing
// executes, so the clock is advanced arithmetically: total duration is
// the start delay, plus one typing interval per glyph, plus explicit
// waits, plus the end delay. Pressing enter prints a fresh prompt but
// adds no time of its own; whatever wait follows holds that frame.
func runSimulate(ctx context.Context, scr *script.Script, cfg config.Config) (*Result, error) {
	rec := newRecorder(cfg)
	em := vt.NewEmulator(cfg.Cols, cfg.Rows)
	defer em.Close()

	prompt := promptSeq(cfg)
	em.WriteString(prompt)
	rec.capture(em.Snapshot())
	rec.advance(cfg.StartDelay)

	for _, a := range scr.Actions {
		if ctx.Err() != nil {
			rec.warnf("recording cancelled, keeping %d frames", len(rec.frames))
			return rec.result(), ctx.Err()
		}
		switch act := a.(type) {
		case script.TypeText:
			for _, g := range typeGlyphs(act.Text) {
				em.WriteString(g)
				rec.capture(em.Snapshot())
				rec.advance(cfg.TypingSpeed)
			}
		case script.PressEnter:
			em.WriteString("\r\n" + prompt)
			rec.capture(em.Snapshot())
		case script.Wait:
			rec.advance(act.Duration)
		case script.PressKey:
			if _, err := keyBytes(act); err != nil {
				rec.warnf("skipping %s: %v", act.Combo(), err)
				continue
			}
			rec.advance(simKeyHold)
		case script.ToggleCapture:
			if act.On {
				rec.show()
				rec.capture(em.Snapshot())
			} else {
				rec.hide()
			}
		case script.Screenshot:
			rec.screenshot(Screenshot{Path: act.Path, Grid: em.Snapshot()})
		case script.Marker:
			rec.marker(act.Label)
		case script.RequireCommand:
			// Checked before the session started.
		}
	}

	rec.advance(cfg.EndDelay)
	return rec.result(), nil
}

// typeGlyphs splits text into the units typed per interval. Zero-width
// runes attach to the glyph before them so combining marks never get
// an interval of their own.
func typeGlyphs(s string) []string {
	var glyphs []string
	for _, r := range s {
		if runewidth.RuneWidth(r) == 0 && len(glyphs) > 0 {
			glyphs[len(glyphs)-1] += string(r)
			continue
		}
		glyphs = append(glyphs, string(r))
	}
	return glyphs
}

// promptSeq renders the prompt written before typed input. A custom
// prompt keeps the user's text in a single accent color. The generated
// one follows the user@dir form with per-segment colors, resolved to
// concrete values by the theme at render time.
func promptSeq(cfg config.Config) string {
	if cfg.Prompt != "" {
		return "\x1b[35m" + cfg.Prompt + "\x1b[0m"
	}
	user := os.Getenv("USER")
	if user == "" {
		user = os.Getenv("USERNAME")
	}
	if user == "" {
		user = "user"
	}
	dir := "~"
	if cfg.Cwd != "" {
		dir = filepath.Base(cfg.Cwd)
	} else if wd, err := os.Getwd(); err == nil && wd != "" {
		dir = filepath.Base(wd)
	}
	return "\x1b[32m" + user + "\x1b[34m@" + dir + "\x1b[35m $ \x1b[0m"
}
