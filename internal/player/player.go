// Package player replays decoded timelines inside the current
// terminal. Grid frames render through termrender at the detected
// color profile; image frames are downscaled to unicode half blocks,
// two pixels per character cell, or to plain ascii art on colorless
// terminals.
package player

import (
	"fmt"
	"image"
	"image/color"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	xdraw "golang.org/x/image/draw"

	"github.com/aayushadhikari7/termgif/internal/termrender"
	"github.com/aayushadhikari7/termgif/internal/timeline"
)

// Options configures playback.
type Options struct {
	Loop    bool
	Profile colorprofile.Profile
}

// DetectProfile maps the terminal's advertised color support onto the
// renderer's profile.
func DetectProfile() colorprofile.Profile {
	switch termenv.EnvColorProfile() {
	case termenv.TrueColor:
		return colorprofile.TrueColor
	case termenv.ANSI256:
		return colorprofile.ANSI256
	case termenv.ANSI:
		return colorprofile.ANSI
	default:
		return colorprofile.Ascii
	}
}

type programRunner interface {
	Run() (tea.Model, error)
}

var newProgram = func(m tea.Model, opts ...tea.ProgramOption) programRunner {
	return tea.NewProgram(m, opts...)
}

// Play runs the playback UI until the timeline finishes or the user
// quits.
func Play(tl *timeline.Timeline, name string, opts Options) error {
	if tl == nil || len(tl.Frames) == 0 {
		return timeline.ErrNoFrames
	}
	p := newProgram(newModel(tl, name, opts), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("playback: %w", err)
	}
	return nil
}

const defaultHold = 100 * time.Millisecond

type tickMsg struct {
	seq int
}

type model struct {
	tl      *timeline.Timeline
	name    string
	loop    bool
	profile colorprofile.Profile

	idx    int
	seq    int
	paused bool
	width  int
	height int

	cache map[int]string
	dim   lipgloss.Style
}

func newModel(tl *timeline.Timeline, name string, opts Options) model {
	return model{
		tl:      tl,
		name:    name,
		loop:    opts.Loop,
		profile: opts.Profile,
		width:   80,
		height:  24,
		cache:   make(map[int]string),
		dim:     lipgloss.NewStyle().Faint(true),
	}
}

func (m model) Init() tea.Cmd { return m.tick() }

func (m model) tick() tea.Cmd {
	d := m.tl.Frames[m.idx].Hold
	if d <= 0 {
		d = defaultHold
	}
	seq := m.seq
	return tea.Tick(d, func(time.Time) tea.Msg { return tickMsg{seq: seq} })
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		case " ":
			m.paused = !m.paused
			m.seq++
			if !m.paused {
				return m, m.tick()
			}
		case "right", "l":
			m.idx = (m.idx + 1) % len(m.tl.Frames)
		case "left", "h":
			m.idx = (m.idx - 1 + len(m.tl.Frames)) % len(m.tl.Frames)
		case "r":
			m.idx = 0
		}
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.cache = make(map[int]string)
	case tickMsg:
		if m.paused || msg.seq != m.seq {
			return m, nil
		}
		m.idx++
		if m.idx >= len(m.tl.Frames) {
			if !m.loop {
				return m, tea.Quit
			}
			m.idx = 0
		}
		return m, m.tick()
	}
	return m, nil
}

func (m model) View() string {
	body, ok := m.cache[m.idx]
	if !ok {
		body = m.renderFrame(m.tl.Frames[m.idx])
		m.cache[m.idx] = body
	}
	status := fmt.Sprintf("%s  %d/%d  space pause  ←/→ step  q quit",
		m.name, m.idx+1, len(m.tl.Frames))
	if m.paused {
		status += "  [paused]"
	}
	return body + "\n" + m.dim.Render(status)
}

func (m model) renderFrame(f timeline.Frame) string {
	if f.Grid.Cols > 0 && f.Grid.Rows > 0 {
		return termrender.Render(f.Grid, termrender.Options{
			Profile:    m.profile,
			ShowCursor: true,
		})
	}
	if f.Img == nil {
		return ""
	}
	rows := m.height - 2
	if rows < 1 {
		rows = 1
	}
	if m.profile == colorprofile.Ascii || m.profile == colorprofile.NoTTY {
		return asciiArt(f.Img, m.width, rows)
	}
	return halfBlocks(f.Img, m.width, rows)
}

// fitCells sizes an image into a character cell budget. A cell is
// roughly twice as tall as it is wide, so the pixel aspect ratio maps
// to cols:2*rows.
func fitCells(img image.Image, maxCols, maxRows int) (cols, rows int) {
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 || maxCols < 1 || maxRows < 1 {
		return 1, 1
	}
	aspect := float64(b.Dx()) / float64(b.Dy())
	cols = maxCols
	rows = int(float64(cols) / aspect / 2)
	if rows > maxRows {
		rows = maxRows
		cols = int(float64(rows) * aspect * 2)
	}
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	if cols > maxCols {
		cols = maxCols
	}
	return cols, rows
}

// halfBlocks renders two vertically stacked pixels per cell with the
// upper half block, foreground carrying the top pixel and background
// the bottom one.
func halfBlocks(img image.Image, maxCols, maxRows int) string {
	cols, rows := fitCells(img, maxCols, maxRows)
	scaled := scale(img, cols, rows*2)

	var sb strings.Builder
	sb.Grow(cols * rows * 24)
	for y := 0; y < rows*2; y += 2 {
		if y > 0 {
			sb.WriteByte('\n')
		}
		for x := 0; x < cols; x++ {
			tr, tg, tb := rgb8(scaled.At(x, y))
			br, bg, bb := rgb8(scaled.At(x, y+1))
			fmt.Fprintf(&sb, "\x1b[38;2;%d;%d;%dm\x1b[48;2;%d;%d;%dm▀",
				tr, tg, tb, br, bg, bb)
		}
		sb.WriteString("\x1b[0m")
	}
	return sb.String()
}

const asciiRamp = " .:-=+*#%@"

// asciiArt renders a grayscale ramp, one pixel per cell.
func asciiArt(img image.Image, maxCols, maxRows int) string {
	cols, rows := fitCells(img, maxCols, maxRows)
	scaled := scale(img, cols, rows)

	var sb strings.Builder
	sb.Grow((cols + 1) * rows)
	for y := 0; y < rows; y++ {
		if y > 0 {
			sb.WriteByte('\n')
		}
		for x := 0; x < cols; x++ {
			r, g, b := rgb8(scaled.At(x, y))
			gray := (299*int(r) + 587*int(g) + 114*int(b)) / 1000
			idx := gray * len(asciiRamp) / 256
			if idx >= len(asciiRamp) {
				idx = len(asciiRamp) - 1
			}
			sb.WriteByte(asciiRamp[idx])
		}
	}
	return sb.String()
}

func scale(img image.Image, w, h int) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(out, out.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	return out
}

func rgb8(c color.Color) (r, g, b uint8) {
	r16, g16, b16, _ := c.RGBA()
	return uint8(r16 >> 8), uint8(g16 >> 8), uint8(b16 >> 8)
}
