// Package render rasterizes terminal frames into themed window images.
//
// A Renderer is built once per recording. Geometry and the static
// window backdrop (shadow, chrome, title) are computed up front, so
// each frame only redraws the cell grid and the cursor. Drawing runs
// at Scale times the target resolution and is downsampled at the end,
// the same supersampling a screenshot tool uses for crisp glyph edges.
// Render is safe for concurrent use, which lets whole timelines
// rasterize in parallel.
package render

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"runtime"
	"unicode/utf8"

	"github.com/fogleman/gg"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/sync/errgroup"

	"github.com/aayushadhikari7/termgif/internal/config"
	"github.com/aayushadhikari7/termgif/internal/termframe"
	"github.com/aayushadhikari7/termgif/internal/theme"
	"github.com/aayushadhikari7/termgif/internal/timeline"
)

const (
	defaultLineHeight = 1.4
	titleFontScale    = 0.9
)

// Style describes the window appearance of a rendering.
type Style struct {
	Cols, Rows int

	FontSize   int     // cell font size in pixels, default 14
	LineHeight float64 // row height as a multiple of the font height, default 1.4
	Padding    int     // content padding inside the window
	Title      string  // title bar text, chrome only
	Chrome     bool    // macOS style title bar and drop shadow
	Theme      string  // color scheme name

	Cursor termframe.CursorShape // shape drawn when a frame does not pick one

	Scale       int // supersampling factor 1..4, default 2
	OuterRadius int // corner rounding of the finished image
	InnerRadius int // corner rounding of the window, chrome only
}

// StyleFromConfig maps the recording configuration onto a Style.
func StyleFromConfig(cfg *config.Config) Style {
	shape, _ := termframe.CursorShapeFromName(cfg.Cursor)
	return Style{
		Cols:        cfg.Cols,
		Rows:        cfg.Rows,
		FontSize:    cfg.FontSize,
		Padding:     cfg.Padding,
		Title:       cfg.Title,
		Chrome:      cfg.Chrome,
		Theme:       cfg.Theme,
		Cursor:      shape,
		Scale:       cfg.Quality,
		OuterRadius: cfg.OuterRadius(),
		InnerRadius: cfg.InnerRadius(),
	}
}

// Renderer turns frames of one fixed grid size into images.
type Renderer struct {
	style Style
	theme theme.Theme
	fonts *fontSet

	scale   int
	fontPx  float64
	titlePx float64

	cellW, cellH int // cell box in scaled pixels
	ascent       int // glyph baseline offset from the cell top
	xheight      int

	pad, titleH, cornerR, margin int
	windowW, windowH             int
	canvasW, canvasH             int
	contentX, contentY           int
	finalW, finalH               int

	backdrop  *image.RGBA
	outerMask *image.Alpha
	pageColor color.RGBA // flattened background behind the window
}

// New builds a renderer for the given style. The window geometry, the
// fonts and the static backdrop are all prepared here.
func New(style Style) (*Renderer, error) {
	if style.Cols <= 0 || style.Rows <= 0 {
		return nil, &RenderError{Op: "size", Err: fmt.Errorf("grid %dx%d is not drawable", style.Cols, style.Rows)}
	}
	if style.FontSize <= 0 {
		style.FontSize = 14
	}
	if style.LineHeight <= 0 {
		style.LineHeight = defaultLineHeight
	}
	if style.Scale <= 0 {
		style.Scale = 2
	}
	if style.Scale > 4 {
		style.Scale = 4
	}
	if style.Chrome && style.InnerRadius <= 0 {
		style.InnerRadius = 12
	}
	if style.OuterRadius < 0 {
		style.OuterRadius = 0
	}

	th, err := theme.Get(style.Theme)
	if err != nil {
		return nil, &RenderError{Op: "theme", Err: err}
	}
	fonts, err := loadFonts()
	if err != nil {
		return nil, &RenderError{Op: "font", Err: err}
	}

	r := &Renderer{style: style, theme: th, fonts: fonts, scale: style.Scale}
	r.fontPx = float64(style.FontSize * style.Scale)
	r.titlePx = math.Floor(r.fontPx * titleFontScale)

	faces, err := fonts.faces(r.fontPx, r.titlePx)
	if err != nil {
		return nil, &RenderError{Op: "font", Err: err}
	}
	m := faces.regular.Metrics()
	r.cellW = font.MeasureString(faces.regular, "M").Ceil()
	fontH := (m.Ascent + m.Descent).Ceil()
	r.cellH = int(math.Round(float64(fontH) * style.LineHeight))
	r.ascent = m.Ascent.Ceil()
	r.xheight = m.XHeight.Ceil()

	s := style.Scale
	r.pad = style.Padding * s
	if style.Chrome {
		r.titleH = titleBarHeight * s
		r.cornerR = style.InnerRadius * s
		r.margin = shadowBlur * s
		r.pageColor = th.Mantle
	} else {
		r.cornerR = plainRadius * s
		r.margin = plainMargin * s
		r.pageColor = th.Base
	}
	r.windowW = style.Cols*r.cellW + 2*r.pad
	r.windowH = style.Rows*r.cellH + r.titleH + 2*r.pad
	r.canvasW = r.windowW + 2*r.margin
	r.canvasH = r.windowH + 2*r.margin
	r.contentX = r.margin + r.pad
	r.contentY = r.margin + r.titleH + r.pad
	r.finalW = r.canvasW / s
	r.finalH = r.canvasH / s

	backdrop, err := r.buildBackdrop()
	if err != nil {
		return nil, err
	}
	r.backdrop = backdrop

	if style.OuterRadius > 0 {
		r.outerMask = roundedMask(r.finalW, r.finalH, 0, 0, r.finalW, r.finalH, style.OuterRadius)
	}
	return r, nil
}

// Size returns the pixel dimensions of rendered images.
func (r *Renderer) Size() (w, h int) {
	return r.finalW, r.finalH
}

// Render draws one frame. The frame grid must match the size the
// renderer was built for.
func (r *Renderer) Render(f termframe.Frame) (image.Image, error) {
	if f.Empty() {
		return nil, &RenderError{Op: "frame", Err: errors.New("frame has no cells")}
	}
	if f.Cols != r.style.Cols || f.Rows != r.style.Rows {
		return nil, &RenderError{Op: "frame", Err: fmt.Errorf(
			"frame is %dx%d, renderer wants %dx%d", f.Cols, f.Rows, r.style.Cols, r.style.Rows)}
	}
	faces, err := r.fonts.faces(r.fontPx, r.titlePx)
	if err != nil {
		return nil, &RenderError{Op: "font", Err: err}
	}

	canvas := image.NewRGBA(r.backdrop.Rect)
	copy(canvas.Pix, r.backdrop.Pix)
	dc := gg.NewContextForRGBA(canvas)

	r.drawCells(canvas, dc, faces, f)
	if f.Cursor.Visible {
		r.drawCursor(canvas, dc, faces, f)
	}
	return r.finish(canvas), nil
}

func (r *Renderer) drawCells(canvas *image.RGBA, dc *gg.Context, faces *faceSet, f termframe.Frame) {
	// Backgrounds go down first so glyph antialiasing on neighboring
	// cells blends into the right color.
	for y := 0; y < f.Rows; y++ {
		for x := 0; x < f.Cols; x++ {
			cell := f.CellAt(x, y)
			if cell == nil || cell.Width == 0 {
				continue
			}
			if _, bg := r.cellColors(cell.Style); bg != r.theme.Base {
				px := r.contentX + x*r.cellW
				py := r.contentY + y*r.cellH
				fillRect(canvas, px, py, px+cell.Width*r.cellW, py+r.cellH, bg)
			}
		}
	}
	for y := 0; y < f.Rows; y++ {
		for x := 0; x < f.Cols; x++ {
			cell := f.CellAt(x, y)
			if cell == nil || cell.Width == 0 {
				continue
			}
			r.drawCell(canvas, dc, faces, cell, r.contentX+x*r.cellW, r.contentY+y*r.cellH)
		}
	}
}

func (r *Renderer) drawCell(canvas *image.RGBA, dc *gg.Context, faces *faceSet, cell *termframe.Cell, px, py int) {
	st := cell.Style
	fg, _ := r.cellColors(st)
	width := cell.Width * r.cellW

	if cell.Content != "" && cell.Content != " " && st.Attrs&termframe.AttrConceal == 0 {
		ru, _ := utf8.DecodeRuneInString(cell.Content)
		if !drawBoxRune(canvas, dc, ru, px, py, width, r.cellH, r.scale, fg) {
			drawString(canvas, faces.pick(st.Attrs), cell.Content, px, py+r.ascent, fg)
		}
	}

	baseline := py + r.ascent
	if st.UnderlineStyle != termframe.UnderlineNone {
		uc := fg
		if !st.UnderlineColor.IsZero() {
			uc = r.theme.Foreground(st.UnderlineColor)
		}
		r.drawUnderline(canvas, st.UnderlineStyle, px, baseline, width, py+r.cellH, uc)
	}
	if st.Attrs&termframe.AttrStrikethrough != 0 {
		sy := baseline - r.ascent*2/5
		if r.xheight > 0 {
			sy = baseline - r.xheight/2
		}
		fillRect(canvas, px, sy, px+width, sy+r.scale, fg)
	}
}

// cellColors resolves the effective foreground and background of a
// cell, honoring reverse video and faint.
func (r *Renderer) cellColors(st termframe.Style) (fg, bg color.RGBA) {
	fg = r.theme.Foreground(st.Fg)
	bg = r.theme.Background(st.Bg)
	if st.Attrs&termframe.AttrReverse != 0 {
		fg, bg = bg, fg
	}
	if st.Attrs&termframe.AttrFaint != 0 {
		fg = mix(fg, bg, 0.5)
	}
	return fg, bg
}

func (r *Renderer) drawUnderline(canvas *image.RGBA, style termframe.UnderlineStyle, x, baseline, width, cellBottom int, c color.Color) {
	s := r.scale
	y := baseline + 2*s
	if y+s > cellBottom {
		y = cellBottom - s
	}
	x1 := x + width
	switch style {
	case termframe.UnderlineDouble:
		top := baseline + s
		if top+3*s > cellBottom {
			top = cellBottom - 3*s
		}
		fillRect(canvas, x, top, x1, top+s, c)
		fillRect(canvas, x, top+2*s, x1, top+3*s, c)
	case termframe.UnderlineDotted:
		for dx := x; dx < x1; dx += 2 * s {
			fillRect(canvas, dx, y, min(dx+s, x1), y+s, c)
		}
	case termframe.UnderlineDashed:
		seg := max(2*s, width/4)
		for dx := x; dx < x1; dx += seg + seg/2 {
			fillRect(canvas, dx, y, min(dx+seg, x1), y+s, c)
		}
	default:
		// Single; curly draws the same.
		fillRect(canvas, x, y, x1, y+s, c)
	}
}

func (r *Renderer) drawCursor(canvas *image.RGBA, dc *gg.Context, faces *faceSet, f termframe.Frame) {
	cur := f.Cursor
	if cur.X < 0 || cur.Y < 0 || cur.X >= f.Cols || cur.Y >= f.Rows {
		return
	}
	shape := r.style.Cursor
	if cur.Shape != termframe.CursorBlock {
		shape = cur.Shape
	}
	s := r.scale
	px := r.contentX + cur.X*r.cellW
	py := r.contentY + cur.Y*r.cellH
	accent := r.theme.Lavender

	switch shape {
	case termframe.CursorBar:
		fillRect(canvas, px, py+2*s, px+2*s, py+r.cellH-2*s, accent)
	case termframe.CursorUnderline:
		fillRect(canvas, px, py+r.cellH-4*s, px+r.cellW-2*s, py+r.cellH-2*s, accent)
	default:
		dc.SetColor(accent)
		dc.DrawRoundedRectangle(float64(px), float64(py+2*s),
			float64(r.cellW-2*s), float64(r.cellH-6*s), float64(2*s))
		dc.Fill()
		if cell := f.CellAt(cur.X, cur.Y); cell != nil && cell.Content != "" && cell.Content != " " {
			drawString(canvas, faces.pick(cell.Style.Attrs), cell.Content, px, py+r.ascent, r.theme.Base)
		}
	}
}

// finish downsamples the working canvas, flattens it onto the page
// color and applies the outer corner mask.
func (r *Renderer) finish(canvas *image.RGBA) image.Image {
	out := image.NewRGBA(image.Rect(0, 0, r.finalW, r.finalH))
	draw.Draw(out, out.Bounds(), image.NewUniform(r.pageColor), image.Point{}, draw.Src)
	if r.scale == 1 {
		draw.Draw(out, out.Bounds(), canvas, image.Point{}, draw.Over)
	} else {
		xdraw.CatmullRom.Scale(out, out.Bounds(), canvas, canvas.Bounds(), xdraw.Over, nil)
	}
	if r.outerMask == nil {
		return out
	}
	final := image.NewRGBA(out.Bounds())
	draw.Draw(final, final.Bounds(), image.NewUniform(r.theme.Crust), image.Point{}, draw.Src)
	draw.DrawMask(final, final.Bounds(), out, image.Point{}, r.outerMask, image.Point{}, draw.Over)
	return final
}

// RenderAll rasterizes every grid frame in the timeline, leaving
// frames that already carry an image untouched. Frames render in
// parallel, one worker per CPU.
func RenderAll(ctx context.Context, r *Renderer, tl *timeline.Timeline) (*timeline.Timeline, error) {
	if len(tl.Frames) == 0 {
		return nil, timeline.ErrNoFrames
	}
	out := tl.Clone()
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range out.Frames {
		if out.Frames[i].Img != nil {
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			img, err := r.Render(out.Frames[i].Grid)
			if err != nil {
				return fmt.Errorf("frame %d: %w", i, err)
			}
			out.Frames[i].Img = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	out.PixelW, out.PixelH = r.Size()
	return out, nil
}

func mix(a, b color.RGBA, t float64) color.RGBA {
	lerp := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + (float64(y)-float64(x))*t))
	}
	return color.RGBA{R: lerp(a.R, b.R), G: lerp(a.G, b.G), B: lerp(a.B, b.B), A: 0xff}
}
