package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
)

// Window chrome geometry, in unscaled pixels.
const (
	titleBarHeight = 52
	buttonRadius   = 7
	buttonSpacing  = 9
	shadowBlur     = 25
	shadowOffsetX  = 4
	shadowOffsetY  = 8
	glowSize       = 2
	plainMargin    = 4
	plainRadius    = 8
)

// buildBackdrop draws everything that stays the same across frames:
// the drop shadow, the window body, and with chrome enabled the title
// bar with its traffic lights and centered title.
func (r *Renderer) buildBackdrop() (*image.RGBA, error) {
	canvas := image.NewRGBA(image.Rect(0, 0, r.canvasW, r.canvasH))
	s := r.scale
	winX, winY := r.margin, r.margin

	if r.style.Chrome {
		mask := roundedMask(r.canvasW, r.canvasH,
			winX+shadowOffsetX*s, winY+shadowOffsetY*s,
			r.windowW, r.windowH, r.cornerR)
		blurAlpha(mask, shadowBlur*s/2)
		draw.DrawMask(canvas, canvas.Bounds(),
			image.NewUniform(color.NRGBA{A: 100}), image.Point{},
			mask, image.Point{}, draw.Over)
	}

	dc := gg.NewContextForRGBA(canvas)

	if r.style.Chrome {
		dc.SetColor(r.theme.Surface0)
		dc.DrawRoundedRectangle(
			float64(winX-glowSize*s), float64(winY-glowSize*s),
			float64(r.windowW+2*glowSize*s), float64(r.windowH+2*glowSize*s),
			float64(r.cornerR+glowSize*s))
		dc.Fill()
	}

	dc.SetColor(r.theme.Base)
	dc.DrawRoundedRectangle(float64(winX), float64(winY),
		float64(r.windowW), float64(r.windowH), float64(r.cornerR))
	dc.Fill()

	if r.style.Chrome {
		r.drawTitleBarShadow(canvas, winX, winY)
		if err := r.drawChrome(dc, canvas, winX, winY); err != nil {
			return nil, err
		}
	}
	return canvas, nil
}

// drawTitleBarShadow fades a few crust-colored bands below the title
// bar so the content area appears recessed.
func (r *Renderer) drawTitleBarShadow(canvas *image.RGBA, winX, winY int) {
	s := r.scale
	crust := r.theme.Crust
	top := winY + r.titleH
	for i := 0; i < 6; i++ {
		alpha := 30 - i*5
		if alpha <= 0 {
			break
		}
		y := top + i*s
		fillRect(canvas, winX+r.cornerR, y, winX+r.windowW-r.cornerR, y+s,
			color.NRGBA{R: crust.R, G: crust.G, B: crust.B, A: uint8(alpha)})
	}
}

func (r *Renderer) drawChrome(dc *gg.Context, canvas *image.RGBA, winX, winY int) error {
	s := r.scale

	lineY := winY + r.titleH
	fillRect(canvas, winX, lineY, winX+r.windowW, lineY+s, r.theme.Surface1)

	btnR := buttonRadius * s
	btnY := winY + r.titleH/2
	btnX := winX + r.pad + btnR
	for _, c := range []color.RGBA{r.theme.Red, r.theme.Yellow, r.theme.Green} {
		dc.SetColor(c)
		dc.DrawCircle(float64(btnX), float64(btnY), float64(btnR))
		dc.Fill()
		btnX += btnR*2 + buttonSpacing*s
	}

	if r.style.Title == "" {
		return nil
	}
	faces, err := r.fonts.faces(r.fontPx, r.titlePx)
	if err != nil {
		return &RenderError{Op: "font", Err: err}
	}
	m := faces.title.Metrics()
	w := font.MeasureString(faces.title, r.style.Title).Ceil()
	x := winX + (r.windowW-w)/2
	baseline := winY + (r.titleH-(m.Ascent+m.Descent).Ceil())/2 + m.Ascent.Ceil()
	drawString(canvas, faces.title, r.style.Title, x, baseline, r.theme.Subtext0)
	return nil
}

// roundedMask rasterizes an anti-aliased rounded rectangle into an
// alpha mask of the given canvas size.
func roundedMask(w, h, x, y, rw, rh, radius int) *image.Alpha {
	dc := gg.NewContext(w, h)
	dc.DrawRoundedRectangle(float64(x), float64(y), float64(rw), float64(rh), float64(radius))
	dc.SetRGB(0, 0, 0)
	dc.Fill()
	return dc.AsMask()
}

// blurAlpha approximates a gaussian blur of the given sigma with the
// three box passes used by SVG feGaussianBlur. Neither x/image nor gg
// ships a blur.
func blurAlpha(a *image.Alpha, sigma int) {
	if sigma <= 0 {
		return
	}
	d := int(float64(sigma)*3*math.Sqrt(2*math.Pi)/4 + 0.5)
	radius := max(d/2, 1)
	for i := 0; i < 3; i++ {
		boxBlurRows(a, radius)
		boxBlurCols(a, radius)
	}
}

func boxBlurRows(a *image.Alpha, radius int) {
	w, h := a.Rect.Dx(), a.Rect.Dy()
	if w == 0 || h == 0 {
		return
	}
	row := make([]uint8, w)
	n := 2*radius + 1
	for y := 0; y < h; y++ {
		off := y * a.Stride
		sum := 0
		for x := -radius; x <= radius; x++ {
			sum += int(a.Pix[off+min(max(x, 0), w-1)])
		}
		for x := 0; x < w; x++ {
			row[x] = uint8(sum / n)
			add := min(x+radius+1, w-1)
			sub := min(max(x-radius, 0), w-1)
			sum += int(a.Pix[off+add]) - int(a.Pix[off+sub])
		}
		copy(a.Pix[off:off+w], row)
	}
}

func boxBlurCols(a *image.Alpha, radius int) {
	w, h := a.Rect.Dx(), a.Rect.Dy()
	if w == 0 || h == 0 {
		return
	}
	col := make([]uint8, h)
	n := 2*radius + 1
	for x := 0; x < w; x++ {
		sum := 0
		for y := -radius; y <= radius; y++ {
			sum += int(a.Pix[min(max(y, 0), h-1)*a.Stride+x])
		}
		for y := 0; y < h; y++ {
			col[y] = uint8(sum / n)
			add := min(y+radius+1, h-1)
			sub := min(max(y-radius, 0), h-1)
			sum += int(a.Pix[add*a.Stride+x]) - int(a.Pix[sub*a.Stride+x])
		}
		for y := 0; y < h; y++ {
			a.Pix[y*a.Stride+x] = col[y]
		}
	}
}

func fillRect(dst draw.Image, x0, y0, x1, y1 int, c color.Color) {
	draw.Draw(dst, image.Rect(x0, y0, x1, y1), image.NewUniform(c), image.Point{}, draw.Over)
}
