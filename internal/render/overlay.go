package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"os"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// Watermark returns a timeline frame transform that composites wm over
// every frame at the given anchor. Opacity scales the watermark's own
// alpha channel.
func Watermark(wm image.Image, position string, opacity float64, margin int) func(image.Image) (image.Image, error) {
	opacity = math.Min(math.Max(opacity, 0), 1)
	alpha := image.NewUniform(color.Alpha{A: uint8(math.Round(opacity * 255))})
	return func(src image.Image) (image.Image, error) {
		b := src.Bounds()
		out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(out, out.Bounds(), src, b.Min, draw.Src)

		wb := wm.Bounds()
		pos := anchorPoint(position, b.Dx(), b.Dy(), wb.Dx(), wb.Dy(), margin)
		target := image.Rect(pos.X, pos.Y, pos.X+wb.Dx(), pos.Y+wb.Dy())
		draw.DrawMask(out, target, wm, wb.Min, alpha, image.Point{}, draw.Over)
		return out, nil
	}
}

func anchorPoint(position string, w, h, ww, wh, margin int) image.Point {
	switch position {
	case "top-left":
		return image.Point{X: margin, Y: margin}
	case "top-right":
		return image.Point{X: w - ww - margin, Y: margin}
	case "bottom-left":
		return image.Point{X: margin, Y: h - wh - margin}
	case "center":
		return image.Point{X: (w - ww) / 2, Y: (h - wh) / 2}
	default: // bottom-right
		return image.Point{X: w - ww - margin, Y: h - wh - margin}
	}
}

// CaptionOptions control the caption bar drawn by Caption. Zero
// values pick the defaults noted on each field.
type CaptionOptions struct {
	Position   string      // "top" or "bottom", default bottom
	FontSize   int         // text size in pixels, default 24
	Padding    int         // bar padding around the text, default 10
	Color      color.Color // text color, default white
	Background color.Color // bar color, default black
	BgOpacity  float64     // bar opacity, default 0.7
}

// Caption returns a timeline frame transform that draws a centered
// text bar across every frame. The returned transform reuses one font
// face and must not be called from multiple goroutines at once.
func Caption(text string, opts CaptionOptions) (func(image.Image) (image.Image, error), error) {
	if opts.FontSize <= 0 {
		opts.FontSize = 24
	}
	if opts.Padding <= 0 {
		opts.Padding = 10
	}
	if opts.Color == nil {
		opts.Color = color.White
	}
	if opts.Background == nil {
		opts.Background = color.Black
	}
	if opts.BgOpacity <= 0 || opts.BgOpacity > 1 {
		opts.BgOpacity = 0.7
	}

	ft, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, &RenderError{Op: "font", Err: err}
	}
	face, err := opentype.NewFace(ft, &opentype.FaceOptions{
		Size:    float64(opts.FontSize),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, &RenderError{Op: "font", Err: err}
	}

	m := face.Metrics()
	textW := font.MeasureString(face, text).Ceil()
	textH := (m.Ascent + m.Descent).Ceil()
	barH := textH + 2*opts.Padding

	nb := color.NRGBAModel.Convert(opts.Background).(color.NRGBA)
	nb.A = uint8(math.Round(opts.BgOpacity * 255))

	return func(src image.Image) (image.Image, error) {
		b := src.Bounds()
		w, h := b.Dx(), b.Dy()
		out := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.Draw(out, out.Bounds(), src, b.Min, draw.Src)

		barY := 0
		if opts.Position != "top" {
			barY = h - barH
		}
		fillRect(out, 0, barY, w, barY+barH, nb)
		drawString(out, face, text, (w-textW)/2, barY+opts.Padding+m.Ascent.Ceil(), opts.Color)
		return out, nil
	}, nil
}

// ReadImage loads a watermark image from disk. PNG, JPEG and GIF are
// recognized.
func ReadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}
