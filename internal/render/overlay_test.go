package render

import (
	"image"
	"image/color"
	"image/draw"
	"testing"
)

func uniform(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

func rgbaAt(t *testing.T, img image.Image, x, y int) color.RGBA {
	t.Helper()
	return color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
}

func near(a, b color.RGBA, tol int) bool {
	diff := func(x, y uint8) int {
		d := int(x) - int(y)
		if d < 0 {
			d = -d
		}
		return d
	}
	return diff(a.R, b.R) <= tol && diff(a.G, b.G) <= tol && diff(a.B, b.B) <= tol
}

func TestWatermarkAnchors(t *testing.T) {
	blue := color.RGBA{B: 0xff, A: 0xff}
	white := color.RGBA{0xff, 0xff, 0xff, 0xff}
	wm := uniform(10, 10, white)

	cases := []struct {
		position string
		x, y     int
	}{
		{"top-left", 9, 9},
		{"top-right", 89, 9},
		{"bottom-left", 9, 39},
		{"bottom-right", 89, 39},
		{"center", 49, 24},
	}
	for _, tc := range cases {
		t.Run(tc.position, func(t *testing.T) {
			fn := Watermark(wm, tc.position, 1.0, 5)
			out, err := fn(uniform(100, 50, blue))
			if err != nil {
				t.Fatalf("transform: %v", err)
			}
			if got := rgbaAt(t, out, tc.x, tc.y); got != white {
				t.Fatalf("watermark pixel at (%d,%d) = %v, want white", tc.x, tc.y, got)
			}
			if got := rgbaAt(t, out, 0, 25); got != blue {
				t.Fatalf("background pixel = %v, want blue", got)
			}
		})
	}
}

func TestWatermarkOpacityBlends(t *testing.T) {
	white := color.RGBA{0xff, 0xff, 0xff, 0xff}
	wm := uniform(10, 10, color.RGBA{A: 0xff}) // black

	fn := Watermark(wm, "center", 0.5, 0)
	out, err := fn(uniform(40, 40, white))
	if err != nil {
		t.Fatalf("transform: %v", err)
	}
	got := rgbaAt(t, out, 20, 20)
	want := color.RGBA{0x7f, 0x7f, 0x7f, 0xff}
	if !near(got, want, 2) {
		t.Fatalf("blended pixel = %v, want about %v", got, want)
	}
}

func TestWatermarkKeepsSizeAndInput(t *testing.T) {
	blue := color.RGBA{B: 0xff, A: 0xff}
	src := uniform(64, 32, blue)
	fn := Watermark(uniform(8, 8, color.RGBA{R: 0xff, A: 0xff}), "bottom-right", 1, 4)

	out, err := fn(src)
	if err != nil {
		t.Fatalf("transform: %v", err)
	}
	if !out.Bounds().Size().Eq(src.Bounds().Size()) {
		t.Fatalf("size changed: %v -> %v", src.Bounds().Size(), out.Bounds().Size())
	}
	if got := rgbaAt(t, src, 55, 25); got != blue {
		t.Fatalf("input mutated: %v", got)
	}
}

func TestCaptionBottomBar(t *testing.T) {
	white := color.RGBA{0xff, 0xff, 0xff, 0xff}
	black := color.RGBA{A: 0xff}

	fn, err := Caption("hi", CaptionOptions{BgOpacity: 1})
	if err != nil {
		t.Fatalf("Caption: %v", err)
	}
	out, err := fn(uniform(120, 80, white))
	if err != nil {
		t.Fatalf("transform: %v", err)
	}
	if got := rgbaAt(t, out, 3, 79); got != black {
		t.Fatalf("bar pixel = %v, want black", got)
	}
	if got := rgbaAt(t, out, 3, 0); got != white {
		t.Fatalf("top pixel = %v, want white", got)
	}
}

func TestCaptionTopBar(t *testing.T) {
	white := color.RGBA{0xff, 0xff, 0xff, 0xff}
	black := color.RGBA{A: 0xff}

	fn, err := Caption("hi", CaptionOptions{Position: "top", BgOpacity: 1})
	if err != nil {
		t.Fatalf("Caption: %v", err)
	}
	out, err := fn(uniform(120, 80, white))
	if err != nil {
		t.Fatalf("transform: %v", err)
	}
	if got := rgbaAt(t, out, 3, 0); got != black {
		t.Fatalf("bar pixel = %v, want black", got)
	}
	if got := rgbaAt(t, out, 3, 79); got != white {
		t.Fatalf("bottom pixel = %v, want white", got)
	}
}

func TestCaptionDefaultOpacityBlends(t *testing.T) {
	white := color.RGBA{0xff, 0xff, 0xff, 0xff}

	fn, err := Caption("hi", CaptionOptions{})
	if err != nil {
		t.Fatalf("Caption: %v", err)
	}
	out, err := fn(uniform(120, 80, white))
	if err != nil {
		t.Fatalf("transform: %v", err)
	}
	got := rgbaAt(t, out, 3, 79)
	want := color.RGBA{0x4c, 0x4c, 0x4c, 0xff} // white showing through at 0.7
	if !near(got, want, 2) {
		t.Fatalf("bar pixel = %v, want about %v", got, want)
	}
}

func TestCaptionKeepsSize(t *testing.T) {
	fn, err := Caption("resize check", CaptionOptions{})
	if err != nil {
		t.Fatalf("Caption: %v", err)
	}
	src := uniform(200, 100, color.RGBA{G: 0xff, A: 0xff})
	out, err := fn(src)
	if err != nil {
		t.Fatalf("transform: %v", err)
	}
	if !out.Bounds().Size().Eq(src.Bounds().Size()) {
		t.Fatalf("size changed: %v -> %v", src.Bounds().Size(), out.Bounds().Size())
	}
}
