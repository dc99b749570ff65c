package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/aayushadhikari7/termgif/internal/termframe"
)

// fontSet holds the parsed Go Mono family. Fonts are parsed once per
// renderer; sized faces are derived per Render call because an
// opentype face is not safe for concurrent use.
type fontSet struct {
	regular    *opentype.Font
	bold       *opentype.Font
	italic     *opentype.Font
	boldItalic *opentype.Font
}

func loadFonts() (*fontSet, error) {
	fs := &fontSet{}
	for _, src := range []struct {
		dst  **opentype.Font
		ttf  []byte
		name string
	}{
		{&fs.regular, gomono.TTF, "regular"},
		{&fs.bold, gomonobold.TTF, "bold"},
		{&fs.italic, gomonoitalic.TTF, "italic"},
		{&fs.boldItalic, gomonobolditalic.TTF, "bold italic"},
	} {
		ft, err := opentype.Parse(src.ttf)
		if err != nil {
			return nil, fmt.Errorf("parse %s font: %w", src.name, err)
		}
		*src.dst = ft
	}
	return fs, nil
}

// faceSet is one set of sized faces, valid for a single goroutine.
type faceSet struct {
	regular    font.Face
	bold       font.Face
	italic     font.Face
	boldItalic font.Face
	title      font.Face
}

func (fs *fontSet) faces(sizePx, titlePx float64) (*faceSet, error) {
	newFace := func(ft *opentype.Font, px float64) (font.Face, error) {
		return opentype.NewFace(ft, &opentype.FaceOptions{
			Size:    px,
			DPI:     72,
			Hinting: font.HintingFull,
		})
	}
	out := &faceSet{}
	var err error
	if out.regular, err = newFace(fs.regular, sizePx); err != nil {
		return nil, err
	}
	if out.bold, err = newFace(fs.bold, sizePx); err != nil {
		return nil, err
	}
	if out.italic, err = newFace(fs.italic, sizePx); err != nil {
		return nil, err
	}
	if out.boldItalic, err = newFace(fs.boldItalic, sizePx); err != nil {
		return nil, err
	}
	if out.title, err = newFace(fs.regular, titlePx); err != nil {
		return nil, err
	}
	return out, nil
}

// pick returns the face matching the cell attributes.
func (f *faceSet) pick(attrs termframe.Attrs) font.Face {
	bold := attrs&termframe.AttrBold != 0
	italic := attrs&termframe.AttrItalic != 0
	switch {
	case bold && italic:
		return f.boldItalic
	case bold:
		return f.bold
	case italic:
		return f.italic
	default:
		return f.regular
	}
}

func drawString(dst draw.Image, face font.Face, s string, x, baseline int, c color.Color) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, baseline),
	}
	d.DrawString(s)
}
