// Package theme holds the built-in terminal color schemes and resolves
// semantic cell colors to concrete pixels at render time.
package theme

import (
	"fmt"
	"image/color"
	"sort"
	"strings"

	"github.com/aayushadhikari7/termgif/internal/termframe"
)

// Theme is one named color scheme. The role names follow the Catppuccin
// convention even for non-Catppuccin schemes so the renderer can treat
// every theme uniformly.
type Theme struct {
	Name string

	Base   color.RGBA // terminal background
	Mantle color.RGBA // window chrome background
	Crust  color.RGBA // outermost background / ANSI black

	Surface0 color.RGBA
	Surface1 color.RGBA
	Surface2 color.RGBA // ANSI bright black

	Text     color.RGBA // default foreground / ANSI white
	Subtext1 color.RGBA
	Subtext0 color.RGBA

	Red      color.RGBA
	Yellow   color.RGBA
	Green    color.RGBA
	Blue     color.RGBA
	Lavender color.RGBA // cursor accent
	Mauve    color.RGBA // ANSI magenta
	Teal     color.RGBA // ANSI cyan
}

func rgb(v uint32) color.RGBA {
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}
}

var themes = map[string]Theme{
	"mocha": {
		Name: "mocha",
		Base: rgb(0x1e1e2e), Mantle: rgb(0x181825), Crust: rgb(0x11111b),
		Surface0: rgb(0x313244), Surface1: rgb(0x45475a), Surface2: rgb(0x585b70),
		Text: rgb(0xcdd6f4), Subtext1: rgb(0xbac2de), Subtext0: rgb(0xa6adc8),
		Red: rgb(0xf38ba8), Yellow: rgb(0xf9e2af), Green: rgb(0xa6e3a1),
		Blue: rgb(0x89b4fa), Lavender: rgb(0xb4befe), Mauve: rgb(0xcba6f7), Teal: rgb(0x94e2d5),
	},
	"latte": {
		Name: "latte",
		Base: rgb(0xeff1f5), Mantle: rgb(0xe6e9ef), Crust: rgb(0xdce0e8),
		Surface0: rgb(0xccd0da), Surface1: rgb(0xbcc0cc), Surface2: rgb(0xacb0be),
		Text: rgb(0x4c4f69), Subtext1: rgb(0x5c5f77), Subtext0: rgb(0x6c6f85),
		Red: rgb(0xd20f39), Yellow: rgb(0xdf8e1d), Green: rgb(0x40a02b),
		Blue: rgb(0x1e66f5), Lavender: rgb(0x7287fd), Mauve: rgb(0x8839ef), Teal: rgb(0x179299),
	},
	"frappe": {
		Name: "frappe",
		Base: rgb(0x303446), Mantle: rgb(0x292c3c), Crust: rgb(0x232634),
		Surface0: rgb(0x414559), Surface1: rgb(0x51576d), Surface2: rgb(0x626880),
		Text: rgb(0xc6d0f5), Subtext1: rgb(0xb5bfe2), Subtext0: rgb(0xa5adce),
		Red: rgb(0xe78284), Yellow: rgb(0xe5c890), Green: rgb(0xa6d189),
		Blue: rgb(0x8caaee), Lavender: rgb(0xbabbf1), Mauve: rgb(0xca9ee6), Teal: rgb(0x81c8be),
	},
	"macchiato": {
		Name: "macchiato",
		Base: rgb(0x24273a), Mantle: rgb(0x1e2030), Crust: rgb(0x181926),
		Surface0: rgb(0x363a4f), Surface1: rgb(0x494d64), Surface2: rgb(0x5b6078),
		Text: rgb(0xcad3f5), Subtext1: rgb(0xb8c0e0), Subtext0: rgb(0xa5adcb),
		Red: rgb(0xed8796), Yellow: rgb(0xeed49f), Green: rgb(0xa6da95),
		Blue: rgb(0x8aadf4), Lavender: rgb(0xb7bdf8), Mauve: rgb(0xc6a0f6), Teal: rgb(0x8bd5ca),
	},
	"dracula": {
		Name: "dracula",
		Base: rgb(0x282a36), Mantle: rgb(0x21222c), Crust: rgb(0x191a21),
		Surface0: rgb(0x44475a), Surface1: rgb(0x4d4f5c), Surface2: rgb(0x565761),
		Text: rgb(0xf8f8f2), Subtext1: rgb(0xe0e0e0), Subtext0: rgb(0xbfbfbf),
		Red: rgb(0xff5555), Yellow: rgb(0xf1fa8c), Green: rgb(0x50fa7b),
		Blue: rgb(0x8be9fd), Lavender: rgb(0xbd93f9), Mauve: rgb(0xff79c6), Teal: rgb(0x8be9fd),
	},
	"nord": {
		Name: "nord",
		Base: rgb(0x2e3440), Mantle: rgb(0x272c36), Crust: rgb(0x20242d),
		Surface0: rgb(0x3b4252), Surface1: rgb(0x434c5e), Surface2: rgb(0x4c566a),
		Text: rgb(0xeceff4), Subtext1: rgb(0xe5e9f0), Subtext0: rgb(0xd8dee9),
		Red: rgb(0xbf616a), Yellow: rgb(0xebcb8b), Green: rgb(0xa3be8c),
		Blue: rgb(0x81a1c1), Lavender: rgb(0xb48ead), Mauve: rgb(0xb48ead), Teal: rgb(0x8fbcbb),
	},
	"tokyo": {
		Name: "tokyo",
		Base: rgb(0x1a1b26), Mantle: rgb(0x16161e), Crust: rgb(0x13131a),
		Surface0: rgb(0x24283b), Surface1: rgb(0x2f3549), Surface2: rgb(0x3b4261),
		Text: rgb(0xc0caf5), Subtext1: rgb(0xa9b1d6), Subtext0: rgb(0x9aa5ce),
		Red: rgb(0xf7768e), Yellow: rgb(0xe0af68), Green: rgb(0x9ece6a),
		Blue: rgb(0x7aa2f7), Lavender: rgb(0xbb9af7), Mauve: rgb(0xbb9af7), Teal: rgb(0x73daca),
	},
	"gruvbox": {
		Name: "gruvbox",
		Base: rgb(0x282828), Mantle: rgb(0x1d2021), Crust: rgb(0x171717),
		Surface0: rgb(0x3c3836), Surface1: rgb(0x504945), Surface2: rgb(0x665c54),
		Text: rgb(0xebdbb2), Subtext1: rgb(0xd5c4a1), Subtext0: rgb(0xbdae93),
		Red: rgb(0xfb4934), Yellow: rgb(0xfabd2f), Green: rgb(0xb8bb26),
		Blue: rgb(0x83a598), Lavender: rgb(0xd3869b), Mauve: rgb(0xd3869b), Teal: rgb(0x8ec07c),
	},
	"one-dark": {
		Name: "one-dark",
		Base: rgb(0x282c34), Mantle: rgb(0x21252b), Crust: rgb(0x1b1f23),
		Surface0: rgb(0x3e4451), Surface1: rgb(0x4b5263), Surface2: rgb(0x5c6370),
		Text: rgb(0xabb2bf), Subtext1: rgb(0x9da5b4), Subtext0: rgb(0x848b98),
		Red: rgb(0xe06c75), Yellow: rgb(0xe5c07b), Green: rgb(0x98c379),
		Blue: rgb(0x61afef), Lavender: rgb(0xc678dd), Mauve: rgb(0xc678dd), Teal: rgb(0x56b6c2),
	},
	"solarized-dark": {
		Name: "solarized-dark",
		Base: rgb(0x002b36), Mantle: rgb(0x00252e), Crust: rgb(0x001f27),
		Surface0: rgb(0x073642), Surface1: rgb(0x094352), Surface2: rgb(0x0b4f61),
		Text: rgb(0x839496), Subtext1: rgb(0x93a1a1), Subtext0: rgb(0x657b83),
		Red: rgb(0xdc322f), Yellow: rgb(0xb58900), Green: rgb(0x859900),
		Blue: rgb(0x268bd2), Lavender: rgb(0x6c71c4), Mauve: rgb(0xd33682), Teal: rgb(0x2aa198),
	},
	"solarized-light": {
		Name: "solarized-light",
		Base: rgb(0xfdf6e3), Mantle: rgb(0xeee8d5), Crust: rgb(0xe4ddc8),
		Surface0: rgb(0xd5ceba), Surface1: rgb(0xc5beac), Surface2: rgb(0xb5ae9e),
		Text: rgb(0x657b83), Subtext1: rgb(0x586e75), Subtext0: rgb(0x839496),
		Red: rgb(0xdc322f), Yellow: rgb(0xb58900), Green: rgb(0x859900),
		Blue: rgb(0x268bd2), Lavender: rgb(0x6c71c4), Mauve: rgb(0xd33682), Teal: rgb(0x2aa198),
	},
	"github-dark": {
		Name: "github-dark",
		Base: rgb(0x0d1117), Mantle: rgb(0x010409), Crust: rgb(0x000000),
		Surface0: rgb(0x161b22), Surface1: rgb(0x21262d), Surface2: rgb(0x30363d),
		Text: rgb(0xc9d1d9), Subtext1: rgb(0xb1bac4), Subtext0: rgb(0x8b949e),
		Red: rgb(0xff7b72), Yellow: rgb(0xd29922), Green: rgb(0x3fb950),
		Blue: rgb(0x58a6ff), Lavender: rgb(0xa5d6ff), Mauve: rgb(0xbc8cff), Teal: rgb(0x39c5cf),
	},
	"material": {
		Name: "material",
		Base: rgb(0x263238), Mantle: rgb(0x1e272c), Crust: rgb(0x171f23),
		Surface0: rgb(0x37474f), Surface1: rgb(0x455a64), Surface2: rgb(0x546e7a),
		Text: rgb(0xeeffff), Subtext1: rgb(0xcfd8dc), Subtext0: rgb(0xb0bec5),
		Red: rgb(0xff5370), Yellow: rgb(0xffcb6b), Green: rgb(0xc3e88d),
		Blue: rgb(0x82aaff), Lavender: rgb(0xc792ea), Mauve: rgb(0xf07178), Teal: rgb(0x89ddff),
	},
	"ayu-dark": {
		Name: "ayu-dark",
		Base: rgb(0x0a0e14), Mantle: rgb(0x060a0f), Crust: rgb(0x020509),
		Surface0: rgb(0x0d1016), Surface1: rgb(0x11151c), Surface2: rgb(0x1a1f29),
		Text: rgb(0xb3b1ad), Subtext1: rgb(0x9c9a97), Subtext0: rgb(0x73726e),
		Red: rgb(0xff3333), Yellow: rgb(0xff8f40), Green: rgb(0xc2d94c),
		Blue: rgb(0x59c2ff), Lavender: rgb(0xd2a6ff), Mauve: rgb(0xffee99), Teal: rgb(0x95e6cb),
	},
}

// Default is the scheme used when no theme directive or flag is given.
const Default = "mocha"

// Get looks up a theme by name, case-insensitively.
func Get(name string) (Theme, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		key = Default
	}
	t, ok := themes[key]
	if !ok {
		return Theme{}, fmt.Errorf("unknown theme %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	return t, nil
}

// Names returns the sorted list of available theme names.
func Names() []string {
	out := make([]string, 0, len(themes))
	for name := range themes {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// ANSI maps a basic ANSI palette index 0-15 onto the scheme.
func (t Theme) ANSI(index int) color.RGBA {
	switch index {
	case 0:
		return t.Crust
	case 1, 9:
		return t.Red
	case 2, 10:
		return t.Green
	case 3, 11:
		return t.Yellow
	case 4, 12:
		return t.Blue
	case 5, 13:
		return t.Mauve
	case 6, 14:
		return t.Teal
	case 7, 15:
		return t.Text
	case 8:
		return t.Surface2
	default:
		return t.Text
	}
}

// Foreground resolves a semantic cell color used as text color.
func (t Theme) Foreground(c termframe.Color) color.RGBA {
	return t.resolve(c, t.Text)
}

// Background resolves a semantic cell color used as fill color.
func (t Theme) Background(c termframe.Color) color.RGBA {
	return t.resolve(c, t.Base)
}

func (t Theme) resolve(c termframe.Color, fallback color.RGBA) color.RGBA {
	switch c.Kind {
	case termframe.ColorBasic:
		return t.ANSI(int(c.Value))
	case termframe.ColorIndexed:
		return t.indexed(int(c.Value))
	case termframe.ColorRGB:
		r, g, b := c.RGB()
		return color.RGBA{R: r, G: g, B: b, A: 0xff}
	default:
		return fallback
	}
}

// indexed resolves the xterm 256-color palette: 0-15 via the theme,
// 16-231 as a 6x6x6 cube, 232-255 as a grayscale ramp.
func (t Theme) indexed(index int) color.RGBA {
	switch {
	case index < 0 || index > 255:
		return t.Text
	case index < 16:
		return t.ANSI(index)
	case index < 232:
		idx := index - 16
		r := cubeLevel(idx / 36)
		g := cubeLevel((idx / 6) % 6)
		b := cubeLevel(idx % 6)
		return color.RGBA{R: r, G: g, B: b, A: 0xff}
	default:
		v := uint8(8 + (index-232)*10)
		return color.RGBA{R: v, G: v, B: v, A: 0xff}
	}
}

func cubeLevel(n int) uint8 {
	if n == 0 {
		return 0
	}
	return uint8(55 + n*40)
}
