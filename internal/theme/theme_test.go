package theme

import (
	"image/color"
	"testing"

	"github.com/aayushadhikari7/termgif/internal/termframe"
)

func TestGetDefault(t *testing.T) {
	th, err := Get("")
	if err != nil {
		t.Fatalf("Get default: %v", err)
	}
	if th.Name != Default {
		t.Fatalf("default theme = %q, want %q", th.Name, Default)
	}
	if th.Base != (color.RGBA{R: 0x1e, G: 0x1e, B: 0x2e, A: 0xff}) {
		t.Fatalf("mocha base = %+v", th.Base)
	}
}

func TestGetCaseInsensitive(t *testing.T) {
	th, err := Get(" Dracula ")
	if err != nil {
		t.Fatalf("Get dracula: %v", err)
	}
	if th.Red != (color.RGBA{R: 0xff, G: 0x55, B: 0x55, A: 0xff}) {
		t.Fatalf("dracula red = %+v", th.Red)
	}
}

func TestGetUnknown(t *testing.T) {
	if _, err := Get("neon"); err == nil {
		t.Fatalf("expected error for unknown theme")
	}
}

func TestNamesSortedAndComplete(t *testing.T) {
	names := Names()
	if len(names) != 14 {
		t.Fatalf("theme count = %d, want 14", len(names))
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Fatalf("names not sorted at %d: %q >= %q", i, names[i-1], names[i])
		}
	}
}

func TestANSIMapping(t *testing.T) {
	th, _ := Get("mocha")
	if th.ANSI(0) != th.Crust {
		t.Fatalf("black should map to crust")
	}
	if th.ANSI(8) != th.Surface2 {
		t.Fatalf("bright black should map to surface2")
	}
	if th.ANSI(5) != th.Mauve {
		t.Fatalf("magenta should map to mauve")
	}
	if th.ANSI(14) != th.Teal {
		t.Fatalf("bright cyan should map to teal")
	}
}

func TestResolveSemanticColors(t *testing.T) {
	th, _ := Get("mocha")

	if got := th.Foreground(termframe.Color{}); got != th.Text {
		t.Fatalf("zero fg = %+v, want text", got)
	}
	if got := th.Background(termframe.Color{}); got != th.Base {
		t.Fatalf("zero bg = %+v, want base", got)
	}
	if got := th.Foreground(termframe.BasicColor(2)); got != th.Green {
		t.Fatalf("basic green = %+v", got)
	}
	if got := th.Foreground(termframe.RGBColor(1, 2, 3)); got != (color.RGBA{R: 1, G: 2, B: 3, A: 0xff}) {
		t.Fatalf("rgb = %+v", got)
	}
}

func TestIndexedPalette(t *testing.T) {
	th, _ := Get("mocha")
	// 16 is the start of the color cube: pure black.
	if got := th.Foreground(termframe.IndexedColor(16)); got != (color.RGBA{A: 0xff}) {
		t.Fatalf("index 16 = %+v, want black", got)
	}
	// 231 is the cube's white corner.
	if got := th.Foreground(termframe.IndexedColor(231)); got != (color.RGBA{R: 255, G: 255, B: 255, A: 0xff}) {
		t.Fatalf("index 231 = %+v, want white", got)
	}
	// 232 starts the gray ramp at 8.
	if got := th.Foreground(termframe.IndexedColor(232)); got != (color.RGBA{R: 8, G: 8, B: 8, A: 0xff}) {
		t.Fatalf("index 232 = %+v", got)
	}
	// Indexes below 16 defer to the theme.
	if got := th.Foreground(termframe.IndexedColor(1)); got != th.Red {
		t.Fatalf("index 1 = %+v, want theme red", got)
	}
}
