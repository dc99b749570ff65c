package termframe

import "testing"

func TestFrameFromLines(t *testing.T) {
	f := FrameFromLines(10, 3, []string{"$ ls", "a.txt"})
	if f.Cols != 10 || f.Rows != 3 {
		t.Fatalf("unexpected dims %dx%d", f.Cols, f.Rows)
	}
	if got := f.CellAt(0, 0).Content; got != "$" {
		t.Fatalf("cell(0,0) = %q", got)
	}
	if got := f.CellAt(2, 0).Content; got != "l" {
		t.Fatalf("cell(2,0) = %q", got)
	}
	if got := f.CellAt(4, 1).Content; got != "t" {
		t.Fatalf("cell(4,1) = %q", got)
	}
}

func TestFrameFromLinesTruncates(t *testing.T) {
	f := FrameFromLines(3, 1, []string{"abcdef", "ignored"})
	if got := f.Lines(); len(got) != 1 || got[0] != "abc" {
		t.Fatalf("lines = %q", got)
	}
}

func TestFrameFromLinesWideRunes(t *testing.T) {
	f := FrameFromLines(4, 1, []string{"界x"})
	first := f.CellAt(0, 0)
	if first.Content != "界" || first.Width != 2 {
		t.Fatalf("wide cell = %+v", first)
	}
	if cont := f.CellAt(1, 0); cont.Width != 0 {
		t.Fatalf("continuation cell = %+v", cont)
	}
	if got := f.CellAt(2, 0).Content; got != "x" {
		t.Fatalf("cell after wide rune = %q", got)
	}
}

func TestLinesRoundTrip(t *testing.T) {
	in := []string{"$ echo hi", "hi", ""}
	f := FrameFromLines(20, 3, in)
	out := f.Lines()
	if len(out) != 3 {
		t.Fatalf("lines = %d, want 3", len(out))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Fatalf("line %d = %q, want %q", i, out[i], in[i])
		}
	}
}

func TestText(t *testing.T) {
	f := FrameFromLines(10, 2, []string{"a", "b"})
	if got := f.Text(); got != "a\nb" {
		t.Fatalf("Text() = %q", got)
	}
}
