// Package timeline holds the recorded frame sequence and the editing
// operators that transform it. A Timeline is pure data: grid frames
// come from the terminal emulator, image frames from decoding an
// existing output file, and the operators never touch disk.
package timeline

import (
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/aayushadhikari7/termgif/internal/termframe"
)

// ErrNoFrames indicates an operation that requires at least one frame.
var ErrNoFrames = errors.New("timeline has no frames")

// Frame is one step of a recording. Grid carries the semantic cell
// grid for frames captured by the emulator; Img carries rasterized
// pixels for timelines decoded from an existing file. Exactly one of
// the two is set.
type Frame struct {
	Grid termframe.Frame
	Img  image.Image

	// Offset is the time since the start of the timeline at which the
	// frame appears. Hold is how long it stays on screen.
	Offset time.Duration
	Hold   time.Duration
}

// Marker is a named point in time, recorded without a visible change.
type Marker struct {
	Name string
	At   time.Duration
}

// Timeline is an ordered frame sequence with its grid metadata. Frames
// are contiguous: each frame's offset is the previous offset plus its
// hold, and the total duration is the last offset plus the last hold.
type Timeline struct {
	FPS   int
	Cols  int
	Rows  int
	Theme string

	// PixelW and PixelH are set on timelines decoded from image files,
	// where no cell grid exists.
	PixelW int
	PixelH int

	Frames  []Frame
	Markers []Marker
}

// Duration returns the total play time.
func (t *Timeline) Duration() time.Duration {
	if len(t.Frames) == 0 {
		return 0
	}
	last := t.Frames[len(t.Frames)-1]
	return last.Offset + last.Hold
}

// Validate checks the timeline invariants: at least one frame,
// non-negative holds and non-decreasing offsets.
func (t *Timeline) Validate() error {
	if len(t.Frames) == 0 {
		return ErrNoFrames
	}
	prev := time.Duration(-1)
	for i, fr := range t.Frames {
		if fr.Hold < 0 {
			return fmt.Errorf("frame %d: negative hold %v", i, fr.Hold)
		}
		if fr.Offset < 0 {
			return fmt.Errorf("frame %d: negative offset %v", i, fr.Offset)
		}
		if fr.Offset < prev {
			return fmt.Errorf("frame %d: offset %v before previous %v", i, fr.Offset, prev)
		}
		prev = fr.Offset
	}
	return nil
}

// FrameAt returns the index of the frame visible at time d, or the
// last frame when d is at or past the end. It returns -1 for an empty
// timeline.
func (t *Timeline) FrameAt(d time.Duration) int {
	if len(t.Frames) == 0 {
		return -1
	}
	for i, fr := range t.Frames {
		if d < fr.Offset+fr.Hold {
			return i
		}
	}
	return len(t.Frames) - 1
}

// Clone returns a copy with its own frame and marker slices. Frame
// contents are shared; operators never mutate them.
func (t *Timeline) Clone() *Timeline {
	out := *t
	out.Frames = append([]Frame(nil), t.Frames...)
	out.Markers = append([]Marker(nil), t.Markers...)
	return &out
}

// DimensionMismatchError reports that timelines or frames of different
// sizes were combined.
type DimensionMismatchError struct {
	Op                 string
	WantCols, WantRows int
	GotCols, GotRows   int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("%s: dimension mismatch: %dx%d vs %dx%d",
		e.Op, e.WantCols, e.WantRows, e.GotCols, e.GotRows)
}
