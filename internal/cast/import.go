package cast

import (
	"fmt"
	"io"
	"time"

	"github.com/aayushadhikari7/termgif/internal/timeline"
	"github.com/aayushadhikari7/termgif/internal/vt"
)

// Import replays a cast's output events through a terminal emulator
// and reconstitutes a grid timeline. Frames are sampled at most once
// per fps interval: the first visible change of a window anchors a
// frame at its own event time, later changes inside the same window
// refresh that frame's grid, and quiet gaps between events stay as
// holds on the previous frame. Mark events become timeline markers.
// The result always has at least one frame.
func Import(r io.Reader, fps int) (*timeline.Timeline, *Header, error) {
	hdr, events, err := Decode(r)
	if err != nil {
		return nil, nil, err
	}
	if fps < 1 {
		fps = 10
	}
	interval := time.Second / time.Duration(fps)

	cols, rows := hdr.Width, hdr.Height
	if cols < 1 {
		cols = 80
	}
	if rows < 1 {
		rows = 24
	}

	em := vt.NewEmulator(cols, rows)
	defer em.Close()
	blank := em.Snapshot()
	em.ConsumeDamage()

	tl := &timeline.Timeline{
		FPS:  fps,
		Cols: cols,
		Rows: rows,
	}

	var prev time.Duration
	var lastEvent time.Duration
	for _, ev := range events {
		at := ev.Time
		if at < prev {
			at = prev
		}
		prev = at
		lastEvent = at

		switch ev.Type {
		case Mark:
			tl.Markers = append(tl.Markers, timeline.Marker{Name: ev.Data, At: at})
			continue
		case Output:
			if _, err := em.WriteString(ev.Data); err != nil {
				return nil, nil, fmt.Errorf("cast: replay event: %w", err)
			}
		default:
			// Input and unknown event types do not affect the screen.
			continue
		}
		if !em.Dirty() {
			continue
		}
		em.ConsumeDamage()

		if n := len(tl.Frames); n > 0 && at-tl.Frames[n-1].Offset < interval {
			tl.Frames[n-1].Grid = em.Snapshot()
			continue
		}
		tl.Frames = append(tl.Frames, timeline.Frame{Grid: em.Snapshot(), Offset: at})
	}

	if len(tl.Frames) == 0 {
		tl.Frames = append(tl.Frames, timeline.Frame{Grid: em.Snapshot(), Hold: time.Second})
		return tl, hdr, nil
	}

	// A recording that only shows content later starts on a blank
	// screen.
	if first := tl.Frames[0].Offset; first > 0 {
		tl.Frames = append([]timeline.Frame{{Grid: blank, Hold: first}}, tl.Frames...)
	}

	for i := range tl.Frames[:len(tl.Frames)-1] {
		tl.Frames[i].Hold = tl.Frames[i+1].Offset - tl.Frames[i].Offset
	}
	last := len(tl.Frames) - 1
	hold := lastEvent - tl.Frames[last].Offset + interval
	if hold < interval {
		hold = interval
	}
	tl.Frames[last].Hold = hold

	return tl, hdr, nil
}
