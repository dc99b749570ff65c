package cast

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/colorprofile"

	"github.com/aayushadhikari7/termgif/internal/termrender"
	"github.com/aayushadhikari7/termgif/internal/timeline"
)

// ExportOptions control the header and rendering of an exported cast.
type ExportOptions struct {
	Title string
	Shell string

	// Timestamp stamps the header; zero means now.
	Timestamp time.Time

	ShowCursor bool
}

// Export writes the timeline as a cast file. Every frame becomes one
// output event holding a full screen repaint at the frame's offset, so
// any asciinema player reproduces the recording. Markers are emitted
// as mark events. Only grid timelines can be exported; a timeline
// decoded from pixels has no terminal content to replay.
func Export(w io.Writer, tl *timeline.Timeline, opts ExportOptions) error {
	if len(tl.Frames) == 0 {
		return timeline.ErrNoFrames
	}
	shell := opts.Shell
	if shell == "" {
		shell = "/bin/bash"
	}
	ts := opts.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	hdr := &Header{
		Version:   2,
		Width:     tl.Cols,
		Height:    tl.Rows,
		Timestamp: ts.Unix(),
		Title:     opts.Title,
		Env:       &Env{Shell: shell, Term: "xterm-256color"},
	}

	ropts := termrender.Options{
		Profile:    colorprofile.TrueColor,
		ShowCursor: opts.ShowCursor,
	}
	events := make([]Event, 0, len(tl.Frames)+len(tl.Markers))
	for i, fr := range tl.Frames {
		if fr.Grid.Empty() {
			return fmt.Errorf("cast: frame %d has no grid content", i)
		}
		events = append(events, Event{
			Time: fr.Offset,
			Type: Output,
			Data: termrender.Paint(fr.Grid, ropts),
		})
	}
	events = mergeMarkers(events, tl.Markers)

	return Encode(w, hdr, events)
}

// mergeMarkers interleaves mark events into the time sorted output
// events, keeping the stream non-decreasing.
func mergeMarkers(events []Event, markers []timeline.Marker) []Event {
	if len(markers) == 0 {
		return events
	}
	out := make([]Event, 0, len(events)+len(markers))
	mi := 0
	for _, ev := range events {
		for mi < len(markers) && markers[mi].At <= ev.Time {
			out = append(out, Event{Time: markers[mi].At, Type: Mark, Data: markers[mi].Name})
			mi++
		}
		out = append(out, ev)
	}
	for ; mi < len(markers); mi++ {
		out = append(out, Event{Time: markers[mi].At, Type: Mark, Data: markers[mi].Name})
	}
	return out
}
