package timeline

import (
	"fmt"
	"image"
	"time"
)

// minHold is the shortest hold Speed will produce. Most players drop
// or stretch frames shorter than this.
const minHold = 10 * time.Millisecond

// Trim returns the part of the timeline between start and end. Frames
// wholly outside the range are dropped, boundary frames keep only the
// covered part of their hold, and the first retained frame is rebased
// to offset zero. Markers outside the range are dropped.
func (t *Timeline) Trim(start, end time.Duration) (*Timeline, error) {
	if len(t.Frames) == 0 {
		return nil, ErrNoFrames
	}
	total := t.Duration()
	if start < 0 {
		start = 0
	}
	if end > total {
		end = total
	}
	if start >= end {
		return nil, fmt.Errorf("trim: start %v must be before end %v", start, end)
	}

	out := t.Clone()
	out.Frames = out.Frames[:0]
	for _, fr := range t.Frames {
		if fr.Offset >= end || fr.Offset+fr.Hold <= start {
			continue
		}
		from := fr.Offset
		to := fr.Offset + fr.Hold
		if from < start {
			from = start
		}
		if to > end {
			to = end
		}
		fr.Offset = from - start
		fr.Hold = to - from
		out.Frames = append(out.Frames, fr)
	}
	if len(out.Frames) == 0 {
		return nil, fmt.Errorf("trim: no frames remain in [%v, %v)", start, end)
	}

	out.Markers = out.Markers[:0]
	for _, m := range t.Markers {
		if m.At < start || m.At >= end {
			continue
		}
		m.At -= start
		out.Markers = append(out.Markers, m)
	}
	return out, nil
}

// Speed returns the timeline played at the given multiple of real
// time. Every hold scales by 1/factor but never drops below 10ms, and
// offsets are rebuilt from the scaled holds. Factors of zero or less
// are rejected.
func (t *Timeline) Speed(factor float64) (*Timeline, error) {
	if factor <= 0 {
		return nil, fmt.Errorf("speed: factor must be positive, got %g", factor)
	}
	if len(t.Frames) == 0 {
		return nil, ErrNoFrames
	}

	out := t.Clone()
	var at time.Duration
	for i := range out.Frames {
		hold := time.Duration(float64(out.Frames[i].Hold) / factor)
		if hold < minHold {
			hold = minHold
		}
		out.Frames[i].Offset = at
		out.Frames[i].Hold = hold
		at += hold
	}
	for i := range out.Markers {
		out.Markers[i].At = time.Duration(float64(out.Markers[i].At) / factor)
	}
	return out, nil
}

// Concat joins timelines end to end. All inputs must share the first
// timeline's grid and pixel dimensions; FPS and theme come from the
// first. Timestamps rebase sequentially and markers carry over at
// their shifted times. Inputs are validated before any frame is
// copied.
func Concat(timelines ...*Timeline) (*Timeline, error) {
	if len(timelines) == 0 {
		return nil, ErrNoFrames
	}
	first := timelines[0]
	for _, in := range timelines[1:] {
		if in.Cols != first.Cols || in.Rows != first.Rows {
			return nil, &DimensionMismatchError{
				Op:       "concat",
				WantCols: first.Cols, WantRows: first.Rows,
				GotCols: in.Cols, GotRows: in.Rows,
			}
		}
		if in.PixelW != first.PixelW || in.PixelH != first.PixelH {
			return nil, &DimensionMismatchError{
				Op:       "concat",
				WantCols: first.PixelW, WantRows: first.PixelH,
				GotCols: in.PixelW, GotRows: in.PixelH,
			}
		}
	}

	out := &Timeline{
		FPS:    first.FPS,
		Cols:   first.Cols,
		Rows:   first.Rows,
		Theme:  first.Theme,
		PixelW: first.PixelW,
		PixelH: first.PixelH,
	}
	var base time.Duration
	for _, in := range timelines {
		for _, fr := range in.Frames {
			fr.Offset += base
			out.Frames = append(out.Frames, fr)
		}
		for _, m := range in.Markers {
			m.At += base
			out.Markers = append(out.Markers, m)
		}
		base += in.Duration()
	}
	if len(out.Frames) == 0 {
		return nil, ErrNoFrames
	}
	return out, nil
}

// Overlay applies a pure image transform, usually a watermark or
// caption stamp supplied by the renderer, to every frame. Timing is
// untouched. Every frame must already carry an image; timelines fresh
// from a recording are rasterized by the encoder instead. A transform
// that changes the frame size fails the whole operation.
func (t *Timeline) Overlay(fn func(image.Image) (image.Image, error)) (*Timeline, error) {
	if len(t.Frames) == 0 {
		return nil, ErrNoFrames
	}
	out := t.Clone()
	for i := range out.Frames {
		src := out.Frames[i].Img
		if src == nil {
			return nil, fmt.Errorf("overlay: frame %d has no image", i)
		}
		dst, err := fn(src)
		if err != nil {
			return nil, fmt.Errorf("overlay: frame %d: %w", i, err)
		}
		if !dst.Bounds().Size().Eq(src.Bounds().Size()) {
			return nil, &DimensionMismatchError{
				Op:       "overlay",
				WantCols: src.Bounds().Dx(), WantRows: src.Bounds().Dy(),
				GotCols: dst.Bounds().Dx(), GotRows: dst.Bounds().Dy(),
			}
		}
		out.Frames[i].Img = dst
	}
	return out, nil
}
