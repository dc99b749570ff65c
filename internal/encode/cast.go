package encode

import (
	"bytes"
	"context"

	"github.com/aayushadhikari7/termgif/internal/atomicfile"
	"github.com/aayushadhikari7/termgif/internal/cast"
	"github.com/aayushadhikari7/termgif/internal/timeline"
)

// castEncoder writes asciicast v2 from the frame grids. It needs cell
// contents rather than pixels, so rasterization is not required.
type castEncoder struct{}

func (castEncoder) Format() string       { return "cast" }
func (castEncoder) Extensions() []string { return []string{"cast"} }
func (castEncoder) NeedsFFmpeg() bool    { return false }

func (castEncoder) Encode(ctx context.Context, tl *timeline.Timeline, path string, opts Options) error {
	var buf bytes.Buffer
	err := cast.Export(&buf, tl, cast.ExportOptions{
		Title:      opts.Title,
		Shell:      opts.Shell,
		ShowCursor: true,
	})
	if err != nil {
		return wrap("cast", err)
	}
	return wrap("cast", atomicfile.Save(path, buf.Bytes(), 0o644))
}
