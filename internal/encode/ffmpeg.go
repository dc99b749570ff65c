package encode

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/aayushadhikari7/termgif/internal/timeline"
)

// ffmpegAvailable reports whether the ffmpeg binary is on PATH. A
// variable so tests can force the fallback paths.
var ffmpegAvailable = func() bool {
	_, err := exec.LookPath("ffmpeg")
	return err == nil
}

// rawPipeInput describes a raw RGBA stream on stdin to the demuxer.
func rawPipeInput(w, h, fps int) ffmpeg.KwArgs {
	return ffmpeg.KwArgs{
		"format":    "rawvideo",
		"pix_fmt":   "rgba",
		"s":         fmt.Sprintf("%dx%d", w, h),
		"framerate": fps,
	}
}

// pipeFrames streams the timeline as raw RGBA frames, repeating each
// frame to fill its hold at the constant rate. The returned reader
// must be closed by the caller so the writer never outlives the run.
func pipeFrames(tl *timeline.Timeline, fps int) *io.PipeReader {
	pr, pw := io.Pipe()
	go func() {
		reps := frameReps(tl, fps)
		for i := range tl.Frames {
			pix := rgbaFrame(tl.Frames[i].Img).Pix
			for n := 0; n < reps[i]; n++ {
				if _, err := pw.Write(pix); err != nil {
					pw.CloseWithError(err)
					return
				}
			}
		}
		pw.Close()
	}()
	return pr
}

// runFFmpeg executes the compiled stream with stdin attached, folding
// the tail of ffmpeg's stderr into the returned error.
func runFFmpeg(ctx context.Context, stream *ffmpeg.Stream, stdin io.Reader) error {
	var stderr bytes.Buffer
	if ctx != nil {
		stream.Context = ctx
	}
	if err := stream.WithInput(stdin).WithErrorOutput(&stderr).Run(); err != nil {
		if tail := stderrTail(stderr.String()); tail != "" {
			return fmt.Errorf("ffmpeg: %s", tail)
		}
		return fmt.Errorf("ffmpeg: %w", err)
	}
	return nil
}

// stderrTail keeps the last few lines of ffmpeg's chatter, where the
// failure reason lands.
func stderrTail(s string) string {
	s = strings.ReplaceAll(s, "\r", "\n")
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) > 3 {
		lines = lines[len(lines)-3:]
	}
	return strings.Join(lines, "; ")
}
