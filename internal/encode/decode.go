package encode

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/aayushadhikari7/termgif/internal/cast"
	"github.com/aayushadhikari7/termgif/internal/timeline"
)

// DecodeFile reads an existing recording back into a timeline so the
// editing operators can work on it. GIF and asciicast files decode in
// pure Go; the video formats go through ffmpeg. fps overrides the
// rate stored in the file when positive.
func DecodeFile(ctx context.Context, path string, fps int) (*timeline.Timeline, error) {
	tl, err := decodeFile(ctx, path, fps)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return tl, nil
}

func decodeFile(ctx context.Context, path string, fps int) (*timeline.Timeline, error) {
	switch strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".") {
	case "gif":
		return decodeGIF(path, fps)
	case "cast":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		tl, _, err := cast.Import(f, fps)
		return tl, err
	case "mp4", "webm", "webp", "apng", "png":
		return decodeVideo(ctx, path)
	default:
		return nil, errors.New("unsupported input format")
	}
}

func decodeGIF(path string, fps int) (*timeline.Timeline, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	g, err := gif.DecodeAll(f)
	if err != nil {
		return nil, err
	}
	if len(g.Image) == 0 {
		return nil, timeline.ErrNoFrames
	}

	// Logical screen size; damaged files sometimes omit it.
	w, h := g.Config.Width, g.Config.Height
	if w <= 0 || h <= 0 {
		b := g.Image[0].Bounds()
		w, h = b.Max.X, b.Max.Y
	}

	// Frames are often partial updates against the previous canvas, so
	// replay them with their disposal modes to get full images.
	canvas := image.NewRGBA(image.Rect(0, 0, w, h))
	tl := &timeline.Timeline{PixelW: w, PixelH: h}
	holds := make([]time.Duration, 0, len(g.Image))
	var offset time.Duration
	for i, src := range g.Image {
		var disposal byte
		if i < len(g.Disposal) {
			disposal = g.Disposal[i]
		}
		var saved *image.RGBA
		if disposal == gif.DisposalPrevious {
			saved = cloneRGBA(canvas)
		}
		draw.Draw(canvas, src.Bounds(), src, src.Bounds().Min, draw.Over)

		hold := 100 * time.Millisecond
		if i < len(g.Delay) && g.Delay[i] > 0 {
			hold = time.Duration(g.Delay[i]) * 10 * time.Millisecond
		}
		tl.Frames = append(tl.Frames, timeline.Frame{
			Img:    cloneRGBA(canvas),
			Offset: offset,
			Hold:   hold,
		})
		holds = append(holds, hold)
		offset += hold

		switch disposal {
		case gif.DisposalBackground:
			draw.Draw(canvas, src.Bounds(), image.Transparent, image.Point{}, draw.Src)
		case gif.DisposalPrevious:
			canvas = saved
		}
	}
	if fps <= 0 {
		fps = fpsFromHolds(holds)
	}
	tl.FPS = fps
	return tl, nil
}

func decodeVideo(ctx context.Context, path string) (*timeline.Timeline, error) {
	if !ffmpegAvailable() {
		return nil, errors.New("ffmpeg not found in PATH, needed to read video files")
	}
	width, height, fps, err := probeVideo(path)
	if err != nil {
		return nil, err
	}

	pr, pw := io.Pipe()
	defer pr.Close()

	stream := ffmpeg.Input(path).
		Output("pipe:", ffmpeg.KwArgs{"format": "rawvideo", "pix_fmt": "rgba"})
	if ctx != nil {
		stream.Context = ctx
	}
	go func() {
		var stderr bytes.Buffer
		err := stream.WithOutput(pw).WithErrorOutput(&stderr).Run()
		if err != nil {
			if tail := stderrTail(stderr.String()); tail != "" {
				err = fmt.Errorf("ffmpeg: %s", tail)
			} else {
				err = fmt.Errorf("ffmpeg: %w", err)
			}
		}
		pw.CloseWithError(err)
	}()

	hold := time.Second / time.Duration(fps)
	tl := &timeline.Timeline{FPS: fps, PixelW: width, PixelH: height}
	var offset time.Duration
	for {
		img := image.NewRGBA(image.Rect(0, 0, width, height))
		if _, err := io.ReadFull(pr, img.Pix); err != nil {
			// A trailing partial frame is truncated output, not data.
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				break
			}
			return nil, err
		}
		tl.Frames = append(tl.Frames, timeline.Frame{Img: img, Offset: offset, Hold: hold})
		offset += hold
	}
	if len(tl.Frames) == 0 {
		return nil, timeline.ErrNoFrames
	}
	return tl, nil
}

// probeVideo asks ffprobe for the geometry and rate of the first
// video stream.
func probeVideo(path string) (width, height, fps int, err error) {
	out, err := ffmpeg.Probe(path)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("ffprobe: %w", err)
	}
	var info struct {
		Streams []struct {
			CodecType    string `json:"codec_type"`
			Width        int    `json:"width"`
			Height       int    `json:"height"`
			AvgFrameRate string `json:"avg_frame_rate"`
		} `json:"streams"`
	}
	if err := json.Unmarshal([]byte(out), &info); err != nil {
		return 0, 0, 0, fmt.Errorf("ffprobe output: %w", err)
	}
	for _, s := range info.Streams {
		if s.CodecType != "video" || s.Width <= 0 || s.Height <= 0 {
			continue
		}
		return s.Width, s.Height, parseRate(s.AvgFrameRate), nil
	}
	return 0, 0, 0, errors.New("no video stream found")
}

// parseRate converts an ffprobe rate such as "30000/1001" to whole
// frames per second. Streams without one report "0/0" or "N/A".
func parseRate(s string) int {
	num, den := s, "1"
	if i := strings.IndexByte(s, '/'); i >= 0 {
		num, den = s[:i], s[i+1:]
	}
	n, err := strconv.ParseFloat(num, 64)
	if err != nil || n <= 0 {
		return 10
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d <= 0 {
		return 10
	}
	return clampFPS(int(math.Round(n / d)))
}

// fpsFromHolds derives a playback rate from the median hold, so a few
// long pauses do not drag the rate down for every frame.
func fpsFromHolds(holds []time.Duration) int {
	if len(holds) == 0 {
		return 10
	}
	sorted := append([]time.Duration(nil), holds...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	med := sorted[len(sorted)/2]
	if med <= 0 {
		return 10
	}
	return clampFPS(int(math.Round(float64(time.Second) / float64(med))))
}

func clampFPS(fps int) int {
	if fps < 1 {
		return 1
	}
	if fps > 60 {
		return 60
	}
	return fps
}

func cloneRGBA(src *image.RGBA) *image.RGBA {
	out := image.NewRGBA(src.Rect)
	copy(out.Pix, src.Pix)
	return out
}
