package session

import (
	"context"
	"errors"
	"image"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aayushadhikari7/termgif/internal/config"
	"github.com/aayushadhikari7/termgif/internal/script"
)

// fakeGrabber hands out a fixed number of frames, then io.EOF.
type fakeGrabber struct {
	frames chan image.Image
}

func newFakeGrabber(n, w, h int) *fakeGrabber {
	g := &fakeGrabber{frames: make(chan image.Image, n)}
	for i := 0; i < n; i++ {
		g.frames <- image.NewRGBA(image.Rect(0, 0, w, h))
	}
	close(g.frames)
	return g
}

func (g *fakeGrabber) Next() (image.Image, error) {
	img, ok := <-g.frames
	if !ok {
		return nil, io.EOF
	}
	return img, nil
}

func (g *fakeGrabber) Close() error { return nil }

func captureConfig() config.Config {
	cfg := config.Default()
	cfg.StartDelay = 0
	cfg.EndDelay = 0
	cfg.TypingSpeed = time.Millisecond
	return cfg
}

func TestCapturePixelFrames(t *testing.T) {
	g := newFakeGrabber(3, 64, 48)
	scr := &script.Script{Actions: []script.Action{
		script.Wait{Duration: 50 * time.Millisecond},
		script.Marker{Label: "mid"},
	}}

	res, err := runCapture(context.Background(), scr, captureConfig(), g)
	if err != nil {
		t.Fatalf("runCapture() = %v", err)
	}
	tl := res.Timeline
	if err := tl.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	if len(tl.Frames) != 3 {
		t.Fatalf("frames = %d, want 3", len(tl.Frames))
	}
	if tl.PixelW != 64 || tl.PixelH != 48 {
		t.Fatalf("pixel size = %dx%d, want 64x48", tl.PixelW, tl.PixelH)
	}
	for i, fr := range tl.Frames {
		if fr.Img == nil {
			t.Fatalf("frame %d has no image", i)
		}
	}
	if len(tl.Markers) != 1 || tl.Markers[0].Name != "mid" {
		t.Fatalf("markers = %+v", tl.Markers)
	}
}

func TestCaptureNoFrames(t *testing.T) {
	g := newFakeGrabber(0, 0, 0)
	_, err := runCapture(context.Background(), &script.Script{}, captureConfig(), g)
	if err == nil || !strings.Contains(err.Error(), "no frames") {
		t.Fatalf("runCapture() err = %v, want produced-no-frames", err)
	}
}

func TestCaptureKeysAndScreenshot(t *testing.T) {
	g := newFakeGrabber(1, 64, 48)
	scr := &script.Script{Actions: []script.Action{
		script.Wait{Duration: 50 * time.Millisecond},
		script.PressKey{Name: "up"},
		script.PressKey{Name: "down"},
		script.Screenshot{Path: "grab.png"},
	}}

	res, err := runCapture(context.Background(), scr, captureConfig(), g)
	if err != nil {
		t.Fatalf("runCapture() = %v", err)
	}

	keyWarns := 0
	for _, w := range res.Warnings {
		if strings.Contains(w, "key actions") {
			keyWarns++
		}
	}
	if keyWarns != 1 {
		t.Fatalf("warnings = %q, want exactly one key warning", res.Warnings)
	}
	if len(res.Screenshots) != 1 || res.Screenshots[0].Img == nil {
		t.Fatalf("screenshots = %+v, want one carrying pixels", res.Screenshots)
	}
}

func TestSilentGrabStop(t *testing.T) {
	for _, err := range []error{io.EOF, io.ErrClosedPipe, context.Canceled} {
		if !silentGrabStop(err) {
			t.Fatalf("silentGrabStop(%v) = false", err)
		}
	}
	if silentGrabStop(errors.New("boom")) {
		t.Fatal("silentGrabStop reported a real failure as normal shutdown")
	}
}

func TestGrabErr(t *testing.T) {
	err := grabErr(errors.New("exit status 1"), "frame dropped\nx11grab: cannot open display\n")
	if !strings.Contains(err.Error(), "cannot open display") {
		t.Fatalf("grabErr = %v", err)
	}
	err = grabErr(errors.New("exit status 1"), "")
	if !strings.Contains(err.Error(), "exit status 1") {
		t.Fatalf("grabErr fallback = %v", err)
	}
}
