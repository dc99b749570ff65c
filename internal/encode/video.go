package encode

import (
	"context"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/aayushadhikari7/termgif/internal/timeline"
)

// videoEncoder writes mp4 and webm through ffmpeg, streaming raw RGBA
// frames over stdin.
type videoEncoder struct {
	format string
}

func (v videoEncoder) Format() string       { return v.format }
func (v videoEncoder) Extensions() []string { return []string{v.format} }
func (videoEncoder) NeedsFFmpeg() bool      { return true }

func (v videoEncoder) Encode(ctx context.Context, tl *timeline.Timeline, path string, opts Options) error {
	w, h, err := checkImages(tl)
	if err != nil {
		return wrap(v.format, err)
	}
	fps := outputFPS(tl, opts)
	err = atomicOutput(path, func(tmp string) error {
		pr := pipeFrames(tl, fps)
		defer pr.Close()

		// 4:2:0 chroma subsampling needs even dimensions.
		stream := ffmpeg.Input("pipe:", rawPipeInput(w, h, fps)).
			Filter("crop", ffmpeg.Args{"trunc(iw/2)*2", "trunc(ih/2)*2"}).
			Output(tmp, v.outputArgs(opts)).
			OverWriteOutput()
		return runFFmpeg(ctx, stream, pr)
	})
	return wrap(v.format, err)
}

func (v videoEncoder) outputArgs(opts Options) ffmpeg.KwArgs {
	if v.format == "webm" {
		kw := ffmpeg.KwArgs{
			"format":   "webm",
			"c:v":      "libvpx-vp9",
			"pix_fmt":  "yuva420p",
			"deadline": "good",
			"cpu-used": 2,
		}
		if br := bitrateOverride(opts); br != "" {
			kw["b:v"] = br
		} else {
			kw["crf"] = opts.CRF
			kw["b:v"] = "0"
		}
		return kw
	}
	codec := videoCodec(opts.Codec)
	kw := ffmpeg.KwArgs{
		"format":  "mp4",
		"c:v":     codec,
		"pix_fmt": "yuv420p",
	}
	if codec != "libvpx-vp9" {
		kw["preset"] = "medium"
	}
	if br := bitrateOverride(opts); br != "" {
		kw["b:v"] = br
	} else {
		kw["crf"] = opts.CRF
	}
	return kw
}

// videoCodec maps the configured codec name onto the ffmpeg encoder.
func videoCodec(name string) string {
	switch name {
	case "h265":
		return "libx265"
	case "vp9":
		return "libvpx-vp9"
	default:
		return "libx264"
	}
}

// bitrateOverride returns the configured bitrate when it differs from
// the default, in which case it replaces constant quality mode.
func bitrateOverride(opts Options) string {
	if opts.Bitrate != "" && opts.Bitrate != "2M" {
		return opts.Bitrate
	}
	return ""
}

// webpEncoder writes animated WebP through ffmpeg's libwebp. Lossy
// quality comes from the lossy setting; 100 and above means lossless.
type webpEncoder struct{}

func (webpEncoder) Format() string       { return "webp" }
func (webpEncoder) Extensions() []string { return []string{"webp"} }
func (webpEncoder) NeedsFFmpeg() bool    { return true }

func (webpEncoder) Encode(ctx context.Context, tl *timeline.Timeline, path string, opts Options) error {
	w, h, err := checkImages(tl)
	if err != nil {
		return wrap("webp", err)
	}
	fps := outputFPS(tl, opts)
	quality := opts.Lossy
	if quality > 100 {
		quality = 100
	}
	if quality < 0 {
		quality = 0
	}
	kw := ffmpeg.KwArgs{
		"format":  "webp",
		"c:v":     "libwebp",
		"loop":    opts.Loop,
		"quality": quality,
	}
	if opts.Lossy >= 100 {
		kw["lossless"] = 1
	}
	err = atomicOutput(path, func(tmp string) error {
		pr := pipeFrames(tl, fps)
		defer pr.Close()
		stream := ffmpeg.Input("pipe:", rawPipeInput(w, h, fps)).
			Output(tmp, kw).
			OverWriteOutput()
		return runFFmpeg(ctx, stream, pr)
	})
	return wrap("webp", err)
}

// apngEncoder writes animated PNG, which static viewers show as the
// first frame. The png extension maps here as well.
type apngEncoder struct{}

func (apngEncoder) Format() string       { return "apng" }
func (apngEncoder) Extensions() []string { return []string{"apng", "png"} }
func (apngEncoder) NeedsFFmpeg() bool    { return true }

func (apngEncoder) Encode(ctx context.Context, tl *timeline.Timeline, path string, opts Options) error {
	w, h, err := checkImages(tl)
	if err != nil {
		return wrap("apng", err)
	}
	fps := outputFPS(tl, opts)
	err = atomicOutput(path, func(tmp string) error {
		pr := pipeFrames(tl, fps)
		defer pr.Close()
		stream := ffmpeg.Input("pipe:", rawPipeInput(w, h, fps)).
			Output(tmp, ffmpeg.KwArgs{"format": "apng", "plays": opts.Loop}).
			OverWriteOutput()
		return runFFmpeg(ctx, stream, pr)
	})
	return wrap("apng", err)
}
