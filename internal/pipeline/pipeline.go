// Package pipeline drives one image sequence through resize, color
// conversion, encoding and muxing.
package pipeline

import (
	"errors"
	"image"
	"io"

	"github.com/smazurov/imgtowebm/internal/convert"
	"github.com/smazurov/imgtowebm/internal/logging"
	"github.com/smazurov/imgtowebm/internal/types"
)

// Timebase of every encoder: timestamps are milliseconds.
var Timebase = [2]int{1, 1000}

// Deps are the collaborators used by Run.
type Deps struct {
	Resampler  Resampler
	NewEncoder EncoderFactory
	Muxer      Muxer
	Observer   Observer       // optional
	Logger     logging.Logger // optional
}

// Result summarizes a completed run.
type Result struct {
	Width     int
	Height    int
	Frames    int
	Packets   int
	Keyframes int
	Bytes     int
}

// ResolveDimensions returns the configured output size, falling back to the
// size of first for each axis left unset.
func ResolveDimensions(settings types.VideoSettings, first image.Image) (width, height int) {
	width, height = settings.Width, settings.Height
	b := first.Bounds()
	if width == 0 {
		width = b.Dx()
	}
	if height == 0 {
		height = b.Dy()
	}
	return width, height
}

// FrameTimestamp returns the presentation time of frame index in milliseconds.
// The frame duration is truncated to whole milliseconds before multiplying,
// so at 30 fps frame i is at 33*i.
func FrameTimestamp(fps, index int) int64 {
	return int64(1000/fps) * int64(index)
}

// Run encodes images, in order, into deps.Muxer. The first error aborts the
// run; nothing is retried and the output may be left truncated.
//
// Invalid settings fail as an encoder init error before anything is written.
// An empty images slice yields a NoImages error without a path; callers that
// know the source directory check for that themselves and report it.
func Run(images []image.Image, settings types.VideoSettings, deps Deps) (*Result, error) {
	if err := settings.Validate(); err != nil {
		return nil, NewEncoderInitError(err)
	}
	if len(images) == 0 {
		return nil, NewNoImagesError("")
	}
	if deps.Resampler == nil || deps.NewEncoder == nil || deps.Muxer == nil {
		return nil, errors.New("pipeline: resampler, encoder factory and muxer are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	width, height := ResolveDimensions(settings, images[0])
	res := &Result{Width: width, Height: height}
	logger.Debug("Resolved output dimensions", "width", width, "height", height)

	track, err := deps.Muxer.AddVideoTrack(width, height, settings.Codec)
	if err != nil {
		return nil, NewIOError("", err)
	}

	enc, err := deps.NewEncoder(EncoderConfig{
		Width:    width,
		Height:   height,
		Timebase: Timebase,
		Bitrate:  settings.Bitrate,
		Codec:    settings.Codec,
		FPS:      settings.FPS,
	})
	if err != nil {
		return nil, NewEncoderInitError(err)
	}
	// Encoders holding external resources release them when the run aborts.
	if closer, ok := enc.(io.Closer); ok {
		defer closer.Close()
	}

	forward := func(packets []Packet) error {
		for _, p := range packets {
			if addErr := track.AddFrame(p.Data, uint64(p.PTS)*1_000_000, p.Keyframe); addErr != nil {
				return NewIOError("", addErr)
			}
			res.Packets++
			res.Bytes += len(p.Data)
			if p.Keyframe {
				res.Keyframes++
			}
			if deps.Observer != nil {
				deps.Observer.PacketMuxed(p)
			}
		}
		return nil
	}

	logger.Info("Start encoding images...", "count", len(images))
	for index, img := range images {
		logger.Info("Encoding images", "progress", float32(index)/float32(len(images))*100)

		frame := img
		b := img.Bounds()
		if b.Dx() != width || b.Dy() != height {
			if settings.IgnoreAspectRatio {
				frame = deps.Resampler.Stretch(img, width, height, settings.ScalingAlgorithm)
			} else {
				frame = deps.Resampler.Fit(img, width, height, settings.ScalingAlgorithm)
			}
		}

		rgb, fw, fh := convert.ImageToRGB(frame)
		yuv, convErr := convert.RGBToYUV420(fw, fh, rgb, convert.BytesPerPixelRGB)
		if convErr != nil {
			return nil, NewEncoderError("could not convert frame", convErr)
		}

		ms := FrameTimestamp(settings.FPS, index)
		packets, encErr := enc.Submit(ms, yuv)
		if encErr != nil {
			return nil, NewEncoderError("Encoder error", encErr)
		}
		if fwdErr := forward(packets); fwdErr != nil {
			return nil, fwdErr
		}
		res.Frames++
		if deps.Observer != nil {
			deps.Observer.FrameEncoded(index, len(images), len(packets))
		}
	}
	logger.Info("Finished encoding images.")

	logger.Info("Start writing webm...")
	rest, err := enc.Finish()
	if err != nil {
		return nil, NewEncoderError("Encoder error", err)
	}
	if fwdErr := forward(rest); fwdErr != nil {
		return nil, fwdErr
	}

	if finErr := deps.Muxer.Finalize(); finErr != nil {
		logger.Warn("Failed to finalize output container", "error", finErr)
	}
	logger.Info("Finished writing webm.", "frames", res.Frames, "packets", res.Packets)
	return res, nil
}
