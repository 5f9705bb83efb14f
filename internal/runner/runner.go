// Package runner wires the image source, resampler, ffmpeg encoder and WebM
// muxer into one conversion run.
package runner

import (
	"context"
	"fmt"
	"image"
	"os"
	"time"

	"github.com/smazurov/imgtowebm/internal/encoders"
	"github.com/smazurov/imgtowebm/internal/images"
	"github.com/smazurov/imgtowebm/internal/logging"
	"github.com/smazurov/imgtowebm/internal/pipeline"
	"github.com/smazurov/imgtowebm/internal/resize"
	"github.com/smazurov/imgtowebm/internal/types"
	"github.com/smazurov/imgtowebm/internal/version"
	"github.com/smazurov/imgtowebm/internal/webm"
)

// Options configures a conversion run. Zero values select the production
// collaborators.
type Options struct {
	Settings types.Settings

	NewEncoder pipeline.EncoderFactory // default: ffmpeg libvpx
	Resampler  pipeline.Resampler      // default: resize.Imaging
	Observer   pipeline.Observer

	// Encoder configures the default ffmpeg encoder.
	Encoder encoders.Options
	Logger  logging.Logger
}

// Report is returned by a successful Convert.
type Report struct {
	*pipeline.Result
	Images   int
	Output   string
	Duration time.Duration
}

// Convert loads every image of the source directory, encodes them in name
// order and writes the WebM file. The output file is created (or truncated)
// only after all images decoded; it is left in place when encoding fails.
func Convert(ctx context.Context, opts Options) (*Report, error) {
	start := time.Now()
	settings := opts.Settings
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	if err := settings.Video.Validate(); err != nil {
		return nil, pipeline.NewEncoderInitError(err)
	}

	imgs, err := LoadImages(ctx, settings.SourceDirectory, logger)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out, err := os.Create(settings.OutputFile)
	if err != nil {
		return nil, pipeline.NewIOError(settings.OutputFile, err)
	}
	logger.Debug("Opened output file", "path", settings.OutputFile)

	muxer := webm.NewMuxer(out, webm.Options{
		WritingApp: version.WritingApp(),
		Logger:     logger,
	})

	deps := pipeline.Deps{
		Resampler:  opts.Resampler,
		NewEncoder: opts.NewEncoder,
		Muxer:      muxer,
		Observer:   opts.Observer,
		Logger:     logger,
	}
	if deps.Resampler == nil {
		deps.Resampler = resize.Imaging{}
	}
	if deps.NewEncoder == nil {
		deps.NewEncoder = encoders.NewFactory(opts.Encoder)
	}

	res, err := pipeline.Run(imgs, settings.Video, deps)
	if err != nil {
		// Release the file handle; the partial output stays on disk.
		if closeErr := out.Close(); closeErr != nil {
			logger.Debug("Failed to close output after error", "error", closeErr)
		}
		return nil, err
	}

	return &Report{
		Result:   res,
		Images:   len(imgs),
		Output:   settings.OutputFile,
		Duration: time.Since(start),
	}, nil
}

// LoadImages decodes the images of dir in name order. An unreadable
// directory or image is an IO error; a directory without images is a
// NoImages error.
func LoadImages(ctx context.Context, dir string, logger logging.Logger) ([]image.Image, error) {
	paths, err := images.List(dir)
	if err != nil {
		return nil, pipeline.NewIOError(dir, err)
	}
	if len(paths) == 0 {
		return nil, pipeline.NewNoImagesError(dir)
	}

	logger.Info("Loading images", "dir", dir, "count", len(paths))
	imgs := make([]image.Image, 0, len(paths))
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		img, decErr := images.Decode(p)
		if decErr != nil {
			return nil, pipeline.NewIOError(p, decErr)
		}
		logger.Debug("Added image", "path", p)
		imgs = append(imgs, img)
	}
	return imgs, nil
}

// Plan describes a run without encoding anything.
type Plan struct {
	Paths      []string
	Width      int
	Height     int
	Timestamps []int64 // milliseconds
}

// BuildPlan resolves the image list, output dimensions and frame timestamps of
// a run. Only the first image is decoded.
func BuildPlan(settings types.Settings) (*Plan, error) {
	if err := settings.Video.Validate(); err != nil {
		return nil, err
	}
	paths, err := images.List(settings.SourceDirectory)
	if err != nil {
		return nil, pipeline.NewIOError(settings.SourceDirectory, err)
	}
	if len(paths) == 0 {
		return nil, pipeline.NewNoImagesError(settings.SourceDirectory)
	}
	first, err := images.Decode(paths[0])
	if err != nil {
		return nil, pipeline.NewIOError(paths[0], err)
	}

	plan := &Plan{Paths: paths, Timestamps: make([]int64, len(paths))}
	plan.Width, plan.Height = pipeline.ResolveDimensions(settings.Video, first)
	for i := range paths {
		plan.Timestamps[i] = pipeline.FrameTimestamp(settings.Video.FPS, i)
	}
	return plan, nil
}

// String formats a one-line summary of the report.
func (r *Report) String() string {
	return fmt.Sprintf("%s: %d frames %dx%d, %d packets (%d keyframes), %d bytes in %s",
		r.Output, r.Frames, r.Width, r.Height, r.Packets, r.Keyframes, r.Bytes, r.Duration.Round(time.Millisecond))
}
