package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/spf13/cobra"

	"github.com/smazurov/imgtowebm/cmd"
	"github.com/smazurov/imgtowebm/internal/config"
	"github.com/smazurov/imgtowebm/internal/encoders"
	"github.com/smazurov/imgtowebm/internal/ffmpeg"
	"github.com/smazurov/imgtowebm/internal/images"
	"github.com/smazurov/imgtowebm/internal/logging"
	"github.com/smazurov/imgtowebm/internal/metrics"
	"github.com/smazurov/imgtowebm/internal/runner"
	"github.com/smazurov/imgtowebm/internal/systemd"
	"github.com/smazurov/imgtowebm/internal/types"
	"github.com/smazurov/imgtowebm/internal/version"
)

// Options for the CLI - flat structure with toml mapping.
type Options struct {
	Config string `help:"Path to configuration file (default: imgtowebm/config.toml in the XDG config dirs)"`

	SourceDirectory string `help:"Path of the source directory, also accepted as the first argument" default:"." toml:"source_directory" env:"SOURCE_DIRECTORY"`
	OutputFile      string `help:"Place the output into <output-file>" short:"o" default:"output.webm" toml:"output_file" env:"OUTPUT_FILE"`
	Verbose         string `help:"Logging level (debug, info, warn, error)" short:"v" default:"warn" toml:"verbose" env:"VERBOSE"`

	// Video settings
	Bitrate           int    `help:"Bitrate in kilobits per second" short:"b" default:"25000" toml:"video_settings.bitrate" env:"BITRATE"`
	Fps               int    `help:"Frame rate in frames per second" short:"f" default:"30" toml:"video_settings.fps" env:"FPS"`
	Width             int    `help:"Width of the output video (default: width of the first image)" toml:"video_settings.width" env:"WIDTH"`
	Height            int    `help:"Height of the output video (default: height of the first image)" toml:"video_settings.height" env:"HEIGHT"`
	IgnoreAspectRatio bool   `help:"Stretch images to the output size instead of fitting them" toml:"video_settings.ignore_aspect_ratio" env:"IGNORE_ASPECT_RATIO"`
	Codec             string `help:"Video codec (vp8, vp9)" short:"c" default:"VP9" toml:"video_settings.codec" env:"CODEC"`
	ScalingAlgorithm  string `help:"Image scaling algorithm (nearest, triangle, catmull-rom, gaussian, lanczos3)" default:"nearest" toml:"video_settings.scaling_algorithm" env:"SCALING_ALGORITHM"`

	// Encoder tuning
	EncoderThreads int    `help:"Encoder threads (0 = ffmpeg default)" toml:"encoder.threads" env:"ENCODER_THREADS"`
	EncoderOptions string `help:"Comma-separated libvpx tuning options (row_mt, realtime, no_alt_ref)" toml:"encoder.options" env:"ENCODER_OPTIONS"`

	// Logging settings
	LoggingFormat  string `help:"Logging format (text, json)" default:"text" toml:"logging.format" env:"LOGGING_FORMAT"`
	LoggingJournal bool   `help:"Also log to the systemd journal when available" toml:"logging.journal" env:"LOGGING_JOURNAL"`

	// Metrics settings
	MetricsTextfile string `help:"Write Prometheus run metrics to this textfile" toml:"metrics.textfile" env:"METRICS_TEXTFILE"`

	Watch bool `help:"Convert again whenever the images of the source directory change" short:"w"`
}

// resolveSettings turns parsed options into run settings. A positional
// source directory takes precedence over the option.
func resolveSettings(opts *Options, args []string) (types.Settings, error) {
	settings := types.DefaultSettings()
	if opts == nil {
		return settings, errors.New("options not parsed")
	}

	settings.SourceDirectory = opts.SourceDirectory
	if len(args) > 0 {
		settings.SourceDirectory = args[0]
	}
	settings.OutputFile = opts.OutputFile
	settings.Verbose = opts.Verbose

	codec, err := types.ParseCodec(opts.Codec)
	if err != nil {
		return settings, err
	}
	algorithm, err := types.ParseScaleAlgorithm(opts.ScalingAlgorithm)
	if err != nil {
		return settings, err
	}

	settings.Video = types.VideoSettings{
		Bitrate:           opts.Bitrate,
		FPS:               opts.Fps,
		Width:             opts.Width,
		Height:            opts.Height,
		IgnoreAspectRatio: opts.IgnoreAspectRatio,
		Codec:             codec,
		ScalingAlgorithm:  algorithm,
	}
	return settings, settings.Video.Validate()
}

// parseEncoderOptions parses the comma-separated tuning option list.
func parseEncoderOptions(list string) ([]ffmpeg.OptionType, error) {
	var options []ffmpeg.OptionType
	for _, name := range strings.Split(list, ",") {
		if strings.TrimSpace(name) == "" {
			continue
		}
		opt, err := ffmpeg.ParseOption(name)
		if err != nil {
			return nil, err
		}
		options = append(options, opt)
	}
	return options, nil
}

// app runs conversions with one logging provider.
type app struct {
	provider        *logging.Provider
	logger          *slog.Logger
	encoder         encoders.Options
	metricsTextfile string
}

func (a *app) convert(ctx context.Context, settings types.Settings) error {
	run := metrics.NewRun()
	start := time.Now()

	report, err := runner.Convert(ctx, runner.Options{
		Settings: settings,
		Observer: run,
		Encoder:  a.encoder,
		Logger:   a.provider.Logger("pipeline"),
	})

	run.ObserveRun(time.Since(start), err, time.Now())
	if a.metricsTextfile != "" {
		if writeErr := run.WriteTextfile(a.metricsTextfile); writeErr != nil {
			a.logger.Warn("Failed to write metrics textfile", "path", a.metricsTextfile, "error", writeErr)
		}
	}

	if err != nil {
		a.logger.Error("Conversion failed", "error", err)
		return err
	}
	a.logger.Info("Conversion finished", "report", report.String())
	return nil
}

// watch converts again after every settled change of the source directory
// until ctx is done.
func (a *app) watch(ctx context.Context, settings types.Settings) error {
	watcher := config.NewWatcher(settings.SourceDirectory, images.List, a.provider.Logger("watch"),
		config.WithFilter[[]string](images.IsImage),
	)
	notifier := systemd.NewNotifier(a.provider.Logger("systemd"))
	watcher.OnReload(func(paths []string) {
		if len(paths) == 0 {
			a.logger.Warn("No images left in source directory", "dir", settings.SourceDirectory)
			notifier.Status("No images in %s", settings.SourceDirectory)
			return
		}
		notifier.Status("Converting %d images", len(paths))
		if err := a.convert(ctx, settings); err != nil {
			fmt.Fprintln(os.Stderr, err)
			notifier.Status("Last conversion failed: %v", err)
			return
		}
		notifier.Status("Watching %s, last conversion at %s", settings.SourceDirectory, time.Now().Format(time.TimeOnly))
	})

	if err := watcher.Start(); err != nil {
		return err
	}
	a.logger.Warn("Watching for changes", "dir", settings.SourceDirectory)
	notifier.Ready()
	notifier.Status("Watching %s", settings.SourceDirectory)

	<-ctx.Done()
	notifier.Stopping()
	return watcher.Stop()
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

func main() {
	var cli humacli.CLI
	var parsed *Options

	cli = humacli.New(func(hooks humacli.Hooks, opts *Options) {
		parsed = opts

		if opts.Config == "" {
			opts.Config = config.DefaultConfigPath()
		}
		// Load configuration automatically
		if loadErr := config.LoadConfig(opts, cli.Root()); loadErr != nil {
			slog.Warn("Failed to load config", "error", loadErr)
		}

		// Initialize logging system
		loggingConfig := logging.Config{
			Level:   opts.Verbose,
			Format:  opts.LoggingFormat,
			Journal: opts.LoggingJournal,
		}
		config.ApplyLoggingModules(&loggingConfig, opts.Config)
		provider := logging.New(loggingConfig)

		a := &app{
			provider:        provider,
			logger:          provider.Logger("main"),
			metricsTextfile: opts.MetricsTextfile,
		}
		ctx, cancel := context.WithCancel(context.Background())

		hooks.OnStart(func() {
			defer cancel()

			settings, err := resolveSettings(opts, cli.Root().Flags().Args())
			if err != nil {
				fail(err)
			}
			tuning, err := parseEncoderOptions(opts.EncoderOptions)
			if err != nil {
				fail(err)
			}
			a.encoder = encoders.Options{
				Threads:      opts.EncoderThreads,
				Encoder:      tuning,
				Logger:       provider.Logger("encoders"),
				FFmpegLogger: provider.Logger("ffmpeg"),
			}
			a.logger.Debug("Resolved settings", "settings", fmt.Sprintf("%+v", settings))

			if err := a.convert(ctx, settings); err != nil {
				if !opts.Watch {
					fail(err)
				}
				fmt.Fprintln(os.Stderr, err)
			}
			if opts.Watch {
				if err := a.watch(ctx, settings); err != nil {
					fail(err)
				}
			}
		})

		hooks.OnStop(func() {
			a.logger.Info("Shutting down")
			cancel()
		})
	})

	root := cli.Root()
	root.Use = "imgtowebm [source-directory]"
	root.Short = "Convert a directory of images to a WebM video"
	root.Args = cobra.MaximumNArgs(1)
	root.Version = version.Get().String()

	// Add plan command
	root.AddCommand(cmd.CreatePlanCmd(func(_ *cobra.Command, args []string) (types.Settings, error) {
		return resolveSettings(parsed, args)
	}))

	// Add validate-encoders command
	root.AddCommand(cmd.CreateValidateEncodersCmd())

	// Run the CLI
	cli.Run()
}
