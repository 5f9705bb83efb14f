package types

import (
	"fmt"
	"strings"
)

// Codec selects the video codec used for a run.
type Codec int

const (
	CodecVP8 Codec = iota
	CodecVP9
)

// String returns the canonical codec name.
func (c Codec) String() string {
	switch c {
	case CodecVP8:
		return "VP8"
	case CodecVP9:
		return "VP9"
	default:
		return fmt.Sprintf("Codec(%d)", int(c))
	}
}

// Valid reports whether c is one of the supported codecs.
func (c Codec) Valid() bool {
	return c == CodecVP8 || c == CodecVP9
}

// ParseCodec parses a codec name such as "vp9", "VP8" or "Vp9".
func ParseCodec(s string) (Codec, error) {
	switch normalizeName(s) {
	case "vp8":
		return CodecVP8, nil
	case "vp9":
		return CodecVP9, nil
	default:
		return 0, fmt.Errorf("unknown codec %q (want vp8 or vp9)", s)
	}
}

// ScaleAlgorithm selects the resampling filter used when frames are resized.
type ScaleAlgorithm int

const (
	ScaleNearest ScaleAlgorithm = iota
	ScaleTriangle
	ScaleCatmullRom
	ScaleGaussian
	ScaleLanczos3
)

var scaleNames = map[ScaleAlgorithm]string{
	ScaleNearest:    "nearest",
	ScaleTriangle:   "triangle",
	ScaleCatmullRom: "catmull-rom",
	ScaleGaussian:   "gaussian",
	ScaleLanczos3:   "lanczos3",
}

// String returns the CLI name of the algorithm.
func (a ScaleAlgorithm) String() string {
	if name, ok := scaleNames[a]; ok {
		return name
	}
	return fmt.Sprintf("ScaleAlgorithm(%d)", int(a))
}

// Valid reports whether a is a known algorithm.
func (a ScaleAlgorithm) Valid() bool {
	_, ok := scaleNames[a]
	return ok
}

// ParseScaleAlgorithm accepts the CLI spelling ("catmull-rom") as well as the
// config file spelling ("CatmullRom"), case-insensitively.
func ParseScaleAlgorithm(s string) (ScaleAlgorithm, error) {
	switch normalizeName(s) {
	case "nearest":
		return ScaleNearest, nil
	case "triangle", "linear":
		return ScaleTriangle, nil
	case "catmullrom", "cubic":
		return ScaleCatmullRom, nil
	case "gaussian":
		return ScaleGaussian, nil
	case "lanczos3", "lanczos":
		return ScaleLanczos3, nil
	default:
		return 0, fmt.Errorf("unknown scaling algorithm %q (want nearest, triangle, catmull-rom, gaussian or lanczos3)", s)
	}
}

func normalizeName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("-", "", "_", "").Replace(s)
}

// VideoSettings holds the encoding parameters of a single run.
// Width and Height are zero when they should be taken from the first image.
type VideoSettings struct {
	Bitrate           int // kbit/s
	FPS               int
	Width             int
	Height            int
	IgnoreAspectRatio bool
	Codec             Codec
	ScalingAlgorithm  ScaleAlgorithm
}

// Settings is the fully resolved program configuration.
type Settings struct {
	SourceDirectory string
	OutputFile      string
	Verbose         string
	Video           VideoSettings
}

// Built-in defaults, used when neither the CLI nor the config file set a value.
const (
	DefaultSourceDirectory = "."
	DefaultOutputFile      = "output.webm"
	DefaultVerbose         = "warn"
	DefaultBitrate         = 25000
	DefaultFPS             = 30
	DefaultCodec           = "VP9"
	DefaultScaling         = "nearest"
)

// DefaultVideoSettings returns the built-in video defaults.
func DefaultVideoSettings() VideoSettings {
	return VideoSettings{
		Bitrate:          DefaultBitrate,
		FPS:              DefaultFPS,
		Codec:            CodecVP9,
		ScalingAlgorithm: ScaleNearest,
	}
}

// DefaultSettings returns the built-in program defaults.
func DefaultSettings() Settings {
	return Settings{
		SourceDirectory: DefaultSourceDirectory,
		OutputFile:      DefaultOutputFile,
		Verbose:         DefaultVerbose,
		Video:           DefaultVideoSettings(),
	}
}

// Validate checks the settings before a run starts.
func (v VideoSettings) Validate() error {
	if v.FPS <= 0 {
		return fmt.Errorf("fps must be positive, got %d", v.FPS)
	}
	if v.FPS > 1000 {
		return fmt.Errorf("fps must not exceed 1000, got %d", v.FPS)
	}
	if v.Bitrate <= 0 {
		return fmt.Errorf("bitrate must be positive, got %d", v.Bitrate)
	}
	if v.Width < 0 || v.Height < 0 {
		return fmt.Errorf("invalid dimensions %dx%d", v.Width, v.Height)
	}
	if !v.Codec.Valid() {
		return fmt.Errorf("unsupported codec %s", v.Codec)
	}
	if !v.ScalingAlgorithm.Valid() {
		return fmt.Errorf("unsupported scaling algorithm %s", v.ScalingAlgorithm)
	}
	return nil
}
