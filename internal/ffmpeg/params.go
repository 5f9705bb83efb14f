package ffmpeg

// EncodeParams describes a raw YUV420 to IVF encode read from stdin and
// written to stdout.
type EncodeParams struct {
	// Input
	Width  int
	Height int
	FPS    int // nominal rate announced to the encoder for rate control

	// Encoder configuration
	Encoder string // libvpx, libvpx-vp9
	Bitrate int    // kbit/s
	Threads int    // 0 = ffmpeg default

	// LogLevel is passed as -loglevel level+<LogLevel>; empty means warning.
	LogLevel string

	// Behavior Options
	Options []OptionType
}
