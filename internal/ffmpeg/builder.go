package ffmpeg

import (
	"fmt"
	"strings"
)

// BuildEncodeCommand builds the ffmpeg command that reads raw yuv420p frames
// from stdin and writes an IVF stream to stdout.
func BuildEncodeCommand(p *EncodeParams) (string, error) {
	if p.Width <= 0 || p.Height <= 0 {
		return "", fmt.Errorf("invalid frame size %dx%d", p.Width, p.Height)
	}
	if p.Encoder == "" {
		return "", fmt.Errorf("encoder is required")
	}

	var cmd strings.Builder
	cmd.WriteString(FFmpegBase())

	logLevel := p.LogLevel
	if logLevel == "" {
		logLevel = "warning"
	}
	cmd.WriteString(" -nostdin -loglevel level+" + logLevel)

	// Raw planar input on stdin
	cmd.WriteString(" -f rawvideo -pix_fmt yuv420p")
	cmd.WriteString(fmt.Sprintf(" -s %dx%d", p.Width, p.Height))
	if p.FPS > 0 {
		cmd.WriteString(fmt.Sprintf(" -framerate %d", p.FPS))
	}
	cmd.WriteString(" -i pipe:0")

	// Encoder
	cmd.WriteString(" -c:v " + p.Encoder)
	if p.Bitrate > 0 {
		cmd.WriteString(fmt.Sprintf(" -b:v %dk", p.Bitrate))
	}
	if p.Threads > 0 {
		cmd.WriteString(fmt.Sprintf(" -threads %d", p.Threads))
	}
	ApplyOptionsToCommand(p.Options, p.Encoder, &cmd)

	// IVF keeps one frame per record with its own size header.
	cmd.WriteString(" -f ivf pipe:1")

	return cmd.String(), nil
}

// BuildTestEncodeCommand builds a short synthetic encode used to check that
// encoder actually works on this machine.
func BuildTestEncodeCommand(encoder, resolution, output string) string {
	var cmd strings.Builder
	cmd.WriteString(FFmpegBase())
	cmd.WriteString(" -nostdin -loglevel level+error")
	cmd.WriteString(" -f lavfi -i testsrc2=duration=1:size=" + resolution + ":rate=30")
	cmd.WriteString(" -t 1 -c:v " + encoder + " -b:v 1000k")
	ApplyOptionsToCommand([]OptionType{OptionRealtime}, encoder, &cmd)
	cmd.WriteString(" -y " + output)
	return cmd.String()
}
