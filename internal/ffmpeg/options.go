package ffmpeg

import (
	"fmt"
	"strings"
)

// OptionType represents a strongly typed libvpx encoder option
type OptionType string

const (
	// OptionRowMT enables row based multithreading (VP9 only).
	OptionRowMT OptionType = "row_mt"
	// OptionRealtime trades quality for speed.
	OptionRealtime OptionType = "realtime"
	// OptionNoAltRef disables alternate reference frames, which removes the
	// encoder lookahead.
	OptionNoAltRef OptionType = "no_alt_ref"
)

var optionArgs = map[OptionType]string{
	OptionRowMT:    "-row-mt 1",
	OptionRealtime: "-deadline realtime -cpu-used 8",
	OptionNoAltRef: "-auto-alt-ref 0 -lag-in-frames 0",
}

// ParseOption parses an option name as used in the config file.
func ParseOption(s string) (OptionType, error) {
	opt := OptionType(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := optionArgs[opt]; !ok {
		return "", fmt.Errorf("unknown encoder option %q", s)
	}
	return opt, nil
}

// FFmpegBase returns the ffmpeg command with standard flags
func FFmpegBase() string {
	return "ffmpeg -hide_banner"
}

// BuildEncodersListCommand creates an FFmpeg command for listing available encoders
func BuildEncodersListCommand() string {
	return FFmpegBase() + " -encoders"
}

// BuildVersionCommand creates an FFmpeg command printing the version banner.
func BuildVersionCommand() string {
	return "ffmpeg -version"
}

// ApplyOptionsToCommand appends the arguments of options to cmd, skipping
// duplicates and options that do not apply to encoder. It returns the
// options that were applied.
func ApplyOptionsToCommand(options []OptionType, encoder string, cmd *strings.Builder) []OptionType {
	var applied []OptionType
	seen := make(map[OptionType]bool)
	for _, option := range options {
		if seen[option] {
			continue
		}
		seen[option] = true

		args, ok := optionArgs[option]
		if !ok {
			continue
		}
		if option == OptionRowMT && encoder != "libvpx-vp9" {
			continue
		}
		cmd.WriteString(" " + args)
		applied = append(applied, option)
	}
	return applied
}
