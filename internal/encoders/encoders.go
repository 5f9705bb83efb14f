// Package encoders implements the VP8/VP9 encoder on top of ffmpeg's libvpx
// wrappers, and checks which of those encoders the local ffmpeg provides.
package encoders

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"

	"github.com/smazurov/imgtowebm/internal/ffmpeg"
)

// EncoderType represents the type of encoder (video, audio, subtitle)
type EncoderType string

const (
	VideoEncoder    EncoderType = "V"
	AudioEncoder    EncoderType = "A"
	SubtitleEncoder EncoderType = "S"
	Unknown         EncoderType = "?"
)

// Encoder represents an FFmpeg encoder
type Encoder struct {
	Type        EncoderType `json:"type"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
}

// EncoderList holds the encoders reported by ffmpeg, grouped by type.
type EncoderList struct {
	VideoEncoders []Encoder `json:"video_encoders"`
	OtherEncoders []Encoder `json:"other_encoders"`
}

// HasVideoEncoder reports whether ffmpeg lists a video encoder called name.
func (l *EncoderList) HasVideoEncoder(name string) bool {
	for _, e := range l.VideoEncoders {
		if e.Name == name {
			return true
		}
	}
	return false
}

// GetFFmpegEncoders retrieves all available encoders from ffmpeg
func GetFFmpegEncoders(ctx context.Context) (*EncoderList, error) {
	if !IsFFmpegInstalled() {
		return nil, fmt.Errorf("ffmpeg is not installed or not in PATH")
	}

	args := strings.Fields(ffmpeg.BuildEncodersListCommand())
	output, err := exec.CommandContext(ctx, args[0], args[1:]...).Output()
	if err != nil {
		return nil, fmt.Errorf("failed to execute encoders command: %w", err)
	}

	return parseEncoderOutput(string(output))
}

// IsFFmpegInstalled checks if ffmpeg is installed and available
func IsFFmpegInstalled() bool {
	_, err := exec.LookPath("ffmpeg")
	return err == nil
}

// FFmpegVersion returns the version from the ffmpeg banner, or "unknown".
func FFmpegVersion(ctx context.Context) string {
	args := strings.Fields(ffmpeg.BuildVersionCommand())
	output, err := exec.CommandContext(ctx, args[0], args[1:]...).Output()
	if err != nil {
		return "unknown"
	}
	return parseVersion(string(output))
}

// parseVersion extracts "7.1.1" from "ffmpeg version 7.1.1 Copyright...".
func parseVersion(output string) string {
	first, _, _ := strings.Cut(output, "\n")
	parts := strings.Fields(first)
	if len(parts) >= 3 && parts[0] == "ffmpeg" && parts[1] == "version" {
		return parts[2]
	}
	return "unknown"
}

var encoderRegex = regexp.MustCompile(`^\s*([VAS.][A-Z.]{5})\s+(\S+)\s+(.+)$`)

// parseEncoderOutput processes the output of ffmpeg -encoders command
func parseEncoderOutput(output string) (*EncoderList, error) {
	result := &EncoderList{
		VideoEncoders: []Encoder{},
		OtherEncoders: []Encoder{},
	}

	scanner := bufio.NewScanner(strings.NewReader(output))

	// The legend ends with a "------" separator line.
	encodersStarted := false

	for scanner.Scan() {
		line := scanner.Text()

		if !encodersStarted {
			if strings.HasPrefix(strings.TrimSpace(line), "------") {
				encodersStarted = true
			}
			continue
		}

		if len(strings.TrimSpace(line)) == 0 {
			continue
		}

		matches := encoderRegex.FindStringSubmatch(line)
		if len(matches) != 4 {
			continue
		}
		typeFlags := matches[1]

		var encoderType EncoderType
		switch typeFlags[0] {
		case 'V':
			encoderType = VideoEncoder
		case 'A':
			encoderType = AudioEncoder
		case 'S':
			encoderType = SubtitleEncoder
		default:
			encoderType = Unknown
		}

		encoder := Encoder{
			Type:        encoderType,
			Name:        matches[2],
			Description: strings.TrimSpace(matches[3]),
		}
		if encoderType == VideoEncoder {
			result.VideoEncoders = append(result.VideoEncoders, encoder)
		} else {
			result.OtherEncoders = append(result.OtherEncoders, encoder)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading output: %w", err)
	}

	return result, nil
}
