package encoders

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleEncodersOutput = `Encoders:
 V..... = Video
 A..... = Audio
 S..... = Subtitle
 .F.... = Frame-level multithreading
 ..S... = Slice-level multithreading
 ...X.. = Codec is experimental
 ....B. = Supports draw_horiz_band
 .....D = Supports direct rendering method 1
 ------
 V....D a64multi             Multicolor charset for Commodore 64 (codec a64_multi)
 V....D libvpx               libvpx VP8 (codec vp8)
 V....D libvpx-vp9           libvpx VP9 (codec vp9)
 A....D aac                  AAC (Advanced Audio Coding)
 S..... ass                  ASS (Advanced SubStation Alpha) subtitle
`

func TestParseEncoderOutput(t *testing.T) {
	list, err := parseEncoderOutput(sampleEncodersOutput)
	require.NoError(t, err)

	require.Len(t, list.VideoEncoders, 3)
	assert.Equal(t, "libvpx", list.VideoEncoders[1].Name)
	assert.Equal(t, "libvpx VP8 (codec vp8)", list.VideoEncoders[1].Description)
	assert.Equal(t, VideoEncoder, list.VideoEncoders[2].Type)
	assert.Len(t, list.OtherEncoders, 2)

	assert.True(t, list.HasVideoEncoder("libvpx-vp9"))
	assert.False(t, list.HasVideoEncoder("aac"))
	assert.False(t, list.HasVideoEncoder("libx264"))
}

func TestParseEncoderOutputSkipsLegend(t *testing.T) {
	list, err := parseEncoderOutput("Encoders:\n V..... = Video\n")
	require.NoError(t, err)
	assert.Empty(t, list.VideoEncoders)
	assert.Empty(t, list.OtherEncoders)
}

func TestParseVersion(t *testing.T) {
	tests := []struct {
		output string
		want   string
	}{
		{"ffmpeg version 7.1.1 Copyright (c) 2000-2025 the FFmpeg developers\nbuilt with gcc", "7.1.1"},
		{"ffmpeg version n6.0-static https://johnvansickle.com/ffmpeg/", "n6.0-static"},
		{"something else", "unknown"},
		{"", "unknown"},
	}

	for _, tt := range tests {
		if got := parseVersion(tt.output); got != tt.want {
			t.Errorf("parseVersion(%q) = %q, want %q", tt.output, got, tt.want)
		}
	}
}
