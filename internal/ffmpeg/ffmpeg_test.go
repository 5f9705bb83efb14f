package ffmpeg

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildEncodersListCommand(t *testing.T) {
	assert.Equal(t, "ffmpeg -hide_banner -encoders", BuildEncodersListCommand())
}

func TestBuildEncodeCommand(t *testing.T) {
	tests := []struct {
		name   string
		params EncodeParams
		want   string
	}{
		{
			name:   "vp9 defaults",
			params: EncodeParams{Width: 640, Height: 480, FPS: 30, Encoder: "libvpx-vp9", Bitrate: 25000},
			want: "ffmpeg -hide_banner -nostdin -loglevel level+warning -f rawvideo -pix_fmt yuv420p -s 640x480 -framerate 30 -i pipe:0" +
				" -c:v libvpx-vp9 -b:v 25000k -f ivf pipe:1",
		},
		{
			name: "vp8 with options",
			params: EncodeParams{
				Width: 2, Height: 2, Encoder: "libvpx", Bitrate: 500, Threads: 4, LogLevel: "info",
				Options: []OptionType{OptionRowMT, OptionNoAltRef, OptionNoAltRef},
			},
			want: "ffmpeg -hide_banner -nostdin -loglevel level+info -f rawvideo -pix_fmt yuv420p -s 2x2 -i pipe:0" +
				" -c:v libvpx -b:v 500k -threads 4 -auto-alt-ref 0 -lag-in-frames 0 -f ivf pipe:1",
		},
		{
			name: "vp9 row-mt",
			params: EncodeParams{
				Width: 4, Height: 4, FPS: 25, Encoder: "libvpx-vp9", Bitrate: 1000,
				Options: []OptionType{OptionRowMT, OptionRealtime},
			},
			want: "ffmpeg -hide_banner -nostdin -loglevel level+warning -f rawvideo -pix_fmt yuv420p -s 4x4 -framerate 25 -i pipe:0" +
				" -c:v libvpx-vp9 -b:v 1000k -row-mt 1 -deadline realtime -cpu-used 8 -f ivf pipe:1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BuildEncodeCommand(&tt.params)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildEncodeCommandErrors(t *testing.T) {
	_, err := BuildEncodeCommand(&EncodeParams{Width: 0, Height: 2, Encoder: "libvpx"})
	assert.Error(t, err)

	_, err = BuildEncodeCommand(&EncodeParams{Width: 2, Height: 2})
	assert.Error(t, err)
}

func TestParseOption(t *testing.T) {
	opt, err := ParseOption(" Row_MT ")
	require.NoError(t, err)
	assert.Equal(t, OptionRowMT, opt)

	_, err = ParseOption("turbo")
	assert.Error(t, err)
}

func TestApplyOptionsSkipsUnknown(t *testing.T) {
	var b strings.Builder
	applied := ApplyOptionsToCommand([]OptionType{"bogus", OptionRealtime}, "libvpx", &b)
	assert.Equal(t, []OptionType{OptionRealtime}, applied)
	assert.Equal(t, " -deadline realtime -cpu-used 8", b.String())
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantLevel string
		wantMsg   string
	}{
		{"simple warning", "[warning] deprecated option", "warning", "deprecated option"},
		{"simple error", "[error] failed to open file", "error", "failed to open file"},
		{
			"component prefix with warning",
			"[libvpx-vp9 @ 0x7f673c439fc0] [warning] v1.13.1",
			"warning",
			"[libvpx-vp9 @ 0x7f673c439fc0] v1.13.1",
		},
		{
			"component prefix without level",
			"[rawvideo @ 0x55f4a8c00000] frame=100",
			"info",
			"[rawvideo @ 0x55f4a8c00000] frame=100",
		},
		{
			"component prefix with unknown tag",
			"[ivf @ 0x1] [pass 1] done",
			"info",
			"[ivf @ 0x1] [pass 1] done",
		},
		{"level with empty message", "[debug] ", "debug", ""},
		{"empty brackets", "[] text", "info", "[] text"},
		{"unterminated bracket", "[error message", "info", "[error message"},
		{"no prefix", "frame=100 fps=30", "info", "frame=100 fps=30"},
		{"empty line", "", "info", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, msg := ParseLogLevel(tt.input)
			assert.Equal(t, tt.wantLevel, level)
			assert.Equal(t, tt.wantMsg, msg)
		})
	}
}

func TestBuildTestEncodeCommand(t *testing.T) {
	got := BuildTestEncodeCommand("libvpx-vp9", "320x240", "/tmp/out.webm")
	want := "ffmpeg -hide_banner -nostdin -loglevel level+error -f lavfi -i testsrc2=duration=1:size=320x240:rate=30" +
		" -t 1 -c:v libvpx-vp9 -b:v 1000k -deadline realtime -cpu-used 8 -y /tmp/out.webm"
	if got != want {
		t.Errorf("BuildTestEncodeCommand() =\n%q\nwant\n%q", got, want)
	}
}
