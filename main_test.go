package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smazurov/imgtowebm/internal/ffmpeg"
	"github.com/smazurov/imgtowebm/internal/types"
)

func defaultOptions() *Options {
	return &Options{
		SourceDirectory:  ".",
		OutputFile:       "output.webm",
		Verbose:          "warn",
		Bitrate:          25000,
		Fps:              30,
		Codec:            "VP9",
		ScalingAlgorithm: "nearest",
	}
}

func TestResolveSettingsDefaults(t *testing.T) {
	settings, err := resolveSettings(defaultOptions(), nil)
	require.NoError(t, err)
	assert.Equal(t, types.DefaultSettings(), settings)
}

func TestResolveSettingsPositionalSource(t *testing.T) {
	opts := defaultOptions()
	opts.SourceDirectory = "/from/config"
	opts.Codec = "vp8"
	opts.ScalingAlgorithm = "CatmullRom"
	opts.Width = 320
	opts.IgnoreAspectRatio = true

	settings, err := resolveSettings(opts, []string{"/frames"})
	require.NoError(t, err)
	assert.Equal(t, "/frames", settings.SourceDirectory)
	assert.Equal(t, types.CodecVP8, settings.Video.Codec)
	assert.Equal(t, types.ScaleCatmullRom, settings.Video.ScalingAlgorithm)
	assert.Equal(t, 320, settings.Video.Width)
	assert.Equal(t, 0, settings.Video.Height)
	assert.True(t, settings.Video.IgnoreAspectRatio)
}

func TestResolveSettingsErrors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Options)
	}{
		{"unknown codec", func(o *Options) { o.Codec = "h264" }},
		{"unknown algorithm", func(o *Options) { o.ScalingAlgorithm = "bicubic" }},
		{"zero fps", func(o *Options) { o.Fps = 0 }},
		{"negative bitrate", func(o *Options) { o.Bitrate = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := defaultOptions()
			tt.modify(opts)
			_, err := resolveSettings(opts, nil)
			assert.Error(t, err)
		})
	}

	_, err := resolveSettings(nil, nil)
	assert.Error(t, err)
}

func TestParseEncoderOptions(t *testing.T) {
	options, err := parseEncoderOptions("row_mt, Realtime,,")
	require.NoError(t, err)
	assert.Equal(t, []ffmpeg.OptionType{ffmpeg.OptionRowMT, ffmpeg.OptionRealtime}, options)

	options, err = parseEncoderOptions("")
	require.NoError(t, err)
	assert.Empty(t, options)

	_, err = parseEncoderOptions("row_mt,turbo")
	assert.Error(t, err)
}
