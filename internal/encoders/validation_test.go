package encoders

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smazurov/imgtowebm/internal/types"
)

func newFakeValidator(list *EncoderList, failing map[string]bool) *Validator {
	v := NewValidator(nil)
	v.listEncoders = func(context.Context) (*EncoderList, error) { return list, nil }
	v.version = func(context.Context) string { return "7.1" }
	v.testEncode = func(_ context.Context, encoder string) error {
		if failing[encoder] {
			return errors.New("encode failed")
		}
		return nil
	}
	return v
}

func TestValidateEncoders(t *testing.T) {
	list, err := parseEncoderOutput(sampleEncodersOutput)
	require.NoError(t, err)

	results, err := newFakeValidator(list, map[string]bool{"libvpx-vp9": true}).ValidateEncoders(t.Context())
	require.NoError(t, err)

	assert.Equal(t, "7.1", results.FFmpegVersion)
	assert.Equal(t, testResolution, results.TestResolution)
	assert.Equal(t, []string{"libvpx"}, results.VP8.Working)
	assert.Empty(t, results.VP8.Failed)
	assert.Empty(t, results.VP9.Working)
	assert.Equal(t, []string{"libvpx-vp9"}, results.VP9.Failed)
	assert.False(t, AllWorking(results))
}

func TestValidateEncodersNotCompiled(t *testing.T) {
	list := &EncoderList{VideoEncoders: []Encoder{{Type: VideoEncoder, Name: "libvpx"}}}

	results, err := newFakeValidator(list, nil).ValidateEncoders(t.Context())
	require.NoError(t, err)
	assert.Equal(t, []string{"libvpx"}, results.VP8.Working)
	assert.Equal(t, []string{"libvpx-vp9"}, results.VP9.Failed)
}

func TestValidateEncodersListError(t *testing.T) {
	v := NewValidator(nil)
	v.listEncoders = func(context.Context) (*EncoderList, error) { return nil, errors.New("no ffmpeg") }
	_, err := v.ValidateEncoders(t.Context())
	assert.ErrorContains(t, err, "no ffmpeg")
}

func TestSaveAndLoadValidationResults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "validation.toml")
	results := &types.ValidationResults{
		Timestamp:      "2025-01-01T00:00:00Z",
		FFmpegVersion:  "7.1",
		TestResolution: testResolution,
		VP8:            types.CodecValidation{Working: []string{"libvpx"}, Failed: []string{}},
		VP9:            types.CodecValidation{Working: []string{}, Failed: []string{"libvpx-vp9"}},
	}

	require.NoError(t, SaveValidationResults(path, results))
	loaded, err := LoadValidationResults(path)
	require.NoError(t, err)
	assert.Equal(t, results.Timestamp, loaded.Timestamp)
	assert.Equal(t, results.FFmpegVersion, loaded.FFmpegVersion)
	assert.Equal(t, []string{"libvpx"}, loaded.VP8.Working)
	assert.Empty(t, loaded.VP8.Failed)
	assert.Equal(t, []string{"libvpx-vp9"}, loaded.VP9.Failed)
}

func TestPrintValidationSummary(t *testing.T) {
	var buf bytes.Buffer
	PrintValidationSummary(&buf, &types.ValidationResults{
		FFmpegVersion: "7.1",
		VP8:           types.CodecValidation{Working: []string{"libvpx"}},
		VP9:           types.CodecValidation{Failed: []string{"libvpx-vp9"}},
	})

	out := buf.String()
	assert.Contains(t, out, "VP8 encoders working: 1")
	assert.Contains(t, out, "Working: libvpx")
	assert.Contains(t, out, "VP9 encoders working: 0")
	assert.Contains(t, out, "Failed: libvpx-vp9")
}
