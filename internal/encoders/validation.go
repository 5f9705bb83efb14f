package encoders

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/smazurov/imgtowebm/internal/ffmpeg"
	"github.com/smazurov/imgtowebm/internal/logging"
	"github.com/smazurov/imgtowebm/internal/types"
)

const (
	testResolution = "320x240"
	testTimeout    = 10 * time.Second
)

// Validator checks which VP8/VP9 encoders work with the local ffmpeg.
type Validator struct {
	logger logging.Logger

	// Overridable for tests.
	listEncoders func(ctx context.Context) (*EncoderList, error)
	testEncode   func(ctx context.Context, encoder string) error
	version      func(ctx context.Context) string
}

// NewValidator creates a Validator running real ffmpeg commands.
func NewValidator(logger logging.Logger) *Validator {
	if logger == nil {
		logger = logging.Discard()
	}
	v := &Validator{
		logger:       logger,
		listEncoders: GetFFmpegEncoders,
		version:      FFmpegVersion,
	}
	v.testEncode = v.runTestEncode
	return v
}

// ValidateEncoders tests the ffmpeg encoder of every supported codec.
func (v *Validator) ValidateEncoders(ctx context.Context) (*types.ValidationResults, error) {
	list, err := v.listEncoders(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing encoders: %w", err)
	}

	results := &types.ValidationResults{
		Timestamp:      time.Now().Format(time.RFC3339),
		FFmpegVersion:  v.version(ctx),
		TestResolution: testResolution,
		VP8:            types.CodecValidation{Working: []string{}, Failed: []string{}},
		VP9:            types.CodecValidation{Working: []string{}, Failed: []string{}},
	}

	for _, codec := range []types.Codec{types.CodecVP8, types.CodecVP9} {
		name, _ := FFmpegEncoderName(codec)
		bucket := results.For(codec)

		if !list.HasVideoEncoder(name) {
			v.logger.Warn("Encoder not compiled into ffmpeg", "encoder", name)
			bucket.Failed = append(bucket.Failed, name)
			continue
		}

		v.logger.Info("Testing encoder", "encoder", name)
		if err := v.testEncode(ctx, name); err != nil {
			v.logger.Warn("Encoder failed", "encoder", name, "error", err)
			bucket.Failed = append(bucket.Failed, name)
			continue
		}
		v.logger.Info("Encoder working", "encoder", name)
		bucket.Working = append(bucket.Working, name)
	}

	return results, nil
}

// runTestEncode encodes a second of ffmpeg's test pattern with encoder.
func (v *Validator) runTestEncode(ctx context.Context, encoder string) error {
	tempDir, err := os.MkdirTemp("", "encoder_validate")
	if err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(tempDir)

	testFile := filepath.Join(tempDir, fmt.Sprintf("test_%s.webm", encoder))
	command := ffmpeg.BuildTestEncodeCommand(encoder, testResolution, testFile)
	v.logger.Debug("Executing FFmpeg command", "command", command)

	ctx, cancel := context.WithTimeout(ctx, testTimeout)
	defer cancel()

	args := strings.Fields(command)
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("validation command timed out: %w", ctx.Err())
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%w: %s", err, msg)
		}
		return err
	}

	if info, statErr := os.Stat(testFile); statErr == nil && info.Size() > 1000 {
		return nil
	}
	return fmt.Errorf("output file missing or too small")
}

// SaveValidationResults writes results as TOML to path.
func SaveValidationResults(path string, results *types.ValidationResults) error {
	data, err := toml.Marshal(results)
	if err != nil {
		return fmt.Errorf("failed to encode validation results: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write validation results: %w", err)
	}
	return nil
}

// LoadValidationResults reads results written by SaveValidationResults.
func LoadValidationResults(path string) (*types.ValidationResults, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var results types.ValidationResults
	if err := toml.Unmarshal(data, &results); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &results, nil
}

// PrintValidationSummary prints a summary of validation results
func PrintValidationSummary(w io.Writer, results *types.ValidationResults) {
	fmt.Fprintln(w, "=== VALIDATION SUMMARY ===")
	fmt.Fprintf(w, "FFmpeg version: %s\n", results.FFmpegVersion)

	for _, codec := range []types.Codec{types.CodecVP8, types.CodecVP9} {
		bucket := results.For(codec)
		fmt.Fprintf(w, "%s encoders working: %d\n", codec, len(bucket.Working))
		if len(bucket.Working) > 0 {
			fmt.Fprintf(w, "  Working: %s\n", strings.Join(bucket.Working, ", "))
		}
		if len(bucket.Failed) > 0 {
			fmt.Fprintf(w, "  Failed: %s\n", strings.Join(bucket.Failed, ", "))
		}
	}
}

// AllWorking reports whether every supported codec has a working encoder.
func AllWorking(results *types.ValidationResults) bool {
	return len(results.VP8.Working) > 0 && len(results.VP9.Working) > 0
}
