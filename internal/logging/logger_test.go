package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModuleLevelOverride(t *testing.T) {
	p := New(Config{
		Level:  "info",
		Format: "text",
		Modules: map[string]string{
			"pipeline": "debug",
			"ffmpeg":   "warn",
		},
		Output: &bytes.Buffer{},
	})

	tests := []struct {
		module    string
		wantDebug bool
		wantInfo  bool
		wantWarn  bool
	}{
		{"pipeline", true, true, true},
		{"ffmpeg", false, false, true},
		{"other", false, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.module, func(t *testing.T) {
			handler := p.Logger(tt.module).Handler()
			ctx := context.Background()

			assert.Equal(t, tt.wantDebug, handler.Enabled(ctx, slog.LevelDebug), "debug")
			assert.Equal(t, tt.wantInfo, handler.Enabled(ctx, slog.LevelInfo), "info")
			assert.Equal(t, tt.wantWarn, handler.Enabled(ctx, slog.LevelWarn), "warn")
		})
	}
}

func TestDefaultLevelIsWarn(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: "bogus", Output: &buf}).Logger("main")

	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "module=main")
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: "debug", Format: "json", Output: &buf}).Logger("pipeline")

	logger.Debug("frame", "index", 3)

	line := strings.TrimSpace(buf.String())
	assert.True(t, strings.HasPrefix(line, "{"), line)
	assert.Contains(t, line, `"module":"pipeline"`)
	assert.Contains(t, line, `"index":3`)
}

func TestLoggerIsCached(t *testing.T) {
	p := New(Config{Output: &bytes.Buffer{}})
	assert.Same(t, p.Logger("a"), p.Logger("a"))
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	p := New(Config{Level: "error", Output: &buf})
	logger := p.Logger("pipeline")

	logger.Info("before")
	assert.True(t, p.SetLevel("pipeline", "info"))
	logger.Info("after")

	assert.NotContains(t, buf.String(), "before")
	assert.Contains(t, buf.String(), "after")
	assert.False(t, p.SetLevel("missing", "info"))
	assert.False(t, p.SetLevel("pipeline", "loud"))
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
		ok   bool
	}{
		{"debug", slog.LevelDebug, true},
		{"TRACE", slog.LevelDebug, true},
		{"Info", slog.LevelInfo, true},
		{"WARN", slog.LevelWarn, true},
		{"warning", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"off", slog.LevelError, true},
		{"nope", 0, false},
	}
	for _, tt := range tests {
		got := parseLevel(tt.in)
		if !tt.ok {
			assert.Nil(t, got, tt.in)
			continue
		}
		if assert.NotNil(t, got, tt.in) {
			assert.Equal(t, tt.want, *got, tt.in)
		}
	}
}

func TestTeeHandlerFansOut(t *testing.T) {
	var a, b bytes.Buffer
	h := newTeeHandler(
		slog.NewTextHandler(&a, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewTextHandler(&b, &slog.HandlerOptions{Level: slog.LevelError}),
	)
	logger := slog.New(h)

	logger.Info("info line")
	logger.Error("error line")

	assert.Contains(t, a.String(), "info line")
	assert.Contains(t, a.String(), "error line")
	assert.NotContains(t, b.String(), "info line")
	assert.Contains(t, b.String(), "error line")
}
