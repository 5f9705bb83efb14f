package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Logger is a duck-typed interface satisfied by *slog.Logger.
// Use this interface instead of *slog.Logger to decouple from the concrete type.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Config represents logging configuration.
type Config struct {
	Level   string            `toml:"level"`
	Format  string            `toml:"format"`
	Journal bool              `toml:"journal"`
	Modules map[string]string `toml:"modules"`

	// Output defaults to os.Stderr.
	Output io.Writer `toml:"-"`
}

// Provider hands out per-module loggers built from one Config.
// It is created once at startup and passed to whoever needs a logger.
type Provider struct {
	config    Config
	level     slog.Level
	mu        sync.Mutex
	loggers   map[string]*slog.Logger
	levelVars map[string]*slog.LevelVar
}

// New creates a Provider. Unknown level strings fall back to warn.
func New(config Config) *Provider {
	if config.Output == nil {
		config.Output = os.Stderr
	}
	level := slog.LevelWarn
	if parsed := parseLevel(config.Level); parsed != nil {
		level = *parsed
	}
	return &Provider{
		config:    config,
		level:     level,
		loggers:   make(map[string]*slog.Logger),
		levelVars: make(map[string]*slog.LevelVar),
	}
}

// Logger returns the logger for module, creating it on first use.
func (p *Provider) Logger(module string) *slog.Logger {
	p.mu.Lock()
	defer p.mu.Unlock()

	if logger, exists := p.loggers[module]; exists {
		return logger
	}

	levelVar := &slog.LevelVar{}
	levelVar.Set(p.level)
	if levelStr, exists := p.config.Modules[module]; exists {
		if parsed := parseLevel(levelStr); parsed != nil {
			levelVar.Set(*parsed)
		}
	}

	logger := slog.New(p.createHandler(levelVar)).With("module", module)
	p.loggers[module] = logger
	p.levelVars[module] = levelVar
	return logger
}

// SetLevel changes the level of an already created module logger.
func (p *Provider) SetLevel(module, level string) bool {
	parsed := parseLevel(level)
	if parsed == nil {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	levelVar, ok := p.levelVars[module]
	if !ok {
		return false
	}
	levelVar.Set(*parsed)
	return true
}

// createHandler builds the handler chain: the configured writer, plus the
// systemd journal when requested and available.
func (p *Provider) createHandler(level slog.Leveler) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}

	var out slog.Handler
	if p.config.Format == "json" {
		out = slog.NewJSONHandler(p.config.Output, opts)
	} else {
		out = slog.NewTextHandler(p.config.Output, opts)
	}

	if p.config.Journal && IsJournalAvailable() {
		return newTeeHandler(out, NewJournalHandler(level))
	}
	return out
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// parseLevel converts string level to slog.Level.
func parseLevel(level string) *slog.Level {
	switch strings.ToLower(level) {
	case "trace", "debug":
		l := slog.LevelDebug
		return &l
	case "info":
		l := slog.LevelInfo
		return &l
	case "warn", "warning":
		l := slog.LevelWarn
		return &l
	case "error", "off":
		l := slog.LevelError
		return &l
	default:
		return nil
	}
}
