package log

import (
	"context"
	"log/slog"
	"sync"
)

var (
	providerMu      sync.RWMutex
	currentProvider LoggerProvider = newSlogProvider()
)

// GetLogger returns the default logger from the active provider.
func GetLogger() Logger {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return currentProvider.GetLogger()
}

// GetLoggerWithName returns a logger tagged with a component name, e.g.
// "cleango.estimation" or "cleango.pruning".
func GetLoggerWithName(name string) Logger {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return currentProvider.GetLoggerWithName(name)
}

// SetLoggerProvider replaces the active provider. Tests install a
// TestLoggerProvider here to capture output.
func SetLoggerProvider(p LoggerProvider) {
	providerMu.Lock()
	defer providerMu.Unlock()
	currentProvider = p
}

// slogProvider hands out loggers backed by the process-wide slog default,
// so SetupLogger configures everything obtained through GetLogger. SetLevel
// applies a floor on top of the underlying handler's own level.
type slogProvider struct {
	mu  sync.RWMutex
	min Level
}

func newSlogProvider() *slogProvider {
	return &slogProvider{min: LevelDebug}
}

func (p *slogProvider) GetLogger() Logger {
	return &slogLogger{logger: slog.Default(), provider: p}
}

func (p *slogProvider) GetLoggerWithName(name string) Logger {
	return &slogLogger{logger: slog.Default().With(ComponentKey, name), provider: p}
}

func (p *slogProvider) SetLevel(level Level) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.min = level
}

func (p *slogProvider) minLevel() Level {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.min
}

// slogLogger adapts a *slog.Logger to the Logger interface.
type slogLogger struct {
	logger   *slog.Logger
	provider *slogProvider
}

func (l *slogLogger) Debug(msg string, fields ...any) {
	if l.allows(LevelDebug) {
		l.logger.Debug(msg, fields...)
	}
}

func (l *slogLogger) Info(msg string, fields ...any) {
	if l.allows(LevelInfo) {
		l.logger.Info(msg, fields...)
	}
}

func (l *slogLogger) Warn(msg string, fields ...any) {
	if l.allows(LevelWarn) {
		l.logger.Warn(msg, fields...)
	}
}

func (l *slogLogger) Error(msg string, fields ...any) {
	if !l.allows(LevelError) {
		return
	}
	// A leading error value becomes the structured error attribute so the
	// ErrFmtHandler can surface its stacktrace.
	if len(fields) > 0 {
		if err, ok := fields[0].(error); ok {
			args := append([]any{ErrAttr(err)}, fields[1:]...)
			l.logger.Error(msg, args...)
			return
		}
	}
	l.logger.Error(msg, fields...)
}

func (l *slogLogger) With(fields ...any) Logger {
	return &slogLogger{logger: l.logger.With(fields...), provider: l.provider}
}

func (l *slogLogger) Enabled(ctx context.Context, level Level) bool {
	return l.allows(level) && l.logger.Enabled(ctx, slog.Level(level))
}

func (l *slogLogger) allows(level Level) bool {
	return l.provider == nil || level >= l.provider.minLevel()
}
