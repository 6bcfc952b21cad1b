package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type Logger interface {
	Infof(format string, v ...interface{})
	Warnf(format string, v ...interface{})
	Errorf(format string, v ...interface{})
	Fatalf(format string, v ...interface{})
	WithModule(name string) Logger
}

// NewLogger builds a logger writing to stdout, or appending to logFile when
// set. Unknown levels fall back to info.
func NewLogger(level, logFile string) Logger {
	var w io.Writer = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}
	if logFile != "" {
		if f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
			w = f
		}
	}

	zl := zerolog.New(w).Level(parseLevel(level)).With().Timestamp().Logger()
	return &zeroLogger{zl: zl}
}

type zeroLogger struct {
	zl zerolog.Logger
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func (l *zeroLogger) Infof(format string, v ...interface{}) {
	l.zl.Info().Msgf(format, v...)
}

func (l *zeroLogger) Warnf(format string, v ...interface{}) {
	l.zl.Warn().Msgf(format, v...)
}

func (l *zeroLogger) Errorf(format string, v ...interface{}) {
	l.zl.Error().Msgf(format, v...)
}

func (l *zeroLogger) Fatalf(format string, v ...interface{}) {
	l.zl.Fatal().Msgf(format, v...)
}

func (l *zeroLogger) WithModule(name string) Logger {
	return &zeroLogger{zl: l.zl.With().Str("module", name).Logger()}
}
