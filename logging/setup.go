package logging

import (
	"io"
	"log/slog"
	"os"
)

type LogLevel string

const (
	LogLevelNone  LogLevel = "none"
	LogLevelInfo  LogLevel = "info"
	LogLevelDebug LogLevel = "debug"
)

var logger *slog.Logger

// Setup installs the process logger. Logs go to stderr so program
// output on stdout stays clean; "none" discards everything.
func Setup(optslevel LogLevel) {
	sink := io.Discard
	if optslevel != LogLevelNone {
		sink = os.Stderr
	}

	level := slog.LevelDebug
	if optslevel == LogLevelInfo {
		level = slog.LevelInfo
	}
	handler := slog.NewTextHandler(sink, &slog.HandlerOptions{
		Level: level,
	})
	logger = slog.New(handler)
}
