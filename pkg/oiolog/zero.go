package oiolog

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

var (
	Zero = NewZeroLogger("", "info", false)

	// logFile is the file the loggers built here currently append to.
	logFile *os.File
)

// NewZeroLogger builds a JSON logger writing to stdout, or appending to
// filepath when it is set and can be opened. The file then replaces the
// previously opened log file, which is closed. pretty switches to the
// human readable console writer.
func NewZeroLogger(filepath string, level string, pretty bool) *zerolog.Logger {
	if filepath == "" {
		return newLogger(os.Stdout, level, pretty)
	}
	f, err := openLogFile(filepath)
	if err != nil {
		return newLogger(os.Stdout, level, pretty)
	}
	setLogFile(f)
	return newLogger(f, level, pretty)
}

// ReloadLogger points Zero at a new destination. When filepath cannot be
// opened the current output is kept.
func ReloadLogger(filepath string, level string, pretty bool) {
	if filepath == "" {
		Zero = newLogger(os.Stdout, level, pretty)
		setLogFile(nil)
		return
	}
	f, err := openLogFile(filepath)
	if err != nil {
		Zero.Error().Err(err).Str("path", filepath).Msg("failed to open log file, keeping current output")
		return
	}
	Zero = newLogger(f, level, pretty)
	setLogFile(f)
}

func openLogFile(filepath string) (*os.File, error) {
	return os.OpenFile(filepath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
}

func setLogFile(f *os.File) {
	old := logFile
	logFile = f
	if old != nil && old != f {
		_ = old.Close()
	}
}

func newLogger(out *os.File, level string, pretty bool) *zerolog.Logger {
	var w io.Writer = out
	if pretty {
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339, NoColor: out != os.Stdout}
	}
	logger := zerolog.New(w).With().Timestamp().Logger().Level(parseLevel(level))
	return &logger
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}
