// Package logging builds the application logger. New also installs the
// pkg/errors stack marshaler as zerolog's process-wide ErrorStackMarshaler.
package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/saltyorg/invtrack/internal/config"
)

const (
	DefaultLogFilePath = "inventory_manager.log"
	DefaultMaxSizeMB   = 50
	DefaultMaxBackups  = 5
	DefaultMaxAgeDays  = 30
	DefaultCompress    = true

	timeFormat = "2006-01-02 15:04:05"
)

// Options configures the logger returned by New.
type Options struct {
	// Verbosity selects the console level: 0 info, 1 debug, 2+ trace.
	Verbosity int

	// Console receives human-readable output. Defaults to os.Stderr.
	Console io.Writer

	// NoColor disables ANSI colors on the console writer.
	NoColor bool

	// FilePath is the rotating log file. The file always records debug and
	// above regardless of Verbosity. Empty disables file output.
	FilePath string

	// Loader supplies rotation settings; nil uses the defaults.
	Loader *config.Loader
}

// New builds the application logger: a console writer at the requested level
// plus an optional rotating file.
func New(opts Options) zerolog.Logger {
	// zerolog reads the stack marshaler from a package variable; without it
	// .Stack() on error records writes nothing.
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	consoleLevel := levelFor(opts.Verbosity)

	console := opts.Console
	if console == nil {
		console = os.Stderr
	}
	consoleOutput := zerolog.ConsoleWriter{Out: console, TimeFormat: timeFormat, NoColor: opts.NoColor}

	writers := []io.Writer{levelFilter{w: consoleOutput, min: consoleLevel}}
	loggerLevel := consoleLevel

	if opts.FilePath != "" {
		if err := ensureLogDir(opts.FilePath); err != nil {
			logger := zerolog.New(consoleOutput).Level(consoleLevel).With().Timestamp().Logger()
			logger.Error().Err(err).Str("path", opts.FilePath).Msg("Failed to prepare log directory; logging to console only")
			return logger
		}

		fileConsole := zerolog.ConsoleWriter{
			Out:        newRotatingFile(opts.FilePath, opts.Loader),
			TimeFormat: timeFormat,
			NoColor:    true,
		}
		writers = append(writers, levelFilter{w: fileConsole, min: zerolog.DebugLevel})
		if loggerLevel > zerolog.DebugLevel {
			loggerLevel = zerolog.DebugLevel
		}
	}

	multi := zerolog.MultiLevelWriter(writers...)
	return zerolog.New(multi).Level(loggerLevel).With().Timestamp().Logger()
}

func levelFor(verbosity int) zerolog.Level {
	switch {
	case verbosity <= 0:
		return zerolog.InfoLevel
	case verbosity == 1:
		return zerolog.DebugLevel
	default:
		return zerolog.TraceLevel
	}
}

func newRotatingFile(path string, loader *config.Loader) *lumberjack.Logger {
	maxSize := DefaultMaxSizeMB
	maxBackups := DefaultMaxBackups
	maxAgeDays := DefaultMaxAgeDays
	compress := DefaultCompress

	if loader != nil {
		if val := loader.Int("log.max_size_mb", DefaultMaxSizeMB); val > 0 {
			maxSize = val
		}
		if val := loader.Int("log.max_backups", DefaultMaxBackups); val >= 0 {
			maxBackups = val
		}
		if val := loader.Int("log.max_age_days", DefaultMaxAgeDays); val >= 0 {
			maxAgeDays = val
		}
		compress = loader.Bool("log.compress", DefaultCompress)
	}

	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSize,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
		Compress:   compress,
	}
}

// levelFilter drops records below min so each output keeps its own level.
type levelFilter struct {
	w   io.Writer
	min zerolog.Level
}

func (f levelFilter) Write(p []byte) (int, error) {
	return f.w.Write(p)
}

func (f levelFilter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level < f.min {
		return len(p), nil
	}
	return f.w.Write(p)
}

// FilePathFor returns a log file path that lives alongside the database file.
func FilePathFor(dbPath string) string {
	if dbPath == "" {
		return DefaultLogFilePath
	}
	absDBPath, err := filepath.Abs(dbPath)
	if err != nil {
		return filepath.Join(filepath.Dir(dbPath), DefaultLogFilePath)
	}
	return filepath.Join(filepath.Dir(absDBPath), DefaultLogFilePath)
}

func ensureLogDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
