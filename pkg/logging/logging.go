package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Options configures the logger built once per invocation.
type Options struct {
	// Verbosity maps -v counts onto levels: 0 warn, 1 info, 2 debug, 3+ trace
	Verbosity int
	// Console receives human-readable output. Defaults to stderr.
	Console io.Writer
	// LogFile, when set, also receives JSON lines in append mode
	LogFile string
	NoColor bool
}

// Level returns the zerolog level for a verbosity count
func Level(verbosity int) zerolog.Level {
	switch verbosity {
	case 0:
		return zerolog.WarnLevel
	case 1:
		return zerolog.InfoLevel
	case 2:
		return zerolog.DebugLevel
	default:
		return zerolog.TraceLevel
	}
}

// New builds the logger that is then passed explicitly to every component.
// The returned close function releases the log file, if one was opened.
func New(opts Options) (zerolog.Logger, func() error) {
	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	writers := []io.Writer{zerolog.ConsoleWriter{
		Out:        console,
		TimeFormat: time.Kitchen,
		NoColor:    opts.NoColor,
	}}

	closer := func() error { return nil }
	var fileErr error
	if opts.LogFile != "" {
		f, err := openLogFile(opts.LogFile)
		if err == nil {
			writers = append(writers, f)
			closer = f.Close
		}
		fileErr = err
	}

	ctx := zerolog.New(io.MultiWriter(writers...)).Level(Level(opts.Verbosity)).With().Timestamp()
	if opts.Verbosity >= 2 {
		ctx = ctx.Caller()
	}
	logger := ctx.Logger()

	if fileErr != nil {
		logger.Warn().Err(fileErr).Str("path", opts.LogFile).Msg("Failed to create log file, logging to console only")
	}
	logger.Debug().Int("verbosity", opts.Verbosity).Str("logFile", opts.LogFile).Msg("Logger initialized")

	return logger, closer
}

// Nop returns a disabled logger for callers that do not log
func Nop() zerolog.Logger {
	return zerolog.Nop()
}

// Component returns a contextualized logger with the given name
func Component(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().Str("component", name).Logger()
}

// WithRun tags every line of one reconciliation pass with a fresh run id
func WithRun(l zerolog.Logger) (zerolog.Logger, string) {
	id := uuid.NewString()
	return l.With().Str("run_id", id).Logger(), id
}

// WithFields returns a logger with additional fields
func WithFields(l zerolog.Logger, fields map[string]interface{}) zerolog.Logger {
	return l.With().Fields(fields).Logger()
}

func openLogFile(logPath string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return file, nil
}

// LogCommand logs an external command execution with its arguments
func LogCommand(logger zerolog.Logger, cmd string, args []string) {
	logger.Debug().
		Str("command", cmd).
		Strs("args", args).
		Msg("Executing command")
}

// LogOperationStart logs the start of an operation and returns a function to log its completion
func LogOperationStart(logger zerolog.Logger, operation string) func() {
	start := time.Now()
	logger.Debug().
		Str("operation", operation).
		Msg("Operation started")

	return func() {
		logger.Debug().
			Str("operation", operation).
			Dur("duration", time.Since(start)).
			Msg("Operation completed")
	}
}
