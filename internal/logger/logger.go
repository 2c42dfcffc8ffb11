package logger

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"codeberg.org/mutker/lhmoled/internal/errors"
	"github.com/rs/zerolog"
)

const (
	logDirPerm  = 0o755
	logFilePerm = 0o644
)

var (
	log        = zerolog.Nop()
	logFile    *os.File
	consoleOut io.Writer = os.Stdout
)

type LogLevel int8

const (
	DebugLevel LogLevel = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

type LogEvent struct {
	*zerolog.Event
}

func (e *LogEvent) Msg(msg string) {
	e.Event.Msg(msg)
}

func (e *LogEvent) Send() {
	e.Event.Send()
}

// ParseLevel maps a configured level name onto a LogLevel.
func ParseLevel(name string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return DebugLevel, nil
	case "info", "":
		return InfoLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "error":
		return ErrorLevel, nil
	default:
		return InfoLevel, errors.New().WithData(errors.ErrInvalidLogLevel, name)
	}
}

// Init initializes the logger. When path is non-empty every event is also
// appended to that file. A file that cannot be opened is logged as a
// warning and the console output stays active; only an invalid level is
// returned as an error.
func Init(level string, isService bool, path string) error {
	output := zerolog.ConsoleWriter{
		Out:        consoleOut,
		TimeFormat: time.RFC3339,
	}

	if isService {
		output.TimeFormat = ""
		output.FormatTimestamp = func(_ interface{}) string {
			return ""
		}
	}

	var (
		writer  io.Writer = output
		fileErr error
	)
	if path != "" {
		f, err := openLogFile(path)
		if err != nil {
			fileErr = err
		} else {
			Close()
			logFile = f
			writer = zerolog.MultiLevelWriter(output, f)
		}
	}

	log = zerolog.New(writer).With().Timestamp().Logger()

	lvl, err := ParseLevel(level)
	SetLogLevel(lvl)

	if fileErr != nil {
		Warn().
			Str("error_code", string(errors.CodeOf(fileErr))).
			Err(fileErr).
			Msg("Logging to console only")
	}

	return err
}

func openLogFile(path string) (*os.File, error) {
	errFactory := errors.New()

	if err := os.MkdirAll(filepath.Dir(path), logDirPerm); err != nil {
		return nil, errFactory.Wrap(errors.ErrOpenLogFile, err).WithData(path)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePerm)
	if err != nil {
		return nil, errFactory.Wrap(errors.ErrOpenLogFile, err).WithData(path)
	}

	return f, nil
}

// SetOutput replaces the log sink with a plain JSON writer.
func SetOutput(w io.Writer) {
	log = zerolog.New(w).With().Timestamp().Logger()
}

// Close releases the log file, if any.
func Close() {
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
}

// SetLogLevel sets the global log level
func SetLogLevel(level LogLevel) {
	zerolog.SetGlobalLevel(zerolog.Level(level))
}

// Debug logs a debug message
func Debug() *LogEvent {
	return &LogEvent{log.Debug()}
}

// Info logs an info message
func Info() *LogEvent {
	return &LogEvent{log.Info()}
}

// Warn logs a warning message
func Warn() *LogEvent {
	return &LogEvent{log.Warn()}
}

// Error logs an error message
func Error() *LogEvent {
	return &LogEvent{log.Error()}
}

// ErrorWithCode logs an error message with a specific error code
func ErrorWithCode(err errors.Error) *LogEvent {
	return &LogEvent{log.Error().
		Str("error_code", string(err.Code())).
		Str("error_message", err.Error()).
		AnErr("error", err.Unwrap())}
}
