package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	defaultLogger zerolog.Logger
	once          sync.Once
)

// Options controls logger construction.
type Options struct {
	Level  string    // debug, info, warn, error
	Format string    // json or console
	Output io.Writer // defaults to os.Stderr
}

// Init initializes the default logger with a JSON writer on os.Stderr.
// It ensures that the logger is initialized only once.
func Init() {
	InitWithOptions(Options{Level: "info", Format: "json"})
}

// InitWithOptions initializes the default logger once using opts.
func InitWithOptions(opts Options) {
	once.Do(func() {
		defaultLogger = New(opts)
	})
}

// New builds a standalone logger; used by Init and by tests that capture output.
func New(opts Options) zerolog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	if strings.EqualFold(opts.Format, "console") {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	level, err := zerolog.ParseLevel(strings.ToLower(opts.Level))
	if err != nil || opts.Level == "" {
		level = zerolog.InfoLevel
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// Get returns the initialized default logger.
// It calls Init() to ensure the logger is ready before returning it.
func Get() *zerolog.Logger {
	Init()
	return &defaultLogger
}

// Info logs an informational message with alternating key/value args.
func Info(msg string, args ...any) {
	Get().Info().Fields(args).Msg(msg)
}

// Warn logs a warning message.
func Warn(msg string, args ...any) {
	Get().Warn().Fields(args).Msg(msg)
}

// Error logs an error message; err may be nil.
func Error(msg string, err error, args ...any) {
	Get().Error().Err(err).Fields(args).Msg(msg)
}

// Debug logs a debug message.
func Debug(msg string, args ...any) {
	Get().Debug().Fields(args).Msg(msg)
}
