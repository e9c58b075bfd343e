package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

var (
	log         zerolog.Logger
	development bool
)

func init() {
	log = zerolog.New(os.Stdout).With().Timestamp().Str("service", "partmatch").Logger()
}

// Init configures the process-wide logger. Development gets a console writer and
// debug output, everything else gets JSON lines.
func Init(env string) {
	development = env == "development" || env == "dev"

	var w io.Writer = os.Stdout
	level := zerolog.InfoLevel
	if development {
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		level = zerolog.DebugLevel
	}

	zerolog.TimeFieldFormat = time.RFC3339
	log = zerolog.New(w).Level(level).With().
		Timestamp().
		Str("service", "partmatch").
		Logger()
}

// SetOutput redirects logging, used by tests to silence or capture output.
func SetOutput(w io.Writer) {
	log = log.Output(w)
}

func Get() *zerolog.Logger {
	return &log
}

func Info(format string, v ...interface{}) {
	log.Info().Msgf(format, v...)
}

func Error(format string, v ...interface{}) {
	log.Error().Msgf(format, v...)
}

func Debug(format string, v ...interface{}) {
	if development {
		log.Debug().Msgf(format, v...)
	}
}

func Warn(format string, v ...interface{}) {
	log.Warn().Msgf(format, v...)
}

// WithUser returns a child logger tagged with user_id.
func WithUser(userID string) zerolog.Logger {
	return log.With().Str("user_id", userID).Logger()
}

// WithChat returns a child logger tagged with chat_id and user_id.
func WithChat(chatID, userID string) zerolog.Logger {
	return log.With().Str("chat_id", chatID).Str("user_id", userID).Logger()
}

// BestEffort records the failure of a side effect that must not fail the caller.
func BestEffort(op string, err error, fields map[string]string) {
	ev := log.Warn().Str("op", op).Err(err)
	for k, v := range fields {
		ev = ev.Str(k, v)
	}
	ev.Msg(fmt.Sprintf("%s failed (ignored)", op))
}
