package logger

import (
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Logger emits structured JSON logs. Every entry carries the service name,
// hostname, an action tag and the request id it belongs to.
type Logger struct {
	log zerolog.Logger
}

// New creates a logger for the given service mode.
func New(service string) *Logger {
	hostname, _ := os.Hostname()

	zl := zerolog.New(os.Stdout).With().
		Timestamp().
		Str("service", service).
		Str("hostname", hostname).
		Logger().Level(zerolog.DebugLevel)

	return &Logger{log: zl}
}

// Info logs an informational event.
func (l *Logger) Info(action, requestID, message string) {
	l.log.Info().Str("action", action).Str("request_id", requestID).Msg(message)
}

// Debug logs a diagnostic event.
func (l *Logger) Debug(action, requestID, message string) {
	l.log.Debug().Str("action", action).Str("request_id", requestID).Msg(message)
}

// Error logs a failure with its cause.
func (l *Logger) Error(action, requestID, message string, err error) {
	l.log.Error().Str("action", action).Str("request_id", requestID).Err(err).Msg(message)
}

// GenerateRequestID returns a fresh request correlation id.
func GenerateRequestID() string {
	return uuid.NewString()
}
