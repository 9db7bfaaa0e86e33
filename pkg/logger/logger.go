package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New returns the process logger. Development runs log at debug level.
func New(env string) zerolog.Logger {
	return NewWithWriter(env, os.Stdout)
}

func NewWithWriter(env string, w io.Writer) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339
	l := zerolog.New(w).With().Timestamp().Str("service", "feedback-portal").Logger()
	if env == "production" {
		return l.Level(zerolog.InfoLevel)
	}
	return l.Level(zerolog.DebugLevel)
}
