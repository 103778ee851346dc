package log

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New jarayon roli va pid bilan belgilangan konsol zerolog logger
func New(level, role string) *zerolog.Logger {
	return NewWithWriter(os.Stdout, level, role)
}

// NewWithWriter New, lekin chiqish joyini chaqiruvchi beradi
func NewWithWriter(w io.Writer, level, role string) *zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
	}

	ctx := zerolog.New(output).Level(parseLevel(level)).With().Timestamp().Int("pid", os.Getpid())
	if role != "" {
		ctx = ctx.Str("role", role)
	}
	logger := ctx.Logger()
	return &logger
}

// Nop hech narsa yozmaydigan logger (testlar uchun)
func Nop() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
