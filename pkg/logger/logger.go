package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup configures the global zerolog logger. Development environments get a
// human readable console writer, everything else logs JSON lines to stdout.
func Setup(env, level string) zerolog.Logger {
	var out io.Writer = os.Stdout
	if env != "production" {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	log.Logger = zerolog.New(out).With().Timestamp().Str("service", "socialhub").Logger()
	// log.Ctx falls back to this when no request logger is attached.
	zerolog.DefaultContextLogger = &log.Logger
	return log.Logger
}
