package infra

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm/logger"
)

// SetupLogger configures the global zerolog logger: pretty console in dev, JSON in production.
// An unknown level falls back to info.
func SetupLogger(env, level string, out io.Writer) {
	if out == nil {
		out = os.Stderr
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	if env == "production" {
		log.Logger = zerolog.New(out).With().Timestamp().Logger()
		return
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339})
}

// GormLogLevel keeps SQL logging quiet in production.
func GormLogLevel(env string) logger.LogLevel {
	if env == "production" {
		return logger.Silent
	}
	return logger.Warn
}
