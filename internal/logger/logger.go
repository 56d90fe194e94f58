package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config holds logger configuration
type Config struct {
	Level      string
	Format     string
	Output     string
	Rotation   bool
	MaxSize    int
	MaxBackups int
	MaxAge     int
}

// Init initializes the global logger based on configuration
func Init(cfg *Config) error {
	writer, err := newWriter(cfg)
	if err != nil {
		return err
	}

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339Nano

	log.Logger = zerolog.New(writer).With().
		Timestamp().
		Str("service", "objstore").
		Logger()

	return nil
}

// newWriter builds the output for cfg: stdout, stderr, a plain file or a
// rotated file, optionally wrapped in a console writer
func newWriter(cfg *Config) (io.Writer, error) {
	var writer io.Writer

	switch cfg.Output {
	case "", "stdout":
		writer = os.Stdout
	case "stderr":
		writer = os.Stderr
	default:
		if cfg.Rotation {
			writer = &lumberjack.Logger{
				Filename:   cfg.Output,
				MaxSize:    cfg.MaxSize,
				MaxBackups: cfg.MaxBackups,
				MaxAge:     cfg.MaxAge,
				Compress:   true,
			}
		} else {
			file, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
			if err != nil {
				return nil, fmt.Errorf("failed to open log output: %w", err)
			}
			writer = file
		}
	}

	if strings.EqualFold(cfg.Format, "text") {
		writer = zerolog.ConsoleWriter{
			Out:        writer,
			TimeFormat: time.RFC3339,
		}
	}
	return writer, nil
}

// Logger returns the global logger
func Logger() zerolog.Logger {
	return log.Logger
}

// WithComponent returns a logger with a component name
func WithComponent(component string) zerolog.Logger {
	return log.Logger.With().Str("component", component).Logger()
}
