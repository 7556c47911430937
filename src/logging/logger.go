//Package logging builds the *slog.Logger values used across lifegrid
//text to stderr by default, JSON and the level are selected through Config:
//
//	logger := logging.New(logging.Config{Level: logging.LevelDebug})
//	logger.Info("simulation started", "engine", "actors")
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

//Level represents log severity levels, ordered Debug < Info < Warn < Error
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

//String returns "DEBUG", "INFO", "WARN", "ERROR" or "UNKNOWN"
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l Level) toSlogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

//ParseLevel converts a case-insensitive level name, empty means Info
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

//Config configures a logger, Writer defaults to stderr
//the zero Level is Debug
type Config struct {
	Level  Level
	JSON   bool
	Writer io.Writer
}

//New returns a logger writing to cfg.Writer (stderr when nil)
func New(cfg Config) *slog.Logger {
	w := cfg.Writer
	if w == nil {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: cfg.Level.toSlogLevel()}
	if cfg.JSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

//Nop returns a logger that discards everything
func Nop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
