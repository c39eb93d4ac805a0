package app

import (
	"io"
	log "log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"golang.org/x/term"
)

var logLevelMap = map[string]log.Level{
	"debug": log.LevelDebug,
	"info":  log.LevelInfo,
	"warn":  log.LevelWarn,
	"error": log.LevelError,
}

// ParseLevel maps a --log flag value to a level; unknown values mean info.
func ParseLevel(s string) log.Level {
	if lvl, ok := logLevelMap[strings.ToLower(s)]; ok {
		return lvl
	}
	return log.LevelInfo
}

// NewLogger writes colored text when stderr is a terminal and JSON lines
// otherwise.
func NewLogger(level string) *log.Logger {
	return newLogger(os.Stderr, term.IsTerminal(int(os.Stderr.Fd())), ParseLevel(level))
}

func newLogger(w io.Writer, tty bool, level log.Level) *log.Logger {
	if tty {
		return log.New(tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.TimeOnly,
		}))
	}
	return log.New(log.NewJSONHandler(w, &log.HandlerOptions{Level: level}))
}
