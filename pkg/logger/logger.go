package logger

import (
	"io"
	"log"
	"os"
	"strings"

	"github.com/hashicorp/logutils"
)

var levels = []logutils.LogLevel{"DEBUG", "INFO", "WARN", "ERROR"}

type Logger struct {
	debug *log.Logger
	info  *log.Logger
	warn  *log.Logger
	error *log.Logger
}

// New returns a Logger writing to stderr. The minimum level is taken from
// LOG_LEVEL and defaults to INFO.
func New() *Logger {
	return NewWithWriter(os.Stderr, os.Getenv("LOG_LEVEL"))
}

func NewWithWriter(w io.Writer, minLevel string) *Logger {
	level := logutils.LogLevel(strings.ToUpper(strings.TrimSpace(minLevel)))
	if !validLevel(level) {
		level = "INFO"
	}

	filter := &logutils.LevelFilter{
		Levels:   levels,
		MinLevel: level,
		Writer:   w,
	}

	flags := log.LstdFlags | log.LUTC
	return &Logger{
		debug: log.New(filter, "[DEBUG] ", flags),
		info:  log.New(filter, "[INFO] ", flags),
		warn:  log.New(filter, "[WARN] ", flags),
		error: log.New(filter, "[ERROR] ", flags),
	}
}

func validLevel(level logutils.LogLevel) bool {
	for _, l := range levels {
		if l == level {
			return true
		}
	}
	return false
}

func (l *Logger) Debug(format string, args ...interface{}) {
	l.debug.Printf(format, args...)
}

func (l *Logger) Info(format string, args ...interface{}) {
	l.info.Printf(format, args...)
}

func (l *Logger) Warn(format string, args ...interface{}) {
	l.warn.Printf(format, args...)
}

func (l *Logger) Error(format string, args ...interface{}) {
	l.error.Printf(format, args...)
}
