package logger

import (
	"io"
	"log"
	"os"
	"strings"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// stdout is reserved for the statistics report
var logger = log.New(os.Stderr, "", log.LstdFlags)

var level = LevelInfo

// ParseLevel maps a LOG_LEVEL value to a Level, defaulting to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func SetLevel(l Level) {
	level = l
}

func SetOutput(w io.Writer) {
	logger.SetOutput(w)
}

func Debug(format string, v ...interface{}) {
	logf(LevelDebug, "[DEBUG] ", format, v...)
}

func Info(format string, v ...interface{}) {
	logf(LevelInfo, "[INFO] ", format, v...)
}

func Warn(format string, v ...interface{}) {
	logf(LevelWarn, "[WARN] ", format, v...)
}

func Error(format string, v ...interface{}) {
	logf(LevelError, "[ERROR] ", format, v...)
}

func logf(l Level, prefix, format string, v ...interface{}) {
	if l < level {
		return
	}
	logger.Printf(prefix+format, v...)
}
