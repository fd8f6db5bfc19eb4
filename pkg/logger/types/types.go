package types

import (
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger represents a logger
type Logger struct {
	*zap.SugaredLogger
	LogsPath string
	Name     string
}

// Log represents a log entry
type Log struct {
	Timestamp  time.Time
	Caller     string
	LoggerName string
	Level      zapcore.Level
	Message    string
}

// LogHook is a function that will be called for each log entry
type LogHook func(log Log)

// With returns a child logger that adds the given key-value pairs to every entry.
func (l *Logger) With(args ...interface{}) *Logger {
	return &Logger{
		SugaredLogger: l.SugaredLogger.With(args...),
		LogsPath:      l.LogsPath,
		Name:          l.Name,
	}
}
