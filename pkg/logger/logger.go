package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/qrstudio/qrstudio-bot/pkg/logger/types"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	Log *types.Logger

	hookMu  sync.RWMutex
	logHook types.LogHook
)

// Config represents configuration options for logger initialization
type Config struct {
	Debug        bool           // Enable debug logging
	TimeLocation *time.Location // Time zone of timestamps (default: UTC)
	LogToFile    bool           // Enable logging to a rotated file
	LogsDir      string         // Directory for logs (default: current working directory)
	MaxSizeMB    int            // Rotate the file after this many megabytes (default: 50)
	MaxBackups   int            // Rotated files to keep (default: 10)
	MaxAgeDays   int            // Days to keep rotated files (default: 30)

	// Console replaces stdout, mostly for tests.
	Console io.Writer
}

// SetLogHook sets a hook function that will be called for each log entry
func SetLogHook(hook types.LogHook) {
	hookMu.Lock()
	logHook = hook
	hookMu.Unlock()
	Log.Debug("Log hook set")
}

func callHook(entry zapcore.Entry) error {
	hookMu.RLock()
	hook := logHook
	hookMu.RUnlock()

	if hook != nil {
		hook(types.Log{
			Timestamp:  entry.Time,
			Caller:     entry.Caller.String(),
			LoggerName: entry.LoggerName,
			Level:      entry.Level,
			Message:    entry.Message,
		})
	}
	return nil
}

// Init is a function to initialize logger with extended configuration
func Init(config Config) error {
	var l types.Logger
	l.Name = "main"

	wd, err := os.Getwd()
	if err != nil {
		return err
	}

	// Set log directory, default to current working directory
	switch {
	case config.LogsDir == "":
		l.LogsPath = wd
	case filepath.IsAbs(config.LogsDir):
		l.LogsPath = config.LogsDir
	default:
		l.LogsPath = filepath.Join(wd, config.LogsDir)
	}

	location := config.TimeLocation
	if location == nil {
		location = time.UTC
	}

	encoderConfig := zapcore.EncoderConfig{
		MessageKey:     "message",
		LevelKey:       "level",
		TimeKey:        "timestamp",
		NameKey:        "logger",
		CallerKey:      "caller",
		EncodeTime:     timeEncoder(location),
		EncodeCaller:   zapcore.ShortCallerEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}

	level := zapcore.InfoLevel
	if config.Debug {
		level = zapcore.DebugLevel
	}

	// Console encoder with colors
	consoleEncoderConfig := encoderConfig
	consoleEncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	consoleEncoder := zapcore.NewConsoleEncoder(consoleEncoderConfig)

	// File encoder without colors
	fileEncoderConfig := encoderConfig
	fileEncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	fileEncoder := zapcore.NewJSONEncoder(fileEncoderConfig)

	var console zapcore.WriteSyncer = zapcore.Lock(os.Stdout)
	if config.Console != nil {
		console = zapcore.AddSync(config.Console)
	}

	cores := []zapcore.Core{
		zapcore.NewCore(consoleEncoder, console, level),
	}

	if config.LogToFile {
		if err = os.MkdirAll(l.LogsPath, os.ModePerm); err != nil {
			return err
		}

		fileWriter := &lumberjack.Logger{
			Filename:   filepath.Join(l.LogsPath, "bot.log"),
			MaxSize:    valueOr(config.MaxSizeMB, 50),
			MaxBackups: valueOr(config.MaxBackups, 10),
			MaxAge:     valueOr(config.MaxAgeDays, 30),
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(fileEncoder, zapcore.AddSync(fileWriter), level))
	}

	log := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.Hooks(callHook))

	l.SugaredLogger = log.Named(l.Name).Sugar()
	Log = &l

	return nil
}

// Named returns a new logger with the specified name ("bot", "http", etc.)
func Named(name string) (*types.Logger, error) {
	if Log == nil {
		return nil, fmt.Errorf("logger is not initialized")
	}
	return &types.Logger{
		SugaredLogger: Log.SugaredLogger.Named(name),
		LogsPath:      Log.LogsPath,
		Name:          name,
	}, nil
}

// Nop returns a logger that discards everything.
func Nop() *types.Logger {
	return &types.Logger{
		SugaredLogger: zap.NewNop().Sugar(),
		Name:          "nop",
	}
}

func timeEncoder(location *time.Location) zapcore.TimeEncoder {
	return func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.In(location).Format("2006-01-02 15:04:05"))
	}
}

func valueOr(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
