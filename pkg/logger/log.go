/*
 * Copyright 2022 Holoinsight Project Authors. Licensed under Apache-2.0.
 */

package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
	"os"
	"path/filepath"
)

type (
	alwaysLevel     struct{}
	loggerComposite struct {
		debug  *zap.Logger
		debugS *zap.SugaredLogger
		info   *zap.Logger
		infoS  *zap.SugaredLogger
		warn   *zap.Logger
		warnS  *zap.SugaredLogger
		error  *zap.Logger
		errorS *zap.SugaredLogger
	}
	// Config controls where logs go once the application config is loaded.
	Config struct {
		// Dir receives info.log, warn.log and error.log. Empty means console only.
		Dir        string
		Debug      bool
		MaxSizeMB  int
		MaxBackups int
	}
)

var (
	zapLogger    *loggerComposite
	DebugEnabled = false

	encoderConfig = zapcore.EncoderConfig{
		TimeKey:          "time",
		LevelKey:         "level",
		NameKey:          "logger",
		CallerKey:        "caller",
		MessageKey:       "msg",
		StacktraceKey:    "stacktrace",
		ConsoleSeparator: " ",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeLevel:      zapcore.LowercaseLevelEncoder,
		EncodeTime:       zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000"),
		EncodeDuration:   zapcore.SecondsDurationEncoder,
	}
)

// init initializes default loggers (to stderr)
func init() {
	console := func() *zap.Logger {
		return zap.New(zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.AddSync(os.Stderr), alwaysLevel{}))
	}
	setLoggers(console(), console(), console(), console())
}

func (a alwaysLevel) Enabled(level zapcore.Level) bool {
	return true
}

func setLoggers(debug, info, warn, error *zap.Logger) {
	zapLogger = &loggerComposite{
		debug:  debug,
		debugS: debug.Sugar(),
		info:   info,
		infoS:  info.Sugar(),
		warn:   warn,
		warnS:  warn.Sugar(),
		error:  error,
		errorS: error.Sugar(),
	}
}

// SetupZapLogger tees every level into its own rotated file under cfg.Dir.
func SetupZapLogger(cfg Config) error {
	DebugEnabled = cfg.Debug
	if cfg.Dir == "" {
		return nil
	}
	if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
		return err
	}
	if cfg.MaxSizeMB <= 0 {
		cfg.MaxSizeMB = 100
	}
	if cfg.MaxBackups <= 0 {
		cfg.MaxBackups = 7
	}

	newZapLogger := func(name string) *zap.Logger {
		w := &lumberjack.Logger{
			Filename:   filepath.Join(cfg.Dir, name),
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			LocalTime:  true,
		}
		return zap.New(zapcore.NewTee(
			zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.AddSync(os.Stderr), alwaysLevel{}),
			zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.AddSync(w), alwaysLevel{}),
		))
	}
	setLoggers(newZapLogger("debug.log"), newZapLogger("info.log"), newZapLogger("warn.log"), newZapLogger("error.log"))
	return nil
}

// Sync flushes buffered entries of every logger.
func Sync() {
	_ = zapLogger.debug.Sync()
	_ = zapLogger.info.Sync()
	_ = zapLogger.warn.Sync()
	_ = zapLogger.error.Sync()
}

func Debugz(msg string, fields ...zap.Field) {
	if DebugEnabled {
		zapLogger.debug.Info(msg, fields...)
	}
}
func Infoz(msg string, fields ...zap.Field) {
	zapLogger.info.Info(msg, fields...)
}
func Warnz(msg string, fields ...zap.Field) {
	zapLogger.warn.Warn(msg, fields...)
}
func Errorz(msg string, fields ...zap.Field) {
	zapLogger.error.Error(msg, fields...)
}

func Debugw(msg string, keyAndValues ...interface{}) {
	if DebugEnabled {
		zapLogger.debugS.Infow(msg, keyAndValues...)
	}
}
func Infow(msg string, keyAndValues ...interface{}) {
	zapLogger.infoS.Infow(msg, keyAndValues...)
}
func Warnw(msg string, keyAndValues ...interface{}) {
	zapLogger.warnS.Warnw(msg, keyAndValues...)
}
func Errorw(msg string, keyAndValues ...interface{}) {
	zapLogger.errorS.Errorw(msg, keyAndValues...)
}

func Debugf(msg string, args ...interface{}) {
	if DebugEnabled {
		zapLogger.debugS.Infof(msg, args...)
	}
}
func Infof(msg string, args ...interface{}) {
	zapLogger.infoS.Infof(msg, args...)
}
func Warnf(msg string, args ...interface{}) {
	zapLogger.warnS.Warnf(msg, args...)
}
func Errorf(msg string, args ...interface{}) {
	zapLogger.errorS.Errorf(msg, args...)
}

func IsDebugEnabled() bool {
	return DebugEnabled
}
