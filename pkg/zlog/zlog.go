package zlog

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	logger *zap.Logger
	once   sync.Once
)

// Init configures the global logger. Logs go to stdout and, when logPath is
// non-empty, to a size-rotated file under logPath.
func Init(logPath string) {
	once.Do(func() {
		encCfg := zap.NewProductionEncoderConfig()
		encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder := zapcore.NewJSONEncoder(encCfg)

		cores := []zapcore.Core{
			zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), zapcore.InfoLevel),
		}
		if logPath != "" {
			rotator := &lumberjack.Logger{
				Filename:   filepath.Join(logPath, "leadforge.log"),
				MaxSize:    100, // MB
				MaxBackups: 10,
				MaxAge:     30, // days
				Compress:   true,
			}
			cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(rotator), zapcore.InfoLevel))
		}
		logger = zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddCallerSkip(1))
	})
}

func get() *zap.Logger {
	if logger == nil {
		Init("")
	}
	return logger
}

func Info(msg string, fields ...zap.Field) {
	get().Info(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	get().Warn(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	get().Error(msg, fields...)
}

func Fatal(msg string, fields ...zap.Field) {
	get().Fatal(msg, fields...)
}

// Sync flushes buffered log entries. Call on shutdown.
func Sync() {
	_ = get().Sync()
}
