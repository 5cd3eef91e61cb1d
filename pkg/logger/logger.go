// pkg/logger/logger.go

package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Уровни логирования
const (
	LevelDebug = "DEBUG"
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
	LevelFatal = "FATAL"
)

// Logger - printf-обертка над zap
type Logger struct {
	sugar     *zap.SugaredLogger
	logLevel  string
	debugMode bool
}

// NewLogger создает логгер с выводом в консоль и, если указан путь, в файл
func NewLogger(logPath string, logLevel string, debug bool) (*Logger, error) {
	level := strings.ToUpper(logLevel)

	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Encoding = "console"
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	cfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
	cfg.Level = zap.NewAtomicLevelAt(toZapLevel(level))
	cfg.DisableStacktrace = true

	cfg.OutputPaths = []string{"stdout"}
	if logPath != "" {
		if dir := filepath.Dir(logPath); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("не удалось создать директорию логов: %w", err)
			}
		}
		cfg.OutputPaths = append(cfg.OutputPaths, logPath)
	}

	base, err := cfg.Build(zap.AddCallerSkip(2))
	if err != nil {
		return nil, err
	}

	return &Logger{
		sugar:     base.Sugar(),
		logLevel:  level,
		debugMode: debug,
	}, nil
}

// NewNop возвращает логгер, который ничего не пишет (для тестов и до инициализации)
func NewNop() *Logger {
	return &Logger{sugar: zap.NewNop().Sugar(), logLevel: LevelInfo}
}

func toZapLevel(level string) zapcore.Level {
	switch level {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	case LevelFatal:
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

func (l *Logger) log(level string, format string, v ...interface{}) {
	switch level {
	case LevelDebug:
		l.sugar.Debugf(format, v...)
	case LevelInfo:
		l.sugar.Infof(format, v...)
	case LevelWarn:
		l.sugar.Warnf(format, v...)
	case LevelError:
		l.sugar.Errorf(format, v...)
	case LevelFatal:
		l.sugar.Fatalf(format, v...)
	}
}

func (l *Logger) Debug(format string, v ...interface{}) {
	l.log(LevelDebug, format, v...)
}

func (l *Logger) Info(format string, v ...interface{}) {
	l.log(LevelInfo, format, v...)
}

func (l *Logger) Warn(format string, v ...interface{}) {
	l.log(LevelWarn, format, v...)
}

func (l *Logger) Error(format string, v ...interface{}) {
	l.log(LevelError, format, v...)
}

func (l *Logger) Fatal(format string, v ...interface{}) {
	l.log(LevelFatal, format, v...)
}

// Level возвращает текущий уровень логирования
func (l *Logger) Level() string {
	return l.logLevel
}

// Payment пишет итог проверки платежа одной строкой
func (l *Logger) Payment(chatID int64, signature, status string) {
	icon := "💸"
	if status != "paid" {
		icon = "⚠️"
	}
	l.Info("%s ПЛАТЕЖ: chat=%d sig=%s статус=%s", icon, chatID, shorten(signature), status)
}

func (l *Logger) Sync() {
	_ = l.sugar.Sync()
}

func (l *Logger) Close() {
	l.Sync()
}

func shorten(s string) string {
	if len(s) <= 16 {
		return s
	}
	return s[:8] + "..." + s[len(s)-8:]
}
