// pkg/logger/global.go
package logger

var globalLogger = NewNop()

func InitGlobal(logPath, logLevel string, debug bool) error {
	l, err := NewLogger(logPath, logLevel, debug)
	if err != nil {
		return err
	}
	globalLogger = l
	return nil
}

func GetLogger() *Logger {
	return globalLogger
}

// Глобальные методы для удобства
func Debug(format string, v ...interface{}) {
	globalLogger.Debug(format, v...)
}

func Info(format string, v ...interface{}) {
	globalLogger.Info(format, v...)
}

func Warn(format string, v ...interface{}) {
	globalLogger.Warn(format, v...)
}

func Error(format string, v ...interface{}) {
	globalLogger.Error(format, v...)
}

func Payment(chatID int64, signature, status string) {
	globalLogger.Payment(chatID, signature, status)
}
