package logging

import (
	"os"
	"sync"
)

var (
	defaultMu     sync.RWMutex
	defaultLogger = NewWriterLogger("default", os.Stdout, INFO)
)

// InitDefaultLogger создаёт файловый логгер компонента и делает его глобальным
func InitDefaultLogger(component string) error {
	logger, err := NewLogger(component)
	if err != nil {
		return err
	}
	SetDefaultLogger(logger)
	return nil
}

// SetDefaultLogger заменяет глобальный логгер
func SetDefaultLogger(l *Logger) {
	defaultMu.Lock()
	defaultLogger = l
	defaultMu.Unlock()
}

// DefaultLogger возвращает глобальный логгер
func DefaultLogger() *Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// CloseDefaultLogger закрывает файл глобального логгера
func CloseDefaultLogger() {
	_ = DefaultLogger().Close()
}

// Trace логирует через глобальный логгер
func Trace(format string, args ...interface{}) {
	DefaultLogger().Trace(format, args...)
}

// Debug логирует через глобальный логгер
func Debug(format string, args ...interface{}) {
	DefaultLogger().Debug(format, args...)
}

// Info логирует через глобальный логгер
func Info(format string, args ...interface{}) {
	DefaultLogger().Info(format, args...)
}

// Warn логирует через глобальный логгер
func Warn(format string, args ...interface{}) {
	DefaultLogger().Warn(format, args...)
}

// Error логирует через глобальный логгер
func Error(format string, args ...interface{}) {
	DefaultLogger().Error(format, args...)
}
