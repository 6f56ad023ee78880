package logging

import (
	"fmt"
	"os"
)

// InitGlobalLogger initializes the global logger from LOG_LEVEL and,
// optionally, LOG_FILE. Without LOG_FILE the logger writes to stdout.
func InitGlobalLogger() {
	level := ParseLevel(os.Getenv("LOG_LEVEL"))

	var logger Logger
	var err error

	if logFileName := os.Getenv("LOG_FILE"); logFileName != "" {
		file, ferr := os.OpenFile(logFileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if ferr != nil {
			panic(fmt.Sprintf("Failed to open log file %s: %v", logFileName, ferr))
		}
		logger, err = NewZapLogger(level, file)
	} else {
		logger, err = NewZapLogger(level, nil)
	}

	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}

	SetGlobalLogger(logger)

	logger.Info("Logger initialized", Field{"level", level.String()})
}

// MustSync flushes any buffered log entries for zap loggers.
// This should be called before application exit.
func MustSync() {
	logger := GetGlobalLogger()
	if zapLogger, ok := logger.(*ZapAdapter); ok {
		_ = zapLogger.Sync()
	}
}
