package logging

import (
	"log"
	"os"
)

// Logger defines a minimal, printf-style logging contract.
//
// Kept intentionally small so packages can depend on it without pulling in
// the CLI or any output formatting.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// Nop returns a logger that discards all output.
func Nop() Logger {
	return nopLogger{}
}

// OrNop returns logger when non-nil, otherwise a no-op logger.
func OrNop(logger Logger) Logger {
	if logger == nil {
		return Nop()
	}
	return logger
}

type componentLogger struct {
	logger *log.Logger
}

// NewComponentLogger returns a stderr logger scoped to a component.
func NewComponentLogger(component string) Logger {
	return &componentLogger{
		logger: log.New(os.Stderr, "["+component+"] ", log.LstdFlags),
	}
}

func (l *componentLogger) Debug(format string, args ...any) {
	if os.Getenv("NSLAUNCH_DEBUG") == "" {
		return
	}
	l.logger.Printf("DEBUG "+format, args...)
}

func (l *componentLogger) Info(format string, args ...any) {
	l.logger.Printf("INFO "+format, args...)
}

func (l *componentLogger) Warn(format string, args ...any) {
	l.logger.Printf("WARN "+format, args...)
}

func (l *componentLogger) Error(format string, args ...any) {
	l.logger.Printf("ERROR "+format, args...)
}
