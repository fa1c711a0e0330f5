package core

// Logger interface for renderer logging
type Logger interface {
	Printf(format string, args ...interface{})
}

// NopLogger discards everything; handy in tests
type NopLogger struct{}

func (NopLogger) Printf(string, ...interface{}) {}
