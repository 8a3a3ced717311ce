package testsupport

import "github.com/coffeetab/coffeetab/internal/domain/port/core"

// NopLogger discards everything. Usecase tests assert on behavior, not logs.
type NopLogger struct {
	level core.LogLevel
}

func (l *NopLogger) SetLevel(level core.LogLevel)          { l.level = level }
func (l *NopLogger) GetLevel() core.LogLevel               { return l.level }
func (l *NopLogger) Debug(string, map[string]any)          {}
func (l *NopLogger) Info(string, map[string]any)           {}
func (l *NopLogger) Warn(string, map[string]any)           {}
func (l *NopLogger) Error(string, map[string]any)          {}
func (l *NopLogger) Flush() error                          { return nil }
