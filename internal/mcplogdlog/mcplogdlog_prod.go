//go:build !dev

package mcplogdlog

// Entries are dropped in non-dev builds.

func Info(message string, metadata map[string]any) {}

func Debug(message string, metadata map[string]any) {}

func Warn(message string, metadata map[string]any) {}

func Error(message string, metadata map[string]any) {}
