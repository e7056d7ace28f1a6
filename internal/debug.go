package internal

import (
	"context"
	"log/slog"
)

// LevelTrace sits one notch below slog.LevelDebug for the very chatty
// per-segment trace lines the connection driver emits.
const LevelTrace slog.Level = slog.LevelDebug - 2

// LogAttrs is a nil-safe wrapper around (*slog.Logger).LogAttrs: loggers
// are optional throughout this module, so every call site would otherwise
// need its own "if log != nil" guard.
func LogAttrs(log *slog.Logger, lvl slog.Level, msg string, attrs ...slog.Attr) {
	if log == nil || !log.Handler().Enabled(context.Background(), lvl) {
		return
	}
	log.LogAttrs(context.Background(), lvl, msg, attrs...)
}
