// Package slog provides logging decorators for spider services using log/slog.
//
// Successful operations are logged at Debug and failures at Warn, so a
// logger at the default Info level reports only what went wrong.
package slog

import (
	"context"
	"errors"
	"log/slog"
)

// levelFor returns the level an operation ending in err is logged at.
// Cancellation is not a failure of the wrapped service.
func levelFor(err error) slog.Level {
	if err == nil || errors.Is(err, context.Canceled) {
		return slog.LevelDebug
	}
	return slog.LevelWarn
}
