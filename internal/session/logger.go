package session

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler discards every record.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

// SetLogger configures the logger used by every session. By default
// sessions log nothing. Pass nil to restore the silent default.
//
// Levels:
//   - Debug: drag start and release
//   - Info: calibration, reset, clear and save
//   - Warn: canvas draw failures
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

// Logger returns the current session logger.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
