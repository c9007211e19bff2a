package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/dmitrijs2005/locksys/internal/common"
)

const redacted = "[REDACTED]"

// secretKeys are attribute keys whose values are never written out.
var secretKeys = map[string]bool{
	"passphrase": true,
	"password":   true,
	"key":        true,
}

// SlogLogger adapts *slog.Logger to Logger, forwarding ctx to the handler.
type SlogLogger struct {
	l *slog.Logger
}

func NewSlogLogger(l *slog.Logger) *SlogLogger {
	return &SlogLogger{l: l}
}

// newSlogHandler returns a text or JSON handler that renders status codes
// as "<code> (<name>)" and masks secret attributes.
func newSlogHandler(asJSON bool, lvl slog.Leveler, w io.Writer) slog.Handler {
	opts := &slog.HandlerOptions{Level: lvl, ReplaceAttr: replaceAttr}
	if asJSON {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

func replaceAttr(_ []string, a slog.Attr) slog.Attr {
	if secretKeys[a.Key] {
		return slog.String(a.Key, redacted)
	}
	if s, ok := a.Value.Any().(common.Status); ok {
		return slog.String(a.Key, fmt.Sprintf("%d (%s)", uint32(s), s))
	}
	return a
}

func (s *SlogLogger) Debug(ctx context.Context, msg string, args ...any) {
	s.l.DebugContext(ctx, msg, args...)
}

func (s *SlogLogger) Info(ctx context.Context, msg string, args ...any) {
	s.l.InfoContext(ctx, msg, args...)
}

func (s *SlogLogger) Warn(ctx context.Context, msg string, args ...any) {
	s.l.WarnContext(ctx, msg, args...)
}

func (s *SlogLogger) Error(ctx context.Context, msg string, args ...any) {
	s.l.ErrorContext(ctx, msg, args...)
}

func (s *SlogLogger) With(args ...any) Logger {
	return &SlogLogger{l: s.l.With(args...)}
}
