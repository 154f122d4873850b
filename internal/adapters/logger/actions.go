package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/sethvargo/go-githubactions"
)

// ActionsHandler is a slog.Handler that emits GitHub Actions workflow commands,
// so warnings and errors show up as annotations on the run.
type ActionsHandler struct {
	action *githubactions.Action
	level  slog.Leveler
	attrs  []slog.Attr
	group  string
}

// NewActionsHandler creates a new ActionsHandler writing workflow commands to w.
func NewActionsHandler(w io.Writer, opts *slog.HandlerOptions) *ActionsHandler {
	if w == nil {
		w = os.Stdout
	}

	return &ActionsHandler{
		action: githubactions.New(githubactions.WithWriter(w)),
		level:  levelFrom(opts),
	}
}

// Enabled reports whether the handler handles records at the given level.
func (h *ActionsHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle writes the record as the workflow command matching its level.
//
//nolint:gocritic // slog.Handler interface requires slog.Record by value
func (h *ActionsHandler) Handle(_ context.Context, r slog.Record) error {
	msg := r.Message
	if attrs := collectAttrs(h.group, h.attrs, r); len(attrs) > 0 {
		msg += " " + strings.Join(attrs, " ")
	}

	switch {
	case r.Level >= slog.LevelError:
		h.action.Errorf("%s", msg)
	case r.Level >= slog.LevelWarn:
		h.action.Warningf("%s", msg)
	case r.Level >= slog.LevelInfo:
		h.action.Infof("%s", msg)
	default:
		h.action.Debugf("%s", msg)
	}
	return nil
}

// WithAttrs returns a new Handler with the given attributes appended.
func (h *ActionsHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ActionsHandler{
		action: h.action,
		level:  h.level,
		attrs:  appendAttrs(h.attrs, attrs),
		group:  h.group,
	}
}

// WithGroup returns a new Handler with the given group name.
func (h *ActionsHandler) WithGroup(name string) slog.Handler {
	return &ActionsHandler{
		action: h.action,
		level:  h.level,
		attrs:  h.attrs,
		group:  name,
	}
}
