package trace

import (
	"context"
	"log/slog"
	"slices"
)

// SlogSink returns a Sink that forwards each line to logger at info level
// under the "line" attribute. A nil logger discards lines.
func SlogSink(logger *slog.Logger) Sink {
	return func(line string) {
		if logger == nil {
			return
		}
		logger.Info("trace", slog.String("line", line))
	}
}

// LevelFor maps a slog level onto the default trace levels.
func LevelFor(l slog.Level) Level {
	switch {
	case l > slog.LevelError:
		return Fatal
	case l >= slog.LevelError:
		return Error
	case l >= slog.LevelWarn:
		return Warning
	case l >= slog.LevelInfo:
		return Info
	default:
		return Debug
	}
}

// Handler is a slog.Handler that renders records through a Tracer, so
// slog output obeys the tracer's level filter and sink.
type Handler struct {
	tracer *Tracer
	attrs  []slog.Attr
	groups []string
}

// NewHandler returns a slog.Handler writing to t.
func NewHandler(t *Tracer) *Handler {
	return &Handler{tracer: t}
}

var _ slog.Handler = (*Handler)(nil)

// Enabled implements slog.Handler.
func (h *Handler) Enabled(_ context.Context, l slog.Level) bool {
	return h.tracer.Enabled(LevelFor(l))
}

// Handle implements slog.Handler.
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	data := make(map[string]any, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		addAttr(data, "", a)
	}
	prefix := groupPrefix(h.groups)
	r.Attrs(func(a slog.Attr) bool {
		addAttr(data, prefix, a)
		return true
	})

	h.tracer.logAt(r.Time, LevelFor(r.Level), r.Message, data)
	return nil
}

// WithAttrs implements slog.Handler.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	prefix := groupPrefix(h.groups)
	next := h.clone()
	for _, a := range attrs {
		a.Key = prefix + a.Key
		next.attrs = append(next.attrs, a)
	}
	return next
}

// WithGroup implements slog.Handler.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := h.clone()
	next.groups = append(next.groups, name)
	return next
}

func (h *Handler) clone() *Handler {
	return &Handler{
		tracer: h.tracer,
		attrs:  slices.Clip(h.attrs),
		groups: slices.Clip(h.groups),
	}
}

func groupPrefix(groups []string) string {
	prefix := ""
	for _, g := range groups {
		prefix += g + "."
	}
	return prefix
}

func addAttr(data map[string]any, prefix string, a slog.Attr) {
	v := a.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		sub := prefix
		if a.Key != "" {
			sub += a.Key + "."
		}
		for _, ga := range v.Group() {
			addAttr(data, sub, ga)
		}
		return
	}
	if a.Key == "" {
		return
	}
	data[prefix+a.Key] = v.Any()
}
