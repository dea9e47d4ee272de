package logging

import (
	"context"
	"log/slog"
)

// levelOverrideHandler enforces a minimum level while delegating output to the
// wrapped handler, which is configured with the most verbose level any
// component needs. When a component attribute is attached and that component
// has its own level, the override switches to it.
type levelOverrideHandler struct {
	next       slog.Handler
	level      slog.Level
	components map[string]slog.Level
}

func newLevelOverrideHandler(next slog.Handler, level slog.Level, components map[string]slog.Level) slog.Handler {
	if next == nil {
		return NoopHandler{}
	}
	return &levelOverrideHandler{next: next, level: level, components: components}
}

func (h *levelOverrideHandler) Enabled(ctx context.Context, level slog.Level) bool {
	if level < h.level {
		return false
	}
	return h.next.Enabled(ctx, level)
}

func (h *levelOverrideHandler) Handle(ctx context.Context, record slog.Record) error {
	if record.Level < h.level {
		return nil
	}
	return h.next.Handle(ctx, record)
}

func (h *levelOverrideHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	level := h.level
	for _, attr := range attrs {
		if attr.Key != FieldComponent {
			continue
		}
		if lvl, ok := h.components[attr.Value.String()]; ok {
			level = lvl
		}
	}
	return &levelOverrideHandler{
		next:       h.next.WithAttrs(attrs),
		level:      level,
		components: h.components,
	}
}

func (h *levelOverrideHandler) WithGroup(name string) slog.Handler {
	return &levelOverrideHandler{
		next:       h.next.WithGroup(name),
		level:      h.level,
		components: h.components,
	}
}
