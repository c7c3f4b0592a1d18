package outpost

import (
	"context"
	"log/slog"
	"strings"
)

// SlogHandler adapts a Logger to the standard log/slog.Handler interface,
// so slog.New(outpost.NewSlogHandler(logger)) routes records through the
// shipping engine. Group names become dotted attribute key prefixes.
type SlogHandler struct {
	logger *Logger
	attrs  []Attribute
	groups []string
}

func NewSlogHandler(logger *Logger) *SlogHandler {
	return &SlogHandler{logger: logger}
}

// Enabled reports true for every level; the engine has no level filter.
func (h *SlogHandler) Enabled(_ context.Context, _ slog.Level) bool {
	return true
}

func (h *SlogHandler) Handle(_ context.Context, record slog.Record) error {
	attrs := make([]Attribute, 0, len(h.attrs)+record.NumAttrs())
	attrs = append(attrs, h.attrs...)

	prefix := h.prefix()
	record.Attrs(func(attr slog.Attr) bool {
		attrs = flattenAttr(prefix, attr, attrs)
		return true
	})

	switch {
	case record.Level >= slog.LevelError:
		h.logger.Error(record.Message, nil, attrs...)
	case record.Level >= slog.LevelWarn:
		h.logger.Warn(record.Message, attrs...)
	case record.Level >= slog.LevelInfo:
		h.logger.Info(record.Message, attrs...)
	default:
		h.logger.Debug(record.Message, attrs...)
	}
	return nil
}

func (h *SlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	next := h.clone()
	prefix := h.prefix()
	for _, attr := range attrs {
		next.attrs = flattenAttr(prefix, attr, next.attrs)
	}
	return next
}

func (h *SlogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := h.clone()
	next.groups = append(next.groups, name)
	return next
}

func (h *SlogHandler) clone() *SlogHandler {
	return &SlogHandler{
		logger: h.logger,
		attrs:  append([]Attribute(nil), h.attrs...),
		groups: append([]string(nil), h.groups...),
	}
}

func (h *SlogHandler) prefix() string {
	return strings.Join(h.groups, ".")
}

// flattenAttr appends attr to out as dotted string attributes, expanding
// nested groups. Empty groups and empty-key leaves are elided, matching
// the slog.Handler contract.
func flattenAttr(prefix string, attr slog.Attr, out []Attribute) []Attribute {
	value := attr.Value.Resolve()

	if value.Kind() == slog.KindGroup {
		members := value.Group()
		if len(members) == 0 {
			return out
		}
		groupPrefix := prefix
		if attr.Key != "" {
			groupPrefix = joinKey(prefix, attr.Key)
		}
		for _, member := range members {
			out = flattenAttr(groupPrefix, member, out)
		}
		return out
	}

	if attr.Key == "" {
		return out
	}
	return append(out, Attribute{Key: joinKey(prefix, attr.Key), Value: value.String()})
}

func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
