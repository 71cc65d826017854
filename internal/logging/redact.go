package logging

import (
	"context"
	"log/slog"
	"strings"
)

// Redaction replaces every redacted value.
const Redaction = "***"

// PIIFields are redacted by every logger built by this package.
var PIIFields = []string{"name", "email", "phone", "ssn", "password"}

// FilterDatum obfuscates key=value pairs in a separator-delimited message:
// for every segment containing "<field>=", everything after the "=" up to
// the next separator becomes redaction.
//
//	FilterDatum([]string{"password"}, "***", "name=bob;password=hunter2;", ";")
//	// "name=bob;password=***;"
func FilterDatum(fields []string, redaction, message, separator string) string {
	if len(fields) == 0 || separator == "" {
		return message
	}

	segments := strings.Split(message, separator)
	for i, segment := range segments {
		at := -1
		for _, field := range fields {
			if idx := strings.Index(segment, field+"="); idx >= 0 && (at < 0 || idx < at) {
				at = idx + len(field) + 1
			}
		}
		if at >= 0 && at < len(segment) {
			segments[i] = segment[:at] + redaction
		}
	}
	return strings.Join(segments, separator)
}

// RedactingHandler replaces the value of any attribute whose key is a
// redacted field, at any group depth, and filters "field=value;" pairs out
// of the message text.
type RedactingHandler struct {
	next   slog.Handler
	fields map[string]struct{}
	names  []string
}

// NewRedactingHandler wraps next. Field names match case-insensitively.
func NewRedactingHandler(next slog.Handler, fields ...string) *RedactingHandler {
	h := &RedactingHandler{next: next, fields: make(map[string]struct{}, len(fields))}
	for _, f := range fields {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" {
			continue
		}
		if _, dup := h.fields[f]; !dup {
			h.fields[f] = struct{}{}
			h.names = append(h.names, f)
		}
	}
	return h
}

func (h *RedactingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *RedactingHandler) Handle(ctx context.Context, r slog.Record) error {
	out := slog.NewRecord(r.Time, r.Level, FilterDatum(h.names, Redaction, r.Message, ";"), r.PC)
	r.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(h.redact(a))
		return true
	})
	return h.next.Handle(ctx, out)
}

func (h *RedactingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	redacted := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		redacted[i] = h.redact(a)
	}
	return &RedactingHandler{next: h.next.WithAttrs(redacted), fields: h.fields, names: h.names}
}

func (h *RedactingHandler) WithGroup(name string) slog.Handler {
	return &RedactingHandler{next: h.next.WithGroup(name), fields: h.fields, names: h.names}
}

func (h *RedactingHandler) redact(a slog.Attr) slog.Attr {
	if _, ok := h.fields[strings.ToLower(a.Key)]; ok {
		return slog.String(a.Key, Redaction)
	}

	value := a.Value.Resolve()
	if value.Kind() != slog.KindGroup {
		return slog.Attr{Key: a.Key, Value: value}
	}

	group := value.Group()
	redacted := make([]any, len(group))
	for i, member := range group {
		redacted[i] = h.redact(member)
	}
	return slog.Group(a.Key, redacted...)
}
