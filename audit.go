package userauth

import (
	"context"

	"github.com/CipherPhantom/userauth/internal/audit"
)

// Audit event types.
const (
	AuditSessionCreated   = "session_created"
	AuditSessionDestroyed = "session_destroyed"
	AuditBasicAuthFailed  = "basic_auth_failed"
	AuditAccountCreated   = "account_created"
	AuditPasswordReset    = "password_reset"
)

type (
	// AuditEvent is one audit record.
	AuditEvent = audit.Event
	// AuditSink receives audit events.
	AuditSink = audit.Sink
	// AuditConfig controls the asynchronous audit dispatcher.
	AuditConfig = audit.Config
	// NoOpSink discards events.
	NoOpSink = audit.NoOpSink
	// ChannelSink buffers events in a channel.
	ChannelSink = audit.ChannelSink
	// JSONWriterSink writes one JSON event per line.
	JSONWriterSink = audit.JSONWriterSink
	// LogSink writes events through slog.
	LogSink = audit.LogSink
)

var (
	NewChannelSink    = audit.NewChannelSink
	NewJSONWriterSink = audit.NewJSONWriterSink
	NewLogSink        = audit.NewLogSink
)

// emitAudit stamps and forwards ev. A nil sink drops it.
func (e *env) emitAudit(ctx context.Context, ev AuditEvent) {
	if e.audit == nil {
		return
	}
	ev.Timestamp = e.now().UTC()
	e.audit.Emit(ctx, ev)
}
