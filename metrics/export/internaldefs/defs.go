package internaldefs

import (
	"github.com/CipherPhantom/userauth"
)

// CounterDef names one counter of userauth.Metrics.
type CounterDef struct {
	ID   userauth.MetricID
	Name string
	Help string
}

// HistogramDef names one histogram of userauth.Metrics.
type HistogramDef struct {
	ID   userauth.MetricID
	Name string
	Help string
}

var CounterDefs = []CounterDef{
	{ID: userauth.MetricBasicAuthSuccess, Name: "userauth_basic_auth_success_total", Help: "Requests resolved by Basic credentials."},
	{ID: userauth.MetricBasicAuthFailure, Name: "userauth_basic_auth_failure_total", Help: "Requests whose Basic credentials were rejected."},
	{ID: userauth.MetricSessionCreated, Name: "userauth_session_created_total", Help: "Sessions issued."},
	{ID: userauth.MetricSessionCreateFailure, Name: "userauth_session_create_failure_total", Help: "Session creations that failed."},
	{ID: userauth.MetricSessionResolved, Name: "userauth_session_resolved_total", Help: "Session cookies resolved to a user."},
	{ID: userauth.MetricSessionRejected, Name: "userauth_session_rejected_total", Help: "Session cookies that did not resolve."},
	{ID: userauth.MetricSessionExpired, Name: "userauth_session_expired_total", Help: "Session lookups rejected because the session was too old."},
	{ID: userauth.MetricSessionDestroyed, Name: "userauth_session_destroyed_total", Help: "Sessions destroyed on logout."},
	{ID: userauth.MetricSessionDestroyFailure, Name: "userauth_session_destroy_failure_total", Help: "Logouts that found no session to destroy."},
	{ID: userauth.MetricStoreFailure, Name: "userauth_store_failure_total", Help: "Failed calls to a user store or session repository."},
	{ID: userauth.MetricAccountCreated, Name: "userauth_account_created_total", Help: "Accounts registered."},
	{ID: userauth.MetricAccountDuplicate, Name: "userauth_account_duplicate_total", Help: "Registrations rejected for an existing email."},
	{ID: userauth.MetricLoginSuccess, Name: "userauth_login_success_total", Help: "Successful email/password logins."},
	{ID: userauth.MetricLoginFailure, Name: "userauth_login_failure_total", Help: "Failed email/password logins."},
	{ID: userauth.MetricPasswordResetRequest, Name: "userauth_password_reset_request_total", Help: "Reset tokens issued."},
	{ID: userauth.MetricPasswordResetConfirm, Name: "userauth_password_reset_confirm_total", Help: "Passwords changed with a reset token."},
	{ID: userauth.MetricPasswordResetFailure, Name: "userauth_password_reset_failure_total", Help: "Password resets rejected."},
	{ID: userauth.MetricGuardUnauthorized, Name: "userauth_guard_unauthorized_total", Help: "Protected requests rejected with 401."},
	{ID: userauth.MetricGuardForbidden, Name: "userauth_guard_forbidden_total", Help: "Protected requests rejected with 403."},
}

var HistogramDefs = []HistogramDef{
	{ID: userauth.MetricResolveLatency, Name: "userauth_resolve_latency_seconds", Help: "Time spent resolving a request to a user."},
}

// AuditDroppedName is the counter for audit events dropped under backpressure.
const (
	AuditDroppedName = "userauth_audit_dropped_total"
	AuditDroppedHelp = "Audit events dropped because the dispatcher buffer was full."
)

// HistogramBounds are the finite upper bounds, in seconds, of the latency
// buckets. The final raw bucket is +Inf.
var HistogramBounds = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5}

// NormalizeBuckets pads or truncates raw to len(HistogramBounds)+1 slots.
func NormalizeBuckets(raw []uint64) []uint64 {
	out := make([]uint64, len(HistogramBounds)+1)
	copy(out, raw)
	return out
}

// CumulativeBuckets turns per-bucket counts into running totals. The last
// element is the total count.
func CumulativeBuckets(raw []uint64) []uint64 {
	out := make([]uint64, len(raw))
	var running uint64
	for i, v := range raw {
		running += v
		out[i] = running
	}
	return out
}

// ApproxSum estimates the observation sum from per-bucket counts using each
// bucket's upper bound; +Inf observations count at the largest finite bound.
// Snapshots do not record exact sums.
func ApproxSum(raw []uint64) float64 {
	var sum float64
	for i, v := range raw {
		bound := HistogramBounds[len(HistogramBounds)-1]
		if i < len(HistogramBounds) {
			bound = HistogramBounds[i]
		}
		sum += float64(v) * bound
	}
	return sum
}
