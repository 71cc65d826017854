package userauth

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"github.com/CipherPhantom/userauth/credential"
)

func basicRequest(username, password string) testRequest {
	return withHeader(AuthorizationHeader, credential.EncodeBasic(username, password))
}

func TestBasicAuthResolvesUser(t *testing.T) {
	bob := &testUser{id: "bob@example.com", password: "H0lbertonSchool98!"}
	auth := NewBasicAuth(newTestUsers(bob))

	u, ok := auth.CurrentUser(context.Background(), basicRequest("bob@example.com", "H0lbertonSchool98!"))
	if !ok || u.UserID() != bob.id {
		t.Fatalf("expected bob, got %v %v", u, ok)
	}
}

func TestBasicAuthRejections(t *testing.T) {
	bob := &testUser{id: "bob", password: "pwd"}

	cases := []struct {
		name string
		req  Request
	}{
		{"nil request", nil},
		{"no header", testRequest{}},
		{"bearer scheme", withHeader(AuthorizationHeader, "Bearer abc")},
		{"lowercase scheme", withHeader(AuthorizationHeader, "basic "+base64.StdEncoding.EncodeToString([]byte("bob:pwd")))},
		{"bad base64", withHeader(AuthorizationHeader, "Basic !!!")},
		{"no separator", withHeader(AuthorizationHeader, "Basic "+base64.StdEncoding.EncodeToString([]byte("bobpwd")))},
		{"unknown user", basicRequest("alice", "pwd")},
		{"wrong password", basicRequest("bob", "nope")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			auth := NewBasicAuth(newTestUsers(bob))
			if u, ok := auth.CurrentUser(context.Background(), tc.req); ok || u != nil {
				t.Fatalf("expected rejection, got %v", u)
			}
		})
	}
}

func TestBasicAuthPasswordMayContainColon(t *testing.T) {
	u := &testUser{id: "bob", password: "p:a:ss"}
	auth := NewBasicAuth(newTestUsers(u))

	if _, ok := auth.CurrentUser(context.Background(), basicRequest("bob", "p:a:ss")); !ok {
		t.Fatalf("expected password with colons to verify")
	}
}

func TestBasicAuthTriesEveryCandidate(t *testing.T) {
	first := &testUser{id: "u1", password: "one"}
	second := &testUser{id: "u2", password: "two"}
	users := newTestUsers()
	users.add("shared", first)
	users.add("shared", second)

	auth := NewBasicAuth(users)
	u, ok := auth.CurrentUser(context.Background(), basicRequest("shared", "two"))
	if !ok || u.UserID() != "u2" {
		t.Fatalf("expected second candidate, got %v %v", u, ok)
	}
}

func TestBasicAuthUserFromCredentialsErrors(t *testing.T) {
	users := newTestUsers(&testUser{id: "bob", password: "pwd"})
	auth := NewBasicAuth(users)
	ctx := context.Background()

	if _, err := auth.UserFromCredentials(ctx, "alice", "pwd"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := auth.UserFromCredentials(ctx, "bob", "bad"); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}

	users.err = errBackendDown
	if _, err := auth.UserFromCredentials(ctx, "bob", "pwd"); !errors.Is(err, ErrStoreFailure) {
		t.Fatalf("expected ErrStoreFailure, got %v", err)
	}

	if _, err := NewBasicAuth(nil).UserFromCredentials(ctx, "bob", "pwd"); !errors.Is(err, ErrStoreFailure) {
		t.Fatalf("expected ErrStoreFailure without a store, got %v", err)
	}
}

func TestBasicAuthStoreFailureIsNotAUser(t *testing.T) {
	users := newTestUsers(&testUser{id: "bob", password: "pwd"})
	users.err = errBackendDown
	m := enabledMetrics()
	auth := NewBasicAuth(users, WithMetrics(m))

	if _, ok := auth.CurrentUser(context.Background(), basicRequest("bob", "pwd")); ok {
		t.Fatalf("store failure must not authenticate")
	}
	if got := m.Value(MetricStoreFailure); got != 1 {
		t.Fatalf("expected 1 store failure, got %d", got)
	}
	if got := m.Value(MetricBasicAuthFailure); got != 1 {
		t.Fatalf("expected 1 basic failure, got %d", got)
	}
}

func TestBasicAuthMetricsAndAudit(t *testing.T) {
	users := newTestUsers(&testUser{id: "bob", password: "pwd"})
	m := enabledMetrics()
	sink := NewChannelSink(4)
	auth := NewBasicAuth(users, WithMetrics(m), WithAuditSink(sink))
	ctx := context.Background()

	auth.CurrentUser(ctx, basicRequest("bob", "pwd"))
	auth.CurrentUser(ctx, withHeader(AuthorizationHeader, "Basic !!!"))

	if got := m.Value(MetricBasicAuthSuccess); got != 1 {
		t.Fatalf("success = %d", got)
	}
	if got := m.Value(MetricBasicAuthFailure); got != 1 {
		t.Fatalf("failure = %d", got)
	}

	var total uint64
	for _, c := range m.Snapshot().Histograms[MetricResolveLatency] {
		total += c
	}
	if total != 2 {
		t.Fatalf("expected 2 latency observations, got %d", total)
	}

	select {
	case ev := <-sink.Events():
		if ev.Type != AuditBasicAuthFailed || ev.Strategy != AuthTypeBasic || ev.Reason != "malformed_credentials" {
			t.Fatalf("unexpected event %+v", ev)
		}
		if ev.Timestamp.IsZero() {
			t.Fatalf("event timestamp not set")
		}
	case <-time.After(time.Second):
		t.Fatalf("no audit event")
	}
}
