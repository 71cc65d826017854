package userauth

import (
	"context"
	"net/http/httptest"
	"testing"
)

func TestRequiresAuth(t *testing.T) {
	excluded := []string{"/api/v1/status/", "/api/v1/stat*"}

	cases := []struct {
		name     string
		path     string
		excluded []string
		want     bool
	}{
		{"empty path", "", excluded, true},
		{"nil exclusions", "/api/v1/status", nil, true},
		{"empty exclusions", "/api/v1/status", []string{}, true},
		{"exact with slash", "/api/v1/status/", excluded, false},
		{"exact without slash", "/api/v1/status", excluded, false},
		{"wildcard prefix", "/api/v1/stats", excluded, false},
		{"wildcard deeper", "/api/v1/statistics/today", excluded, false},
		{"not excluded", "/api/v1/users", excluded, true},
		{"sub path of exact entry", "/api/v1/status/deep", []string{"/api/v1/status/"}, true},
		{"star only", "/anything", []string{"*"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := RequiresAuth(tc.path, tc.excluded); got != tc.want {
				t.Fatalf("RequiresAuth(%q, %v) = %v, want %v", tc.path, tc.excluded, got, tc.want)
			}
		})
	}
}

func TestRequiresAuthSameForEveryStrategy(t *testing.T) {
	users := newTestUsers()
	strategies := map[string]Strategy{
		AuthTypeBase:       Auth{},
		AuthTypeBasic:      NewBasicAuth(users),
		AuthTypeSession:    NewSessionAuth(nil, users, ""),
		AuthTypeSessionExp: NewExpiringSessionAuth(nil, users, "", 0),
		AuthTypeSessionDB:  NewPersistentSessionAuth(nil, users, "", 0),
	}
	excluded := []string{"/public/", "/static*"}
	paths := []string{"", "/public", "/public/", "/static/app.js", "/private"}

	for name, s := range strategies {
		for _, p := range paths {
			if got, want := s.RequiresAuth(p, excluded), RequiresAuth(p, excluded); got != want {
				t.Fatalf("%s.RequiresAuth(%q) = %v, want %v", name, p, got, want)
			}
		}
	}
}

func TestAuthBaseStrategy(t *testing.T) {
	var a Auth

	if _, ok := a.ExtractToken(nil); ok {
		t.Fatalf("expected no token for nil request")
	}
	if _, ok := a.ExtractToken(testRequest{}); ok {
		t.Fatalf("expected no token without header")
	}
	token, ok := a.ExtractToken(withHeader(AuthorizationHeader, "Basic abc"))
	if !ok || token != "Basic abc" {
		t.Fatalf("unexpected token %q %v", token, ok)
	}
	if u, ok := a.CurrentUser(context.Background(), withHeader(AuthorizationHeader, "Basic abc")); ok || u != nil {
		t.Fatalf("base strategy must never resolve a user")
	}
}

func TestFromHTTP(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("Authorization", "Basic Zm9vOmJhcg==")
	r.Header.Add("Cookie", "sid=abc")

	req := FromHTTP(r)
	if v, ok := req.Header("Authorization"); !ok || v != "Basic Zm9vOmJhcg==" {
		t.Fatalf("header: %q %v", v, ok)
	}
	if v, ok := req.Cookie("sid"); !ok || v != "abc" {
		t.Fatalf("cookie: %q %v", v, ok)
	}
	if _, ok := req.Cookie("other"); ok {
		t.Fatalf("unexpected cookie")
	}

	empty := FromHTTP(nil)
	if _, ok := empty.Header("Authorization"); ok {
		t.Fatalf("nil request must have no headers")
	}
	if _, ok := empty.Cookie("sid"); ok {
		t.Fatalf("nil request must have no cookies")
	}
}

func TestUserContext(t *testing.T) {
	if _, ok := UserFromContext(context.Background()); ok {
		t.Fatalf("expected no user")
	}
	u := &testUser{id: "u1"}
	got, ok := UserFromContext(WithUser(context.Background(), u))
	if !ok || got.UserID() != "u1" {
		t.Fatalf("unexpected user %v %v", got, ok)
	}
	if _, ok := UserFromContext(WithUser(context.Background(), nil)); ok {
		t.Fatalf("nil user must not be reported")
	}
}
