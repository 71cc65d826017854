package userauth

import (
	"context"
	"errors"
	"sync"
	"time"
)

type testUser struct {
	id       string
	password string
}

func (u *testUser) UserID() string { return u.id }

func (u *testUser) VerifyPassword(candidate string) bool {
	return candidate == u.password
}

// testUsers is a UserStore keyed by login and id. err, when set, fails every
// call.
type testUsers struct {
	mu      sync.Mutex
	byLogin map[string][]User
	byID    map[string]User
	err     error
}

func newTestUsers(users ...*testUser) *testUsers {
	s := &testUsers{byLogin: map[string][]User{}, byID: map[string]User{}}
	for _, u := range users {
		s.add(u.id, u)
	}
	return s
}

func (s *testUsers) add(login string, u *testUser) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byLogin[login] = append(s.byLogin[login], u)
	s.byID[u.id] = u
}

func (s *testUsers) FindByCredentials(_ context.Context, login string) ([]User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return append([]User(nil), s.byLogin[login]...), nil
}

func (s *testUsers) GetByID(_ context.Context, id string) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	u, ok := s.byID[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return u, nil
}

type testRequest struct {
	headers map[string]string
	cookies map[string]string
}

func (r testRequest) Header(name string) (string, bool) {
	v, ok := r.headers[name]
	return v, ok
}

func (r testRequest) Cookie(name string) (string, bool) {
	v, ok := r.cookies[name]
	return v, ok
}

func withHeader(name, value string) testRequest {
	return testRequest{headers: map[string]string{name: value}}
}

func withCookie(name, value string) testRequest {
	return testRequest{cookies: map[string]string{name: value}}
}

// testClock is a settable clock for expiry tests.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

var errBackendDown = errors.New("backend down")

func enabledMetrics() *Metrics {
	return NewMetrics(MetricsConfig{Enabled: true, EnableLatencyHistograms: true})
}
