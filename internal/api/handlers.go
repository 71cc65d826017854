package api

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/CipherPhantom/userauth"
	"github.com/CipherPhantom/userauth/internal/rate"
	"github.com/CipherPhantom/userauth/middleware"
)

type userCounter interface {
	Count(ctx context.Context) (int, error)
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "OK", "version": s.version})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats := map[string]int{"users": 0}
	if counter, ok := s.users.(userCounter); ok {
		n, err := counter.Count(r.Context())
		if err != nil {
			s.logger.ErrorContext(r.Context(), "count users failed", "error", err)
			writeError(w, http.StatusInternalServerError, "cannot count users")
			return
		}
		stats["users"] = n
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleUnauthorized(w http.ResponseWriter, _ *http.Request) {
	middleware.WriteError(w, http.StatusUnauthorized)
}

func (s *Server) handleForbidden(w http.ResponseWriter, _ *http.Request) {
	middleware.WriteError(w, http.StatusForbidden)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := userauth.UserFromContext(r.Context())
	if !ok {
		middleware.WriteError(w, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	email, password := r.FormValue("email"), r.FormValue("password")
	if email == "" {
		writeError(w, http.StatusBadRequest, "email missing")
		return
	}
	if password == "" {
		writeError(w, http.StatusBadRequest, "password missing")
		return
	}

	if _, err := s.accounts.Register(r.Context(), email, password); err != nil {
		if errors.Is(err, userauth.ErrAccountExists) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "email already registered"})
			return
		}
		s.logger.ErrorContext(r.Context(), "register failed", "error", err)
		writeError(w, http.StatusBadRequest, "can't create user")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"email": email, "message": "user created"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	email, password := r.FormValue("email"), r.FormValue("password")
	if email == "" {
		writeError(w, http.StatusBadRequest, "email missing")
		return
	}
	if password == "" {
		writeError(w, http.StatusBadRequest, "password missing")
		return
	}

	ip := clientIP(r)
	if err := s.throttle.Check(r.Context(), email, ip); err != nil {
		s.throttled(w, r, err)
		return
	}

	user, err := s.accounts.Authenticate(r.Context(), email, password)
	switch {
	case errors.Is(err, userauth.ErrUserNotFound):
		s.recordFailure(r, email, ip)
		writeError(w, http.StatusNotFound, "no user found for this email")
		return
	case errors.Is(err, userauth.ErrUnauthenticated):
		s.recordFailure(r, email, ip)
		writeError(w, http.StatusUnauthorized, "wrong password")
		return
	case err != nil:
		s.logger.ErrorContext(r.Context(), "login failed", "error", err)
		writeError(w, http.StatusInternalServerError, "cannot log in")
		return
	}

	if err := s.throttle.Reset(r.Context(), email, ip); err != nil {
		s.logger.WarnContext(r.Context(), "clearing login throttle", "error", err)
	}

	sessionID, ok := s.sessions.CreateSession(r.Context(), user.UserID())
	if !ok {
		writeError(w, http.StatusInternalServerError, "cannot create session")
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.sessions.CookieName(),
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if !s.sessions.DestroySession(r.Context(), userauth.FromHTTP(r)) {
		middleware.WriteError(w, http.StatusNotFound)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.sessions.CookieName(),
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cfg.CookieSecure,
	})
	writeJSON(w, http.StatusOK, map[string]any{})
}

func (s *Server) handleResetToken(w http.ResponseWriter, r *http.Request) {
	email := r.FormValue("email")
	token, err := s.accounts.ResetPasswordToken(r.Context(), email)
	if err != nil {
		if !errors.Is(err, userauth.ErrUserNotFound) {
			s.logger.WarnContext(r.Context(), "reset token failed", "error", err)
		}
		middleware.WriteError(w, http.StatusForbidden)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"email": email, "reset_token": token})
}

func (s *Server) handleUpdatePassword(w http.ResponseWriter, r *http.Request) {
	email := r.FormValue("email")
	token, newPassword := r.FormValue("reset_token"), r.FormValue("new_password")
	if newPassword == "" {
		middleware.WriteError(w, http.StatusForbidden)
		return
	}
	if err := s.accounts.UpdatePassword(r.Context(), token, newPassword); err != nil {
		if !errors.Is(err, userauth.ErrResetTokenInvalid) {
			s.logger.WarnContext(r.Context(), "password update failed", "error", err)
		}
		middleware.WriteError(w, http.StatusForbidden)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"email": email, "message": "Password updated"})
}

// recordFailure counts a failed login. The response for this attempt is
// unchanged; the budget applies from the next one.
func (s *Server) recordFailure(r *http.Request, email, ip string) {
	err := s.throttle.Fail(r.Context(), email, ip)
	switch {
	case errors.Is(err, rate.ErrRateLimited):
		s.logger.WarnContext(r.Context(), "login throttled", "email", email, "ip", ip)
	case err != nil:
		s.logger.ErrorContext(r.Context(), "recording failed login", "error", err)
	}
}

func (s *Server) throttled(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, rate.ErrRateLimited) {
		writeError(w, http.StatusTooManyRequests, "too many failed attempts")
		return
	}
	s.logger.ErrorContext(r.Context(), "login throttle unavailable", "error", err)
	writeError(w, http.StatusServiceUnavailable, "cannot log in")
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
