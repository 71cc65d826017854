package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/CipherPhantom/userauth/metrics/export/prometheus"
	"github.com/CipherPhantom/userauth/middleware"
)

func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(s.logRequests)
	r.Use(s.recoverPanics)
	r.Use(limitBody)
	r.Use(chimw.StripSlashes)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})

	r.Route("/api/v1", func(r chi.Router) {
		if s.accounts != nil {
			r.Post("/users", s.handleRegister)
		}

		r.Group(func(r chi.Router) {
			r.Use(middleware.ForEngine(s.engine))

			r.Get("/status", s.handleStatus)
			r.Get("/stats", s.handleStats)
			r.Get("/unauthorized", s.handleUnauthorized)
			r.Get("/forbidden", s.handleForbidden)
			r.Get("/metrics", prometheus.Handler(prometheus.NewCollector(s.engine)).ServeHTTP)
			r.Get("/users/me", s.handleMe)

			if s.sessions != nil {
				if s.accounts != nil {
					r.Post("/auth_session/login", s.handleLogin)
				}
				r.Delete("/auth_session/logout", s.handleLogout)
			}
			if s.accounts != nil {
				r.Post("/reset_password", s.handleResetToken)
				r.Put("/reset_password", s.handleUpdatePassword)
			}
		})
	})

	return r
}
