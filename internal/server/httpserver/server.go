// Package httpserver exposes the PhotoVault REST API.
package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"photovault/internal/service"
	"photovault/internal/token"
)

// Server wires services into HTTP handlers.
type Server struct {
	auth   service.AuthService
	photos service.PhotoService
	tokens *token.Service
	log    *zap.Logger
}

// New constructs a server with injected services.
func New(auth service.AuthService, photos service.PhotoService, tokens *token.Service, log *zap.Logger) *Server {
	return &Server{auth: auth, photos: photos, tokens: tokens, log: log}
}

// Router builds the route tree. The auth endpoints are unauthenticated by
// design; everything under /api/secure requires a valid bearer token.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(Recover(s.log))
	r.Use(Logging(s.log))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/signup", s.handleSignup)
		r.Post("/signin", s.handleSignin)
		r.Post("/verify", s.handleVerify)
	})

	r.Route("/api/secure/photos", func(r chi.Router) {
		r.Use(RequireAuth(s.tokens))
		r.Post("/upload", s.handleUpload)
		r.Get("/list", s.handleList)
		r.Get("/download/{filename}", s.handleDownload)
		r.Delete("/delete/{id}", s.handleDelete)
	})

	return r
}
