// Package httpapi exposes the authentication HTTP API handlers.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/scamshield/authcore/internal/service"
)

// Server wires the auth gateway into HTTP handlers.
type Server struct {
	gw  service.AuthGateway
	log *zap.Logger
	srv *http.Server
}

// New constructs an HTTP server with injected services.
func New(gw service.AuthGateway, log *zap.Logger, addr string) *Server {
	s := &Server{gw: gw, log: log}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/auth/signup", s.handleSignUp)
	mux.HandleFunc("POST /v1/auth/signin", s.handleSignIn)
	mux.HandleFunc("POST /v1/auth/signout", s.handleSignOut)
	mux.HandleFunc("POST /v1/auth/password/change", s.handleChangePassword)
	mux.HandleFunc("POST /v1/auth/password/reset/request", s.handleResetRequest)
	mux.HandleFunc("POST /v1/auth/password/reset/confirm", s.handleResetConfirm)
	mux.HandleFunc("POST /v1/auth/bootstrap", s.handleBootstrap)
	mux.HandleFunc("GET /v1/auth/me", s.handleMe)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.Handle("GET /metrics", promhttp.Handler())

	s.srv = &http.Server{
		Addr:              addr,
		Handler:           Recover(log, Logging(log, mux)),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler returns the composed handler, for tests.
func (s *Server) Handler() http.Handler { return s.srv.Handler }

// Run serves until Shutdown is called.
func (s *Server) Run() error {
	err := s.srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
