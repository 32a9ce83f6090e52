package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/scamshield/authcore/internal/errs"
	"github.com/scamshield/authcore/internal/model"
)

type userDTO struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserDTO(u *model.User) *userDTO {
	if u == nil {
		return nil
	}
	return &userDTO{
		ID:        u.ID.String(),
		Email:     u.Email,
		Name:      u.Name,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
	}
}

type authResponse struct {
	Token string   `json:"token"`
	User  *userDTO `json:"user"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps gateway sentinels to stable status codes and messages.
// Anything unmapped is logged and answered with a bare 500; internal detail
// never reaches the client.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var status int
	var msg string
	switch {
	case errors.Is(err, errs.ErrInvalidEmail):
		status, msg = http.StatusBadRequest, "Invalid email address"
	case errors.Is(err, errs.ErrWeakPassword):
		status, msg = http.StatusBadRequest, "Password must be at least 8 characters"
	case errors.Is(err, errs.ErrInvalidResetCode):
		status, msg = http.StatusBadRequest, "Invalid or expired reset code"
	case errors.Is(err, errs.ErrInvalidCredentials):
		status, msg = http.StatusUnauthorized, "Invalid email or password"
	case errors.Is(err, errs.ErrPasswordNotSet):
		status, msg = http.StatusUnauthorized, "No password set for this account, sign up to claim it"
	case errors.Is(err, errs.ErrSessionExpired):
		status, msg = http.StatusUnauthorized, "Session expired"
	case errors.Is(err, errs.ErrAccountExists):
		status, msg = http.StatusConflict, "An account with this email already exists"
	case errors.Is(err, errs.ErrRateLimited):
		status, msg = http.StatusTooManyRequests, "Too many attempts, try again in 15 minutes"
	default:
		s.log.Error("request failed", zap.Error(err))
		status, msg = http.StatusInternalServerError, "Internal error"
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Malformed request body"})
		return false
	}
	return true
}

// bearerToken extracts the session token from the Authorization header.
func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(h, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(h, prefix))
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Name     string `json:"name"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := s.gw.SignUp(r.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, authResponse{Token: res.Token, User: toUserDTO(&res.User)})
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := s.gw.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{Token: res.Token, User: toUserDTO(&res.User)})
}

func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	if err := s.gw.SignOut(r.Context(), bearerToken(r)); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := s.gw.ChangePassword(r.Context(), bearerToken(r), req.CurrentPassword, req.NewPassword); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleResetRequest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := s.gw.RequestPasswordReset(r.Context(), req.Email)
	if err != nil {
		s.writeError(w, err)
		return
	}
	// The message is the same whether or not the account exists.
	out := struct {
		Message  string `json:"message"`
		DemoCode string `json:"demo_code,omitempty"`
	}{
		Message:  "If the account exists, a reset code has been sent",
		DemoCode: res.DemoCode,
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleResetConfirm(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email       string `json:"email"`
		Code        string `json:"code"`
		NewPassword string `json:"new_password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	// The handoff session the gateway mints stays internal; the client is
	// told only that the reset worked and signs in with the new password.
	if _, err := s.gw.ResetPasswordWithCode(r.Context(), req.Email, req.Code, req.NewPassword); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Success bool `json:"success"`
	}{Success: true})
}

func (s *Server) handleBootstrap(w http.ResponseWriter, r *http.Request) {
	promoted, err := s.gw.BootstrapAdminIfNeeded(r.Context(), bearerToken(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Promoted bool `json:"promoted"`
	}{Promoted: promoted})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	u, err := s.gw.GetCurrentUser(r.Context(), bearerToken(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	// A missing or expired session is not an error here, just a null user.
	writeJSON(w, http.StatusOK, struct {
		User *userDTO `json:"user"`
	}{User: toUserDTO(u)})
}
