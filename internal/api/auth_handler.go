package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/moisesdreckmann/projetoreactnative/internal/identity"
	"github.com/moisesdreckmann/projetoreactnative/internal/session"
)

type signInRequest struct {
	ClientID string `json:"client_id"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signInResponse struct {
	Token    string `json:"token"`
	ClientID string `json:"client_id"`
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
}

type signUpRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type resetPasswordRequest struct {
	Email string `json:"email"`
}

type restoreRequest struct {
	ClientID string `json:"client_id"`
	Token    string `json:"token"`
}

// POST /api/v1/auth/signin
func (s *Server) SignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "invalid JSON body")
		return
	}
	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "missing_fields", "email and password are required")
		return
	}
	if req.ClientID == "" {
		req.ClientID = uuid.New().String()
	}

	cs, err := s.sessions.SignIn(r.Context(), req.ClientID, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrEmailNotVerified):
			respondError(w, http.StatusForbidden, "email_not_verified", "verify your email before signing in")
		case errors.Is(err, identity.ErrInvalidCredentials):
			respondError(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password")
		default:
			respondError(w, http.StatusBadGateway, "identity_provider_error", err.Error())
		}
		return
	}

	sess, _ := cs.Gate.Current()
	respondJSON(w, http.StatusOK, signInResponse{
		Token:    cs.Token,
		ClientID: cs.ClientID,
		UserID:   sess.UserID,
		Email:    sess.Email,
	})
}

// POST /api/v1/auth/signup
func (s *Server) SignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "invalid JSON body")
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "missing_fields", "name, email and password are required")
		return
	}

	gate := session.NewGate(s.provider, s.sessionCache, req.Email)
	if err := gate.Register(r.Context(), req.Name, req.Email, req.Password); err != nil {
		if errors.Is(err, identity.ErrEmailInUse) {
			respondError(w, http.StatusConflict, "email_in_use", "the email is already in use")
			return
		}
		respondError(w, http.StatusBadGateway, "identity_provider_error", err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{
		"message": "verification email sent to " + req.Email,
	})
}

// POST /api/v1/auth/signout
func (s *Server) SignOut(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}

	if err := s.sessions.SignOut(r.Context(), token); err != nil {
		respondError(w, http.StatusBadGateway, "identity_provider_error", err.Error())
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// POST /api/v1/auth/reset-password
func (s *Server) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "invalid JSON body")
		return
	}
	if req.Email == "" {
		respondError(w, http.StatusBadRequest, "missing_fields", "email is required")
		return
	}

	gate := session.NewGate(s.provider, s.sessionCache, req.Email)
	if err := gate.ResetPassword(r.Context(), req.Email); err != nil {
		respondError(w, http.StatusBadGateway, "identity_provider_error", err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "password reset email sent to " + req.Email,
	})
}

// POST /api/v1/auth/restore
func (s *Server) Restore(w http.ResponseWriter, r *http.Request) {
	var req restoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "invalid JSON body")
		return
	}
	if req.ClientID == "" || req.Token == "" {
		respondError(w, http.StatusBadRequest, "missing_fields", "client_id and token are required")
		return
	}

	cs, err := s.sessions.Restore(r.Context(), req.ClientID, req.Token)
	if err != nil {
		if errors.Is(err, session.ErrEmailNotVerified) {
			respondError(w, http.StatusForbidden, "email_not_verified", "verify your email before signing in")
			return
		}
		respondError(w, http.StatusBadGateway, "identity_provider_error", err.Error())
		return
	}
	if cs == nil {
		respondError(w, http.StatusUnauthorized, "session_expired", "sign in again")
		return
	}

	sess, _ := cs.Gate.Current()
	respondJSON(w, http.StatusOK, signInResponse{
		Token:    cs.Token,
		ClientID: cs.ClientID,
		UserID:   sess.UserID,
		Email:    sess.Email,
	})
}
