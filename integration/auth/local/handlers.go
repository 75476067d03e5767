package local

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/launchpad/core/auth"
	"github.com/dmitrymomot/launchpad/core/email"
)

// credentialsRequest is the body accepted by sign-in, sign-up, and the
// reset endpoints.
type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Token    string `json:"token"`
}

// Routes exposes the credential flow as HTTP endpoints:
//
//	POST /signin         {email, password} -> {token, session}
//	POST /signup         {email, password} -> {token, session}
//	POST /signout        (bearer token)    -> 204
//	POST /reset-password {email}           -> 202
//	POST /reset-confirm  {token, password} -> 204
func (f *Flow) Routes() http.Handler {
	r := chi.NewRouter()
	r.Post("/signin", f.handleSignIn)
	r.Post("/signup", f.handleSignUp)
	r.Post("/signout", f.handleSignOut)
	r.Post("/reset-password", f.handleResetRequest)
	r.Post("/reset-confirm", f.handleResetConfirm)
	return r
}

func (f *Flow) handleSignIn(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCredentials(w, r)
	if !ok {
		return
	}
	grant, err := f.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		writeFlowError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, grant)
}

func (f *Flow) handleSignUp(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCredentials(w, r)
	if !ok {
		return
	}
	grant, err := f.SignUp(r.Context(), req.Email, req.Password)
	if err != nil {
		writeFlowError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, grant)
}

func (f *Flow) handleSignOut(w http.ResponseWriter, r *http.Request) {
	if err := f.SignOut(r.Context()); err != nil {
		writeFlowError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (f *Flow) handleResetRequest(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCredentials(w, r)
	if !ok {
		return
	}
	if err := f.RequestReset(r.Context(), req.Email); err != nil {
		writeFlowError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (f *Flow) handleResetConfirm(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCredentials(w, r)
	if !ok {
		return
	}
	if err := f.ConfirmReset(r.Context(), req.Token, req.Password); err != nil {
		writeFlowError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodeCredentials(w http.ResponseWriter, r *http.Request) (credentialsRequest, bool) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed request body"})
		return credentialsRequest{}, false
	}
	return req, true
}

// writeFlowError maps flow errors onto HTTP statuses without leaking
// internals: credential and token failures are client errors, anything
// else is a 500 with a generic message.
func writeFlowError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
	case errors.Is(err, ErrEmailTaken),
		errors.Is(err, ErrWeakPassword),
		errors.Is(err, ErrInvalidResetToken),
		errors.Is(err, email.ErrInvalidParams):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, auth.ErrNotConfigured):
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
