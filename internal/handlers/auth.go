package handlers

import (
	"net/http"

	"github.com/diewo77/go-lessons/auth"
	"github.com/diewo77/go-lessons/httpx"
	"github.com/diewo77/go-lessons/internal/models"
	"github.com/diewo77/go-lessons/internal/services"
)

type AuthHandler struct {
	accounts *services.AccountService
	authn    *auth.Authenticator
}

func NewAuthHandler(accounts *services.AccountService, authn *auth.Authenticator) *AuthHandler {
	return &AuthHandler{accounts: accounts, authn: authn}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token   string          `json:"token"`
	Profile *models.Profile `json:"profile"`
}

// Signup registers a student or instructor and starts a session.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var in services.SignupInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	profile, err := h.accounts.Signup(r.Context(), in)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	h.startSession(w, r, http.StatusCreated, profile)
}

// Login checks credentials, sets the session cookie and returns a bearer
// token for API clients.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	profile, err := h.accounts.Authenticate(r.Context(), in.Email, in.Password)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	h.startSession(w, r, http.StatusOK, profile)
}

func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, status int, profile *models.Profile) {
	token, err := h.authn.IssueToken(profile.ID, string(profile.Role))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	h.authn.CreateSession(w, profile.ID)
	httpx.JSON(w, status, sessionResponse{Token: token, Profile: profile})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, _ *http.Request) {
	h.authn.ClearSession(w)
	w.WriteHeader(http.StatusNoContent)
}
