package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aussiebroadwan/openjub/internal/jubmock/domain"
	"github.com/aussiebroadwan/openjub/internal/jubmock/service"
	"github.com/aussiebroadwan/openjub/pkg/httpx"
	"github.com/aussiebroadwan/openjub/pkg/slogx"
)

// AuthHandler serves the /auth endpoints.
type AuthHandler struct {
	Directory  *service.DirectoryService
	Tokens     *service.TokenService
	Campus     *service.CampusService
	TrustProxy bool
}

type signInRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type signInResponse struct {
	Token string `json:"token"`
	User  string `json:"user"`
}

// statusResponse leaves user null for anonymous callers.
type statusResponse struct {
	User  *string `json:"user"`
	Token string  `json:"token,omitempty"`
}

type campusResponse struct {
	OnCampus bool   `json:"on_campus"`
	IP       string `json:"ip"`
}

func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	log := slogx.FromContext(r.Context())

	var req signInRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	u, err := h.Directory.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		log.Info("sign in rejected", "username", req.Username)
		httpx.WriteError(w, http.StatusUnauthorized, "Wrong username or password")
		return
	}

	token, err := h.Tokens.Issue(u)
	if err != nil {
		log.Error("issue token", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, signInResponse{Token: token, User: u.Username})
}

func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	if err := h.Tokens.Revoke(r.URL.Query().Get("token")); err != nil {
		httpx.WriteError(w, http.StatusUnauthorized, "Invalid token")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Status never fails: an invalid token is reported as an anonymous caller.
func (h *AuthHandler) Status(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")

	claims, err := h.Tokens.Verify(token)
	if err != nil {
		if !errors.Is(err, domain.ErrInvalidToken) {
			slogx.FromContext(r.Context()).Warn("verify token", "error", err)
		}
		httpx.WriteJSON(w, http.StatusOK, statusResponse{})
		return
	}

	httpx.WriteJSON(w, http.StatusOK, statusResponse{User: &claims.Username, Token: token})
}

func (h *AuthHandler) IsOnCampus(w http.ResponseWriter, r *http.Request) {
	ip := httpx.ClientIP(r, h.TrustProxy)
	httpx.WriteJSON(w, http.StatusOK, campusResponse{OnCampus: h.Campus.OnCampus(ip), IP: ip})
}
