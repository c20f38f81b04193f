package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/openjub/internal/jubmock/domain"
	"github.com/aussiebroadwan/openjub/internal/jubmock/service"
	"github.com/aussiebroadwan/openjub/pkg/httpx"
	"github.com/aussiebroadwan/openjub/pkg/jwtx"
)

// UserHandler serves single-record lookups.
type UserHandler struct {
	Directory *service.DirectoryService
	Tokens    *service.TokenService
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := authorize(w, r, h.Tokens)
	if !ok {
		return
	}
	u, err := h.Directory.GetUserByID(r.Context(), claims.Subject)
	writeUser(w, r, u, err)
}

func (h *UserHandler) ByID(w http.ResponseWriter, r *http.Request) {
	if _, ok := authorize(w, r, h.Tokens); !ok {
		return
	}
	u, err := h.Directory.GetUserByID(r.Context(), r.PathValue("id"))
	writeUser(w, r, u, err)
}

func (h *UserHandler) ByName(w http.ResponseWriter, r *http.Request) {
	if _, ok := authorize(w, r, h.Tokens); !ok {
		return
	}
	u, err := h.Directory.GetUserByName(r.Context(), r.PathValue("name"))
	writeUser(w, r, u, err)
}

func writeUser(w http.ResponseWriter, r *http.Request, u domain.User, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, "User not found")
	case err != nil:
		httpx.WriteError(w, http.StatusInternalServerError, "Internal server error")
	default:
		httpx.WriteJSON(w, http.StatusOK, domain.Project(u.Record(), parseFields(r)))
	}
}

// authorize verifies the token query parameter, writing a 401 when it is
// missing or invalid.
func authorize(w http.ResponseWriter, r *http.Request, tokens *service.TokenService) (jwtx.Claims, bool) {
	claims, err := tokens.Verify(r.URL.Query().Get("token"))
	if err != nil {
		httpx.WriteError(w, http.StatusUnauthorized, "Invalid token")
		return jwtx.Claims{}, false
	}
	return claims, true
}

// parseFields splits the comma separated fields parameter, dropping blanks.
func parseFields(r *http.Request) []string {
	raw := r.URL.Query().Get("fields")
	if raw == "" {
		return nil
	}

	var out []string
	for _, f := range strings.Split(raw, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
