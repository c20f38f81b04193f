package http

import (
	_ "embed"
	"net/http"

	"github.com/aussiebroadwan/openjub/pkg/httpx"
)

//go:embed login.html
var loginPage []byte

// LoginPageHandler serves the interactive sign-in page. On success the page
// posts {"token": ...} to its opener window and closes itself.
func LoginPageHandler(w http.ResponseWriter, r *http.Request) {
	httpx.NoCache(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Frame-Options", "DENY")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(loginPage)
}
