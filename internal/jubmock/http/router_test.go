package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	httpapi "github.com/aussiebroadwan/openjub/internal/jubmock/http"
	"github.com/aussiebroadwan/openjub/internal/jubmock/domain"
	"github.com/aussiebroadwan/openjub/internal/jubmock/service"
	"github.com/aussiebroadwan/openjub/pkg/cryptox"
	"github.com/aussiebroadwan/openjub/pkg/slogx"
	"github.com/stretchr/testify/require"
)

const testSeed = `
users:
  - id: u1
    username: jdoe
    password: hunter2
    attributes:
      fullName: John Doe
      college: Mercator
  - id: u2
    username: asmith
    password: pw
    attributes:
      fullName: Alice Smith
      college: Mercator
  - id: u3
    username: bnguyen
    password: pw
    attributes:
      fullName: Binh Nguyen
      college: Krupp
`

func newRouter(t *testing.T) *httpapi.Router {
	t.Helper()

	seed, err := domain.ParseSeed(strings.NewReader(testSeed))
	require.NoError(t, err)

	dir, err := service.NewDirectoryService(seed, cryptox.NewPasswordHasher("pepper"))
	require.NoError(t, err)

	nets, err := service.ParseNetworks("192.0.2.0/24")
	require.NoError(t, err)

	r := httpapi.NewRouter("https://jub.example", "test", false, slogx.Discard())
	r.Directory = dir
	tokens, err := service.NewTokenService([]byte("0123456789abcdef0123456789abcdef"), "jubmock", time.Hour)
	require.NoError(t, err)

	r.Tokens = tokens
	r.Campus = &service.CampusService{Networks: nets}
	r.ApplyRoutes()
	return r
}

func serve(r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	req.RemoteAddr = "192.0.2.10:4321"

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func signIn(t *testing.T, r http.Handler) string {
	t.Helper()
	rec := serve(r, http.MethodPost, "/auth/signin", `{"username":"jdoe","password":"hunter2"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	tok, _ := decode(t, rec)["token"].(string)
	require.NotEmpty(t, tok)
	return tok
}

func TestSignIn(t *testing.T) {
	t.Parallel()
	r := newRouter(t)

	t.Run("success", func(t *testing.T) {
		rec := serve(r, http.MethodPost, "/auth/signin", `{"username":"jdoe","password":"hunter2"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		body := decode(t, rec)
		require.Equal(t, "jdoe", body["user"])
		require.NotEmpty(t, body["token"])
		require.NotEmpty(t, rec.Header().Get(slogx.RequestIDHeader))
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := serve(r, http.MethodPost, "/auth/signin", `{"username":"jdoe","password":"nope"}`)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, "Wrong username or password", decode(t, rec)["error"])
	})

	t.Run("malformed body", func(t *testing.T) {
		rec := serve(r, http.MethodPost, "/auth/signin", `{`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestStatusAndSignOut(t *testing.T) {
	t.Parallel()
	r := newRouter(t)
	tok := signIn(t, r)

	rec := serve(r, http.MethodGet, "/auth/status?token="+tok, "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	require.Equal(t, "jdoe", body["user"])
	require.Equal(t, tok, body["token"])

	rec = serve(r, http.MethodGet, "/auth/signout?token="+tok, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serve(r, http.MethodGet, "/auth/status?token="+tok, "")
	require.Equal(t, http.StatusOK, rec.Code)
	body = decode(t, rec)
	require.Contains(t, body, "user")
	require.Nil(t, body["user"])
	require.NotContains(t, body, "token")

	rec = serve(r, http.MethodGet, "/auth/signout?token="+tok, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestIsOnCampus(t *testing.T) {
	t.Parallel()
	r := newRouter(t)

	rec := serve(r, http.MethodGet, "/auth/isoncampus", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	require.Equal(t, true, body["on_campus"])
	require.Equal(t, "192.0.2.10", body["ip"])
}

func TestUserLookups(t *testing.T) {
	t.Parallel()
	r := newRouter(t)
	tok := signIn(t, r)

	t.Run("me", func(t *testing.T) {
		rec := serve(r, http.MethodGet, "/user/me?token="+tok, "")
		require.Equal(t, http.StatusOK, rec.Code)
		body := decode(t, rec)
		require.Equal(t, "u1", body["id"])
		require.Equal(t, "John Doe", body["fullName"])
		require.NotContains(t, body, "password")
	})

	t.Run("by id with fields", func(t *testing.T) {
		rec := serve(r, http.MethodGet, "/user/id/u2?token="+tok+"&fields=username,college", "")
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, map[string]any{"username": "asmith", "college": "Mercator"}, decode(t, rec))
	})

	t.Run("by name", func(t *testing.T) {
		rec := serve(r, http.MethodGet, "/user/name/bnguyen?token="+tok, "")
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "u3", decode(t, rec)["id"])
	})

	t.Run("missing user", func(t *testing.T) {
		rec := serve(r, http.MethodGet, "/user/name/nobody?token="+tok, "")
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("no token", func(t *testing.T) {
		rec := serve(r, http.MethodGet, "/user/me", "")
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, "Invalid token", decode(t, rec)["error"])
	})
}

func TestQueryPaging(t *testing.T) {
	t.Parallel()
	r := newRouter(t)
	tok := signIn(t, r)

	rec := serve(r, http.MethodGet, "/query/college%3Amercator?token="+tok+"&limit=1&fields=username", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	require.Equal(t, []any{map[string]any{"username": "asmith"}}, body["data"])
	require.EqualValues(t, 2, body["count"])
	require.Equal(t, "https://jub.example/query/college%3Amercator?fields=username&limit=1&skip=1", body["next"])
	require.NotContains(t, body, "prev")

	rec = serve(r, http.MethodGet, "/query/college%3Amercator?token="+tok+"&limit=1&skip=1&fields=username", "")
	body = decode(t, rec)
	require.Equal(t, []any{map[string]any{"username": "jdoe"}}, body["data"])
	require.NotContains(t, body, "next")
	require.Equal(t, "https://jub.example/query/college%3Amercator?fields=username&limit=1&skip=0", body["prev"])
}

func TestSearch(t *testing.T) {
	t.Parallel()
	r := newRouter(t)
	tok := signIn(t, r)

	rec := serve(r, http.MethodGet, "/search/krupp?token="+tok, "")
	require.Equal(t, http.StatusOK, rec.Code)
	data, _ := decode(t, rec)["data"].([]any)
	require.Len(t, data, 1)

	rec = serve(r, http.MethodGet, "/search/krupp", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSystemEndpoints(t *testing.T) {
	t.Parallel()
	r := newRouter(t)

	rec := serve(r, http.MethodGet, "/livez", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", decode(t, rec)["status"])

	rec = serve(r, http.MethodGet, "/view/login", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	require.Contains(t, rec.Body.String(), "postMessage")
}

func TestCORSPreflight(t *testing.T) {
	t.Parallel()
	r := newRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/auth/signin", nil)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	require.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
}
