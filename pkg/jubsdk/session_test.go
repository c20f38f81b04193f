package jubsdk_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/openjub/pkg/jubsdk"
	"github.com/aussiebroadwan/openjub/pkg/slogx"
	"github.com/stretchr/testify/require"
)

func TestNewIsAnonymous(t *testing.T) {
	t.Parallel()

	sess := jubsdk.New("openjub.example.edu/", jubsdk.WithLogger(slogx.Discard()))
	require.Equal(t, "https://openjub.example.edu", sess.Server())
	require.Equal(t, jubsdk.Anonymous, sess.State())
	require.Empty(t, sess.Token())
}

func TestSignIn(t *testing.T) {
	t.Parallel()

	t.Run("stores token without identity", func(t *testing.T) {
		t.Parallel()

		var got map[string]string
		srv := newScriptedServer(t, map[string]http.HandlerFunc{
			"POST /auth/signin": func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, "application/json", r.Header.Get("Content-Type"))
				_ = json.NewDecoder(r.Body).Decode(&got)
				writeJSON(w, http.StatusOK, map[string]string{"token": "T"})
			},
		})

		store := jubsdk.NewMemoryStore()
		sess := srv.Session(jubsdk.WithTokenStore(store))

		resp, err := sess.SignIn(t.Context(), "u", "p")
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, map[string]string{"username": "u", "password": "p"}, got)

		require.Equal(t, jubsdk.TokenOnly, sess.State())
		require.Equal(t, "T", sess.Token())
		require.Empty(t, sess.Identity())

		saved, _ := store.Load(t.Context(), sess.Server())
		require.Equal(t, "T", saved)
	})

	t.Run("failure leaves state unchanged", func(t *testing.T) {
		t.Parallel()

		srv := newScriptedServer(t, map[string]http.HandlerFunc{
			"POST /auth/signin": reply(http.StatusUnauthorized, map[string]string{"error": "Wrong username or password"}),
		})
		sess := signedIn(t, srv, "OLD")

		_, err := sess.SignIn(t.Context(), "u", "bad")

		var pe *jubsdk.ProtocolError
		require.ErrorAs(t, err, &pe)
		require.Equal(t, http.StatusUnauthorized, pe.StatusCode)
		require.Equal(t, "Wrong username or password", pe.Message)
		require.Equal(t, "OLD", sess.Token())
		require.Zero(t, srv.Count("/auth/status"), "sign-in failures do not refresh")
	})
}

func TestSignOut(t *testing.T) {
	t.Parallel()

	t.Run("clears session and store", func(t *testing.T) {
		t.Parallel()

		srv := newScriptedServer(t, map[string]http.HandlerFunc{
			"GET /auth/signout": reply(http.StatusOK, map[string]any{}),
		})
		store := jubsdk.NewMemoryStore()
		sess := srv.Session(jubsdk.WithTokenStore(store))
		require.NoError(t, store.Save(t.Context(), sess.Server(), "T"))
		require.True(t, sess.RestoreToken(t.Context()))

		_, err := sess.SignOut(t.Context())
		require.NoError(t, err)
		require.Equal(t, jubsdk.Anonymous, sess.State())
		require.Equal(t, []string{"/auth/signout?token=T"}, srv.Requests())

		saved, _ := store.Load(t.Context(), sess.Server())
		require.Empty(t, saved)
	})

	t.Run("failure leaves state unchanged", func(t *testing.T) {
		t.Parallel()

		srv := newScriptedServer(t, map[string]http.HandlerFunc{
			"GET /auth/signout": reply(http.StatusInternalServerError, map[string]string{"error": "boom"}),
		})
		sess := signedIn(t, srv, "T")

		_, err := sess.SignOut(t.Context())
		require.True(t, jubsdk.IsStatus(err, http.StatusInternalServerError))
		require.Equal(t, "T", sess.Token())
	})
}

func TestRefreshStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		body      any
		wantState jubsdk.State
		wantToken string
		wantUser  string
	}{
		{"user and token", map[string]any{"user": "jdoe", "token": "NEW"}, jubsdk.Identified, "NEW", "jdoe"},
		{"no user", map[string]any{"token": "NEW"}, jubsdk.Anonymous, "", ""},
		{"null user", map[string]any{"user": nil}, jubsdk.Anonymous, "", ""},
		{"empty user", map[string]any{"user": ""}, jubsdk.Anonymous, "", ""},
		{"user without token", map[string]any{"user": "jdoe"}, jubsdk.TokenOnly, "T", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := newScriptedServer(t, map[string]http.HandlerFunc{
				"GET /auth/status": reply(http.StatusOK, tt.body),
			})
			sess := signedIn(t, srv, "T")

			_, err := sess.RefreshStatus(t.Context())
			require.NoError(t, err)
			require.Equal(t, tt.wantState, sess.State())
			require.Equal(t, tt.wantToken, sess.Token())
			require.Equal(t, tt.wantUser, sess.Identity())
			require.Equal(t, []string{"/auth/status?token=T"}, srv.Requests())
		})
	}

	t.Run("anonymous sends no token", func(t *testing.T) {
		t.Parallel()

		srv := newScriptedServer(t, map[string]http.HandlerFunc{
			"GET /auth/status": reply(http.StatusOK, map[string]any{}),
		})
		_, err := srv.Session().RefreshStatus(t.Context())
		require.NoError(t, err)
		require.Equal(t, []string{"/auth/status"}, srv.Requests())
	})

	t.Run("failure leaves state unchanged", func(t *testing.T) {
		t.Parallel()

		srv := newScriptedServer(t, map[string]http.HandlerFunc{
			"GET /auth/status": reply(http.StatusBadGateway, map[string]string{"error": "upstream"}),
		})
		sess := signedIn(t, srv, "T")

		_, err := sess.RefreshStatus(t.Context())
		require.Error(t, err)
		require.Equal(t, "T", sess.Token())
	})
}

func TestConnect(t *testing.T) {
	t.Parallel()

	t.Run("restores token and refreshes", func(t *testing.T) {
		t.Parallel()

		srv := newScriptedServer(t, map[string]http.HandlerFunc{
			"GET /auth/status": reply(http.StatusOK, map[string]any{"user": "jdoe", "token": "T"}),
		})
		store := jubsdk.NewMemoryStore()
		require.NoError(t, store.Save(t.Context(), srv.URL, "T"))

		sess, err := jubsdk.Connect(t.Context(), srv.URL,
			jubsdk.WithTokenStore(store), jubsdk.WithLogger(slogx.Discard()))
		require.NoError(t, err)
		require.Equal(t, jubsdk.Identified, sess.State())
		require.Equal(t, "jdoe", sess.Identity())
		require.Equal(t, []string{"/auth/status?token=T"}, srv.Requests())
	})

	t.Run("returns session when server is unreachable", func(t *testing.T) {
		t.Parallel()

		srv := newScriptedServer(t, nil)
		addr := srv.URL
		srv.Close()

		sess, err := jubsdk.Connect(t.Context(), addr, jubsdk.WithLogger(slogx.Discard()))
		require.NotNil(t, sess)
		require.ErrorIs(t, err, jubsdk.ErrNetworkFailure)
		require.Equal(t, jubsdk.Anonymous, sess.State())
	})
}

func TestFailedRequestRefreshesOnce(t *testing.T) {
	t.Parallel()

	srv := newScriptedServer(t, map[string]http.HandlerFunc{
		"GET /query/{expr}": reply(http.StatusUnauthorized, map[string]string{"error": "Invalid token"}),
		"GET /auth/status":  reply(http.StatusOK, map[string]any{"user": nil}),
	})
	sess := signedIn(t, srv, "EXPIRED")

	_, err := sess.Query(t.Context(), "foo", jubsdk.RequestOptions{})

	var pe *jubsdk.ProtocolError
	require.ErrorAs(t, err, &pe)
	require.Equal(t, http.StatusUnauthorized, pe.StatusCode)
	require.Equal(t, "Invalid token", pe.Message)

	require.Equal(t, []string{"/query/foo?token=EXPIRED", "/auth/status?token=EXPIRED"}, srv.Requests())
	require.Equal(t, jubsdk.Anonymous, sess.State())
}

func TestFailedRefreshIsSwallowed(t *testing.T) {
	t.Parallel()

	srv := newScriptedServer(t, map[string]http.HandlerFunc{
		"GET /user/me":     reply(http.StatusNotFound, map[string]string{"error": "no such user"}),
		"GET /auth/status": reply(http.StatusInternalServerError, map[string]string{"error": "status down"}),
	})
	sess := signedIn(t, srv, "T")

	_, err := sess.GetMe(t.Context())
	require.True(t, jubsdk.IsStatus(err, http.StatusNotFound))
	require.Contains(t, err.Error(), "no such user")
	require.Equal(t, 1, srv.Count("/auth/status"))
	require.Equal(t, "T", sess.Token())
}

func TestNetworkFailureDoesNotRefresh(t *testing.T) {
	t.Parallel()

	var calls []string
	var mu sync.Mutex
	tr := jubsdk.TransportFunc(func(ctx context.Context, method, url string, body any) (*jubsdk.Response, error) {
		mu.Lock()
		calls = append(calls, url)
		mu.Unlock()
		return nil, &jubsdk.NetworkError{Method: method, URL: url, Err: errors.New("connection refused")}
	})

	sess := jubsdk.New("h", jubsdk.WithTransport(tr), jubsdk.WithLogger(slogx.Discard()))
	_, err := sess.GetUserByName(t.Context(), "jdoe")

	var ne *jubsdk.NetworkError
	require.ErrorAs(t, err, &ne)
	require.ErrorIs(t, err, jubsdk.ErrNetworkFailure)
	require.Equal(t, []string{"https://h/user/name/jdoe"}, calls)
}

func TestIsOnCampus(t *testing.T) {
	t.Parallel()

	srv := newScriptedServer(t, map[string]http.HandlerFunc{
		"GET /auth/isoncampus": func(w http.ResponseWriter, r *http.Request) {
			if r.URL.RawQuery != "" {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unexpected query"})
				return
			}
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "off campus"})
		},
	})
	sess := signedIn(t, srv, "T")

	_, err := sess.IsOnCampus(t.Context())
	require.True(t, jubsdk.IsStatus(err, http.StatusForbidden))
	require.Equal(t, []string{"/auth/isoncampus"}, srv.Requests())
}

func TestUserLookups(t *testing.T) {
	t.Parallel()

	srv := newScriptedServer(t, map[string]http.HandlerFunc{
		"GET /user/me":          reply(http.StatusOK, map[string]any{"username": "jdoe"}),
		"GET /user/id/{id}":     reply(http.StatusOK, map[string]any{"id": "42"}),
		"GET /user/name/{name}": reply(http.StatusOK, map[string]any{"username": "a b"}),
	})
	sess := signedIn(t, srv, "T")

	resp, err := sess.GetMe(t.Context(), "username", "email")
	require.NoError(t, err)
	require.Equal(t, "jdoe", resp.Get("username").String())

	_, err = sess.GetUserByID(t.Context(), "42")
	require.NoError(t, err)

	_, err = sess.GetUserByName(t.Context(), "a b", "email")
	require.NoError(t, err)

	require.Equal(t, []string{
		"/user/me?token=T&fields=username%2Cemail",
		"/user/id/42?token=T",
		"/user/name/a%20b?token=T&fields=email",
	}, srv.Requests())
}

func TestNonJSONBodyIsPayload(t *testing.T) {
	t.Parallel()

	srv := newScriptedServer(t, map[string]http.HandlerFunc{
		"GET /auth/isoncampus": func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html>not json</html>"))
		},
	})

	resp, err := srv.Session().IsOnCampus(t.Context())
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "<html>not json</html>", resp.Payload)
	require.False(t, resp.IsJSON())
	require.False(t, resp.Get("error").Exists())
}

func TestStaleResponseDoesNotClobberState(t *testing.T) {
	t.Parallel()

	statusStarted := make(chan struct{})
	releaseStatus := make(chan struct{})

	tr := jubsdk.TransportFunc(func(ctx context.Context, method, url string, body any) (*jubsdk.Response, error) {
		switch {
		case url == "https://h/auth/status?token=T":
			close(statusStarted)
			<-releaseStatus
			return jubsdk.NewResponse(http.StatusOK, []byte(`{"user":"jdoe","token":"T"}`), ""), nil
		case url == "https://h/auth/signout?token=T":
			return jubsdk.NewResponse(http.StatusOK, []byte(`{}`), ""), nil
		}
		return jubsdk.NewResponse(http.StatusNotFound, nil, ""), nil
	})

	store := jubsdk.NewMemoryStore()
	_ = store.Save(t.Context(), "https://h", "T")
	sess := jubsdk.New("h", jubsdk.WithTransport(tr), jubsdk.WithTokenStore(store), jubsdk.WithLogger(slogx.Discard()))
	require.True(t, sess.RestoreToken(t.Context()))

	done := make(chan error, 1)
	go func() {
		_, err := sess.RefreshStatus(context.Background())
		done <- err
	}()

	<-statusStarted
	_, err := sess.SignOut(t.Context())
	require.NoError(t, err)
	require.Equal(t, jubsdk.Anonymous, sess.State())

	close(releaseStatus)
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("status refresh did not return")
	}

	require.Equal(t, jubsdk.Anonymous, sess.State(), "older status reply must not resurrect the session")
	saved, _ := store.Load(t.Context(), "https://h")
	require.Empty(t, saved)
}

func TestRateLimitHonoursContext(t *testing.T) {
	t.Parallel()

	tr := jubsdk.TransportFunc(func(ctx context.Context, method, url string, body any) (*jubsdk.Response, error) {
		return jubsdk.NewResponse(http.StatusOK, []byte(`{}`), ""), nil
	})
	sess := jubsdk.New("h", jubsdk.WithTransport(tr), jubsdk.WithRateLimit(0.001, 1), jubsdk.WithLogger(slogx.Discard()))

	_, err := sess.IsOnCampus(t.Context())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()
	_, err = sess.IsOnCampus(ctx)
	require.ErrorIs(t, err, jubsdk.ErrNetworkFailure)
}

func TestAsyncCallsBackOnce(t *testing.T) {
	t.Parallel()

	srv := newScriptedServer(t, map[string]http.HandlerFunc{
		"GET /auth/isoncampus": reply(http.StatusOK, map[string]bool{"result": true}),
	})
	sess := srv.Session()

	type result struct {
		resp *jubsdk.Response
		err  error
	}
	results := make(chan result, 2)
	jubsdk.Async(t.Context(), sess.IsOnCampus, func(resp *jubsdk.Response, err error) {
		results <- result{resp, err}
	})

	select {
	case r := <-results:
		require.NoError(t, r.err)
		require.True(t, r.resp.Get("result").Bool())
	case <-time.After(5 * time.Second):
		t.Fatal("callback never fired")
	}

	select {
	case <-results:
		t.Fatal("callback fired twice")
	case <-time.After(50 * time.Millisecond):
	}

	// A nil callback is allowed.
	jubsdk.Async(t.Context(), sess.IsOnCampus, nil)
}
