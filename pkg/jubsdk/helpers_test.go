package jubsdk_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/aussiebroadwan/openjub/pkg/jubsdk"
	"github.com/aussiebroadwan/openjub/pkg/slogx"
)

// scriptedServer serves canned handlers and records every request URI in
// arrival order.
type scriptedServer struct {
	*httptest.Server

	mu       sync.Mutex
	requests []string
}

func newScriptedServer(t *testing.T, routes map[string]http.HandlerFunc) *scriptedServer {
	t.Helper()

	s := &scriptedServer{}
	mux := http.NewServeMux()
	for pattern, h := range routes {
		mux.HandleFunc(pattern, h)
	}

	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, r.URL.RequestURI())
		s.mu.Unlock()
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *scriptedServer) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

func (s *scriptedServer) Count(path string) int {
	n := 0
	for _, r := range s.Requests() {
		if r == path || len(r) > len(path) && r[:len(path)] == path && r[len(path)] == '?' {
			n++
		}
	}
	return n
}

func (s *scriptedServer) Session(opts ...jubsdk.Option) *jubsdk.Session {
	opts = append([]jubsdk.Option{jubsdk.WithLogger(slogx.Discard())}, opts...)
	return jubsdk.New(s.URL, opts...)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func reply(code int, v any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, code, v)
	}
}

// signedIn returns a session already holding token.
func signedIn(t *testing.T, srv *scriptedServer, token string, opts ...jubsdk.Option) *jubsdk.Session {
	t.Helper()

	store := jubsdk.NewMemoryStore()
	_ = store.Save(t.Context(), srv.URL, token)

	opts = append([]jubsdk.Option{jubsdk.WithTokenStore(store)}, opts...)
	sess := srv.Session(opts...)
	sess.RestoreToken(t.Context())
	return sess
}
