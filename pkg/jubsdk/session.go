package jubsdk

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/time/rate"
)

// State is the authentication state of a Session.
type State int

const (
	// Anonymous sessions hold no token.
	Anonymous State = iota
	// TokenOnly sessions hold a token the server has not tied to a user yet.
	TokenOnly
	// Identified sessions hold a token and the server-confirmed user.
	Identified
)

func (s State) String() string {
	switch s {
	case Anonymous:
		return "anonymous"
	case TokenOnly:
		return "token_only"
	case Identified:
		return "identified"
	default:
		return "unknown"
	}
}

// Session is a connection to one OpenJUB server. It owns the token and the
// identity confirmed for it. A Session is safe for concurrent use.
//
// Responses that change state are applied in the order their requests were
// issued: when an older sign-in, sign-out or status response lands after a
// newer one, it is still returned to its caller but leaves the session alone.
type Session struct {
	server    string
	transport Transport
	store     TokenStore
	surface   LoginSurface
	limiter   *rate.Limiter
	log       *slog.Logger

	seq atomic.Uint64

	mu       sync.RWMutex
	token    string
	identity string
	applied  uint64
}

// New returns an anonymous session for server without contacting it.
// server may omit the scheme, in which case https is assumed.
func New(server string, opts ...Option) *Session {
	o := buildOptions(opts)
	canonical := strings.TrimSuffix(JoinURL(server, ""), "/")

	return &Session{
		server:    canonical,
		transport: o.transport,
		store:     o.store,
		surface:   o.surface,
		limiter:   o.limiter,
		log:       o.logger.With("server", canonical),
	}
}

// Connect creates a session, restores any stored token and runs
// RefreshStatus. It returns once the refresh has resolved. The session is
// returned even when the refresh fails; the error is informational.
func Connect(ctx context.Context, server string, opts ...Option) (*Session, error) {
	s := New(server, opts...)
	s.RestoreToken(ctx)

	_, err := s.RefreshStatus(ctx)
	return s, err
}

// RestoreToken loads a previously saved token from the TokenStore without
// contacting the server. It reports whether a token was found.
func (s *Session) RestoreToken(ctx context.Context) bool {
	tok, err := s.store.Load(ctx, s.server)
	if err != nil {
		s.log.Warn("load stored token", "err", err)
		return false
	}
	if tok == "" {
		return false
	}

	s.apply(s.ticket(), "restore", func() {
		s.token = tok
		s.identity = ""
	})
	return true
}

// Server returns the canonical server address.
func (s *Session) Server() string { return s.server }

// Token returns the current token, or "" when anonymous.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Identity returns the confirmed user, or "" when there is none.
func (s *Session) Identity() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch {
	case s.token == "":
		return Anonymous
	case s.identity == "":
		return TokenOnly
	default:
		return Identified
	}
}

// URL returns the canonical URL for path on this session's server.
func (s *Session) URL(path string) string {
	return JoinURL(s.server, path)
}

// ticket reserves the next position in the state-update order.
func (s *Session) ticket() uint64 {
	return s.seq.Add(1)
}

// apply runs fn under the write lock unless a newer ticket has already
// been applied.
func (s *Session) apply(t uint64, op string, fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t < s.applied {
		s.log.Debug("stale response ignored", "op", op, "ticket", t, "applied", s.applied)
		return false
	}
	s.applied = t
	fn()
	return true
}

func (s *Session) saveToken(ctx context.Context, token string) {
	if err := s.store.Save(ctx, s.server, token); err != nil {
		s.log.Warn("save token", "err", err)
	}
}

func (s *Session) deleteToken(ctx context.Context) {
	if err := s.store.Delete(ctx, s.server); err != nil {
		s.log.Warn("delete stored token", "err", err)
	}
}

// send waits on the optional limiter and performs one exchange.
func (s *Session) send(ctx context.Context, method, url string, body any) (*Response, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, &NetworkError{Method: method, URL: url, Err: err}
		}
	}
	return s.transport.Do(ctx, method, url, body)
}

// get issues an unauthenticated GET and returns the response when its
// status is 200.
func (s *Session) get(ctx context.Context, path string, params Params) (*Response, error) {
	resp, err := s.send(ctx, http.MethodGet, BuildGetURL(s.URL(path), params), nil)
	if err != nil {
		return nil, err
	}
	if err := protocolError(resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// authGet issues a GET carrying the current token. A non-200 reply
// triggers one RefreshStatus before the original error is returned; the
// refresh's own failure is dropped.
func (s *Session) authGet(ctx context.Context, path string, params Params) (*Response, error) {
	resp, err := s.send(ctx, http.MethodGet, BuildGetURL(s.URL(path), params), nil)
	if err != nil {
		return nil, err
	}

	if perr := protocolError(resp); perr != nil {
		if _, rerr := s.RefreshStatus(ctx); rerr != nil {
			s.log.Debug("status refresh after failed request", "path", path, "err", rerr)
		}
		return nil, perr
	}
	return resp, nil
}

// withToken appends the current token to p unless the session is anonymous.
func (s *Session) withToken(p Params) Params {
	if tok := s.Token(); tok != "" {
		p.Set("token", tok)
	}
	return p
}
