package jubsdk

import (
	"context"
	"fmt"
	"net/http"
)

type signInRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SignIn exchanges credentials for a token. On success the session holds
// the new token with no confirmed identity; call RefreshStatus to confirm
// the user. On failure the session is unchanged.
func (s *Session) SignIn(ctx context.Context, username, password string) (*Response, error) {
	t := s.ticket()

	resp, err := s.send(ctx, http.MethodPost, s.URL("/auth/signin"), signInRequest{
		Username: username,
		Password: password,
	})
	if err != nil {
		return nil, err
	}
	if err := protocolError(resp); err != nil {
		return nil, err
	}

	tok := resp.Get("token").String()
	s.apply(t, "signin", func() {
		s.token = tok
		s.identity = ""
		if tok == "" {
			s.deleteToken(ctx)
			return
		}
		s.saveToken(ctx, tok)
	})

	s.log.Debug("signed in", "state", s.State())
	return resp, nil
}

// SignOut revokes the current token. On success the session becomes
// anonymous; on failure it is unchanged.
func (s *Session) SignOut(ctx context.Context) (*Response, error) {
	t := s.ticket()

	resp, err := s.get(ctx, "/auth/signout", s.withToken(Params{}))
	if err != nil {
		return nil, err
	}

	s.apply(t, "signout", func() {
		s.token = ""
		s.identity = ""
		s.deleteToken(ctx)
	})

	s.log.Debug("signed out")
	return resp, nil
}

// RefreshStatus asks the server who the current token belongs to. A reply
// without a user clears the session. A reply with a user and a token makes
// the session Identified. Any other successful reply leaves it unchanged.
func (s *Session) RefreshStatus(ctx context.Context) (*Response, error) {
	t := s.ticket()

	resp, err := s.get(ctx, "/auth/status", s.withToken(Params{}))
	if err != nil {
		return nil, err
	}

	user := resp.Get("user")
	if !truthy(user) {
		s.apply(t, "status", func() {
			s.token = ""
			s.identity = ""
			s.deleteToken(ctx)
		})
		return resp, nil
	}

	if tok := resp.Get("token"); truthy(tok) {
		s.apply(t, "status", func() {
			s.token = tok.String()
			s.identity = user.String()
			s.saveToken(ctx, s.token)
		})
	}

	s.log.Debug("status refreshed", "state", s.State())
	return resp, nil
}

// Authenticate signs the user in through the server's login page. It opens
// the page on the session's LoginSurface and waits for a message posted from
// the server's own origin; messages from any other origin are ignored. The
// token it carries is stored and RefreshStatus runs. Without a surface it
// returns ErrInteractiveUnsupported and changes nothing.
func (s *Session) Authenticate(ctx context.Context) (*Response, error) {
	if s.surface == nil {
		return nil, ErrInteractiveUnsupported
	}

	msgs, closeFn, err := s.surface.Open(ctx, s.URL(LoginPath))
	if err != nil {
		return nil, fmt.Errorf("open login surface: %w", err)
	}

	var tok string
	for tok == "" {
		select {
		case <-ctx.Done():
			closeFn()
			return nil, ctx.Err()
		case m, ok := <-msgs:
			if !ok {
				closeFn()
				return nil, ErrLoginClosed
			}
			if m.Origin != s.server {
				s.log.Debug("login message from untrusted origin ignored", "origin", m.Origin)
				continue
			}

			closeFn()
			t, found := messageToken(m.Data)
			if !found {
				return nil, ErrNoToken
			}
			tok = t
		}
	}

	s.apply(s.ticket(), "authenticate", func() {
		s.token = tok
		s.identity = ""
	})
	return s.RefreshStatus(ctx)
}

// IsOnCampus asks whether the caller's network is on campus. It sends no
// token and never refreshes the session.
func (s *Session) IsOnCampus(ctx context.Context) (*Response, error) {
	return s.get(ctx, "/auth/isoncampus", Params{})
}
