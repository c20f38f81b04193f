package jubsdk

import (
	"context"
	"strings"
)

// GetMe fetches the signed-in user's record, optionally projected to fields.
func (s *Session) GetMe(ctx context.Context, fields ...string) (*Response, error) {
	return s.authGet(ctx, "/user/me", s.userParams(fields))
}

// GetUserByID fetches a user record by id.
func (s *Session) GetUserByID(ctx context.Context, id string, fields ...string) (*Response, error) {
	return s.authGet(ctx, "/user/id/"+EncodeComponent(id), s.userParams(fields))
}

// GetUserByName fetches a user record by username.
func (s *Session) GetUserByName(ctx context.Context, name string, fields ...string) (*Response, error) {
	return s.authGet(ctx, "/user/name/"+EncodeComponent(name), s.userParams(fields))
}

func (s *Session) userParams(fields []string) Params {
	p := s.withToken(Params{})
	if len(fields) > 0 {
		p.Set("fields", strings.Join(fields, ","))
	}
	return p
}
