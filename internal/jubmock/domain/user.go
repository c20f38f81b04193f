package domain

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("wrong username or password")
	ErrInvalidToken       = errors.New("invalid token")
)

// User is one directory entry.
type User struct {
	ID           string
	Username     string
	PasswordHash string // argon2 encoded

	// Attributes holds every other directory field (fullName, email, ...).
	Attributes map[string]any
}

// Record returns the public JSON shape of u. Password hashes never leave
// the server.
func (u User) Record() map[string]any {
	rec := make(map[string]any, len(u.Attributes)+2)
	for k, v := range u.Attributes {
		rec[k] = v
	}
	rec["id"] = u.ID
	rec["username"] = u.Username
	return rec
}

// Project restricts rec to fields. An empty fields list keeps everything.
// Unknown field names are ignored.
func Project(rec map[string]any, fields []string) map[string]any {
	if len(fields) == 0 {
		return rec
	}

	out := make(map[string]any, len(fields))
	for _, f := range fields {
		if v, ok := rec[f]; ok {
			out[f] = v
		}
	}
	return out
}
