package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/aussiebroadwan/openjub/internal/jubmock/domain"
	"github.com/aussiebroadwan/openjub/pkg/cryptox"
	"github.com/aussiebroadwan/openjub/pkg/idx"
)

// DirectoryService answers lookups, queries and searches over an
// in-memory user directory. It is read-only after construction.
type DirectoryService struct {
	Hasher *cryptox.PasswordHasher

	users  []domain.User // sorted by username
	byID   map[string]int
	byName map[string]int
}

// NewDirectoryService hashes the seed passwords and indexes the users.
func NewDirectoryService(seed domain.Seed, hasher *cryptox.PasswordHasher) (*DirectoryService, error) {
	users := make([]domain.User, 0, len(seed.Users))
	for _, su := range seed.Users {
		hash, err := hasher.Hash(su.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password for %s: %w", su.Username, err)
		}

		id := su.ID
		if id == "" {
			id = idx.New().String()
		}

		users = append(users, domain.User{
			ID:           id,
			Username:     su.Username,
			PasswordHash: hash,
			Attributes:   su.Attributes,
		})
	}

	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })

	d := &DirectoryService{
		Hasher: hasher,
		users:  users,
		byID:   make(map[string]int, len(users)),
		byName: make(map[string]int, len(users)),
	}
	for i, u := range users {
		if _, dup := d.byID[u.ID]; dup {
			return nil, fmt.Errorf("duplicate user id %q", u.ID)
		}
		d.byID[u.ID] = i
		d.byName[u.Username] = i
	}
	return d, nil
}

// Authenticate checks a username and password.
func (d *DirectoryService) Authenticate(_ context.Context, username, password string) (domain.User, error) {
	i, ok := d.byName[username]
	if !ok {
		// Burn a hash so unknown users take as long as wrong passwords.
		_, _ = d.Hasher.Hash(password)
		return domain.User{}, domain.ErrInvalidCredentials
	}

	u := d.users[i]
	if err := d.Hasher.Verify(password, u.PasswordHash); err != nil {
		return domain.User{}, domain.ErrInvalidCredentials
	}
	return u, nil
}

func (d *DirectoryService) GetUserByID(_ context.Context, id string) (domain.User, error) {
	i, ok := d.byID[id]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return d.users[i], nil
}

func (d *DirectoryService) GetUserByName(_ context.Context, name string) (domain.User, error) {
	i, ok := d.byName[name]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return d.users[i], nil
}

// Query returns users matching every whitespace separated term. A term of
// the form key:value compares a field case-insensitively; a bare term
// matches the username.
func (d *DirectoryService) Query(_ context.Context, expr string) []domain.User {
	terms := strings.Fields(expr)

	var out []domain.User
	for _, u := range d.users {
		rec := u.Record()
		if matchesAll(rec, terms) {
			out = append(out, u)
		}
	}
	return out
}

func matchesAll(rec map[string]any, terms []string) bool {
	for _, term := range terms {
		key, want, ok := strings.Cut(term, ":")
		if !ok {
			key, want = "username", term
		}
		if !strings.EqualFold(fmt.Sprint(rec[key]), want) {
			return false
		}
	}
	return true
}

// Search returns users where any field contains expr, ignoring case.
func (d *DirectoryService) Search(_ context.Context, expr string) []domain.User {
	needle := strings.ToLower(strings.TrimSpace(expr))

	var out []domain.User
	for _, u := range d.users {
		for _, v := range u.Record() {
			if strings.Contains(strings.ToLower(fmt.Sprint(v)), needle) {
				out = append(out, u)
				break
			}
		}
	}
	return out
}

// Page is one window over a result list.
type Page struct {
	Users   []domain.User
	Total   int
	Limit   int
	Skip    int
	HasNext bool
	HasPrev bool
}

// Paginate cuts users to the window [skip, skip+limit).
func Paginate(users []domain.User, limit, skip int) Page {
	p := Page{Total: len(users), Limit: limit, Skip: skip}

	start := min(skip, len(users))
	end := min(start+limit, len(users))
	p.Users = users[start:end]
	p.HasNext = end < len(users)
	p.HasPrev = skip > 0
	return p
}
