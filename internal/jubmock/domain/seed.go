package domain

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Seed is the YAML file the mock directory is loaded from.
type Seed struct {
	Users []SeedUser `yaml:"users"`
}

type SeedUser struct {
	ID         string         `yaml:"id"`
	Username   string         `yaml:"username"`
	Password   string         `yaml:"password"`
	Attributes map[string]any `yaml:"attributes"`
}

// ParseSeed decodes a seed document and checks that usernames are present
// and unique.
func ParseSeed(r io.Reader) (Seed, error) {
	var s Seed

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && err != io.EOF {
		return Seed{}, fmt.Errorf("decode seed: %w", err)
	}

	seen := make(map[string]struct{}, len(s.Users))
	for i, u := range s.Users {
		if u.Username == "" {
			return Seed{}, fmt.Errorf("seed user %d: username is required", i)
		}
		if _, dup := seen[u.Username]; dup {
			return Seed{}, fmt.Errorf("seed user %d: duplicate username %q", i, u.Username)
		}
		seen[u.Username] = struct{}{}
	}
	return s, nil
}

// LoadSeedFile reads and parses the seed at path.
func LoadSeedFile(path string) (Seed, error) {
	f, err := os.Open(path) // #nosec G304 - operator supplied path
	if err != nil {
		return Seed{}, err
	}
	defer f.Close()

	return ParseSeed(f)
}
