package cli

import (
	"os"
	"path/filepath"
)

// Config holds the environment defaults for every command. Flags override
// each field.
type Config struct {
	Server   string // JUB_SERVER (default: http://localhost:8080)
	TokenDB  string // JUB_TOKEN_DB (default: <user config dir>/openjub/tokens.db)
	Output   string // JUB_OUTPUT: json or yaml (default: json)
	LogLevel string // JUB_LOG_LEVEL (default: warn)
}

func LoadConfig() Config {
	return Config{
		Server:   getEnvOrDefault("JUB_SERVER", "http://localhost:8080"),
		TokenDB:  getEnvOrDefault("JUB_TOKEN_DB", defaultTokenDB()),
		Output:   getEnvOrDefault("JUB_OUTPUT", "json"),
		LogLevel: getEnvOrDefault("JUB_LOG_LEVEL", "warn"),
	}
}

func defaultTokenDB() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".openjub-tokens.db"
	}
	return filepath.Join(dir, "openjub", "tokens.db")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
