package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	SeedFile       string        // Optional: YAML directory seed (default: empty directory)
	TokenSecret    string        // Optional: HS256 signing secret (default: random per process)
	PepperFile     string        // Optional: file holding the password pepper
	Issuer         string        // Optional: token issuer (default: jubmock)
	TokenTTL       time.Duration // Optional: session token lifetime (default: 24h)
	CampusNetworks string        // Optional: comma separated CIDRs treated as on campus
	PublicURL      string        // Optional: absolute base for paging links (default: derived per request)
	TrustProxy     bool          // Optional: honour X-Forwarded-For (default: false)

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Revocation purge interval (default: 1h)
}

func LoadConfig() Config {
	return Config{
		SeedFile:       os.Getenv("JUBMOCK_SEED_FILE"),
		TokenSecret:    os.Getenv("JUBMOCK_TOKEN_SECRET"),
		PepperFile:     os.Getenv("JUBMOCK_PEPPER_FILE"),
		Issuer:         getEnvOrDefault("JUBMOCK_ISSUER", "jubmock"),
		TokenTTL:       getEnvDurationOrDefault("JUBMOCK_TOKEN_TTL", 24*time.Hour),
		CampusNetworks: getEnvOrDefault("JUBMOCK_CAMPUS_NETWORKS", "10.0.0.0/8"),
		PublicURL:      os.Getenv("JUBMOCK_PUBLIC_URL"),
		TrustProxy:     getEnvBoolOrDefault("JUBMOCK_TRUST_PROXY", false),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
