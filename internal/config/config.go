// Package config provides centralized configuration for the notes e2e suite.
// It resolves the target environment from the ENV variable, loads the matching
// dotenv file, validates required fields, and provides sensible defaults.
//
// Environment selection: ENV=local|qa|staging (default local). For each
// environment the loader reads .env.<ENV> first, then .env; variables already
// present in the process environment always win.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Known environments. Anything else is rejected at load time so a typo in ENV
// does not silently run the suite against the default target.
const (
	EnvLocal   = "local"
	EnvQA      = "qa"
	EnvStaging = "staging"
)

// Config holds all configuration for the test suite.
type Config struct {
	// Target environment
	Env     string
	BaseURL string // web UI base URL
	APIURL  string // API base URL; defaults to BaseURL + "/api"

	// Browser settings
	Timeout     time.Duration
	Headless    bool
	SlowMo      time.Duration
	Screenshots bool
	Videos      bool

	// On-disk locations
	StorageStateDir string // serialized browser session state per environment
	ResultsDir      string // timestamped run directories for the summarizers

	// Seed user credentials (optional; generated when absent)
	UserEmail    string
	UserName     string
	UserPassword string
}

// ValidationError aggregates every missing or invalid configuration field.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("configuration validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

// Load resolves the environment, loads dotenv files, and validates the result.
func Load() (*Config, error) {
	env := strings.TrimSpace(os.Getenv("ENV"))
	if env == "" {
		env = EnvLocal
	}
	switch env {
	case EnvLocal, EnvQA, EnvStaging:
	default:
		return nil, fmt.Errorf("unknown ENV %q (expected %s, %s, or %s)", env, EnvLocal, EnvQA, EnvStaging)
	}

	// Existing process env takes precedence; godotenv.Load never overwrites.
	_ = godotenv.Load(".env." + env)
	_ = godotenv.Load()

	cfg := &Config{
		Env:             env,
		BaseURL:         strings.TrimRight(strings.TrimSpace(os.Getenv("BASE_URL")), "/"),
		APIURL:          strings.TrimRight(strings.TrimSpace(os.Getenv("API_URL")), "/"),
		Timeout:         parseDurationOrDefault("TIMEOUT", 30*time.Second),
		Headless:        parseBoolOrDefault("HEADLESS", true),
		SlowMo:          parseDurationOrDefault("SLOW_MO", 0),
		Screenshots:     parseBoolOrDefault("SCREENSHOTS", true),
		Videos:          parseBoolOrDefault("VIDEOS", false),
		StorageStateDir: getEnvOrDefault("STORAGE_STATE_DIR", ".auth"),
		ResultsDir:      getEnvOrDefault("RESULTS_DIR", "test-results"),
		UserEmail:       strings.TrimSpace(os.Getenv("USER_EMAIL")),
		UserName:        strings.TrimSpace(os.Getenv("USER_NAME")),
		UserPassword:    os.Getenv("USER_PASSWORD"),
	}

	if cfg.APIURL == "" && cfg.BaseURL != "" {
		cfg.APIURL = cfg.BaseURL + "/api"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that all required configuration is present and valid.
func (c *Config) Validate() error {
	var errs []string

	if c.BaseURL == "" {
		errs = append(errs, "BASE_URL is required (set it in .env."+c.Env+" or the environment)")
	} else if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		errs = append(errs, "BASE_URL must start with http:// or https://")
	}
	if c.Timeout <= 0 {
		errs = append(errs, "TIMEOUT must be positive")
	}
	if c.SlowMo < 0 {
		errs = append(errs, "SLOW_MO must not be negative")
	}
	if c.StorageStateDir == "" {
		errs = append(errs, "STORAGE_STATE_DIR must not be empty")
	}
	if c.ResultsDir == "" {
		errs = append(errs, "RESULTS_DIR must not be empty")
	}

	// Credentials travel together: either all three or none.
	provided := 0
	for _, v := range []string{c.UserEmail, c.UserName, c.UserPassword} {
		if v != "" {
			provided++
		}
	}
	if provided != 0 && provided != 3 {
		errs = append(errs, "USER_EMAIL, USER_NAME, and USER_PASSWORD must be set together")
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

// HasSeedUser reports whether complete seed credentials were configured.
func (c *Config) HasSeedUser() bool {
	return c.UserEmail != "" && c.UserName != "" && c.UserPassword != ""
}

// TimeoutMS returns the default timeout in milliseconds for Playwright calls.
func (c *Config) TimeoutMS() float64 {
	return float64(c.Timeout.Milliseconds())
}

// Helper functions for parsing environment variables

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func parseBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
