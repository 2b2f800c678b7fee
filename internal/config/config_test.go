package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func validTestConfig() Config {
	return Config{
		Env:             EnvLocal,
		BaseURL:         "http://localhost:8080",
		APIURL:          "http://localhost:8080/api",
		Timeout:         30 * time.Second,
		Headless:        true,
		StorageStateDir: ".auth",
		ResultsDir:      "test-results",
	}
}

func TestValidate_MinimalConfigPasses(t *testing.T) {
	t.Parallel()
	cfg := validTestConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got error: %v", err)
	}
}

func TestValidate_RequiresBaseURL(t *testing.T) {
	t.Parallel()
	cfg := validTestConfig()
	cfg.BaseURL = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error for missing BASE_URL")
	}
	if !strings.Contains(err.Error(), "BASE_URL") {
		t.Fatalf("expected error to mention BASE_URL, got: %v", err)
	}
}

func TestValidate_RejectsNonHTTPBaseURL(t *testing.T) {
	t.Parallel()
	cfg := validTestConfig()
	cfg.BaseURL = "ftp://notes.example.com"

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for non-http BASE_URL")
	}
}

func TestValidate_RejectsPartialSeedCredentials(t *testing.T) {
	t.Parallel()
	cfg := validTestConfig()
	cfg.UserEmail = "qa@example.com"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error for partial seed credentials")
	}
	if !strings.Contains(err.Error(), "USER_EMAIL, USER_NAME, and USER_PASSWORD") {
		t.Fatalf("expected error to mention the credential triple, got: %v", err)
	}
}

func TestValidate_AggregatesAllErrors(t *testing.T) {
	t.Parallel()
	cfg := validTestConfig()
	cfg.BaseURL = ""
	cfg.Timeout = 0
	cfg.ResultsDir = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation errors")
	}
	verr, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if len(verr.Errors) != 3 {
		t.Fatalf("expected 3 validation errors, got %d: %v", len(verr.Errors), verr.Errors)
	}
}

func TestLoad_DefaultsAndEnvPrecedence(t *testing.T) {
	t.Setenv("ENV", "")
	t.Setenv("BASE_URL", "https://notes.example.com/")
	t.Setenv("API_URL", "")
	t.Setenv("TIMEOUT", "")
	t.Setenv("HEADLESS", "")
	t.Setenv("USER_EMAIL", "")
	t.Setenv("USER_NAME", "")
	t.Setenv("USER_PASSWORD", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Env != EnvLocal {
		t.Errorf("expected default env %q, got %q", EnvLocal, cfg.Env)
	}
	if cfg.BaseURL != "https://notes.example.com" {
		t.Errorf("expected trailing slash trimmed, got %q", cfg.BaseURL)
	}
	if cfg.APIURL != "https://notes.example.com/api" {
		t.Errorf("expected derived API URL, got %q", cfg.APIURL)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("expected default timeout, got %v", cfg.Timeout)
	}
	if !cfg.Headless {
		t.Error("expected headless by default")
	}
}

func TestLoad_RejectsUnknownEnv(t *testing.T) {
	t.Setenv("ENV", "prod")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for unknown ENV")
	}
	if !strings.Contains(err.Error(), "prod") {
		t.Fatalf("expected error to name the bad env, got: %v", err)
	}
}

func TestLoad_ReadsDotEnvForEnvironment(t *testing.T) {
	dir := t.TempDir()
	dotenv := filepath.Join(dir, ".env.qa")
	content := "BASE_URL=http://qa.notes.internal\nHEADLESS=false\nSLOW_MO=100ms\n"
	if err := os.WriteFile(dotenv, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write dotenv: %v", err)
	}

	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(prev) })

	t.Setenv("ENV", "qa")
	t.Setenv("BASE_URL", "")
	t.Setenv("HEADLESS", "")
	t.Setenv("SLOW_MO", "")

	// godotenv refuses to overwrite; clear the empties so the file values land.
	os.Unsetenv("BASE_URL")
	os.Unsetenv("HEADLESS")
	os.Unsetenv("SLOW_MO")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.BaseURL != "http://qa.notes.internal" {
		t.Errorf("expected BASE_URL from .env.qa, got %q", cfg.BaseURL)
	}
	if cfg.Headless {
		t.Error("expected HEADLESS=false from .env.qa")
	}
	if cfg.SlowMo != 100*time.Millisecond {
		t.Errorf("expected SLOW_MO=100ms, got %v", cfg.SlowMo)
	}
}
