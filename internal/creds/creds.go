// Package creds generates and persists test user credentials. Each test run
// provisions a unique user so environments never collide; the generated
// credentials are written to a per-environment file so the auth setup step and
// the test workers agree on who is logged in.
package creds

import (
	crand "crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Credentials is a generated user record.
type Credentials struct {
	Email    string
	Name     string
	Password string
}

// Generate creates unique credentials. The email embeds a random hex suffix
// for run isolation; the password is a UUID, which satisfies the app's length
// and character requirements. An empty prefix falls back to "e2e".
func Generate(prefix string) Credentials {
	if prefix == "" {
		prefix = "e2e"
	}
	suffix := make([]byte, 8)
	if _, err := crand.Read(suffix); err != nil {
		panic(fmt.Sprintf("failed to generate credential suffix: %v", err))
	}
	tag := hex.EncodeToString(suffix)
	return Credentials{
		Email:    fmt.Sprintf("%s-%s@example.com", prefix, tag),
		Name:     fmt.Sprintf("%s %s", strings.ToUpper(prefix[:1])+prefix[1:], tag[:6]),
		Password: "Pw1!" + uuid.NewString(),
	}
}

// FilePath returns the credential file path for an environment, e.g.
// ".env.qa.user".
func FilePath(dir, env string) string {
	return filepath.Join(dir, ".env."+env+".user")
}

// Write persists credentials in KEY=VALUE form, readable by the dotenv loader.
func Write(path string, c Credentials) error {
	content := fmt.Sprintf("USER_EMAIL=%s\nUSER_NAME=%s\nUSER_PASSWORD=%s\n", c.Email, c.Name, c.Password)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create credentials dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return fmt.Errorf("write credentials file: %w", err)
	}
	return nil
}

// Read loads credentials written by Write. Returns an error when any of the
// three fields is missing.
func Read(path string) (*Credentials, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read credentials file: %w", err)
	}

	var c Credentials
	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		switch strings.TrimSpace(key) {
		case "USER_EMAIL":
			c.Email = strings.TrimSpace(value)
		case "USER_NAME":
			c.Name = strings.TrimSpace(value)
		case "USER_PASSWORD":
			c.Password = strings.TrimSpace(value)
		}
	}

	var missing []string
	if c.Email == "" {
		missing = append(missing, "USER_EMAIL")
	}
	if c.Name == "" {
		missing = append(missing, "USER_NAME")
	}
	if c.Password == "" {
		missing = append(missing, "USER_PASSWORD")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("credentials file %s is missing %s", path, strings.Join(missing, ", "))
	}
	return &c, nil
}

// Ensure returns credentials from path, generating and writing a fresh record
// when the file does not exist. The second return reports whether a new
// record was created. A malformed existing file is an error: regenerating
// would silently orphan the server-side account it points at.
func Ensure(path, prefix string) (*Credentials, bool, error) {
	existing, err := Read(path)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, false, err
	}

	generated := Generate(prefix)
	if err := Write(path, generated); err != nil {
		return nil, false, err
	}
	return &generated, true, nil
}
