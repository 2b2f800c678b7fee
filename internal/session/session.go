// Package session manages serialized browser session state. A setup step logs
// in through the API and writes a Playwright storage-state snapshot (cookies +
// localStorage) per environment; parallel test workers consume the file
// read-only until the server-side token expires, at which point the snapshot
// is regenerated.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/inkops/notes-e2e/internal/config"
	"github.com/inkops/notes-e2e/internal/creds"
	"github.com/inkops/notes-e2e/internal/notesapi"
	"github.com/inkops/notes-e2e/internal/obs"
)

// TokenStorageKey is the localStorage key the app reads the session token from.
const TokenStorageKey = "token"

// StorageState mirrors Playwright's storage-state JSON schema, so the file
// written here can be fed straight into BrowserNewContextOptions.
type StorageState struct {
	Cookies []Cookie `json:"cookies"`
	Origins []Origin `json:"origins"`
}

// Cookie is a single serialized cookie.
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires"`
	HTTPOnly bool    `json:"httpOnly"`
	Secure   bool    `json:"secure"`
	SameSite string  `json:"sameSite"`
}

// Origin holds the localStorage entries for one origin.
type Origin struct {
	Origin       string      `json:"origin"`
	LocalStorage []NameValue `json:"localStorage"`
}

// NameValue is a single localStorage entry.
type NameValue struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Path returns the storage-state file path for an environment.
func Path(cfg *config.Config) string {
	return filepath.Join(cfg.StorageStateDir, cfg.Env+".json")
}

// Write serializes a session token as a storage-state file for the given app
// base URL. The token lands both in localStorage (where the app reads it) and
// in a session cookie (so API-bound page requests carry it too).
func Write(path, baseURL, token string) error {
	u, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("parse base URL: %w", err)
	}

	state := StorageState{
		Cookies: []Cookie{{
			Name:     TokenStorageKey,
			Value:    token,
			Domain:   u.Hostname(),
			Path:     "/",
			Expires:  -1, // session cookie; server-side expiry governs validity
			HTTPOnly: false,
			Secure:   u.Scheme == "https",
			SameSite: "Lax",
		}},
		Origins: []Origin{{
			Origin:       u.Scheme + "://" + u.Host,
			LocalStorage: []NameValue{{Name: TokenStorageKey, Value: token}},
		}},
	}

	encoded, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode storage state: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create storage state dir: %w", err)
	}
	if err := os.WriteFile(path, encoded, 0o600); err != nil {
		return fmt.Errorf("write storage state: %w", err)
	}
	return nil
}

// ReadToken extracts the session token from a storage-state file. Prefers
// localStorage; falls back to the cookie.
func ReadToken(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read storage state: %w", err)
	}
	var state StorageState
	if err := json.Unmarshal(raw, &state); err != nil {
		return "", fmt.Errorf("decode storage state: %w", err)
	}
	for _, origin := range state.Origins {
		for _, entry := range origin.LocalStorage {
			if entry.Name == TokenStorageKey && entry.Value != "" {
				return entry.Value, nil
			}
		}
	}
	for _, cookie := range state.Cookies {
		if cookie.Name == TokenStorageKey && cookie.Value != "" {
			return cookie.Value, nil
		}
	}
	return "", fmt.Errorf("storage state %s has no session token", path)
}

// Valid reports whether the snapshot's token is still accepted by the server,
// by probing GET /users/profile. A 401 means the token expired; any other
// failure is returned as an error so callers do not mask outages as expiry.
func Valid(ctx context.Context, apiURL, path string) (bool, error) {
	token, err := ReadToken(path)
	if err != nil {
		return false, err
	}

	probe := notesapi.New(apiURL, notesapi.WithToken(token))
	if _, err := probe.Profile(ctx); err != nil {
		var apiErr *notesapi.APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Ensure returns the path of a valid storage-state file for the environment,
// reusing an existing snapshot when its token still works and regenerating it
// otherwise. The user is registered on first use.
func Ensure(ctx context.Context, cfg *config.Config, user creds.Credentials) (string, error) {
	log := obs.With("session")
	path := Path(cfg)

	if _, err := os.Stat(path); err == nil {
		ok, err := Valid(ctx, cfg.APIURL, path)
		if err != nil {
			return "", fmt.Errorf("validate storage state: %w", err)
		}
		if ok {
			log.Debug("reusing storage state", "path", path, "env", cfg.Env)
			return path, nil
		}
		log.Info("storage state expired, regenerating", "path", path, "env", cfg.Env)
	}

	client := notesapi.New(cfg.APIURL)
	session, err := login(ctx, client, user)
	if err != nil {
		return "", err
	}

	if err := Write(path, cfg.BaseURL, session.Token); err != nil {
		return "", err
	}
	log.Info("storage state written", "path", path, "env", cfg.Env, "user", user.Email)
	return path, nil
}

// login authenticates, registering the user first when the account does not
// exist yet.
func login(ctx context.Context, client *notesapi.Client, user creds.Credentials) (*notesapi.Session, error) {
	session, err := client.Login(ctx, user.Email, user.Password)
	if err == nil {
		return session, nil
	}

	var apiErr *notesapi.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized {
		return nil, fmt.Errorf("login %s: %w", user.Email, err)
	}

	if _, err := client.Register(ctx, notesapi.RegisterParams{
		Name:     user.Name,
		Email:    user.Email,
		Password: user.Password,
	}); err != nil {
		return nil, fmt.Errorf("register %s: %w", user.Email, err)
	}
	session, err = client.Login(ctx, user.Email, user.Password)
	if err != nil {
		return nil, fmt.Errorf("login after register %s: %w", user.Email, err)
	}
	return session, nil
}
