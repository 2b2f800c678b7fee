// Command auth-setup prepares the per-environment auth fixture the browser
// tests consume: it ensures a test user exists (generating credentials on
// first run), logs in through the API, and writes a Playwright storage-state
// file that parallel test workers reuse read-only.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/inkops/notes-e2e/internal/config"
	"github.com/inkops/notes-e2e/internal/creds"
	"github.com/inkops/notes-e2e/internal/obs"
	"github.com/inkops/notes-e2e/internal/session"
)

func main() {
	obs.Init()
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		credsDir string
		force    bool
	)

	cmd := &cobra.Command{
		Use:   "auth-setup",
		Short: "Provision the test user and storage-state file for the configured environment",
		Long: `Resolves the target environment from ENV (local, qa, staging), ensures test
credentials exist, logs in through the API, and writes the storage-state file
the browser tests load.

Seed credentials from the environment (USER_EMAIL, USER_NAME, USER_PASSWORD)
take precedence; otherwise credentials are generated once and persisted to
.env.<env>.user next to the other env files.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), credsDir, force)
		},
	}

	cmd.Flags().StringVar(&credsDir, "creds-dir", ".", "Directory holding generated credential files")
	cmd.Flags().BoolVar(&force, "force", false, "Regenerate the storage state even if the existing one is valid")

	return cmd
}

func run(ctx context.Context, credsDir string, force bool) error {
	log := obs.With("auth-setup")

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 2*cfg.Timeout)
	defer cancel()

	var user creds.Credentials
	if cfg.HasSeedUser() {
		user = creds.Credentials{
			Email:    cfg.UserEmail,
			Name:     cfg.UserName,
			Password: cfg.UserPassword,
		}
		log.Info("using seed credentials from environment", "email", user.Email)
	} else {
		path := creds.FilePath(credsDir, cfg.Env)
		ensured, generated, err := creds.Ensure(path, "e2e")
		if err != nil {
			return err
		}
		user = *ensured
		if generated {
			log.Info("generated test credentials", "path", path, "email", user.Email)
		} else {
			log.Info("reusing test credentials", "path", path, "email", user.Email)
		}
	}

	statePath := session.Path(cfg)
	if force {
		if err := os.Remove(statePath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove stale storage state: %w", err)
		}
	}

	start := time.Now()
	path, err := session.Ensure(ctx, cfg, user)
	if err != nil {
		return err
	}

	log.Info("storage state ready",
		"env", cfg.Env,
		"path", path,
		"base_url", cfg.BaseURL,
		"elapsed", time.Since(start).Round(time.Millisecond).String())
	fmt.Fprintf(os.Stderr, "✅ Storage state ready: %s\n", path)
	return nil
}
