// Package browser holds the Playwright end-to-end tests for the notes
// application. All test files share one Env via Setup(t): one Playwright
// driver, one launched browser, and one storage-state file per environment,
// reused read-only by every authenticated context.
package browser

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/inkops/notes-e2e/internal/config"
	"github.com/inkops/notes-e2e/internal/creds"
	"github.com/inkops/notes-e2e/internal/notesapi"
	"github.com/inkops/notes-e2e/internal/session"
)

var (
	fixtureMu sync.Mutex
	shared    *Env
)

// Env is the shared browser test environment: configuration, the test user,
// the storage-state fixture, and the launched browser.
type Env struct {
	Cfg       *config.Config
	User      creds.Credentials
	StatePath string
	API       *notesapi.Client

	pw      *playwright.Playwright
	browser playwright.Browser
	mu      sync.Mutex
}

// Setup returns the shared environment, creating it on first use. Tests are
// skipped when the target application is unreachable or Playwright is not
// installed, so the suite degrades cleanly on machines without browsers.
func Setup(t *testing.T) *Env {
	t.Helper()

	fixtureMu.Lock()
	defer fixtureMu.Unlock()

	if shared != nil {
		return shared
	}

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if !appReachable(cfg.BaseURL, cfg.Timeout) {
		t.Skipf("application not reachable at %s", cfg.BaseURL)
	}

	user, err := ensureUser(cfg)
	if err != nil {
		t.Fatalf("ensure test user: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*cfg.Timeout)
	defer cancel()
	statePath, err := session.Ensure(ctx, cfg, user)
	if err != nil {
		t.Fatalf("ensure storage state: %v", err)
	}

	token, err := session.ReadToken(statePath)
	if err != nil {
		t.Fatalf("read session token: %v", err)
	}

	shared = &Env{
		Cfg:       cfg,
		User:      user,
		StatePath: statePath,
		API:       notesapi.New(cfg.APIURL, notesapi.WithToken(token)),
	}
	return shared
}

func appReachable(baseURL string, timeout time.Duration) bool {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(baseURL)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode < 500
}

func ensureUser(cfg *config.Config) (creds.Credentials, error) {
	if cfg.HasSeedUser() {
		return creds.Credentials{
			Email:    cfg.UserEmail,
			Name:     cfg.UserName,
			Password: cfg.UserPassword,
		}, nil
	}
	user, _, err := creds.Ensure(creds.FilePath(".", cfg.Env), "e2e")
	if err != nil {
		return creds.Credentials{}, err
	}
	return *user, nil
}

// =============================================================================
// Browser lifecycle helpers
// =============================================================================

// InitBrowser initializes Playwright and launches Chromium. Skips the test
// if the driver or browser is unavailable.
func (env *Env) InitBrowser(t *testing.T) {
	t.Helper()

	env.mu.Lock()
	defer env.mu.Unlock()

	if env.browser != nil {
		return
	}

	pw, err := playwright.Run()
	if err != nil {
		t.Skip("Playwright not available:", err)
	}

	opts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(env.Cfg.Headless),
	}
	if env.Cfg.SlowMo > 0 {
		opts.SlowMo = playwright.Float(float64(env.Cfg.SlowMo.Milliseconds()))
	}
	browser, err := pw.Chromium.Launch(opts)
	if err != nil {
		_ = pw.Stop()
		t.Skip("Could not launch browser:", err)
	}
	env.pw = pw
	env.browser = browser
}

// videoOptions returns the recording options for new contexts and pages, or
// nil when video capture is disabled.
func (env *Env) videoOptions() *playwright.RecordVideo {
	if !env.Cfg.Videos {
		return nil
	}
	return &playwright.RecordVideo{
		Dir: filepath.Join(env.Cfg.ResultsDir, "videos"),
	}
}

// NewPage creates an unauthenticated page with the configured default timeout.
func (env *Env) NewPage(t *testing.T) playwright.Page {
	t.Helper()

	page, err := env.browser.NewPage(playwright.BrowserNewPageOptions{
		RecordVideo: env.videoOptions(),
	})
	if err != nil {
		t.Fatalf("could not create page: %v", err)
	}
	page.SetDefaultTimeout(env.Cfg.TimeoutMS())
	page.SetDefaultNavigationTimeout(env.Cfg.TimeoutMS())
	t.Cleanup(func() {
		env.captureOnFailure(t, page)
		_ = page.Close()
	})
	return page
}

// NewAuthedPage creates a page inside a fresh context loaded with the shared
// storage state, so the session token is already in localStorage.
func (env *Env) NewAuthedPage(t *testing.T) playwright.Page {
	t.Helper()

	ctx, err := env.browser.NewContext(playwright.BrowserNewContextOptions{
		StorageStatePath: playwright.String(env.StatePath),
		RecordVideo:      env.videoOptions(),
	})
	if err != nil {
		t.Fatalf("could not create authenticated context: %v", err)
	}
	ctx.SetDefaultTimeout(env.Cfg.TimeoutMS())
	ctx.SetDefaultNavigationTimeout(env.Cfg.TimeoutMS())
	t.Cleanup(func() { _ = ctx.Close() })

	page, err := ctx.NewPage()
	if err != nil {
		t.Fatalf("could not create page: %v", err)
	}
	t.Cleanup(func() { env.captureOnFailure(t, page) })
	return page
}

// =============================================================================
// Page-object bootstrap
// =============================================================================

// OpenPage launches the browser if needed, opens a fresh unauthenticated
// page, and constructs the page object for it. Pass a page-object
// constructor, e.g. OpenPage(t, env, pages.NewLoginPage).
func OpenPage[P any](t *testing.T, env *Env, build func(playwright.Page, string) P) P {
	t.Helper()

	env.InitBrowser(t)
	return build(env.NewPage(t), env.Cfg.BaseURL)
}

// OpenAuthedPage is OpenPage with the context seeded from the shared
// storage-state file, so the page object starts out authenticated.
func OpenAuthedPage[P any](t *testing.T, env *Env, build func(playwright.Page, string) P) P {
	t.Helper()

	env.InitBrowser(t)
	return build(env.NewAuthedPage(t), env.Cfg.BaseURL)
}

// captureOnFailure saves a full-page screenshot under the results directory
// when the test failed and screenshots are enabled.
func (env *Env) captureOnFailure(t *testing.T, page playwright.Page) {
	t.Helper()

	if !t.Failed() || !env.Cfg.Screenshots {
		return
	}
	dir := filepath.Join(env.Cfg.ResultsDir, "screenshots")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Logf("could not create screenshots dir: %v", err)
		return
	}
	name := strings.ReplaceAll(t.Name(), "/", "_") + ".png"
	path := filepath.Join(dir, name)
	if _, err := page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	}); err != nil {
		t.Logf("could not capture failure screenshot: %v", err)
		return
	}
	t.Logf("failure screenshot: %s", path)
}

// =============================================================================
// Data helpers
// =============================================================================

// DeleteAllNotes removes every note owned by the shared test user via the
// API. Tests call this up front so leftovers from earlier runs cannot skew
// list counts.
func (env *Env) DeleteAllNotes(t *testing.T) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), env.Cfg.Timeout)
	defer cancel()

	notes, err := env.API.ListNotes(ctx)
	if err != nil {
		t.Fatalf("list notes for cleanup: %v", err)
	}
	for _, n := range notes {
		if err := env.API.DeleteNote(ctx, n.ID); err != nil {
			t.Fatalf("delete note %s: %v", n.ID, err)
		}
	}
}

// UniqueTitle returns a note title that cannot collide across parallel runs.
func UniqueTitle(prefix string) string {
	return fmt.Sprintf("%s %d", prefix, time.Now().UnixNano())
}
