package artifacts

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/inkops/notes-e2e/internal/obs"
)

func writeRunFile(t *testing.T, runDir, rel, content string) {
	t.Helper()
	path := filepath.Join(runDir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", rel, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
}

func TestUploadRun_ArchivesEveryFile(t *testing.T) {
	t.Parallel()

	store := TestStore(t, "test-artifacts")
	runDir := filepath.Join(t.TempDir(), "run-20250301-080000")
	writeRunFile(t, runDir, "allure-results/a-result.json", `{"name":"x","status":"passed"}`)
	writeRunFile(t, runDir, "screenshots/login.png", "png-bytes")
	writeRunFile(t, runDir, "summary.md", "## Report")

	ctx := context.Background()
	result, err := UploadRun(ctx, store, runDir, "")
	if err != nil {
		t.Fatalf("UploadRun failed: %v", err)
	}
	if result.RunID != "run-20250301-080000" {
		t.Errorf("run ID should default to dir base name, got %q", result.RunID)
	}
	if result.Uploaded != 3 {
		t.Errorf("expected 3 uploaded files, got %d", result.Uploaded)
	}

	keys, err := store.ListKeys(ctx, "runs/run-20250301-080000/")
	if err != nil {
		t.Fatalf("ListKeys failed: %v", err)
	}
	if len(keys) != 3 {
		t.Fatalf("expected 3 keys, got %v", keys)
	}

	body, err := store.GetObject(ctx, "runs/run-20250301-080000/summary.md")
	if err != nil {
		t.Fatalf("GetObject failed: %v", err)
	}
	if string(body) != "## Report" {
		t.Errorf("unexpected body %q", body)
	}
}

func TestUploadRun_ExplicitRunID(t *testing.T) {
	t.Parallel()

	store := TestStore(t, "test-artifacts")
	runDir := t.TempDir()
	writeRunFile(t, runDir, "junit-results.xml", "<testsuites/>")

	result, err := UploadRun(context.Background(), store, runDir, "ci-4217")
	if err != nil {
		t.Fatalf("UploadRun failed: %v", err)
	}
	if result.Prefix != "runs/ci-4217" {
		t.Errorf("unexpected prefix %q", result.Prefix)
	}
}

func TestUploadRun_MissingDir(t *testing.T) {
	t.Parallel()

	store := TestStore(t, "test-artifacts")
	_, err := UploadRun(context.Background(), store, filepath.Join(t.TempDir(), "nope"), "")
	if err == nil {
		t.Fatal("expected error for missing run dir")
	}
}

func TestStore_DeleteObjectRemovesArtifact(t *testing.T) {
	t.Parallel()

	store := TestStore(t, "test-artifacts")
	ctx := context.Background()
	key := "runs/ci-9/summary.md"

	if err := store.PutObject(ctx, key, []byte("## Report"), "text/markdown; charset=utf-8"); err != nil {
		t.Fatalf("PutObject failed: %v", err)
	}
	if err := store.DeleteObject(ctx, key); err != nil {
		t.Fatalf("DeleteObject failed: %v", err)
	}
	if _, err := store.GetObject(ctx, key); !errors.Is(err, ErrObjectNotFound) {
		t.Errorf("expected ErrObjectNotFound after delete, got %v", err)
	}
	// Deleting an absent object is not an error.
	if err := store.DeleteObject(ctx, key); err != nil {
		t.Errorf("second delete should be a no-op, got %v", err)
	}
}

func TestUploadRun_LogsArchivalSummary(t *testing.T) {
	var buf bytes.Buffer
	restore := obs.SetOutputForTests(&buf)
	defer restore()

	store := TestStore(t, "test-artifacts")
	runDir := t.TempDir()
	writeRunFile(t, runDir, "summary.md", "## Report")

	if _, err := UploadRun(context.Background(), store, runDir, "ci-77"); err != nil {
		t.Fatalf("UploadRun failed: %v", err)
	}

	logged := buf.String()
	if !strings.Contains(logged, `"component":"artifacts"`) {
		t.Errorf("log lines should carry the component attribute:\n%s", logged)
	}
	if !strings.Contains(logged, "run archived") {
		t.Errorf("expected archival summary log line:\n%s", logged)
	}
	if !strings.Contains(logged, `"run_id":"ci-77"`) {
		t.Errorf("expected run ID in summary log line:\n%s", logged)
	}
}

func TestStore_GetMissingObject(t *testing.T) {
	t.Parallel()

	store := TestStore(t, "test-artifacts")
	_, err := store.GetObject(context.Background(), "runs/absent/file.json")
	if !errors.Is(err, ErrObjectNotFound) {
		t.Errorf("expected ErrObjectNotFound, got %v", err)
	}
}

func TestContentTypeFor(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"a-result.json": "application/json",
		"summary.md":    "text/markdown; charset=utf-8",
		"trace.webm":    "video/webm",
		"mystery.bin":   defaultContentType,
	}
	for name, want := range cases {
		if got := contentTypeFor(name); got != want {
			t.Errorf("contentTypeFor(%q) = %q, want %q", name, got, want)
		}
	}
}
