package reports

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeResultFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture %s: %v", name, err)
	}
	return path
}

const passedResultJSON = `{
	"name": "login with valid credentials",
	"fullName": "auth > login with valid credentials",
	"status": "passed",
	"start": 1700000000000,
	"stop": 1700000002500,
	"labels": [
		{"name": "parentSuite", "value": "auth"},
		{"name": "package", "value": "tests/browser/login_test.go"}
	],
	"steps": [{"steps": [{"steps": []}]}, {"steps": []}]
}`

const failedResultJSON = `{
	"name": "create note",
	"status": "failed",
	"start": 1700000000000,
	"stop": 1700000001000,
	"statusDetails": {"message": "locator not found", "trace": "stack..."},
	"labels": [{"name": "suite", "value": "notes"}]
}`

func TestParseAllureFile_Passed(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeResultFile(t, dir, "a-result.json", passedResultJSON)

	result, err := ParseAllureFile(path)
	if err != nil {
		t.Fatalf("ParseAllureFile failed: %v", err)
	}
	if result.Name != "login with valid credentials" {
		t.Errorf("unexpected name %q", result.Name)
	}
	if result.Status != StatusPassed {
		t.Errorf("unexpected status %q", result.Status)
	}
	if result.Duration != 2500*time.Millisecond {
		t.Errorf("expected 2.5s duration, got %v", result.Duration)
	}
	if result.Suite != "auth" {
		t.Errorf("expected parentSuite label, got %q", result.Suite)
	}
	if result.File != "tests/browser/login_test.go" {
		t.Errorf("unexpected file %q", result.File)
	}
	if result.Steps != 3 {
		t.Errorf("expected 3 steps counted recursively, got %d", result.Steps)
	}
	if result.Error != "" {
		t.Errorf("passed test should have no error, got %q", result.Error)
	}
}

func TestParseAllureFile_FailedUsesMessage(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeResultFile(t, dir, "b-result.json", failedResultJSON)

	result, err := ParseAllureFile(path)
	if err != nil {
		t.Fatalf("ParseAllureFile failed: %v", err)
	}
	if result.Error != "locator not found" {
		t.Errorf("expected statusDetails message, got %q", result.Error)
	}
	if result.Suite != "notes" {
		t.Errorf("expected suite fallback label, got %q", result.Suite)
	}
	if result.FullName != "create note" {
		t.Errorf("expected fullName fallback to name, got %q", result.FullName)
	}
}

func TestParseAllureFile_NegativeDurationClampedToZero(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeResultFile(t, dir, "c-result.json",
		`{"name":"x","status":"passed","start":200,"stop":100}`)

	result, err := ParseAllureFile(path)
	if err != nil {
		t.Fatalf("ParseAllureFile failed: %v", err)
	}
	if result.Duration != 0 {
		t.Errorf("expected zero duration when stop < start, got %v", result.Duration)
	}
}

func TestParseAllureDir_SkipsMalformedFilesWithWarnings(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeResultFile(t, dir, "a-result.json", passedResultJSON)
	writeResultFile(t, dir, "b-result.json", "{not json")
	writeResultFile(t, dir, "c-result.json", failedResultJSON)
	writeResultFile(t, dir, "ignored.json", passedResultJSON) // wrong suffix

	results, warnings := ParseAllureDir(dir)
	if len(results) != 2 {
		t.Fatalf("expected 2 parsed results, got %d", len(results))
	}
	if len(warnings) != 1 {
		t.Fatalf("expected 1 warning for the malformed file, got %d", len(warnings))
	}
}

func TestParseAllureDir_EmptyDir(t *testing.T) {
	t.Parallel()

	results, warnings := ParseAllureDir(t.TempDir())
	if len(results) != 0 || len(warnings) != 0 {
		t.Fatalf("expected no results and no warnings, got %d/%d", len(results), len(warnings))
	}
}
