package reports

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFindLatestRun_PrefersCurrentRunMarker(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	for _, run := range []string{"run-20250101-120000", "run-20250201-120000"} {
		if err := os.Mkdir(filepath.Join(base, run), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", run, err)
		}
	}
	marker := filepath.Join(base, CurrentRunMarker)
	if err := os.WriteFile(marker, []byte("run-20250101-120000\n"), 0o644); err != nil {
		t.Fatalf("write marker: %v", err)
	}

	got := FindLatestRun(base)
	want := filepath.Join(base, "run-20250101-120000")
	if got != want {
		t.Errorf("expected marker to win: got %q, want %q", got, want)
	}
}

func TestFindLatestRun_NewestRunDirByName(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	for _, run := range []string{"run-20250101-120000", "run-20250301-080000", "run-20250201-120000"} {
		if err := os.Mkdir(filepath.Join(base, run), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", run, err)
		}
	}

	got := FindLatestRun(base)
	want := filepath.Join(base, "run-20250301-080000")
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestFindLatestRun_StaleMarkerFallsBack(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	if err := os.Mkdir(filepath.Join(base, "run-20250101-120000"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(base, CurrentRunMarker), []byte("run-gone"), 0o644); err != nil {
		t.Fatalf("write marker: %v", err)
	}

	got := FindLatestRun(base)
	want := filepath.Join(base, "run-20250101-120000")
	if got != want {
		t.Errorf("expected fallback to newest run dir, got %q", got)
	}
}

func TestFindLatestRun_LegacyFlatLayout(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	if got := FindLatestRun(base); got != base {
		t.Errorf("expected base dir for flat layout, got %q", got)
	}
}

func TestFindLatestRun_MissingDir(t *testing.T) {
	t.Parallel()

	missing := filepath.Join(t.TempDir(), "nope")
	if got := FindLatestRun(missing); got != missing {
		t.Errorf("expected missing dir returned unchanged, got %q", got)
	}
}
