package reports

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// CurrentRunMarker is written by the test runner to name the active run
// directory inside a results base directory.
const CurrentRunMarker = ".current-run"

// FindLatestRun resolves the directory holding the most recent run's results.
//
// Resolution order:
//  1. the run named by the .current-run marker file, when it exists
//  2. the lexically greatest run-* subdirectory (run IDs are timestamps,
//     so name order is time order)
//  3. the base directory itself (legacy layout with results at the top level)
func FindLatestRun(baseDir string) string {
	info, err := os.Stat(baseDir)
	if err != nil || !info.IsDir() {
		return baseDir
	}

	marker := filepath.Join(baseDir, CurrentRunMarker)
	if raw, err := os.ReadFile(marker); err == nil {
		runID := strings.TrimSpace(string(raw))
		runDir := filepath.Join(baseDir, runID)
		if runID != "" {
			if info, err := os.Stat(runDir); err == nil && info.IsDir() {
				return runDir
			}
		}
	}

	entries, err := os.ReadDir(baseDir)
	if err != nil {
		return baseDir
	}
	var runs []string
	for _, entry := range entries {
		if entry.IsDir() && strings.HasPrefix(entry.Name(), "run-") {
			runs = append(runs, entry.Name())
		}
	}
	if len(runs) > 0 {
		sort.Strings(runs)
		return filepath.Join(baseDir, runs[len(runs)-1])
	}

	return baseDir
}
