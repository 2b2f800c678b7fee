// Package reports parses test-result files (Allure JSON from the browser
// suite, JUnit XML from the API fuzz runner), aggregates them into summary
// statistics, and renders deterministic markdown reports with optional
// LLM-generated insights.
package reports

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// Test statuses as reported in Allure result files.
const (
	StatusPassed  = "passed"
	StatusFailed  = "failed"
	StatusBroken  = "broken"
	StatusSkipped = "skipped"
	StatusUnknown = "unknown"
)

const maxErrorChars = 500 // long traces are truncated for the report

// TestResult is one parsed test outcome.
type TestResult struct {
	Name     string
	FullName string
	Status   string
	Duration time.Duration
	Suite    string
	File     string
	Error    string // non-empty only for failed/broken
	Steps    int
}

// allureResult is the subset of the Allure result JSON schema we consume.
type allureResult struct {
	Name          string `json:"name"`
	FullName      string `json:"fullName"`
	Status        string `json:"status"`
	Start         int64  `json:"start"`
	Stop          int64  `json:"stop"`
	StatusDetails struct {
		Message string `json:"message"`
		Trace   string `json:"trace"`
	} `json:"statusDetails"`
	Labels []struct {
		Name  string `json:"name"`
		Value string `json:"value"`
	} `json:"labels"`
	Steps []allureStep `json:"steps"`
}

type allureStep struct {
	Steps []allureStep `json:"steps"`
}

func countSteps(steps []allureStep) int {
	count := len(steps)
	for _, s := range steps {
		count += countSteps(s.Steps)
	}
	return count
}

// ParseAllureFile parses a single Allure *-result.json file.
func ParseAllureFile(path string) (*TestResult, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var data allureResult
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	result := &TestResult{
		Name:     data.Name,
		FullName: data.FullName,
		Status:   data.Status,
		Steps:    countSteps(data.Steps),
	}
	if result.Name == "" {
		result.Name = "Unknown test"
	}
	if result.FullName == "" {
		result.FullName = result.Name
	}
	if result.Status == "" {
		result.Status = StatusUnknown
	}
	if data.Stop > data.Start {
		result.Duration = time.Duration(data.Stop-data.Start) * time.Millisecond
	}

	labels := map[string]string{}
	for _, l := range data.Labels {
		labels[l.Name] = l.Value
	}
	result.Suite = labels["parentSuite"]
	if result.Suite == "" {
		result.Suite = labels["suite"]
	}
	result.File = labels["package"]

	if result.Status == StatusFailed || result.Status == StatusBroken {
		result.Error = data.StatusDetails.Message
		if result.Error == "" {
			result.Error = truncate(data.StatusDetails.Trace, maxErrorChars)
		}
	}
	return result, nil
}

// ParseAllureDir parses every *-result.json file in dir, sorted by name.
// Files that cannot be parsed are reported as warnings, not fatal errors.
func ParseAllureDir(dir string) ([]TestResult, []error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*-result.json"))
	if err != nil {
		return nil, []error{fmt.Errorf("glob %s: %w", dir, err)}
	}
	sort.Strings(matches)

	var results []TestResult
	var warnings []error
	for _, path := range matches {
		result, err := ParseAllureFile(path)
		if err != nil {
			warnings = append(warnings, err)
			continue
		}
		results = append(results, *result)
	}
	return results, warnings
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
