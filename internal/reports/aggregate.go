package reports

import (
	"sort"
	"time"
)

// SuiteStats is the per-suite status breakdown.
type SuiteStats struct {
	Passed  int
	Failed  int
	Broken  int
	Skipped int
}

// Failure is one failed or broken test, kept for the report's failure section.
type Failure struct {
	Name   string
	File   string
	Error  string
	Status string
}

// Stats aggregates a run's test results.
type Stats struct {
	Total   int
	Passed  int
	Failed  int
	Broken  int
	Skipped int
	Unknown int

	PassRate      float64 // percentage, 0 when Total == 0
	TotalDuration time.Duration
	AvgDuration   time.Duration

	Suites   map[string]SuiteStats
	Failures []Failure
}

// HasFailures reports whether the run should fail the build.
func (s Stats) HasFailures() bool {
	return s.Failed > 0 || s.Broken > 0
}

// SuiteNames returns the suite names in sorted order for stable reports.
func (s Stats) SuiteNames() []string {
	names := make([]string, 0, len(s.Suites))
	for name := range s.Suites {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FailingSuites returns the sorted names of suites with failed or broken tests.
func (s Stats) FailingSuites() []string {
	var names []string
	for name, counts := range s.Suites {
		if counts.Failed > 0 || counts.Broken > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Aggregate reduces parsed results to summary statistics.
func Aggregate(results []TestResult) Stats {
	stats := Stats{
		Total:  len(results),
		Suites: map[string]SuiteStats{},
	}

	for _, r := range results {
		switch r.Status {
		case StatusPassed:
			stats.Passed++
		case StatusFailed:
			stats.Failed++
		case StatusBroken:
			stats.Broken++
		case StatusSkipped:
			stats.Skipped++
		default:
			stats.Unknown++
		}
		stats.TotalDuration += r.Duration

		suite := r.Suite
		if suite == "" {
			suite = "Default"
		}
		counts := stats.Suites[suite]
		switch r.Status {
		case StatusPassed:
			counts.Passed++
		case StatusFailed:
			counts.Failed++
		case StatusBroken:
			counts.Broken++
		case StatusSkipped:
			counts.Skipped++
		}
		stats.Suites[suite] = counts

		if r.Status == StatusFailed || r.Status == StatusBroken {
			stats.Failures = append(stats.Failures, Failure{
				Name:   r.Name,
				File:   r.File,
				Error:  r.Error,
				Status: r.Status,
			})
		}
	}

	if stats.Total > 0 {
		stats.PassRate = float64(stats.Passed) / float64(stats.Total) * 100
		stats.AvgDuration = stats.TotalDuration / time.Duration(stats.Total)
	}
	return stats
}
