package reports

import (
	"testing"
	"time"

	"pgregory.net/rapid"
)

func resultGenerator() *rapid.Generator[TestResult] {
	return rapid.Custom(func(rt *rapid.T) TestResult {
		return TestResult{
			Name:   rapid.StringMatching(`[a-z ]{5,30}`).Draw(rt, "name"),
			Status: rapid.SampledFrom([]string{StatusPassed, StatusFailed, StatusBroken, StatusSkipped, StatusUnknown}).Draw(rt, "status"),
			Suite:  rapid.SampledFrom([]string{"", "auth", "notes", "profile"}).Draw(rt, "suite"),
			File:   "tests/browser/some_test.go",
			Duration: time.Duration(
				rapid.Int64Range(0, int64(time.Minute)).Draw(rt, "duration")),
			Error: rapid.SampledFrom([]string{"", "boom"}).Draw(rt, "error"),
		}
	})
}

func TestAggregate_CountsAreConsistent(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(rt *rapid.T) {
		results := rapid.SliceOfN(resultGenerator(), 0, 40).Draw(rt, "results")
		stats := Aggregate(results)

		if stats.Total != len(results) {
			rt.Fatalf("total %d != len %d", stats.Total, len(results))
		}
		sum := stats.Passed + stats.Failed + stats.Broken + stats.Skipped + stats.Unknown
		if sum != stats.Total {
			rt.Fatalf("status counts sum %d != total %d", sum, stats.Total)
		}
		if len(stats.Failures) != stats.Failed+stats.Broken {
			rt.Fatalf("failures list %d != failed+broken %d",
				len(stats.Failures), stats.Failed+stats.Broken)
		}
		if stats.PassRate < 0 || stats.PassRate > 100 {
			rt.Fatalf("pass rate out of range: %f", stats.PassRate)
		}
		if stats.Total == 0 && (stats.PassRate != 0 || stats.AvgDuration != 0) {
			rt.Fatalf("empty run must have zero rate and duration")
		}

		var suiteTotal int
		for _, counts := range stats.Suites {
			suiteTotal += counts.Passed + counts.Failed + counts.Broken + counts.Skipped
		}
		if suiteTotal != stats.Total-stats.Unknown {
			rt.Fatalf("suite totals %d != total minus unknown %d",
				suiteTotal, stats.Total-stats.Unknown)
		}
	})
}

func TestAggregate_EmptySuiteNameBucketsAsDefault(t *testing.T) {
	t.Parallel()

	stats := Aggregate([]TestResult{
		{Name: "a", Status: StatusPassed, Suite: ""},
		{Name: "b", Status: StatusFailed, Suite: "auth", Error: "boom"},
	})

	if stats.Suites["Default"].Passed != 1 {
		t.Errorf("expected unlabeled result under Default, got %+v", stats.Suites)
	}
	if stats.Suites["auth"].Failed != 1 {
		t.Errorf("expected auth failure, got %+v", stats.Suites)
	}
	if !stats.HasFailures() {
		t.Error("expected HasFailures")
	}
	if got := stats.FailingSuites(); len(got) != 1 || got[0] != "auth" {
		t.Errorf("unexpected failing suites: %v", got)
	}
}

func TestAggregate_Durations(t *testing.T) {
	t.Parallel()

	stats := Aggregate([]TestResult{
		{Status: StatusPassed, Duration: 2 * time.Second},
		{Status: StatusPassed, Duration: 4 * time.Second},
	})
	if stats.TotalDuration != 6*time.Second {
		t.Errorf("total duration: got %v", stats.TotalDuration)
	}
	if stats.AvgDuration != 3*time.Second {
		t.Errorf("avg duration: got %v", stats.AvgDuration)
	}
	if stats.PassRate != 100 {
		t.Errorf("pass rate: got %f", stats.PassRate)
	}
}
