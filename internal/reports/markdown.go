package reports

import (
	"fmt"
	"strings"
	"time"
)

const maxReportedFailures = 10

var statusIcons = map[string]string{
	StatusPassed:  "✅",
	StatusFailed:  "❌",
	StatusBroken:  "💔",
	StatusSkipped: "⏭️",
	StatusUnknown: "❓",
}

// MarkdownOptions controls report rendering.
type MarkdownOptions struct {
	Compact  bool   // skip the per-suite breakdown
	Insights string // pre-generated LLM insights section body, "" to omit
}

// FormatDuration renders a duration the way the report expects: 250ms, 3.5s,
// or 2m 15s.
func FormatDuration(d time.Duration) string {
	ms := d.Milliseconds()
	switch {
	case ms < 1000:
		return fmt.Sprintf("%dms", ms)
	case ms < 60_000:
		return fmt.Sprintf("%.1fs", float64(ms)/1000)
	default:
		minutes := ms / 60_000
		seconds := float64(ms%60_000) / 1000
		return fmt.Sprintf("%dm %.0fs", minutes, seconds)
	}
}

// RenderMarkdown produces the complete browser-suite summary report.
func RenderMarkdown(stats Stats, opts MarkdownOptions) string {
	var b strings.Builder

	b.WriteString("## 🎭 Playwright E2E Test Summary\n\n")
	b.WriteString(renderSummary(stats))

	if len(stats.Failures) > 0 {
		b.WriteString(renderFailures(stats.Failures))
	}
	if !opts.Compact {
		b.WriteString(renderSuites(stats))
	}

	b.WriteString("### 💡 Recommendations\n\n")
	b.WriteString(Recommendations(stats))
	b.WriteString("\n")

	if opts.Insights != "" {
		b.WriteString("\n### 🤖 AI Insights\n\n")
		b.WriteString(opts.Insights)
		b.WriteString("\n")
	}

	return b.String()
}

func renderSummary(stats Stats) string {
	var b strings.Builder

	var overall string
	switch {
	case stats.HasFailures():
		overall = "❌ **TESTS FAILED**"
	case stats.Skipped > 0 && stats.Passed == 0:
		overall = "⏭️ **ALL TESTS SKIPPED**"
	case stats.Passed > 0 && stats.Skipped > 0:
		overall = "✅ **TESTS PASSED** (some skipped)"
	case stats.Passed > 0:
		overall = "✅ **ALL TESTS PASSED**"
	default:
		overall = "⚠️ **TESTS COMPLETED WITH ISSUES**"
	}
	fmt.Fprintf(&b, "### %s\n\n", overall)

	b.WriteString("| Status | Count | Percentage |\n")
	b.WriteString("|--------|-------|------------|\n")
	counts := []struct {
		status string
		count  int
	}{
		{StatusPassed, stats.Passed},
		{StatusFailed, stats.Failed},
		{StatusBroken, stats.Broken},
		{StatusSkipped, stats.Skipped},
	}
	for _, c := range counts {
		// Passed and failed rows always appear; others only when non-zero.
		if c.count == 0 && c.status != StatusPassed && c.status != StatusFailed {
			continue
		}
		pct := 0.0
		if stats.Total > 0 {
			pct = float64(c.count) / float64(stats.Total) * 100
		}
		fmt.Fprintf(&b, "| %s %s | %d | %.1f%% |\n",
			statusIcons[c.status], capitalize(c.status), c.count, pct)
	}
	fmt.Fprintf(&b, "| **Total** | **%d** | **100%%** |\n\n", stats.Total)

	b.WriteString("### ⏱️ Performance Metrics\n\n")
	fmt.Fprintf(&b, "- **Total Duration:** %s\n", FormatDuration(stats.TotalDuration))
	fmt.Fprintf(&b, "- **Average Test Duration:** %s\n", FormatDuration(stats.AvgDuration))
	fmt.Fprintf(&b, "- **Pass Rate:** %.1f%%\n\n", stats.PassRate)

	return b.String()
}

func renderFailures(failures []Failure) string {
	var b strings.Builder
	b.WriteString("### ❌ Failed Tests\n\n")

	for i, f := range failures {
		if i == maxReportedFailures {
			break
		}
		icon := statusIcons[f.Status]
		if icon == "" {
			icon = statusIcons[StatusFailed]
		}
		fmt.Fprintf(&b, "**%d. %s %s**\n", i+1, icon, f.Name)
		fmt.Fprintf(&b, "- 📁 File: `%s`\n", f.File)
		if f.Error != "" {
			cleaned := strings.Join(strings.Fields(f.Error), " ")
			fmt.Fprintf(&b, "- 💬 Error: %s\n", truncate(cleaned, 200))
		}
		b.WriteString("\n")
	}

	if extra := len(failures) - maxReportedFailures; extra > 0 {
		fmt.Fprintf(&b, "*... and %d more failures*\n\n", extra)
	}
	return b.String()
}

func renderSuites(stats Stats) string {
	if len(stats.Suites) <= 1 {
		return ""
	}
	var b strings.Builder
	b.WriteString("### 📦 Test Suites\n\n")
	b.WriteString("| Suite | ✅ | ❌ | 💔 | ⏭️ |\n")
	b.WriteString("|-------|-----|-----|-----|-----|\n")
	for _, name := range stats.SuiteNames() {
		c := stats.Suites[name]
		fmt.Fprintf(&b, "| %s | %d | %d | %d | %d |\n", name, c.Passed, c.Failed, c.Broken, c.Skipped)
	}
	b.WriteString("\n")
	return b.String()
}

// Recommendations produces a numbered list of deterministic, rule-based
// follow-ups for the run.
func Recommendations(stats Stats) string {
	var recs []string

	if stats.Failed > 0 {
		recs = append(recs, fmt.Sprintf(
			"Investigate and fix the %d failing test(s) before merging.", stats.Failed))
	}
	if stats.Broken > 0 {
		recs = append(recs, fmt.Sprintf(
			"Review %d broken test(s) - these may indicate infrastructure or setup issues.", stats.Broken))
	}

	if stats.Skipped > 0 && stats.Total > 0 {
		skipPct := float64(stats.Skipped) / float64(stats.Total) * 100
		if skipPct > 20 {
			recs = append(recs, fmt.Sprintf(
				"High skip rate (%.0f%%) - review if skipped tests should be enabled or removed.", skipPct))
		} else {
			recs = append(recs, fmt.Sprintf(
				"Review %d skipped test(s) to ensure they are intentionally disabled.", stats.Skipped))
		}
	}

	if stats.AvgDuration > 10*time.Second {
		recs = append(recs, fmt.Sprintf(
			"Average test duration is %s - consider parallelization or optimization.",
			FormatDuration(stats.AvgDuration)))
	}

	if stats.PassRate < 80 && stats.Total > 5 {
		recs = append(recs, fmt.Sprintf(
			"Pass rate is %.0f%% - prioritize test stability before adding new tests.", stats.PassRate))
	} else if stats.PassRate == 100 {
		recs = append(recs, "All tests passing - consider adding more edge case coverage.")
	}

	if failing := stats.FailingSuites(); len(failing) > 1 {
		shown := failing
		if len(shown) > 3 {
			shown = shown[:3]
		}
		recs = append(recs, fmt.Sprintf(
			"Multiple suites have failures (%s) - check for shared dependencies.", strings.Join(shown, ", ")))
	}

	if len(recs) == 0 {
		recs = append(recs, "Test suite is healthy - continue monitoring for regressions.")
	}
	if len(recs) > 8 {
		recs = recs[:8]
	}

	var b strings.Builder
	for i, rec := range recs {
		fmt.Fprintf(&b, "%d. %s\n", i+1, rec)
	}
	return strings.TrimRight(b.String(), "\n")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
