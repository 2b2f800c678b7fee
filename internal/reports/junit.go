package reports

import (
	"encoding/xml"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// Failure categories produced by the API fuzz runner. Ordered for stable
// report output.
const (
	CategoryMissingHeader = "Missing header not rejected (401 vs 406)"
	CategoryMissingAllow  = "Missing Allow header on 405"
	CategoryWrongStatus   = "Wrong status code (404 vs 405)"
	CategoryRejectedValid = "Schema-compliant request rejected"
	CategoryOther         = "Other failures"
)

var apiCategories = []string{
	CategoryMissingHeader,
	CategoryMissingAllow,
	CategoryWrongStatus,
	CategoryRejectedValid,
	CategoryOther,
}

// APIFailure is one failing endpoint check from the JUnit XML.
type APIFailure struct {
	Endpoint string // "METHOD /path"
	Summary  string // one-line extraction from the failure message
	Details  string // cleaned full message
}

// APISummary aggregates one or more JUnit XML files.
type APISummary struct {
	TotalTests    int
	TotalFailures int
	Failures      []APIFailure
}

// JUnit XML schema subset.
type junitTestSuites struct {
	XMLName  xml.Name         `xml:"testsuites"`
	Tests    int              `xml:"tests,attr"`
	Failures int              `xml:"failures,attr"`
	Suites   []junitTestSuite `xml:"testsuite"`
}

type junitTestSuite struct {
	XMLName  xml.Name        `xml:"testsuite"`
	Tests    int             `xml:"tests,attr"`
	Failures int             `xml:"failures,attr"`
	Cases    []junitTestCase `xml:"testcase"`
}

type junitTestCase struct {
	Name    string        `xml:"name,attr"`
	Failure *junitFailure `xml:"failure"`
}

type junitFailure struct {
	Message string `xml:"message,attr"`
	Body    string `xml:",chardata"`
}

var (
	htmlResponseTruncatedRe = regexp.MustCompile(`(?is)` + "`" + `<!doctype html>.*?// Output truncated\.\.\.` + "`")
	htmlResponseRe          = regexp.MustCompile(`(?is)` + "`" + `<!doctype html>.*?` + "`")
	curlReproduceRe         = regexp.MustCompile(`Reproduce with:\s*\n\s*curl[^\n]+`)
	multiNewlineRe          = regexp.MustCompile(`\n{3,}`)
	categoryLineRe          = regexp.MustCompile(`(?m)^- (.+)$`)
)

// cleanFailureMessage strips the noise the fuzz runner embeds in failure
// messages: HTML entity escapes, full HTML response bodies, curl reproduce
// commands, and runs of blank lines.
func cleanFailureMessage(raw string) string {
	msg := html.UnescapeString(raw)
	msg = htmlResponseTruncatedRe.ReplaceAllString(msg, "[HTML response truncated]")
	msg = htmlResponseRe.ReplaceAllString(msg, "[HTML response]")
	msg = curlReproduceRe.ReplaceAllString(msg, "")
	msg = multiNewlineRe.ReplaceAllString(msg, "\n\n")
	return strings.TrimSpace(msg)
}

// extractFailureSummary pulls a one-line summary out of a failure message,
// preferring the "- category" bullet lines the runner emits.
func extractFailureSummary(raw string) string {
	matches := categoryLineRe.FindAllStringSubmatch(raw, 3)
	if len(matches) > 0 {
		parts := make([]string, 0, len(matches))
		for _, m := range matches {
			parts = append(parts, m[1])
		}
		return strings.Join(parts, "; ")
	}

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "Reproduce") {
			continue
		}
		return truncate(line, 100)
	}
	return "Unknown failure"
}

// ParseJUnitFile parses one JUnit XML file. Accepts either a <testsuites>
// root or a bare <testsuite>.
func ParseJUnitFile(path string) (*APISummary, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var suites []junitTestSuite
	summary := &APISummary{}

	var multi junitTestSuites
	if err := xml.Unmarshal(raw, &multi); err == nil {
		summary.TotalTests = multi.Tests
		summary.TotalFailures = multi.Failures
		suites = multi.Suites
	} else {
		var single junitTestSuite
		if err := xml.Unmarshal(raw, &single); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		summary.TotalTests = single.Tests
		summary.TotalFailures = single.Failures
		suites = []junitTestSuite{single}
	}

	for _, suite := range suites {
		for _, tc := range suite.Cases {
			if tc.Failure == nil {
				continue
			}
			endpoint := tc.Name
			if endpoint == "" {
				endpoint = "Unknown endpoint"
			}
			raw := tc.Failure.Message
			if raw == "" {
				raw = tc.Failure.Body
			}
			summary.Failures = append(summary.Failures, APIFailure{
				Endpoint: endpoint,
				Summary:  extractFailureSummary(raw),
				Details:  cleanFailureMessage(raw),
			})
		}
	}
	return summary, nil
}

// ParseJUnitDir parses every junit*.xml file in dir and merges the totals.
func ParseJUnitDir(dir string) (*APISummary, []error) {
	matches, err := filepath.Glob(filepath.Join(dir, "junit*.xml"))
	if err != nil {
		return nil, []error{fmt.Errorf("glob %s: %w", dir, err)}
	}
	sort.Strings(matches)

	merged := &APISummary{}
	var warnings []error
	for _, path := range matches {
		summary, err := ParseJUnitFile(path)
		if err != nil {
			warnings = append(warnings, err)
			continue
		}
		merged.TotalTests += summary.TotalTests
		merged.TotalFailures += summary.TotalFailures
		merged.Failures = append(merged.Failures, summary.Failures...)
	}
	return merged, warnings
}

// CategorizeFailures buckets API failures by type. Empty categories are
// omitted from the returned map.
func CategorizeFailures(failures []APIFailure) map[string][]APIFailure {
	categories := map[string][]APIFailure{}
	add := func(category string, f APIFailure) {
		categories[category] = append(categories[category], f)
	}

	for _, f := range failures {
		details := strings.ToLower(f.Details)
		summary := strings.ToLower(f.Summary)

		switch {
		case strings.Contains(summary, "missing header"):
			add(CategoryMissingHeader, f)
		case strings.Contains(summary, "unsupported method"):
			if strings.Contains(details, "allow") && strings.Contains(details, "header") {
				add(CategoryMissingAllow, f)
			} else {
				add(CategoryWrongStatus, f)
			}
		case strings.Contains(summary, "schema-compliant") || strings.Contains(summary, "rejected"):
			add(CategoryRejectedValid, f)
		default:
			add(CategoryOther, f)
		}
	}
	return categories
}

func uniqueEndpoints(failures []APIFailure) []string {
	seen := map[string]bool{}
	var endpoints []string
	for _, f := range failures {
		if !seen[f.Endpoint] {
			seen[f.Endpoint] = true
			endpoints = append(endpoints, f.Endpoint)
		}
	}
	sort.Strings(endpoints)
	return endpoints
}

// RenderAPIMarkdown produces the API fuzz-run summary report.
func RenderAPIMarkdown(summary *APISummary, insights string) string {
	var b strings.Builder
	b.WriteString("## 🔬 API Contract Test Summary\n\n")

	if len(summary.Failures) == 0 {
		fmt.Fprintf(&b, "✅ **All %d tests passed!** No failures detected.\n", summary.TotalTests)
		return b.String()
	}

	categories := CategorizeFailures(summary.Failures)

	b.WriteString("## Summary\n")
	fmt.Fprintf(&b, "- **%d failures** across %d tests\n\n", summary.TotalFailures, summary.TotalTests)
	for _, category := range apiCategories {
		entries, ok := categories[category]
		if !ok {
			continue
		}
		endpoints := uniqueEndpoints(entries)
		shown := endpoints
		if len(shown) > 5 {
			shown = shown[:5]
		}
		list := strings.Join(shown, ", ")
		if extra := len(endpoints) - 5; extra > 0 {
			list += fmt.Sprintf(" (+%d more)", extra)
		}
		fmt.Fprintf(&b, "- **%s:** %s\n", category, list)
	}
	b.WriteString("\n## 🔧 Recommendations\n\n")
	b.WriteString(apiRecommendations(categories))
	b.WriteString("\n")

	if insights != "" {
		b.WriteString("\n### 🤖 AI Insights\n\n")
		b.WriteString(insights)
		b.WriteString("\n")
	}
	return b.String()
}

func apiRecommendations(categories map[string][]APIFailure) string {
	var recs []string

	if entries, ok := categories[CategoryMissingAllow]; ok {
		endpoints := uniqueEndpoints(entries)
		shown := endpoints
		if len(shown) > 3 {
			shown = shown[:3]
		}
		suffix := ""
		if len(entries) > 3 {
			suffix = "..."
		}
		recs = append(recs, fmt.Sprintf(
			"Add `Allow` header to all 405 responses listing supported methods (RFC 9110 requirement). Affected: %s%s",
			strings.Join(shown, ", "), suffix))
		recs = append(recs, "Configure the web framework to automatically include the `Allow` header on 405 responses.")
	}

	if entries, ok := categories[CategoryWrongStatus]; ok {
		endpoints := uniqueEndpoints(entries)
		shown := endpoints
		if len(shown) > 3 {
			shown = shown[:3]
		}
		suffix := ""
		if len(entries) > 3 {
			suffix = "..."
		}
		recs = append(recs, fmt.Sprintf(
			"Return HTTP 405 (Method Not Allowed) instead of 404 for unsupported methods. Affected: %s%s",
			strings.Join(shown, ", "), suffix))
		recs = append(recs, "Add a catch-all route handler that returns 405 for undefined methods on existing paths.")
	}

	if _, ok := categories[CategoryMissingHeader]; ok {
		recs = append(recs, "Return HTTP 406 (Not Acceptable) when required Accept/Content-Type headers are missing.")
		recs = append(recs, "Add middleware to validate required headers before processing requests.")
	}

	if _, ok := categories[CategoryRejectedValid]; ok {
		recs = append(recs, "Review request validation logic - schema-compliant requests should not be rejected.")
		recs = append(recs, "Ensure the OpenAPI schema matches the actual API validation rules.")
	}

	recs = append(recs, "Add integration tests that verify correct HTTP status codes for unsupported methods.")

	if len(recs) > 10 {
		recs = recs[:10]
	}
	var b strings.Builder
	for i, rec := range recs {
		fmt.Fprintf(&b, "%d. %s\n", i+1, rec)
	}
	return strings.TrimRight(b.String(), "\n")
}
