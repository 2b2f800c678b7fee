// Command summarize-playwright turns a browser test run's Allure results
// into a markdown summary suitable for CI job output or a PR comment.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/inkops/notes-e2e/internal/obs"
	"github.com/inkops/notes-e2e/internal/reports"
)

// errTestFailures signals a clean run of the tool over a failing test run.
var errTestFailures = errors.New("test failures detected")

func main() {
	obs.Init()
	if err := newRootCmd().Execute(); err != nil {
		if errors.Is(err, errTestFailures) {
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
}

func newRootCmd() *cobra.Command {
	var (
		ci         bool
		noLLM      bool
		compact    bool
		resultsDir string
		htmlPath   string
	)

	cmd := &cobra.Command{
		Use:   "summarize-playwright [results-dir]",
		Short: "Summarize Allure results from a Playwright run as markdown",
		Long: `Reads Allure result JSON files from the latest run directory and prints
a markdown summary to stdout.

Run detection: a .current-run marker file wins, then the newest run-* directory,
then the results directory itself (legacy flat layout).

Exit codes: 0 on success (including "no results"), 1 when any test failed or
broke, 2 on tool errors.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				// Legacy positional form, kept for old CI jobs.
				resultsDir = args[0]
			}
			return run(cmd.Context(), resultsDir, htmlPath, ci, noLLM, compact)
		},
	}

	cmd.Flags().BoolVar(&ci, "ci", false, "CI mode: markdown only, no banner, no LLM insights")
	cmd.Flags().BoolVar(&noLLM, "no-llm", false, "Skip LLM insight generation")
	cmd.Flags().BoolVar(&compact, "compact", false, "Omit the per-suite breakdown")
	cmd.Flags().StringVarP(&resultsDir, "results", "r",
		getEnvOrDefault("TEST_RESULTS_DIR", "test-results"), "Base results directory")
	cmd.Flags().StringVar(&htmlPath, "html", "", "Also write the report as HTML to this path")

	return cmd
}

func run(ctx context.Context, resultsDir, htmlPath string, ci, noLLM, compact bool) error {
	log := obs.With("summarize-playwright")

	runDir := reports.FindLatestRun(resultsDir)
	allureDir := runDir
	if sub := filepath.Join(runDir, "allure-results"); dirExists(sub) {
		allureDir = sub
	}

	if !ci {
		fmt.Fprintf(os.Stderr, "🎭 Summarizing %s\n", allureDir)
	}

	results, warnings := reports.ParseAllureDir(allureDir)
	for _, w := range warnings {
		log.Warn("skipped result file", "error", w)
	}
	if len(results) == 0 {
		fmt.Fprintf(os.Stderr, "No Allure results found in %s\n", allureDir)
		return nil
	}

	stats := reports.Aggregate(results)

	var insights string
	if !ci && !noLLM {
		if gen := reports.NewInsightGenerator(); gen != nil {
			insights = gen.Generate(ctx, reports.BuildPrompt(stats))
		}
	}

	report := reports.RenderMarkdown(stats, reports.MarkdownOptions{
		Compact:  compact,
		Insights: insights,
	})
	fmt.Print(report)

	if htmlPath != "" {
		if err := reports.WriteHTML(report, htmlPath); err != nil {
			return err
		}
		log.Info("wrote HTML report", "path", htmlPath)
	}

	if stats.HasFailures() {
		return errTestFailures
	}
	return nil
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
