// Command summarize-api turns the API fuzz runner's JUnit XML output into a
// markdown summary with categorized failures and fix recommendations.
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
		resultsDir string
		htmlPath   string
	)

	cmd := &cobra.Command{
		Use:   "summarize-api [results-dir]",
		Short: "Summarize JUnit XML results from an API fuzz run as markdown",
		Long: `Reads junit*.xml files from the latest run directory, categorizes failures
(missing headers, 404-vs-405, missing Allow headers, rejected valid requests),
and prints a markdown summary with fix recommendations to stdout.

Exit codes: 0 on success (including "no results"), 1 when any failure exists,
2 on tool errors.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				resultsDir = args[0]
			}
			return run(cmd.Context(), resultsDir, htmlPath, ci, noLLM)
		},
	}

	cmd.Flags().BoolVar(&ci, "ci", false, "CI mode: markdown only, no banner, no LLM insights")
	cmd.Flags().BoolVar(&noLLM, "no-llm", false, "Skip LLM insight generation")
	cmd.Flags().StringVarP(&resultsDir, "results", "r",
		getEnvOrDefault("TEST_RESULTS_DIR", "test-results"), "Base results directory")
	cmd.Flags().StringVar(&htmlPath, "html", "", "Also write the report as HTML to this path")

	return cmd
}

func run(ctx context.Context, resultsDir, htmlPath string, ci, noLLM bool) error {
	log := obs.With("summarize-api")

	runDir := reports.FindLatestRun(resultsDir)
	junitDir := runDir
	if sub := filepath.Join(runDir, "api-results"); dirExists(sub) {
		junitDir = sub
	}

	if !ci {
		fmt.Fprintf(os.Stderr, "🔬 Summarizing %s\n", junitDir)
	}

	summary, warnings := reports.ParseJUnitDir(junitDir)
	for _, w := range warnings {
		log.Warn("skipped results file", "error", w)
	}
	if summary.TotalTests == 0 && len(summary.Failures) == 0 {
		fmt.Fprintf(os.Stderr, "No JUnit results found in %s\n", junitDir)
		return nil
	}

	var insights string
	if !ci && !noLLM && len(summary.Failures) > 0 {
		if gen := reports.NewInsightGenerator(); gen != nil {
			insights = gen.Generate(ctx, reports.BuildAPIPrompt(summary))
		}
	}

	report := reports.RenderAPIMarkdown(summary, insights)
	fmt.Print(report)

	if htmlPath != "" {
		if err := reports.WriteHTML(report, htmlPath); err != nil {
			return err
		}
		log.Info("wrote HTML report", "path", htmlPath)
	}

	if len(summary.Failures) > 0 || summary.TotalFailures > 0 {
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
