package reports

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/inkops/notes-e2e/internal/obs"
)

// LLM insight generation is optional: it activates only when OPENAI_API_KEY
// is set, and LLM_BASE_URL may point it at any OpenAI-compatible server
// (e.g. a local llama.cpp instance).
const (
	defaultInsightModel = "gpt-4o-mini"
	maxInsightTokens    = 300
	insightTemperature  = 0.15
	maxInsights         = 5
)

const insightSystemPrompt = `You are a QA engineer analyzing end-to-end test results.

Generate 3-5 brief, actionable insights based on the test data below.

Rules:
- Output only a numbered list (1., 2., 3., ...).
- Each item must be one sentence.
- Focus on patterns, root causes, and next steps.
- Be specific - mention test names or suites when relevant.
- No repetition, no fluff, no greetings.`

// InsightGenerator produces LLM insights for a run summary.
type InsightGenerator struct {
	client openai.Client
	model  string
}

// NewInsightGenerator builds a generator from the environment. Returns nil
// (no error) when no API key is configured; callers then skip insights.
func NewInsightGenerator() *InsightGenerator {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL := os.Getenv("LLM_BASE_URL"); baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	model := os.Getenv("LLM_MODEL")
	if model == "" {
		model = defaultInsightModel
	}

	return &InsightGenerator{
		client: openai.NewClient(opts...),
		model:  model,
	}
}

// BuildPrompt condenses stats into a short data block for the model.
func BuildPrompt(stats Stats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Tests: %d total, %d passed, %d failed, %d skipped.",
		stats.Total, stats.Passed, stats.Failed, stats.Skipped)
	fmt.Fprintf(&b, " Pass rate: %.0f%%.", stats.PassRate)
	fmt.Fprintf(&b, " Duration: %s.", FormatDuration(stats.TotalDuration))

	if len(stats.Failures) > 0 {
		names := make([]string, 0, 5)
		for i, f := range stats.Failures {
			if i == 5 {
				break
			}
			names = append(names, f.Name)
		}
		fmt.Fprintf(&b, " Failed tests: %s.", strings.Join(names, ", "))
	}
	if failing := stats.FailingSuites(); len(failing) > 0 {
		shown := failing
		if len(shown) > 3 {
			shown = shown[:3]
		}
		fmt.Fprintf(&b, " Failing suites: %s.", strings.Join(shown, ", "))
	}
	return b.String()
}

// BuildAPIPrompt condenses an API fuzz-run summary into a short data block.
func BuildAPIPrompt(summary *APISummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "API contract tests: %d total, %d failures.",
		summary.TotalTests, summary.TotalFailures)

	categories := CategorizeFailures(summary.Failures)
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
		fmt.Fprintf(&b, " %s: %s.", category, strings.Join(shown, ", "))
	}
	return b.String()
}

// Generate returns post-processed insights, or "" when the model produced
// nothing usable. Failures are logged and swallowed: insights are decoration,
// never a reason to fail a report.
func (g *InsightGenerator) Generate(ctx context.Context, data string) string {
	log := obs.With("insights")

	completion, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(insightSystemPrompt),
			openai.UserMessage("Data: " + data + "\n\nInsights:"),
		},
		MaxTokens:   openai.Int(maxInsightTokens),
		Temperature: openai.Float(insightTemperature),
	})
	if err != nil {
		log.Warn("insight generation failed", "error", err)
		return ""
	}
	if len(completion.Choices) == 0 {
		return ""
	}
	return PostProcessInsights(completion.Choices[0].Message.Content)
}

var numberedLineRe = regexp.MustCompile(`^\d+\.`)

// PostProcessInsights keeps at most maxInsights numbered lines and drops
// everything else (echoed input, headings, trailing fragments).
func PostProcessInsights(text string) string {
	var kept []string
	for _, line := range strings.Split(text, "\n") {
		stripped := strings.TrimSpace(line)
		if stripped == "" || strings.HasPrefix(stripped, "Data:") {
			continue
		}
		if numberedLineRe.MatchString(stripped) {
			kept = append(kept, line)
			if len(kept) == maxInsights {
				break
			}
		}
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}
