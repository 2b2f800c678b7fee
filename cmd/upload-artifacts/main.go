// Command upload-artifacts archives a test run's output directory (Allure
// results, screenshots, videos, rendered reports) to S3-compatible storage
// so CI artifacts survive runner teardown.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/inkops/notes-e2e/internal/artifacts"
	"github.com/inkops/notes-e2e/internal/obs"
	"github.com/inkops/notes-e2e/internal/reports"
)

func main() {
	obs.Init()
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		resultsDir string
		runID      string
		bucket     string
		endpoint   string
		region     string
		publicURL  string
	)

	cmd := &cobra.Command{
		Use:   "upload-artifacts [results-dir]",
		Short: "Archive the latest test run directory to object storage",
		Long: `Finds the latest run directory under the results base (the same detection
the summarizers use) and uploads every file to S3-compatible storage under
runs/<run-id>/.

Credentials come from ARTIFACTS_ACCESS_KEY_ID / ARTIFACTS_SECRET_ACCESS_KEY,
falling back to the default AWS credential chain when unset.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				resultsDir = args[0]
			}
			if bucket == "" {
				return errors.New("bucket is required (--bucket or ARTIFACTS_BUCKET)")
			}
			return run(cmd.Context(), resultsDir, runID, artifacts.StoreConfig{
				Endpoint:        endpoint,
				Region:          region,
				AccessKeyID:     os.Getenv("ARTIFACTS_ACCESS_KEY_ID"),
				SecretAccessKey: os.Getenv("ARTIFACTS_SECRET_ACCESS_KEY"),
				BucketName:      bucket,
				PublicURL:       publicURL,
			})
		},
	}

	cmd.Flags().StringVarP(&resultsDir, "results", "r",
		getEnvOrDefault("TEST_RESULTS_DIR", "test-results"), "Base results directory")
	cmd.Flags().StringVar(&runID, "run-id", "", "Override the run ID (defaults to the run directory name)")
	cmd.Flags().StringVar(&bucket, "bucket", os.Getenv("ARTIFACTS_BUCKET"), "Destination bucket")
	cmd.Flags().StringVar(&endpoint, "endpoint", os.Getenv("ARTIFACTS_ENDPOINT"), "S3 endpoint URL (empty for AWS)")
	cmd.Flags().StringVar(&region, "region", getEnvOrDefault("ARTIFACTS_REGION", "auto"), "S3 region")
	cmd.Flags().StringVar(&publicURL, "public-url", os.Getenv("ARTIFACTS_PUBLIC_URL"), "Public base URL for uploaded objects")

	return cmd
}

func run(ctx context.Context, resultsDir, runID string, cfg artifacts.StoreConfig) error {
	store, err := artifacts.NewStore(ctx, cfg)
	if err != nil {
		return err
	}

	runDir := reports.FindLatestRun(resultsDir)
	result, err := artifacts.UploadRun(ctx, store, runDir, runID)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "📦 Archived %d files (%d bytes) to s3://%s/%s\n",
		result.Uploaded, result.Bytes, store.BucketName(), result.Prefix)
	if url := store.PublicURL(result.Prefix); url != "" {
		fmt.Fprintf(os.Stderr, "   %s\n", url)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
