package artifacts

import (
	"context"
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/inkops/notes-e2e/internal/obs"
)

const defaultContentType = "application/octet-stream"

// UploadResult summarizes one run-directory upload.
type UploadResult struct {
	RunID    string
	Uploaded int
	Bytes    int64
	Prefix   string
}

// UploadRun walks the run directory and uploads every regular file to the
// store under runs/<runID>/<relative path>. The run ID defaults to the
// directory's base name, so run-20250301-080000 archives under
// runs/run-20250301-080000/.
func UploadRun(ctx context.Context, store *Store, runDir, runID string) (*UploadResult, error) {
	log := obs.With("artifacts")

	info, err := os.Stat(runDir)
	if err != nil {
		return nil, fmt.Errorf("artifacts: stat run dir %q: %w", runDir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("artifacts: %q is not a directory", runDir)
	}
	if runID == "" {
		runID = filepath.Base(runDir)
	}

	result := &UploadResult{
		RunID:  runID,
		Prefix: path.Join("runs", runID),
	}

	err = filepath.WalkDir(runDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(runDir, p)
		if err != nil {
			return err
		}
		content, err := os.ReadFile(p)
		if err != nil {
			return fmt.Errorf("read %s: %w", rel, err)
		}

		key := path.Join(result.Prefix, filepath.ToSlash(rel))
		if err := store.PutObject(ctx, key, content, contentTypeFor(rel)); err != nil {
			return err
		}

		result.Uploaded++
		result.Bytes += int64(len(content))
		log.Debug("uploaded artifact", "key", key, "bytes", len(content))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("artifacts: upload run %q: %w", runID, err)
	}

	log.Info("run archived",
		"run_id", result.RunID,
		"files", result.Uploaded,
		"bytes", result.Bytes,
		"bucket", store.BucketName(),
		"prefix", result.Prefix)
	return result, nil
}

func contentTypeFor(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".json":
		// mime maps .json correctly but older systems may not have it registered.
		return "application/json"
	case ".md":
		return "text/markdown; charset=utf-8"
	case ".webm":
		return "video/webm"
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return defaultContentType
}
