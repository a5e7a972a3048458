package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

// sanitizeOutputDir cleans the output directory value. The directory lives on
// the cluster filesystem and is created by the external tool, so only the
// obviously broken shapes are rejected here: empty values and parent-directory
// traversal. Template placeholders like {run_id} pass through untouched.
func sanitizeOutputDir(dir string) (string, error) {
	cleaned := filepath.Clean(dir)
	if cleaned == "" || cleaned == "." || cleaned == ".." {
		return "", fmt.Errorf("run.output_dir cannot be empty or a directory reference")
	}
	for _, part := range strings.Split(cleaned, string(filepath.Separator)) {
		if part == ".." {
			return "", fmt.Errorf("run.output_dir must not traverse parent directories")
		}
	}
	return cleaned, nil
}
