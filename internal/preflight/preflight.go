package preflight

import (
	"path/filepath"
	"strings"

	"govyu/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// RunAll executes the checks that apply to the given config. Archive paths
// are checked for rewrite access in addition to the configured directories.
func RunAll(cfg *config.Config, archives ...string) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Export directory", filepath.Dir(cfg.Export.DBPath)),
	}
	if dir := strings.TrimSpace(cfg.Logging.Dir); dir != "" {
		results = append(results, CheckDirectoryAccess("Log directory", dir))
	}
	for _, path := range archives {
		results = append(results, CheckArchive("Archive", path))
	}
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
