package preflight

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"clamsutils/internal/config"
	"clamsutils/internal/services"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the checks that apply to the given config. Directories that
// are created on demand only need a writable ancestor.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	if dir := strings.TrimSpace(cfg.Paths.LogDir); dir != "" {
		results = append(results, CheckCreatableDirectory("Log directory", dir))
	}
	if dir := strings.TrimSpace(cfg.Paths.DownloadDir); dir != "" {
		results = append(results, CheckCreatableDirectory("Download directory", dir))
	}
	if cfg.Ledger.Enabled {
		results = append(results, CheckCreatableDirectory("Ledger directory", filepath.Dir(cfg.Ledger.Path)))
	}
	if cfg.Retriever.StorageURL != "" {
		results = append(results, CheckEndpoint(ctx, "Storage API", cfg.Retriever.StorageURL))
	}
	return results
}

// FirstFailure converts the first failed result into a configuration error.
func FirstFailure(results []Result) error {
	for _, result := range results {
		if !result.Passed {
			return services.Wrap(services.ErrConfiguration, "preflight", result.Name, result.Detail, errors.New("check failed"))
		}
	}
	return nil
}
