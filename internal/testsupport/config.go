package testsupport

import (
	"path/filepath"
	"testing"

	"clamsutils/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The ledger is disabled and points inside the temp tree.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.DownloadDir = ""
	cfgVal.Ledger.Path = filepath.Join(base, "state", "ledger.db")
	cfgVal.Retriever.GitHubToken = ""
	cfgVal.Retriever.StorageURL = ""

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithLedger enables the processed-file ledger.
func WithLedger() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Ledger.Enabled = true
	}
}

// WithJobs sets cleanup parallelism.
func WithJobs(jobs int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Cleanup.Jobs = jobs
	}
}

// WithRetriever points the retrievers at test servers.
func WithRetriever(rawBaseURL, storageURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Retriever.RawBaseURL = rawBaseURL
		b.cfg.Retriever.StorageURL = storageURL
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.LogDir)
}
