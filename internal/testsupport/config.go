package testsupport

import (
	"path/filepath"
	"testing"

	"govyu/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp paths per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Export.DBPath = filepath.Join(base, "export.db")
	cfgVal.Logging.Dir = ""
	cfgVal.Logging.Level = "error"
	cfgVal.Archive.LockTimeoutSeconds = 0
	cfgVal.Watch.DebounceMillis = 10

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

// WithPrune sets the merge pruning default.
func WithPrune(prune bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Merge.Prune = prune
	}
}

// WithBackup enables verified backups before archive rewrites.
func WithBackup() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Archive.Backup = true
	}
}

// WithOutputFormat sets the output format.
func WithOutputFormat(format string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Output.Format = format
	}
}

// WithLogDir enables file logging inside the test's temp directory.
func WithLogDir() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Logging.Dir = filepath.Join(b.baseDir, "logs")
	}
}
