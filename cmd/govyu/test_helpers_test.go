package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"govyu/internal/config"
	"govyu/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	archive    string
	baseDir    string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("XDG_DATA_HOME", "")
	t.Setenv("GOVYU_LOG_LEVEL", "")
	t.Setenv("GOVYU_EXPORT_DB", "")

	cfg := testsupport.NewConfig(t)
	configPath := filepath.Join(base, "govyu.toml")
	writeTestConfig(t, configPath, cfg)

	archive := testsupport.WriteOPF(t, filepath.Join(base, "session.opf"), testsupport.SampleDB,
		testsupport.Member{Name: "project", Data: "settings"})

	return &cliTestEnv{cfg: cfg, configPath: configPath, archive: archive, baseDir: base}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(
		"[export]\ndb_path = %q\ntable = %q\n\n[logging]\nlevel = %q\n\n[archive]\nlock_timeout_seconds = %d\n\n[watch]\ndebounce_millis = %d\n",
		cfg.Export.DBPath,
		cfg.Export.Table,
		cfg.Logging.Level,
		cfg.Archive.LockTimeoutSeconds,
		cfg.Watch.DebounceMillis,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	var stdout bytes.Buffer
	stderr, err := runCLIContext(t, context.Background(), &stdout, args, configPath)
	return stdout.String(), stderr, err
}

func runCLIContext(t *testing.T, ctx context.Context, stdout io.Writer, args []string, configPath string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stderr bytes.Buffer
	cmd.SetOut(stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.ExecuteContext(ctx)
	return stderr.String(), err
}

// syncBuffer is a bytes.Buffer safe for one writer and concurrent readers.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
