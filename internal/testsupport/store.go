package testsupport

import (
	"testing"

	"govyu/internal/config"
	"govyu/internal/export"
)

// MustOpenStore opens the export database configured in cfg and closes it
// when the test ends.
func MustOpenStore(t testing.TB, cfg *config.Config) *export.Store {
	t.Helper()

	store, err := export.Open(cfg.Export.DBPath)
	if err != nil {
		t.Fatalf("open export store: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}
