package testsupport

import (
	"path/filepath"
	"testing"

	"collectabase/internal/catalog"
)

// NewStore opens a catalog store in a fresh temp directory and closes it when
// the test finishes.
func NewStore(t testing.TB) *catalog.Store {
	t.Helper()

	store, err := catalog.Open(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("open catalog store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close catalog store: %v", err)
		}
	})
	return store
}
