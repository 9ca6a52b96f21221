package sqlite

import (
	"path/filepath"
	"testing"

	"github.com/stashlog/stashlog/internal/store"
	"github.com/stashlog/stashlog/internal/store/storetest"
)

func makeStore(t *testing.T) store.Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "stashlog.db"))
	if err != nil {
		t.Fatalf("sqlite open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStore_Compliance(t *testing.T) {
	storetest.Run(t, makeStore)
}
