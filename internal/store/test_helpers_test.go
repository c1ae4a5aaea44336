package store

import (
	"path/filepath"
	"testing"
)

// createTestStore creates a new temp-dir SQLite store for testing.
func createTestStore(t *testing.T) *SQLite {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// exerciseKV runs the shared KV contract against any backend.
func exerciseKV(t *testing.T, kv KV) {
	t.Helper()
	ctx := t.Context()

	if _, err := kv.Get(ctx, "missing"); err != ErrNotFound {
		t.Fatalf("Get(missing) = %v, want ErrNotFound", err)
	}

	if err := kv.Put(ctx, "k", []byte("v1")); err != nil {
		t.Fatalf("Put() failed: %v", err)
	}
	got, err := kv.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if string(got) != "v1" {
		t.Errorf("Get() = %q, want %q", got, "v1")
	}

	if err := kv.Put(ctx, "k", []byte("v2")); err != nil {
		t.Fatalf("second Put() failed: %v", err)
	}
	got, err = kv.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get() after overwrite failed: %v", err)
	}
	if string(got) != "v2" {
		t.Errorf("Get() after overwrite = %q, want %q", got, "v2")
	}

	if err := kv.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, err := kv.Get(ctx, "k"); err != ErrNotFound {
		t.Errorf("Get() after Delete = %v, want ErrNotFound", err)
	}
	if err := kv.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete() of missing key failed: %v", err)
	}
}
