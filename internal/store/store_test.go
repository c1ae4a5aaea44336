package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestOpenSQLite_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpenSQLite_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		s, err := OpenSQLite(path)
		if err != nil {
			t.Fatalf("OpenSQLite() iteration %d failed: %v", i, err)
		}
		s.Close()
	}

	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("final OpenSQLite() failed: %v", err)
	}
	defer s.Close()

	var name string
	err = s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='kv'").Scan(&name)
	if err != nil {
		t.Errorf("table kv not found after idempotent opens: %v", err)
	}
}

func TestOpenSQLite_Pragmas(t *testing.T) {
	s := createTestStore(t)

	tests := []struct {
		name string
		want string
	}{
		{"journal_mode", "wal"},
		{"busy_timeout", "5000"},
		{"synchronous", "1"}, // NORMAL
		{"user_version", "1"},
	}
	for _, tt := range tests {
		got, err := s.pragma(tt.name)
		if err != nil {
			t.Fatalf("PRAGMA %s: %v", tt.name, err)
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestSQLite_KVContract(t *testing.T) {
	exerciseKV(t, createTestStore(t))
}

func TestSQLite_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	s1, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite() failed: %v", err)
	}
	if err := s1.Put(ctx, "garden", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("Put() failed: %v", err)
	}
	s1.Close()

	s2, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer s2.Close()

	got, err := s2.Get(ctx, "garden")
	if err != nil {
		t.Fatalf("Get() after reopen failed: %v", err)
	}
	if string(got) != `{"a":1}` {
		t.Errorf("Get() = %q", got)
	}
}

func TestMemory_KVContract(t *testing.T) {
	exerciseKV(t, NewMemory())
}

func TestMemory_CopiesValues(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	buf := []byte("abc")

	if err := m.Put(ctx, "k", buf); err != nil {
		t.Fatal(err)
	}
	buf[0] = 'X'

	got, _ := m.Get(ctx, "k")
	if string(got) != "abc" {
		t.Errorf("stored value aliased caller buffer: %q", got)
	}
	got[1] = 'Y'
	again, _ := m.Get(ctx, "k")
	if string(again) != "abc" {
		t.Errorf("returned value aliased stored bytes: %q", again)
	}
}

func TestOpen_Drivers(t *testing.T) {
	ctx := context.Background()

	kv, err := Open(ctx, Options{Driver: DriverMemory})
	if err != nil {
		t.Fatalf("Open(memory) failed: %v", err)
	}
	if _, ok := kv.(*Memory); !ok {
		t.Errorf("Open(memory) returned %T", kv)
	}

	kv, err = Open(ctx, Options{Driver: DriverSQLite, Path: filepath.Join(t.TempDir(), "g.db")})
	if err != nil {
		t.Fatalf("Open(sqlite) failed: %v", err)
	}
	defer kv.Close()
	if _, ok := kv.(*SQLite); !ok {
		t.Errorf("Open(sqlite) returned %T", kv)
	}

	if _, err := Open(ctx, Options{Driver: DriverSQLite}); err == nil {
		t.Error("Open(sqlite) without path should fail")
	}
	if _, err := Open(ctx, Options{Driver: DriverPostgres}); err == nil {
		t.Error("Open(postgres) without dsn should fail")
	}
	if _, err := Open(ctx, Options{Driver: "redis"}); err == nil {
		t.Error("Open(redis) should fail")
	}
}
