package db_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"langcover/pkg/db"
)

func TestDB(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "nested", "db_test.db")

	d, err := db.Init(path)
	if err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	if d == nil {
		t.Fatal("Init() returned nil DB")
	}

	for _, table := range []string{"language", "language_range", "persistent_state"} {
		var name string
		err := d.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		if err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}
	if _, err := d.Exec(`INSERT INTO language (code, name, native_name, total) VALUES ('en', 'English', 'English', 52)`); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	d.Close()

	// Reopening runs the migrations again without touching existing rows.
	d, err = db.Init(path)
	if err != nil {
		t.Fatalf("second Init() failed: %v", err)
	}
	defer d.Close()

	var n int
	if err := d.QueryRow(`SELECT COUNT(*) FROM language`).Scan(&n); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 language after reopen, got %d", n)
	}
}

func TestDB_InitFailures(t *testing.T) {
	tempDir := t.TempDir()

	// A directory cannot be opened as a database.
	if _, err := db.Init(tempDir); err == nil {
		t.Error("Init() on a directory should fail")
	}

	// A file that is not a database fails at the first pragma.
	garbage := filepath.Join(tempDir, "garbage.db")
	if err := os.WriteFile(garbage, bytes.Repeat([]byte("not a database "), 512), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Init(garbage); err == nil {
		t.Fatal("Init() on a non-database file should fail")
	}

	// The failed handle is released: the file can be replaced and opened.
	if err := os.Remove(garbage); err != nil {
		t.Fatalf("failed to remove garbage file: %v", err)
	}
	d, err := db.Init(garbage)
	if err != nil {
		t.Fatalf("Init() after replacing the file failed: %v", err)
	}
	d.Close()
}
