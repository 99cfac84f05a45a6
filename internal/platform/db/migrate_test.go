package db

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}

func TestParseMigrationName(t *testing.T) {
	tests := []struct {
		name    string
		version int
		ok      bool
	}{
		{"001_hospital.sql", 1, true},
		{"012_add_lab_tests.sql", 12, true},
		{"README.md", 0, false},
		{"hospital.sql", 0, false},
		{"abc_hospital.sql", 0, false},
		{"000_zero.sql", 0, false},
		{"001_hospital.sql.bak", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := parseMigrationName(tt.name)
			if v != tt.version || ok != tt.ok {
				t.Errorf("parseMigrationName(%q) = (%d, %v), want (%d, %v)", tt.name, v, ok, tt.version, tt.ok)
			}
		})
	}
}

func TestLoad_SortsAndSkips(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"003_denials.sql":  "CREATE TABLE denials (id TEXT);",
		"001_hospital.sql": "CREATE TABLE patients (id TEXT);",
		"002_claims.sql":   "CREATE TABLE claims (id TEXT);",
		"notes.txt":        "ignored",
	})
	if err := os.Mkdir(filepath.Join(dir, "004_dir.sql"), 0755); err != nil {
		t.Fatal(err)
	}

	migrations, err := NewMigrator(nil, dir).Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(migrations) != 3 {
		t.Fatalf("expected 3 migrations, got %d", len(migrations))
	}
	for i, want := range []int{1, 2, 3} {
		if migrations[i].Version != want {
			t.Errorf("migrations[%d].Version = %d, want %d", i, migrations[i].Version, want)
		}
	}
	if migrations[0].SQL != "CREATE TABLE patients (id TEXT);" {
		t.Errorf("unexpected SQL: %s", migrations[0].SQL)
	}
}

func TestLoad_DuplicateVersion(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"001_a.sql":  "SELECT 1;",
		"0001_b.sql": "SELECT 2;",
	})
	if _, err := NewMigrator(nil, dir).Load(); err == nil {
		t.Fatal("expected duplicate version error")
	}
}

func TestLoad_MissingDir(t *testing.T) {
	if _, err := NewMigrator(nil, filepath.Join(t.TempDir(), "nope")).Load(); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestPending(t *testing.T) {
	all := []Migration{{Version: 1}, {Version: 2}, {Version: 3}}
	done := map[int]time.Time{1: time.Now(), 3: time.Now()}
	got := pending(all, done)
	if len(got) != 1 || got[0].Version != 2 {
		t.Fatalf("expected only version 2 pending, got %+v", got)
	}
}
