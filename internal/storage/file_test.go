package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewFileAtNamesByMillisecondTimestamp(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	f := newFileAt("/tmp/feature", at)
	if f.Name != "1767323045000" {
		t.Errorf("Name = %q, want millisecond timestamp of %v", f.Name, at)
	}
}

func TestCreatedAtRoundTrips(t *testing.T) {
	at := time.Now().Round(time.Millisecond)
	f := newFileAt("/tmp/feature", at)
	if got := f.CreatedAt(); !got.Equal(at) {
		t.Errorf("CreatedAt() = %v, want %v", got, at)
	}
}

func TestCreatedAtUnparseableNameSortsOldest(t *testing.T) {
	f := NewFile("/tmp/feature", "not-a-timestamp")
	if got := f.CreatedAt(); !got.Equal(time.Unix(0, 0)) {
		t.Errorf("CreatedAt() for unparseable name = %v, want epoch zero", got)
	}
}

func TestAgeNeverNegative(t *testing.T) {
	future := newFileAt("/tmp/feature", time.Now().Add(time.Hour))
	if age := future.Age(time.Now()); age != 0 {
		t.Errorf("Age() = %v for a file created in the future, want 0", age)
	}
}

func TestSizeAndExistsReflectDisk(t *testing.T) {
	dir := t.TempDir()
	f := NewFile(dir, "123")
	if f.Exists() {
		t.Fatal("Exists() = true before file is created")
	}
	if size := f.Size(); size != 0 {
		t.Errorf("Size() = %d for missing file, want 0", size)
	}

	if err := os.WriteFile(filepath.Join(dir, "123"), []byte("hello"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if !f.Exists() {
		t.Error("Exists() = false after file is created")
	}
	if size := f.Size(); size != 5 {
		t.Errorf("Size() = %d, want 5", size)
	}
}

func TestRemoveFileTreatsMissingAsSuccess(t *testing.T) {
	dir := t.TempDir()
	if err := removeFile(filepath.Join(dir, "missing")); err != nil {
		t.Errorf("removeFile() on missing file = %v, want nil", err)
	}
}
