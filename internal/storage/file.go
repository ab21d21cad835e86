// Package storage implements the on-disk, append-only file queue that
// backs a single feature pipeline: a directory of files named by
// creation timestamp, a writer that appends framed events, and a
// reader that hands whole files off as batches for upload.
//
// There is no sidecar index or manifest. A file's name — milliseconds
// since the Unix epoch — totally orders it against its siblings and is
// the only piece of metadata the orchestrator needs.
package storage

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// DateProvider supplies the current time. Abstracted so tests can
// control file-name generation and age computation deterministically.
type DateProvider interface {
	Now() time.Time
}

// SystemDateProvider uses the wall clock.
type SystemDateProvider struct{}

// Now returns time.Now().
func (SystemDateProvider) Now() time.Time { return time.Now() }

// File is a handle on a single on-disk event file. Its Name is always
// the creation-time timestamp in milliseconds, serialized as a decimal
// integer, so age is derived from the name rather than filesystem
// mtime — this keeps age computation robust against clock changes
// across app launches.
type File struct {
	dir  string
	Name string
}

// NewFile constructs a File handle without touching disk.
func NewFile(dir string, name string) *File {
	return &File{dir: dir, Name: name}
}

// newFileAt names a file from a point in time.
func newFileAt(dir string, t time.Time) *File {
	return &File{dir: dir, Name: strconv.FormatInt(t.UnixMilli(), 10)}
}

// Path returns the absolute path of the file.
func (f *File) Path() string {
	return filepath.Join(f.dir, f.Name)
}

// CreatedAt parses the file's name as a millisecond timestamp. A name
// that fails to parse is treated as the oldest possible file (epoch
// zero) so that it sorts first and is deleted as obsolete on the next
// orchestration pass, rather than blocking the directory forever.
func (f *File) CreatedAt() time.Time {
	ms, err := strconv.ParseInt(f.Name, 10, 64)
	if err != nil {
		return time.Unix(0, 0)
	}
	return time.UnixMilli(ms)
}

// Age returns how long ago the file was created, relative to now.
func (f *File) Age(now time.Time) time.Duration {
	age := now.Sub(f.CreatedAt())
	if age < 0 {
		return 0
	}
	return age
}

// Size returns the current on-disk size of the file. Missing files
// report size 0 rather than an error — a file that disappeared
// between listing and stat is simply not there to be written to.
func (f *File) Size() int64 {
	info, err := os.Stat(f.Path())
	if err != nil {
		return 0
	}
	return info.Size()
}

// Exists reports whether the file is still present on disk.
func (f *File) Exists() bool {
	_, err := os.Stat(f.Path())
	return err == nil
}

// removeFile deletes a file by path, treating an already-missing file
// as success rather than an error.
func removeFile(path string) error {
	err := os.Remove(path)
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}
