package storage

import (
	"os"
	"sort"
)

// Directory is the single feature directory. It lists and evicts
// files but never interprets their contents.
type Directory struct {
	path string
}

// NewDirectory creates the directory (if missing) and returns a handle
// on it. Directories persist across process restarts, so an existing
// directory with existing files is a normal starting state, not an
// error.
func NewDirectory(path string) (*Directory, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, err
	}
	return &Directory{path: path}, nil
}

// Path returns the directory's absolute path.
func (d *Directory) Path() string { return d.path }

// ListFiles returns every file currently in the directory, sorted
// oldest-name-first (ascending creation timestamp). Subdirectories are
// skipped; every other entry, dotfiles and symlinks included, is
// listed.
func (d *Directory) ListFiles() ([]*File, error) {
	entries, err := os.ReadDir(d.path)
	if err != nil {
		return nil, err
	}
	files := make([]*File, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		files = append(files, NewFile(d.path, e.Name()))
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].CreatedAt().Before(files[j].CreatedAt())
	})
	return files, nil
}

// Size returns the aggregate byte size of every file in the directory.
func (d *Directory) Size() (int64, error) {
	files, err := d.ListFiles()
	if err != nil {
		return 0, err
	}
	var total int64
	for _, f := range files {
		total += f.Size()
	}
	return total, nil
}
