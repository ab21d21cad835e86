package storage

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/segment-telemetry/sdk-core/internal/config"
	"github.com/segment-telemetry/sdk-core/internal/logging"
)

// ErrTooLarge is returned by GetWritableFile when the requested write
// exceeds the per-event size cap.
var ErrTooLarge = errors.New("storage: write exceeds max object size")

// Orchestrator is the single source of truth for file selection and
// directory hygiene within one feature's directory. It is the only
// component that decides which file is writable and which is
// readable; neither the Writer nor the Reader ever lists the
// directory themselves.
//
// lastWritableFile and usesCount live exclusively on the ingest
// context — the Reader never touches them. Callers are expected to
// serialize their own access the way the rest of the pipeline
// serializes the ingest and upload execution contexts (see Writer and
// the upload package); Orchestrator itself only guards its own
// bookkeeping with a mutex so a misuse from two goroutines fails safe
// rather than corrupting state.
type Orchestrator struct {
	dir  *Directory
	cfg  *config.Config
	date DateProvider
	errs ErrorSink

	mu               sync.Mutex
	lastWritableFile *File
	usesCount        int
}

// New creates an Orchestrator over dir using cfg's limits. date
// defaults to the system clock when nil. errs may be nil.
func New(dir *Directory, cfg *config.Config, date DateProvider, errs ErrorSink) *Orchestrator {
	if date == nil {
		date = SystemDateProvider{}
	}
	return &Orchestrator{dir: dir, cfg: cfg, date: date, errs: errs}
}

// GetWritableFile returns a file the caller may append writeSize
// bytes to, reusing the last-handed-out file when all of its reuse
// conditions still hold, or creating a new one otherwise.
func (o *Orchestrator) GetWritableFile(writeSize int) (*File, error) {
	if writeSize > o.cfg.MaxObjectSize {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooLarge, writeSize, o.cfg.MaxObjectSize)
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	now := o.date.Now()

	if o.canReuse(now, writeSize) {
		o.usesCount++
		return o.lastWritableFile, nil
	}

	if err := o.purgeLocked(); err != nil {
		logging.Warn("storage: directory purge failed", logging.F(
			"feature", o.cfg.FeatureName, "error", err.Error(),
		))
		emitError(o.errs, "io_error", "directory purge failed", map[string]interface{}{
			"feature": o.cfg.FeatureName, "error": err.Error(),
		})
	}

	f := newFileAt(o.dir.Path(), now)
	fh, err := os.OpenFile(f.Path(), os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	fh.Close()
	o.lastWritableFile = f
	o.usesCount = 1
	return f, nil
}

// canReuse reports whether the last writable file still satisfies all
// four reuse conditions from the specification: existence, write-age,
// projected size, and uses count.
func (o *Orchestrator) canReuse(now time.Time, writeSize int) bool {
	f := o.lastWritableFile
	if f == nil {
		return false
	}
	if !f.Exists() {
		return false
	}
	if f.Age(now) > o.cfg.MaxFileAgeForWrite {
		return false
	}
	if f.Size()+int64(writeSize) > o.cfg.MaxFileSize {
		return false
	}
	if o.usesCount >= o.cfg.MaxObjectsInFile {
		return false
	}
	return true
}

// GetReadableFile returns the oldest file eligible for reading: age in
// [minFileAgeForRead, maxFileAgeForRead], name not in exclude. Files
// older than maxFileAgeForRead are deleted, unread, before selection.
func (o *Orchestrator) GetReadableFile(exclude map[string]struct{}) (*File, error) {
	files, err := o.dir.ListFiles()
	if err != nil {
		return nil, err
	}

	now := o.date.Now()
	for _, f := range files {
		if f.Age(now) > o.cfg.MaxFileAgeForRead {
			o.Delete(f)
		}
	}

	for _, f := range files {
		age := f.Age(now)
		if age > o.cfg.MaxFileAgeForRead {
			continue // already deleted above
		}
		if age < o.cfg.MinFileAgeForRead {
			continue
		}
		if _, excluded := exclude[f.Name]; excluded {
			continue
		}
		return f, nil
	}
	return nil, nil
}

// Delete best-effort removes a file. Races with another actor that
// already removed it are swallowed, matching the teacher's queue
// eviction: a missing file is not an error at delete time.
func (o *Orchestrator) Delete(f *File) {
	if f == nil {
		return
	}
	if err := removeFile(f.Path()); err != nil {
		logging.Warn("storage: delete failed", logging.F(
			"feature", o.cfg.FeatureName, "file", f.Name, "error", err.Error(),
		))
		emitError(o.errs, "io_error", "file delete failed", map[string]interface{}{
			"feature": o.cfg.FeatureName, "file": f.Name, "error": err.Error(),
		})
	}
}

// ListDirectory returns every file currently on disk, for callers that
// only need to observe the directory (e.g. stats reporting) rather
// than select a writable or readable file.
func (o *Orchestrator) ListDirectory() ([]*File, error) {
	return o.dir.ListFiles()
}

// DeleteAllReadable removes every file currently in the directory.
func (o *Orchestrator) DeleteAllReadable() error {
	files, err := o.dir.ListFiles()
	if err != nil {
		return err
	}
	for _, f := range files {
		o.Delete(f)
	}
	return nil
}

// purgeLocked evicts the oldest files FIFO until the directory is
// strictly under maxDirectorySize. Only invoked when a new writable
// file is about to be created — the hot ingest path never lists the
// directory.
func (o *Orchestrator) purgeLocked() error {
	files, err := o.dir.ListFiles()
	if err != nil {
		return err
	}
	var total int64
	for _, f := range files {
		total += f.Size()
	}
	if total <= o.cfg.MaxDirectorySize {
		return nil
	}
	i := 0
	for total >= o.cfg.MaxDirectorySize && i < len(files) {
		evicted := files[i]
		size := evicted.Size()
		o.Delete(evicted)
		total -= size
		i++
	}
	return nil
}
