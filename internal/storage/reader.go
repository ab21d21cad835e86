package storage

import (
	"os"

	"github.com/segment-telemetry/sdk-core/internal/config"
	"github.com/segment-telemetry/sdk-core/internal/logging"
)

// Batch is a whole file's contents staged for upload, already framed
// with the configured prefix and suffix. The underlying file is kept
// around unread until MarkBatchAsRead is called, so a batch that
// fails to upload can simply be retried from the same File.
type Batch struct {
	File *File
	Body []byte
}

// Reader hands out whole files as upload batches. Framing (prefix and
// suffix) is applied only here, at read time — it is never present on
// disk, so on-disk size bookkeeping in the Writer and Orchestrator
// never has to account for it.
type Reader struct {
	orch *Orchestrator
	cfg  *config.Config
	errs ErrorSink
}

// NewReader builds a Reader over orch using cfg's framing. errs may
// be nil.
func NewReader(orch *Orchestrator, cfg *config.Config, errs ErrorSink) *Reader {
	return &Reader{orch: orch, cfg: cfg, errs: errs}
}

// ReadNextBatch returns the oldest readable file as a framed Batch, or
// (nil, nil) if no file currently qualifies. exclude holds file names
// already in flight from a previous call that hasn't been marked read
// or failed yet, so retries don't race with fresh reads of the same
// file.
func (r *Reader) ReadNextBatch(exclude map[string]struct{}) (*Batch, error) {
	f, err := r.orch.GetReadableFile(exclude)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, nil
	}

	raw, err := os.ReadFile(f.Path())
	if err != nil {
		// A corrupt or unreadable file must not permanently block
		// every future read of this feature's directory: delete it,
		// same as any other IOError, rather than leaving it in place
		// to be selected and fail again on the next tick.
		logging.Warn("storage: read batch failed", logging.F(
			"feature", r.cfg.FeatureName, "file", f.Name, "error", err.Error(),
		))
		emitError(r.errs, "io_error", "read batch failed", map[string]interface{}{
			"feature": r.cfg.FeatureName, "file": f.Name, "error": err.Error(),
		})
		r.orch.Delete(f)
		return nil, err
	}

	df := r.cfg.DataFormat
	body := make([]byte, 0, len(df.Prefix)+len(raw)+len(df.Suffix))
	body = append(body, df.Prefix...)
	body = append(body, raw...)
	body = append(body, df.Suffix...)

	return &Batch{File: f, Body: body}, nil
}

// MarkBatchAsRead deletes the batch's underlying file, the signal that
// its contents have been durably accepted by the upload endpoint.
func (r *Reader) MarkBatchAsRead(b *Batch) {
	r.orch.Delete(b.File)
}
