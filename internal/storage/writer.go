package storage

import (
	"fmt"
	"os"

	"github.com/segment-telemetry/sdk-core/internal/config"
	"github.com/segment-telemetry/sdk-core/internal/logging"
)

// Writer appends framed events to whatever file the Orchestrator hands
// it. It never lists the directory and never decides which file to
// use; it only opens, appends, and closes.
type Writer struct {
	orch *Orchestrator
	cfg  *config.Config
	errs ErrorSink
}

// NewWriter builds a Writer over orch using cfg's separator and
// per-object size cap. errs may be nil.
func NewWriter(orch *Orchestrator, cfg *config.Config, errs ErrorSink) *Writer {
	return &Writer{orch: orch, cfg: cfg, errs: errs}
}

// Write appends a single event's raw bytes to the current writable
// file, preceded by the configured separator unless the event is the
// file's first. An event larger than MaxObjectSize is rejected without
// touching disk (InternalError). All other failures — open, write,
// orchestrator errors — are IOErrors: reported through telemetry and
// swallowed, so a dropped event never propagates as a crash or blocks
// the caller that produced it. The separator and event are written in
// a single call so a write failure never leaves a dangling separator
// behind: the append is atomic with respect to partial failure.
func (w *Writer) Write(event []byte) error {
	if len(event) > w.cfg.MaxObjectSize {
		err := fmt.Errorf("storage: event of %d bytes exceeds max object size %d", len(event), w.cfg.MaxObjectSize)
		emitError(w.errs, "internal_error", "event exceeds max object size", map[string]interface{}{
			"feature": w.cfg.FeatureName, "error": err.Error(),
		})
		return err
	}

	sep := w.cfg.DataFormat.Separator

	// Size pessimistically against the separator: we don't yet know
	// whether the file the orchestrator will hand back already has
	// content, so we ask for room for both. A brand-new file will
	// simply have len(sep) bytes of slack it never uses.
	f, err := w.orch.GetWritableFile(len(event) + len(sep))
	if err != nil {
		logging.Warn("storage: no writable file", logging.F(
			"feature", w.cfg.FeatureName, "error", err.Error(),
		))
		emitError(w.errs, "io_error", "no writable file", map[string]interface{}{
			"feature": w.cfg.FeatureName, "error": err.Error(),
		})
		return err
	}

	fh, err := os.OpenFile(f.Path(), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		logging.Warn("storage: open for append failed", logging.F(
			"feature", w.cfg.FeatureName, "file", f.Name, "error", err.Error(),
		))
		emitError(w.errs, "io_error", "open for append failed", map[string]interface{}{
			"feature": w.cfg.FeatureName, "file": f.Name, "error": err.Error(),
		})
		return err
	}
	defer fh.Close()

	buf := make([]byte, 0, len(sep)+len(event))
	if f.Size() > 0 {
		buf = append(buf, sep...)
	}
	buf = append(buf, event...)

	if _, err := fh.Write(buf); err != nil {
		logging.Warn("storage: event write failed", logging.F(
			"feature", w.cfg.FeatureName, "file", f.Name, "error", err.Error(),
		))
		emitError(w.errs, "io_error", "event write failed", map[string]interface{}{
			"feature": w.cfg.FeatureName, "file": f.Name, "error": err.Error(),
		})
		return err
	}
	return nil
}
