// Package upload implements the single-threaded cooperative tick loop
// that turns readable files into uploads: UploadWorker (C6). A Worker
// is bound to exactly one feature and runs every tick, flush, and
// cancellation on a single goroutine — its execution context. Nothing
// about a Worker's state (the cancelled flag, the reschedule decision)
// is ever touched from outside that goroutine; callers only ever post
// commands to it and wait for them to finish.
package upload

import (
	"context"
	"time"

	"github.com/segment-telemetry/sdk-core/internal/conditions"
	"github.com/segment-telemetry/sdk-core/internal/delay"
	"github.com/segment-telemetry/sdk-core/internal/logging"
	"github.com/segment-telemetry/sdk-core/internal/storage"
	"github.com/segment-telemetry/sdk-core/internal/uploader"
)

// RequestBuilderFactory builds the request parameters for one batch
// upload. It is a function rather than a fixed value because the
// client token or endpoint may rotate across the worker's lifetime.
type RequestBuilderFactory func() uploader.RequestBuilder

// StatsSink receives counters the worker produces as it runs. A nil
// StatsSink drops every observation.
type StatsSink interface {
	ObserveTick(blocked bool, hadBatch bool)
	ObserveUpload(status uploader.Status)
	ObserveDelay(current time.Duration)
}

// Timer abstracts the scheduling primitive so tests can drive ticks
// deterministically instead of waiting on a real clock.
type Timer interface {
	After(d time.Duration) <-chan time.Time
}

type realTimer struct{}

func (realTimer) After(d time.Duration) <-chan time.Time { return time.After(d) }

// Worker is the cooperative, single-threaded upload tick loop for one
// feature.
type Worker struct {
	feature string

	reader   *storage.Reader
	cond     *conditions.Conditions
	up       uploader.Uploader
	delay    *delay.Delay
	buildReq RequestBuilderFactory
	stats    StatsSink
	timer    Timer
	errs     ErrorSink

	cmds   chan func()
	exited chan struct{}

	// cancelled is mutated only inside run(), the worker's single
	// execution context, so it needs no synchronization of its own.
	cancelled bool
}

// New builds a Worker and starts its execution context. The first
// tick is scheduled at delay.Current(). timer may be nil to use the
// real wall clock. errs may be nil.
func New(
	feature string,
	reader *storage.Reader,
	cond *conditions.Conditions,
	up uploader.Uploader,
	d *delay.Delay,
	buildReq RequestBuilderFactory,
	stats StatsSink,
	timer Timer,
	errs ErrorSink,
) *Worker {
	if timer == nil {
		timer = realTimer{}
	}
	w := &Worker{
		feature:  feature,
		reader:   reader,
		cond:     cond,
		up:       up,
		delay:    d,
		buildReq: buildReq,
		stats:    stats,
		timer:    timer,
		errs:     errs,
		cmds:     make(chan func()),
		exited:   make(chan struct{}),
	}
	go w.run()
	return w
}

// run is the worker's sole execution context: every tick, every
// posted command, and the cancellation check all happen here, one at
// a time, in the order the select statement admits them.
func (w *Worker) run() {
	defer close(w.exited)

	timerC := w.timer.After(w.delay.Current())

	for {
		select {
		case <-timerC:
			w.tick()
			timerC = w.timer.After(w.delay.Current())

		case fn := <-w.cmds:
			fn()
			if w.cancelled {
				return
			}
		}
	}
}

// submit posts fn to the worker's execution context and blocks until
// it has run.
func (w *Worker) submit(fn func()) {
	done := make(chan struct{})
	wrapped := func() {
		defer close(done)
		fn()
	}
	select {
	case w.cmds <- wrapped:
		<-done
	case <-w.exited:
	}
}

// tick runs one upload decision, per spec.md §4.5: evaluate blockers,
// read a batch if unblocked, upload, update delay.
func (w *Worker) tick() {
	ctx := context.Background()

	blockers := w.cond.Blockers()
	if len(blockers) > 0 {
		w.logBlocked(blockers)
		w.delay.Increase()
		w.reportStats(true, false)
		return
	}

	batch, err := w.reader.ReadNextBatch(nil)
	if err != nil {
		logging.Warn("upload: read batch failed", logging.F(
			"feature", w.feature, "error", err.Error(),
		))
		emitError(w.errs, "io_error", "read batch failed", map[string]interface{}{
			"feature": w.feature, "error": err.Error(),
		})
		w.delay.Increase()
		w.reportStats(false, false)
		return
	}
	if batch == nil {
		w.delay.Increase()
		w.reportStats(false, false)
		return
	}

	status := w.up.Upload(ctx, w.buildReq(), batch.Body)
	w.reportStats(false, true)
	if w.stats != nil {
		w.stats.ObserveUpload(status)
	}

	if status.NeedsRetry {
		logging.Warn("upload: batch retained for retry", logging.F(
			"feature", w.feature, "file", batch.File.Name, "error", errString(status.Err),
		))
		emitError(w.errs, "upload_error", "batch retained for retry", map[string]interface{}{
			"feature": w.feature, "file": batch.File.Name, "error": errString(status.Err),
		})
		w.delay.Increase()
		return
	}

	if _, unauthorized := status.Err.(uploader.Unauthorized); unauthorized {
		logging.Error("upload: client token rejected", logging.F("feature", w.feature))
		emitError(w.errs, "client_token_rejected", "client token rejected", map[string]interface{}{
			"feature": w.feature, "file": batch.File.Name,
		})
	}

	w.reader.MarkBatchAsRead(batch)
	w.delay.Decrease()
}

func (w *Worker) logBlocked(blockers []conditions.Blocker) {
	for _, b := range blockers {
		logging.Info("upload: tick blocked", logging.F(
			"feature", w.feature, "blocker", string(b.Kind), "description", b.Description,
		))
	}
}

func (w *Worker) reportStats(blocked, hadBatch bool) {
	if w.stats != nil {
		w.stats.ObserveTick(blocked, hadBatch)
		w.stats.ObserveDelay(w.delay.Current())
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
