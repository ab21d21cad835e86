package upload

// CancelSynchronously stops the worker. It blocks until any in-flight
// tick completes, then prevents every future tick from running. It
// achieves this by posting the cancellation itself as a command on the
// worker's own execution context: the command sets Worker.cancelled
// and returns, and run() checks that flag immediately after running
// any command, before it can re-arm the timer for another tick. This
// is the one invariant the whole package exists to protect — see the
// package doc and spec.md §4.5's rationale: cancelling off-context
// would let an in-progress tick observe "not cancelled" and
// reschedule itself after Cancel returns.
func (w *Worker) CancelSynchronously() {
	w.submit(func() {
		w.cancelled = true
	})
}
