package storage

// ErrorSink receives machine-collected error events — InternalError
// and IOError per the pipeline's error taxonomy — alongside the
// human-readable logging.Warn call at the same site. A nil ErrorSink
// is valid and silently drops every event; storage itself never
// imports the telemetry package, the same way it never imports stats
// — the concrete sink is wired in by the caller that constructs both.
type ErrorSink interface {
	EmitError(kind, msg string, attrs map[string]interface{})
}

func emitError(sink ErrorSink, kind, msg string, attrs map[string]interface{}) {
	if sink != nil {
		sink.EmitError(kind, msg, attrs)
	}
}
