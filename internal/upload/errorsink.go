package upload

// ErrorSink receives machine-collected error events from the tick
// loop — a failed batch read or an upload-taxonomy error — alongside
// the human-readable logging.Warn/Error call at the same site. A nil
// ErrorSink is valid and silently drops every event; upload itself
// never imports the telemetry package, the same way internal/storage
// doesn't — the concrete sink is wired in by the caller that builds
// both, feature.go.
type ErrorSink interface {
	EmitError(kind, msg string, attrs map[string]interface{})
}

func emitError(sink ErrorSink, kind, msg string, attrs map[string]interface{}) {
	if sink != nil {
		sink.EmitError(kind, msg, attrs)
	}
}
