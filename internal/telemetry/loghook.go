package telemetry

import (
	"context"
	"fmt"

	"github.com/segment-telemetry/sdk-core/internal/logging"
	otellog "go.opentelemetry.io/otel/log"
)

// NewLogHook adapts every logging.Info/Warn/Error/Fatal call into an
// OTEL log record on this Telemetry's exporter, so a host app gets
// storage/upload failures in its log backend even when it never reads
// stdout. feature.New wires the result into logging.SetHook; a nil
// Telemetry (OTLP disabled or its setup failed) yields a nil hook, so
// SetHook is simply skipped rather than installing a no-op.
func (t *Telemetry) NewLogHook() logging.LogHook {
	if t == nil || t.logger == nil {
		return nil
	}

	logger := t.logger

	return func(level logging.Level, msg string, attrs map[string]interface{}) {
		var record otellog.Record

		record.SetBody(otellog.StringValue(msg))
		record.SetSeverity(toOTELSeverity(level))
		record.SetSeverityText(string(level))

		if len(attrs) > 0 {
			kvs := make([]otellog.KeyValue, 0, len(attrs))
			for k, v := range attrs {
				kvs = append(kvs, otellog.KeyValue{
					Key:   k,
					Value: toOTELValue(v),
				})
			}
			record.AddAttributes(kvs...)
		}

		logger.Emit(context.Background(), record)
	}
}

// toOTELSeverity maps this package's four log levels onto the OTEL
// severity scale; the logging package has no Debug level, so OTEL's
// Debug severity is never produced.
func toOTELSeverity(level logging.Level) otellog.Severity {
	switch level {
	case logging.LevelInfo:
		return otellog.SeverityInfo
	case logging.LevelWarn:
		return otellog.SeverityWarn
	case logging.LevelError:
		return otellog.SeverityError
	case logging.LevelFatal:
		return otellog.SeverityFatal
	default:
		return otellog.SeverityInfo
	}
}

// toOTELValue converts one logging.F attribute value into the OTEL
// log-record value type. Call sites in this tree only ever pass
// strings and ints (file names, byte counts, error text), but the
// fallback covers a future attribute type without a hook rewrite.
func toOTELValue(v interface{}) otellog.Value {
	if v == nil {
		return otellog.StringValue("<nil>")
	}
	switch val := v.(type) {
	case string:
		return otellog.StringValue(val)
	case int:
		return otellog.IntValue(val)
	case int64:
		return otellog.Int64Value(val)
	case float64:
		return otellog.Float64Value(val)
	case bool:
		return otellog.BoolValue(val)
	default:
		return otellog.StringValue(fmt.Sprint(val))
	}
}
