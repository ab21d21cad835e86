// Package stats exposes Prometheus counters and gauges for the event
// pipeline: how many files are pending, how many bytes the directory
// holds, the current adaptive delay, and upload outcomes by error
// taxonomy. Every metric is labeled by feature so a process hosting
// several features (logs, traces, RUM) reports them independently.
package stats

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/segment-telemetry/sdk-core/internal/uploader"
)

var (
	filesPending = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "sdk_core_files_pending",
		Help: "Number of files currently on disk awaiting upload",
	}, []string{"feature"})

	directoryBytes = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "sdk_core_directory_bytes",
		Help: "Aggregate on-disk bytes used by a feature's directory",
	}, []string{"feature"})

	currentDelaySeconds = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "sdk_core_upload_delay_seconds",
		Help: "Current adaptive inter-upload delay",
	}, []string{"feature"})

	ticksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sdk_core_upload_ticks_total",
		Help: "Upload worker ticks, partitioned by whether the tick was blocked and whether it found a batch",
	}, []string{"feature", "blocked", "had_batch"})

	uploadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sdk_core_uploads_total",
		Help: "Upload attempts, partitioned by outcome",
	}, []string{"feature", "outcome"})
)

func init() {
	prometheus.MustRegister(filesPending, directoryBytes, currentDelaySeconds, ticksTotal, uploadsTotal)
}

// outcomeLabel classifies a Status into the taxonomy reported on the
// uploadsTotal counter.
func outcomeLabel(status uploader.Status) string {
	if status.Ok() {
		return "success"
	}
	switch status.Err.(type) {
	case uploader.Unauthorized:
		return "unauthorized"
	case uploader.HTTPError:
		return "http_error"
	case uploader.ServerError:
		return "server_error"
	case uploader.NetworkError:
		return "network_error"
	case uploader.Redirection:
		return "redirection"
	case uploader.ClientTokenError:
		return "client_token_error"
	case uploader.ResponseError:
		return "response_error"
	default:
		return "unknown"
	}
}

// Sink is the per-feature StatsSink the upload worker reports into.
// It implements upload.StatsSink without importing that package, so
// stats has no dependency on the worker's scheduling internals.
type Sink struct {
	feature string
}

// New builds a Sink for one feature's metrics.
func New(feature string) *Sink {
	// Pre-touch the gauges so they appear with a zero value before
	// the first tick, rather than only once something happens.
	filesPending.WithLabelValues(feature).Set(0)
	directoryBytes.WithLabelValues(feature).Set(0)
	currentDelaySeconds.WithLabelValues(feature).Set(0)
	return &Sink{feature: feature}
}

// ObserveTick records one upload worker tick.
func (s *Sink) ObserveTick(blocked bool, hadBatch bool) {
	ticksTotal.WithLabelValues(s.feature, boolLabel(blocked), boolLabel(hadBatch)).Inc()
}

// ObserveUpload records one upload attempt's outcome.
func (s *Sink) ObserveUpload(status uploader.Status) {
	uploadsTotal.WithLabelValues(s.feature, outcomeLabel(status)).Inc()
}

// ObserveDelay updates the current adaptive delay gauge.
func (s *Sink) ObserveDelay(current time.Duration) {
	currentDelaySeconds.WithLabelValues(s.feature).Set(current.Seconds())
}

// SetFilesPending updates the files-pending gauge. Feature calls it
// after each Write and each Flush; uploads by scheduled ticks do not
// update it.
func (s *Sink) SetFilesPending(n int) {
	filesPending.WithLabelValues(s.feature).Set(float64(n))
}

// SetDirectoryBytes updates the directory-size gauge.
func (s *Sink) SetDirectoryBytes(n int64) {
	directoryBytes.WithLabelValues(s.feature).Set(float64(n))
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
