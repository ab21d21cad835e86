// Package sdkcore wires together one feature's full event pipeline:
// on-disk file queue, adaptive upload scheduling, device-health
// preconditions, and an HTTP uploader. A Feature is instantiated once
// per product line (logs, traces, RUM, internal telemetry); features
// never share files or a goroutine.
package sdkcore

import (
	"context"

	"github.com/segment-telemetry/sdk-core/internal/conditions"
	"github.com/segment-telemetry/sdk-core/internal/config"
	"github.com/segment-telemetry/sdk-core/internal/delay"
	"github.com/segment-telemetry/sdk-core/internal/logging"
	"github.com/segment-telemetry/sdk-core/internal/providers"
	"github.com/segment-telemetry/sdk-core/internal/stats"
	"github.com/segment-telemetry/sdk-core/internal/storage"
	"github.com/segment-telemetry/sdk-core/internal/telemetry"
	"github.com/segment-telemetry/sdk-core/internal/upload"
	"github.com/segment-telemetry/sdk-core/internal/uploader"
)

// Providers bundles the read-only device-state capabilities a Feature
// consults before every upload tick. Any field may be nil.
type Providers struct {
	Battery  providers.BatteryStatusProvider
	LowPower providers.LowPowerModeProvider
	Network  providers.NetworkInfoProvider
}

// Feature is the external surface: Write is the producer's only entry
// point; Flush and Cancel are the lifecycle hooks.
type Feature struct {
	name   string
	orch   *storage.Orchestrator
	writer *storage.Writer
	worker *upload.Worker
	stats  *stats.Sink
	tel    *telemetry.Telemetry
}

// New builds a Feature rooted at rootDir/cfg.FeatureName, wiring the
// storage, conditions, delay, and upload worker together and starting
// the upload worker's execution context.
func New(rootDir string, cfg config.Config, providers Providers, up uploader.Uploader, buildReq upload.RequestBuilderFactory) (*Feature, error) {
	resolved, err := config.New(cfg)
	if err != nil {
		return nil, err
	}

	dir, err := storage.NewDirectory(rootDir + "/" + resolved.FeatureName)
	if err != nil {
		return nil, err
	}

	tel, err := telemetry.Init(context.Background(), resolved.Telemetry, resolved.FeatureName, "")
	if err != nil {
		// Telemetry is diagnostic, not load-bearing: a failed OTLP
		// exporter setup must never prevent the feature from ingesting
		// and uploading events, so fall back to a disabled sink.
		logging.Warn("sdkcore: telemetry init failed, continuing without it", logging.F(
			"feature", resolved.FeatureName, "error", err.Error(),
		))
		tel = nil
	}
	if hook := tel.NewLogHook(); hook != nil {
		logging.SetHook(hook)
	}

	orch := storage.New(dir, resolved, nil, tel)
	writer := storage.NewWriter(orch, resolved, tel)
	reader := storage.NewReader(orch, resolved, tel)
	cond := conditions.New(providers.Battery, providers.LowPower, providers.Network)
	d := delay.New(resolved.UploadDelay)
	sink := stats.New(resolved.FeatureName)

	worker := upload.New(resolved.FeatureName, reader, cond, up, d, buildReq, sink, nil, tel)

	return &Feature{
		name:   resolved.FeatureName,
		orch:   orch,
		writer: writer,
		worker: worker,
		stats:  sink,
		tel:    tel,
	}, nil
}

// Write stages one serialized event for upload. It never blocks on
// I/O beyond the local filesystem and never returns an error to a
// producer that cannot act on it — failures are logged and reported
// through telemetry instead; see internal/storage.Writer.
func (f *Feature) Write(event []byte) {
	_ = f.writer.Write(event)
	f.reportFileCounts()
}

// Flush synchronously drains the feature's directory, bypassing
// upload conditions. Every file old enough to be read is uploaded
// (or discarded); files younger than MinFileAgeForRead stay on disk,
// so the directory is not necessarily empty when it returns.
func (f *Feature) Flush() {
	f.worker.FlushSynchronously()
	f.reportFileCounts()
}

// Cancel synchronously stops the upload worker and flushes any
// buffered telemetry. After it returns, no further ticks run.
func (f *Feature) Cancel() {
	f.worker.CancelSynchronously()
	if f.tel != nil {
		ctx, cancel := context.WithTimeout(context.Background(), f.tel.ShutdownTimeout())
		defer cancel()
		_ = f.tel.Shutdown(ctx)
	}
}

func (f *Feature) reportFileCounts() {
	files, err := f.orch.ListDirectory()
	if err != nil {
		return
	}
	f.stats.SetFilesPending(len(files))

	var total int64
	for _, file := range files {
		total += file.Size()
	}
	f.stats.SetDirectoryBytes(total)
}
