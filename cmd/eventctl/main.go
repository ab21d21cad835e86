// Command eventctl is a small CLI for exercising the event pipeline
// manually: it feeds lines from stdin into a
// Feature, runs its upload worker against a configured endpoint, and
// serves Prometheus metrics until interrupted.
package main

import (
	"bufio"
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	sdkcore "github.com/segment-telemetry/sdk-core"
	"github.com/segment-telemetry/sdk-core/internal/auth"
	"github.com/segment-telemetry/sdk-core/internal/compression"
	"github.com/segment-telemetry/sdk-core/internal/config"
	"github.com/segment-telemetry/sdk-core/internal/logging"
	sdktls "github.com/segment-telemetry/sdk-core/internal/tls"
	"github.com/segment-telemetry/sdk-core/internal/uploader"
)

func main() {
	var (
		rootDir     = flag.String("root", "./eventctl-data", "root directory for per-feature file queues")
		feature     = flag.String("feature", "logs", "feature name")
		endpoint    = flag.String("endpoint", "http://localhost:8080/ingest", "ingestion endpoint")
		clientToken = flag.String("client-token", "", "client token attached to every upload")
		metricsAddr = flag.String("metrics-addr", ":9464", "address to serve Prometheus /metrics on")
		compressGz  = flag.Bool("gzip", false, "gzip-compress batch payloads before upload")
	)
	flag.Parse()

	up, err := uploader.NewHTTPUploader(uploader.HTTPConfig{
		Auth:    auth.ClientConfig{BearerToken: *clientToken},
		TLS:     sdktls.ClientConfig{},
		Timeout: 30 * time.Second,
	})
	if err != nil {
		logging.Fatal("failed to create uploader", logging.F("error", err.Error()))
	}

	compressionType := compression.TypeNone
	if *compressGz {
		compressionType = compression.TypeGzip
	}

	buildReq := func() uploader.RequestBuilder {
		return uploader.RequestBuilder{
			Endpoint:    *endpoint,
			ClientToken: *clientToken,
			ContentType: "application/json",
			Compression: compression.Config{Type: compressionType},
		}
	}

	f, err := sdkcore.New(*rootDir, config.Config{FeatureName: *feature}, sdkcore.Providers{}, up, buildReq)
	if err != nil {
		logging.Fatal("failed to create feature", logging.F("error", err.Error()))
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsServer := &http.Server{Addr: *metricsAddr, Handler: metricsMux}
	go func() {
		logging.Info("metrics endpoint started", logging.F("addr", *metricsAddr))
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Error("metrics server error", logging.F("error", err.Error()))
		}
	}()

	scanner := bufio.NewScanner(os.Stdin)
	go func() {
		for scanner.Scan() {
			f.Write(scanner.Bytes())
		}
	}()

	logging.Info("eventctl started", logging.F(
		"feature", *feature, "endpoint", *endpoint, "root", *rootDir,
	))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logging.Info("shutting down")

	f.Flush()
	f.Cancel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = metricsServer.Shutdown(ctx)

	logging.Info("shutdown complete")
}
