package uploader

import (
	"context"
	"io"
	"net/http"
	"time"

	"golang.org/x/net/http2"

	"github.com/segment-telemetry/sdk-core/internal/auth"
	sdktls "github.com/segment-telemetry/sdk-core/internal/tls"
)

// Uploader delivers one framed batch and classifies the result.
// Implementations must not retry internally — retry is the upload
// worker's responsibility, driven by Status.NeedsRetry.
type Uploader interface {
	Upload(ctx context.Context, builder RequestBuilder, body []byte) Status
}

// HTTPConfig configures the concrete HTTP Uploader's transport.
type HTTPConfig struct {
	Auth    auth.ClientConfig
	TLS     sdktls.ClientConfig
	Timeout time.Duration
}

// DefaultTimeout bounds a single upload attempt when HTTPConfig.Timeout
// is unset.
const DefaultTimeout = 30 * time.Second

// HTTPUploader is the production Uploader: it builds one *http.Client
// per feature, with HTTP/2 enabled and client-token auth applied by a
// RoundTripper, and classifies the response per the error taxonomy.
type HTTPUploader struct {
	client *http.Client
}

// NewHTTPUploader builds an HTTPUploader from cfg. A TLS config error
// is returned immediately; a misconfigured client should never be
// constructed silently.
func NewHTTPUploader(cfg HTTPConfig) (*HTTPUploader, error) {
	tlsConfig, err := sdktls.NewClientTLSConfig(cfg.TLS)
	if err != nil {
		return nil, err
	}

	base := &http.Transport{TLSClientConfig: tlsConfig}
	if err := http2.ConfigureTransport(base); err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &HTTPUploader{
		client: &http.Client{
			Transport: auth.HTTPTransport(cfg.Auth, base),
			Timeout:   timeout,
		},
	}, nil
}

// Upload builds and sends one request, classifying the result.
// Network-level failures (dial, TLS, timeout, context cancellation)
// become NetworkError; everything past that classifies on status code.
func (u *HTTPUploader) Upload(ctx context.Context, builder RequestBuilder, body []byte) Status {
	req, err := builder.Build(body)
	if err != nil {
		if tokenErr, ok := err.(ClientTokenError); ok {
			return Status{NeedsRetry: false, Err: tokenErr}
		}
		return Status{NeedsRetry: false, Err: ResponseError{Cause: err}}
	}
	req = req.WithContext(ctx)

	resp, err := u.client.Do(req)
	if err != nil {
		return Status{NeedsRetry: true, Err: NetworkError{Cause: err}}
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	return classifyStatusCode(resp.StatusCode)
}
