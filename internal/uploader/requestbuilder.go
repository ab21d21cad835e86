package uploader

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/segment-telemetry/sdk-core/internal/compression"
)

// RequestBuilder assembles the outbound HTTP request for a batch
// upload. It is opaque to the upload worker: the worker only ever
// calls Uploader.Upload with a batch's framed bytes.
type RequestBuilder struct {
	// Endpoint is the full ingestion URL for this feature.
	Endpoint string
	// ClientToken is sent verbatim as the value of the header named by
	// ClientTokenHeader; it is omitted when empty.
	ClientToken string
	// ClientTokenHeader names the header ClientToken is sent under,
	// defaulting to "DD-API-KEY"-style conventions of this SDK family.
	ClientTokenHeader string
	// ContentType is the Content-Type header for the batch body.
	ContentType string
	// Compression optionally compresses the body before it is sent.
	Compression compression.Config
	// Headers are additional static headers merged into every request.
	Headers map[string]string
}

// DefaultClientTokenHeader is used when RequestBuilder.ClientTokenHeader
// is unset.
const DefaultClientTokenHeader = "DD-API-KEY"

// RequestIDHeader carries a fresh identifier on every upload attempt,
// so each attempt can be told apart in request logs. A batch file
// resent after a retryable failure gets a new identifier, so the
// header does not link the attempts of one batch.
const RequestIDHeader = "DD-REQUEST-ID"

// Build constructs the *http.Request for uploading body.
func (b RequestBuilder) Build(body []byte) (*http.Request, error) {
	headerName := b.ClientTokenHeader
	if headerName == "" {
		headerName = DefaultClientTokenHeader
	}

	if strings.ContainsAny(b.ClientToken, "\r\n") {
		return nil, ClientTokenError{Reason: "client token contains a CR or LF character"}
	}

	encoded, err := compression.Compress(body, b.Compression)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, b.Endpoint, bytes.NewReader(encoded))
	if err != nil {
		return nil, err
	}

	req.Header.Set(RequestIDHeader, uuid.New().String())

	if b.ContentType != "" {
		req.Header.Set("Content-Type", b.ContentType)
	}
	if b.ClientToken != "" {
		req.Header.Set(headerName, b.ClientToken)
	}
	if enc := b.Compression.Type.ContentEncoding(); enc != "" {
		req.Header.Set("Content-Encoding", enc)
	}
	for k, v := range b.Headers {
		req.Header.Set(k, v)
	}

	req.ContentLength = int64(len(encoded))
	return req, nil
}
