// Package auth provides the outbound client-token authentication the
// uploader attaches to every upload request. There is no server side
// in this SDK — the remote ingestion service is always the client's
// counterpart, never something this module accepts connections from.
package auth

import (
	"encoding/base64"
	"net/http"
)

// ClientConfig holds the credentials the uploader attaches to outbound
// requests.
type ClientConfig struct {
	// BearerToken is the client token sent as "Authorization: Bearer <token>".
	BearerToken string
	// BasicAuthUsername is the username for HTTP basic auth, used instead
	// of BearerToken when both it and BasicAuthPassword are set.
	BasicAuthUsername string
	// BasicAuthPassword is the password for HTTP basic auth.
	BasicAuthPassword string
	// Headers are additional static headers attached to every request.
	Headers map[string]string
}

// HTTPTransport wraps base with an http.RoundTripper that attaches
// cfg's credentials and headers to every outbound request.
func HTTPTransport(cfg ClientConfig, base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &authTransport{base: base, cfg: cfg}
}

type authTransport struct {
	base http.RoundTripper
	cfg  ClientConfig
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	reqClone := req.Clone(req.Context())

	if t.cfg.BearerToken != "" {
		reqClone.Header.Set("Authorization", "Bearer "+t.cfg.BearerToken)
	}
	if t.cfg.BasicAuthUsername != "" && t.cfg.BasicAuthPassword != "" {
		reqClone.SetBasicAuth(t.cfg.BasicAuthUsername, t.cfg.BasicAuthPassword)
	}
	for k, v := range t.cfg.Headers {
		reqClone.Header.Set(k, v)
	}

	return t.base.RoundTrip(reqClone)
}

// basicAuthEncoded returns the base64-encoded "user:pass" string, kept
// for callers that need to compare against a pre-built header value
// rather than let the transport set it.
func basicAuthEncoded(username, password string) string {
	auth := username + ":" + password
	return base64.StdEncoding.EncodeToString([]byte(auth))
}
