// Package notary publishes content digests to external proof-of-existence
// services. Every client makes exactly one outbound call per invocation:
// no retries, no backoff, no timeout configuration beyond the shared
// client default.
package notary

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"custody-go/internal/config"
	"custody-go/internal/custody"
	"custody-go/internal/model"
)

// Public endpoints used when the config leaves them empty.
const (
	defaultGistEndpoint = "https://api.github.com/gists"
	defaultOTSEndpoint  = "https://a.pool.opentimestamps.org/digest"
)

// Client dispatches publish requests to per-service code paths.
type Client struct {
	httpClient   *http.Client
	gistToken    string
	gistEndpoint string
	otsEndpoint  string
	webhookURL   string
}

// NewClient creates a notary Client from configuration.
func NewClient(cfg config.NotaryConfig) *Client {
	gistEndpoint := cfg.GistEndpoint
	if gistEndpoint == "" {
		gistEndpoint = defaultGistEndpoint
	}
	otsEndpoint := cfg.OTSEndpoint
	if otsEndpoint == "" {
		otsEndpoint = defaultOTSEndpoint
	}

	return &Client{
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		gistToken:    cfg.GistToken,
		gistEndpoint: gistEndpoint,
		otsEndpoint:  otsEndpoint,
		webhookURL:   cfg.WebhookURL,
	}
}

// Publish submits the digest to the given service.
func (c *Client) Publish(service model.NotaryService, req custody.ProofRequest) (*custody.Proof, error) {
	switch service {
	case model.ServiceGist:
		return c.publishGist(req)
	case model.ServiceTimestamps:
		return c.publishTimestamp(req)
	case model.ServiceCustomWebhook:
		return c.publishWebhook(req)
	case model.ServiceEmail, model.ServiceBitcoin:
		return nil, fmt.Errorf("%s: %w", service, custody.ErrUnsupportedService)
	default:
		return nil, fmt.Errorf("%s: %w", service, custody.ErrUnsupportedService)
	}
}

// drain consumes and closes a response body so the connection can be reused.
func drain(resp *http.Response) {
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096)) //nolint:errcheck
	resp.Body.Close()
}

// is2xx reports whether the response status is in the success window.
func is2xx(resp *http.Response) bool {
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// Compile-time check that Client implements custody.Notary
var _ custody.Notary = (*Client)(nil)
