package notary

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"custody-go/internal/custody"
	"custody-go/internal/model"
)

// webhookPayload is the JSON body posted to custom webhooks.
type webhookPayload struct {
	Title     string `json:"title"`
	Hash      string `json:"hash"`
	Timestamp string `json:"timestamp"` // RFC 3339, UTC
	Algorithm string `json:"algorithm"`
}

// publishWebhook POSTs the digest to a user-configured webhook URL.
func (c *Client) publishWebhook(req custody.ProofRequest) (*custody.Proof, error) {
	if c.webhookURL == "" {
		return nil, fmt.Errorf("no webhook URL configured: %w", custody.ErrInvalidURL)
	}
	u, err := url.Parse(c.webhookURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("webhook URL %q is not parseable: %w", c.webhookURL, custody.ErrInvalidURL)
	}

	payload := webhookPayload{
		Title:     req.Title,
		Hash:      req.Hash,
		Timestamp: req.Timestamp.UTC().Format(time.RFC3339),
		Algorithm: "SHA-256",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding webhook payload: %w", err)
	}

	resp, err := c.httpClient.Post(u.String(), "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("posting to webhook: %w: %w", custody.ErrRequestFailed, err)
	}
	defer drain(resp)

	if !is2xx(resp) {
		return nil, fmt.Errorf("webhook returned HTTP %d: %w", resp.StatusCode, custody.ErrRequestFailed)
	}

	return &custody.Proof{
		Service:   model.ServiceCustomWebhook,
		PublicURL: u.String(),
		Status:    model.PublicationConfirmed,
	}, nil
}
