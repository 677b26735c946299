package notary

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"custody-go/internal/custody"
	"custody-go/internal/model"
)

// gistRequest is the gist-creation payload.
type gistRequest struct {
	Description string              `json:"description"`
	Public      bool                `json:"public"`
	Files       map[string]gistFile `json:"files"`
}

type gistFile struct {
	Content string `json:"content"`
}

// gistResponse carries the fields we read back from the created gist.
type gistResponse struct {
	HTMLURL string `json:"html_url"`
}

// publishGist creates a public gist embedding the title, hash, and
// timestamp. Requires a bearer token.
func (c *Client) publishGist(req custody.ProofRequest) (*custody.Proof, error) {
	if c.gistToken == "" {
		return nil, fmt.Errorf("gist publishing requires a token: %w", custody.ErrUnauthorized)
	}

	content := fmt.Sprintf(
		"Transcript: %s\nSHA-256: %s\nTimestamp: %s\n",
		req.Title, req.Hash, req.Timestamp.UTC().Format(time.RFC3339),
	)
	payload := gistRequest{
		Description: fmt.Sprintf("Content hash proof for %q", req.Title),
		Public:      true,
		Files: map[string]gistFile{
			"transcript_hash.txt": {Content: content},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding gist payload: %w", err)
	}

	httpReq, err := http.NewRequest(http.MethodPost, c.gistEndpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building gist request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/vnd.github+json")
	httpReq.Header.Set("Authorization", "Bearer "+c.gistToken)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("posting gist: %w: %w", custody.ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("gist endpoint rejected token (HTTP %d): %w", resp.StatusCode, custody.ErrUnauthorized)
	case !is2xx(resp):
		return nil, fmt.Errorf("gist endpoint returned HTTP %d: %w", resp.StatusCode, custody.ErrRequestFailed)
	}

	var created gistResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, fmt.Errorf("decoding gist response: %w", err)
	}

	return &custody.Proof{
		Service:   model.ServiceGist,
		PublicURL: created.HTMLURL,
		Status:    model.PublicationConfirmed,
	}, nil
}
