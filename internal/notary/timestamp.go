package notary

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"

	"custody-go/internal/custody"
	"custody-go/internal/model"
)

// publishTimestamp submits the raw digest bytes to an OpenTimestamps
// calendar server. No credentials are required. The base64-encoded
// response is kept as the transaction identifier; the publication stays
// pending because confirmation would require separate polling of the
// calendar, which is out of scope.
func (c *Client) publishTimestamp(req custody.ProofRequest) (*custody.Proof, error) {
	digest, err := hex.DecodeString(req.Hash)
	if err != nil {
		return nil, fmt.Errorf("hash %q is not valid hex: %w", req.Hash, custody.ErrInvalidHash)
	}

	resp, err := c.httpClient.Post(c.otsEndpoint, "application/octet-stream", bytes.NewReader(digest))
	if err != nil {
		return nil, fmt.Errorf("posting digest: %w: %w", custody.ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	if !is2xx(resp) {
		return nil, fmt.Errorf("timestamp endpoint returned HTTP %d: %w", resp.StatusCode, custody.ErrRequestFailed)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return nil, fmt.Errorf("reading timestamp response: %w", err)
	}

	return &custody.Proof{
		Service:       model.ServiceTimestamps,
		TransactionID: base64.StdEncoding.EncodeToString(body),
		Status:        model.PublicationPending,
	}, nil
}
