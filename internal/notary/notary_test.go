package notary

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"custody-go/internal/config"
	"custody-go/internal/custody"
	"custody-go/internal/model"
)

var testRequest = custody.ProofRequest{
	Title:     "Chat about Go",
	Hash:      "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824",
	Timestamp: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
}

func TestPublishGist(t *testing.T) {
	t.Run("successful creation", func(t *testing.T) {
		var gotAuth string
		var gotBody map[string]any
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			json.NewDecoder(r.Body).Decode(&gotBody)
			w.WriteHeader(http.StatusCreated)
			io.WriteString(w, `{"html_url": "https://gist.github.com/u/abc123"}`)
		}))
		defer srv.Close()

		c := NewClient(config.NotaryConfig{GistToken: "tok-1", GistEndpoint: srv.URL})
		proof, err := c.Publish(model.ServiceGist, testRequest)
		if err != nil {
			t.Fatalf("Publish() error = %v", err)
		}

		if gotAuth != "Bearer tok-1" {
			t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer tok-1")
		}
		if proof.PublicURL != "https://gist.github.com/u/abc123" {
			t.Errorf("PublicURL = %q", proof.PublicURL)
		}
		if proof.Status != model.PublicationConfirmed {
			t.Errorf("Status = %q, want confirmed", proof.Status)
		}

		if gotBody["public"] != true {
			t.Error("payload public != true")
		}
		files, ok := gotBody["files"].(map[string]any)
		if !ok {
			t.Fatalf("payload files missing: %v", gotBody)
		}
		if _, ok := files["transcript_hash.txt"]; !ok {
			t.Error("payload missing transcript_hash.txt file")
		}
	})

	t.Run("missing token", func(t *testing.T) {
		c := NewClient(config.NotaryConfig{})
		_, err := c.Publish(model.ServiceGist, testRequest)
		if !errors.Is(err, custody.ErrUnauthorized) {
			t.Errorf("error = %v, want ErrUnauthorized", err)
		}
	})

	t.Run("rejected token", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer srv.Close()

		c := NewClient(config.NotaryConfig{GistToken: "bad", GistEndpoint: srv.URL})
		_, err := c.Publish(model.ServiceGist, testRequest)
		if !errors.Is(err, custody.ErrUnauthorized) {
			t.Errorf("error = %v, want ErrUnauthorized", err)
		}
	})

	t.Run("server error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		c := NewClient(config.NotaryConfig{GistToken: "tok", GistEndpoint: srv.URL})
		_, err := c.Publish(model.ServiceGist, testRequest)
		if !errors.Is(err, custody.ErrRequestFailed) {
			t.Errorf("error = %v, want ErrRequestFailed", err)
		}
	})
}

func TestPublishTimestamp(t *testing.T) {
	t.Run("posts raw digest bytes and stays pending", func(t *testing.T) {
		var gotBody []byte
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotBody, _ = io.ReadAll(r.Body)
			w.Write([]byte{0x01, 0x02, 0x03})
		}))
		defer srv.Close()

		c := NewClient(config.NotaryConfig{OTSEndpoint: srv.URL})
		proof, err := c.Publish(model.ServiceTimestamps, testRequest)
		if err != nil {
			t.Fatalf("Publish() error = %v", err)
		}

		// The endpoint receives the raw 32 digest bytes, not hex text.
		if len(gotBody) != 32 {
			t.Errorf("posted %d bytes, want 32", len(gotBody))
		}
		if want := base64.StdEncoding.EncodeToString([]byte{0x01, 0x02, 0x03}); proof.TransactionID != want {
			t.Errorf("TransactionID = %q, want %q", proof.TransactionID, want)
		}
		if proof.Status != model.PublicationPending {
			t.Errorf("Status = %q, want pending", proof.Status)
		}
	})

	t.Run("invalid hex hash", func(t *testing.T) {
		c := NewClient(config.NotaryConfig{OTSEndpoint: "http://unused.invalid"})
		req := testRequest
		req.Hash = "not-hex-at-all"
		_, err := c.Publish(model.ServiceTimestamps, req)
		if !errors.Is(err, custody.ErrInvalidHash) {
			t.Errorf("error = %v, want ErrInvalidHash", err)
		}
	})

	t.Run("non-2xx response", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		c := NewClient(config.NotaryConfig{OTSEndpoint: srv.URL})
		_, err := c.Publish(model.ServiceTimestamps, testRequest)
		if !errors.Is(err, custody.ErrRequestFailed) {
			t.Errorf("error = %v, want ErrRequestFailed", err)
		}
	})
}

func TestPublishWebhook(t *testing.T) {
	t.Run("posts JSON payload", func(t *testing.T) {
		var got webhookPayload
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ct := r.Header.Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q", ct)
			}
			json.NewDecoder(r.Body).Decode(&got)
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		c := NewClient(config.NotaryConfig{WebhookURL: srv.URL})
		proof, err := c.Publish(model.ServiceCustomWebhook, testRequest)
		if err != nil {
			t.Fatalf("Publish() error = %v", err)
		}

		if got.Title != testRequest.Title {
			t.Errorf("payload title = %q, want %q", got.Title, testRequest.Title)
		}
		if got.Hash != testRequest.Hash {
			t.Errorf("payload hash = %q, want %q", got.Hash, testRequest.Hash)
		}
		if got.Timestamp != "2024-01-15T10:30:00Z" {
			t.Errorf("payload timestamp = %q", got.Timestamp)
		}
		if got.Algorithm != "SHA-256" {
			t.Errorf("payload algorithm = %q, want SHA-256", got.Algorithm)
		}
		if proof.Status != model.PublicationConfirmed {
			t.Errorf("Status = %q, want confirmed", proof.Status)
		}
	})

	t.Run("unparseable URL", func(t *testing.T) {
		c := NewClient(config.NotaryConfig{WebhookURL: "::not a url::"})
		_, err := c.Publish(model.ServiceCustomWebhook, testRequest)
		if !errors.Is(err, custody.ErrInvalidURL) {
			t.Errorf("error = %v, want ErrInvalidURL", err)
		}
	})

	t.Run("unreachable endpoint", func(t *testing.T) {
		// Reserve a port, then close the listener so the POST fails.
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := srv.URL
		srv.Close()

		c := NewClient(config.NotaryConfig{WebhookURL: url})
		_, err := c.Publish(model.ServiceCustomWebhook, testRequest)
		if !errors.Is(err, custody.ErrRequestFailed) {
			t.Errorf("error = %v, want ErrRequestFailed", err)
		}
	})

	t.Run("non-2xx response", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		c := NewClient(config.NotaryConfig{WebhookURL: srv.URL})
		_, err := c.Publish(model.ServiceCustomWebhook, testRequest)
		if !errors.Is(err, custody.ErrRequestFailed) {
			t.Errorf("error = %v, want ErrRequestFailed", err)
		}
	})
}

func TestPublishUnsupportedService(t *testing.T) {
	c := NewClient(config.NotaryConfig{})

	for _, svc := range []model.NotaryService{model.ServiceEmail, model.ServiceBitcoin, "carrier-pigeon"} {
		if _, err := c.Publish(svc, testRequest); !errors.Is(err, custody.ErrUnsupportedService) {
			t.Errorf("Publish(%s) error = %v, want ErrUnsupportedService", svc, err)
		}
	}
}
