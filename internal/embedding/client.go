// internal/embedding/client.go
package embedding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"casematch-workers/internal/common/config"
	httpclient "casematch-workers/internal/common/http"

	"github.com/go-resty/resty/v2"
)

var (
	ErrEmbeddingTimeout = errors.New("EMBEDDING_TIMEOUT")
	ErrEmbeddingFailed  = errors.New("EMBEDDING_FAILED")
)

type embedRequest struct {
	Input string `json:"input"`
	Model string `json:"model"`
}

type embedResponse struct {
	Embedding []float32 `json:"embedding"`
	Model     string    `json:"model"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Client calls the text embedding service. It is safe for concurrent use.
type Client struct {
	http    *resty.Client
	model   string
	timeout time.Duration
}

// NewClient builds an embedding client from the embedding config section.
func NewClient(cfg config.EmbeddingConfig) *Client {
	timeout := config.GetDuration(cfg.Timeout)
	return &Client{
		http: httpclient.NewClient(httpclient.ClientConfig{
			BaseURL:     cfg.BaseURL,
			Timeout:     timeout,
			MaxRetries:  cfg.MaxRetries,
			BearerToken: cfg.APIKey,
			UserAgent:   "casematch-workers",
		}),
		model:   cfg.Model,
		timeout: timeout,
	}
}

func (c *Client) Model() string {
	return c.model
}

// Embed returns the vector for text. Timeouts wrap ErrEmbeddingTimeout; every
// other failure wraps ErrEmbeddingFailed.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	var out embedResponse
	var apiErr errorResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(embedRequest{Input: text, Model: c.model}).
		SetResult(&out).
		SetError(&apiErr).
		Post("/embed")
	if err != nil {
		if httpclient.IsTimeout(err) {
			return nil, fmt.Errorf("%w: %v", ErrEmbeddingTimeout, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}

	if resp.IsError() {
		msg := apiErr.Error
		if msg == "" {
			msg = resp.Status()
		}
		return nil, fmt.Errorf("%w: status %d: %s", ErrEmbeddingFailed, resp.StatusCode(), msg)
	}
	if len(out.Embedding) == 0 {
		return nil, fmt.Errorf("%w: empty embedding", ErrEmbeddingFailed)
	}
	if out.Model != "" && out.Model != c.model {
		return nil, fmt.Errorf("%w: model %q returned for %q", ErrEmbeddingFailed, out.Model, c.model)
	}
	return out.Embedding, nil
}
