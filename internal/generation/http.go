package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/snaportho/snaportho-web/internal/domain"
)

// maxResponseBytes bounds how much of an upstream reply is read.
const maxResponseBytes = 1 << 20

// HTTPGenerator POSTs {"prompt": ...} to URL and decodes the answer payload.
type HTTPGenerator struct {
	URL    string
	APIKey string // optional; sent as a bearer token
	Client *http.Client
}

// NewHTTPGenerator returns an HTTPGenerator with a traced client that gives
// up after timeout.
func NewHTTPGenerator(url, apiKey string, timeout time.Duration) *HTTPGenerator {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPGenerator{
		URL:    url,
		APIKey: apiKey,
		Client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

type generateRequest struct {
	Prompt string `json:"prompt"`
}

// Generate implements Generator.
func (g *HTTPGenerator) Generate(ctx context.Context, prompt string) (domain.AnswerPayload, error) {
	body, err := json.Marshal(generateRequest{Prompt: prompt})
	if err != nil {
		return domain.AnswerPayload{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.URL, bytes.NewReader(body))
	if err != nil {
		return domain.AnswerPayload{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if key := strings.TrimSpace(g.APIKey); key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}

	client := g.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return domain.AnswerPayload{}, fmt.Errorf("call generation api: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return domain.AnswerPayload{}, fmt.Errorf("read generation response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return domain.AnswerPayload{}, fmt.Errorf("%w: %d", ErrUpstreamStatus, resp.StatusCode)
	}

	var out domain.AnswerPayload
	if err := json.Unmarshal(raw, &out); err != nil {
		return domain.AnswerPayload{}, fmt.Errorf("decode generation response: %w", err)
	}
	return normalize(out)
}
