// Package llm provides the Gemini content-generation client.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spherical/text-extractor/internal/domain"
	"github.com/spherical/text-extractor/internal/observability"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel   = "gemini-2.5-flash"
	defaultTimeout = 3 * time.Minute
)

// Config holds generation client configuration.
type Config struct {
	APIKey  string
	Model   string // e.g., "gemini-2.5-flash"
	BaseURL string // Default: https://generativelanguage.googleapis.com/v1beta
	Timeout time.Duration
}

// Client calls the Gemini generateContent endpoint. Every call is a single
// attempt; failures are returned to the caller, never retried.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	logger     *observability.Logger
}

// NewClient creates a new generation client.
func NewClient(cfg Config, logger *observability.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, domain.ConfigError("API key is required", nil)
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}

	if cfg.Model == "" {
		cfg.Model = defaultModel
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		logger:     logger.WithComponent("llm"),
	}, nil
}

// Model returns the model name requests are sent to.
func (c *Client) Model() string {
	return c.model
}

// Generate answers req and returns the concatenated response text.
func (c *Client) Generate(ctx context.Context, req domain.ExtractionRequest) (string, error) {
	req.Search = false
	resp, err := c.generate(ctx, req)
	if err != nil {
		return "", err
	}
	return resp.text(), nil
}

// GenerateWithSearch answers req with the google_search tool enabled. Image
// payloads on req are ignored. Missing grounding metadata yields no sources.
func (c *Client) GenerateWithSearch(ctx context.Context, req domain.ExtractionRequest) (*domain.GroundedResponse, error) {
	req.Search = true
	req.Images = nil
	resp, err := c.generate(ctx, req)
	if err != nil {
		return nil, err
	}
	return &domain.GroundedResponse{
		Text:    resp.text(),
		Sources: resp.sources(),
	}, nil
}

func (c *Client) generate(ctx context.Context, req domain.ExtractionRequest) (*generateResponse, error) {
	body, err := json.Marshal(buildRequest(req))
	if err != nil {
		return nil, domain.ProviderError("marshal request", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, domain.ProviderError("create request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	start := time.Now()
	c.logger.Debug().
		Str("model", c.model).
		Int("images", len(req.Images)).
		Bool("search", req.Search).
		Msg("Sending generation request")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, domain.ProviderError("send request", err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, domain.ProviderError("read response", err)
	}

	var resp generateResponse
	if httpResp.StatusCode != http.StatusOK {
		if err := json.Unmarshal(raw, &resp); err == nil && resp.Error != nil {
			return nil, domain.ProviderError(
				fmt.Sprintf("API returned status %d", httpResp.StatusCode),
				fmt.Errorf("%s (%s)", resp.Error.Message, resp.Error.Status),
			)
		}
		return nil, domain.ProviderError(fmt.Sprintf("API returned status %d: %s", httpResp.StatusCode, truncate(string(raw), 256)), nil)
	}

	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, domain.ProviderError("decode response", err)
	}
	if len(resp.Candidates) == 0 {
		reason := ""
		if resp.PromptFeedback != nil {
			reason = resp.PromptFeedback.BlockReason
		}
		return nil, domain.ProviderError("response has no candidates", fmt.Errorf("block reason: %q", reason))
	}

	c.logger.Debug().
		Dur("duration", time.Since(start)).
		Str("finish_reason", resp.Candidates[0].FinishReason).
		Msg("Generation request completed")

	return &resp, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
