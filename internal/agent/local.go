package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	nerrors "github.com/narratron/narratron/pkg/narratron/errors"
)

// LocalClient talks to a local inference runtime (llama.cpp server or any
// compatible completion endpoint) serving the fine-tuned story model. The
// loaded model is a shared read-only resource: requests never mutate it, so
// concurrent callers need no coordination here.
type LocalClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger

	healthMu      sync.Mutex
	healthy       bool
	lastProbe     time.Time
	probeInterval time.Duration
}

// NewLocalClient creates a client for the runtime at baseURL. An empty
// baseURL means no local model is configured.
func NewLocalClient(baseURL string, timeout time.Duration, logger *slog.Logger) *LocalClient {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &LocalClient{
		baseURL:       strings.TrimRight(baseURL, "/"),
		httpClient:    &http.Client{Timeout: timeout},
		logger:        logger.With("component", "local_client"),
		probeInterval: 30 * time.Second,
	}
}

// Configured reports whether a runtime endpoint is set.
func (c *LocalClient) Configured() bool {
	return c.baseURL != ""
}

// Loaded reports whether the runtime answers its health endpoint. The result
// is cached for the probe interval so the hot path does not pay for a health
// round trip per request, but a runtime that finishes loading after this
// service starts is picked up on the next probe.
func (c *LocalClient) Loaded(ctx context.Context) bool {
	if !c.Configured() {
		return false
	}

	c.healthMu.Lock()
	defer c.healthMu.Unlock()
	if !c.lastProbe.IsZero() && time.Since(c.lastProbe) < c.probeInterval {
		return c.healthy
	}
	c.lastProbe = time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		c.healthy = false
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("local runtime health check failed", "error", err)
		c.healthy = false
		return false
	}
	defer resp.Body.Close()

	healthy := resp.StatusCode == http.StatusOK
	if healthy != c.healthy {
		c.logger.Info("local runtime health changed", "healthy", healthy)
	}
	c.healthy = healthy
	return c.healthy
}

// Complete requests one completion from the local runtime. One attempt per
// request, same as the hosted client.
func (c *LocalClient) Complete(ctx context.Context, prompt string, p Params) (string, error) {
	if !c.Configured() {
		return "", nerrors.NewUpstreamError("local", nerrors.ErrModelNotLoaded)
	}

	requestBody := map[string]any{
		"prompt":      prompt,
		"n_predict":   p.MaxTokens,
		"temperature": p.Temperature,
		"top_p":       p.TopP,
	}
	body, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/completion", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return "", nerrors.NewUpstreamError("local", fmt.Errorf("%w: %v", nerrors.ErrUpstreamTimeout, err))
		}
		return "", nerrors.NewUpstreamError("local", fmt.Errorf("making request: %w", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nerrors.NewUpstreamError("local", fmt.Errorf("reading response: %w", err))
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusServiceUnavailable:
		return "", nerrors.NewUpstreamError("local", nerrors.ErrModelNotLoaded)
	case http.StatusInsufficientStorage:
		return "", nerrors.NewUpstreamError("local", nerrors.ErrModelOutOfMemory)
	default:
		if strings.Contains(strings.ToLower(string(respBody)), "out of memory") {
			return "", nerrors.NewUpstreamError("local", nerrors.ErrModelOutOfMemory)
		}
		return "", nerrors.NewUpstreamError("local", fmt.Errorf("runtime error (status %d): %s", resp.StatusCode, truncate(string(respBody), 200)))
	}

	var response struct {
		Content string `json:"content"`
	}
	if err := json.Unmarshal(respBody, &response); err != nil {
		return "", nerrors.NewUpstreamError("local", fmt.Errorf("parsing response: %w", err))
	}
	if strings.TrimSpace(response.Content) == "" {
		return "", nerrors.NewUpstreamError("local", errors.New("empty completion"))
	}

	c.logger.Info("local generation succeeded",
		"duration_ms", time.Since(start).Milliseconds(),
		"response_length", len(response.Content))

	return response.Content, nil
}
