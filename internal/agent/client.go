// Package agent holds the HTTP clients for the hosted and local language
// model backends. Clients are transport only: prompt construction and
// fallback policy live in the generator package.
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
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	nerrors "github.com/narratron/narratron/pkg/narratron/errors"
)

// Params are the sampling parameters passed through to a model backend.
type Params struct {
	Temperature float64
	TopP        float64
	MaxTokens   int
}

// Client calls a hosted language-model API. It performs exactly one attempt
// per request: resilience comes from the strategy fallback chain, never from
// retrying the same backend.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	apiType    string // "openai" or "gemini"
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout bounds every request. The default should fail fast enough to
// leave headroom for the local-model or template fallback.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		transport := c.httpClient.Transport
		c.httpClient = &http.Client{
			Timeout:   timeout,
			Transport: transport,
		}
	}
}

// WithRateLimit caps outgoing request rate.
func WithRateLimit(requestsPerMinute, burst int) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), burst)
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger.With("component", "hosted_client")
	}
}

// NewClient creates a hosted-model client. The API type is detected from the
// base URL: Gemini endpoints contain "googleapis", everything else speaks
// the OpenAI chat-completions protocol.
func NewClient(apiKey, baseURL, model string, opts ...Option) *Client {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		ForceAttemptHTTP2:   true,
	}

	apiType := "openai"
	if strings.Contains(baseURL, "googleapis") {
		apiType = "gemini"
	}

	c := &Client{
		apiKey:  strings.TrimSpace(apiKey),
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		apiType: apiType,
		httpClient: &http.Client{
			Timeout:   15 * time.Second,
			Transport: transport,
		},
		limiter: rate.NewLimiter(rate.Limit(1), 1),
		logger:  slog.Default().With("component", "hosted_client"),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.logger.Debug("hosted client initialized",
		"api_type", c.apiType,
		"base_url", c.baseURL,
		"model", c.model,
		"rate_limit", fmt.Sprintf("%v req/s", c.limiter.Limit()))

	return c
}

// Configured reports whether credentials are present.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// Complete sends one generation request and returns the raw model text.
// Failures are typed so the caller can log the reason while treating every
// one of them as a fallback trigger.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string, p Params) (string, error) {
	requestID := fmt.Sprintf("api_%d", time.Now().UnixNano())
	start := time.Now()

	if err := c.limiter.Wait(ctx); err != nil {
		return "", nerrors.NewUpstreamError("hosted", fmt.Errorf("rate limit wait: %w", err))
	}

	c.logger.Debug("sending hosted generation request",
		"request_id", requestID,
		"api_type", c.apiType,
		"model", c.model,
		"prompt_length", len(userPrompt),
		"max_tokens", p.MaxTokens)

	var text string
	var err error
	if c.apiType == "gemini" {
		text, err = c.doGeminiRequest(ctx, systemPrompt, userPrompt, p)
	} else {
		text, err = c.doOpenAIRequest(ctx, systemPrompt, userPrompt, p)
	}

	if err != nil {
		c.logger.Warn("hosted generation failed",
			"request_id", requestID,
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err)
		return "", err
	}

	c.logger.Info("hosted generation succeeded",
		"request_id", requestID,
		"duration_ms", time.Since(start).Milliseconds(),
		"response_length", len(text))

	return text, nil
}

func (c *Client) doOpenAIRequest(ctx context.Context, systemPrompt, userPrompt string, p Params) (string, error) {
	requestBody := map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": userPrompt},
		},
		"max_tokens":  p.MaxTokens,
		"temperature": p.Temperature,
		"top_p":       p.TopP,
	}

	body, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	respBody, err := c.send(req)
	if err != nil {
		return "", err
	}

	var response struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(respBody, &response); err != nil {
		return "", nerrors.NewUpstreamError("hosted", fmt.Errorf("parsing response: %w", err))
	}
	if len(response.Choices) == 0 {
		return "", nerrors.NewUpstreamError("hosted", errors.New("no choices in response"))
	}
	return response.Choices[0].Message.Content, nil
}

func (c *Client) doGeminiRequest(ctx context.Context, systemPrompt, userPrompt string, p Params) (string, error) {
	requestBody := map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]string{{"text": systemPrompt + "\n\n" + userPrompt}}},
		},
		"generationConfig": map[string]any{
			"temperature":     p.Temperature,
			"topP":            p.TopP,
			"maxOutputTokens": p.MaxTokens,
		},
	}

	body, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	respBody, err := c.send(req)
	if err != nil {
		return "", err
	}

	var response struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(respBody, &response); err != nil {
		return "", nerrors.NewUpstreamError("hosted", fmt.Errorf("parsing response: %w", err))
	}
	if len(response.Candidates) == 0 || len(response.Candidates[0].Content.Parts) == 0 {
		return "", nerrors.NewUpstreamError("hosted", errors.New("no candidates in response"))
	}

	var parts []string
	for _, part := range response.Candidates[0].Content.Parts {
		parts = append(parts, part.Text)
	}
	return strings.Join(parts, " "), nil
}

// send executes the request and maps HTTP failures onto the upstream error
// taxonomy: timeout, auth rejection, quota exhaustion.
func (c *Client) send(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, nerrors.NewUpstreamError("hosted", fmt.Errorf("%w: %v", nerrors.ErrUpstreamTimeout, err))
		}
		return nil, nerrors.NewUpstreamError("hosted", fmt.Errorf("making request: %w", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nerrors.NewUpstreamError("hosted", fmt.Errorf("reading response: %w", err))
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return respBody, nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, nerrors.NewUpstreamError("hosted", fmt.Errorf("%w (status %d)", nerrors.ErrAuthRejected, resp.StatusCode))
	case http.StatusTooManyRequests:
		return nil, nerrors.NewUpstreamError("hosted", fmt.Errorf("%w (status %d)", nerrors.ErrQuotaExceeded, resp.StatusCode))
	default:
		return nil, nerrors.NewUpstreamError("hosted", fmt.Errorf("API error (status %d): %s", resp.StatusCode, truncate(string(respBody), 200)))
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr) && urlErr.Timeout()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
