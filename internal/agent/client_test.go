package agent

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	nerrors "github.com/narratron/narratron/pkg/narratron/errors"
)

func TestClientCompleteOpenAI(t *testing.T) {
	var requests int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}

		var body struct {
			Model       string  `json:"model"`
			Temperature float64 `json:"temperature"`
			MaxTokens   int     `json:"max_tokens"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatal(err)
		}
		if body.MaxTokens != 450 {
			t.Errorf("max_tokens = %d, want 450", body.MaxTokens)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": "Érase una vez."}},
			},
		})
	}))
	defer ts.Close()

	c := NewClient("test-key", ts.URL, "gpt-4o-mini", WithRateLimit(600, 10))
	got, err := c.Complete(context.Background(), "sistema", "usuario", Params{Temperature: 0.85, TopP: 0.95, MaxTokens: 450})
	if err != nil {
		t.Fatal(err)
	}
	if got != "Érase una vez." {
		t.Errorf("Complete = %q", got)
	}
	if n := atomic.LoadInt32(&requests); n != 1 {
		t.Errorf("made %d requests, want exactly 1 (no retries)", n)
	}
}

func TestClientCompleteGemini(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "gem-key" {
			t.Errorf("missing key query param")
		}
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{
					"parts": []map[string]string{{"text": "Cuento generado."}},
				}},
			},
		})
	}))
	defer ts.Close()

	c := NewClient("gem-key", ts.URL, "gemini-2.5-flash", WithRateLimit(600, 10))
	c.apiType = "gemini"
	got, err := c.Complete(context.Background(), "sistema", "usuario", Params{MaxTokens: 300})
	if err != nil {
		t.Fatal(err)
	}
	if got != "Cuento generado." {
		t.Errorf("Complete = %q", got)
	}
}

func TestClientErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"auth rejected", http.StatusUnauthorized, nerrors.ErrAuthRejected},
		{"forbidden", http.StatusForbidden, nerrors.ErrAuthRejected},
		{"quota", http.StatusTooManyRequests, nerrors.ErrQuotaExceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer ts.Close()

			c := NewClient("key", ts.URL, "gpt-4o-mini", WithRateLimit(600, 10))
			_, err := c.Complete(context.Background(), "s", "u", Params{MaxTokens: 100})
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("error %v does not match %v", err, tt.want)
			}
			if !nerrors.IsUpstream(err) {
				t.Errorf("error %v is not an upstream error", err)
			}
		})
	}
}

func TestClientTimeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer ts.Close()

	c := NewClient("key", ts.URL, "gpt-4o-mini", WithRateLimit(600, 10), WithTimeout(20*time.Millisecond))
	_, err := c.Complete(context.Background(), "s", "u", Params{MaxTokens: 100})
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !errors.Is(err, nerrors.ErrUpstreamTimeout) {
		t.Errorf("error %v does not match ErrUpstreamTimeout", err)
	}
	if !nerrors.IsUpstream(err) {
		t.Errorf("timeout should still be an upstream error: %v", err)
	}
}

func TestClientConfigured(t *testing.T) {
	if NewClient("", "https://api.openai.com/v1", "gpt-4o-mini").Configured() {
		t.Error("client with empty key reports configured")
	}
	if !NewClient("sk-x", "https://api.openai.com/v1", "gpt-4o-mini").Configured() {
		t.Error("client with key reports not configured")
	}
}

func TestLocalClientComplete(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/health":
			w.WriteHeader(http.StatusOK)
		case "/completion":
			json.NewEncoder(w).Encode(map[string]string{"content": "Un cuento local."})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer ts.Close()

	c := NewLocalClient(ts.URL, time.Second, nil)
	if !c.Loaded(context.Background()) {
		t.Fatal("healthy runtime reports not loaded")
	}
	got, err := c.Complete(context.Background(), "prompt", Params{MaxTokens: 200})
	if err != nil {
		t.Fatal(err)
	}
	if got != "Un cuento local." {
		t.Errorf("Complete = %q", got)
	}
}

func TestLocalClientNotLoaded(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	c := NewLocalClient(ts.URL, time.Second, nil)
	_, err := c.Complete(context.Background(), "prompt", Params{MaxTokens: 200})
	if !errors.Is(err, nerrors.ErrModelNotLoaded) {
		t.Errorf("error %v does not match ErrModelNotLoaded", err)
	}
}

func TestLocalClientHealthRecovers(t *testing.T) {
	var healthy atomic.Bool
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if healthy.Load() {
			w.WriteHeader(http.StatusOK)
		} else {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}))
	defer ts.Close()

	c := NewLocalClient(ts.URL, time.Second, nil)
	c.probeInterval = 0 // re-probe on every call

	if c.Loaded(context.Background()) {
		t.Fatal("booting runtime reports loaded")
	}

	// Runtime finishes loading after the first probe.
	healthy.Store(true)
	if !c.Loaded(context.Background()) {
		t.Error("runtime that became healthy still reports not loaded")
	}

	healthy.Store(false)
	if c.Loaded(context.Background()) {
		t.Error("runtime that went down still reports loaded")
	}
}

func TestLocalClientHealthCachedWithinInterval(t *testing.T) {
	var probes atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		probes.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	c := NewLocalClient(ts.URL, time.Second, nil)
	for i := 0; i < 5; i++ {
		if !c.Loaded(context.Background()) {
			t.Fatal("healthy runtime reports not loaded")
		}
	}
	if got := probes.Load(); got != 1 {
		t.Errorf("health probes = %d, want 1 within the probe interval", got)
	}
}

func TestLocalClientUnconfigured(t *testing.T) {
	c := NewLocalClient("", time.Second, nil)
	if c.Configured() {
		t.Error("empty base URL reports configured")
	}
	if c.Loaded(context.Background()) {
		t.Error("unconfigured client reports loaded")
	}
	if _, err := c.Complete(context.Background(), "p", Params{}); !errors.Is(err, nerrors.ErrModelNotLoaded) {
		t.Errorf("error %v, want ErrModelNotLoaded", err)
	}
}
