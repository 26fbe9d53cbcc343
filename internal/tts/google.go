package tts

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	nerrors "github.com/narratron/narratron/pkg/narratron/errors"
)

const (
	// DefaultGoogleURL is the unauthenticated translate voice endpoint.
	DefaultGoogleURL = "https://translate.google.com/translate_tts"

	// maxChunkRunes is the longest text the endpoint accepts per request.
	maxChunkRunes = 200

	// maxParallelChunks bounds concurrent fetches for one narration.
	maxParallelChunks = 4
)

// GoogleSynthesizer uses the public translate voice endpoint. Long stories
// are split into chunks, fetched in parallel, and reassembled in order; MP3
// frames concatenate cleanly.
type GoogleSynthesizer struct {
	baseURL    string
	lang       string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewGoogleSynthesizer(baseURL, lang string, timeout time.Duration, logger *slog.Logger) *GoogleSynthesizer {
	if baseURL == "" {
		baseURL = DefaultGoogleURL
	}
	if lang == "" {
		lang = "es"
	}
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GoogleSynthesizer{
		baseURL:    baseURL,
		lang:       lang,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With("component", "tts.google"),
	}
}

func (g *GoogleSynthesizer) Name() string { return "google" }

// Available is optimistic: connectivity problems only show up when the
// first chunk is fetched, and that failure triggers the fallback anyway.
func (g *GoogleSynthesizer) Available(_ context.Context) bool { return true }

func (g *GoogleSynthesizer) Synthesize(ctx context.Context, text string) ([]byte, string, error) {
	chunks := splitChunks(text, maxChunkRunes)
	if len(chunks) == 0 {
		return nil, "", nerrors.NewValidationError("tts", "text", "nothing to synthesize")
	}

	results := make([][]byte, len(chunks))
	grp, ctx := errgroup.WithContext(ctx)
	grp.SetLimit(maxParallelChunks)
	for i, chunk := range chunks {
		i, chunk := i, chunk
		grp.Go(func() error {
			data, err := g.fetchChunk(ctx, chunk)
			if err != nil {
				return err
			}
			results[i] = data
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, "", nerrors.NewUpstreamError("tts", err)
	}

	g.logger.Debug("synthesized audio", "chunks", len(chunks), "lang", g.lang)
	return bytes.Join(results, nil), "mp3", nil
}

func (g *GoogleSynthesizer) fetchChunk(ctx context.Context, chunk string) ([]byte, error) {
	params := url.Values{}
	params.Set("ie", "UTF-8")
	params.Set("client", "tw-ob")
	params.Set("tl", g.lang)
	params.Set("q", chunk)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("voice endpoint returned status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// splitChunks breaks text into pieces of at most max runes without cutting
// words. A single word longer than max is truncated rather than rejected.
func splitChunks(text string, max int) []string {
	var chunks []string
	var current strings.Builder
	currentLen := 0

	for _, word := range strings.Fields(text) {
		wl := len([]rune(word))
		if wl > max {
			word = string([]rune(word)[:max])
			wl = max
		}
		if currentLen > 0 && currentLen+1+wl > max {
			chunks = append(chunks, current.String())
			current.Reset()
			currentLen = 0
		}
		if currentLen > 0 {
			current.WriteByte(' ')
			currentLen++
		}
		current.WriteString(word)
		currentLen += wl
	}
	if currentLen > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}
