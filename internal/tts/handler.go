package tts

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/narratron/narratron/internal/storage"
	nerrors "github.com/narratron/narratron/pkg/narratron/errors"
)

// Handler narrates stories: it cleans the text, walks the synthesizer chain
// in priority order, and persists the winning audio as a uniquely named
// artifact. The returned name is what playback endpoints serve.
type Handler struct {
	synths []Synthesizer
	store  storage.Store
	logger *slog.Logger
}

// NewHandler wires the narration chain. synths are tried in order.
func NewHandler(store storage.Store, logger *slog.Logger, synths ...Synthesizer) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		synths: synths,
		store:  store,
		logger: logger.With("component", "tts.handler"),
	}
}

// Narrate renders the text to audio and returns the artifact file name.
// Engines that fail are skipped; the call errors only when every engine
// does, and callers treat that as a degraded response, not a request
// failure.
func (h *Handler) Narrate(ctx context.Context, text string) (string, error) {
	clean := cleanText(text)
	if clean == "" {
		return "", nerrors.NewValidationError("tts", "text", "nothing to narrate")
	}

	var lastErr error
	for _, s := range h.synths {
		if !s.Available(ctx) {
			h.logger.Debug("synthesizer not available", "engine", s.Name())
			continue
		}

		data, ext, err := s.Synthesize(ctx, clean)
		if err != nil {
			h.logger.Warn("synthesizer failed, trying next", "engine", s.Name(), "error", err)
			lastErr = err
			continue
		}

		name := storage.ArtifactName(ext)
		if err := h.store.Save(ctx, name, data); err != nil {
			return "", err
		}
		h.logger.Info("narration ready", "engine", s.Name(), "artifact", name, "bytes", len(data))
		return name, nil
	}

	if lastErr == nil {
		lastErr = errors.New("no synthesizer available")
	}
	return "", nerrors.NewUpstreamError("tts", lastErr)
}

// cleanText flattens paragraph structure so pauses land on sentence
// boundaries instead of silent gaps at newlines.
func cleanText(text string) string {
	text = strings.ReplaceAll(text, "\n\n", ". ")
	text = strings.ReplaceAll(text, "\n", " ")
	text = strings.ReplaceAll(text, "..", ".")
	text = strings.TrimSpace(strings.Join(strings.Fields(text), " "))
	if text != "" && !strings.ContainsRune(".!?", rune(text[len(text)-1])) {
		text += "."
	}
	return text
}
