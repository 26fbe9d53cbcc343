package generator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/narratron/narratron/internal/agent"
	"github.com/narratron/narratron/internal/story"
)

// HostedCompleter is the slice of agent.Client the hosted strategy needs.
type HostedCompleter interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, params agent.Params) (string, error)
	Configured() bool
}

// HostedStrategy asks a hosted LLM API for a story and segments the reply.
type HostedStrategy struct {
	client HostedCompleter
	logger *slog.Logger
}

// NewHostedStrategy builds the first-preference strategy. The client may be
// unconfigured; Available reflects that.
func NewHostedStrategy(client HostedCompleter, logger *slog.Logger) *HostedStrategy {
	if logger == nil {
		logger = slog.Default()
	}
	return &HostedStrategy{
		client: client,
		logger: logger.With("component", "generator.hosted"),
	}
}

func (h *HostedStrategy) Name() string { return StrategyHosted }

func (h *HostedStrategy) Available(_ context.Context) bool {
	return h.client != nil && h.client.Configured()
}

func (h *HostedStrategy) Attempt(ctx context.Context, prompt string, preset Preset) (story.Story, error) {
	systemPrompt := fmt.Sprintf(
		"Eres un narrador experto en cuentos infantiles en español. "+
			"Escribe un cuento de entre %d y %d palabras con estructura narrativa completa: "+
			"introducción, desarrollo y desenlace, separados por una línea en blanco. "+
			"Responde solo con el cuento, sin título ni explicaciones.",
		preset.MinWords, preset.MaxWords,
	)
	userPrompt := "Escribe un cuento creativo sobre: " + prompt

	text, err := h.client.Complete(ctx, systemPrompt, userPrompt, agent.Params{
		Temperature: preset.Temperature,
		TopP:        preset.TopP,
		MaxTokens:   preset.MaxTokens,
	})
	if err != nil {
		return story.Story{}, err
	}

	st, err := story.FromText(text)
	if err != nil {
		h.logger.Warn("hosted reply lacked narrative structure", "error", err)
		return story.Story{}, err
	}
	return st, nil
}
