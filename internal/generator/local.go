package generator

import (
	"context"
	"log/slog"
	"strings"

	"github.com/narratron/narratron/internal/agent"
	"github.com/narratron/narratron/internal/story"
	nerrors "github.com/narratron/narratron/pkg/narratron/errors"
)

// LocalCompleter is the slice of agent.LocalClient the local strategy needs.
type LocalCompleter interface {
	Complete(ctx context.Context, prompt string, params agent.Params) (string, error)
	Configured() bool
	Loaded(ctx context.Context) bool
}

// LocalStrategy drives a locally hosted fine-tuned model. It is the middle
// rung of the fallback chain: slower and rougher than the hosted API, but
// independent of network and quota.
type LocalStrategy struct {
	client LocalCompleter
	logger *slog.Logger
}

func NewLocalStrategy(client LocalCompleter, logger *slog.Logger) *LocalStrategy {
	if logger == nil {
		logger = slog.Default()
	}
	return &LocalStrategy{
		client: client,
		logger: logger.With("component", "generator.local"),
	}
}

func (l *LocalStrategy) Name() string { return StrategyLocal }

// Available requires both configuration and a loaded model; a runtime that
// answers health checks but has no weights loaded is skipped, not attempted.
func (l *LocalStrategy) Available(ctx context.Context) bool {
	return l.client != nil && l.client.Configured() && l.client.Loaded(ctx)
}

func (l *LocalStrategy) Attempt(ctx context.Context, prompt string, preset Preset) (story.Story, error) {
	// Fine-tuned continuation models work best with a bare completion
	// prefix rather than chat-style instructions.
	text, err := l.client.Complete(ctx, "Cuento: "+prompt+"\n\n", agent.Params{
		Temperature: preset.Temperature,
		TopP:        preset.TopP,
		MaxTokens:   preset.MaxTokens,
	})
	if err != nil {
		return story.Story{}, err
	}

	if !promptRelevant(prompt, text) {
		l.logger.Warn("local reply drifted off topic", "prompt", prompt)
		return story.Story{}, nerrors.NewValidationError(StrategyLocal, "text",
			"completion unrelated to prompt")
	}

	st, err := story.FromText(text)
	if err != nil {
		l.logger.Warn("local reply lacked narrative structure", "error", err)
		return story.Story{}, err
	}
	return st, nil
}

// promptRelevant reports whether the completion shares vocabulary with the
// prompt. Fine-tuned continuation models drift onto unrelated topics; a
// story that echoes none of the prompt's substantive words is rejected and
// the request falls back to templates. Articles and other short words are
// ignored so the overlap check means something.
func promptRelevant(prompt, text string) bool {
	substantive := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(prompt)) {
		if len([]rune(w)) > 3 {
			substantive[strings.Trim(w, ".,;:¿?¡!\"'")] = true
		}
	}
	if len(substantive) == 0 {
		return true
	}
	for _, w := range strings.Fields(strings.ToLower(text)) {
		if substantive[strings.Trim(w, ".,;:¿?¡!\"'")] {
			return true
		}
	}
	return false
}
