package generator

import (
	"context"
	"log/slog"
	"strings"

	"github.com/narratron/narratron/internal/story"
	nerrors "github.com/narratron/narratron/pkg/narratron/errors"
)

// DefaultPrompt stands in when a request carries no usable prompt.
const DefaultPrompt = "una aventura creativa"

// Selector walks the strategy chain in priority order until one of them
// yields a valid story. Model strategies may fail or emit malformed text;
// either way the request falls through, and only the template rung can end
// it, successfully or not.
type Selector struct {
	models   []Strategy
	template Strategy
	presets  map[string]Preset
	logger   *slog.Logger
}

// NewSelector wires the fallback chain. models are tried in slice order
// before the template strategy; any of them may be omitted.
func NewSelector(models []Strategy, template Strategy, presets map[string]Preset, logger *slog.Logger) *Selector {
	if logger == nil {
		logger = slog.Default()
	}
	if presets == nil {
		presets = DefaultPresets()
	}
	return &Selector{
		models:   models,
		template: template,
		presets:  presets,
		logger:   logger.With("component", "generator.selector"),
	}
}

// Preset resolves a duration name to its preset, falling back to the
// default duration for unknown or empty names.
func (s *Selector) Preset(name string) Preset {
	if p, ok := s.presets[name]; ok {
		return p
	}
	if p, ok := s.presets[DefaultPresetName]; ok {
		return p
	}
	return DefaultPresets()[DefaultPresetName]
}

// Generate produces one story for the prompt. Strategy failures are
// recorded in the result's attempt log, never surfaced as request errors;
// the call fails only when the template bank itself cannot produce a
// structurally valid story.
func (s *Selector) Generate(ctx context.Context, prompt, duration string) (story.Result, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		prompt = DefaultPrompt
	}
	preset := s.Preset(duration)
	bounds := preset.Bounds()

	var attempts []story.Attempt
	for _, strat := range s.models {
		if !strat.Available(ctx) {
			attempts = append(attempts, story.Attempt{Strategy: strat.Name(), Reason: "not available"})
			continue
		}

		st, err := strat.Attempt(ctx, prompt, preset)
		if err != nil {
			attempts = append(attempts, story.Attempt{Strategy: strat.Name(), Reason: err.Error()})
			s.logger.Warn("strategy failed, falling back",
				"strategy", strat.Name(), "error", err)
			if nerrors.IsValidation(err) {
				// Malformed model output goes straight to the
				// template rung instead of burning more model calls.
				return s.finish(ctx, prompt, preset, bounds, attempts)
			}
			continue
		}

		flag, err := bounds.Check(st)
		if err != nil {
			attempts = append(attempts, story.Attempt{Strategy: strat.Name(), Reason: err.Error()})
			s.logger.Warn("strategy produced an invalid story",
				"strategy", strat.Name(), "error", err)
			return s.finish(ctx, prompt, preset, bounds, attempts)
		}

		s.logger.Info("story generated",
			"strategy", strat.Name(), "words", st.WordCount, "length_flag", flag)
		return story.Result{Story: st, Strategy: strat.Name(), LengthFlag: flag, Attempts: attempts}, nil
	}

	return s.finish(ctx, prompt, preset, bounds, attempts)
}

// finish runs the template rung. Attempted at most once per request: a
// structurally invalid template story is a terminal failure, since there is
// nothing left to fall back to.
func (s *Selector) finish(ctx context.Context, prompt string, preset Preset, bounds story.Bounds, attempts []story.Attempt) (story.Result, error) {
	st, err := s.template.Attempt(ctx, prompt, preset)
	if err != nil {
		// Bank misconfiguration or an unfillable template; nothing to
		// degrade to.
		return story.Result{Attempts: attempts}, err
	}

	flag, err := bounds.Check(st)
	if err != nil {
		return story.Result{Attempts: attempts}, err
	}

	s.logger.Info("story generated",
		"strategy", s.template.Name(), "words", st.WordCount, "length_flag", flag)
	return story.Result{Story: st, Strategy: s.template.Name(), LengthFlag: flag, Attempts: attempts}, nil
}
