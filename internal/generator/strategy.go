// Package generator implements the graceful-degradation policy that picks a
// story generation strategy per request: hosted model, then local model,
// then template composition. A user-visible request never fails merely
// because an external dependency is down.
package generator

import (
	"context"

	"github.com/narratron/narratron/internal/story"
)

// Strategy names, reported in results and logs.
const (
	StrategyHosted   = "hosted"
	StrategyLocal    = "local"
	StrategyTemplate = "template"
)

// Strategy is one way of producing a story. Implementations do their own
// segmentation into the three-part shape; the selector only checks bounds
// and orchestrates the fallback order.
type Strategy interface {
	// Name identifies the strategy in results and logs.
	Name() string

	// Available reports whether this strategy can be attempted at all,
	// based on configuration and loaded resources.
	Available(ctx context.Context) bool

	// Attempt produces a story for the prompt, or a typed failure.
	// Each strategy is attempted at most once per request.
	Attempt(ctx context.Context, prompt string, preset Preset) (story.Story, error)
}

// Preset bundles the length target and sampling parameters for one story
// duration. The word bounds double as the validation window.
type Preset struct {
	MinWords    int
	MaxWords    int
	MaxTokens   int
	Temperature float64
	TopP        float64
}

// Bounds returns the validation window for this preset.
func (p Preset) Bounds() story.Bounds {
	return story.Bounds{MinWords: p.MinWords, MaxWords: p.MaxWords}
}

// DefaultPresetName is the duration used when a request names no preset.
const DefaultPresetName = "corto"

// DefaultPresets returns the stock duration presets. The thresholds are
// configuration defaults, not hard rules; config may override them.
func DefaultPresets() map[string]Preset {
	return map[string]Preset{
		"corto": {MinWords: 150, MaxWords: 300, MaxTokens: 450, Temperature: 0.85, TopP: 0.95},
		"medio": {MinWords: 300, MaxWords: 600, MaxTokens: 900, Temperature: 0.85, TopP: 0.95},
		"largo": {MinWords: 600, MaxWords: 1100, MaxTokens: 1600, Temperature: 0.85, TopP: 0.95},
	}
}
