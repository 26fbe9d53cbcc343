package generator

import (
	"context"
	crand "crypto/rand"
	"encoding/binary"
	"log/slog"
	"math/rand"
	"time"

	"github.com/narratron/narratron/internal/story"
	"github.com/narratron/narratron/internal/theme"
)

// TemplateStrategy composes a story offline from the template bank. It is
// the terminal rung of the chain and is always available; its only failure
// mode is a bank misconfiguration, which is fatal rather than degradable.
type TemplateStrategy struct {
	composer *story.Composer
	seed     func() int64
	logger   *slog.Logger
}

func NewTemplateStrategy(composer *story.Composer, logger *slog.Logger) *TemplateStrategy {
	if logger == nil {
		logger = slog.Default()
	}
	return &TemplateStrategy{
		composer: composer,
		seed:     secureSeed,
		logger:   logger.With("component", "generator.template"),
	}
}

func (t *TemplateStrategy) Name() string { return StrategyTemplate }

func (t *TemplateStrategy) Available(_ context.Context) bool { return true }

func (t *TemplateStrategy) Attempt(_ context.Context, prompt string, _ Preset) (story.Story, error) {
	th := theme.Classify(prompt)
	hints := story.ExtractHints(prompt)
	rng := rand.New(rand.NewSource(t.seed()))

	st, err := t.composer.Compose(th, hints, rng)
	if err != nil {
		return story.Story{}, err
	}
	t.logger.Debug("composed template story", "theme", th, "words", st.WordCount)
	return st, nil
}

// secureSeed seeds each per-request generator from the OS entropy pool so
// concurrent requests never share a stream.
func secureSeed() int64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return time.Now().UnixNano()
	}
	return int64(binary.LittleEndian.Uint64(b[:]))
}
