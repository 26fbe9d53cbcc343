package story

import (
	"fmt"
	"log/slog"
	"math/rand"
	"strings"

	"github.com/narratron/narratron/internal/theme"
	nerrors "github.com/narratron/narratron/pkg/narratron/errors"
)

// Composer fills template fragments into three-part narratives. It is safe
// for concurrent use: the bank is read-only and the random source comes in
// per call.
type Composer struct {
	bank   *Bank
	logger *slog.Logger
}

// NewComposer creates a composer over the given bank.
func NewComposer(bank *Bank, logger *slog.Logger) *Composer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Composer{
		bank:   bank,
		logger: logger.With("component", "composer"),
	}
}

// Compose builds a Story for the theme by sampling one fragment per section
// and one substitution per placeholder class from the theme's pools.
// Prompt-derived hints take precedence over sampled values. The random
// source is passed explicitly so tests can inject a fixed seed; production
// callers must not reuse a deterministic seed across requests.
func (c *Composer) Compose(t theme.Theme, hints Hints, rng *rand.Rand) (Story, error) {
	entry := c.bank.Entry(t)
	if err := checkPools(t, entry); err != nil {
		return Story{}, err
	}

	character := hints.Character
	if character == "" {
		character = entry.Characters[rng.Intn(len(entry.Characters))]
	}
	place := hints.Place
	if place == "" {
		place = entry.Places[rng.Intn(len(entry.Places))]
	}
	object := hints.Object
	if object == "" {
		object = entry.Objects[rng.Intn(len(entry.Objects))]
	}

	intro := fill(entry.Introductions[rng.Intn(len(entry.Introductions))], character, place, object)
	development := fill(entry.Developments[rng.Intn(len(entry.Developments))], character, place, object)
	resolution := fill(entry.Resolutions[rng.Intn(len(entry.Resolutions))], character, place, object)

	// Weave a prompt keyword into the development now and then, so two
	// stories from the same fragments still differ by prompt.
	if len(hints.Keywords) > 0 && rng.Intn(10) < 3 {
		kw := hints.Keywords[rng.Intn(len(hints.Keywords))]
		if !strings.Contains(strings.ToLower(development), kw) {
			development += fmt.Sprintf(" Todo, de alguna manera, giraba en torno a %s.", kw)
		}
	}

	s := Story{
		Introduction: intro,
		Development:  development,
		Resolution:   resolution,
	}
	s.WordCount = CountWords(s.Text())

	c.logger.Debug("story composed",
		"theme", string(t),
		"character", character,
		"place", place,
		"object", object,
		"word_count", s.WordCount)

	return s, nil
}

func fill(fragment, character, place, object string) string {
	r := strings.NewReplacer(
		"{personaje}", character,
		"{lugar}", place,
		"{objeto}", object,
	)
	return r.Replace(fragment)
}

// checkPools rejects themes whose pools are empty. An empty pool is broken
// configuration and must fail loudly, never produce an empty Story.
func checkPools(t theme.Theme, e Entry) error {
	pools := []struct {
		name string
		size int
	}{
		{"introducciones", len(e.Introductions)},
		{"desarrollos", len(e.Developments)},
		{"desenlaces", len(e.Resolutions)},
		{"personajes", len(e.Characters)},
		{"lugares", len(e.Places)},
		{"objetos", len(e.Objects)},
	}
	for _, p := range pools {
		if p.size == 0 {
			return nerrors.NewConfigurationError("bank",
				fmt.Sprintf("theme %q has an empty %s pool", t, p.name))
		}
	}
	return nil
}
