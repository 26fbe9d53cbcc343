package story

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/narratron/narratron/internal/theme"
	nerrors "github.com/narratron/narratron/pkg/narratron/errors"
)

func TestComposeProducesThreeSections(t *testing.T) {
	c := NewComposer(Default(), nil)

	for _, th := range theme.All {
		t.Run(string(th), func(t *testing.T) {
			s, err := c.Compose(th, Hints{}, rand.New(rand.NewSource(1)))
			if err != nil {
				t.Fatalf("Compose(%q) returned error: %v", th, err)
			}
			if strings.TrimSpace(s.Introduction) == "" {
				t.Error("introduction is empty")
			}
			if strings.TrimSpace(s.Development) == "" {
				t.Error("development is empty")
			}
			if strings.TrimSpace(s.Resolution) == "" {
				t.Error("resolution is empty")
			}
			if s.WordCount != CountWords(s.Text()) {
				t.Errorf("WordCount = %d, want %d", s.WordCount, CountWords(s.Text()))
			}
			if strings.Contains(s.Text(), "{") {
				t.Errorf("unfilled placeholder left in story: %q", s.Text())
			}
		})
	}
}

func TestComposeDeterministicWithFixedSeed(t *testing.T) {
	c := NewComposer(Default(), nil)

	a, err := c.Compose(theme.Adventure, Hints{}, rand.New(rand.NewSource(42)))
	if err != nil {
		t.Fatal(err)
	}
	b, err := c.Compose(theme.Adventure, Hints{}, rand.New(rand.NewSource(42)))
	if err != nil {
		t.Fatal(err)
	}
	if a.Text() != b.Text() {
		t.Error("same seed produced different stories")
	}
}

func TestComposeVariability(t *testing.T) {
	// Every pool in the default bank has at least two candidates, so over
	// 100 independently seeded calls at least two stories must differ.
	c := NewComposer(Default(), nil)

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		s, err := c.Compose(theme.Magic, Hints{}, rand.New(rand.NewSource(int64(i))))
		if err != nil {
			t.Fatal(err)
		}
		seen[s.Text()] = true
	}
	if len(seen) < 2 {
		t.Errorf("100 trials produced %d distinct stories, want at least 2", len(seen))
	}
}

func TestComposePrefersHints(t *testing.T) {
	c := NewComposer(Default(), nil)

	hints := Hints{Character: "Valentina", Place: "observatorio", Object: "telescopio"}
	s, err := c.Compose(theme.Adventure, hints, rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatal(err)
	}

	text := s.Text()
	for _, want := range []string{"Valentina", "observatorio", "telescopio"} {
		if !strings.Contains(text, want) {
			t.Errorf("story does not contain hint %q:\n%s", want, text)
		}
	}
}

func TestComposeEmptyPoolFailsWithConfigurationError(t *testing.T) {
	broken := &Bank{entries: map[theme.Theme]Entry{
		theme.Generic: {
			Introductions: nil, // intentionally emptied
			Developments:  []string{"desarrollo"},
			Resolutions:   []string{"desenlace"},
			Characters:    []string{"héroe"},
			Places:        []string{"valle"},
			Objects:       []string{"mapa"},
		},
	}}
	c := NewComposer(broken, nil)

	s, err := c.Compose(theme.Generic, Hints{}, rand.New(rand.NewSource(1)))
	if err == nil {
		t.Fatalf("Compose succeeded with empty pool, story: %+v", s)
	}
	if !nerrors.IsConfiguration(err) {
		t.Errorf("error is %T (%v), want ConfigurationError", err, err)
	}
}

func TestComposeUnknownThemeFallsBackToGeneric(t *testing.T) {
	c := NewComposer(Default(), nil)

	s, err := c.Compose(theme.Theme("inexistente"), Hints{}, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("Compose with unknown theme returned error: %v", err)
	}
	if strings.TrimSpace(s.Introduction) == "" {
		t.Error("fallback story has empty introduction")
	}
}

func TestDefaultBankPoolSizes(t *testing.T) {
	// The variability guarantee needs at least two candidates per slot.
	b := Default()
	for _, th := range theme.All {
		e := b.Entry(th)
		if len(e.Introductions) < 2 || len(e.Developments) < 2 || len(e.Resolutions) < 2 {
			t.Errorf("theme %q has a fragment pool smaller than 2", th)
		}
		if len(e.Characters) < 2 || len(e.Places) < 2 || len(e.Objects) < 2 {
			t.Errorf("theme %q has a substitution pool smaller than 2", th)
		}
	}
}

func TestDefaultBankStoriesMeetLengthTarget(t *testing.T) {
	c := NewComposer(Default(), nil)
	bounds := DefaultBounds()

	for _, th := range theme.All {
		for i := 0; i < 20; i++ {
			s, err := c.Compose(th, Hints{}, rand.New(rand.NewSource(int64(i))))
			if err != nil {
				t.Fatal(err)
			}
			if warning, err := bounds.Check(s); err != nil {
				t.Errorf("theme %q seed %d: %v", th, i, err)
			} else if warning != "" {
				t.Errorf("theme %q seed %d: %s", th, i, warning)
			}
		}
	}
}

func TestExtractHints(t *testing.T) {
	tests := []struct {
		name          string
		prompt        string
		wantCharacter string
		wantPlace     string
	}{
		{
			name:          "proper name mid sentence",
			prompt:        "un cuento sobre Valentina y su perro",
			wantCharacter: "Valentina",
		},
		{
			name:      "place after en el",
			prompt:    "una aventura en el espacio",
			wantPlace: "espacio",
		},
		{
			name:          "no entities",
			prompt:        "quiero algo divertido",
			wantCharacter: "",
			wantPlace:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := ExtractHints(tt.prompt)
			if h.Character != tt.wantCharacter {
				t.Errorf("Character = %q, want %q", h.Character, tt.wantCharacter)
			}
			if h.Place != tt.wantPlace {
				t.Errorf("Place = %q, want %q", h.Place, tt.wantPlace)
			}
		})
	}
}

func TestExtractHintsKeywordLimit(t *testing.T) {
	h := ExtractHints("dragones castillos princesas caballeros torneos banquetes bosques")
	if len(h.Keywords) > 5 {
		t.Errorf("got %d keywords, want at most 5", len(h.Keywords))
	}
	if len(h.Keywords) == 0 {
		t.Error("expected at least one keyword")
	}
}
