package story

import (
	"strings"
	"testing"

	nerrors "github.com/narratron/narratron/pkg/narratron/errors"
)

func TestBoundsCheck(t *testing.T) {
	bounds := Bounds{MinWords: 5, MaxWords: 10}

	tests := []struct {
		name        string
		story       Story
		wantErr     bool
		wantWarning bool
	}{
		{
			name: "valid story",
			story: Story{
				Introduction: "uno dos",
				Development:  "tres cuatro",
				Resolution:   "cinco seis",
			},
		},
		{
			name: "missing development is a hard error",
			story: Story{
				Introduction: "uno dos",
				Development:  "   ",
				Resolution:   "cinco seis",
			},
			wantErr: true,
		},
		{
			name: "missing introduction is a hard error",
			story: Story{
				Development: "tres cuatro",
				Resolution:  "cinco seis",
			},
			wantErr: true,
		},
		{
			name: "too short is only a warning",
			story: Story{
				Introduction: "uno",
				Development:  "dos",
				Resolution:   "tres",
			},
			wantWarning: true,
		},
		{
			name: "too long is only a warning",
			story: Story{
				Introduction: "uno dos tres cuatro cinco",
				Development:  "seis siete ocho nueve diez",
				Resolution:   "once doce trece catorce quince",
			},
			wantWarning: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warning, err := bounds.Check(tt.story)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !nerrors.IsValidation(err) {
					t.Errorf("error is %T, want ValidationError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantWarning && warning == "" {
				t.Error("expected a length warning, got none")
			}
			if !tt.wantWarning && warning != "" {
				t.Errorf("unexpected warning: %s", warning)
			}
		})
	}
}

func TestFromTextParagraphs(t *testing.T) {
	raw := "Primer párrafo del cuento.\n\nSegundo párrafo con el conflicto.\n\nTercer párrafo con el final."
	s, err := FromText(raw)
	if err != nil {
		t.Fatal(err)
	}
	if s.Introduction != "Primer párrafo del cuento." {
		t.Errorf("Introduction = %q", s.Introduction)
	}
	if s.Resolution != "Tercer párrafo con el final." {
		t.Errorf("Resolution = %q", s.Resolution)
	}
	if s.WordCount == 0 {
		t.Error("WordCount not computed")
	}
}

func TestFromTextManyParagraphsJoinsMiddle(t *testing.T) {
	raw := "Uno.\n\nDos.\n\nTres.\n\nCuatro.\n\nCinco."
	s, err := FromText(raw)
	if err != nil {
		t.Fatal(err)
	}
	if s.Introduction != "Uno." || s.Resolution != "Cinco." {
		t.Errorf("boundaries wrong: intro=%q res=%q", s.Introduction, s.Resolution)
	}
	if !strings.Contains(s.Development, "Dos.") || !strings.Contains(s.Development, "Cuatro.") {
		t.Errorf("Development = %q, want middle paragraphs joined", s.Development)
	}
}

func TestFromTextSingleBlockSplitsBySentences(t *testing.T) {
	raw := "Había una vez un gato. El gato encontró un mapa. Siguió el mapa hasta el puerto. Allí encontró un barco. Y zarpó feliz."
	s, err := FromText(raw)
	if err != nil {
		t.Fatal(err)
	}
	for name, section := range map[string]string{
		"introduction": s.Introduction,
		"development":  s.Development,
		"resolution":   s.Resolution,
	} {
		if strings.TrimSpace(section) == "" {
			t.Errorf("%s is empty", name)
		}
	}
}

func TestFromTextRejectsShortText(t *testing.T) {
	for _, raw := range []string{"", "   ", "Una sola frase.", "Dos frases. Nada más."} {
		if _, err := FromText(raw); err == nil {
			t.Errorf("FromText(%q) succeeded, want validation error", raw)
		} else if !nerrors.IsValidation(err) {
			t.Errorf("FromText(%q) error is %T, want ValidationError", raw, err)
		}
	}
}

func TestSplitSentences(t *testing.T) {
	got := splitSentences("¿Quién anda ahí? Nadie respondió. Mejor así.")
	if len(got) != 3 {
		t.Fatalf("got %d sentences (%q), want 3", len(got), got)
	}
}
