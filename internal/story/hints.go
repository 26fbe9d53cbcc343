package story

import (
	"strings"
	"unicode"
)

// Hints carries entities extracted from the user prompt. When present they
// take precedence over sampled pool values, so the story visibly reflects
// what the user asked for.
type Hints struct {
	Character string
	Place     string
	Object    string
	Keywords  []string
}

// filler words excluded from keyword extraction
var stopwords = map[string]bool{
	"para": true, "sobre": true, "cuento": true, "historia": true,
	"quiero": true, "escribe": true, "escribí": true, "donde": true,
	"cuando": true, "como": true, "porque": true, "tiene": true,
	"hace": true, "unos": true, "unas": true, "este": true, "esta": true,
	"esto": true, "ellos": true, "ellas": true, "muy": true, "con": true,
	"una": true, "más": true, "que": true,
}

const maxKeywords = 5

// ExtractHints pulls a character name, a place and context keywords out of
// the prompt. Extraction is best-effort: missing hints leave the composer
// free to sample from the pools.
func ExtractHints(prompt string) Hints {
	var h Hints

	words := strings.Fields(prompt)
	for i, w := range words {
		trimmed := strings.Trim(w, ".,;:!?¡¿\"'«»()")
		if trimmed == "" {
			continue
		}

		// A capitalized word mid-sentence reads as a proper name.
		if i > 0 && h.Character == "" && isCapitalized(trimmed) {
			h.Character = trimmed
		}

		// "en el X" / "en la X" names a place.
		if h.Place == "" && i+2 < len(words) {
			lower := strings.ToLower(trimmed)
			article := strings.ToLower(strings.Trim(words[i+1], ".,;:!?¡¿"))
			if lower == "en" && (article == "el" || article == "la" || article == "un" || article == "una") {
				h.Place = strings.Trim(words[i+2], ".,;:!?¡¿\"'«»()")
			}
		}
	}

	seen := make(map[string]bool)
	for _, w := range words {
		lower := strings.ToLower(strings.Trim(w, ".,;:!?¡¿\"'«»()"))
		if len([]rune(lower)) <= 3 || stopwords[lower] || seen[lower] {
			continue
		}
		seen[lower] = true
		h.Keywords = append(h.Keywords, lower)
		if len(h.Keywords) >= maxKeywords {
			break
		}
	}

	return h
}

func isCapitalized(w string) bool {
	runes := []rune(w)
	if len(runes) < 2 {
		return false
	}
	return unicode.IsUpper(runes[0]) && unicode.IsLower(runes[1])
}
