// Package theme maps free-text prompts to a closed set of story themes.
package theme

import "strings"

// Theme is a coarse topical category used to select template fragments.
// The string value is the Spanish noun used in generated narration.
type Theme string

const (
	Adventure    Theme = "aventura"
	Mystery      Theme = "misterio"
	Magic        Theme = "magia"
	Friendship   Theme = "amistad"
	Courage      Theme = "valentía"
	Creativity   Theme = "creatividad"
	Perseverance Theme = "perseverancia"
	Generic      Theme = "generico"
)

// All lists every valid theme, in classification priority order.
// Generic is last: it is the default, never matched by keyword.
var All = []Theme{
	Adventure,
	Mystery,
	Magic,
	Friendship,
	Courage,
	Creativity,
	Perseverance,
	Generic,
}

// keywords holds, per theme, the substrings that select it. Matching is
// case-insensitive and accent variants are listed explicitly so prompts
// typed without tildes still classify.
var keywords = map[Theme][]string{
	Adventure:    {"aventura", "aventurero", "explorar", "explorador", "expedición", "expedicion", "viaje"},
	Mystery:      {"misterio", "misterioso", "secreto", "enigma", "detective", "pista"},
	Magic:        {"magia", "mágico", "magico", "encantado", "encantada", "hechizo", "hechicero"},
	Friendship:   {"amistad", "amigo", "amiga", "compañero", "companero", "compañera"},
	Courage:      {"valentía", "valentia", "valiente", "coraje", "miedo", "atreverse"},
	Creativity:   {"creatividad", "creativo", "creativa", "inventar", "inventor", "imaginación", "imaginacion", "idea"},
	Perseverance: {"perseverancia", "perseverar", "esfuerzo", "intentar", "rendirse", "constancia"},
}

// Classify returns the first theme, in priority order, whose keyword set
// matches the prompt. It is total: any input, including the empty string,
// maps to a theme in the closed set, defaulting to Generic.
func Classify(prompt string) Theme {
	lower := strings.ToLower(prompt)
	for _, t := range All {
		for _, kw := range keywords[t] {
			if strings.Contains(lower, kw) {
				return t
			}
		}
	}
	return Generic
}

// Valid reports whether t belongs to the closed theme set.
func Valid(t Theme) bool {
	for _, known := range All {
		if t == known {
			return true
		}
	}
	return false
}
