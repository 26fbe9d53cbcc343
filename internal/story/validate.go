package story

import (
	"fmt"
	"strings"

	nerrors "github.com/narratron/narratron/pkg/narratron/errors"
)

// Bounds are the configured word-count limits for a valid story. The limits
// are soft: out-of-bounds stories are flagged, not rejected. Missing
// structure is the hard invariant.
type Bounds struct {
	MinWords int
	MaxWords int
}

// DefaultBounds returns the stock 150-300 word window.
func DefaultBounds() Bounds {
	return Bounds{MinWords: 150, MaxWords: 300}
}

// Check validates a story against the structural invariant and these bounds.
// A missing section is a hard error. An out-of-bounds word count yields a
// warning string and a nil error.
func (b Bounds) Check(s Story) (string, error) {
	sections := []struct {
		name string
		text string
	}{
		{"introduccion", s.Introduction},
		{"desarrollo", s.Development},
		{"desenlace", s.Resolution},
	}
	for _, sec := range sections {
		if strings.TrimSpace(sec.text) == "" {
			return "", nerrors.NewValidationError("", sec.name, "section is empty")
		}
	}

	wc := s.WordCount
	if wc == 0 {
		wc = CountWords(s.Text())
	}
	if wc < b.MinWords {
		return fmt.Sprintf("story has %d words, below the %d minimum", wc, b.MinWords), nil
	}
	if wc > b.MaxWords {
		return fmt.Sprintf("story has %d words, above the %d maximum", wc, b.MaxWords), nil
	}
	return "", nil
}

// FromText segments raw generated text into the three-part narrative shape.
// Model output arrives as free text; paragraph breaks are the preferred
// section boundaries, with a sentence-based split as fallback for single
// block responses. Text that cannot yield three non-empty sections fails
// validation.
func FromText(raw string) (Story, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Story{}, nerrors.NewValidationError("", "text", "generated text is empty")
	}

	var paragraphs []string
	for _, p := range strings.Split(trimmed, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			paragraphs = append(paragraphs, p)
		}
	}

	var s Story
	switch {
	case len(paragraphs) >= 3:
		s = Story{
			Introduction: paragraphs[0],
			Development:  strings.Join(paragraphs[1:len(paragraphs)-1], "\n\n"),
			Resolution:   paragraphs[len(paragraphs)-1],
		}
	default:
		sentences := splitSentences(strings.Join(paragraphs, " "))
		if len(sentences) < 3 {
			return Story{}, nerrors.NewValidationError("", "text",
				fmt.Sprintf("text has %d sentences, a story needs at least 3", len(sentences)))
		}
		third := len(sentences) / 3
		s = Story{
			Introduction: strings.Join(sentences[:third], " "),
			Development:  strings.Join(sentences[third:2*third+len(sentences)%3], " "),
			Resolution:   strings.Join(sentences[2*third+len(sentences)%3:], " "),
		}
	}

	s.WordCount = CountWords(s.Text())
	return s, nil
}

// splitSentences breaks text on terminal punctuation, keeping the
// punctuation with its sentence.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder
	runes := []rune(text)
	for i, r := range runes {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			atEnd := i == len(runes)-1
			followedBySpace := !atEnd && (runes[i+1] == ' ' || runes[i+1] == '\n')
			if atEnd || followedBySpace {
				if s := strings.TrimSpace(current.String()); s != "" {
					sentences = append(sentences, s)
				}
				current.Reset()
			}
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}
