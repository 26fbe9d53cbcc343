// Package story holds the template bank, the composer that fills it, and the
// structural validation applied to every generated narrative.
package story

import "strings"

// Story is a generated three-part narrative. It is transient: built per
// request, returned to the caller, never persisted.
type Story struct {
	Introduction string `json:"introduccion"`
	Development  string `json:"desarrollo"`
	Resolution   string `json:"desenlace"`
	WordCount    int    `json:"palabras"`
}

// Text joins the three sections into the final narrative.
func (s Story) Text() string {
	return strings.Join([]string{s.Introduction, s.Development, s.Resolution}, "\n\n")
}

// CountWords returns the whitespace-delimited word count of text.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// Attempt records one strategy's failure while falling through the chain.
// These are diagnostics, never surfaced to the end user as errors.
type Attempt struct {
	Strategy string `json:"estrategia"`
	Reason   string `json:"motivo"`
}

// Result is the tagged outcome of a generation request: a validated Story
// plus the name of the strategy that produced it, along with any failures
// recorded on the way down the fallback chain.
type Result struct {
	Story      Story     `json:"cuento"`
	Strategy   string    `json:"estrategia"`
	LengthFlag string    `json:"advertencia,omitempty"`
	Attempts   []Attempt `json:"intentos,omitempty"`
}
