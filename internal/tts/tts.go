// Package tts turns finished stories into audio. Synthesis follows the same
// degradation policy as generation: an online voice first, a local engine
// second, and a narration failure never takes the story down with it.
package tts

import "context"

// Synthesizer converts Spanish text to audio bytes.
type Synthesizer interface {
	// Name identifies the engine in logs.
	Name() string

	// Available reports whether the engine can be attempted at all.
	Available(ctx context.Context) bool

	// Synthesize renders the text, returning the audio data and its file
	// extension (without the dot).
	Synthesize(ctx context.Context, text string) ([]byte, string, error)
}
