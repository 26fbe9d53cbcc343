package tts

import (
	"context"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	nerrors "github.com/narratron/narratron/pkg/narratron/errors"
)

// EspeakSynthesizer drives the espeak-ng engine as a subprocess. It sounds
// robotic but works without network access, which makes it the offline rung
// of the narration chain.
type EspeakSynthesizer struct {
	binary string
	voice  string
	logger *slog.Logger
}

func NewEspeakSynthesizer(voice string, logger *slog.Logger) *EspeakSynthesizer {
	if voice == "" {
		voice = "es"
	}
	if logger == nil {
		logger = slog.Default()
	}
	binary, err := exec.LookPath("espeak-ng")
	if err != nil {
		binary, _ = exec.LookPath("espeak")
	}
	return &EspeakSynthesizer{
		binary: binary,
		voice:  voice,
		logger: logger.With("component", "tts.espeak"),
	}
}

func (e *EspeakSynthesizer) Name() string { return "espeak" }

func (e *EspeakSynthesizer) Available(_ context.Context) bool { return e.binary != "" }

func (e *EspeakSynthesizer) Synthesize(ctx context.Context, text string) ([]byte, string, error) {
	if e.binary == "" {
		return nil, "", nerrors.NewUpstreamError("tts", exec.ErrNotFound)
	}

	tmp, err := os.CreateTemp("", "narratron-*.wav")
	if err != nil {
		return nil, "", nerrors.NewUpstreamError("tts", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	cmd := exec.CommandContext(ctx, e.binary, "-v", e.voice, "-w", tmpPath, "--stdin")
	cmd.Stdin = strings.NewReader(text)
	if out, err := cmd.CombinedOutput(); err != nil {
		e.logger.Warn("espeak failed", "error", err, "output", strings.TrimSpace(string(out)))
		return nil, "", nerrors.NewUpstreamError("tts", err)
	}

	data, err := os.ReadFile(tmpPath)
	if err != nil {
		return nil, "", nerrors.NewUpstreamError("tts", err)
	}
	return data, "wav", nil
}
