package tts

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/narratron/narratron/internal/storage"
	nerrors "github.com/narratron/narratron/pkg/narratron/errors"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubSynth struct {
	name      string
	available bool
	data      []byte
	ext       string
	err       error
	calls     int
	lastText  string
}

func (s *stubSynth) Name() string { return s.name }
func (s *stubSynth) Available(_ context.Context) bool { return s.available }
func (s *stubSynth) Synthesize(_ context.Context, text string) ([]byte, string, error) {
	s.calls++
	s.lastText = text
	return s.data, s.ext, s.err
}

func TestNarratePrimaryWins(t *testing.T) {
	primary := &stubSynth{name: "google", available: true, data: []byte("mp3data"), ext: "mp3"}
	fallback := &stubSynth{name: "espeak", available: true, data: []byte("wavdata"), ext: "wav"}
	store := storage.NewFileSystem(t.TempDir())
	h := NewHandler(store, discardLogger(), primary, fallback)

	name, err := h.Narrate(context.Background(), "Había una vez un zorro.")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(name, ".mp3"), "artifact name %q", name)
	assert.Equal(t, 0, fallback.calls, "fallback should not run when primary succeeds")
	assert.True(t, store.Exists(context.Background(), name))
}

func TestNarrateFallsBackToSecondary(t *testing.T) {
	primary := &stubSynth{
		name: "google", available: true,
		err: nerrors.NewUpstreamError("tts", errors.New("no route to host")),
	}
	fallback := &stubSynth{name: "espeak", available: true, data: []byte("wavdata"), ext: "wav"}
	store := storage.NewFileSystem(t.TempDir())
	h := NewHandler(store, discardLogger(), primary, fallback)

	name, err := h.Narrate(context.Background(), "Un cuento.")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(name, ".wav"), "artifact name %q", name)
	assert.Equal(t, 1, primary.calls)
}

func TestNarrateSkipsUnavailableEngines(t *testing.T) {
	offline := &stubSynth{name: "espeak", available: false}
	online := &stubSynth{name: "google", available: true, data: []byte("mp3"), ext: "mp3"}
	store := storage.NewFileSystem(t.TempDir())
	h := NewHandler(store, discardLogger(), offline, online)

	_, err := h.Narrate(context.Background(), "Un cuento.")
	require.NoError(t, err)
	assert.Equal(t, 0, offline.calls)
}

func TestNarrateAllEnginesFail(t *testing.T) {
	a := &stubSynth{name: "google", available: true, err: errors.New("offline")}
	b := &stubSynth{name: "espeak", available: false}
	h := NewHandler(storage.NewFileSystem(t.TempDir()), discardLogger(), a, b)

	_, err := h.Narrate(context.Background(), "Un cuento.")
	require.Error(t, err)
	assert.True(t, nerrors.IsUpstream(err))
}

func TestNarrateCleansTextBeforeSynthesis(t *testing.T) {
	synth := &stubSynth{name: "google", available: true, data: []byte("mp3"), ext: "mp3"}
	h := NewHandler(storage.NewFileSystem(t.TempDir()), discardLogger(), synth)

	_, err := h.Narrate(context.Background(), "Primera parte.\n\nSegunda parte.\nFinal.")
	require.NoError(t, err)
	assert.Equal(t, "Primera parte. Segunda parte. Final.", synth.lastText)
	assert.NotContains(t, synth.lastText, "\n")
}

func TestNarrateEmptyText(t *testing.T) {
	h := NewHandler(storage.NewFileSystem(t.TempDir()), discardLogger(),
		&stubSynth{name: "google", available: true})

	_, err := h.Narrate(context.Background(), "  \n\n ")
	assert.True(t, nerrors.IsValidation(err))
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"hola", "hola."},
		{"uno.\n\ndos.", "uno. dos."},
		{"uno\ndos", "uno dos."},
		{"¿listo?", "¿listo?"},
		{"  espacios   dobles  ", "espacios dobles."},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, cleanText(tt.in), "cleanText(%q)", tt.in)
	}
}
