package server

import (
	"encoding/json"
	"net/http"
	"path"
	"strings"

	"github.com/narratron/narratron/internal/story"
	nerrors "github.com/narratron/narratron/pkg/narratron/errors"
)

const maxRequestBytes = 1 << 20

type generateRequest struct {
	Prompt   string `json:"prompt"`
	Duration string `json:"duracion"`
}

type generateResponse struct {
	Story          story.Story `json:"cuento"`
	Text           string      `json:"texto"`
	Prompt         string      `json:"prompt"`
	Strategy       string      `json:"estrategia"`
	Duration       string      `json:"duracion"`
	Warning        string      `json:"advertencia,omitempty"`
	AudioGenerated bool        `json:"audio_generado"`
	AudioPath      string      `json:"audio_path,omitempty"`
}

type narrateRequest struct {
	Text string `json:"texto"`
}

type narrateResponse struct {
	Audio string `json:"audio"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}

	var req generateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	req.Prompt = strings.TrimSpace(req.Prompt)
	if req.Prompt == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "prompt is required"})
		return
	}
	if req.Duration == "" {
		req.Duration = s.defaultDuration
	}

	res, err := s.generator.Generate(r.Context(), req.Prompt, req.Duration)
	if err != nil {
		// Only a template-bank failure reaches here; upstream outages
		// degrade inside the generator.
		s.logger.Error("generation failed", "error", err)
		writeJSON(w, http.StatusInternalServerError,
			errorResponse{Error: "no se pudo generar el cuento, intenta de nuevo"})
		return
	}

	resp := generateResponse{
		Story:    res.Story,
		Text:     res.Story.Text(),
		Prompt:   req.Prompt,
		Strategy: res.Strategy,
		Duration: req.Duration,
		Warning:  res.LengthFlag,
	}

	// Narration is best effort: the story ships even when every voice
	// engine is down.
	if name, err := s.narrator.Narrate(r.Context(), res.Story.Text()); err != nil {
		s.logger.Warn("narration unavailable for generated story", "error", err)
	} else {
		resp.AudioGenerated = true
		resp.AudioPath = "/static/audio/" + name
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleNarrate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}

	var req narrateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "texto is required"})
		return
	}

	name, err := s.narrator.Narrate(r.Context(), req.Text)
	if err != nil {
		s.logger.Warn("narration failed", "error", err)
		status := http.StatusServiceUnavailable
		if nerrors.IsValidation(err) {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, errorResponse{Error: "narración no disponible"})
		return
	}

	writeJSON(w, http.StatusOK, narrateResponse{Audio: "/static/audio/" + name})
}

func (s *Server) handleAudio(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}

	name := strings.TrimPrefix(r.URL.Path, "/static/audio/")
	if name == "" || name != path.Base(name) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
		return
	}

	data, err := s.store.Load(r.Context(), name)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
		return
	}

	switch path.Ext(name) {
	case ".mp3":
		w.Header().Set("Content-Type", "audio/mpeg")
	case ".wav":
		w.Header().Set("Content-Type", "audio/wav")
	default:
		w.Header().Set("Content-Type", "application/octet-stream")
	}
	w.Write(data)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{"status": "ok"}
	if s.health != nil {
		resp["estrategias"] = s.health(r.Context())
	}
	writeJSON(w, http.StatusOK, resp)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
