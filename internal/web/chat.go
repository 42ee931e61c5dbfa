package web

import (
	"errors"
	"net/http"
	"strconv"

	"jazzy/internal/logger"
	"jazzy/internal/model"
	"jazzy/internal/tts"
)

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if s.svc.Chat == nil {
		serviceUnavailable(w)
		return
	}

	var req struct {
		Messages []model.ChatMessage `json:"messages"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.Messages) == 0 {
		writeError(w, http.StatusBadRequest, "messages are required")
		return
	}

	content, err := s.svc.Chat.Reply(r.Context(), req.Messages)
	if err != nil {
		logger.C(r.Context()).Error().Err(err).Msg("chat reply failed")
		writeError(w, http.StatusInternalServerError, "failed to generate reply")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"content": content})
}

func (s *Server) handleSpeech(w http.ResponseWriter, r *http.Request) {
	if s.svc.Speech == nil {
		serviceUnavailable(w)
		return
	}

	var req struct {
		Text string `json:"text"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	audio, err := s.svc.Speech.Synthesize(r.Context(), req.Text)
	if err != nil {
		var upstream *tts.UpstreamError
		switch {
		case errors.As(err, &upstream):
			writeError(w, upstream.Status, "speech synthesis failed")
		case errors.Is(err, tts.ErrNotConfigured):
			writeError(w, http.StatusInternalServerError, "speech synthesis not configured")
		default:
			logger.C(r.Context()).Error().Err(err).Msg("speech synthesis failed")
			writeError(w, http.StatusInternalServerError, "speech synthesis failed")
		}
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Content-Length", strconv.Itoa(len(audio)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(audio)
}
