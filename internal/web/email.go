package web

import (
	"net/http"

	"jazzy/internal/logger"
	"jazzy/internal/model"
)

func (s *Server) handleListEmails(w http.ResponseWriter, r *http.Request) {
	if s.svc.Email == nil {
		serviceUnavailable(w)
		return
	}

	items, err := s.svc.Email.List(r.Context())
	if err != nil {
		logger.C(r.Context()).Error().Err(err).Msg("failed to list emails")
		writeError(w, http.StatusInternalServerError, "failed to fetch emails")
		return
	}
	if items == nil {
		items = []model.EmailSummary{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"emails": items})
}

func (s *Server) handleMarkEmailRead(w http.ResponseWriter, r *http.Request) {
	if s.svc.Email == nil {
		serviceUnavailable(w)
		return
	}

	var req struct {
		RowIndex int `json:"rowIndex"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.RowIndex == 0 {
		writeError(w, http.StatusBadRequest, "rowIndex is required")
		return
	}

	if err := s.svc.Email.MarkRead(r.Context(), req.RowIndex); err != nil {
		logger.C(r.Context()).Error().Err(err).Int("row", req.RowIndex).Msg("failed to mark email read")
		writeError(w, http.StatusInternalServerError, "failed to mark email read")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleMarkEmailReviewed(w http.ResponseWriter, r *http.Request) {
	if s.svc.Email == nil {
		serviceUnavailable(w)
		return
	}

	var req struct {
		RowIndex int `json:"rowIndex"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.RowIndex == 0 {
		writeError(w, http.StatusBadRequest, "rowIndex is required")
		return
	}

	if err := s.svc.Email.MarkReviewed(r.Context(), req.RowIndex); err != nil {
		logger.C(r.Context()).Error().Err(err).Int("row", req.RowIndex).Msg("failed to mark email reviewed")
		writeError(w, http.StatusInternalServerError, "failed to mark email reviewed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

type emailDraftRequest struct {
	From         string `json:"from"`
	Subject      string `json:"subject"`
	Summary      string `json:"summary"`
	Instructions string `json:"instructions"`
	ThreadID     string `json:"threadId"`
}

func (s *Server) handleCreateEmailDraft(w http.ResponseWriter, r *http.Request) {
	if s.svc.Email == nil {
		serviceUnavailable(w)
		return
	}

	var req emailDraftRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Subject == "" || req.Instructions == "" {
		writeError(w, http.StatusBadRequest, "subject and instructions are required")
		return
	}

	if err := s.svc.Email.CreateDraft(r.Context(), req.From, req.Subject, req.Summary, req.Instructions, req.ThreadID); err != nil {
		logger.C(r.Context()).Error().Err(err).Msg("failed to create email draft")
		writeError(w, http.StatusBadGateway, "failed to create email draft")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleDraftEmailReply(w http.ResponseWriter, r *http.Request) {
	if s.svc.Email == nil {
		serviceUnavailable(w)
		return
	}

	var req emailDraftRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Subject == "" || req.Summary == "" {
		writeError(w, http.StatusBadRequest, "email details are required")
		return
	}

	draft, err := s.svc.Email.DraftReply(r.Context(), req.From, req.Subject, req.Summary, req.Instructions)
	if err != nil {
		logger.C(r.Context()).Error().Err(err).Msg("failed to draft email reply")
		writeError(w, http.StatusInternalServerError, "failed to draft email reply")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"draft": draft})
}
