package web

import (
	"net/http"

	"jazzy/internal/logger"
	"jazzy/internal/model"
)

func (s *Server) handleListReminders(w http.ResponseWriter, r *http.Request) {
	if s.svc.Reminders == nil {
		serviceUnavailable(w)
		return
	}

	items, err := s.svc.Reminders.List(r.Context())
	if err != nil {
		logger.C(r.Context()).Error().Err(err).Msg("failed to list reminders")
		writeError(w, http.StatusInternalServerError, "failed to fetch reminders")
		return
	}
	if items == nil {
		items = []model.Reminder{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"reminders": items})
}

func (s *Server) handleAddReminder(w http.ResponseWriter, r *http.Request) {
	if s.svc.Reminders == nil {
		serviceUnavailable(w)
		return
	}

	var req struct {
		Task    string `json:"task"`
		DueDate string `json:"dueDate"`
		List    string `json:"list"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Task == "" {
		writeError(w, http.StatusBadRequest, "task is required")
		return
	}

	if err := s.svc.Reminders.Add(r.Context(), req.Task, req.DueDate, req.List); err != nil {
		logger.C(r.Context()).Error().Err(err).Msg("failed to add reminder")
		writeError(w, http.StatusInternalServerError, "failed to add reminder")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Reminder added!"})
}

func (s *Server) handleCompleteReminder(w http.ResponseWriter, r *http.Request) {
	if s.svc.Reminders == nil {
		serviceUnavailable(w)
		return
	}

	var req struct {
		RowNumber int `json:"rowNumber"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.RowNumber == 0 {
		writeError(w, http.StatusBadRequest, "rowNumber is required")
		return
	}

	if err := s.svc.Reminders.Complete(r.Context(), req.RowNumber); err != nil {
		logger.C(r.Context()).Error().Err(err).Int("row", req.RowNumber).Msg("failed to complete reminder")
		writeError(w, http.StatusInternalServerError, "failed to complete reminder")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
