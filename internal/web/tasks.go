package web

import (
	"net/http"

	"jazzy/internal/logger"
	"jazzy/internal/model"
)

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	if s.svc.Tasks == nil {
		serviceUnavailable(w)
		return
	}

	items, err := s.svc.Tasks.List(r.Context())
	if err != nil {
		logger.C(r.Context()).Error().Err(err).Msg("failed to list work tasks")
		writeError(w, http.StatusInternalServerError, "failed to fetch work tasks")
		return
	}
	if items == nil {
		items = []model.WorkTask{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"tasks": items})
}

func (s *Server) handleAddTask(w http.ResponseWriter, r *http.Request) {
	if s.svc.Tasks == nil {
		serviceUnavailable(w)
		return
	}

	var req struct {
		Task    string `json:"task"`
		DueDate string `json:"dueDate"`
		Notes   string `json:"notes"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Task == "" {
		writeError(w, http.StatusBadRequest, "task title is required")
		return
	}

	if err := s.svc.Tasks.Add(r.Context(), req.Task, req.DueDate, req.Notes); err != nil {
		logger.C(r.Context()).Error().Err(err).Msg("failed to add work task")
		writeError(w, http.StatusBadGateway, "failed to add work task")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleCompleteTask(w http.ResponseWriter, r *http.Request) {
	if s.svc.Tasks == nil {
		serviceUnavailable(w)
		return
	}

	var req struct {
		Task   string `json:"task"`
		TaskID string `json:"taskId"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Task == "" {
		writeError(w, http.StatusBadRequest, "task title is required")
		return
	}

	if err := s.svc.Tasks.Complete(r.Context(), req.Task, req.TaskID); err != nil {
		logger.C(r.Context()).Error().Err(err).Msg("failed to complete work task")
		writeError(w, http.StatusBadGateway, "failed to complete work task")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "task": req.Task})
}
