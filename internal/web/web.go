// Package web provides the HTTP API: the day-scoped calendar agenda plus the
// reminder, task, email, chat and speech endpoints the assistant UI polls.
package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"jazzy/internal/config"
	"jazzy/internal/ics"
	"jazzy/internal/logger"
	"jazzy/internal/model"
	"jazzy/internal/telemetry"
)

// CalendarService is the day-agenda engine.
type CalendarService interface {
	Day(ctx context.Context, source string, target *ics.Date) ([]model.CalendarEvent, error)
	Sources() []string
}

// ReminderService drives the reminder tabs.
type ReminderService interface {
	List(ctx context.Context) ([]model.Reminder, error)
	Add(ctx context.Context, task, dueDate, list string) error
	Complete(ctx context.Context, rowNumber int) error
}

// TaskService drives the work task tab and webhooks.
type TaskService interface {
	List(ctx context.Context) ([]model.WorkTask, error)
	Add(ctx context.Context, task, dueDate, notes string) error
	Complete(ctx context.Context, task, taskID string) error
}

// EmailService drives the triaged inbox.
type EmailService interface {
	List(ctx context.Context) ([]model.EmailSummary, error)
	MarkRead(ctx context.Context, rowIndex int) error
	MarkReviewed(ctx context.Context, rowIndex int) error
	CreateDraft(ctx context.Context, from, subject, summary, instructions, threadID string) error
	DraftReply(ctx context.Context, from, subject, summary, instructions string) (string, error)
}

// ChatService generates assistant replies.
type ChatService interface {
	Reply(ctx context.Context, conversation []model.ChatMessage) (string, error)
}

// SpeechService synthesizes spoken audio.
type SpeechService interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Services bundles everything the HTTP layer delegates to. Nil entries
// disable the matching routes with a 503.
type Services struct {
	Calendar  CalendarService
	Reminders ReminderService
	Tasks     TaskService
	Email     EmailService
	Chat      ChatService
	Speech    SpeechService
}

// Server assembles the router over the injected services.
type Server struct {
	cfg *config.Config
	svc Services
}

// NewServer constructs a new Server.
func NewServer(cfg *config.Config, svc Services) *Server {
	return &Server{cfg: cfg, svc: svc}
}

// Handler returns the assembled http.Handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	}))
	r.Use(requestID)
	r.Use(accessLog)
	r.Use(recoverJSON)
	r.Use(httpMetrics)

	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", telemetry.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/calendar/{source}", s.handleCalendarDay)

		r.Get("/reminders", s.handleListReminders)
		r.Post("/reminders", s.handleAddReminder)
		r.Post("/reminders/complete", s.handleCompleteReminder)

		r.Get("/tasks", s.handleListTasks)
		r.Post("/tasks", s.handleAddTask)
		r.Post("/tasks/complete", s.handleCompleteTask)

		r.Get("/emails", s.handleListEmails)
		r.Post("/emails/read", s.handleMarkEmailRead)
		r.Post("/emails/reviewed", s.handleMarkEmailReviewed)
		r.Post("/emails/draft", s.handleCreateEmailDraft)
		r.Post("/emails/draft-reply", s.handleDraftEmailReply)

		r.Post("/chat", s.handleChat)
		r.Post("/tts", s.handleSpeech)
	})

	h := http.Handler(r)
	if s.basicAuthEnabled() {
		h = s.basicAuthMiddleware(h)
	}
	return h
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// basicAuthEnabled reports whether HTTP Basic Auth is configured.
func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	// An empty username or password is treated as disabled.
	return s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// /health stays reachable without credentials.
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="Jazzy", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Get().Error().Err(err).Msg("failed to write JSON response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}

// decodeJSON reads the request body into v, answering a 400 itself on
// failure. Returns false when the caller should stop.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// serviceUnavailable answers when a route's backing service is not wired.
func serviceUnavailable(w http.ResponseWriter) {
	writeError(w, http.StatusServiceUnavailable, "service not configured")
}
