// Package server exposes the HTTP surface: task and reminder CRUD, the
// structured-intent endpoint, and the SSE stream that live reminder
// notifications are pushed through.
package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/google/uuid"

	"taskhub/internal/intent"
	"taskhub/internal/notify"
	"taskhub/internal/service"
)

// Server wires HTTP handlers to the service layer. The caller's identity
// comes from the X-User-ID header; verifying it is the job of an auth proxy
// in front of this service.
type Server struct {
	users     *service.UserService
	tasks     *service.TaskService
	reminders *service.ReminderService
	tags      *service.TagService
	registry  *notify.Registry
	executor  *intent.Executor
}

func New(users *service.UserService, tasks *service.TaskService, reminders *service.ReminderService, tags *service.TagService, registry *notify.Registry, executor *intent.Executor) *Server {
	return &Server{
		users:     users,
		tasks:     tasks,
		reminders: reminders,
		tags:      tags,
		registry:  registry,
		executor:  executor,
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", s.handleHealth)

	mux.HandleFunc("POST /api/users", s.handleRegisterUser)
	mux.HandleFunc("GET /api/users/me", s.handleCurrentUser)

	mux.HandleFunc("GET /api/tasks", s.handleListTasks)
	mux.HandleFunc("POST /api/tasks", s.handleCreateTask)
	mux.HandleFunc("GET /api/tasks/{id}", s.handleGetTask)
	mux.HandleFunc("PATCH /api/tasks/{id}", s.handleUpdateTask)
	mux.HandleFunc("DELETE /api/tasks/{id}", s.handleDeleteTask)
	mux.HandleFunc("POST /api/tasks/{id}/complete", s.handleCompleteTask)

	mux.HandleFunc("GET /api/reminders", s.handleListReminders)
	mux.HandleFunc("POST /api/reminders", s.handleCreateReminder)
	mux.HandleFunc("GET /api/reminders/stream", s.handleReminderStream)
	mux.HandleFunc("GET /api/reminders/{id}", s.handleGetReminder)
	mux.HandleFunc("DELETE /api/reminders/{id}", s.handleDeleteReminder)

	mux.HandleFunc("POST /api/intent", s.handleIntent)

	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// userID extracts the caller identity from the X-User-ID header.
func userID(r *http.Request) (uuid.UUID, error) {
	raw := r.Header.Get("X-User-ID")
	if raw == "" {
		return uuid.Nil, errors.New("missing X-User-ID header")
	}
	return uuid.Parse(raw)
}

func pathID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(r.PathValue("id"))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("http: encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"detail": msg})
}

// writeServiceError maps the service error taxonomy onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrReminderInPast),
		errors.Is(err, service.ErrReminderLimit),
		errors.Is(err, service.ErrTitleRequired),
		errors.Is(err, service.ErrInvalidInterval):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		log.Printf("http: internal error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
