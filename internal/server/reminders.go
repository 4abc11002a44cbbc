package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"taskhub/internal/model"
)

type createReminderRequest struct {
	TaskID   uuid.UUID `json:"task_id"`
	RemindAt time.Time `json:"remind_at"`
	Message  string    `json:"message"`
}

type reminderResponse struct {
	ID        uuid.UUID  `json:"id"`
	TaskID    uuid.UUID  `json:"task_id"`
	RemindAt  time.Time  `json:"remind_at"`
	Message   string     `json:"message,omitempty"`
	Sent      bool       `json:"sent"`
	SentAt    *time.Time `json:"sent_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func reminderToResponse(reminder *model.Reminder) reminderResponse {
	return reminderResponse{
		ID:        reminder.ID,
		TaskID:    reminder.TaskID,
		RemindAt:  reminder.RemindAt,
		Message:   reminder.Message,
		Sent:      reminder.Sent,
		SentAt:    reminder.SentAt,
		CreatedAt: reminder.CreatedAt,
	}
}

func (s *Server) handleListReminders(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	var taskID *uuid.UUID
	if raw := r.URL.Query().Get("task_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid task_id")
			return
		}
		taskID = &id
	}

	reminders, err := s.reminders.List(r.Context(), uid, taskID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := make([]reminderResponse, 0, len(reminders))
	for i := range reminders {
		out = append(out, reminderToResponse(&reminders[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateReminder(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	var req createReminderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	reminder, err := s.reminders.Create(r.Context(), uid, req.TaskID, req.RemindAt, req.Message)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, reminderToResponse(reminder))
}

func (s *Server) handleGetReminder(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	reminderID, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid reminder id")
		return
	}

	reminder, err := s.reminders.Get(r.Context(), uid, reminderID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reminderToResponse(reminder))
}

func (s *Server) handleDeleteReminder(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	reminderID, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid reminder id")
		return
	}

	deleted, err := s.reminders.Delete(r.Context(), uid, reminderID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "reminder not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleReminderStream is the SSE endpoint the web client keeps open for
// live reminder notifications. One stream per user; opening a second one
// closes the first.
func (s *Server) handleReminderStream(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	ch := s.registry.Connect(uid)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.registry.Disconnect(uid)
			return
		case n, open := <-ch:
			if !open {
				// Replaced by a newer connection; the registration now
				// belongs to it, so do not disconnect.
				return
			}
			payload, err := json.Marshal(n)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
		}
	}
}
