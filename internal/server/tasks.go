package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"taskhub/internal/intent"
	"taskhub/internal/model"
	"taskhub/internal/service"
)

type recurrenceRequest struct {
	Frequency string `json:"frequency"`
	Interval  int    `json:"interval"`
	EndType   string `json:"end_type"`
	EndCount  *int   `json:"end_count,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
}

type createTaskRequest struct {
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Priority    int                `json:"priority"`
	Due         *time.Time         `json:"due"`
	TagIDs      []uuid.UUID        `json:"tag_ids"`
	Recurrence  *recurrenceRequest `json:"recurrence"`
}

type updateTaskRequest struct {
	Title        *string    `json:"title"`
	Description  *string    `json:"description"`
	Priority     *int       `json:"priority"`
	Due          *time.Time `json:"due"`
	UpdateSeries bool       `json:"update_series"`
}

type taskResponse struct {
	ID               uuid.UUID  `json:"id"`
	UserID           uuid.UUID  `json:"user_id"`
	Title            string     `json:"title"`
	Description      string     `json:"description,omitempty"`
	IsCompleted      bool       `json:"is_completed"`
	Priority         int        `json:"priority"`
	Due              *time.Time `json:"due,omitempty"`
	RecurrenceRuleID *uuid.UUID `json:"recurrence_rule_id,omitempty"`
	ParentTaskID     *uuid.UUID `json:"parent_task_id,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	Tags             []string   `json:"tags"`
}

func (s *Server) taskToResponse(r *http.Request, task *model.Task) taskResponse {
	tags, err := s.tags.ListForTask(r.Context(), task)
	if err != nil || tags == nil {
		tags = []string{}
	}
	return taskResponse{
		ID:               task.ID,
		UserID:           task.UserID,
		Title:            task.Title,
		Description:      task.Description,
		IsCompleted:      task.IsCompleted,
		Priority:         task.Priority,
		Due:              task.Due,
		RecurrenceRuleID: task.RecurrenceRuleID,
		ParentTaskID:     task.ParentTaskID,
		CreatedAt:        task.CreatedAt,
		UpdatedAt:        task.UpdatedAt,
		Tags:             tags,
	}
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	var completed *bool
	switch r.URL.Query().Get("status") {
	case "pending":
		v := false
		completed = &v
	case "completed":
		v := true
		completed = &v
	}

	tasks, err := s.tasks.List(r.Context(), uid, completed)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := make([]taskResponse, 0, len(tasks))
	for i := range tasks {
		out = append(out, s.taskToResponse(r, &tasks[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	input := service.TaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Due:         req.Due,
		TagIDs:      req.TagIDs,
	}
	if req.Recurrence != nil {
		rule := service.RuleInput{
			Frequency: req.Recurrence.Frequency,
			Interval:  req.Recurrence.Interval,
			EndType:   req.Recurrence.EndType,
			EndCount:  req.Recurrence.EndCount,
		}
		if req.Recurrence.EndDate != "" {
			endDate, err := time.Parse("2006-01-02", req.Recurrence.EndDate)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid end_date, expected YYYY-MM-DD")
				return
			}
			rule.EndDate = &endDate
		}
		input.Recurrence = &rule
	}

	task, err := s.tasks.Create(r.Context(), uid, input)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.taskToResponse(r, task))
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	taskID, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	task, err := s.tasks.Get(r.Context(), uid, taskID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.taskToResponse(r, task))
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	taskID, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	var req updateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	task, err := s.tasks.Update(r.Context(), uid, taskID, service.TaskPatch{
		Title:        req.Title,
		Description:  req.Description,
		Priority:     req.Priority,
		Due:          req.Due,
		UpdateSeries: req.UpdateSeries,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.taskToResponse(r, task))
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	taskID, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	deleteSeries := r.URL.Query().Get("delete_series") == "true"
	if err := s.tasks.Delete(r.Context(), uid, taskID, deleteSeries); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCompleteTask(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	taskID, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	result, err := s.tasks.Complete(r.Context(), uid, taskID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := struct {
		Task         taskResponse  `json:"task"`
		NextInstance *taskResponse `json:"next_instance,omitempty"`
	}{Task: s.taskToResponse(r, result.Task)}
	if result.NextInstance != nil {
		next := s.taskToResponse(r, result.NextInstance)
		resp.NextInstance = &next
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleIntent(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	var cmd struct {
		Action             string     `json:"action"`
		Title              string     `json:"title"`
		NewTitle           string     `json:"new_title"`
		TaskID             *uuid.UUID `json:"task_id"`
		StatusFilter       string     `json:"status_filter"`
		Confidence         float64    `json:"confidence"`
		NeedsClarification bool       `json:"needs_clarification"`
		Clarification      string     `json:"clarification"`
	}
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result := s.executor.Execute(r.Context(), uid, intent.Command{
		Action:             intent.Action(cmd.Action),
		Title:              cmd.Title,
		NewTitle:           cmd.NewTitle,
		TaskID:             cmd.TaskID,
		StatusFilter:       intent.StatusFilter(cmd.StatusFilter),
		Confidence:         cmd.Confidence,
		NeedsClarification: cmd.NeedsClarification,
		Clarification:      cmd.Clarification,
	})
	writeJSON(w, http.StatusOK, result)
}
