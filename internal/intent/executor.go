// Package intent executes structured commands produced by an external
// natural-language interpreter. The interpreter itself is a collaborator:
// it hands over an already-resolved Command, and the executor dispatches it
// synchronously through the task service with user isolation intact.
package intent

import (
	"context"

	"github.com/google/uuid"

	"taskhub/internal/model"
	"taskhub/internal/service"
)

// Action names the operations an interpreted command can request.
type Action string

const (
	ActionAdd      Action = "add"
	ActionList     Action = "list"
	ActionComplete Action = "complete"
	ActionUpdate   Action = "update"
	ActionDelete   Action = "delete"
)

// Status filters for list commands.
type StatusFilter string

const (
	StatusAll       StatusFilter = "all"
	StatusPending   StatusFilter = "pending"
	StatusCompleted StatusFilter = "completed"
)

// Command is the structured output of the interpretation layer.
type Command struct {
	Action             Action
	Title              string
	NewTitle           string
	TaskID             *uuid.UUID
	StatusFilter       StatusFilter
	Confidence         float64
	NeedsClarification bool
	Clarification      string
}

// Result reports what a command execution did.
type Result struct {
	Success      bool
	Action       Action
	Task         *model.Task
	Tasks        []model.Task
	ErrorMessage string
}

// Executor bridges interpreted commands to the task service.
type Executor struct {
	tasks *service.TaskService
}

func NewExecutor(tasks *service.TaskService) *Executor {
	return &Executor{tasks: tasks}
}

// Execute dispatches one command for the given user.
func (e *Executor) Execute(ctx context.Context, userID uuid.UUID, cmd Command) Result {
	if cmd.NeedsClarification {
		return Result{Success: false, Action: cmd.Action, ErrorMessage: cmd.Clarification}
	}

	switch cmd.Action {
	case ActionAdd:
		return e.executeAdd(ctx, userID, cmd)
	case ActionList:
		return e.executeList(ctx, userID, cmd)
	case ActionComplete:
		return e.executeComplete(ctx, userID, cmd)
	case ActionUpdate:
		return e.executeUpdate(ctx, userID, cmd)
	case ActionDelete:
		return e.executeDelete(ctx, userID, cmd)
	default:
		return Result{
			Success:      false,
			Action:       cmd.Action,
			ErrorMessage: "Unknown action. Please try rephrasing your request.",
		}
	}
}

func (e *Executor) executeAdd(ctx context.Context, userID uuid.UUID, cmd Command) Result {
	if cmd.Title == "" {
		return Result{Success: false, Action: ActionAdd, ErrorMessage: "Please specify a title for the task."}
	}
	task, err := e.tasks.Create(ctx, userID, service.TaskInput{Title: cmd.Title})
	if err != nil {
		return Result{Success: false, Action: ActionAdd, ErrorMessage: "Failed to create task. Please try again."}
	}
	return Result{Success: true, Action: ActionAdd, Task: task}
}

func (e *Executor) executeList(ctx context.Context, userID uuid.UUID, cmd Command) Result {
	var completed *bool
	switch cmd.StatusFilter {
	case StatusPending:
		v := false
		completed = &v
	case StatusCompleted:
		v := true
		completed = &v
	}
	tasks, err := e.tasks.List(ctx, userID, completed)
	if err != nil {
		return Result{Success: false, Action: ActionList, ErrorMessage: "Failed to list tasks. Please try again."}
	}
	return Result{Success: true, Action: ActionList, Tasks: tasks}
}

func (e *Executor) executeComplete(ctx context.Context, userID uuid.UUID, cmd Command) Result {
	if cmd.TaskID == nil {
		return Result{Success: false, Action: ActionComplete, ErrorMessage: "Which task would you like to complete?"}
	}
	res, err := e.tasks.Complete(ctx, userID, *cmd.TaskID)
	if err != nil {
		return Result{Success: false, Action: ActionComplete, ErrorMessage: "Could not find that task."}
	}
	return Result{Success: true, Action: ActionComplete, Task: res.Task}
}

func (e *Executor) executeUpdate(ctx context.Context, userID uuid.UUID, cmd Command) Result {
	if cmd.TaskID == nil {
		return Result{Success: false, Action: ActionUpdate, ErrorMessage: "Which task would you like to update?"}
	}
	if cmd.NewTitle == "" {
		return Result{Success: false, Action: ActionUpdate, ErrorMessage: "What should the new title be?"}
	}
	task, err := e.tasks.Update(ctx, userID, *cmd.TaskID, service.TaskPatch{Title: &cmd.NewTitle})
	if err != nil {
		return Result{Success: false, Action: ActionUpdate, ErrorMessage: "Could not find that task."}
	}
	return Result{Success: true, Action: ActionUpdate, Task: task}
}

func (e *Executor) executeDelete(ctx context.Context, userID uuid.UUID, cmd Command) Result {
	if cmd.TaskID == nil {
		return Result{Success: false, Action: ActionDelete, ErrorMessage: "Which task would you like to delete?"}
	}
	if err := e.tasks.Delete(ctx, userID, *cmd.TaskID, false); err != nil {
		return Result{Success: false, Action: ActionDelete, ErrorMessage: "Could not find that task."}
	}
	return Result{Success: true, Action: ActionDelete}
}
