// Package domain contains core concepts of the workspace: boards, tasks, chat messages.
// No runtime, network, or storage logic should be added here.
package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type BoardID int64

type Board struct {
	ID        BoardID   `json:"id"`
	Name      string    `json:"name"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in_progress"
	StatusDone       TaskStatus = "done"
)

type Task struct {
	ID          uuid.UUID  `json:"id"`
	BoardID     BoardID    `json:"board_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      TaskStatus `json:"status"`
	AssigneeID  string     `json:"assignee_id,omitempty"`
	CreatedBy   string     `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func NewTask(id uuid.UUID, boardID BoardID, title, description, createdBy string, at time.Time) Task {
	return Task{
		ID:          id,
		BoardID:     boardID,
		Title:       title,
		Description: description,
		Status:      StatusTodo,
		CreatedBy:   createdBy,
		CreatedAt:   at,
		UpdatedAt:   at,
	}
}

// Move changes the status. It reports false when the task already had it.
func (t *Task) Move(status TaskStatus, at time.Time) bool {
	if t.Status == status {
		return false
	}
	t.Status = status
	t.UpdatedAt = at
	return true
}

func (t *Task) Assign(assigneeID string, at time.Time) bool {
	if t.AssigneeID == assigneeID {
		return false
	}
	t.AssigneeID = assigneeID
	t.UpdatedAt = at
	return true
}

// BoardGroup is the real-time group of everyone looking at a board.
func BoardGroup(id BoardID) string {
	return fmt.Sprintf("Board_%d", id)
}
