package event

import (
	"time"

	"teamspace/domain"

	"github.com/google/uuid"
)

type Type string

const (
	BoardCreatedType      Type = "BoardCreated"
	TaskCreatedType       Type = "TaskCreated"
	TaskMovedType         Type = "TaskMoved"
	TaskAssignedType      Type = "TaskAssigned"
	TaskDeletedType       Type = "TaskDeleted"
	ChatMessagePostedType Type = "ChatMessagePosted"
	AssistantRepliedType  Type = "AssistantReplied"
)

type BoardCreated struct {
	BoardID   domain.BoardID
	BoardName string
	UserID    string
	At        time.Time
}

type TaskCreated struct {
	TaskID  uuid.UUID
	BoardID domain.BoardID
	Title   string
	UserID  string
	At      time.Time
}

type TaskMoved struct {
	TaskID  uuid.UUID
	BoardID domain.BoardID
	Title   string
	From    domain.TaskStatus
	To      domain.TaskStatus
	UserID  string
	At      time.Time
}

type TaskAssigned struct {
	TaskID        uuid.UUID
	BoardID       domain.BoardID
	Title         string
	AssigneeID    string
	AssigneeEmail string
	UserID        string
	At            time.Time
}

type TaskDeleted struct {
	TaskID  uuid.UUID
	BoardID domain.BoardID
	Title   string
	UserID  string
	At      time.Time
}

type ChatMessagePosted struct {
	Message domain.ChatMessage
}

type AssistantReplied struct {
	ConversationID string
	UserID         string
	Content        string
	At             time.Time
}

func (e BoardCreated) Name() string      { return string(BoardCreatedType) }
func (e TaskCreated) Name() string       { return string(TaskCreatedType) }
func (e TaskMoved) Name() string         { return string(TaskMovedType) }
func (e TaskAssigned) Name() string      { return string(TaskAssignedType) }
func (e TaskDeleted) Name() string       { return string(TaskDeletedType) }
func (e ChatMessagePosted) Name() string { return string(ChatMessagePostedType) }
func (e AssistantReplied) Name() string  { return string(AssistantRepliedType) }

func (e BoardCreated) OccurredAt() time.Time      { return e.At }
func (e TaskCreated) OccurredAt() time.Time       { return e.At }
func (e TaskMoved) OccurredAt() time.Time         { return e.At }
func (e TaskAssigned) OccurredAt() time.Time      { return e.At }
func (e TaskDeleted) OccurredAt() time.Time       { return e.At }
func (e ChatMessagePosted) OccurredAt() time.Time { return e.Message.At }
func (e AssistantReplied) OccurredAt() time.Time  { return e.At }
