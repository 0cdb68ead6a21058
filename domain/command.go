package domain

import (
	"teamspace/conversation"
	"teamspace/mediator"

	"github.com/google/uuid"
)

// Commands mutate state, queries only read. Each is answered by exactly one handler.

type CreateBoard struct {
	mediator.Returns[Board]
	Name   string `validate:"required,max=80"`
	UserID string `validate:"required"`
}

type ListBoards struct {
	mediator.Returns[[]Board]
}

type CreateTask struct {
	mediator.Returns[Task]
	BoardID     BoardID `validate:"gt=0"`
	Title       string  `validate:"required,max=120"`
	Description string  `validate:"max=2000"`
	UserID      string  `validate:"required"`
}

type MoveTask struct {
	mediator.Returns[Task]
	BoardID BoardID    `validate:"gt=0"`
	TaskID  uuid.UUID  `validate:"required"`
	Status  TaskStatus `validate:"required,oneof=todo in_progress done"`
	UserID  string     `validate:"required"`
}

type AssignTask struct {
	mediator.Returns[Task]
	BoardID       BoardID   `validate:"gt=0"`
	TaskID        uuid.UUID `validate:"required"`
	AssigneeID    string    `validate:"required"`
	AssigneeEmail string    `validate:"required,email"`
	UserID        string    `validate:"required"`
}

type DeleteTask struct {
	mediator.Returns[struct{}]
	BoardID BoardID   `validate:"gt=0"`
	TaskID  uuid.UUID `validate:"required"`
	UserID  string    `validate:"required"`
}

type GetBoardTasks struct {
	mediator.Returns[[]Task]
	BoardID BoardID `validate:"gt=0"`
}

type PostChatMessage struct {
	mediator.Returns[ChatMessage]
	Room    string `validate:"required,max=64,alphanumunicode"`
	Content string `validate:"required,max=2000"`
	UserID  string `validate:"required"`
	Author  string
}

type GetChatHistory struct {
	mediator.Returns[ChatPage]
	Room   string `validate:"required,max=64"`
	Cursor *string
}

// SearchMessages takes a raw query such as `/find invoice --room general --limit 5`.
type SearchMessages struct {
	mediator.Returns[[]SearchHit]
	Query string `validate:"required,max=500"`
}

type AskAssistant struct {
	mediator.Returns[AssistantReply]
	ConversationID string `validate:"required,max=128"`
	Prompt         string `validate:"required,max=4000"`
	UserID         string `validate:"required"`
}

type GetConversation struct {
	mediator.Returns[[]conversation.Message]
	ConversationID string `validate:"required,max=128"`
}

type ResetConversation struct {
	mediator.Returns[struct{}]
	ConversationID string `validate:"required,max=128"`
}

// Requests lists every request type the server dispatches.
func Requests() []any {
	return []any{
		CreateBoard{}, ListBoards{},
		CreateTask{}, MoveTask{}, AssignTask{}, DeleteTask{}, GetBoardTasks{},
		PostChatMessage{}, GetChatHistory{}, SearchMessages{},
		AskAssistant{}, GetConversation{}, ResetConversation{},
	}
}
