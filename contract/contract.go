//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"teamspace/conversation"
	"teamspace/domain"
	"teamspace/domain/search"
	"teamspace/mediator"

	"github.com/google/uuid"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// Publisher hands committed domain events to their handlers.
type Publisher interface {
	Publish(ctx context.Context, evt mediator.Event)
}

// Broadcaster pushes named JSON payloads to live connections, best-effort.
type Broadcaster interface {
	JoinGroup(connectionID, group string) error
	LeaveGroup(connectionID, group string) error
	SendToGroup(group, event string, payload any)
	SendToAll(event string, payload any)
	SendToUser(userID, event string, payload any)
}

type Mail struct {
	From    string
	To      string
	Subject string
	Body    string
}

// Mailer delivers one email. Implementations must not retry on their own.
type Mailer interface {
	Send(ctx context.Context, mail Mail) error
}

type TaskRepository interface {
	CreateBoard(ctx context.Context, board domain.Board) (domain.Board, error)
	GetBoard(ctx context.Context, id domain.BoardID) (domain.Board, error)
	ListBoards(ctx context.Context) ([]domain.Board, error)
	SaveTask(ctx context.Context, task domain.Task) error
	GetTask(ctx context.Context, boardID domain.BoardID, taskID uuid.UUID) (domain.Task, error)
	DeleteTask(ctx context.Context, boardID domain.BoardID, taskID uuid.UUID) error
	ListTasks(ctx context.Context, boardID domain.BoardID) ([]domain.Task, error)
}

type MessageRepository interface {
	StoreMessage(ctx context.Context, message domain.ChatMessage) error
	GetMessages(ctx context.Context, room string, cursor *string) ([]domain.ChatMessage, *string, error)
}

type MessageIndex interface {
	Index(ctx context.Context, message domain.ChatMessage) error
	Search(ctx context.Context, query search.Query) ([]domain.SearchHit, error)
}

type Censor interface {
	Censor(original string) string
}

// LanguageModel completes a conversation. The reply may ask for tool calls instead of text.
type LanguageModel interface {
	Complete(ctx context.Context, history []conversation.Message, tools []conversation.Tool) (conversation.Message, error)
}

type ConversationStore interface {
	GetMessages(conversationID string) []conversation.Message
	AddMessage(conversationID string, message conversation.Message)
	SetMessages(conversationID string, messages []conversation.Message)
}
