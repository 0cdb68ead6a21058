package event

import (
	"context"
	"log/slog"
	"time"

	"teamspace/contract"
	"teamspace/domain"
)

// Hub event names for connection lifecycle, sent by the transport rather than a domain event.
const (
	ConnectedEvent  = "Connected"
	UserJoinedEvent = "UserJoined"
	UserLeftEvent   = "UserLeft"
)

// Payloads keep the PascalCase field names clients already consume.

type BoardPayload struct {
	Type      string         `json:"Type"`
	BoardID   domain.BoardID `json:"BoardId"`
	Name      string         `json:"Name"`
	UserID    string         `json:"UserId"`
	Timestamp time.Time      `json:"Timestamp"`
}

type TaskPayload struct {
	Type       string         `json:"Type"`
	TaskID     string         `json:"TaskId"`
	BoardID    domain.BoardID `json:"BoardId"`
	Title      string         `json:"Title"`
	Status     string         `json:"Status,omitempty"`
	AssigneeID string         `json:"AssigneeId,omitempty"`
	UserID     string         `json:"UserId"`
	Timestamp  time.Time      `json:"Timestamp"`
}

type ChatPayload struct {
	Type      string    `json:"Type"`
	MessageID string    `json:"MessageId"`
	Room      string    `json:"Room"`
	AuthorID  string    `json:"AuthorId"`
	Author    string    `json:"Author"`
	Content   string    `json:"Content"`
	Timestamp time.Time `json:"Timestamp"`
}

type AssistantPayload struct {
	Type           string    `json:"Type"`
	ConversationID string    `json:"ConversationId"`
	Content        string    `json:"Content"`
	Timestamp      time.Time `json:"Timestamp"`
}

// RealtimeHandler forwards committed events to live connections.
// Board events go to everyone, task events to the board group,
// chat to the room group and assistant replies to the asking user.
type RealtimeHandler struct {
	log *slog.Logger
	hub contract.Broadcaster
}

func NewRealtimeHandler(log *slog.Logger, hub contract.Broadcaster) *RealtimeHandler {
	return &RealtimeHandler{log: log, hub: hub}
}

func (h *RealtimeHandler) OnBoardCreated(_ context.Context, e BoardCreated) error {
	h.hub.SendToAll(e.Name(), BoardPayload{
		Type:      e.Name(),
		BoardID:   e.BoardID,
		Name:      e.BoardName,
		UserID:    e.UserID,
		Timestamp: e.At,
	})
	return nil
}

func (h *RealtimeHandler) OnTaskCreated(_ context.Context, e TaskCreated) error {
	h.hub.SendToGroup(domain.BoardGroup(e.BoardID), e.Name(), TaskPayload{
		Type:      e.Name(),
		TaskID:    e.TaskID.String(),
		BoardID:   e.BoardID,
		Title:     e.Title,
		Status:    string(domain.StatusTodo),
		UserID:    e.UserID,
		Timestamp: e.At,
	})
	return nil
}

func (h *RealtimeHandler) OnTaskMoved(_ context.Context, e TaskMoved) error {
	h.hub.SendToGroup(domain.BoardGroup(e.BoardID), e.Name(), TaskPayload{
		Type:      e.Name(),
		TaskID:    e.TaskID.String(),
		BoardID:   e.BoardID,
		Title:     e.Title,
		Status:    string(e.To),
		UserID:    e.UserID,
		Timestamp: e.At,
	})
	return nil
}

// OnTaskAssigned notifies the board and, separately, every connection of the assignee.
func (h *RealtimeHandler) OnTaskAssigned(_ context.Context, e TaskAssigned) error {
	payload := TaskPayload{
		Type:       e.Name(),
		TaskID:     e.TaskID.String(),
		BoardID:    e.BoardID,
		Title:      e.Title,
		AssigneeID: e.AssigneeID,
		UserID:     e.UserID,
		Timestamp:  e.At,
	}
	h.hub.SendToGroup(domain.BoardGroup(e.BoardID), e.Name(), payload)
	h.hub.SendToUser(e.AssigneeID, e.Name(), payload)
	return nil
}

func (h *RealtimeHandler) OnTaskDeleted(_ context.Context, e TaskDeleted) error {
	h.hub.SendToGroup(domain.BoardGroup(e.BoardID), e.Name(), TaskPayload{
		Type:      e.Name(),
		TaskID:    e.TaskID.String(),
		BoardID:   e.BoardID,
		Title:     e.Title,
		UserID:    e.UserID,
		Timestamp: e.At,
	})
	return nil
}

func (h *RealtimeHandler) OnChatMessagePosted(_ context.Context, e ChatMessagePosted) error {
	msg := e.Message
	h.hub.SendToGroup(domain.RoomGroup(msg.Room), e.Name(), ChatPayload{
		Type:      e.Name(),
		MessageID: msg.ID.String(),
		Room:      msg.Room,
		AuthorID:  msg.AuthorID,
		Author:    msg.Author,
		Content:   msg.Content,
		Timestamp: msg.At,
	})
	return nil
}

func (h *RealtimeHandler) OnAssistantReplied(_ context.Context, e AssistantReplied) error {
	h.hub.SendToUser(e.UserID, e.Name(), AssistantPayload{
		Type:           e.Name(),
		ConversationID: e.ConversationID,
		Content:        e.Content,
		Timestamp:      e.At,
	})
	return nil
}
