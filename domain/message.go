package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	GeneralRoom      = "general"
	GeneralChatGroup = "GeneralChat"
)

// ChatMessage is immutable once posted. Content is stored already moderated.
type ChatMessage struct {
	ID       uuid.UUID `json:"id"`
	Room     string    `json:"room"`
	AuthorID string    `json:"author_id"`
	Author   string    `json:"author"`
	Content  string    `json:"content"`
	At       time.Time `json:"at"`
}

type ChatPage struct {
	Messages   []ChatMessage `json:"messages"`
	NextCursor *string       `json:"next_cursor,omitempty"`
}

type SearchHit struct {
	MessageID uuid.UUID `json:"message_id"`
	Room      string    `json:"room"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	Language  string    `json:"language,omitempty"`
	At        time.Time `json:"at"`
	Score     float64   `json:"score"`
}

// RoomGroup is the real-time group of a chat room. The general room maps to GeneralChat.
func RoomGroup(room string) string {
	if room == "" || room == GeneralRoom {
		return GeneralChatGroup
	}
	return "Room_" + room
}

type AssistantReply struct {
	ConversationID string `json:"conversation_id"`
	Content        string `json:"content"`
	ToolCalls      int    `json:"tool_calls"`
}
