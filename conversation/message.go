package conversation

import "time"

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCall is a function invocation requested by the model.
type ToolCall struct {
	ID   string         `json:"id"`
	Name string         `json:"name"`
	Args map[string]any `json:"args,omitempty"`
}

// Message is one entry of a conversation. Assistant messages may carry tool
// calls; tool messages answer one call through ToolCallID and ToolName.
type Message struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	ToolName   string     `json:"tool_name,omitempty"`
	At         time.Time  `json:"at"`
}

func (m Message) HasToolCalls() bool { return len(m.ToolCalls) > 0 }

type ToolParam struct {
	Name        string
	Type        string // string, integer, number, boolean
	Description string
	Required    bool
}

// Tool describes a function the model may call.
type Tool struct {
	Name        string
	Description string
	Params      []ToolParam
}
