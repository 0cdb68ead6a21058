package ai

import (
	"context"
	"fmt"
	"time"

	"teamspace/conversation"
)

// EchoModel answers without any provider. It is used when no API key is configured.
type EchoModel struct{}

func (EchoModel) Complete(ctx context.Context, history []conversation.Message, _ []conversation.Tool) (conversation.Message, error) {
	if err := ctx.Err(); err != nil {
		return conversation.Message{}, err
	}
	prompt := ""
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == conversation.RoleUser {
			prompt = history[i].Content
			break
		}
	}
	return conversation.Message{
		Role:    conversation.RoleAssistant,
		Content: fmt.Sprintf("You said: %s", prompt),
		At:      time.Now().UTC(),
	}, nil
}
