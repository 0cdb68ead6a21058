package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"teamspace/contract"
	"teamspace/conversation"
	"teamspace/domain"
	"teamspace/domain/event"
	"teamspace/errors"
	"teamspace/result"

	"github.com/samber/lo"
)

const (
	MaxToolRounds = 3

	toolListBoards     = "list_boards"
	toolListBoardTasks = "list_board_tasks"

	DefaultSystemPrompt = "You are the assistant of a team workspace with kanban boards and chat rooms. " +
		"Use the tools to look up boards and tasks instead of guessing. Answer briefly."
)

var assistantTools = []conversation.Tool{
	{
		Name:        toolListBoards,
		Description: "List every board of the workspace with its id and name.",
	},
	{
		Name:        toolListBoardTasks,
		Description: "List the tasks of one board with their status and assignee.",
		Params: []conversation.ToolParam{
			{Name: "board_id", Type: "integer", Description: "Id of the board", Required: true},
		},
	},
}

// AssistantService runs the assistant conversations kept in the session cache.
type AssistantService struct {
	log          *slog.Logger
	model        contract.LanguageModel
	store        contract.ConversationStore
	tasks        contract.TaskRepository
	events       contract.Publisher
	systemPrompt string
	now          func() time.Time
}

func NewAssistantService(log *slog.Logger, model contract.LanguageModel, store contract.ConversationStore,
	tasks contract.TaskRepository, events contract.Publisher) *AssistantService {
	return &AssistantService{
		log:          log,
		model:        model,
		store:        store,
		tasks:        tasks,
		events:       events,
		systemPrompt: DefaultSystemPrompt,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// AskAssistant sends the prompt with the conversation so far.
// Requested tool calls are executed and the model asked again, up to MaxToolRounds times.
// A plain answer is appended to the session; an answer that needed tools replaces it
// with the full sequence, tool calls and results included.
func (s *AssistantService) AskAssistant(ctx context.Context, cmd domain.AskAssistant) result.Result[domain.AssistantReply] {
	if err := domain.Validate(cmd); err != nil {
		return result.FailureOf[domain.AssistantReply](err)
	}
	prompt := conversation.Message{Role: conversation.RoleUser, Content: cmd.Prompt, At: s.now()}
	working := append(s.store.GetMessages(cmd.ConversationID), prompt)
	system := conversation.Message{Role: conversation.RoleSystem, Content: s.systemPrompt}

	toolCalls := 0
	var reply conversation.Message
	for round := 0; ; round++ {
		var err error
		reply, err = s.model.Complete(ctx, append([]conversation.Message{system}, working...), assistantTools)
		if err != nil {
			return result.FailureOf[domain.AssistantReply](fmt.Errorf("assistant completion: %w", err))
		}
		working = append(working, reply)
		if !reply.HasToolCalls() {
			break
		}
		if round == MaxToolRounds {
			return result.FailureOf[domain.AssistantReply](fmt.Errorf("%w: %d", errors.ErrTooManyToolRounds, MaxToolRounds))
		}
		for _, call := range reply.ToolCalls {
			toolCalls++
			working = append(working, conversation.Message{
				Role:       conversation.RoleTool,
				Content:    s.runTool(ctx, call),
				ToolCallID: call.ID,
				ToolName:   call.Name,
				At:         s.now(),
			})
		}
	}

	if toolCalls == 0 {
		s.store.AddMessage(cmd.ConversationID, prompt)
		s.store.AddMessage(cmd.ConversationID, reply)
	} else {
		s.store.SetMessages(cmd.ConversationID, working)
	}

	s.events.Publish(ctx, event.AssistantReplied{
		ConversationID: cmd.ConversationID, UserID: cmd.UserID, Content: reply.Content, At: s.now(),
	})
	return result.Success(domain.AssistantReply{
		ConversationID: cmd.ConversationID,
		Content:        reply.Content,
		ToolCalls:      toolCalls,
	})
}

func (s *AssistantService) GetConversation(_ context.Context, query domain.GetConversation) result.Result[[]conversation.Message] {
	if err := domain.Validate(query); err != nil {
		return result.FailureOf[[]conversation.Message](err)
	}
	messages := s.store.GetMessages(query.ConversationID)
	if messages == nil {
		messages = []conversation.Message{}
	}
	return result.Success(messages)
}

func (s *AssistantService) ResetConversation(_ context.Context, cmd domain.ResetConversation) result.Result[struct{}] {
	if err := domain.Validate(cmd); err != nil {
		return result.FailureOf[struct{}](err)
	}
	s.store.SetMessages(cmd.ConversationID, nil)
	return result.Success(struct{}{})
}

// runTool returns the JSON answer of a tool call. Failures are reported to the model, not to the user.
func (s *AssistantService) runTool(ctx context.Context, call conversation.ToolCall) string {
	var out any
	var err error
	switch call.Name {
	case toolListBoards:
		var boards []domain.Board
		boards, err = s.tasks.ListBoards(ctx)
		out = lo.Map(boards, func(b domain.Board, _ int) map[string]any {
			return map[string]any{"id": b.ID, "name": b.Name}
		})
	case toolListBoardTasks:
		var boardID domain.BoardID
		if boardID, err = boardIDArg(call.Args); err == nil {
			var tasks []domain.Task
			tasks, err = s.tasks.ListTasks(ctx, boardID)
			out = lo.Map(tasks, func(t domain.Task, _ int) map[string]any {
				return map[string]any{"id": t.ID, "title": t.Title, "status": t.Status, "assignee": t.AssigneeID}
			})
		}
	default:
		err = fmt.Errorf("%w: %s", errors.ErrToolNotFound, call.Name)
	}
	if err != nil {
		s.log.Warn("Assistant tool failed", "tool", call.Name, "error", err)
		out = map[string]string{"error": err.Error()}
	}
	raw, err := json.Marshal(out)
	if err != nil {
		return fmt.Sprintf(`{"error":%q}`, err.Error())
	}
	return string(raw)
}

// boardIDArg accepts the number types a model may produce once arguments went through JSON.
func boardIDArg(args map[string]any) (domain.BoardID, error) {
	switch v := args["board_id"].(type) {
	case float64:
		return domain.BoardID(v), nil
	case int:
		return domain.BoardID(v), nil
	case int64:
		return domain.BoardID(v), nil
	case string:
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: board_id %q", errors.ErrValidation, v)
		}
		return domain.BoardID(id), nil
	default:
		return 0, fmt.Errorf("%w: board_id is required", errors.ErrValidation)
	}
}
