package ai

import (
	"context"
	"testing"
	"time"

	"teamspace/conversation"
	"teamspace/errors"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/require"
)

func TestToContents_Maps_Roles_And_Tool_Turns(t *testing.T) {
	req := require.New(t)
	history := []conversation.Message{
		{Role: conversation.RoleSystem, Content: "You help teams."},
		{Role: conversation.RoleUser, Content: "Which boards exist?"},
		{Role: conversation.RoleAssistant, ToolCalls: []conversation.ToolCall{{ID: "list_boards-0", Name: "list_boards"}}},
		{Role: conversation.RoleTool, ToolName: "list_boards", ToolCallID: "list_boards-0", Content: `[{"id":1,"name":"Roadmap"}]`},
		{Role: conversation.RoleAssistant, Content: "There is one board: Roadmap."},
	}

	system, contents := toContents(history)

	req.Equal("You help teams.", system)
	req.Len(contents, 4)
	req.Equal("user", contents[0].Role)
	req.Equal([]genai.Part{genai.Text("Which boards exist?")}, contents[0].Parts)
	req.Equal("model", contents[1].Role)
	req.Equal([]genai.Part{genai.FunctionCall{Name: "list_boards"}}, contents[1].Parts)
	req.Equal("user", contents[2].Role)
	req.Equal([]genai.Part{genai.FunctionResponse{
		Name:     "list_boards",
		Response: map[string]any{"result": []any{map[string]any{"id": float64(1), "name": "Roadmap"}}},
	}}, contents[2].Parts)
	req.Equal("model", contents[3].Role)
}

func TestToContents_Groups_Consecutive_Tool_Results(t *testing.T) {
	req := require.New(t)
	history := []conversation.Message{
		{Role: conversation.RoleUser, Content: "Tasks of boards 1 and 2?"},
		{Role: conversation.RoleAssistant, ToolCalls: []conversation.ToolCall{
			{Name: "list_board_tasks", Args: map[string]any{"board_id": 1}},
			{Name: "list_board_tasks", Args: map[string]any{"board_id": 2}},
		}},
		{Role: conversation.RoleTool, ToolName: "list_board_tasks", Content: `{"tasks":[]}`},
		{Role: conversation.RoleTool, ToolName: "list_board_tasks", Content: "not json"},
	}

	_, contents := toContents(history)

	req.Len(contents, 3)
	req.Len(contents[2].Parts, 2)
	req.Equal(genai.FunctionResponse{Name: "list_board_tasks", Response: map[string]any{"tasks": []any{}}}, contents[2].Parts[0])
	req.Equal(genai.FunctionResponse{Name: "list_board_tasks", Response: map[string]any{"result": "not json"}}, contents[2].Parts[1])
}

func TestToTool_Declares_Parameters(t *testing.T) {
	req := require.New(t)

	tool := toTool([]conversation.Tool{{
		Name:        "list_board_tasks",
		Description: "List the tasks of a board",
		Params:      []conversation.ToolParam{{Name: "board_id", Type: "integer", Description: "Board id", Required: true}},
	}})

	req.Len(tool.FunctionDeclarations, 1)
	decl := tool.FunctionDeclarations[0]
	req.Equal("list_board_tasks", decl.Name)
	req.Equal(genai.TypeObject, decl.Parameters.Type)
	req.Equal(genai.TypeInteger, decl.Parameters.Properties["board_id"].Type)
	req.Equal([]string{"board_id"}, decl.Parameters.Required)
}

func TestFromResponse(t *testing.T) {
	req := require.New(t)
	at := time.Now().UTC()

	// Given a candidate mixing text and a function call
	reply, err := fromResponse(&genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Role: "model", Parts: []genai.Part{
			genai.Text("Let me check. "),
			genai.FunctionCall{Name: "list_boards", Args: map[string]any{}},
		}}}},
	}, at)

	req.NoError(err)
	req.Equal(conversation.RoleAssistant, reply.Role)
	req.Equal("Let me check. ", reply.Content)
	req.Equal([]conversation.ToolCall{{ID: "list_boards-1", Name: "list_boards", Args: map[string]any{}}}, reply.ToolCalls)
	req.Equal(at, reply.At)

	// Given no candidate at all
	_, err = fromResponse(&genai.GenerateContentResponse{}, at)
	req.ErrorIs(err, errors.ErrEmptyCompletion)
}

func TestEchoModel(t *testing.T) {
	req := require.New(t)

	reply, err := EchoModel{}.Complete(context.Background(), []conversation.Message{
		{Role: conversation.RoleUser, Content: "first"},
		{Role: conversation.RoleAssistant, Content: "You said: first"},
		{Role: conversation.RoleUser, Content: "second"},
	}, nil)

	req.NoError(err)
	req.Equal("You said: second", reply.Content)
	req.False(reply.HasToolCalls())
}
