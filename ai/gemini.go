// Package ai adapts language model providers to the assistant.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"teamspace/conversation"
	"teamspace/errors"

	"github.com/google/generative-ai-go/genai"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"
)

const (
	DefaultGeminiModel = "gemini-2.0-flash"
	maxConcurrentCalls = 3
	minCallInterval    = 350 * time.Millisecond
)

// GeminiModel completes conversations with Google Gemini and its function calling.
// Calls are throttled: at most three in flight and a minimal interval between two starts.
type GeminiModel struct {
	log     *slog.Logger
	client  *genai.Client
	name    string
	sem     chan struct{}
	limiter *rate.Limiter
}

func NewGeminiModel(ctx context.Context, apiKey, modelName string, log *slog.Logger) (*GeminiModel, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	if modelName == "" {
		modelName = DefaultGeminiModel
	}
	return &GeminiModel{
		log:     log,
		client:  client,
		name:    modelName,
		sem:     make(chan struct{}, maxConcurrentCalls),
		limiter: rate.NewLimiter(rate.Every(minCallInterval), 1),
	}, nil
}

func (g *GeminiModel) Close() error {
	return g.client.Close()
}

func (g *GeminiModel) Complete(ctx context.Context, history []conversation.Message, tools []conversation.Tool) (conversation.Message, error) {
	release, err := g.acquire(ctx)
	if err != nil {
		return conversation.Message{}, err
	}
	defer release()

	system, contents := toContents(history)
	if len(contents) == 0 {
		return conversation.Message{}, fmt.Errorf("empty conversation")
	}

	// A model value per call: system instruction and tools differ between conversations
	model := g.client.GenerativeModel(g.name)
	model.SetTemperature(0.3)
	model.SetMaxOutputTokens(2048)
	if system != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}
	if len(tools) > 0 {
		model.Tools = []*genai.Tool{toTool(tools)}
	}

	chat := model.StartChat()
	last := contents[len(contents)-1]
	chat.History = contents[:len(contents)-1]

	start := time.Now()
	resp, err := chat.SendMessage(ctx, last.Parts...)
	if err != nil {
		return conversation.Message{}, fmt.Errorf("failed to generate response: %w", err)
	}
	g.log.Debug("Gemini completion", "model", g.name, "duration_ms", time.Since(start).Milliseconds())
	return fromResponse(resp, time.Now().UTC())
}

func (g *GeminiModel) acquire(ctx context.Context) (func(), error) {
	select {
	case g.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if err := g.limiter.Wait(ctx); err != nil {
		<-g.sem
		return nil, err
	}
	return func() { <-g.sem }, nil
}

// toContents maps the conversation onto Gemini turns. System messages are merged into the
// system instruction, assistant turns become "model" and tool results are function responses.
func toContents(history []conversation.Message) (string, []*genai.Content) {
	var system []string
	var contents []*genai.Content
	for _, m := range history {
		switch m.Role {
		case conversation.RoleSystem:
			system = append(system, m.Content)
		case conversation.RoleUser:
			contents = append(contents, &genai.Content{Role: "user", Parts: []genai.Part{genai.Text(m.Content)}})
		case conversation.RoleAssistant:
			var parts []genai.Part
			if m.Content != "" {
				parts = append(parts, genai.Text(m.Content))
			}
			for _, call := range m.ToolCalls {
				parts = append(parts, genai.FunctionCall{Name: call.Name, Args: call.Args})
			}
			if len(parts) > 0 {
				contents = append(contents, &genai.Content{Role: "model", Parts: parts})
			}
		case conversation.RoleTool:
			part := genai.FunctionResponse{Name: m.ToolName, Response: toolResponse(m.Content)}
			// Consecutive tool results answer the same model turn
			if n := len(contents); n > 0 && contents[n-1].Role == "user" && isFunctionResponse(contents[n-1]) {
				contents[n-1].Parts = append(contents[n-1].Parts, part)
				continue
			}
			contents = append(contents, &genai.Content{Role: "user", Parts: []genai.Part{part}})
		}
	}
	return strings.Join(system, "\n\n"), contents
}

func isFunctionResponse(c *genai.Content) bool {
	for _, p := range c.Parts {
		if _, ok := p.(genai.FunctionResponse); !ok {
			return false
		}
	}
	return len(c.Parts) > 0
}

func toolResponse(content string) map[string]any {
	var object map[string]any
	if err := json.Unmarshal([]byte(content), &object); err == nil {
		return object
	}
	var anything any
	if err := json.Unmarshal([]byte(content), &anything); err == nil {
		return map[string]any{"result": anything}
	}
	return map[string]any{"result": content}
}

func toTool(tools []conversation.Tool) *genai.Tool {
	declarations := make([]*genai.FunctionDeclaration, 0, len(tools))
	for _, t := range tools {
		schema := &genai.Schema{Type: genai.TypeObject, Properties: map[string]*genai.Schema{}}
		for _, p := range t.Params {
			schema.Properties[p.Name] = &genai.Schema{Type: schemaType(p.Type), Description: p.Description}
			if p.Required {
				schema.Required = append(schema.Required, p.Name)
			}
		}
		declarations = append(declarations, &genai.FunctionDeclaration{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  schema,
		})
	}
	return &genai.Tool{FunctionDeclarations: declarations}
}

func schemaType(t string) genai.Type {
	switch t {
	case "integer":
		return genai.TypeInteger
	case "number":
		return genai.TypeNumber
	case "boolean":
		return genai.TypeBoolean
	default:
		return genai.TypeString
	}
}

func fromResponse(resp *genai.GenerateContentResponse, at time.Time) (conversation.Message, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return conversation.Message{}, errors.ErrEmptyCompletion
	}
	reply := conversation.Message{Role: conversation.RoleAssistant, At: at}
	var text strings.Builder
	for i, part := range resp.Candidates[0].Content.Parts {
		switch p := part.(type) {
		case genai.Text:
			text.WriteString(string(p))
		case genai.FunctionCall:
			reply.ToolCalls = append(reply.ToolCalls, conversation.ToolCall{
				ID:   fmt.Sprintf("%s-%d", p.Name, i),
				Name: p.Name,
				Args: p.Args,
			})
		}
	}
	reply.Content = text.String()
	return reply, nil
}
