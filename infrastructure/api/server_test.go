package api

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"teamspace/auth"
	"teamspace/domain"
	"teamspace/errors"
	"teamspace/mediator"
	"teamspace/result"
	"teamspace/runtime"

	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

const secret = "my_strong_and_long_secret_key_2026"

var boardFailures = map[string]error{
	"missing":   errors.ErrNotFound,
	"forbidden": errors.ErrForbidden,
}

type fixture struct {
	server  *Server
	handler http.Handler
	hub     *runtime.Hub
	tokens  *auth.Tokens
	created chan domain.CreateBoard
	asked   chan domain.AskAssistant
	deleted chan domain.DeleteTask
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	f := &fixture{
		hub:     runtime.NewHub(log),
		tokens:  auth.NewTokens(secret, time.Hour),
		created: make(chan domain.CreateBoard, 1),
		asked:   make(chan domain.AskAssistant, 1),
		deleted: make(chan domain.DeleteTask, 1),
	}

	b := mediator.NewBuilder(log, mediator.NewEventBus(log, time.Second))
	mediator.Register[domain.ListBoards, []domain.Board](b, func(_ context.Context, _ domain.ListBoards) result.Result[[]domain.Board] {
		return result.Success([]domain.Board{{ID: 1, Name: "Roadmap", CreatedBy: "u1"}})
	})
	mediator.Register[domain.CreateBoard, domain.Board](b, func(_ context.Context, q domain.CreateBoard) result.Result[domain.Board] {
		f.created <- q
		if err, ok := boardFailures[q.Name]; ok {
			return result.FailureOf[domain.Board](err)
		}
		if q.Name == "" {
			return result.FailureOf[domain.Board](fmt.Errorf("%w: name is required", errors.ErrValidation))
		}
		return result.Success(domain.Board{ID: 7, Name: q.Name, CreatedBy: q.UserID})
	})
	mediator.Register[domain.MoveTask, domain.Task](b, func(_ context.Context, _ domain.MoveTask) result.Result[domain.Task] {
		return result.Failure[domain.Task]("board is archived")
	})
	mediator.Register[domain.DeleteTask, struct{}](b, func(_ context.Context, q domain.DeleteTask) result.Result[struct{}] {
		f.deleted <- q
		return result.Success(struct{}{})
	})
	mediator.Register[domain.AskAssistant, domain.AssistantReply](b, func(_ context.Context, q domain.AskAssistant) result.Result[domain.AssistantReply] {
		f.asked <- q
		return result.Success(domain.AssistantReply{ConversationID: q.ConversationID, Content: "Hi"})
	})
	m, err := b.Build()
	require.NoError(t, err)

	f.server = NewServer(log, Config{Heartbeat: 50 * time.Millisecond}, m, f.hub, runtime.NewPresence(), f.tokens)
	f.server.newID = func() string { return "conn-1" }
	f.handler = f.server.Routes()
	return f
}

func (f *fixture) token(t *testing.T, userID, name string) string {
	t.Helper()
	signed, err := f.tokens.Generate(userID, name)
	require.NoError(t, err)
	return signed
}

func (f *fixture) do(t *testing.T, method, target, userID, body string) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(method, target, strings.NewReader(body))
	if userID != "" {
		r.Header.Set("Authorization", "Bearer "+f.token(t, userID, strings.ToUpper(userID)))
	}
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, r)
	return w
}

func TestServer_Maps_Results_To_Status_Codes(t *testing.T) {
	f := newFixture(t)
	taskPath := "/api/boards/3/tasks/" + uuid.NewString()

	tests := []struct {
		name       string
		method     string
		target     string
		body       string
		wantStatus int
		wantError  string
	}{
		{"Query succeeds", http.MethodGet, "/api/boards", "", http.StatusOK, ""},
		{"Command creates", http.MethodPost, "/api/boards", `{"name":"Roadmap"}`, http.StatusCreated, ""},
		{"Validation failure", http.MethodPost, "/api/boards", `{"name":""}`, http.StatusBadRequest, "validation failed: name is required"},
		{"Not found", http.MethodPost, "/api/boards", `{"name":"missing"}`, http.StatusNotFound, "not found"},
		{"Forbidden", http.MethodPost, "/api/boards", `{"name":"forbidden"}`, http.StatusForbidden, "forbidden"},
		{"Other failure", http.MethodPut, taskPath + "/status", `{"status":"done"}`, http.StatusUnprocessableEntity, "board is archived"},
		{"Delete has no body", http.MethodDelete, taskPath, "", http.StatusNoContent, ""},
		{"Malformed JSON", http.MethodPost, "/api/boards", `{"name":`, http.StatusBadRequest, ""},
		{"Bad board id", http.MethodGet, "/api/boards/abc/tasks", "", http.StatusBadRequest, "invalid board id"},
		{"Bad task id", http.MethodDelete, "/api/boards/3/tasks/nope", "", http.StatusBadRequest, "invalid task id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			// Drain captures of previous cases
			select {
			case <-f.created:
			default:
			}
			select {
			case <-f.deleted:
			default:
			}

			w := f.do(t, tt.method, tt.target, "u1", tt.body)

			req.Equal(tt.wantStatus, w.Code, w.Body.String())
			if tt.wantStatus == http.StatusNoContent {
				req.Empty(w.Body.String())
			}
			if tt.wantError != "" {
				var body errorBody
				req.NoError(json.Unmarshal(w.Body.Bytes(), &body))
				req.Equal(tt.wantError, body.Error)
			}
		})
	}
}

func TestServer_Takes_Identity_From_Token(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	// When alice creates a board
	w := f.do(t, http.MethodPost, "/api/boards", "alice", `{"name":"Roadmap","user_id":"mallory"}`)

	// Then the creator comes from the token, not the body
	req.Equal(http.StatusCreated, w.Code)
	req.Equal("alice", (<-f.created).UserID)
	var board domain.Board
	req.NoError(json.Unmarshal(w.Body.Bytes(), &board))
	req.Equal(domain.Board{ID: 7, Name: "Roadmap", CreatedBy: "alice"}, board)
}

func TestServer_Scopes_Conversations_Per_User(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/api/assistant/planning", "alice", `{"prompt":"Hello"}`)

	req.Equal(http.StatusOK, w.Code)
	asked := <-f.asked
	req.Equal("alice:planning", asked.ConversationID)
	req.Equal("alice", asked.UserID)
	req.Equal("Hello", asked.Prompt)
}

func TestServer_Requires_Token(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	req.Equal(http.StatusUnauthorized, f.do(t, http.MethodGet, "/api/boards", "", "").Code)
	req.Equal(http.StatusOK, f.do(t, http.MethodGet, "/healthz", "", "").Code)
}

func TestServer_Cancelled_Request(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := httptest.NewRequest(http.MethodGet, "/api/boards", nil).WithContext(ctx)
	r.Header.Set("Authorization", "Bearer "+f.token(t, "u1", "U1"))
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, r)

	req.Equal(StatusClientClosedRequest, w.Code)
}

func TestServer_Group_Membership(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	f.hub.Connect("c-alice", "alice", 4)

	// Unknown connection
	req.Equal(http.StatusNotFound, f.do(t, http.MethodPut, "/api/connections/c-ghost/groups/Board_1", "alice", "").Code)

	// Someone else's connection
	req.Equal(http.StatusForbidden, f.do(t, http.MethodPut, "/api/connections/c-alice/groups/Board_1", "bob", "").Code)
	req.Empty(f.hub.Groups("c-alice"))

	// Own connection
	req.Equal(http.StatusNoContent, f.do(t, http.MethodPut, "/api/connections/c-alice/groups/Board_1", "alice", "").Code)
	req.Equal([]string{"Board_1"}, f.hub.Groups("c-alice"))

	req.Equal(http.StatusNoContent, f.do(t, http.MethodDelete, "/api/connections/c-alice/groups/Board_1", "alice", "").Code)
	req.Empty(f.hub.Groups("c-alice"))
}

type sseEvent struct {
	name string
	data string
}

// readEvent returns the next named event, skipping comments such as heartbeats.
func readEvent(scanner *bufio.Scanner) (sseEvent, error) {
	var evt sseEvent
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			evt.name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			evt.data = strings.TrimPrefix(line, "data: ")
		case line == "" && evt.name != "":
			return evt, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return evt, err
	}
	return evt, fmt.Errorf("stream ended")
}

func TestServer_Event_Stream(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	srv := httptest.NewServer(f.handler)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/events?access_token="+f.token(t, "alice", "Alice"), nil)
	req.NoError(err)
	resp, err := http.DefaultClient.Do(r)
	req.NoError(err)
	defer resp.Body.Close()
	req.Equal(http.StatusOK, resp.StatusCode)
	req.Equal("text/event-stream", resp.Header.Get("Content-Type"))
	scanner := bufio.NewScanner(resp.Body)

	// Then the stream starts with the connection id
	evt, err := readEvent(scanner)
	req.NoError(err)
	req.Equal("Connected", evt.name)
	var connected PresencePayload
	req.NoError(json.Unmarshal([]byte(evt.data), &connected))
	req.Equal("conn-1", connected.ConnectionID)
	req.Equal("Alice", connected.Name)

	// And the caller sees their own arrival
	evt, err = readEvent(scanner)
	req.NoError(err)
	req.Equal("UserJoined", evt.name)

	// And the connection is in the general chat and listed as present
	req.Equal([]string{domain.GeneralChatGroup}, f.hub.Groups("conn-1"))
	presence := f.do(t, http.MethodGet, "/api/presence", "bob", "")
	req.JSONEq(`{"online":["Alice"]}`, presence.Body.String())

	// When a chat message is sent to the general group
	f.hub.SendToGroup(domain.GeneralChatGroup, "ChatMessagePosted", map[string]string{"Content": "hello"})

	// Then it is streamed after any heartbeat
	evt, err = readEvent(scanner)
	req.NoError(err)
	req.Equal("ChatMessagePosted", evt.name)
	req.JSONEq(`{"Content":"hello"}`, evt.data)

	// When the client goes away the connection is cleaned up
	cancel()
	req.Eventually(func() bool { return f.hub.ConnectionCount() == 0 }, 2*time.Second, 10*time.Millisecond)
	req.Empty(f.server.presence.Online())
}
