package event

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"teamspace/domain"
	"teamspace/mocks"

	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestRealtimeHandler_TaskCreated_Targets_Board_Group(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	hub := mocks.NewMockBroadcaster(ctrl)
	handler := NewRealtimeHandler(logs.GetLoggerFromLevel(slog.LevelDebug), hub)
	taskID := uuid.New()
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	var sent any
	// Given the hub expects exactly one group send for board 42
	hub.EXPECT().
		SendToGroup("Board_42", "TaskCreated", gomock.Any()).
		Do(func(_ string, _ string, payload any) { sent = payload }).
		Times(1)

	// When a task is created on board 42
	err := handler.OnTaskCreated(context.Background(), TaskCreated{
		TaskID: taskID, BoardID: 42, Title: "Write release notes", UserID: "u1", At: at,
	})

	// Then the serialized payload names the event in its Type field
	req.NoError(err)
	raw, err := json.Marshal(sent)
	req.NoError(err)
	var fields map[string]any
	req.NoError(json.Unmarshal(raw, &fields))
	req.Equal("TaskCreated", fields["Type"])
	req.Equal(taskID.String(), fields["TaskId"])
	req.Equal(float64(42), fields["BoardId"])
	req.Equal("Write release notes", fields["Title"])
	req.Equal("u1", fields["UserId"])
}

func TestRealtimeHandler_TaskAssigned_Reaches_Group_And_Assignee(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	hub := mocks.NewMockBroadcaster(ctrl)
	handler := NewRealtimeHandler(logs.GetLoggerFromLevel(slog.LevelDebug), hub)

	// Given the board group and the assignee are both expected
	gomock.InOrder(
		hub.EXPECT().SendToGroup("Board_7", "TaskAssigned", gomock.Any()),
		hub.EXPECT().SendToUser("bob", "TaskAssigned", gomock.Any()),
	)

	// When the task is assigned to bob
	err := handler.OnTaskAssigned(context.Background(), TaskAssigned{
		TaskID: uuid.New(), BoardID: 7, Title: "Review", AssigneeID: "bob", UserID: "alice", At: time.Now(),
	})

	// Then both sends happened
	req.NoError(err)
}

func TestRealtimeHandler_Routes_By_Event_Type(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	hub := mocks.NewMockBroadcaster(ctrl)
	handler := NewRealtimeHandler(logs.GetLoggerFromLevel(slog.LevelDebug), hub)
	ctx := context.Background()

	hub.EXPECT().SendToAll("BoardCreated", BoardPayload{
		Type: "BoardCreated", BoardID: 3, Name: "Roadmap", UserID: "u1",
	})
	hub.EXPECT().SendToGroup("Room_ops", "ChatMessagePosted", gomock.Any())
	hub.EXPECT().SendToGroup("GeneralChat", "ChatMessagePosted", gomock.Any())
	hub.EXPECT().SendToUser("u9", "AssistantReplied", AssistantPayload{
		Type: "AssistantReplied", ConversationID: "c1", Content: "Two boards",
	})

	req.NoError(handler.OnBoardCreated(ctx, BoardCreated{BoardID: 3, BoardName: "Roadmap", UserID: "u1"}))
	req.NoError(handler.OnChatMessagePosted(ctx, ChatMessagePosted{Message: domain.ChatMessage{ID: uuid.New(), Room: "ops"}}))
	req.NoError(handler.OnChatMessagePosted(ctx, ChatMessagePosted{Message: domain.ChatMessage{ID: uuid.New(), Room: domain.GeneralRoom}}))
	req.NoError(handler.OnAssistantReplied(ctx, AssistantReplied{ConversationID: "c1", UserID: "u9", Content: "Two boards"}))
}

func TestRealtimeHandler_TaskMoved_Carries_New_Status(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	hub := mocks.NewMockBroadcaster(ctrl)
	handler := NewRealtimeHandler(logs.GetLoggerFromLevel(slog.LevelDebug), hub)
	taskID := uuid.New()

	hub.EXPECT().SendToGroup("Board_1", "TaskMoved", TaskPayload{
		Type: "TaskMoved", TaskID: taskID.String(), BoardID: 1, Title: "Ship", Status: "done", UserID: "u1",
	})
	hub.EXPECT().SendToGroup("Board_1", "TaskDeleted", TaskPayload{
		Type: "TaskDeleted", TaskID: taskID.String(), BoardID: 1, Title: "Ship", UserID: "u1",
	})

	req.NoError(handler.OnTaskMoved(context.Background(), TaskMoved{
		TaskID: taskID, BoardID: 1, Title: "Ship", From: domain.StatusInProgress, To: domain.StatusDone, UserID: "u1",
	}))
	req.NoError(handler.OnTaskDeleted(context.Background(), TaskDeleted{
		TaskID: taskID, BoardID: 1, Title: "Ship", UserID: "u1",
	}))
}
