package domain

import (
	"testing"
	"time"

	"teamspace/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestValidate_Commands(t *testing.T) {
	taskID := uuid.New()
	tests := []struct {
		name    string
		request any
		wantErr bool
	}{
		{"Valid board", CreateBoard{Name: "Roadmap", UserID: "u1"}, false},
		{"Board without name", CreateBoard{UserID: "u1"}, true},
		{"Task on board zero", CreateTask{Title: "Write docs", UserID: "u1"}, true},
		{"Valid task", CreateTask{BoardID: 42, Title: "Write docs", UserID: "u1"}, false},
		{"Unknown status", MoveTask{BoardID: 42, TaskID: taskID, Status: "blocked", UserID: "u1"}, true},
		{"Move without task id", MoveTask{BoardID: 42, Status: StatusDone, UserID: "u1"}, true},
		{"Assign with invalid email", AssignTask{BoardID: 1, TaskID: taskID, AssigneeID: "u2", AssigneeEmail: "nope", UserID: "u1"}, true},
		{"Valid assign", AssignTask{BoardID: 1, TaskID: taskID, AssigneeID: "u2", AssigneeEmail: "bob@example.com", UserID: "u1"}, false},
		{"Chat room with spaces", PostChatMessage{Room: "war room", Content: "hi", UserID: "u1"}, true},
		{"Empty prompt", AskAssistant{ConversationID: "c1", UserID: "u1"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.request)
			if tt.wantErr {
				require.ErrorIs(t, err, errors.ErrValidation)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestTask_Move_And_Assign(t *testing.T) {
	req := require.New(t)
	at := time.Now().UTC()
	task := NewTask(uuid.New(), 42, "Ship", "", "u1", at)

	req.Equal(StatusTodo, task.Status)
	req.False(task.Move(StatusTodo, at.Add(time.Minute)))
	req.Equal(at, task.UpdatedAt)

	req.True(task.Move(StatusInProgress, at.Add(time.Minute)))
	req.Equal(at.Add(time.Minute), task.UpdatedAt)

	req.True(task.Assign("u2", at.Add(2*time.Minute)))
	req.False(task.Assign("u2", at.Add(3*time.Minute)))
}

func TestGroups(t *testing.T) {
	req := require.New(t)

	req.Equal("Board_42", BoardGroup(42))
	req.Equal("GeneralChat", RoomGroup(GeneralRoom))
	req.Equal("GeneralChat", RoomGroup(""))
	req.Equal("Room_ops", RoomGroup("ops"))
}
