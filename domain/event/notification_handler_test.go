package event

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"teamspace/contract"
	"teamspace/mocks"

	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestNotificationHandler_Sends_Mail_To_Assignee(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	mailer := mocks.NewMockMailer(ctrl)
	handler := NewNotificationHandler(logs.GetLoggerFromLevel(slog.LevelDebug), mailer, "noreply@teamspace.local")

	var got contract.Mail
	mailer.EXPECT().Send(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, m contract.Mail) error {
			got = m
			return nil
		})

	err := handler.OnTaskAssigned(context.Background(), TaskAssigned{
		TaskID: uuid.New(), BoardID: 4, Title: "Fix login", AssigneeID: "bob",
		AssigneeEmail: "bob@example.com", UserID: "alice", At: time.Now(),
	})

	req.NoError(err)
	req.Equal("noreply@teamspace.local", got.From)
	req.Equal("bob@example.com", got.To)
	req.Contains(got.Subject, "Fix login")
	req.Contains(got.Body, "alice")
}

func TestNotificationHandler_Reports_Mailer_Failure(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	mailer := mocks.NewMockMailer(ctrl)
	handler := NewNotificationHandler(logs.GetLoggerFromLevel(slog.LevelDebug), mailer, "noreply@teamspace.local")
	boom := fmt.Errorf("smtp unavailable")

	mailer.EXPECT().Send(gomock.Any(), gomock.Any()).Return(boom).Times(1)

	err := handler.OnTaskAssigned(context.Background(), TaskAssigned{AssigneeEmail: "bob@example.com"})

	req.ErrorIs(err, boom)
}

func TestNotificationHandler_Skips_Without_Email(t *testing.T) {
	ctrl := gomock.NewController(t)
	mailer := mocks.NewMockMailer(ctrl)
	handler := NewNotificationHandler(logs.GetLoggerFromLevel(slog.LevelDebug), mailer, "noreply@teamspace.local")

	// No call expected on the mailer
	require.NoError(t, handler.OnTaskAssigned(context.Background(), TaskAssigned{AssigneeID: "bob"}))
}
