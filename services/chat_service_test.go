package services

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"teamspace/domain"
	"teamspace/domain/event"
	"teamspace/domain/search"
	"teamspace/errors"
	"teamspace/mocks"

	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type chatMocks struct {
	repo   *mocks.MockMessageRepository
	index  *mocks.MockMessageIndex
	censor *mocks.MockCensor
	events *mocks.MockPublisher
}

func newChatService(ctrl *gomock.Controller) (*ChatService, chatMocks) {
	m := chatMocks{
		repo:   mocks.NewMockMessageRepository(ctrl),
		index:  mocks.NewMockMessageIndex(ctrl),
		censor: mocks.NewMockCensor(ctrl),
		events: mocks.NewMockPublisher(ctrl),
	}
	svc := NewChatService(logs.GetLoggerFromLevel(slog.LevelDebug), m.repo, m.index, m.censor, m.events)
	svc.now = func() time.Time { return fixedNow }
	return svc, m
}

func TestChatService_PostChatMessage_Censors_Stores_And_Publishes(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	svc, m := newChatService(ctrl)
	id := uuid.New()
	svc.newID = func() uuid.UUID { return id }
	ctx := context.Background()
	expected := domain.ChatMessage{
		ID: id, Room: "ops", AuthorID: "u1", Author: "Alice", Content: "the ****** is loose", At: fixedNow,
	}

	gomock.InOrder(
		m.censor.EXPECT().Censor("the badger is loose").Return("the ****** is loose"),
		m.repo.EXPECT().StoreMessage(ctx, expected).Return(nil),
		m.events.EXPECT().Publish(ctx, event.ChatMessagePosted{Message: expected}),
	)

	res := svc.PostChatMessage(ctx, domain.PostChatMessage{
		Room: "ops", Content: "the badger is loose", UserID: "u1", Author: "Alice",
	})

	req.Equal(expected, res.Value())
}

func TestChatService_GetChatHistory(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	svc, m := newChatService(ctrl)
	cursor := lo.ToPtr("0000000000000000001:abc")

	m.repo.EXPECT().GetMessages(gomock.Any(), "ops", cursor).Return(nil, nil, nil)

	res := svc.GetChatHistory(context.Background(), domain.GetChatHistory{Room: "ops", Cursor: cursor})

	req.Equal(domain.ChatPage{Messages: []domain.ChatMessage{}}, res.Value())
}

func TestChatService_SearchMessages(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	svc, m := newChatService(ctrl)
	hit := domain.SearchHit{MessageID: uuid.New(), Room: "ops", Content: "invoice sent", Score: 1.2}

	m.index.EXPECT().
		Search(gomock.Any(), search.NewSearchQuery("/find invoice --room ops")).
		Return([]domain.SearchHit{hit}, nil)

	res := svc.SearchMessages(context.Background(), domain.SearchMessages{Query: "/find invoice --room ops"})
	req.Equal([]domain.SearchHit{hit}, res.Value())

	// A command alone has nothing to search
	res = svc.SearchMessages(context.Background(), domain.SearchMessages{Query: "/find"})
	req.ErrorIs(res.Err(), errors.ErrValidation)
}
