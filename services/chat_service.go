package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"teamspace/contract"
	"teamspace/domain"
	"teamspace/domain/event"
	"teamspace/domain/search"
	"teamspace/errors"
	"teamspace/result"

	"github.com/google/uuid"
)

type ChatService struct {
	log    *slog.Logger
	repo   contract.MessageRepository
	index  contract.MessageIndex
	censor contract.Censor
	events contract.Publisher
	now    func() time.Time
	newID  func() uuid.UUID
}

func NewChatService(log *slog.Logger, repo contract.MessageRepository, index contract.MessageIndex,
	censor contract.Censor, events contract.Publisher) *ChatService {
	return &ChatService{
		log:    log,
		repo:   repo,
		index:  index,
		censor: censor,
		events: events,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.New,
	}
}

// PostChatMessage stores the censored message. Indexing and delivery happen in event handlers.
func (s *ChatService) PostChatMessage(ctx context.Context, cmd domain.PostChatMessage) result.Result[domain.ChatMessage] {
	if err := domain.Validate(cmd); err != nil {
		return result.FailureOf[domain.ChatMessage](err)
	}
	author := cmd.Author
	if author == "" {
		author = cmd.UserID
	}
	message := domain.ChatMessage{
		ID:       s.newID(),
		Room:     cmd.Room,
		AuthorID: cmd.UserID,
		Author:   author,
		Content:  s.censor.Censor(cmd.Content),
		At:       s.now(),
	}
	if err := s.repo.StoreMessage(ctx, message); err != nil {
		return result.FailureOf[domain.ChatMessage](fmt.Errorf("store message: %w", err))
	}
	s.events.Publish(ctx, event.ChatMessagePosted{Message: message})
	return result.Success(message)
}

func (s *ChatService) GetChatHistory(ctx context.Context, query domain.GetChatHistory) result.Result[domain.ChatPage] {
	if err := domain.Validate(query); err != nil {
		return result.FailureOf[domain.ChatPage](err)
	}
	messages, next, err := s.repo.GetMessages(ctx, query.Room, query.Cursor)
	if err != nil {
		return result.FailureOf[domain.ChatPage](fmt.Errorf("read history: %w", err))
	}
	if messages == nil {
		messages = []domain.ChatMessage{}
	}
	return result.Success(domain.ChatPage{Messages: messages, NextCursor: next})
}

func (s *ChatService) SearchMessages(ctx context.Context, query domain.SearchMessages) result.Result[[]domain.SearchHit] {
	if err := domain.Validate(query); err != nil {
		return result.FailureOf[[]domain.SearchHit](err)
	}
	q := search.NewSearchQuery(query.Query)
	if q.IsEmpty() {
		return result.FailureOf[[]domain.SearchHit](fmt.Errorf("%w: nothing to search in %q", errors.ErrValidation, query.Query))
	}
	hits, err := s.index.Search(ctx, q)
	if err != nil {
		return result.FailureOf[[]domain.SearchHit](fmt.Errorf("search: %w", err))
	}
	s.log.Debug("Search done", "terms", q.Terms, "room", q.Room, "hits", len(hits))
	return result.Success(hits)
}
