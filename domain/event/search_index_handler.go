package event

import (
	"context"
	"log/slog"

	"teamspace/contract"
)

// SearchIndexHandler makes posted messages searchable.
type SearchIndexHandler struct {
	log   *slog.Logger
	index contract.MessageIndex
}

func NewSearchIndexHandler(log *slog.Logger, index contract.MessageIndex) *SearchIndexHandler {
	return &SearchIndexHandler{log: log, index: index}
}

func (h *SearchIndexHandler) OnChatMessagePosted(ctx context.Context, e ChatMessagePosted) error {
	return h.index.Index(ctx, e.Message)
}
