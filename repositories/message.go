package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"teamspace/domain"

	"github.com/dgraph-io/badger/v4"
	"github.com/samber/lo"
)

const DefaultPageSize = 50

type MessageRepository struct {
	db       *badger.DB
	log      *slog.Logger
	pageSize int
}

func NewMessageRepository(db *badger.DB, log *slog.Logger, pageSize int) MessageRepository {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return MessageRepository{db: db, log: log, pageSize: pageSize}
}

func messagePrefix(room string) string {
	return fmt.Sprintf("msg:%s:", room)
}

// StoreMessage persists a message in BadgerDB.
// The key is formatted as "msg:{room}:{timestamp_padded}:{uuid}":
//  1. 19-digit zero padding keeps the lexicographical order chronological.
//  2. The UUID separates two messages stored at the same nanosecond.
func (m MessageRepository) StoreMessage(ctx context.Context, message domain.ChatMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key := fmt.Sprintf("%s%019d:%s", messagePrefix(message.Room), message.At.UnixNano(), message.ID)
	value, err := json.Marshal(message)
	if err != nil {
		return err
	}
	return m.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
}

// GetMessages returns one page of a room, oldest first, walking backwards from cursor.
// A nil cursor starts from the most recent message. The returned cursor is nil on the last page.
func (m MessageRepository) GetMessages(ctx context.Context, room string, cursor *string) ([]domain.ChatMessage, *string, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	var messages []domain.ChatMessage
	var lastKey string
	hasMore := false

	err := m.db.View(func(txn *badger.Txn) error {
		prefixStr := messagePrefix(room)
		prefix := []byte(prefixStr)
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		var seekKey []byte
		switch cursor {
		case nil:
			// Past the newest possible timestamp, the reverse walk starts at the latest message
			seekKey = append([]byte(prefixStr), []byte("9999999999999999999")...)
		default:
			seekKey = append([]byte(prefixStr), []byte(*cursor)...)
		}

		it.Seek(seekKey)
		if cursor != nil && it.ValidForPrefix(prefix) && string(it.Item().Key()[len(prefix):]) == *cursor {
			it.Next()
		}

		for ; it.ValidForPrefix(prefix); it.Next() {
			if len(messages) == m.pageSize {
				hasMore = true
				m.log.Debug(fmt.Sprintf("Maximum of %d messages reached", m.pageSize), "room", room)
				break
			}
			item := it.Item()
			lastKey = string(item.Key()[len(prefix):])
			err := item.Value(func(value []byte) error {
				var message domain.ChatMessage
				if err := json.Unmarshal(value, &message); err != nil {
					return err
				}
				messages = append(messages, message)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	var next *string
	if hasMore {
		next = lo.ToPtr(lastKey)
	}
	return lo.Reverse(messages), next, nil
}
