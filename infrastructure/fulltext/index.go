// Package fulltext indexes chat messages in bluge for the SearchMessages query.
package fulltext

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"teamspace/domain"
	"teamspace/domain/search"

	"github.com/abadojack/whatlanggo"
	"github.com/blugelabs/bluge"
	"github.com/google/uuid"
)

const (
	fieldContent = "content"
	fieldRoom    = "room"
	fieldAuthor  = "author"
	fieldName    = "author_name"
	fieldLang    = "lang"
	fieldAt      = "at"
)

type Index struct {
	writer *bluge.Writer
	log    *slog.Logger
}

func NewIndex(writer *bluge.Writer, log *slog.Logger) *Index {
	return &Index{writer: writer, log: log}
}

// Index stores the message under its id, replacing a previous version if any.
// The detected language is kept so searches can be narrowed with --lang.
func (i *Index) Index(ctx context.Context, message domain.ChatMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	lang := whatlanggo.Detect(message.Content).Lang.Iso6391()

	doc := bluge.NewDocument(message.ID.String()).
		AddField(bluge.NewTextField(fieldContent, message.Content).StoreValue()).
		AddField(bluge.NewKeywordField(fieldRoom, message.Room).StoreValue()).
		AddField(bluge.NewKeywordField(fieldAuthor, strings.ToLower(message.Author)).StoreValue()).
		AddField(bluge.NewStoredOnlyField(fieldName, []byte(message.Author))).
		AddField(bluge.NewKeywordField(fieldLang, lang).StoreValue()).
		AddField(bluge.NewStoredOnlyField(fieldAt, []byte(message.At.UTC().Format(time.RFC3339Nano))))

	if err := i.writer.Update(doc.ID(), doc); err != nil {
		return fmt.Errorf("index message %s: %w", message.ID, err)
	}
	i.log.Debug("Message indexed", "message_id", message.ID, "room", message.Room, "lang", lang)
	return nil
}

// Search returns the best matching messages, highest score first.
func (i *Index) Search(ctx context.Context, q search.Query) ([]domain.SearchHit, error) {
	reader, err := i.writer.Reader()
	if err != nil {
		return nil, fmt.Errorf("open index reader: %w", err)
	}
	defer func() { _ = reader.Close() }()

	limit := q.Limit
	if limit <= 0 {
		limit = search.DefaultLimit
	}
	request := bluge.NewTopNSearch(limit, buildQuery(q))
	matches, err := reader.Search(ctx, request)
	if err != nil {
		return nil, err
	}

	hits := []domain.SearchHit{}
	match, err := matches.Next()
	for err == nil && match != nil {
		hit := domain.SearchHit{Score: match.Score}
		var visitErr error
		err = match.VisitStoredFields(func(field string, value []byte) bool {
			switch field {
			case "_id":
				hit.MessageID, visitErr = uuid.ParseBytes(value)
			case fieldContent:
				hit.Content = string(value)
			case fieldRoom:
				hit.Room = string(value)
			case fieldName:
				hit.Author = string(value)
			case fieldLang:
				hit.Language = string(value)
			case fieldAt:
				hit.At, visitErr = time.Parse(time.RFC3339Nano, string(value))
			}
			return visitErr == nil
		})
		if err != nil {
			return nil, err
		}
		if visitErr != nil {
			return nil, fmt.Errorf("decode search hit: %w", visitErr)
		}
		hits = append(hits, hit)
		match, err = matches.Next()
	}
	if err != nil {
		return nil, err
	}
	return hits, nil
}

func buildQuery(q search.Query) bluge.Query {
	query := bluge.NewBooleanQuery()
	if q.Terms != "" {
		query.AddMust(bluge.NewMatchQuery(q.Terms).SetField(fieldContent))
	} else {
		query.AddMust(bluge.NewMatchAllQuery())
	}
	if q.Room != "" {
		query.AddMust(bluge.NewTermQuery(q.Room).SetField(fieldRoom))
	}
	if q.Author != "" {
		query.AddMust(bluge.NewTermQuery(strings.ToLower(q.Author)).SetField(fieldAuthor))
	}
	if q.Language != "" {
		query.AddMust(bluge.NewTermQuery(q.Language).SetField(fieldLang))
	}
	return query
}
