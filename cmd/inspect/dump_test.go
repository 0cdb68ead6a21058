package main

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"teamspace/domain"
	"teamspace/repositories"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func TestDump(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLogger(nil))
	req.NoError(err)
	defer db.Close()
	at := time.Date(2026, 4, 2, 9, 30, 0, 0, time.UTC)

	// Given a board, a task and a message
	tasks, err := repositories.NewTaskRepository(db, log)
	req.NoError(err)
	board, err := tasks.CreateBoard(ctx, domain.Board{Name: "Roadmap", CreatedBy: "alice", CreatedAt: at})
	req.NoError(err)
	req.NoError(tasks.SaveTask(ctx, domain.NewTask(uuid.New(), board.ID, "Ship search", "", "alice", at)))
	req.NoError(tasks.Close())
	messages := repositories.NewMessageRepository(db, log, 10)
	req.NoError(messages.StoreMessage(ctx, domain.ChatMessage{
		ID: uuid.New(), Room: "general", AuthorID: "alice", Author: "Alice", Content: "hello team", At: at,
	}))

	tests := []struct {
		kind string
		want []string
	}{
		{kindBoards, []string{"Roadmap", "alice", "1 boards"}},
		{kindTasks, []string{"Ship search", "todo", "1 tasks"}},
		{kindMessages, []string{"hello team", "Alice", "1 messages"}},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			var out bytes.Buffer

			require.NoError(t, dump(db, tt.kind, &out, false))

			for _, want := range tt.want {
				require.Contains(t, out.String(), want)
			}
		})
	}
}

func TestDump_Unknown_Kind(t *testing.T) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	require.NoError(t, err)
	defer db.Close()

	require.Error(t, dump(db, "users", &bytes.Buffer{}, false))
}
