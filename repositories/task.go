package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"

	"teamspace/domain"
	"teamspace/errors"

	stderrors "errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

const (
	boardPrefix      = "board:"
	taskPrefix       = "task:"
	boardSequenceKey = "seq:board"
	sequenceLease    = 100
)

// TaskRepository stores boards and their tasks as JSON values.
//
//	board:{board_id}            -> Board
//	task:{board_id}:{task_uuid} -> Task
//
// Board ids are 19-digit zero padded so a prefix scan returns them in creation order.
type TaskRepository struct {
	db       *badger.DB
	log      *slog.Logger
	sequence *badger.Sequence
}

func NewTaskRepository(db *badger.DB, log *slog.Logger) (*TaskRepository, error) {
	sequence, err := db.GetSequence([]byte(boardSequenceKey), sequenceLease)
	if err != nil {
		return nil, fmt.Errorf("board sequence: %w", err)
	}
	return &TaskRepository{db: db, log: log, sequence: sequence}, nil
}

// Close returns the unused part of the leased board ids.
func (r *TaskRepository) Close() error {
	return r.sequence.Release()
}

func boardKey(id domain.BoardID) []byte {
	return fmt.Appendf(nil, "%s%019d", boardPrefix, id)
}

func boardTasksPrefix(id domain.BoardID) []byte {
	return fmt.Appendf(nil, "%s%019d:", taskPrefix, id)
}

func taskKey(boardID domain.BoardID, taskID uuid.UUID) []byte {
	return append(boardTasksPrefix(boardID), taskID.String()...)
}

// CreateBoard assigns the next board id and stores the board.
func (r *TaskRepository) CreateBoard(ctx context.Context, board domain.Board) (domain.Board, error) {
	if err := ctx.Err(); err != nil {
		return domain.Board{}, err
	}
	next, err := r.sequence.Next()
	if err != nil {
		return domain.Board{}, err
	}
	// Sequences start at zero, board ids start at one
	board.ID = domain.BoardID(next + 1)
	value, err := json.Marshal(board)
	if err != nil {
		return domain.Board{}, err
	}
	err = r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(boardKey(board.ID), value)
	})
	if err != nil {
		return domain.Board{}, err
	}
	return board, nil
}

func (r *TaskRepository) GetBoard(ctx context.Context, id domain.BoardID) (domain.Board, error) {
	if err := ctx.Err(); err != nil {
		return domain.Board{}, err
	}
	var board domain.Board
	err := r.db.View(func(txn *badger.Txn) error {
		return get(txn, boardKey(id), &board)
	})
	if err != nil {
		return domain.Board{}, wrapNotFound(err, "board %d", id)
	}
	return board, nil
}

func (r *TaskRepository) ListBoards(ctx context.Context) ([]domain.Board, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	boards := []domain.Board{}
	err := r.db.View(func(txn *badger.Txn) error {
		return scan(txn, []byte(boardPrefix), func(board domain.Board) {
			boards = append(boards, board)
		})
	})
	return boards, err
}

// SaveTask inserts or replaces a task.
func (r *TaskRepository) SaveTask(ctx context.Context, task domain.Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	value, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(taskKey(task.BoardID, task.ID), value)
	})
}

func (r *TaskRepository) GetTask(ctx context.Context, boardID domain.BoardID, taskID uuid.UUID) (domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return domain.Task{}, err
	}
	var task domain.Task
	err := r.db.View(func(txn *badger.Txn) error {
		return get(txn, taskKey(boardID, taskID), &task)
	})
	if err != nil {
		return domain.Task{}, wrapNotFound(err, "task %s on board %d", taskID, boardID)
	}
	return task, nil
}

func (r *TaskRepository) DeleteTask(ctx context.Context, boardID domain.BoardID, taskID uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key := taskKey(boardID, taskID)
	err := r.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err != nil {
			return err
		}
		return txn.Delete(key)
	})
	return wrapNotFound(err, "task %s on board %d", taskID, boardID)
}

// ListTasks returns the tasks of a board ordered by creation time.
func (r *TaskRepository) ListTasks(ctx context.Context, boardID domain.BoardID) ([]domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tasks := []domain.Task{}
	err := r.db.View(func(txn *badger.Txn) error {
		return scan(txn, boardTasksPrefix(boardID), func(task domain.Task) {
			tasks = append(tasks, task)
		})
	})
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(tasks, func(a, b domain.Task) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return tasks, nil
}

func get[T any](txn *badger.Txn, key []byte, out *T) error {
	item, err := txn.Get(key)
	if err != nil {
		return err
	}
	return item.Value(func(value []byte) error {
		return json.Unmarshal(value, out)
	})
}

func scan[T any](txn *badger.Txn, prefix []byte, yield func(T)) error {
	options := badger.DefaultIteratorOptions
	options.Prefix = prefix
	it := txn.NewIterator(options)
	defer it.Close()

	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		err := it.Item().Value(func(value []byte) error {
			var v T
			if err := json.Unmarshal(value, &v); err != nil {
				return err
			}
			yield(v)
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func wrapNotFound(err error, format string, args ...any) error {
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), errors.ErrNotFound)
	}
	return err
}
