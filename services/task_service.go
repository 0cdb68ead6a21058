package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"teamspace/contract"
	"teamspace/domain"
	"teamspace/domain/event"
	"teamspace/errors"
	"teamspace/result"

	"github.com/google/uuid"
)

// TaskService answers the kanban commands and queries.
// Every command commits to the repository before its event is published.
type TaskService struct {
	log    *slog.Logger
	repo   contract.TaskRepository
	events contract.Publisher
	now    func() time.Time
	newID  func() uuid.UUID
}

func NewTaskService(log *slog.Logger, repo contract.TaskRepository, events contract.Publisher) *TaskService {
	return &TaskService{
		log:    log,
		repo:   repo,
		events: events,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.New,
	}
}

func (s *TaskService) CreateBoard(ctx context.Context, cmd domain.CreateBoard) result.Result[domain.Board] {
	if err := domain.Validate(cmd); err != nil {
		return result.FailureOf[domain.Board](err)
	}
	board, err := s.repo.CreateBoard(ctx, domain.Board{Name: cmd.Name, CreatedBy: cmd.UserID, CreatedAt: s.now()})
	if err != nil {
		return result.FailureOf[domain.Board](fmt.Errorf("create board: %w", err))
	}
	s.events.Publish(ctx, event.BoardCreated{
		BoardID: board.ID, BoardName: board.Name, UserID: cmd.UserID, At: board.CreatedAt,
	})
	return result.Success(board)
}

func (s *TaskService) ListBoards(ctx context.Context, _ domain.ListBoards) result.Result[[]domain.Board] {
	boards, err := s.repo.ListBoards(ctx)
	if err != nil {
		return result.FailureOf[[]domain.Board](fmt.Errorf("list boards: %w", err))
	}
	return result.Success(boards)
}

func (s *TaskService) CreateTask(ctx context.Context, cmd domain.CreateTask) result.Result[domain.Task] {
	if err := domain.Validate(cmd); err != nil {
		return result.FailureOf[domain.Task](err)
	}
	if _, err := s.repo.GetBoard(ctx, cmd.BoardID); err != nil {
		return result.FailureOf[domain.Task](err)
	}
	task := domain.NewTask(s.newID(), cmd.BoardID, cmd.Title, cmd.Description, cmd.UserID, s.now())
	if err := s.repo.SaveTask(ctx, task); err != nil {
		return result.FailureOf[domain.Task](fmt.Errorf("save task: %w", err))
	}
	s.events.Publish(ctx, event.TaskCreated{
		TaskID: task.ID, BoardID: task.BoardID, Title: task.Title, UserID: cmd.UserID, At: task.CreatedAt,
	})
	return result.Success(task)
}

// MoveTask changes the status of a task. Moving to the current status succeeds without an event.
func (s *TaskService) MoveTask(ctx context.Context, cmd domain.MoveTask) result.Result[domain.Task] {
	if err := domain.Validate(cmd); err != nil {
		return result.FailureOf[domain.Task](err)
	}
	task, err := s.repo.GetTask(ctx, cmd.BoardID, cmd.TaskID)
	if err != nil {
		return result.FailureOf[domain.Task](err)
	}
	from := task.Status
	if !task.Move(cmd.Status, s.now()) {
		return result.Success(task)
	}
	if err = s.repo.SaveTask(ctx, task); err != nil {
		return result.FailureOf[domain.Task](fmt.Errorf("save task: %w", err))
	}
	s.events.Publish(ctx, event.TaskMoved{
		TaskID: task.ID, BoardID: task.BoardID, Title: task.Title,
		From: from, To: task.Status, UserID: cmd.UserID, At: task.UpdatedAt,
	})
	return result.Success(task)
}

func (s *TaskService) AssignTask(ctx context.Context, cmd domain.AssignTask) result.Result[domain.Task] {
	if err := domain.Validate(cmd); err != nil {
		return result.FailureOf[domain.Task](err)
	}
	task, err := s.repo.GetTask(ctx, cmd.BoardID, cmd.TaskID)
	if err != nil {
		return result.FailureOf[domain.Task](err)
	}
	if !task.Assign(cmd.AssigneeID, s.now()) {
		return result.Success(task)
	}
	if err = s.repo.SaveTask(ctx, task); err != nil {
		return result.FailureOf[domain.Task](fmt.Errorf("save task: %w", err))
	}
	s.events.Publish(ctx, event.TaskAssigned{
		TaskID: task.ID, BoardID: task.BoardID, Title: task.Title,
		AssigneeID: cmd.AssigneeID, AssigneeEmail: cmd.AssigneeEmail, UserID: cmd.UserID, At: task.UpdatedAt,
	})
	return result.Success(task)
}

// DeleteTask is allowed to the task creator and to the board owner.
func (s *TaskService) DeleteTask(ctx context.Context, cmd domain.DeleteTask) result.Result[struct{}] {
	if err := domain.Validate(cmd); err != nil {
		return result.FailureOf[struct{}](err)
	}
	board, err := s.repo.GetBoard(ctx, cmd.BoardID)
	if err != nil {
		return result.FailureOf[struct{}](err)
	}
	task, err := s.repo.GetTask(ctx, cmd.BoardID, cmd.TaskID)
	if err != nil {
		return result.FailureOf[struct{}](err)
	}
	if cmd.UserID != task.CreatedBy && cmd.UserID != board.CreatedBy {
		return result.FailureOf[struct{}](fmt.Errorf("%w: only the task creator or the board owner can delete it", errors.ErrForbidden))
	}
	if err = s.repo.DeleteTask(ctx, cmd.BoardID, cmd.TaskID); err != nil {
		return result.FailureOf[struct{}](err)
	}
	s.events.Publish(ctx, event.TaskDeleted{
		TaskID: task.ID, BoardID: task.BoardID, Title: task.Title, UserID: cmd.UserID, At: s.now(),
	})
	return result.Success(struct{}{})
}

func (s *TaskService) GetBoardTasks(ctx context.Context, query domain.GetBoardTasks) result.Result[[]domain.Task] {
	if err := domain.Validate(query); err != nil {
		return result.FailureOf[[]domain.Task](err)
	}
	if _, err := s.repo.GetBoard(ctx, query.BoardID); err != nil {
		return result.FailureOf[[]domain.Task](err)
	}
	tasks, err := s.repo.ListTasks(ctx, query.BoardID)
	if err != nil {
		return result.FailureOf[[]domain.Task](fmt.Errorf("list tasks: %w", err))
	}
	return result.Success(tasks)
}
