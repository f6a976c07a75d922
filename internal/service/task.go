package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/singleflight"

	"github.com/taskly/taskly/internal/cache"
	"github.com/taskly/taskly/internal/metrics"
	"github.com/taskly/taskly/internal/model"
	"github.com/taskly/taskly/internal/repository"
)

// TaskStore persists tasks. Every method is scoped to an owner.
type TaskStore interface {
	CreateTask(ctx context.Context, task *model.Task) error
	ListTasksByOwner(ctx context.Context, ownerID string) ([]*model.Task, error)
	UpdateTaskForOwner(ctx context.Context, ownerID, id string, upd repository.TaskUpdate, now time.Time) (*model.Task, error)
	DeleteTaskForOwner(ctx context.Context, ownerID, id string) error
}

// TaskListCache caches owner task lists by generation.
type TaskListCache interface {
	TaskListGeneration(ctx context.Context, ownerID string) (int64, error)
	GetTaskList(ctx context.Context, ownerID string, gen int64) ([]*model.Task, error)
	SetTaskList(ctx context.Context, ownerID string, gen int64, tasks []*model.Task) error
	InvalidateTaskList(ctx context.Context, ownerID string) error
}

// TaskService handles task business logic.
type TaskService struct {
	store   TaskStore
	cache   TaskListCache
	fills   singleflight.Group
	logger  *slog.Logger
	metrics metrics.Recorder
	now     func() time.Time
}

// NewTaskService creates a new TaskService. listCache may be nil.
func NewTaskService(store TaskStore, listCache TaskListCache, logger *slog.Logger, recorder metrics.Recorder) *TaskService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskService{
		store:   store,
		cache:   listCache,
		logger:  logger,
		metrics: recorder,
		now:     time.Now,
	}
}

// List returns the owner's tasks in insertion order.
func (s *TaskService) List(ctx context.Context, ownerID string) ([]*model.Task, error) {
	start := s.now()
	defer func() { s.metrics.ObserveTaskListDuration(s.now().Sub(start)) }()

	if s.cache == nil {
		return s.store.ListTasksByOwner(ctx, ownerID)
	}

	gen, err := s.cache.TaskListGeneration(ctx, ownerID)
	if err != nil {
		s.logger.Warn("task list cache unavailable", "error", err)
		return s.store.ListTasksByOwner(ctx, ownerID)
	}

	tasks, err := s.cache.GetTaskList(ctx, ownerID, gen)
	if err == nil {
		s.metrics.IncTaskListCacheHit()
		return tasks, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("task list cache read failed", "error", err)
	}
	s.metrics.IncTaskListCacheMiss()

	key := ownerID + ":" + strconv.FormatInt(gen, 10)
	v, err, _ := s.fills.Do(key, func() (interface{}, error) {
		// Followers share this load; it must outlive the leader's request.
		fillCtx := context.WithoutCancel(ctx)
		loaded, err := s.store.ListTasksByOwner(fillCtx, ownerID)
		if err != nil {
			return nil, err
		}
		if err := s.cache.SetTaskList(fillCtx, ownerID, gen, loaded); err != nil {
			s.logger.Warn("task list cache fill failed", "error", err)
		}
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}

	return v.([]*model.Task), nil
}

// CreateTaskInput defines input for creating a task.
type CreateTaskInput struct {
	OwnerID     string
	Title       string
	Description string
}

// Create adds a task for the owner.
func (s *TaskService) Create(ctx context.Context, input CreateTaskInput) (*model.Task, error) {
	if input.Title == "" {
		return nil, ErrTitleRequired
	}

	now := s.now().UTC()
	task := &model.Task{
		ID:          ulid.Make().String(),
		OwnerID:     input.OwnerID,
		Title:       input.Title,
		Description: nonEmpty(&input.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.CreateTask(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.metrics.IncTaskCreated()
	s.invalidate(ctx, input.OwnerID)

	return task, nil
}

// UpdateTaskInput defines input for a partial update.
// Nil and empty strings both mean "not supplied".
type UpdateTaskInput struct {
	OwnerID     string
	ID          string
	Title       *string
	Description *string
}

// Update applies the supplied fields. A description cannot be cleared.
func (s *TaskService) Update(ctx context.Context, input UpdateTaskInput) (*model.Task, error) {
	upd := repository.TaskUpdate{
		Title:       nonEmpty(input.Title),
		Description: nonEmpty(input.Description),
	}

	task, err := s.store.UpdateTaskForOwner(ctx, input.OwnerID, input.ID, upd, s.now().UTC())
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	if !upd.Empty() {
		s.metrics.IncTaskUpdated()
		s.invalidate(ctx, input.OwnerID)
	}

	return task, nil
}

// Delete removes an owner's task.
func (s *TaskService) Delete(ctx context.Context, ownerID, id string) error {
	if err := s.store.DeleteTaskForOwner(ctx, ownerID, id); err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}

	s.metrics.IncTaskDeleted()
	s.invalidate(ctx, ownerID)

	return nil
}

func (s *TaskService) invalidate(ctx context.Context, ownerID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateTaskList(ctx, ownerID); err != nil {
		s.logger.Error("task list cache invalidation failed", "owner_id", ownerID, "error", err)
	}
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	v := *s
	return &v
}
