package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/taskly/taskly/internal/model"
)

// ErrTaskNotFound is returned when no task with the id is owned by the caller.
var ErrTaskNotFound = errors.New("task not found")

// TaskUpdate carries the supplied fields of a partial update. Nil means keep.
type TaskUpdate struct {
	Title       *string
	Description *string
}

// Empty reports whether the update changes nothing.
func (u TaskUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil
}

const taskColumns = `id, owner_id, title, description, created_at, updated_at`

// CreateTask inserts a new task.
func (r *Repository) CreateTask(ctx context.Context, task *model.Task) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO tasks (id, owner_id, title, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query,
		task.ID,
		task.OwnerID,
		task.Title,
		task.Description,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	return nil
}

// ListTasksByOwner returns every task of ownerID in insertion order.
func (r *Repository) ListTasksByOwner(ctx context.Context, ownerID string) ([]*model.Task, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE owner_id = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]*model.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tasks: %w", err)
	}

	return tasks, nil
}

// GetTaskForOwner retrieves a task by id, scoped to ownerID.
func (r *Repository) GetTaskForOwner(ctx context.Context, ownerID, id string) (*model.Task, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 AND owner_id = $2`

	task, err := scanTask(r.pool.QueryRow(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	return task, nil
}

// UpdateTaskForOwner applies the supplied fields of upd and returns the
// resulting task. An empty update returns the current task unchanged.
func (r *Repository) UpdateTaskForOwner(ctx context.Context, ownerID, id string, upd TaskUpdate, now time.Time) (*model.Task, error) {
	if upd.Empty() {
		return r.GetTaskForOwner(ctx, ownerID, id)
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `
		UPDATE tasks
		SET title = COALESCE($3, title),
		    description = COALESCE($4, description),
		    updated_at = $5
		WHERE id = $1 AND owner_id = $2
		RETURNING ` + taskColumns

	task, err := scanTask(r.pool.QueryRow(ctx, query, id, ownerID, upd.Title, upd.Description, now))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return task, nil
}

// DeleteTaskForOwner removes a task owned by ownerID.
func (r *Repository) DeleteTaskForOwner(ctx context.Context, ownerID, id string) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	result, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrTaskNotFound
	}

	return nil
}

func scanTask(row pgx.Row) (*model.Task, error) {
	var task model.Task
	err := row.Scan(
		&task.ID,
		&task.OwnerID,
		&task.Title,
		&task.Description,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &task, nil
}
