package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taskly/taskly/internal/model"
)

// Task list keys are versioned per owner: every write bumps the owner's
// generation, so entries filled before the write become unreachable and
// simply age out.
const (
	taskGenKeyPrefix  = "tasks:gen:"
	taskListKeyPrefix = "tasks:"

	// DefaultTaskListTTL is the TTL for cached task lists.
	DefaultTaskListTTL = 60 * time.Second
)

func taskGenKey(ownerID string) string {
	return taskGenKeyPrefix + ownerID
}

func taskListKey(ownerID string, gen int64) string {
	return taskListKeyPrefix + ownerID + ":" + strconv.FormatInt(gen, 10)
}

// TaskListGeneration returns the owner's current cache generation.
// An owner that was never invalidated is at generation 0.
func (c *Cache) TaskListGeneration(ctx context.Context, ownerID string) (int64, error) {
	gen, err := c.client.Get(ctx, taskGenKey(ownerID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get generation failed: %w", err)
	}
	return gen, nil
}

// GetTaskList returns the cached task list of ownerID at generation gen.
// Returns ErrCacheMiss if not found.
func (c *Cache) GetTaskList(ctx context.Context, ownerID string, gen int64) ([]*model.Task, error) {
	data, err := c.client.Get(ctx, taskListKey(ownerID, gen)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	tasks := make([]*model.Task, 0)
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("decode cached tasks: %w", err)
	}
	return tasks, nil
}

// SetTaskList stores the task list of ownerID under generation gen.
// gen must be the generation read before the list was loaded.
func (c *Cache) SetTaskList(ctx context.Context, ownerID string, gen int64, tasks []*model.Task) error {
	data, err := json.Marshal(tasks)
	if err != nil {
		return fmt.Errorf("encode tasks: %w", err)
	}

	if err := c.client.Set(ctx, taskListKey(ownerID, gen), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache task list: %w", err)
	}
	return nil
}

// InvalidateTaskList bumps the owner's generation.
func (c *Cache) InvalidateTaskList(ctx context.Context, ownerID string) error {
	if err := c.client.Incr(ctx, taskGenKey(ownerID)).Err(); err != nil {
		return fmt.Errorf("redis incr generation failed: %w", err)
	}
	return nil
}
