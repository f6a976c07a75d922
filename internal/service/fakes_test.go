package service

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/taskly/taskly/internal/cache"
	"github.com/taskly/taskly/internal/model"
	"github.com/taskly/taskly/internal/repository"
)

type fakeUserStore struct {
	mu      sync.Mutex
	byID    map[string]*model.User
	byEmail map[string]*model.User
	err     error
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		byID:    make(map[string]*model.User),
		byEmail: make(map[string]*model.User),
	}
}

func (f *fakeUserStore) CreateUser(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if _, ok := f.byEmail[user.Email]; ok {
		return repository.ErrEmailExists
	}
	for _, u := range f.byID {
		if u.Username == user.Username {
			return repository.ErrUsernameExists
		}
	}
	cp := *user
	f.byID[user.ID] = &cp
	f.byEmail[user.Email] = &cp
	return nil
}

func (f *fakeUserStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.byEmail[email]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserStore) GetUserByID(_ context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

type fakeTaskStore struct {
	mu        sync.Mutex
	tasks     []*model.Task
	listCalls int
	err       error
}

func (f *fakeTaskStore) CreateTask(_ context.Context, task *model.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	cp := *task
	f.tasks = append(f.tasks, &cp)
	return nil
}

func (f *fakeTaskStore) ListTasksByOwner(_ context.Context, ownerID string) ([]*model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([]*model.Task, 0)
	for _, t := range f.tasks {
		if t.OwnerID == ownerID {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeTaskStore) UpdateTaskForOwner(_ context.Context, ownerID, id string, upd repository.TaskUpdate, now time.Time) (*model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, t := range f.tasks {
		if t.ID != id || t.OwnerID != ownerID {
			continue
		}
		if !upd.Empty() {
			if upd.Title != nil {
				t.Title = *upd.Title
			}
			if upd.Description != nil {
				d := *upd.Description
				t.Description = &d
			}
			t.UpdatedAt = now
		}
		cp := *t
		return &cp, nil
	}
	return nil, repository.ErrTaskNotFound
}

func (f *fakeTaskStore) DeleteTaskForOwner(_ context.Context, ownerID, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for i, t := range f.tasks {
		if t.ID == id && t.OwnerID == ownerID {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return repository.ErrTaskNotFound
}

func (f *fakeTaskStore) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

type fakeListCache struct {
	mu      sync.Mutex
	gens    map[string]int64
	entries map[string][]*model.Task
}

func newFakeListCache() *fakeListCache {
	return &fakeListCache{
		gens:    make(map[string]int64),
		entries: make(map[string][]*model.Task),
	}
}

func entryKey(ownerID string, gen int64) string {
	return ownerID + "#" + strconv.FormatInt(gen, 10)
}

func (c *fakeListCache) TaskListGeneration(_ context.Context, ownerID string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[ownerID], nil
}

func (c *fakeListCache) GetTaskList(_ context.Context, ownerID string, gen int64) ([]*model.Task, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	tasks, ok := c.entries[entryKey(ownerID, gen)]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return tasks, nil
}

func (c *fakeListCache) SetTaskList(_ context.Context, ownerID string, gen int64, tasks []*model.Task) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[entryKey(ownerID, gen)] = tasks
	return nil
}

func (c *fakeListCache) InvalidateTaskList(_ context.Context, ownerID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gens[ownerID]++
	return nil
}
