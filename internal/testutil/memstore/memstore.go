// Package memstore provides in-memory user and task stores with the same
// error contract as the Postgres repository. Handler, router and contract
// tests run against it.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/taskly/taskly/internal/model"
	"github.com/taskly/taskly/internal/repository"
)

// Store holds users and tasks in memory.
type Store struct {
	mu    sync.Mutex
	users []*model.User
	tasks []*model.Task
	err   error
}

// New returns an empty Store.
func New() *Store {
	return &Store{}
}

// FailWith makes every subsequent call return err. Pass nil to recover.
func (s *Store) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Ping reports the injected failure, if any.
func (s *Store) Ping(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// CreateUser stores a user, enforcing unique email and username.
func (s *Store) CreateUser(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	for _, u := range s.users {
		if u.Email == user.Email {
			return repository.ErrEmailExists
		}
		if u.Username == user.Username {
			return repository.ErrUsernameExists
		}
	}
	cp := *user
	s.users = append(s.users, &cp)
	return nil
}

// GetUserByEmail matches the email exactly.
func (s *Store) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	return s.findUser(func(u *model.User) bool { return u.Email == email })
}

// GetUserByID looks a user up by id.
func (s *Store) GetUserByID(_ context.Context, id string) (*model.User, error) {
	return s.findUser(func(u *model.User) bool { return u.ID == id })
}

func (s *Store) findUser(match func(*model.User) bool) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	for _, u := range s.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

// CreateTask stores a task.
func (s *Store) CreateTask(_ context.Context, task *model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	cp := *task
	s.tasks = append(s.tasks, &cp)
	return nil
}

// ListTasksByOwner returns the owner's tasks in insertion order.
func (s *Store) ListTasksByOwner(_ context.Context, ownerID string) ([]*model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	out := make([]*model.Task, 0)
	for _, t := range s.tasks {
		if t.OwnedBy(ownerID) {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

// UpdateTaskForOwner applies the non-nil fields of upd.
func (s *Store) UpdateTaskForOwner(_ context.Context, ownerID, id string, upd repository.TaskUpdate, now time.Time) (*model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	for _, t := range s.tasks {
		if t.ID != id || !t.OwnedBy(ownerID) {
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

// DeleteTaskForOwner removes the task if the owner holds it.
func (s *Store) DeleteTaskForOwner(_ context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	for i, t := range s.tasks {
		if t.ID == id && t.OwnedBy(ownerID) {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			return nil
		}
	}
	return repository.ErrTaskNotFound
}

// TaskCount returns the number of stored tasks across all owners.
func (s *Store) TaskCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}
