package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	UsersRegistered         uint64
	LoginsSucceeded         uint64
	LoginsFailed            uint64
	SessionsRejected        uint64
	TasksCreated            uint64
	TasksUpdated            uint64
	TasksDeleted            uint64
	TaskListCacheHits       uint64
	TaskListCacheMisses     uint64
	TaskListDurationCount   uint64
	TaskListDurationTotalNs int64
}

// InMemoryRecorder stores metrics in memory.
type InMemoryRecorder struct {
	usersRegistered         atomic.Uint64
	loginsSucceeded         atomic.Uint64
	loginsFailed            atomic.Uint64
	sessionsRejected        atomic.Uint64
	tasksCreated            atomic.Uint64
	tasksUpdated            atomic.Uint64
	tasksDeleted            atomic.Uint64
	taskListCacheHits       atomic.Uint64
	taskListCacheMisses     atomic.Uint64
	taskListDurationCount   atomic.Uint64
	taskListDurationTotalNs atomic.Int64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		UsersRegistered:         m.usersRegistered.Load(),
		LoginsSucceeded:         m.loginsSucceeded.Load(),
		LoginsFailed:            m.loginsFailed.Load(),
		SessionsRejected:        m.sessionsRejected.Load(),
		TasksCreated:            m.tasksCreated.Load(),
		TasksUpdated:            m.tasksUpdated.Load(),
		TasksDeleted:            m.tasksDeleted.Load(),
		TaskListCacheHits:       m.taskListCacheHits.Load(),
		TaskListCacheMisses:     m.taskListCacheMisses.Load(),
		TaskListDurationCount:   m.taskListDurationCount.Load(),
		TaskListDurationTotalNs: m.taskListDurationTotalNs.Load(),
	}
}

// IncUserRegistered increments the registration counter.
func (m *InMemoryRecorder) IncUserRegistered() {
	m.usersRegistered.Add(1)
}

// IncLogin counts a login attempt by outcome.
func (m *InMemoryRecorder) IncLogin(success bool) {
	if success {
		m.loginsSucceeded.Add(1)
		return
	}
	m.loginsFailed.Add(1)
}

// IncSessionRejected counts requests turned away by the session guard.
func (m *InMemoryRecorder) IncSessionRejected() {
	m.sessionsRejected.Add(1)
}

// IncTaskCreated increments task created counter.
func (m *InMemoryRecorder) IncTaskCreated() {
	m.tasksCreated.Add(1)
}

// IncTaskUpdated increments task updated counter.
func (m *InMemoryRecorder) IncTaskUpdated() {
	m.tasksUpdated.Add(1)
}

// IncTaskDeleted increments task deleted counter.
func (m *InMemoryRecorder) IncTaskDeleted() {
	m.tasksDeleted.Add(1)
}

// IncTaskListCacheHit increments cache hit counter.
func (m *InMemoryRecorder) IncTaskListCacheHit() {
	m.taskListCacheHits.Add(1)
}

// IncTaskListCacheMiss increments cache miss counter.
func (m *InMemoryRecorder) IncTaskListCacheMiss() {
	m.taskListCacheMisses.Add(1)
}

// ObserveTaskListDuration records how long a list request took.
func (m *InMemoryRecorder) ObserveTaskListDuration(duration time.Duration) {
	m.taskListDurationCount.Add(1)
	m.taskListDurationTotalNs.Add(duration.Nanoseconds())
}
