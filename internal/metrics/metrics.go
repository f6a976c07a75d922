// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Account metrics
	IncUserRegistered()
	IncLogin(success bool)
	IncSessionRejected()

	// Task metrics
	IncTaskCreated()
	IncTaskUpdated()
	IncTaskDeleted()

	// Task list cache metrics
	IncTaskListCacheHit()
	IncTaskListCacheMiss()
	ObserveTaskListDuration(duration time.Duration)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
