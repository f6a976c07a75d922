package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

func (n *NoopRecorder) IncUserRegistered()                             {}
func (n *NoopRecorder) IncLogin(success bool)                          {}
func (n *NoopRecorder) IncSessionRejected()                            {}
func (n *NoopRecorder) IncTaskCreated()                                {}
func (n *NoopRecorder) IncTaskUpdated()                                {}
func (n *NoopRecorder) IncTaskDeleted()                                {}
func (n *NoopRecorder) IncTaskListCacheHit()                           {}
func (n *NoopRecorder) IncTaskListCacheMiss()                          {}
func (n *NoopRecorder) ObserveTaskListDuration(duration time.Duration) {}
