package handler

import (
	"fmt"
	"net/http"

	"github.com/taskly/taskly/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "taskly_users_registered_total %d\n", snap.UsersRegistered)
	writeMetric(w, "taskly_logins_total{status=\"success\"} %d\n", snap.LoginsSucceeded)
	writeMetric(w, "taskly_logins_total{status=\"failed\"} %d\n", snap.LoginsFailed)
	writeMetric(w, "taskly_sessions_rejected_total %d\n", snap.SessionsRejected)

	writeMetric(w, "taskly_tasks_created_total %d\n", snap.TasksCreated)
	writeMetric(w, "taskly_tasks_updated_total %d\n", snap.TasksUpdated)
	writeMetric(w, "taskly_tasks_deleted_total %d\n", snap.TasksDeleted)

	writeMetric(w, "taskly_task_list_cache_hits_total %d\n", snap.TaskListCacheHits)
	writeMetric(w, "taskly_task_list_cache_misses_total %d\n", snap.TaskListCacheMisses)
	writeMetric(w, "taskly_task_list_duration_seconds_count %d\n", snap.TaskListDurationCount)
	writeMetric(w, "taskly_task_list_duration_seconds_sum %.6f\n", float64(snap.TaskListDurationTotalNs)/1e9)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
