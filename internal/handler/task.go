package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taskly/taskly/internal/auth"
	"github.com/taskly/taskly/internal/handler/dto"
	"github.com/taskly/taskly/internal/service"
)

// TaskHandler handles HTTP requests for task operations. Every operation is
// scoped to the session's user.
type TaskHandler struct {
	svc    *service.TaskService
	logger *slog.Logger
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(svc *service.TaskService, logger *slog.Logger) *TaskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskHandler{
		svc:    svc,
		logger: logger,
	}
}

// List handles GET /api/tasks.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.svc.List(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToTaskListResponse(tasks))
}

// Create handles POST /api/tasks.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTaskRequest
	if err := dto.Decode(r.Body, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	input := service.CreateTaskInput{
		OwnerID: auth.UserIDFromContext(r.Context()),
		Title:   req.Title,
	}
	if req.Description != nil {
		input.Description = *req.Description
	}

	task, err := h.svc.Create(r.Context(), input)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("task_created", "task_id", task.ID, "user_id", task.OwnerID)

	writeJSON(w, http.StatusOK, dto.ToTaskResponse(task))
}

// Update handles PUT /api/tasks/{id}.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateTaskRequest
	if err := dto.Decode(r.Body, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	task, err := h.svc.Update(r.Context(), service.UpdateTaskInput{
		OwnerID:     auth.UserIDFromContext(r.Context()),
		ID:          chi.URLParam(r, "id"),
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("task_updated", "task_id", task.ID, "user_id", task.OwnerID)

	writeJSON(w, http.StatusOK, dto.ToTaskResponse(task))
}

// Delete handles DELETE /api/tasks/{id}.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	userID := auth.UserIDFromContext(r.Context())

	if err := h.svc.Delete(r.Context(), userID, id); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("task_deleted", "task_id", id, "user_id", userID)

	writeMessage(w, http.StatusOK, "Task deleted")
}
