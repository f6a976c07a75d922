package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/taskly/taskly/internal/handler/dto"
	"github.com/taskly/taskly/internal/middleware"
	"github.com/taskly/taskly/internal/service"
)

const msgInvalidBody = "Invalid request body"

// handleServiceError maps service errors to HTTP responses.
func handleServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrFieldsRequired):
		writeMessage(w, http.StatusBadRequest, "All fields required")
	case errors.Is(err, service.ErrTitleRequired):
		writeMessage(w, http.StatusBadRequest, "Title required")
	case errors.Is(err, service.ErrEmailTaken):
		writeMessage(w, http.StatusBadRequest, "Email already used")
	case errors.Is(err, service.ErrUsernameTaken):
		writeMessage(w, http.StatusBadRequest, "Username already used")
	case errors.Is(err, service.ErrInvalidCredentials):
		writeMessage(w, http.StatusBadRequest, "Invalid credentials")
	case errors.Is(err, service.ErrTaskNotFound):
		writeMessage(w, http.StatusNotFound, "Task not found")
	case errors.Is(err, service.ErrUserNotFound):
		writeMessage(w, http.StatusNotFound, "User not found")
	default:
		if logger != nil {
			logger.Error("request failed",
				slog.String("request_id", middleware.GetRequestID(r.Context())),
				slog.String("endpoint", r.Method+" "+r.URL.Path),
				slog.String("error", err.Error()),
			)
		}
		writeJSON(w, http.StatusInternalServerError, dto.MessageResponse{
			Message: "Server error",
			Error:   err.Error(),
		})
	}
}
