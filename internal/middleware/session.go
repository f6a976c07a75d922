package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/golang-jwt/jwt/v5"

	"github.com/taskly/taskly/internal/auth"
	"github.com/taskly/taskly/internal/metrics"
	"github.com/taskly/taskly/internal/model"
)

// Session guard responses.
const (
	msgUnauthorized = "Unauthorized"
	msgInvalidToken = "Invalid token"
)

// SessionConfig holds configuration for the session guard.
type SessionConfig struct {
	Logger   *slog.Logger
	Sessions *auth.Sessions
	Tokens   *auth.TokenManager
	Metrics  metrics.Recorder
}

// RequireSession returns a middleware that admits only requests carrying a
// valid session token and injects the caller's identity into the context.
// Rejected requests never reach the wrapped handler.
func RequireSession(cfg SessionConfig) func(http.Handler) http.Handler {
	recorder := cfg.Metrics
	if recorder == nil {
		recorder = metrics.NewNoop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := cfg.Sessions.Extract(r)
			if !ok {
				logSessionFailure(cfg.Logger, r, "missing_token")
				recorder.IncSessionRejected()
				writeMessage(w, http.StatusUnauthorized, msgUnauthorized)
				return
			}

			claims, err := cfg.Tokens.Parse(token)
			if err != nil {
				logSessionFailure(cfg.Logger, r, rejectReason(err))
				recorder.IncSessionRejected()
				writeMessage(w, http.StatusUnauthorized, msgInvalidToken)
				return
			}

			session := &model.AuthContext{UserID: claims.UserID}
			if claims.IssuedAt != nil {
				session.IssuedAt = claims.IssuedAt.Time
			}
			if claims.ExpiresAt != nil {
				session.ExpiresAt = claims.ExpiresAt.Time
			}

			ctx := auth.ContextWithAuth(r.Context(), session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "expired"
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return "bad_signature"
	case errors.Is(err, jwt.ErrTokenMalformed):
		return "malformed"
	default:
		return "invalid"
	}
}

// The token itself is never logged.
func logSessionFailure(logger *slog.Logger, r *http.Request, reason string) {
	if logger == nil {
		return
	}
	logger.Warn("session rejected",
		slog.String("reason", reason),
		slog.String("ip", r.RemoteAddr),
		slog.String("endpoint", r.Method+" "+r.URL.Path),
		slog.String("request_id", GetRequestID(r.Context())),
	)
}
