package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/dom/roleplay-api/internal/api/respond"
	"github.com/dom/roleplay-api/internal/domain"
	"github.com/dom/roleplay-api/internal/service"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type contextKey string

const (
	UserIDKey  contextKey = "userID"
	SessionKey contextKey = "session"
)

var errMissingBearer = domain.Unauthorized("authorization header required")

// Auth admits requests carrying a valid, unrevoked bearer session token.
func Auth(authService *service.AuthService, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
				logger.Debug("missing or malformed authorization header")
				respond.Error(w, logger, errMissingBearer)
				return
			}

			session, err := authService.ValidateToken(r.Context(), parts[1])
			if err != nil {
				logger.Debug("token validation failed", zap.Error(err))
				respond.Error(w, logger, err)
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, session.UserID)
			ctx = context.WithValue(ctx, SessionKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetUserID(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDKey).(uuid.UUID)
	return userID, ok
}

func GetSession(ctx context.Context) (*service.Session, bool) {
	session, ok := ctx.Value(SessionKey).(*service.Session)
	return session, ok
}
