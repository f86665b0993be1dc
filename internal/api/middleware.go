package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/theLastOfCats/gameshelf/internal/auth"
	"github.com/theLastOfCats/gameshelf/internal/db"
	"github.com/theLastOfCats/gameshelf/internal/logging"
)

type contextKey string

const UserIDKey contextKey = "userID"

type Middleware struct {
	DB     *db.DB
	Logger *slog.Logger
}

func (m *Middleware) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			JSONError(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		scheme, token, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			JSONError(w, "Invalid authorization header", http.StatusUnauthorized)
			return
		}

		claims, err := auth.ValidateToken(token)
		if err != nil {
			JSONError(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		// The token may outlive the user row, e.g. after a wiped database.
		exists, err := m.DB.UserExists(r.Context(), claims.UserID)
		if err != nil {
			m.Logger.Error("auth: check user", slog.Int64("user_id", claims.UserID), logging.Err(err))
			JSONError(w, "Database error", http.StatusInternalServerError)
			return
		}
		if !exists {
			m.Logger.Warn("auth: user not found", slog.Int64("user_id", claims.UserID))
			JSONError(w, "User not found", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func GetUserID(r *http.Request) (int64, bool) {
	userID, ok := r.Context().Value(UserIDKey).(int64)
	return userID, ok
}

// UID is the document store form of a user id.
func UID(userID int64) string {
	return strconv.FormatInt(userID, 10)
}
