package api

import (
	"log/slog"
	"net/http"

	"github.com/theLastOfCats/gameshelf/internal/db"
)

// NewRouter wires every route of the membership store.
func NewRouter(database *db.DB, logger *slog.Logger) http.Handler {
	mw := &Middleware{DB: database, Logger: logger}
	authHandler := &AuthHandler{DB: database, Logger: logger}
	userHandler := &UserHandler{DB: database, Logger: logger}
	docHandler := &DocumentHandler{DB: database, Logger: logger}

	mux := http.NewServeMux()

	// Public Routes
	mux.HandleFunc("GET /{$}", Health)
	mux.HandleFunc("POST /auth/register", authHandler.Register)
	mux.HandleFunc("POST /auth/login", authHandler.Login)

	// Protected Routes
	mux.Handle("GET /me", mw.AuthMiddleware(http.HandlerFunc(userHandler.GetMe)))
	mux.Handle("GET /documents/{path...}", mw.AuthMiddleware(http.HandlerFunc(docHandler.Get)))
	mux.Handle("PUT /documents/{path...}", mw.AuthMiddleware(http.HandlerFunc(docHandler.Put)))
	mux.Handle("DELETE /documents/{path...}", mw.AuthMiddleware(http.HandlerFunc(docHandler.Delete)))

	return LoggingMiddleware(logger, mux)
}
