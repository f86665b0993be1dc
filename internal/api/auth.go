package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/theLastOfCats/gameshelf/internal/auth"
	"github.com/theLastOfCats/gameshelf/internal/db"
	"github.com/theLastOfCats/gameshelf/internal/logging"
	"github.com/theLastOfCats/gameshelf/internal/model"
)

const (
	minPasswordLen = 6
	maxPasswordLen = 128
)

type AuthHandler struct {
	DB     *db.DB
	Logger *slog.Logger
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c Credentials) validate() string {
	if !strings.Contains(c.Email, "@") {
		return "A valid email is required"
	}
	if len(c.Password) < minPasswordLen || len(c.Password) > maxPasswordLen {
		return "Password should be from 6 to 128 characters long"
	}
	return ""
}

func decodeCredentials(w http.ResponseWriter, r *http.Request) (Credentials, bool) {
	var req Credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		JSONError(w, "Invalid request body", http.StatusBadRequest)
		return req, false
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	return req, true
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCredentials(w, r)
	if !ok {
		return
	}
	if msg := req.validate(); msg != "" {
		JSONError(w, msg, http.StatusBadRequest)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.Logger.Error("hash password", logging.Err(err))
		JSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	user, err := h.DB.CreateUser(r.Context(), req.Email, hash)
	if errors.Is(err, db.ErrEmailTaken) {
		JSONError(w, "Email already registered", http.StatusConflict)
		return
	}
	if err != nil {
		h.Logger.Error("create user", logging.Err(err))
		JSONError(w, "Failed to register user", http.StatusInternalServerError)
		return
	}

	h.Logger.Info("user registered", slog.Int64("user_id", user.ID))
	h.respondWithToken(w, http.StatusCreated, user)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	user, err := h.DB.GetUserByEmail(r.Context(), req.Email)
	if errors.Is(err, db.ErrNotFound) {
		JSONError(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}
	if err != nil {
		h.Logger.Error("login lookup", logging.Err(err))
		JSONError(w, "Database error", http.StatusInternalServerError)
		return
	}

	match, err := auth.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil {
		h.Logger.Error("verify password", slog.Int64("user_id", user.ID), logging.Err(err))
		JSONError(w, "Error verifying password", http.StatusInternalServerError)
		return
	}
	if !match {
		JSONError(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	h.respondWithToken(w, http.StatusOK, user)
}

func (h *AuthHandler) respondWithToken(w http.ResponseWriter, status int, user *model.User) {
	token, err := auth.GenerateToken(user.ID)
	if err != nil {
		h.Logger.Error("generate token", logging.Err(err))
		JSONError(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}
	JSON(w, status, model.Identity{UID: UID(user.ID), Email: user.Email, Token: token})
}
