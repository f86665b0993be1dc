package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/theLastOfCats/gameshelf/internal/db"
	"github.com/theLastOfCats/gameshelf/internal/logging"
	"github.com/theLastOfCats/gameshelf/internal/model"
)

type UserHandler struct {
	DB     *db.DB
	Logger *slog.Logger
}

func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r)
	if !ok {
		JSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	user, err := h.DB.GetUserByID(r.Context(), userID)
	if errors.Is(err, db.ErrNotFound) {
		JSONError(w, "User not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.Logger.Error("get me", logging.Err(err))
		JSONError(w, "Database error", http.StatusInternalServerError)
		return
	}

	JSON(w, http.StatusOK, model.Identity{UID: UID(user.ID), Email: user.Email})
}

func Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Alive"))
}
