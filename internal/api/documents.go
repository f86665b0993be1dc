package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/theLastOfCats/gameshelf/internal/db"
	"github.com/theLastOfCats/gameshelf/internal/docstore"
	"github.com/theLastOfCats/gameshelf/internal/logging"
	"github.com/theLastOfCats/gameshelf/internal/model"
)

// DocumentHandler serves the per-user document store. Every path must live
// under users/{uid}/ of the authenticated user.
type DocumentHandler struct {
	DB     *db.DB
	Logger *slog.Logger
}

type DocumentList struct {
	Documents []model.Document `json:"documents"`
}

// ownedPath validates the wildcard path and checks it belongs to the caller.
func ownedPath(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := GetUserID(r)
	if !ok {
		JSONError(w, "Unauthorized", http.StatusUnauthorized)
		return "", false
	}

	parts, err := docstore.Segments(r.PathValue("path"))
	if err != nil {
		JSONError(w, "Invalid document path", http.StatusBadRequest)
		return "", false
	}
	path := strings.Join(parts, "/")
	if !strings.HasPrefix(path+"/", docstore.UserPrefix(UID(userID))) || len(parts) < 3 {
		JSONError(w, "Forbidden", http.StatusForbidden)
		return "", false
	}
	return path, true
}

func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	path, ok := ownedPath(w, r)
	if !ok {
		return
	}

	if docstore.IsCollection(path) {
		docs, err := h.DB.ListDocuments(r.Context(), path)
		if err != nil {
			h.Logger.Error("list documents", slog.String("path", path), logging.Err(err))
			JSONError(w, "Database error", http.StatusInternalServerError)
			return
		}
		JSON(w, http.StatusOK, DocumentList{Documents: docs})
		return
	}

	doc, err := h.DB.GetDocument(r.Context(), path)
	if errors.Is(err, db.ErrNotFound) {
		JSONError(w, "Document not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.Logger.Error("get document", slog.String("path", path), logging.Err(err))
		JSONError(w, "Database error", http.StatusInternalServerError)
		return
	}
	JSON(w, http.StatusOK, doc)
}

func (h *DocumentHandler) Put(w http.ResponseWriter, r *http.Request) {
	path, ok := ownedPath(w, r)
	if !ok {
		return
	}
	if docstore.IsCollection(path) {
		JSONError(w, "Cannot write a collection", http.StatusBadRequest)
		return
	}

	var req model.Write
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		JSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	merge := r.URL.Query().Get("merge") == "true"

	doc, err := h.DB.UpsertDocument(r.Context(), path, req, merge)
	if err != nil {
		h.Logger.Error("upsert document", slog.String("path", path), logging.Err(err))
		JSONError(w, "Database error", http.StatusInternalServerError)
		return
	}
	JSON(w, http.StatusOK, doc)
}

func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	path, ok := ownedPath(w, r)
	if !ok {
		return
	}
	if docstore.IsCollection(path) {
		JSONError(w, "Cannot delete a collection", http.StatusBadRequest)
		return
	}

	if err := h.DB.DeleteDocument(r.Context(), path); err != nil {
		h.Logger.Error("delete document", slog.String("path", path), logging.Err(err))
		JSONError(w, "Database error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
