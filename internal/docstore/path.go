package docstore

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrInvalidPath = errors.New("invalid document path")

// FavoritePath is the document holding one favorite of a user.
func FavoritePath(uid string, gameID int64) string {
	return fmt.Sprintf("users/%s/favorites/%d", uid, gameID)
}

// FavoritesCollection is the collection of all favorites of a user.
func FavoritesCollection(uid string) string {
	return fmt.Sprintf("users/%s/favorites", uid)
}

// UserPrefix is the path prefix owned by a user.
func UserPrefix(uid string) string {
	return "users/" + uid + "/"
}

// Segments cleans a path and splits it. Empty segments are rejected.
func Segments(path string) ([]string, error) {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil, ErrInvalidPath
	}
	parts := strings.Split(path, "/")
	for _, p := range parts {
		if p == "" || p == "." || p == ".." {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPath, path)
		}
	}
	return parts, nil
}

// IsCollection reports whether path names a collection (odd segment count).
func IsCollection(path string) bool {
	parts, err := Segments(path)
	return err == nil && len(parts)%2 == 1
}

// SplitDocument returns the parent collection and id of a document path.
func SplitDocument(path string) (collection, id string, err error) {
	parts, err := Segments(path)
	if err != nil {
		return "", "", err
	}
	if len(parts)%2 != 0 {
		return "", "", fmt.Errorf("%w: %q is a collection", ErrInvalidPath, path)
	}
	return strings.Join(parts[:len(parts)-1], "/"), parts[len(parts)-1], nil
}

// CleanCollection normalises a collection path.
func CleanCollection(path string) (string, error) {
	parts, err := Segments(path)
	if err != nil {
		return "", err
	}
	if len(parts)%2 != 1 {
		return "", fmt.Errorf("%w: %q is a document", ErrInvalidPath, path)
	}
	return strings.Join(parts, "/"), nil
}

// ParseGameID reads a favorite document id. Non numeric ids are skipped by callers.
func ParseGameID(id string) (int64, bool) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
