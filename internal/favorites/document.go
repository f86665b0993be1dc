package favorites

import (
	"time"

	"github.com/theLastOfCats/gameshelf/internal/docstore"
	"github.com/theLastOfCats/gameshelf/internal/model"
)

// Field names of a favorite document.
const (
	FieldGameID          = "gameId"
	FieldName            = "name"
	FieldBackgroundImage = "background_image"
	FieldCreatedAt       = "createdAt"
)

// Payload is the minimal record stored for a favorite. The creation time is
// assigned by the store.
func Payload(g model.Game) model.Write {
	var image any
	if g.BackgroundImage != nil {
		image = *g.BackgroundImage
	}
	return model.Write{
		Fields: map[string]any{
			FieldGameID:          g.ID,
			FieldName:            g.Name,
			FieldBackgroundImage: image,
		},
		ServerTimestamps: []string{FieldCreatedAt},
	}
}

// Decode reads a favorite document. Documents without a usable game id are
// rejected.
func Decode(doc model.Document) (model.Favorite, bool) {
	id, ok := docstore.ParseGameID(doc.ID)
	if !ok {
		id, ok = asInt64(doc.Fields[FieldGameID])
		if !ok || id <= 0 {
			return model.Favorite{}, false
		}
	}

	fav := model.Favorite{GameID: id}
	if name, ok := doc.Fields[FieldName].(string); ok {
		fav.Name = name
	}
	if img, ok := doc.Fields[FieldBackgroundImage].(string); ok {
		fav.BackgroundImage = &img
	}
	if ms, ok := asInt64(doc.Fields[FieldCreatedAt]); ok {
		fav.CreatedAt = time.UnixMilli(ms).UTC()
	} else {
		fav.CreatedAt = doc.CreateTime
	}
	return fav, true
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}
