//go:build integration

package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/theLastOfCats/gameshelf/internal/auth"
	"github.com/theLastOfCats/gameshelf/internal/logging"
	"github.com/theLastOfCats/gameshelf/internal/model"
	"github.com/theLastOfCats/gameshelf/internal/testutil"
)

func TestDocumentMergeMySQL(t *testing.T) {
	auth.Init("test-secret", time.Hour)
	database := testutil.SetupMySQLTestDB(t)
	router := NewRouter(database, logging.Discard())

	user := register(t, router, "merge-mysql@example.com")
	path := "/documents/users/" + user.UID + "/favorites/7"

	rr := doJSON(t, router, "PUT", path, user.Token, model.Write{
		Fields:           map[string]any{"gameId": 7, "name": "Old", "background_image": "img"},
		ServerTimestamps: []string{"createdAt"},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("first write failed: %d body: %s", rr.Code, rr.Body.String())
	}
	created := decodeDocument(t, rr.Body.Bytes())

	rr = doJSON(t, router, "PUT", path+"?merge=true", user.Token, model.Write{Fields: map[string]any{"name": "New"}})
	if rr.Code != http.StatusOK {
		t.Fatalf("merge write failed: %d body: %s", rr.Code, rr.Body.String())
	}
	merged := decodeDocument(t, rr.Body.Bytes())

	if merged.Fields["name"] != "New" || merged.Fields["background_image"] != "img" {
		t.Errorf("unexpected merged fields: %v", merged.Fields)
	}
	if merged.Fields["createdAt"] != created.Fields["createdAt"] {
		t.Errorf("createdAt changed: %v -> %v", created.Fields["createdAt"], merged.Fields["createdAt"])
	}
}

func TestMySQLIntegrationSmokeDeleteAndList(t *testing.T) {
	auth.Init("test-secret", time.Hour)
	database := testutil.SetupMySQLTestDB(t)
	router := NewRouter(database, logging.Discard())

	user := register(t, router, "smoke-mysql@example.com")
	base := "/documents/users/" + user.UID + "/favorites"

	if rr := doJSON(t, router, "PUT", base+"/1", user.Token, model.Write{Fields: map[string]any{"gameId": 1}}); rr.Code != http.StatusOK {
		t.Fatalf("put failed: %d", rr.Code)
	}
	if rr := doJSON(t, router, "DELETE", base+"/1", user.Token, nil); rr.Code != http.StatusNoContent {
		t.Fatalf("delete failed: %d", rr.Code)
	}
	if rr := doJSON(t, router, "GET", base+"/1", user.Token, nil); rr.Code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", rr.Code)
	}
}
