// Package testutil holds test helpers: per-test databases and in-memory
// fakes of the document store and identity source.
//
// Server packages (api, db, auth) assert with the standard testing package
// and httptest. Client packages (catalog, curation, favorites, browse,
// session, docstore, notify, pubsub, cli) assert with testify require and
// assert. Keep new tests in the style of their package family.
package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/theLastOfCats/gameshelf/internal/db"
)

// SetupTestDB creates an in-memory SQLite DB with schema. Every test gets
// its own database.
func SetupTestDB(t *testing.T) *db.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(t.Name())
	database, err := db.New(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	if err != nil {
		t.Fatalf("Failed to init in-memory db: %v", err)
	}
	t.Cleanup(func() {
		_ = database.Close()
	})
	return database
}
