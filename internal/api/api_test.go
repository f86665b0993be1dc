package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/theLastOfCats/gameshelf/internal/auth"
	"github.com/theLastOfCats/gameshelf/internal/db"
	"github.com/theLastOfCats/gameshelf/internal/logging"
	"github.com/theLastOfCats/gameshelf/internal/model"
	"github.com/theLastOfCats/gameshelf/internal/testutil"
)

func setupRouter(t *testing.T) (http.Handler, *db.DB) {
	t.Helper()
	auth.Init("test-secret", time.Hour)
	database := testutil.SetupTestDB(t)
	return NewRouter(database, logging.Discard()), database
}

// doJSON sends body as JSON through handler and returns the recorder.
func doJSON(t *testing.T, handler http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func register(t *testing.T, handler http.Handler, email string) model.Identity {
	t.Helper()
	rr := doJSON(t, handler, "POST", "/auth/register", "", Credentials{Email: email, Password: "securepassword"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("register %s: got %d body: %s", email, rr.Code, rr.Body.String())
	}
	var id model.Identity
	if err := json.NewDecoder(rr.Body).Decode(&id); err != nil {
		t.Fatalf("Failed to decode identity: %v", err)
	}
	return id
}

func TestHealth(t *testing.T) {
	req, err := http.NewRequest("GET", "/", nil)
	if err != nil {
		t.Fatal(err)
	}
	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(Health)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusOK {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusOK)
	}

	expected := "Alive"
	if rr.Body.String() != expected {
		t.Errorf("handler returned unexpected body: got %v want %v", rr.Body.String(), expected)
	}
}

func TestRouterSetsRequestID(t *testing.T) {
	router, _ := setupRouter(t)

	rr := doJSON(t, router, "GET", "/", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Request-ID", "fixed-id")
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if got := rr.Header().Get("X-Request-ID"); got != "fixed-id" {
		t.Errorf("expected request id to be echoed, got %q", got)
	}
}

func TestGetMe(t *testing.T) {
	database := testutil.SetupTestDB(t)

	email := "me@example.com"
	res, _ := database.Exec("INSERT INTO users (email, password_hash, created_at) VALUES (?, ?, ?)", email, "hash", time.Now().Unix())
	userID, _ := res.LastInsertId()

	handler := &UserHandler{DB: database, Logger: logging.Discard()}

	req, _ := http.NewRequest("GET", "/me", nil)
	// Inject user_id into context (simulating AuthMiddleware)
	ctx := context.WithValue(req.Context(), UserIDKey, userID)
	req = req.WithContext(ctx)

	rr := httptest.NewRecorder()

	handler.GetMe(rr, req)

	if status := rr.Code; status != http.StatusOK {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusOK)
	}

	var resp model.Identity
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Email != email {
		t.Errorf("Expected email %s, got %s", email, resp.Email)
	}
	if resp.UID != UID(userID) {
		t.Errorf("Expected UID %d, got %s", userID, resp.UID)
	}
}

func TestAuthMiddlewareRejects(t *testing.T) {
	router, _ := setupRouter(t)

	cases := map[string]string{
		"missing header": "",
		"garbage token":  "not-a-jwt",
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			rr := doJSON(t, router, "GET", "/me", token, nil)
			if rr.Code != http.StatusUnauthorized {
				t.Errorf("expected 401, got %d", rr.Code)
			}
		})
	}

	// A valid token for a user that no longer exists.
	token, err := auth.GenerateToken(999)
	if err != nil {
		t.Fatal(err)
	}
	rr := doJSON(t, router, "GET", "/me", token, nil)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for unknown user, got %d", rr.Code)
	}
}
