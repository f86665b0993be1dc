package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theLastOfCats/gameshelf/internal/api"
	"github.com/theLastOfCats/gameshelf/internal/auth"
	"github.com/theLastOfCats/gameshelf/internal/logging"
	"github.com/theLastOfCats/gameshelf/internal/model"
	"github.com/theLastOfCats/gameshelf/internal/testutil"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "shelf", cmd.Use)
	assert.Contains(t, cmd.Long, "favorite")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"games", "game", "genres", "platforms", "favorites", "toggle", "remove", "register", "login"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	langFlag := cmd.PersistentFlags().Lookup("lang")
	require.NotNil(t, langFlag)
	assert.Equal(t, "en", langFlag.DefValue)
}

func TestGamesCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	gamesCmd, _, err := cmd.Find([]string{"games"})
	require.NoError(t, err)

	for _, name := range []string{"search", "genre", "platform", "year", "page"} {
		assert.NotNil(t, gamesCmd.Flags().Lookup(name), "flag %s", name)
	}
	assert.Equal(t, "1", gamesCmd.Flags().Lookup("page").DefValue)
	assert.Equal(t, "s", gamesCmd.Flags().Lookup("search").Shorthand)
}

func TestInvalidFormat(t *testing.T) {
	_, _, err := run(t, "--format", "yaml", "genres")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestInvalidGameID(t *testing.T) {
	_, _, err := run(t, "game", "abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid game id")
}

// run executes a fresh root command and returns stdout and stderr.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(t.Context())
	return stdout.String(), stderr.String(), err
}

func fakeCatalog(t *testing.T) *httptest.Server {
	t.Helper()
	img := "https://img/3498.jpg"
	mux := http.NewServeMux()
	mux.HandleFunc("GET /games", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(model.ListResponse{
			Count: 2,
			Results: []model.Game{
				{ID: 3498, Name: "Grand Theft Auto V", BackgroundImage: &img, Rating: 4.47},
				{ID: 1, Name: "No Image"},
			},
		})
	})
	mux.HandleFunc("GET /games/{id}", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(model.Game{ID: 3498, Name: "Grand Theft Auto V", BackgroundImage: &img})
	})
	mux.HandleFunc("GET /genres", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[{"id":4,"name":"Action"}]}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func setupEnv(t *testing.T) {
	t.Helper()
	auth.Init("cli-test-secret", time.Hour)
	shelf := httptest.NewServer(api.NewRouter(testutil.SetupTestDB(t), logging.Discard()))
	t.Cleanup(shelf.Close)

	t.Setenv("CATALOG_BASE_URL", fakeCatalog(t).URL)
	t.Setenv("CATALOG_API_KEY", "test")
	t.Setenv("SHELF_SERVER_URL", shelf.URL)
	t.Setenv("SHELF_EMAIL", "")
	t.Setenv("SHELF_PASSWORD", "")
}

func TestGenresCommandJSON(t *testing.T) {
	setupEnv(t)

	out, _, err := run(t, "--format", "json", "genres")
	require.NoError(t, err)

	var resp struct {
		Status string        `json:"status"`
		Data   []model.Genre `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, []model.Genre{{ID: 4, Name: "Action"}}, resp.Data)
}

func TestGamesCommandText(t *testing.T) {
	setupEnv(t)

	out, _, err := run(t, "games", "--search", "gta")
	require.NoError(t, err)
	assert.Contains(t, out, "Grand Theft Auto V")
	assert.NotContains(t, out, "No Image")
	assert.Contains(t, out, "page 1 of 1 (2 games)")
}

func TestFavoritesFlow(t *testing.T) {
	setupEnv(t)
	creds := []string{"--email", "cli@example.com", "--password", "password1"}

	out, _, err := run(t, append(creds, "register")...)
	require.NoError(t, err)
	assert.Contains(t, out, "cli@example.com")

	_, _, err = run(t, "toggle", "3498")
	require.Error(t, err, "toggle needs a user")

	out, stderr, err := run(t, append(creds, "--format", "json", "toggle", "3498")...)
	require.NoError(t, err)
	assert.Contains(t, out, `"outcome":"added"`)
	assert.Contains(t, stderr, "Added to favorites")

	out, _, err = run(t, append(creds, "games")...)
	require.NoError(t, err)
	assert.Regexp(t, `3498\s+Grand Theft Auto V.*\*`, out)

	out, _, err = run(t, append(creds, "game", "3498")...)
	require.NoError(t, err)
	assert.Contains(t, out, "Favorite:   yes")

	out, _, err = run(t, "game", "3498")
	require.NoError(t, err)
	assert.NotContains(t, out, "Favorite:")

	out, _, err = run(t, append(creds, "favorites", "--filter", "theft")...)
	require.NoError(t, err)
	assert.Contains(t, out, "Grand Theft Auto V")

	_, _, err = run(t, append(creds, "remove", "3498")...)
	require.NoError(t, err)

	out, _, err = run(t, append(creds, "favorites")...)
	require.NoError(t, err)
	assert.Contains(t, out, "No favorites yet.")
}

func TestLoginRequiresCredentials(t *testing.T) {
	setupEnv(t)
	_, _, err := run(t, "login")
	require.Error(t, err)
}
