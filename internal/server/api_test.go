package server_test

import (
	"net/http"
	"net/url"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gameshelf/gameshelf/internal/handlers"
	"github.com/gameshelf/gameshelf/internal/models"
	"github.com/gameshelf/gameshelf/internal/testutil"
)

var harness *testutil.Harness

func TestMain(m *testing.M) {
	harness = testutil.SetupHarness()
	code := m.Run()
	harness.Teardown()
	os.Exit(code)
}

func TestAPI_CreateGame(t *testing.T) {
	harness.Reset(t)

	input := map[string]string{
		"title":       "Super Mario Bros.",
		"genre":       "Platformer",
		"releaseDate": "September 13, 1985",
	}

	rec := harness.Do(t, http.MethodPost, "/api/games", input)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var game models.Game
	testutil.DecodeJSON(t, rec, &game)
	assert.NotEmpty(t, game.ID)
	assert.Equal(t, input["title"], game.Title)
	assert.Equal(t, input["genre"], game.Genre)
	assert.Equal(t, input["releaseDate"], game.ReleaseDate)
}

func TestAPI_CreateGame_Invalid(t *testing.T) {
	harness.Reset(t)

	tests := []struct {
		name         string
		body         interface{}
		expectedCode string
	}{
		{"missing title", map[string]string{"genre": "RPG", "releaseDate": "1986"}, "INVALID_GAME"},
		{"missing genre", map[string]string{"title": "Dragon Quest", "releaseDate": "1986"}, "INVALID_GAME"},
		{"missing release date", map[string]string{"title": "Dragon Quest", "genre": "RPG"}, "INVALID_GAME"},
		{"blank title", map[string]string{"title": "   ", "genre": "RPG", "releaseDate": "1986"}, "INVALID_GAME"},
		{"malformed json", `{"title": "Dragon Quest",`, "INVALID_REQUEST"},
		{"array body", `[]`, "INVALID_REQUEST"},
		{"null body", `null`, "INVALID_REQUEST"},
		{"trailing garbage", `{"title":"A","genre":"B","releaseDate":"C"} trailing-garbage`, "INVALID_REQUEST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := harness.Do(t, http.MethodPost, "/api/games", tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			var resp handlers.ErrorResponse
			testutil.DecodeJSON(t, rec, &resp)
			assert.Equal(t, tt.expectedCode, resp.Code)
		})
	}

	rec := harness.Do(t, http.MethodGet, "/api/games", nil)
	var games []models.Game
	testutil.DecodeJSON(t, rec, &games)
	assert.Len(t, games, 1, "rejected creates must not be stored")
}

func TestAPI_ListGames(t *testing.T) {
	fixture := harness.Reset(t)

	rec := harness.Do(t, http.MethodGet, "/api/games", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var games []models.Game
	testutil.DecodeJSON(t, rec, &games)
	require.Len(t, games, 1)
	assert.Equal(t, fixture.ID, games[0].ID)
	assert.Equal(t, testutil.Fixture.Title, games[0].Title)
}

func TestAPI_ListGames_EmptyIsArray(t *testing.T) {
	fixture := harness.Reset(t)
	require.Equal(t, http.StatusNoContent, harness.Do(t, http.MethodDelete, "/api/games/"+fixture.ID, nil).Code)

	rec := harness.Do(t, http.MethodGet, "/api/games", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestAPI_ListGames_TitleFilter(t *testing.T) {
	harness.Reset(t)
	harness.Do(t, http.MethodPost, "/api/games", map[string]string{
		"title": "Metroid", "genre": "Action", "releaseDate": "August 6, 1986",
	})

	rec := harness.Do(t, http.MethodGet, "/api/games?title="+url.QueryEscape("Metroid"), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var games []models.Game
	testutil.DecodeJSON(t, rec, &games)
	require.Len(t, games, 1)
	assert.Equal(t, "Metroid", games[0].Title)
	assert.Equal(t, "Action", games[0].Genre)

	rec = harness.Do(t, http.MethodGet, "/api/games?title="+url.QueryEscape("Nonexistent"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestAPI_ListGames_GenreFilter(t *testing.T) {
	harness.Reset(t)
	for _, title := range []string{"Tetris", "Dr. Mario"} {
		harness.Do(t, http.MethodPost, "/api/games", map[string]string{
			"title": title, "genre": "Puzzle", "releaseDate": "1989",
		})
	}

	rec := harness.Do(t, http.MethodGet, "/api/games?genre=Puzzle", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var games []models.Game
	testutil.DecodeJSON(t, rec, &games)
	require.Len(t, games, 2)
	assert.Equal(t, "Tetris", games[0].Title)
	assert.Equal(t, "Dr. Mario", games[1].Title)
}

func TestAPI_GetGame(t *testing.T) {
	harness.Reset(t)

	rec := harness.Do(t, http.MethodPost, "/api/games", map[string]string{
		"title": "Kid Icarus", "genre": "Platformer", "releaseDate": "December 19, 1986",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var raw map[string]interface{}
	testutil.DecodeJSON(t, rec, &raw)
	id, ok := raw["_id"].(string)
	require.True(t, ok, "id must be a string")

	rec = harness.Do(t, http.MethodGet, "/api/games/"+id, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var game models.Game
	testutil.DecodeJSON(t, rec, &game)
	assert.Equal(t, id, game.ID)
	assert.Equal(t, "Kid Icarus", game.Title)
}

func TestAPI_GetGame_Errors(t *testing.T) {
	fixture := harness.Reset(t)

	// A well-formed id whose record no longer exists.
	rec := harness.Do(t, http.MethodPost, "/api/games", map[string]string{
		"title": "Excitebike", "genre": "Racing", "releaseDate": "1984",
	})
	var gone models.Game
	testutil.DecodeJSON(t, rec, &gone)
	require.Equal(t, http.StatusNoContent, harness.Do(t, http.MethodDelete, "/api/games/"+gone.ID, nil).Code)

	tests := []struct {
		name           string
		id             string
		expectedStatus int
		expectedCode   string
	}{
		{"unknown id", gone.ID, http.StatusNotFound, "NOT_FOUND"},
		{"malformed id", "not-a-valid-id", http.StatusBadRequest, "INVALID_ID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := harness.Do(t, http.MethodGet, "/api/games/"+tt.id, nil)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			var resp handlers.ErrorResponse
			testutil.DecodeJSON(t, rec, &resp)
			assert.Equal(t, tt.expectedCode, resp.Code)
		})
	}

	assert.Equal(t, http.StatusOK, harness.Do(t, http.MethodGet, "/api/games/"+fixture.ID, nil).Code)
}

func TestAPI_DeleteGame(t *testing.T) {
	fixture := harness.Reset(t)

	rec := harness.Do(t, http.MethodPost, "/api/games", map[string]string{
		"title": "Punch-Out!!", "genre": "Sports", "releaseDate": "October 18, 1987",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created models.Game
	testutil.DecodeJSON(t, rec, &created)

	rec = harness.Do(t, http.MethodDelete, "/api/games/"+created.ID, nil)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	assert.Equal(t, http.StatusNotFound, harness.Do(t, http.MethodGet, "/api/games/"+created.ID, nil).Code)

	// Only the matching record is removed.
	rec = harness.Do(t, http.MethodGet, "/api/games", nil)
	var games []models.Game
	testutil.DecodeJSON(t, rec, &games)
	require.Len(t, games, 1)
	assert.Equal(t, fixture.ID, games[0].ID)
}

func TestAPI_DeleteGame_Twice(t *testing.T) {
	fixture := harness.Reset(t)

	assert.Equal(t, http.StatusNoContent, harness.Do(t, http.MethodDelete, "/api/games/"+fixture.ID, nil).Code)

	rec := harness.Do(t, http.MethodDelete, "/api/games/"+fixture.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPI_DeleteGame_MalformedID(t *testing.T) {
	harness.Reset(t)

	rec := harness.Do(t, http.MethodDelete, "/api/games/not-a-valid-id", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// Create the Zelda game, then find it by title.
func TestAPI_CreateThenFindByTitle(t *testing.T) {
	harness.Reset(t)

	rec := harness.Do(t, http.MethodPost, "/api/games", testutil.Fixture)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created models.Game
	testutil.DecodeJSON(t, rec, &created)
	assert.Equal(t, testutil.Fixture.Title, created.Title)

	rec = harness.Do(t, http.MethodGet, "/api/games?title="+url.QueryEscape("The Legend of Zelda"), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var games []models.Game
	testutil.DecodeJSON(t, rec, &games)
	require.NotEmpty(t, games)
	assert.Equal(t, "Action/Adventure", games[0].Genre)
	for _, g := range games {
		assert.Equal(t, "The Legend of Zelda", g.Title)
	}
}
