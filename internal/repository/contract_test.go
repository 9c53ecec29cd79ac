package repository

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gameshelf/gameshelf/internal/models"
)

func getEnvOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func zeldaCreate() *models.GameCreate {
	return &models.GameCreate{
		Title:       "The Legend of Zelda",
		Genre:       "Action/Adventure",
		ReleaseDate: "August 22, 1987",
	}
}

func metroidCreate() *models.GameCreate {
	return &models.GameCreate{
		Title:       "Metroid",
		Genre:       "Action/Adventure",
		ReleaseDate: "August 6, 1986",
	}
}

// repoContract describes how to exercise one GameRepository implementation.
type repoContract struct {
	newRepo   func(t *testing.T) GameRepository
	invalidID string
	missingID func() string
}

// runGameRepositoryContract checks the behavior every store must share.
func runGameRepositoryContract(t *testing.T, c repoContract) {
	ctx := context.Background()

	t.Run("create assigns id and keeps fields", func(t *testing.T) {
		repo := c.newRepo(t)

		game, err := repo.Create(ctx, zeldaCreate())
		require.NoError(t, err)

		assert.NotEmpty(t, game.ID)
		assert.Equal(t, "The Legend of Zelda", game.Title)
		assert.Equal(t, "Action/Adventure", game.Genre)
		assert.Equal(t, "August 22, 1987", game.ReleaseDate)
	})

	t.Run("create rejects invalid game", func(t *testing.T) {
		repo := c.newRepo(t)

		_, err := repo.Create(ctx, &models.GameCreate{Title: "No Genre", ReleaseDate: "1990"})
		assert.ErrorIs(t, err, models.ErrEmptyGenre)

		games, err := repo.Find(ctx, models.GameFilter{})
		require.NoError(t, err)
		assert.Empty(t, games)
	})

	t.Run("create assigns distinct ids", func(t *testing.T) {
		repo := c.newRepo(t)

		a, err := repo.Create(ctx, zeldaCreate())
		require.NoError(t, err)
		b, err := repo.Create(ctx, zeldaCreate())
		require.NoError(t, err)

		assert.NotEqual(t, a.ID, b.ID)
	})

	t.Run("find with empty filter returns all in insertion order", func(t *testing.T) {
		repo := c.newRepo(t)

		zelda, err := repo.Create(ctx, zeldaCreate())
		require.NoError(t, err)
		metroid, err := repo.Create(ctx, metroidCreate())
		require.NoError(t, err)

		games, err := repo.Find(ctx, models.GameFilter{})
		require.NoError(t, err)
		require.Len(t, games, 2)
		assert.Equal(t, zelda.ID, games[0].ID)
		assert.Equal(t, metroid.ID, games[1].ID)
	})

	t.Run("find on empty store returns empty non-nil slice", func(t *testing.T) {
		repo := c.newRepo(t)

		games, err := repo.Find(ctx, models.GameFilter{})
		require.NoError(t, err)
		assert.NotNil(t, games)
		assert.Empty(t, games)
	})

	t.Run("find filters by exact title", func(t *testing.T) {
		repo := c.newRepo(t)

		_, err := repo.Create(ctx, zeldaCreate())
		require.NoError(t, err)
		_, err = repo.Create(ctx, metroidCreate())
		require.NoError(t, err)

		games, err := repo.Find(ctx, models.GameFilter{Title: "The Legend of Zelda"})
		require.NoError(t, err)
		require.Len(t, games, 1)
		assert.Equal(t, "The Legend of Zelda", games[0].Title)
		assert.Equal(t, "Action/Adventure", games[0].Genre)

		games, err = repo.Find(ctx, models.GameFilter{Title: "The Legend"})
		require.NoError(t, err)
		assert.Empty(t, games)
	})

	t.Run("find combines filters", func(t *testing.T) {
		repo := c.newRepo(t)

		_, err := repo.Create(ctx, zeldaCreate())
		require.NoError(t, err)
		_, err = repo.Create(ctx, metroidCreate())
		require.NoError(t, err)

		games, err := repo.Find(ctx, models.GameFilter{Genre: "Action/Adventure"})
		require.NoError(t, err)
		assert.Len(t, games, 2)

		games, err = repo.Find(ctx, models.GameFilter{Genre: "Action/Adventure", ReleaseDate: "August 6, 1986"})
		require.NoError(t, err)
		require.Len(t, games, 1)
		assert.Equal(t, "Metroid", games[0].Title)
	})

	t.Run("get by id", func(t *testing.T) {
		repo := c.newRepo(t)

		created, err := repo.Create(ctx, zeldaCreate())
		require.NoError(t, err)

		got, err := repo.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created, got)
	})

	t.Run("get by id not found", func(t *testing.T) {
		repo := c.newRepo(t)

		_, err := repo.GetByID(ctx, c.missingID())
		assert.ErrorIs(t, err, models.ErrGameNotFound)
	})

	t.Run("get by malformed id", func(t *testing.T) {
		repo := c.newRepo(t)

		_, err := repo.GetByID(ctx, c.invalidID)
		assert.ErrorIs(t, err, models.ErrInvalidGameID)
	})

	t.Run("delete removes only the matching game", func(t *testing.T) {
		repo := c.newRepo(t)

		zelda, err := repo.Create(ctx, zeldaCreate())
		require.NoError(t, err)
		metroid, err := repo.Create(ctx, metroidCreate())
		require.NoError(t, err)

		require.NoError(t, repo.Delete(ctx, zelda.ID))

		_, err = repo.GetByID(ctx, zelda.ID)
		assert.ErrorIs(t, err, models.ErrGameNotFound)

		remaining, err := repo.Find(ctx, models.GameFilter{})
		require.NoError(t, err)
		require.Len(t, remaining, 1)
		assert.Equal(t, metroid.ID, remaining[0].ID)
	})

	t.Run("delete twice returns not found", func(t *testing.T) {
		repo := c.newRepo(t)

		zelda, err := repo.Create(ctx, zeldaCreate())
		require.NoError(t, err)

		require.NoError(t, repo.Delete(ctx, zelda.ID))
		assert.ErrorIs(t, repo.Delete(ctx, zelda.ID), models.ErrGameNotFound)
	})

	t.Run("delete malformed id", func(t *testing.T) {
		repo := c.newRepo(t)

		assert.ErrorIs(t, repo.Delete(ctx, c.invalidID), models.ErrInvalidGameID)
	})

	t.Run("delete all clears the store", func(t *testing.T) {
		repo := c.newRepo(t)

		_, err := repo.Create(ctx, zeldaCreate())
		require.NoError(t, err)
		_, err = repo.Create(ctx, metroidCreate())
		require.NoError(t, err)

		n, err := repo.DeleteAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		games, err := repo.Find(ctx, models.GameFilter{})
		require.NoError(t, err)
		assert.Empty(t, games)
	})

	t.Run("health check", func(t *testing.T) {
		repo := c.newRepo(t)
		assert.NoError(t, repo.HealthCheck(ctx))
	})
}
