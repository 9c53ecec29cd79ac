package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gameshelf/gameshelf/internal/database"
	"github.com/gameshelf/gameshelf/internal/metrics"
	"github.com/gameshelf/gameshelf/internal/models"
)

// PostgresGameRepository implements GameRepository using PostgreSQL.
// Ids are UUIDv4 strings.
type PostgresGameRepository struct {
	pool *database.Pool
}

// NewPostgresGameRepository creates a new PostgreSQL-backed game repository.
func NewPostgresGameRepository(pool *database.Pool) *PostgresGameRepository {
	return &PostgresGameRepository{pool: pool}
}

// Create stores a new game.
func (r *PostgresGameRepository) Create(ctx context.Context, create *models.GameCreate) (*models.Game, error) {
	defer metrics.ObserveDBQuery("postgres", "insert")()

	if err := create.Validate(); err != nil {
		return nil, err
	}

	query := `
		INSERT INTO games (id, title, genre, release_date)
		VALUES ($1, $2, $3, $4)
		RETURNING id, title, genre, release_date
	`

	var game models.Game
	err := r.pool.QueryRow(ctx, query, uuid.NewString(), create.Title, create.Genre, create.ReleaseDate).Scan(
		&game.ID,
		&game.Title,
		&game.Genre,
		&game.ReleaseDate,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	return &game, nil
}

// Find returns matching games in insertion order.
func (r *PostgresGameRepository) Find(ctx context.Context, filter models.GameFilter) ([]*models.Game, error) {
	defer metrics.ObserveDBQuery("postgres", "find")()

	query, args := findGamesQuery(filter)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find games: %w", err)
	}

	games, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByPos[models.Game])
	if err != nil {
		return nil, fmt.Errorf("failed to scan games: %w", err)
	}
	if games == nil {
		games = []*models.Game{}
	}
	return games, nil
}

// GetByID retrieves a game by its id.
func (r *PostgresGameRepository) GetByID(ctx context.Context, id string) (*models.Game, error) {
	defer metrics.ObserveDBQuery("postgres", "find_one")()

	if _, err := uuid.Parse(id); err != nil {
		return nil, models.ErrInvalidGameID
	}

	query := `SELECT id, title, genre, release_date FROM games WHERE id = $1`

	var game models.Game
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&game.ID,
		&game.Title,
		&game.Genre,
		&game.ReleaseDate,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return &game, nil
}

// Delete removes a game by its id.
func (r *PostgresGameRepository) Delete(ctx context.Context, id string) error {
	defer metrics.ObserveDBQuery("postgres", "delete")()

	if _, err := uuid.Parse(id); err != nil {
		return models.ErrInvalidGameID
	}

	result, err := r.pool.Exec(ctx, `DELETE FROM games WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrGameNotFound
	}

	return nil
}

// DeleteAll removes every game.
func (r *PostgresGameRepository) DeleteAll(ctx context.Context) (int64, error) {
	defer metrics.ObserveDBQuery("postgres", "delete_many")()

	result, err := r.pool.Exec(ctx, `DELETE FROM games`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear games: %w", err)
	}
	return result.RowsAffected(), nil
}

// HealthCheck verifies the database connection is healthy.
func (r *PostgresGameRepository) HealthCheck(ctx context.Context) error {
	return r.pool.HealthCheck(ctx)
}

// buildPostgresFilter returns a WHERE clause and its positional arguments.
func buildPostgresFilter(filter models.GameFilter) (string, []any) {
	var conds []string
	var args []any

	add := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, value)
		conds = append(conds, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	add("title", filter.Title)
	add("genre", filter.Genre)
	add("release_date", filter.ReleaseDate)

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// findGamesQuery selects games matching filter in insertion order.
func findGamesQuery(filter models.GameFilter) (string, []any) {
	where, args := buildPostgresFilter(filter)
	return `SELECT id, title, genre, release_date FROM games` + where + ` ORDER BY seq`, args
}
