package repository

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/gameshelf/gameshelf/internal/metrics"
	"github.com/gameshelf/gameshelf/internal/models"
)

// MemoryGameRepository implements GameRepository in process memory.
// Ids are UUIDv4 strings.
type MemoryGameRepository struct {
	mu    sync.RWMutex
	games map[string]*models.Game
	order []string
}

// NewMemoryGameRepository creates an empty in-memory repository.
func NewMemoryGameRepository() *MemoryGameRepository {
	return &MemoryGameRepository{
		games: make(map[string]*models.Game),
	}
}

// Create stores a new game.
func (r *MemoryGameRepository) Create(_ context.Context, create *models.GameCreate) (*models.Game, error) {
	defer metrics.ObserveDBQuery("memory", "insert")()

	if err := create.Validate(); err != nil {
		return nil, err
	}

	game := create.ToGame(uuid.NewString())

	r.mu.Lock()
	r.games[game.ID] = game
	r.order = append(r.order, game.ID)
	r.mu.Unlock()

	return copyGame(game), nil
}

// Find returns matching games in insertion order.
func (r *MemoryGameRepository) Find(_ context.Context, filter models.GameFilter) ([]*models.Game, error) {
	defer metrics.ObserveDBQuery("memory", "find")()

	r.mu.RLock()
	defer r.mu.RUnlock()

	games := make([]*models.Game, 0, len(r.order))
	for _, id := range r.order {
		g := r.games[id]
		if filter.Matches(g) {
			games = append(games, copyGame(g))
		}
	}
	return games, nil
}

// GetByID retrieves a game by its id.
func (r *MemoryGameRepository) GetByID(_ context.Context, id string) (*models.Game, error) {
	defer metrics.ObserveDBQuery("memory", "find_one")()

	if _, err := uuid.Parse(id); err != nil {
		return nil, models.ErrInvalidGameID
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.games[id]
	if !ok {
		return nil, models.ErrGameNotFound
	}
	return copyGame(g), nil
}

// Delete removes a game by its id.
func (r *MemoryGameRepository) Delete(_ context.Context, id string) error {
	defer metrics.ObserveDBQuery("memory", "delete")()

	if _, err := uuid.Parse(id); err != nil {
		return models.ErrInvalidGameID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.games[id]; !ok {
		return models.ErrGameNotFound
	}
	delete(r.games, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// DeleteAll removes every game.
func (r *MemoryGameRepository) DeleteAll(_ context.Context) (int64, error) {
	defer metrics.ObserveDBQuery("memory", "delete_many")()

	r.mu.Lock()
	defer r.mu.Unlock()

	n := int64(len(r.games))
	r.games = make(map[string]*models.Game)
	r.order = nil
	return n, nil
}

// HealthCheck always succeeds.
func (r *MemoryGameRepository) HealthCheck(_ context.Context) error {
	return nil
}

func copyGame(g *models.Game) *models.Game {
	c := *g
	return &c
}
