// Package services contains business logic.
package services

import (
	"context"

	"github.com/gameshelf/gameshelf/internal/metrics"
	"github.com/gameshelf/gameshelf/internal/models"
	"github.com/gameshelf/gameshelf/internal/repository"
)

// GameService defines the interface for game operations.
type GameService interface {
	Create(ctx context.Context, req models.GameCreate) (*models.Game, error)
	List(ctx context.Context, filter models.GameFilter) ([]*models.Game, error)
	Get(ctx context.Context, id string) (*models.Game, error)
	Delete(ctx context.Context, id string) error
}

// GameServiceImpl implements GameService.
type GameServiceImpl struct {
	repo repository.GameRepository
}

// NewGameService creates a new GameService instance.
func NewGameService(repo repository.GameRepository) *GameServiceImpl {
	return &GameServiceImpl{repo: repo}
}

// Create validates and stores a new game.
func (s *GameServiceImpl) Create(ctx context.Context, req models.GameCreate) (*models.Game, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	game, err := s.repo.Create(ctx, &req)
	if err != nil {
		return nil, err
	}

	metrics.RecordGameCreated()
	return game, nil
}

// List returns the games matching the filter.
func (s *GameServiceImpl) List(ctx context.Context, filter models.GameFilter) ([]*models.Game, error) {
	games, err := s.repo.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	if games == nil {
		games = []*models.Game{}
	}
	return games, nil
}

// Get retrieves a game by its id.
func (s *GameServiceImpl) Get(ctx context.Context, id string) (*models.Game, error) {
	if id == "" {
		return nil, models.ErrInvalidGameID
	}
	return s.repo.GetByID(ctx, id)
}

// Delete removes the game with the given id. Other games are untouched.
func (s *GameServiceImpl) Delete(ctx context.Context, id string) error {
	if id == "" {
		return models.ErrInvalidGameID
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	metrics.RecordGameDeleted()
	return nil
}
