// Package repository handles data persistence.
package repository

import (
	"context"

	"github.com/gameshelf/gameshelf/internal/models"
)

// GameRepository defines the interface for game persistence operations.
type GameRepository interface {
	// Create stores a new game and returns it with its generated id.
	Create(ctx context.Context, create *models.GameCreate) (*models.Game, error)

	// Find returns games matching the filter in insertion order.
	// The result is never nil.
	Find(ctx context.Context, filter models.GameFilter) ([]*models.Game, error)

	// GetByID retrieves a game by its id.
	GetByID(ctx context.Context, id string) (*models.Game, error)

	// Delete removes the game with the given id.
	Delete(ctx context.Context, id string) error

	// DeleteAll removes every game and returns the count.
	DeleteAll(ctx context.Context) (int64, error)

	// HealthCheck verifies the repository is healthy.
	HealthCheck(ctx context.Context) error
}
