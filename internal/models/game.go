// Package models contains domain models and entities.
package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Game is a stored game record.
type Game struct {
	ID          string `json:"_id"`
	Title       string `json:"title"`
	Genre       string `json:"genre"`
	ReleaseDate string `json:"releaseDate"`
}

// GameCreate represents the data needed to create a new game.
type GameCreate struct {
	Title       string `json:"title" validate:"required"`
	Genre       string `json:"genre" validate:"required"`
	ReleaseDate string `json:"releaseDate" validate:"required"`
}

// GameFilter selects games by exact field match. Empty fields match anything.
type GameFilter struct {
	Title       string
	Genre       string
	ReleaseDate string
}

// IsEmpty reports whether the filter matches every game.
func (f GameFilter) IsEmpty() bool {
	return f.Title == "" && f.Genre == "" && f.ReleaseDate == ""
}

// Matches reports whether g satisfies the filter.
func (f GameFilter) Matches(g *Game) bool {
	if f.Title != "" && g.Title != f.Title {
		return false
	}
	if f.Genre != "" && g.Genre != f.Genre {
		return false
	}
	if f.ReleaseDate != "" && g.ReleaseDate != f.ReleaseDate {
		return false
	}
	return true
}

// Validation and lookup errors
var (
	ErrInvalidGame      = errors.New("invalid game")
	ErrEmptyTitle       = fmt.Errorf("%w: title is required", ErrInvalidGame)
	ErrEmptyGenre       = fmt.Errorf("%w: genre is required", ErrInvalidGame)
	ErrEmptyReleaseDate = fmt.Errorf("%w: releaseDate is required", ErrInvalidGame)
	ErrInvalidGameID    = errors.New("invalid game id")
	ErrGameNotFound     = errors.New("game not found")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Normalize trims surrounding whitespace from every field.
func (c *GameCreate) Normalize() {
	c.Title = strings.TrimSpace(c.Title)
	c.Genre = strings.TrimSpace(c.Genre)
	c.ReleaseDate = strings.TrimSpace(c.ReleaseDate)
}

// Validate checks that every required field is present.
// Fields are checked in declaration order and the first failure is returned.
func (c *GameCreate) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("%w: %v", ErrInvalidGame, err)
	}

	switch fieldErrs[0].StructField() {
	case "Title":
		return ErrEmptyTitle
	case "Genre":
		return ErrEmptyGenre
	case "ReleaseDate":
		return ErrEmptyReleaseDate
	default:
		return fmt.Errorf("%w: %s", ErrInvalidGame, fieldErrs[0].Field())
	}
}

// ToGame builds a Game with the given id from the create data.
func (c *GameCreate) ToGame(id string) *Game {
	return &Game{
		ID:          id,
		Title:       c.Title,
		Genre:       c.Genre,
		ReleaseDate: c.ReleaseDate,
	}
}
