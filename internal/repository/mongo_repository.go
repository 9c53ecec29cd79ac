package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/gameshelf/gameshelf/internal/metrics"
	"github.com/gameshelf/gameshelf/internal/models"
)

// gameDocument is the BSON shape of a game in the games collection.
type gameDocument struct {
	ID          bson.ObjectID `bson:"_id,omitempty"`
	Title       string        `bson:"title"`
	Genre       string        `bson:"genre"`
	ReleaseDate string        `bson:"releaseDate"`
}

func (d *gameDocument) toGame() *models.Game {
	return &models.Game{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Genre:       d.Genre,
		ReleaseDate: d.ReleaseDate,
	}
}

// MongoGameRepository implements GameRepository using MongoDB.
type MongoGameRepository struct {
	coll *mongo.Collection
}

// NewMongoGameRepository creates a repository over the given collection.
func NewMongoGameRepository(coll *mongo.Collection) *MongoGameRepository {
	return &MongoGameRepository{coll: coll}
}

// EnsureIndexes creates the title index used by filtered listing.
func (r *MongoGameRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "title", Value: 1}},
		Options: options.Index().SetName("idx_games_title"),
	})
	if err != nil {
		return fmt.Errorf("failed to create title index: %w", err)
	}
	return nil
}

// Create stores a new game.
func (r *MongoGameRepository) Create(ctx context.Context, create *models.GameCreate) (*models.Game, error) {
	defer metrics.ObserveDBQuery("mongo", "insert")()

	if err := create.Validate(); err != nil {
		return nil, err
	}

	doc := gameDocument{
		ID:          bson.NewObjectID(),
		Title:       create.Title,
		Genre:       create.Genre,
		ReleaseDate: create.ReleaseDate,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	return doc.toGame(), nil
}

// Find returns matching games ordered by _id, which follows insertion order.
func (r *MongoGameRepository) Find(ctx context.Context, filter models.GameFilter) ([]*models.Game, error) {
	defer metrics.ObserveDBQuery("mongo", "find")()

	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := r.coll.Find(ctx, buildMongoFilter(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find games: %w", err)
	}

	var docs []gameDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode games: %w", err)
	}

	games := make([]*models.Game, 0, len(docs))
	for i := range docs {
		games = append(games, docs[i].toGame())
	}
	return games, nil
}

// GetByID retrieves a game by its id.
func (r *MongoGameRepository) GetByID(ctx context.Context, id string) (*models.Game, error) {
	defer metrics.ObserveDBQuery("mongo", "find_one")()

	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, models.ErrInvalidGameID
	}

	var doc gameDocument
	err = r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return doc.toGame(), nil
}

// Delete removes a single game by its id.
func (r *MongoGameRepository) Delete(ctx context.Context, id string) error {
	defer metrics.ObserveDBQuery("mongo", "delete")()

	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return models.ErrInvalidGameID
	}

	result, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}
	if result.DeletedCount == 0 {
		return models.ErrGameNotFound
	}

	return nil
}

// DeleteAll clears the collection.
func (r *MongoGameRepository) DeleteAll(ctx context.Context) (int64, error) {
	defer metrics.ObserveDBQuery("mongo", "delete_many")()

	result, err := r.coll.DeleteMany(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("failed to clear games: %w", err)
	}
	return result.DeletedCount, nil
}

// HealthCheck pings the primary.
func (r *MongoGameRepository) HealthCheck(ctx context.Context) error {
	return r.coll.Database().Client().Ping(ctx, readpref.Primary())
}

// buildMongoFilter translates a GameFilter into an exact-match query.
func buildMongoFilter(filter models.GameFilter) bson.D {
	query := bson.D{}
	if filter.Title != "" {
		query = append(query, bson.E{Key: "title", Value: filter.Title})
	}
	if filter.Genre != "" {
		query = append(query, bson.E{Key: "genre", Value: filter.Genre})
	}
	if filter.ReleaseDate != "" {
		query = append(query, bson.E{Key: "releaseDate", Value: filter.ReleaseDate})
	}
	return query
}
