// Package testutil provides a shared harness for API tests.
package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gameshelf/gameshelf/internal/config"
	"github.com/gameshelf/gameshelf/internal/database"
	"github.com/gameshelf/gameshelf/internal/handlers"
	"github.com/gameshelf/gameshelf/internal/models"
	"github.com/gameshelf/gameshelf/internal/repository"
	"github.com/gameshelf/gameshelf/internal/server"
	"github.com/gameshelf/gameshelf/internal/services"
	"github.com/gameshelf/gameshelf/pkg/logger"
)

const (
	// DefaultMongoTestURI is used when MONGO_TEST_URI is unset.
	DefaultMongoTestURI = "mongodb://localhost/test"

	// Backend names reported by Harness.Backend.
	BackendMongo  = "mongo"
	BackendMemory = "memory"

	connectTimeout = 2 * time.Second
)

// Fixture is the game seeded before every test.
var Fixture = models.GameCreate{
	Title:       "The Legend of Zelda",
	Genre:       "Action/Adventure",
	ReleaseDate: "August 22, 1987",
}

// Harness wires a server to a real or in-memory game store for API tests.
type Harness struct {
	Server  *server.Server
	Repo    repository.GameRepository
	Backend string

	handler http.Handler
	mongo   *database.Mongo
	log     *logger.Logger
}

// SetupHarness connects to MONGO_TEST_URI and builds a server around it.
// When Mongo is unreachable it logs a warning and uses the in-memory store.
// Call it once from TestMain and Teardown after m.Run.
func SetupHarness() *Harness {
	log := logger.New(os.Stderr, getEnvOrDefault("TEST_LOG_LEVEL", "warn"))

	h := &Harness{log: log}

	uri := getEnvOrDefault("MONGO_TEST_URI", DefaultMongoTestURI)
	mongoCfg := &config.MongoConfig{
		URI:            uri,
		Database:       "test",
		Collection:     "games",
		ConnectTimeout: connectTimeout,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*connectTimeout)
	defer cancel()

	m, err := database.NewMongo(ctx, mongoCfg)
	if err == nil {
		repo := repository.NewMongoGameRepository(m.Collection(mongoCfg.Collection))
		if err = repo.EnsureIndexes(ctx); err == nil {
			h.mongo = m
			h.Repo = repo
			h.Backend = BackendMongo
		} else {
			_ = m.Close(context.Background())
		}
	}
	if err != nil {
		log.Warn("mongo unavailable, using in-memory store",
			"uri", uri,
			"error", err.Error(),
		)
		h.Repo = repository.NewMemoryGameRepository()
		h.Backend = BackendMemory
	}

	cfg := &config.Config{
		App: config.AppConfig{Env: "test", LogLevel: "error"},
		Server: config.ServerConfig{
			Host:            "127.0.0.1",
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		Storage: config.StorageConfig{Driver: h.Backend},
		Mongo:   *mongoCfg,
	}

	h.Server = server.New(cfg, logger.Discard())
	h.Server.SetGameRepository(h.Repo)
	h.Server.SetGameHandler(handlers.NewGameHandler(services.NewGameService(h.Repo), log))
	h.handler = h.Server.Handler()

	return h
}

// Teardown releases the store connection.
func (h *Harness) Teardown() {
	if h.mongo == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := h.mongo.Close(ctx); err != nil {
		h.log.Warn("failed to close mongo", "error", err.Error())
	}
}

// Reset seeds the fixture game and registers a cleanup that empties the store.
func (h *Harness) Reset(t *testing.T) *models.Game {
	t.Helper()

	ctx := context.Background()
	if _, err := h.Repo.DeleteAll(ctx); err != nil {
		t.Fatalf("failed to clear games: %v", err)
	}

	fixture := Fixture
	game, err := h.Repo.Create(ctx, &fixture)
	if err != nil {
		t.Fatalf("failed to seed fixture: %v", err)
	}

	t.Cleanup(func() {
		if _, err := h.Repo.DeleteAll(context.Background()); err != nil {
			t.Errorf("failed to clear games: %v", err)
		}
	})

	return game
}

// Do sends a request through the full handler chain. A string or []byte
// body is sent as is; any other non-nil body is JSON encoded.
func (h *Harness) Do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	case []byte:
		reader = bytes.NewReader(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

// DecodeJSON unmarshals the recorded body into v.
func DecodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
