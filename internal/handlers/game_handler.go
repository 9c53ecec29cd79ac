package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gameshelf/gameshelf/internal/middleware"
	"github.com/gameshelf/gameshelf/internal/models"
	"github.com/gameshelf/gameshelf/internal/services"
	"github.com/gameshelf/gameshelf/pkg/logger"
)

// maxBodyBytes caps the size of a create request body.
const maxBodyBytes = 1 << 20

// CreateGameRequest represents the request body for creating a game.
type CreateGameRequest struct {
	Title       string `json:"title"`
	Genre       string `json:"genre"`
	ReleaseDate string `json:"releaseDate"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// GameHandler handles the /api/games endpoints.
type GameHandler struct {
	service services.GameService
	log     *logger.Logger
}

// NewGameHandler creates a new GameHandler.
func NewGameHandler(svc services.GameService, log *logger.Logger) *GameHandler {
	if log == nil {
		log = logger.Discard()
	}
	return &GameHandler{service: svc, log: log}
}

// Create handles POST /api/games requests.
func (h *GameHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCreateRequest(w, r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, ErrorResponse{
				Error: "request body too large",
				Code:  "PAYLOAD_TOO_LARGE",
			})
			return
		}
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error: err.Error(),
			Code:  "INVALID_REQUEST",
		})
		return
	}

	game, err := h.service.Create(r.Context(), models.GameCreate{
		Title:       req.Title,
		Genre:       req.Genre,
		ReleaseDate: req.ReleaseDate,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, game)
}

// decodeCreateRequest reads exactly one JSON object from the body.
func decodeCreateRequest(w http.ResponseWriter, r *http.Request) (*CreateGameRequest, error) {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))

	var req *CreateGameRequest
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return nil, err
		case errors.Is(err, io.EOF):
			return nil, errors.New("request body is required")
		default:
			return nil, errors.New("invalid request body")
		}
	}
	if req == nil {
		return nil, errors.New("request body must be a JSON object")
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, err
		}
		return nil, errors.New("request body must contain a single JSON object")
	}

	return req, nil
}

// List handles GET /api/games requests.
// The title, genre and releaseDate query parameters filter by exact match.
func (h *GameHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.GameFilter{
		Title:       q.Get("title"),
		Genre:       q.Get("genre"),
		ReleaseDate: q.Get("releaseDate"),
	}

	games, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, games)
}

// Get handles GET /api/games/{id} requests.
func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request, id string) {
	game, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, game)
}

// Delete handles DELETE /api/games/{id} requests.
func (h *GameHandler) Delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *GameHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := mapErrorToResponse(err)
	if status >= http.StatusInternalServerError {
		h.log.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetRequestID(r.Context()),
			"error", err.Error(),
		)
	}
	writeJSON(w, status, resp)
}

// mapErrorToResponse maps service errors to HTTP status codes and error responses.
func mapErrorToResponse(err error) (int, ErrorResponse) {
	switch {
	case errors.Is(err, models.ErrInvalidGame):
		return http.StatusBadRequest, ErrorResponse{
			Error: err.Error(),
			Code:  "INVALID_GAME",
		}
	case errors.Is(err, models.ErrInvalidGameID):
		return http.StatusBadRequest, ErrorResponse{
			Error: err.Error(),
			Code:  "INVALID_ID",
		}
	case errors.Is(err, models.ErrGameNotFound):
		return http.StatusNotFound, ErrorResponse{
			Error: err.Error(),
			Code:  "NOT_FOUND",
		}
	default:
		return http.StatusInternalServerError, ErrorResponse{
			Error: "internal server error",
			Code:  "INTERNAL_ERROR",
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
